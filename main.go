// package main provides the entry point for the cyops-backend microservice,
// serving the REST and GraphQL API, the scan submission worker and the
// finding status event producer.
package main

import (
	"context"
	"log"
	"os"
	"strings"

	"github.com/iBuildiPawn/OSS-CYOPS-sub000/database"
	finding "github.com/iBuildiPawn/OSS-CYOPS-sub000/events/modules/findings"
	"github.com/iBuildiPawn/OSS-CYOPS-sub000/internal/api"
	"github.com/iBuildiPawn/OSS-CYOPS-sub000/internal/kafka"
	"github.com/iBuildiPawn/OSS-CYOPS-sub000/util"
)

func kafkaBrokers() []string {
	if env := os.Getenv("KAFKA_BROKERS"); env != "" {
		return strings.Split(env, ",")
	}
	return []string{"localhost:9092"}
}

func main() {
	// Initialize database connection
	db := database.InitializeDatabase()

	// Kafka is optional; without a broker the API runs standalone, finding
	// events stay unpublished and scan submissions arrive over REST only.
	if os.Getenv("KAFKA_DISABLED") != "true" {
		finding.InitProducer(kafkaBrokers(), util.GetEnvDefault("KAFKA_FINDING_TOPIC", "finding-status-events"))
		defer finding.CloseProducer()

		if err := kafka.RunEventProcessor(context.Background(), db); err != nil {
			log.Printf("Warning: Kafka event processor not started: %v", err)
		}
	}

	app := api.NewFiberApp(db)

	// Get port from environment or default to 3000
	port := os.Getenv("MS_PORT")
	if port == "" {
		port = "3000"
	}

	// Start server
	log.Printf("Starting server on port %s", port)
	log.Printf("GraphQL endpoint available at /api/v1/graphql")
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
