package api

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/iBuildiPawn/OSS-CYOPS-sub000/database"
	"github.com/iBuildiPawn/OSS-CYOPS-sub000/graphql"
	"github.com/iBuildiPawn/OSS-CYOPS-sub000/restapi"
)

// NewFiberApp creates and configures a Fiber app with REST and GraphQL routes
func NewFiberApp(db database.DBConnection) *fiber.App {
	// Initialize GraphQL schema
	graphql.InitDB(db)
	schema, err := graphql.CreateSchema()
	if err != nil {
		log.Fatalf("Failed to create GraphQL schema: %v", err)
	}

	app := fiber.New(fiber.Config{
		AppName:     "cyops-backend API v1.0",
		BodyLimit:   50 * 1024 * 1024, // 50MB; scan exports for large host sets run big
		ReadTimeout: 60 * time.Second, // seconds
	})

	// Middleware
	app.Use(fiberrecover.New())
	app.Use(compress.New(compress.Config{Level: compress.LevelBestSpeed}))

	// CORS Configuration; the dashboard UI origin list is env-driven so staging
	// and production deployments differ only in configuration
	app.Use(cors.New(cors.Config{
		AllowOrigins:     database.GetEnvDefault("CORS_ORIGINS", "http://localhost:3000,http://localhost:4000,http://127.0.0.1:3000,http://127.0.0.1:4000"),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Actor-Id",
		AllowCredentials: true,
		AllowMethods:     "GET, POST, HEAD, PUT, DELETE, PATCH, OPTIONS",
	}))

	// The GraphQL handler overwrites graphql_op with the operation name, so
	// dashboard queries are tellable apart in the access log. The actor header
	// is logged because status transitions are attributed to it.
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("graphql_op", "-")
		return c.Next()
	})
	app.Use(logger.New(logger.Config{
		Format: "${time} | ${status} | ${latency} | ${method} ${path} | op=${locals:graphql_op} actor=${reqHeader:X-Actor-Id}\n",
	}))

	// Health check endpoint
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy", "service": "cyops-backend"})
	})

	// Setup REST and GraphQL routes (Pass the schema here)
	restapi.SetupRoutes(app, db, schema)

	return app
}
