// The mcpserver command serves the REST API as Model Context Protocol tools
// over stdio. Point it at a running backend with CYOPS_API_URL.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/iBuildiPawn/OSS-CYOPS-sub000/internal/mcp"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := mcp.Run(ctx); err != nil {
		log.Fatalf("MCP server exited: %v", err)
	}
}
