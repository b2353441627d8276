package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/iBuildiPawn/OSS-CYOPS-sub000/util"
)

// Version is stamped at build time.
var Version = "dev"

// NewServer builds the stdio MCP server with every tool registered against
// the configured API base URL.
func NewServer() *mcp.Server {
	baseURL := util.GetEnvDefault("CYOPS_API_URL", "http://localhost:3000/api/v1")
	actorID := util.GetEnvDefault("CYOPS_MCP_ACTOR", "mcp-assistant")

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "cyops-mcp",
		Version: Version,
	}, nil)

	RegisterTools(server, NewAPIClient(baseURL, actorID))
	return server
}

// Run serves MCP over stdio until the context is cancelled or the client
// disconnects.
func Run(ctx context.Context) error {
	return NewServer().Run(ctx, &mcp.StdioTransport{})
}
