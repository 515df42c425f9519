package mcptools

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/stephenrodrick/Carbon-Footprint-Calculator/internal/footprint"
)

// ServerName is reported to MCP clients during initialization.
const ServerName = "carbon-footprint"

// NewServer creates an MCP server with every footprint tool registered.
func NewServer(svc *footprint.Service, version string, logger zerolog.Logger) *server.MCPServer {
	srv := server.NewMCPServer(
		ServerName,
		version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	registry := NewRegistry(svc, logger)
	for _, def := range registry.Definitions() {
		srv.AddTool(def.Tool, server.ToolHandlerFunc(def.Handler))
	}
	logger.Info().
		Str("name", ServerName).
		Str("version", version).
		Int("tools", len(registry.Definitions())).
		Msg("MCP server initialized")
	return srv
}

// ServeStdio serves srv on stdin and stdout until stdin closes.
func ServeStdio(srv *server.MCPServer) error {
	return server.ServeStdio(srv)
}
