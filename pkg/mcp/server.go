package mcp

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/urmzd/hubpanel/pkg/panel"
)

// Server exposes a panel's screens and actions as MCP tools
type Server struct {
	mcpServer *server.MCPServer
	panel     *panel.Panel
}

// NewServer creates a new MCP server driving p
func NewServer(p *panel.Panel) *Server {
	s := &Server{panel: p}

	s.mcpServer = server.NewMCPServer(
		"hubpanel",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	s.registerTools()

	return s
}

// ServeStdio starts the MCP server using stdio transport
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
