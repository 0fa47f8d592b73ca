package mcp

import (
	"github.com/henrikbykvist/fpl-feed-raakens-disipler/feed"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Server represents the MCP server for fplfeed
type Server struct {
	server *server.MCPServer
}

// NewServer creates a new MCP server instance whose tools read snapshots below root
func NewServer(root string) *Server {
	s := server.NewMCPServer("fplfeed", feed.Version)

	registerTools(s, root)

	return &Server{
		server: s,
	}
}

// Run starts the MCP server
func (s *Server) Run() error {
	return server.ServeStdio(s.server)
}

// registerTools registers all available tools with the MCP server
func registerTools(s *server.MCPServer, root string) {
	tools := InitTools(root)
	s.AddTools(tools...)
}

func newServerTool(tool mcp.Tool, handler server.ToolHandlerFunc) server.ServerTool {
	return server.ServerTool{
		Tool:    tool,
		Handler: handler,
	}
}
