package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/localrivet/gomcp/server"
	"github.com/rs/zerolog/log"

	"github.com/medkit/medkit/internal/registry"
)

// Server bridges the tool registry onto MCP transports.
type Server struct {
	srv server.Server
}

// NewServer registers every tool in the registry on a fresh MCP server.
// Arguments arrive as a generic object and are re-marshalled into the raw
// JSON form the registry handlers expect.
func NewServer(name string, reg *registry.Registry) *Server {
	srv := server.NewServer(name)
	for _, tool := range reg.Tools() {
		handler := tool.Handler
		toolName := tool.Name
		srv = srv.Tool(tool.Name, tool.Description,
			func(_ *server.Context, req map[string]interface{}) (interface{}, error) {
				raw, err := json.Marshal(req)
				if err != nil {
					return nil, fmt.Errorf("marshal args for %s: %w", toolName, err)
				}
				return handler(context.Background(), raw)
			})
	}
	return &Server{srv: srv}
}

// RunStdio serves MCP over stdin/stdout and blocks until stdin closes.
func (s *Server) RunStdio() error {
	log.Info().Msg("mcp server listening on stdio")
	return s.srv.AsStdio().Run()
}

// RunSSE serves MCP over server-sent events on the given address and blocks.
func (s *Server) RunSSE(addr string) error {
	log.Info().Str("addr", addr).Msg("mcp server listening on sse")
	return s.srv.AsSSE(addr).Run()
}
