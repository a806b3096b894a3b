package mcp

import (
	"context"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"

	"github.com/eamoe/jira-flow-metrics/internal/config"
	"github.com/eamoe/jira-flow-metrics/internal/dataset"
	"github.com/eamoe/jira-flow-metrics/internal/workitem"
)

// Server exposes the flow metric views as MCP tools over stdio. Every tool
// works against a dataset file; a path preloaded at startup serves as the
// default so callers can omit it.
type Server struct {
	workflow    *config.Workflow
	version     string
	preloaded   []*workitem.WorkItem
	preloadPath string
}

func NewServer(workflow *config.Workflow, version string) *Server {
	return &Server{workflow: workflow, version: version}
}

// Preload reads a dataset once at startup so tool calls can omit the
// dataset argument.
func (s *Server) Preload(path string) error {
	items, _, err := dataset.Read(path)
	if err != nil {
		return err
	}
	s.preloaded = items
	s.preloadPath = path
	return nil
}

// Run serves tool calls until the context ends or the client hangs up.
// Tool failures surface as tool errors; the process stays up.
func (s *Server) Run(ctx context.Context) error {
	server := sdk.NewServer(&sdk.Implementation{Name: "jira-flow-metrics", Version: s.version}, nil)
	s.register(server)
	log.Info().Str("dataset", s.preloadPath).Msg("MCP server listening on stdio")
	return server.Run(ctx, &sdk.StdioTransport{})
}
