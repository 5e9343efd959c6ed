// Package mcpserver exposes brand retrieval and ingestion status as MCP tools so
// assistants can ground their own drafts on a brand's sources.
package mcpserver

import (
	"context"
	"errors"

	"github.com/akolanti/BrandVoice/internal/domain/commonModels"
	"github.com/akolanti/BrandVoice/internal/rag/prompt"
	"github.com/akolanti/BrandVoice/pkg/logger_i"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const Version = "0.1.0"

var ErrMissingPorts = errors.New("mcp server needs an assembler and a document store")

type Assembler interface {
	Assemble(ctx context.Context, brandId, userPrompt string, wordCountTarget int) (prompt.Prompt, error)
}

type Ports struct {
	Assembler Assembler
	Documents commonModels.DocumentStore
}

type Server struct {
	ports  Ports
	server *mcp.Server
	logger *logger_i.Logger
}

func NewServer(ports Ports) (*Server, error) {
	if ports.Assembler == nil || ports.Documents == nil {
		return nil, ErrMissingPorts
	}
	s := &Server{
		ports:  ports,
		server: mcp.NewServer(&mcp.Implementation{Name: "brandvoice", Version: Version}, nil),
		logger: logger_i.NewLogger("mcp_server"),
	}
	s.registerTools()
	return s, nil
}

// Run serves over stdio until ctx is cancelled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("MCP server started on stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}
