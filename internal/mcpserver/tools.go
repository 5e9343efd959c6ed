package mcpserver

import (
	"context"

	"github.com/akolanti/BrandVoice/internal/domain/commonModels"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type RetrieveInput struct {
	BrandId   string `json:"brand_id" jsonschema:"the brand whose sources should ground the draft"`
	Prompt    string `json:"prompt" jsonschema:"what the assistant is about to write"`
	WordCount int    `json:"word_count,omitempty" jsonschema:"target length in words (default 150)"`
}

type RetrieveOutput struct {
	SystemPrompt string   `json:"system_prompt"`
	Context      string   `json:"context"`
	Sources      []string `json:"sources"`
}

type StatusInput struct {
	DocumentId string `json:"document_id" jsonschema:"the document to look up"`
}

type StatusOutput struct {
	Id         string `json:"id"`
	BrandId    string `json:"brand_id"`
	Status     string `json:"status"`
	ChunkCount int    `json:"chunk_count"`
	LastError  string `json:"last_error,omitempty"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "retrieve_brand_context",
		Description: "Retrieve brand voice instructions and the most relevant source passages for a prompt",
	}, s.handleRetrieve)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "document_status",
		Description: "Report the ingestion status of a brand source document",
	}, s.handleStatus)
}

func (s *Server) handleRetrieve(ctx context.Context, _ *mcp.CallToolRequest, input RetrieveInput) (*mcp.CallToolResult, RetrieveOutput, error) {
	p, err := s.ports.Assembler.Assemble(ctx, input.BrandId, input.Prompt, input.WordCount)
	if err != nil {
		s.logger.Warn("retrieve_brand_context failed", "brandId", input.BrandId, "error", err)
		return nil, RetrieveOutput{}, err
	}
	sources := p.Sources
	if sources == nil {
		sources = []string{}
	}
	return nil, RetrieveOutput{SystemPrompt: p.SystemPrompt, Context: p.Context, Sources: sources}, nil
}

func (s *Server) handleStatus(ctx context.Context, _ *mcp.CallToolRequest, input StatusInput) (*mcp.CallToolResult, StatusOutput, error) {
	doc, err := s.ports.Documents.GetDocument(ctx, input.DocumentId)
	if err != nil {
		return nil, StatusOutput{}, err
	}
	return nil, toStatus(doc), nil
}

func toStatus(doc commonModels.Document) StatusOutput {
	return StatusOutput{
		Id:         doc.Id,
		BrandId:    doc.BrandId,
		Status:     string(doc.Status),
		ChunkCount: doc.ChunkCount,
		LastError:  doc.LastError,
	}
}
