package cli

import (
	"github.com/akolanti/BrandVoice/internal/mcpserver"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve brand retrieval tools over stdio",
	Long: `Starts a Model Context Protocol server on stdin/stdout exposing the tools
retrieve_brand_context and document_status. Logs go to stderr.`,
	RunE: runMCPServe,
}

func init() {
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	server, err := mcpserver.NewServer(mcpserver.Ports{
		Assembler: services.Assembler,
		Documents: services.Documents,
	})
	if err != nil {
		return err
	}
	return server.Run(cmd.Context())
}
