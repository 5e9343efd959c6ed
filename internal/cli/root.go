// Package cli implements brandctl, the operator CLI for running ingestion, profile
// rebuilds and prompt assembly outside the HTTP server.
package cli

import (
	"context"
	"os"

	"github.com/akolanti/BrandVoice/internal/app"
	"github.com/akolanti/BrandVoice/internal/config"
	"github.com/akolanti/BrandVoice/internal/domain/commonModels"
	"github.com/akolanti/BrandVoice/internal/mcpserver"
	"github.com/akolanti/BrandVoice/internal/rag"
	"github.com/akolanti/BrandVoice/pkg/logger_i"
	"github.com/spf13/cobra"
)

// Services is what the commands run against.
type Services struct {
	Rag       rag.Service
	Documents commonModels.DocumentStore
	Assembler mcpserver.Assembler
}

var (
	configPath string
	services   *Services

	// replaced in tests
	newServices = func(ctx context.Context, settings config.Settings) (*Services, error) {
		a, err := app.Build(ctx, settings)
		if err != nil {
			return nil, err
		}
		return &Services{Rag: a.Rag, Documents: a.Store, Assembler: a.Assembler}, nil
	}
)

var rootCmd = &cobra.Command{
	Use:          "brandctl",
	Short:        "Operate the BrandVoice core from the command line",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		settings, err := config.Load(configPath)
		// stdout carries command output and the MCP stdio stream
		logger_i.InitWithWriter(os.Stderr, settings.Server.Production)
		if err != nil {
			return err
		}
		services, err = newServices(cmd.Context(), settings)
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
}

func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
