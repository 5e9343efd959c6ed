package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	assembleWords int
	assembleJSON  bool
)

var assembleCmd = &cobra.Command{
	Use:   "assemble [brand-id] [prompt]",
	Short: "Print the prompt that generation would send for a brand",
	Args:  cobra.ExactArgs(2),
	RunE:  runAssemble,
}

func init() {
	assembleCmd.Flags().IntVarP(&assembleWords, "words", "w", 0, "target word count (default 150)")
	assembleCmd.Flags().BoolVar(&assembleJSON, "json", false, "print the assembled prompt as JSON")
	rootCmd.AddCommand(assembleCmd)
}

func runAssemble(cmd *cobra.Command, args []string) error {
	p, err := services.Assembler.Assemble(cmd.Context(), args[0], args[1], assembleWords)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if assembleJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	}
	fmt.Fprintf(out, "== system ==\n%s\n\n== user ==\n%s\n", p.SystemPrompt, p.UserPrompt)
	if len(p.Sources) > 0 {
		fmt.Fprintf(out, "\n== sources ==\n%s\n", strings.Join(p.Sources, "\n"))
	}
	return nil
}
