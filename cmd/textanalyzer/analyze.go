package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	domain "github.com/bryanwahyu/text-analyzer/internal/domain/analysis"
)

func newAnalyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze [text]",
		Short: "Analyze text locally and print the statistics; reads stdin when no text is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var text string
			if len(args) == 1 {
				text = args[0]
			} else {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				text = string(data)
			}
			if domain.IsBlank(text) {
				return domain.ErrNoText()
			}
			return printJSON(cmd.OutOrStdout(), domain.Analyze(text))
		},
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
