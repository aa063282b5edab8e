package main

import (
	"github.com/spf13/cobra"

	appanalysis "github.com/bryanwahyu/text-analyzer/internal/application/analysis"
	domain "github.com/bryanwahyu/text-analyzer/internal/domain/analysis"
	"github.com/bryanwahyu/text-analyzer/internal/infra/persistence"
)

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print the most recent analyses from the configured store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			logger := newLogger(cfg.Log, cmd.ErrOrStderr())
			ctx := logger.WithContext(cmd.Context())

			provider := persistence.NewProvider(cfg.Persistence)
			defer provider.Close()

			list, err := appanalysis.NewService(provider).Recent(ctx, limit)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), struct {
				Count   int              `json:"count"`
				Results []*domain.Record `json:"results"`
			}{len(list), list})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", domain.DefaultLimit, "Number of records to print (1-100)")
	return cmd
}
