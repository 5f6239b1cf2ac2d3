package commands

import (
	"github.com/spf13/cobra"

	"github.com/marketplace-ledger/ledger-service/internal/app"
	"github.com/marketplace-ledger/ledger-service/internal/service"
)

var (
	windowStart string
	windowEnd   string
	clientLimit string
)

func bindWindowFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&windowStart, "start", "", "window start (RFC3339 or YYYY-MM-DD); omit with --end for all time")
	cmd.Flags().StringVar(&windowEnd, "end", "", "window end (RFC3339 or YYYY-MM-DD)")
}

func bestProfessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "best-profession",
		Short: "Show the profession that earned the most in a window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			window, err := service.ParseWindow(windowStart, windowEnd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			return withWire(ctx, func(w *app.Wire) error {
				result, err := w.Earnings.BestProfession(ctx, window)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), result)
			})
		},
	}
	bindWindowFlags(cmd)
	return cmd
}

func bestClientsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "best-clients",
		Short: "List the clients that paid the most in a window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			window, err := service.ParseWindow(windowStart, windowEnd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			return withWire(ctx, func(w *app.Wire) error {
				limit, err := service.ParseLimit(clientLimit, w.Earnings.DefaultLimit())
				if err != nil {
					return err
				}
				result, err := w.Earnings.BestClients(ctx, window, limit)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), result)
			})
		},
	}
	bindWindowFlags(cmd)
	cmd.Flags().StringVar(&clientLimit, "limit", "", "maximum number of clients (default from LEDGER_BEST_CLIENTS_DEFAULT_LIMIT)")
	return cmd
}
