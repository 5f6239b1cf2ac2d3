package commands

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/marketplace-ledger/ledger-service/internal/app"
	"github.com/marketplace-ledger/ledger-service/internal/domain"
	apperrors "github.com/marketplace-ledger/ledger-service/pkg/util/errorutil"
)

// pay <job id>
func payCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pay <job id>",
		Short: "Pay an unpaid job on behalf of the contract's client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jobID, err := parseID("job id", args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			return withWire(ctx, func(w *app.Wire) error {
				identity, err := actingIdentity(ctx, w)
				if err != nil {
					return err
				}
				receipt, err := w.Payments.PayJob(ctx, identity, jobID)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), receipt)
			})
		},
	}
}

// deposit <client id> <amount>
func depositCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deposit <client id> <amount>",
		Short: "Deposit funds into a client balance",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientID, err := parseID("client id", args[0])
			if err != nil {
				return err
			}
			amount, err := domain.ParseMoney(args[1])
			if err != nil {
				return apperrors.NewInvalidAmount(err.Error())
			}
			ctx := cmd.Context()
			return withWire(ctx, func(w *app.Wire) error {
				identity, err := actingIdentity(ctx, w)
				if err != nil {
					return err
				}
				receipt, err := w.Deposits.Deposit(ctx, identity, clientID, amount)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), receipt)
			})
		},
	}
}

// owed <client id>
func owedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "owed <client id>",
		Short: "Show the unpaid total and current deposit cap for a client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientID, err := parseID("client id", args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			return withWire(ctx, func(w *app.Wire) error {
				identity, err := actingIdentity(ctx, w)
				if err != nil {
					return err
				}
				summary, err := w.Deposits.OwedAmount(ctx, identity, clientID)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), summary)
			})
		},
	}
}

func parseID(name, raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewInvalidArgument("invalid "+name, map[string]any{"value": raw})
	}
	return id, nil
}
