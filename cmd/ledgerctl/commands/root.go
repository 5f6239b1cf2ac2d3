package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/marketplace-ledger/ledger-service/internal/app"
	"github.com/marketplace-ledger/ledger-service/internal/config"
	"github.com/marketplace-ledger/ledger-service/internal/domain"
	"github.com/marketplace-ledger/ledger-service/internal/observability"
)

var (
	cfg    *config.Config
	logger *zap.Logger

	asProfile int64
)

// Execute runs the ledgerctl root command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "ledgerctl",
		Short:        "Operate the marketplace ledger from the command line",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load()
			if err != nil {
				return err
			}
			cfg = loaded
			logger, err = observability.NewLogger(cfg.Logger)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	root.PersistentFlags().Int64Var(&asProfile, "as", 0, "profile id to act as")

	root.AddCommand(
		migrateCmd(),
		tokenCmd(),
		payCmd(),
		depositCmd(),
		owedCmd(),
		bestProfessionCmd(),
		bestClientsCmd(),
	)
	return root
}

// withWire opens the dependency graph for the lifetime of fn.
func withWire(ctx context.Context, fn func(w *app.Wire) error) error {
	w, err := app.NewWire(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer w.Close()
	return fn(w)
}

// actingIdentity resolves --as into an identity using the stored profile type.
func actingIdentity(ctx context.Context, w *app.Wire) (domain.Identity, error) {
	if asProfile <= 0 {
		return domain.Identity{}, fmt.Errorf("--as <profile id> is required")
	}
	profile, err := w.Store.Profiles().GetByID(ctx, asProfile)
	if err != nil {
		return domain.Identity{}, err
	}
	return domain.Identity{ProfileID: profile.ID, Type: profile.Type}, nil
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
