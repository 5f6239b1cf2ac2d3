package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/marketplace-ledger/ledger-service/internal/app"
)

// token --as <id>: mint a bearer token for an existing profile.
func tokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "Issue an access token for the profile given by --as",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withWire(ctx, func(w *app.Wire) error {
				identity, err := actingIdentity(ctx, w)
				if err != nil {
					return err
				}
				token, expiresAt, err := w.Tokens.GenerateToken(identity.ProfileID, identity.Type)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"access_token": token,
					"token_type":   "Bearer",
					"expires_at":   expiresAt.Format(time.RFC3339),
				})
			})
		},
	}
}
