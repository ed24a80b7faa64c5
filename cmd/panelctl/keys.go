// AngelaMos | 2026
// keys.go

package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/carterperez-dev/templates/control-panel/internal/auth"
	"github.com/carterperez-dev/templates/control-panel/internal/core"
)

func keygenCmd() *cobra.Command {
	var privatePath, publicPath string

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate an ES256 signing key pair",
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := auth.GenerateKeyPair(privatePath, publicPath); err != nil {
				return err
			}
			slog.Info("key pair written", "private", privatePath, "public", publicPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&privatePath, "private", "keys/private.pem", "private key output path")
	cmd.Flags().StringVar(&publicPath, "public", "keys/public.pem", "public key output path")
	return cmd
}

func pruneTokensCmd() *cobra.Command {
	var grace time.Duration

	cmd := &cobra.Command{
		Use:   "prune-tokens",
		Short: "Delete refresh tokens that expired before the grace period",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDatabase(cmd.Context(), func(ctx context.Context, db *core.Database) error {
				n, err := auth.NewRepository(db.DB).DeleteExpired(ctx, grace)
				if err != nil {
					return err
				}
				slog.Info("expired refresh tokens deleted", "count", n)
				return nil
			})
		},
	}
	cmd.Flags().DurationVar(&grace, "grace", 24*time.Hour, "keep tokens expired for less than this")
	return cmd
}
