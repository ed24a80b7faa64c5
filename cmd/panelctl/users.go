// AngelaMos | 2026
// users.go

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/carterperez-dev/templates/control-panel/internal/access"
	"github.com/carterperez-dev/templates/control-panel/internal/core"
	"github.com/carterperez-dev/templates/control-panel/internal/user"
)

func seedCmd() *cobra.Command {
	var (
		password string
		domain   string
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create one test account per role",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if len(password) < 8 {
				return errors.New("--password must be at least 8 characters")
			}

			hash, err := core.HashPassword(password)
			if err != nil {
				return err
			}

			return withDatabase(cmd.Context(), func(ctx context.Context, db *core.Database) error {
				return db.InTx(ctx, func(tx core.DBTX) error {
					users, err := user.SeedUsers(ctx, user.NewRepository(tx), domain, hash)
					if err != nil {
						return err
					}
					for _, u := range users {
						slog.Info("seeded user", "id", u.ID, "email", u.Email, "role", u.Role)
					}
					return nil
				})
			})
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "password for every seeded account")
	cmd.Flags().StringVar(&domain, "domain", "seed.local", "email domain for seeded accounts")
	_ = cmd.MarkFlagRequired("password") //nolint:errcheck
	return cmd
}

func promoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "promote <user-id> <role>",
		Short: "Assign a role and reset permissions to its defaults",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			role, ok := access.ParseRole(args[1])
			if !ok {
				return fmt.Errorf("unknown role %q", args[1])
			}

			return withDatabase(cmd.Context(), func(ctx context.Context, db *core.Database) error {
				repo := user.NewRepository(db.DB)
				if err := repo.UpdateRole(ctx, args[0], role, access.DefaultPermissions(role)); err != nil {
					return err
				}
				slog.Info("role updated", "user_id", args[0], "role", role)
				return nil
			})
		},
	}
}

func suspendCmd() *cobra.Command {
	var lift bool

	cmd := &cobra.Command{
		Use:   "suspend <user-id>",
		Short: "Suspend an account or lift a suspension",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(cmd.Context(), func(ctx context.Context, db *core.Database) error {
				repo := user.NewRepository(db.DB)
				if err := repo.SetSuspended(ctx, args[0], !lift); err != nil {
					return err
				}
				slog.Info("suspension updated", "user_id", args[0], "suspended", !lift)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&lift, "lift", false, "lift an existing suspension")
	return cmd
}

func withDatabase(
	ctx context.Context,
	fn func(ctx context.Context, db *core.Database) error,
) error {
	if ctx == nil {
		ctx = context.Background()
	}

	_, db, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck

	return fn(ctx, db)
}
