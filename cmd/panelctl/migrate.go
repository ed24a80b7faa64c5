// AngelaMos | 2026
// migrate.go

package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/carterperez-dev/templates/control-panel/internal/config"
	"github.com/carterperez-dev/templates/control-panel/internal/core"
	"github.com/carterperez-dev/templates/control-panel/migrations"
)

func migrateCmd() *cobra.Command {
	var down bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply embedded database migrations",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runMigrate(down)
		},
	}
	cmd.Flags().BoolVar(&down, "down", false, "roll back every migration")
	return cmd
}

func runMigrate(down bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	slog.SetDefault(core.NewLogger(cfg.Log))

	slog.Info("running migrations", "down", down)

	version, dirty, err := migrations.Run(cfg.Database.URL, down)
	if err != nil {
		return err
	}

	slog.Info("migrations complete", "version", version, "dirty", dirty)
	return nil
}
