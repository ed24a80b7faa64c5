// AngelaMos | 2026
// main.go

// Command panelctl runs operator tasks against the control panel database.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/carterperez-dev/templates/control-panel/internal/config"
	"github.com/carterperez-dev/templates/control-panel/internal/core"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:           "panelctl",
		Short:         "Control panel operator tooling",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to config file")

	root.AddCommand(
		migrateCmd(),
		seedCmd(),
		promoteCmd(),
		suspendCmd(),
		keygenCmd(),
		pruneTokensCmd(),
	)

	if err := root.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

// openDatabase loads config and connects, installing the configured logger.
func openDatabase(ctx context.Context) (*config.Config, *core.Database, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	slog.SetDefault(core.NewLogger(cfg.Log))

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}
