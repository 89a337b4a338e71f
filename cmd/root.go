// Package cmd implements the mimir command-line interface.
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mimir-ai/mimir/internal/app"
	"github.com/mimir-ai/mimir/internal/config"
)

var (
	flagUser string
	flagRole string
)

var rootCmd = &cobra.Command{
	Use:   "mimir",
	Short: "Mimir - multi-source context fusion assistant",
	Long: `Mimir answers questions by fusing context from multiple sources:
user documents, a shared knowledge base, business data, role-specific
guidance, and prior conversation turns. Which sources are consulted
follows from the user's role.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagUser, "user", "", "user identifier")
	rootCmd.PersistentFlags().StringVar(&flagRole, "role", "", "user role (e.g. Analyst-Gaming, Leadership-Non-Gaming)")
}

// withApp loads configuration, builds the application, runs fn, and
// tears everything down. Shared by every subcommand that needs the
// engine.
func withApp(ctx context.Context, fn func(ctx context.Context, a *app.App) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	a, err := app.Setup(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer func() { _ = a.Close() }()

	return fn(ctx, a)
}
