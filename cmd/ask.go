package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mimir-ai/mimir/internal/app"
)

var flagSources []string

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question with multi-source context",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().StringSliceVar(&flagSources, "sources", nil,
		"explicit data sources (overrides role-based selection)")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if flagUser == "" {
		return fmt.Errorf("--user is required")
	}

	question := strings.TrimSpace(strings.Join(args, " "))
	if question == "" {
		return fmt.Errorf("question cannot be empty")
	}

	return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
		answer, err := a.Engine.Answer(ctx, flagUser, flagRole, question, flagSources)
		if err != nil {
			return err
		}

		fmt.Println(answer.Response)
		fmt.Println()
		fmt.Printf("Sources: %s\n", strings.Join(answer.SourcesUsed, ", "))
		return nil
	})
}
