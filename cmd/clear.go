package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mimir-ai/mimir/internal/app"
	"github.com/mimir-ai/mimir/internal/rag"
)

var clearCmd = &cobra.Command{
	Use:   "clear [source]",
	Short: "Remove all documents from one partition",
	Long: `Removes every document from the named partition. The collection
itself stays registered and immediately usable.

Sources: user_documents, common_knowledge, data_mart, role_specific,
conversation_history. Per-user partitions require --user; role_specific
requires --role.`,
	Args: cobra.ExactArgs(1),
	RunE: runClear,
}

func init() {
	rootCmd.AddCommand(clearCmd)
}

func runClear(cmd *cobra.Command, args []string) error {
	src, err := rag.ParseSourceType(args[0])
	if err != nil {
		return err
	}

	owner, ok := ownerFor(src)
	if !ok {
		return fmt.Errorf("source %s requires --user or --role", src)
	}

	return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
		if err := a.Engine.Clear(ctx, src, owner); err != nil {
			return err
		}
		fmt.Printf("Cleared %s\n", src)
		return nil
	})
}
