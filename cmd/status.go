package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mimir-ai/mimir/internal/app"
	"github.com/mimir-ai/mimir/internal/rag"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show document counts for each collection",
	Long: `Shows the collection name and document count for every partition
kind. Per-user partitions require --user; role-specific partitions
require --role. Kinds whose owner flag is missing are skipped.`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
		for _, src := range rag.AllSources() {
			owner, ok := ownerFor(src)
			if !ok {
				continue
			}

			statuses, err := a.Engine.Status(ctx, []rag.SourceType{src}, owner)
			if err != nil {
				return err
			}
			for _, st := range statuses {
				fmt.Printf("%-22s %-40s %d documents\n", st.Source, st.Collection, st.Documents)
			}
		}
		return nil
	})
}

// ownerFor maps a partition kind to its owner flag. Reports false when
// the required flag was not given.
func ownerFor(src rag.SourceType) (string, bool) {
	switch src {
	case rag.SourceUserDocuments, rag.SourceConversationHistory:
		return flagUser, flagUser != ""
	case rag.SourceRoleSpecific:
		return flagRole, flagRole != ""
	default:
		return "", true
	}
}
