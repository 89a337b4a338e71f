package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mimir-ai/mimir/internal/app"
	"github.com/mimir-ai/mimir/internal/ingest"
)

var (
	flagSource   string
	flagDataType string
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Ingest content into a partition",
}

var addDocumentCmd = &cobra.Command{
	Use:   "document [file...]",
	Short: "Ingest text files into the user's document partition",
	Long: `Ingests one or more text files into the user's document partition.
Multiple files (for example pre-extracted PDF pages) are ingested as one
document set sharing the --source label, each chunk stamped with the
file it came from.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAddDocument,
}

var addKnowledgeCmd = &cobra.Command{
	Use:   "knowledge [file]",
	Short: "Ingest a text file into the shared knowledge base",
	Args:  cobra.ExactArgs(1),
	RunE:  runAddKnowledge,
}

var addRecordCmd = &cobra.Command{
	Use:   "record [file]",
	Short: "Ingest a JSON business record into the data mart",
	Args:  cobra.ExactArgs(1),
	RunE:  runAddRecord,
}

var addRoleContentCmd = &cobra.Command{
	Use:   "role-content [file]",
	Short: "Ingest a text file into the role's partition",
	Args:  cobra.ExactArgs(1),
	RunE:  runAddRoleContent,
}

func init() {
	addCmd.PersistentFlags().StringVar(&flagSource, "source", "manual", "source label stamped on ingested chunks")
	addRecordCmd.Flags().StringVar(&flagDataType, "type", "generic",
		"record type (business_metrics, user_analytics, gaming_data, or generic)")

	addCmd.AddCommand(addDocumentCmd, addKnowledgeCmd, addRecordCmd, addRoleContentCmd)
	rootCmd.AddCommand(addCmd)
}

func runAddDocument(cmd *cobra.Command, args []string) error {
	if flagUser == "" {
		return fmt.Errorf("--user is required")
	}

	docs := make([]ingest.Document, 0, len(args))
	for _, path := range args {
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		docs = append(docs, ingest.Document{
			Content:  string(content),
			Metadata: map[string]string{"file": filepath.Base(path)},
		})
	}

	return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
		var (
			n   int
			err error
		)
		if len(docs) == 1 {
			n, err = a.Engine.AddUserDocument(ctx, flagUser, flagSource, docs[0].Content)
		} else {
			n, err = a.Engine.AddUserDocuments(ctx, flagUser, flagSource, docs)
		}
		if err != nil {
			return err
		}
		fmt.Printf("Ingested %d chunks for user %s\n", n, flagUser)
		return nil
	})
}

func runAddKnowledge(cmd *cobra.Command, args []string) error {
	content, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
		n, err := a.Engine.AddKnowledge(ctx, flagSource, string(content))
		if err != nil {
			return err
		}
		fmt.Printf("Ingested %d chunks into the knowledge base\n", n)
		return nil
	})
}

func runAddRecord(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	var record map[string]any
	if err := json.Unmarshal(data, &record); err != nil {
		return fmt.Errorf("parsing %s: %w", args[0], err)
	}

	return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
		n, err := a.Engine.AddDataMartRecord(ctx, record, flagDataType)
		if err != nil {
			return err
		}
		fmt.Printf("Ingested %d chunks into the data mart\n", n)
		return nil
	})
}

func runAddRoleContent(cmd *cobra.Command, args []string) error {
	if flagRole == "" {
		return fmt.Errorf("--role is required")
	}
	content, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
		n, err := a.Engine.AddRoleContent(ctx, flagRole, flagSource, string(content))
		if err != nil {
			return err
		}
		fmt.Printf("Ingested %d chunks for role %s\n", n, flagRole)
		return nil
	})
}
