package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/autocategorize/internal/cli"
	"github.com/Veraticus/autocategorize/internal/config"
	"github.com/Veraticus/autocategorize/internal/model"
	"github.com/Veraticus/autocategorize/internal/storage"
)

// journalReader is the read side of the journal.
type journalReader interface {
	GetEntry(ctx context.Context, id string) (*model.JournalEntry, error)
	ListEntries(ctx context.Context, limit int) ([]*model.JournalEntry, error)
}

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [id]",
		Short: "List recent classifications from the journal",
		Long: `List recent classifications, newest first. Pass an entry ID (or the
short prefix shown in the listing) to see its prompt and model response.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			limit, _ := cmd.Flags().GetInt("limit")
			output, _ := cmd.Flags().GetString("output")

			store, err := storage.NewSQLiteStorage(config.DatabasePath(viper.GetViper()))
			if err != nil {
				return fmt.Errorf("failed to open journal: %w", err)
			}
			defer func() { _ = store.Close() }()

			if err := store.Migrate(ctx); err != nil {
				return fmt.Errorf("failed to migrate journal: %w", err)
			}

			var id string
			if len(args) == 1 {
				id = args[0]
			}
			return runHistory(ctx, cmd.OutOrStdout(), store, id, limit, output)
		},
	}

	cmd.Flags().IntP("limit", "n", storage.DefaultListLimit, "number of entries to show")
	cmd.Flags().StringP("output", "o", outputText, "output format (text, json)")

	return cmd
}

func runHistory(ctx context.Context, w io.Writer, reader journalReader, id string, limit int, output string) error {
	if id != "" {
		entry, err := reader.GetEntry(ctx, id)
		if err != nil {
			return err
		}
		if output == outputJSON {
			return encodeJSON(w, entry)
		}
		return cli.RenderEntry(w, entry)
	}

	entries, err := reader.ListEntries(ctx, limit)
	if err != nil {
		return err
	}
	if output == outputJSON {
		return encodeJSON(w, entries)
	}
	return cli.RenderHistory(w, entries)
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
