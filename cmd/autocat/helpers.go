package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/autocategorize/internal/common"
	"github.com/Veraticus/autocategorize/internal/config"
	"github.com/Veraticus/autocategorize/internal/llm"
	"github.com/Veraticus/autocategorize/internal/storage"
)

// addCategoryFlags registers the flags shared by the classify commands.
func addCategoryFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceP("category", "c", nil, "candidate category (repeatable or comma separated)")
	cmd.Flags().String("categories-file", "", "file with one candidate category per line")
	cmd.Flags().Bool("no-journal", false, "do not record results in the journal")
}

// readCategories collects categories from --category and --categories-file.
func readCategories(cmd *cobra.Command) ([]string, error) {
	categories, _ := cmd.Flags().GetStringSlice("category")

	if path, _ := cmd.Flags().GetString("categories-file"); path != "" {
		file, err := os.Open(config.ExpandPath(path))
		if err != nil {
			return nil, fmt.Errorf("failed to open categories file: %w", err)
		}
		defer func() { _ = file.Close() }()

		fromFile, err := parseCategoryLines(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read categories file: %w", err)
		}
		categories = append(categories, fromFile...)
	}

	categories = normalizeCategories(categories)
	if len(categories) == 0 {
		return nil, common.NewUserError("at least one --category is required", common.ErrNoCategories)
	}
	return categories, nil
}

func parseCategoryLines(r io.Reader) ([]string, error) {
	var categories []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		categories = append(categories, line)
	}
	return categories, scanner.Err()
}

// normalizeCategories trims names and drops blanks and repeats, keeping order.
func normalizeCategories(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, c := range in {
		c = strings.TrimSpace(c)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

func newClassifier(opts ...llm.Option) (llm.Classifier, error) {
	cfg, err := config.LLM(viper.GetViper())
	if err != nil {
		return nil, common.NewUserError("invalid LLM configuration", err)
	}
	classifier := llm.NewClassifier(cfg, opts...)
	slog.Debug("Using LLM provider", "provider", classifier.Provider(), "timeout", cfg.Timeout)
	return classifier, nil
}

// openJournal opens and migrates the journal database, or returns nil when
// --no-journal is set.
func openJournal(ctx context.Context, cmd *cobra.Command) (*storage.SQLiteStorage, error) {
	if skip, _ := cmd.Flags().GetBool("no-journal"); skip {
		return nil, nil
	}

	store, err := storage.NewSQLiteStorage(config.DatabasePath(viper.GetViper()))
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to migrate journal: %w", err)
	}

	return store, nil
}
