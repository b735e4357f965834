package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Veraticus/autocategorize/internal/cli"
	"github.com/Veraticus/autocategorize/internal/model"
	"github.com/Veraticus/autocategorize/internal/ofx"
	"github.com/Veraticus/autocategorize/internal/storage"
)

// batchResult is the JSON shape of one classify-ofx row.
type batchResult struct {
	Transaction model.Transaction `json:"transaction"`
	Category    *string           `json:"category"`
	Error       string            `json:"error,omitempty"`
	Response    string            `json:"response"`
}

func classifyOFXCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify-ofx [files...]",
		Short: "Suggest categories for every transaction in OFX/QFX files",
		Long: `Parse OFX or QFX statements exported from your bank and ask the configured
LLM to categorize each transaction.

Examples:
  # Classify a single statement
  autocat classify-ofx ~/Downloads/chase_jan_2024.qfx -c Groceries -c Dining -c Transport

  # Classify several statements with categories from a file
  autocat classify-ofx ~/Downloads/*.qfx --categories-file ~/categories.txt`,
		Args: cobra.MinimumNArgs(1),
		RunE: runClassifyOFX,
	}

	addCategoryFlags(cmd)
	cmd.Flags().Int("limit", 0, "classify at most this many transactions (0 = all)")
	cmd.Flags().StringP("output", "o", outputText, "output format (text, json)")
	cmd.Flags().Bool("no-progress", false, "hide the progress bar")

	return cmd
}

func runClassifyOFX(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	categories, err := readCategories(cmd)
	if err != nil {
		return err
	}

	limit, _ := cmd.Flags().GetInt("limit")
	output, _ := cmd.Flags().GetString("output")
	noProgress, _ := cmd.Flags().GetBool("no-progress")
	if output != outputText && output != outputJSON {
		return fmt.Errorf("unknown output format %q", output)
	}

	files, err := expandFiles(args)
	if err != nil {
		return err
	}

	txs, err := loadStatements(ctx, ofx.NewParser(slog.Default()), files)
	if err != nil {
		return err
	}
	if limit > 0 && len(txs) > limit {
		txs = txs[:limit]
	}
	if len(txs) == 0 {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), cli.Styled(cli.ToneInfo, "No transactions found"))
		return err
	}

	classifier, err := newClassifier()
	if err != nil {
		return err
	}

	store, err := openJournal(ctx, cmd)
	if err != nil {
		return err
	}
	var j journal
	if store != nil {
		defer func() { _ = store.Close() }()
		j = store
	}

	interrupts := cli.NewInterruptHandler(cmd.ErrOrStderr())
	ctx = interrupts.HandleInterrupts(ctx, j != nil)

	progress := cli.NewProgress(cmd.ErrOrStderr(), len(txs), !noProgress && output == outputText)

	slog.Info("Classifying transactions",
		"count", len(txs),
		"categories", len(categories),
		"provider", classifier.Provider())

	rows := cli.RunBatch(ctx, classifier, categories, txs, progress, journalRecorder(j, classifier.Provider()))

	if interrupts.WasInterrupted() {
		notice := fmt.Sprintf("Showing %d of %d transactions; the rest were not classified", len(rows), len(txs))
		if _, err := fmt.Fprintln(cmd.ErrOrStderr(), cli.Styled(cli.ToneNoMatch, notice)); err != nil {
			slog.Warn("Failed to write interrupt notice", "error", err)
		}
	}

	return writeBatch(cmd.OutOrStdout(), rows, output)
}

// expandFiles resolves globs; plain paths that exist are kept as-is.
func expandFiles(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			if _, err := os.Stat(pattern); err == nil {
				files = append(files, pattern)
			} else {
				slog.Warn("No files found matching pattern", "pattern", pattern)
			}
			continue
		}
		files = append(files, matches...)
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no files found to classify")
	}
	return files, nil
}

// loadStatements parses every file and drops transactions repeated across
// overlapping statements.
func loadStatements(ctx context.Context, parser *ofx.Parser, files []string) ([]model.Transaction, error) {
	var all []model.Transaction
	seen := make(map[string]bool)

	for _, path := range files {
		txs, err := parseStatement(ctx, parser, path)
		if err != nil {
			return nil, err
		}

		added := 0
		for _, tx := range txs {
			fp := tx.Fingerprint()
			if seen[fp] {
				continue
			}
			seen[fp] = true
			all = append(all, tx)
			added++
		}
		slog.Debug("Loaded statement", "file", filepath.Base(path), "transactions", len(txs), "new", added)
	}
	return all, nil
}

func parseStatement(ctx context.Context, parser *ofx.Parser, path string) ([]model.Transaction, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	txs, err := parser.ParseFile(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return txs, nil
}

func journalRecorder(j journal, provider string) cli.RecordFunc {
	if j == nil {
		return nil
	}
	return func(ctx context.Context, row cli.BatchRow) {
		entry := storage.NewEntry(provider, row.Transaction, row.Result, row.Err)
		if err := j.SaveEntry(context.WithoutCancel(ctx), entry); err != nil {
			slog.Warn("Failed to record classification", "error", err)
		}
	}
}

func writeBatch(w io.Writer, rows []cli.BatchRow, output string) error {
	if output == outputText {
		return cli.RenderSummary(w, rows)
	}

	results := make([]batchResult, 0, len(rows))
	for _, row := range rows {
		r := batchResult{
			Transaction: row.Transaction,
			Category:    row.Result.Category,
			Response:    row.Result.Response,
		}
		if row.Err != nil {
			r.Error = row.Err.Error()
		}
		results = append(results, r)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}
