package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/Veraticus/autocategorize/internal/cli"
	"github.com/Veraticus/autocategorize/internal/common"
	"github.com/Veraticus/autocategorize/internal/config"
	"github.com/Veraticus/autocategorize/internal/llm"
	"github.com/Veraticus/autocategorize/internal/model"
	"github.com/Veraticus/autocategorize/internal/storage"
)

const (
	outputText = "text"
	outputJSON = "json"
)

// journal records classify calls.
type journal interface {
	SaveEntry(ctx context.Context, entry *model.JournalEntry) error
}

// transactionFlags maps flag names onto transaction fields.
var transactionFlags = []struct {
	field func(*model.Transaction) *string
	name  string
	usage string
}{
	{name: "description", usage: "transaction description", field: func(t *model.Transaction) *string { return &t.Description }},
	{name: "destination", usage: "destination (payee) name", field: func(t *model.Transaction) *string { return &t.DestinationName }},
	{name: "source", usage: "source account name", field: func(t *model.Transaction) *string { return &t.SourceName }},
	{name: "currency", usage: "currency code", field: func(t *model.Transaction) *string { return &t.CurrencyCode }},
	{name: "date", usage: "transaction date", field: func(t *model.Transaction) *string { return &t.Date }},
	{name: "budget", usage: "budget name", field: func(t *model.Transaction) *string { return &t.BudgetName }},
	{name: "bill", usage: "bill name", field: func(t *model.Transaction) *string { return &t.BillName }},
	{name: "notes", usage: "free-text notes", field: func(t *model.Transaction) *string { return &t.Notes }},
	{name: "reference", usage: "payment reference", field: func(t *model.Transaction) *string { return &t.PaymentReference }},
	{name: "current-category", usage: "category currently assigned", field: func(t *model.Transaction) *string { return &t.CategoryName }},
}

func classifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Suggest a category for one transaction",
		Long: `Ask the configured LLM which of the given categories fits a transaction best.

The transaction can be described with flags or read as JSON (Firefly III
transaction split field names) from a file or stdin.

Examples:
  autocat classify -c Groceries -c Transport --destination "Tesco" --amount 12.50
  echo '{"description":"UBER *TRIP"}' | autocat classify -c Groceries,Transport --json -`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			categories, err := readCategories(cmd)
			if err != nil {
				return err
			}

			tx, err := readTransaction(cmd)
			if err != nil {
				return err
			}

			output, _ := cmd.Flags().GetString("output")
			verbose, _ := cmd.Flags().GetBool("verbose")

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

			return runClassify(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), classifier, j, categories, tx, output, verbose)
		},
	}

	addCategoryFlags(cmd)
	for _, f := range transactionFlags {
		cmd.Flags().String(f.name, "", f.usage)
	}
	cmd.Flags().String("amount", "", "transaction amount")
	cmd.Flags().String("foreign-amount", "", "amount in the foreign currency")
	cmd.Flags().String("foreign-currency", "", "foreign currency code")
	cmd.Flags().StringSlice("tag", nil, "transaction tag (repeatable)")
	cmd.Flags().String("json", "", "read the transaction as JSON from a file, or - for stdin")
	cmd.Flags().StringP("output", "o", outputText, "output format (text, json)")
	cmd.Flags().BoolP("verbose", "v", false, "also print the prompt sent to the model")

	return cmd
}

func runClassify(ctx context.Context, w, errW io.Writer, classifier llm.Classifier, j journal, categories []string, tx model.Transaction, output string, verbose bool) error {
	if output != outputText && output != outputJSON {
		return common.NewUserError(fmt.Sprintf("unknown output format %q", output), common.ErrInvalidConfig)
	}

	result, err := classifier.Classify(ctx, categories, tx)

	if j != nil {
		if saveErr := j.SaveEntry(ctx, storage.NewEntry(classifier.Provider(), tx, result, err)); saveErr != nil {
			slog.Warn("Failed to record classification", "error", saveErr)
		}
	}

	if err != nil {
		err = fmt.Errorf("failed to classify transaction: %w", err)
		if output == outputText {
			if renderErr := cli.RenderFailure(errW, tx, err); renderErr == nil {
				return &reportedError{err: err}
			}
		}
		return err
	}

	if output == outputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	return cli.RenderResult(w, tx, result, verbose)
}

// readTransaction builds the transaction from --json and then applies any
// field flags on top.
func readTransaction(cmd *cobra.Command) (model.Transaction, error) {
	var tx model.Transaction

	if source, _ := cmd.Flags().GetString("json"); source != "" {
		var r io.Reader = cmd.InOrStdin()
		if source != "-" {
			file, err := os.Open(config.ExpandPath(source))
			if err != nil {
				return tx, fmt.Errorf("failed to open transaction file: %w", err)
			}
			defer func() { _ = file.Close() }()
			r = file
		}
		if err := json.NewDecoder(r).Decode(&tx); err != nil {
			return tx, common.NewUserError("transaction JSON is invalid", err)
		}
	}

	for _, f := range transactionFlags {
		if cmd.Flags().Changed(f.name) {
			value, _ := cmd.Flags().GetString(f.name)
			*f.field(&tx) = value
		}
	}

	if cmd.Flags().Changed("foreign-currency") {
		tx.ForeignCurrencyCode, _ = cmd.Flags().GetString("foreign-currency")
	}
	if cmd.Flags().Changed("tag") {
		tx.Tags, _ = cmd.Flags().GetStringSlice("tag")
	}

	var err error
	if tx.Amount, err = decimalFlag(cmd, "amount", tx.Amount); err != nil {
		return tx, err
	}
	if tx.ForeignAmount, err = decimalFlag(cmd, "foreign-amount", tx.ForeignAmount); err != nil {
		return tx, err
	}

	return tx, nil
}

func decimalFlag(cmd *cobra.Command, name string, current *decimal.Decimal) (*decimal.Decimal, error) {
	if !cmd.Flags().Changed(name) {
		return current, nil
	}
	raw, _ := cmd.Flags().GetString(name)
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, common.NewUserError(fmt.Sprintf("--%s must be a number", name), err)
	}
	return &d, nil
}
