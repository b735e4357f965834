package llm

import (
	"fmt"
	"strings"

	"github.com/Veraticus/autocategorize/internal/model"
	"github.com/shopspring/decimal"
)

// FormatTransaction renders the present fields of a transaction as
// "Label: value" lines in a fixed order. Absent fields produce no line.
func FormatTransaction(tx model.Transaction) string {
	fields := []struct {
		label string
		value string
	}{
		{"Description", tx.Description},
		{"Destination", tx.DestinationName},
		{"Source", tx.SourceName},
		{"Amount", formatAmount(tx.Amount)},
		{"Currency", tx.Currency()},
		{"Foreign amount", formatAmount(tx.ForeignAmount)},
		{"Date", tx.Date},
		{"Budget", tx.BudgetName},
		{"Bill", tx.BillName},
		{"Notes", tx.Notes},
		{"Payment reference", tx.PaymentReference},
	}

	lines := make([]string, 0, len(fields)+2)
	for _, f := range fields {
		if f.value != "" {
			lines = append(lines, f.label+": "+f.value)
		}
	}

	if len(tx.Tags) > 0 {
		lines = append(lines, "Tags: "+strings.Join(tx.Tags, ", "))
	}

	if tx.CategoryName != "" {
		lines = append(lines, "Current category name: "+tx.CategoryName)
	}

	return strings.Join(lines, "\n")
}

// BuildGeneratePrompt builds the prompt for generate-style backends. It embeds
// the full transaction block.
func BuildGeneratePrompt(categories []string, tx model.Transaction) string {
	return fmt.Sprintf(`You are an assistant that classifies personal finance transactions.
Available categories: %s.
The transaction details are:
%s
Return only the single category name that best fits.`,
		strings.Join(categories, ", "),
		FormatTransaction(tx))
}

// BuildCompletionPrompt builds the prompt for completion-style backends. Only
// the description and destination name are included.
func BuildCompletionPrompt(categories []string, tx model.Transaction) string {
	return fmt.Sprintf(`Given I want to categorize transactions on my bank account into these categories: %s.
When categorizing, focus primarily on the merchant name and known businesses.
Avoid categorizing based on payment methods like "Apple Pay" or terms like "Card sequence".
Based on this, in which category would the following transaction fall: "%s" from "%s"
Just output the name of the correct category.`,
		strings.Join(categories, ", "),
		tx.Description,
		tx.DestinationName)
}

// formatAmount renders a present amount, including zero. Nil is absent.
func formatAmount(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.String()
}
