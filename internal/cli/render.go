package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/autocategorize/internal/model"
)

const (
	maxCellWidth  = 40
	historyHeader = "Recent classifications"
	timeLayout    = "2006-01-02 15:04"
)

// RenderResult writes one classification to w. The prompt is included when
// verbose is set.
func RenderResult(w io.Writer, tx model.Transaction, result model.ClassificationResult, verbose bool) error {
	var b strings.Builder

	if label := transactionLabel(tx); label != "" {
		b.WriteString(labelStyle.Render(label) + "\n")
	}
	if result.Matched() {
		b.WriteString(Styled(ToneMatched, "Category: "+result.CategoryName()) + "\n")
	} else {
		b.WriteString(Styled(ToneNoMatch, "No matching category") + "\n")
	}
	b.WriteString(dimStyle.Render("model: " + strings.TrimSpace(result.Response)))

	if verbose {
		b.WriteString("\n\n" + dimStyle.Render(result.Prompt))
	}

	_, err := fmt.Fprintln(w, b.String())
	return err
}

// RenderFailure writes a backend failure to w.
func RenderFailure(w io.Writer, tx model.Transaction, err error) error {
	msg := err.Error()
	if label := transactionLabel(tx); label != "" {
		msg = label + ": " + msg
	}
	_, werr := fmt.Fprintln(w, Styled(ToneFailed, msg))
	return werr
}

// RenderSummary writes a table of batch results followed by totals.
func RenderSummary(w io.Writer, rows []BatchRow) error {
	table := [][]string{{"Date", "Payee", "Amount", "Category"}}
	counts := make(map[model.JournalOutcome]int, 3)

	for _, row := range rows {
		outcome := row.Outcome()
		counts[outcome]++

		var category string
		switch outcome {
		case model.OutcomeMatched:
			category = row.Result.CategoryName()
		case model.OutcomeNoMatch:
			category = "-"
		default:
			category = "failed"
		}

		table = append(table, []string{
			row.Transaction.Date,
			truncate(transactionLabel(row.Transaction), maxCellWidth),
			formatAmount(row.Transaction),
			Paint(OutcomeTone(outcome), category),
		})
	}

	if _, err := fmt.Fprintln(w, renderTable(table)); err != nil {
		return err
	}

	lines := []string{
		fmt.Sprintf("Transactions  %d", len(rows)),
		Paint(ToneMatched, fmt.Sprintf("Categorized   %d", counts[model.OutcomeMatched])),
		Paint(ToneNoMatch, fmt.Sprintf("No match      %d", counts[model.OutcomeNoMatch])),
		Paint(ToneFailed, fmt.Sprintf("Failed        %d", counts[model.OutcomeFailed])),
	}

	_, err := fmt.Fprintln(w, summaryBox("Classification complete", strings.Join(lines, "\n")))
	return err
}

// RenderHistory writes journal entries as a table.
func RenderHistory(w io.Writer, entries []*model.JournalEntry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, Styled(ToneInfo, "No classifications recorded yet"))
		return err
	}

	table := [][]string{{"ID", "When", "Provider", "Payee", "Outcome", "Category"}}
	for _, entry := range entries {
		table = append(table, []string{
			shortID(entry.ID),
			entry.RecordedAt.Local().Format(timeLayout),
			entry.Provider,
			truncate(entryPayee(entry), maxCellWidth),
			Paint(OutcomeTone(entry.Outcome), string(entry.Outcome)),
			entryDetail(entry),
		})
	}

	_, err := fmt.Fprintln(w, headingStyle.Render(historyHeader)+"\n\n"+renderTable(table))
	return err
}

// RenderEntry writes every recorded field of one journal entry.
func RenderEntry(w io.Writer, entry *model.JournalEntry) error {
	field := func(name, value string) string {
		return fieldStyle.Render(name) + value
	}

	lines := []string{
		field("ID", entry.ID),
		field("When", entry.RecordedAt.Local().Format(timeLayout)),
		field("Provider", entry.Provider),
		field("Payee", entryPayee(entry)),
		field("Outcome", Styled(OutcomeTone(entry.Outcome), string(entry.Outcome))),
	}
	if detail := entryDetail(entry); detail != "" {
		lines = append(lines, field("Category", detail))
	}
	if entry.Error != "" {
		lines = append(lines, field("Error", Paint(ToneFailed, entry.Error)))
	}
	lines = append(lines,
		"",
		headingStyle.Render("Prompt"),
		dimStyle.Render(entry.Prompt),
		"",
		headingStyle.Render("Response"),
		entry.Response,
	)

	_, err := fmt.Fprintln(w, strings.Join(lines, "\n"))
	return err
}

func entryPayee(entry *model.JournalEntry) string {
	if entry.DestinationName != "" {
		return entry.DestinationName
	}
	return entry.Description
}

// entryDetail is the category for matches and the backend status for failures.
func entryDetail(entry *model.JournalEntry) string {
	switch {
	case entry.Category != nil:
		return *entry.Category
	case entry.StatusCode != nil:
		return fmt.Sprintf("HTTP %d", *entry.StatusCode)
	default:
		return ""
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func renderTable(rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	lines := make([]string, 0, len(rows))
	for r, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = cellStyle.Width(widths[i] + cellStyle.GetPaddingRight()).Render(cell)
		}
		line := lipgloss.JoinHorizontal(lipgloss.Top, cells...)
		if r == 0 {
			line = headerRowStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func transactionLabel(tx model.Transaction) string {
	switch {
	case tx.DestinationName != "" && tx.Description != "" && tx.DestinationName != tx.Description:
		return tx.DestinationName + " (" + tx.Description + ")"
	case tx.DestinationName != "":
		return tx.DestinationName
	default:
		return tx.Description
	}
}

func formatAmount(tx model.Transaction) string {
	if tx.Amount == nil {
		return ""
	}
	amount := tx.Amount.StringFixed(2)
	if currency := tx.Currency(); currency != "" {
		amount += " " + currency
	}
	return amount
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-1]) + "…"
}
