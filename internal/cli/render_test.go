package cli

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/autocategorize/internal/model"
)

func strPtr(s string) *string { return &s }

func TestRenderResult(t *testing.T) {
	tx := model.Transaction{Description: "Card payment", DestinationName: "Tesco"}

	t.Run("matched", func(t *testing.T) {
		var buf bytes.Buffer
		err := RenderResult(&buf, tx, model.ClassificationResult{
			Category: strPtr("Groceries"),
			Prompt:   "the prompt",
			Response: "Groceries\n",
		}, false)
		require.NoError(t, err)

		out := buf.String()
		assert.Contains(t, out, "Tesco (Card payment)")
		assert.Contains(t, out, "Category: Groceries")
		assert.NotContains(t, out, "the prompt")
	})

	t.Run("no match verbose", func(t *testing.T) {
		var buf bytes.Buffer
		err := RenderResult(&buf, tx, model.ClassificationResult{
			Prompt:   "the prompt",
			Response: "I am not sure",
		}, true)
		require.NoError(t, err)

		out := buf.String()
		assert.Contains(t, out, "No matching category")
		assert.Contains(t, out, "I am not sure")
		assert.Contains(t, out, "the prompt")
	})
}

func TestRenderFailure(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderFailure(&buf, model.Transaction{DestinationName: "Uber"}, errors.New("boom")))
	assert.Contains(t, buf.String(), "Uber: boom")
}

func TestRenderSummary(t *testing.T) {
	amount := decimal.RequireFromString("-4.5")
	rows := []BatchRow{
		{
			Transaction: model.Transaction{Date: "2024-03-01", DestinationName: "Tesco", Amount: &amount, CurrencyCode: "GBP"},
			Result:      model.ClassificationResult{Category: strPtr("Groceries")},
		},
		{
			Transaction: model.Transaction{Date: "2024-03-02", Description: "Mystery"},
		},
		{
			Transaction: model.Transaction{Date: "2024-03-03", DestinationName: "Uber"},
			Err:         errors.New("503"),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, RenderSummary(&buf, rows))

	out := buf.String()
	assert.Contains(t, out, "Payee")
	assert.Contains(t, out, "Tesco")
	assert.Contains(t, out, "-4.50 GBP")
	assert.Contains(t, out, "Groceries")
	assert.Contains(t, out, "failed")
	assert.Contains(t, out, "Classification complete")
	assert.Contains(t, out, "Transactions  3")
	assert.Contains(t, out, "Categorized   1")
	assert.Contains(t, out, "No match      1")
	assert.Contains(t, out, "Failed        1")
}

func TestRenderHistory(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, RenderHistory(&buf, nil))
		assert.Contains(t, buf.String(), "No classifications recorded yet")
	})

	t.Run("entries", func(t *testing.T) {
		code := 429
		entries := []*model.JournalEntry{
			{
				ID:              "3f2c9a1b-7d4e-4c1a-9b2f-0e5d6a7b8c9d",
				RecordedAt:      time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC),
				Provider:        "ollama",
				DestinationName: "Tesco",
				Outcome:         model.OutcomeMatched,
				Category:        strPtr("Groceries"),
			},
			{
				RecordedAt:  time.Date(2024, 3, 1, 9, 31, 0, 0, time.UTC),
				Provider:    "openai",
				Description: "Rate limited",
				Outcome:     model.OutcomeFailed,
				StatusCode:  &code,
			},
		}

		var buf bytes.Buffer
		require.NoError(t, RenderHistory(&buf, entries))

		out := buf.String()
		assert.Contains(t, out, "Recent classifications")
		assert.Contains(t, out, "Groceries")
		assert.Contains(t, out, "MATCHED")
		assert.Contains(t, out, "Rate limited")
		assert.Contains(t, out, "HTTP 429")
		assert.Contains(t, out, "3f2c9a1b")
		assert.NotContains(t, out, "3f2c9a1b-7d")
	})
}

func TestRenderEntry(t *testing.T) {
	code := 503
	entry := &model.JournalEntry{
		ID:          "3f2c9a1b-7d4e-4c1a-9b2f-0e5d6a7b8c9d",
		RecordedAt:  time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC),
		Provider:    "ollama",
		Description: "UBER *TRIP",
		Outcome:     model.OutcomeFailed,
		StatusCode:  &code,
		Error:       "error while communicating with Ollama: 503 - model loading",
		Prompt:      "You are a financial assistant",
	}

	var buf bytes.Buffer
	require.NoError(t, RenderEntry(&buf, entry))

	out := buf.String()
	assert.Contains(t, out, entry.ID)
	assert.Contains(t, out, "UBER *TRIP")
	assert.Contains(t, out, "FAILED")
	assert.Contains(t, out, "HTTP 503")
	assert.Contains(t, out, "model loading")
	assert.Contains(t, out, "You are a financial assistant")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
	assert.Equal(t, "café…", truncate("cafébar", 5))
}

func TestTransactionLabel(t *testing.T) {
	assert.Equal(t, "Tesco", transactionLabel(model.Transaction{DestinationName: "Tesco", Description: "Tesco"}))
	assert.Equal(t, "Card", transactionLabel(model.Transaction{Description: "Card"}))
	assert.Equal(t, "", transactionLabel(model.Transaction{}))
}
