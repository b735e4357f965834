package model

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestTransaction_Currency(t *testing.T) {
	tests := []struct {
		name string
		want string
		tx   Transaction
	}{
		{name: "primary wins", tx: Transaction{CurrencyCode: "EUR", ForeignCurrencyCode: "USD"}, want: "EUR"},
		{name: "foreign fallback", tx: Transaction{ForeignCurrencyCode: "USD"}, want: "USD"},
		{name: "neither", tx: Transaction{}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tx.Currency(); got != tt.want {
				t.Errorf("Currency() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTransaction_Fingerprint(t *testing.T) {
	amount := decimal.RequireFromString("12.50")
	a := Transaction{Date: "2024-03-01", Amount: &amount, DestinationName: "Lidl", Description: "Card payment"}
	b := a
	b.Notes = "weekly shop"

	if a.Fingerprint() != b.Fingerprint() {
		t.Error("fingerprint should ignore non-identifying fields")
	}

	c := a
	c.DestinationName = "Aldi"
	if a.Fingerprint() == c.Fingerprint() {
		t.Error("fingerprint should change with destination")
	}

	d := a
	d.SourceName = "Visa 4111"
	e := a
	e.SourceName = "Checking 1234"
	if d.Fingerprint() == e.Fingerprint() {
		t.Error("fingerprint should change with source account")
	}
}

func TestTransaction_UnmarshalStringAmounts(t *testing.T) {
	payload := `{"description":"Coffee","amount":"3.20","foreign_amount":"0.00","tags":["work"]}`

	var tx Transaction
	if err := json.Unmarshal([]byte(payload), &tx); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if tx.Amount == nil || tx.Amount.String() != "3.2" {
		t.Errorf("amount = %v, want 3.2", tx.Amount)
	}
	if tx.ForeignAmount == nil || !tx.ForeignAmount.IsZero() {
		t.Errorf("foreign amount = %v, want present zero", tx.ForeignAmount)
	}
	if len(tx.Tags) != 1 || tx.Tags[0] != "work" {
		t.Errorf("tags = %v, want [work]", tx.Tags)
	}
}

func TestClassificationResult_CategoryName(t *testing.T) {
	none := ClassificationResult{}
	if none.Matched() || none.CategoryName() != "" {
		t.Error("empty result should be unmatched")
	}

	cat := "Groceries"
	got := ClassificationResult{Category: &cat}
	if !got.Matched() || got.CategoryName() != "Groceries" {
		t.Errorf("CategoryName() = %q, want Groceries", got.CategoryName())
	}
}
