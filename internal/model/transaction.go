// Package model defines the core domain models used throughout the application.
package model

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Transaction is a read-only view of one financial transaction as handed to
// the classifier. Every field is optional. JSON names follow the transaction
// split fields of the finance application that calls us.
type Transaction struct {
	Amount              *decimal.Decimal `json:"amount,omitempty"`
	ForeignAmount       *decimal.Decimal `json:"foreign_amount,omitempty"`
	Description         string           `json:"description,omitempty"`
	DestinationName     string           `json:"destination_name,omitempty"`
	SourceName          string           `json:"source_name,omitempty"`
	CurrencyCode        string           `json:"currency_code,omitempty"`
	ForeignCurrencyCode string           `json:"foreign_currency_code,omitempty"`
	Date                string           `json:"date,omitempty"`
	BudgetName          string           `json:"budget_name,omitempty"`
	BillName            string           `json:"bill_name,omitempty"`
	Notes               string           `json:"notes,omitempty"`
	PaymentReference    string           `json:"payment_reference,omitempty"`
	CategoryName        string           `json:"category_name,omitempty"`
	Tags                []string         `json:"tags,omitempty"`
}

// Currency returns the primary currency code, falling back to the foreign one.
func (t Transaction) Currency() string {
	if t.CurrencyCode != "" {
		return t.CurrencyCode
	}
	return t.ForeignCurrencyCode
}

// Fingerprint returns a stable hash of the identifying fields, used to group
// journal entries that describe the same transaction. The source account is
// part of the identity so equal purchases on two cards stay distinct.
func (t Transaction) Fingerprint() string {
	amount := ""
	if t.Amount != nil {
		amount = t.Amount.String()
	}
	data := strings.Join([]string{t.Date, amount, t.SourceName, t.DestinationName, t.Description}, ":")
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}
