// Package ofx reads OFX/QFX bank and credit card statements into
// transactions the classifier understands.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/Veraticus/autocategorize/internal/model"
	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"
)

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	// Opening SGML tags at end of line that lost their closing bracket.
	unclosedTagRegex = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

var cardPrefixes = []string{
	"POS PURCHASE ",
	"PURCHASE AUTHORIZED ON ",
	"DEBIT CARD PURCHASE ",
	"ACH DEBIT ",
	"CHECK CARD ",
	"VISA PURCHASE ",
	"MC PURCHASE ",
	"DEBIT PURCHASE ",
}

var genericNames = map[string]bool{
	"DEBIT":           true,
	"CREDIT":          true,
	"PURCHASE":        true,
	"PAYMENT":         true,
	"POS TRANSACTION": true,
	"CARD PURCHASE":   true,
}

// Parser implements OFX/QFX file parsing.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a new OFX parser. A nil logger uses slog.Default.
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger}
}

// ParseFile parses a statement and returns its transactions in file order.
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader) ([]model.Transaction, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocess(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var transactions []model.Transaction

	for _, msg := range resp.Bank {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		account := string(stmt.BankAcctFrom.AcctID)
		currency := currencyCode(stmt.CurDef)
		for _, tx := range stmt.BankTranList.Transactions {
			transactions = append(transactions, convert(tx, account, currency))
		}
	}

	for _, msg := range resp.CreditCard {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		stmt, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		account := string(stmt.CCAcctFrom.AcctID)
		currency := currencyCode(stmt.CurDef)
		for _, tx := range stmt.BankTranList.Transactions {
			transactions = append(transactions, convert(tx, account, currency))
		}
	}

	p.logger.Info("Parsed OFX file",
		"total_transactions", len(transactions),
		"bank_statements", len(resp.Bank),
		"cc_statements", len(resp.CreditCard))

	return transactions, nil
}

// convert maps an OFX transaction onto the classifier's transaction shape.
// Money leaving the account names the merchant as destination; money coming
// in names it as source.
func convert(tx ofxgo.Transaction, account, currency string) model.Transaction {
	raw := strings.TrimSpace(string(tx.Name))
	memo := strings.TrimSpace(string(tx.Memo))

	description := raw
	notes := memo
	if memo != "" && (raw == "" || genericNames[strings.ToUpper(raw)]) {
		description = memo
		notes = ""
	}

	amount, err := decimal.NewFromString(tx.TrnAmt.FloatString(2))
	if err != nil {
		amount = decimal.Zero
	}

	out := model.Transaction{
		Description:      description,
		Amount:           ptrDecimal(amount.Abs()),
		CurrencyCode:     currency,
		Date:             tx.DtPosted.Format("2006-01-02"),
		Notes:            notes,
		PaymentReference: string(tx.CheckNum),
	}

	merchant := merchantName(tx)
	if amount.IsNegative() {
		out.SourceName = account
		out.DestinationName = merchant
	} else {
		out.SourceName = merchant
		out.DestinationName = account
	}

	return out
}

// merchantName prefers PAYEE, then a cleaned NAME, then MEMO for generic names.
func merchantName(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return string(tx.Payee.Name)
	}

	name := strings.TrimSpace(string(tx.Name))
	if tx.Memo != "" && genericNames[strings.ToUpper(name)] {
		name = strings.TrimSpace(string(tx.Memo))
	}

	upper := strings.ToUpper(name)
	for _, prefix := range cardPrefixes {
		if strings.HasPrefix(upper, prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// Leading "MM/DD " posting date.
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	return name
}

func currencyCode(c ofxgo.CurrSymbol) string {
	if ok, _ := c.Valid(); !ok {
		return ""
	}
	return c.String()
}

func ptrDecimal(d decimal.Decimal) *decimal.Decimal {
	return &d
}

// preprocess fixes formatting issues that trip up ofxgo in real bank exports.
func preprocess(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)
	return unclosedTagRegex.ReplaceAllString(content, "$1>")
}
