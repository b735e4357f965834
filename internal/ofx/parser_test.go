package ofx

import (
	"context"
	"strings"
	"testing"

	"github.com/aclindsa/ofxgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Sample OFX data for testing.
const sampleBankOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>USD
<BANKACCTFROM>
<BANKID>123456789
<ACCTID>1234567890
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-25.50
<FITID>2024011501
<NAME>STARBUCKS STORE #1234
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240120120000[0:GMT]
<TRNAMT>-125.00
<FITID>2024012001
<NAME>Whole Foods Market
</STMTTRN>
<STMTTRN>
<TRNTYPE>CHECK
<DTPOSTED>20240125120000[0:GMT]
<TRNAMT>-500.00
<FITID>2024012501
<CHECKNUM>1234
<NAME>CHECK #1234
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>1000.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

const sampleCreditCardOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<CREDITCARDMSGSRSV1>
<CCSTMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<CCSTMTRS>
<CURDEF>USD
<CCACCTFROM>
<ACCTID>4111111111111111
</CCACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240110120000[0:GMT]
<TRNAMT>-45.99
<FITID>CC2024011001
<NAME>AMAZON.COM*RT4Y7HG2
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-15.00
<FITID>CC2024011501
<NAME>NETFLIX.COM
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>-500.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</CCSTMTRS>
</CCSTMTTRNRS>
</CREDITCARDMSGSRSV1>
</OFX>`

func TestParser_ParseFile_Bank(t *testing.T) {
	parser := NewParser(nil)

	txns, err := parser.ParseFile(context.Background(), strings.NewReader(sampleBankOFX))
	require.NoError(t, err)
	require.Len(t, txns, 3)

	first := txns[0]
	assert.Equal(t, "STARBUCKS STORE #1234", first.Description)
	assert.Equal(t, "STARBUCKS STORE #1234", first.DestinationName)
	assert.Equal(t, "1234567890", first.SourceName)
	require.NotNil(t, first.Amount)
	assert.Equal(t, "25.5", first.Amount.String())
	assert.Equal(t, "USD", first.CurrencyCode)
	assert.Equal(t, "2024-01-15", first.Date)

	check := txns[2]
	assert.Equal(t, "1234", check.PaymentReference)
	assert.Equal(t, "500", check.Amount.String())
}

func TestParser_ParseFile_CreditCard(t *testing.T) {
	parser := NewParser(nil)

	txns, err := parser.ParseFile(context.Background(), strings.NewReader(sampleCreditCardOFX))
	require.NoError(t, err)
	require.Len(t, txns, 2)

	assert.Equal(t, "AMAZON.COM*RT4Y7HG2", txns[0].DestinationName)
	assert.Equal(t, "4111111111111111", txns[0].SourceName)
	assert.Equal(t, "NETFLIX.COM", txns[1].Description)
}

func TestParser_ParseFile_Invalid(t *testing.T) {
	parser := NewParser(nil)

	_, err := parser.ParseFile(context.Background(), strings.NewReader("not an ofx file"))
	assert.Error(t, err)
}

func TestParser_ParseFile_Canceled(t *testing.T) {
	parser := NewParser(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := parser.ParseFile(ctx, strings.NewReader(sampleBankOFX))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConvert_Direction(t *testing.T) {
	deposit := ofxgo.Transaction{
		Name:   ofxgo.String("ACME PAYROLL"),
		TrnAmt: amountOf(t, "2500.00"),
	}

	got := convert(deposit, "checking-1", "EUR")
	assert.Equal(t, "ACME PAYROLL", got.SourceName)
	assert.Equal(t, "checking-1", got.DestinationName)
	assert.Equal(t, "EUR", got.CurrencyCode)
	assert.Equal(t, "2500", got.Amount.String())
}

func TestConvert_GenericNameUsesMemo(t *testing.T) {
	tx := ofxgo.Transaction{
		Name:   ofxgo.String("PURCHASE"),
		Memo:   ofxgo.String("Corner Bakery"),
		TrnAmt: amountOf(t, "-4.75"),
	}

	got := convert(tx, "acct", "")
	assert.Equal(t, "Corner Bakery", got.Description)
	assert.Equal(t, "Corner Bakery", got.DestinationName)
	assert.Empty(t, got.Notes)
}

func TestConvert_MemoBecomesNotes(t *testing.T) {
	tx := ofxgo.Transaction{
		Name:   ofxgo.String("SHELL OIL 5744"),
		Memo:   ofxgo.String("Pump 4"),
		TrnAmt: amountOf(t, "-60.00"),
	}

	got := convert(tx, "acct", "")
	assert.Equal(t, "SHELL OIL 5744", got.Description)
	assert.Equal(t, "Pump 4", got.Notes)
}

func TestMerchantName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		payee string
		want  string
	}{
		{name: "plain", input: "Whole Foods Market", want: "Whole Foods Market"},
		{name: "card prefix", input: "POS PURCHASE TARGET 00012", want: "TARGET 00012"},
		{name: "case insensitive prefix", input: "visa purchase Uber Trip", want: "Uber Trip"},
		{name: "posting date", input: "03/14 SAFEWAY #123", want: "SAFEWAY #123"},
		{name: "payee wins", input: "ACH DEBIT 123", payee: "City Water", want: "City Water"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := ofxgo.Transaction{Name: ofxgo.String(tt.input)}
			if tt.payee != "" {
				tx.Payee = &ofxgo.Payee{Name: ofxgo.String(tt.payee)}
			}
			assert.Equal(t, tt.want, merchantName(tx))
		})
	}
}

func TestPreprocess(t *testing.T) {
	in := "\n\n  OFXHEADER:100\n<SEVERITY>Info</SEVERITY>\n<CODE\n"
	out := preprocess(in)

	assert.True(t, strings.HasPrefix(out, "OFXHEADER:100"))
	assert.Contains(t, out, "<SEVERITY>INFO</SEVERITY>")
	assert.Contains(t, out, "<CODE>")
}

func amountOf(t *testing.T, s string) ofxgo.Amount {
	t.Helper()
	var a ofxgo.Amount
	_, ok := a.SetString(s)
	require.True(t, ok)
	return a
}
