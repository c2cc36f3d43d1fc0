// Package ofx reads bank and credit card statements exported as OFX/QFX and
// turns their entries into editor drafts.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"

	"finanzas/internal/core"
	"finanzas/internal/services"
)

const maxTitle = 200

var (
	severityRe = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	// Opening tags left without their closing bracket by some banks.
	openTagRe = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// Entry is one statement line. Amount keeps the OFX sign: debits negative.
type Entry struct {
	FiTID      string
	Date       time.Time
	Title      string
	Amount     float64
	CreditCard bool
}

// Draft maps the entry onto the editor's input. The sign picks the type and
// credit card statements pay by credit.
func (e Entry) Draft(categoryID, createdBy string) services.Draft {
	typ := core.Expense
	if e.Amount > 0 {
		typ = core.Income
	}
	pm := core.PaymentDebit
	if e.CreditCard {
		pm = core.PaymentCredit
	}
	return services.Draft{
		Title:         e.Title,
		Amount:        decimal.NewFromFloat(e.Amount).Abs().StringFixed(2),
		CategoryID:    categoryID,
		Date:          e.Date.Format(core.DateLayout),
		Type:          typ,
		PaymentMethod: pm,
		CreatedBy:     createdBy,
	}
}

// Key identifies an entry across repeated imports of overlapping statements.
func (e Entry) Key() string {
	return Key(e.Date.Format(core.DateLayout), e.Title, e.Amount)
}

// Key builds the duplicate-detection key for a ledger transaction.
func Key(date, title string, amount float64) string {
	return fmt.Sprintf("%s|%s|%.2f", date, strings.ToLower(strings.TrimSpace(title)), amount)
}

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func preprocess(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityRe.ReplaceAllStringFunc(content, strings.ToUpper)
	return openTagRe.ReplaceAllString(content, "$1>")
}

// Parse reads every bank and credit card statement in r. Zero-amount lines
// are skipped since the ledger cannot hold them.
func (p *Parser) Parse(ctx context.Context, r io.Reader) ([]Entry, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read OFX: %w", err)
	}
	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocess(string(raw))))
	if err != nil {
		return nil, fmt.Errorf("parse OFX: %w", err)
	}

	var entries []Entry
	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok && stmt.BankTranList != nil {
			entries = appendEntries(entries, stmt.BankTranList.Transactions, false)
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok && stmt.BankTranList != nil {
			entries = appendEntries(entries, stmt.BankTranList.Transactions, true)
		}
	}

	slog.DebugContext(ctx, "Parsed OFX statement",
		"entries", len(entries),
		"bank_statements", len(resp.Bank),
		"cc_statements", len(resp.CreditCard))
	return entries, nil
}

func appendEntries(out []Entry, txs []ofxgo.Transaction, creditCard bool) []Entry {
	for _, tx := range txs {
		amount, _ := tx.TrnAmt.Float64()
		if amount == 0 {
			continue
		}
		out = append(out, Entry{
			FiTID:      string(tx.FiTID),
			Date:       tx.DtPosted.Time,
			Title:      title(tx),
			Amount:     amount,
			CreditCard: creditCard,
		})
	}
	return out
}

var genericNames = map[string]bool{
	"DEBIT": true, "CREDIT": true, "PURCHASE": true, "PAYMENT": true,
	"POS TRANSACTION": true, "CARD PURCHASE": true,
}

var namePrefixes = []string{
	"POS PURCHASE ", "PURCHASE AUTHORIZED ON ", "DEBIT CARD PURCHASE ",
	"ACH DEBIT ", "CHECK CARD ", "VISA PURCHASE ", "MC PURCHASE ",
	"COMPRA TARJETA ", "PAGO CON TARJETA ", "RECIBO ",
}

// title prefers the payee, then a non-generic name, then the memo.
func title(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return clip(string(tx.Payee.Name))
	}
	name := strings.TrimSpace(string(tx.Name))
	if tx.Memo != "" && (name == "" || genericNames[strings.ToUpper(name)]) {
		name = strings.TrimSpace(string(tx.Memo))
	}
	upper := strings.ToUpper(name)
	for _, prefix := range namePrefixes {
		if strings.HasPrefix(upper, prefix) {
			name = strings.TrimSpace(name[len(prefix):])
			break
		}
	}
	if name == "" {
		name = tx.TrnType.String()
	}
	return clip(name)
}

func clip(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxTitle {
		return s
	}
	// Cut on a rune boundary.
	for i := maxTitle; i > 0; i-- {
		if utf8.RuneStart(s[i]) {
			return s[:i]
		}
	}
	return s[:maxTitle]
}
