// Package ofx turns OFX/QFX bank and credit card statements into
// expenditures ready to be sent to the budgetr server.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/Veraticus/budgetr/internal/model"
	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"
)

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	// An SGML opening tag alone on a line, missing its closing bracket.
	tagFixRegex = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// Entry is one statement transaction converted to an expenditure.
type Entry struct {
	Expenditure *model.Expenditure
	FITID       string
	Account     string
	Payee       string
}

// Parser implements OFX/QFX file parsing.
type Parser struct {
	logger         *slog.Logger
	includeCredits bool
}

// Option configures a Parser.
type Option func(*Parser)

// WithCredits keeps credit transactions, recorded with their absolute amount.
func WithCredits() Option {
	return func(p *Parser) { p.includeCredits = true }
}

// WithLogger sets the parser logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) { p.logger = logger }
}

// NewParser creates a new OFX parser. Credits are skipped unless WithCredits
// is given.
func NewParser(opts ...Option) *Parser {
	p := &Parser{logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// preprocessOFX fixes common formatting issues in OFX files.
func (p *Parser) preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")

	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	return tagFixRegex.ReplaceAllString(content, "$1>")
}

// ParseFile parses an OFX/QFX file into entries, in statement order.
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader) ([]Entry, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var entries []Entry
	var skipped, bankStmts, ccStmts int

	for _, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		bankStmts++
		converted, n := p.convertAll(stmt.BankTranList.Transactions, string(stmt.BankAcctFrom.AcctID))
		entries = append(entries, converted...)
		skipped += n
	}

	for _, msg := range resp.CreditCard {
		stmt, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		ccStmts++
		converted, n := p.convertAll(stmt.BankTranList.Transactions, string(stmt.CCAcctFrom.AcctID))
		entries = append(entries, converted...)
		skipped += n
	}

	p.logger.Info("Parsed OFX file",
		"entries", len(entries),
		"skipped", skipped,
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return entries, nil
}

func (p *Parser) convertAll(transactions []ofxgo.Transaction, account string) ([]Entry, int) {
	entries := make([]Entry, 0, len(transactions))
	skipped := 0

	for _, tx := range transactions {
		entry, ok, err := p.convert(tx, account)
		if err != nil {
			p.logger.Warn("Skipping unreadable transaction",
				"fitid", string(tx.FiTID),
				"account", account,
				"error", err)
			skipped++
			continue
		}
		if !ok {
			skipped++
			continue
		}
		entries = append(entries, entry)
	}

	return entries, skipped
}

// convert reports false for credits the parser is not keeping.
func (p *Parser) convert(tx ofxgo.Transaction, account string) (Entry, bool, error) {
	amount, err := decimal.NewFromString(tx.TrnAmt.FloatString(2))
	if err != nil {
		return Entry{}, false, fmt.Errorf("invalid amount: %w", err)
	}

	// OFX signs debits negative.
	if amount.IsPositive() && !p.includeCredits {
		return Entry{}, false, nil
	}
	if amount.IsZero() {
		return Entry{}, false, nil
	}

	expenditure := model.NewExpenditure(&model.RawExpenditure{
		Date:   tx.DtPosted.Time,
		Amount: amount.Abs(),
	})

	return Entry{
		Expenditure: expenditure,
		FITID:       string(tx.FiTID),
		Account:     account,
		Payee:       extractPayee(tx),
	}, true, nil
}

var payeePrefixes = []string{
	"POS PURCHASE ",
	"PURCHASE AUTHORIZED ON ",
	"DEBIT CARD PURCHASE ",
	"ACH DEBIT ",
	"CHECK CARD ",
	"VISA PURCHASE ",
	"MC PURCHASE ",
	"DEBIT PURCHASE ",
}

// extractPayee tries to get a clean merchant name from OFX data.
func extractPayee(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return string(tx.Payee.Name)
	}

	name := string(tx.Name)
	if tx.Memo != "" && isGenericDescription(name) {
		name = string(tx.Memo)
	}

	name = strings.TrimSpace(name)

	for _, prefix := range payeePrefixes {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// Leading "MM/DD " posting dates.
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	return name
}

func isGenericDescription(name string) bool {
	switch strings.ToUpper(name) {
	case "DEBIT", "CREDIT", "PURCHASE", "PAYMENT", "POS TRANSACTION", "CARD PURCHASE":
		return true
	}
	return false
}
