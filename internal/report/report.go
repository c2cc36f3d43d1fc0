// Package report renders the household ledger as a Markdown statement, and
// converts that Markdown to HTML or styled terminal output.
package report

import (
	"bytes"
	"embed"
	"fmt"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/shopspring/decimal"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"finanzas/internal/core"
)

//go:embed templates/*.md
var templates embed.FS

type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatTerminal Format = "terminal"
)

// MemberTotals is what one household member recorded.
type MemberTotals struct {
	Name    string  `json:"name"`
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Count   int     `json:"count"`
}

// Month aggregates one calendar month, keyed YYYY-MM.
type Month struct {
	Key     string  `json:"month"`
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Balance float64 `json:"balance"`
}

type Report struct {
	Household   string                `json:"household"`
	GeneratedAt time.Time             `json:"generatedAt"`
	From        string                `json:"from,omitempty"`
	To          string                `json:"to,omitempty"`
	Currency    string                `json:"currency"`
	Summary     core.Summary          `json:"summary"`
	ByCategory  []core.CategoryAmount `json:"byCategory"`
	Members     []MemberTotals        `json:"members"`
	Months      []Month               `json:"months"`
	Recent      []core.Transaction    `json:"recent"`
}

// Build aggregates txs, a newest-first ledger, into a report. recent bounds
// the transaction table.
func Build(txs []core.Transaction, users []core.UserProfile, recent int, now time.Time) *Report {
	r := &Report{
		Household:   core.HouseholdLabel(users),
		GeneratedAt: now,
		Currency:    core.DefaultCurrency,
		Summary:     core.Summarize(txs),
		ByCategory:  core.ByCategory(txs),
		Recent:      core.Recent(txs, recent),
	}

	members := map[string]*MemberTotals{}
	months := map[string]*Month{}
	for _, t := range txs {
		if r.From == "" || t.Date < r.From {
			r.From = t.Date
		}
		if t.Date > r.To {
			r.To = t.Date
		}

		name := t.CreatedBy
		if name == "" {
			name = "(Sin asignar)"
		}
		m := members[name]
		if m == nil {
			m = &MemberTotals{Name: name}
			members[name] = m
		}
		m.Count++

		key := t.Date
		if len(key) >= 7 {
			key = key[:7]
		}
		mo := months[key]
		if mo == nil {
			mo = &Month{Key: key}
			months[key] = mo
		}

		amount := decimal.NewFromFloat(t.Amount)
		mo.Balance = decimal.NewFromFloat(mo.Balance).Add(amount).InexactFloat64()
		switch t.Type {
		case core.Income:
			m.Income = decimal.NewFromFloat(m.Income).Add(amount).InexactFloat64()
			mo.Income = decimal.NewFromFloat(mo.Income).Add(amount).InexactFloat64()
		case core.Expense:
			m.Expense = decimal.NewFromFloat(m.Expense).Add(amount.Abs()).InexactFloat64()
			mo.Expense = decimal.NewFromFloat(mo.Expense).Add(amount.Abs()).InexactFloat64()
		}
	}

	for _, m := range members {
		r.Members = append(r.Members, *m)
	}
	sort.Slice(r.Members, func(i, j int) bool { return r.Members[i].Name < r.Members[j].Name })
	for _, mo := range months {
		r.Months = append(r.Months, *mo)
	}
	sort.Slice(r.Months, func(i, j int) bool { return r.Months[i].Key > r.Months[j].Key })
	return r
}

var funcs = template.FuncMap{
	"money": func(v float64) string { return core.FormatAmount(v, core.DefaultCurrency) },
	"cell":  func(s string) string { return strings.ReplaceAll(s, "|", `\|`) },
	"date":  func(t time.Time) string { return t.Format("2006-01-02 15:04") },
}

// Markdown renders the statement.
func (r *Report) Markdown() (string, error) {
	tmpl, err := template.New("report.md").Funcs(funcs).ParseFS(templates, "templates/*.md")
	if err != nil {
		return "", fmt.Errorf("parse report templates: %w", err)
	}
	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, "report.md", r); err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	return b.String(), nil
}

// HTML converts Markdown to an HTML fragment, tables included.
func HTML(md string) (string, error) {
	var buf bytes.Buffer
	conv := goldmark.New(goldmark.WithExtensions(extension.GFM))
	if err := conv.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("convert report to html: %w", err)
	}
	return buf.String(), nil
}

// Terminal styles Markdown for a terminal. style is a glamour style name
// such as "dark", "light" or "notty".
func Terminal(md, style string) (string, error) {
	if style == "" {
		style = "dark"
	}
	out, err := glamour.Render(md, style)
	if err != nil {
		return "", fmt.Errorf("render report for terminal: %w", err)
	}
	return out, nil
}

// Render produces the report in the requested format.
func (r *Report) Render(f Format, style string) (string, error) {
	md, err := r.Markdown()
	if err != nil {
		return "", err
	}
	switch f {
	case FormatMarkdown, "":
		return md, nil
	case FormatHTML:
		return HTML(md)
	case FormatTerminal:
		return Terminal(md, style)
	default:
		return "", fmt.Errorf("unknown report format %q", f)
	}
}
