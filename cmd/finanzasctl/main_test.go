package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finanzas/internal/backend"
	"finanzas/internal/config"
	"finanzas/internal/core"
	"finanzas/internal/services"
	"finanzas/internal/store"
	"finanzas/internal/store/kv"
	"finanzas/internal/store/local"
)

type harness struct {
	t       *testing.T
	store   store.Store
	cfgFile string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cfgFile := filepath.Join(t.TempDir(), "finanzas.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("backend: memory\nlog_level: error\n"), 0o600))
	return &harness{t: t, store: local.New(kv.NewMemory()), cfgFile: cfgFile}
}

func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	a := newApp()
	a.openLedger = func(context.Context, *slog.Logger, *config.Config) (*services.Ledger, *backend.BackendResult, error) {
		return services.NewLedger(h.store, nil, nil), &backend.BackendResult{Mode: backend.MemoryBackend}, nil
	}
	root := newRootCmd(a)
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--config", h.cfgFile}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run(args...)
	require.NoError(h.t, err, "finanzasctl %s", strings.Join(args, " "))
	return out
}

func (h *harness) transactions() []core.Transaction {
	h.t.Helper()
	var txs []core.Transaction
	require.NoError(h.t, json.Unmarshal([]byte(h.mustRun("list", "-o", "json")), &txs))
	return txs
}

func TestAddListAndQuery(t *testing.T) {
	h := newHarness(t)

	h.mustRun("add", "--title", "Súper", "--amount", "54,20", "--category", "comida", "--date", "2024-05-01")
	h.mustRun("add", "--type", "income", "--title", "Nómina", "--amount", "2100", "-c", "Salario", "--by", "Andrés")

	txs := h.transactions()
	require.Len(t, txs, 2)
	assert.Equal(t, "Nómina", txs[0].Title)
	assert.Equal(t, 2100.0, txs[0].Amount)
	assert.Equal(t, -54.2, txs[1].Amount)
	assert.Equal(t, "Valeria", txs[1].CreatedBy, "new drafts default to the first member")
	assert.Equal(t, "Comida", txs[1].CategoryName)

	assert.Equal(t, "-54.2\n", h.mustRun("list", "--type", "expense", "-q", "$[0].amount"))
	assert.Equal(t, "\"Andrés\"\n", h.mustRun("list", "--by", "andrés", "-q", "$[0].createdBy"))

	table := h.mustRun("list", "-n", "1")
	assert.Contains(t, table, "Nómina")
	assert.NotContains(t, table, "Súper")
}

func TestAddRejectsInvalidInput(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("add", "--title", "x", "--amount", "-3", "-c", "cat_1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid amount")

	_, err = h.run("add", "--title", "x", "--amount", "3", "-c", "Viajes")
	assert.ErrorIs(t, err, services.ErrUnknownCategory)

	assert.Empty(t, h.transactions())
}

func TestEditAndDelete(t *testing.T) {
	h := newHarness(t)
	h.mustRun("add", "--title", "Súper", "--amount", "50", "-c", "cat_1")
	id := h.transactions()[0].ID

	h.mustRun("edit", id, "--amount", "75", "--payment", core.PaymentCredit)
	txs := h.transactions()
	require.Len(t, txs, 1)
	assert.Equal(t, id, txs[0].ID)
	assert.Equal(t, -75.0, txs[0].Amount)
	assert.Equal(t, core.PaymentCredit, txs[0].PaymentMethod)
	assert.Equal(t, "Súper", txs[0].Title, "unset flags keep their value")

	_, err := h.run("edit", "missing", "--amount", "1")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = h.run("delete", id)
	require.Error(t, err)
	assert.Len(t, h.transactions(), 1)

	h.mustRun("delete", id, "--yes")
	assert.Empty(t, h.transactions())
}

func TestCategoriesAndUsers(t *testing.T) {
	h := newHarness(t)

	h.mustRun("categories", "add", "Mascotas", "--icon", "pets")
	_, err := h.run("categories", "add", "Ocio", "--icon", "no-such-icon")
	assert.Error(t, err)

	var income []core.Category
	require.NoError(t, json.Unmarshal([]byte(h.mustRun("categories", "list", "--type", "income", "-o", "json")), &income))
	names := make([]string, 0, len(income))
	for _, c := range income {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"Salario", "Mascotas"}, names)

	h.mustRun("users", "set", "user_2", "Andy", "--color", "Verde")
	var users []core.UserProfile
	require.NoError(t, json.Unmarshal([]byte(h.mustRun("users", "-o", "json")), &users))
	require.Len(t, users, 2)
	assert.Equal(t, "Andy", users[1].Name)
	assert.Equal(t, "bg-green-500", users[1].Color)
	assert.Equal(t, "text-green-500", users[1].TextColor)

	_, err = h.run("users", "set", "user_9", "Nadie")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSummaryBudgetAndStatus(t *testing.T) {
	h := newHarness(t)
	h.mustRun("add", "--title", "Súper", "--amount", "30", "-c", "cat_1")
	h.mustRun("add", "--title", "Bus", "--amount", "10", "-c", "cat_2")
	h.mustRun("add", "--type", "income", "--title", "Nómina", "--amount", "100", "-c", "cat_4")

	var sum core.Summary
	require.NoError(t, json.Unmarshal([]byte(h.mustRun("summary", "-o", "json")), &sum))
	assert.Equal(t, 60.0, sum.Balance)
	assert.Equal(t, 2, sum.ExpenseCount)

	assert.Equal(t, "\"Comida\"\n", h.mustRun("budget", "-q", "$.byCategory[0].name"))
	assert.Contains(t, h.mustRun("budget"), "Transporte")

	assert.Equal(t, "\"memory\"\n", h.mustRun("status", "-q", "$.mode"))
}

const statement = `OFXHEADER:100
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
<LANGUAGE>SPA
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
<CURDEF>EUR
<BANKACCTFROM>
<BANKID>0049
<ACCTID>1234
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-25.50
<FITID>1
<NAME>Mercadona
</STMTTRN>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20240131120000[0:GMT]
<TRNAMT>2100.00
<FITID>2
<NAME>Nomina
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

func TestImportSkipsDuplicates(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(t.TempDir(), "enero.ofx")
	require.NoError(t, os.WriteFile(path, []byte(statement), 0o600))

	var res importResult
	require.NoError(t, json.Unmarshal([]byte(h.mustRun("import", path, "--dry-run", "-o", "json")), &res))
	assert.Equal(t, 2, res.Imported)
	assert.Empty(t, h.transactions(), "dry run must not write")

	require.NoError(t, json.Unmarshal([]byte(h.mustRun("import", path, "--by", "Valeria", "-o", "json")), &res))
	assert.Equal(t, 2, res.Imported)
	assert.Len(t, res.IDs, 2)

	txs := h.transactions()
	require.Len(t, txs, 2)
	byTitle := map[string]core.Transaction{}
	for _, tx := range txs {
		byTitle[tx.Title] = tx
	}
	assert.Equal(t, "Salario", byTitle["Nomina"].CategoryName)
	assert.Equal(t, core.Expense, byTitle["Mercadona"].Type)

	res = importResult{}
	require.NoError(t, json.Unmarshal([]byte(h.mustRun("import", path, "-o", "json")), &res))
	assert.Equal(t, 0, res.Imported)
	assert.Equal(t, 2, res.Duplicates)

	_, err := h.run("import", filepath.Join(t.TempDir(), "nope-*.ofx"))
	assert.Error(t, err)
}

func TestReportAndExport(t *testing.T) {
	h := newHarness(t)
	h.mustRun("add", "--title", "Súper", "--amount", "30", "-c", "cat_1", "--date", "2024-05-02")

	md := h.mustRun("report", "--format", "markdown")
	assert.Contains(t, md, "## Resumen")
	assert.Contains(t, md, "Súper")

	html := h.mustRun("report", "--format", "html")
	assert.Contains(t, html, "<table>")

	assert.Equal(t, "\"2024-05\"\n", h.mustRun("report", "-q", "$.months[0].month"))

	csvOut := h.mustRun("export")
	lines := strings.Split(strings.TrimSpace(csvOut), "\n")
	require.GreaterOrEqual(t, len(lines), 2)
	assert.True(t, strings.HasPrefix(lines[0], "Fecha,Concepto"))
	assert.Contains(t, lines[1], "2024-05-02,Súper,Comida,expense")

	target := filepath.Join(t.TempDir(), "out.html")
	h.mustRun("report", "--format", "html", "--out", target)
	written, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(written), "Resumen")
}

func TestBackendFlagOverridesConfig(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("--backend", "bogus", "status")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid data backend")
}
