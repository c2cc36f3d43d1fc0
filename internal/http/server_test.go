package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"finanzas/internal/cache"
	"finanzas/internal/core"
	flog "finanzas/internal/log"
	"finanzas/internal/services"
	"finanzas/internal/store"
	"finanzas/internal/store/kv"
	"finanzas/internal/store/local"
)

func newTestServer(t *testing.T, s store.Store) *Server {
	t.Helper()
	if s == nil {
		s = local.New(kv.NewMemory())
	}
	srv := NewServer(":0", s, Options{
		RateLimitPerMinute: 1000,
		Logger:             flog.New(flog.Config{Output: &bytes.Buffer{}}),
		Status:             Status{Mode: "memory"},
	})
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv
}

func do(t *testing.T, srv *Server, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return v
}

func expenseDraft(amount string) services.Draft {
	return services.Draft{
		Title:         "Súper",
		Amount:        amount,
		CategoryID:    "cat_1",
		Date:          "2024-05-01",
		Type:          core.Expense,
		PaymentMethod: core.PaymentDebit,
		CreatedBy:     "Valeria",
	}
}

func TestHealthAndReady(t *testing.T) {
	srv := newTestServer(t, nil)
	for _, path := range []string{"/healthz", "/readyz", "/api/status", "/metrics"} {
		rr := do(t, srv, http.MethodGet, path, nil)
		if rr.Code != http.StatusOK {
			t.Errorf("%s status=%d body=%s", path, rr.Code, rr.Body.String())
		}
	}
	rr := do(t, srv, http.MethodGet, "/api/status", nil)
	if st := decode[Status](t, rr); st.Mode != "memory" {
		t.Errorf("status = %+v", st)
	}
	if rr.Header().Get("X-Content-Type-Options") != "nosniff" || rr.Header().Get("X-Request-ID") == "" {
		t.Errorf("missing middleware headers: %v", rr.Header())
	}
}

func TestTransactionLifecycle(t *testing.T) {
	srv := newTestServer(t, nil)

	rr := do(t, srv, http.MethodPost, "/api/transactions", expenseDraft("50"))
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status=%d body=%s", rr.Code, rr.Body.String())
	}
	out := decode[services.Outcome](t, rr)
	if out.ID == "" || out.Next != services.HomeRoute {
		t.Fatalf("unexpected outcome %+v", out)
	}

	sum := decode[core.Summary](t, do(t, srv, http.MethodGet, "/api/summary", nil))
	if sum.Balance != -50 || sum.Expense != 50 {
		t.Fatalf("summary = %+v", sum)
	}

	form := decode[services.Form](t, do(t, srv, http.MethodGet, "/api/transactions/"+out.ID, nil))
	if form.Mode != services.ModeEdit || form.Draft.Amount != "50" {
		t.Fatalf("edit draft = %+v", form.Draft)
	}

	rr = do(t, srv, http.MethodPut, "/api/transactions/"+out.ID, expenseDraft("75"))
	if rr.Code != http.StatusOK {
		t.Fatalf("update status=%d body=%s", rr.Code, rr.Body.String())
	}
	txs := decode[[]core.Transaction](t, do(t, srv, http.MethodGet, "/api/transactions", nil))
	if len(txs) != 1 || txs[0].Amount != -75 || txs[0].CategoryName != "Comida" {
		t.Fatalf("after update: %+v", txs)
	}

	rr = do(t, srv, http.MethodDelete, "/api/transactions/"+out.ID, nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unconfirmed delete status=%d", rr.Code)
	}
	rr = do(t, srv, http.MethodDelete, "/api/transactions/"+out.ID+"?confirm=true", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("delete status=%d body=%s", rr.Code, rr.Body.String())
	}
	txs = decode[[]core.Transaction](t, do(t, srv, http.MethodGet, "/api/transactions", nil))
	if len(txs) != 0 {
		t.Fatalf("expected empty ledger, got %+v", txs)
	}
}

func TestCreateValidation(t *testing.T) {
	srv := newTestServer(t, nil)
	tests := []struct {
		name  string
		body  any
		field string
	}{
		{"bad amount", expenseDraft("abc"), "amount"},
		{"signed amount", expenseDraft("-3"), "amount"},
		{"unknown category", func() services.Draft { d := expenseDraft("1"); d.CategoryID = "nope"; return d }(), "categoryId"},
		{"bad date", func() services.Draft { d := expenseDraft("1"); d.Date = "01/05/2024"; return d }(), "date"},
		{"unknown field", `{"title":"x","bogus":1}`, "body"},
		{"trailing data", `{"title":"x"} {}`, "body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, srv, http.MethodPost, "/api/transactions", tt.body)
			if rr.Code != http.StatusUnprocessableEntity {
				t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
			}
			if got := decode[errorBody](t, rr); got.Field != tt.field {
				t.Errorf("field = %q, want %q", got.Field, tt.field)
			}
		})
	}
}

func TestUpdateMissingIsNotFound(t *testing.T) {
	srv := newTestServer(t, nil)
	rr := do(t, srv, http.MethodPut, "/api/transactions/missing", expenseDraft("5"))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	rr = do(t, srv, http.MethodGet, "/api/transactions/missing", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("edit draft status=%d", rr.Code)
	}
}

func TestListFilters(t *testing.T) {
	srv := newTestServer(t, nil)
	do(t, srv, http.MethodPost, "/api/transactions", expenseDraft("10"))
	income := expenseDraft("100")
	income.Type = core.Income
	income.CategoryID = "cat_4"
	income.CreatedBy = "Andrés"
	do(t, srv, http.MethodPost, "/api/transactions", income)

	tests := []struct {
		query string
		want  int
		code  int
	}{
		{"", 2, http.StatusOK},
		{"?type=income", 1, http.StatusOK},
		{"?createdBy=valeria", 1, http.StatusOK},
		{"?limit=1", 1, http.StatusOK},
		{"?type=transfer", 0, http.StatusUnprocessableEntity},
		{"?limit=-1", 0, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		rr := do(t, srv, http.MethodGet, "/api/transactions"+tt.query, nil)
		if rr.Code != tt.code {
			t.Errorf("%s: status=%d", tt.query, rr.Code)
			continue
		}
		if tt.code == http.StatusOK {
			if got := len(decode[[]core.Transaction](t, rr)); got != tt.want {
				t.Errorf("%s: %d results, want %d", tt.query, got, tt.want)
			}
		}
	}
}

func TestHomeAndBudget(t *testing.T) {
	srv := newTestServer(t, nil)
	home := decode[homeResponse](t, do(t, srv, http.MethodGet, "/api/home", nil))
	if home.Household != "Valeria y Andrés" || len(home.Trend) != 2 || len(home.Recent) != 0 {
		t.Fatalf("empty home = %+v", home)
	}

	for i := 0; i < 4; i++ {
		do(t, srv, http.MethodPost, "/api/transactions", expenseDraft("10"))
	}
	home = decode[homeResponse](t, do(t, srv, http.MethodGet, "/api/home", nil))
	if len(home.Recent) != 3 || len(home.Trend) != 4 || home.Summary.Count != 4 {
		t.Fatalf("home = %+v", home)
	}

	budget := decode[budgetResponse](t, do(t, srv, http.MethodGet, "/api/budget", nil))
	if budget.Expense != 40 || len(budget.ByCategory) != 1 || budget.ByCategory[0].Name != "Comida" {
		t.Fatalf("budget = %+v", budget)
	}
}

func TestCategoriesAndUsers(t *testing.T) {
	srv := newTestServer(t, nil)

	cats := decode[[]core.Category](t, do(t, srv, http.MethodGet, "/api/categories?type=income", nil))
	if len(cats) != 1 || cats[0].Name != "Salario" {
		t.Fatalf("income categories = %+v", cats)
	}

	rr := do(t, srv, http.MethodPost, "/api/categories", newCategoryRequest{Name: "Mascotas", Icon: "pets"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create category status=%d body=%s", rr.Code, rr.Body.String())
	}
	if c := decode[core.Category](t, rr); c.ID == "" || c.Type != core.CategoryBoth {
		t.Fatalf("created category = %+v", c)
	}
	if rr := do(t, srv, http.MethodPost, "/api/categories", newCategoryRequest{Name: "  "}); rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("blank category status=%d", rr.Code)
	}
	rr = do(t, srv, http.MethodPost, "/api/categories", newCategoryRequest{Name: "Ocio", Icon: "no-such-icon"})
	if rr.Code != http.StatusUnprocessableEntity || !strings.Contains(rr.Body.String(), `"icon"`) {
		t.Errorf("unknown icon status=%d body=%s", rr.Code, rr.Body.String())
	}

	users := core.DefaultUsers()
	users[1].Name = "Andy"
	rr = do(t, srv, http.MethodPut, "/api/users", users)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "saved") {
		t.Fatalf("save users status=%d body=%s", rr.Code, rr.Body.String())
	}
	got := decode[[]core.UserProfile](t, do(t, srv, http.MethodGet, "/api/users", nil))
	if len(got) != 2 || got[1].Name != "Andy" {
		t.Fatalf("users = %+v", got)
	}

	users[0].Name = ""
	if rr := do(t, srv, http.MethodPut, "/api/users", users); rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("invalid user status=%d", rr.Code)
	}
}

type brokenStore struct {
	store.Store
	err error
}

func (b brokenStore) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.Store.ListTransactions(ctx)
}

func (b brokenStore) ListCategories(ctx context.Context) ([]core.Category, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.Store.ListCategories(ctx)
}

func TestStoreErrorsMapToStatus(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{store.ErrUnavailable, http.StatusServiceUnavailable},
		{store.ErrCorrupt, http.StatusInternalServerError},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		srv := newTestServer(t, brokenStore{Store: local.New(kv.NewMemory()), err: tt.err})
		rr := do(t, srv, http.MethodGet, "/api/summary", nil)
		if rr.Code != tt.code {
			t.Errorf("%v: status=%d, want %d", tt.err, rr.Code, tt.code)
		}
	}

	srv := newTestServer(t, brokenStore{Store: local.New(kv.NewMemory()), err: store.ErrUnavailable})
	if rr := do(t, srv, http.MethodGet, "/readyz", nil); rr.Code != http.StatusServiceUnavailable {
		t.Errorf("readyz status=%d", rr.Code)
	}
}

func TestReadyzBypassesCacheAndLenientFallback(t *testing.T) {
	backing := &brokenStore{Store: local.New(kv.NewMemory())}
	lenient := store.Lenient(backing)
	cached := cache.NewStore(lenient, time.Minute)
	srv := NewServer(":0", cached, Options{
		RateLimitPerMinute: 1000,
		Logger:             flog.New(flog.Config{Output: &bytes.Buffer{}}),
		Readiness:          lenient,
	})
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	if rr := do(t, srv, http.MethodGet, "/readyz", nil); rr.Code != http.StatusOK {
		t.Fatalf("healthy readyz status=%d", rr.Code)
	}
	if rr := do(t, srv, http.MethodGet, "/api/categories", nil); rr.Code != http.StatusOK {
		t.Fatalf("categories status=%d", rr.Code)
	}

	backing.err = store.ErrUnavailable
	if rr := do(t, srv, http.MethodGet, "/readyz", nil); rr.Code != http.StatusServiceUnavailable {
		t.Errorf("readyz after outage status=%d, want 503", rr.Code)
	}
	if rr := do(t, srv, http.MethodGet, "/api/summary", nil); rr.Code != http.StatusOK {
		t.Errorf("lenient summary status=%d, want 200", rr.Code)
	}
}

func TestRateLimitOnWrites(t *testing.T) {
	srv := NewServer(":0", local.New(kv.NewMemory()), Options{
		RateLimitPerMinute: 1,
		Logger:             flog.New(flog.Config{Output: &bytes.Buffer{}}),
	})
	defer srv.Shutdown(context.Background())

	do(t, srv, http.MethodPost, "/api/transactions", expenseDraft("1"))
	rr := do(t, srv, http.MethodPost, "/api/transactions", expenseDraft("1"))
	if rr.Code != http.StatusTooManyRequests || rr.Header().Get("Retry-After") != "60" {
		t.Fatalf("status=%d headers=%v", rr.Code, rr.Header())
	}
	if rr := do(t, srv, http.MethodGet, "/api/transactions", nil); rr.Code != http.StatusOK {
		t.Errorf("reads must not be limited, got %d", rr.Code)
	}
}

func TestSuspiciousRequestRejected(t *testing.T) {
	srv := newTestServer(t, nil)
	if rr := do(t, srv, http.MethodGet, "/.env", nil); rr.Code != http.StatusBadRequest {
		t.Errorf("status=%d", rr.Code)
	}
}

func TestSanitizeInput(t *testing.T) {
	if got := sanitizeInput("  a\x00b\tc\n "); got != "ab\tc" {
		t.Errorf("got %q", got)
	}
}
