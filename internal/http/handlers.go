package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"finanzas/internal/core"
	flog "finanzas/internal/log"
	"finanzas/internal/services"
	"finanzas/internal/store"
)

const (
	homeRecent = 3
	homeTrend  = 7
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.start).Round(time.Second).String(),
	})
}

// handleReady reports not ready when the store cannot list categories, even
// if a lenient store answered with the defaults.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"store": "ok"}
	status := http.StatusOK
	ctx, degraded := store.TrackDegraded(r.Context())
	if _, err := s.ready.ListCategories(ctx); err != nil {
		checks["store"] = "failed: " + err.Error()
		status = http.StatusServiceUnavailable
	} else if degraded.Load() {
		checks["store"] = "failed: degraded read"
		status = http.StatusServiceUnavailable
	}
	state := "ready"
	if status != http.StatusOK {
		state = "not_ready"
	}
	writeJSON(w, status, map[string]any{
		"status": state,
		"mode":   s.status.Mode,
		"checks": checks,
	})
}

// handleMetrics writes counters in Prometheus text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	tm := s.tracer.GetMetrics()
	rl := s.rateLimiter.GetMetrics()
	sec := s.detector.GetMetrics()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	fmt.Fprintf(w, "# TYPE http_requests_total counter\nhttp_requests_total %d\n", tm.TotalRequests)
	fmt.Fprintf(w, "# TYPE http_request_duration_avg_microseconds gauge\nhttp_request_duration_avg_microseconds %d\n", tm.AverageResponseTime)
	fmt.Fprintf(w, "# TYPE rate_limit_hits_total counter\nrate_limit_hits_total %d\n", rl.TotalHits)
	fmt.Fprintf(w, "# TYPE active_rate_limit_clients gauge\nactive_rate_limit_clients %d\n", rl.ClientCount)
	fmt.Fprintf(w, "# TYPE suspicious_requests_total counter\nsuspicious_requests_total %d\n", sec.SuspiciousRequests)
	fmt.Fprintf(w, "# TYPE uptime_seconds gauge\nuptime_seconds %.0f\n", time.Since(s.start).Seconds())
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.status)
}

type homeResponse struct {
	Household string             `json:"household"`
	Summary   core.Summary       `json:"summary"`
	Recent    []core.Transaction `json:"recent"`
	Trend     []core.TrendPoint  `json:"trend"`
	Users     []core.UserProfile `json:"users"`
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	txs, err := s.ledger.ListTransactions(r.Context())
	if err != nil {
		s.writeError(w, r, flog.OpList, err)
		return
	}
	users, err := s.ledger.ListUsers(r.Context())
	if err != nil {
		s.writeError(w, r, flog.OpList, err)
		return
	}
	writeJSON(w, http.StatusOK, homeResponse{
		Household: core.HouseholdLabel(users),
		Summary:   core.Summarize(txs),
		Recent:    core.Recent(txs, homeRecent),
		Trend:     core.Trend(txs, homeTrend),
		Users:     users,
	})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	txs, err := s.ledger.ListTransactions(r.Context())
	if err != nil {
		s.writeError(w, r, flog.OpList, err)
		return
	}
	writeJSON(w, http.StatusOK, core.Summarize(txs))
}

type budgetResponse struct {
	Balance    float64               `json:"balance"`
	Expense    float64               `json:"expense"`
	ByCategory []core.CategoryAmount `json:"byCategory"`
}

func (s *Server) handleBudget(w http.ResponseWriter, r *http.Request) {
	txs, err := s.ledger.ListTransactions(r.Context())
	if err != nil {
		s.writeError(w, r, flog.OpList, err)
		return
	}
	writeJSON(w, http.StatusOK, budgetResponse{
		Balance:    core.Balance(txs),
		Expense:    core.ExpenseTotal(txs),
		ByCategory: core.ByCategory(txs),
	})
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := core.TransactionFilter{
		Type:      core.TransactionType(q.Get("type")),
		CreatedBy: sanitizeInput(q.Get("createdBy")),
	}
	if filter.Type != "" && !filter.Type.IsValid() {
		s.writeError(w, r, flog.OpList, &services.ValidationError{Field: "type", Err: core.ErrInvalidType})
		return
	}
	txs, err := s.ledger.ListTransactions(r.Context())
	if err != nil {
		s.writeError(w, r, flog.OpList, err)
		return
	}
	txs = core.Filter(txs, filter)
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, r, flog.OpList, &services.ValidationError{Field: "limit", Err: errors.New("must be a non-negative integer")})
			return
		}
		txs = core.Recent(txs, n)
	}
	writeJSON(w, http.StatusOK, txs)
}

func (s *Server) handleNewDraft(w http.ResponseWriter, r *http.Request) {
	form, err := s.editor.NewDraft(r.Context())
	if err != nil {
		s.writeError(w, r, flog.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, form)
}

func (s *Server) handleEditDraft(w http.ResponseWriter, r *http.Request) {
	form, err := s.editor.EditDraft(r.Context(), r.PathValue("id"), nil)
	if err != nil {
		s.writeError(w, r, flog.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, form)
}

func (s *Server) readDraft(w http.ResponseWriter, r *http.Request) (services.Draft, error) {
	var d services.Draft
	if err := decodeJSON(r, w, &d); err != nil {
		return d, err
	}
	d.Title = sanitizeInput(d.Title)
	d.CreatedBy = sanitizeInput(d.CreatedBy)
	return d, nil
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	d, err := s.readDraft(w, r)
	if err != nil {
		s.writeError(w, r, flog.OpCreate, err)
		return
	}
	d.ID = ""
	out, err := s.editor.Submit(r.Context(), d)
	if err != nil {
		s.writeError(w, r, flog.OpCreate, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	d, err := s.readDraft(w, r)
	if err != nil {
		s.writeError(w, r, flog.OpUpdate, err)
		return
	}
	d.ID = r.PathValue("id")
	out, err := s.editor.Submit(r.Context(), d)
	if err != nil {
		s.writeError(w, r, flog.OpUpdate, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	id := r.PathValue("id")
	out, err := s.editor.Delete(r.Context(), id, confirmed)
	if err != nil {
		s.writeError(w, r, flog.OpDelete, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.ledger.ListCategories(r.Context())
	if err != nil {
		s.writeError(w, r, flog.OpList, err)
		return
	}
	if t := core.TransactionType(r.URL.Query().Get("type")); t != "" {
		if !t.IsValid() {
			s.writeError(w, r, flog.OpList, &services.ValidationError{Field: "type", Err: core.ErrInvalidType})
			return
		}
		cats = core.CategoriesFor(cats, t)
	}
	writeJSON(w, http.StatusOK, cats)
}

type newCategoryRequest struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req newCategoryRequest
	if err := decodeJSON(r, w, &req); err != nil {
		s.writeError(w, r, flog.OpCreate, err)
		return
	}
	cat, err := s.editor.AddCategory(r.Context(), sanitizeInput(req.Name), sanitizeInput(req.Icon))
	if err != nil {
		s.writeError(w, r, flog.OpCreate, err)
		return
	}
	writeJSON(w, http.StatusCreated, cat)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.ledger.ListUsers(r.Context())
	if err != nil {
		s.writeError(w, r, flog.OpList, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (s *Server) handleSaveUsers(w http.ResponseWriter, r *http.Request) {
	var users []core.UserProfile
	if err := decodeJSON(r, w, &users); err != nil {
		s.writeError(w, r, flog.OpUpdate, err)
		return
	}
	for i := range users {
		users[i].Name = sanitizeInput(users[i].Name)
		if err := users[i].Validate(); err != nil {
			s.writeError(w, r, flog.OpUpdate, &services.ValidationError{Field: fmt.Sprintf("users[%d]", i), Err: err})
			return
		}
	}
	if err := s.ledger.SaveUsers(r.Context(), users); err != nil {
		s.writeError(w, r, flog.OpUpdate, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}
