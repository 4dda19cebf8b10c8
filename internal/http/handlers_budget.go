package http

import (
	"net/http"
	"strings"

	"rastreador/internal/core"
	"rastreador/internal/ledger"
)

type budgetRequest struct {
	Amount string `json:"amount"`
}

// budgetStatusDTO renders the budget indicator with the same comma-decimal
// formatting as every other money field in the API.
type budgetStatusDTO struct {
	Budget      string  `json:"budget"`
	Spent       string  `json:"spent"`
	Remaining   string  `json:"remaining"`
	Utilization float64 `json:"utilization"`
}

func toBudgetStatusDTO(b ledger.BudgetStatus) budgetStatusDTO {
	return budgetStatusDTO{
		Budget:      core.FormatAmount(b.Budget),
		Spent:       core.FormatAmount(b.Spent),
		Remaining:   core.FormatAmount(b.Remaining),
		Utilization: b.Utilization,
	}
}

func (s *Server) handleBudgetStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toBudgetStatusDTO(s.svc.Book().BudgetStatus()))
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if !decodeBody(w, r, &req) {
		return
	}

	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.svc.SetBudget(r.Context(), amount); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBudgetStatusDTO(s.svc.Book().BudgetStatus()))
}

type categoryTotalDTO struct {
	Category string `json:"category"`
	Total    string `json:"total"`
}

type summaryDTO struct {
	Total      string             `json:"total"`
	ByCategory []categoryTotalDTO `json:"by_category"`
	Budget     budgetStatusDTO    `json:"budget"`
}

// handleSummary aggregates the expenses matching the optional year, month and
// category filters alongside the budget indicator.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filtered := ledger.Filter(s.svc.Book().Expenses(),
		q.Get("year"), monthQuery(q.Get("month")), q.Get("category"))

	breakdown := ledger.CategoryBreakdown(filtered)
	byCategory := make([]categoryTotalDTO, 0, len(breakdown))
	for _, ct := range breakdown {
		byCategory = append(byCategory, categoryTotalDTO{
			Category: string(ct.Category),
			Total:    core.FormatAmount(ct.Total),
		})
	}

	writeJSON(w, http.StatusOK, summaryDTO{
		Total:      core.FormatAmount(ledger.Total(filtered, nil)),
		ByCategory: byCategory,
		Budget:     toBudgetStatusDTO(s.svc.Book().BudgetStatus()),
	})
}

type backupResponse struct {
	Path string `json:"path"`
}

func (s *Server) handleBackup(w http.ResponseWriter, r *http.Request) {
	path, err := s.svc.Backup(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, backupResponse{Path: path})
}

type restoreRequest struct {
	Path string `json:"path"`
}

func (s *Server) handleRestore(w http.ResponseWriter, r *http.Request) {
	var req restoreRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Path) == "" {
		badRequest(w, "backup path is required")
		return
	}

	if err := s.svc.Restore(r.Context(), req.Path); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
