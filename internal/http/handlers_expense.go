package http

import (
	"net/http"
	"strconv"
	"strings"

	"rastreador/internal/core"
	"rastreador/internal/ledger"
)

type expenseRequest struct {
	Year        int    `json:"year"`
	Month       int    `json:"month"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	DueDate     string `json:"due_date"`
	Category    string `json:"category"`
	Note        string `json:"note"`
	Payment     string `json:"payment"`
	CardName    string `json:"card_name"`
}

type expenseDTO struct {
	ID          string `json:"id"`
	Year        string `json:"year"`
	Month       string `json:"month"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	DueDate     string `json:"due_date"`
	Category    string `json:"category"`
	Note        string `json:"note"`
	Payment     string `json:"payment"`
	CardName    string `json:"card_name,omitempty"`
}

func toExpenseDTO(e core.Expense) expenseDTO {
	return expenseDTO{
		ID:          e.ID,
		Year:        e.Year,
		Month:       e.Month,
		Description: e.Description,
		Amount:      core.FormatAmount(e.Amount),
		DueDate:     e.DueDate.String(),
		Category:    string(e.Category),
		Note:        e.Note,
		Payment:     string(e.Payment),
		CardName:    e.CardName,
	}
}

// monthQuery maps a numeric month query value (1 through 12) to the stored
// month name. Month names and anything else pass through unchanged.
func monthQuery(raw string) string {
	if n, err := strconv.Atoi(raw); err == nil {
		if name, ok := core.MonthName(n); ok {
			return name
		}
	}
	return raw
}

// handleListExpenses returns expenses filtered by the optional year, month
// and category query parameters. An absent or "All" value matches everything;
// the month may be given as a number or as a stored month name.
func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filtered := ledger.Filter(s.svc.Book().Expenses(),
		q.Get("year"), monthQuery(q.Get("month")), q.Get("category"))

	out := make([]expenseDTO, 0, len(filtered))
	for _, e := range filtered {
		out = append(out, toExpenseDTO(e))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if !decodeBody(w, r, &req) {
		return
	}

	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	due, err := core.ParseDate(req.DueDate)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if req.Year < 1 {
		badRequest(w, "invalid year")
		return
	}
	monthName, ok := core.MonthName(req.Month)
	if !ok {
		badRequest(w, "month must be between 1 and 12")
		return
	}

	created, err := s.svc.AddExpense(r.Context(), core.Expense{
		Year:        strconv.Itoa(req.Year),
		Month:       monthName,
		Description: strings.TrimSpace(req.Description),
		Amount:      amount,
		DueDate:     due,
		Category:    core.Category(req.Category),
		Note:        strings.TrimSpace(req.Note),
		Payment:     core.PaymentMethod(req.Payment),
		CardName:    strings.TrimSpace(req.CardName),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toExpenseDTO(created))
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.RemoveExpense(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type importRequest struct {
	Rows [][]string `json:"rows"`
}

type importResponse struct {
	Imported int `json:"imported"`
}

func (s *Server) handleImportExpenses(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.Rows) == 0 {
		badRequest(w, "no rows to import")
		return
	}

	n, err := s.svc.ImportExpenses(r.Context(), req.Rows)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, importResponse{Imported: n})
}
