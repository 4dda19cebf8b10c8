package http

import (
	"net/http"
	"strings"
	"time"

	"rastreador/internal/core"
)

type cardRequest struct {
	Name         string `json:"name"`
	Holder       string `json:"holder"`
	Number       string `json:"number"`
	Expiry       string `json:"expiry"`
	Network      string `json:"network"`
	Limit        string `json:"limit"`
	ClosingDay   int    `json:"closing_day"`
	StatementDue string `json:"statement_due"`
}

type cardDTO struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Holder       string `json:"holder"`
	MaskedNumber string `json:"masked_number"`
	Expiry       string `json:"expiry"`
	Network      string `json:"network"`
	Limit        string `json:"limit"`
	ClosingDay   int    `json:"closing_day,omitempty"`
	StatementDue string `json:"statement_due,omitempty"`
}

func toCardDTO(c core.Card) cardDTO {
	return cardDTO{
		ID:           c.ID,
		Name:         c.Name,
		Holder:       c.Holder,
		MaskedNumber: c.MaskedNumber,
		Expiry:       c.Expiry,
		Network:      string(c.Network),
		Limit:        core.FormatAmount(c.Limit),
		ClosingDay:   c.ClosingDay,
		StatementDue: c.StatementDue.String(),
	}
}

func (s *Server) cardFromRequest(w http.ResponseWriter, r *http.Request, req cardRequest) (core.Card, bool) {
	limit, err := core.ParseAmount(req.Limit)
	if err != nil {
		writeError(w, r, err)
		return core.Card{}, false
	}

	card := core.Card{
		Name:         strings.TrimSpace(req.Name),
		Holder:       strings.TrimSpace(req.Holder),
		MaskedNumber: core.MaskCardNumber(req.Number),
		Expiry:       strings.TrimSpace(req.Expiry),
		Network:      core.CardNetwork(req.Network),
		Limit:        limit,
		ClosingDay:   req.ClosingDay,
	}

	if strings.TrimSpace(req.StatementDue) != "" {
		due, err := core.ParseDate(req.StatementDue)
		if err != nil {
			writeError(w, r, err)
			return core.Card{}, false
		}
		card.StatementDue = due
	}
	return card, true
}

func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request) {
	cards := s.svc.Book().Cards()
	out := make([]cardDTO, 0, len(cards))
	for _, c := range cards {
		out = append(out, toCardDTO(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateCard(w http.ResponseWriter, r *http.Request) {
	var req cardRequest
	if !decodeBody(w, r, &req) {
		return
	}
	card, ok := s.cardFromRequest(w, r, req)
	if !ok {
		return
	}

	created, err := s.svc.AddCard(r.Context(), card)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCardDTO(created))
}

func (s *Server) handleUpdateCard(w http.ResponseWriter, r *http.Request) {
	var req cardRequest
	if !decodeBody(w, r, &req) {
		return
	}
	card, ok := s.cardFromRequest(w, r, req)
	if !ok {
		return
	}
	card.ID = r.PathValue("id")

	if err := s.svc.UpdateCard(r.Context(), card); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCardDTO(card))
}

func (s *Server) handleDeleteCard(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.RemoveCard(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type utilizationDTO struct {
	CardName  string  `json:"card_name"`
	Spent     string  `json:"spent"`
	Available string  `json:"available"`
	Percent   float64 `json:"percent"`
	Warning   bool    `json:"warning"`
}

func (s *Server) handleCardUtilization(w http.ResponseWriter, r *http.Request) {
	u, err := s.svc.Book().UtilizationFor(r.PathValue("name"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, utilizationDTO{
		CardName:  u.CardName,
		Spent:     core.FormatAmount(u.Spent),
		Available: core.FormatAmount(u.Available),
		Percent:   u.Percent,
		Warning:   u.Warning,
	})
}

type forecastDTO struct {
	CardName   string `json:"card_name"`
	Total      string `json:"total"`
	CycleStart string `json:"cycle_start,omitempty"`
	CycleEnd   string `json:"cycle_end,omitempty"`
}

// handleCardInvoice predicts the open invoice for a card. The optional ref
// query parameter (dd/mm/yyyy) overrides today as the reference date.
func (s *Server) handleCardInvoice(w http.ResponseWriter, r *http.Request) {
	ref := time.Now()
	if v := strings.TrimSpace(r.URL.Query().Get("ref")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			writeError(w, r, err)
			return
		}
		ref = d.Time
	}

	f, err := s.svc.Book().ForecastFor(r.PathValue("name"), ref)
	if err != nil {
		writeError(w, r, err)
		return
	}

	dto := forecastDTO{
		CardName: f.CardName,
		Total:    core.FormatAmount(f.Total),
	}
	if f.CycleStart != nil {
		dto.CycleStart = f.CycleStart.String()
	}
	if f.CycleEnd != nil {
		dto.CycleEnd = f.CycleEnd.String()
	}
	writeJSON(w, http.StatusOK, dto)
}
