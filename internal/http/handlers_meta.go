package http

import (
	"net/http"

	"rastreador/internal/core"
)

type metaDTO struct {
	Categories     []core.Category      `json:"categories"`
	PaymentMethods []core.PaymentMethod `json:"payment_methods"`
	Networks       []core.CardNetwork   `json:"networks"`
	MonthNames     []string             `json:"month_names"`
}

// handleMeta returns the fixed vocabularies clients need to build forms.
func (s *Server) handleMeta(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, metaDTO{
		Categories:     core.Categories(),
		PaymentMethods: core.PaymentMethods(),
		Networks:       core.Networks(),
		MonthNames:     core.MonthNames,
	})
}
