// Package http exposes the ledger over a JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	applog "rastreador/internal/log"
	"rastreador/internal/services"
)

type Server struct {
	http.Server
	svc          *services.LedgerService
	logger       *applog.Logger
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, svc *services.LedgerService, logger *applog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		svc:    svc,
		logger: logger.WithComponent(applog.ComponentHTTP),
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleHealth)

	mux.HandleFunc("GET /api/expenses", s.wrap(s.handleListExpenses))
	mux.HandleFunc("POST /api/expenses", s.wrap(s.handleCreateExpense))
	mux.HandleFunc("DELETE /api/expenses/{id}", s.wrap(s.handleDeleteExpense))
	mux.HandleFunc("POST /api/expenses/import", s.wrap(s.handleImportExpenses))

	mux.HandleFunc("GET /api/cards", s.wrap(s.handleListCards))
	mux.HandleFunc("POST /api/cards", s.wrap(s.handleCreateCard))
	mux.HandleFunc("PUT /api/cards/{id}", s.wrap(s.handleUpdateCard))
	mux.HandleFunc("DELETE /api/cards/{id}", s.wrap(s.handleDeleteCard))
	mux.HandleFunc("GET /api/cards/{name}/utilization", s.wrap(s.handleCardUtilization))
	mux.HandleFunc("GET /api/cards/{name}/invoice", s.wrap(s.handleCardInvoice))

	mux.HandleFunc("GET /api/goals", s.wrap(s.handleListGoals))
	mux.HandleFunc("POST /api/goals", s.wrap(s.handleCreateGoal))
	mux.HandleFunc("PUT /api/goals/{id}", s.wrap(s.handleUpdateGoal))
	mux.HandleFunc("DELETE /api/goals/{id}", s.wrap(s.handleDeleteGoal))

	mux.HandleFunc("GET /api/budget", s.wrap(s.handleBudgetStatus))
	mux.HandleFunc("PUT /api/budget", s.wrap(s.handleSetBudget))

	mux.HandleFunc("GET /api/summary", s.wrap(s.handleSummary))
	mux.HandleFunc("GET /api/meta", s.wrap(s.handleMeta))

	mux.HandleFunc("POST /api/backup", s.wrap(s.handleBackup))
	mux.HandleFunc("POST /api/restore", s.wrap(s.handleRestore))

	return s
}

// wrap attaches request ID tagging, headers and request logging to a handler.
func (s *Server) wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)
		w.Header().Set("X-Content-Type-Options", "nosniff")

		reqLogger := s.logger.With(applog.FieldRequestID, requestID)
		ctx := context.WithValue(r.Context(), applog.LoggerContextKey, reqLogger)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r.WithContext(ctx))

		reqLogger.InfoContext(ctx, "Request completed",
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldStatusCode, rec.status,
			applog.FieldDuration, time.Since(start).Milliseconds())
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// Shutdown gracefully shuts the server down.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		err = s.Server.Shutdown(ctx)
	})
	return err
}
