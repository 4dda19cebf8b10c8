package http

import (
	"net/http"
	"strings"

	"rastreador/internal/core"
	"rastreador/internal/ledger"
)

type goalRequest struct {
	Name    string `json:"name"`
	Target  string `json:"target"`
	Current string `json:"current"`
	Start   string `json:"start"`
	End     string `json:"end"`
}

type goalDTO struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Target   string  `json:"target"`
	Current  string  `json:"current"`
	Start    string  `json:"start"`
	End      string  `json:"end"`
	Percent  float64 `json:"percent"`
	Complete bool    `json:"complete"`
}

func toGoalDTO(g core.Goal) goalDTO {
	progress := ledger.ProgressOf(g)
	return goalDTO{
		ID:       g.ID,
		Name:     g.Name,
		Target:   core.FormatAmount(g.Target),
		Current:  core.FormatAmount(g.Current),
		Start:    g.Start.String(),
		End:      g.End.String(),
		Percent:  progress.Percent,
		Complete: progress.Complete,
	}
}

func goalFromRequest(w http.ResponseWriter, r *http.Request, req goalRequest) (core.Goal, bool) {
	target, err := core.ParseAmount(req.Target)
	if err != nil {
		writeError(w, r, err)
		return core.Goal{}, false
	}
	current, err := core.ParseAmount(req.Current)
	if err != nil {
		writeError(w, r, err)
		return core.Goal{}, false
	}
	start, err := core.ParseDate(req.Start)
	if err != nil {
		writeError(w, r, err)
		return core.Goal{}, false
	}
	end, err := core.ParseDate(req.End)
	if err != nil {
		writeError(w, r, err)
		return core.Goal{}, false
	}

	return core.Goal{
		Name:    strings.TrimSpace(req.Name),
		Target:  target,
		Current: current,
		Start:   start,
		End:     end,
	}, true
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	goals := s.svc.Book().Goals()
	out := make([]goalDTO, 0, len(goals))
	for _, g := range goals {
		out = append(out, toGoalDTO(g))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if !decodeBody(w, r, &req) {
		return
	}
	goal, ok := goalFromRequest(w, r, req)
	if !ok {
		return
	}

	created, err := s.svc.AddGoal(r.Context(), goal)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toGoalDTO(created))
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if !decodeBody(w, r, &req) {
		return
	}
	goal, ok := goalFromRequest(w, r, req)
	if !ok {
		return
	}
	goal.ID = r.PathValue("id")

	if err := s.svc.UpdateGoal(r.Context(), goal); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toGoalDTO(goal))
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.RemoveGoal(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
