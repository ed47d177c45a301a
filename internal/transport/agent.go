package transport

import (
	"net/http"

	"github.com/rpggio/postflow/internal/board"
	"github.com/rpggio/postflow/internal/planner"
)

// PlanRequest selects the planner horizon.
type PlanRequest struct {
	Mode string `json:"mode"`
}

func (s *Server) plan(w http.ResponseWriter, r *http.Request) {
	if s.svc.Planner == nil {
		s.writeError(w, r, planner.ErrModelUnavailable)
		return
	}
	var req PlanRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	state, err := s.boardState(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	snap := planner.Snapshot{Projects: state.Projects, Retainers: state.Retainers}
	if s.svc.Team != nil {
		members, err := s.svc.Team.List(r.Context())
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		snap.Team = members
	}

	plan, err := s.svc.Planner.Suggest(r.Context(), planner.ParseMode(req.Mode), snap)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.svc.Board.Dispatch(board.PlanReceived{Plan: *plan})
	writeJSON(w, http.StatusOK, plan)
}

func (s *Server) applyPlan(w http.ResponseWriter, r *http.Request) {
	if s.svc.Planner == nil {
		s.writeError(w, r, planner.ErrModelUnavailable)
		return
	}
	var action planner.Action
	if err := decodeJSON(r, &action); err != nil {
		s.writeError(w, r, err)
		return
	}
	proj, err := s.svc.Planner.Apply(r.Context(), action)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.svc.Board.Dispatch(board.ProjectSaved{Project: *proj})
	writeJSON(w, http.StatusOK, proj)
}
