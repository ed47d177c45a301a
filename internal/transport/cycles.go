package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rpggio/postflow/internal/board"
	"github.com/rpggio/postflow/internal/domain/cycle"
)

// MoveRequest asks for a cycle status change.
type MoveRequest struct {
	Status cycle.Status `json:"status"`
	Notes  string       `json:"notes,omitempty"`
}

func (s *Server) cycleBoard(w http.ResponseWriter, r *http.Request) {
	b, err := s.svc.Cycles.Board(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) createCycle(w http.ResponseWriter, r *http.Request) {
	var req cycle.CreateRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	c, err := s.svc.Cycles.CreateCycle(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) moveCycle(w http.ResponseWriter, r *http.Request) {
	var req MoveRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	c, err := s.svc.Cycles.MoveToStep(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "cycleID"), req.Status, req.Notes)
	if err != nil {
		if c != nil {
			s.writePartial(w, r, err, c)
			return
		}
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) approveCycle(w http.ResponseWriter, r *http.Request) {
	var req cycle.ApproveRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	result, err := s.svc.Cycles.MarkApproved(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "cycleID"), req)
	if result != nil && result.Project != nil {
		s.svc.Board.Dispatch(board.ProjectSaved{Project: *result.Project})
	}
	if err != nil {
		if result != nil {
			s.writePartial(w, r, err, result)
			return
		}
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) resetCycles(w http.ResponseWriter, r *http.Request) {
	c, err := s.svc.Cycles.ResetCycle(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}
