package transport

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rpggio/postflow/internal/board"
	"github.com/rpggio/postflow/internal/domain/retainer"
	"github.com/rpggio/postflow/internal/domain/team"
)

func (s *Server) listRetainers(w http.ResponseWriter, r *http.Request) {
	activeOnly, _ := strconv.ParseBool(r.URL.Query().Get("active"))
	retainers, err := s.svc.Retainers.List(r.Context(), activeOnly)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, retainers)
}

func (s *Server) createRetainer(w http.ResponseWriter, r *http.Request) {
	var req retainer.CreateRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	ret, err := s.svc.Retainers.Create(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.reloadRetainers(r.Context())
	writeJSON(w, http.StatusCreated, ret)
}

func (s *Server) updateRetainer(w http.ResponseWriter, r *http.Request) {
	var req retainer.CreateRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	ret, err := s.svc.Retainers.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.reloadRetainers(r.Context())
	writeJSON(w, http.StatusOK, ret)
}

func (s *Server) deleteRetainer(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Retainers.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.reloadRetainers(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// reloadRetainers pushes the current retainer list to the board. Failures only
// leave the board stale until the next refresh.
func (s *Server) reloadRetainers(ctx context.Context) {
	retainers, err := s.svc.Retainers.List(ctx, false)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("retainer reload failed", "error", err)
		}
		return
	}
	s.svc.Board.Dispatch(board.RetainersLoaded{Retainers: retainers})
}

func (s *Server) listTeam(w http.ResponseWriter, r *http.Request) {
	members, err := s.svc.Team.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, members)
}

func (s *Server) createMember(w http.ResponseWriter, r *http.Request) {
	var req team.CreateRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	m, err := s.svc.Team.Create(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (s *Server) deleteMember(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Team.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
