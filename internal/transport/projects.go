package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rpggio/postflow/internal/board"
	"github.com/rpggio/postflow/internal/domain/project"
)

func (s *Server) listProjects(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := project.ListOptions{
		Manager: q.Get("manager"),
		Client:  q.Get("client"),
	}
	if v := q.Get("status"); v != "" {
		status, err := project.ParseStatus(v)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		opts.Status = &status
	}
	if v := q.Get("stage"); v != "" {
		stage, err := project.ParseStage(v)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		opts.Stage = &stage
	}

	projects, err := s.svc.Projects.List(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

func (s *Server) createProject(w http.ResponseWriter, r *http.Request) {
	var req project.CreateRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	proj, err := s.svc.Projects.Create(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.svc.Board.Dispatch(board.ProjectSaved{Project: *proj})
	writeJSON(w, http.StatusCreated, proj)
}

func (s *Server) getProject(w http.ResponseWriter, r *http.Request) {
	proj, err := s.svc.Projects.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, proj)
}

func (s *Server) updateProject(w http.ResponseWriter, r *http.Request) {
	var req project.CreateRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	proj, err := s.svc.Projects.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.svc.Board.Dispatch(board.ProjectSaved{Project: *proj})
	writeJSON(w, http.StatusOK, proj)
}

func (s *Server) patchProject(w http.ResponseWriter, r *http.Request) {
	var patch project.Patch
	if err := decodeJSON(r, &patch); err != nil {
		s.writeError(w, r, err)
		return
	}
	proj, err := s.svc.Projects.Patch(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.svc.Board.Dispatch(board.ProjectSaved{Project: *proj})
	writeJSON(w, http.StatusOK, proj)
}

func (s *Server) deleteProject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.svc.Projects.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.svc.Board.Dispatch(board.ProjectRemoved{ID: id})
	w.WriteHeader(http.StatusNoContent)
}
