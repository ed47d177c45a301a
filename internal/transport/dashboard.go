package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rpggio/postflow/internal/board"
	"github.com/rpggio/postflow/internal/domain/project"
	"github.com/rpggio/postflow/internal/estimate"
	"github.com/rpggio/postflow/internal/workload"
)

const monthLayout = "2006-01"

// CalendarResponse lists the placements inside a window.
type CalendarResponse struct {
	From       string               `json:"from"`
	To         string               `json:"to"`
	Placements []workload.Placement `json:"placements"`
}

// MilestonesResponse lists projected milestones with the averages used.
type MilestonesResponse struct {
	Durations  estimate.Durations    `json:"durations"`
	Milestones []estimate.Milestones `json:"milestones"`
}

// boardState returns the cached board, loading it first if it was never
// refreshed.
func (s *Server) boardState(ctx context.Context) (board.State, error) {
	state := s.svc.Board.Snapshot()
	if !state.RefreshedAt.IsZero() || s.svc.Refresher == nil {
		return state, nil
	}
	if err := s.svc.Refresher.Refresh(ctx); err != nil && !errors.Is(err, board.ErrRefreshInFlight) {
		return board.State{}, err
	}
	return s.svc.Board.Snapshot(), nil
}

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("month")
	if month == "" {
		month = time.Now().Format(monthLayout)
	} else if _, err := time.Parse(monthLayout, month); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: month must be YYYY-MM", errBadRequest))
		return
	}

	state, err := s.boardState(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, workload.Summarize(state.Projects, state.Retainers, month))
}

func (s *Server) calendar(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, -1)
	q := r.URL.Query()
	if v := q.Get("from"); v != "" {
		t, err := project.ParseDate(v)
		if err != nil {
			s.writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
			return
		}
		from = t
	}
	if v := q.Get("to"); v != "" {
		t, err := project.ParseDate(v)
		if err != nil {
			s.writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
			return
		}
		to = t
	}
	if to.Before(from) {
		s.writeError(w, r, fmt.Errorf("%w: to before from", errBadRequest))
		return
	}

	state, err := s.boardState(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, CalendarResponse{
		From:       from.Format(project.DateLayout),
		To:         to.Format(project.DateLayout),
		Placements: workload.Calendar(state.Projects, from, to),
	})
}

func (s *Server) milestones(w http.ResponseWriter, r *http.Request) {
	projects, err := s.svc.Projects.List(r.Context(), project.ListOptions{})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	history, err := s.svc.Cycles.ByProject(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MilestonesResponse{
		Durations:  estimate.Averages(history),
		Milestones: estimate.ForProjects(projects, history, estimate.OverridesFromProjects(projects)),
	})
}
