package workload

import (
	"sort"
	"time"

	"github.com/rpggio/postflow/internal/domain/project"
)

// Placement kinds.
const (
	PlacementRange     = "range"
	PlacementRecording = "recording"
)

// Placement positions a project on a calendar or timeline.
type Placement struct {
	ProjectID string         `json:"project_id"`
	Name      string         `json:"name"`
	Kind      string         `json:"kind"`
	Start     string         `json:"start"`
	End       string         `json:"end"`
	Status    project.Status `json:"status"`
}

// Calendar places projects that intersect [from, to]. Projects span from
// start date to deadline (a missing end collapses to a single day) and get a
// separate single-day placement for their recording date. Ranges are clipped
// to the window.
func Calendar(projects []project.Project, from, to time.Time) []Placement {
	out := make([]Placement, 0, len(projects))
	for _, p := range projects {
		start, startErr := project.ParseDate(p.StartDate)
		end, endErr := project.ParseDate(p.Deadline)
		switch {
		case startErr == nil && endErr != nil:
			end = start
		case startErr != nil && endErr == nil:
			start = end
		}
		if startErr == nil || endErr == nil {
			if s, e, ok := clip(start, end, from, to); ok {
				out = append(out, placement(p, PlacementRange, s, e))
			}
		}
		if rec, err := project.ParseDate(p.RecordingDate); err == nil {
			if s, e, ok := clip(rec, rec, from, to); ok {
				out = append(out, placement(p, PlacementRecording, s, e))
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

func clip(start, end, from, to time.Time) (time.Time, time.Time, bool) {
	if end.Before(from) || start.After(to) {
		return time.Time{}, time.Time{}, false
	}
	if start.Before(from) {
		start = from
	}
	if end.After(to) {
		end = to
	}
	return start, end, true
}

func placement(p project.Project, kind string, start, end time.Time) Placement {
	return Placement{
		ProjectID: p.ID,
		Name:      p.Name,
		Kind:      kind,
		Start:     start.Format(project.DateLayout),
		End:       end.Format(project.DateLayout),
		Status:    p.Status,
	}
}
