// Package board holds the server-side view of the project board: the last
// loaded projects and retainers, the active filters and the last plan.
// State changes only through Reduce.
package board

import (
	"sort"
	"strings"
	"time"

	"github.com/rpggio/postflow/internal/domain/project"
	"github.com/rpggio/postflow/internal/domain/retainer"
	"github.com/rpggio/postflow/internal/planner"
)

// Filters narrow the visible projects.
type Filters struct {
	Status  project.Status `json:"status,omitempty"`
	Stage   project.Stage  `json:"stage,omitempty"`
	Manager string         `json:"manager,omitempty"`
	Client  string         `json:"client,omitempty"`
	Query   string         `json:"query,omitempty"`
}

// State is an immutable board snapshot.
type State struct {
	Projects    []project.Project   `json:"projects"`
	Retainers   []retainer.Retainer `json:"retainers"`
	Filters     Filters             `json:"filters"`
	Plan        *planner.Plan       `json:"plan,omitempty"`
	Generation  uint64              `json:"generation"`
	RefreshedAt time.Time           `json:"refreshed_at"`
}

// Action is a state change request.
type Action interface {
	action()
}

// ProjectsLoaded replaces the project list with a full reload.
type ProjectsLoaded struct {
	Generation uint64
	Projects   []project.Project
	At         time.Time
}

// ProjectSaved inserts or replaces one project after the store confirmed it.
type ProjectSaved struct {
	Generation uint64
	Project    project.Project
}

// ProjectRemoved drops one project after the store confirmed the delete.
type ProjectRemoved struct {
	Generation uint64
	ID         string
}

// RetainersLoaded replaces the retainer list.
type RetainersLoaded struct {
	Retainers []retainer.Retainer
}

// FiltersChanged replaces the active filters.
type FiltersChanged struct {
	Filters Filters
}

// PlanReceived records the latest planner suggestions.
type PlanReceived struct {
	Plan planner.Plan
}

func (ProjectsLoaded) action()  {}
func (ProjectSaved) action()    {}
func (ProjectRemoved) action()  {}
func (RetainersLoaded) action() {}
func (FiltersChanged) action()  {}
func (PlanReceived) action()    {}

// Reduce returns the state that results from applying a. The input state is
// never modified. A reload older than the state's generation is dropped.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case ProjectsLoaded:
		if a.Generation <= s.Generation {
			return s
		}
		s.Projects = sortProjects(append([]project.Project(nil), a.Projects...))
		s.Generation = a.Generation
		s.RefreshedAt = a.At
	case ProjectSaved:
		projects := make([]project.Project, 0, len(s.Projects)+1)
		replaced := false
		for _, p := range s.Projects {
			if p.ID == a.Project.ID {
				projects = append(projects, a.Project)
				replaced = true
				continue
			}
			projects = append(projects, p)
		}
		if !replaced {
			projects = append(projects, a.Project)
		}
		s.Projects = sortProjects(projects)
		s.Generation = maxGen(s.Generation, a.Generation)
	case ProjectRemoved:
		projects := make([]project.Project, 0, len(s.Projects))
		for _, p := range s.Projects {
			if p.ID != a.ID {
				projects = append(projects, p)
			}
		}
		s.Projects = projects
		s.Generation = maxGen(s.Generation, a.Generation)
	case RetainersLoaded:
		s.Retainers = append([]retainer.Retainer(nil), a.Retainers...)
	case FiltersChanged:
		s.Filters = a.Filters
	case PlanReceived:
		plan := a.Plan
		s.Plan = &plan
	}
	return s
}

// Visible returns the projects that pass the filters.
func (s State) Visible() []project.Project {
	out := make([]project.Project, 0, len(s.Projects))
	for _, p := range s.Projects {
		if s.Filters.match(p) {
			out = append(out, p)
		}
	}
	return out
}

func (f Filters) match(p project.Project) bool {
	if f.Status != "" && project.NormalizeStatus(string(p.Status)) != f.Status {
		return false
	}
	if f.Stage != "" && p.Stage != f.Stage {
		return false
	}
	if f.Client != "" && !strings.EqualFold(p.Client, f.Client) {
		return false
	}
	if f.Manager != "" {
		found := false
		for _, m := range p.ManagerNames() {
			if strings.EqualFold(m, f.Manager) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		if !strings.Contains(strings.ToLower(p.Name), q) && !strings.Contains(strings.ToLower(p.Client), q) {
			return false
		}
	}
	return true
}

// sortProjects orders by deadline with undated projects last, then by name,
// matching the repository listing.
func sortProjects(projects []project.Project) []project.Project {
	sort.SliceStable(projects, func(i, j int) bool {
		a, b := projects[i].Deadline, projects[j].Deadline
		if (a == "") != (b == "") {
			return b == ""
		}
		if a != b {
			return a < b
		}
		return projects[i].Name < projects[j].Name
	})
	return projects
}

func maxGen(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}
