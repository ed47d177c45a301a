// Package workload derives dashboard aggregates from the in-memory project
// list. Every function recomputes from scratch in a single pass.
package workload

import (
	"sort"

	"github.com/rpggio/postflow/internal/domain/project"
	"github.com/rpggio/postflow/internal/domain/retainer"
)

// Unassigned is the bucket for projects without a manager.
const Unassigned = "Sin asignar"

// Load labels.
const (
	LoadHigh       = "Carga alta"
	LoadMedium     = "Carga media"
	LoadControlled = "Carga controlada"
)

// ManagerLoad is the active project count for one manager.
type ManagerLoad struct {
	Manager string `json:"manager"`
	Active  int    `json:"active"`
	Label   string `json:"label"`
}

// LoadLabel classifies an active project count.
func LoadLabel(active int) string {
	switch {
	case active >= 5:
		return LoadHigh
	case active >= 3:
		return LoadMedium
	default:
		return LoadControlled
	}
}

// Summary is the dashboard aggregate.
type Summary struct {
	Month     string                 `json:"month,omitempty"`
	Total     int                    `json:"total"`
	Active    int                    `json:"active"`
	Managers  []ManagerLoad          `json:"managers"`
	Stages    map[project.Stage]int  `json:"stages"`
	Statuses  map[project.Status]int `json:"statuses"`
	Retainers []RetainerUsage        `json:"retainers"`
}

type tally struct {
	managers map[string]int
	stages   map[project.Stage]int
	statuses map[project.Status]int
	total    int
	active   int
}

func newTally() *tally {
	t := &tally{
		managers: make(map[string]int),
		stages:   make(map[project.Stage]int),
		statuses: make(map[project.Status]int),
	}
	for _, s := range project.Stages {
		t.stages[s] = 0
	}
	for _, s := range project.BoardColumns {
		t.statuses[s] = 0
	}
	return t
}

func (t *tally) add(p project.Project) {
	t.total++
	if p.Stage != "" {
		t.stages[p.Stage]++
	}
	t.statuses[project.NormalizeStatus(string(p.Status))]++
	if !p.Active() {
		return
	}
	t.active++
	names := p.ManagerNames()
	if len(names) == 0 {
		names = []string{Unassigned}
	}
	for _, name := range names {
		t.managers[name]++
	}
}

func (t *tally) managerLoads() []ManagerLoad {
	loads := make([]ManagerLoad, 0, len(t.managers))
	for name, n := range t.managers {
		loads = append(loads, ManagerLoad{Manager: name, Active: n, Label: LoadLabel(n)})
	}
	sort.Slice(loads, func(i, j int) bool {
		if loads[i].Active != loads[j].Active {
			return loads[i].Active > loads[j].Active
		}
		return loads[i].Manager < loads[j].Manager
	})
	return loads
}

// Managers counts active projects per manager. A project with several
// managers counts once for each of them.
func Managers(projects []project.Project) []ManagerLoad {
	t := newTally()
	for _, p := range projects {
		t.add(p)
	}
	return t.managerLoads()
}

// StageCounts counts projects per production stage.
func StageCounts(projects []project.Project) map[project.Stage]int {
	t := newTally()
	for _, p := range projects {
		t.add(p)
	}
	return t.stages
}

// StatusCounts counts projects per board column.
func StatusCounts(projects []project.Project) map[project.Status]int {
	t := newTally()
	for _, p := range projects {
		t.add(p)
	}
	return t.statuses
}

// Summarize computes the full dashboard for a month key (YYYY-MM). Only
// active retainers are compared against their quota.
func Summarize(projects []project.Project, retainers []retainer.Retainer, month string) Summary {
	t := newTally()
	usage := make([]*usageTally, 0, len(retainers))
	for _, r := range retainers {
		if r.Active {
			usage = append(usage, newUsageTally(r, month))
		}
	}

	for _, p := range projects {
		t.add(p)
		for _, u := range usage {
			u.add(p)
		}
	}

	out := Summary{
		Month:     month,
		Total:     t.total,
		Active:    t.active,
		Managers:  t.managerLoads(),
		Stages:    t.stages,
		Statuses:  t.statuses,
		Retainers: make([]RetainerUsage, 0, len(usage)),
	}
	for _, u := range usage {
		out.Retainers = append(out.Retainers, u.result())
	}
	return out
}
