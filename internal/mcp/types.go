package mcp

import (
	"github.com/rpggio/postflow/internal/domain/cycle"
	"github.com/rpggio/postflow/internal/domain/project"
	"github.com/rpggio/postflow/internal/estimate"
)

type ListProjectsParams struct {
	Status  string `json:"status,omitempty" jsonschema:"board status, e.g. Pendiente or En progreso"`
	Stage   string `json:"stage,omitempty" jsonschema:"production stage, e.g. edicion"`
	Manager string `json:"manager,omitempty"`
	Client  string `json:"client,omitempty"`
}

type GetProjectParams struct {
	ID string `json:"id"`
}

type CreateProjectParams struct {
	Name          string   `json:"name"`
	Client        string   `json:"client"`
	Managers      []string `json:"managers,omitempty"`
	Stage         string   `json:"stage,omitempty"`
	Status        string   `json:"status,omitempty"`
	StartDate     string   `json:"start_date,omitempty" jsonschema:"YYYY-MM-DD"`
	Deadline      string   `json:"deadline,omitempty" jsonschema:"YYYY-MM-DD"`
	RecordingDate string   `json:"recording_date,omitempty" jsonschema:"YYYY-MM-DD"`
	Income        float64  `json:"income,omitempty"`
}

type UpdateProjectParams struct {
	ID            string         `json:"id"`
	Name          *string        `json:"name,omitempty"`
	Client        *string        `json:"client,omitempty"`
	Managers      []string       `json:"managers,omitempty"`
	Stage         *string        `json:"stage,omitempty"`
	Status        *string        `json:"status,omitempty"`
	StartDate     *string        `json:"start_date,omitempty"`
	Deadline      *string        `json:"deadline,omitempty"`
	RecordingDate *string        `json:"recording_date,omitempty"`
	Income        *float64       `json:"income,omitempty"`
	Properties    map[string]any `json:"properties,omitempty" jsonschema:"merged into the project properties; null removes a key"`
}

type CycleBoardParams struct {
	ProjectID string `json:"project_id"`
}

type MoveCycleParams struct {
	ProjectID string `json:"project_id"`
	CycleID   string `json:"cycle_id"`
	Status    string `json:"status" jsonschema:"enviado, esperando_feedback, corrigiendo or aprobado"`
	Notes     string `json:"notes,omitempty"`
}

type ApproveCycleParams struct {
	ProjectID string `json:"project_id"`
	CycleID   string `json:"cycle_id"`
	Finalize  bool   `json:"finalize,omitempty" jsonschema:"deliver the project instead of opening the next cycle"`
	Notes     string `json:"notes,omitempty"`
}

type DashboardParams struct {
	Month string `json:"month,omitempty" jsonschema:"YYYY-MM, defaults to the current month"`
}

type MilestonesParams struct{}

type PlanParams struct {
	Mode string `json:"mode,omitempty" jsonschema:"diario or semanal"`
}

type ApplyActionParams struct {
	ProjectID string         `json:"project_id"`
	Patch     map[string]any `json:"patch" jsonschema:"project fields to change, as returned in a suggested action"`
}

type ProjectListResult struct {
	Projects []project.Project `json:"projects"`
}

type MilestonesResult struct {
	Durations  estimate.Durations    `json:"durations"`
	Milestones []estimate.Milestones `json:"milestones"`
}

// toPatch converts tool arguments into a project patch. Stage and status go
// through the same tolerant parsing the board uses.
func (p UpdateProjectParams) toPatch() (project.Patch, error) {
	patch := project.Patch{
		Name:          p.Name,
		Client:        p.Client,
		Managers:      p.Managers,
		StartDate:     p.StartDate,
		Deadline:      p.Deadline,
		RecordingDate: p.RecordingDate,
		Income:        p.Income,
		Properties:    p.Properties,
	}
	if p.Stage != nil {
		stage, err := project.ParseStage(*p.Stage)
		if err != nil {
			return project.Patch{}, err
		}
		patch.Stage = &stage
	}
	if p.Status != nil {
		status, err := project.ParseStatus(*p.Status)
		if err != nil {
			return project.Patch{}, err
		}
		patch.Status = &status
	}
	return patch, nil
}

type CycleBoardResult struct {
	*cycle.Board
	NextSteps []cycle.Status `json:"next_steps"`
}
