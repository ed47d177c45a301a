// Package planner asks a generative model for advisory scheduling
// suggestions. Nothing it returns is applied without an explicit request.
package planner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/rpggio/postflow/internal/domain/project"
	"github.com/rpggio/postflow/internal/domain/retainer"
	"github.com/rpggio/postflow/internal/domain/team"
)

var (
	// ErrModelUnavailable indicates the model could not be reached.
	ErrModelUnavailable = errors.New("planner model unavailable")
	// ErrNotApplicable indicates an action cannot be applied directly.
	ErrNotApplicable = errors.New("action is not applicable")
)

// Mode selects the planning horizon.
type Mode string

const (
	ModeDaily  Mode = "diario"
	ModeWeekly Mode = "semanal"
)

// ParseMode defaults anything unknown to the daily plan.
func ParseMode(s string) Mode {
	if Mode(strings.ToLower(strings.TrimSpace(s))) == ModeWeekly {
		return ModeWeekly
	}
	return ModeDaily
}

// ActionUpdateProject marks an action carrying a project patch.
const ActionUpdateProject = "UPDATE_PROJECT"

// Action is one suggestion from the model.
type Action struct {
	Project        string         `json:"project"`
	Client         string         `json:"client"`
	Phase          string         `json:"phase"`
	Issue          string         `json:"issue"`
	Recommendation string         `json:"recommendation"`
	Justification  string         `json:"justification"`
	Type           string         `json:"type,omitempty"`
	ProjectID      string         `json:"projectId,omitempty"`
	Patch          json.RawMessage `json:"patch,omitempty"`
}

// UpdateAction builds an UPDATE_PROJECT action for the given patch.
func UpdateAction(projectID string, patch project.Patch) (Action, error) {
	raw, err := json.Marshal(patch)
	if err != nil {
		return Action{}, fmt.Errorf("encoding patch: %w", err)
	}
	return Action{Type: ActionUpdateProject, ProjectID: projectID, Patch: raw}, nil
}

// Applicable reports whether the action can be applied as a project patch.
func (a Action) Applicable() bool {
	return a.Type == ActionUpdateProject && a.ProjectID != "" && hasPatch(a.Patch)
}

// ProjectPatch decodes the action's patch. Unknown stages or statuses are
// reported as invalid input.
func (a Action) ProjectPatch() (project.Patch, error) {
	var patch project.Patch
	if !hasPatch(a.Patch) {
		return patch, ErrNotApplicable
	}
	if err := json.Unmarshal(a.Patch, &patch); err != nil {
		if errors.Is(err, project.ErrInvalidInput) {
			return project.Patch{}, err
		}
		return project.Patch{}, fmt.Errorf("%w: %v", project.ErrInvalidInput, err)
	}
	return patch, nil
}

func hasPatch(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && !bytes.Equal(raw, []byte("null"))
}

// Plan is the parsed model response.
type Plan struct {
	Summary string   `json:"summary"`
	Actions []Action `json:"actions"`
}

// Snapshot is the data sent to the model.
type Snapshot struct {
	Today     string              `json:"today"`
	Projects  []project.Project   `json:"projects"`
	Retainers []retainer.Retainer `json:"retainers"`
	Team      []team.Member       `json:"team"`
}

// ProjectPatcher applies patches to projects.
type ProjectPatcher interface {
	Patch(ctx context.Context, id string, patch project.Patch) (*project.Project, error)
}

// Planner builds prompts, calls the model and applies accepted actions.
type Planner struct {
	model    Model
	projects ProjectPatcher
	logger   *slog.Logger
	now      func() time.Time
}

// New creates a planner. model may be nil when no API key is configured.
func New(model Model, projects ProjectPatcher, logger *slog.Logger) *Planner {
	return &Planner{
		model:    model,
		projects: projects,
		logger:   logger,
		now:      time.Now,
	}
}

// Suggest asks the model for a plan. Unparseable output degrades to an
// empty plan; only model failures are returned as errors.
func (p *Planner) Suggest(ctx context.Context, mode Mode, snap Snapshot) (*Plan, error) {
	if p.model == nil {
		return nil, ErrModelUnavailable
	}
	if snap.Today == "" {
		snap.Today = p.now().Format(project.DateLayout)
	}
	prompt, err := BuildPrompt(mode, snap)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	text, err := p.model.Generate(ctx, prompt)
	if err != nil {
		if p.logger != nil {
			p.logger.Error("planner model call failed", "mode", mode, "error", err)
		}
		return nil, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}
	plan := ExtractPlan(text)
	if p.logger != nil {
		p.logger.Info("planner suggestions", "mode", mode, "actions", len(plan.Actions), "duration_ms", time.Since(start).Milliseconds())
	}
	return &plan, nil
}

// Apply patches the project named by an UPDATE_PROJECT action.
func (p *Planner) Apply(ctx context.Context, action Action) (*project.Project, error) {
	if !action.Applicable() {
		return nil, ErrNotApplicable
	}
	patch, err := action.ProjectPatch()
	if err != nil {
		return nil, err
	}
	updated, err := p.projects.Patch(ctx, action.ProjectID, patch)
	if err != nil {
		return nil, err
	}
	if p.logger != nil {
		p.logger.Info("planner action applied", "project_id", action.ProjectID)
	}
	return updated, nil
}

var objectPattern = regexp.MustCompile(`(?s)\{.*\}`)

// ExtractPlan pulls the first JSON object out of free model text. Text that
// is not valid JSON yields an empty plan. Patches stay undecoded until Apply.
func ExtractPlan(text string) Plan {
	empty := Plan{Actions: []Action{}}
	block := objectPattern.FindString(text)
	if block == "" {
		return empty
	}
	var plan Plan
	dec := json.NewDecoder(strings.NewReader(block))
	if err := dec.Decode(&plan); err != nil {
		return empty
	}
	if plan.Actions == nil {
		plan.Actions = []Action{}
	}
	return plan
}
