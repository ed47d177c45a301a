package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/postflow/internal/board"
	"github.com/rpggio/postflow/internal/domain/cycle"
	"github.com/rpggio/postflow/internal/domain/project"
	"github.com/rpggio/postflow/internal/estimate"
	"github.com/rpggio/postflow/internal/planner"
	"github.com/rpggio/postflow/internal/workload"
)

type toolset struct {
	svc    Services
	logger *slog.Logger
}

func registerTools(server *sdkmcp.Server, t *toolset) {
	// Projects
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_projects",
		Description: "List projects, optionally filtered by status, stage, manager or client",
	}, t.listProjects)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_project",
		Description: "Get one project by ID",
	}, t.getProject)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "create_project",
		Description: "Create a project. Stage defaults to grabacion and status to Pendiente",
	}, t.createProject)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "update_project",
		Description: "Change some fields of a project; omitted fields are kept",
	}, t.updateProject)

	// Revision cycles
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_cycle_board",
		Description: "Get a project's revision cycles, history and allowed next steps. Creates cycle 1 when none exists",
	}, t.cycleBoard)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "move_cycle",
		Description: "Move a revision cycle to its next status and record the change",
	}, t.moveCycle)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "approve_cycle",
		Description: "Approve a revision cycle. Opens the next cycle, or delivers the project with finalize",
	}, t.approveCycle)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "reset_cycles",
		Description: "Delete every cycle and history event of a project and start again at cycle 1",
	}, t.resetCycles)

	// Planning
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_dashboard",
		Description: "Workload per manager, stage and status counts, and retainer quota usage for a month",
	}, t.dashboard)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_milestones",
		Description: "Projected first version, review checkpoint and final delivery dates from historical cycle durations",
	}, t.milestones)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "suggest_plan",
		Description: "Ask the planning model for a daily or weekly plan over the current projects",
	}, t.suggestPlan)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "apply_action",
		Description: "Apply a suggested project update",
	}, t.applyAction)
}

func jsonResult(v any) (*sdkmcp.CallToolResult, any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, nil, fmt.Errorf("encoding result: %w", err)
	}
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
	}, nil, nil
}

func (t *toolset) saved(p *project.Project) {
	if t.svc.Board != nil && p != nil {
		t.svc.Board.Dispatch(board.ProjectSaved{Project: *p})
	}
}

func (t *toolset) listProjects(ctx context.Context, _ *sdkmcp.CallToolRequest, in ListProjectsParams) (*sdkmcp.CallToolResult, any, error) {
	opts := project.ListOptions{Manager: in.Manager, Client: in.Client}
	if in.Status != "" {
		status, err := project.ParseStatus(in.Status)
		if err != nil {
			return nil, nil, toolError(err)
		}
		opts.Status = &status
	}
	if in.Stage != "" {
		stage, err := project.ParseStage(in.Stage)
		if err != nil {
			return nil, nil, toolError(err)
		}
		opts.Stage = &stage
	}
	projects, err := t.svc.Projects.List(ctx, opts)
	if err != nil {
		return nil, nil, toolError(err)
	}
	if projects == nil {
		projects = []project.Project{}
	}
	return jsonResult(ProjectListResult{Projects: projects})
}

func (t *toolset) getProject(ctx context.Context, _ *sdkmcp.CallToolRequest, in GetProjectParams) (*sdkmcp.CallToolResult, any, error) {
	p, err := t.svc.Projects.Get(ctx, in.ID)
	if err != nil {
		return nil, nil, toolError(err)
	}
	return jsonResult(p)
}

func (t *toolset) createProject(ctx context.Context, _ *sdkmcp.CallToolRequest, in CreateProjectParams) (*sdkmcp.CallToolResult, any, error) {
	req := project.CreateRequest{
		Name:          in.Name,
		Client:        in.Client,
		Managers:      in.Managers,
		StartDate:     in.StartDate,
		Deadline:      in.Deadline,
		RecordingDate: in.RecordingDate,
		Income:        in.Income,
	}
	if in.Stage != "" {
		stage, err := project.ParseStage(in.Stage)
		if err != nil {
			return nil, nil, toolError(err)
		}
		req.Stage = stage
	}
	if in.Status != "" {
		status, err := project.ParseStatus(in.Status)
		if err != nil {
			return nil, nil, toolError(err)
		}
		req.Status = status
	}
	p, err := t.svc.Projects.Create(ctx, req)
	if err != nil {
		return nil, nil, toolError(err)
	}
	t.saved(p)
	return jsonResult(p)
}

func (t *toolset) updateProject(ctx context.Context, _ *sdkmcp.CallToolRequest, in UpdateProjectParams) (*sdkmcp.CallToolResult, any, error) {
	patch, err := in.toPatch()
	if err != nil {
		return nil, nil, toolError(err)
	}
	p, err := t.svc.Projects.Patch(ctx, in.ID, patch)
	if err != nil {
		return nil, nil, toolError(err)
	}
	t.saved(p)
	return jsonResult(p)
}

func (t *toolset) cycleBoard(ctx context.Context, _ *sdkmcp.CallToolRequest, in CycleBoardParams) (*sdkmcp.CallToolResult, any, error) {
	b, err := t.svc.Cycles.Board(ctx, in.ProjectID)
	if err != nil {
		return nil, nil, toolError(err)
	}
	result := CycleBoardResult{Board: b, NextSteps: []cycle.Status{}}
	if b.Current != nil {
		result.NextSteps = cycle.NextSteps(b.Current.Status)
	}
	return jsonResult(result)
}

func (t *toolset) moveCycle(ctx context.Context, _ *sdkmcp.CallToolRequest, in MoveCycleParams) (*sdkmcp.CallToolResult, any, error) {
	c, err := t.svc.Cycles.MoveToStep(ctx, in.ProjectID, in.CycleID, cycle.Status(in.Status), in.Notes)
	if err != nil {
		return nil, nil, toolError(err)
	}
	return jsonResult(c)
}

func (t *toolset) approveCycle(ctx context.Context, _ *sdkmcp.CallToolRequest, in ApproveCycleParams) (*sdkmcp.CallToolResult, any, error) {
	result, err := t.svc.Cycles.MarkApproved(ctx, in.ProjectID, in.CycleID, cycle.ApproveRequest{Finalize: in.Finalize, Notes: in.Notes})
	if result != nil {
		t.saved(result.Project)
	}
	if err != nil {
		return nil, nil, toolError(err)
	}
	return jsonResult(result)
}

func (t *toolset) resetCycles(ctx context.Context, _ *sdkmcp.CallToolRequest, in CycleBoardParams) (*sdkmcp.CallToolResult, any, error) {
	c, err := t.svc.Cycles.ResetCycle(ctx, in.ProjectID)
	if err != nil {
		return nil, nil, toolError(err)
	}
	return jsonResult(c)
}

func (t *toolset) dashboard(ctx context.Context, _ *sdkmcp.CallToolRequest, in DashboardParams) (*sdkmcp.CallToolResult, any, error) {
	month := in.Month
	if month == "" {
		month = time.Now().Format("2006-01")
	} else if _, err := time.Parse("2006-01", month); err != nil {
		return nil, nil, &APIError{Code: "INVALID_INPUT", Message: "month must be YYYY-MM"}
	}
	projects, err := t.svc.Projects.List(ctx, project.ListOptions{})
	if err != nil {
		return nil, nil, toolError(err)
	}
	retainers, err := t.svc.Retainers.List(ctx, false)
	if err != nil {
		return nil, nil, toolError(err)
	}
	return jsonResult(workload.Summarize(projects, retainers, month))
}

func (t *toolset) milestones(ctx context.Context, _ *sdkmcp.CallToolRequest, _ MilestonesParams) (*sdkmcp.CallToolResult, any, error) {
	projects, err := t.svc.Projects.List(ctx, project.ListOptions{})
	if err != nil {
		return nil, nil, toolError(err)
	}
	history, err := t.svc.Cycles.ByProject(ctx)
	if err != nil {
		return nil, nil, toolError(err)
	}
	return jsonResult(MilestonesResult{
		Durations:  estimate.Averages(history),
		Milestones: estimate.ForProjects(projects, history, estimate.OverridesFromProjects(projects)),
	})
}

func (t *toolset) suggestPlan(ctx context.Context, _ *sdkmcp.CallToolRequest, in PlanParams) (*sdkmcp.CallToolResult, any, error) {
	if t.svc.Planner == nil {
		return nil, nil, toolError(planner.ErrModelUnavailable)
	}
	projects, err := t.svc.Projects.List(ctx, project.ListOptions{})
	if err != nil {
		return nil, nil, toolError(err)
	}
	retainers, err := t.svc.Retainers.List(ctx, false)
	if err != nil {
		return nil, nil, toolError(err)
	}
	snap := planner.Snapshot{Projects: projects, Retainers: retainers}
	if t.svc.Team != nil {
		if snap.Team, err = t.svc.Team.List(ctx); err != nil {
			return nil, nil, toolError(err)
		}
	}
	plan, err := t.svc.Planner.Suggest(ctx, planner.ParseMode(in.Mode), snap)
	if err != nil {
		return nil, nil, toolError(err)
	}
	if t.svc.Board != nil {
		t.svc.Board.Dispatch(board.PlanReceived{Plan: *plan})
	}
	return jsonResult(plan)
}

func (t *toolset) applyAction(ctx context.Context, _ *sdkmcp.CallToolRequest, in ApplyActionParams) (*sdkmcp.CallToolResult, any, error) {
	if t.svc.Planner == nil {
		return nil, nil, toolError(planner.ErrModelUnavailable)
	}
	action := planner.Action{Type: planner.ActionUpdateProject, ProjectID: in.ProjectID}
	if in.Patch != nil {
		raw, err := json.Marshal(in.Patch)
		if err != nil {
			return nil, nil, fmt.Errorf("encoding patch: %w", err)
		}
		action.Patch = raw
	}
	p, err := t.svc.Planner.Apply(ctx, action)
	if err != nil {
		return nil, nil, toolError(err)
	}
	if t.logger != nil {
		t.logger.Info("mcp action applied", "project_id", p.ID)
	}
	t.saved(p)
	return jsonResult(p)
}
