package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `postflow tracks video post-production projects for a small studio.

Core concepts:
- Project: one production with a stage (grabacion, edicion, revision, correcciones, entregado) and a board status (Pendiente, En progreso, En revisión, Completado).
- Revision cycle: one round of client review. Steps: editando -> enviado -> esperando_feedback <-> corrigiendo -> aprobado.
- Retainer: a monthly contract with a project quota. Projects match a retainer by tag or client name.

Workflow:
1) Orient: list_projects, then get_dashboard for the month.
2) Review work: get_cycle_board returns the current cycle and next_steps. Only listed steps are accepted by move_cycle.
3) Approve: approve_cycle opens the next cycle; pass finalize=true to deliver the project.
4) Plan: get_milestones for projected dates, suggest_plan for model suggestions, apply_action to apply one.

Dates are YYYY-MM-DD. Months are YYYY-MM.

Docs:
- postflow://docs/cycles
- postflow://docs/planning
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "postflow://docs/cycles",
		Name:        "docs_cycles",
		Title:       "Revision cycles",
		Description: "How revision cycles move and what each step records.",
		Content: `# Revision cycles

Each project has numbered revision cycles. The project keeps a pointer to the current one.

| From | Allowed moves |
|---|---|
| editando | enviado |
| enviado | esperando_feedback, corrigiendo |
| esperando_feedback | corrigiendo |
| corrigiendo | esperando_feedback, aprobado |

- Moving to enviado stamps sent_at.
- The first move to corrigiendo or aprobado stamps client_returned_at.
- Every move appends a history event with from/to status and notes.
- approve_cycle is accepted from enviado, esperando_feedback and corrigiendo.
  Without finalize it opens cycle N+1 in editando; with finalize the project becomes Completado / entregado.
- reset_cycles wipes cycles and history and recreates cycle 1. It cannot be undone.

If a move reports HISTORY_NOT_RECORDED the cycle itself was saved.
`,
	},
	{
		URI:         "postflow://docs/planning",
		Name:        "docs_planning",
		Title:       "Workload and planning",
		Description: "Dashboard numbers, milestone estimates and planner suggestions.",
		Content: `# Workload and planning

## Dashboard
- Managers with 5+ active projects are "Carga alta", 3-4 "Carga media", fewer "Carga controlada". Projects without a manager count as "Sin asignar".
- Retainer usage counts distinct project names that started or were completed in the month.

## Milestones
Estimates use average editing, review and feedback days from past cycles (fallback 2/1/1) and skip weekends:
- editing starts the business day after recording
- first version after the editing days
- review checkpoint and final delivery follow
Only active projects with a recording date and no cycles yet are estimated.
Manual dates in the project property "milestones" (first_version, review_checkpoint, final_delivery) win.

## Planner
suggest_plan mode "diario" prioritises deliveries in the next 48 hours, "semanal" balances the week against team capacity.
Actions of type UPDATE_PROJECT carry a project_id and a patch; pass both to apply_action.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		doc := doc

		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
