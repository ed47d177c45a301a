package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rpggio/postflow/internal/board"
	"github.com/rpggio/postflow/internal/domain/cycle"
	"github.com/rpggio/postflow/internal/domain/project"
	"github.com/rpggio/postflow/internal/domain/retainer"
	"github.com/rpggio/postflow/internal/domain/team"
	"github.com/rpggio/postflow/internal/estimate"
	"github.com/rpggio/postflow/internal/planner"
	"github.com/rpggio/postflow/internal/sqlite"
	"github.com/rpggio/postflow/internal/workload"
	"github.com/stretchr/testify/require"
)

type cannedModel struct {
	reply string
}

func (m cannedModel) Generate(context.Context, string) (string, error) {
	return m.reply, nil
}

type testAPI struct {
	t      *testing.T
	server *httptest.Server
	token  string
	store  *board.Store
	db     *sqlite.DB
}

func newTestAPI(t *testing.T, model planner.Model) *testAPI {
	t.Helper()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	t.Cleanup(func() { _ = db.Close() })

	projects := project.NewService(sqlite.NewProjectRepository(db), nil)
	cycles := cycle.NewService(sqlite.NewCycleRepository(db), sqlite.NewHistoryRepository(db), projects, nil)
	retainers := retainer.NewService(sqlite.NewRetainerRepository(db), nil)
	members := team.NewService(sqlite.NewTeamRepository(db), nil)
	keys := sqlite.NewAPIKeyRepository(db)
	require.NoError(t, keys.Add(context.Background(), "secret", "test"))

	store := board.NewStore()
	svc := Services{
		Projects:  projects,
		Cycles:    cycles,
		Retainers: retainers,
		Team:      members,
		Board:     store,
		Refresher: board.NewRefresher(store, projects, retainers, 0, nil),
	}
	if model != nil {
		svc.Planner = planner.New(model, projects, nil)
	}

	router := NewServer(svc, Options{
		Auth:   AuthMiddleware(keys),
		Health: db.Ping,
		Public: map[string]string{"VITE_N8N_BASE_URL": "http://n8n.local"},
	})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return &testAPI{t: t, server: server, token: "secret", store: store, db: db}
}

func (a *testAPI) do(method, path string, body any, out any) int {
	a.t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, a.server.URL+path, reader)
	require.NoError(a.t, err)
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(a.t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode < 300 && resp.StatusCode != http.StatusNoContent {
		require.NoError(a.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (a *testAPI) createProject(req project.CreateRequest) project.Project {
	a.t.Helper()
	var p project.Project
	require.Equal(a.t, http.StatusCreated, a.do(http.MethodPost, "/api/projects", req, &p))
	return p
}

func TestHTTPServer_Health(t *testing.T) {
	api := newTestAPI(t, nil)

	resp, err := http.Get(api.server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHTTPServer_RequiresToken(t *testing.T) {
	api := newTestAPI(t, nil)
	api.token = ""
	require.Equal(t, http.StatusUnauthorized, api.do(http.MethodGet, "/api/projects", nil, nil))

	api.token = "wrong"
	require.Equal(t, http.StatusUnauthorized, api.do(http.MethodGet, "/api/projects", nil, nil))
}

func TestHTTPServer_Config(t *testing.T) {
	api := newTestAPI(t, nil)

	var public map[string]string
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/config", nil, &public))
	require.Equal(t, "http://n8n.local", public["VITE_N8N_BASE_URL"])
}

func TestHTTPServer_ProjectLifecycle(t *testing.T) {
	api := newTestAPI(t, nil)

	created := api.createProject(project.CreateRequest{
		Name:     "Spot Verano",
		Client:   "Carbono",
		Managers: []string{"Ana"},
		Stage:    project.StageEditing,
	})
	require.NotEmpty(t, created.ID)
	require.Equal(t, project.StatusPending, created.Status)
	api.createProject(project.CreateRequest{Name: "Documental", Client: "Otro"})

	var got project.Project
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/projects/"+created.ID, nil, &got))
	require.Equal(t, "Spot Verano", got.Name)

	var listed []project.Project
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/projects?stage=edicion", nil, &listed))
	require.Len(t, listed, 1)
	require.Equal(t, created.ID, listed[0].ID)

	require.Equal(t, http.StatusBadRequest, api.do(http.MethodGet, "/api/projects?status=unknown", nil, nil))

	status := project.StatusInProgress
	var patched project.Project
	require.Equal(t, http.StatusOK, api.do(http.MethodPatch, "/api/projects/"+created.ID, project.Patch{Status: &status}, &patched))
	require.Equal(t, project.StatusInProgress, patched.Status)
	require.Equal(t, "Carbono", patched.Client)

	// The board follows mutations without a reload.
	var onBoard bool
	for _, p := range api.store.Snapshot().Projects {
		if p.ID == created.ID {
			onBoard = p.Status == project.StatusInProgress
		}
	}
	require.True(t, onBoard)

	require.Equal(t, http.StatusNoContent, api.do(http.MethodDelete, "/api/projects/"+created.ID, nil, nil))
	require.Equal(t, http.StatusNotFound, api.do(http.MethodGet, "/api/projects/"+created.ID, nil, nil))
}

func TestHTTPServer_ProjectValidation(t *testing.T) {
	api := newTestAPI(t, nil)

	require.Equal(t, http.StatusBadRequest, api.do(http.MethodPost, "/api/projects", project.CreateRequest{Client: "x"}, nil))
	require.Equal(t, http.StatusBadRequest, api.do(http.MethodPost, "/api/projects", nil, nil))
	require.Equal(t, http.StatusNotFound, api.do(http.MethodDelete, "/api/projects/missing", nil, nil))
}

func TestHTTPServer_LegacyRoutes(t *testing.T) {
	api := newTestAPI(t, nil)

	var created project.Project
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/crear-proyecto", project.CreateRequest{Name: "Spot", Client: "C"}, &created))

	name := "Spot final"
	var updated project.Project
	require.Equal(t, http.StatusOK, api.do(http.MethodPut, "/actualizar-proyecto/"+created.ID, project.Patch{Name: &name}, &updated))
	require.Equal(t, "Spot final", updated.Name)
	require.Equal(t, "C", updated.Client)

	var listed []project.Project
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/obtener-proyectos", nil, &listed))
	require.Len(t, listed, 1)

	require.Equal(t, http.StatusNoContent, api.do(http.MethodDelete, "/eliminar-proyecto/"+created.ID, nil, nil))
}

func TestHTTPServer_CycleWorkflow(t *testing.T) {
	api := newTestAPI(t, nil)
	p := api.createProject(project.CreateRequest{Name: "Spot", Client: "C"})
	base := "/api/projects/" + p.ID + "/cycles"

	var b cycle.Board
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, base, nil, &b))
	require.NotNil(t, b.Current)
	require.Equal(t, 1, b.Current.Number)
	require.Equal(t, cycle.StatusEditing, b.Current.Status)
	cycleID := b.Current.ID

	require.Equal(t, http.StatusConflict,
		api.do(http.MethodPost, base+"/"+cycleID+"/move", MoveRequest{Status: cycle.StatusApproved}, nil))

	var moved cycle.Cycle
	require.Equal(t, http.StatusOK,
		api.do(http.MethodPost, base+"/"+cycleID+"/move", MoveRequest{Status: cycle.StatusSent, Notes: "v1"}, &moved))
	require.Equal(t, cycle.StatusSent, moved.Status)
	require.NotNil(t, moved.SentAt)

	var approved cycle.ApproveResult
	require.Equal(t, http.StatusOK, api.do(http.MethodPost, base+"/"+cycleID+"/approve", nil, &approved))
	require.Equal(t, cycle.StatusApproved, approved.Cycle.Status)
	require.NotNil(t, approved.Next)
	require.Equal(t, 2, approved.Next.Number)

	require.Equal(t, http.StatusOK, api.do(http.MethodGet, base, nil, &b))
	require.Len(t, b.Cycles, 2)
	require.Len(t, b.History, 2)
	require.Equal(t, 2, b.Current.Number)

	require.Equal(t, http.StatusConflict, api.do(http.MethodPost, base, cycle.CreateRequest{Number: 2}, nil))

	var reset cycle.Cycle
	require.Equal(t, http.StatusOK, api.do(http.MethodPost, base+"/reset", nil, &reset))
	require.Equal(t, 1, reset.Number)

	require.Equal(t, http.StatusNotFound, api.do(http.MethodPost, base+"/missing/move", MoveRequest{Status: cycle.StatusSent}, nil))
}

func TestHTTPServer_ApproveFinalize(t *testing.T) {
	api := newTestAPI(t, nil)
	p := api.createProject(project.CreateRequest{Name: "Spot", Client: "C"})
	base := "/api/projects/" + p.ID + "/cycles"

	var b cycle.Board
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, base, nil, &b))
	require.Equal(t, http.StatusOK, api.do(http.MethodPost, base+"/"+b.Current.ID+"/move", MoveRequest{Status: cycle.StatusSent}, nil))

	var result cycle.ApproveResult
	require.Equal(t, http.StatusOK,
		api.do(http.MethodPost, base+"/"+b.Current.ID+"/approve", cycle.ApproveRequest{Finalize: true}, &result))
	require.Nil(t, result.Next)
	require.NotNil(t, result.Project)
	require.Equal(t, project.StatusCompleted, result.Project.Status)
	require.Equal(t, project.StageDelivered, result.Project.Stage)
}

func TestHTTPServer_ApproveReportsLostHistoryWithResult(t *testing.T) {
	api := newTestAPI(t, nil)
	p := api.createProject(project.CreateRequest{Name: "Spot", Client: "C"})
	base := "/api/projects/" + p.ID + "/cycles"

	var b cycle.Board
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, base, nil, &b))
	require.Equal(t, http.StatusOK, api.do(http.MethodPost, base+"/"+b.Current.ID+"/move", MoveRequest{Status: cycle.StatusSent}, nil))

	_, err := api.db.Exec(`DROP TABLE revision_history`)
	require.NoError(t, err)

	data, err := json.Marshal(cycle.ApproveRequest{})
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, api.server.URL+base+"/"+b.Current.ID+"/approve", bytes.NewReader(data))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+api.token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var body struct {
		Error  string              `json:"error"`
		Result cycle.ApproveResult `json:"result"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "history_not_recorded", body.Error)
	require.NotNil(t, body.Result.Cycle)
	require.Equal(t, cycle.StatusApproved, body.Result.Cycle.Status)
	require.NotNil(t, body.Result.Next, "the next cycle is still opened")
	require.Equal(t, 2, body.Result.Next.Number)
}

func TestHTTPServer_Catalog(t *testing.T) {
	api := newTestAPI(t, nil)

	var r retainer.Retainer
	require.Equal(t, http.StatusCreated,
		api.do(http.MethodPost, "/api/retainers", retainer.CreateRequest{Client: "Carbono", Monthly: 1000, ProjectsPerMonth: 2}, &r))
	require.True(t, r.Active)

	inactive := false
	require.Equal(t, http.StatusOK,
		api.do(http.MethodPut, "/api/retainers/"+r.ID, retainer.CreateRequest{Client: "Carbono", Monthly: 1200, ProjectsPerMonth: 2, Active: &inactive}, &r))
	require.False(t, r.Active)

	var active []retainer.Retainer
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/retainers?active=true", nil, &active))
	require.Empty(t, active)
	require.Equal(t, http.StatusNoContent, api.do(http.MethodDelete, "/api/retainers/"+r.ID, nil, nil))
	require.Equal(t, http.StatusNotFound, api.do(http.MethodDelete, "/api/retainers/"+r.ID, nil, nil))

	var m team.Member
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/api/team", team.CreateRequest{Name: "Luis", Role: "editor"}, &m))
	var members []team.Member
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/team", nil, &members))
	require.Len(t, members, 1)
	require.Equal(t, http.StatusNoContent, api.do(http.MethodDelete, "/api/team/"+m.ID, nil, nil))
}

func TestHTTPServer_Dashboard(t *testing.T) {
	api := newTestAPI(t, nil)

	require.Equal(t, http.StatusCreated,
		api.do(http.MethodPost, "/api/retainers", retainer.CreateRequest{Client: "Carbono", Monthly: 1000, ProjectsPerMonth: 1}, nil))
	api.createProject(project.CreateRequest{Name: "Spot A", Client: "Carbono", Manager: "Ana", StartDate: "2025-02-03"})
	api.createProject(project.CreateRequest{Name: "Spot B", Client: "Carbono", Manager: "Ana", StartDate: "2025-02-10"})
	api.createProject(project.CreateRequest{Name: "Otro", Client: "Otro", Manager: "Luis", StartDate: "2025-03-01"})

	var summary workload.Summary
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/dashboard?month=2025-02", nil, &summary))
	require.Equal(t, 3, summary.Total)
	require.Len(t, summary.Retainers, 1)
	require.Equal(t, 2, summary.Retainers[0].Used)
	require.True(t, summary.Retainers[0].Exceeded)

	require.Equal(t, http.StatusBadRequest, api.do(http.MethodGet, "/api/dashboard?month=febrero", nil, nil))
}

func TestHTTPServer_Calendar(t *testing.T) {
	api := newTestAPI(t, nil)
	api.createProject(project.CreateRequest{Name: "Spot", Client: "C", StartDate: "2025-01-28", Deadline: "2025-02-05", RecordingDate: "2025-01-29"})

	var cal CalendarResponse
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/calendar?from=2025-02-01&to=2025-02-28", nil, &cal))
	require.Len(t, cal.Placements, 1)
	require.Equal(t, "2025-02-01", cal.Placements[0].Start)
	require.Equal(t, "2025-02-05", cal.Placements[0].End)

	require.Equal(t, http.StatusBadRequest, api.do(http.MethodGet, "/api/calendar?from=2025-02-10&to=2025-02-01", nil, nil))
}

func TestHTTPServer_Milestones(t *testing.T) {
	api := newTestAPI(t, nil)
	api.createProject(project.CreateRequest{Name: "Spot", Client: "C", RecordingDate: "2025-02-03"})

	var resp MilestonesResponse
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/milestones", nil, &resp))
	require.Equal(t, estimate.Fallback, resp.Durations)
	require.Len(t, resp.Milestones, 1)
}

func TestHTTPServer_Planner(t *testing.T) {
	api := newTestAPI(t, cannedModel{reply: `Claro: {"summary":"Todo en orden","actions":[]}`})
	api.createProject(project.CreateRequest{Name: "Spot", Client: "C"})

	var plan planner.Plan
	require.Equal(t, http.StatusOK, api.do(http.MethodPost, "/api/agent/planificador", PlanRequest{Mode: "semanal"}, &plan))
	require.Equal(t, "Todo en orden", plan.Summary)
	require.NotNil(t, api.store.Snapshot().Plan)
}

func TestHTTPServer_PlannerApply(t *testing.T) {
	api := newTestAPI(t, cannedModel{reply: "{}"})
	p := api.createProject(project.CreateRequest{Name: "Spot", Client: "C"})

	stage := project.StageReview
	action, err := planner.UpdateAction(p.ID, project.Patch{Stage: &stage})
	require.NoError(t, err)
	var updated project.Project
	require.Equal(t, http.StatusOK, api.do(http.MethodPost, "/api/agent/planificador/apply", action, &updated))
	require.Equal(t, project.StageReview, updated.Stage)

	require.Equal(t, http.StatusBadRequest,
		api.do(http.MethodPost, "/api/agent/planificador/apply", planner.Action{Type: "NOTE"}, nil))
}

func TestHTTPServer_PlannerUnavailable(t *testing.T) {
	api := newTestAPI(t, nil)
	require.Equal(t, http.StatusServiceUnavailable, api.do(http.MethodPost, "/api/agent/planificador", PlanRequest{}, nil))
}
