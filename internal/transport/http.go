package transport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rpggio/postflow/internal/board"
	"github.com/rpggio/postflow/internal/domain/cycle"
	"github.com/rpggio/postflow/internal/domain/project"
	"github.com/rpggio/postflow/internal/domain/retainer"
	"github.com/rpggio/postflow/internal/domain/team"
	"github.com/rpggio/postflow/internal/planner"
)

// ProjectService defines project operations needed over HTTP.
type ProjectService interface {
	Create(ctx context.Context, req project.CreateRequest) (*project.Project, error)
	Get(ctx context.Context, id string) (*project.Project, error)
	List(ctx context.Context, opts project.ListOptions) ([]project.Project, error)
	Update(ctx context.Context, id string, req project.CreateRequest) (*project.Project, error)
	Patch(ctx context.Context, id string, patch project.Patch) (*project.Project, error)
	Delete(ctx context.Context, id string) error
}

// CycleService defines revision cycle operations needed over HTTP.
type CycleService interface {
	Board(ctx context.Context, projectID string) (*cycle.Board, error)
	CreateCycle(ctx context.Context, projectID string, req cycle.CreateRequest) (*cycle.Cycle, error)
	MoveToStep(ctx context.Context, projectID, cycleID string, next cycle.Status, notes string) (*cycle.Cycle, error)
	MarkApproved(ctx context.Context, projectID, cycleID string, req cycle.ApproveRequest) (*cycle.ApproveResult, error)
	ResetCycle(ctx context.Context, projectID string) (*cycle.Cycle, error)
	ByProject(ctx context.Context) (map[string][]cycle.Cycle, error)
}

// RetainerService defines retainer operations needed over HTTP.
type RetainerService interface {
	Create(ctx context.Context, req retainer.CreateRequest) (*retainer.Retainer, error)
	List(ctx context.Context, activeOnly bool) ([]retainer.Retainer, error)
	Update(ctx context.Context, id string, req retainer.CreateRequest) (*retainer.Retainer, error)
	Delete(ctx context.Context, id string) error
}

// TeamService defines roster operations needed over HTTP.
type TeamService interface {
	Create(ctx context.Context, req team.CreateRequest) (*team.Member, error)
	List(ctx context.Context) ([]team.Member, error)
	Delete(ctx context.Context, id string) error
}

// Planner defines the agent operations needed over HTTP.
type Planner interface {
	Suggest(ctx context.Context, mode planner.Mode, snap planner.Snapshot) (*planner.Plan, error)
	Apply(ctx context.Context, action planner.Action) (*project.Project, error)
}

// Services contains everything the HTTP API serves.
type Services struct {
	Projects  ProjectService
	Cycles    CycleService
	Retainers RetainerService
	Team      TeamService
	Planner   Planner
	Board     *board.Store
	Refresher *board.Refresher
}

// Options configure the router.
type Options struct {
	Auth   func(http.Handler) http.Handler
	MCP    http.Handler
	Health func(ctx context.Context) error
	Public map[string]string
	Logger *slog.Logger
}

// Server wires HTTP handlers.
type Server struct {
	svc    Services
	opts   Options
	logger *slog.Logger
}

// NewServer creates an HTTP server router with middleware.
func NewServer(svc Services, opts Options) *chi.Mux {
	if svc.Board == nil {
		svc.Board = board.NewStore()
	}
	srv := &Server{svc: svc, opts: opts, logger: opts.Logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(opts.Logger))
	if opts.Auth != nil {
		r.Use(opts.Auth)
	}

	r.Get("/health", srv.handleHealth)
	r.Get("/api/config", srv.handleConfig)

	r.Route("/api/projects", func(r chi.Router) {
		r.Get("/", srv.listProjects)
		r.Post("/", srv.createProject)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", srv.getProject)
			r.Put("/", srv.updateProject)
			r.Patch("/", srv.patchProject)
			r.Delete("/", srv.deleteProject)

			r.Get("/cycles", srv.cycleBoard)
			r.Post("/cycles", srv.createCycle)
			r.Post("/cycles/reset", srv.resetCycles)
			r.Post("/cycles/{cycleID}/move", srv.moveCycle)
			r.Post("/cycles/{cycleID}/approve", srv.approveCycle)
		})
	})

	// Routes kept for the legacy client wrapper.
	r.Get("/obtener-proyectos", srv.listProjects)
	r.Post("/crear-proyecto", srv.createProject)
	r.Put("/actualizar-proyecto/{id}", srv.patchProject)
	r.Delete("/eliminar-proyecto/{id}", srv.deleteProject)

	r.Route("/api/retainers", func(r chi.Router) {
		r.Get("/", srv.listRetainers)
		r.Post("/", srv.createRetainer)
		r.Put("/{id}", srv.updateRetainer)
		r.Delete("/{id}", srv.deleteRetainer)
	})

	r.Route("/api/team", func(r chi.Router) {
		r.Get("/", srv.listTeam)
		r.Post("/", srv.createMember)
		r.Delete("/{id}", srv.deleteMember)
	})

	r.Get("/api/dashboard", srv.dashboard)
	r.Get("/api/calendar", srv.calendar)
	r.Get("/api/milestones", srv.milestones)

	r.Post("/api/agent/planificador", srv.plan)
	r.Post("/api/agent/planificador/apply", srv.applyPlan)

	if opts.MCP != nil {
		r.Handle("/mcp", opts.MCP)
		r.Handle("/mcp/*", opts.MCP)
	}

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.opts.Health != nil {
		if err := s.opts.Health(r.Context()); err != nil {
			writeErrorCode(w, http.StatusServiceUnavailable, "unhealthy", err.Error())
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleConfig(w http.ResponseWriter, _ *http.Request) {
	public := s.opts.Public
	if public == nil {
		public = map[string]string{}
	}
	writeJSON(w, http.StatusOK, public)
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if logger == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
