package mcp

import (
	"context"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/postflow/internal/board"
	"github.com/rpggio/postflow/internal/domain/cycle"
	"github.com/rpggio/postflow/internal/domain/project"
	"github.com/rpggio/postflow/internal/domain/retainer"
	"github.com/rpggio/postflow/internal/domain/team"
	"github.com/rpggio/postflow/internal/planner"
)

// ProjectService defines project operations needed by MCP.
type ProjectService interface {
	Create(ctx context.Context, req project.CreateRequest) (*project.Project, error)
	Get(ctx context.Context, id string) (*project.Project, error)
	List(ctx context.Context, opts project.ListOptions) ([]project.Project, error)
	Patch(ctx context.Context, id string, patch project.Patch) (*project.Project, error)
}

// CycleService defines revision cycle operations needed by MCP.
type CycleService interface {
	Board(ctx context.Context, projectID string) (*cycle.Board, error)
	MoveToStep(ctx context.Context, projectID, cycleID string, next cycle.Status, notes string) (*cycle.Cycle, error)
	MarkApproved(ctx context.Context, projectID, cycleID string, req cycle.ApproveRequest) (*cycle.ApproveResult, error)
	ResetCycle(ctx context.Context, projectID string) (*cycle.Cycle, error)
	ByProject(ctx context.Context) (map[string][]cycle.Cycle, error)
}

// RetainerService defines retainer operations needed by MCP.
type RetainerService interface {
	List(ctx context.Context, activeOnly bool) ([]retainer.Retainer, error)
}

// TeamService defines roster operations needed by MCP.
type TeamService interface {
	List(ctx context.Context) ([]team.Member, error)
}

// Planner defines the agent operations needed by MCP.
type Planner interface {
	Suggest(ctx context.Context, mode planner.Mode, snap planner.Snapshot) (*planner.Plan, error)
	Apply(ctx context.Context, action planner.Action) (*project.Project, error)
}

// Services contains all domain services needed by MCP. Planner and Board
// are optional.
type Services struct {
	Projects  ProjectService
	Cycles    CycleService
	Retainers RetainerService
	Team      TeamService
	Planner   Planner
	Board     *board.Store
}

// Config contains server configuration.
type Config struct {
	Services      Services
	Validator     TokenValidator
	AuthEnabled   bool
	TransportMode string // "stdio" or "http"
	Version       string
	Logger        *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	version := cfg.Version
	if version == "" {
		version = "dev"
	}
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "postflow",
		Version: version,
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server)

	// Stdio is local only and never authenticates.
	if cfg.TransportMode != "stdio" && cfg.AuthEnabled {
		server.AddReceivingMiddleware(authMiddleware(cfg.Validator))
	}
	server.AddReceivingMiddleware(sessionMiddleware())
	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	registerTools(server, &toolset{svc: cfg.Services, logger: cfg.Logger})

	return server
}
