// Package app wires repositories, services and surfaces into one stack so the
// server binary and the test server build it the same way.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/postflow/internal/board"
	"github.com/rpggio/postflow/internal/config"
	"github.com/rpggio/postflow/internal/domain/cycle"
	"github.com/rpggio/postflow/internal/domain/project"
	"github.com/rpggio/postflow/internal/domain/retainer"
	"github.com/rpggio/postflow/internal/domain/team"
	"github.com/rpggio/postflow/internal/mcp"
	"github.com/rpggio/postflow/internal/planner"
	"github.com/rpggio/postflow/internal/sqlite"
	"github.com/rpggio/postflow/internal/transport"
)

// Version is reported to MCP clients.
var Version = "dev"

// App holds the assembled stack.
type App struct {
	DB        *sqlite.DB
	Keys      *sqlite.APIKeyRepository
	Projects  *project.Service
	Cycles    *cycle.Service
	Retainers *retainer.Service
	Team      *team.Service
	Planner   *planner.Planner
	Board     *board.Store
	Refresher *board.Refresher
	MCP       *sdkmcp.Server
	Router    http.Handler
}

// Options override parts of the stack, mainly for tests.
type Options struct {
	// Model replaces the generative model built from config.
	Model planner.Model
}

// New builds the stack on an open, migrated database.
func New(ctx context.Context, cfg config.Config, db *sqlite.DB, logger *slog.Logger, opts Options) (*App, error) {
	projectRepo := sqlite.NewProjectRepository(db)
	cycleRepo := sqlite.NewCycleRepository(db)
	historyRepo := sqlite.NewHistoryRepository(db)

	a := &App{
		DB:        db,
		Keys:      sqlite.NewAPIKeyRepository(db),
		Projects:  project.NewService(projectRepo, logger),
		Retainers: retainer.NewService(sqlite.NewRetainerRepository(db), logger),
		Team:      team.NewService(sqlite.NewTeamRepository(db), logger),
		Board:     board.NewStore(),
	}
	a.Cycles = cycle.NewService(cycleRepo, historyRepo, a.Projects, logger)
	a.Refresher = board.NewRefresher(a.Board, a.Projects, a.Retainers, cfg.Board.RefreshInterval, logger)

	model := opts.Model
	if model == nil && cfg.GenAI.APIKey != "" {
		m, err := planner.NewGenAIModel(ctx, cfg.GenAI.APIKey, cfg.GenAI.Model)
		if err != nil {
			return nil, fmt.Errorf("create planner model: %w", err)
		}
		model = m
	}
	if model == nil && logger != nil {
		logger.Warn("planner model not configured", "hint", "set GOOGLE_GENAI_API_KEY")
	}
	a.Planner = planner.New(model, a.Projects, logger)

	a.MCP = mcp.NewServer(mcp.Config{
		Services: mcp.Services{
			Projects:  a.Projects,
			Cycles:    a.Cycles,
			Retainers: a.Retainers,
			Team:      a.Team,
			Planner:   a.Planner,
			Board:     a.Board,
		},
		Validator:     a.Keys,
		AuthEnabled:   cfg.Auth.Enabled,
		TransportMode: cfg.Transport.Mode,
		Version:       Version,
		Logger:        logger,
	})

	routerOpts := transport.Options{
		MCP:    mcp.NewHTTPHandler(a.MCP, mcp.DefaultSessionTimeout),
		Health: db.Ping,
		Public: cfg.Public.Map(),
		Logger: logger,
	}
	if cfg.Auth.Enabled {
		routerOpts.Auth = transport.AuthMiddleware(a.Keys)
	}
	a.Router = transport.NewServer(transport.Services{
		Projects:  a.Projects,
		Cycles:    a.Cycles,
		Retainers: a.Retainers,
		Team:      a.Team,
		Planner:   a.Planner,
		Board:     a.Board,
		Refresher: a.Refresher,
	}, routerOpts)

	return a, nil
}
