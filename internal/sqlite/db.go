package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection
type DB struct {
	*sql.DB
}

// New opens a SQLite database. A single connection is kept so in-memory
// databases and PRAGMAs apply to every query.
func New(dataSourceName string) (*DB, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	return &DB{db}, nil
}

// Ping checks the connection, used by the health endpoint.
func (db *DB) Ping(ctx context.Context) error {
	return db.PingContext(ctx)
}

// RunMigrations creates the schema. It is safe to run on every start.
func (db *DB) RunMigrations() error {
	migration := `
-- Projects table
CREATE TABLE IF NOT EXISTS projects (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    client TEXT NOT NULL,
    tag TEXT NOT NULL DEFAULT '',
    manager TEXT NOT NULL DEFAULT '',
    managers TEXT NOT NULL DEFAULT '[]',
    stage TEXT NOT NULL CHECK(stage IN ('grabacion', 'edicion', 'revision', 'correcciones', 'entregado')),
    status TEXT NOT NULL,
    start_date TEXT NOT NULL DEFAULT '',
    deadline TEXT NOT NULL DEFAULT '',
    recording_date TEXT NOT NULL DEFAULT '',
    income REAL NOT NULL DEFAULT 0,
    properties TEXT NOT NULL DEFAULT '{}',
    current_cycle INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_projects_client ON projects(client);
CREATE INDEX IF NOT EXISTS idx_projects_status ON projects(status);

-- Revision cycles
CREATE TABLE IF NOT EXISTS revision_cycles (
    id TEXT PRIMARY KEY,
    project_id TEXT NOT NULL,
    number INTEGER NOT NULL CHECK(number > 0),
    status TEXT NOT NULL CHECK(status IN ('editando', 'enviado', 'esperando_feedback', 'corrigiendo', 'aprobado')),
    started_at TIMESTAMP NOT NULL,
    sent_at TIMESTAMP,
    client_returned_at TIMESTAMP,
    notes TEXT NOT NULL DEFAULT '',
    FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_cycles_project_number ON revision_cycles(project_id, number);

-- Revision history (append-only)
CREATE TABLE IF NOT EXISTS revision_history (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    cycle_id TEXT NOT NULL,
    from_status TEXT NOT NULL,
    to_status TEXT NOT NULL,
    occurred_at TIMESTAMP NOT NULL,
    notes TEXT NOT NULL DEFAULT '',
    FOREIGN KEY (cycle_id) REFERENCES revision_cycles(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_history_cycle ON revision_history(cycle_id);

-- Retainers
CREATE TABLE IF NOT EXISTS retainers (
    id TEXT PRIMARY KEY,
    client TEXT NOT NULL,
    monthly REAL NOT NULL DEFAULT 0,
    projects_per_month INTEGER NOT NULL DEFAULT 0,
    tag TEXT NOT NULL DEFAULT '',
    active INTEGER NOT NULL DEFAULT 1,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

-- Team roster
CREATE TABLE IF NOT EXISTS team_members (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    role TEXT NOT NULL DEFAULT '',
    capacity_per_week_hrs REAL NOT NULL DEFAULT 0,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

-- API keys for authentication
CREATE TABLE IF NOT EXISTS api_keys (
    key_hash TEXT PRIMARY KEY,
    description TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    last_used TIMESTAMP
);
`

	_, err := db.Exec(migration)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
