package sqlite

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/rpggio/postflow/internal/repository"
)

// APIKeyRepository stores hashed bearer tokens.
type APIKeyRepository struct {
	db *DB
}

// NewAPIKeyRepository creates a new APIKeyRepository
func NewAPIKeyRepository(db *DB) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

// HashToken returns the stored form of a token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Add stores a token hash.
func (r *APIKeyRepository) Add(ctx context.Context, token, description string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO api_keys (key_hash, description, created_at) VALUES (?, ?, ?)`,
		HashToken(token), description, time.Now().UTC(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to add api key: %w", err)
	}
	return nil
}

// Lookup reports whether the token is known and records its use.
func (r *APIKeyRepository) Lookup(ctx context.Context, token string) error {
	hash := HashToken(token)
	var found string
	err := r.db.QueryRowContext(ctx, `SELECT key_hash FROM api_keys WHERE key_hash = ?`, hash).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to look up api key: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `UPDATE api_keys SET last_used = ? WHERE key_hash = ?`, time.Now().UTC(), hash); err != nil {
		return fmt.Errorf("failed to record api key use: %w", err)
	}
	return nil
}
