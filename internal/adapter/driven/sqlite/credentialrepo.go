package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/ericfisherdev/gyazobot/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.CredentialStore = (*CredentialRepo)(nil)

// CredentialRepo is the SQLite implementation of the CredentialStore port interface.
// Tokens are stored as plain text keyed by the chat user id.
type CredentialRepo struct {
	db *DB
}

// NewCredentialRepo creates a new CredentialRepo.
func NewCredentialRepo(db *DB) *CredentialRepo {
	return &CredentialRepo{db: db}
}

// Set stores or replaces the access token for the given user.
func (r *CredentialRepo) Set(ctx context.Context, userID int64, token string) error {
	token = strings.TrimSpace(token)

	const query = `INSERT OR REPLACE INTO gyazo_tokens (user_id, access_token) VALUES (?, ?)`
	_, err := r.db.Writer.ExecContext(ctx, query, userID, token)
	if err != nil {
		return fmt.Errorf("set credential for user %d: %w", userID, err)
	}
	return nil
}

// Get retrieves the access token for the given user.
// Returns ("", nil) if the user never authenticated.
func (r *CredentialRepo) Get(ctx context.Context, userID int64) (string, error) {
	const query = `SELECT access_token FROM gyazo_tokens WHERE user_id = ?`
	var token string
	err := r.db.Reader.QueryRowContext(ctx, query, userID).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get credential for user %d: %w", userID, err)
	}
	return token, nil
}
