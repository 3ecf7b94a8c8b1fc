package driven

import "context"

// CredentialStore defines the driven port for per-user access token persistence.
type CredentialStore interface {
	// Set stores or replaces the token for userID. Surrounding whitespace is
	// trimmed before the write.
	Set(ctx context.Context, userID int64, token string) error

	// Get retrieves the token for userID.
	// Returns ("", nil) if no token has been stored for that user.
	Get(ctx context.Context, userID int64) (string, error)
}
