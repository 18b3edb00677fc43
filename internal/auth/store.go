package auth

import (
	"context"
	"time"
)

// Store describes the persistence operations the auth core needs. All of it
// is read-only except the session lifecycle writes.
type Store interface {
	// UserByUsername returns the user and its password hash, or ErrNotFound.
	UserByUsername(ctx context.Context, username string) (*User, string, error)

	// CreateSession inserts a new active session row.
	CreateSession(ctx context.Context, s *Session) error

	// ActiveSessionCount counts live sessions for the user.
	ActiveSessionCount(ctx context.Context, userID int64) (int, error)

	// RevokeOldestSession deactivates the user's least-recently-active live
	// session and returns its id, or "" when there was none.
	RevokeOldestSession(ctx context.Context, userID int64) (string, error)

	// SessionWithUser loads the session matching id AND owner AND
	// active AND unexpired, joined with its user row. Zero rows is
	// ErrNotFound; the caller treats that as a revoked or expired session.
	SessionWithUser(ctx context.Context, sessionID string, userID int64) (*Session, *User, error)

	// TouchSession updates the advisory last-activity timestamp.
	TouchSession(ctx context.Context, sessionID string, at time.Time) error

	// RevokeSession deactivates one session (logout).
	RevokeSession(ctx context.Context, sessionID string) error

	// RevokeUserSessions force-expires every live session of the user and
	// returns the revoked ids.
	RevokeUserSessions(ctx context.Context, userID int64) ([]string, error)

	// RolePermissions returns the distinct permission codes reachable
	// through the user's active roles.
	RolePermissions(ctx context.Context, userID int64) ([]string, error)

	// DirectGrants returns the user's unexpired per-user overrides.
	DirectGrants(ctx context.Context, userID int64) ([]DirectGrant, error)

	// UserRoles returns the user's active roles ordered by priority.
	UserRoles(ctx context.Context, userID int64) ([]Role, error)
}
