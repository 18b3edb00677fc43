package auth

import (
	"errors"
	"time"
)

const (
	defaultAccessTTL   = 15 * time.Minute
	defaultRefreshTTL  = 24 * time.Hour * 7
	defaultSessionTTL  = 24 * time.Hour * 7
	defaultMaxSessions = 5
)

// Config is built once at process start and injected into the Service; the
// core performs no environment lookups of its own.
type Config struct {
	// Secret signs access and refresh tokens. Required; its absence is a
	// startup failure, never a per-request error.
	Secret []byte

	// Issuer is embedded into the iss claim and enforced on validation.
	Issuer string

	// AccessTTL bounds the signed lifetime of access tokens.
	AccessTTL time.Duration

	// RefreshTTL bounds the signed lifetime of refresh tokens. The session
	// row caps both: a revoked or expired session rejects either token.
	RefreshTTL time.Duration

	// SessionTTL is the lifetime written into new session rows.
	SessionTTL time.Duration

	// MaxSessions bounds concurrent sessions per user; at the bound the
	// least-recently-active session is revoked to admit the new login.
	MaxSessions int
}

func (c *Config) normalize() error {
	if len(c.Secret) == 0 {
		return errors.New("auth: signing secret is required")
	}
	if c.Issuer == "" {
		c.Issuer = "gpao"
	}
	if c.AccessTTL <= 0 {
		c.AccessTTL = defaultAccessTTL
	}
	if c.RefreshTTL <= 0 {
		c.RefreshTTL = defaultRefreshTTL
	}
	if c.SessionTTL <= 0 {
		c.SessionTTL = defaultSessionTTL
	}
	if c.MaxSessions <= 0 {
		c.MaxSessions = defaultMaxSessions
	}
	return nil
}
