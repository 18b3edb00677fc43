package auth

import "time"

// User is an identity record from the utilisateurs table. PersonnelID links
// the account to a personnel record when the user is a shop-floor operator.
type User struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	Active      bool   `json:"active"`
	Locked      bool   `json:"locked"`
	PersonnelID *int64 `json:"personnel_id,omitempty"`
}

// Session is one logical login. A session is usable only while Active is
// true and ExpiresAt is in the future; the signed token alone is never
// sufficient.
type Session struct {
	ID           string    `json:"id"`
	UserID       int64     `json:"user_id"`
	Active       bool      `json:"active"`
	ExpiresAt    time.Time `json:"expires_at"`
	LastActivity time.Time `json:"last_activity"`
}

// Role is a named, prioritized permission bundle. Only active roles
// contribute permissions.
type Role struct {
	ID       int64  `json:"id"`
	Code     string `json:"code"`
	Name     string `json:"name"`
	Priority int    `json:"priority"`
	Active   bool   `json:"active"`
}

// Permission is one entry of the global permission catalog.
type Permission struct {
	Code        string `json:"code"`
	Description string `json:"description,omitempty"`
}

// GrantType distinguishes per-user overrides.
type GrantType string

const (
	GrantAccorder GrantType = "ACCORDER"
	GrantRefuser  GrantType = "REFUSER"
)

// DirectGrant is a per-user permission override. A grant whose Expiration is
// strictly before today is inert and must not be returned by stores.
type DirectGrant struct {
	ID         string     `json:"id"`
	UserID     int64      `json:"user_id"`
	Permission string     `json:"permission"`
	Type       GrantType  `json:"type"`
	Expiration *time.Time `json:"expiration,omitempty"`
}

// Identity is the request-scoped result of a successful authentication,
// attached to the context for business handlers and audit logging.
type Identity struct {
	UserID      int64  `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	PersonnelID *int64 `json:"personnel_id,omitempty"`
	SessionID   string `json:"session_id"`
}

// TokenPair carries the credentials minted at login.
type TokenPair struct {
	AccessToken      string    `json:"token"`
	RefreshToken     string    `json:"refresh_token"`
	AccessExpiresAt  time.Time `json:"expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}
