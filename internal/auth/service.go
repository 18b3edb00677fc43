package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// cacheTTL bounds the staleness window of the optional session cache.
const cacheTTL = 30 * time.Second

// Service implements credential verification, token issuance, request-time
// authentication and permission resolution.
type Service struct {
	store Store
	cache SessionCache
	cfg   Config
	now   func() time.Time
}

// Option configures Service construction.
type Option func(*Service)

// WithClock overrides the time source (tests).
func WithClock(fn func() time.Time) Option {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// WithSessionCache enables the short-lived session validity cache. Without
// it every authenticated request reads the session row, which is the
// baseline behavior and always correct.
func WithSessionCache(cache SessionCache) Option {
	return func(s *Service) { s.cache = cache }
}

// NewService validates the configuration and constructs the Service. A
// missing signing secret fails here, at startup.
func NewService(store Store, cfg Config, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("auth: store is required")
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	svc := &Service{store: store, cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Login verifies credentials, opens a session and mints a token pair. Every
// failure surfaces as the same generic authentication error: unknown user,
// wrong password, disabled and locked accounts are indistinguishable to the
// caller.
func (s *Service) Login(ctx context.Context, username, password string) (TokenPair, Identity, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return TokenPair{}, Identity{}, authenticationError("invalid credentials")
	}

	user, hash, err := s.store.UserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// Burn a compare anyway so unknown users cost the same.
			_ = VerifyPassword(dummyHash, password)
			return TokenPair{}, Identity{}, authenticationError("invalid credentials")
		}
		return TokenPair{}, Identity{}, internalError("load user", err)
	}
	if err := VerifyPassword(hash, password); err != nil {
		return TokenPair{}, Identity{}, authenticationError("invalid credentials")
	}
	if !user.Active || user.Locked {
		return TokenPair{}, Identity{}, authenticationError("invalid credentials")
	}

	if err := s.enforceSessionBound(ctx, user.ID); err != nil {
		return TokenPair{}, Identity{}, err
	}

	now := s.now().UTC()
	session := &Session{
		ID:           uuid.NewString(),
		UserID:       user.ID,
		Active:       true,
		ExpiresAt:    now.Add(s.cfg.SessionTTL),
		LastActivity: now,
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return TokenPair{}, Identity{}, internalError("create session", err)
	}

	pair, err := s.mintPair(session.ID, user.ID)
	if err != nil {
		return TokenPair{}, Identity{}, err
	}
	return pair, identityOf(user, session.ID), nil
}

func (s *Service) enforceSessionBound(ctx context.Context, userID int64) error {
	count, err := s.store.ActiveSessionCount(ctx, userID)
	if err != nil {
		return internalError("count sessions", err)
	}
	if count < s.cfg.MaxSessions {
		return nil
	}
	evicted, err := s.store.RevokeOldestSession(ctx, userID)
	if err != nil {
		return internalError("evict session", err)
	}
	if evicted != "" && s.cache != nil {
		_ = s.cache.Invalidate(ctx, evicted)
	}
	return nil
}

func (s *Service) mintPair(sessionID string, userID int64) (TokenPair, error) {
	access, accessExp, err := s.signToken(sessionID, userID, TokenTypeAccess, s.cfg.AccessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, refreshExp, err := s.signToken(sessionID, userID, TokenTypeRefresh, s.cfg.RefreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// Authenticate validates a bearer token and its backing session. The gates
// run in order and any failure is terminal: signature/expiry, token type,
// claim completeness, session liveness, then account state. On success the
// session's last-activity timestamp is updated without blocking the caller.
func (s *Service) Authenticate(ctx context.Context, token string) (Identity, error) {
	claims, err := s.parseToken(token)
	if err != nil {
		return Identity{}, err
	}
	if claims.TokenType != "" && claims.TokenType != TokenTypeAccess {
		return Identity{}, authenticationError("wrong token type")
	}
	if claims.SessionID == "" || claims.UserID == 0 {
		return Identity{}, authenticationError("invalid token")
	}

	if s.cache != nil {
		if identity, ok, err := s.cache.Get(ctx, claims.SessionID); err == nil && ok && identity.UserID == claims.UserID {
			s.touchAsync(claims.SessionID)
			return identity, nil
		}
	}

	_, user, err := s.store.SessionWithUser(ctx, claims.SessionID, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Identity{}, authenticationError("invalid or expired session")
		}
		return Identity{}, internalError("load session", err)
	}
	if !user.Active {
		return Identity{}, accountStateError("account disabled")
	}
	if user.Locked {
		return Identity{}, accountStateError("account locked")
	}

	identity := identityOf(user, claims.SessionID)
	if s.cache != nil {
		_ = s.cache.Set(ctx, claims.SessionID, identity, cacheTTL)
	}
	s.touchAsync(claims.SessionID)
	return identity, nil
}

// touchAsync updates last-activity without blocking the request. The write
// is advisory; a lost race between concurrent requests is harmless.
func (s *Service) touchAsync(sessionID string) {
	at := s.now().UTC()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = s.store.TouchSession(ctx, sessionID, at)
	}()
}

// Refresh exchanges a refresh token for a new access token. The session row
// must still be live, so server-side revocation covers refresh tokens too.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, time.Time, error) {
	claims, err := s.parseToken(refreshToken)
	if err != nil {
		return "", time.Time{}, err
	}
	if claims.TokenType != TokenTypeRefresh {
		return "", time.Time{}, authenticationError("wrong token type")
	}
	if claims.SessionID == "" || claims.UserID == 0 {
		return "", time.Time{}, authenticationError("invalid token")
	}

	_, user, err := s.store.SessionWithUser(ctx, claims.SessionID, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", time.Time{}, authenticationError("invalid or expired session")
		}
		return "", time.Time{}, internalError("load session", err)
	}
	if !user.Active {
		return "", time.Time{}, accountStateError("account disabled")
	}
	if user.Locked {
		return "", time.Time{}, accountStateError("account locked")
	}

	if err := s.store.TouchSession(ctx, claims.SessionID, s.now().UTC()); err != nil {
		return "", time.Time{}, internalError("touch session", err)
	}
	access, exp, err := s.signToken(claims.SessionID, claims.UserID, TokenTypeAccess, s.cfg.AccessTTL)
	if err != nil {
		return "", time.Time{}, err
	}
	return access, exp, nil
}

// Logout deactivates the session and drops it from the cache.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return authenticationError("invalid token")
	}
	if err := s.store.RevokeSession(ctx, sessionID); err != nil {
		return internalError("revoke session", err)
	}
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, sessionID)
	}
	return nil
}

// RevokeUserSessions force-expires every live session of a user
// (administrative revocation). Tokens bound to those sessions fail on their
// next request even while their signed expiry is still in the future.
func (s *Service) RevokeUserSessions(ctx context.Context, userID int64) (int, error) {
	revoked, err := s.store.RevokeUserSessions(ctx, userID)
	if err != nil {
		return 0, internalError("revoke sessions", err)
	}
	if s.cache != nil {
		for _, id := range revoked {
			_ = s.cache.Invalidate(ctx, id)
		}
	}
	return len(revoked), nil
}

func identityOf(user *User, sessionID string) Identity {
	return Identity{
		UserID:      user.ID,
		Username:    user.Username,
		Email:       user.Email,
		PersonnelID: user.PersonnelID,
		SessionID:   sessionID,
	}
}
