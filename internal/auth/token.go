package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ateliersoft/gpao/internal/ids"
)

const (
	// TokenTypeAccess marks tokens accepted by Authenticate. Refresh tokens
	// presented as access tokens are rejected regardless of signature.
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims are the signed JWT claims. SessionID binds the stateless token to
// a server-side session row; validity requires both.
type Claims struct {
	SessionID string `json:"sid,omitempty"`
	UserID    int64  `json:"id,omitempty"`
	TokenType string `json:"type,omitempty"`
	jwt.RegisteredClaims
}

func (s *Service) signToken(sessionID string, userID int64, tokenType string, ttl time.Duration) (string, time.Time, error) {
	now := s.now().UTC()
	exp := now.Add(ttl)
	claims := Claims{
		SessionID: sessionID,
		UserID:    userID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        ids.New(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.cfg.Secret)
	if err != nil {
		return "", time.Time{}, internalError("sign token", err)
	}
	return signed, exp, nil
}

// parseToken verifies signature and expiry. An expired token is surfaced
// distinctly from a malformed one; both are authentication failures.
func (s *Service) parseToken(raw string) (*Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, authenticationError("missing or invalid token")
	}
	parsed, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return s.cfg.Secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithIssuer(s.cfg.Issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, authenticationError("token expired")
		}
		return nil, authenticationError("invalid token")
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, authenticationError("invalid token")
	}
	return claims, nil
}
