package auth

import (
	"context"
	"sync"
)

type identityContextKey struct{}
type tokenContextKey struct{}
type authzContextKey struct{}

// authzCache memoizes the resolved authorization for one request so every
// gate invoked during the request reuses the same result.
type authzCache struct {
	mu       sync.Mutex
	resolved bool
	authz    Authorization
	err      error
}

// ContextWithIdentity attaches the authenticated identity and a fresh
// request-scoped authorization cache to the context.
func ContextWithIdentity(ctx context.Context, identity Identity) context.Context {
	ctx = context.WithValue(ctx, identityContextKey{}, &identity)
	return context.WithValue(ctx, authzContextKey{}, &authzCache{})
}

// IdentityFromContext extracts the authenticated identity.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	v, ok := ctx.Value(identityContextKey{}).(*Identity)
	if !ok || v == nil {
		return Identity{}, false
	}
	return *v, true
}

// ContextWithToken stores the raw bearer token for downstream collaborators
// that forward it.
func ContextWithToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, tokenContextKey{}, token)
}

// TokenFromContext returns the raw bearer token if one was attached.
func TokenFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	v, ok := ctx.Value(tokenContextKey{}).(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func authzCacheFromContext(ctx context.Context) *authzCache {
	if ctx == nil {
		return nil
	}
	v, _ := ctx.Value(authzContextKey{}).(*authzCache)
	return v
}
