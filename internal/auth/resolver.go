package auth

import (
	"context"
	"fmt"
	"strings"
)

// Authorization is the effective permission set for one user on one
// request: role-derived grants combined with per-user overrides.
type Authorization struct {
	Roles   []Role
	Allowed map[string]struct{}
	Denied  map[string]struct{}
}

// Can reports whether code is allowed and not denied.
func (a Authorization) Can(code string) bool {
	if _, denied := a.Denied[code]; denied {
		return false
	}
	_, ok := a.Allowed[code]
	return ok
}

// Check enforces one required permission. Deny is checked first so an
// explicit REFUSER wins even when a role grants the code.
func (a Authorization) Check(code string) error {
	if _, denied := a.Denied[code]; denied {
		return permissionError(fmt.Sprintf("permission denied: %s", code))
	}
	if _, ok := a.Allowed[code]; !ok {
		return permissionError(fmt.Sprintf("permission required: %s", code))
	}
	return nil
}

// CheckAny passes when at least one code is allowed and not denied. A code
// present in both sets is unauthorized for that code.
func (a Authorization) CheckAny(codes ...string) error {
	for _, code := range codes {
		if a.Can(code) {
			return nil
		}
	}
	return permissionError("one of the following permissions is required: " + strings.Join(codes, ", "))
}

// Resolve computes the effective authorization for an authenticated user.
// Resolution is two explicit passes over the direct-grant rows (all denies,
// then all grants filtered by the deny set) so database row order can never
// affect the outcome. Stores exclude expired grants, which keeps them inert.
func (s *Service) Resolve(ctx context.Context, userID int64) (Authorization, error) {
	rolePerms, err := s.store.RolePermissions(ctx, userID)
	if err != nil {
		return Authorization{}, internalError("load role permissions", err)
	}
	grants, err := s.store.DirectGrants(ctx, userID)
	if err != nil {
		return Authorization{}, internalError("load direct grants", err)
	}
	roles, err := s.store.UserRoles(ctx, userID)
	if err != nil {
		return Authorization{}, internalError("load roles", err)
	}

	allowed := make(map[string]struct{}, len(rolePerms))
	for _, code := range rolePerms {
		allowed[code] = struct{}{}
	}
	denied := make(map[string]struct{})
	for _, g := range grants {
		if g.Type == GrantRefuser {
			denied[g.Permission] = struct{}{}
			delete(allowed, g.Permission)
		}
	}
	for _, g := range grants {
		if g.Type != GrantAccorder {
			continue
		}
		if _, isDenied := denied[g.Permission]; isDenied {
			continue
		}
		allowed[g.Permission] = struct{}{}
	}

	return Authorization{Roles: roles, Allowed: allowed, Denied: denied}, nil
}

// Authorize returns the authorization for the identity on the context,
// resolving it at most once per request via the request-scoped cache placed
// there by the authentication middleware.
func (s *Service) Authorize(ctx context.Context) (Authorization, error) {
	identity, ok := IdentityFromContext(ctx)
	if !ok {
		return Authorization{}, authenticationError("missing or invalid token")
	}
	cache := authzCacheFromContext(ctx)
	if cache == nil {
		return s.Resolve(ctx, identity.UserID)
	}
	cache.mu.Lock()
	defer cache.mu.Unlock()
	if cache.resolved {
		return cache.authz, cache.err
	}
	cache.authz, cache.err = s.Resolve(ctx, identity.UserID)
	cache.resolved = true
	return cache.authz, cache.err
}
