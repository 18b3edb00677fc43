package auth

import (
	"context"
	"strings"
	"testing"
)

func TestResolveDenyWinsOverRoleGrant(t *testing.T) {
	// Both row orders must produce the same outcome.
	orders := [][]DirectGrant{
		{
			{Permission: "ARTICLES_WRITE", Type: GrantRefuser},
			{Permission: "ARTICLES_WRITE", Type: GrantAccorder},
		},
		{
			{Permission: "ARTICLES_WRITE", Type: GrantAccorder},
			{Permission: "ARTICLES_WRITE", Type: GrantRefuser},
		},
	}
	for _, grants := range orders {
		store := newMemStore()
		store.rolePerms[7] = []string{"ARTICLES_WRITE", "ARTICLES_READ"}
		store.grants[7] = grants

		svc := newTestService(t, store)
		authz, err := svc.Resolve(context.Background(), 7)
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if authz.Can("ARTICLES_WRITE") {
			t.Fatalf("expected ARTICLES_WRITE denied, grants %v", grants)
		}
		if err := authz.Check("ARTICLES_WRITE"); err == nil || !strings.Contains(err.Error(), "permission denied: ARTICLES_WRITE") {
			t.Fatalf("expected denied error, got %v", err)
		}
		if !authz.Can("ARTICLES_READ") {
			t.Fatalf("unrelated role permission lost")
		}
	}
}

func TestResolveDirectGrantRestoresAccess(t *testing.T) {
	store := newMemStore()
	store.grants[3] = []DirectGrant{{Permission: "PLANNING_WRITE", Type: GrantAccorder}}

	svc := newTestService(t, store)
	authz, err := svc.Resolve(context.Background(), 3)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !authz.Can("PLANNING_WRITE") {
		t.Fatalf("expected direct grant to allow PLANNING_WRITE")
	}
	if err := authz.Check("PLANNING_WRITE"); err != nil {
		t.Fatalf("Check: %v", err)
	}
}

func TestCheckMissingPermission(t *testing.T) {
	store := newMemStore()
	store.rolePerms[1] = []string{"COMMANDES_READ"}

	svc := newTestService(t, store)
	authz, err := svc.Resolve(context.Background(), 1)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	err = authz.Check("COMMANDES_WRITE")
	if err == nil || !strings.Contains(err.Error(), "permission required: COMMANDES_WRITE") {
		t.Fatalf("expected required error, got %v", err)
	}
	if KindOf(err) != KindPermission {
		t.Fatalf("expected permission kind, got %v", KindOf(err))
	}
	if err := authz.Check("COMMANDES_READ"); err != nil {
		t.Fatalf("read permission should pass: %v", err)
	}
}

func TestCheckAnyDeniedCodeDoesNotQualify(t *testing.T) {
	store := newMemStore()
	store.rolePerms[2] = []string{"QUALITE_WRITE"}
	store.grants[2] = []DirectGrant{{Permission: "QUALITE_WRITE", Type: GrantRefuser}}

	svc := newTestService(t, store)
	authz, err := svc.Resolve(context.Background(), 2)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if err := authz.CheckAny("QUALITE_WRITE", "QUALITE_READ"); err == nil {
		t.Fatalf("expected rejection when the only granted code is denied")
	}

	store.rolePerms[2] = append(store.rolePerms[2], "QUALITE_READ")
	authz, err = svc.Resolve(context.Background(), 2)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if err := authz.CheckAny("QUALITE_WRITE", "QUALITE_READ"); err != nil {
		t.Fatalf("expected QUALITE_READ to qualify: %v", err)
	}
}

func TestAuthorizeCachesPerRequest(t *testing.T) {
	store := newMemStore()
	store.rolePerms[5] = []string{"PLANNING_READ"}

	svc := newTestService(t, store)
	ctx := ContextWithIdentity(context.Background(), Identity{UserID: 5, SessionID: "s"})

	for i := 0; i < 3; i++ {
		authz, err := svc.Authorize(ctx)
		if err != nil {
			t.Fatalf("Authorize: %v", err)
		}
		if !authz.Can("PLANNING_READ") {
			t.Fatalf("expected PLANNING_READ")
		}
	}
	if store.rolePermCalls != 1 {
		t.Fatalf("expected a single resolution per request, got %d", store.rolePermCalls)
	}
}

func TestAuthorizeWithoutIdentity(t *testing.T) {
	svc := newTestService(t, newMemStore())
	if _, err := svc.Authorize(context.Background()); KindOf(err) != KindAuthentication {
		t.Fatalf("expected authentication failure, got %v", err)
	}
}
