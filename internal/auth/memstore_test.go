package auth

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

// memStore is an in-memory Store for service-level tests. Time comparisons
// use the same fake clock as the service under test.
type memStore struct {
	mu            sync.Mutex
	now           func() time.Time
	users         map[string]memUser
	sessions      map[string]*Session
	rolePerms     map[int64][]string
	grants        map[int64][]DirectGrant
	roles         map[int64][]Role
	touches       map[string]int
	rolePermCalls int
}

type memUser struct {
	user User
	hash string
}

func newMemStore() *memStore {
	return &memStore{
		now:       time.Now,
		users:     make(map[string]memUser),
		sessions:  make(map[string]*Session),
		rolePerms: make(map[int64][]string),
		grants:    make(map[int64][]DirectGrant),
		roles:     make(map[int64][]Role),
		touches:   make(map[string]int),
	}
}

func (m *memStore) addUser(u User, password string) {
	hash, err := HashPassword(password)
	if err != nil {
		panic(err)
	}
	m.users[strings.ToLower(u.Username)] = memUser{user: u, hash: hash}
}

func (m *memStore) UserByUsername(_ context.Context, username string) (*User, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.users[strings.ToLower(username)]
	if !ok {
		return nil, "", ErrNotFound
	}
	u := entry.user
	return &u, entry.hash, nil
}

func (m *memStore) CreateSession(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.sessions[s.ID] = &cp
	return nil
}

func (m *memStore) ActiveSessionCount(_ context.Context, userID int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, s := range m.sessions {
		if s.UserID == userID && s.Active && s.ExpiresAt.After(m.now()) {
			count++
		}
	}
	return count, nil
}

func (m *memStore) RevokeOldestSession(_ context.Context, userID int64) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var oldest *Session
	for _, s := range m.sessions {
		if s.UserID != userID || !s.Active || !s.ExpiresAt.After(m.now()) {
			continue
		}
		if oldest == nil || s.LastActivity.Before(oldest.LastActivity) {
			oldest = s
		}
	}
	if oldest == nil {
		return "", nil
	}
	oldest.Active = false
	return oldest.ID, nil
}

func (m *memStore) SessionWithUser(_ context.Context, sessionID string, userID int64) (*Session, *User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok || s.UserID != userID || !s.Active || !s.ExpiresAt.After(m.now()) {
		return nil, nil, ErrNotFound
	}
	for _, entry := range m.users {
		if entry.user.ID == userID {
			sess := *s
			u := entry.user
			return &sess, &u, nil
		}
	}
	return nil, nil, ErrNotFound
}

func (m *memStore) TouchSession(_ context.Context, sessionID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[sessionID]; ok {
		s.LastActivity = at
	}
	m.touches[sessionID]++
	return nil
}

func (m *memStore) RevokeSession(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[sessionID]; ok {
		s.Active = false
	}
	return nil
}

func (m *memStore) RevokeUserSessions(_ context.Context, userID int64) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var revoked []string
	for _, s := range m.sessions {
		if s.UserID == userID && s.Active {
			s.Active = false
			revoked = append(revoked, s.ID)
		}
	}
	return revoked, nil
}

func (m *memStore) RolePermissions(_ context.Context, userID int64) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rolePermCalls++
	return append([]string(nil), m.rolePerms[userID]...), nil
}

func (m *memStore) DirectGrants(_ context.Context, userID int64) ([]DirectGrant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	// Mirrors the store contract: expired overrides never reach resolution.
	var grants []DirectGrant
	today := m.now().Truncate(24 * time.Hour)
	for _, g := range m.grants[userID] {
		if g.Expiration != nil && g.Expiration.Before(today) {
			continue
		}
		grants = append(grants, g)
	}
	return grants, nil
}

func (m *memStore) UserRoles(_ context.Context, userID int64) ([]Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Role(nil), m.roles[userID]...), nil
}

// Helpers used by tests; they take the lock because the service touches
// sessions from a background goroutine.

func (m *memStore) sessionActive(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return ok && s.Active
}

func (m *memStore) liveSessionCount(userID int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, s := range m.sessions {
		if s.UserID == userID && s.Active && s.ExpiresAt.After(m.now()) {
			count++
		}
	}
	return count
}

func (m *memStore) setSessionActive(id string, active bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		s.Active = active
	}
}

func (m *memStore) setUser(u User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := strings.ToLower(u.Username)
	entry := m.users[key]
	entry.user = u
	m.users[key] = entry
}

func newTestService(t *testing.T, store *memStore, opts ...Option) *Service {
	t.Helper()
	svc, err := NewService(store, Config{Secret: []byte("test-secret")}, opts...)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}
