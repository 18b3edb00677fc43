package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

var _ Store = (*PGStore)(nil)

// PGStore implements Store against the application's PostgreSQL schema.
type PGStore struct {
	db *sql.DB
}

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) UserByUsername(ctx context.Context, username string) (*User, string, error) {
	row := s.db.QueryRowContext(ctx, `
		select id, username, email, actif, verrouille, personnel_id, password_hash
		from utilisateurs
		where lower(username) = lower($1)
	`, username)
	var (
		u    User
		hash string
	)
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Active, &u.Locked, &u.PersonnelID, &hash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", ErrNotFound
		}
		return nil, "", err
	}
	return &u, hash, nil
}

func (s *PGStore) CreateSession(ctx context.Context, sess *Session) error {
	_, err := s.db.ExecContext(ctx, `
		insert into sessions(id, utilisateur_id, actif, expiration, derniere_activite)
		values ($1, $2, $3, $4, $5)
	`, sess.ID, sess.UserID, sess.Active, sess.ExpiresAt, sess.LastActivity)
	return err
}

func (s *PGStore) ActiveSessionCount(ctx context.Context, userID int64) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		select count(*) from sessions
		where utilisateur_id = $1 and actif and expiration > now()
	`, userID).Scan(&count)
	return count, err
}

// RevokeOldestSession uses the same liveness predicate as ActiveSessionCount
// so eviction always frees a slot that was counted against the bound.
func (s *PGStore) RevokeOldestSession(ctx context.Context, userID int64) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `
		update sessions set actif = false
		where id = (
			select id from sessions
			where utilisateur_id = $1 and actif and expiration > now()
			order by derniere_activite asc
			limit 1
		)
		returning id
	`, userID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

// SessionWithUser filters on session liveness only; account-state flags are
// returned for the caller to judge so a disabled account is reported as
// such, not as an expired session.
func (s *PGStore) SessionWithUser(ctx context.Context, sessionID string, userID int64) (*Session, *User, error) {
	row := s.db.QueryRowContext(ctx, `
		select s.id, s.utilisateur_id, s.actif, s.expiration, s.derniere_activite,
		       u.id, u.username, u.email, u.actif, u.verrouille, u.personnel_id
		from sessions s
		join utilisateurs u on u.id = s.utilisateur_id
		where s.id = $1 and s.utilisateur_id = $2 and s.actif and s.expiration > now()
	`, sessionID, userID)
	var (
		sess Session
		u    User
	)
	err := row.Scan(&sess.ID, &sess.UserID, &sess.Active, &sess.ExpiresAt, &sess.LastActivity,
		&u.ID, &u.Username, &u.Email, &u.Active, &u.Locked, &u.PersonnelID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	return &sess, &u, nil
}

func (s *PGStore) TouchSession(ctx context.Context, sessionID string, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		update sessions set derniere_activite = $2 where id = $1
	`, sessionID, at)
	return err
}

func (s *PGStore) RevokeSession(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx, `
		update sessions set actif = false where id = $1 and actif
	`, sessionID)
	return err
}

func (s *PGStore) RevokeUserSessions(ctx context.Context, userID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		update sessions set actif = false
		where utilisateur_id = $1 and actif
		returning id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var revoked []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		revoked = append(revoked, id)
	}
	return revoked, rows.Err()
}

func (s *PGStore) RolePermissions(ctx context.Context, userID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		select distinct rp.permission_code
		from utilisateurs_roles ur
		join roles r on r.id = ur.role_id and r.actif
		join roles_permissions rp on rp.role_id = r.id
		where ur.utilisateur_id = $1
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	return codes, rows.Err()
}

// DirectGrants excludes expired overrides at the query level so expired
// rows can never reach resolution.
func (s *PGStore) DirectGrants(ctx context.Context, userID int64) ([]DirectGrant, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, utilisateur_id, permission_code, type, expiration
		from utilisateurs_permissions
		where utilisateur_id = $1
		  and (expiration is null or expiration >= current_date)
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var grants []DirectGrant
	for rows.Next() {
		var g DirectGrant
		if err := rows.Scan(&g.ID, &g.UserID, &g.Permission, &g.Type, &g.Expiration); err != nil {
			return nil, err
		}
		grants = append(grants, g)
	}
	return grants, rows.Err()
}

func (s *PGStore) UserRoles(ctx context.Context, userID int64) ([]Role, error) {
	rows, err := s.db.QueryContext(ctx, `
		select r.id, r.code, r.nom, r.priorite, r.actif
		from roles r
		join utilisateurs_roles ur on ur.role_id = r.id
		where ur.utilisateur_id = $1 and r.actif
		order by r.priorite
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []Role
	for rows.Next() {
		var r Role
		if err := rows.Scan(&r.ID, &r.Code, &r.Name, &r.Priority, &r.Active); err != nil {
			return nil, err
		}
		roles = append(roles, r)
	}
	return roles, rows.Err()
}
