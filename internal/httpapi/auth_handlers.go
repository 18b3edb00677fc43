package httpapi

import (
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ateliersoft/gpao/internal/audit"
	"github.com/ateliersoft/gpao/internal/auth"
	"github.com/ateliersoft/gpao/internal/obs"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success      bool          `json:"success"`
	Token        string        `json:"token"`
	RefreshToken string        `json:"refresh_token"`
	ExpiresAt    time.Time     `json:"expires_at"`
	User         auth.Identity `json:"user"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type refreshResponse struct {
	Success   bool      `json:"success"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	pair, identity, err := a.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		obs.ObserveLogin("failed")
		_ = audit.LogEvent(r.Context(), "auth.login.failed", map[string]any{
			"username": strings.TrimSpace(req.Username),
		})
		respondRejection(w, r, err)
		return
	}

	obs.ObserveLogin("ok")
	_ = audit.LogEvent(r.Context(), "auth.login", map[string]any{
		"user_id":    identity.UserID,
		"session_id": identity.SessionID,
	})
	writeJSON(w, http.StatusOK, loginResponse{
		Success:      true,
		Token:        pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    pair.AccessExpiresAt,
		User:         identity,
	})
}

func (a *API) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req refreshRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	access, exp, err := a.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		respondRejection(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, refreshResponse{
		Success:   true,
		Token:     access,
		ExpiresAt: exp,
	})
}

func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		w.Header().Set("WWW-Authenticate", `Bearer realm="gpao"`)
		writeError(w, r, http.StatusUnauthorized, "missing or invalid token")
		return
	}
	if err := a.auth.Logout(r.Context(), identity.SessionID); err != nil {
		respondRejection(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "auth.logout", map[string]any{
		"user_id":    identity.UserID,
		"session_id": identity.SessionID,
	})
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// handleMe exposes the request-scoped identity and effective authorization
// for the frontend to drive menu visibility.
func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		w.Header().Set("WWW-Authenticate", `Bearer realm="gpao"`)
		writeError(w, r, http.StatusUnauthorized, "missing or invalid token")
		return
	}
	authz, err := a.auth.Authorize(r.Context())
	if err != nil {
		respondRejection(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    identity,
		"roles":   authz.Roles,
		"allowed": sortedCodes(authz.Allowed),
		"denied":  sortedCodes(authz.Denied),
	})
}

// handleUserSessions serves DELETE /v1/users/{id}/sessions: administrative
// force-expire of every live session of a user.
func (a *API) handleUserSessions(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/users/"), "/")
	parts := strings.Split(path, "/")
	if len(parts) != 2 || parts[1] != "sessions" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	if r.Method != http.MethodDelete {
		methodNotAllowed(w, r, http.MethodDelete)
		return
	}
	userID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid user id")
		return
	}

	count, err := a.auth.RevokeUserSessions(r.Context(), userID)
	if err != nil {
		respondRejection(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "auth.sessions.revoked", map[string]any{
		"target_user_id": userID,
		"count":          count,
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"revoked": count,
	})
}

func sortedCodes(set map[string]struct{}) []string {
	codes := make([]string, 0, len(set))
	for code := range set {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
