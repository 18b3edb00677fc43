package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ateliersoft/gpao/internal/auth"
	"github.com/ateliersoft/gpao/internal/obs"
)

const (
	authHeader = "Authorization"
	bearer     = "Bearer "
)

var publicPaths = []string{
	"/v1/auth/login",
	"/v1/auth/refresh",
	"/metrics",
	"/healthz",
	"/readyz",
	"/v1/info",
	"/",
}

// withAuth authenticates every non-public request: bearer extraction, token
// validation, session check, account-state check, then identity attachment.
func (a *API) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions || isPublicPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		token, err := extractBearerToken(r.Header.Get(authHeader))
		if err != nil {
			obs.ObserveRejection("authentication")
			w.Header().Set("WWW-Authenticate", `Bearer realm="gpao"`)
			writeError(w, r, http.StatusUnauthorized, err.Error())
			return
		}

		identity, err := a.auth.Authenticate(r.Context(), token)
		if err != nil {
			respondRejection(w, r, err)
			return
		}

		ctx := auth.ContextWithIdentity(r.Context(), identity)
		ctx = auth.ContextWithToken(ctx, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// respondRejection is the single place that maps rejection kinds to HTTP
// statuses. Internal failures (database down) are never reported as 401.
func respondRejection(w http.ResponseWriter, r *http.Request, err error) {
	switch auth.KindOf(err) {
	case auth.KindAuthentication:
		obs.ObserveRejection("authentication")
		w.Header().Set("WWW-Authenticate", `Bearer realm="gpao"`)
		writeError(w, r, http.StatusUnauthorized, err.Error())
	case auth.KindAccountState:
		obs.ObserveRejection("account_state")
		writeError(w, r, http.StatusForbidden, err.Error())
	case auth.KindPermission:
		obs.ObserveRejection("permission")
		writeError(w, r, http.StatusForbidden, err.Error())
	default:
		writeError(w, r, http.StatusInternalServerError, "authentication error")
	}
}

func extractBearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", errors.New("missing bearer token")
	}
	if !strings.HasPrefix(strings.ToLower(header), strings.ToLower(bearer)) {
		return "", errors.New("invalid authorization scheme")
	}
	token := strings.TrimSpace(header[len(bearer):])
	if token == "" {
		return "", errors.New("missing bearer token")
	}
	return token, nil
}

func isPublicPath(path string) bool {
	for _, p := range publicPaths {
		if path == p {
			return true
		}
	}
	return false
}
