package httpapi

import (
	"net/http"

	"github.com/ateliersoft/gpao/internal/auth"
	"github.com/ateliersoft/gpao/internal/obs"
)

const maxBodyBytes = 1 << 20

// API is the HTTP layer. Business routers (orders, planning, personnel,
// maintenance, quality) mount their routes through Mount with the gates
// from gates.go; they are external to this core.
type API struct {
	mux        *http.ServeMux
	auth       *auth.Service
	readyProbe ReadyProbe
	version    string

	rateBurst  int
	ratePerSec int
}

func New(rp ReadyProbe, version string, authSvc *auth.Service) *API {
	a := &API{
		mux:        http.NewServeMux(),
		auth:       authSvc,
		readyProbe: rp,
		version:    version,
		rateBurst:  20,
		ratePerSec: 10,
	}

	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.HandleFunc("/v1/info", a.Info)
	a.mux.Handle("/metrics", obs.Handler())

	a.mux.HandleFunc("/v1/auth/login", a.handleLogin)
	a.mux.HandleFunc("/v1/auth/refresh", a.handleRefresh)
	a.mux.HandleFunc("/v1/auth/logout", a.handleLogout)
	a.mux.HandleFunc("/v1/auth/me", a.handleMe)

	a.mux.Handle("/v1/users/", RequirePermission(authSvc, auth.PermUtilisateursWrite)(
		http.HandlerFunc(a.handleUserSessions)))

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Mount registers a gated business handler under the given prefix.
func (a *API) Mount(prefix string, handler http.Handler) {
	a.mux.Handle(prefix, handler)
}

// Gate builds a permission-gate middleware bound to this API's auth service.
func (a *API) Gate(code string) func(http.Handler) http.Handler {
	return RequirePermission(a.auth, code)
}

// Handler assembles the middleware chain around the mux.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.mux
	h = a.withAuth(h)
	h = MaxBodyBytes(h, maxBodyBytes)
	h = RateLimit(h, a.rateBurst, a.ratePerSec)
	h = CORS(h)
	h = SecurityHeaders(h)
	h = LoggingJSON(h)
	h = RequestID(h)
	return obs.Instrument(h)
}
