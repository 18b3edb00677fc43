package httpapi

import (
	"net/http"

	"github.com/ateliersoft/gpao/internal/auth"
)

// RequirePermission gates a handler on one permission code. Resolution runs
// lazily and is memoized on the request context, so stacked gates share one
// database round trip.
func RequirePermission(svc *auth.Service, code string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authz, err := svc.Authorize(r.Context())
			if err != nil {
				respondRejection(w, r, err)
				return
			}
			if err := authz.Check(code); err != nil {
				respondRejection(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAnyPermission gates a handler on any of the given codes. A code
// both granted and denied does not qualify.
func RequireAnyPermission(svc *auth.Service, codes ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authz, err := svc.Authorize(r.Context())
			if err != nil {
				respondRejection(w, r, err)
				return
			}
			if err := authz.CheckAny(codes...); err != nil {
				respondRejection(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
