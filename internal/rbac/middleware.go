package rbac

import (
	"net/http"

	"github.com/mathevolve/mathevolve-api/internal/api"
)

var defaultChecker = NewChecker(nil)

func forbid(w http.ResponseWriter) {
	api.WriteErr(w, api.CodeForbidden, "Insufficient permissions")
}

// Require enforces a single permission.
func Require(perm string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := RoleFromContext(r.Context())
			if role == "" || !defaultChecker.Has(role, perm) {
				forbid(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAny enforces that the role has at least one of the permissions.
func RequireAny(perms ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := RoleFromContext(r.Context())
			if role == "" || !defaultChecker.Any(role, perms...) {
				forbid(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
