package auth

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/mathevolve/mathevolve-api/internal/api"
	"github.com/mathevolve/mathevolve-api/internal/rbac"
)

// UserLookup resolves the account behind a token subject.
type UserLookup interface {
	FindByID(ctx context.Context, id string) (AdminUser, error)
}

// AttachRoleFromDB replaces the role claimed by the token with the account's
// current role, so demotions and deletions take effect before tokens expire.
// allowClaimFallback=true in offline mode; false online.
func AttachRoleFromDB(users UserLookup, allowClaimFallback bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			sub := SubjectFromContext(ctx)
			claimRole := rbac.RoleFromContext(ctx) // set by JWTMiddleware

			u, err := users.FindByID(ctx, sub)
			switch {
			case err == nil && u.Role != "":
				next.ServeHTTP(w, r.WithContext(rbac.WithRole(ctx, u.Role)))

			case errors.Is(err, ErrUserNotFound):
				api.WriteErr(w, api.CodeForbidden, "Account no longer exists")

			case err != nil && allowClaimFallback && claimRole != "":
				log.Printf("attach role for %s (%s): %v (using token role)", UsernameFromContext(ctx), sub, err)
				next.ServeHTTP(w, r)

			default:
				if err != nil {
					log.Printf("attach role for %s (%s): %v", UsernameFromContext(ctx), sub, err)
				}
				api.WriteErr(w, api.CodeForbidden, "Access denied")
			}
		})
	}
}
