package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/mathevolve/mathevolve-api/internal/api"
)

// Users is what the auth handlers need from the account store.
type Users interface {
	Authenticate(ctx context.Context, username, password string) (AdminUser, error)
	FindByID(ctx context.Context, id string) (AdminUser, error)
}

type loginRequest struct {
	Username string `json:"username" validate:"min=3,max=100"`
	Password string `json:"password" validate:"min=6,max=100"`
}

// POST /api/auth/login  { "username": "...", "password": "..." }
func LoginHandler(a *AuthService, users Users) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if !api.Bind(w, r, &req) {
			return
		}
		u, err := users.Authenticate(r.Context(), req.Username, req.Password)
		if errors.Is(err, ErrUserNotFound) {
			api.WriteErr(w, api.CodeInvalidCredentials, "Invalid username or password")
			return
		}
		if err != nil {
			api.Internal(w, "login", err, "An error occurred during login")
			return
		}
		tok, err := a.IssueJWT(u.ID, u.Username, u.Role)
		if err != nil {
			api.Internal(w, "issue token", err, "An error occurred during login")
			return
		}
		api.WriteOK(w, map[string]any{"token": tok, "user": u})
	}
}

// GET /api/auth/me (behind JWTMiddleware)
func MeHandler(users Users) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := SubjectFromContext(r.Context())
		if sub == "" {
			api.WriteErr(w, api.CodeUnauthorized, "Not authenticated")
			return
		}
		u, err := users.FindByID(r.Context(), sub)
		if errors.Is(err, ErrUserNotFound) {
			api.WriteErr(w, api.CodeUserNotFound, "User not found")
			return
		}
		if err != nil {
			api.Internal(w, "load current user", err, "An error occurred")
			return
		}
		api.WriteOK(w, map[string]any{"user": u})
	}
}

// POST /api/auth/logout (behind JWTMiddleware). Tokens are stateless; the
// client discards its copy.
func LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		api.WriteOK(w, map[string]string{"message": "Logged out successfully"})
	}
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required,max=100"`
	NewPassword     string `json:"newPassword" validate:"min=8,max=100,nefield=CurrentPassword"`
}

// PasswordChanger is implemented by UserStore.
type PasswordChanger interface {
	ChangePassword(ctx context.Context, id, current, next string) error
}

// POST /api/auth/password (behind JWTMiddleware)
func ChangePasswordHandler(users PasswordChanger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := SubjectFromContext(r.Context())
		if sub == "" {
			api.WriteErr(w, api.CodeUnauthorized, "Not authenticated")
			return
		}
		var req changePasswordRequest
		if !api.Bind(w, r, &req) {
			return
		}
		switch err := users.ChangePassword(r.Context(), sub, req.CurrentPassword, req.NewPassword); {
		case errors.Is(err, ErrWrongPassword):
			api.WriteErr(w, api.CodeInvalidCredentials, "Current password is incorrect")
		case errors.Is(err, ErrUserNotFound):
			api.WriteErr(w, api.CodeUserNotFound, "User not found")
		case err != nil:
			api.Internal(w, "change password", err, "An error occurred")
		default:
			api.WriteOK(w, map[string]string{"message": "Password updated"})
		}
	}
}

// POST /api/auth/verify reports token validity without failing on bad tokens.
func VerifyHandler(a *AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tok := bearer(r)
		if tok == "" {
			api.WriteErr(w, api.CodeNoToken, "No token provided")
			return
		}
		c, err := a.Parse(tok)
		if err != nil {
			api.WriteOK(w, map[string]any{"valid": false})
			return
		}
		payload := map[string]any{"id": c.Sub, "username": c.Username, "role": c.Role}
		if c.IssuedAt != nil {
			payload["iat"] = c.IssuedAt.Unix()
		}
		if c.ExpiresAt != nil {
			payload["exp"] = c.ExpiresAt.Unix()
		}
		api.WriteOK(w, map[string]any{"valid": true, "payload": payload})
	}
}
