package http

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mathevolve/mathevolve-api/internal/api"
	auth "github.com/mathevolve/mathevolve-api/internal/auth/middleware"
)

type accountRow struct {
	Username string `json:"username" validate:"min=3,max=100"`
	Password string `json:"password" validate:"min=6,max=100"`
	Role     string `json:"role" validate:"omitempty,oneof=teacher admin"`
}

// POST /api/admin/users
// Accepts a JSON array of {username,password,role} or a multipart "file"
// holding the same as CSV (header row required).
func CreateUsersHandler(users *auth.UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := readAccountRows(r)
		if err != nil {
			api.Write(w, api.Err(api.CodeValidation, err.Error(), nil))
			return
		}
		for _, row := range rows {
			if err := api.Validate.Struct(row); err != nil {
				api.Write(w, api.Err(api.CodeValidation, "Invalid account: "+row.Username, api.FieldErrors(err)))
				return
			}
		}

		created := []auth.AdminUser{}
		skipped := []string{}
		for _, row := range rows {
			u, err := users.Create(r.Context(), row.Username, row.Password, row.Role)
			if errors.Is(err, auth.ErrUsernameTaken) {
				skipped = append(skipped, row.Username)
				continue
			}
			if err != nil {
				api.Internal(w, "create account", err, "Failed to create accounts")
				return
			}
			created = append(created, u)
		}
		api.WriteStatus(w, http.StatusCreated, api.Ok(map[string]any{"created": created, "skipped": skipped}))
	}
}

// GET /api/admin/users
func ListUsersHandler(users *auth.UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := users.List(r.Context())
		if err != nil {
			api.Internal(w, "list accounts", err, "Failed to fetch accounts")
			return
		}
		api.WriteOK(w, map[string]any{"users": list})
	}
}

type roleUpdate struct {
	Role string `json:"role" validate:"required,oneof=teacher admin"`
}

// PATCH /api/admin/users/{user}/role   {user} is an id or a username.
func UpdateUserRoleHandler(users *auth.UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req roleUpdate
		if !api.Bind(w, r, &req) {
			return
		}
		u, err := users.SetRole(r.Context(), chi.URLParam(r, "user"), strings.ToLower(req.Role))
		switch {
		case errors.Is(err, auth.ErrUserNotFound):
			api.WriteErr(w, api.CodeUserNotFound, "User not found")
		case errors.Is(err, auth.ErrLastAdmin):
			api.WriteErr(w, api.CodeValidation, "Cannot demote the last admin")
		case err != nil:
			api.Internal(w, "update role", err, "Failed to update role")
		default:
			api.WriteOK(w, map[string]any{"user": u})
		}
	}
}

func readAccountRows(r *http.Request) ([]accountRow, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		f, _, err := r.FormFile("file")
		if err != nil {
			return nil, errors.New("file required")
		}
		defer f.Close()
		return parseAccountCSV(f)
	}
	var rows []accountRow
	if err := json.NewDecoder(r.Body).Decode(&rows); err != nil {
		return nil, errors.New("expected JSON array or multipart file")
	}
	if len(rows) == 0 {
		return nil, errors.New("no accounts given")
	}
	return rows, nil
}

func parseAccountCSV(r io.Reader) ([]accountRow, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	hdr, err := cr.Read()
	if err != nil {
		return nil, errors.New("bad csv: " + err.Error())
	}
	idx := map[string]int{}
	for i, h := range hdr {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, k := range []string{"username", "password"} {
		if _, ok := idx[k]; !ok {
			return nil, errors.New("missing column: " + k)
		}
	}
	var rows []accountRow
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errors.New("bad csv: " + err.Error())
		}
		row := accountRow{Username: rec[idx["username"]], Password: rec[idx["password"]]}
		if i, ok := idx["role"]; ok {
			row.Role = strings.ToLower(strings.TrimSpace(rec[i]))
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, errors.New("no accounts given")
	}
	return rows, nil
}
