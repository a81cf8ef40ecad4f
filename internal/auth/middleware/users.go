package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	dbutil "github.com/mathevolve/mathevolve-api/internal/db"
)

var (
	ErrUserNotFound  = errors.New("auth: user not found")
	ErrUsernameTaken = errors.New("auth: username already exists")
	ErrInvalidRole   = errors.New("auth: role must be teacher or admin")
	ErrWrongPassword = errors.New("auth: current password does not match")
	ErrLastAdmin     = errors.New("auth: cannot demote the last admin")
)

const (
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

// AdminUser is a teacher or administrator account. The password hash never
// leaves this package.
type AdminUser struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

type userRow struct {
	ID           string `db:"id"`
	Username     string `db:"username"`
	PasswordHash string `db:"password_hash"`
	Role         string `db:"role"`
	CreatedAt    int64  `db:"created_at"`
}

func (r userRow) user() AdminUser {
	return AdminUser{ID: r.ID, Username: r.Username, Role: r.Role, CreatedAt: time.UnixMilli(r.CreatedAt).UTC()}
}

// UserStore reads and writes the admin_users table.
type UserStore struct {
	db *sqlx.DB
}

func NewUserStore(db *sqlx.DB) *UserStore { return &UserStore{db: db} }

const userCols = `id, username, password_hash, role, created_at`

func (s *UserStore) FindByID(ctx context.Context, id string) (AdminUser, error) {
	r, err := s.find(ctx, `SELECT `+userCols+` FROM admin_users WHERE id=$1`, id)
	return r.user(), err
}

func (s *UserStore) find(ctx context.Context, q, arg string) (userRow, error) {
	var r userRow
	if err := s.db.GetContext(ctx, &r, q, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return userRow{}, ErrUserNotFound
		}
		return userRow{}, err
	}
	return r, nil
}

var compareHash = bcrypt.CompareHashAndPassword

// dummyHash is compared against on the unknown-user path so both login
// failures cost one bcrypt comparison.
var dummyHash = sync.OnceValue(func() []byte {
	h, err := bcrypt.GenerateFromPassword([]byte("mathevolve-no-such-user"), bcrypt.DefaultCost)
	if err != nil {
		panic(fmt.Sprintf("auth: dummy hash: %v", err))
	}
	return h
})

// Authenticate returns the user when password matches. Unknown users and
// wrong passwords are indistinguishable (ErrUserNotFound).
func (s *UserStore) Authenticate(ctx context.Context, username, password string) (AdminUser, error) {
	r, err := s.find(ctx, `SELECT `+userCols+` FROM admin_users WHERE username=$1`, username)
	if errors.Is(err, ErrUserNotFound) {
		_ = compareHash(dummyHash(), []byte(password))
		return AdminUser{}, ErrUserNotFound
	}
	if err != nil {
		return AdminUser{}, err
	}
	if compareHash([]byte(r.PasswordHash), []byte(password)) != nil {
		return AdminUser{}, ErrUserNotFound
	}
	return r.user(), nil
}

func (s *UserStore) Create(ctx context.Context, username, password, role string) (AdminUser, error) {
	if role == "" {
		role = RoleTeacher
	}
	if role != RoleTeacher && role != RoleAdmin {
		return AdminUser{}, ErrInvalidRole
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return AdminUser{}, fmt.Errorf("hash password: %w", err)
	}
	r := userRow{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    time.Now().UnixMilli(),
	}
	_, err = s.db.NamedExecContext(ctx, `INSERT INTO admin_users (`+userCols+`)
		VALUES (:id, :username, :password_hash, :role, :created_at)`, r)
	if err != nil {
		if dbutil.IsUniqueViolation(err) {
			return AdminUser{}, ErrUsernameTaken
		}
		return AdminUser{}, err
	}
	return r.user(), nil
}

// ChangePassword replaces the hash for id after checking the current password.
func (s *UserStore) ChangePassword(ctx context.Context, id, current, next string) error {
	r, err := s.find(ctx, `SELECT `+userCols+` FROM admin_users WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if compareHash([]byte(r.PasswordHash), []byte(current)) != nil {
		return ErrWrongPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `UPDATE admin_users SET password_hash=$1 WHERE id=$2`, string(hash), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// SetRole changes the role of the account matching idOrUsername. Demoting
// the only remaining admin fails with ErrLastAdmin.
func (s *UserStore) SetRole(ctx context.Context, idOrUsername, role string) (AdminUser, error) {
	if role != RoleTeacher && role != RoleAdmin {
		return AdminUser{}, ErrInvalidRole
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return AdminUser{}, err
	}
	defer tx.Rollback()

	var r userRow
	err = tx.GetContext(ctx, &r, `SELECT `+userCols+` FROM admin_users WHERE id=$1 OR username=$1`, idOrUsername)
	if errors.Is(err, sql.ErrNoRows) {
		return AdminUser{}, ErrUserNotFound
	}
	if err != nil {
		return AdminUser{}, err
	}
	if r.Role == RoleAdmin && role != RoleAdmin {
		var admins int
		if err := tx.GetContext(ctx, &admins, `SELECT COUNT(1) FROM admin_users WHERE role=$1`, RoleAdmin); err != nil {
			return AdminUser{}, err
		}
		if admins <= 1 {
			return AdminUser{}, ErrLastAdmin
		}
	}
	if _, err := tx.ExecContext(ctx, `UPDATE admin_users SET role=$1 WHERE id=$2`, role, r.ID); err != nil {
		return AdminUser{}, err
	}
	if err := tx.Commit(); err != nil {
		return AdminUser{}, err
	}
	r.Role = role
	return r.user(), nil
}

// List returns every account ordered by username.
func (s *UserStore) List(ctx context.Context) ([]AdminUser, error) {
	var rows []userRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT `+userCols+` FROM admin_users ORDER BY username`); err != nil {
		return nil, err
	}
	out := make([]AdminUser, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.user())
	}
	return out, nil
}
