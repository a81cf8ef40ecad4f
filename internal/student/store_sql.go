package student

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	dbutil "github.com/mathevolve/mathevolve-api/internal/db"
)

type SQLStore struct {
	db *sqlx.DB
}

func NewSQLStore(db *sqlx.DB) *SQLStore { return &SQLStore{db: db} }

type row struct {
	ID          string `db:"id"`
	StudentCode string `db:"student_code"`
	CreatedAt   int64  `db:"created_at"`
	Metadata    string `db:"metadata"`
}

func (r row) toStudent() Student {
	st := Student{ID: r.ID, StudentCode: r.StudentCode, CreatedAt: time.UnixMilli(r.CreatedAt).UTC()}
	if r.Metadata != "" && json.Valid([]byte(r.Metadata)) {
		st.Metadata = json.RawMessage(r.Metadata)
	}
	return st
}

const cols = `id, student_code, created_at, metadata`

func (s *SQLStore) GetByCode(ctx context.Context, code string) (Student, error) {
	return s.get(ctx, `SELECT `+cols+` FROM students WHERE student_code=$1`, code)
}

func (s *SQLStore) GetByID(ctx context.Context, id string) (Student, error) {
	return s.get(ctx, `SELECT `+cols+` FROM students WHERE id=$1`, id)
}

func (s *SQLStore) get(ctx context.Context, q string, arg string) (Student, error) {
	var r row
	if err := s.db.GetContext(ctx, &r, q, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Student{}, ErrNotFound
		}
		return Student{}, err
	}
	return r.toStudent(), nil
}

func (s *SQLStore) Insert(ctx context.Context, st Student) (Student, InsertOutcome, error) {
	meta := string(st.Metadata)
	if meta == "" {
		meta = "{}"
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO students (`+cols+`) VALUES ($1,$2,$3,$4)`,
		st.ID, st.StudentCode, st.CreatedAt.UnixMilli(), meta)
	if err != nil {
		if dbutil.IsUniqueViolation(err) {
			return Student{}, ConflictExisting, nil
		}
		return Student{}, Inserted, err
	}
	return st, Inserted, nil
}

func (s *SQLStore) Exists(ctx context.Context, id string) (bool, error) {
	var one int
	err := s.db.GetContext(ctx, &one, `SELECT 1 FROM students WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// List returns every student ordered by code.
func (s *SQLStore) List(ctx context.Context) ([]Student, error) {
	var rows []row
	if err := s.db.SelectContext(ctx, &rows, `SELECT `+cols+` FROM students ORDER BY student_code`); err != nil {
		return nil, err
	}
	out := make([]Student, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toStudent())
	}
	return out, nil
}
