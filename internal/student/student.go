// Package student manages pseudonymous student records. Students are created
// lazily on first entry and are idempotent by code.
package student

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
)

var codeRE = regexp.MustCompile(`^STUDENT_\d{3}$`)

// ValidCode reports whether code has the form STUDENT_NNN.
func ValidCode(code string) bool { return codeRE.MatchString(code) }

type Student struct {
	ID          string          `json:"id"`
	StudentCode string          `json:"studentCode"`
	CreatedAt   time.Time       `json:"createdAt"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
}

// ErrNotFound is returned by lookups that match no student.
var ErrNotFound = errors.New("student: not found")

// InsertOutcome distinguishes a fresh write from losing a uniqueness race.
type InsertOutcome int

const (
	Inserted InsertOutcome = iota
	ConflictExisting
)

type Store interface {
	GetByCode(ctx context.Context, code string) (Student, error)
	GetByID(ctx context.Context, id string) (Student, error)
	Insert(ctx context.Context, s Student) (Student, InsertOutcome, error)
	Exists(ctx context.Context, id string) (bool, error)
	List(ctx context.Context) ([]Student, error)
}

type Service struct {
	store Store
	now   func() time.Time
	newID func() string
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now, newID: uuid.NewString}
}

// Enter returns the student for code, creating it on first use. A concurrent
// creation of the same code is resolved by re-reading the winner's row.
func (s *Service) Enter(ctx context.Context, code string) (Student, error) {
	st, err := s.store.GetByCode(ctx, code)
	if err == nil {
		return st, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Student{}, fmt.Errorf("find student: %w", err)
	}

	created, outcome, err := s.store.Insert(ctx, Student{
		ID:          s.newID(),
		StudentCode: code,
		CreatedAt:   s.now().UTC().Truncate(time.Millisecond),
		Metadata:    json.RawMessage(`{}`),
	})
	if err != nil {
		return Student{}, fmt.Errorf("create student: %w", err)
	}
	if outcome == ConflictExisting {
		st, err := s.store.GetByCode(ctx, code)
		if err != nil {
			return Student{}, fmt.Errorf("reload student after conflict: %w", err)
		}
		return st, nil
	}
	return created, nil
}

func (s *Service) ByCode(ctx context.Context, code string) (Student, error) {
	return s.store.GetByCode(ctx, code)
}

func (s *Service) ByID(ctx context.Context, id string) (Student, error) {
	return s.store.GetByID(ctx, id)
}
