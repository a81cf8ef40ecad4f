// Package report aggregates test results into dashboard statistics and
// per-student rows for teachers, and renders them as downloadable exports.
package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mathevolve/mathevolve-api/internal/assessment"
	"github.com/mathevolve/mathevolve-api/internal/grading"
	"github.com/mathevolve/mathevolve-api/internal/student"
)

// ErrNoData is returned by every export when there are no students.
var ErrNoData = errors.New("report: no data to export")

type StudentLister interface {
	List(ctx context.Context) ([]student.Student, error)
}

type ResultLister interface {
	ListTestResults(ctx context.Context) ([]assessment.TestResult, error)
}

type Stats struct {
	TotalStudents     int `json:"totalStudents"`
	PreTestCompleted  int `json:"preTestCompleted"`
	PostTestCompleted int `json:"postTestCompleted"`
	AveragePreScore   int `json:"averagePreScore"`
	AveragePostScore  int `json:"averagePostScore"`
	Improvement       int `json:"improvement"`
}

// StudentResult is one row of the teacher results table. Scores are
// percentages; nil means the value does not exist for this student.
type StudentResult struct {
	StudentCode           string     `json:"studentCode"`
	PreTestScore          *int       `json:"preTestScore,omitempty"`
	PostTestScore         *int       `json:"postTestScore,omitempty"`
	ScoreDifference       *int       `json:"scoreDifference,omitempty"`
	ImprovementPercentage *int       `json:"improvementPercentage,omitempty"`
	PreTestDate           *time.Time `json:"preTestDate,omitempty"`
	PostTestDate          *time.Time `json:"postTestDate,omitempty"`
}

type Service struct {
	students StudentLister
	results  ResultLister
	prefix   string
	now      func() time.Time
}

// NewService builds a report service. prefix names export files
// ("<prefix>-YYYY-MM-DD.csv").
func NewService(students StudentLister, results ResultLister, prefix string) *Service {
	if prefix == "" {
		prefix = "mathevolve-results"
	}
	return &Service{students: students, results: results, prefix: prefix, now: time.Now}
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	students, err := s.students.List(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("list students: %w", err)
	}
	results, err := s.results.ListTestResults(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("list test results: %w", err)
	}

	var pre, post []grading.Fraction
	for _, r := range results {
		f := grading.Fraction{Score: r.Score, Max: r.MaxScore}
		switch r.TestType {
		case assessment.TestPre:
			pre = append(pre, f)
		case assessment.TestPost:
			post = append(post, f)
		}
	}
	st := Stats{
		TotalStudents:     len(students),
		PreTestCompleted:  len(pre),
		PostTestCompleted: len(post),
		AveragePreScore:   grading.MeanPercentage(pre),
		AveragePostScore:  grading.MeanPercentage(post),
	}
	st.Improvement = st.AveragePostScore - st.AveragePreScore
	return st, nil
}

// StudentResults returns one row per student, ordered by student code.
func (s *Service) StudentResults(ctx context.Context) ([]StudentResult, error) {
	d, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return d.rows(), nil
}

type dataset struct {
	students []student.Student
	results  []assessment.TestResult
}

func (s *Service) load(ctx context.Context) (dataset, error) {
	students, err := s.students.List(ctx)
	if err != nil {
		return dataset{}, fmt.Errorf("list students: %w", err)
	}
	results, err := s.results.ListTestResults(ctx)
	if err != nil {
		return dataset{}, fmt.Errorf("list test results: %w", err)
	}
	return dataset{students: students, results: results}, nil
}

func (d dataset) codes() map[string]string {
	m := make(map[string]string, len(d.students))
	for _, st := range d.students {
		m[st.ID] = st.StudentCode
	}
	return m
}

func (d dataset) rows() []StudentResult {
	byKey := make(map[string]assessment.TestResult, len(d.results))
	for _, r := range d.results {
		byKey[r.StudentID+"|"+string(r.TestType)] = r
	}

	out := make([]StudentResult, 0, len(d.students))
	for _, st := range d.students {
		row := StudentResult{StudentCode: st.StudentCode}
		if r, ok := byKey[st.ID+"|"+string(assessment.TestPre)]; ok {
			p := grading.Percentage(r.Score, r.MaxScore)
			at := r.CompletedAt
			row.PreTestScore, row.PreTestDate = &p, &at
		}
		if r, ok := byKey[st.ID+"|"+string(assessment.TestPost)]; ok {
			p := grading.Percentage(r.Score, r.MaxScore)
			at := r.CompletedAt
			row.PostTestScore, row.PostTestDate = &p, &at
		}
		if row.PreTestScore != nil && row.PostTestScore != nil {
			diff := grading.ScoreDifference(*row.PreTestScore, *row.PostTestScore)
			row.ScoreDifference = &diff
			if imp, ok := grading.Improvement(*row.PreTestScore, *row.PostTestScore); ok {
				row.ImprovementPercentage = &imp
			}
		}
		out = append(out, row)
	}
	return out
}
