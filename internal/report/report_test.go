package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/mathevolve/mathevolve-api/internal/assessment"
	"github.com/mathevolve/mathevolve-api/internal/student"
)

type fakeStudents []student.Student

func (f fakeStudents) List(context.Context) ([]student.Student, error) { return f, nil }

type fakeResults []assessment.TestResult

func (f fakeResults) ListTestResults(context.Context) ([]assessment.TestResult, error) { return f, nil }

var (
	day1 = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	day2 = time.Date(2024, 3, 8, 9, 30, 0, 0, time.UTC)
)

func fixture() *Service {
	students := fakeStudents{
		{ID: "a", StudentCode: "STUDENT_001", CreatedAt: day1},
		{ID: "b", StudentCode: "STUDENT_002", CreatedAt: day1},
		{ID: "c", StudentCode: "STUDENT_003", CreatedAt: day1},
	}
	results := fakeResults{
		{StudentID: "a", TestType: assessment.TestPre, Score: 8, MaxScore: 10, CompletedAt: day1},
		{StudentID: "a", TestType: assessment.TestPost, Score: 6, MaxScore: 10, CompletedAt: day2},
		{StudentID: "b", TestType: assessment.TestPre, Score: 0, MaxScore: 10, CompletedAt: day1},
		{StudentID: "b", TestType: assessment.TestPost, Score: 5, MaxScore: 10, CompletedAt: day2},
		{StudentID: "c", TestType: assessment.TestPre, Score: 1, MaxScore: 3, CompletedAt: day1},
	}
	s := NewService(students, results, "")
	s.now = func() time.Time { return day2 }
	return s
}

func TestStats(t *testing.T) {
	got, err := fixture().Stats(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	// pre: 80, 0, 33.33 -> 37.78 -> 38; post: 60, 50 -> 55
	want := Stats{TotalStudents: 3, PreTestCompleted: 3, PostTestCompleted: 2,
		AveragePreScore: 38, AveragePostScore: 55, Improvement: 17}
	if got != want {
		t.Fatalf("stats = %+v, want %+v", got, want)
	}
}

func TestStats_Empty(t *testing.T) {
	got, err := NewService(fakeStudents{}, fakeResults{}, "").Stats(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got != (Stats{}) {
		t.Fatalf("stats = %+v", got)
	}
}

func TestStudentResults(t *testing.T) {
	rows, err := fixture().StudentResults(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d", len(rows))
	}

	a := rows[0]
	if *a.PreTestScore != 80 || *a.PostTestScore != 60 || *a.ScoreDifference != -20 || *a.ImprovementPercentage != -25 {
		t.Fatalf("STUDENT_001 = %+v", a)
	}
	b := rows[1]
	if *b.ScoreDifference != 50 || b.ImprovementPercentage != nil {
		t.Fatalf("STUDENT_002: improvement must be undefined when pre is 0: %+v", b)
	}
	c := rows[2]
	if *c.PreTestScore != 33 || c.PostTestScore != nil || c.ScoreDifference != nil || c.PostTestDate != nil {
		t.Fatalf("STUDENT_003 = %+v", c)
	}
}

func TestExportCSV(t *testing.T) {
	f, err := fixture().ExportCSV(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if f.Name != "mathevolve-results-2024-03-08.csv" || f.ContentType != "text/csv" {
		t.Fatalf("file = %s %s", f.Name, f.ContentType)
	}
	recs, err := csv.NewReader(bytes.NewReader(f.Data)).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(recs) != 4 || strings.Join(recs[0], ",") != strings.Join(header, ",") {
		t.Fatalf("records = %v", recs)
	}
	want := []string{"STUDENT_003", "33", "N/A", "N/A", "N/A", "2024-03-01T09:30:00.000Z", "N/A"}
	if strings.Join(recs[3], ",") != strings.Join(want, ",") {
		t.Fatalf("row 3 = %v, want %v", recs[3], want)
	}
}

func TestExport_NoData(t *testing.T) {
	s := NewService(fakeStudents{}, fakeResults{}, "custom")
	ctx := context.Background()
	if _, err := s.ExportCSV(ctx); err != ErrNoData {
		t.Fatalf("csv: %v", err)
	}
	if _, err := s.ExportJSON(ctx); err != ErrNoData {
		t.Fatalf("json: %v", err)
	}
	if _, err := s.ExportXLSX(ctx); err != ErrNoData {
		t.Fatalf("xlsx: %v", err)
	}
}

func TestExportJSON(t *testing.T) {
	f, err := fixture().ExportJSON(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if f.Name != "mathevolve-results-2024-03-08.json" {
		t.Fatalf("name = %s", f.Name)
	}
	var doc struct {
		ExportDate string `json:"exportDate"`
		Summary    struct {
			TotalStudents, TotalTestResults, PreTestCount, PostTestCount int
		} `json:"summary"`
		TestResults    []map[string]any `json:"testResults"`
		StudentResults []map[string]any `json:"studentResults"`
	}
	if err := json.Unmarshal(f.Data, &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	s := doc.Summary
	if s.TotalStudents != 3 || s.TotalTestResults != 5 || s.PreTestCount != 3 || s.PostTestCount != 2 {
		t.Fatalf("summary = %+v", s)
	}
	if doc.ExportDate != "2024-03-08T09:30:00.000Z" {
		t.Fatalf("exportDate = %s", doc.ExportDate)
	}
	last := doc.StudentResults[2]
	if v, present := last["postTestScore"]; !present || v != nil {
		t.Fatalf("missing values must be explicit nulls: %v", last)
	}
	if doc.TestResults[4]["percentage"].(float64) != 33 {
		t.Fatalf("testResults[4] = %v", doc.TestResults[4])
	}
}

func TestExportXLSX(t *testing.T) {
	f, err := fixture().ExportXLSX(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(f.Name, ".xlsx") {
		t.Fatalf("name = %s", f.Name)
	}
	wb, err := excelize.OpenReader(bytes.NewReader(f.Data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer wb.Close()
	rows, err := wb.GetRows("Results")
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 4 || rows[0][0] != "Student Code" || rows[1][0] != "STUDENT_001" || rows[1][3] != "-20" {
		t.Fatalf("rows = %v", rows)
	}
}
