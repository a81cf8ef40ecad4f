package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/mathevolve/mathevolve-api/internal/assessment"
	"github.com/mathevolve/mathevolve-api/internal/grading"
)

// File is a rendered export ready to be served as an attachment.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

const (
	isoMillis = "2006-01-02T15:04:05.000Z07:00"
	notAvail  = "N/A"
	sheetName = "Results"
)

var header = []string{
	"Student Code",
	"Pre-Test Score (%)",
	"Post-Test Score (%)",
	"Score Difference",
	"Improvement (%)",
	"Pre-Test Date",
	"Post-Test Date",
}

func (s *Service) filename(ext string) string {
	return fmt.Sprintf("%s-%s.%s", s.prefix, s.now().UTC().Format("2006-01-02"), ext)
}

func intCell(v *int) string {
	if v == nil {
		return notAvail
	}
	return strconv.Itoa(*v)
}

func dateCell(t *time.Time) string {
	if t == nil {
		return notAvail
	}
	return t.UTC().Format(isoMillis)
}

func tableRow(r StudentResult) []string {
	return []string{
		r.StudentCode,
		intCell(r.PreTestScore),
		intCell(r.PostTestScore),
		intCell(r.ScoreDifference),
		intCell(r.ImprovementPercentage),
		dateCell(r.PreTestDate),
		dateCell(r.PostTestDate),
	}
}

func (s *Service) ExportCSV(ctx context.Context) (File, error) {
	rows, err := s.StudentResults(ctx)
	if err != nil {
		return File{}, err
	}
	if len(rows) == 0 {
		return File{}, ErrNoData
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return File{}, err
	}
	for _, r := range rows {
		if err := w.Write(tableRow(r)); err != nil {
			return File{}, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return File{}, err
	}
	return File{Name: s.filename("csv"), ContentType: "text/csv", Data: buf.Bytes()}, nil
}

type jsonExport struct {
	ExportDate     string          `json:"exportDate"`
	Summary        jsonSummary     `json:"summary"`
	Students       []jsonStudent   `json:"students"`
	TestResults    []jsonResult    `json:"testResults"`
	StudentResults []jsonResultRow `json:"studentResults"`
}

type jsonSummary struct {
	TotalStudents    int `json:"totalStudents"`
	TotalTestResults int `json:"totalTestResults"`
	PreTestCount     int `json:"preTestCount"`
	PostTestCount    int `json:"postTestCount"`
}

type jsonStudent struct {
	StudentCode string `json:"studentCode"`
	CreatedAt   string `json:"createdAt"`
}

type jsonResult struct {
	StudentCode string `json:"studentCode"`
	TestType    string `json:"testType"`
	Score       int    `json:"score"`
	MaxScore    int    `json:"maxScore"`
	Percentage  int    `json:"percentage"`
	CompletedAt string `json:"completedAt"`
}

// jsonResultRow mirrors StudentResult with explicit nulls.
type jsonResultRow struct {
	StudentCode           string  `json:"studentCode"`
	PreTestScore          *int    `json:"preTestScore"`
	PostTestScore         *int    `json:"postTestScore"`
	ScoreDifference       *int    `json:"scoreDifference"`
	ImprovementPercentage *int    `json:"improvementPercentage"`
	PreTestDate           *string `json:"preTestDate"`
	PostTestDate          *string `json:"postTestDate"`
}

func optDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(isoMillis)
	return &s
}

func (s *Service) ExportJSON(ctx context.Context) (File, error) {
	d, err := s.load(ctx)
	if err != nil {
		return File{}, err
	}
	if len(d.students) == 0 {
		return File{}, ErrNoData
	}

	out := jsonExport{
		ExportDate:     s.now().UTC().Format(isoMillis),
		Students:       make([]jsonStudent, 0, len(d.students)),
		TestResults:    make([]jsonResult, 0, len(d.results)),
		StudentResults: []jsonResultRow{},
	}
	for _, st := range d.students {
		out.Students = append(out.Students, jsonStudent{StudentCode: st.StudentCode, CreatedAt: st.CreatedAt.UTC().Format(isoMillis)})
	}
	codes := d.codes()
	for _, r := range d.results {
		code, ok := codes[r.StudentID]
		if !ok {
			code = "Unknown"
		}
		out.TestResults = append(out.TestResults, jsonResult{
			StudentCode: code,
			TestType:    string(r.TestType),
			Score:       r.Score,
			MaxScore:    r.MaxScore,
			Percentage:  grading.Percentage(r.Score, r.MaxScore),
			CompletedAt: r.CompletedAt.UTC().Format(isoMillis),
		})
		if r.TestType == assessment.TestPre {
			out.Summary.PreTestCount++
		} else {
			out.Summary.PostTestCount++
		}
	}
	out.Summary.TotalStudents = len(d.students)
	out.Summary.TotalTestResults = len(d.results)

	for _, r := range d.rows() {
		out.StudentResults = append(out.StudentResults, jsonResultRow{
			StudentCode:           r.StudentCode,
			PreTestScore:          r.PreTestScore,
			PostTestScore:         r.PostTestScore,
			ScoreDifference:       r.ScoreDifference,
			ImprovementPercentage: r.ImprovementPercentage,
			PreTestDate:           optDate(r.PreTestDate),
			PostTestDate:          optDate(r.PostTestDate),
		})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return File{}, err
	}
	return File{Name: s.filename("json"), ContentType: "application/json", Data: data}, nil
}

// ExportXLSX renders the same table as ExportCSV into a workbook with a
// single "Results" sheet.
func (s *Service) ExportXLSX(ctx context.Context) (File, error) {
	rows, err := s.StudentResults(ctx)
	if err != nil {
		return File{}, err
	}
	if len(rows) == 0 {
		return File{}, ErrNoData
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return File{}, fmt.Errorf("rename sheet: %w", err)
	}

	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return File{}, fmt.Errorf("write header: %w", err)
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return File{}, err
		}
		values := tableRow(r)
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return File{}, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	if err := f.SetColWidth(sheetName, "A", "G", 20); err != nil {
		return File{}, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return File{}, fmt.Errorf("write workbook: %w", err)
	}
	return File{
		Name:        s.filename("xlsx"),
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Data:        buf.Bytes(),
	}, nil
}
