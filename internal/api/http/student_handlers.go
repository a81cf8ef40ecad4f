package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mathevolve/mathevolve-api/internal/api"
	"github.com/mathevolve/mathevolve-api/internal/assessment"
	"github.com/mathevolve/mathevolve-api/internal/student"
)

const msgBadCode = "Invalid student code format"

// POST /api/students/enter  { "studentCode": "STUDENT_001" }
// Creates the student on first entry; later entries return the same record.
func EnterStudentHandler(students *student.Service, tests *assessment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			StudentCode string `json:"studentCode" validate:"required,student_code"`
		}
		if !api.BindWithMessage(w, r, &req, msgBadCode) {
			return
		}
		st, err := students.Enter(r.Context(), req.StudentCode)
		if err != nil {
			api.Internal(w, "enter student", err, "Failed to process student")
			return
		}
		pv, err := tests.Progress(r.Context(), st.ID)
		if err != nil {
			api.Internal(w, "student progress", err, "An error occurred")
			return
		}
		api.WriteOK(w, map[string]any{"student": st, "progress": pv})
	}
}

// GET /api/students/{code}
func GetStudentHandler(students *student.Service, tests *assessment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, ok := studentByCode(w, r, students)
		if !ok {
			return
		}
		pv, err := tests.Progress(r.Context(), st.ID)
		if err != nil {
			api.Internal(w, "student progress", err, "An error occurred")
			return
		}
		api.WriteOK(w, map[string]any{"student": st, "progress": pv})
	}
}

// GET /api/students/{code}/progress
func StudentProgressHandler(students *student.Service, tests *assessment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, ok := studentByCode(w, r, students)
		if !ok {
			return
		}
		pv, err := tests.Progress(r.Context(), st.ID)
		if err != nil {
			api.Internal(w, "student progress", err, "An error occurred")
			return
		}
		api.WriteOK(w, map[string]any{"progress": pv})
	}
}

func studentByCode(w http.ResponseWriter, r *http.Request, students *student.Service) (student.Student, bool) {
	code := chi.URLParam(r, "code")
	if !student.ValidCode(code) {
		api.WriteErr(w, api.CodeValidation, msgBadCode)
		return student.Student{}, false
	}
	st, err := students.ByCode(r.Context(), code)
	if errors.Is(err, student.ErrNotFound) {
		api.WriteErr(w, api.CodeNotFound, "Student not found")
		return student.Student{}, false
	}
	if err != nil {
		api.Internal(w, "find student", err, "An error occurred")
		return student.Student{}, false
	}
	return st, true
}
