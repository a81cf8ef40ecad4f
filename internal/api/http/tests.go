package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mathevolve/mathevolve-api/internal/api"
	"github.com/mathevolve/mathevolve-api/internal/assessment"
)

// GET /api/tests/pre-test, /api/tests/post-test
func TestQuizHandler(svc *assessment.Service, t assessment.TestType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := svc.TestQuiz(r.Context(), t)
		if err != nil {
			writeServiceErr(w, "load "+t.Label(), err, "Failed to fetch "+t.Label())
			return
		}
		api.WriteOK(w, map[string]any{"quiz": q.Public()})
	}
}

// GET /api/tests/{testType}/status/{studentID}
func TestStatusHandler(svc *assessment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, ok := assessment.ParseTestType(chi.URLParam(r, "testType"))
		if !ok {
			api.WriteErr(w, api.CodeInvalidTestType, `Test type must be "pre" or "post"`)
			return
		}
		st, err := svc.Status(r.Context(), chi.URLParam(r, "studentID"), t)
		if err != nil {
			api.Internal(w, "test status", err, "Failed to check test status")
			return
		}
		api.WriteOK(w, st)
	}
}

// POST /api/tests/pre-test/submit, /api/tests/post-test/submit
// { "studentId", "answers": [...], "quizId"? }
func SubmitTestHandler(svc *assessment.Service, t assessment.TestType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			StudentID string        `json:"studentId" validate:"required,uuid"`
			QuizID    string        `json:"quizId"`
			Answers   []answerInput `json:"answers" validate:"required,dive"`
		}
		if !api.Bind(w, r, &req) {
			return
		}
		sub, err := svc.SubmitTest(r.Context(), req.StudentID, t, req.QuizID, toAnswers(req.Answers))
		if err != nil {
			writeServiceErr(w, "submit "+t.Label(), err, "Failed to submit "+t.Label())
			return
		}
		api.WriteOK(w, sub)
	}
}
