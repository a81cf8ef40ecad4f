package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mathevolve/mathevolve-api/internal/api"
	"github.com/mathevolve/mathevolve-api/internal/assessment"
)

type answerInput struct {
	QuestionID string `json:"questionId" validate:"required"`
	Answer     string `json:"answer"`
}

func toAnswers(in []answerInput) []assessment.Answer {
	out := make([]assessment.Answer, len(in))
	for i, a := range in {
		out[i] = assessment.Answer{QuestionID: a.QuestionID, Answer: a.Answer}
	}
	return out
}

// GET /api/quizzes/topic/{topicID}
func TopicQuizHandler(svc *assessment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := svc.TopicQuiz(r.Context(), chi.URLParam(r, "topicID"))
		if err != nil {
			writeServiceErr(w, "topic quiz", err, "Failed to fetch quiz")
			return
		}
		api.WriteOK(w, map[string]any{"quiz": q.Public()})
	}
}

// GET /api/quizzes/{id}
func GetQuizHandler(svc *assessment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := svc.Quiz(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeServiceErr(w, "get quiz", err, "Failed to fetch quiz")
			return
		}
		api.WriteOK(w, map[string]any{"quiz": q.Public()})
	}
}

// POST /api/quizzes/{id}/submit  { "studentId", "answers": [...], "timeTaken"? }
func SubmitQuizHandler(svc *assessment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			StudentID string        `json:"studentId" validate:"required,uuid"`
			Answers   []answerInput `json:"answers" validate:"required,dive"`
			TimeTaken *int          `json:"timeTaken" validate:"omitempty,min=0"`
		}
		if !api.Bind(w, r, &req) {
			return
		}
		sub, err := svc.SubmitQuizAttempt(r.Context(), req.StudentID, chi.URLParam(r, "id"), toAnswers(req.Answers), req.TimeTaken)
		if err != nil {
			writeServiceErr(w, "submit quiz", err, "Failed to submit quiz")
			return
		}
		api.WriteOK(w, sub)
	}
}

// GET /api/quizzes/{id}/attempts/{studentID}  newest first
func QuizAttemptsHandler(svc *assessment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.Attempts(r.Context(), chi.URLParam(r, "studentID"), chi.URLParam(r, "id"))
		if err != nil {
			api.Internal(w, "list attempts", err, "Failed to fetch attempts")
			return
		}
		if list == nil {
			list = []assessment.QuizAttempt{}
		}
		api.WriteOK(w, map[string]any{"attempts": list})
	}
}
