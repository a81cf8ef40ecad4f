package grading

import "strings"

// DefaultFeedback is returned when every question was answered correctly.
const DefaultFeedback = "Great job!"

// Q is a minimal view of a question needed for grading.
type Q struct {
	ID            string
	CorrectAnswer string
	Explanation   string
}

// Response is one submitted answer.
type Response struct {
	QuestionID string
	Answer     string
}

// Result is the outcome of scoring a whole submission.
type Result struct {
	Score      int `json:"score"`
	MaxScore   int `json:"maxScore"`
	Percentage int `json:"percentage"`
}

// Score grades responses against questions. Each question counts at most once;
// when a question id is answered more than once only the first answer counts.
// Responses for unknown question ids are ignored and unanswered questions score 0.
// MaxScore is always len(questions).
func Score(questions []Q, responses []Response) Result {
	answers := firstAnswers(responses)
	res := Result{MaxScore: len(questions)}
	for _, q := range questions {
		if a, ok := answers[q.ID]; ok && IsCorrect(a, q.CorrectAnswer) {
			res.Score++
		}
	}
	res.Percentage = Percentage(res.Score, res.MaxScore)
	return res
}

// Feedback joins the explanations of every question that was not answered
// correctly, falling back to DefaultFeedback.
func Feedback(questions []Q, responses []Response) string {
	answers := firstAnswers(responses)
	parts := make([]string, 0, len(questions))
	for _, q := range questions {
		a, ok := answers[q.ID]
		if ok && IsCorrect(a, q.CorrectAnswer) {
			continue
		}
		if q.Explanation != "" {
			parts = append(parts, q.Explanation)
		}
	}
	if len(parts) == 0 {
		return DefaultFeedback
	}
	return strings.Join(parts, " ")
}

// Correct returns, per question id, whether the first answer for it was correct.
// Unanswered questions are absent from the map.
func Correct(questions []Q, responses []Response) map[string]bool {
	answers := firstAnswers(responses)
	out := make(map[string]bool, len(answers))
	for _, q := range questions {
		if a, ok := answers[q.ID]; ok {
			out[q.ID] = IsCorrect(a, q.CorrectAnswer)
		}
	}
	return out
}

func firstAnswers(responses []Response) map[string]string {
	m := make(map[string]string, len(responses))
	for _, r := range responses {
		if _, seen := m[r.QuestionID]; !seen {
			m[r.QuestionID] = r.Answer
		}
	}
	return m
}
