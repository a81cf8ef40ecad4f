package assessment

import (
	"time"

	"github.com/mathevolve/mathevolve-api/internal/grading"
)

type QuizType string

const (
	QuizPractice QuizType = "practice"
	QuizPreTest  QuizType = "pre_test"
	QuizPostTest QuizType = "post_test"
)

// TestType identifies one of the two gating, one-shot assessments.
type TestType string

const (
	TestPre  TestType = "pre"
	TestPost TestType = "post"
)

// ParseTestType accepts "pre" and "post".
func ParseTestType(s string) (TestType, bool) {
	switch TestType(s) {
	case TestPre, TestPost:
		return TestType(s), true
	}
	return "", false
}

// QuizType is the quiz type holding the question bank for t.
func (t TestType) QuizType() QuizType {
	if t == TestPost {
		return QuizPostTest
	}
	return QuizPreTest
}

func (t TestType) Label() string { return string(t) + "-test" }

type Question struct {
	ID            string   `json:"id"`
	QuestionText  string   `json:"questionText"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer,omitempty"`
	Explanation   string   `json:"explanation,omitempty"`
}

type Quiz struct {
	ID           string     `json:"id"`
	TopicID      *string    `json:"topicId,omitempty"`
	Title        string     `json:"title"`
	QuizType     QuizType   `json:"quizType"`
	Questions    []Question `json:"questions"`
	PassingScore *int       `json:"passingScore,omitempty"`
}

// Public returns a copy safe for students: answer keys and explanations removed.
func (q Quiz) Public() Quiz {
	out := q
	out.Questions = make([]Question, len(q.Questions))
	for i, qq := range q.Questions {
		out.Questions[i] = Question{ID: qq.ID, QuestionText: qq.QuestionText, Options: qq.Options}
	}
	return out
}

func (q Quiz) gradingBank() []grading.Q {
	out := make([]grading.Q, len(q.Questions))
	for i, qq := range q.Questions {
		out[i] = grading.Q{ID: qq.ID, CorrectAnswer: qq.CorrectAnswer, Explanation: qq.Explanation}
	}
	return out
}

type Answer struct {
	QuestionID string `json:"questionId"`
	Answer     string `json:"answer"`
}

func responses(answers []Answer) []grading.Response {
	out := make([]grading.Response, len(answers))
	for i, a := range answers {
		out[i] = grading.Response{QuestionID: a.QuestionID, Answer: a.Answer}
	}
	return out
}

// TestResult is the single stored outcome of a pre- or post-test.
type TestResult struct {
	ID          string    `json:"id"`
	StudentID   string    `json:"studentId"`
	TestType    TestType  `json:"testType"`
	QuizID      string    `json:"quizId"`
	Score       int       `json:"score"`
	MaxScore    int       `json:"maxScore"`
	Answers     []Answer  `json:"answers"`
	CompletedAt time.Time `json:"completedAt"`
}

// QuizAttempt is one practice-quiz submission; students may have many.
type QuizAttempt struct {
	ID          string    `json:"id"`
	StudentID   string    `json:"studentId"`
	QuizID      string    `json:"quizId"`
	Answers     []Answer  `json:"answers"`
	Score       int       `json:"score"`
	MaxScore    int       `json:"maxScore"`
	TimeTaken   *int      `json:"timeTaken,omitempty"`
	CompletedAt time.Time `json:"completedAt"`
}

type QuizResult struct {
	Score      int    `json:"score"`
	MaxScore   int    `json:"maxScore"`
	Percentage int    `json:"percentage"`
	Passed     *bool  `json:"passed,omitempty"`
	Feedback   string `json:"feedback"`

	// Correct marks each answered question right or wrong. Unanswered
	// questions are absent.
	Correct map[string]bool `json:"correct"`
}

// TestSubmission is returned by a successful SubmitTest.
type TestSubmission struct {
	Result TestResult     `json:"result"`
	Score  grading.Result `json:"score"`
}

// AttemptSubmission is returned by a successful SubmitQuizAttempt.
type AttemptSubmission struct {
	Attempt QuizAttempt `json:"attempt"`
	Result  QuizResult  `json:"result"`
}

// TestStatus reports whether a student has taken a test and, if so, how it went.
type TestStatus struct {
	HasTaken bool         `json:"hasTaken"`
	Result   *StatusScore `json:"result"`
}

type StatusScore struct {
	Score       int       `json:"score"`
	MaxScore    int       `json:"maxScore"`
	Percentage  int       `json:"percentage"`
	CompletedAt time.Time `json:"completedAt"`
}
