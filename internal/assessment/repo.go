package assessment

import "context"

// InsertOutcome distinguishes a fresh write from losing a uniqueness race.
type InsertOutcome int

const (
	Inserted InsertOutcome = iota
	ConflictExisting
)

type Store interface {
	PutQuiz(ctx context.Context, q Quiz) error
	GetQuiz(ctx context.Context, id string) (Quiz, error)
	GetQuizByTopic(ctx context.Context, topicID string) (Quiz, error)
	GetTestQuiz(ctx context.Context, t TestType) (Quiz, error)

	// FindTestResult returns ok=false when the student has no result for t.
	FindTestResult(ctx context.Context, studentID string, t TestType) (TestResult, bool, error)
	// InsertTestResult reports ConflictExisting (and no error) when a row for
	// (student, test type) already exists.
	InsertTestResult(ctx context.Context, r TestResult) (TestResult, InsertOutcome, error)
	ListTestResults(ctx context.Context) ([]TestResult, error)

	InsertQuizAttempt(ctx context.Context, a QuizAttempt) (QuizAttempt, error)
	ListQuizAttempts(ctx context.Context, studentID, quizID string) ([]QuizAttempt, error)
}

// Students is the slice of the student store the Service needs.
type Students interface {
	Exists(ctx context.Context, id string) (bool, error)
}
