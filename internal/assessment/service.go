package assessment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mathevolve/mathevolve-api/internal/grading"
	"github.com/mathevolve/mathevolve-api/internal/progress"
)

// Service scores submissions and enforces the one-result-per-test and
// pre-before-post rules.
type Service struct {
	store    Store
	students Students

	now   func() time.Time
	newID func() string
}

func NewService(store Store, students Students) *Service {
	return &Service{
		store:    store,
		students: students,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// TestQuiz loads the question bank for a pre- or post-test.
func (s *Service) TestQuiz(ctx context.Context, t TestType) (Quiz, error) {
	q, err := s.store.GetTestQuiz(ctx, t)
	if errors.Is(err, ErrNotFound) {
		return Quiz{}, notFound(capitalize(t.Label()) + " not found")
	}
	return q, err
}

// Quiz loads any quiz by id, answer key included.
func (s *Service) Quiz(ctx context.Context, id string) (Quiz, error) {
	q, err := s.store.GetQuiz(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return Quiz{}, notFound("Quiz not found")
	}
	return q, err
}

// TopicQuiz loads the practice quiz attached to a topic.
func (s *Service) TopicQuiz(ctx context.Context, topicID string) (Quiz, error) {
	q, err := s.store.GetQuizByTopic(ctx, topicID)
	if errors.Is(err, ErrNotFound) {
		return Quiz{}, notFound("Quiz not found for this topic")
	}
	return q, err
}

// SubmitTest records a student's only pre- or post-test result.
// quizID may be empty, in which case the system-wide quiz for t is used.
// Domain failures are returned as *Error.
func (s *Service) SubmitTest(ctx context.Context, studentID string, t TestType, quizID string, answers []Answer) (TestSubmission, error) {
	if err := s.requireStudent(ctx, studentID); err != nil {
		return TestSubmission{}, err
	}

	_, taken, err := s.store.FindTestResult(ctx, studentID, t)
	if err != nil {
		return TestSubmission{}, fmt.Errorf("check %s: %w", t.Label(), err)
	}
	if taken {
		return TestSubmission{}, alreadyCompleted(t)
	}

	if t == TestPost {
		_, hasPre, err := s.store.FindTestResult(ctx, studentID, TestPre)
		if err != nil {
			return TestSubmission{}, fmt.Errorf("check pre-test: %w", err)
		}
		if !hasPre {
			return TestSubmission{}, preTestRequired()
		}
	}

	quiz, err := s.testQuiz(ctx, t, quizID)
	if err != nil {
		return TestSubmission{}, err
	}
	score := grading.Score(quiz.gradingBank(), responses(answers))

	row := TestResult{
		ID:          s.newID(),
		StudentID:   studentID,
		TestType:    t,
		QuizID:      quiz.ID,
		Score:       score.Score,
		MaxScore:    score.MaxScore,
		Answers:     nonNilAnswers(answers),
		CompletedAt: s.now().UTC().Truncate(time.Millisecond),
	}
	stored, outcome, err := s.store.InsertTestResult(ctx, row)
	if err != nil {
		return TestSubmission{}, fmt.Errorf("insert %s result: %w", t.Label(), err)
	}
	if outcome == ConflictExisting {
		// a concurrent submission won between the check and the insert
		return TestSubmission{}, alreadyCompleted(t)
	}
	return TestSubmission{Result: stored, Score: score}, nil
}

// SubmitQuizAttempt records a practice attempt. There is no limit on attempts.
func (s *Service) SubmitQuizAttempt(ctx context.Context, studentID, quizID string, answers []Answer, timeTaken *int) (AttemptSubmission, error) {
	if err := s.requireStudent(ctx, studentID); err != nil {
		return AttemptSubmission{}, err
	}
	quiz, err := s.Quiz(ctx, quizID)
	if err != nil {
		return AttemptSubmission{}, err
	}
	if quiz.QuizType != QuizPractice {
		return AttemptSubmission{}, notPractice()
	}

	bank, resp := quiz.gradingBank(), responses(answers)
	score := grading.Score(bank, resp)

	attempt, err := s.store.InsertQuizAttempt(ctx, QuizAttempt{
		ID:          s.newID(),
		StudentID:   studentID,
		QuizID:      quiz.ID,
		Answers:     nonNilAnswers(answers),
		Score:       score.Score,
		MaxScore:    score.MaxScore,
		TimeTaken:   timeTaken,
		CompletedAt: s.now().UTC().Truncate(time.Millisecond),
	})
	if err != nil {
		return AttemptSubmission{}, fmt.Errorf("insert quiz attempt: %w", err)
	}

	res := QuizResult{
		Score:      score.Score,
		MaxScore:   score.MaxScore,
		Percentage: score.Percentage,
		Feedback:   grading.Feedback(bank, resp),
		Correct:    grading.Correct(bank, resp),
	}
	if quiz.PassingScore != nil {
		passed := score.Percentage >= *quiz.PassingScore
		res.Passed = &passed
	}
	return AttemptSubmission{Attempt: attempt, Result: res}, nil
}

// Attempts lists a student's practice attempts for a quiz, newest first.
func (s *Service) Attempts(ctx context.Context, studentID, quizID string) ([]QuizAttempt, error) {
	return s.store.ListQuizAttempts(ctx, studentID, quizID)
}

// Status reports whether studentID has taken t.
func (s *Service) Status(ctx context.Context, studentID string, t TestType) (TestStatus, error) {
	r, ok, err := s.store.FindTestResult(ctx, studentID, t)
	if err != nil || !ok {
		return TestStatus{}, err
	}
	return TestStatus{
		HasTaken: true,
		Result: &StatusScore{
			Score:       r.Score,
			MaxScore:    r.MaxScore,
			Percentage:  grading.Percentage(r.Score, r.MaxScore),
			CompletedAt: r.CompletedAt,
		},
	}, nil
}

// Progress is always recomputed from the two stored results.
func (s *Service) Progress(ctx context.Context, studentID string) (progress.View, error) {
	pre, err := s.rawScore(ctx, studentID, TestPre)
	if err != nil {
		return progress.View{}, err
	}
	post, err := s.rawScore(ctx, studentID, TestPost)
	if err != nil {
		return progress.View{}, err
	}
	return progress.NewView(studentID, pre, post), nil
}

func (s *Service) rawScore(ctx context.Context, studentID string, t TestType) (*int, error) {
	r, ok, err := s.store.FindTestResult(ctx, studentID, t)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", t.Label(), err)
	}
	if !ok {
		return nil, nil
	}
	score := r.Score
	return &score, nil
}

func (s *Service) requireStudent(ctx context.Context, studentID string) error {
	ok, err := s.students.Exists(ctx, studentID)
	if err != nil {
		return fmt.Errorf("lookup student: %w", err)
	}
	if !ok {
		return invalidStudent()
	}
	return nil
}

func (s *Service) testQuiz(ctx context.Context, t TestType, quizID string) (Quiz, error) {
	if quizID == "" {
		return s.TestQuiz(ctx, t)
	}
	q, err := s.store.GetQuiz(ctx, quizID)
	if errors.Is(err, ErrNotFound) || (err == nil && q.QuizType != t.QuizType()) {
		return Quiz{}, notFound(capitalize(t.Label()) + " not found")
	}
	return q, err
}

func nonNilAnswers(a []Answer) []Answer {
	if a == nil {
		return []Answer{}
	}
	return a
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b)
}
