package assessment

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	dbutil "github.com/mathevolve/mathevolve-api/internal/db"
)

type SQLStore struct {
	db dbutil.Queryer
}

func NewSQLStore(db dbutil.Queryer) *SQLStore {
	return &SQLStore{db: db}
}

type quizRow struct {
	ID           string         `db:"id"`
	TopicID      sql.NullString `db:"topic_id"`
	Title        string         `db:"title"`
	QuizType     string         `db:"quiz_type"`
	Questions    string         `db:"questions"`
	PassingScore sql.NullInt64  `db:"passing_score"`
}

func (r quizRow) toQuiz() (Quiz, error) {
	q := Quiz{ID: r.ID, Title: r.Title, QuizType: QuizType(r.QuizType)}
	if r.TopicID.Valid {
		id := r.TopicID.String
		q.TopicID = &id
	}
	if r.PassingScore.Valid {
		p := int(r.PassingScore.Int64)
		q.PassingScore = &p
	}
	if err := json.Unmarshal([]byte(r.Questions), &q.Questions); err != nil {
		return Quiz{}, err
	}
	return q, nil
}

const quizCols = `id, topic_id, title, quiz_type, questions, passing_score`

func (s *SQLStore) PutQuiz(ctx context.Context, q Quiz) error {
	qj, err := json.Marshal(q.Questions)
	if err != nil {
		return err
	}
	var topic sql.NullString
	if q.TopicID != nil {
		topic = sql.NullString{String: *q.TopicID, Valid: true}
	}
	var passing sql.NullInt64
	if q.PassingScore != nil {
		passing = sql.NullInt64{Int64: int64(*q.PassingScore), Valid: true}
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO quizzes (`+quizCols+`)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (id) DO UPDATE SET topic_id=EXCLUDED.topic_id, title=EXCLUDED.title,
		  quiz_type=EXCLUDED.quiz_type, questions=EXCLUDED.questions, passing_score=EXCLUDED.passing_score`,
		q.ID, topic, q.Title, string(q.QuizType), string(qj), passing)
	return err
}

func (s *SQLStore) GetQuiz(ctx context.Context, id string) (Quiz, error) {
	return s.getQuiz(ctx, `SELECT `+quizCols+` FROM quizzes WHERE id=$1`, id)
}

func (s *SQLStore) GetQuizByTopic(ctx context.Context, topicID string) (Quiz, error) {
	return s.getQuiz(ctx, `SELECT `+quizCols+` FROM quizzes WHERE topic_id=$1 AND quiz_type=$2 ORDER BY id LIMIT 1`,
		topicID, string(QuizPractice))
}

func (s *SQLStore) GetTestQuiz(ctx context.Context, t TestType) (Quiz, error) {
	return s.getQuiz(ctx, `SELECT `+quizCols+` FROM quizzes WHERE quiz_type=$1 ORDER BY id LIMIT 1`,
		string(t.QuizType()))
}

func (s *SQLStore) getQuiz(ctx context.Context, query string, args ...any) (Quiz, error) {
	var row quizRow
	if err := s.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Quiz{}, ErrNotFound
		}
		return Quiz{}, err
	}
	return row.toQuiz()
}

type testResultRow struct {
	ID          string `db:"id"`
	StudentID   string `db:"student_id"`
	TestType    string `db:"test_type"`
	QuizID      string `db:"quiz_id"`
	Score       int    `db:"score"`
	MaxScore    int    `db:"max_score"`
	Answers     string `db:"answers"`
	CompletedAt int64  `db:"completed_at"`
}

func (r testResultRow) toResult() TestResult {
	out := TestResult{
		ID:          r.ID,
		StudentID:   r.StudentID,
		TestType:    TestType(r.TestType),
		QuizID:      r.QuizID,
		Score:       r.Score,
		MaxScore:    r.MaxScore,
		CompletedAt: time.UnixMilli(r.CompletedAt).UTC(),
	}
	out.Answers = decodeAnswers(r.Answers)
	return out
}

const testResultCols = `id, student_id, test_type, quiz_id, score, max_score, answers, completed_at`

func (s *SQLStore) FindTestResult(ctx context.Context, studentID string, t TestType) (TestResult, bool, error) {
	var row testResultRow
	err := s.db.GetContext(ctx, &row, `SELECT `+testResultCols+` FROM test_results WHERE student_id=$1 AND test_type=$2`,
		studentID, string(t))
	if errors.Is(err, sql.ErrNoRows) {
		return TestResult{}, false, nil
	}
	if err != nil {
		return TestResult{}, false, err
	}
	return row.toResult(), true, nil
}

func (s *SQLStore) InsertTestResult(ctx context.Context, r TestResult) (TestResult, InsertOutcome, error) {
	aj, err := json.Marshal(r.Answers)
	if err != nil {
		return TestResult{}, Inserted, err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO test_results (`+testResultCols+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		r.ID, r.StudentID, string(r.TestType), r.QuizID, r.Score, r.MaxScore, string(aj), r.CompletedAt.UnixMilli())
	if err != nil {
		if dbutil.IsUniqueViolation(err) {
			return TestResult{}, ConflictExisting, nil
		}
		return TestResult{}, Inserted, err
	}
	return r, Inserted, nil
}

func (s *SQLStore) ListTestResults(ctx context.Context) ([]TestResult, error) {
	var rows []testResultRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT `+testResultCols+` FROM test_results ORDER BY completed_at, id`); err != nil {
		return nil, err
	}
	out := make([]TestResult, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toResult())
	}
	return out, nil
}

type attemptRow struct {
	ID          string        `db:"id"`
	StudentID   string        `db:"student_id"`
	QuizID      string        `db:"quiz_id"`
	Answers     string        `db:"answers"`
	Score       int           `db:"score"`
	MaxScore    int           `db:"max_score"`
	TimeTaken   sql.NullInt64 `db:"time_taken"`
	CompletedAt int64         `db:"completed_at"`
}

const attemptCols = `id, student_id, quiz_id, answers, score, max_score, time_taken, completed_at`

func (s *SQLStore) InsertQuizAttempt(ctx context.Context, a QuizAttempt) (QuizAttempt, error) {
	aj, err := json.Marshal(a.Answers)
	if err != nil {
		return QuizAttempt{}, err
	}
	var tt sql.NullInt64
	if a.TimeTaken != nil {
		tt = sql.NullInt64{Int64: int64(*a.TimeTaken), Valid: true}
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO quiz_attempts (`+attemptCols+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		a.ID, a.StudentID, a.QuizID, string(aj), a.Score, a.MaxScore, tt, a.CompletedAt.UnixMilli())
	if err != nil {
		return QuizAttempt{}, err
	}
	return a, nil
}

// ListQuizAttempts returns newest first. An empty quizID lists every quiz.
func (s *SQLStore) ListQuizAttempts(ctx context.Context, studentID, quizID string) ([]QuizAttempt, error) {
	var rows []attemptRow
	var err error
	if quizID == "" {
		err = s.db.SelectContext(ctx, &rows, `SELECT `+attemptCols+` FROM quiz_attempts
			WHERE student_id=$1 ORDER BY completed_at DESC, id DESC`, studentID)
	} else {
		err = s.db.SelectContext(ctx, &rows, `SELECT `+attemptCols+` FROM quiz_attempts
			WHERE student_id=$1 AND quiz_id=$2 ORDER BY completed_at DESC, id DESC`, studentID, quizID)
	}
	if err != nil {
		return nil, err
	}
	out := make([]QuizAttempt, 0, len(rows))
	for _, r := range rows {
		a := QuizAttempt{
			ID:          r.ID,
			StudentID:   r.StudentID,
			QuizID:      r.QuizID,
			Answers:     decodeAnswers(r.Answers),
			Score:       r.Score,
			MaxScore:    r.MaxScore,
			CompletedAt: time.UnixMilli(r.CompletedAt).UTC(),
		}
		if r.TimeTaken.Valid {
			v := int(r.TimeTaken.Int64)
			a.TimeTaken = &v
		}
		out = append(out, a)
	}
	return out, nil
}

func decodeAnswers(s string) []Answer {
	var out []Answer
	if err := json.Unmarshal([]byte(s), &out); err != nil || out == nil {
		return []Answer{}
	}
	return out
}
