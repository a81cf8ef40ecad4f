package assessment_test

import (
	"context"
	"sync"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/mathevolve/mathevolve-api/internal/assessment"
	"github.com/mathevolve/mathevolve-api/internal/db"
	"github.com/mathevolve/mathevolve-api/internal/student"
)

func openStore(t *testing.T) (*sqlx.DB, *assessment.SQLStore) {
	t.Helper()
	dbh, err := db.Open(context.Background(), db.DriverSQLite, "file:"+t.Name()+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { dbh.Close() })
	return dbh, assessment.NewSQLStore(dbh)
}

func seedStudent(t *testing.T, dbh *sqlx.DB, id, code string) {
	t.Helper()
	if _, err := dbh.Exec(`INSERT INTO students (id, student_code, created_at) VALUES ($1,$2,$3)`, id, code, 1); err != nil {
		t.Fatalf("seed student: %v", err)
	}
}

var preQuiz = assessment.Quiz{
	ID:       "pre-1",
	Title:    "Pre-Test",
	QuizType: assessment.QuizPreTest,
	Questions: []assessment.Question{
		{ID: "q1", QuestionText: "2+2", Options: []string{"3", "4"}, CorrectAnswer: "4"},
		{ID: "q2", QuestionText: "3+3", Options: []string{"6", "7"}, CorrectAnswer: "6", Explanation: "Add three twice."},
	},
}

func TestSQLStore_QuizRoundTrip(t *testing.T) {
	_, store := openStore(t)
	ctx := context.Background()

	if err := store.PutQuiz(ctx, preQuiz); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := store.GetTestQuiz(ctx, assessment.TestPre)
	if err != nil {
		t.Fatalf("get test quiz: %v", err)
	}
	if got.ID != "pre-1" || len(got.Questions) != 2 || got.Questions[1].Explanation != "Add three twice." {
		t.Fatalf("quiz = %+v", got)
	}
	if got.TopicID != nil || got.PassingScore != nil {
		t.Fatalf("nullable columns should stay nil: %+v", got)
	}
	if _, err := store.GetTestQuiz(ctx, assessment.TestPost); err != assessment.ErrNotFound {
		t.Fatalf("post quiz: want ErrNotFound, got %v", err)
	}

	updated := preQuiz
	updated.Title = "Diagnostic"
	if err := store.PutQuiz(ctx, updated); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	got, _ = store.GetQuiz(ctx, "pre-1")
	if got.Title != "Diagnostic" {
		t.Fatalf("title = %q", got.Title)
	}
}

func TestSQLStore_PracticeQuizByTopic(t *testing.T) {
	dbh, store := openStore(t)
	ctx := context.Background()
	if _, err := dbh.Exec(`INSERT INTO topics (id, name, slug) VALUES ('t1','Fractions','fractions')`); err != nil {
		t.Fatal(err)
	}
	topic, pass := "t1", 60
	q := assessment.Quiz{ID: "p1", TopicID: &topic, Title: "Fractions quiz", QuizType: assessment.QuizPractice,
		Questions: preQuiz.Questions, PassingScore: &pass}
	if err := store.PutQuiz(ctx, q); err != nil {
		t.Fatal(err)
	}
	got, err := store.GetQuizByTopic(ctx, "t1")
	if err != nil {
		t.Fatalf("by topic: %v", err)
	}
	if got.PassingScore == nil || *got.PassingScore != 60 || *got.TopicID != "t1" {
		t.Fatalf("quiz = %+v", got)
	}
	if _, err := store.GetQuizByTopic(ctx, "nope"); err != assessment.ErrNotFound {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestSQLStore_TestResultUniqueness(t *testing.T) {
	dbh, store := openStore(t)
	ctx := context.Background()
	seedStudent(t, dbh, "s1", "STUDENT_001")
	_ = store.PutQuiz(ctx, preQuiz)

	r := assessment.TestResult{ID: "r1", StudentID: "s1", TestType: assessment.TestPre, QuizID: "pre-1",
		Score: 1, MaxScore: 2, Answers: []assessment.Answer{{QuestionID: "q1", Answer: "4"}}}
	if _, out, err := store.InsertTestResult(ctx, r); err != nil || out != assessment.Inserted {
		t.Fatalf("first insert: %v %v", out, err)
	}
	r.ID = "r2"
	if _, out, err := store.InsertTestResult(ctx, r); err != nil || out != assessment.ConflictExisting {
		t.Fatalf("second insert: want ConflictExisting, got %v %v", out, err)
	}

	got, ok, err := store.FindTestResult(ctx, "s1", assessment.TestPre)
	if err != nil || !ok {
		t.Fatalf("find: %v %v", ok, err)
	}
	if got.ID != "r1" || len(got.Answers) != 1 || got.Answers[0].Answer != "4" {
		t.Fatalf("result = %+v", got)
	}
	if _, ok, _ := store.FindTestResult(ctx, "s1", assessment.TestPost); ok {
		t.Fatal("post result should be absent")
	}
}

func TestSQLStore_AttemptsNewestFirst(t *testing.T) {
	dbh, store := openStore(t)
	ctx := context.Background()
	seedStudent(t, dbh, "s1", "STUDENT_001")
	practice := preQuiz
	practice.ID, practice.QuizType = "p1", assessment.QuizPractice
	_ = store.PutQuiz(ctx, practice)

	svc := assessment.NewService(store, student.NewSQLStore(dbh))
	for i := 0; i < 3; i++ {
		if _, err := svc.SubmitQuizAttempt(ctx, "s1", "p1", nil, nil); err != nil {
			t.Fatalf("attempt %d: %v", i, err)
		}
	}
	list, err := store.ListQuizAttempts(ctx, "s1", "p1")
	if err != nil || len(list) != 3 {
		t.Fatalf("list = %d, %v", len(list), err)
	}
	for i := 1; i < len(list); i++ {
		if list[i].CompletedAt.After(list[i-1].CompletedAt) {
			t.Fatal("attempts not newest first")
		}
	}
	if list[0].TimeTaken != nil || list[0].Answers == nil {
		t.Fatalf("attempt = %+v", list[0])
	}
	all, _ := store.ListQuizAttempts(ctx, "s1", "")
	if len(all) != 3 {
		t.Fatalf("all = %d", len(all))
	}
}

func TestSQLStore_ConcurrentPreTestSubmissions(t *testing.T) {
	dbh, store := openStore(t)
	ctx := context.Background()
	seedStudent(t, dbh, "s1", "STUDENT_001")
	_ = store.PutQuiz(ctx, preQuiz)
	svc := assessment.NewService(store, student.NewSQLStore(dbh))

	const n = 5
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.SubmitTest(ctx, "s1", assessment.TestPre, "", nil)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var ok int
	for err := range errs {
		if err == nil {
			ok++
			continue
		}
		if e, isDomain := assessment.AsError(err); !isDomain || e.Code != assessment.CodeAlreadyCompleted {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 {
		t.Fatalf("%d submissions succeeded, want 1", ok)
	}
	var rows int
	_ = dbh.Get(&rows, `SELECT COUNT(*) FROM test_results WHERE student_id='s1'`)
	if rows != 1 {
		t.Fatalf("rows = %d", rows)
	}
}
