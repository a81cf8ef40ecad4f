package main

import (
	"context"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"

	auth "github.com/mathevolve/mathevolve-api/internal/auth/middleware"
	"github.com/mathevolve/mathevolve-api/internal/db"
)

func openDB(t *testing.T) *sqlx.DB {
	t.Helper()
	dbh, err := db.Open(context.Background(), db.DriverSQLite, "file:"+t.Name()+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { dbh.Close() })
	return dbh
}

func count(t *testing.T, dbh *sqlx.DB, table string) int {
	t.Helper()
	var n int
	if err := dbh.Get(&n, `SELECT COUNT(*) FROM `+table); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func TestLoadSeed_DemoSetIsIdempotent(t *testing.T) {
	dbh := openDB(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		sf, err := loadSeed(ctx, dbh, demoSeed)
		if err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
		if len(sf.Topics) == 0 || len(sf.Quizzes) == 0 {
			t.Fatalf("run %d: empty demo set", i)
		}
		if got := count(t, dbh, "topics"); got != len(sf.Topics) {
			t.Fatalf("run %d: topics = %d, want %d", i, got, len(sf.Topics))
		}
		if got := count(t, dbh, "content"); got != len(sf.Content) {
			t.Fatalf("run %d: content = %d, want %d", i, got, len(sf.Content))
		}
		if got := count(t, dbh, "quizzes"); got != len(sf.Quizzes) {
			t.Fatalf("run %d: quizzes = %d, want %d", i, got, len(sf.Quizzes))
		}
	}

	var types []string
	if err := dbh.Select(&types, `SELECT quiz_type FROM quizzes WHERE quiz_type <> 'practice' ORDER BY quiz_type`); err != nil {
		t.Fatal(err)
	}
	if strings.Join(types, ",") != "post_test,pre_test" {
		t.Fatalf("test quizzes = %v", types)
	}
}

func TestLoadSeed_FailureWritesNothing(t *testing.T) {
	dbh := openDB(t)
	bad := []byte(`{
		"topics": [{"id": "t1", "name": "Fractions", "slug": "fractions", "orderIndex": 1}],
		"content": [{"id": "c1", "topicId": "missing", "contentType": "formula", "title": "x", "body": "y"}]
	}`)
	if _, err := loadSeed(context.Background(), dbh, bad); err == nil {
		t.Fatal("content for a missing topic should fail")
	}
	if got := count(t, dbh, "topics"); got != 0 {
		t.Fatalf("topics after failed seed = %d, want 0", got)
	}

	if _, err := loadSeed(context.Background(), dbh, []byte(`{`)); err == nil {
		t.Fatal("malformed seed should fail")
	}
}

func TestCreateUser(t *testing.T) {
	users := auth.NewUserStore(openDB(t))
	ctx := context.Background()

	if err := createUser(ctx, users, []string{"-username", "boss", "-password", "secret123", "-role", "admin"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	// an existing username is reported, not an error
	if err := createUser(ctx, users, []string{"-username", "boss", "-password", "other-pass"}); err != nil {
		t.Fatalf("duplicate: %v", err)
	}
	if err := createUser(ctx, users, []string{"-username", "x", "-password", "short"}); err == nil {
		t.Fatal("short password should be rejected")
	}
	if err := createUser(ctx, users, []string{"-username", "eve", "-password", "secret123", "-role", "owner"}); err == nil {
		t.Fatal("unknown role should be rejected")
	}

	list, err := users.List(ctx)
	if err != nil || len(list) != 1 || list[0].Role != auth.RoleAdmin {
		t.Fatalf("accounts = %+v, %v", list, err)
	}
}
