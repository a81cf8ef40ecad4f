package content_test

import (
	"context"
	"testing"

	"github.com/mathevolve/mathevolve-api/internal/content"
	"github.com/mathevolve/mathevolve-api/internal/db"
)

func seeded(t *testing.T) *content.SQLStore {
	t.Helper()
	ctx := context.Background()
	dbh, err := db.Open(ctx, db.DriverSQLite, "file:"+t.Name()+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { dbh.Close() })
	s := content.NewSQLStore(dbh)

	topics := []content.Topic{
		{ID: "t2", Name: "Decimals", Slug: "decimals", OrderIndex: 2},
		{ID: "t1", Name: "Fractions", Slug: "fractions", OrderIndex: 1},
		{ID: "decimals", Name: "Tricky", Slug: "tricky", OrderIndex: 3},
	}
	for _, tp := range topics {
		if err := s.PutTopic(ctx, tp); err != nil {
			t.Fatalf("put topic: %v", err)
		}
	}
	items := []content.Content{
		{ID: "c2", TopicID: "t1", ContentType: content.TypeStep, Title: "Step 1", Body: "Find a common denominator", OrderIndex: 2},
		{ID: "c1", TopicID: "t1", ContentType: content.TypeFormula, Title: "Sum", Body: "a/b + c/d = (ad+bc)/bd", OrderIndex: 1,
			Metadata: []byte(`{"latex":true}`)},
	}
	for _, c := range items {
		if err := s.PutContent(ctx, c); err != nil {
			t.Fatalf("put content: %v", err)
		}
	}
	return s
}

func TestListTopicsOrdered(t *testing.T) {
	s := seeded(t)
	got, err := s.ListTopics(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"t1", "t2", "decimals"}
	if len(got) != len(want) {
		t.Fatalf("got %d topics", len(got))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("topic[%d] = %s, want %s", i, got[i].ID, id)
		}
	}
}

func TestGetTopic_IDBeforeSlug(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()

	cases := []struct {
		key, wantID string
	}{
		{"t1", "t1"},
		{"fractions", "t1"},
		{"decimals", "decimals"}, // id match wins over t2's slug
		{"tricky", "decimals"},
	}
	for _, c := range cases {
		got, err := s.GetTopic(ctx, c.key)
		if err != nil {
			t.Fatalf("GetTopic(%q): %v", c.key, err)
		}
		if got.ID != c.wantID {
			t.Errorf("GetTopic(%q) = %s, want %s", c.key, got.ID, c.wantID)
		}
	}
	if _, err := s.GetTopic(ctx, "geometry"); err != content.ErrNotFound {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestListContentOrdered(t *testing.T) {
	s := seeded(t)
	got, err := s.ListContent(context.Background(), "t1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].ID != "c1" || got[1].ID != "c2" {
		t.Fatalf("content = %+v", got)
	}
	if string(got[0].Metadata) != `{"latex":true}` {
		t.Fatalf("metadata = %s", got[0].Metadata)
	}
	empty, err := s.ListContent(context.Background(), "t2")
	if err != nil || len(empty) != 0 || empty == nil {
		t.Fatalf("empty topic: %v, %v", empty, err)
	}
}
