package content

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	dbutil "github.com/mathevolve/mathevolve-api/internal/db"
)

type SQLStore struct {
	db dbutil.Queryer
}

func NewSQLStore(db dbutil.Queryer) *SQLStore { return &SQLStore{db: db} }

const topicCols = `id, name, slug, description, order_index`

type topicRow struct {
	ID          string `db:"id"`
	Name        string `db:"name"`
	Slug        string `db:"slug"`
	Description string `db:"description"`
	OrderIndex  int    `db:"order_index"`
}

func (r topicRow) toTopic() Topic {
	return Topic{ID: r.ID, Name: r.Name, Slug: r.Slug, Description: r.Description, OrderIndex: r.OrderIndex}
}

func (s *SQLStore) ListTopics(ctx context.Context) ([]Topic, error) {
	var rows []topicRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT `+topicCols+` FROM topics ORDER BY order_index, id`); err != nil {
		return nil, err
	}
	out := make([]Topic, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toTopic())
	}
	return out, nil
}

func (s *SQLStore) GetTopic(ctx context.Context, idOrSlug string) (Topic, error) {
	var r topicRow
	err := s.db.GetContext(ctx, &r, `SELECT `+topicCols+` FROM topics WHERE id=$1`, idOrSlug)
	if errors.Is(err, sql.ErrNoRows) {
		err = s.db.GetContext(ctx, &r, `SELECT `+topicCols+` FROM topics WHERE slug=$1`, idOrSlug)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return Topic{}, ErrNotFound
	}
	if err != nil {
		return Topic{}, err
	}
	return r.toTopic(), nil
}

type contentRow struct {
	ID          string `db:"id"`
	TopicID     string `db:"topic_id"`
	ContentType string `db:"content_type"`
	Title       string `db:"title"`
	Body        string `db:"body"`
	Metadata    string `db:"metadata"`
	OrderIndex  int    `db:"order_index"`
}

const contentCols = `id, topic_id, content_type, title, body, metadata, order_index`

// ListContent returns a topic's items in display order.
func (s *SQLStore) ListContent(ctx context.Context, topicID string) ([]Content, error) {
	var rows []contentRow
	if err := s.db.SelectContext(ctx, &rows,
		`SELECT `+contentCols+` FROM content WHERE topic_id=$1 ORDER BY order_index, id`, topicID); err != nil {
		return nil, err
	}
	out := make([]Content, 0, len(rows))
	for _, r := range rows {
		c := Content{
			ID:          r.ID,
			TopicID:     r.TopicID,
			ContentType: ContentType(r.ContentType),
			Title:       r.Title,
			Body:        r.Body,
			OrderIndex:  r.OrderIndex,
		}
		if r.Metadata != "" && json.Valid([]byte(r.Metadata)) {
			c.Metadata = json.RawMessage(r.Metadata)
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *SQLStore) PutTopic(ctx context.Context, t Topic) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO topics (`+topicCols+`) VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (id) DO UPDATE SET name=EXCLUDED.name, slug=EXCLUDED.slug,
		  description=EXCLUDED.description, order_index=EXCLUDED.order_index`,
		t.ID, t.Name, t.Slug, t.Description, t.OrderIndex)
	return err
}

func (s *SQLStore) PutContent(ctx context.Context, c Content) error {
	meta := string(c.Metadata)
	if meta == "" {
		meta = "{}"
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO content (`+contentCols+`) VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (id) DO UPDATE SET topic_id=EXCLUDED.topic_id, content_type=EXCLUDED.content_type,
		  title=EXCLUDED.title, body=EXCLUDED.body, metadata=EXCLUDED.metadata, order_index=EXCLUDED.order_index`,
		c.ID, c.TopicID, string(c.ContentType), c.Title, c.Body, meta, c.OrderIndex)
	return err
}
