// Package content serves the read-only learning material: topics and the
// formulas, tutorials and worked steps attached to them.
package content

import (
	"context"
	"encoding/json"
	"errors"
)

type ContentType string

const (
	TypeFormula  ContentType = "formula"
	TypeTutorial ContentType = "tutorial"
	TypeStep     ContentType = "step"
)

type Topic struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	OrderIndex  int    `json:"orderIndex"`
}

type Content struct {
	ID          string          `json:"id"`
	TopicID     string          `json:"topicId"`
	ContentType ContentType     `json:"contentType"`
	Title       string          `json:"title"`
	Body        string          `json:"body"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
	OrderIndex  int             `json:"orderIndex"`
}

var ErrNotFound = errors.New("content: not found")

type Store interface {
	ListTopics(ctx context.Context) ([]Topic, error)
	// GetTopic resolves idOrSlug as an id first, then as a slug.
	GetTopic(ctx context.Context, idOrSlug string) (Topic, error)
	ListContent(ctx context.Context, topicID string) ([]Content, error)

	PutTopic(ctx context.Context, t Topic) error
	PutContent(ctx context.Context, c Content) error
}
