package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mathevolve/mathevolve-api/internal/api"
	"github.com/mathevolve/mathevolve-api/internal/content"
)

// GET /api/topics
func ListTopicsHandler(store content.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		topics, err := store.ListTopics(r.Context())
		if err != nil {
			api.Internal(w, "list topics", err, "Failed to fetch topics")
			return
		}
		api.WriteOK(w, map[string]any{"topics": topics})
	}
}

// GET /api/topics/{id}  (id or slug)
func GetTopicHandler(store content.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, ok := topicParam(w, r, store, "Failed to fetch topic")
		if !ok {
			return
		}
		api.WriteOK(w, map[string]any{"topic": t})
	}
}

// GET /api/topics/{id}/content
func TopicContentHandler(store content.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, ok := topicParam(w, r, store, "Failed to fetch content")
		if !ok {
			return
		}
		items, err := store.ListContent(r.Context(), t.ID)
		if err != nil {
			api.Internal(w, "list content", err, "Failed to fetch content")
			return
		}
		api.WriteOK(w, map[string]any{"topic": t, "content": items})
	}
}

func topicParam(w http.ResponseWriter, r *http.Request, store content.Store, fallback string) (content.Topic, bool) {
	t, err := store.GetTopic(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, content.ErrNotFound) {
		api.WriteErr(w, api.CodeNotFound, "Topic not found")
		return content.Topic{}, false
	}
	if err != nil {
		api.Internal(w, "get topic", err, fallback)
		return content.Topic{}, false
	}
	return t, true
}
