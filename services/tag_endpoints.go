package services

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prepmate/backend/models"
)

type TagEndpoints struct {
	tags     TagStore
	sessions SessionStore
}

func NewTagEndpoints(tags TagStore, sessions SessionStore) *TagEndpoints {
	return &TagEndpoints{
		tags:     tags,
		sessions: sessions,
	}
}

type CreateTagRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type ListTagsResponse struct {
	Tags  []models.Tag `json:"tags"`
	Count int          `json:"count"`
}

type AddSessionTagRequest struct {
	Name string `json:"name"`
}

// RegisterRoutes registers the tag catalog routes.
func (e *TagEndpoints) RegisterRoutes(r chi.Router) {
	r.Route("/tags", func(r chi.Router) {
		r.Post("/", e.CreateTagHandler)
		r.Get("/", e.ListTagsHandler)
		r.Delete("/{name}", e.DeleteTagHandler)
	})
}

// RegisterSessionRoutes registers the per-session tagging route on the
// sessions subrouter.
func (e *TagEndpoints) RegisterSessionRoutes(r chi.Router) {
	r.Post("/{id}/tags", e.AddSessionTagHandler)
}

func (e *TagEndpoints) CreateTagHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateTagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: invalid request body", ErrInvalidArgument))
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, fmt.Errorf("%w: tag name is required", ErrInvalidArgument))
		return
	}

	existing, err := e.tags.GetTag(r.Context(), req.Name)
	if err != nil {
		writeError(w, fmt.Errorf("failed to check tag: %w", err))
		return
	}
	if existing != nil {
		writeError(w, fmt.Errorf("%w: tag %q already exists", ErrInvalidArgument, req.Name))
		return
	}

	tag := models.Tag{
		Name:  req.Name,
		Color: req.Color,
	}
	if err := e.tags.CreateTag(r.Context(), &tag); err != nil {
		writeError(w, fmt.Errorf("failed to create tag: %w", err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(tag)

	slog.Info("Tag created", "name", tag.Name)
}

func (e *TagEndpoints) ListTagsHandler(w http.ResponseWriter, r *http.Request) {
	tags, err := e.tags.ListTags(r.Context())
	if err != nil {
		writeError(w, fmt.Errorf("failed to list tags: %w", err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ListTagsResponse{
		Tags:  tags,
		Count: len(tags),
	})
}

// DeleteTagHandler removes a tag definition, its join documents, and
// the name from every session's denormalized tag array, so statistics
// stop counting it immediately.
func (e *TagEndpoints) DeleteTagHandler(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	deleted, err := e.tags.DeleteTag(r.Context(), name)
	if err != nil {
		writeError(w, fmt.Errorf("failed to delete tag: %w", err))
		return
	}
	if deleted == 0 {
		writeError(w, fmt.Errorf("%w: tag %q", ErrNotFound, name))
		return
	}

	untagged, err := e.sessions.RemoveTagName(r.Context(), name)
	if err != nil {
		writeError(w, fmt.Errorf("failed to untag sessions: %w", err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
	slog.Info("Tag deleted", "name", name, "sessions_untagged", untagged)
}

// AddSessionTagHandler attaches a tag to a session, creating the tag
// definition on first use.
func (e *TagEndpoints) AddSessionTagHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	var req AddSessionTagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: invalid request body", ErrInvalidArgument))
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, fmt.Errorf("%w: tag name is required", ErrInvalidArgument))
		return
	}

	session, err := e.sessions.Get(r.Context(), sessionID)
	if err != nil {
		writeError(w, fmt.Errorf("failed to get session: %w", err))
		return
	}
	if session == nil {
		writeError(w, fmt.Errorf("%w: session %s", ErrNotFound, sessionID))
		return
	}

	existing, err := e.tags.GetTag(r.Context(), req.Name)
	if err != nil {
		writeError(w, fmt.Errorf("failed to check tag: %w", err))
		return
	}
	if existing == nil {
		tag := models.Tag{Name: req.Name}
		if err := e.tags.CreateTag(r.Context(), &tag); err != nil {
			writeError(w, fmt.Errorf("failed to create tag: %w", err))
			return
		}
	}

	if err := e.tags.AddSessionTag(r.Context(), sessionID, req.Name); err != nil {
		writeError(w, fmt.Errorf("failed to tag session: %w", err))
		return
	}
	if _, err := e.sessions.AddTagName(r.Context(), sessionID, req.Name); err != nil {
		writeError(w, fmt.Errorf("failed to update session tags: %w", err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Tag added", "tag": req.Name})

	slog.Info("Session tagged", "session_id", sessionID, "tag", req.Name)
}
