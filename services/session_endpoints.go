package services

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prepmate/backend/models"
	"github.com/prepmate/backend/repository"
)

type SessionEndpoints struct {
	sessions SessionStore
}

func NewSessionEndpoints(sessions SessionStore) *SessionEndpoints {
	return &SessionEndpoints{sessions: sessions}
}

type GetSessionsResponse struct {
	Sessions []models.Session `json:"sessions"`
	Count    int              `json:"count"`
}

type UpdateNotesRequest struct {
	Notes string `json:"notes"`
}

type RateFeedbackRequest struct {
	QuestionIndex int `json:"question_index"`
	Rating        int `json:"rating"`
}

type CommentFeedbackRequest struct {
	QuestionIndex int    `json:"question_index"`
	Comment       string `json:"comment"`
}

func (e *SessionEndpoints) RegisterRoutes(r chi.Router) {
	r.Get("/", e.ListSessionsHandler)
	r.Get("/{id}", e.GetSessionHandler)
	r.Delete("/{id}", e.DeleteSessionHandler)
	r.Patch("/{id}", e.UpdateNotesHandler)
	r.Post("/{id}/feedback/rating", e.RateFeedbackHandler)
	r.Post("/{id}/feedback/comment", e.CommentFeedbackHandler)
}

// ListSessionsHandler returns sessions newest first, optionally
// filtered by interview type substring, difficulty, and date range.
func (e *SessionEndpoints) ListSessionsHandler(w http.ResponseWriter, r *http.Request) {
	filter := repository.ListFilter{
		TypeSubstring: r.URL.Query().Get("query"),
		Difficulty:    r.URL.Query().Get("difficulty"),
	}

	if filter.Difficulty != "" && !models.ValidDifficulty(filter.Difficulty) {
		writeError(w, fmt.Errorf("%w: difficulty must be one of easy, medium, hard", ErrInvalidArgument))
		return
	}

	startStr := r.URL.Query().Get("start_date")
	endStr := r.URL.Query().Get("end_date")
	if startStr != "" && endStr != "" {
		start, err := parseDate(startStr)
		if err != nil {
			writeError(w, fmt.Errorf("%w: invalid start_date", ErrInvalidArgument))
			return
		}
		end, err := parseDate(endStr)
		if err != nil {
			writeError(w, fmt.Errorf("%w: invalid end_date", ErrInvalidArgument))
			return
		}
		// Make the end date inclusive of its whole day
		end = end.Add(24*time.Hour - time.Nanosecond)
		filter.StartDate = &start
		filter.EndDate = &end
	}

	sessions, err := e.sessions.List(r.Context(), filter)
	if err != nil {
		writeError(w, fmt.Errorf("failed to list sessions: %w", err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(GetSessionsResponse{
		Sessions: sessions,
		Count:    len(sessions),
	})

	slog.Info("Sessions listed", "count", len(sessions))
}

func (e *SessionEndpoints) GetSessionHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	session, err := e.sessions.Get(r.Context(), sessionID)
	if err != nil {
		writeError(w, fmt.Errorf("failed to get session: %w", err))
		return
	}
	if session == nil {
		writeError(w, fmt.Errorf("%w: session %s", ErrNotFound, sessionID))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"session": session})

	slog.Info("Session retrieved", "session_id", sessionID)
}

func (e *SessionEndpoints) DeleteSessionHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	deleted, err := e.sessions.Delete(r.Context(), sessionID)
	if err != nil {
		writeError(w, fmt.Errorf("failed to delete session: %w", err))
		return
	}
	if deleted == 0 {
		writeError(w, fmt.Errorf("%w: session %s", ErrNotFound, sessionID))
		return
	}

	w.WriteHeader(http.StatusNoContent)
	slog.Info("Session deleted", "session_id", sessionID)
}

func (e *SessionEndpoints) UpdateNotesHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	var req UpdateNotesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: invalid request body", ErrInvalidArgument))
		return
	}

	matched, err := e.sessions.SetNotes(r.Context(), sessionID, req.Notes)
	if err != nil {
		writeError(w, fmt.Errorf("failed to update notes: %w", err))
		return
	}
	if !matched {
		writeError(w, fmt.Errorf("%w: session %s", ErrNotFound, sessionID))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Notes updated"})

	slog.Info("Session notes updated", "session_id", sessionID, "notes_length", len(req.Notes))
}

// RateFeedbackHandler records a 1-5 rating of the feedback on one
// question. The index must reference an existing question.
func (e *SessionEndpoints) RateFeedbackHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	var req RateFeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: invalid request body", ErrInvalidArgument))
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		writeError(w, fmt.Errorf("%w: rating must be between 1 and 5", ErrInvalidArgument))
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
	if req.QuestionIndex < 0 || req.QuestionIndex >= len(session.Questions) {
		writeError(w, fmt.Errorf("%w: question_index out of range", ErrInvalidArgument))
		return
	}

	if _, err := e.sessions.SetRating(r.Context(), sessionID, req.QuestionIndex, req.Rating); err != nil {
		writeError(w, fmt.Errorf("failed to store rating: %w", err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Rating recorded"})

	slog.Info("Feedback rated", "session_id", sessionID, "question_index", req.QuestionIndex, "rating", req.Rating)
}

func (e *SessionEndpoints) CommentFeedbackHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	var req CommentFeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: invalid request body", ErrInvalidArgument))
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
	if req.QuestionIndex < 0 || req.QuestionIndex >= len(session.Questions) {
		writeError(w, fmt.Errorf("%w: question_index out of range", ErrInvalidArgument))
		return
	}

	if _, err := e.sessions.SetComment(r.Context(), sessionID, req.QuestionIndex, req.Comment); err != nil {
		writeError(w, fmt.Errorf("failed to store comment: %w", err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Comment recorded"})

	slog.Info("Feedback commented", "session_id", sessionID, "question_index", req.QuestionIndex)
}

// parseDate accepts either a bare date or a full RFC3339 timestamp.
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}
