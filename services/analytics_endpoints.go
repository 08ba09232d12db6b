package services

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prepmate/backend/analytics"
	"github.com/prepmate/backend/models"
	"github.com/prepmate/backend/repository"
)

// AnalyticsEndpoints exposes the aggregation engine: cross-session
// statistics, two-session comparison, and bulk export.
type AnalyticsEndpoints struct {
	sessions SessionStore
	tags     TagStore
	exporter *ExportService
}

func NewAnalyticsEndpoints(sessions SessionStore, tags TagStore, exporter *ExportService) *AnalyticsEndpoints {
	return &AnalyticsEndpoints{
		sessions: sessions,
		tags:     tags,
		exporter: exporter,
	}
}

type CompareRequest struct {
	SessionIDs []string `json:"session_ids"`
}

type ExportRequest struct {
	SessionIDs         []string `json:"session_ids"`
	Format             string   `json:"format"`
	IncludeQuestions   *bool    `json:"include_questions"`
	IncludeAnswers     *bool    `json:"include_answers"`
	IncludeEvaluations *bool    `json:"include_evaluations"`
}

func (e *AnalyticsEndpoints) RegisterRoutes(r chi.Router) {
	r.Get("/stats", e.StatsHandler)
	r.Post("/compare", e.CompareHandler)
	r.Post("/export", e.ExportHandler)
}

// StatsHandler aggregates every stored session into one statistics
// document.
func (e *AnalyticsEndpoints) StatsHandler(w http.ResponseWriter, r *http.Request) {
	sessions, err := e.sessions.List(r.Context(), repository.ListFilter{})
	if err != nil {
		writeError(w, fmt.Errorf("failed to list sessions: %w", err))
		return
	}

	stats := analytics.Statistics(sessions)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)

	slog.Info("Statistics computed", "sessions", stats.TotalSessions)
}

// CompareHandler builds a side-by-side comparison of exactly two
// sessions.
func (e *AnalyticsEndpoints) CompareHandler(w http.ResponseWriter, r *http.Request) {
	var req CompareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: invalid request body", ErrInvalidArgument))
		return
	}
	if len(req.SessionIDs) != 2 {
		writeError(w, fmt.Errorf("%w: exactly two session_ids are required", ErrInvalidArgument))
		return
	}

	var resolved [2]*models.Session
	for i, id := range req.SessionIDs {
		session, err := e.sessions.Get(r.Context(), id)
		if err != nil {
			writeError(w, fmt.Errorf("failed to get session: %w", err))
			return
		}
		if session == nil {
			writeError(w, fmt.Errorf("%w: session %s", ErrNotFound, id))
			return
		}
		resolved[i] = session
	}

	tagsA, err := e.tags.GetSessionTags(r.Context(), req.SessionIDs[0])
	if err != nil {
		writeError(w, fmt.Errorf("failed to get session tags: %w", err))
		return
	}
	tagsB, err := e.tags.GetSessionTags(r.Context(), req.SessionIDs[1])
	if err != nil {
		writeError(w, fmt.Errorf("failed to get session tags: %w", err))
		return
	}

	comparison := analytics.Compare(*resolved[0], *resolved[1], tagsA, tagsB)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(comparison)

	slog.Info("Sessions compared", "session_a", req.SessionIDs[0], "session_b", req.SessionIDs[1])
}

// ExportHandler serializes the requested sessions. Identifiers that
// resolve to nothing are skipped; the export fails only when every
// identifier is missing.
func (e *AnalyticsEndpoints) ExportHandler(w http.ResponseWriter, r *http.Request) {
	var req ExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: invalid request body", ErrInvalidArgument))
		return
	}
	if len(req.SessionIDs) == 0 {
		writeError(w, fmt.Errorf("%w: at least one session_id is required", ErrInvalidArgument))
		return
	}

	opts := ExportOptions{
		Format:             req.Format,
		IncludeQuestions:   boolOrDefault(req.IncludeQuestions, true),
		IncludeAnswers:     boolOrDefault(req.IncludeAnswers, true),
		IncludeEvaluations: boolOrDefault(req.IncludeEvaluations, true),
	}

	sessions := make([]models.Session, 0, len(req.SessionIDs))
	for _, id := range req.SessionIDs {
		session, err := e.sessions.Get(r.Context(), id)
		if err != nil {
			writeError(w, fmt.Errorf("failed to get session: %w", err))
			return
		}
		if session == nil {
			slog.Warn("Skipping missing session in export", "session_id", id)
			continue
		}
		sessions = append(sessions, *session)
	}
	if len(sessions) == 0 {
		writeError(w, fmt.Errorf("%w: none of the requested sessions exist", ErrNotFound))
		return
	}

	data, contentType, filename, err := e.exporter.Export(r.Context(), sessions, opts)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Write(data)

	slog.Info("Sessions exported", "format", opts.Format, "requested", len(req.SessionIDs), "exported", len(sessions), "bytes", len(data))
}

func boolOrDefault(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
