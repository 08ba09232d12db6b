package services

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prepmate/backend/models"
)

// ReportEndpoints serves the historical report rows and single-session
// PDF downloads. Reads come from the relational store; the PDF is
// rendered from the live session document so it reflects notes and
// tags added after completion.
type ReportEndpoints struct {
	reports  ReportStore
	sessions SessionStore
	exporter *ExportService
}

func NewReportEndpoints(reports ReportStore, sessions SessionStore, exporter *ExportService) *ReportEndpoints {
	return &ReportEndpoints{
		reports:  reports,
		sessions: sessions,
		exporter: exporter,
	}
}

type ReportResponse struct {
	Report    *models.ReportSession   `json:"report"`
	Questions []models.ReportQuestion `json:"questions"`
}

func (e *ReportEndpoints) RegisterRoutes(r chi.Router) {
	r.Route("/report", func(r chi.Router) {
		r.Get("/{id}", e.GetReportHandler)
		r.Get("/{id}/download", e.DownloadReportHandler)
	})
}

func (e *ReportEndpoints) GetReportHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	report, err := e.reports.GetReportSession(r.Context(), sessionID)
	if err != nil {
		writeError(w, fmt.Errorf("failed to get report: %w", err))
		return
	}
	if report == nil {
		writeError(w, fmt.Errorf("%w: report for session %s", ErrNotFound, sessionID))
		return
	}

	questions, err := e.reports.GetReportQuestions(r.Context(), sessionID)
	if err != nil {
		writeError(w, fmt.Errorf("failed to get report questions: %w", err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ReportResponse{
		Report:    report,
		Questions: questions,
	})

	slog.Info("Report retrieved", "session_id", sessionID, "questions", len(questions))
}

// DownloadReportHandler renders one session as a PDF document.
func (e *ReportEndpoints) DownloadReportHandler(w http.ResponseWriter, r *http.Request) {
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

	opts := ExportOptions{
		Format:             FormatPDF,
		IncludeQuestions:   true,
		IncludeAnswers:     true,
		IncludeEvaluations: true,
	}
	data, contentType, filename, err := e.exporter.Export(r.Context(), []models.Session{*session}, opts)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Write(data)

	slog.Info("Report downloaded", "session_id", sessionID, "bytes", len(data))
}
