package services

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prepmate/backend/analytics"
	"github.com/prepmate/backend/models"
)

const maxAudioSize = 25 << 20 // 25MB

// AnswerEndpoints covers the answer side of an interview: transcribing
// spoken answers and running the bulk evaluation that completes a
// session.
type AnswerEndpoints struct {
	sessions    SessionStore
	reports     ReportStore
	transcriber Transcriber
	evaluator   AnswerEvaluator
}

func NewAnswerEndpoints(sessions SessionStore, reports ReportStore, transcriber Transcriber, evaluator AnswerEvaluator) *AnswerEndpoints {
	return &AnswerEndpoints{
		sessions:    sessions,
		reports:     reports,
		transcriber: transcriber,
		evaluator:   evaluator,
	}
}

type TranscribeResponse struct {
	Transcript string `json:"transcript"`
	Appended   bool   `json:"appended"`
}

type EvaluateRequest struct {
	SessionID string         `json:"session_id"`
	Answers   []AnswerToEval `json:"answers"`
}

type AnswerToEval struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type EvaluateResponse struct {
	SessionID    string              `json:"session_id"`
	Evaluations  []models.Evaluation `json:"evaluations"`
	OverallScore float64             `json:"overall_score"`
}

func (e *AnswerEndpoints) RegisterRoutes(r chi.Router) {
	r.Post("/transcribe", e.TranscribeHandler)
	r.Post("/evaluate", e.EvaluateHandler)
}

// TranscribeHandler converts an uploaded WebM recording to WAV,
// transcribes it, and appends the transcript as an answer when the
// client marks the recording final.
func (e *AnswerEndpoints) TranscribeHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxAudioSize); err != nil {
		writeError(w, fmt.Errorf("%w: invalid multipart form: %v", ErrInvalidArgument, err))
		return
	}

	sessionID := r.FormValue("session_id")
	if sessionID == "" {
		writeError(w, fmt.Errorf("%w: session_id is required", ErrInvalidArgument))
		return
	}

	if e.transcriber == nil {
		writeError(w, fmt.Errorf("%w: no transcription service configured", ErrAdapterFailure))
		return
	}

	session, err := e.sessions.Get(r.Context(), sessionID)
	if err != nil {
		writeError(w, fmt.Errorf("failed to load session: %w", err))
		return
	}
	if session == nil {
		writeError(w, fmt.Errorf("%w: session %s", ErrNotFound, sessionID))
		return
	}

	file, _, err := r.FormFile("audio")
	if err != nil {
		writeError(w, fmt.Errorf("%w: audio file is required", ErrInvalidArgument))
		return
	}
	defer file.Close()

	webmData, err := io.ReadAll(file)
	if err != nil {
		slog.Error("Failed to read audio upload", "error", err, "session_id", sessionID)
		writeError(w, fmt.Errorf("failed to read audio: %w", err))
		return
	}

	wavData, err := ConvertWebMToWAV(webmData)
	if err != nil {
		slog.Error("Audio conversion failed", "error", err, "session_id", sessionID)
		writeError(w, fmt.Errorf("%w: %v", ErrAdapterFailure, err))
		return
	}

	transcript, err := e.transcriber.TranscribeAudio(r.Context(), wavData)
	if err != nil {
		slog.Error("Transcription failed", "error", err, "session_id", sessionID)
		writeError(w, err)
		return
	}

	appended := false
	if r.FormValue("is_final") == "true" {
		if _, err := e.sessions.AppendAnswer(r.Context(), sessionID, transcript); err != nil {
			writeError(w, fmt.Errorf("failed to append answer: %w", err))
			return
		}
		appended = true
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(TranscribeResponse{
		Transcript: transcript,
		Appended:   appended,
	})

	slog.Info("Answer transcribed", "session_id", sessionID, "transcript_length", len(transcript), "appended", appended)
}

// EvaluateHandler evaluates every submitted answer, replaces the
// session's evaluations in bulk, marks it completed, and writes the
// write-once report rows to the relational store.
func (e *AnswerEndpoints) EvaluateHandler(w http.ResponseWriter, r *http.Request) {
	var req EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: invalid request body", ErrInvalidArgument))
		return
	}
	if req.SessionID == "" {
		writeError(w, fmt.Errorf("%w: session_id is required", ErrInvalidArgument))
		return
	}
	if len(req.Answers) == 0 {
		writeError(w, fmt.Errorf("%w: at least one answer is required", ErrInvalidArgument))
		return
	}

	session, err := e.sessions.Get(r.Context(), req.SessionID)
	if err != nil {
		writeError(w, fmt.Errorf("failed to load session: %w", err))
		return
	}
	if session == nil {
		writeError(w, fmt.Errorf("%w: session %s", ErrNotFound, req.SessionID))
		return
	}

	evaluations := make([]models.Evaluation, 0, len(req.Answers))
	for i, pair := range req.Answers {
		evaluation, err := e.evaluator.EvaluateAnswer(r.Context(), pair.Question, pair.Answer)
		if err != nil {
			slog.Error("Evaluation failed", "error", err, "session_id", req.SessionID, "question_index", i)
			writeError(w, err)
			return
		}
		evaluations = append(evaluations, *evaluation)
	}

	if _, err := e.sessions.SetEvaluations(r.Context(), req.SessionID, evaluations); err != nil {
		writeError(w, fmt.Errorf("failed to store evaluations: %w", err))
		return
	}
	if _, err := e.sessions.SetStatus(r.Context(), req.SessionID, models.StatusCompleted); err != nil {
		writeError(w, fmt.Errorf("failed to update session status: %w", err))
		return
	}

	overall := analytics.AverageScore(evaluations)
	e.saveReport(r, session, req.Answers, evaluations, overall)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(EvaluateResponse{
		SessionID:    req.SessionID,
		Evaluations:  evaluations,
		OverallScore: overall,
	})

	slog.Info("Session evaluated", "session_id", req.SessionID, "evaluations", len(evaluations), "overall_score", overall)
}

// saveReport denormalizes the finished interview into report rows.
// Report persistence is best-effort: a report failure never fails the
// evaluation response, it only logs.
func (e *AnswerEndpoints) saveReport(r *http.Request, session *models.Session, answers []AnswerToEval, evaluations []models.Evaluation, overall float64) {
	summary := &models.ReportSession{
		ID:            session.ID.Hex(),
		CreatedAt:     session.CreatedAt,
		NumQuestions:  len(session.Questions),
		Difficulty:    session.Difficulty,
		InterviewType: session.InterviewType,
		OverallScore:  overall,
		Duration:      int(time.Since(session.CreatedAt).Seconds()),
	}

	questions := make([]models.ReportQuestion, 0, len(answers))
	for i, pair := range answers {
		row := models.ReportQuestion{
			ID:           uuid.New().String(),
			SessionID:    summary.ID,
			QuestionText: pair.Question,
			AnswerText:   pair.Answer,
		}
		if i < len(evaluations) {
			if evalJSON, err := json.Marshal(evaluations[i]); err == nil {
				row.EvaluationJSON = string(evalJSON)
			}
			if score, ok := evaluations[i].ResolveScore(); ok {
				row.Score = score
			}
		}
		questions = append(questions, row)
	}

	if err := e.reports.SaveReport(r.Context(), summary, questions); err != nil {
		slog.Error("Failed to save report", "error", err, "session_id", summary.ID)
	}
}
