package services

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prepmate/backend/models"
)

// Resume uploads are capped well above any realistic resume.
const maxResumeSize = 10 << 20 // 10MB

type UploadEndpoints struct {
	sessions  SessionStore
	generator QuestionGenerator
}

func NewUploadEndpoints(sessions SessionStore, generator QuestionGenerator) *UploadEndpoints {
	return &UploadEndpoints{
		sessions:  sessions,
		generator: generator,
	}
}

type UploadResumeResponse struct {
	SessionID string            `json:"session_id"`
	Questions []models.Question `json:"questions"`
}

func (e *UploadEndpoints) RegisterRoutes(r chi.Router) {
	r.Post("/upload", e.UploadResumeHandler)
}

// UploadResumeHandler accepts a resume PDF plus generation parameters,
// generates the interview questions, and creates the session. All
// parameter validation happens before the PDF is parsed or the model
// is called.
func (e *UploadEndpoints) UploadResumeHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxResumeSize); err != nil {
		writeError(w, fmt.Errorf("%w: invalid multipart form: %v", ErrInvalidArgument, err))
		return
	}

	numQuestions, err := strconv.Atoi(r.FormValue("num_questions"))
	if err != nil || numQuestions < 1 || numQuestions > 20 {
		writeError(w, fmt.Errorf("%w: num_questions must be between 1 and 20", ErrInvalidArgument))
		return
	}

	difficulty := r.FormValue("difficulty")
	if !models.ValidDifficulty(difficulty) {
		writeError(w, fmt.Errorf("%w: difficulty must be one of easy, medium, hard", ErrInvalidArgument))
		return
	}

	interviewType := r.FormValue("interview_type")
	if !models.ValidInterviewType(interviewType) {
		writeError(w, fmt.Errorf("%w: interview_type must be one of technical, behavioral, system_design, mixed", ErrInvalidArgument))
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, fmt.Errorf("%w: resume file is required", ErrInvalidArgument))
		return
	}
	defer file.Close()

	pdfData, err := io.ReadAll(file)
	if err != nil {
		slog.Error("Failed to read resume upload", "error", err)
		writeError(w, fmt.Errorf("failed to read uploaded file: %w", err))
		return
	}

	resumeText, err := ExtractResumeText(pdfData)
	if err != nil {
		writeError(w, err)
		return
	}

	questions, err := e.generator.GenerateQuestions(r.Context(), resumeText, numQuestions, difficulty, interviewType)
	if err != nil {
		slog.Error("Failed to generate questions", "error", err, "difficulty", difficulty, "type", interviewType)
		writeError(w, err)
		return
	}

	session := models.Session{
		CreatedAt:     time.Now(),
		Questions:     questions,
		Answers:       []string{},
		Evaluations:   []models.Evaluation{},
		Difficulty:    difficulty,
		InterviewType: interviewType,
		Status:        models.StatusInProgress,
		ResumeText:    resumeText,
	}
	if err := e.sessions.Insert(r.Context(), &session); err != nil {
		writeError(w, fmt.Errorf("failed to create session: %w", err))
		return
	}

	response := UploadResumeResponse{
		SessionID: session.ID.Hex(),
		Questions: questions,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(response)

	slog.Info("Resume uploaded and session created", "session_id", session.ID.Hex(), "questions", len(questions), "difficulty", difficulty, "type", interviewType)
}
