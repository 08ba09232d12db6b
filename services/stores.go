package services

import (
	"context"

	"github.com/prepmate/backend/models"
	"github.com/prepmate/backend/repository"
)

// Store and adapter interfaces consumed by the endpoint layer. The
// repository and AI types satisfy them directly; tests substitute
// in-memory fakes.

type SessionStore interface {
	Get(ctx context.Context, id string) (*models.Session, error)
	List(ctx context.Context, filter repository.ListFilter) ([]models.Session, error)
	Insert(ctx context.Context, session *models.Session) error
	Delete(ctx context.Context, id string) (int64, error)
	AppendAnswer(ctx context.Context, id string, answer string) (bool, error)
	SetEvaluations(ctx context.Context, id string, evaluations []models.Evaluation) (bool, error)
	SetStatus(ctx context.Context, id string, status string) (bool, error)
	SetNotes(ctx context.Context, id string, notes string) (bool, error)
	SetRating(ctx context.Context, id string, questionIndex int, rating int) (bool, error)
	SetComment(ctx context.Context, id string, questionIndex int, comment string) (bool, error)
	AddTagName(ctx context.Context, id string, tagName string) (bool, error)
	RemoveTagName(ctx context.Context, tagName string) (int64, error)
}

type TagStore interface {
	GetTag(ctx context.Context, name string) (*models.Tag, error)
	CreateTag(ctx context.Context, tag *models.Tag) error
	ListTags(ctx context.Context) ([]models.Tag, error)
	DeleteTag(ctx context.Context, name string) (int64, error)
	AddSessionTag(ctx context.Context, sessionID string, tagName string) error
	GetSessionTags(ctx context.Context, sessionID string) ([]string, error)
}

type ReportStore interface {
	SaveReport(ctx context.Context, summary *models.ReportSession, questions []models.ReportQuestion) error
	GetReportSession(ctx context.Context, sessionID string) (*models.ReportSession, error)
	GetReportQuestions(ctx context.Context, sessionID string) ([]models.ReportQuestion, error)
}

type QuestionGenerator interface {
	GenerateQuestions(ctx context.Context, resumeText string, count int, difficulty, interviewType string) ([]models.Question, error)
}

type AnswerEvaluator interface {
	EvaluateAnswer(ctx context.Context, question, answer string) (*models.Evaluation, error)
}

type Transcriber interface {
	TranscribeAudio(ctx context.Context, audioData []byte) (string, error)
}
