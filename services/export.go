package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"strconv"
	"time"

	"github.com/prepmate/backend/analytics"
	"github.com/prepmate/backend/models"
)

// Export formats
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatPDF  = "pdf"
)

// ExportOptions selects the output format and which sections of each
// session are included.
type ExportOptions struct {
	Format             string
	IncludeQuestions   bool
	IncludeAnswers     bool
	IncludeEvaluations bool
}

// ReportRenderer turns report HTML into a PDF document.
type ReportRenderer interface {
	RenderHTML(ctx context.Context, html string) ([]byte, error)
}

// ExportService serializes sessions to the requested format. Session
// resolution (skipping missing identifiers) happens at the endpoint;
// the service only ever sees sessions that exist.
type ExportService struct {
	renderer ReportRenderer
}

func NewExportService(renderer ReportRenderer) *ExportService {
	return &ExportService{renderer: renderer}
}

// Export returns the serialized bytes, their content type, and a
// suggested filename. Unknown formats are rejected before any work.
func (s *ExportService) Export(ctx context.Context, sessions []models.Session, opts ExportOptions) ([]byte, string, string, error) {
	stamp := time.Now().Format("20060102_150405")

	switch opts.Format {
	case FormatJSON:
		data, err := s.exportJSON(sessions, opts)
		if err != nil {
			return nil, "", "", err
		}
		return data, "application/json", "sessions_" + stamp + ".json", nil
	case FormatCSV:
		data, err := s.exportCSV(sessions, opts)
		if err != nil {
			return nil, "", "", err
		}
		return data, "text/csv", "sessions_" + stamp + ".csv", nil
	case FormatPDF:
		data, err := s.exportPDF(ctx, sessions, opts)
		if err != nil {
			return nil, "", "", err
		}
		return data, "application/pdf", "sessions_" + stamp + ".pdf", nil
	default:
		return nil, "", "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, opts.Format)
	}
}

// exportedSession is the JSON export view of one session.
type exportedSession struct {
	ID            string              `json:"id"`
	Timestamp     time.Time           `json:"timestamp"`
	Difficulty    string              `json:"difficulty"`
	InterviewType string              `json:"interview_type"`
	Status        string              `json:"status"`
	OverallScore  float64             `json:"overall_score"`
	Questions     []models.Question   `json:"questions,omitempty"`
	Answers       []string            `json:"answers,omitempty"`
	Evaluations   []models.Evaluation `json:"evaluations,omitempty"`
	Notes         string              `json:"notes,omitempty"`
	Tags          []string            `json:"tags,omitempty"`
}

func (s *ExportService) exportJSON(sessions []models.Session, opts ExportOptions) ([]byte, error) {
	exported := make([]exportedSession, 0, len(sessions))
	for _, session := range sessions {
		e := exportedSession{
			ID:            session.ID.Hex(),
			Timestamp:     session.CreatedAt,
			Difficulty:    session.Difficulty,
			InterviewType: session.InterviewType,
			Status:        session.Status,
			OverallScore:  analytics.AverageScore(session.Evaluations),
			Notes:         session.Notes,
			Tags:          session.Tags,
		}
		if opts.IncludeQuestions {
			e.Questions = session.Questions
		}
		if opts.IncludeAnswers {
			e.Answers = session.Answers
		}
		if opts.IncludeEvaluations {
			e.Evaluations = session.Evaluations
		}
		exported = append(exported, e)
	}

	data, err := json.MarshalIndent(map[string]any{
		"exported_at": time.Now().UTC(),
		"count":       len(exported),
		"sessions":    exported,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal export: %w", err)
	}
	return data, nil
}

// exportCSV writes one row per (session, question) pair. Questions the
// candidate never answered keep their row with blank answer and score
// cells, so a partially finished session is visible as such.
func (s *ExportService) exportCSV(sessions []models.Session, opts ExportOptions) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	header := []string{"session_id", "timestamp", "difficulty", "interview_type", "overall_score", "question_number", "question", "answer", "score", "evaluation"}
	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, session := range sessions {
		overall := strconv.FormatFloat(analytics.AverageScore(session.Evaluations), 'f', 2, 64)
		for i, question := range session.Questions {
			row := []string{
				session.ID.Hex(),
				session.CreatedAt.Format(time.RFC3339),
				session.Difficulty,
				session.InterviewType,
				overall,
				strconv.Itoa(i + 1),
				"", "", "", "",
			}
			if opts.IncludeQuestions {
				row[6] = question.Text
			}
			if opts.IncludeAnswers && i < len(session.Answers) {
				row[7] = session.Answers[i]
			}
			if opts.IncludeEvaluations && i < len(session.Evaluations) {
				evaluation := session.Evaluations[i]
				if score, ok := evaluation.ResolveScore(); ok {
					row[8] = strconv.FormatFloat(score, 'f', 2, 64)
				}
				// The full evaluation travels with the row, not just
				// the resolved number
				if blob, err := json.Marshal(evaluation); err == nil {
					row[9] = string(blob)
				}
			}
			if err := writer.Write(row); err != nil {
				return nil, fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}

	slog.Info("Sessions exported to CSV", "session_count", len(sessions))
	return buf.Bytes(), nil
}

// Report view models, precomputed so the template stays flat.

type reportQuestionView struct {
	Number   int
	Question string
	Answered bool
	Answer   string
	HasScore bool
	Score    string
	Summary  string
}

type reportSessionView struct {
	Timestamp     string
	Difficulty    string
	InterviewType string
	OverallScore  string
	Answered      int
	Total         int
	Questions     []reportQuestionView
}

type reportView struct {
	GeneratedAt string
	Sessions    []reportSessionView
}

func (s *ExportService) exportPDF(ctx context.Context, sessions []models.Session, opts ExportOptions) ([]byte, error) {
	view := reportView{
		GeneratedAt: time.Now().Format("Jan 2, 2006 15:04"),
	}

	for _, session := range sessions {
		sv := reportSessionView{
			Timestamp:     session.CreatedAt.Format("Jan 2, 2006 15:04"),
			Difficulty:    session.Difficulty,
			InterviewType: session.InterviewType,
			OverallScore:  formatScore(analytics.AverageScore(session.Evaluations)),
			Answered:      len(session.Answers),
			Total:         len(session.Questions),
		}
		if opts.IncludeQuestions {
			for i, question := range session.Questions {
				qv := reportQuestionView{
					Number:   i + 1,
					Question: question.Text,
				}
				if opts.IncludeAnswers && i < len(session.Answers) {
					qv.Answered = true
					qv.Answer = session.Answers[i]
				}
				if opts.IncludeEvaluations && i < len(session.Evaluations) {
					evaluation := session.Evaluations[i]
					if score, ok := evaluation.ResolveScore(); ok {
						qv.HasScore = true
						qv.Score = formatScore(score)
					}
					qv.Summary = evaluation.Summary
				}
				sv.Questions = append(sv.Questions, qv)
			}
		}
		view.Sessions = append(view.Sessions, sv)
	}

	var html bytes.Buffer
	if err := reportTemplate.Execute(&html, view); err != nil {
		return nil, fmt.Errorf("failed to render report template: %w", err)
	}

	return s.renderer.RenderHTML(ctx, html.String())
}

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  body { font-family: Helvetica, Arial, sans-serif; color: #1a1a1a; margin: 40px; }
  h1 { font-size: 22px; border-bottom: 2px solid #2b6cb0; padding-bottom: 8px; }
  h2 { font-size: 16px; color: #2b6cb0; margin-top: 28px; }
  .meta { color: #555; font-size: 12px; margin-bottom: 4px; }
  .question { margin-top: 16px; padding: 10px; background: #f7fafc; border-left: 3px solid #2b6cb0; }
  .answer { margin: 8px 0 0 12px; font-size: 13px; }
  .feedback { margin: 8px 0 0 12px; font-size: 12px; color: #444; }
  .score { font-weight: bold; color: #2f855a; }
  .unanswered { color: #999; font-style: italic; }
</style>
</head>
<body>
<h1>Interview Practice Report</h1>
<p class="meta">Generated {{.GeneratedAt}}</p>
{{range .Sessions}}
<h2>{{.InterviewType}} session &mdash; {{.Timestamp}}</h2>
<p class="meta">Difficulty: {{.Difficulty}} &middot; Overall score: <span class="score">{{.OverallScore}}/10</span> &middot; Answered {{.Answered}} of {{.Total}}</p>
{{range .Questions}}
<div class="question">
  <div><strong>Q{{.Number}}.</strong> {{.Question}}</div>
  {{if .Answered}}<div class="answer">{{.Answer}}</div>{{else}}<div class="answer unanswered">Not answered</div>{{end}}
  {{if .HasScore}}<div class="feedback"><span class="score">{{.Score}}/10</span>{{if .Summary}} &mdash; {{.Summary}}{{end}}</div>{{end}}
</div>
{{end}}
{{end}}
</body>
</html>`))

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
