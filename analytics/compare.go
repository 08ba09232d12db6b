package analytics

import (
	"math"

	"github.com/prepmate/backend/models"
)

// SessionSummary is the per-session half of a comparison.
type SessionSummary struct {
	ID                string   `json:"id"`
	Timestamp         string   `json:"timestamp"`
	InterviewType     string   `json:"interview_type"`
	Difficulty        string   `json:"difficulty"`
	Score             float64  `json:"score"`
	QuestionsAnswered int      `json:"questions_answered"`
	TotalQuestions    int      `json:"total_questions"`
	Tags              []string `json:"tags"`
}

// Differences holds the absolute deltas between the two sessions.
type Differences struct {
	ScoreDifference         float64 `json:"score_difference"`
	QuestionCountDifference int     `json:"question_count_difference"`
	TimeDifferenceSeconds   float64 `json:"time_difference"`
}

// Comparison pairs two session summaries with their deltas.
type Comparison struct {
	Sessions    []SessionSummary `json:"sessions"`
	Differences Differences      `json:"differences"`
}

// Compare builds the side-by-side view of two sessions. The associated
// tag names come from the session_tags join, so the caller resolves
// them alongside the sessions. Input validation (exactly two resolved
// sessions) happens at the endpoint boundary.
func Compare(a, b models.Session, tagsA, tagsB []string) Comparison {
	scoreA := AverageScore(a.Evaluations)
	scoreB := AverageScore(b.Evaluations)

	return Comparison{
		Sessions: []SessionSummary{
			summarize(a, scoreA, tagsA),
			summarize(b, scoreB, tagsB),
		},
		Differences: Differences{
			ScoreDifference:         math.Abs(scoreA - scoreB),
			QuestionCountDifference: absInt(len(a.Questions) - len(b.Questions)),
			TimeDifferenceSeconds:   math.Abs(a.CreatedAt.Sub(b.CreatedAt).Seconds()),
		},
	}
}

func summarize(s models.Session, score float64, tags []string) SessionSummary {
	if tags == nil {
		tags = []string{}
	}
	return SessionSummary{
		ID:                s.ID.Hex(),
		Timestamp:         s.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		InterviewType:     s.InterviewType,
		Difficulty:        s.Difficulty,
		Score:             score,
		QuestionsAnswered: len(s.Answers),
		TotalQuestions:    len(s.Questions),
		Tags:              tags,
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
