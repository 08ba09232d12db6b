// Package analytics computes derived views over stored interview
// sessions: per-session averages, cross-session statistics, and
// session-to-session comparisons. Everything here is pure and
// stateless; callers fetch the sessions first and pass them in.
package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/prepmate/backend/models"
)

// Stats is the cross-session statistics view.
type Stats struct {
	TotalSessions          int            `json:"total_sessions"`
	TotalQuestions         int            `json:"total_questions"`
	TotalAnswers           int            `json:"total_answers"`
	AverageScore           float64        `json:"average_score"`
	DifficultyDistribution map[string]int `json:"difficulty_distribution"`
	ScoreTrend             []TrendPoint   `json:"score_trend"`
	TagDistribution        map[string]int `json:"tag_distribution"`
}

// TrendPoint maps one session to its average score.
type TrendPoint struct {
	Date  time.Time `json:"date"`
	Score float64   `json:"score"`
}

// trendLimit caps the score trend at the most recent sessions.
const trendLimit = 10

// AverageScore returns the arithmetic mean of the resolvable scores in
// evaluations. Evaluations carrying neither a flat score nor any
// sub-criterion are skipped. An empty or wholly unresolvable input
// yields 0 - a defined zero, not an error - so callers that need to
// distinguish "no data" from "scored zero" must check the evaluation
// count themselves.
func AverageScore(evaluations []models.Evaluation) float64 {
	var sum float64
	var n int
	for _, e := range evaluations {
		if score, ok := e.ResolveScore(); ok {
			sum += score
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// Statistics computes the cross-session statistics view. The global
// average is the mean of every individual evaluation score found across
// all sessions, so sessions with more evaluations weigh proportionally
// more; it is not a mean of session means.
func Statistics(sessions []models.Session) Stats {
	stats := Stats{
		DifficultyDistribution: make(map[string]int),
		ScoreTrend:             []TrendPoint{},
		TagDistribution:        make(map[string]int),
	}

	stats.TotalSessions = len(sessions)

	var scoreSum float64
	var scoreCount int
	for _, s := range sessions {
		stats.TotalQuestions += len(s.Questions)
		stats.TotalAnswers += len(s.Answers)

		for _, e := range s.Evaluations {
			if score, ok := e.ResolveScore(); ok {
				scoreSum += score
				scoreCount++
			}
		}

		difficulty := s.Difficulty
		if difficulty == "" {
			difficulty = "unknown"
		}
		stats.DifficultyDistribution[difficulty]++

		for _, tag := range s.Tags {
			stats.TagDistribution[tag]++
		}
	}
	if scoreCount > 0 {
		stats.AverageScore = round2(scoreSum / float64(scoreCount))
	}

	stats.ScoreTrend = scoreTrend(sessions)

	return stats
}

// scoreTrend maps the most recently created sessions to their own
// per-session averages, newest first. Sessions with no resolvable
// evaluation are excluded rather than reported as zero.
func scoreTrend(sessions []models.Session) []TrendPoint {
	sorted := make([]models.Session, len(sessions))
	copy(sorted, sessions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	if len(sorted) > trendLimit {
		sorted = sorted[:trendLimit]
	}

	trend := []TrendPoint{}
	for _, s := range sorted {
		if !hasResolvableScore(s.Evaluations) {
			continue
		}
		trend = append(trend, TrendPoint{
			Date:  s.CreatedAt,
			Score: AverageScore(s.Evaluations),
		})
	}
	return trend
}

func hasResolvableScore(evaluations []models.Evaluation) bool {
	for _, e := range evaluations {
		if _, ok := e.ResolveScore(); ok {
			return true
		}
	}
	return false
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
