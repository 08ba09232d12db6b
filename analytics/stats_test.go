package analytics

import (
	"testing"
	"time"

	"github.com/prepmate/backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flatEval(score float64) models.Evaluation {
	return models.Evaluation{Score: &score}
}

func nestedEval(scores map[string]float64) models.Evaluation {
	criteria := make(map[string]models.CriterionScore, len(scores))
	for name, score := range scores {
		criteria[name] = models.CriterionScore{Score: score}
	}
	return models.Evaluation{Criteria: criteria}
}

func TestAverageScoreEmpty(t *testing.T) {
	assert.Equal(t, 0.0, AverageScore(nil))
	assert.Equal(t, 0.0, AverageScore([]models.Evaluation{}))
}

func TestAverageScoreSkipsUnresolvable(t *testing.T) {
	evaluations := []models.Evaluation{
		flatEval(6),
		{Summary: "no score of any kind"},
		flatEval(8),
	}
	assert.InDelta(t, 7.0, AverageScore(evaluations), 1e-9)
}

func TestAverageScoreAllUnresolvable(t *testing.T) {
	evaluations := []models.Evaluation{
		{Summary: "nothing"},
		{Criteria: map[string]models.CriterionScore{}},
	}
	assert.Equal(t, 0.0, AverageScore(evaluations))
}

func TestAverageScoreOrderInvariant(t *testing.T) {
	a := []models.Evaluation{flatEval(5), flatEval(7), flatEval(9)}
	b := []models.Evaluation{flatEval(9), flatEval(5), flatEval(7)}
	assert.Equal(t, AverageScore(a), AverageScore(b))
}

func TestAverageScoreNestedUniform(t *testing.T) {
	// Every criterion at the same value resolves to that value
	evaluation := nestedEval(map[string]float64{
		"clarity":             8,
		"technical_relevance": 8,
		"structure":           8,
		"communication":       8,
		"correctness":         8,
	})
	assert.InDelta(t, 8.0, AverageScore([]models.Evaluation{evaluation}), 1e-9)
}

func TestAverageScoreMixedForms(t *testing.T) {
	evaluations := []models.Evaluation{
		flatEval(6),
		nestedEval(map[string]float64{"clarity": 9, "correctness": 7}),
	}
	assert.InDelta(t, 7.0, AverageScore(evaluations), 1e-9)
}

func TestStatisticsEmpty(t *testing.T) {
	stats := Statistics(nil)

	assert.Equal(t, 0, stats.TotalSessions)
	assert.Equal(t, 0.0, stats.AverageScore)
	assert.NotNil(t, stats.DifficultyDistribution)
	assert.NotNil(t, stats.TagDistribution)
	assert.Empty(t, stats.ScoreTrend)
}

func TestStatisticsGlobalAverageIsPerEvaluation(t *testing.T) {
	// One session with two evaluations, one with a single evaluation.
	// The global average weighs every evaluation equally:
	// (8 + 9 + 6) / 3 = 7.67, not the mean of session means (7.25).
	sessions := []models.Session{
		{Evaluations: []models.Evaluation{flatEval(8), flatEval(9)}},
		{Evaluations: []models.Evaluation{flatEval(6)}},
	}

	stats := Statistics(sessions)
	assert.Equal(t, 7.67, stats.AverageScore)
}

func TestStatisticsCounts(t *testing.T) {
	sessions := []models.Session{
		{
			Questions: []models.Question{{Text: "q1"}, {Text: "q2"}, {Text: "q3"}},
			Answers:   []string{"a1", "a2"},
		},
		{
			Questions: []models.Question{{Text: "q1"}},
			Answers:   []string{"a1"},
		},
	}

	stats := Statistics(sessions)
	assert.Equal(t, 2, stats.TotalSessions)
	assert.Equal(t, 4, stats.TotalQuestions)
	assert.Equal(t, 3, stats.TotalAnswers)
}

func TestStatisticsDifficultyHistogram(t *testing.T) {
	sessions := []models.Session{
		{Difficulty: models.DifficultyEasy},
		{Difficulty: models.DifficultyEasy},
		{Difficulty: models.DifficultyHard},
		{Difficulty: ""}, // legacy document without a difficulty
	}

	stats := Statistics(sessions)

	assert.Equal(t, 2, stats.DifficultyDistribution["easy"])
	assert.Equal(t, 1, stats.DifficultyDistribution["hard"])
	assert.Equal(t, 1, stats.DifficultyDistribution["unknown"])

	total := 0
	for _, n := range stats.DifficultyDistribution {
		total += n
	}
	assert.Equal(t, stats.TotalSessions, total)
}

func TestStatisticsTagDistribution(t *testing.T) {
	sessions := []models.Session{
		{Tags: []string{"favorite", "follow-up"}},
		{Tags: []string{"favorite"}},
		{},
	}

	stats := Statistics(sessions)
	assert.Equal(t, 2, stats.TagDistribution["favorite"])
	assert.Equal(t, 1, stats.TagDistribution["follow-up"])
}

func TestScoreTrendNewestFirstAndCapped(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	var sessions []models.Session
	for i := 0; i < 12; i++ {
		sessions = append(sessions, models.Session{
			CreatedAt:   base.AddDate(0, 0, i),
			Evaluations: []models.Evaluation{flatEval(float64(i))},
		})
	}

	trend := Statistics(sessions).ScoreTrend
	require.Len(t, trend, 10)

	// Newest session (day 11) first, descending from there
	assert.Equal(t, base.AddDate(0, 0, 11), trend[0].Date)
	assert.Equal(t, 11.0, trend[0].Score)
	for i := 1; i < len(trend); i++ {
		assert.True(t, trend[i].Date.Before(trend[i-1].Date))
	}
}

func TestScoreTrendExcludesUnscoredSessions(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	sessions := []models.Session{
		{CreatedAt: base, Evaluations: []models.Evaluation{flatEval(7)}},
		{CreatedAt: base.AddDate(0, 0, 1)}, // never evaluated
		{CreatedAt: base.AddDate(0, 0, 2), Evaluations: []models.Evaluation{flatEval(9)}},
	}

	trend := Statistics(sessions).ScoreTrend
	require.Len(t, trend, 2)
	assert.Equal(t, 9.0, trend[0].Score)
	assert.Equal(t, 7.0, trend[1].Score)
}
