package models

import "testing"

func floatPtr(v float64) *float64 { return &v }

func TestResolveScore(t *testing.T) {
	tests := []struct {
		name       string
		evaluation Evaluation
		expected   float64
		ok         bool
	}{
		{
			name:       "Flat score",
			evaluation: Evaluation{Score: floatPtr(7.5)},
			expected:   7.5,
			ok:         true,
		},
		{
			name: "Flat score wins over criteria",
			evaluation: Evaluation{
				Score: floatPtr(9),
				Criteria: map[string]CriterionScore{
					"clarity":     {Score: 2},
					"correctness": {Score: 2},
				},
			},
			expected: 9,
			ok:       true,
		},
		{
			name: "Mean of present criteria only",
			evaluation: Evaluation{
				Criteria: map[string]CriterionScore{
					"clarity":     {Score: 8},
					"correctness": {Score: 6},
				},
			},
			expected: 7,
			ok:       true,
		},
		{
			name: "All five criteria",
			evaluation: Evaluation{
				Criteria: map[string]CriterionScore{
					"clarity":             {Score: 10},
					"technical_relevance": {Score: 8},
					"structure":           {Score: 6},
					"communication":       {Score: 4},
					"correctness":         {Score: 2},
				},
			},
			expected: 6,
			ok:       true,
		},
		{
			name: "Unknown criterion names are ignored",
			evaluation: Evaluation{
				Criteria: map[string]CriterionScore{
					"clarity":    {Score: 8},
					"creativity": {Score: 1},
				},
			},
			expected: 8,
			ok:       true,
		},
		{
			name:       "No score of either form",
			evaluation: Evaluation{Summary: "nothing scored"},
			ok:         false,
		},
		{
			name:       "Empty criteria map",
			evaluation: Evaluation{Criteria: map[string]CriterionScore{}},
			ok:         false,
		},
		{
			name: "Only unknown criteria",
			evaluation: Evaluation{
				Criteria: map[string]CriterionScore{"vibes": {Score: 10}},
			},
			ok: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, ok := tt.evaluation.ResolveScore()
			if ok != tt.ok {
				t.Fatalf("ResolveScore() ok = %v, expected %v", ok, tt.ok)
			}
			if ok && score != tt.expected {
				t.Errorf("ResolveScore() = %v, expected %v", score, tt.expected)
			}
		})
	}
}

func TestValidDifficulty(t *testing.T) {
	for _, d := range []string{DifficultyEasy, DifficultyMedium, DifficultyHard} {
		if !ValidDifficulty(d) {
			t.Errorf("ValidDifficulty(%q) = false", d)
		}
	}
	for _, d := range []string{"", "EASY", "impossible"} {
		if ValidDifficulty(d) {
			t.Errorf("ValidDifficulty(%q) = true", d)
		}
	}
}

func TestValidInterviewType(t *testing.T) {
	for _, it := range []string{TypeTechnical, TypeBehavioral, TypeSystemDesign, TypeMixed} {
		if !ValidInterviewType(it) {
			t.Errorf("ValidInterviewType(%q) = false", it)
		}
	}
	for _, it := range []string{"", "casual", "Technical"} {
		if ValidInterviewType(it) {
			t.Errorf("ValidInterviewType(%q) = true", it)
		}
	}
}
