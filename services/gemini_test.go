package services

import (
	"errors"
	"testing"
)

func TestParseQuestionList(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "Simple numbered list",
			input:    "1. Tell me about your Go experience.\n2. How do goroutines work?\n3. Describe a project you led.",
			expected: []string{"Tell me about your Go experience.", "How do goroutines work?", "Describe a project you led."},
		},
		{
			name:     "Preamble before the list is dropped",
			input:    "Here are your questions:\n\n1. What is a channel?\n2. What is a mutex?",
			expected: []string{"What is a channel?", "What is a mutex?"},
		},
		{
			name:     "Parenthesis numbering",
			input:    "1) First question?\n2) Second question?",
			expected: []string{"First question?", "Second question?"},
		},
		{
			name:     "Dash bullets",
			input:    "- Question one?\n- Question two?",
			expected: []string{"Question one?", "Question two?"},
		},
		{
			name:     "Wrapped question joins the previous line",
			input:    "1. Explain how your team handled the migration\nto the new platform.\n2. Next question?",
			expected: []string{"Explain how your team handled the migration to the new platform.", "Next question?"},
		},
		{
			name:     "Blank lines ignored",
			input:    "1. One?\n\n\n2. Two?\n",
			expected: []string{"One?", "Two?"},
		},
		{
			name:     "No questions at all",
			input:    "I cannot generate questions for this resume.",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			questions := parseQuestionList(tt.input)
			if len(questions) != len(tt.expected) {
				t.Fatalf("parseQuestionList() returned %d questions, expected %d", len(questions), len(tt.expected))
			}
			for i, q := range questions {
				if q.Text != tt.expected[i] {
					t.Errorf("question %d = %q, expected %q", i, q.Text, tt.expected[i])
				}
			}
		})
	}
}

func TestStripMarkdownFences(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "No fences",
			input:    `{"score": 7}`,
			expected: `{"score": 7}`,
		},
		{
			name:     "Plain fences",
			input:    "```\n{\"score\": 7}\n```",
			expected: `{"score": 7}`,
		},
		{
			name:     "JSON fences",
			input:    "```json\n{\"score\": 7}\n```",
			expected: `{"score": 7}`,
		},
		{
			name:     "Surrounding whitespace",
			input:    "  ```json\n{\"score\": 7}\n```  ",
			expected: `{"score": 7}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripMarkdownFences(tt.input); got != tt.expected {
				t.Errorf("stripMarkdownFences() = %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestParseEvaluationFlatScore(t *testing.T) {
	evaluation, err := parseEvaluation(`{"score": 7.5, "summary": "Solid answer."}`)
	if err != nil {
		t.Fatalf("parseEvaluation() error: %v", err)
	}

	score, ok := evaluation.ResolveScore()
	if !ok {
		t.Fatal("expected a resolvable score")
	}
	if score != 7.5 {
		t.Errorf("score = %v, expected 7.5", score)
	}
	if evaluation.Summary != "Solid answer." {
		t.Errorf("summary = %q", evaluation.Summary)
	}
}

func TestParseEvaluationNestedCriteria(t *testing.T) {
	response := "```json\n" + `{
		"evaluation": {
			"clarity": {"score": 8, "feedback": "Clear."},
			"correctness": {"score": 6, "feedback": "Mostly right."}
		},
		"summary": "Good.",
		"strengths": ["concise"],
		"tips": ["add an example"]
	}` + "\n```"

	evaluation, err := parseEvaluation(response)
	if err != nil {
		t.Fatalf("parseEvaluation() error: %v", err)
	}

	score, ok := evaluation.ResolveScore()
	if !ok {
		t.Fatal("expected a resolvable score")
	}
	if score != 7 {
		t.Errorf("score = %v, expected 7 (mean of 8 and 6)", score)
	}
	if len(evaluation.Strengths) != 1 || evaluation.Strengths[0] != "concise" {
		t.Errorf("strengths = %v", evaluation.Strengths)
	}
}

func TestParseEvaluationMalformed(t *testing.T) {
	if _, err := parseEvaluation("the answer was fine I guess"); !errors.Is(err, ErrAdapterFailure) {
		t.Errorf("expected ErrAdapterFailure, got %v", err)
	}
}

func TestParseEvaluationNoScore(t *testing.T) {
	if _, err := parseEvaluation(`{"summary": "no scores here"}`); !errors.Is(err, ErrAdapterFailure) {
		t.Errorf("expected ErrAdapterFailure, got %v", err)
	}
}
