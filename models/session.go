package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Difficulty levels accepted for a session
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Interview types accepted for a session
const (
	TypeTechnical    = "technical"
	TypeBehavioral   = "behavioral"
	TypeSystemDesign = "system_design"
	TypeMixed        = "mixed"
)

// Session statuses
const (
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
)

// ValidDifficulty reports whether d is one of the accepted difficulty levels.
func ValidDifficulty(d string) bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// ValidInterviewType reports whether t is one of the accepted interview types.
func ValidInterviewType(t string) bool {
	switch t {
	case TypeTechnical, TypeBehavioral, TypeSystemDesign, TypeMixed:
		return true
	}
	return false
}

// Question is a single generated interview question.
type Question struct {
	Text string `bson:"text" json:"text"`
}

// CriterionScore is one of the five sub-criterion evaluations
// (clarity, technical_relevance, structure, communication, correctness).
type CriterionScore struct {
	Score    float64 `bson:"score" json:"score"`
	Feedback string  `bson:"feedback,omitempty" json:"feedback,omitempty"`
}

// CriterionNames lists the sub-criteria an evaluation may carry.
var CriterionNames = []string{
	"clarity",
	"technical_relevance",
	"structure",
	"communication",
	"correctness",
}

// Evaluation is the scored feedback for one answer. The model returns
// either a flat overall score or a nested per-criterion breakdown;
// ResolveScore is the single place that resolves the two forms.
// Evaluations are immutable once stored: they are only ever replaced
// wholesale, never field-patched.
type Evaluation struct {
	Score         *float64                  `bson:"score,omitempty" json:"score,omitempty"`
	Criteria      map[string]CriterionScore `bson:"evaluation,omitempty" json:"evaluation,omitempty"`
	Summary       string                    `bson:"summary,omitempty" json:"summary,omitempty"`
	Strengths     []string                  `bson:"strengths,omitempty" json:"strengths,omitempty"`
	Improvements  []string                  `bson:"improvements,omitempty" json:"improvements,omitempty"`
	RevisedAnswer string                    `bson:"revised_answer,omitempty" json:"revised_answer,omitempty"`
	Tips          []string                  `bson:"tips,omitempty" json:"tips,omitempty"`
}

// ResolveScore returns the evaluation's overall score on the 0-10 scale.
// A flat score wins; otherwise the mean of whichever sub-criteria are
// present. The second return is false when neither form carries a score.
func (e Evaluation) ResolveScore() (float64, bool) {
	if e.Score != nil {
		return *e.Score, true
	}
	if len(e.Criteria) == 0 {
		return 0, false
	}
	var sum float64
	var n int
	for _, name := range CriterionNames {
		if c, ok := e.Criteria[name]; ok {
			sum += c.Score
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// Session is one complete interview-practice attempt, stored as a live
// MongoDB document. Answers are index-aligned with Questions, and
// Evaluations with Answers; answers are appended as the candidate
// responds and evaluations are set in bulk once all answers are in.
type Session struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt       time.Time          `bson:"timestamp" json:"timestamp"`
	Questions       []Question         `bson:"questions" json:"questions"`
	Answers         []string           `bson:"answers" json:"answers"`
	Evaluations     []Evaluation       `bson:"evaluations" json:"evaluations"`
	Difficulty      string             `bson:"difficulty" json:"difficulty"`
	InterviewType   string             `bson:"interview_type" json:"interview_type"`
	Status          string             `bson:"status" json:"status"`
	Notes           string             `bson:"notes,omitempty" json:"notes,omitempty"`
	FeedbackRatings map[string]int     `bson:"feedback_ratings,omitempty" json:"feedback_ratings,omitempty"`
	Comments        map[string]string  `bson:"comments,omitempty" json:"comments,omitempty"`
	Tags            []string           `bson:"tags,omitempty" json:"tags,omitempty"`
	ResumeText      string             `bson:"resume_text,omitempty" json:"-"`
}
