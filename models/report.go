package models

import (
	"time"

	"gorm.io/gorm"
)

// ReportSession is the write-once relational summary of a finished
// interview, kept separately from the live Mongo session document and
// queried for historical reports.
type ReportSession struct {
	ID            string         `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time      `gorm:"not null" json:"created_at"`
	NumQuestions  int            `gorm:"not null" json:"num_questions"`
	Difficulty    string         `gorm:"size:50" json:"difficulty"`
	InterviewType string         `gorm:"size:50" json:"interview_type"`
	OverallScore  float64        `gorm:"type:decimal(5,2)" json:"overall_score"`
	Duration      int            `json:"duration"` // Duration in seconds
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Questions []ReportQuestion `gorm:"foreignKey:SessionID" json:"questions,omitempty"`
}

// ReportQuestion is one denormalized (question, answer, evaluation)
// row belonging to a report session. The evaluation is stored as an
// opaque JSON blob exactly as the model produced it.
type ReportQuestion struct {
	ID             string         `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID      string         `gorm:"not null;index" json:"session_id"`
	QuestionText   string         `gorm:"type:text;not null" json:"question_text"`
	AnswerText     string         `gorm:"type:text" json:"answer_text"`
	EvaluationJSON string         `gorm:"type:text" json:"evaluation_json"`
	Score          float64        `gorm:"type:decimal(5,2)" json:"score"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Session ReportSession `gorm:"foreignKey:SessionID" json:"-"`
}
