package repository

import (
	"context"
	"errors"
	"log/slog"

	"github.com/prepmate/backend/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNoReportStore is returned when the relational store is not
// configured. The server runs without it; reports just are not kept.
var ErrNoReportStore = errors.New("report store not configured")

// ReportRepository is the relational store for write-once report rows.
// It serves historical report reads and is a separate bounded context
// from the live Mongo session store.
type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// AutoMigrate runs database migrations
func (r *ReportRepository) AutoMigrate() error {
	return r.db.AutoMigrate(
		&models.ReportSession{},
		&models.ReportQuestion{},
	)
}

// SaveReport writes the session summary and its question rows in one
// transaction. Re-evaluating a session refreshes the report: the
// summary is upserted and the question rows are replaced.
func (r *ReportRepository) SaveReport(ctx context.Context, summary *models.ReportSession, questions []models.ReportQuestion) error {
	if r.db == nil {
		return ErrNoReportStore
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(summary).Error; err != nil {
			return err
		}
		if err := tx.Where("session_id = ?", summary.ID).Delete(&models.ReportQuestion{}).Error; err != nil {
			return err
		}
		if len(questions) > 0 {
			if err := tx.Create(&questions).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		slog.Error("Failed to save report", "error", err, "session_id", summary.ID)
		return err
	}
	slog.Info("Report saved", "session_id", summary.ID, "questions", len(questions))
	return nil
}

// GetReportSession returns the report summary for a session, or
// (nil, nil) when no report exists.
func (r *ReportRepository) GetReportSession(ctx context.Context, sessionID string) (*models.ReportSession, error) {
	if r.db == nil {
		return nil, nil
	}
	var summary models.ReportSession
	if err := r.db.WithContext(ctx).Where("id = ?", sessionID).First(&summary).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get report session", "error", err, "session_id", sessionID)
		return nil, err
	}
	return &summary, nil
}

// GetReportQuestions returns the per-question rows of a report in
// insertion order.
func (r *ReportRepository) GetReportQuestions(ctx context.Context, sessionID string) ([]models.ReportQuestion, error) {
	if r.db == nil {
		return nil, nil
	}
	var questions []models.ReportQuestion
	err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).Order("created_at").Find(&questions).Error
	if err != nil {
		slog.Error("Failed to get report questions", "error", err, "session_id", sessionID)
		return nil, err
	}
	return questions, nil
}
