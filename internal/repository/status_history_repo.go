package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/vidyadoc/slc-api/internal/models"
)

// StatusHistoryRepository persists the append-only transition log.
type StatusHistoryRepository interface {
	Create(ctx context.Context, entry *models.StatusHistory) error
	ListByRecord(ctx context.Context, tableName string, recordID uint) ([]models.StatusHistory, error)
}

type statusHistoryRepository struct {
	db *gorm.DB
}

// NewStatusHistoryRepository constructs the status history repository.
func NewStatusHistoryRepository(db *gorm.DB) StatusHistoryRepository {
	return &statusHistoryRepository{db: db}
}

func (r *statusHistoryRepository) Create(ctx context.Context, entry *models.StatusHistory) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return translateError(err, "status history entry")
	}
	return nil
}

func (r *statusHistoryRepository) ListByRecord(ctx context.Context, tableName string, recordID uint) ([]models.StatusHistory, error) {
	var entries []models.StatusHistory
	err := r.db.WithContext(ctx).
		Where("table_name = ? AND record_id = ?", tableName, recordID).
		Order("created_at DESC").
		Find(&entries).Error
	if err != nil {
		return nil, translateError(err, "status history entry")
	}
	return entries, nil
}
