package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/vidyadoc/slc-api/internal/models"
)

// AuditLogFilter narrows audit trail queries.
type AuditLogFilter struct {
	TableName string
	RecordID  uint
	ChangedBy *uint
	Action    string
	StartDate *time.Time
	EndDate   *time.Time
	Page      int
	PageSize  int
}

// AuditLogRepository persists the append-only audit trail. Entries are
// created exactly once and never updated or deleted; removing a user account
// nulls the actor reference via the FK constraint but keeps the row.
type AuditLogRepository interface {
	Create(ctx context.Context, entry *models.AuditLog) error
	FindByTableAndRecord(ctx context.Context, tableName string, recordID uint) ([]models.AuditLog, error)
	List(ctx context.Context, filter AuditLogFilter) ([]models.AuditLog, int64, error)
}

type auditLogRepository struct {
	db *gorm.DB
}

// NewAuditLogRepository constructs the audit log repository.
func NewAuditLogRepository(db *gorm.DB) AuditLogRepository {
	return &auditLogRepository{db: db}
}

func (r *auditLogRepository) Create(ctx context.Context, entry *models.AuditLog) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return translateError(err, "audit entry")
	}
	return nil
}

func (r *auditLogRepository) FindByTableAndRecord(ctx context.Context, tableName string, recordID uint) ([]models.AuditLog, error) {
	var entries []models.AuditLog
	err := r.db.WithContext(ctx).
		Where("table_name = ? AND record_id = ?", tableName, recordID).
		Order("changed_at DESC").
		Find(&entries).Error
	if err != nil {
		return nil, translateError(err, "audit entry")
	}
	return entries, nil
}

func (r *auditLogRepository) List(ctx context.Context, filter AuditLogFilter) ([]models.AuditLog, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.AuditLog{})

	if tableName := strings.TrimSpace(filter.TableName); tableName != "" {
		query = query.Where("table_name = ?", tableName)
	}
	if filter.RecordID > 0 {
		query = query.Where("record_id = ?", filter.RecordID)
	}
	if filter.ChangedBy != nil {
		query = query.Where("changed_by = ?", *filter.ChangedBy)
	}
	if action := strings.TrimSpace(filter.Action); action != "" {
		query = query.Where("action = ?", strings.ToUpper(action))
	}
	if filter.StartDate != nil {
		query = query.Where("changed_at >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("changed_at <= ?", *filter.EndDate)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, translateError(err, "audit entry")
	}

	query = applyPagination(query.Order("changed_at DESC"), filter.Page, filter.PageSize)

	var entries []models.AuditLog
	if err := query.Find(&entries).Error; err != nil {
		return nil, 0, translateError(err, "audit entry")
	}

	return entries, total, nil
}
