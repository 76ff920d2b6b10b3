package models

import (
	"time"

	"github.com/vidyadoc/slc-api/internal/status"
)

// StatusHistory is an append-only log of workflow transitions, richer than
// the audit trail in reason and notes. Written only by the workflow service
// on successful transitions; never mutated by domain logic.
type StatusHistory struct {
	ID        uint          `gorm:"primaryKey" json:"id"`
	TableName string        `gorm:"size:64;not null;index:idx_status_history_target" json:"table_name"`
	RecordID  uint          `gorm:"not null;index:idx_status_history_target" json:"record_id"`
	OldStatus status.Status `gorm:"size:16;not null" json:"old_status"`
	NewStatus status.Status `gorm:"size:16;not null" json:"new_status"`
	ChangedBy *uint         `gorm:"index" json:"changed_by,omitempty"`
	Reason    string        `gorm:"type:text" json:"reason"`
	Notes     string        `gorm:"type:text" json:"notes"`
	CreatedAt time.Time     `gorm:"autoCreateTime;index" json:"created_at"`
}
