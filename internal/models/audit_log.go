package models

import (
	"time"

	"gorm.io/datatypes"
)

// Audit actions. INSERT/UPDATE/DELETE mirror the storage operation; VIEW,
// LOGIN and LOGOUT capture reads and session events.
const (
	AuditActionInsert = "INSERT"
	AuditActionUpdate = "UPDATE"
	AuditActionDelete = "DELETE"
	AuditActionView   = "VIEW"
	AuditActionLogin  = "LOGIN"
	AuditActionLogout = "LOGOUT"
)

// AuditLog is an append-only audit trail entry. Rows are written exactly once
// and never updated. ChangedBy is nullable so the entry outlives a
// permanently removed user account: the FK is SET NULL, the history stays.
type AuditLog struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	TableName string            `gorm:"size:64;not null;index:idx_audit_logs_target" json:"table_name"`
	RecordID  uint              `gorm:"not null;index:idx_audit_logs_target" json:"record_id"`
	Action    string            `gorm:"size:16;not null;index" json:"action"`
	FieldName *string           `gorm:"size:64" json:"field_name,omitempty"`
	OldValue  *string           `gorm:"type:text" json:"old_value,omitempty"`
	NewValue  *string           `gorm:"type:text" json:"new_value,omitempty"`
	ChangedBy *uint             `gorm:"index" json:"changed_by,omitempty"`
	Actor     *User             `gorm:"foreignKey:ChangedBy;constraint:OnDelete:SET NULL" json:"actor,omitempty"`
	IPAddress string            `gorm:"size:64" json:"ip_address"`
	UserAgent string            `gorm:"size:255" json:"user_agent"`
	Location  string            `gorm:"size:128" json:"location"`
	Notes     string            `gorm:"type:text" json:"notes"`
	Payload   datatypes.JSONMap `gorm:"type:json" json:"payload,omitempty"`
	ChangedAt time.Time         `gorm:"autoCreateTime;index" json:"changed_at"`
}
