package dto

import (
	"time"

	"github.com/vidyadoc/slc-api/internal/models"
)

// AuditListRequest defines filters for the audit trail query endpoint.
type AuditListRequest struct {
	TableName string
	RecordID  uint
	ChangedBy uint
	Action    string
	StartDate string
	EndDate   string
	Page      int
	PageSize  int
}

// AuditEntryResponse serializes one audit trail entry.
type AuditEntryResponse struct {
	ID        uint                   `json:"id"`
	TableName string                 `json:"table_name"`
	RecordID  uint                   `json:"record_id"`
	Action    string                 `json:"action"`
	FieldName string                 `json:"field_name,omitempty"`
	OldValue  string                 `json:"old_value,omitempty"`
	NewValue  string                 `json:"new_value,omitempty"`
	ChangedBy *uint                  `json:"changed_by,omitempty"`
	IPAddress string                 `json:"ip_address,omitempty"`
	UserAgent string                 `json:"user_agent,omitempty"`
	Location  string                 `json:"location,omitempty"`
	Notes     string                 `json:"notes,omitempty"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	ChangedAt time.Time              `json:"changed_at"`
}

// AuditListResponse wraps a paginated audit trail listing.
type AuditListResponse struct {
	Items      []AuditEntryResponse `json:"items"`
	Pagination PaginationMeta       `json:"pagination"`
}

// NewAuditEntryResponse converts an audit log model into a DTO.
func NewAuditEntryResponse(entry models.AuditLog) AuditEntryResponse {
	return AuditEntryResponse{
		ID:        entry.ID,
		TableName: entry.TableName,
		RecordID:  entry.RecordID,
		Action:    entry.Action,
		FieldName: stringValue(entry.FieldName),
		OldValue:  stringValue(entry.OldValue),
		NewValue:  stringValue(entry.NewValue),
		ChangedBy: entry.ChangedBy,
		IPAddress: entry.IPAddress,
		UserAgent: entry.UserAgent,
		Location:  entry.Location,
		Notes:     entry.Notes,
		Payload:   entry.Payload,
		ChangedAt: entry.ChangedAt,
	}
}
