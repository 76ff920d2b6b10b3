package dto

import (
	"time"

	"github.com/vidyadoc/slc-api/internal/models"
)

// StatusUpdateRequest captures a workflow transition request.
type StatusUpdateRequest struct {
	Status  string `json:"status" validate:"required,oneof=draft in_review rejected accepted issued archived cancelled"`
	Reason  string `json:"reason" validate:"omitempty,max=2000"`
	Notes   string `json:"notes" validate:"omitempty,max=2000"`
	Comment string `json:"comment" validate:"omitempty,max=2000"`
}

// StatusTransitionsResponse describes what a record can legally do next.
type StatusTransitionsResponse struct {
	CurrentStatus      string   `json:"current_status"`
	AllowedTransitions []string `json:"allowed_transitions"`
	CanEdit            bool     `json:"can_edit"`
	CanDelete          bool     `json:"can_delete"`
	IsFinalState       bool     `json:"is_final_state"`
	RequiresReview     bool     `json:"requires_review"`
	IsApproved         bool     `json:"is_approved"`
}

// StatusHistoryResponse serializes one transition log entry.
type StatusHistoryResponse struct {
	ID        uint      `json:"id"`
	RecordID  uint      `json:"record_id"`
	OldStatus string    `json:"old_status"`
	NewStatus string    `json:"new_status"`
	ChangedBy *uint     `json:"changed_by,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewStatusHistoryResponse converts a history entry into a DTO.
func NewStatusHistoryResponse(entry models.StatusHistory) StatusHistoryResponse {
	return StatusHistoryResponse{
		ID:        entry.ID,
		RecordID:  entry.RecordID,
		OldStatus: string(entry.OldStatus),
		NewStatus: string(entry.NewStatus),
		ChangedBy: entry.ChangedBy,
		Reason:    entry.Reason,
		Notes:     entry.Notes,
		CreatedAt: entry.CreatedAt,
	}
}
