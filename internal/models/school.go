package models

import (
	"time"

	"github.com/vidyadoc/slc-api/internal/status"
)

// School is an institution registered with the certificate authority.
// Identifier columns are pointers so missing values persist as NULL and do
// not collide on the unique indexes.
type School struct {
	ID                  uint          `gorm:"primaryKey" json:"id"`
	Name                string        `gorm:"size:255;not null" json:"name"`
	Address             string        `gorm:"type:text" json:"address"`
	Taluka              string        `gorm:"size:128" json:"taluka"`
	District            string        `gorm:"size:128" json:"district"`
	State               string        `gorm:"size:128" json:"state"`
	PhoneNo             string        `gorm:"size:32" json:"phone_no"`
	Email               string        `gorm:"size:255" json:"email"`
	GeneralRegisterNo   string        `gorm:"size:64" json:"general_register_no"`
	SchoolRecognitionNo *string       `gorm:"size:64;uniqueIndex" json:"school_recognition_no,omitempty"`
	UDISENo             *string       `gorm:"size:64;uniqueIndex" json:"udise_no,omitempty"`
	AffiliationNo       string        `gorm:"size:64" json:"affiliation_no"`
	Board               string        `gorm:"size:64" json:"board"`
	Medium              string        `gorm:"size:64" json:"medium"`
	Status              status.Status `gorm:"size:16;not null;default:draft;index" json:"status"`
	Comment             string        `gorm:"type:text" json:"comment"`
	CreatedBy           *uint         `json:"created_by,omitempty"`
	UpdatedBy           *uint         `json:"updated_by,omitempty"`
	CreatedAt           time.Time     `json:"created_at"`
	UpdatedAt           time.Time     `json:"updated_at"`
}

// WorkflowStatus implements policy.Viewable.
func (s School) WorkflowStatus() status.Status {
	return s.Status
}

// Snapshot returns the auditable field values for change tracking.
func (s School) Snapshot() map[string]interface{} {
	return map[string]interface{}{
		"name":                  s.Name,
		"address":               s.Address,
		"taluka":                s.Taluka,
		"district":              s.District,
		"state":                 s.State,
		"phone_no":              s.PhoneNo,
		"email":                 s.Email,
		"general_register_no":   s.GeneralRegisterNo,
		"school_recognition_no": derefString(s.SchoolRecognitionNo),
		"udise_no":              derefString(s.UDISENo),
		"affiliation_no":        s.AffiliationNo,
		"board":                 s.Board,
		"medium":                s.Medium,
		"status":                string(s.Status),
		"comment":               s.Comment,
	}
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
