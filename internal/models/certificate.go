package models

import (
	"time"

	"github.com/vidyadoc/slc-api/internal/status"
)

// LeavingCertificate records the issuance workflow of a school-leaving
// certificate. SerialNo is unique within a school; the composite index lets
// different schools reuse their own counters.
type LeavingCertificate struct {
	ID                    uint          `gorm:"primaryKey" json:"id"`
	SchoolID              uint          `gorm:"not null;index;uniqueIndex:idx_certificates_school_serial" json:"school_id"`
	StudentID             uint          `gorm:"not null;index" json:"student_id"`
	SerialNo              *string       `gorm:"size:64;uniqueIndex:idx_certificates_school_serial" json:"serial_no,omitempty"`
	PreviousSchool        string        `gorm:"size:255" json:"previous_school"`
	PreviousClass         string        `gorm:"size:64" json:"previous_class"`
	AdmissionDate         *time.Time    `json:"admission_date,omitempty"`
	AdmissionClass        string        `gorm:"size:64" json:"admission_class"`
	ProgressInStudies     string        `gorm:"size:128" json:"progress_in_studies"`
	Conduct               string        `gorm:"size:128" json:"conduct"`
	LeavingDate           *time.Time    `json:"leaving_date,omitempty"`
	LeavingClass          string        `gorm:"size:64" json:"leaving_class"`
	StudyingClassAndSince string        `gorm:"size:128" json:"studying_class_and_since"`
	ReasonForLeaving      string        `gorm:"type:text" json:"reason_for_leaving"`
	Remarks               string        `gorm:"type:text" json:"remarks"`
	GeneralRegisterRef    string        `gorm:"size:64" json:"general_register_ref"`
	CertificateDate       *time.Time    `json:"certificate_date,omitempty"`
	ClassTeacherName      string        `gorm:"size:255" json:"class_teacher_name"`
	ClerkName             string        `gorm:"size:255" json:"clerk_name"`
	HeadmasterName        string        `gorm:"size:255" json:"headmaster_name"`
	Status                status.Status `gorm:"size:16;not null;default:draft;index" json:"status"`
	Comment               string        `gorm:"type:text" json:"comment"`
	CreatedBy             *uint         `json:"created_by,omitempty"`
	UpdatedBy             *uint         `json:"updated_by,omitempty"`
	CreatedAt             time.Time     `json:"created_at"`
	UpdatedAt             time.Time     `json:"updated_at"`

	// Read-only joins resolved for display; never written back.
	School  *School  `gorm:"foreignKey:SchoolID" json:"school,omitempty"`
	Student *Student `gorm:"foreignKey:StudentID" json:"student,omitempty"`
}

// WorkflowStatus implements policy.Viewable.
func (c LeavingCertificate) WorkflowStatus() status.Status {
	return c.Status
}

// Snapshot returns the auditable field values for change tracking.
func (c LeavingCertificate) Snapshot() map[string]interface{} {
	return map[string]interface{}{
		"serial_no":                derefString(c.SerialNo),
		"previous_school":          c.PreviousSchool,
		"previous_class":           c.PreviousClass,
		"admission_date":           formatDate(c.AdmissionDate),
		"admission_class":          c.AdmissionClass,
		"progress_in_studies":      c.ProgressInStudies,
		"conduct":                  c.Conduct,
		"leaving_date":             formatDate(c.LeavingDate),
		"leaving_class":            c.LeavingClass,
		"studying_class_and_since": c.StudyingClassAndSince,
		"reason_for_leaving":       c.ReasonForLeaving,
		"remarks":                  c.Remarks,
		"general_register_ref":     c.GeneralRegisterRef,
		"certificate_date":         formatDate(c.CertificateDate),
		"class_teacher_name":       c.ClassTeacherName,
		"clerk_name":               c.ClerkName,
		"headmaster_name":          c.HeadmasterName,
		"status":                   string(c.Status),
		"comment":                  c.Comment,
	}
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
