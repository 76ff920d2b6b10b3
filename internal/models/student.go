package models

import (
	"time"

	"github.com/vidyadoc/slc-api/internal/status"
)

// Student is a learner whose leaving certificate may be issued. StudentID is
// the general-register number printed on the certificate; UIDAadharNo is the
// national identifier. At least one of the two must be present.
type Student struct {
	ID                 uint          `gorm:"primaryKey" json:"id"`
	StudentID          *string       `gorm:"size:64;uniqueIndex" json:"student_id,omitempty"`
	UIDAadharNo        *string       `gorm:"size:16;uniqueIndex" json:"uid_aadhar_no,omitempty"`
	FullName           string        `gorm:"size:255;not null" json:"full_name"`
	FatherName         string        `gorm:"size:255" json:"father_name"`
	MotherName         string        `gorm:"size:255" json:"mother_name"`
	Surname            string        `gorm:"size:128" json:"surname"`
	Nationality        string        `gorm:"size:64" json:"nationality"`
	MotherTongue       string        `gorm:"size:64" json:"mother_tongue"`
	Religion           string        `gorm:"size:64" json:"religion"`
	Caste              string        `gorm:"size:64" json:"caste"`
	SubCaste           string        `gorm:"size:64" json:"sub_caste"`
	BirthPlaceVillage  string        `gorm:"size:128" json:"birth_place_village"`
	BirthPlaceTaluka   string        `gorm:"size:128" json:"birth_place_taluka"`
	BirthPlaceDistrict string        `gorm:"size:128" json:"birth_place_district"`
	BirthPlaceState    string        `gorm:"size:128" json:"birth_place_state"`
	BirthPlaceCountry  string        `gorm:"size:64;default:India" json:"birth_place_country"`
	DateOfBirth        *time.Time    `json:"date_of_birth,omitempty"`
	DateOfBirthWords   string        `gorm:"size:255" json:"date_of_birth_words"`
	Status             status.Status `gorm:"size:16;not null;default:draft;index" json:"status"`
	Comment            string        `gorm:"type:text" json:"comment"`
	CreatedBy          *uint         `json:"created_by,omitempty"`
	UpdatedBy          *uint         `json:"updated_by,omitempty"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

// WorkflowStatus implements policy.Viewable.
func (s Student) WorkflowStatus() status.Status {
	return s.Status
}

// Snapshot returns the auditable field values for change tracking.
func (s Student) Snapshot() map[string]interface{} {
	dob := ""
	if s.DateOfBirth != nil {
		dob = s.DateOfBirth.Format("2006-01-02")
	}

	return map[string]interface{}{
		"student_id":           derefString(s.StudentID),
		"uid_aadhar_no":        derefString(s.UIDAadharNo),
		"full_name":            s.FullName,
		"father_name":          s.FatherName,
		"mother_name":          s.MotherName,
		"surname":              s.Surname,
		"nationality":          s.Nationality,
		"mother_tongue":        s.MotherTongue,
		"religion":             s.Religion,
		"caste":                s.Caste,
		"sub_caste":            s.SubCaste,
		"birth_place_village":  s.BirthPlaceVillage,
		"birth_place_taluka":   s.BirthPlaceTaluka,
		"birth_place_district": s.BirthPlaceDistrict,
		"birth_place_state":    s.BirthPlaceState,
		"birth_place_country":  s.BirthPlaceCountry,
		"date_of_birth":        dob,
		"date_of_birth_words":  s.DateOfBirthWords,
		"status":               string(s.Status),
		"comment":              s.Comment,
	}
}
