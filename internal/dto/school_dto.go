package dto

import (
	"time"

	"github.com/vidyadoc/slc-api/internal/models"
)

// SchoolCreateRequest captures the payload for registering a school.
type SchoolCreateRequest struct {
	Name                string `json:"name" validate:"required,min=2,max=255"`
	Address             string `json:"address" validate:"omitempty,max=2000"`
	Taluka              string `json:"taluka" validate:"omitempty,max=128"`
	District            string `json:"district" validate:"omitempty,max=128"`
	State               string `json:"state" validate:"omitempty,max=128"`
	PhoneNo             string `json:"phone_no" validate:"omitempty,max=32"`
	Email               string `json:"email" validate:"omitempty,email"`
	GeneralRegisterNo   string `json:"general_register_no" validate:"omitempty,max=64"`
	SchoolRecognitionNo string `json:"school_recognition_no" validate:"omitempty,max=64"`
	UDISENo             string `json:"udise_no" validate:"omitempty,max=64"`
	AffiliationNo       string `json:"affiliation_no" validate:"omitempty,max=64"`
	Board               string `json:"board" validate:"omitempty,max=64"`
	Medium              string `json:"medium" validate:"omitempty,max=64"`
}

// SchoolUpdateRequest captures partial update payloads for schools.
type SchoolUpdateRequest struct {
	Name                *string `json:"name" validate:"omitempty,min=2,max=255"`
	Address             *string `json:"address" validate:"omitempty,max=2000"`
	Taluka              *string `json:"taluka" validate:"omitempty,max=128"`
	District            *string `json:"district" validate:"omitempty,max=128"`
	State               *string `json:"state" validate:"omitempty,max=128"`
	PhoneNo             *string `json:"phone_no" validate:"omitempty,max=32"`
	Email               *string `json:"email" validate:"omitempty,email"`
	GeneralRegisterNo   *string `json:"general_register_no" validate:"omitempty,max=64"`
	SchoolRecognitionNo *string `json:"school_recognition_no" validate:"omitempty,max=64"`
	UDISENo             *string `json:"udise_no" validate:"omitempty,max=64"`
	AffiliationNo       *string `json:"affiliation_no" validate:"omitempty,max=64"`
	Board               *string `json:"board" validate:"omitempty,max=64"`
	Medium              *string `json:"medium" validate:"omitempty,max=64"`
}

// SchoolListRequest defines filters for listing schools.
type SchoolListRequest struct {
	Page      int
	PageSize  int
	Search    string
	District  string
	Board     string
	Status    string
	SortBy    string
	SortOrder string
}

// SchoolResponse serializes a school record.
type SchoolResponse struct {
	ID                  uint      `json:"id"`
	Name                string    `json:"name"`
	Address             string    `json:"address,omitempty"`
	Taluka              string    `json:"taluka,omitempty"`
	District            string    `json:"district,omitempty"`
	State               string    `json:"state,omitempty"`
	PhoneNo             string    `json:"phone_no,omitempty"`
	Email               string    `json:"email,omitempty"`
	GeneralRegisterNo   string    `json:"general_register_no,omitempty"`
	SchoolRecognitionNo string    `json:"school_recognition_no,omitempty"`
	UDISENo             string    `json:"udise_no,omitempty"`
	AffiliationNo       string    `json:"affiliation_no,omitempty"`
	Board               string    `json:"board,omitempty"`
	Medium              string    `json:"medium,omitempty"`
	Status              string    `json:"status"`
	Comment             string    `json:"comment,omitempty"`
	CreatedBy           *uint     `json:"created_by,omitempty"`
	UpdatedBy           *uint     `json:"updated_by,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// SchoolListResponse wraps a paginated school listing.
type SchoolListResponse struct {
	Items      []SchoolResponse `json:"items"`
	Pagination PaginationMeta   `json:"pagination"`
}

// NewSchoolResponse converts a school model into a DTO.
func NewSchoolResponse(school models.School) SchoolResponse {
	return SchoolResponse{
		ID:                  school.ID,
		Name:                school.Name,
		Address:             school.Address,
		Taluka:              school.Taluka,
		District:            school.District,
		State:               school.State,
		PhoneNo:             school.PhoneNo,
		Email:               school.Email,
		GeneralRegisterNo:   school.GeneralRegisterNo,
		SchoolRecognitionNo: stringValue(school.SchoolRecognitionNo),
		UDISENo:             stringValue(school.UDISENo),
		AffiliationNo:       school.AffiliationNo,
		Board:               school.Board,
		Medium:              school.Medium,
		Status:              string(school.Status),
		Comment:             school.Comment,
		CreatedBy:           school.CreatedBy,
		UpdatedBy:           school.UpdatedBy,
		CreatedAt:           school.CreatedAt,
		UpdatedAt:           school.UpdatedAt,
	}
}
