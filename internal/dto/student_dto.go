package dto

import (
	"time"

	"github.com/vidyadoc/slc-api/internal/models"
)

// StudentCreateRequest captures the payload for registering a student.
type StudentCreateRequest struct {
	StudentID          string `json:"student_id" validate:"omitempty,max=64"`
	UIDAadharNo        string `json:"uid_aadhar_no" validate:"omitempty,len=12,numeric"`
	FullName           string `json:"full_name" validate:"required,min=2,max=255"`
	FatherName         string `json:"father_name" validate:"omitempty,max=255"`
	MotherName         string `json:"mother_name" validate:"omitempty,max=255"`
	Surname            string `json:"surname" validate:"omitempty,max=128"`
	Nationality        string `json:"nationality" validate:"omitempty,max=64"`
	MotherTongue       string `json:"mother_tongue" validate:"omitempty,max=64"`
	Religion           string `json:"religion" validate:"omitempty,max=64"`
	Caste              string `json:"caste" validate:"omitempty,max=64"`
	SubCaste           string `json:"sub_caste" validate:"omitempty,max=64"`
	BirthPlaceVillage  string `json:"birth_place_village" validate:"omitempty,max=128"`
	BirthPlaceTaluka   string `json:"birth_place_taluka" validate:"omitempty,max=128"`
	BirthPlaceDistrict string `json:"birth_place_district" validate:"omitempty,max=128"`
	BirthPlaceState    string `json:"birth_place_state" validate:"omitempty,max=128"`
	BirthPlaceCountry  string `json:"birth_place_country" validate:"omitempty,max=64"`
	DateOfBirth        string `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
	DateOfBirthWords   string `json:"date_of_birth_words" validate:"omitempty,max=255"`
}

// StudentUpdateRequest captures partial update payloads for students.
type StudentUpdateRequest struct {
	StudentID          *string `json:"student_id" validate:"omitempty,max=64"`
	UIDAadharNo        *string `json:"uid_aadhar_no" validate:"omitempty,len=12,numeric"`
	FullName           *string `json:"full_name" validate:"omitempty,min=2,max=255"`
	FatherName         *string `json:"father_name" validate:"omitempty,max=255"`
	MotherName         *string `json:"mother_name" validate:"omitempty,max=255"`
	Surname            *string `json:"surname" validate:"omitempty,max=128"`
	Nationality        *string `json:"nationality" validate:"omitempty,max=64"`
	MotherTongue       *string `json:"mother_tongue" validate:"omitempty,max=64"`
	Religion           *string `json:"religion" validate:"omitempty,max=64"`
	Caste              *string `json:"caste" validate:"omitempty,max=64"`
	SubCaste           *string `json:"sub_caste" validate:"omitempty,max=64"`
	BirthPlaceVillage  *string `json:"birth_place_village" validate:"omitempty,max=128"`
	BirthPlaceTaluka   *string `json:"birth_place_taluka" validate:"omitempty,max=128"`
	BirthPlaceDistrict *string `json:"birth_place_district" validate:"omitempty,max=128"`
	BirthPlaceState    *string `json:"birth_place_state" validate:"omitempty,max=128"`
	BirthPlaceCountry  *string `json:"birth_place_country" validate:"omitempty,max=64"`
	DateOfBirth        *string `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
	DateOfBirthWords   *string `json:"date_of_birth_words" validate:"omitempty,max=255"`
}

// StudentListRequest defines filters for listing students.
type StudentListRequest struct {
	Page      int
	PageSize  int
	Search    string
	District  string
	Status    string
	SortBy    string
	SortOrder string
}

// StudentResponse serializes a student record.
type StudentResponse struct {
	ID                 uint       `json:"id"`
	StudentID          string     `json:"student_id,omitempty"`
	UIDAadharNo        string     `json:"uid_aadhar_no,omitempty"`
	FullName           string     `json:"full_name"`
	FatherName         string     `json:"father_name,omitempty"`
	MotherName         string     `json:"mother_name,omitempty"`
	Surname            string     `json:"surname,omitempty"`
	Nationality        string     `json:"nationality,omitempty"`
	MotherTongue       string     `json:"mother_tongue,omitempty"`
	Religion           string     `json:"religion,omitempty"`
	Caste              string     `json:"caste,omitempty"`
	SubCaste           string     `json:"sub_caste,omitempty"`
	BirthPlaceVillage  string     `json:"birth_place_village,omitempty"`
	BirthPlaceTaluka   string     `json:"birth_place_taluka,omitempty"`
	BirthPlaceDistrict string     `json:"birth_place_district,omitempty"`
	BirthPlaceState    string     `json:"birth_place_state,omitempty"`
	BirthPlaceCountry  string     `json:"birth_place_country,omitempty"`
	DateOfBirth        *time.Time `json:"date_of_birth,omitempty"`
	DateOfBirthWords   string     `json:"date_of_birth_words,omitempty"`
	Status             string     `json:"status"`
	Comment            string     `json:"comment,omitempty"`
	CreatedBy          *uint      `json:"created_by,omitempty"`
	UpdatedBy          *uint      `json:"updated_by,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// StudentListResponse wraps a paginated student listing.
type StudentListResponse struct {
	Items      []StudentResponse `json:"items"`
	Pagination PaginationMeta    `json:"pagination"`
}

// NewStudentResponse converts a student model into a DTO.
func NewStudentResponse(student models.Student) StudentResponse {
	return StudentResponse{
		ID:                 student.ID,
		StudentID:          stringValue(student.StudentID),
		UIDAadharNo:        stringValue(student.UIDAadharNo),
		FullName:           student.FullName,
		FatherName:         student.FatherName,
		MotherName:         student.MotherName,
		Surname:            student.Surname,
		Nationality:        student.Nationality,
		MotherTongue:       student.MotherTongue,
		Religion:           student.Religion,
		Caste:              student.Caste,
		SubCaste:           student.SubCaste,
		BirthPlaceVillage:  student.BirthPlaceVillage,
		BirthPlaceTaluka:   student.BirthPlaceTaluka,
		BirthPlaceDistrict: student.BirthPlaceDistrict,
		BirthPlaceState:    student.BirthPlaceState,
		BirthPlaceCountry:  student.BirthPlaceCountry,
		DateOfBirth:        student.DateOfBirth,
		DateOfBirthWords:   student.DateOfBirthWords,
		Status:             string(student.Status),
		Comment:            student.Comment,
		CreatedBy:          student.CreatedBy,
		UpdatedBy:          student.UpdatedBy,
		CreatedAt:          student.CreatedAt,
		UpdatedAt:          student.UpdatedAt,
	}
}

func stringValue(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
