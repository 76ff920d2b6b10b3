package dto

import (
	"time"

	"github.com/vidyadoc/slc-api/internal/models"
)

// CertificateCreateRequest captures the payload for drafting a certificate.
type CertificateCreateRequest struct {
	SchoolID              uint   `json:"school_id" validate:"required,gt=0"`
	StudentID             uint   `json:"student_id" validate:"required,gt=0"`
	SerialNo              string `json:"serial_no" validate:"required,max=64"`
	PreviousSchool        string `json:"previous_school" validate:"omitempty,max=255"`
	PreviousClass         string `json:"previous_class" validate:"omitempty,max=64"`
	AdmissionDate         string `json:"admission_date" validate:"omitempty,datetime=2006-01-02"`
	AdmissionClass        string `json:"admission_class" validate:"omitempty,max=64"`
	ProgressInStudies     string `json:"progress_in_studies" validate:"omitempty,max=128"`
	Conduct               string `json:"conduct" validate:"omitempty,max=128"`
	LeavingDate           string `json:"leaving_date" validate:"omitempty,datetime=2006-01-02"`
	LeavingClass          string `json:"leaving_class" validate:"omitempty,max=64"`
	StudyingClassAndSince string `json:"studying_class_and_since" validate:"omitempty,max=128"`
	ReasonForLeaving      string `json:"reason_for_leaving" validate:"omitempty,max=2000"`
	Remarks               string `json:"remarks" validate:"omitempty,max=2000"`
	GeneralRegisterRef    string `json:"general_register_ref" validate:"omitempty,max=64"`
	CertificateDate       string `json:"certificate_date" validate:"omitempty,datetime=2006-01-02"`
	ClassTeacherName      string `json:"class_teacher_name" validate:"omitempty,max=255"`
	ClerkName             string `json:"clerk_name" validate:"omitempty,max=255"`
	HeadmasterName        string `json:"headmaster_name" validate:"omitempty,max=255"`
}

// CertificateUpdateRequest captures partial update payloads for certificates.
type CertificateUpdateRequest struct {
	SerialNo              *string `json:"serial_no" validate:"omitempty,max=64"`
	PreviousSchool        *string `json:"previous_school" validate:"omitempty,max=255"`
	PreviousClass         *string `json:"previous_class" validate:"omitempty,max=64"`
	AdmissionDate         *string `json:"admission_date" validate:"omitempty,datetime=2006-01-02"`
	AdmissionClass        *string `json:"admission_class" validate:"omitempty,max=64"`
	ProgressInStudies     *string `json:"progress_in_studies" validate:"omitempty,max=128"`
	Conduct               *string `json:"conduct" validate:"omitempty,max=128"`
	LeavingDate           *string `json:"leaving_date" validate:"omitempty,datetime=2006-01-02"`
	LeavingClass          *string `json:"leaving_class" validate:"omitempty,max=64"`
	StudyingClassAndSince *string `json:"studying_class_and_since" validate:"omitempty,max=128"`
	ReasonForLeaving      *string `json:"reason_for_leaving" validate:"omitempty,max=2000"`
	Remarks               *string `json:"remarks" validate:"omitempty,max=2000"`
	GeneralRegisterRef    *string `json:"general_register_ref" validate:"omitempty,max=64"`
	CertificateDate       *string `json:"certificate_date" validate:"omitempty,datetime=2006-01-02"`
	ClassTeacherName      *string `json:"class_teacher_name" validate:"omitempty,max=255"`
	ClerkName             *string `json:"clerk_name" validate:"omitempty,max=255"`
	HeadmasterName        *string `json:"headmaster_name" validate:"omitempty,max=255"`
}

// CertificateListRequest defines filters for listing certificates.
type CertificateListRequest struct {
	Page         int
	PageSize     int
	SchoolID     uint
	StudentID    uint
	SerialPrefix string
	Status       string
	LeavingFrom  string
	LeavingTo    string
	SortBy       string
	SortOrder    string
}

// CertificateSchoolSummary carries the read-only school fields printed on
// the certificate.
type CertificateSchoolSummary struct {
	ID                uint   `json:"id"`
	Name              string `json:"name"`
	Address           string `json:"address,omitempty"`
	Taluka            string `json:"taluka,omitempty"`
	District          string `json:"district,omitempty"`
	State             string `json:"state,omitempty"`
	GeneralRegisterNo string `json:"general_register_no,omitempty"`
	Board             string `json:"board,omitempty"`
	Medium            string `json:"medium,omitempty"`
}

// CertificateStudentSummary carries the read-only student fields printed on
// the certificate.
type CertificateStudentSummary struct {
	ID               uint       `json:"id"`
	StudentID        string     `json:"student_id,omitempty"`
	UIDAadharNo      string     `json:"uid_aadhar_no,omitempty"`
	FullName         string     `json:"full_name"`
	FatherName       string     `json:"father_name,omitempty"`
	MotherName       string     `json:"mother_name,omitempty"`
	Surname          string     `json:"surname,omitempty"`
	DateOfBirth      *time.Time `json:"date_of_birth,omitempty"`
	DateOfBirthWords string     `json:"date_of_birth_words,omitempty"`
}

// CertificateResponse serializes a certificate together with its joined
// display fields.
type CertificateResponse struct {
	ID                    uint                       `json:"id"`
	SchoolID              uint                       `json:"school_id"`
	StudentID             uint                       `json:"student_id"`
	SerialNo              string                     `json:"serial_no,omitempty"`
	PreviousSchool        string                     `json:"previous_school,omitempty"`
	PreviousClass         string                     `json:"previous_class,omitempty"`
	AdmissionDate         *time.Time                 `json:"admission_date,omitempty"`
	AdmissionClass        string                     `json:"admission_class,omitempty"`
	ProgressInStudies     string                     `json:"progress_in_studies,omitempty"`
	Conduct               string                     `json:"conduct,omitempty"`
	LeavingDate           *time.Time                 `json:"leaving_date,omitempty"`
	LeavingClass          string                     `json:"leaving_class,omitempty"`
	StudyingClassAndSince string                     `json:"studying_class_and_since,omitempty"`
	ReasonForLeaving      string                     `json:"reason_for_leaving,omitempty"`
	Remarks               string                     `json:"remarks,omitempty"`
	GeneralRegisterRef    string                     `json:"general_register_ref,omitempty"`
	CertificateDate       *time.Time                 `json:"certificate_date,omitempty"`
	ClassTeacherName      string                     `json:"class_teacher_name,omitempty"`
	ClerkName             string                     `json:"clerk_name,omitempty"`
	HeadmasterName        string                     `json:"headmaster_name,omitempty"`
	Status                string                     `json:"status"`
	Comment               string                     `json:"comment,omitempty"`
	CreatedBy             *uint                      `json:"created_by,omitempty"`
	UpdatedBy             *uint                      `json:"updated_by,omitempty"`
	CreatedAt             time.Time                  `json:"created_at"`
	UpdatedAt             time.Time                  `json:"updated_at"`
	School                *CertificateSchoolSummary  `json:"school,omitempty"`
	Student               *CertificateStudentSummary `json:"student,omitempty"`
}

// CertificateListResponse wraps a paginated certificate listing.
type CertificateListResponse struct {
	Items      []CertificateResponse `json:"items"`
	Pagination PaginationMeta        `json:"pagination"`
}

// NewCertificateResponse converts a certificate model into a DTO.
func NewCertificateResponse(certificate models.LeavingCertificate) CertificateResponse {
	response := CertificateResponse{
		ID:                    certificate.ID,
		SchoolID:              certificate.SchoolID,
		StudentID:             certificate.StudentID,
		SerialNo:              stringValue(certificate.SerialNo),
		PreviousSchool:        certificate.PreviousSchool,
		PreviousClass:         certificate.PreviousClass,
		AdmissionDate:         certificate.AdmissionDate,
		AdmissionClass:        certificate.AdmissionClass,
		ProgressInStudies:     certificate.ProgressInStudies,
		Conduct:               certificate.Conduct,
		LeavingDate:           certificate.LeavingDate,
		LeavingClass:          certificate.LeavingClass,
		StudyingClassAndSince: certificate.StudyingClassAndSince,
		ReasonForLeaving:      certificate.ReasonForLeaving,
		Remarks:               certificate.Remarks,
		GeneralRegisterRef:    certificate.GeneralRegisterRef,
		CertificateDate:       certificate.CertificateDate,
		ClassTeacherName:      certificate.ClassTeacherName,
		ClerkName:             certificate.ClerkName,
		HeadmasterName:        certificate.HeadmasterName,
		Status:                string(certificate.Status),
		Comment:               certificate.Comment,
		CreatedBy:             certificate.CreatedBy,
		UpdatedBy:             certificate.UpdatedBy,
		CreatedAt:             certificate.CreatedAt,
		UpdatedAt:             certificate.UpdatedAt,
	}

	if certificate.School != nil {
		response.School = &CertificateSchoolSummary{
			ID:                certificate.School.ID,
			Name:              certificate.School.Name,
			Address:           certificate.School.Address,
			Taluka:            certificate.School.Taluka,
			District:          certificate.School.District,
			State:             certificate.School.State,
			GeneralRegisterNo: certificate.School.GeneralRegisterNo,
			Board:             certificate.School.Board,
			Medium:            certificate.School.Medium,
		}
	}
	if certificate.Student != nil {
		response.Student = &CertificateStudentSummary{
			ID:               certificate.Student.ID,
			StudentID:        stringValue(certificate.Student.StudentID),
			UIDAadharNo:      stringValue(certificate.Student.UIDAadharNo),
			FullName:         certificate.Student.FullName,
			FatherName:       certificate.Student.FatherName,
			MotherName:       certificate.Student.MotherName,
			Surname:          certificate.Student.Surname,
			DateOfBirth:      certificate.Student.DateOfBirth,
			DateOfBirthWords: certificate.Student.DateOfBirthWords,
		}
	}

	return response
}
