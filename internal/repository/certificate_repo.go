package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/vidyadoc/slc-api/internal/apperrors"
	"github.com/vidyadoc/slc-api/internal/models"
	"github.com/vidyadoc/slc-api/internal/policy"
	"github.com/vidyadoc/slc-api/internal/status"
)

const certificateTable = "leaving_certificates"

var certificateSortColumns = map[string]string{
	"serial_no":    "serial_no",
	"leaving_date": "leaving_date",
	"status":       "status",
	"created_at":   "created_at",
	"updated_at":   "updated_at",
}

// CertificateFilter narrows certificate listings.
type CertificateFilter struct {
	SchoolID     uint
	StudentID    uint
	SerialPrefix string
	Status       status.Status
	LeavingFrom  *time.Time
	LeavingTo    *time.Time
	Role         string
	SortBy       string
	SortOrder    string
	Page         int
	PageSize     int
}

// CertificateRepository persists leaving certificates. FindByID resolves the
// read-only school and student joins used for certificate rendering.
type CertificateRepository interface {
	WorkflowStore
	Create(ctx context.Context, certificate *models.LeavingCertificate) error
	Update(ctx context.Context, id uint, updates map[string]interface{}) (models.LeavingCertificate, error)
	FindByID(ctx context.Context, id uint) (models.LeavingCertificate, error)
	List(ctx context.Context, filter CertificateFilter) ([]models.LeavingCertificate, int64, error)
	Count(ctx context.Context, filter CertificateFilter) (int64, error)
	Delete(ctx context.Context, id uint) (models.LeavingCertificate, error)
}

type certificateRepository struct {
	db *gorm.DB
}

// NewCertificateRepository constructs the certificate repository.
func NewCertificateRepository(db *gorm.DB) CertificateRepository {
	return &certificateRepository{db: db}
}

func (r *certificateRepository) Table() string {
	return certificateTable
}

func (r *certificateRepository) Create(ctx context.Context, certificate *models.LeavingCertificate) error {
	certificate.SerialNo = normalizePtr(certificate.SerialNo)
	if certificate.SerialNo == nil {
		return apperrors.Validation("a certificate must carry a serial number", map[string]string{
			"serial_no": "serial_no is required",
		})
	}
	if certificate.SchoolID == 0 || certificate.StudentID == 0 {
		return apperrors.Validation("a certificate must reference a school and a student", map[string]string{
			"school_id":  "school_id is required",
			"student_id": "student_id is required",
		})
	}

	if err := r.checkDuplicateSerial(ctx, certificate.SchoolID, *certificate.SerialNo, 0); err != nil {
		return err
	}

	if err := r.db.WithContext(ctx).Create(certificate).Error; err != nil {
		return translateError(err, "certificate", "serial_no")
	}

	return nil
}

func (r *certificateRepository) Update(ctx context.Context, id uint, updates map[string]interface{}) (models.LeavingCertificate, error) {
	current, err := r.FindByID(ctx, id)
	if err != nil {
		return models.LeavingCertificate{}, err
	}

	if raw, ok := updates["serial_no"]; ok {
		value, present := identifierValue(raw)
		if !present {
			// The serial number is the certificate's only identifier.
			return models.LeavingCertificate{}, apperrors.Validation("a certificate cannot lose its serial number", map[string]string{
				"serial_no": "serial_no must remain set",
			})
		}
		updates["serial_no"] = value

		if value != derefSerial(current.SerialNo) {
			if err := r.checkDuplicateSerial(ctx, current.SchoolID, value, id); err != nil {
				return models.LeavingCertificate{}, err
			}
		}
	}

	tx := r.db.WithContext(ctx).Model(&models.LeavingCertificate{}).Where("id = ?", id).Updates(updates)
	if tx.Error != nil {
		return models.LeavingCertificate{}, translateError(tx.Error, "certificate", "serial_no")
	}
	if tx.RowsAffected == 0 {
		return models.LeavingCertificate{}, apperrors.NotFound("certificate")
	}

	return r.FindByID(ctx, id)
}

func (r *certificateRepository) FindByID(ctx context.Context, id uint) (models.LeavingCertificate, error) {
	var certificate models.LeavingCertificate
	err := r.db.WithContext(ctx).
		Preload("School").
		Preload("Student").
		First(&certificate, id).Error
	if err != nil {
		return models.LeavingCertificate{}, translateError(err, "certificate")
	}
	return certificate, nil
}

func (r *certificateRepository) List(ctx context.Context, filter CertificateFilter) ([]models.LeavingCertificate, int64, error) {
	query := r.filtered(ctx, filter)

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, translateError(err, "certificate")
	}

	query = applySort(query, filter.SortBy, filter.SortOrder, certificateSortColumns, "created_at DESC")
	query = applyPagination(query, filter.Page, filter.PageSize)

	var certificates []models.LeavingCertificate
	if err := query.Preload("School").Preload("Student").Find(&certificates).Error; err != nil {
		return nil, 0, translateError(err, "certificate")
	}

	return certificates, total, nil
}

func (r *certificateRepository) Count(ctx context.Context, filter CertificateFilter) (int64, error) {
	var total int64
	if err := r.filtered(ctx, filter).Count(&total).Error; err != nil {
		return 0, translateError(err, "certificate")
	}
	return total, nil
}

func (r *certificateRepository) Delete(ctx context.Context, id uint) (models.LeavingCertificate, error) {
	certificate, err := r.FindByID(ctx, id)
	if err != nil {
		return models.LeavingCertificate{}, err
	}

	if err := r.db.WithContext(ctx).Delete(&models.LeavingCertificate{}, id).Error; err != nil {
		return models.LeavingCertificate{}, translateError(err, "certificate")
	}

	return certificate, nil
}

func (r *certificateRepository) GetWorkflow(ctx context.Context, id uint) (WorkflowRecord, error) {
	certificate, err := r.FindByID(ctx, id)
	if err != nil {
		return WorkflowRecord{}, err
	}
	return WorkflowRecord{ID: certificate.ID, Status: certificate.Status, Snapshot: certificate.Snapshot()}, nil
}

func (r *certificateRepository) UpdateWorkflow(ctx context.Context, id uint, updates map[string]interface{}) (WorkflowRecord, error) {
	certificate, err := r.Update(ctx, id, updates)
	if err != nil {
		return WorkflowRecord{}, err
	}
	return WorkflowRecord{ID: certificate.ID, Status: certificate.Status, Snapshot: certificate.Snapshot()}, nil
}

func (r *certificateRepository) DeleteWorkflow(ctx context.Context, id uint) (WorkflowRecord, error) {
	certificate, err := r.Delete(ctx, id)
	if err != nil {
		return WorkflowRecord{}, err
	}
	return WorkflowRecord{ID: certificate.ID, Status: certificate.Status, Snapshot: certificate.Snapshot()}, nil
}

func (r *certificateRepository) filtered(ctx context.Context, filter CertificateFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.LeavingCertificate{})

	if filter.SchoolID > 0 {
		query = query.Where("school_id = ?", filter.SchoolID)
	}
	if filter.StudentID > 0 {
		query = query.Where("student_id = ?", filter.StudentID)
	}
	if prefix := strings.TrimSpace(filter.SerialPrefix); prefix != "" {
		query = query.Where("serial_no LIKE ?", prefix+"%")
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.LeavingFrom != nil {
		query = query.Where("leaving_date >= ?", *filter.LeavingFrom)
	}
	if filter.LeavingTo != nil {
		query = query.Where("leaving_date <= ?", *filter.LeavingTo)
	}
	if filter.Role == policy.RoleUser {
		query = query.Where("status = ?", status.Accepted)
	}

	return query
}

func (r *certificateRepository) checkDuplicateSerial(ctx context.Context, schoolID uint, serial string, excludeID uint) error {
	query := r.db.WithContext(ctx).Model(&models.LeavingCertificate{}).
		Where("school_id = ? AND serial_no = ?", schoolID, serial)
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return translateError(err, "certificate")
	}
	if count > 0 {
		return apperrors.DuplicateIdentifier("serial_no")
	}
	return nil
}

func derefSerial(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
