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

const studentTable = "students"

var studentIdentifierColumns = []string{"student_id", "uid_aadhar_no"}

var studentSortColumns = map[string]string{
	"full_name":     "full_name",
	"surname":       "surname",
	"date_of_birth": "date_of_birth",
	"status":        "status",
	"created_at":    "created_at",
	"updated_at":    "updated_at",
}

// StudentFilter narrows student listings.
type StudentFilter struct {
	Search      string
	Status      status.Status
	District    string
	BornFrom    *time.Time
	BornTo      *time.Time
	Role        string
	SortBy      string
	SortOrder   string
	Page        int
	PageSize    int
}

// StudentRepository persists student records.
type StudentRepository interface {
	WorkflowStore
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, id uint, updates map[string]interface{}) (models.Student, error)
	FindByID(ctx context.Context, id uint) (models.Student, error)
	List(ctx context.Context, filter StudentFilter) ([]models.Student, int64, error)
	Count(ctx context.Context, filter StudentFilter) (int64, error)
	Delete(ctx context.Context, id uint) (models.Student, error)
}

type studentRepository struct {
	db *gorm.DB
}

// NewStudentRepository constructs the student repository.
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) Table() string {
	return studentTable
}

func (r *studentRepository) Create(ctx context.Context, student *models.Student) error {
	identifiers := map[string]*string{
		"student_id":    normalizePtr(student.StudentID),
		"uid_aadhar_no": normalizePtr(student.UIDAadharNo),
	}
	student.StudentID = identifiers["student_id"]
	student.UIDAadharNo = identifiers["uid_aadhar_no"]

	if countIdentifiers(identifiers) == 0 {
		return apperrors.Validation("a student must carry at least one identifier", map[string]string{
			"student_id":    "student_id or uid_aadhar_no is required",
			"uid_aadhar_no": "student_id or uid_aadhar_no is required",
		})
	}

	if err := r.checkDuplicates(ctx, identifiers, 0); err != nil {
		return err
	}

	if err := r.db.WithContext(ctx).Create(student).Error; err != nil {
		return translateError(err, "student", studentIdentifierColumns...)
	}

	return nil
}

func (r *studentRepository) Update(ctx context.Context, id uint, updates map[string]interface{}) (models.Student, error) {
	current, err := r.FindByID(ctx, id)
	if err != nil {
		return models.Student{}, err
	}

	identifiers := map[string]*string{
		"student_id":    current.StudentID,
		"uid_aadhar_no": current.UIDAadharNo,
	}
	changed := map[string]*string{}
	for _, column := range studentIdentifierColumns {
		raw, ok := updates[column]
		if !ok {
			continue
		}
		value, present := identifierValue(raw)
		if present {
			identifiers[column] = &value
			changed[column] = &value
			updates[column] = value
		} else {
			identifiers[column] = nil
			updates[column] = nil
		}
	}

	// An identifier can never be fully removed once present.
	if countIdentifiers(identifiers) == 0 {
		return models.Student{}, apperrors.Validation("a student cannot lose its last identifier", map[string]string{
			"student_id":    "at least one identifier must remain",
			"uid_aadhar_no": "at least one identifier must remain",
		})
	}

	if err := r.checkDuplicates(ctx, changed, id); err != nil {
		return models.Student{}, err
	}

	tx := r.db.WithContext(ctx).Model(&models.Student{}).Where("id = ?", id).Updates(updates)
	if tx.Error != nil {
		return models.Student{}, translateError(tx.Error, "student", studentIdentifierColumns...)
	}
	if tx.RowsAffected == 0 {
		return models.Student{}, apperrors.NotFound("student")
	}

	return r.FindByID(ctx, id)
}

func (r *studentRepository) FindByID(ctx context.Context, id uint) (models.Student, error) {
	var student models.Student
	if err := r.db.WithContext(ctx).First(&student, id).Error; err != nil {
		return models.Student{}, translateError(err, "student")
	}
	return student, nil
}

func (r *studentRepository) List(ctx context.Context, filter StudentFilter) ([]models.Student, int64, error) {
	query := r.filtered(ctx, filter)

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, translateError(err, "student")
	}

	query = applySort(query, filter.SortBy, filter.SortOrder, studentSortColumns, "created_at DESC")
	query = applyPagination(query, filter.Page, filter.PageSize)

	var students []models.Student
	if err := query.Find(&students).Error; err != nil {
		return nil, 0, translateError(err, "student")
	}

	return students, total, nil
}

func (r *studentRepository) Count(ctx context.Context, filter StudentFilter) (int64, error) {
	var total int64
	if err := r.filtered(ctx, filter).Count(&total).Error; err != nil {
		return 0, translateError(err, "student")
	}
	return total, nil
}

func (r *studentRepository) Delete(ctx context.Context, id uint) (models.Student, error) {
	student, err := r.FindByID(ctx, id)
	if err != nil {
		return models.Student{}, err
	}

	if err := r.db.WithContext(ctx).Delete(&models.Student{}, id).Error; err != nil {
		return models.Student{}, translateError(err, "student")
	}

	return student, nil
}

func (r *studentRepository) GetWorkflow(ctx context.Context, id uint) (WorkflowRecord, error) {
	student, err := r.FindByID(ctx, id)
	if err != nil {
		return WorkflowRecord{}, err
	}
	return WorkflowRecord{ID: student.ID, Status: student.Status, Snapshot: student.Snapshot()}, nil
}

func (r *studentRepository) UpdateWorkflow(ctx context.Context, id uint, updates map[string]interface{}) (WorkflowRecord, error) {
	student, err := r.Update(ctx, id, updates)
	if err != nil {
		return WorkflowRecord{}, err
	}
	return WorkflowRecord{ID: student.ID, Status: student.Status, Snapshot: student.Snapshot()}, nil
}

func (r *studentRepository) DeleteWorkflow(ctx context.Context, id uint) (WorkflowRecord, error) {
	student, err := r.Delete(ctx, id)
	if err != nil {
		return WorkflowRecord{}, err
	}
	return WorkflowRecord{ID: student.ID, Status: student.Status, Snapshot: student.Snapshot()}, nil
}

func (r *studentRepository) filtered(ctx context.Context, filter StudentFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.Student{})

	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(full_name) LIKE ? OR LOWER(surname) LIKE ?", like, like)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if district := strings.TrimSpace(filter.District); district != "" {
		query = query.Where("birth_place_district = ?", district)
	}
	if filter.BornFrom != nil {
		query = query.Where("date_of_birth >= ?", *filter.BornFrom)
	}
	if filter.BornTo != nil {
		query = query.Where("date_of_birth <= ?", *filter.BornTo)
	}
	if filter.Role == policy.RoleUser {
		query = query.Where("status = ?", status.Accepted)
	}

	return query
}

func (r *studentRepository) checkDuplicates(ctx context.Context, identifiers map[string]*string, excludeID uint) error {
	conflicts := make([]string, 0, len(identifiers))
	for column, value := range identifiers {
		if value == nil {
			continue
		}

		query := r.db.WithContext(ctx).Model(&models.Student{}).Where(column+" = ?", *value)
		if excludeID > 0 {
			query = query.Where("id <> ?", excludeID)
		}

		var count int64
		if err := query.Count(&count).Error; err != nil {
			return translateError(err, "student")
		}
		if count > 0 {
			conflicts = append(conflicts, column)
		}
	}

	if len(conflicts) > 0 {
		return apperrors.DuplicateIdentifier(conflicts...)
	}
	return nil
}

func normalizePtr(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func countIdentifiers(identifiers map[string]*string) int {
	count := 0
	for _, value := range identifiers {
		if value != nil {
			count++
		}
	}
	return count
}
