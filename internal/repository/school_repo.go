package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/vidyadoc/slc-api/internal/apperrors"
	"github.com/vidyadoc/slc-api/internal/models"
	"github.com/vidyadoc/slc-api/internal/policy"
	"github.com/vidyadoc/slc-api/internal/status"
)

const schoolTable = "schools"

var schoolIdentifierColumns = []string{"school_recognition_no", "udise_no"}

var schoolSortColumns = map[string]string{
	"name":       "name",
	"district":   "district",
	"board":      "board",
	"status":     "status",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

// SchoolFilter narrows school listings.
type SchoolFilter struct {
	Search    string
	District  string
	Board     string
	Status    status.Status
	Role      string
	SortBy    string
	SortOrder string
	Page      int
	PageSize  int
}

// SchoolRepository persists school records.
type SchoolRepository interface {
	WorkflowStore
	Create(ctx context.Context, school *models.School) error
	Update(ctx context.Context, id uint, updates map[string]interface{}) (models.School, error)
	FindByID(ctx context.Context, id uint) (models.School, error)
	List(ctx context.Context, filter SchoolFilter) ([]models.School, int64, error)
	Count(ctx context.Context, filter SchoolFilter) (int64, error)
	Delete(ctx context.Context, id uint) (models.School, error)
}

type schoolRepository struct {
	db *gorm.DB
}

// NewSchoolRepository constructs the school repository.
func NewSchoolRepository(db *gorm.DB) SchoolRepository {
	return &schoolRepository{db: db}
}

func (r *schoolRepository) Table() string {
	return schoolTable
}

func (r *schoolRepository) Create(ctx context.Context, school *models.School) error {
	identifiers := map[string]*string{
		"school_recognition_no": normalizePtr(school.SchoolRecognitionNo),
		"udise_no":              normalizePtr(school.UDISENo),
	}
	school.SchoolRecognitionNo = identifiers["school_recognition_no"]
	school.UDISENo = identifiers["udise_no"]

	if countIdentifiers(identifiers) == 0 {
		return apperrors.Validation("a school must carry at least one registration number", map[string]string{
			"school_recognition_no": "school_recognition_no or udise_no is required",
			"udise_no":              "school_recognition_no or udise_no is required",
		})
	}

	if err := r.checkDuplicates(ctx, identifiers, 0); err != nil {
		return err
	}

	if err := r.db.WithContext(ctx).Create(school).Error; err != nil {
		return translateError(err, "school", schoolIdentifierColumns...)
	}

	return nil
}

func (r *schoolRepository) Update(ctx context.Context, id uint, updates map[string]interface{}) (models.School, error) {
	current, err := r.FindByID(ctx, id)
	if err != nil {
		return models.School{}, err
	}

	identifiers := map[string]*string{
		"school_recognition_no": current.SchoolRecognitionNo,
		"udise_no":              current.UDISENo,
	}
	changed := map[string]*string{}
	for _, column := range schoolIdentifierColumns {
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

	if countIdentifiers(identifiers) == 0 {
		return models.School{}, apperrors.Validation("a school cannot lose its last registration number", map[string]string{
			"school_recognition_no": "at least one identifier must remain",
			"udise_no":              "at least one identifier must remain",
		})
	}

	if err := r.checkDuplicates(ctx, changed, id); err != nil {
		return models.School{}, err
	}

	tx := r.db.WithContext(ctx).Model(&models.School{}).Where("id = ?", id).Updates(updates)
	if tx.Error != nil {
		return models.School{}, translateError(tx.Error, "school", schoolIdentifierColumns...)
	}
	if tx.RowsAffected == 0 {
		return models.School{}, apperrors.NotFound("school")
	}

	return r.FindByID(ctx, id)
}

func (r *schoolRepository) FindByID(ctx context.Context, id uint) (models.School, error) {
	var school models.School
	if err := r.db.WithContext(ctx).First(&school, id).Error; err != nil {
		return models.School{}, translateError(err, "school")
	}
	return school, nil
}

func (r *schoolRepository) List(ctx context.Context, filter SchoolFilter) ([]models.School, int64, error) {
	query := r.filtered(ctx, filter)

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, translateError(err, "school")
	}

	query = applySort(query, filter.SortBy, filter.SortOrder, schoolSortColumns, "name ASC")
	query = applyPagination(query, filter.Page, filter.PageSize)

	var schools []models.School
	if err := query.Find(&schools).Error; err != nil {
		return nil, 0, translateError(err, "school")
	}

	return schools, total, nil
}

func (r *schoolRepository) Count(ctx context.Context, filter SchoolFilter) (int64, error) {
	var total int64
	if err := r.filtered(ctx, filter).Count(&total).Error; err != nil {
		return 0, translateError(err, "school")
	}
	return total, nil
}

func (r *schoolRepository) Delete(ctx context.Context, id uint) (models.School, error) {
	school, err := r.FindByID(ctx, id)
	if err != nil {
		return models.School{}, err
	}

	if err := r.db.WithContext(ctx).Delete(&models.School{}, id).Error; err != nil {
		return models.School{}, translateError(err, "school")
	}

	return school, nil
}

func (r *schoolRepository) GetWorkflow(ctx context.Context, id uint) (WorkflowRecord, error) {
	school, err := r.FindByID(ctx, id)
	if err != nil {
		return WorkflowRecord{}, err
	}
	return WorkflowRecord{ID: school.ID, Status: school.Status, Snapshot: school.Snapshot()}, nil
}

func (r *schoolRepository) UpdateWorkflow(ctx context.Context, id uint, updates map[string]interface{}) (WorkflowRecord, error) {
	school, err := r.Update(ctx, id, updates)
	if err != nil {
		return WorkflowRecord{}, err
	}
	return WorkflowRecord{ID: school.ID, Status: school.Status, Snapshot: school.Snapshot()}, nil
}

func (r *schoolRepository) DeleteWorkflow(ctx context.Context, id uint) (WorkflowRecord, error) {
	school, err := r.Delete(ctx, id)
	if err != nil {
		return WorkflowRecord{}, err
	}
	return WorkflowRecord{ID: school.ID, Status: school.Status, Snapshot: school.Snapshot()}, nil
}

func (r *schoolRepository) filtered(ctx context.Context, filter SchoolFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.School{})

	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ?", like)
	}
	if district := strings.TrimSpace(filter.District); district != "" {
		query = query.Where("district = ?", district)
	}
	if board := strings.TrimSpace(filter.Board); board != "" {
		query = query.Where("board = ?", board)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Role == policy.RoleUser {
		query = query.Where("status = ?", status.Accepted)
	}

	return query
}

func (r *schoolRepository) checkDuplicates(ctx context.Context, identifiers map[string]*string, excludeID uint) error {
	conflicts := make([]string, 0, len(identifiers))
	for column, value := range identifiers {
		if value == nil {
			continue
		}

		query := r.db.WithContext(ctx).Model(&models.School{}).Where(column+" = ?", *value)
		if excludeID > 0 {
			query = query.Where("id <> ?", excludeID)
		}

		var count int64
		if err := query.Count(&count).Error; err != nil {
			return translateError(err, "school")
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
