// Package repository is the persistence boundary for workflow records and
// the append-only audit and history tables. Every exported operation
// translates storage faults into tagged application errors at this boundary.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/vidyadoc/slc-api/internal/apperrors"
	"github.com/vidyadoc/slc-api/internal/status"
)

// WorkflowRecord is the minimal view of a record the workflow service needs:
// identity, current status, and a field snapshot for audit diffing.
type WorkflowRecord struct {
	ID       uint
	Status   status.Status
	Snapshot map[string]interface{}
}

// WorkflowStore is implemented by every repository whose records carry the
// workflow status. It lets one workflow service drive schools, students and
// certificates alike.
type WorkflowStore interface {
	Table() string
	GetWorkflow(ctx context.Context, id uint) (WorkflowRecord, error)
	UpdateWorkflow(ctx context.Context, id uint, updates map[string]interface{}) (WorkflowRecord, error)
	DeleteWorkflow(ctx context.Context, id uint) (WorkflowRecord, error)
}

// translateError converts raw gorm errors into tagged application errors.
// Unique violations become DuplicateIdentifier on the given fields so a race
// between two concurrent creates still surfaces as a 409, not a raw fault.
func translateError(err error, entity string, identifierFields ...string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperrors.NotFound(entity)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		if len(identifierFields) == 0 {
			identifierFields = []string{"identifier"}
		}
		return apperrors.DuplicateIdentifier(identifierFields...)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return apperrors.StorageUnavailable(err)
	default:
		return apperrors.StorageUnavailable(err)
	}
}

// applySort orders the query by a sort key from the allow-list. Unknown keys
// fall back to the default ordering instead of reaching the database, which
// closes the injection path through the sort parameter.
func applySort(query *gorm.DB, sortBy, sortOrder string, allowed map[string]string, defaultOrder string) *gorm.DB {
	column, ok := allowed[strings.ToLower(strings.TrimSpace(sortBy))]
	if !ok {
		return query.Order(defaultOrder)
	}

	direction := "ASC"
	if strings.EqualFold(strings.TrimSpace(sortOrder), "desc") {
		direction = "DESC"
	}

	return query.Order(fmt.Sprintf("%s %s", column, direction))
}

// applyPagination limits the query to the requested page. PageSize <= 0 means
// no pagination.
func applyPagination(query *gorm.DB, page, pageSize int) *gorm.DB {
	if pageSize <= 0 {
		return query
	}
	if page <= 0 {
		page = 1
	}
	return query.Limit(pageSize).Offset((page - 1) * pageSize)
}

// identifierValue normalizes an identifier from an updates map: strings are
// trimmed, nil and empty mean "clear".
func identifierValue(raw interface{}) (string, bool) {
	switch v := raw.(type) {
	case nil:
		return "", false
	case string:
		trimmed := strings.TrimSpace(v)
		return trimmed, trimmed != ""
	case *string:
		if v == nil {
			return "", false
		}
		trimmed := strings.TrimSpace(*v)
		return trimmed, trimmed != ""
	default:
		return fmt.Sprintf("%v", v), true
	}
}
