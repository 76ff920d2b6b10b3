package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vidyadoc/slc-api/internal/apperrors"
	"github.com/vidyadoc/slc-api/internal/models"
	"github.com/vidyadoc/slc-api/internal/policy"
	"github.com/vidyadoc/slc-api/internal/status"
)

func TestStudentRepositoryCreateRequiresIdentifier(t *testing.T) {
	db := setupTestDB(t, &models.Student{})
	repo := NewStudentRepository(db)

	err := repo.Create(context.Background(), &models.Student{FullName: "Asha Patil"})
	require.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	var count int64
	require.NoError(t, db.Model(&models.Student{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestStudentRepositoryCreateRejectsDuplicateIdentifier(t *testing.T) {
	db := setupTestDB(t, &models.Student{})
	repo := NewStudentRepository(db)

	first := models.Student{FullName: "Asha Patil", UIDAadharNo: strPtr("123456789012")}
	require.NoError(t, repo.Create(context.Background(), &first))

	second := models.Student{FullName: "Kiran Patil", UIDAadharNo: strPtr("123456789012")}
	err := repo.Create(context.Background(), &second)
	tagged, ok := apperrors.As(err)
	require.True(t, ok)
	require.Equal(t, apperrors.KindDuplicateIdentifier, tagged.Kind)
	require.Contains(t, tagged.Fields, "uid_aadhar_no")
}

func TestStudentRepositoryCreateUniqueConstraintBacksUpPrecheck(t *testing.T) {
	db := setupTestDB(t, &models.Student{})
	repo := NewStudentRepository(db)

	first := models.Student{FullName: "Asha Patil", StudentID: strPtr("GR-1001")}
	require.NoError(t, repo.Create(context.Background(), &first))

	// Insert directly, bypassing the pre-check, to simulate the race where
	// two creates pass the check concurrently. The unique index must still
	// surface a DuplicateIdentifier.
	second := models.Student{FullName: "Kiran Patil", StudentID: strPtr("GR-1001")}
	err := db.Create(&second).Error
	translated := translateError(err, "student", studentIdentifierColumns...)
	require.True(t, apperrors.IsKind(translated, apperrors.KindDuplicateIdentifier))
}

func TestStudentRepositoryUpdateCannotClearLastIdentifier(t *testing.T) {
	db := setupTestDB(t, &models.Student{})
	repo := NewStudentRepository(db)

	student := models.Student{FullName: "Asha Patil", StudentID: strPtr("GR-1001")}
	require.NoError(t, repo.Create(context.Background(), &student))

	_, err := repo.Update(context.Background(), student.ID, map[string]interface{}{"student_id": ""})
	require.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	// The record must be unchanged.
	current, err := repo.FindByID(context.Background(), student.ID)
	require.NoError(t, err)
	require.NotNil(t, current.StudentID)
	require.Equal(t, "GR-1001", *current.StudentID)
}

func TestStudentRepositoryUpdateCanClearOneOfTwoIdentifiers(t *testing.T) {
	db := setupTestDB(t, &models.Student{})
	repo := NewStudentRepository(db)

	student := models.Student{
		FullName:    "Asha Patil",
		StudentID:   strPtr("GR-1001"),
		UIDAadharNo: strPtr("123456789012"),
	}
	require.NoError(t, repo.Create(context.Background(), &student))

	updated, err := repo.Update(context.Background(), student.ID, map[string]interface{}{"student_id": ""})
	require.NoError(t, err)
	require.Nil(t, updated.StudentID)
	require.NotNil(t, updated.UIDAadharNo)
}

func TestStudentRepositoryUpdateRejectsIdentifierTakenByAnother(t *testing.T) {
	db := setupTestDB(t, &models.Student{})
	repo := NewStudentRepository(db)

	first := models.Student{FullName: "Asha Patil", StudentID: strPtr("GR-1001")}
	second := models.Student{FullName: "Kiran Patil", StudentID: strPtr("GR-1002")}
	require.NoError(t, repo.Create(context.Background(), &first))
	require.NoError(t, repo.Create(context.Background(), &second))

	_, err := repo.Update(context.Background(), second.ID, map[string]interface{}{"student_id": "GR-1001"})
	require.True(t, apperrors.IsKind(err, apperrors.KindDuplicateIdentifier))
}

func TestStudentRepositoryUpdateMissingRecord(t *testing.T) {
	db := setupTestDB(t, &models.Student{})
	repo := NewStudentRepository(db)

	_, err := repo.Update(context.Background(), 42, map[string]interface{}{"full_name": "Nobody"})
	require.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestStudentRepositoryListFiltersForUserRole(t *testing.T) {
	db := setupTestDB(t, &models.Student{})
	repo := NewStudentRepository(db)

	seed := []models.Student{
		{FullName: "Draft Student", StudentID: strPtr("GR-1"), Status: status.Draft},
		{FullName: "Accepted Student", StudentID: strPtr("GR-2"), Status: status.Accepted},
		{FullName: "Issued Student", StudentID: strPtr("GR-3"), Status: status.Issued},
	}
	for i := range seed {
		require.NoError(t, repo.Create(context.Background(), &seed[i]))
	}

	visible, total, err := repo.List(context.Background(), StudentFilter{Role: policy.RoleUser})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Len(t, visible, 1)
	require.Equal(t, status.Accepted, visible[0].Status)

	all, total, err := repo.List(context.Background(), StudentFilter{Role: policy.RoleAdmin})
	require.NoError(t, err)
	require.Equal(t, int64(3), total)
	require.Len(t, all, 3)
}

func TestStudentRepositoryListUnknownSortKeyFallsBack(t *testing.T) {
	db := setupTestDB(t, &models.Student{})
	repo := NewStudentRepository(db)

	first := models.Student{FullName: "Zoya", StudentID: strPtr("GR-1")}
	second := models.Student{FullName: "Asha", StudentID: strPtr("GR-2")}
	require.NoError(t, repo.Create(context.Background(), &first))
	require.NoError(t, repo.Create(context.Background(), &second))

	// "id; DROP TABLE students" must not reach the database as an ORDER BY.
	students, _, err := repo.List(context.Background(), StudentFilter{SortBy: "id; DROP TABLE students"})
	require.NoError(t, err)
	require.Len(t, students, 2)

	sorted, _, err := repo.List(context.Background(), StudentFilter{SortBy: "full_name", SortOrder: "asc"})
	require.NoError(t, err)
	require.Equal(t, "Asha", sorted[0].FullName)
}

func TestStudentRepositoryCountMirrorsListFilters(t *testing.T) {
	db := setupTestDB(t, &models.Student{})
	repo := NewStudentRepository(db)

	accepted := models.Student{FullName: "Accepted", StudentID: strPtr("GR-1"), Status: status.Accepted}
	draft := models.Student{FullName: "Draft", StudentID: strPtr("GR-2"), Status: status.Draft}
	require.NoError(t, repo.Create(context.Background(), &accepted))
	require.NoError(t, repo.Create(context.Background(), &draft))

	count, err := repo.Count(context.Background(), StudentFilter{Status: status.Accepted})
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
}

func TestStudentRepositoryWorkflowAdapter(t *testing.T) {
	db := setupTestDB(t, &models.Student{})
	repo := NewStudentRepository(db)

	student := models.Student{FullName: "Asha Patil", StudentID: strPtr("GR-1001")}
	require.NoError(t, repo.Create(context.Background(), &student))

	record, err := repo.GetWorkflow(context.Background(), student.ID)
	require.NoError(t, err)
	require.Equal(t, status.Draft, record.Status)
	require.Equal(t, "Asha Patil", record.Snapshot["full_name"])

	record, err = repo.UpdateWorkflow(context.Background(), student.ID, map[string]interface{}{
		"status":     string(status.InReview),
		"updated_by": uintPtr(7),
	})
	require.NoError(t, err)
	require.Equal(t, status.InReview, record.Status)
	require.Equal(t, "students", repo.Table())
}
