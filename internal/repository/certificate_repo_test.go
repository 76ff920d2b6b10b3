package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/vidyadoc/slc-api/internal/apperrors"
	"github.com/vidyadoc/slc-api/internal/models"
	"github.com/vidyadoc/slc-api/internal/policy"
	"github.com/vidyadoc/slc-api/internal/status"
)

func setupCertificateTestDB(t *testing.T) (*gorm.DB, models.School, models.Student) {
	t.Helper()

	db := setupTestDB(t, &models.School{}, &models.Student{}, &models.LeavingCertificate{})

	school := models.School{Name: "Shri Shivaji Vidyalaya", UDISENo: strPtr("27210100101")}
	require.NoError(t, NewSchoolRepository(db).Create(context.Background(), &school))

	student := models.Student{FullName: "Asha Patil", StudentID: strPtr("GR-1001")}
	require.NoError(t, NewStudentRepository(db).Create(context.Background(), &student))

	return db, school, student
}

func TestCertificateRepositoryCreateRequiresSerial(t *testing.T) {
	db, school, student := setupCertificateTestDB(t)
	repo := NewCertificateRepository(db)

	err := repo.Create(context.Background(), &models.LeavingCertificate{
		SchoolID:  school.ID,
		StudentID: student.ID,
	})
	require.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestCertificateRepositorySerialUniquePerSchool(t *testing.T) {
	db, school, student := setupCertificateTestDB(t)
	repo := NewCertificateRepository(db)

	first := models.LeavingCertificate{SchoolID: school.ID, StudentID: student.ID, SerialNo: strPtr("SLC/2026/001")}
	require.NoError(t, repo.Create(context.Background(), &first))

	duplicate := models.LeavingCertificate{SchoolID: school.ID, StudentID: student.ID, SerialNo: strPtr("SLC/2026/001")}
	err := repo.Create(context.Background(), &duplicate)
	require.True(t, apperrors.IsKind(err, apperrors.KindDuplicateIdentifier))

	// The same serial under a different school is fine.
	other := models.School{Name: "Other School", UDISENo: strPtr("27210100102")}
	require.NoError(t, NewSchoolRepository(db).Create(context.Background(), &other))

	reused := models.LeavingCertificate{SchoolID: other.ID, StudentID: student.ID, SerialNo: strPtr("SLC/2026/001")}
	require.NoError(t, repo.Create(context.Background(), &reused))
}

func TestCertificateRepositoryFindByIDResolvesJoins(t *testing.T) {
	db, school, student := setupCertificateTestDB(t)
	repo := NewCertificateRepository(db)

	certificate := models.LeavingCertificate{SchoolID: school.ID, StudentID: student.ID, SerialNo: strPtr("SLC/2026/001")}
	require.NoError(t, repo.Create(context.Background(), &certificate))

	found, err := repo.FindByID(context.Background(), certificate.ID)
	require.NoError(t, err)
	require.NotNil(t, found.School)
	require.NotNil(t, found.Student)
	require.Equal(t, "Shri Shivaji Vidyalaya", found.School.Name)
	require.Equal(t, "Asha Patil", found.Student.FullName)
}

func TestCertificateRepositoryUpdateCannotClearSerial(t *testing.T) {
	db, school, student := setupCertificateTestDB(t)
	repo := NewCertificateRepository(db)

	certificate := models.LeavingCertificate{SchoolID: school.ID, StudentID: student.ID, SerialNo: strPtr("SLC/2026/001")}
	require.NoError(t, repo.Create(context.Background(), &certificate))

	_, err := repo.Update(context.Background(), certificate.ID, map[string]interface{}{"serial_no": ""})
	require.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestCertificateRepositoryListSerialPrefixAndRole(t *testing.T) {
	db, school, student := setupCertificateTestDB(t)
	repo := NewCertificateRepository(db)

	accepted := models.LeavingCertificate{SchoolID: school.ID, StudentID: student.ID, SerialNo: strPtr("SLC/2026/001"), Status: status.Accepted}
	draft := models.LeavingCertificate{SchoolID: school.ID, StudentID: student.ID, SerialNo: strPtr("SLC/2026/002"), Status: status.Draft}
	old := models.LeavingCertificate{SchoolID: school.ID, StudentID: student.ID, SerialNo: strPtr("SLC/2025/001"), Status: status.Accepted}
	for _, c := range []*models.LeavingCertificate{&accepted, &draft, &old} {
		require.NoError(t, repo.Create(context.Background(), c))
	}

	current, total, err := repo.List(context.Background(), CertificateFilter{SerialPrefix: "SLC/2026/"})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, current, 2)

	visible, total, err := repo.List(context.Background(), CertificateFilter{Role: policy.RoleUser})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	for _, c := range visible {
		require.Equal(t, status.Accepted, c.Status)
	}
}
