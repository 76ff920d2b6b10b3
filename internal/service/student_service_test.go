package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/vidyadoc/slc-api/internal/apperrors"
	"github.com/vidyadoc/slc-api/internal/dto"
	"github.com/vidyadoc/slc-api/internal/models"
	"github.com/vidyadoc/slc-api/internal/policy"
	"github.com/vidyadoc/slc-api/internal/repository"
)

func newStudentService(t *testing.T) (StudentService, *testEnv) {
	t.Helper()
	env := newTestEnv(t, &models.Student{})
	repo := repository.NewStudentRepository(env.db)
	svc := NewStudentService(repo, env.workflow, env.audit, env.validate, zerolog.Nop())
	return svc, env
}

func studentPayload(uid string) dto.StudentCreateRequest {
	return dto.StudentCreateRequest{
		UIDAadharNo:      uid,
		FullName:         "Anita Desai",
		FatherName:       "Ramesh Desai",
		Surname:          "Desai",
		DateOfBirth:      "2008-06-14",
		DateOfBirthWords: "Fourteenth June Two Thousand Eight",
	}
}

func studentUpdatePayload(fullName, surname *string) dto.StudentUpdateRequest {
	return dto.StudentUpdateRequest{FullName: fullName, Surname: surname}
}

func listStudents() dto.StudentListRequest {
	return dto.StudentListRequest{Page: 1, PageSize: 20}
}

func TestStudentServiceCreateStartsInDraft(t *testing.T) {
	svc, env := newStudentService(t)
	admin := Actor{ID: 3, Role: policy.RoleAdmin}

	created, err := svc.Create(context.Background(), studentPayload("481209657311"), admin, Origin{IPAddress: "10.0.0.1"})
	require.NoError(t, err)
	require.Equal(t, "draft", created.Status)
	require.Equal(t, "481209657311", created.UIDAadharNo)
	require.Equal(t, uint(3), *created.CreatedBy)

	env.flushAudit()
	trail, err := env.auditLog.FindByTableAndRecord(context.Background(), "students", created.ID)
	require.NoError(t, err)
	require.Len(t, trail, 1)
	require.Equal(t, models.AuditActionInsert, trail[0].Action)
	require.Equal(t, "10.0.0.1", trail[0].IPAddress)
}

func TestStudentServiceCreateRequiresAdmin(t *testing.T) {
	svc, _ := newStudentService(t)

	for _, role := range []string{policy.RoleUser, policy.RoleSuper} {
		_, err := svc.Create(context.Background(), studentPayload("481209657311"), Actor{ID: 1, Role: role}, Origin{})
		require.Error(t, err, role)
		require.True(t, apperrors.IsKind(err, apperrors.KindForbidden), role)
	}
}

func TestStudentServiceCreateRejectsInvalidPayload(t *testing.T) {
	svc, _ := newStudentService(t)

	payload := studentPayload("12345") // not a 12 digit UID
	_, err := svc.Create(context.Background(), payload, Actor{ID: 3, Role: policy.RoleAdmin}, Origin{})
	require.Error(t, err)
	require.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestStudentServiceGetHidesDraftFromUserRole(t *testing.T) {
	svc, _ := newStudentService(t)
	admin := Actor{ID: 3, Role: policy.RoleAdmin}

	created, err := svc.Create(context.Background(), studentPayload("481209657311"), admin, Origin{})
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), created.ID, Actor{ID: 5, Role: policy.RoleUser}, Origin{})
	require.Error(t, err)
	require.True(t, apperrors.IsKind(err, apperrors.KindNotFound))

	// still visible to the admin
	fetched, err := svc.Get(context.Background(), created.ID, admin, Origin{})
	require.NoError(t, err)
	require.Equal(t, created.ID, fetched.ID)
}

func TestStudentServiceGetRecordsViewEvent(t *testing.T) {
	svc, env := newStudentService(t)
	admin := Actor{ID: 3, Role: policy.RoleAdmin}

	created, err := svc.Create(context.Background(), studentPayload("481209657311"), admin, Origin{})
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), created.ID, admin, Origin{})
	require.NoError(t, err)

	env.flushAudit()
	trail, err := env.auditLog.FindByTableAndRecord(context.Background(), "students", created.ID)
	require.NoError(t, err)

	actions := make([]string, 0, len(trail))
	for _, entry := range trail {
		actions = append(actions, entry.Action)
	}
	require.Contains(t, actions, models.AuditActionView)
}

func TestStudentServiceUpdateWritesFieldLevelAudit(t *testing.T) {
	svc, env := newStudentService(t)
	admin := Actor{ID: 3, Role: policy.RoleAdmin}

	created, err := svc.Create(context.Background(), studentPayload("481209657311"), admin, Origin{})
	require.NoError(t, err)

	newName := "Anita Kulkarni"
	newSurname := "Kulkarni"
	updated, err := svc.Update(context.Background(), created.ID, studentUpdatePayload(&newName, &newSurname), admin, Origin{})
	require.NoError(t, err)
	require.Equal(t, "Anita Kulkarni", updated.FullName)
	require.Equal(t, uint(3), *updated.UpdatedBy)

	env.flushAudit()
	trail, err := env.auditLog.FindByTableAndRecord(context.Background(), "students", created.ID)
	require.NoError(t, err)

	changed := make(map[string]bool)
	for _, entry := range trail {
		if entry.Action == models.AuditActionUpdate && entry.FieldName != nil {
			changed[*entry.FieldName] = true
		}
	}
	require.True(t, changed["full_name"])
	require.True(t, changed["surname"])
}

func TestStudentServiceLifecycleTransitions(t *testing.T) {
	svc, _ := newStudentService(t)
	admin := Actor{ID: 3, Role: policy.RoleAdmin}
	super := Actor{ID: 9, Role: policy.RoleSuper}

	created, err := svc.Create(context.Background(), studentPayload("481209657311"), admin, Origin{})
	require.NoError(t, err)

	inReview, err := svc.Transition(context.Background(), created.ID, TransitionParams{Status: "in_review", Reason: "submitted"}, admin, Origin{})
	require.NoError(t, err)
	require.Equal(t, "in_review", inReview.Status)

	// admin cannot approve
	_, err = svc.Transition(context.Background(), created.ID, TransitionParams{Status: "accepted"}, admin, Origin{})
	require.True(t, apperrors.IsKind(err, apperrors.KindForbidden))

	accepted, err := svc.Transition(context.Background(), created.ID, TransitionParams{Status: "accepted", Reason: "verified"}, super, Origin{})
	require.NoError(t, err)
	require.Equal(t, "accepted", accepted.Status)

	// accepted records are visible to the user role
	fetched, err := svc.Get(context.Background(), created.ID, Actor{ID: 5, Role: policy.RoleUser}, Origin{})
	require.NoError(t, err)
	require.Equal(t, "accepted", fetched.Status)

	history, err := svc.History(context.Background(), created.ID, admin)
	require.NoError(t, err)
	require.Len(t, history, 2)

	transitions, err := svc.Transitions(context.Background(), created.ID, admin)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"issued", "archived"}, transitions.AllowedTransitions)
}

func TestStudentServiceUpdateAcceptedRecordNeedsSuper(t *testing.T) {
	svc, _ := newStudentService(t)
	admin := Actor{ID: 3, Role: policy.RoleAdmin}
	super := Actor{ID: 9, Role: policy.RoleSuper}

	created, err := svc.Create(context.Background(), studentPayload("481209657311"), admin, Origin{})
	require.NoError(t, err)
	_, err = svc.Transition(context.Background(), created.ID, TransitionParams{Status: "in_review"}, admin, Origin{})
	require.NoError(t, err)
	_, err = svc.Transition(context.Background(), created.ID, TransitionParams{Status: "accepted"}, super, Origin{})
	require.NoError(t, err)

	name := "Corrected Name"
	_, err = svc.Update(context.Background(), created.ID, studentUpdatePayload(&name, nil), admin, Origin{})
	require.True(t, apperrors.IsKind(err, apperrors.KindForbidden))

	updated, err := svc.Update(context.Background(), created.ID, studentUpdatePayload(&name, nil), super, Origin{})
	require.NoError(t, err)
	require.Equal(t, "Corrected Name", updated.FullName)
}

func TestStudentServiceDeleteOnlyDraftOrRejected(t *testing.T) {
	svc, _ := newStudentService(t)
	admin := Actor{ID: 3, Role: policy.RoleAdmin}
	super := Actor{ID: 9, Role: policy.RoleSuper}

	created, err := svc.Create(context.Background(), studentPayload("481209657311"), admin, Origin{})
	require.NoError(t, err)
	_, err = svc.Transition(context.Background(), created.ID, TransitionParams{Status: "in_review"}, admin, Origin{})
	require.NoError(t, err)

	err = svc.Delete(context.Background(), created.ID, admin, Origin{})
	require.True(t, apperrors.IsKind(err, apperrors.KindForbidden))

	_, err = svc.Transition(context.Background(), created.ID, TransitionParams{Status: "rejected", Reason: "incomplete"}, super, Origin{})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.ID, admin, Origin{}))

	_, err = svc.Get(context.Background(), created.ID, admin, Origin{})
	require.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestStudentServiceUserListSeesAcceptedOnly(t *testing.T) {
	svc, _ := newStudentService(t)
	admin := Actor{ID: 3, Role: policy.RoleAdmin}
	super := Actor{ID: 9, Role: policy.RoleSuper}

	first, err := svc.Create(context.Background(), studentPayload("481209657311"), admin, Origin{})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), studentPayload("481209657312"), admin, Origin{})
	require.NoError(t, err)

	_, err = svc.Transition(context.Background(), first.ID, TransitionParams{Status: "in_review"}, admin, Origin{})
	require.NoError(t, err)
	_, err = svc.Transition(context.Background(), first.ID, TransitionParams{Status: "accepted"}, super, Origin{})
	require.NoError(t, err)

	asAdmin, err := svc.List(context.Background(), listStudents(), admin)
	require.NoError(t, err)
	require.Len(t, asAdmin.Items, 2)

	asUser, err := svc.List(context.Background(), listStudents(), Actor{ID: 5, Role: policy.RoleUser})
	require.NoError(t, err)
	require.Len(t, asUser.Items, 1)
	require.Equal(t, first.ID, asUser.Items[0].ID)
	require.Equal(t, int64(1), asUser.Pagination.TotalItems)
}

func TestStudentServiceDuplicateIdentifier(t *testing.T) {
	svc, _ := newStudentService(t)
	admin := Actor{ID: 3, Role: policy.RoleAdmin}

	_, err := svc.Create(context.Background(), studentPayload("481209657311"), admin, Origin{})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), studentPayload("481209657311"), admin, Origin{})
	require.Error(t, err)
	require.True(t, apperrors.IsKind(err, apperrors.KindDuplicateIdentifier))
}
