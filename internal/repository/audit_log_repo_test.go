package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vidyadoc/slc-api/internal/models"
)

func TestAuditLogRepositoryFindByTableAndRecordOrdersNewestFirst(t *testing.T) {
	db := setupTestDB(t, &models.User{}, &models.AuditLog{})
	repo := NewAuditLogRepository(db)

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	entries := []models.AuditLog{
		{TableName: "students", RecordID: 1, Action: models.AuditActionInsert, ChangedAt: base},
		{TableName: "students", RecordID: 1, Action: models.AuditActionUpdate, ChangedAt: base.Add(time.Hour)},
		{TableName: "students", RecordID: 2, Action: models.AuditActionInsert, ChangedAt: base.Add(2 * time.Hour)},
		{TableName: "schools", RecordID: 1, Action: models.AuditActionInsert, ChangedAt: base.Add(3 * time.Hour)},
	}
	for i := range entries {
		require.NoError(t, repo.Create(context.Background(), &entries[i]))
	}

	found, err := repo.FindByTableAndRecord(context.Background(), "students", 1)
	require.NoError(t, err)
	require.Len(t, found, 2)
	require.Equal(t, models.AuditActionUpdate, found[0].Action)
	require.Equal(t, models.AuditActionInsert, found[1].Action)
}

func TestAuditLogRepositoryListFilters(t *testing.T) {
	db := setupTestDB(t, &models.User{}, &models.AuditLog{})
	repo := NewAuditLogRepository(db)

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	entries := []models.AuditLog{
		{TableName: "students", RecordID: 1, Action: models.AuditActionUpdate, ChangedBy: uintPtr(7), ChangedAt: base},
		{TableName: "students", RecordID: 1, Action: models.AuditActionView, ChangedBy: uintPtr(8), ChangedAt: base.Add(time.Hour)},
		{TableName: "schools", RecordID: 3, Action: models.AuditActionUpdate, ChangedBy: uintPtr(7), ChangedAt: base.Add(48 * time.Hour)},
	}
	for i := range entries {
		require.NoError(t, repo.Create(context.Background(), &entries[i]))
	}

	byActor, total, err := repo.List(context.Background(), AuditLogFilter{ChangedBy: uintPtr(7)})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, byActor, 2)

	byAction, _, err := repo.List(context.Background(), AuditLogFilter{TableName: "students", Action: "update"})
	require.NoError(t, err)
	require.Len(t, byAction, 1)
	require.Equal(t, uint(1), byAction[0].RecordID)

	end := base.Add(2 * time.Hour)
	byDate, _, err := repo.List(context.Background(), AuditLogFilter{StartDate: &base, EndDate: &end})
	require.NoError(t, err)
	require.Len(t, byDate, 2)

	paged, total, err := repo.List(context.Background(), AuditLogFilter{Page: 2, PageSize: 2})
	require.NoError(t, err)
	require.Equal(t, int64(3), total)
	require.Len(t, paged, 1)
}
