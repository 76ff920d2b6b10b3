package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/vidyadoc/slc-api/internal/models"
	"github.com/vidyadoc/slc-api/internal/repository"
)

type stubAuditStore struct {
	mu      sync.Mutex
	entries []models.AuditLog
	failure error
}

func (s *stubAuditStore) Create(_ context.Context, entry *models.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failure != nil {
		return s.failure
	}
	s.entries = append(s.entries, *entry)
	return nil
}

func (s *stubAuditStore) FindByTableAndRecord(_ context.Context, tableName string, recordID uint) ([]models.AuditLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []models.AuditLog
	for _, entry := range s.entries {
		if entry.TableName == tableName && entry.RecordID == recordID {
			matched = append(matched, entry)
		}
	}
	return matched, nil
}

func (s *stubAuditStore) List(_ context.Context, _ repository.AuditLogFilter) ([]models.AuditLog, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.AuditLog(nil), s.entries...), int64(len(s.entries)), nil
}

func (s *stubAuditStore) recorded() []models.AuditLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.AuditLog(nil), s.entries...)
}

func TestAuditRecorderUpdateWritesOneRowPerChangedField(t *testing.T) {
	store := &stubAuditStore{}
	recorder := NewAuditRecorder(store, 16, zerolog.Nop())

	before := map[string]interface{}{
		"full_name": "Anita Desai",
		"district":  "Pune",
		"surname":   "Desai",
	}
	after := map[string]interface{}{
		"full_name": "Anita Kulkarni",
		"district":  "Pune",
		"surname":   "Kulkarni",
	}

	actor := Actor{ID: 7}
	recorder.RecordUpdate("students", 42, before, after, actor, Origin{IPAddress: "10.0.0.1"})
	recorder.Close()

	entries := store.recorded()
	require.Len(t, entries, 2)

	// changed fields come out in stable sorted order
	require.Equal(t, "full_name", *entries[0].FieldName)
	require.Equal(t, "Anita Desai", *entries[0].OldValue)
	require.Equal(t, "Anita Kulkarni", *entries[0].NewValue)
	require.Equal(t, "surname", *entries[1].FieldName)

	for _, entry := range entries {
		require.Equal(t, models.AuditActionUpdate, entry.Action)
		require.Equal(t, "students", entry.TableName)
		require.Equal(t, uint(42), entry.RecordID)
		require.NotNil(t, entry.ChangedBy)
		require.Equal(t, uint(7), *entry.ChangedBy)
		require.Equal(t, "10.0.0.1", entry.IPAddress)
	}
}

func TestAuditRecorderUpdateNoChangesWritesNothing(t *testing.T) {
	store := &stubAuditStore{}
	recorder := NewAuditRecorder(store, 16, zerolog.Nop())

	snapshot := map[string]interface{}{"full_name": "Anita Desai", "district": "Pune"}
	recorder.RecordUpdate("students", 42, snapshot, snapshot, Actor{ID: 7}, Origin{})
	recorder.Close()

	require.Empty(t, store.recorded())
}

func TestAuditRecorderUpdateCountsFieldPresentOnOneSide(t *testing.T) {
	store := &stubAuditStore{}
	recorder := NewAuditRecorder(store, 16, zerolog.Nop())

	before := map[string]interface{}{"full_name": "Anita Desai"}
	after := map[string]interface{}{"full_name": "Anita Desai", "district": "Pune"}
	recorder.RecordUpdate("students", 42, before, after, Actor{ID: 7}, Origin{})
	recorder.Close()

	entries := store.recorded()
	require.Len(t, entries, 1)
	require.Equal(t, "district", *entries[0].FieldName)
	require.Nil(t, entries[0].OldValue)
	require.Equal(t, "Pune", *entries[0].NewValue)
}

func TestAuditRecorderStoreFailureIsSwallowed(t *testing.T) {
	store := &stubAuditStore{failure: errors.New("disk full")}
	recorder := NewAuditRecorder(store, 16, zerolog.Nop())

	require.NotPanics(t, func() {
		recorder.RecordView("students", 42, Actor{ID: 7}, Origin{})
		recorder.RecordDelete("students", 42, map[string]interface{}{"full_name": "Anita"}, Actor{ID: 7}, Origin{})
		recorder.Close()
	})
	require.Empty(t, store.recorded())
}

func TestAuditRecorderInsertCarriesSnapshotPayload(t *testing.T) {
	store := &stubAuditStore{}
	recorder := NewAuditRecorder(store, 16, zerolog.Nop())

	recorder.RecordInsert("schools", 5, map[string]interface{}{"name": "Modern High School"}, Actor{ID: 3}, Origin{})
	recorder.Close()

	entries := store.recorded()
	require.Len(t, entries, 1)
	require.Equal(t, models.AuditActionInsert, entries[0].Action)
	require.Equal(t, "Modern High School", entries[0].Payload["name"])
}

func TestAuditRecorderSessionEvents(t *testing.T) {
	store := &stubAuditStore{}
	recorder := NewAuditRecorder(store, 16, zerolog.Nop())

	recorder.RecordLogin(9, "password", Origin{IPAddress: "10.0.0.2", UserAgent: "curl/8.0"})
	recorder.RecordLogout(9, Origin{})
	recorder.Close()

	entries := store.recorded()
	require.Len(t, entries, 2)
	require.Equal(t, models.AuditActionLogin, entries[0].Action)
	require.Equal(t, "users", entries[0].TableName)
	require.Equal(t, uint(9), entries[0].RecordID)
	require.Equal(t, uint(9), *entries[0].ChangedBy)
	require.Equal(t, "password", entries[0].Notes)
	require.Equal(t, models.AuditActionLogout, entries[1].Action)
	require.Empty(t, entries[1].Notes)
}
