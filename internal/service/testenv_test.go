package service

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vidyadoc/slc-api/internal/models"
	"github.com/vidyadoc/slc-api/internal/repository"
)

// testEnv wires real sqlite-backed repositories behind the services under
// test. The audit recorder runs against the real audit repository; call
// flushAudit before asserting on trail contents.
type testEnv struct {
	db       *gorm.DB
	validate *validator.Validate
	audit    AuditRecorder
	history  repository.StatusHistoryRepository
	auditLog repository.AuditLogRepository
	workflow WorkflowService
}

func newTestEnv(t *testing.T, entities ...interface{}) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	entities = append(entities, &models.AuditLog{}, &models.StatusHistory{})
	require.NoError(t, db.AutoMigrate(entities...))

	auditLog := repository.NewAuditLogRepository(db)
	audit := NewAuditRecorder(auditLog, 64, zerolog.Nop())
	t.Cleanup(audit.Close)

	history := repository.NewStatusHistoryRepository(db)

	return &testEnv{
		db:       db,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		audit:    audit,
		history:  history,
		auditLog: auditLog,
		workflow: NewWorkflowService(history, audit, nil, zerolog.Nop()),
	}
}

// flushAudit stops the recorder so every queued entry is persisted.
func (e *testEnv) flushAudit() {
	e.audit.Close()
}
