package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/vidyadoc/slc-api/internal/models"
	"github.com/vidyadoc/slc-api/internal/observability"
	"github.com/vidyadoc/slc-api/internal/repository"
)

const (
	defaultAuditQueueSize = 256
	auditWriteTimeout     = 5 * time.Second
)

// AuditRecorder captures the audit trail for record mutations, reads and
// session events. Recording is best effort: entries are queued and persisted
// asynchronously, and a full queue or a storage fault never propagates to the
// operation being audited.
type AuditRecorder interface {
	RecordInsert(tableName string, recordID uint, snapshot map[string]interface{}, actor Actor, origin Origin)
	RecordUpdate(tableName string, recordID uint, before, after map[string]interface{}, actor Actor, origin Origin)
	RecordDelete(tableName string, recordID uint, snapshot map[string]interface{}, actor Actor, origin Origin)
	RecordView(tableName string, recordID uint, actor Actor, origin Origin)
	RecordLogin(userID uint, method string, origin Origin)
	RecordLogout(userID uint, origin Origin)
	FindByRecord(ctx context.Context, tableName string, recordID uint) ([]models.AuditLog, error)
	List(ctx context.Context, filter repository.AuditLogFilter) ([]models.AuditLog, int64, error)
	Close()
}

type auditRecorder struct {
	repo    repository.AuditLogRepository
	queue   chan models.AuditLog
	logger  zerolog.Logger
	closed  atomic.Bool
	closing sync.Once
	done    sync.WaitGroup
}

// NewAuditRecorder constructs the recorder and starts its background worker.
// queueSize <= 0 selects the default.
func NewAuditRecorder(repo repository.AuditLogRepository, queueSize int, logger zerolog.Logger) AuditRecorder {
	if queueSize <= 0 {
		queueSize = defaultAuditQueueSize
	}

	recorder := &auditRecorder{
		repo:   repo,
		queue:  make(chan models.AuditLog, queueSize),
		logger: logger.With().Str("component", "audit_recorder").Logger(),
	}

	recorder.done.Add(1)
	go recorder.run()

	return recorder
}

func (r *auditRecorder) run() {
	defer r.done.Done()

	for entry := range r.queue {
		ctx, cancel := context.WithTimeout(context.Background(), auditWriteTimeout)
		err := r.repo.Create(ctx, &entry)
		cancel()

		if err != nil {
			observability.AuditEntriesDropped().Inc()
			r.logger.Error().Err(err).
				Str("table", entry.TableName).
				Uint("record_id", entry.RecordID).
				Str("action", entry.Action).
				Msg("failed to persist audit entry")
			continue
		}

		observability.AuditEntriesWritten().WithLabelValues(entry.Action).Inc()
	}
}

// enqueue never blocks: when the queue is full the entry is counted as
// dropped and the caller proceeds.
func (r *auditRecorder) enqueue(entry models.AuditLog) {
	if r.closed.Load() {
		observability.AuditEntriesDropped().Inc()
		return
	}

	select {
	case r.queue <- entry:
	default:
		observability.AuditEntriesDropped().Inc()
		r.logger.Warn().
			Str("table", entry.TableName).
			Uint("record_id", entry.RecordID).
			Str("action", entry.Action).
			Msg("audit queue full, entry dropped")
	}
}

func (r *auditRecorder) RecordInsert(tableName string, recordID uint, snapshot map[string]interface{}, actor Actor, origin Origin) {
	entry := r.baseEntry(tableName, recordID, models.AuditActionInsert, actor, origin)
	entry.Payload = datatypes.JSONMap(snapshot)
	r.enqueue(entry)
}

// RecordUpdate writes one audit row per changed field so the trail answers
// "who changed what" without diffing payloads after the fact.
func (r *auditRecorder) RecordUpdate(tableName string, recordID uint, before, after map[string]interface{}, actor Actor, origin Origin) {
	for _, field := range changedFields(before, after) {
		entry := r.baseEntry(tableName, recordID, models.AuditActionUpdate, actor, origin)
		name := field
		entry.FieldName = &name
		entry.OldValue = auditValue(before[field])
		entry.NewValue = auditValue(after[field])
		r.enqueue(entry)
	}
}

func (r *auditRecorder) RecordDelete(tableName string, recordID uint, snapshot map[string]interface{}, actor Actor, origin Origin) {
	entry := r.baseEntry(tableName, recordID, models.AuditActionDelete, actor, origin)
	entry.Payload = datatypes.JSONMap(snapshot)
	r.enqueue(entry)
}

func (r *auditRecorder) RecordView(tableName string, recordID uint, actor Actor, origin Origin) {
	r.enqueue(r.baseEntry(tableName, recordID, models.AuditActionView, actor, origin))
}

// RecordLogin notes the credential method (password, token refresh) so the
// trail can distinguish how the session was established.
func (r *auditRecorder) RecordLogin(userID uint, method string, origin Origin) {
	actor := Actor{ID: userID}
	entry := r.baseEntry("users", userID, models.AuditActionLogin, actor, origin)
	entry.Notes = method
	r.enqueue(entry)
}

func (r *auditRecorder) RecordLogout(userID uint, origin Origin) {
	actor := Actor{ID: userID}
	r.enqueue(r.baseEntry("users", userID, models.AuditActionLogout, actor, origin))
}

func (r *auditRecorder) FindByRecord(ctx context.Context, tableName string, recordID uint) ([]models.AuditLog, error) {
	return r.repo.FindByTableAndRecord(ctx, tableName, recordID)
}

func (r *auditRecorder) List(ctx context.Context, filter repository.AuditLogFilter) ([]models.AuditLog, int64, error) {
	return r.repo.List(ctx, filter)
}

// Close drains the queue and stops the worker. Entries already queued are
// still persisted.
func (r *auditRecorder) Close() {
	r.closing.Do(func() {
		r.closed.Store(true)
		close(r.queue)
	})
	r.done.Wait()
}

func (r *auditRecorder) baseEntry(tableName string, recordID uint, action string, actor Actor, origin Origin) models.AuditLog {
	entry := models.AuditLog{
		TableName: tableName,
		RecordID:  recordID,
		Action:    action,
		IPAddress: origin.IPAddress,
		UserAgent: origin.UserAgent,
		Location:  origin.Location,
		ChangedAt: time.Now().UTC(),
	}
	if actor.ID != 0 {
		id := actor.ID
		entry.ChangedBy = &id
	}
	return entry
}

// changedFields returns the keys whose values differ between the snapshots,
// in stable order. Keys present only on one side count as changed.
func changedFields(before, after map[string]interface{}) []string {
	seen := make(map[string]struct{}, len(before)+len(after))
	fields := make([]string, 0)

	for key := range before {
		seen[key] = struct{}{}
		if !sameAuditValue(before[key], after[key]) {
			fields = append(fields, key)
		}
	}
	for key := range after {
		if _, ok := seen[key]; ok {
			continue
		}
		if !sameAuditValue(nil, after[key]) {
			fields = append(fields, key)
		}
	}

	sort.Strings(fields)
	return fields
}

func sameAuditValue(a, b interface{}) bool {
	return auditString(a) == auditString(b)
}

func auditValue(value interface{}) *string {
	if value == nil {
		return nil
	}
	formatted := auditString(value)
	return &formatted
}

func auditString(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case *string:
		if v == nil {
			return ""
		}
		return *v
	case time.Time:
		return v.Format(time.RFC3339)
	case *time.Time:
		if v == nil {
			return ""
		}
		return v.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", v)
	}
}
