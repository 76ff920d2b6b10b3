package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vidyadoc/slc-api/internal/apperrors"
	"github.com/vidyadoc/slc-api/internal/dto"
	"github.com/vidyadoc/slc-api/internal/events"
	"github.com/vidyadoc/slc-api/internal/models"
	"github.com/vidyadoc/slc-api/internal/observability"
	"github.com/vidyadoc/slc-api/internal/policy"
	"github.com/vidyadoc/slc-api/internal/repository"
	"github.com/vidyadoc/slc-api/internal/status"
)

// TransitionParams is the caller's intent for a workflow transition.
type TransitionParams struct {
	Status  string
	Reason  string
	Notes   string
	Comment string
}

// WorkflowService drives the record lifecycle over any WorkflowStore: it
// validates the status edge, authorizes the actor, persists the change, and
// appends history and audit entries. Schools, students and certificates all
// go through the same path.
type WorkflowService interface {
	Transition(ctx context.Context, store repository.WorkflowStore, id uint, params TransitionParams, actor Actor, origin Origin) (repository.WorkflowRecord, error)
	Transitions(ctx context.Context, store repository.WorkflowStore, id uint, actor Actor) (dto.StatusTransitionsResponse, error)
	History(ctx context.Context, store repository.WorkflowStore, id uint, actor Actor) ([]models.StatusHistory, error)
	Delete(ctx context.Context, store repository.WorkflowStore, id uint, actor Actor, origin Origin) (repository.WorkflowRecord, error)
}

type workflowService struct {
	history   repository.StatusHistoryRepository
	audit     AuditRecorder
	publisher *events.Publisher
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewWorkflowService constructs the workflow service. publisher may be nil.
func NewWorkflowService(history repository.StatusHistoryRepository, audit AuditRecorder, publisher *events.Publisher, logger zerolog.Logger) WorkflowService {
	return &workflowService{
		history:   history,
		audit:     audit,
		publisher: publisher,
		logger:    logger.With().Str("component", "workflow_service").Logger(),
		tracer:    otel.Tracer("github.com/vidyadoc/slc-api/internal/service/workflow"),
	}
}

func (s *workflowService) Transition(ctx context.Context, store repository.WorkflowStore, id uint, params TransitionParams, actor Actor, origin Origin) (repository.WorkflowRecord, error) {
	spanCtx, span := s.tracer.Start(ctx, "workflow.transition", trace.WithAttributes(
		attribute.String("workflow.table", store.Table()),
		attribute.Int64("workflow.record_id", int64(id)),
		attribute.String("workflow.target_status", params.Status),
	))
	defer span.End()

	record, err := s.visibleRecord(spanCtx, store, id, actor)
	if err != nil {
		span.RecordError(err)
		return repository.WorkflowRecord{}, err
	}

	target, ok := status.Parse(params.Status)
	if !ok {
		err := status.ValidateTransition(record.Status, target)
		span.RecordError(err)
		return repository.WorkflowRecord{}, err
	}

	// Same-status requests are a silent no-op: no write, no history, no audit.
	if target == record.Status {
		return record, nil
	}

	if err := status.ValidateTransition(record.Status, target); err != nil {
		span.RecordError(err)
		return repository.WorkflowRecord{}, err
	}

	action := policy.TransitionAction(record.Status, target)
	if err := policy.Authorize(actor.Role, action, record.Status); err != nil {
		span.RecordError(err)
		return repository.WorkflowRecord{}, err
	}

	updates := map[string]interface{}{
		"status":     target,
		"updated_by": actor.ID,
	}
	// The comment is optional; an absent comment must not erase the stored one.
	if params.Comment != "" {
		updates["comment"] = params.Comment
	}

	updated, err := store.UpdateWorkflow(spanCtx, id, updates)
	if err != nil {
		span.RecordError(err)
		return repository.WorkflowRecord{}, err
	}

	s.appendHistory(spanCtx, store.Table(), id, record.Status, target, actor, params)
	s.audit.RecordUpdate(store.Table(), id, record.Snapshot, updated.Snapshot, actor, origin)

	observability.StatusTransitions().WithLabelValues(store.Table(), string(record.Status), string(target)).Inc()

	s.publisher.StatusChanged(events.StatusChangedEvent{
		TableName: store.Table(),
		RecordID:  id,
		OldStatus: string(record.Status),
		NewStatus: string(target),
		ChangedBy: actorID(actor),
		Reason:    params.Reason,
	})

	s.logger.Info().
		Str("table", store.Table()).
		Uint("record_id", id).
		Str("from", string(record.Status)).
		Str("to", string(target)).
		Uint("actor_id", actor.ID).
		Msg("workflow transition applied")

	return updated, nil
}

func (s *workflowService) Transitions(ctx context.Context, store repository.WorkflowStore, id uint, actor Actor) (dto.StatusTransitionsResponse, error) {
	record, err := s.visibleRecord(ctx, store, id, actor)
	if err != nil {
		return dto.StatusTransitionsResponse{}, err
	}

	return dto.StatusTransitionsResponse{
		CurrentStatus:      string(record.Status),
		AllowedTransitions: status.Strings(status.AllowedTransitions(record.Status)),
		CanEdit:            status.CanEdit(record.Status),
		CanDelete:          status.CanDelete(record.Status),
		IsFinalState:       status.IsFinal(record.Status),
		RequiresReview:     status.RequiresReview(record.Status),
		IsApproved:         status.IsApproved(record.Status),
	}, nil
}

func (s *workflowService) History(ctx context.Context, store repository.WorkflowStore, id uint, actor Actor) ([]models.StatusHistory, error) {
	if _, err := s.visibleRecord(ctx, store, id, actor); err != nil {
		return nil, err
	}
	return s.history.ListByRecord(ctx, store.Table(), id)
}

func (s *workflowService) Delete(ctx context.Context, store repository.WorkflowStore, id uint, actor Actor, origin Origin) (repository.WorkflowRecord, error) {
	record, err := s.visibleRecord(ctx, store, id, actor)
	if err != nil {
		return repository.WorkflowRecord{}, err
	}

	if err := policy.Authorize(actor.Role, policy.ActionDelete, record.Status); err != nil {
		return repository.WorkflowRecord{}, err
	}

	deleted, err := store.DeleteWorkflow(ctx, id)
	if err != nil {
		return repository.WorkflowRecord{}, err
	}

	s.audit.RecordDelete(store.Table(), id, deleted.Snapshot, actor, origin)

	s.logger.Info().
		Str("table", store.Table()).
		Uint("record_id", id).
		Uint("actor_id", actor.ID).
		Msg("record deleted")

	return deleted, nil
}

// visibleRecord fetches the record and hides it from roles that may not see
// it. Hidden records surface as NotFound so their existence does not leak.
func (s *workflowService) visibleRecord(ctx context.Context, store repository.WorkflowStore, id uint, actor Actor) (repository.WorkflowRecord, error) {
	record, err := store.GetWorkflow(ctx, id)
	if err != nil {
		return repository.WorkflowRecord{}, err
	}
	if !policy.CanView(actor.Role, record.Status) {
		return repository.WorkflowRecord{}, notFoundFor(store.Table())
	}
	return record, nil
}

func (s *workflowService) appendHistory(ctx context.Context, tableName string, id uint, from, to status.Status, actor Actor, params TransitionParams) {
	entry := models.StatusHistory{
		TableName: tableName,
		RecordID:  id,
		OldStatus: from,
		NewStatus: to,
		ChangedBy: actorID(actor),
		Reason:    params.Reason,
		Notes:     params.Notes,
	}

	if err := s.history.Create(ctx, &entry); err != nil {
		s.logger.Warn().Err(err).
			Str("table", tableName).
			Uint("record_id", id).
			Msg("failed to append status history")
	}
}

func notFoundFor(table string) error {
	return apperrors.NotFound(strings.TrimSuffix(table, "s"))
}

func actorID(actor Actor) *uint {
	if actor.ID == 0 {
		return nil
	}
	id := actor.ID
	return &id
}
