// Package events publishes record lifecycle events to NATS for downstream
// consumers such as certificate printing and notification services.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// StatusChangedEvent is emitted after a workflow transition has been
// persisted. Consumers must tolerate duplicates; delivery is at-most-once.
type StatusChangedEvent struct {
	TableName  string    `json:"table_name"`
	RecordID   uint      `json:"record_id"`
	OldStatus  string    `json:"old_status"`
	NewStatus  string    `json:"new_status"`
	ChangedBy  *uint     `json:"changed_by,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher emits domain events. A Publisher built over a nil NATS connection
// is a no-op, so callers never need to branch on broker availability.
type Publisher struct {
	conn          *nats.Conn
	subjectPrefix string
	logger        zerolog.Logger
}

// NewPublisher constructs a publisher over the given connection. conn may be
// nil when the broker is not configured.
func NewPublisher(conn *nats.Conn, subjectPrefix string, logger zerolog.Logger) *Publisher {
	if subjectPrefix == "" {
		subjectPrefix = "slc"
	}
	return &Publisher{
		conn:          conn,
		subjectPrefix: subjectPrefix,
		logger:        logger.With().Str("component", "event_publisher").Logger(),
	}
}

// StatusChanged publishes a transition event on <prefix>.<table>.status_changed.
// Failures are logged and swallowed; event delivery never gates a transition.
func (p *Publisher) StatusChanged(event StatusChangedEvent) {
	if p == nil || p.conn == nil {
		return
	}

	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn().Err(err).Msg("failed to encode status changed event")
		return
	}

	subject := fmt.Sprintf("%s.%s.status_changed", p.subjectPrefix, event.TableName)
	if err := p.conn.Publish(subject, payload); err != nil {
		p.logger.Warn().Err(err).Str("subject", subject).Msg("failed to publish status changed event")
	}
}
