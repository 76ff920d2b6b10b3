// Package status implements the certificate workflow state machine. It is
// pure: no I/O, no storage, just the transition table.
package status

import (
	"fmt"

	"github.com/vidyadoc/slc-api/internal/apperrors"
)

// Status is a workflow state of a school, student or certificate record.
type Status string

const (
	Draft     Status = "draft"
	InReview  Status = "in_review"
	Rejected  Status = "rejected"
	Accepted  Status = "accepted"
	Issued    Status = "issued"
	Archived  Status = "archived"
	Cancelled Status = "cancelled"
)

// All lists every workflow status in lifecycle order.
var All = []Status{Draft, InReview, Rejected, Accepted, Issued, Archived, Cancelled}

// transitions is the directed adjacency list of legal status edges.
// Archived and cancelled are terminal.
var transitions = map[Status][]Status{
	Draft:     {InReview, Cancelled},
	InReview:  {Rejected, Accepted, Cancelled},
	Rejected:  {InReview, Cancelled},
	Accepted:  {Issued, Archived},
	Issued:    {Archived},
	Archived:  {},
	Cancelled: {},
}

// Valid reports whether s is one of the enumerated workflow statuses.
func Valid(s Status) bool {
	_, ok := transitions[s]
	return ok
}

// AllowedTransitions returns the legal destination statuses from s. The
// returned slice is a copy and safe to mutate.
func AllowedTransitions(s Status) []Status {
	return append([]Status(nil), transitions[s]...)
}

// ValidateTransition checks the edge current→desired. A same-status
// transition is always a no-op success. Illegal edges return an
// InvalidTransition error carrying the legal destinations from current.
func ValidateTransition(current, desired Status) error {
	if !Valid(current) {
		return apperrors.Validation(fmt.Sprintf("invalid current status %q", current), map[string]string{"status": "unknown status"})
	}
	if !Valid(desired) {
		return apperrors.Validation(fmt.Sprintf("invalid status %q", desired), map[string]string{"status": "unknown status"})
	}
	if current == desired {
		return nil
	}

	for _, allowed := range transitions[current] {
		if allowed == desired {
			return nil
		}
	}

	return apperrors.InvalidTransition(string(current), string(desired), Strings(transitions[current]))
}

// IsFinal reports whether s has no outgoing edges.
func IsFinal(s Status) bool {
	return s == Archived || s == Cancelled
}

// CanEdit reports whether a record in s may still be edited.
func CanEdit(s Status) bool {
	return s == Draft || s == InReview || s == Rejected
}

// CanDelete reports whether a record in s may be deleted. Deletion is
// stricter than editing: once a record enters review it can only move
// through the workflow, never disappear.
func CanDelete(s Status) bool {
	return s == Draft || s == Rejected
}

// RequiresReview reports whether s is waiting on an approval decision.
func RequiresReview(s Status) bool {
	return s == InReview
}

// IsApproved reports whether s represents an accepted record.
func IsApproved(s Status) bool {
	return s == Accepted || s == Issued
}

// Strings converts a status slice for error payloads and JSON responses.
func Strings(statuses []Status) []string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, string(s))
	}
	return out
}

// Parse normalizes a raw string into a Status, reporting whether it is valid.
func Parse(raw string) (Status, bool) {
	s := Status(raw)
	return s, Valid(s)
}
