// Package policy is the single authoritative role/action decision table for
// workflow records. It is pure and stateless: the caller fetches the current
// status and passes it in.
package policy

import (
	"fmt"

	"github.com/vidyadoc/slc-api/internal/apperrors"
	"github.com/vidyadoc/slc-api/internal/status"
)

// Roles understood by the policy. Resolved once per request from the
// authenticated actor, never stored as session state.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
	RoleSuper = "super"
)

// Action is a policy-relevant operation on a workflow record.
type Action string

const (
	ActionCreate          Action = "create"
	ActionEdit            Action = "edit"
	ActionDelete          Action = "delete"
	ActionView            Action = "view"
	ActionSubmitForReview Action = "submit_for_review"
	ActionApproveOrReject Action = "approve_or_reject"
)

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin || role == RoleSuper
}

// Authorize decides whether role may perform action on a record currently in
// state. It returns a Forbidden error naming the required role on denial.
//
// Rules:
//   - Create: admin only.
//   - Edit: admin on editable states (draft/in_review/rejected); super on any
//     non-terminal state, which is the only path to change an accepted record.
//   - Delete: admin or super, and only while the record is draft/rejected.
//     Delete is never allowed on accepted records, for any role.
//   - View: admin and super see everything; user sees accepted records only.
//   - SubmitForReview: admin only.
//   - ApproveOrReject: super only.
func Authorize(role string, action Action, state status.Status) error {
	switch action {
	case ActionCreate:
		if role != RoleAdmin {
			return apperrors.Forbidden("only admin can create records", RoleAdmin)
		}
		return nil

	case ActionEdit:
		switch role {
		case RoleAdmin:
			if !status.CanEdit(state) {
				return apperrors.Forbidden(fmt.Sprintf("records in status %q cannot be edited", state), RoleSuper)
			}
			return nil
		case RoleSuper:
			if status.IsFinal(state) {
				return apperrors.Forbidden(fmt.Sprintf("records in status %q cannot be edited", state), "")
			}
			return nil
		default:
			return apperrors.Forbidden("only admin can edit records", RoleAdmin)
		}

	case ActionDelete:
		if role != RoleAdmin && role != RoleSuper {
			return apperrors.Forbidden("only admin can delete records", RoleAdmin)
		}
		if !status.CanDelete(state) {
			return apperrors.Forbidden(fmt.Sprintf("records in status %q cannot be deleted", state), "")
		}
		return nil

	case ActionView:
		if CanView(role, state) {
			return nil
		}
		return apperrors.Forbidden("record is not visible to this role", RoleAdmin)

	case ActionSubmitForReview:
		if role != RoleAdmin {
			return apperrors.Forbidden("only admin can submit records for review", RoleAdmin)
		}
		return nil

	case ActionApproveOrReject:
		if role != RoleSuper {
			return apperrors.Forbidden("only super admin can approve or reject records", RoleSuper)
		}
		return nil

	default:
		return apperrors.Forbidden(fmt.Sprintf("unknown action %q", action), "")
	}
}

// CanView reports whether role may read a record in state.
func CanView(role string, state status.Status) bool {
	if role == RoleAdmin || role == RoleSuper {
		return true
	}
	return state == status.Accepted
}

// Viewable is satisfied by any record exposing its workflow status.
type Viewable interface {
	WorkflowStatus() status.Status
}

// FilterVisible applies the View rule to a collection: user-role callers keep
// only accepted records, everyone else keeps all of them. List queries enforce
// the same rule at the SQL layer (repository role predicates); this helper is
// for records that arrive in memory by another path, such as cache reads.
func FilterVisible[T Viewable](records []T, role string) []T {
	if role == RoleAdmin || role == RoleSuper {
		return records
	}

	visible := make([]T, 0, len(records))
	for _, record := range records {
		if record.WorkflowStatus() == status.Accepted {
			visible = append(visible, record)
		}
	}
	return visible
}

// TransitionAction maps a legal status edge onto the action that gates it.
//
// Named edges follow the review workflow: entering review is an admin
// submission, leaving review is a super decision. Cancel edges count as
// editing (cancelling is an authoring decision on a live record), and the
// post-acceptance lifecycle (issue/archive) stays with the role that owns
// acceptance.
func TransitionAction(current, desired status.Status) Action {
	switch {
	case desired == status.InReview:
		return ActionSubmitForReview
	case current == status.InReview && (desired == status.Accepted || desired == status.Rejected):
		return ActionApproveOrReject
	case desired == status.Cancelled:
		return ActionEdit
	default:
		// accepted→issued, accepted→archived, issued→archived
		return ActionApproveOrReject
	}
}
