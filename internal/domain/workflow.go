package domain

import (
	"database/sql/driver"
	"errors"
	"fmt"
)

// ErrInvalidTransition is returned when an action is not legal from the current status.
var ErrInvalidTransition = errors.New("invalid workflow transition")

// WorkflowStatus represents the approval pipeline state of a test case.
type WorkflowStatus string

// Workflow status constants.
const (
	StatusOpen            WorkflowStatus = "Open"
	StatusWaitingApproval WorkflowStatus = "Waiting for QA Lead Approval"
	StatusNeedsRevision   WorkflowStatus = "Needs revision"
	StatusInProgress      WorkflowStatus = "In Progress"
	StatusApproved        WorkflowStatus = "Approved"
	StatusDeclined        WorkflowStatus = "Declined"
	StatusReopen          WorkflowStatus = "Reopen"
	StatusWontDo          WorkflowStatus = "Won't Do"
)

// AllWorkflowStatuses lists statuses in pipeline order.
var AllWorkflowStatuses = []WorkflowStatus{
	StatusOpen,
	StatusInProgress,
	StatusWaitingApproval,
	StatusNeedsRevision,
	StatusApproved,
	StatusDeclined,
	StatusReopen,
	StatusWontDo,
}

// NewWorkflowStatus creates a new WorkflowStatus with validation.
func NewWorkflowStatus(s string) (WorkflowStatus, error) {
	status := WorkflowStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid workflow status: %q", s)
	}
	return status, nil
}

// IsValid checks if the status is one of the known statuses.
func (s WorkflowStatus) IsValid() bool {
	for _, known := range AllWorkflowStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// IsEditable reports whether test case content may be changed in this status.
func (s WorkflowStatus) IsEditable() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusNeedsRevision, StatusReopen:
		return true
	}
	return false
}

// Scan implements sql.Scanner interface for automatic validation when reading from database.
func (s *WorkflowStatus) Scan(value any) error {
	str, err := scanString(value, "WorkflowStatus")
	if err != nil {
		return err
	}
	status, err := NewWorkflowStatus(str)
	if err != nil {
		return err
	}
	*s = status
	return nil
}

// Value implements driver.Valuer interface for writing to database.
func (s WorkflowStatus) Value() (driver.Value, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("invalid WorkflowStatus value: %s", s)
	}
	return string(s), nil
}

// WorkflowAction is a user-triggered operation that moves a test case between statuses.
type WorkflowAction string

// Workflow action constants.
const (
	ActionStart           WorkflowAction = "start"
	ActionSubmit          WorkflowAction = "submit"
	ActionApprove         WorkflowAction = "approve"
	ActionDecline         WorkflowAction = "decline"
	ActionRequestRevision WorkflowAction = "request_revision"
	ActionReopen          WorkflowAction = "reopen"
	ActionWontDo          WorkflowAction = "wont_do"
)

type transitionRule struct {
	from    []WorkflowStatus
	to      WorkflowStatus
	minRole Role
}

// workflowRules is the complete transition table. Anything not listed is illegal.
var workflowRules = map[WorkflowAction]transitionRule{
	ActionStart: {
		from:    []WorkflowStatus{StatusOpen, StatusNeedsRevision, StatusReopen},
		to:      StatusInProgress,
		minRole: RoleQATester,
	},
	ActionSubmit: {
		from:    []WorkflowStatus{StatusOpen, StatusInProgress, StatusNeedsRevision, StatusReopen},
		to:      StatusWaitingApproval,
		minRole: RoleQATester,
	},
	ActionApprove: {
		from:    []WorkflowStatus{StatusWaitingApproval},
		to:      StatusApproved,
		minRole: RoleQALead,
	},
	ActionDecline: {
		from:    []WorkflowStatus{StatusWaitingApproval},
		to:      StatusDeclined,
		minRole: RoleQALead,
	},
	ActionRequestRevision: {
		from:    []WorkflowStatus{StatusWaitingApproval},
		to:      StatusNeedsRevision,
		minRole: RoleQALead,
	},
	ActionReopen: {
		from:    []WorkflowStatus{StatusApproved, StatusDeclined, StatusWontDo},
		to:      StatusReopen,
		minRole: RoleQALead,
	},
	ActionWontDo: {
		from:    []WorkflowStatus{StatusOpen, StatusInProgress, StatusNeedsRevision, StatusReopen},
		to:      StatusWontDo,
		minRole: RoleQALead,
	},
}

// workflowActionOrder keeps AvailableActions output stable.
var workflowActionOrder = []WorkflowAction{
	ActionStart,
	ActionSubmit,
	ActionApprove,
	ActionDecline,
	ActionRequestRevision,
	ActionReopen,
	ActionWontDo,
}

// NewWorkflowAction creates a new WorkflowAction with validation.
func NewWorkflowAction(s string) (WorkflowAction, error) {
	action := WorkflowAction(s)
	if !action.IsValid() {
		return "", fmt.Errorf("invalid workflow action: %q", s)
	}
	return action, nil
}

// IsValid checks if the action is known.
func (a WorkflowAction) IsValid() bool {
	_, ok := workflowRules[a]
	return ok
}

// RequiredRole returns the lowest role allowed to perform the action.
func (a WorkflowAction) RequiredRole() Role {
	return workflowRules[a].minRole
}

// IsReview reports whether the action resolves a pending approval.
func (a WorkflowAction) IsReview() bool {
	return a == ActionApprove || a == ActionDecline || a == ActionRequestRevision
}

// Transition returns the status reached by applying action to from.
func Transition(from WorkflowStatus, action WorkflowAction) (WorkflowStatus, error) {
	rule, ok := workflowRules[action]
	if !ok {
		return "", fmt.Errorf("%w: unknown action %q", ErrInvalidTransition, action)
	}
	for _, s := range rule.from {
		if s == from {
			return rule.to, nil
		}
	}
	return "", fmt.Errorf("%w: cannot %s from %q", ErrInvalidTransition, action, from)
}

// AvailableActions lists the actions role may invoke on a test case in status.
func AvailableActions(status WorkflowStatus, role Role) []WorkflowAction {
	actions := make([]WorkflowAction, 0)
	for _, action := range workflowActionOrder {
		if !role.AtLeast(workflowRules[action].minRole) {
			continue
		}
		if _, err := Transition(status, action); err == nil {
			actions = append(actions, action)
		}
	}
	return actions
}
