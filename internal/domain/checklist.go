package domain

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// ExecutionStatus is the result of running a checklist item.
type ExecutionStatus string

// Execution status constants.
const (
	ExecNotRun  ExecutionStatus = "Not Run"
	ExecPassed  ExecutionStatus = "Passed"
	ExecFailed  ExecutionStatus = "Failed"
	ExecBlocked ExecutionStatus = "Blocked"
	ExecSkipped ExecutionStatus = "Skipped"
)

// AllExecutionStatuses lists execution statuses in display order.
var AllExecutionStatuses = []ExecutionStatus{ExecNotRun, ExecPassed, ExecFailed, ExecBlocked, ExecSkipped}

// NewExecutionStatus creates a new ExecutionStatus with validation.
func NewExecutionStatus(s string) (ExecutionStatus, error) {
	status := ExecutionStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid execution status: %q", s)
	}
	return status, nil
}

// IsValid checks if the execution status is known.
func (s ExecutionStatus) IsValid() bool {
	for _, known := range AllExecutionStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Scan implements sql.Scanner interface.
func (s *ExecutionStatus) Scan(value any) error {
	str, err := scanString(value, "ExecutionStatus")
	if err != nil {
		return err
	}
	status, err := NewExecutionStatus(str)
	if err != nil {
		return err
	}
	*s = status
	return nil
}

// Value implements driver.Valuer interface.
func (s ExecutionStatus) Value() (driver.Value, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("invalid ExecutionStatus value: %s", s)
	}
	return string(s), nil
}

// Checklist is a frozen, assignable set of approved test cases.
type Checklist struct {
	ChecklistID   string                    `json:"checklist_id"`
	SourceSheetID *string                   `json:"source_sheet_id,omitempty"`
	Name          string                    `json:"name"`
	TestCaseType  SheetType                 `json:"test_case_type"`
	GoalDate      time.Time                 `json:"goal_date"`
	AccessLevel   AccessLevel               `json:"access_level"`
	OwnerID       string                    `json:"owner_id"`
	CreatedAt     time.Time                 `json:"created_at"`
	Items         []ChecklistItem           `json:"items,omitempty"`
	Executors     []string                  `json:"executors,omitempty"`
	Progress      map[ExecutionStatus]int64 `json:"progress,omitempty"`
}

// ChecklistItem is a snapshot of a test case plus its execution state.
type ChecklistItem struct {
	ItemID             string          `json:"item_id"`
	ChecklistID        string          `json:"checklist_id"`
	OriginalTestCaseID string          `json:"original_test_case_id"`
	SequenceNumber     int             `json:"sequence_number"`
	ModuleName         string          `json:"module_name"`
	Title              string          `json:"title"`
	Details            TestCaseDetails `json:"details"`
	ExecutionStatus    ExecutionStatus `json:"execution_status"`
	ActualResults      string          `json:"actual_results,omitempty"`
	ExecutedBy         *string         `json:"executed_by,omitempty"`
	ExecutedAt         *time.Time      `json:"executed_at,omitempty"`
}

// NewChecklistItem snapshots a test case. moduleName is resolved by the caller.
func NewChecklistItem(itemID, checklistID string, tc *TestCase, moduleName string) ChecklistItem {
	return ChecklistItem{
		ItemID:             itemID,
		ChecklistID:        checklistID,
		OriginalTestCaseID: tc.TestCaseID,
		SequenceNumber:     tc.SequenceNumber,
		ModuleName:         moduleName,
		Title:              tc.Title,
		Details:            tc.Details,
		ExecutionStatus:    ExecNotRun,
	}
}

// ChecklistWithRole is a checklist as seen by a particular user.
type ChecklistWithRole struct {
	Checklist
	Role Role `json:"role"`
}
