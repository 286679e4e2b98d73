package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidDetails is returned when test case details do not match the sheet type.
var ErrInvalidDetails = errors.New("invalid test case details")

// Functionality levels and scenarios.
const (
	LevelHigh = "High"
	LevelLow  = "Low"

	ScenarioHappyPath   = "Happy Path"
	ScenarioUnhappyPath = "Unhappy Path"
)

// TestCaseDetails holds the type-specific columns of a test case.
// Functionality and alt-text fields are mutually exclusive.
type TestCaseDetails struct {
	// functionality
	Level           string `json:"level,omitempty" yaml:"level,omitempty"`
	Scenario        string `json:"scenario,omitempty" yaml:"scenario,omitempty"`
	PreConditions   string `json:"pre_conditions,omitempty" yaml:"pre_conditions,omitempty"`
	Steps           string `json:"steps,omitempty" yaml:"steps,omitempty"`
	ExpectedResults string `json:"expected_results,omitempty" yaml:"expected_results,omitempty"`
	JiraUserStory   string `json:"jira_user_story,omitempty" yaml:"jira_user_story,omitempty"`

	// altTextAriaLabel
	Persona          string `json:"persona,omitempty" yaml:"persona,omitempty"`
	PageSection      string `json:"page_section,omitempty" yaml:"page_section,omitempty"`
	WireframeLink    string `json:"wireframe_link,omitempty" yaml:"wireframe_link,omitempty"`
	ImageLink        string `json:"image_link,omitempty" yaml:"image_link,omitempty"`
	AltTextAriaLabel string `json:"alt_text_aria_label,omitempty" yaml:"alt_text_aria_label,omitempty"`
	Remarks          string `json:"remarks,omitempty" yaml:"remarks,omitempty"`
}

func (d TestCaseDetails) hasFunctionality() bool {
	return d.Level != "" || d.Scenario != "" || d.PreConditions != "" ||
		d.Steps != "" || d.ExpectedResults != "" || d.JiraUserStory != ""
}

func (d TestCaseDetails) hasAltText() bool {
	return d.Persona != "" || d.PageSection != "" || d.WireframeLink != "" ||
		d.ImageLink != "" || d.AltTextAriaLabel != "" || d.Remarks != ""
}

// Validate checks that the details fit a sheet of type t.
func (d TestCaseDetails) Validate(t SheetType) error {
	switch t {
	case SheetFunctionality:
		if d.hasAltText() {
			return fmt.Errorf("%w: alt text fields on a functionality test case", ErrInvalidDetails)
		}
		if d.Level != "" && d.Level != LevelHigh && d.Level != LevelLow {
			return fmt.Errorf("%w: level must be %s or %s", ErrInvalidDetails, LevelHigh, LevelLow)
		}
		if d.Scenario != "" && d.Scenario != ScenarioHappyPath && d.Scenario != ScenarioUnhappyPath {
			return fmt.Errorf("%w: scenario must be %s or %s", ErrInvalidDetails, ScenarioHappyPath, ScenarioUnhappyPath)
		}
	case SheetAltTextAriaLabel:
		if d.hasFunctionality() {
			return fmt.Errorf("%w: functionality fields on an alt text test case", ErrInvalidDetails)
		}
	default:
		return fmt.Errorf("%w: unknown sheet type %q", ErrInvalidDetails, t)
	}
	return nil
}

// Scan implements sql.Scanner interface for the JSONB details column.
func (d *TestCaseDetails) Scan(value any) error {
	if value == nil {
		*d = TestCaseDetails{}
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into TestCaseDetails", value)
	}
	return json.Unmarshal(raw, d)
}

// Value implements driver.Valuer interface.
func (d TestCaseDetails) Value() (driver.Value, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// TestCase is a single test case belonging to a sheet module.
type TestCase struct {
	TestCaseID     string          `json:"test_case_id"`
	SheetID        string          `json:"sheet_id"`
	ModuleID       *string         `json:"module_id,omitempty"`
	SequenceNumber int             `json:"sequence_number"`
	Title          string          `json:"title"`
	WorkflowStatus WorkflowStatus  `json:"workflow_status"`
	Details        TestCaseDetails `json:"details"`
	CreatedBy      string          `json:"created_by"`
	UpdatedBy      *string         `json:"updated_by,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// DisplayID renders the sequence number the way sheets show it, e.g. TC_007.
func (tc *TestCase) DisplayID() string {
	return FormatSequence(tc.SequenceNumber)
}

// FormatSequence formats a test case sequence number.
func FormatSequence(n int) string {
	return fmt.Sprintf("TC_%03d", n)
}

// TestCaseInput carries user-editable test case fields.
type TestCaseInput struct {
	ModuleID *string
	Title    string
	Details  TestCaseDetails
}

// Normalize trims whitespace and validates the input against the sheet type.
func (in *TestCaseInput) Normalize(t SheetType) error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidDetails)
	}
	return in.Details.Validate(t)
}

// TestCaseFilter narrows test case listings.
type TestCaseFilter struct {
	Status   *WorkflowStatus
	ModuleID *string
}

// StatusChange is one recorded workflow transition.
type StatusChange struct {
	ChangeID   int64          `json:"change_id"`
	TestCaseID string         `json:"test_case_id"`
	FromStatus WorkflowStatus `json:"from_status"`
	ToStatus   WorkflowStatus `json:"to_status"`
	Action     WorkflowAction `json:"action"`
	ActorID    string         `json:"actor_id"`
	Note       string         `json:"note,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// TestCaseView is a test case together with the workflow actions open to the viewer.
type TestCaseView struct {
	TestCase
	AvailableActions []WorkflowAction `json:"available_actions"`
}

// NewTestCaseView computes the actions role may apply to tc.
func NewTestCaseView(tc TestCase, role Role) TestCaseView {
	return TestCaseView{TestCase: tc, AvailableActions: AvailableActions(tc.WorkflowStatus, role)}
}
