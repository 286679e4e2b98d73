// Package export renders sheets and checklists as tables and writes them to Google Sheets.
package export

import (
	"time"

	"github.com/mishasvintus/bugcake/internal/domain"
)

// Table is a header row plus data rows.
type Table struct {
	Header []string
	Rows   [][]string
}

// Values converts the table into the cell matrix expected by the Sheets API.
func (t Table) Values() [][]interface{} {
	values := make([][]interface{}, 0, len(t.Rows)+1)
	values = append(values, toCells(t.Header))
	for _, row := range t.Rows {
		values = append(values, toCells(row))
	}
	return values
}

func toCells(row []string) []interface{} {
	cells := make([]interface{}, len(row))
	for i, v := range row {
		cells[i] = v
	}
	return cells
}

var (
	functionalityHeader = []string{
		"Test Case ID", "Module", "Title", "Level", "Scenario", "Pre-conditions",
		"Steps", "Expected Results", "JIRA User Story", "Workflow Status",
	}
	altTextHeader = []string{
		"Test Case ID", "Module", "Title", "Persona", "Page Section", "Wireframe Link",
		"Image Link", "Alt Text / Aria Label", "Remarks", "Workflow Status",
	}
)

func detailColumns(t domain.SheetType, d domain.TestCaseDetails) []string {
	if t == domain.SheetAltTextAriaLabel {
		return []string{d.Persona, d.PageSection, d.WireframeLink, d.ImageLink, d.AltTextAriaLabel, d.Remarks}
	}
	return []string{d.Level, d.Scenario, d.PreConditions, d.Steps, d.ExpectedResults, d.JiraUserStory}
}

// SheetTable renders the test cases of a sheet. moduleNames maps module IDs to names.
func SheetTable(sheetType domain.SheetType, testCases []domain.TestCase, moduleNames map[string]string) Table {
	header := functionalityHeader
	if sheetType == domain.SheetAltTextAriaLabel {
		header = altTextHeader
	}

	rows := make([][]string, 0, len(testCases))
	for i := range testCases {
		tc := &testCases[i]
		module := ""
		if tc.ModuleID != nil {
			module = moduleNames[*tc.ModuleID]
		}
		row := []string{tc.DisplayID(), module, tc.Title}
		row = append(row, detailColumns(sheetType, tc.Details)...)
		row = append(row, string(tc.WorkflowStatus))
		rows = append(rows, row)
	}

	return Table{Header: header, Rows: rows}
}

// ChecklistTable renders checklist items with their execution state.
// userNames maps executor IDs to display names.
func ChecklistTable(c *domain.Checklist, userNames map[string]string) Table {
	base := functionalityHeader
	if c.TestCaseType == domain.SheetAltTextAriaLabel {
		base = altTextHeader
	}
	header := append([]string{}, base[:len(base)-1]...)
	header = append(header, "Execution Status", "Actual Results", "Executed By", "Executed At")

	rows := make([][]string, 0, len(c.Items))
	for _, it := range c.Items {
		row := []string{domain.FormatSequence(it.SequenceNumber), it.ModuleName, it.Title}
		row = append(row, detailColumns(c.TestCaseType, it.Details)...)

		executedBy, executedAt := "", ""
		if it.ExecutedBy != nil {
			executedBy = userNames[*it.ExecutedBy]
			if executedBy == "" {
				executedBy = *it.ExecutedBy
			}
		}
		if it.ExecutedAt != nil {
			executedAt = it.ExecutedAt.UTC().Format(time.RFC3339)
		}
		row = append(row, string(it.ExecutionStatus), it.ActualResults, executedBy, executedAt)
		rows = append(rows, row)
	}

	return Table{Header: header, Rows: rows}
}
