package domain

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// SheetType represents the kind of test cases a sheet holds.
type SheetType string

// Sheet type constants.
const (
	SheetFunctionality    SheetType = "functionality"
	SheetAltTextAriaLabel SheetType = "altTextAriaLabel"
)

// NewSheetType creates a new SheetType with validation.
func NewSheetType(s string) (SheetType, error) {
	t := SheetType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid sheet type: %q (must be one of: %s, %s)", s, SheetFunctionality, SheetAltTextAriaLabel)
	}
	return t, nil
}

// IsValid checks if the sheet type is known.
func (t SheetType) IsValid() bool {
	return t == SheetFunctionality || t == SheetAltTextAriaLabel
}

// Scan implements sql.Scanner interface.
func (t *SheetType) Scan(value any) error {
	str, err := scanString(value, "SheetType")
	if err != nil {
		return err
	}
	st, err := NewSheetType(str)
	if err != nil {
		return err
	}
	*t = st
	return nil
}

// Value implements driver.Valuer interface.
func (t SheetType) Value() (driver.Value, error) {
	if !t.IsValid() {
		return nil, fmt.Errorf("invalid SheetType value: %s", t)
	}
	return string(t), nil
}

// Sheet is a spreadsheet-like grouping of test cases of a single type.
type Sheet struct {
	SheetID     string      `json:"sheet_id"`
	Name        string      `json:"name"`
	Type        SheetType   `json:"type"`
	AccessLevel AccessLevel `json:"access_level"`
	OwnerID     string      `json:"owner_id"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// SheetWithRole is a sheet as seen by a particular user.
type SheetWithRole struct {
	Sheet
	Role Role `json:"role"`
}

// Module groups test cases inside a sheet.
type Module struct {
	ModuleID  string    `json:"module_id"`
	SheetID   string    `json:"sheet_id"`
	Name      string    `json:"name"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

// SheetSummary counts test cases of a sheet by status and module.
type SheetSummary struct {
	SheetID  string                   `json:"sheet_id"`
	Total    int64                    `json:"total"`
	ByStatus map[WorkflowStatus]int64 `json:"by_status"`
	ByModule map[string]int64         `json:"by_module"`
}
