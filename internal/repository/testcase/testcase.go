package testcase

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/mishasvintus/bugcake/internal/domain"
	"github.com/mishasvintus/bugcake/internal/repository"
)

const columns = `test_case_id, sheet_id, module_id, sequence_number, title, workflow_status,
	details, created_by, updated_by, created_at, updated_at`

func scan(row interface{ Scan(...any) error }, tc *domain.TestCase) error {
	return row.Scan(
		&tc.TestCaseID,
		&tc.SheetID,
		&tc.ModuleID,
		&tc.SequenceNumber,
		&tc.Title,
		&tc.WorkflowStatus,
		&tc.Details,
		&tc.CreatedBy,
		&tc.UpdatedBy,
		&tc.CreatedAt,
		&tc.UpdatedAt,
	)
}

func scanAll(rows *sql.Rows) ([]domain.TestCase, error) {
	defer func() { _ = rows.Close() }()

	testCases := make([]domain.TestCase, 0)
	for rows.Next() {
		var tc domain.TestCase
		if err := scan(rows, &tc); err != nil {
			return nil, fmt.Errorf("failed to scan test case: %w", err)
		}
		testCases = append(testCases, tc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return testCases, nil
}

// Create inserts a new test case.
func Create(ctx context.Context, exec repository.DBTX, tc *domain.TestCase) error {
	query := `
		INSERT INTO test_cases (test_case_id, sheet_id, module_id, sequence_number, title,
		                        workflow_status, details, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`
	err := exec.QueryRowContext(ctx, query,
		tc.TestCaseID, tc.SheetID, tc.ModuleID, tc.SequenceNumber, tc.Title,
		tc.WorkflowStatus, tc.Details, tc.CreatedBy,
	).Scan(&tc.CreatedAt, &tc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create test case: %w", err)
	}
	return nil
}

// Get retrieves a test case by ID.
func Get(ctx context.Context, exec repository.DBTX, testCaseID string) (*domain.TestCase, error) {
	query := `SELECT ` + columns + ` FROM test_cases WHERE test_case_id = $1`
	var tc domain.TestCase
	if err := scan(exec.QueryRowContext(ctx, query, testCaseID), &tc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get test case: %w", err)
	}
	return &tc, nil
}

// ListBySheet returns the test cases of a sheet ordered by sequence number.
func ListBySheet(ctx context.Context, exec repository.DBTX, sheetID string, filter domain.TestCaseFilter) ([]domain.TestCase, error) {
	query := `SELECT ` + columns + `
		FROM test_cases
		WHERE sheet_id = $1
		  AND ($2::text IS NULL OR workflow_status = $2)
		  AND ($3::uuid IS NULL OR module_id = $3)
		ORDER BY sequence_number
	`
	var status, moduleID any
	if filter.Status != nil {
		status = string(*filter.Status)
	}
	if filter.ModuleID != nil {
		moduleID = *filter.ModuleID
	}

	rows, err := exec.QueryContext(ctx, query, sheetID, status, moduleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list test cases: %w", err)
	}
	return scanAll(rows)
}

// ListByIDs returns the test cases of a sheet with the given IDs, ordered by sequence number.
// Rows are locked so their status cannot change before the caller's transaction ends.
func ListByIDs(ctx context.Context, exec repository.DBTX, sheetID string, ids []string) ([]domain.TestCase, error) {
	query := `SELECT ` + columns + `
		FROM test_cases
		WHERE sheet_id = $1 AND test_case_id = ANY($2::uuid[])
		ORDER BY sequence_number
		FOR SHARE
	`
	rows, err := exec.QueryContext(ctx, query, sheetID, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to list test cases by id: %w", err)
	}
	return scanAll(rows)
}

// Update replaces the editable fields of a test case.
// Returns sql.ErrNoRows if the test case doesn't exist or left an editable status.
func Update(ctx context.Context, exec repository.DBTX, tc *domain.TestCase) error {
	query := `
		UPDATE test_cases
		SET module_id = $1, title = $2, details = $3, updated_by = $4, updated_at = NOW()
		WHERE test_case_id = $5
		  AND workflow_status IN ('Open', 'In Progress', 'Needs revision', 'Reopen')
		RETURNING updated_at
	`
	err := exec.QueryRowContext(ctx, query, tc.ModuleID, tc.Title, tc.Details, tc.UpdatedBy, tc.TestCaseID).
		Scan(&tc.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return err
		}
		return fmt.Errorf("failed to update test case: %w", err)
	}
	return nil
}

// Delete removes a test case while it is still editable.
func Delete(ctx context.Context, exec repository.DBTX, testCaseID string) error {
	query := `
		DELETE FROM test_cases
		WHERE test_case_id = $1
		  AND workflow_status IN ('Open', 'In Progress', 'Needs revision', 'Reopen')
	`
	result, err := exec.ExecContext(ctx, query, testCaseID)
	if err != nil {
		return fmt.Errorf("failed to delete test case: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// UpdateStatus moves a test case from one status to another.
// Returns sql.ErrNoRows if the test case is no longer in status from.
func UpdateStatus(ctx context.Context, exec repository.DBTX, testCaseID string, from, to domain.WorkflowStatus, actorID string) error {
	query := `
		UPDATE test_cases
		SET workflow_status = $1, updated_by = $2, updated_at = NOW()
		WHERE test_case_id = $3 AND workflow_status = $4
	`
	result, err := exec.ExecContext(ctx, query, to, actorID, testCaseID, from)
	if err != nil {
		return fmt.Errorf("failed to update test case status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return sql.ErrNoRows
	}

	return nil
}
