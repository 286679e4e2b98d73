package checklist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mishasvintus/bugcake/internal/domain"
	"github.com/mishasvintus/bugcake/internal/repository"
)

const columns = `c.checklist_id, c.source_sheet_id, c.name, c.test_case_type, c.goal_date,
	c.access_level, c.owner_id, c.created_at`

func scan(row interface{ Scan(...any) error }, c *domain.Checklist, extra ...any) error {
	dest := []any{
		&c.ChecklistID,
		&c.SourceSheetID,
		&c.Name,
		&c.TestCaseType,
		&c.GoalDate,
		&c.AccessLevel,
		&c.OwnerID,
		&c.CreatedAt,
	}
	return row.Scan(append(dest, extra...)...)
}

// Create inserts the checklist header. Items and executors are inserted separately.
func Create(ctx context.Context, exec repository.DBTX, c *domain.Checklist) error {
	query := `
		INSERT INTO checklists (checklist_id, source_sheet_id, name, test_case_type, goal_date, access_level, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`
	err := exec.QueryRowContext(ctx, query,
		c.ChecklistID, c.SourceSheetID, c.Name, c.TestCaseType, c.GoalDate, c.AccessLevel, c.OwnerID,
	).Scan(&c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create checklist: %w", err)
	}
	return nil
}

// InsertItem stores a test case snapshot.
func InsertItem(ctx context.Context, exec repository.DBTX, item *domain.ChecklistItem) error {
	query := `
		INSERT INTO checklist_items (item_id, checklist_id, original_test_case_id, sequence_number,
		                             module_name, title, details, execution_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := exec.ExecContext(ctx, query,
		item.ItemID, item.ChecklistID, item.OriginalTestCaseID, item.SequenceNumber,
		item.ModuleName, item.Title, item.Details, item.ExecutionStatus,
	)
	if err != nil {
		return fmt.Errorf("failed to insert checklist item: %w", err)
	}
	return nil
}

// InsertExecutor assigns a user to execute the checklist.
func InsertExecutor(ctx context.Context, exec repository.DBTX, checklistID, userID string) error {
	query := `INSERT INTO checklist_executors (checklist_id, user_id) VALUES ($1, $2)`
	if _, err := exec.ExecContext(ctx, query, checklistID, userID); err != nil {
		return fmt.Errorf("failed to insert executor: %w", err)
	}
	return nil
}

// Get retrieves a checklist header by ID.
func Get(ctx context.Context, exec repository.DBTX, checklistID string) (*domain.Checklist, error) {
	query := `SELECT ` + columns + ` FROM checklists c WHERE c.checklist_id = $1`
	var c domain.Checklist
	if err := scan(exec.QueryRowContext(ctx, query, checklistID), &c); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get checklist: %w", err)
	}
	return &c, nil
}

// ListForUser returns checklists the user is a member of plus public ones, newest first.
func ListForUser(ctx context.Context, exec repository.DBTX, userID string) ([]domain.ChecklistWithRole, error) {
	query := `SELECT ` + columns + `, m.role
		FROM checklists c
		LEFT JOIN members m
		       ON m.resource_type = 'checklist' AND m.resource_id = c.checklist_id AND m.user_id = $1
		WHERE m.user_id IS NOT NULL OR c.access_level = 'public'
		ORDER BY c.created_at DESC
	`
	rows, err := exec.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list checklists: %w", err)
	}
	defer func() { _ = rows.Close() }()

	checklists := make([]domain.ChecklistWithRole, 0)
	for rows.Next() {
		var c domain.ChecklistWithRole
		var role sql.NullString
		if err := scan(rows, &c.Checklist, &role); err != nil {
			return nil, fmt.Errorf("failed to scan checklist: %w", err)
		}
		c.Role = domain.RoleGuest
		if role.Valid {
			c.Role = domain.Role(role.String)
		}
		checklists = append(checklists, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return checklists, nil
}

// ListItems returns the items of a checklist in sequence order.
func ListItems(ctx context.Context, exec repository.DBTX, checklistID string) ([]domain.ChecklistItem, error) {
	query := `
		SELECT item_id, checklist_id, original_test_case_id, sequence_number, module_name, title,
		       details, execution_status, actual_results, executed_by, executed_at
		FROM checklist_items
		WHERE checklist_id = $1
		ORDER BY sequence_number
	`
	rows, err := exec.QueryContext(ctx, query, checklistID)
	if err != nil {
		return nil, fmt.Errorf("failed to list checklist items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	items := make([]domain.ChecklistItem, 0)
	for rows.Next() {
		var it domain.ChecklistItem
		if err := rows.Scan(
			&it.ItemID, &it.ChecklistID, &it.OriginalTestCaseID, &it.SequenceNumber, &it.ModuleName, &it.Title,
			&it.Details, &it.ExecutionStatus, &it.ActualResults, &it.ExecutedBy, &it.ExecutedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan checklist item: %w", err)
		}
		items = append(items, it)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return items, nil
}

// ListExecutors returns the user IDs assigned to the checklist.
func ListExecutors(ctx context.Context, exec repository.DBTX, checklistID string) ([]string, error) {
	query := `SELECT user_id FROM checklist_executors WHERE checklist_id = $1 ORDER BY user_id`
	rows, err := exec.QueryContext(ctx, query, checklistID)
	if err != nil {
		return nil, fmt.Errorf("failed to list executors: %w", err)
	}
	defer func() { _ = rows.Close() }()

	executors := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan executor: %w", err)
		}
		executors = append(executors, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return executors, nil
}

// UpdateItem records the execution result of an item and returns the updated row.
func UpdateItem(ctx context.Context, exec repository.DBTX, checklistID, itemID string, status domain.ExecutionStatus, actualResults, executorID string) (*domain.ChecklistItem, error) {
	query := `
		UPDATE checklist_items
		SET execution_status = $1, actual_results = $2, executed_by = $3, executed_at = NOW()
		WHERE checklist_id = $4 AND item_id = $5
		RETURNING item_id, checklist_id, original_test_case_id, sequence_number, module_name, title,
		          details, execution_status, actual_results, executed_by, executed_at
	`
	var it domain.ChecklistItem
	err := exec.QueryRowContext(ctx, query, status, actualResults, executorID, checklistID, itemID).Scan(
		&it.ItemID, &it.ChecklistID, &it.OriginalTestCaseID, &it.SequenceNumber, &it.ModuleName, &it.Title,
		&it.Details, &it.ExecutionStatus, &it.ActualResults, &it.ExecutedBy, &it.ExecutedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update checklist item: %w", err)
	}
	return &it, nil
}

// Progress counts checklist items by execution status.
func Progress(ctx context.Context, exec repository.DBTX, checklistID string) (map[domain.ExecutionStatus]int64, error) {
	query := `
		SELECT execution_status, COUNT(*)
		FROM checklist_items
		WHERE checklist_id = $1
		GROUP BY execution_status
	`
	rows, err := exec.QueryContext(ctx, query, checklistID)
	if err != nil {
		return nil, fmt.Errorf("failed to get checklist progress: %w", err)
	}
	defer func() { _ = rows.Close() }()

	progress := make(map[domain.ExecutionStatus]int64, len(domain.AllExecutionStatuses))
	for _, s := range domain.AllExecutionStatuses {
		progress[s] = 0
	}
	for rows.Next() {
		var status domain.ExecutionStatus
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan progress: %w", err)
		}
		progress[status] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return progress, nil
}

// UpdateAccessLevel changes checklist visibility.
func UpdateAccessLevel(ctx context.Context, exec repository.DBTX, checklistID string, level domain.AccessLevel) error {
	query := `UPDATE checklists SET access_level = $1 WHERE checklist_id = $2`
	result, err := exec.ExecContext(ctx, query, level, checklistID)
	if err != nil {
		return fmt.Errorf("failed to update checklist access level: %w", err)
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

// Delete removes a checklist with its items and executors.
func Delete(ctx context.Context, exec repository.DBTX, checklistID string) error {
	query := `DELETE FROM checklists WHERE checklist_id = $1`
	result, err := exec.ExecContext(ctx, query, checklistID)
	if err != nil {
		return fmt.Errorf("failed to delete checklist: %w", err)
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
