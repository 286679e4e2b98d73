package testcase

import (
	"context"
	"fmt"

	"github.com/mishasvintus/bugcake/internal/domain"
	"github.com/mishasvintus/bugcake/internal/repository"
)

// InsertStatusChange records a workflow transition.
func InsertStatusChange(ctx context.Context, exec repository.DBTX, c *domain.StatusChange) error {
	query := `
		INSERT INTO test_case_status_history (test_case_id, from_status, to_status, action, actor_id, note)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING change_id, created_at
	`
	err := exec.QueryRowContext(ctx, query,
		c.TestCaseID, c.FromStatus, c.ToStatus, string(c.Action), c.ActorID, c.Note,
	).Scan(&c.ChangeID, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert status change: %w", err)
	}
	return nil
}

// ListStatusHistory returns the transitions of a test case, oldest first.
func ListStatusHistory(ctx context.Context, exec repository.DBTX, testCaseID string) ([]domain.StatusChange, error) {
	query := `
		SELECT change_id, test_case_id, from_status, to_status, action, actor_id, note, created_at
		FROM test_case_status_history
		WHERE test_case_id = $1
		ORDER BY change_id
	`
	rows, err := exec.QueryContext(ctx, query, testCaseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get status history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	changes := make([]domain.StatusChange, 0)
	for rows.Next() {
		var c domain.StatusChange
		var action string
		if err := rows.Scan(&c.ChangeID, &c.TestCaseID, &c.FromStatus, &c.ToStatus, &action, &c.ActorID, &c.Note, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan status change: %w", err)
		}
		c.Action = domain.WorkflowAction(action)
		changes = append(changes, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return changes, nil
}
