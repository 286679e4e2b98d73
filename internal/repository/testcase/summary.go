package testcase

import (
	"context"
	"fmt"

	"github.com/mishasvintus/bugcake/internal/domain"
	"github.com/mishasvintus/bugcake/internal/repository"
)

// UnassignedModule is the key used for test cases without a module in summaries.
const UnassignedModule = "(no module)"

// Summary counts the test cases of a sheet by workflow status and by module name.
func Summary(ctx context.Context, exec repository.DBTX, sheetID string) (*domain.SheetSummary, error) {
	summary := &domain.SheetSummary{
		SheetID:  sheetID,
		ByStatus: make(map[domain.WorkflowStatus]int64),
		ByModule: make(map[string]int64),
	}

	statusQuery := `
		SELECT workflow_status, COUNT(*)
		FROM test_cases
		WHERE sheet_id = $1
		GROUP BY workflow_status
	`
	rows, err := exec.QueryContext(ctx, statusQuery, sheetID)
	if err != nil {
		return nil, fmt.Errorf("failed to count test cases by status: %w", err)
	}
	for rows.Next() {
		var status domain.WorkflowStatus
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		summary.ByStatus[status] = count
		summary.Total += count
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	_ = rows.Close()

	moduleQuery := `
		SELECT COALESCE(m.name, $2), COUNT(*)
		FROM test_cases tc
		LEFT JOIN modules m ON m.module_id = tc.module_id
		WHERE tc.sheet_id = $1
		GROUP BY 1
	`
	rows, err = exec.QueryContext(ctx, moduleQuery, sheetID, UnassignedModule)
	if err != nil {
		return nil, fmt.Errorf("failed to count test cases by module: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var name string
		var count int64
		if err := rows.Scan(&name, &count); err != nil {
			return nil, fmt.Errorf("failed to scan module count: %w", err)
		}
		summary.ByModule[name] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return summary, nil
}
