package sheet

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mishasvintus/bugcake/internal/domain"
	"github.com/mishasvintus/bugcake/internal/repository"
)

// CreateModule inserts a module at the end of the sheet's module list.
func CreateModule(ctx context.Context, exec repository.DBTX, m *domain.Module) error {
	query := `
		INSERT INTO modules (module_id, sheet_id, name, position)
		VALUES ($1, $2, $3, (SELECT COALESCE(MAX(position), 0) + 1 FROM modules WHERE sheet_id = $2))
		RETURNING position, created_at
	`
	err := exec.QueryRowContext(ctx, query, m.ModuleID, m.SheetID, m.Name).Scan(&m.Position, &m.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create module: %w", err)
	}
	return nil
}

// GetModule retrieves a module by ID.
func GetModule(ctx context.Context, exec repository.DBTX, moduleID string) (*domain.Module, error) {
	query := `
		SELECT module_id, sheet_id, name, position, created_at
		FROM modules
		WHERE module_id = $1
	`
	var m domain.Module
	err := exec.QueryRowContext(ctx, query, moduleID).Scan(&m.ModuleID, &m.SheetID, &m.Name, &m.Position, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get module: %w", err)
	}
	return &m, nil
}

// ListModules returns the modules of a sheet in display order.
func ListModules(ctx context.Context, exec repository.DBTX, sheetID string) ([]domain.Module, error) {
	query := `
		SELECT module_id, sheet_id, name, position, created_at
		FROM modules
		WHERE sheet_id = $1
		ORDER BY position
	`
	rows, err := exec.QueryContext(ctx, query, sheetID)
	if err != nil {
		return nil, fmt.Errorf("failed to list modules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	modules := make([]domain.Module, 0)
	for rows.Next() {
		var m domain.Module
		if err := rows.Scan(&m.ModuleID, &m.SheetID, &m.Name, &m.Position, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan module: %w", err)
		}
		modules = append(modules, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return modules, nil
}
