package sheet

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mishasvintus/bugcake/internal/domain"
	"github.com/mishasvintus/bugcake/internal/repository"
)

const sheetColumns = `sheet_id, name, sheet_type, access_level, owner_id, created_at, updated_at`

func scanSheet(row interface{ Scan(...any) error }, s *domain.Sheet) error {
	return row.Scan(&s.SheetID, &s.Name, &s.Type, &s.AccessLevel, &s.OwnerID, &s.CreatedAt, &s.UpdatedAt)
}

// Create inserts a new sheet.
func Create(ctx context.Context, exec repository.DBTX, s *domain.Sheet) error {
	query := `
		INSERT INTO sheets (sheet_id, name, sheet_type, access_level, owner_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`
	err := exec.QueryRowContext(ctx, query, s.SheetID, s.Name, s.Type, s.AccessLevel, s.OwnerID).
		Scan(&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	return nil
}

// Get retrieves a sheet by ID.
func Get(ctx context.Context, exec repository.DBTX, sheetID string) (*domain.Sheet, error) {
	query := `SELECT ` + sheetColumns + ` FROM sheets WHERE sheet_id = $1`
	var s domain.Sheet
	if err := scanSheet(exec.QueryRowContext(ctx, query, sheetID), &s); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get sheet: %w", err)
	}
	return &s, nil
}

// ListForUser returns sheets the user is a member of plus public sheets, newest first.
// Public sheets without a membership carry the guest role.
func ListForUser(ctx context.Context, exec repository.DBTX, userID string) ([]domain.SheetWithRole, error) {
	query := `
		SELECT s.sheet_id, s.name, s.sheet_type, s.access_level, s.owner_id, s.created_at, s.updated_at, m.role
		FROM sheets s
		LEFT JOIN members m
		       ON m.resource_type = 'sheet' AND m.resource_id = s.sheet_id AND m.user_id = $1
		WHERE m.user_id IS NOT NULL OR s.access_level = 'public'
		ORDER BY s.created_at DESC
	`
	rows, err := exec.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sheets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	sheets := make([]domain.SheetWithRole, 0)
	for rows.Next() {
		var s domain.SheetWithRole
		var role sql.NullString
		if err := rows.Scan(&s.SheetID, &s.Name, &s.Type, &s.AccessLevel, &s.OwnerID, &s.CreatedAt, &s.UpdatedAt, &role); err != nil {
			return nil, fmt.Errorf("failed to scan sheet: %w", err)
		}
		s.Role = domain.RoleGuest
		if role.Valid {
			s.Role = domain.Role(role.String)
		}
		sheets = append(sheets, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return sheets, nil
}

// Rename changes the sheet name.
func Rename(ctx context.Context, exec repository.DBTX, sheetID, name string) error {
	query := `UPDATE sheets SET name = $1, updated_at = NOW() WHERE sheet_id = $2`
	return execOne(ctx, exec, "rename sheet", query, name, sheetID)
}

// UpdateAccessLevel changes the sheet visibility.
func UpdateAccessLevel(ctx context.Context, exec repository.DBTX, sheetID string, level domain.AccessLevel) error {
	query := `UPDATE sheets SET access_level = $1, updated_at = NOW() WHERE sheet_id = $2`
	return execOne(ctx, exec, "update sheet access level", query, level, sheetID)
}

// Touch bumps updated_at.
func Touch(ctx context.Context, exec repository.DBTX, sheetID string) error {
	query := `UPDATE sheets SET updated_at = NOW() WHERE sheet_id = $1`
	return execOne(ctx, exec, "touch sheet", query, sheetID)
}

// Delete removes a sheet. Modules and test cases cascade; checklists are detached.
func Delete(ctx context.Context, exec repository.DBTX, sheetID string) error {
	query := `DELETE FROM sheets WHERE sheet_id = $1`
	return execOne(ctx, exec, "delete sheet", query, sheetID)
}

// NextSequence reserves the next test case sequence number for a sheet.
func NextSequence(ctx context.Context, exec repository.DBTX, sheetID string) (int, error) {
	query := `
		UPDATE sheets
		SET next_sequence = next_sequence + 1
		WHERE sheet_id = $1
		RETURNING next_sequence - 1
	`
	var seq int
	if err := exec.QueryRowContext(ctx, query, sheetID).Scan(&seq); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, err
		}
		return 0, fmt.Errorf("failed to reserve sequence number: %w", err)
	}
	return seq, nil
}

// execOne runs an UPDATE/DELETE and returns sql.ErrNoRows when nothing matched.
func execOne(ctx context.Context, exec repository.DBTX, op, query string, args ...any) error {
	result, err := exec.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to %s: %w", op, err)
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
