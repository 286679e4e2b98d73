package member

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mishasvintus/bugcake/internal/domain"
	"github.com/mishasvintus/bugcake/internal/repository"
)

// Add inserts a membership. A duplicate (resource, user) pair is a unique violation.
func Add(ctx context.Context, exec repository.DBTX, ref domain.ResourceRef, userID string, role domain.Role) error {
	query := `
		INSERT INTO members (resource_type, resource_id, user_id, role)
		VALUES ($1, $2, $3, $4)
	`
	_, err := exec.ExecContext(ctx, query, ref.Type, ref.ID, userID, role)
	if err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}
	return nil
}

// GetRole returns the user's membership role, or sql.ErrNoRows.
func GetRole(ctx context.Context, exec repository.DBTX, ref domain.ResourceRef, userID string) (domain.Role, error) {
	query := `
		SELECT role
		FROM members
		WHERE resource_type = $1 AND resource_id = $2 AND user_id = $3
	`
	var role domain.Role
	err := exec.QueryRowContext(ctx, query, ref.Type, ref.ID, userID).Scan(&role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", err
		}
		return "", fmt.Errorf("failed to get member role: %w", err)
	}
	return role, nil
}

// IsMember checks if the user has any membership on the resource.
func IsMember(ctx context.Context, exec repository.DBTX, ref domain.ResourceRef, userID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM members WHERE resource_type = $1 AND resource_id = $2 AND user_id = $3)`
	if err := exec.QueryRowContext(ctx, query, ref.Type, ref.ID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return exists, nil
}

// List returns the members of a resource with user details, owner first.
func List(ctx context.Context, exec repository.DBTX, ref domain.ResourceRef) ([]domain.Member, error) {
	query := `
		SELECT m.resource_type, m.resource_id, m.user_id, u.email, u.name, m.role, m.added_at
		FROM members m
		JOIN users u ON u.user_id = m.user_id
		WHERE m.resource_type = $1 AND m.resource_id = $2
		ORDER BY CASE m.role
		           WHEN 'owner' THEN 1
		           WHEN 'qa_lead' THEN 2
		           WHEN 'qa_tester' THEN 3
		           ELSE 4
		         END, u.email
	`
	rows, err := exec.QueryContext(ctx, query, ref.Type, ref.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer func() { _ = rows.Close() }()

	members := make([]domain.Member, 0)
	for rows.Next() {
		var m domain.Member
		if err := rows.Scan(&m.ResourceType, &m.ResourceID, &m.UserID, &m.Email, &m.Name, &m.Role, &m.AddedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return members, nil
}

// UpdateRole changes a non-owner member's role.
// Returns sql.ErrNoRows if there is no such member or the member is the owner.
func UpdateRole(ctx context.Context, exec repository.DBTX, ref domain.ResourceRef, userID string, role domain.Role) error {
	query := `
		UPDATE members
		SET role = $1
		WHERE resource_type = $2 AND resource_id = $3 AND user_id = $4 AND role <> 'owner'
	`
	return execOne(ctx, exec, "update member role", query, role, ref.Type, ref.ID, userID)
}

// Remove deletes a non-owner membership.
// Returns sql.ErrNoRows if there is no such member or the member is the owner.
func Remove(ctx context.Context, exec repository.DBTX, ref domain.ResourceRef, userID string) error {
	query := `
		DELETE FROM members
		WHERE resource_type = $1 AND resource_id = $2 AND user_id = $3 AND role <> 'owner'
	`
	return execOne(ctx, exec, "remove member", query, ref.Type, ref.ID, userID)
}

// DeleteForResource removes all memberships of a resource.
func DeleteForResource(ctx context.Context, exec repository.DBTX, ref domain.ResourceRef) error {
	query := `DELETE FROM members WHERE resource_type = $1 AND resource_id = $2`
	if _, err := exec.ExecContext(ctx, query, ref.Type, ref.ID); err != nil {
		return fmt.Errorf("failed to delete members: %w", err)
	}
	return nil
}

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
