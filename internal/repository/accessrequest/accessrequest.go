package accessrequest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mishasvintus/bugcake/internal/domain"
	"github.com/mishasvintus/bugcake/internal/repository"
)

const columns = `r.request_id, r.resource_type, r.resource_id, r.requester_id, u.email, u.name,
	r.requested_role, r.message, r.status, r.granted_role, r.resolved_by, r.resolved_at, r.created_at`

func scan(row interface{ Scan(...any) error }, r *domain.AccessRequest) error {
	return row.Scan(
		&r.RequestID,
		&r.ResourceType,
		&r.ResourceID,
		&r.RequesterID,
		&r.RequesterEmail,
		&r.RequesterName,
		&r.RequestedRole,
		&r.Message,
		&r.Status,
		&r.GrantedRole,
		&r.ResolvedBy,
		&r.ResolvedAt,
		&r.CreatedAt,
	)
}

// Create inserts a pending access request.
// A second pending request for the same requester and resource is a unique violation.
func Create(ctx context.Context, exec repository.DBTX, r *domain.AccessRequest) error {
	query := `
		INSERT INTO access_requests (request_id, resource_type, resource_id, requester_id, requested_role, message, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`
	err := exec.QueryRowContext(ctx, query,
		r.RequestID, r.ResourceType, r.ResourceID, r.RequesterID, r.RequestedRole, r.Message, domain.RequestPending,
	).Scan(&r.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create access request: %w", err)
	}
	r.Status = domain.RequestPending
	return nil
}

// Get retrieves an access request by ID.
func Get(ctx context.Context, exec repository.DBTX, requestID string) (*domain.AccessRequest, error) {
	query := `SELECT ` + columns + `
		FROM access_requests r
		JOIN users u ON u.user_id = r.requester_id
		WHERE r.request_id = $1
	`
	var r domain.AccessRequest
	if err := scan(exec.QueryRowContext(ctx, query, requestID), &r); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get access request: %w", err)
	}
	return &r, nil
}

// ListPending returns pending requests for a resource, oldest first.
func ListPending(ctx context.Context, exec repository.DBTX, ref domain.ResourceRef) ([]domain.AccessRequest, error) {
	query := `SELECT ` + columns + `
		FROM access_requests r
		JOIN users u ON u.user_id = r.requester_id
		WHERE r.resource_type = $1 AND r.resource_id = $2 AND r.status = 'pending'
		ORDER BY r.created_at
	`
	rows, err := exec.QueryContext(ctx, query, ref.Type, ref.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list access requests: %w", err)
	}
	defer func() { _ = rows.Close() }()

	requests := make([]domain.AccessRequest, 0)
	for rows.Next() {
		var r domain.AccessRequest
		if err := scan(rows, &r); err != nil {
			return nil, fmt.Errorf("failed to scan access request: %w", err)
		}
		requests = append(requests, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return requests, nil
}

// Resolve moves a pending request to a terminal status.
// grantedRole is nil for declines. Returns sql.ErrNoRows if the request is no longer pending.
func Resolve(ctx context.Context, exec repository.DBTX, requestID string, status domain.RequestStatus, grantedRole *domain.Role, resolverID string) error {
	query := `
		UPDATE access_requests
		SET status = $1, granted_role = $2, resolved_by = $3, resolved_at = NOW()
		WHERE request_id = $4 AND status = 'pending'
	`
	var granted any
	if grantedRole != nil {
		granted = string(*grantedRole)
	}

	result, err := exec.ExecContext(ctx, query, status, granted, resolverID, requestID)
	if err != nil {
		return fmt.Errorf("failed to resolve access request: %w", err)
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

// DeleteForResource removes all requests of a resource.
func DeleteForResource(ctx context.Context, exec repository.DBTX, ref domain.ResourceRef) error {
	query := `DELETE FROM access_requests WHERE resource_type = $1 AND resource_id = $2`
	if _, err := exec.ExecContext(ctx, query, ref.Type, ref.ID); err != nil {
		return fmt.Errorf("failed to delete access requests: %w", err)
	}
	return nil
}
