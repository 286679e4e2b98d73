package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mishasvintus/bugcake/internal/domain"
	"github.com/mishasvintus/bugcake/internal/repository"
)

// Create inserts a new user.
func Create(ctx context.Context, exec repository.DBTX, u *domain.User) error {
	query := `
		INSERT INTO users (user_id, email, name)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`
	err := exec.QueryRowContext(ctx, query, u.UserID, u.Email, u.Name).Scan(&u.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// Get retrieves a user by ID.
func Get(ctx context.Context, exec repository.DBTX, userID string) (*domain.User, error) {
	query := `
		SELECT user_id, email, name, created_at
		FROM users
		WHERE user_id = $1
	`
	var u domain.User
	err := exec.QueryRowContext(ctx, query, userID).Scan(&u.UserID, &u.Email, &u.Name, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// GetByEmail retrieves a user by email, case-insensitively.
func GetByEmail(ctx context.Context, exec repository.DBTX, email string) (*domain.User, error) {
	query := `
		SELECT user_id, email, name, created_at
		FROM users
		WHERE LOWER(email) = LOWER($1)
	`
	var u domain.User
	err := exec.QueryRowContext(ctx, query, strings.TrimSpace(email)).Scan(&u.UserID, &u.Email, &u.Name, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &u, nil
}

// Exists checks if a user exists.
func Exists(ctx context.Context, exec repository.DBTX, userID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE user_id = $1)`
	if err := exec.QueryRowContext(ctx, query, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return exists, nil
}

// SearchCandidates returns users whose email or name contains the query.
// Ranking is left to the caller.
func SearchCandidates(ctx context.Context, exec repository.DBTX, q string, limit int) ([]domain.User, error) {
	query := `
		SELECT user_id, email, name, created_at
		FROM users
		WHERE email ILIKE '%' || $1 || '%' OR name ILIKE '%' || $1 || '%'
		ORDER BY email
		LIMIT $2
	`
	rows, err := exec.QueryContext(ctx, query, escapeLike(q), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	defer func() { _ = rows.Close() }()

	users := make([]domain.User, 0)
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.UserID, &u.Email, &u.Name, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return users, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
