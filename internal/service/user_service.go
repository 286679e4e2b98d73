package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/google/uuid"

	"github.com/mishasvintus/bugcake/internal/domain"
	"github.com/mishasvintus/bugcake/internal/repository"
	"github.com/mishasvintus/bugcake/internal/repository/user"
)

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 50
	// candidates fetched before ranking
	searchPoolFactor = 5
)

// UserService handles user profiles.
type UserService struct {
	db *sql.DB
}

// NewUserService creates a new user service.
func NewUserService(db *sql.DB) *UserService {
	return &UserService{db: db}
}

// Register stores a new user profile.
func (s *UserService) Register(ctx context.Context, email, name string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: invalid email %q", ErrValidation, email)
	}
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}

	u := &domain.User{
		UserID: uuid.NewString(),
		Email:  email,
		Name:   name,
	}
	if err := user.Create(ctx, s.db, u); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrUserExists
		}
		return nil, err
	}
	return u, nil
}

// Get returns a user by ID.
func (s *UserService) Get(ctx context.Context, userID string) (*domain.User, error) {
	u, err := user.Get(ctx, s.db, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// GetByEmail returns a user by email.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, err := user.GetByEmail(ctx, s.db, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// Search finds users whose email or name contains query, closest matches first.
func (s *UserService) Search(ctx context.Context, query string, limit int) ([]domain.User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.User{}, nil
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	candidates, err := user.SearchCandidates(ctx, s.db, query, limit*searchPoolFactor)
	if err != nil {
		return nil, err
	}

	RankUsers(candidates, query)
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}

// RankUsers orders users by edit distance between query and the closer of
// their email local part and name. Ties keep email order.
func RankUsers(users []domain.User, query string) {
	q := strings.ToLower(query)
	score := func(u domain.User) int {
		local := strings.ToLower(u.Email)
		if at := strings.IndexByte(local, '@'); at >= 0 {
			local = local[:at]
		}
		byEmail := levenshtein.ComputeDistance(q, local)
		byName := levenshtein.ComputeDistance(q, strings.ToLower(u.Name))
		return min(byEmail, byName)
	}

	sort.SliceStable(users, func(i, j int) bool {
		si, sj := score(users[i]), score(users[j])
		if si != sj {
			return si < sj
		}
		return users[i].Email < users[j].Email
	})
}
