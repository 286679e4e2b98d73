package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mishasvintus/bugcake/internal/domain"
	"github.com/mishasvintus/bugcake/internal/repository"
	"github.com/mishasvintus/bugcake/internal/repository/member"
	"github.com/mishasvintus/bugcake/internal/repository/user"
)

// MemberService manages sharing of sheets and checklists.
type MemberService struct {
	db *sql.DB
}

// NewMemberService creates a new member service.
func NewMemberService(db *sql.DB) *MemberService {
	return &MemberService{db: db}
}

// List returns the members of a resource. Guests cannot see the member list.
func (s *MemberService) List(ctx context.Context, actorID string, ref domain.ResourceRef) ([]domain.Member, error) {
	role, err := authorize(ctx, s.db, ref, actorID, domain.PermView)
	if err != nil {
		return nil, err
	}
	if !role.AtLeast(domain.RoleViewer) {
		return nil, ErrForbidden
	}
	return member.List(ctx, s.db, ref)
}

// Add shares a resource with the user registered under email. Requires qa_lead.
func (s *MemberService) Add(ctx context.Context, actorID string, ref domain.ResourceRef, email string, role domain.Role) (*domain.Member, error) {
	if !role.IsGrantable() {
		return nil, fmt.Errorf("%w: role %q cannot be granted", ErrValidation, role)
	}
	if _, err := authorize(ctx, s.db, ref, actorID, domain.PermManageMembers); err != nil {
		return nil, err
	}

	u, err := user.GetByEmail(ctx, s.db, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if err := member.Add(ctx, s.db, ref, u.UserID, role); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrMemberExists
		}
		return nil, err
	}

	return s.find(ctx, ref, u.UserID)
}

// UpdateRole changes the role of a member. The owner cannot be changed. Requires qa_lead.
func (s *MemberService) UpdateRole(ctx context.Context, actorID string, ref domain.ResourceRef, userID string, role domain.Role) (*domain.Member, error) {
	if !role.IsGrantable() {
		return nil, fmt.Errorf("%w: role %q cannot be granted", ErrValidation, role)
	}
	if _, err := authorize(ctx, s.db, ref, actorID, domain.PermManageMembers); err != nil {
		return nil, err
	}

	if err := member.UpdateRole(ctx, s.db, ref, userID, role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, s.explainMissing(ctx, ref, userID)
		}
		return nil, err
	}

	return s.find(ctx, ref, userID)
}

// Remove revokes a membership. The owner cannot be removed. Requires qa_lead.
func (s *MemberService) Remove(ctx context.Context, actorID string, ref domain.ResourceRef, userID string) error {
	if _, err := authorize(ctx, s.db, ref, actorID, domain.PermManageMembers); err != nil {
		return err
	}

	if err := member.Remove(ctx, s.db, ref, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return s.explainMissing(ctx, ref, userID)
		}
		return err
	}
	return nil
}

// explainMissing tells apart an owner target from an absent member.
func (s *MemberService) explainMissing(ctx context.Context, ref domain.ResourceRef, userID string) error {
	role, err := member.GetRole(ctx, s.db, ref, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrMemberNotFound
		}
		return err
	}
	if role == domain.RoleOwner {
		return fmt.Errorf("%w: the owner role cannot be changed", ErrForbidden)
	}
	return ErrMemberNotFound
}

func (s *MemberService) find(ctx context.Context, ref domain.ResourceRef, userID string) (*domain.Member, error) {
	members, err := member.List(ctx, s.db, ref)
	if err != nil {
		return nil, err
	}
	for i := range members {
		if members[i].UserID == userID {
			return &members[i], nil
		}
	}
	return nil, ErrMemberNotFound
}
