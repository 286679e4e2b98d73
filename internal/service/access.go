package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mishasvintus/bugcake/internal/domain"
	"github.com/mishasvintus/bugcake/internal/repository"
	"github.com/mishasvintus/bugcake/internal/repository/checklist"
	"github.com/mishasvintus/bugcake/internal/repository/member"
	"github.com/mishasvintus/bugcake/internal/repository/sheet"
)

// effectiveRole resolves the actor's role on a resource with the given access level.
func effectiveRole(ctx context.Context, exec repository.DBTX, ref domain.ResourceRef, level domain.AccessLevel, actorID string) (domain.Role, error) {
	var membership *domain.Role
	role, err := member.GetRole(ctx, exec, ref, actorID)
	switch {
	case err == nil:
		membership = &role
	case !errors.Is(err, sql.ErrNoRows):
		return "", fmt.Errorf("failed to get membership: %w", err)
	}

	resolved, err := domain.ResolveRole(membership, level)
	if err != nil {
		return "", ErrForbidden
	}
	return resolved, nil
}

func requirePermission(role domain.Role, perm domain.Permission) error {
	if !role.Can(perm) {
		return ErrForbidden
	}
	return nil
}

// authorizeSheet loads a sheet and checks that the actor holds perm on it.
func authorizeSheet(ctx context.Context, exec repository.DBTX, sheetID, actorID string, perm domain.Permission) (*domain.Sheet, domain.Role, error) {
	s, err := sheet.Get(ctx, exec, sheetID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", ErrSheetNotFound
		}
		return nil, "", fmt.Errorf("failed to get sheet: %w", err)
	}

	role, err := effectiveRole(ctx, exec, domain.ResourceRef{Type: domain.ResourceSheet, ID: sheetID}, s.AccessLevel, actorID)
	if err != nil {
		return nil, "", err
	}
	if err := requirePermission(role, perm); err != nil {
		return nil, "", err
	}
	return s, role, nil
}

// authorizeChecklist loads a checklist header and checks that the actor holds perm on it.
func authorizeChecklist(ctx context.Context, exec repository.DBTX, checklistID, actorID string, perm domain.Permission) (*domain.Checklist, domain.Role, error) {
	c, err := checklist.Get(ctx, exec, checklistID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", ErrChecklistNotFound
		}
		return nil, "", fmt.Errorf("failed to get checklist: %w", err)
	}

	role, err := effectiveRole(ctx, exec, domain.ResourceRef{Type: domain.ResourceChecklist, ID: checklistID}, c.AccessLevel, actorID)
	if err != nil {
		return nil, "", err
	}
	if err := requirePermission(role, perm); err != nil {
		return nil, "", err
	}
	return c, role, nil
}

// authorize checks perm on either kind of resource.
func authorize(ctx context.Context, exec repository.DBTX, ref domain.ResourceRef, actorID string, perm domain.Permission) (domain.Role, error) {
	switch ref.Type {
	case domain.ResourceSheet:
		_, role, err := authorizeSheet(ctx, exec, ref.ID, actorID, perm)
		return role, err
	case domain.ResourceChecklist:
		_, role, err := authorizeChecklist(ctx, exec, ref.ID, actorID, perm)
		return role, err
	default:
		return "", fmt.Errorf("%w: unknown resource type %q", ErrValidation, ref.Type)
	}
}

// loadAccessLevel returns the access level of a sheet or checklist without checking membership.
func loadAccessLevel(ctx context.Context, exec repository.DBTX, ref domain.ResourceRef) (domain.AccessLevel, error) {
	switch ref.Type {
	case domain.ResourceSheet:
		s, err := sheet.Get(ctx, exec, ref.ID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return "", ErrSheetNotFound
			}
			return "", fmt.Errorf("failed to get sheet: %w", err)
		}
		return s.AccessLevel, nil
	case domain.ResourceChecklist:
		c, err := checklist.Get(ctx, exec, ref.ID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return "", ErrChecklistNotFound
			}
			return "", fmt.Errorf("failed to get checklist: %w", err)
		}
		return c.AccessLevel, nil
	default:
		return "", fmt.Errorf("%w: unknown resource type %q", ErrValidation, ref.Type)
	}
}
