package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/mishasvintus/bugcake/internal/domain"
	"github.com/mishasvintus/bugcake/internal/repository"
	"github.com/mishasvintus/bugcake/internal/repository/accessrequest"
	"github.com/mishasvintus/bugcake/internal/repository/member"
	"github.com/mishasvintus/bugcake/internal/repository/sheet"
	"github.com/mishasvintus/bugcake/internal/repository/testcase"
)

// SheetService handles sheets and their modules.
type SheetService struct {
	db *sql.DB
}

// NewSheetService creates a new sheet service.
func NewSheetService(db *sql.DB) *SheetService {
	return &SheetService{db: db}
}

// List returns sheets the actor belongs to plus public sheets.
func (s *SheetService) List(ctx context.Context, actorID string) ([]domain.SheetWithRole, error) {
	return sheet.ListForUser(ctx, s.db, actorID)
}

// Create creates a sheet and makes the actor its owner in a single transaction.
func (s *SheetService) Create(ctx context.Context, actorID, name string, sheetType domain.SheetType, level domain.AccessLevel) (*domain.SheetWithRole, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: sheet name is required", ErrValidation)
	}
	if !sheetType.IsValid() {
		return nil, fmt.Errorf("%w: invalid sheet type %q", ErrValidation, sheetType)
	}
	if level == "" {
		level = domain.AccessRestricted
	}
	if !level.IsValid() {
		return nil, fmt.Errorf("%w: invalid access level %q", ErrValidation, level)
	}

	sh := &domain.Sheet{
		SheetID:     uuid.NewString(),
		Name:        name,
		Type:        sheetType,
		AccessLevel: level,
		OwnerID:     actorID,
	}

	err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := sheet.Create(ctx, tx, sh); err != nil {
			if repository.IsForeignKeyViolation(err) {
				return ErrUserNotFound
			}
			return err
		}
		ref := domain.ResourceRef{Type: domain.ResourceSheet, ID: sh.SheetID}
		return member.Add(ctx, tx, ref, actorID, domain.RoleOwner)
	})
	if err != nil {
		return nil, err
	}

	return &domain.SheetWithRole{Sheet: *sh, Role: domain.RoleOwner}, nil
}

// Get returns a sheet with the actor's effective role.
func (s *SheetService) Get(ctx context.Context, actorID, sheetID string) (*domain.SheetWithRole, error) {
	sh, role, err := authorizeSheet(ctx, s.db, sheetID, actorID, domain.PermView)
	if err != nil {
		return nil, err
	}
	return &domain.SheetWithRole{Sheet: *sh, Role: role}, nil
}

// Rename changes the name of a sheet. Requires qa_lead.
func (s *SheetService) Rename(ctx context.Context, actorID, sheetID, name string) (*domain.SheetWithRole, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: sheet name is required", ErrValidation)
	}
	if _, _, err := authorizeSheet(ctx, s.db, sheetID, actorID, domain.PermManageSettings); err != nil {
		return nil, err
	}

	if err := sheet.Rename(ctx, s.db, sheetID, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSheetNotFound
		}
		return nil, err
	}
	return s.Get(ctx, actorID, sheetID)
}

// UpdateAccessLevel changes the visibility of a sheet. Requires qa_lead.
func (s *SheetService) UpdateAccessLevel(ctx context.Context, actorID, sheetID string, level domain.AccessLevel) (*domain.SheetWithRole, error) {
	if !level.IsValid() {
		return nil, fmt.Errorf("%w: invalid access level %q", ErrValidation, level)
	}
	if _, _, err := authorizeSheet(ctx, s.db, sheetID, actorID, domain.PermManageSettings); err != nil {
		return nil, err
	}

	if err := sheet.UpdateAccessLevel(ctx, s.db, sheetID, level); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSheetNotFound
		}
		return nil, err
	}
	return s.Get(ctx, actorID, sheetID)
}

// Delete removes a sheet together with its memberships and access requests.
// Checklists created from it keep their snapshots. Requires owner.
func (s *SheetService) Delete(ctx context.Context, actorID, sheetID string) error {
	return repository.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, _, err := authorizeSheet(ctx, tx, sheetID, actorID, domain.PermDelete); err != nil {
			return err
		}

		ref := domain.ResourceRef{Type: domain.ResourceSheet, ID: sheetID}
		if err := member.DeleteForResource(ctx, tx, ref); err != nil {
			return err
		}
		if err := accessrequest.DeleteForResource(ctx, tx, ref); err != nil {
			return err
		}
		if err := sheet.Delete(ctx, tx, sheetID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrSheetNotFound
			}
			return err
		}
		return nil
	})
}

// ListModules returns the modules of a sheet in display order.
func (s *SheetService) ListModules(ctx context.Context, actorID, sheetID string) ([]domain.Module, error) {
	if _, _, err := authorizeSheet(ctx, s.db, sheetID, actorID, domain.PermView); err != nil {
		return nil, err
	}
	return sheet.ListModules(ctx, s.db, sheetID)
}

// CreateModule appends a module to a sheet. Requires qa_tester.
func (s *SheetService) CreateModule(ctx context.Context, actorID, sheetID, name string) (*domain.Module, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: module name is required", ErrValidation)
	}
	if _, _, err := authorizeSheet(ctx, s.db, sheetID, actorID, domain.PermEditTestCases); err != nil {
		return nil, err
	}

	m := &domain.Module{
		ModuleID: uuid.NewString(),
		SheetID:  sheetID,
		Name:     name,
	}
	if err := sheet.CreateModule(ctx, s.db, m); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrModuleExists
		}
		return nil, err
	}
	return m, nil
}

// Summary counts the test cases of a sheet by status and module.
func (s *SheetService) Summary(ctx context.Context, actorID, sheetID string) (*domain.SheetSummary, error) {
	if _, _, err := authorizeSheet(ctx, s.db, sheetID, actorID, domain.PermView); err != nil {
		return nil, err
	}
	return testcase.Summary(ctx, s.db, sheetID)
}
