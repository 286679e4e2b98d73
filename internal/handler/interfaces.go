package handler

import (
	"context"

	"github.com/mishasvintus/bugcake/internal/domain"
	"github.com/mishasvintus/bugcake/internal/service"
)

// UserServiceInterface defines the interface for user operations.
type UserServiceInterface interface {
	Register(ctx context.Context, email, name string) (*domain.User, error)
	Get(ctx context.Context, userID string) (*domain.User, error)
	Search(ctx context.Context, query string, limit int) ([]domain.User, error)
}

// SheetServiceInterface defines the interface for sheet and module operations.
type SheetServiceInterface interface {
	List(ctx context.Context, actorID string) ([]domain.SheetWithRole, error)
	Create(ctx context.Context, actorID, name string, sheetType domain.SheetType, level domain.AccessLevel) (*domain.SheetWithRole, error)
	Get(ctx context.Context, actorID, sheetID string) (*domain.SheetWithRole, error)
	Rename(ctx context.Context, actorID, sheetID, name string) (*domain.SheetWithRole, error)
	UpdateAccessLevel(ctx context.Context, actorID, sheetID string, level domain.AccessLevel) (*domain.SheetWithRole, error)
	Delete(ctx context.Context, actorID, sheetID string) error
	ListModules(ctx context.Context, actorID, sheetID string) ([]domain.Module, error)
	CreateModule(ctx context.Context, actorID, sheetID, name string) (*domain.Module, error)
	Summary(ctx context.Context, actorID, sheetID string) (*domain.SheetSummary, error)
}

// TestCaseServiceInterface defines the interface for test case operations.
type TestCaseServiceInterface interface {
	List(ctx context.Context, actorID, sheetID string, filter domain.TestCaseFilter) ([]domain.TestCaseView, error)
	Get(ctx context.Context, actorID, testCaseID string) (*domain.TestCaseView, error)
	Create(ctx context.Context, actorID, sheetID string, in domain.TestCaseInput) (*domain.TestCaseView, error)
	Update(ctx context.Context, actorID, testCaseID string, in domain.TestCaseInput) (*domain.TestCaseView, error)
	Delete(ctx context.Context, actorID, testCaseID string) error
	ApplyAction(ctx context.Context, actorID, testCaseID string, action domain.WorkflowAction, note string) (*domain.TestCaseView, error)
	History(ctx context.Context, actorID, testCaseID string) ([]domain.StatusChange, error)
}

// ChecklistServiceInterface defines the interface for checklist operations.
type ChecklistServiceInterface interface {
	Create(ctx context.Context, actorID string, in service.CreateChecklistInput) (*domain.ChecklistWithRole, error)
	List(ctx context.Context, actorID string) ([]domain.ChecklistWithRole, error)
	Get(ctx context.Context, actorID, checklistID string) (*domain.ChecklistWithRole, error)
	UpdateItem(ctx context.Context, actorID, checklistID, itemID string, status domain.ExecutionStatus, actualResults string) (*domain.ChecklistItem, error)
	UpdateAccessLevel(ctx context.Context, actorID, checklistID string, level domain.AccessLevel) (*domain.ChecklistWithRole, error)
	Delete(ctx context.Context, actorID, checklistID string) error
}

// MemberServiceInterface defines the interface for sharing operations.
type MemberServiceInterface interface {
	List(ctx context.Context, actorID string, ref domain.ResourceRef) ([]domain.Member, error)
	Add(ctx context.Context, actorID string, ref domain.ResourceRef, email string, role domain.Role) (*domain.Member, error)
	UpdateRole(ctx context.Context, actorID string, ref domain.ResourceRef, userID string, role domain.Role) (*domain.Member, error)
	Remove(ctx context.Context, actorID string, ref domain.ResourceRef, userID string) error
}

// AccessRequestServiceInterface defines the interface for access request operations.
type AccessRequestServiceInterface interface {
	Request(ctx context.Context, actorID string, ref domain.ResourceRef, role domain.Role, message string) (*domain.AccessRequest, error)
	ListPending(ctx context.Context, actorID string, ref domain.ResourceRef) ([]domain.AccessRequest, error)
	Approve(ctx context.Context, actorID, requestID string, role *domain.Role) (*domain.AccessRequest, error)
	Decline(ctx context.Context, actorID, requestID string) (*domain.AccessRequest, error)
}

// ExportServiceInterface defines the interface for spreadsheet export.
type ExportServiceInterface interface {
	ExportSheet(ctx context.Context, actorID, sheetID, spreadsheetID, tab string) (string, error)
	ExportChecklist(ctx context.Context, actorID, checklistID, spreadsheetID, tab string) (string, error)
}
