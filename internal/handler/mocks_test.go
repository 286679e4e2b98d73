package handler_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/mishasvintus/bugcake/internal/domain"
	"github.com/mishasvintus/bugcake/internal/service"
)

// ret returns the typed pointer at index i, tolerating untyped nil.
func ret[T any](args mock.Arguments, i int) T {
	v, _ := args.Get(i).(T)
	return v
}

type MockUserServiceInterface struct{ mock.Mock }

func NewMockUserServiceInterface(t *testing.T) *MockUserServiceInterface {
	m := &MockUserServiceInterface{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockUserServiceInterface) Register(ctx context.Context, email, name string) (*domain.User, error) {
	args := m.Called(ctx, email, name)
	return ret[*domain.User](args, 0), args.Error(1)
}

func (m *MockUserServiceInterface) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	return ret[*domain.User](args, 0), args.Error(1)
}

func (m *MockUserServiceInterface) Search(ctx context.Context, query string, limit int) ([]domain.User, error) {
	args := m.Called(ctx, query, limit)
	return ret[[]domain.User](args, 0), args.Error(1)
}

type MockSheetServiceInterface struct{ mock.Mock }

func NewMockSheetServiceInterface(t *testing.T) *MockSheetServiceInterface {
	m := &MockSheetServiceInterface{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockSheetServiceInterface) List(ctx context.Context, actorID string) ([]domain.SheetWithRole, error) {
	args := m.Called(ctx, actorID)
	return ret[[]domain.SheetWithRole](args, 0), args.Error(1)
}

func (m *MockSheetServiceInterface) Create(ctx context.Context, actorID, name string, sheetType domain.SheetType, level domain.AccessLevel) (*domain.SheetWithRole, error) {
	args := m.Called(ctx, actorID, name, sheetType, level)
	return ret[*domain.SheetWithRole](args, 0), args.Error(1)
}

func (m *MockSheetServiceInterface) Get(ctx context.Context, actorID, sheetID string) (*domain.SheetWithRole, error) {
	args := m.Called(ctx, actorID, sheetID)
	return ret[*domain.SheetWithRole](args, 0), args.Error(1)
}

func (m *MockSheetServiceInterface) Rename(ctx context.Context, actorID, sheetID, name string) (*domain.SheetWithRole, error) {
	args := m.Called(ctx, actorID, sheetID, name)
	return ret[*domain.SheetWithRole](args, 0), args.Error(1)
}

func (m *MockSheetServiceInterface) UpdateAccessLevel(ctx context.Context, actorID, sheetID string, level domain.AccessLevel) (*domain.SheetWithRole, error) {
	args := m.Called(ctx, actorID, sheetID, level)
	return ret[*domain.SheetWithRole](args, 0), args.Error(1)
}

func (m *MockSheetServiceInterface) Delete(ctx context.Context, actorID, sheetID string) error {
	return m.Called(ctx, actorID, sheetID).Error(0)
}

func (m *MockSheetServiceInterface) ListModules(ctx context.Context, actorID, sheetID string) ([]domain.Module, error) {
	args := m.Called(ctx, actorID, sheetID)
	return ret[[]domain.Module](args, 0), args.Error(1)
}

func (m *MockSheetServiceInterface) CreateModule(ctx context.Context, actorID, sheetID, name string) (*domain.Module, error) {
	args := m.Called(ctx, actorID, sheetID, name)
	return ret[*domain.Module](args, 0), args.Error(1)
}

func (m *MockSheetServiceInterface) Summary(ctx context.Context, actorID, sheetID string) (*domain.SheetSummary, error) {
	args := m.Called(ctx, actorID, sheetID)
	return ret[*domain.SheetSummary](args, 0), args.Error(1)
}

type MockTestCaseServiceInterface struct{ mock.Mock }

func NewMockTestCaseServiceInterface(t *testing.T) *MockTestCaseServiceInterface {
	m := &MockTestCaseServiceInterface{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockTestCaseServiceInterface) List(ctx context.Context, actorID, sheetID string, filter domain.TestCaseFilter) ([]domain.TestCaseView, error) {
	args := m.Called(ctx, actorID, sheetID, filter)
	return ret[[]domain.TestCaseView](args, 0), args.Error(1)
}

func (m *MockTestCaseServiceInterface) Get(ctx context.Context, actorID, testCaseID string) (*domain.TestCaseView, error) {
	args := m.Called(ctx, actorID, testCaseID)
	return ret[*domain.TestCaseView](args, 0), args.Error(1)
}

func (m *MockTestCaseServiceInterface) Create(ctx context.Context, actorID, sheetID string, in domain.TestCaseInput) (*domain.TestCaseView, error) {
	args := m.Called(ctx, actorID, sheetID, in)
	return ret[*domain.TestCaseView](args, 0), args.Error(1)
}

func (m *MockTestCaseServiceInterface) Update(ctx context.Context, actorID, testCaseID string, in domain.TestCaseInput) (*domain.TestCaseView, error) {
	args := m.Called(ctx, actorID, testCaseID, in)
	return ret[*domain.TestCaseView](args, 0), args.Error(1)
}

func (m *MockTestCaseServiceInterface) Delete(ctx context.Context, actorID, testCaseID string) error {
	return m.Called(ctx, actorID, testCaseID).Error(0)
}

func (m *MockTestCaseServiceInterface) ApplyAction(ctx context.Context, actorID, testCaseID string, action domain.WorkflowAction, note string) (*domain.TestCaseView, error) {
	args := m.Called(ctx, actorID, testCaseID, action, note)
	return ret[*domain.TestCaseView](args, 0), args.Error(1)
}

func (m *MockTestCaseServiceInterface) History(ctx context.Context, actorID, testCaseID string) ([]domain.StatusChange, error) {
	args := m.Called(ctx, actorID, testCaseID)
	return ret[[]domain.StatusChange](args, 0), args.Error(1)
}

type MockChecklistServiceInterface struct{ mock.Mock }

func NewMockChecklistServiceInterface(t *testing.T) *MockChecklistServiceInterface {
	m := &MockChecklistServiceInterface{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockChecklistServiceInterface) Create(ctx context.Context, actorID string, in service.CreateChecklistInput) (*domain.ChecklistWithRole, error) {
	args := m.Called(ctx, actorID, in)
	return ret[*domain.ChecklistWithRole](args, 0), args.Error(1)
}

func (m *MockChecklistServiceInterface) List(ctx context.Context, actorID string) ([]domain.ChecklistWithRole, error) {
	args := m.Called(ctx, actorID)
	return ret[[]domain.ChecklistWithRole](args, 0), args.Error(1)
}

func (m *MockChecklistServiceInterface) Get(ctx context.Context, actorID, checklistID string) (*domain.ChecklistWithRole, error) {
	args := m.Called(ctx, actorID, checklistID)
	return ret[*domain.ChecklistWithRole](args, 0), args.Error(1)
}

func (m *MockChecklistServiceInterface) UpdateItem(ctx context.Context, actorID, checklistID, itemID string, status domain.ExecutionStatus, actualResults string) (*domain.ChecklistItem, error) {
	args := m.Called(ctx, actorID, checklistID, itemID, status, actualResults)
	return ret[*domain.ChecklistItem](args, 0), args.Error(1)
}

func (m *MockChecklistServiceInterface) UpdateAccessLevel(ctx context.Context, actorID, checklistID string, level domain.AccessLevel) (*domain.ChecklistWithRole, error) {
	args := m.Called(ctx, actorID, checklistID, level)
	return ret[*domain.ChecklistWithRole](args, 0), args.Error(1)
}

func (m *MockChecklistServiceInterface) Delete(ctx context.Context, actorID, checklistID string) error {
	return m.Called(ctx, actorID, checklistID).Error(0)
}

type MockMemberServiceInterface struct{ mock.Mock }

func NewMockMemberServiceInterface(t *testing.T) *MockMemberServiceInterface {
	m := &MockMemberServiceInterface{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockMemberServiceInterface) List(ctx context.Context, actorID string, ref domain.ResourceRef) ([]domain.Member, error) {
	args := m.Called(ctx, actorID, ref)
	return ret[[]domain.Member](args, 0), args.Error(1)
}

func (m *MockMemberServiceInterface) Add(ctx context.Context, actorID string, ref domain.ResourceRef, email string, role domain.Role) (*domain.Member, error) {
	args := m.Called(ctx, actorID, ref, email, role)
	return ret[*domain.Member](args, 0), args.Error(1)
}

func (m *MockMemberServiceInterface) UpdateRole(ctx context.Context, actorID string, ref domain.ResourceRef, userID string, role domain.Role) (*domain.Member, error) {
	args := m.Called(ctx, actorID, ref, userID, role)
	return ret[*domain.Member](args, 0), args.Error(1)
}

func (m *MockMemberServiceInterface) Remove(ctx context.Context, actorID string, ref domain.ResourceRef, userID string) error {
	return m.Called(ctx, actorID, ref, userID).Error(0)
}

type MockAccessRequestServiceInterface struct{ mock.Mock }

func NewMockAccessRequestServiceInterface(t *testing.T) *MockAccessRequestServiceInterface {
	m := &MockAccessRequestServiceInterface{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockAccessRequestServiceInterface) Request(ctx context.Context, actorID string, ref domain.ResourceRef, role domain.Role, message string) (*domain.AccessRequest, error) {
	args := m.Called(ctx, actorID, ref, role, message)
	return ret[*domain.AccessRequest](args, 0), args.Error(1)
}

func (m *MockAccessRequestServiceInterface) ListPending(ctx context.Context, actorID string, ref domain.ResourceRef) ([]domain.AccessRequest, error) {
	args := m.Called(ctx, actorID, ref)
	return ret[[]domain.AccessRequest](args, 0), args.Error(1)
}

func (m *MockAccessRequestServiceInterface) Approve(ctx context.Context, actorID, requestID string, role *domain.Role) (*domain.AccessRequest, error) {
	args := m.Called(ctx, actorID, requestID, role)
	return ret[*domain.AccessRequest](args, 0), args.Error(1)
}

func (m *MockAccessRequestServiceInterface) Decline(ctx context.Context, actorID, requestID string) (*domain.AccessRequest, error) {
	args := m.Called(ctx, actorID, requestID)
	return ret[*domain.AccessRequest](args, 0), args.Error(1)
}

type MockExportServiceInterface struct{ mock.Mock }

func NewMockExportServiceInterface(t *testing.T) *MockExportServiceInterface {
	m := &MockExportServiceInterface{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockExportServiceInterface) ExportSheet(ctx context.Context, actorID, sheetID, spreadsheetID, tab string) (string, error) {
	args := m.Called(ctx, actorID, sheetID, spreadsheetID, tab)
	return args.String(0), args.Error(1)
}

func (m *MockExportServiceInterface) ExportChecklist(ctx context.Context, actorID, checklistID, spreadsheetID, tab string) (string, error) {
	args := m.Called(ctx, actorID, checklistID, spreadsheetID, tab)
	return args.String(0), args.Error(1)
}
