package handler

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/mishasvintus/bugcake/internal/domain"
)

// RegisterUserRequest represents request body for POST /users.
type RegisterUserRequest struct {
	Email string `json:"email" binding:"required,email"`
	Name  string `json:"name" binding:"required"`
}

// SearchUsersQuery represents query parameters for GET /users/search.
type SearchUsersQuery struct {
	Q     string `form:"q" binding:"required"`
	Limit int    `form:"limit" binding:"omitempty,min=1,max=50"`
}

// CreateSheetRequest represents request body for POST /sheets.
type CreateSheetRequest struct {
	Name        string `json:"name" binding:"required"`
	Type        string `json:"type" binding:"required,sheet_type"`
	AccessLevel string `json:"access_level" binding:"omitempty,access_level"`
}

// RenameSheetRequest represents request body for PATCH /sheets/:id.
type RenameSheetRequest struct {
	Name string `json:"name" binding:"required"`
}

// AccessLevelRequest represents request body for PUT .../access-level.
type AccessLevelRequest struct {
	AccessLevel string `json:"access_level" binding:"required,access_level"`
}

// CreateModuleRequest represents request body for POST /sheets/:id/modules.
type CreateModuleRequest struct {
	Name string `json:"name" binding:"required"`
}

// TestCaseListQuery represents query parameters for GET /sheets/:id/test-cases.
type TestCaseListQuery struct {
	Status   string `form:"status" binding:"omitempty,workflow_status"`
	ModuleID string `form:"module_id" binding:"omitempty,uuid"`
}

// TestCaseRequest represents request body for creating or updating a test case.
type TestCaseRequest struct {
	ModuleID *string                `json:"module_id" binding:"omitempty,uuid"`
	Title    string                 `json:"title" binding:"required"`
	Details  domain.TestCaseDetails `json:"details"`
}

// WorkflowActionRequest represents request body for POST /test-cases/:id/actions.
type WorkflowActionRequest struct {
	Action string `json:"action" binding:"required,workflow_action"`
	Note   string `json:"note" binding:"max=2000"`
}

// CreateChecklistRequest represents request body for POST /sheets/:id/checklists.
type CreateChecklistRequest struct {
	Name        string   `json:"name" binding:"required"`
	GoalDate    string   `json:"goal_date" binding:"required,datetime=2006-01-02"`
	AccessLevel string   `json:"access_level" binding:"omitempty,access_level"`
	TestCaseIDs []string `json:"test_case_ids" binding:"required,min=1,dive,uuid"`
	ExecutorIDs []string `json:"executor_ids" binding:"required,min=1,dive,uuid"`
}

// UpdateChecklistItemRequest represents request body for PATCH /checklists/:id/items/:item_id.
type UpdateChecklistItemRequest struct {
	ExecutionStatus string `json:"execution_status" binding:"required,execution_status"`
	ActualResults   string `json:"actual_results"`
}

// AddMemberRequest represents request body for POST .../members.
type AddMemberRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"required,grantable_role"`
}

// UpdateMemberRequest represents request body for PATCH .../members/:user_id.
type UpdateMemberRequest struct {
	Role string `json:"role" binding:"required,grantable_role"`
}

// AccessRequestRequest represents request body for POST .../access-requests.
type AccessRequestRequest struct {
	Role    string `json:"role" binding:"required,grantable_role"`
	Message string `json:"message" binding:"max=2000"`
}

// ApproveAccessRequestRequest represents the optional body of POST /access-requests/:id/approve.
type ApproveAccessRequestRequest struct {
	Role string `json:"role" binding:"omitempty,grantable_role"`
}

// ExportRequest represents request body for export endpoints.
type ExportRequest struct {
	SpreadsheetID string `json:"spreadsheet_id" binding:"required"`
	Tab           string `json:"tab"`
}

var registerOnce sync.Once

// RegisterValidators adds domain enum validators to gin's validator engine.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("sheet_type", enumValidator(func(s string) bool { return domain.SheetType(s).IsValid() }))
		_ = v.RegisterValidation("access_level", enumValidator(func(s string) bool { return domain.AccessLevel(s).IsValid() }))
		_ = v.RegisterValidation("workflow_status", enumValidator(func(s string) bool { return domain.WorkflowStatus(s).IsValid() }))
		_ = v.RegisterValidation("workflow_action", enumValidator(func(s string) bool { return domain.WorkflowAction(s).IsValid() }))
		_ = v.RegisterValidation("execution_status", enumValidator(func(s string) bool { return domain.ExecutionStatus(s).IsValid() }))
		_ = v.RegisterValidation("grantable_role", enumValidator(func(s string) bool { return domain.Role(s).IsGrantable() }))
	})
}

func enumValidator(valid func(string) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return valid(fl.Field().String())
	}
}
