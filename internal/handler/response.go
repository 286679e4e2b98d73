package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mishasvintus/bugcake/internal/domain"
	"github.com/mishasvintus/bugcake/internal/service"
)

// ErrorCode is a machine-readable error code in the error envelope.
type ErrorCode string

const (
	ErrorNotFound          ErrorCode = "NOT_FOUND"
	ErrorForbidden         ErrorCode = "FORBIDDEN"
	ErrorUnauthorized      ErrorCode = "UNAUTHORIZED"
	ErrorValidation        ErrorCode = "VALIDATION"
	ErrorInvalidTransition ErrorCode = "INVALID_TRANSITION"
	ErrorStatusChanged     ErrorCode = "STATUS_CHANGED"
	ErrorNotEditable       ErrorCode = "NOT_EDITABLE"
	ErrorMemberExists      ErrorCode = "MEMBER_EXISTS"
	ErrorRequestPending    ErrorCode = "REQUEST_PENDING"
	ErrorRequestResolved   ErrorCode = "REQUEST_RESOLVED"
	ErrorUserExists        ErrorCode = "USER_EXISTS"
	ErrorModuleExists      ErrorCode = "MODULE_EXISTS"
	ErrorExportDisabled    ErrorCode = "EXPORT_DISABLED"
	ErrorInternal          ErrorCode = "INTERNAL"
)

// ErrorResponse represents error response structure.
type ErrorResponse struct {
	Error struct {
		Code    ErrorCode `json:"code"`
		Message string    `json:"message"`
	} `json:"error"`
}

// UserResponse wraps a single user.
type UserResponse struct {
	User *domain.User `json:"user"`
}

// UsersResponse wraps a list of users.
type UsersResponse struct {
	Users []domain.User `json:"users"`
}

// SheetResponse wraps a single sheet.
type SheetResponse struct {
	Sheet *domain.SheetWithRole `json:"sheet"`
}

// SheetsResponse wraps a list of sheets.
type SheetsResponse struct {
	Sheets []domain.SheetWithRole `json:"sheets"`
}

// ModuleResponse wraps a single module.
type ModuleResponse struct {
	Module *domain.Module `json:"module"`
}

// ModulesResponse wraps a list of modules.
type ModulesResponse struct {
	Modules []domain.Module `json:"modules"`
}

// SummaryResponse wraps sheet statistics.
type SummaryResponse struct {
	Summary *domain.SheetSummary `json:"summary"`
}

// TestCaseResponse wraps a single test case.
type TestCaseResponse struct {
	TestCase *domain.TestCaseView `json:"test_case"`
}

// TestCasesResponse wraps a list of test cases.
type TestCasesResponse struct {
	TestCases []domain.TestCaseView `json:"test_cases"`
}

// HistoryResponse wraps the status history of a test case.
type HistoryResponse struct {
	History []domain.StatusChange `json:"history"`
}

// ChecklistResponse wraps a single checklist.
type ChecklistResponse struct {
	Checklist *domain.ChecklistWithRole `json:"checklist"`
}

// ChecklistsResponse wraps a list of checklists.
type ChecklistsResponse struct {
	Checklists []domain.ChecklistWithRole `json:"checklists"`
}

// ChecklistItemResponse wraps a single checklist item.
type ChecklistItemResponse struct {
	Item *domain.ChecklistItem `json:"item"`
}

// MemberResponse wraps a single member.
type MemberResponse struct {
	Member *domain.Member `json:"member"`
}

// MembersResponse wraps a list of members.
type MembersResponse struct {
	Members []domain.Member `json:"members"`
}

// AccessRequestResponse wraps a single access request.
type AccessRequestResponse struct {
	Request *domain.AccessRequest `json:"request"`
}

// AccessRequestsResponse wraps a list of access requests.
type AccessRequestsResponse struct {
	Requests []domain.AccessRequest `json:"requests"`
}

// ExportResponse reports where an export was written.
type ExportResponse struct {
	UpdatedRange string `json:"updated_range"`
}

// Error sends error response.
func Error(c *gin.Context, code ErrorCode, message string, statusCode int) {
	var resp ErrorResponse
	resp.Error.Code = code
	resp.Error.Message = message
	c.AbortWithStatusJSON(statusCode, resp)
}

// NotFound sends 404 error.
func NotFound(c *gin.Context, message string) {
	Error(c, ErrorNotFound, message, http.StatusNotFound)
}

// Forbidden sends 403 error.
func Forbidden(c *gin.Context, message string) {
	Error(c, ErrorForbidden, message, http.StatusForbidden)
}

// Unauthorized sends 401 error.
func Unauthorized(c *gin.Context, message string) {
	Error(c, ErrorUnauthorized, message, http.StatusUnauthorized)
}

// Conflict sends 409 error.
func Conflict(c *gin.Context, code ErrorCode, message string) {
	Error(c, code, message, http.StatusConflict)
}

// BadRequest sends 400 error.
func BadRequest(c *gin.Context, message string) {
	Error(c, ErrorValidation, message, http.StatusBadRequest)
}

// InternalError sends 500 error.
func InternalError(c *gin.Context, message string) {
	Error(c, ErrorInternal, message, http.StatusInternalServerError)
}

// handleError maps service and domain errors onto HTTP responses.
func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrSheetNotFound),
		errors.Is(err, service.ErrModuleNotFound),
		errors.Is(err, service.ErrTestCaseNotFound),
		errors.Is(err, service.ErrChecklistNotFound),
		errors.Is(err, service.ErrItemNotFound),
		errors.Is(err, service.ErrMemberNotFound),
		errors.Is(err, service.ErrRequestNotFound):
		NotFound(c, err.Error())
	case errors.Is(err, service.ErrForbidden):
		Forbidden(c, err.Error())
	case errors.Is(err, domain.ErrInvalidTransition):
		Conflict(c, ErrorInvalidTransition, err.Error())
	case errors.Is(err, service.ErrStatusChanged):
		Conflict(c, ErrorStatusChanged, err.Error())
	case errors.Is(err, service.ErrNotEditable):
		Conflict(c, ErrorNotEditable, err.Error())
	case errors.Is(err, service.ErrMemberExists):
		Conflict(c, ErrorMemberExists, err.Error())
	case errors.Is(err, service.ErrRequestPending):
		Conflict(c, ErrorRequestPending, err.Error())
	case errors.Is(err, service.ErrRequestResolved):
		Conflict(c, ErrorRequestResolved, err.Error())
	case errors.Is(err, service.ErrUserExists):
		Conflict(c, ErrorUserExists, err.Error())
	case errors.Is(err, service.ErrModuleExists):
		Conflict(c, ErrorModuleExists, err.Error())
	case errors.Is(err, service.ErrValidation), errors.Is(err, domain.ErrInvalidDetails):
		BadRequest(c, err.Error())
	case errors.Is(err, service.ErrExportDisabled):
		Error(c, ErrorExportDisabled, err.Error(), http.StatusServiceUnavailable)
	default:
		_ = c.Error(err)
		InternalError(c, err.Error())
	}
}
