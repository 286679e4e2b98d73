package service

import "errors"

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserExists        = errors.New("user with this email already exists")
	ErrSheetNotFound     = errors.New("sheet not found")
	ErrModuleNotFound    = errors.New("module not found")
	ErrModuleExists      = errors.New("module with this name already exists")
	ErrTestCaseNotFound  = errors.New("test case not found")
	ErrChecklistNotFound = errors.New("checklist not found")
	ErrItemNotFound      = errors.New("checklist item not found")
	ErrMemberNotFound    = errors.New("member not found")
	ErrRequestNotFound   = errors.New("access request not found")
	ErrForbidden         = errors.New("insufficient role for this operation")
	ErrNotEditable       = errors.New("test case is not in an editable status")
	ErrStatusChanged     = errors.New("test case status changed concurrently")
	ErrMemberExists      = errors.New("user is already a member")
	ErrRequestPending    = errors.New("a pending access request already exists")
	ErrRequestResolved   = errors.New("access request is already resolved")
	ErrValidation        = errors.New("validation failed")
	ErrExportDisabled    = errors.New("spreadsheet export is not configured")
)
