package handler_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mishasvintus/bugcake/internal/domain"
	"github.com/mishasvintus/bugcake/internal/handler"
	"github.com/mishasvintus/bugcake/internal/service"
)

func TestTestCaseHandler_ApplyAction(t *testing.T) {
	path := "/api/v1/test-cases/" + testCaseID + "/actions"

	tests := []struct {
		name           string
		requestBody    any
		mockSetup      func(*MockTestCaseServiceInterface)
		expectedStatus int
		expectedCode   handler.ErrorCode
	}{
		{
			name:        "success - approves",
			requestBody: map[string]string{"action": "approve", "note": "looks good"},
			mockSetup: func(m *MockTestCaseServiceInterface) {
				m.On("ApplyAction", mock.Anything, actorID, testCaseID, domain.ActionApprove, "looks good").
					Return(&domain.TestCaseView{
						TestCase:         domain.TestCase{TestCaseID: testCaseID, WorkflowStatus: domain.StatusApproved},
						AvailableActions: []domain.WorkflowAction{domain.ActionReopen},
					}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "error - unknown action",
			requestBody:    map[string]string{"action": "merge"},
			mockSetup:      func(*MockTestCaseServiceInterface) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   handler.ErrorValidation,
		},
		{
			name:           "error - missing action",
			requestBody:    map[string]string{"note": "hi"},
			mockSetup:      func(*MockTestCaseServiceInterface) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   handler.ErrorValidation,
		},
		{
			name:        "error - illegal transition",
			requestBody: map[string]string{"action": "approve"},
			mockSetup: func(m *MockTestCaseServiceInterface) {
				m.On("ApplyAction", mock.Anything, actorID, testCaseID, domain.ActionApprove, "").
					Return(nil, fmt.Errorf("%w: approve from Open", domain.ErrInvalidTransition))
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   handler.ErrorInvalidTransition,
		},
		{
			name:        "error - role too low",
			requestBody: map[string]string{"action": "approve"},
			mockSetup: func(m *MockTestCaseServiceInterface) {
				m.On("ApplyAction", mock.Anything, actorID, testCaseID, domain.ActionApprove, "").
					Return(nil, service.ErrForbidden)
			},
			expectedStatus: http.StatusForbidden,
			expectedCode:   handler.ErrorForbidden,
		},
		{
			name:        "error - concurrent change",
			requestBody: map[string]string{"action": "submit"},
			mockSetup: func(m *MockTestCaseServiceInterface) {
				m.On("ApplyAction", mock.Anything, actorID, testCaseID, domain.ActionSubmit, "").
					Return(nil, service.ErrStatusChanged)
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   handler.ErrorStatusChanged,
		},
		{
			name:        "error - test case not found",
			requestBody: map[string]string{"action": "submit"},
			mockSetup: func(m *MockTestCaseServiceInterface) {
				m.On("ApplyAction", mock.Anything, actorID, testCaseID, domain.ActionSubmit, "").
					Return(nil, service.ErrTestCaseNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedCode:   handler.ErrorNotFound,
		},
		{
			name:        "error - unexpected failure",
			requestBody: map[string]string{"action": "submit"},
			mockSetup: func(m *MockTestCaseServiceInterface) {
				m.On("ApplyAction", mock.Anything, actorID, testCaseID, domain.ActionSubmit, "").
					Return(nil, errors.New("database is on fire"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   handler.ErrorInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, m := newServer(t)
			m.knownActor()
			tt.mockSetup(m.testCases)

			w := do(t, r, http.MethodPost, path, tt.requestBody)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, decodeError(t, w).Error.Code)
				return
			}
			var resp handler.TestCaseResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			require.NotNil(t, resp.TestCase)
			assert.Equal(t, domain.StatusApproved, resp.TestCase.WorkflowStatus)
			assert.Equal(t, []domain.WorkflowAction{domain.ActionReopen}, resp.TestCase.AvailableActions)
		})
	}
}

func TestTestCaseHandler_Create(t *testing.T) {
	path := "/api/v1/sheets/" + sheetID + "/test-cases"

	t.Run("success", func(t *testing.T) {
		r, m := newServer(t)
		m.knownActor()
		in := domain.TestCaseInput{
			Title:   "Login works",
			Details: domain.TestCaseDetails{Level: domain.LevelHigh, Steps: "1. open"},
		}
		m.testCases.On("Create", mock.Anything, actorID, sheetID, in).
			Return(&domain.TestCaseView{TestCase: domain.TestCase{
				TestCaseID: testCaseID, SequenceNumber: 1, Title: in.Title, WorkflowStatus: domain.StatusOpen,
			}}, nil)

		w := do(t, r, http.MethodPost, path, map[string]any{
			"title":   "Login works",
			"details": map[string]string{"level": "High", "steps": "1. open"},
		})

		assert.Equal(t, http.StatusCreated, w.Code)
		var resp handler.TestCaseResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 1, resp.TestCase.SequenceNumber)
	})

	t.Run("details rejected by sheet type", func(t *testing.T) {
		r, m := newServer(t)
		m.knownActor()
		m.testCases.On("Create", mock.Anything, actorID, sheetID, mock.Anything).
			Return(nil, fmt.Errorf("%w: %w", service.ErrValidation, domain.ErrInvalidDetails))

		w := do(t, r, http.MethodPost, path, map[string]any{
			"title":   "Logo",
			"details": map[string]string{"persona": "screen reader user"},
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, handler.ErrorValidation, decodeError(t, w).Error.Code)
	})

	t.Run("malformed module id", func(t *testing.T) {
		r, m := newServer(t)
		m.knownActor()

		w := do(t, r, http.MethodPost, path, map[string]any{"title": "x", "module_id": "cart"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestTestCaseHandler_Update_NotEditable(t *testing.T) {
	r, m := newServer(t)
	m.knownActor()
	m.testCases.On("Update", mock.Anything, actorID, testCaseID, mock.Anything).
		Return(nil, service.ErrNotEditable)

	w := do(t, r, http.MethodPatch, "/api/v1/test-cases/"+testCaseID, map[string]any{"title": "New title"})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, handler.ErrorNotEditable, decodeError(t, w).Error.Code)
}

func TestTestCaseHandler_List_Filter(t *testing.T) {
	path := "/api/v1/sheets/" + sheetID + "/test-cases"

	t.Run("status filter is forwarded", func(t *testing.T) {
		r, m := newServer(t)
		m.knownActor()
		m.testCases.On("List", mock.Anything, actorID, sheetID, mock.MatchedBy(func(f domain.TestCaseFilter) bool {
			return f.Status != nil && *f.Status == domain.StatusWaitingApproval && f.ModuleID == nil
		})).Return([]domain.TestCaseView{}, nil)

		w := do(t, r, http.MethodGet, path+"?status=Waiting+for+QA+Lead+Approval", nil)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("unknown status", func(t *testing.T) {
		r, m := newServer(t)
		m.knownActor()

		w := do(t, r, http.MethodGet, path+"?status=Done", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "invalid filter", decodeError(t, w).Error.Message)
	})
}

func TestTestCaseHandler_Delete(t *testing.T) {
	r, m := newServer(t)
	m.knownActor()
	m.testCases.On("Delete", mock.Anything, actorID, testCaseID).Return(nil)

	w := do(t, r, http.MethodDelete, "/api/v1/test-cases/"+testCaseID, nil)

	assert.Equal(t, http.StatusNoContent, w.Code)
}
