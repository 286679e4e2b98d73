package handler_test

import (
	"encoding/json"
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

func TestMemberHandler_BindsResourceType(t *testing.T) {
	tests := []struct {
		path string
		ref  domain.ResourceRef
	}{
		{"/api/v1/sheets/" + sheetID + "/members", domain.ResourceRef{Type: domain.ResourceSheet, ID: sheetID}},
		{"/api/v1/checklists/" + checklistID + "/members", domain.ResourceRef{Type: domain.ResourceChecklist, ID: checklistID}},
	}

	for _, tt := range tests {
		t.Run(string(tt.ref.Type), func(t *testing.T) {
			r, m := newServer(t)
			m.knownActor()
			m.members.On("Add", mock.Anything, actorID, tt.ref, "tester@bugcake.test", domain.RoleQATester).
				Return(&domain.Member{UserID: memberID, Role: domain.RoleQATester}, nil)

			w := do(t, r, http.MethodPost, tt.path, map[string]string{
				"email": "tester@bugcake.test",
				"role":  "qa_tester",
			})

			assert.Equal(t, http.StatusCreated, w.Code)
		})
	}
}

func TestMemberHandler_Add_RejectsOwnerRole(t *testing.T) {
	for _, role := range []string{"owner", "guest", "admin"} {
		t.Run(role, func(t *testing.T) {
			r, m := newServer(t)
			m.knownActor()

			w := do(t, r, http.MethodPost, "/api/v1/sheets/"+sheetID+"/members", map[string]string{
				"email": "tester@bugcake.test",
				"role":  role,
			})

			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestMemberHandler_Errors(t *testing.T) {
	ref := domain.ResourceRef{Type: domain.ResourceSheet, ID: sheetID}
	path := "/api/v1/sheets/" + sheetID + "/members/" + memberID

	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   handler.ErrorCode
	}{
		{"owner is immutable", fmt.Errorf("%w: the owner cannot be changed", service.ErrForbidden), http.StatusForbidden, handler.ErrorForbidden},
		{"not a member", service.ErrMemberNotFound, http.StatusNotFound, handler.ErrorNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, m := newServer(t)
			m.knownActor()
			m.members.On("UpdateRole", mock.Anything, actorID, ref, memberID, domain.RoleViewer).Return(nil, tt.err)

			w := do(t, r, http.MethodPatch, path, map[string]string{"role": "viewer"})

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedCode, decodeError(t, w).Error.Code)
		})
	}
}

func TestMemberHandler_Remove(t *testing.T) {
	r, m := newServer(t)
	m.knownActor()
	ref := domain.ResourceRef{Type: domain.ResourceChecklist, ID: checklistID}
	m.members.On("Remove", mock.Anything, actorID, ref, memberID).Return(nil)

	w := do(t, r, http.MethodDelete, "/api/v1/checklists/"+checklistID+"/members/"+memberID, nil)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestAccessRequestHandler_Create(t *testing.T) {
	ref := domain.ResourceRef{Type: domain.ResourceSheet, ID: sheetID}
	path := "/api/v1/sheets/" + sheetID + "/access-requests"

	t.Run("success", func(t *testing.T) {
		r, m := newServer(t)
		m.knownActor()
		m.requests.On("Request", mock.Anything, actorID, ref, domain.RoleQATester, "please").
			Return(&domain.AccessRequest{RequestID: requestID, Status: domain.RequestPending}, nil)

		w := do(t, r, http.MethodPost, path, map[string]string{"role": "qa_tester", "message": "please"})

		assert.Equal(t, http.StatusCreated, w.Code)
		var resp handler.AccessRequestResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, domain.RequestPending, resp.Request.Status)
	})

	t.Run("already pending", func(t *testing.T) {
		r, m := newServer(t)
		m.knownActor()
		m.requests.On("Request", mock.Anything, actorID, ref, domain.RoleViewer, "").
			Return(nil, service.ErrRequestPending)

		w := do(t, r, http.MethodPost, path, map[string]string{"role": "viewer"})

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, handler.ErrorRequestPending, decodeError(t, w).Error.Code)
	})
}

func TestAccessRequestHandler_Approve(t *testing.T) {
	path := "/api/v1/access-requests/" + requestID + "/approve"
	lead := domain.RoleQALead

	tests := []struct {
		name           string
		requestBody    any
		mockSetup      func(*MockAccessRequestServiceInterface)
		expectedStatus int
		expectedCode   handler.ErrorCode
	}{
		{
			name: "no body grants requested role",
			mockSetup: func(m *MockAccessRequestServiceInterface) {
				m.On("Approve", mock.Anything, actorID, requestID, (*domain.Role)(nil)).
					Return(&domain.AccessRequest{RequestID: requestID, Status: domain.RequestApproved}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:        "body overrides role",
			requestBody: map[string]string{"role": "qa_lead"},
			mockSetup: func(m *MockAccessRequestServiceInterface) {
				m.On("Approve", mock.Anything, actorID, requestID, &lead).
					Return(&domain.AccessRequest{RequestID: requestID, Status: domain.RequestApproved, GrantedRole: &lead}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "owner cannot be granted",
			requestBody:    map[string]string{"role": "owner"},
			mockSetup:      func(*MockAccessRequestServiceInterface) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   handler.ErrorValidation,
		},
		{
			name: "already resolved",
			mockSetup: func(m *MockAccessRequestServiceInterface) {
				m.On("Approve", mock.Anything, actorID, requestID, (*domain.Role)(nil)).
					Return(nil, service.ErrRequestResolved)
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   handler.ErrorRequestResolved,
		},
		{
			name: "requester became a member meanwhile",
			mockSetup: func(m *MockAccessRequestServiceInterface) {
				m.On("Approve", mock.Anything, actorID, requestID, (*domain.Role)(nil)).
					Return(nil, service.ErrMemberExists)
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   handler.ErrorMemberExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, m := newServer(t)
			m.knownActor()
			tt.mockSetup(m.requests)

			w := do(t, r, http.MethodPost, path, tt.requestBody)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, decodeError(t, w).Error.Code)
			}
		})
	}
}

func TestAccessRequestHandler_Decline(t *testing.T) {
	r, m := newServer(t)
	m.knownActor()
	m.requests.On("Decline", mock.Anything, actorID, requestID).
		Return(&domain.AccessRequest{RequestID: requestID, Status: domain.RequestDeclined}, nil)

	w := do(t, r, http.MethodPost, "/api/v1/access-requests/"+requestID+"/decline", nil)

	assert.Equal(t, http.StatusOK, w.Code)
}
