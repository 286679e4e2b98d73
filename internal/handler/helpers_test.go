package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mishasvintus/bugcake/internal/domain"
	"github.com/mishasvintus/bugcake/internal/handler"
	"github.com/mishasvintus/bugcake/internal/router"
)

const (
	actorID     = "6f1c2a52-1a57-4f55-9a0e-1a3c6d7e8f90"
	sheetID     = "0b6c8a1e-2f3d-4c5b-8a9e-7d6c5b4a3f21"
	testCaseID  = "9d8c7b6a-5f4e-4d3c-8b2a-1f0e9d8c7b6a"
	checklistID = "3e2d1c0b-9a8f-4e7d-8c6b-5a4f3e2d1c0b"
	itemID      = "7a6b5c4d-3e2f-4a1b-9c8d-7e6f5a4b3c2d"
	requestID   = "5c4b3a29-1807-4f6e-9d5c-4b3a29180706"
	memberID    = "1a2b3c4d-5e6f-4a7b-8c9d-0e1f2a3b4c5d"
)

type mocks struct {
	users      *MockUserServiceInterface
	sheets     *MockSheetServiceInterface
	testCases  *MockTestCaseServiceInterface
	checklists *MockChecklistServiceInterface
	members    *MockMemberServiceInterface
	requests   *MockAccessRequestServiceInterface
	exports    *MockExportServiceInterface
}

func newServer(t *testing.T) (*gin.Engine, *mocks) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	m := &mocks{
		users:      NewMockUserServiceInterface(t),
		sheets:     NewMockSheetServiceInterface(t),
		testCases:  NewMockTestCaseServiceInterface(t),
		checklists: NewMockChecklistServiceInterface(t),
		members:    NewMockMemberServiceInterface(t),
		requests:   NewMockAccessRequestServiceInterface(t),
		exports:    NewMockExportServiceInterface(t),
	}

	r := router.SetupRoutes(router.Handlers{
		User:          handler.NewUserHandler(m.users),
		Sheet:         handler.NewSheetHandler(m.sheets),
		TestCase:      handler.NewTestCaseHandler(m.testCases),
		Checklist:     handler.NewChecklistHandler(m.checklists),
		Member:        handler.NewMemberHandler(m.members),
		AccessRequest: handler.NewAccessRequestHandler(m.requests),
		Export:        handler.NewExportHandler(m.exports),
	}, router.Options{Users: m.users})

	return r, m
}

// knownActor makes RequireActor accept actorID.
func (m *mocks) knownActor() {
	m.users.On("Get", mock.Anything, actorID).
		Return(&domain.User{UserID: actorID, Email: "lead@bugcake.test", Name: "Lead"}, nil).Maybe()
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(handler.ActorHeader, actorID)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) handler.ErrorResponse {
	t.Helper()
	var resp handler.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(v))
	return &buf
}
