package service_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mishasvintus/bugcake/internal/domain"
	"github.com/mishasvintus/bugcake/internal/notify"
	"github.com/mishasvintus/bugcake/internal/service"
)

func TestTestCaseService_Create(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := e.user(t, "lead@bugcake.test", "Lead")
	sh := e.sheet(t, owner.UserID, domain.SheetFunctionality)

	first := e.testCase(t, owner.UserID, sh.SheetID, "Login works")
	second := e.testCase(t, owner.UserID, sh.SheetID, "Logout works")
	assert.Equal(t, 1, first.SequenceNumber)
	assert.Equal(t, 2, second.SequenceNumber)
	assert.Equal(t, domain.StatusOpen, first.WorkflowStatus)
	assert.Equal(t, []domain.WorkflowAction{domain.ActionStart, domain.ActionSubmit, domain.ActionWontDo}, first.AvailableActions)

	t.Run("details must match sheet type", func(t *testing.T) {
		_, err := e.testCases.Create(ctx, owner.UserID, sh.SheetID, domain.TestCaseInput{
			Title:   "Logo",
			Details: domain.TestCaseDetails{AltTextAriaLabel: "Company logo"},
		})
		assert.ErrorIs(t, err, service.ErrValidation)
		assert.ErrorIs(t, err, domain.ErrInvalidDetails)
	})

	t.Run("module from another sheet", func(t *testing.T) {
		other := e.sheet(t, owner.UserID, domain.SheetFunctionality)
		m, err := e.sheets.CreateModule(ctx, owner.UserID, other.SheetID, "Cart")
		require.NoError(t, err)

		_, err = e.testCases.Create(ctx, owner.UserID, sh.SheetID, domain.TestCaseInput{Title: "x", ModuleID: &m.ModuleID})
		assert.ErrorIs(t, err, service.ErrModuleNotFound)
	})

	t.Run("viewer cannot create", func(t *testing.T) {
		viewer := e.user(t, "viewer@bugcake.test", "Viewer")
		e.share(t, owner.UserID, sh.SheetID, viewer.Email, domain.RoleViewer)

		_, err := e.testCases.Create(ctx, viewer.UserID, sh.SheetID, domain.TestCaseInput{Title: "x"})
		assert.ErrorIs(t, err, service.ErrForbidden)
	})

	t.Run("stranger on restricted sheet", func(t *testing.T) {
		stranger := e.user(t, "stranger@bugcake.test", "Stranger")

		_, err := e.testCases.List(ctx, stranger.UserID, sh.SheetID, domain.TestCaseFilter{})
		assert.ErrorIs(t, err, service.ErrForbidden)
	})
}

func TestTestCaseService_Workflow(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := e.user(t, "lead@bugcake.test", "Lead")
	tester := e.user(t, "tester@bugcake.test", "Tester")
	viewer := e.user(t, "viewer@bugcake.test", "Viewer")
	sh := e.sheet(t, owner.UserID, domain.SheetFunctionality)
	e.share(t, owner.UserID, sh.SheetID, tester.Email, domain.RoleQATester)
	e.share(t, owner.UserID, sh.SheetID, viewer.Email, domain.RoleViewer)
	tc := e.testCase(t, tester.UserID, sh.SheetID, "Login works")

	steps := []struct {
		name          string
		actorID       string
		action        domain.WorkflowAction
		expectedError error
		expected      domain.WorkflowStatus
	}{
		{name: "viewer cannot start", actorID: viewer.UserID, action: domain.ActionStart, expectedError: service.ErrForbidden},
		{name: "tester starts", actorID: tester.UserID, action: domain.ActionStart, expected: domain.StatusInProgress},
		{name: "tester cannot approve in progress", actorID: tester.UserID, action: domain.ActionApprove, expectedError: service.ErrForbidden},
		{name: "lead cannot approve in progress", actorID: owner.UserID, action: domain.ActionApprove, expectedError: domain.ErrInvalidTransition},
		{name: "tester submits", actorID: tester.UserID, action: domain.ActionSubmit, expected: domain.StatusWaitingApproval},
		{name: "tester cannot approve", actorID: tester.UserID, action: domain.ActionApprove, expectedError: service.ErrForbidden},
		{name: "lead requests revision", actorID: owner.UserID, action: domain.ActionRequestRevision, expected: domain.StatusNeedsRevision},
		{name: "tester resubmits", actorID: tester.UserID, action: domain.ActionSubmit, expected: domain.StatusWaitingApproval},
		{name: "lead approves", actorID: owner.UserID, action: domain.ActionApprove, expected: domain.StatusApproved},
		{name: "approve twice", actorID: owner.UserID, action: domain.ActionApprove, expectedError: domain.ErrInvalidTransition},
		{name: "unknown action", actorID: owner.UserID, action: domain.WorkflowAction("merge"), expectedError: domain.ErrInvalidTransition},
	}

	for _, st := range steps {
		t.Run(st.name, func(t *testing.T) {
			got, err := e.testCases.ApplyAction(ctx, st.actorID, tc.TestCaseID, st.action, "note")
			if st.expectedError != nil {
				assert.ErrorIs(t, err, st.expectedError)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, st.expected, got.WorkflowStatus)
		})
	}

	history, err := e.testCases.History(ctx, viewer.UserID, tc.TestCaseID)
	require.NoError(t, err)
	require.Len(t, history, 5)
	assert.Equal(t, domain.StatusOpen, history[0].FromStatus)
	assert.Equal(t, domain.ActionStart, history[0].Action)
	assert.Equal(t, tester.UserID, history[0].ActorID)
	assert.Equal(t, domain.StatusApproved, history[4].ToStatus)
	assert.Equal(t, owner.UserID, history[4].ActorID)

	assert.Equal(t, []notify.EventKind{
		notify.EventSubmittedForApproval,
		notify.EventReviewed,
		notify.EventSubmittedForApproval,
		notify.EventReviewed,
	}, e.events.kinds())

	t.Run("approved test case is not editable", func(t *testing.T) {
		_, err := e.testCases.Update(ctx, tester.UserID, tc.TestCaseID, domain.TestCaseInput{Title: "changed"})
		assert.ErrorIs(t, err, service.ErrNotEditable)
		assert.ErrorIs(t, e.testCases.Delete(ctx, owner.UserID, tc.TestCaseID), service.ErrNotEditable)
	})

	t.Run("reopen makes it editable again", func(t *testing.T) {
		_, err := e.testCases.ApplyAction(ctx, owner.UserID, tc.TestCaseID, domain.ActionReopen, "")
		require.NoError(t, err)

		got, err := e.testCases.Update(ctx, tester.UserID, tc.TestCaseID, domain.TestCaseInput{Title: "  Login works again "})
		require.NoError(t, err)
		assert.Equal(t, "Login works again", got.Title)
		assert.Equal(t, domain.StatusReopen, got.WorkflowStatus)
	})
}

func TestTestCaseService_ListAndSummary(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := e.user(t, "lead@bugcake.test", "Lead")
	sh := e.sheet(t, owner.UserID, domain.SheetFunctionality)
	cart, err := e.sheets.CreateModule(ctx, owner.UserID, sh.SheetID, "Cart")
	require.NoError(t, err)

	_, err = e.sheets.CreateModule(ctx, owner.UserID, sh.SheetID, "Cart")
	assert.ErrorIs(t, err, service.ErrModuleExists)

	_, err = e.testCases.Create(ctx, owner.UserID, sh.SheetID, domain.TestCaseInput{Title: "Add item", ModuleID: &cart.ModuleID})
	require.NoError(t, err)
	e.approved(t, owner.UserID, sh.SheetID, "Pay", domain.TestCaseDetails{})

	approved := domain.StatusApproved
	got, err := e.testCases.List(ctx, owner.UserID, sh.SheetID, domain.TestCaseFilter{Status: &approved})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Pay", got[0].Title)

	got, err = e.testCases.List(ctx, owner.UserID, sh.SheetID, domain.TestCaseFilter{ModuleID: &cart.ModuleID})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Add item", got[0].Title)

	summary, err := e.sheets.Summary(ctx, owner.UserID, sh.SheetID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.Total)
	assert.Equal(t, int64(1), summary.ByStatus[domain.StatusApproved])
	assert.Equal(t, int64(1), summary.ByStatus[domain.StatusOpen])
}

func TestTestCaseService_ConcurrentReview(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := e.user(t, "lead@bugcake.test", "Lead")
	sh := e.sheet(t, owner.UserID, domain.SheetFunctionality)
	tc := e.testCase(t, owner.UserID, sh.SheetID, "Login works")
	_, err := e.testCases.ApplyAction(ctx, owner.UserID, tc.TestCaseID, domain.ActionSubmit, "")
	require.NoError(t, err)

	const reviewers = 6

	// Every reviewer reads Waiting for QA Lead Approval before any of them updates.
	var read sync.WaitGroup
	read.Add(reviewers)
	service.SetBeforeStatusUpdate(e.testCases, func() {
		read.Done()
		read.Wait()
	})
	defer service.SetBeforeStatusUpdate(e.testCases, nil)

	var (
		wg            sync.WaitGroup
		succeeded     atomic.Int64
		statusChanged atomic.Int64
		unexpected    atomic.Int64
	)
	for i := 0; i < reviewers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.testCases.ApplyAction(ctx, owner.UserID, tc.TestCaseID, domain.ActionApprove, "")
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, service.ErrStatusChanged):
				statusChanged.Add(1)
			default:
				unexpected.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), succeeded.Load())
	assert.Equal(t, int64(reviewers-1), statusChanged.Load())
	assert.Zero(t, unexpected.Load())

	got, err := e.testCases.Get(ctx, owner.UserID, tc.TestCaseID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, got.WorkflowStatus)

	history, err := e.testCases.History(ctx, owner.UserID, tc.TestCaseID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, domain.ActionSubmit, history[0].Action)
	assert.Equal(t, domain.ActionApprove, history[1].Action)

	approvals := 0
	for _, c := range history {
		if c.ToStatus == domain.StatusApproved {
			approvals++
		}
	}
	assert.Equal(t, 1, approvals)
}
