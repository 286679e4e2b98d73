package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mishasvintus/bugcake/internal/domain"
	"github.com/mishasvintus/bugcake/internal/notify"
	"github.com/mishasvintus/bugcake/internal/service"
)

func TestMemberService(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := e.user(t, "owner@bugcake.test", "Owner")
	lead := e.user(t, "lead@bugcake.test", "Lead")
	tester := e.user(t, "tester@bugcake.test", "Tester")
	sh := e.sheet(t, owner.UserID, domain.SheetFunctionality)
	ref := domain.ResourceRef{Type: domain.ResourceSheet, ID: sh.SheetID}

	m, err := e.members.Add(ctx, owner.UserID, ref, lead.Email, domain.RoleQALead)
	require.NoError(t, err)
	assert.Equal(t, "Lead", m.Name)

	_, err = e.members.Add(ctx, lead.UserID, ref, tester.Email, domain.RoleQATester)
	require.NoError(t, err)

	tests := []struct {
		name          string
		run           func() error
		expectedError error
	}{
		{
			name: "duplicate member",
			run: func() error {
				_, err := e.members.Add(ctx, owner.UserID, ref, tester.Email, domain.RoleViewer)
				return err
			},
			expectedError: service.ErrMemberExists,
		},
		{
			name: "unknown email",
			run: func() error {
				_, err := e.members.Add(ctx, owner.UserID, ref, "nobody@bugcake.test", domain.RoleViewer)
				return err
			},
			expectedError: service.ErrUserNotFound,
		},
		{
			name: "owner role cannot be granted",
			run: func() error {
				_, err := e.members.UpdateRole(ctx, owner.UserID, ref, tester.UserID, domain.RoleOwner)
				return err
			},
			expectedError: service.ErrValidation,
		},
		{
			name: "owner cannot be demoted",
			run: func() error {
				_, err := e.members.UpdateRole(ctx, lead.UserID, ref, owner.UserID, domain.RoleViewer)
				return err
			},
			expectedError: service.ErrForbidden,
		},
		{
			name:          "owner cannot be removed",
			run:           func() error { return e.members.Remove(ctx, lead.UserID, ref, owner.UserID) },
			expectedError: service.ErrForbidden,
		},
		{
			name: "tester cannot manage members",
			run: func() error {
				_, err := e.members.UpdateRole(ctx, tester.UserID, ref, lead.UserID, domain.RoleViewer)
				return err
			},
			expectedError: service.ErrForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.run(), tt.expectedError)
		})
	}

	updated, err := e.members.UpdateRole(ctx, lead.UserID, ref, tester.UserID, domain.RoleViewer)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleViewer, updated.Role)

	require.NoError(t, e.members.Remove(ctx, owner.UserID, ref, tester.UserID))
	assert.ErrorIs(t, e.members.Remove(ctx, owner.UserID, ref, tester.UserID), service.ErrMemberNotFound)

	members, err := e.members.List(ctx, lead.UserID, ref)
	require.NoError(t, err)
	assert.Len(t, members, 2)
}

func TestAccessRequestService(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := e.user(t, "owner@bugcake.test", "Owner")
	alice := e.user(t, "alice@bugcake.test", "Alice")
	bob := e.user(t, "bob@bugcake.test", "Bob")
	sh := e.sheet(t, owner.UserID, domain.SheetFunctionality)
	ref := domain.ResourceRef{Type: domain.ResourceSheet, ID: sh.SheetID}

	t.Run("approve grants the requested role", func(t *testing.T) {
		r, err := e.requests.Request(ctx, alice.UserID, ref, domain.RoleQATester, "  please ")
		require.NoError(t, err)
		assert.Equal(t, domain.RequestPending, r.Status)
		require.NotNil(t, r.Message)
		assert.Equal(t, "please", *r.Message)

		_, err = e.requests.Request(ctx, alice.UserID, ref, domain.RoleViewer, "")
		assert.ErrorIs(t, err, service.ErrRequestPending)

		pending, err := e.requests.ListPending(ctx, owner.UserID, ref)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, "alice@bugcake.test", pending[0].RequesterEmail)

		_, err = e.requests.ListPending(ctx, alice.UserID, ref)
		assert.ErrorIs(t, err, service.ErrForbidden)

		approved, err := e.requests.Approve(ctx, owner.UserID, r.RequestID, nil)
		require.NoError(t, err)
		assert.Equal(t, domain.RequestApproved, approved.Status)
		require.NotNil(t, approved.GrantedRole)
		assert.Equal(t, domain.RoleQATester, *approved.GrantedRole)

		sheet, err := e.sheets.Get(ctx, alice.UserID, sh.SheetID)
		require.NoError(t, err)
		assert.Equal(t, domain.RoleQATester, sheet.Role)

		_, err = e.requests.Approve(ctx, owner.UserID, r.RequestID, nil)
		assert.ErrorIs(t, err, service.ErrRequestResolved)

		_, err = e.requests.Request(ctx, alice.UserID, ref, domain.RoleQALead, "")
		assert.ErrorIs(t, err, service.ErrMemberExists)
	})

	t.Run("approve can override role", func(t *testing.T) {
		r, err := e.requests.Request(ctx, bob.UserID, ref, domain.RoleQALead, "")
		require.NoError(t, err)

		ownerRole := domain.RoleOwner
		_, err = e.requests.Approve(ctx, alice.UserID, r.RequestID, nil)
		assert.ErrorIs(t, err, service.ErrForbidden)
		_, err = e.requests.Approve(ctx, alice.UserID, r.RequestID, &ownerRole)
		assert.ErrorIs(t, err, service.ErrForbidden)
		_, err = e.requests.Approve(ctx, owner.UserID, r.RequestID, &ownerRole)
		assert.ErrorIs(t, err, service.ErrValidation)

		viewer := domain.RoleViewer
		approved, err := e.requests.Approve(ctx, owner.UserID, r.RequestID, &viewer)
		require.NoError(t, err)
		assert.Equal(t, domain.RoleViewer, *approved.GrantedRole)
	})

	t.Run("request stays pending when requester joined meanwhile", func(t *testing.T) {
		carol := e.user(t, "carol@bugcake.test", "Carol")
		r, err := e.requests.Request(ctx, carol.UserID, ref, domain.RoleViewer, "")
		require.NoError(t, err)
		_, err = e.members.Add(ctx, owner.UserID, ref, carol.Email, domain.RoleQATester)
		require.NoError(t, err)

		_, err = e.requests.Approve(ctx, owner.UserID, r.RequestID, nil)
		assert.ErrorIs(t, err, service.ErrMemberExists)

		pending, err := e.requests.ListPending(ctx, owner.UserID, ref)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, r.RequestID, pending[0].RequestID)

		declined, err := e.requests.Decline(ctx, owner.UserID, r.RequestID)
		require.NoError(t, err)
		assert.Equal(t, domain.RequestDeclined, declined.Status)
		assert.Nil(t, declined.GrantedRole)
	})

	t.Run("unknown resource", func(t *testing.T) {
		missing := domain.ResourceRef{Type: domain.ResourceSheet, ID: "00000000-0000-0000-0000-000000000003"}
		_, err := e.requests.Request(ctx, bob.UserID, missing, domain.RoleViewer, "")
		assert.ErrorIs(t, err, service.ErrSheetNotFound)

		_, err = e.requests.Approve(ctx, owner.UserID, "00000000-0000-0000-0000-000000000004", nil)
		assert.ErrorIs(t, err, service.ErrRequestNotFound)
	})

	assert.Equal(t, []notify.EventKind{
		notify.EventAccessRequested,
		notify.EventAccessApproved,
		notify.EventAccessRequested,
		notify.EventAccessApproved,
		notify.EventAccessRequested,
		notify.EventAccessDeclined,
	}, e.events.kinds())
}
