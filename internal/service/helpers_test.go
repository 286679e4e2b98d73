package service_test

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mishasvintus/bugcake/internal/domain"
	"github.com/mishasvintus/bugcake/internal/metrics"
	"github.com/mishasvintus/bugcake/internal/notify"
	"github.com/mishasvintus/bugcake/internal/repository/repotest"
	"github.com/mishasvintus/bugcake/internal/service"
)

// recorder collects notifications.
type recorder struct {
	mu     sync.Mutex
	events []notify.Event
}

func (r *recorder) Notify(_ context.Context, e notify.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) kinds() []notify.EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]notify.EventKind, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Kind)
	}
	return out
}

type env struct {
	db         *sql.DB
	events     *recorder
	metrics    *metrics.Metrics
	users      *service.UserService
	sheets     *service.SheetService
	testCases  *service.TestCaseService
	checklists *service.ChecklistService
	members    *service.MemberService
	requests   *service.AccessRequestService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := repotest.SetupTestDB(t)
	rec := &recorder{}
	m := metrics.NewMetrics()
	return &env{
		db:         db,
		events:     rec,
		metrics:    m,
		users:      service.NewUserService(db),
		sheets:     service.NewSheetService(db),
		testCases:  service.NewTestCaseService(db, rec, m, nil),
		checklists: service.NewChecklistService(db, rec, m, nil),
		members:    service.NewMemberService(db),
		requests:   service.NewAccessRequestService(db, rec, m, nil),
	}
}

func (e *env) user(t *testing.T, email, name string) *domain.User {
	t.Helper()
	u, err := e.users.Register(context.Background(), email, name)
	require.NoError(t, err)
	return u
}

func (e *env) sheet(t *testing.T, ownerID string, sheetType domain.SheetType) *domain.SheetWithRole {
	t.Helper()
	sh, err := e.sheets.Create(context.Background(), ownerID, "Checkout", sheetType, domain.AccessRestricted)
	require.NoError(t, err)
	return sh
}

func (e *env) share(t *testing.T, actorID, sheetID, email string, role domain.Role) {
	t.Helper()
	ref := domain.ResourceRef{Type: domain.ResourceSheet, ID: sheetID}
	_, err := e.members.Add(context.Background(), actorID, ref, email, role)
	require.NoError(t, err)
}

func (e *env) testCase(t *testing.T, actorID, sheetID, title string) *domain.TestCaseView {
	t.Helper()
	tc, err := e.testCases.Create(context.Background(), actorID, sheetID, domain.TestCaseInput{Title: title})
	require.NoError(t, err)
	return tc
}

// approved creates a test case and walks it to Approved as actorID.
func (e *env) approved(t *testing.T, actorID, sheetID, title string, details domain.TestCaseDetails) *domain.TestCaseView {
	t.Helper()
	ctx := context.Background()
	tc, err := e.testCases.Create(ctx, actorID, sheetID, domain.TestCaseInput{Title: title, Details: details})
	require.NoError(t, err)
	_, err = e.testCases.ApplyAction(ctx, actorID, tc.TestCaseID, domain.ActionSubmit, "")
	require.NoError(t, err)
	tc, err = e.testCases.ApplyAction(ctx, actorID, tc.TestCaseID, domain.ActionApprove, "")
	require.NoError(t, err)
	return tc
}
