package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mishasvintus/bugcake/internal/domain"
	"github.com/mishasvintus/bugcake/internal/metrics"
	"github.com/mishasvintus/bugcake/internal/notify"
	"github.com/mishasvintus/bugcake/internal/repository"
	"github.com/mishasvintus/bugcake/internal/repository/sheet"
	"github.com/mishasvintus/bugcake/internal/repository/testcase"
)

// TestCaseService handles test case content and workflow.
type TestCaseService struct {
	db       *sql.DB
	notifier notify.Notifier
	metrics  *metrics.Metrics
	log      *zap.Logger

	// beforeStatusUpdate runs between reading a test case and its conditional update.
	beforeStatusUpdate func()
}

// NewTestCaseService creates a new test case service.
func NewTestCaseService(db *sql.DB, notifier notify.Notifier, m *metrics.Metrics, log *zap.Logger) *TestCaseService {
	if log == nil {
		log = zap.NewNop()
	}
	return &TestCaseService{
		db:       db,
		notifier: notifier,
		metrics:  m,
		log:      log,
	}
}

// List returns the test cases of a sheet ordered by sequence number.
func (s *TestCaseService) List(ctx context.Context, actorID, sheetID string, filter domain.TestCaseFilter) ([]domain.TestCaseView, error) {
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, fmt.Errorf("%w: invalid status filter %q", ErrValidation, *filter.Status)
	}

	_, role, err := authorizeSheet(ctx, s.db, sheetID, actorID, domain.PermView)
	if err != nil {
		return nil, err
	}

	testCases, err := testcase.ListBySheet(ctx, s.db, sheetID, filter)
	if err != nil {
		return nil, err
	}

	views := make([]domain.TestCaseView, 0, len(testCases))
	for _, tc := range testCases {
		views = append(views, domain.NewTestCaseView(tc, role))
	}
	return views, nil
}

// Get returns a single test case.
func (s *TestCaseService) Get(ctx context.Context, actorID, testCaseID string) (*domain.TestCaseView, error) {
	tc, err := s.get(ctx, s.db, testCaseID)
	if err != nil {
		return nil, err
	}
	_, role, err := authorizeSheet(ctx, s.db, tc.SheetID, actorID, domain.PermView)
	if err != nil {
		return nil, err
	}
	view := domain.NewTestCaseView(*tc, role)
	return &view, nil
}

// Create adds a test case in status Open with the next sequence number of the sheet.
func (s *TestCaseService) Create(ctx context.Context, actorID, sheetID string, in domain.TestCaseInput) (*domain.TestCaseView, error) {
	var created *domain.TestCase
	var role domain.Role

	err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		sh, r, err := authorizeSheet(ctx, tx, sheetID, actorID, domain.PermEditTestCases)
		if err != nil {
			return err
		}
		role = r

		if err := s.prepareInput(ctx, tx, sh, &in); err != nil {
			return err
		}

		seq, err := sheet.NextSequence(ctx, tx, sheetID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrSheetNotFound
			}
			return err
		}

		tc := &domain.TestCase{
			TestCaseID:     uuid.NewString(),
			SheetID:        sheetID,
			ModuleID:       in.ModuleID,
			SequenceNumber: seq,
			Title:          in.Title,
			WorkflowStatus: domain.StatusOpen,
			Details:        in.Details,
			CreatedBy:      actorID,
		}
		if err := testcase.Create(ctx, tx, tc); err != nil {
			return err
		}
		created = tc
		return nil
	})
	if err != nil {
		return nil, err
	}

	view := domain.NewTestCaseView(*created, role)
	return &view, nil
}

// Update replaces the content of a test case. Only editable statuses accept edits.
func (s *TestCaseService) Update(ctx context.Context, actorID, testCaseID string, in domain.TestCaseInput) (*domain.TestCaseView, error) {
	var updated *domain.TestCase
	var role domain.Role

	err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		tc, err := s.get(ctx, tx, testCaseID)
		if err != nil {
			return err
		}
		sh, r, err := authorizeSheet(ctx, tx, tc.SheetID, actorID, domain.PermEditTestCases)
		if err != nil {
			return err
		}
		role = r

		if !tc.WorkflowStatus.IsEditable() {
			return ErrNotEditable
		}
		if err := s.prepareInput(ctx, tx, sh, &in); err != nil {
			return err
		}

		tc.ModuleID = in.ModuleID
		tc.Title = in.Title
		tc.Details = in.Details
		tc.UpdatedBy = &actorID
		if err := testcase.Update(ctx, tx, tc); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotEditable
			}
			return err
		}
		if err := sheet.Touch(ctx, tx, tc.SheetID); err != nil {
			return err
		}
		updated = tc
		return nil
	})
	if err != nil {
		return nil, err
	}

	view := domain.NewTestCaseView(*updated, role)
	return &view, nil
}

// Delete removes an editable test case. Requires qa_tester.
func (s *TestCaseService) Delete(ctx context.Context, actorID, testCaseID string) error {
	return repository.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		tc, err := s.get(ctx, tx, testCaseID)
		if err != nil {
			return err
		}
		if _, _, err := authorizeSheet(ctx, tx, tc.SheetID, actorID, domain.PermEditTestCases); err != nil {
			return err
		}
		if !tc.WorkflowStatus.IsEditable() {
			return ErrNotEditable
		}

		if err := testcase.Delete(ctx, tx, testCaseID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotEditable
			}
			return err
		}
		return nil
	})
}

// ApplyAction moves a test case through the workflow. The status update is
// conditional on the status read here, so concurrent actions cannot both succeed.
func (s *TestCaseService) ApplyAction(ctx context.Context, actorID, testCaseID string, action domain.WorkflowAction, note string) (*domain.TestCaseView, error) {
	if !action.IsValid() {
		return nil, fmt.Errorf("%w: unknown action %q", domain.ErrInvalidTransition, action)
	}

	tc, err := s.get(ctx, s.db, testCaseID)
	if err != nil {
		return nil, err
	}
	sh, role, err := authorizeSheet(ctx, s.db, tc.SheetID, actorID, domain.PermView)
	if err != nil {
		return nil, err
	}
	if !role.AtLeast(action.RequiredRole()) {
		return nil, ErrForbidden
	}

	from := tc.WorkflowStatus
	to, err := domain.Transition(from, action)
	if err != nil {
		return nil, err
	}

	if s.beforeStatusUpdate != nil {
		s.beforeStatusUpdate()
	}

	err = repository.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := testcase.UpdateStatus(ctx, tx, testCaseID, from, to, actorID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrStatusChanged
			}
			return err
		}
		return testcase.InsertStatusChange(ctx, tx, &domain.StatusChange{
			TestCaseID: testCaseID,
			FromStatus: from,
			ToStatus:   to,
			Action:     action,
			ActorID:    actorID,
			Note:       strings.TrimSpace(note),
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.WorkflowTransition(string(action), string(to))
	s.log.Info("workflow transition",
		zap.String("test_case_id", testCaseID),
		zap.String("action", string(action)),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
		zap.String("actor_id", actorID),
	)

	tc.WorkflowStatus = to
	tc.UpdatedBy = &actorID
	s.announce(ctx, sh, tc, action, actorID)

	view := domain.NewTestCaseView(*tc, role)
	return &view, nil
}

// History returns the recorded transitions of a test case, oldest first.
func (s *TestCaseService) History(ctx context.Context, actorID, testCaseID string) ([]domain.StatusChange, error) {
	tc, err := s.get(ctx, s.db, testCaseID)
	if err != nil {
		return nil, err
	}
	if _, _, err := authorizeSheet(ctx, s.db, tc.SheetID, actorID, domain.PermView); err != nil {
		return nil, err
	}
	return testcase.ListStatusHistory(ctx, s.db, testCaseID)
}

func (s *TestCaseService) get(ctx context.Context, exec repository.DBTX, testCaseID string) (*domain.TestCase, error) {
	tc, err := testcase.Get(ctx, exec, testCaseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTestCaseNotFound
		}
		return nil, err
	}
	return tc, nil
}

// prepareInput normalizes in for the sheet and checks that its module belongs to the sheet.
func (s *TestCaseService) prepareInput(ctx context.Context, exec repository.DBTX, sh *domain.Sheet, in *domain.TestCaseInput) error {
	if err := in.Normalize(sh.Type); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if in.ModuleID == nil {
		return nil
	}

	m, err := sheet.GetModule(ctx, exec, *in.ModuleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrModuleNotFound
		}
		return err
	}
	if m.SheetID != sh.SheetID {
		return ErrModuleNotFound
	}
	return nil
}

func (s *TestCaseService) announce(ctx context.Context, sh *domain.Sheet, tc *domain.TestCase, action domain.WorkflowAction, actorID string) {
	var event notify.Event
	switch {
	case action == domain.ActionSubmit:
		event = notify.Event{
			Kind: notify.EventSubmittedForApproval,
			Text: fmt.Sprintf("%s %q in %q is waiting for QA lead approval", tc.DisplayID(), tc.Title, sh.Name),
		}
	case action.IsReview():
		event = notify.Event{
			Kind: notify.EventReviewed,
			Text: fmt.Sprintf("%s %q in %q is now %s", tc.DisplayID(), tc.Title, sh.Name, tc.WorkflowStatus),
		}
	default:
		return
	}
	event.Resource = domain.ResourceRef{Type: domain.ResourceSheet, ID: sh.SheetID}
	event.ActorID = actorID
	publish(ctx, s.notifier, s.log, event)
}
