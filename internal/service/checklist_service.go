package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mishasvintus/bugcake/internal/domain"
	"github.com/mishasvintus/bugcake/internal/metrics"
	"github.com/mishasvintus/bugcake/internal/notify"
	"github.com/mishasvintus/bugcake/internal/repository"
	"github.com/mishasvintus/bugcake/internal/repository/accessrequest"
	"github.com/mishasvintus/bugcake/internal/repository/checklist"
	"github.com/mishasvintus/bugcake/internal/repository/member"
	"github.com/mishasvintus/bugcake/internal/repository/sheet"
	"github.com/mishasvintus/bugcake/internal/repository/testcase"
	"github.com/mishasvintus/bugcake/internal/repository/user"
)

// CreateChecklistInput describes a new checklist built from approved test cases of a sheet.
type CreateChecklistInput struct {
	SheetID     string
	Name        string
	GoalDate    time.Time
	AccessLevel domain.AccessLevel
	TestCaseIDs []string
	ExecutorIDs []string
}

// ChecklistService handles checklists and their execution.
type ChecklistService struct {
	db       *sql.DB
	notifier notify.Notifier
	metrics  *metrics.Metrics
	log      *zap.Logger
	now      func() time.Time
}

// NewChecklistService creates a new checklist service.
func NewChecklistService(db *sql.DB, notifier notify.Notifier, m *metrics.Metrics, log *zap.Logger) *ChecklistService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ChecklistService{
		db:       db,
		notifier: notifier,
		metrics:  m,
		log:      log,
		now:      time.Now,
	}
}

func (in *CreateChecklistInput) validate(today time.Time) error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return fmt.Errorf("%w: checklist name is required", ErrValidation)
	}
	in.TestCaseIDs = dedupe(in.TestCaseIDs)
	if len(in.TestCaseIDs) == 0 {
		return fmt.Errorf("%w: at least one test case is required", ErrValidation)
	}
	in.ExecutorIDs = dedupe(in.ExecutorIDs)
	if len(in.ExecutorIDs) == 0 {
		return fmt.Errorf("%w: at least one executor is required", ErrValidation)
	}
	for _, id := range append(append([]string{}, in.TestCaseIDs...), in.ExecutorIDs...) {
		if _, err := uuid.Parse(id); err != nil {
			return fmt.Errorf("%w: invalid id %q", ErrValidation, id)
		}
	}
	if in.GoalDate.IsZero() {
		return fmt.Errorf("%w: goal date is required", ErrValidation)
	}
	if dateOf(in.GoalDate).Before(dateOf(today)) {
		return fmt.Errorf("%w: goal date %s is in the past", ErrValidation, in.GoalDate.Format(time.DateOnly))
	}
	if in.AccessLevel == "" {
		in.AccessLevel = domain.AccessRestricted
	}
	if !in.AccessLevel.IsValid() {
		return fmt.Errorf("%w: invalid access level %q", ErrValidation, in.AccessLevel)
	}
	return nil
}

// Create snapshots approved test cases of a sheet into a new checklist.
// The actor becomes owner and every executor becomes a qa_tester member.
func (s *ChecklistService) Create(ctx context.Context, actorID string, in CreateChecklistInput) (*domain.ChecklistWithRole, error) {
	if err := in.validate(s.now()); err != nil {
		return nil, err
	}

	c := &domain.Checklist{
		ChecklistID: uuid.NewString(),
		Name:        in.Name,
		GoalDate:    dateOf(in.GoalDate),
		AccessLevel: in.AccessLevel,
		OwnerID:     actorID,
	}

	err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		sh, _, err := authorizeSheet(ctx, tx, in.SheetID, actorID, domain.PermCreateChecklist)
		if err != nil {
			return err
		}
		c.SourceSheetID = &sh.SheetID
		c.TestCaseType = sh.Type

		testCases, err := testcase.ListByIDs(ctx, tx, sh.SheetID, in.TestCaseIDs)
		if err != nil {
			return err
		}
		if len(testCases) != len(in.TestCaseIDs) {
			return fmt.Errorf("%w: some test cases do not belong to the sheet", ErrValidation)
		}
		for _, tc := range testCases {
			if tc.WorkflowStatus != domain.StatusApproved {
				return fmt.Errorf("%w: %s is %s, only approved test cases can be added", ErrValidation, tc.DisplayID(), tc.WorkflowStatus)
			}
		}

		for _, id := range in.ExecutorIDs {
			exists, err := user.Exists(ctx, tx, id)
			if err != nil {
				return err
			}
			if !exists {
				return fmt.Errorf("%w: executor %s", ErrUserNotFound, id)
			}
		}

		modules, err := sheet.ListModules(ctx, tx, sh.SheetID)
		if err != nil {
			return err
		}
		moduleNames := make(map[string]string, len(modules))
		for _, m := range modules {
			moduleNames[m.ModuleID] = m.Name
		}

		if err := checklist.Create(ctx, tx, c); err != nil {
			return err
		}

		c.Items = make([]domain.ChecklistItem, 0, len(testCases))
		for i := range testCases {
			moduleName := ""
			if testCases[i].ModuleID != nil {
				moduleName = moduleNames[*testCases[i].ModuleID]
			}
			item := domain.NewChecklistItem(uuid.NewString(), c.ChecklistID, &testCases[i], moduleName)
			if err := checklist.InsertItem(ctx, tx, &item); err != nil {
				return err
			}
			c.Items = append(c.Items, item)
		}

		ref := domain.ResourceRef{Type: domain.ResourceChecklist, ID: c.ChecklistID}
		if err := member.Add(ctx, tx, ref, actorID, domain.RoleOwner); err != nil {
			return err
		}
		for _, id := range in.ExecutorIDs {
			if err := checklist.InsertExecutor(ctx, tx, c.ChecklistID, id); err != nil {
				return err
			}
			if id == actorID {
				continue
			}
			if err := member.Add(ctx, tx, ref, id, domain.RoleQATester); err != nil {
				return err
			}
		}
		c.Executors = in.ExecutorIDs
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.Progress = map[domain.ExecutionStatus]int64{domain.ExecNotRun: int64(len(c.Items))}
	for _, st := range domain.AllExecutionStatuses[1:] {
		c.Progress[st] = 0
	}

	s.metrics.ChecklistCreated()
	s.log.Info("checklist created",
		zap.String("checklist_id", c.ChecklistID),
		zap.Int("items", len(c.Items)),
		zap.Int("executors", len(c.Executors)),
	)
	publish(ctx, s.notifier, s.log, notify.Event{
		Kind:     notify.EventChecklistAssigned,
		Resource: domain.ResourceRef{Type: domain.ResourceChecklist, ID: c.ChecklistID},
		ActorID:  actorID,
		Text: fmt.Sprintf("checklist %q with %d test cases assigned to %d executors, due %s",
			c.Name, len(c.Items), len(c.Executors), c.GoalDate.Format(time.DateOnly)),
	})

	return &domain.ChecklistWithRole{Checklist: *c, Role: domain.RoleOwner}, nil
}

// List returns checklists the actor belongs to plus public ones.
func (s *ChecklistService) List(ctx context.Context, actorID string) ([]domain.ChecklistWithRole, error) {
	return checklist.ListForUser(ctx, s.db, actorID)
}

// Get returns a checklist with its items, executors and progress counts.
func (s *ChecklistService) Get(ctx context.Context, actorID, checklistID string) (*domain.ChecklistWithRole, error) {
	c, role, err := authorizeChecklist(ctx, s.db, checklistID, actorID, domain.PermView)
	if err != nil {
		return nil, err
	}

	if c.Items, err = checklist.ListItems(ctx, s.db, checklistID); err != nil {
		return nil, err
	}
	if c.Executors, err = checklist.ListExecutors(ctx, s.db, checklistID); err != nil {
		return nil, err
	}
	if c.Progress, err = checklist.Progress(ctx, s.db, checklistID); err != nil {
		return nil, err
	}

	return &domain.ChecklistWithRole{Checklist: *c, Role: role}, nil
}

// UpdateItem records the execution result of a checklist item. Requires qa_tester.
func (s *ChecklistService) UpdateItem(ctx context.Context, actorID, checklistID, itemID string, status domain.ExecutionStatus, actualResults string) (*domain.ChecklistItem, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: invalid execution status %q", ErrValidation, status)
	}
	if _, _, err := authorizeChecklist(ctx, s.db, checklistID, actorID, domain.PermExecuteChecklist); err != nil {
		return nil, err
	}

	item, err := checklist.UpdateItem(ctx, s.db, checklistID, itemID, status, strings.TrimSpace(actualResults), actorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}

	s.metrics.ChecklistItemExecuted(string(status))
	return item, nil
}

// UpdateAccessLevel changes checklist visibility. Requires qa_lead.
func (s *ChecklistService) UpdateAccessLevel(ctx context.Context, actorID, checklistID string, level domain.AccessLevel) (*domain.ChecklistWithRole, error) {
	if !level.IsValid() {
		return nil, fmt.Errorf("%w: invalid access level %q", ErrValidation, level)
	}
	c, role, err := authorizeChecklist(ctx, s.db, checklistID, actorID, domain.PermManageSettings)
	if err != nil {
		return nil, err
	}

	if err := checklist.UpdateAccessLevel(ctx, s.db, checklistID, level); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrChecklistNotFound
		}
		return nil, err
	}
	c.AccessLevel = level
	return &domain.ChecklistWithRole{Checklist: *c, Role: role}, nil
}

// Delete removes a checklist with its memberships and access requests. Requires owner.
func (s *ChecklistService) Delete(ctx context.Context, actorID, checklistID string) error {
	return repository.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, _, err := authorizeChecklist(ctx, tx, checklistID, actorID, domain.PermDelete); err != nil {
			return err
		}

		ref := domain.ResourceRef{Type: domain.ResourceChecklist, ID: checklistID}
		if err := member.DeleteForResource(ctx, tx, ref); err != nil {
			return err
		}
		if err := accessrequest.DeleteForResource(ctx, tx, ref); err != nil {
			return err
		}
		if err := checklist.Delete(ctx, tx, checklistID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrChecklistNotFound
			}
			return err
		}
		return nil
	})
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
