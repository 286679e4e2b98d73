package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mishasvintus/bugcake/internal/domain"
	"github.com/mishasvintus/bugcake/internal/export"
	"github.com/mishasvintus/bugcake/internal/repository/checklist"
	"github.com/mishasvintus/bugcake/internal/repository/member"
	"github.com/mishasvintus/bugcake/internal/repository/sheet"
	"github.com/mishasvintus/bugcake/internal/repository/testcase"
)

// ExportService writes sheets and checklists to Google spreadsheets.
type ExportService struct {
	db     *sql.DB
	writer export.Writer
	log    *zap.Logger
}

// NewExportService creates a new export service. A nil writer disables export.
func NewExportService(db *sql.DB, writer export.Writer, log *zap.Logger) *ExportService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ExportService{db: db, writer: writer, log: log}
}

// ExportSheet writes all test cases of a sheet into tab. Returns the updated range.
func (s *ExportService) ExportSheet(ctx context.Context, actorID, sheetID, spreadsheetID, tab string) (string, error) {
	if s.writer == nil {
		return "", ErrExportDisabled
	}
	spreadsheetID, tab, err := exportTarget(spreadsheetID, tab)
	if err != nil {
		return "", err
	}

	sh, role, err := authorizeSheet(ctx, s.db, sheetID, actorID, domain.PermView)
	if err != nil {
		return "", err
	}
	if !role.AtLeast(domain.RoleViewer) {
		return "", ErrForbidden
	}
	if tab == "" {
		tab = sh.Name
	}

	var (
		testCases []domain.TestCase
		modules   []domain.Module
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		testCases, err = testcase.ListBySheet(gctx, s.db, sheetID, domain.TestCaseFilter{})
		return err
	})
	g.Go(func() error {
		var err error
		modules, err = sheet.ListModules(gctx, s.db, sheetID)
		return err
	})
	if err := g.Wait(); err != nil {
		return "", err
	}

	moduleNames := make(map[string]string, len(modules))
	for _, m := range modules {
		moduleNames[m.ModuleID] = m.Name
	}

	return s.write(ctx, spreadsheetID, tab, export.SheetTable(sh.Type, testCases, moduleNames))
}

// ExportChecklist writes a checklist with execution results into tab.
func (s *ExportService) ExportChecklist(ctx context.Context, actorID, checklistID, spreadsheetID, tab string) (string, error) {
	if s.writer == nil {
		return "", ErrExportDisabled
	}
	spreadsheetID, tab, err := exportTarget(spreadsheetID, tab)
	if err != nil {
		return "", err
	}

	c, role, err := authorizeChecklist(ctx, s.db, checklistID, actorID, domain.PermView)
	if err != nil {
		return "", err
	}
	if !role.AtLeast(domain.RoleViewer) {
		return "", ErrForbidden
	}
	if tab == "" {
		tab = c.Name
	}

	var members []domain.Member
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		c.Items, err = checklist.ListItems(gctx, s.db, checklistID)
		return err
	})
	g.Go(func() error {
		var err error
		members, err = member.List(gctx, s.db, domain.ResourceRef{Type: domain.ResourceChecklist, ID: checklistID})
		return err
	})
	if err := g.Wait(); err != nil {
		return "", err
	}

	userNames := make(map[string]string, len(members))
	for _, m := range members {
		userNames[m.UserID] = m.Name
	}

	return s.write(ctx, spreadsheetID, tab, export.ChecklistTable(c, userNames))
}

func (s *ExportService) write(ctx context.Context, spreadsheetID, tab string, table export.Table) (string, error) {
	updated, err := s.writer.WriteTable(ctx, spreadsheetID, tab, table)
	if err != nil {
		if errors.Is(err, export.ErrDisabled) {
			return "", ErrExportDisabled
		}
		return "", fmt.Errorf("failed to export: %w", err)
	}
	s.log.Info("exported to spreadsheet",
		zap.String("spreadsheet_id", spreadsheetID),
		zap.String("tab", tab),
		zap.Int("rows", len(table.Rows)),
	)
	return updated, nil
}

func exportTarget(spreadsheetID, tab string) (string, string, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return "", "", fmt.Errorf("%w: spreadsheet id is required", ErrValidation)
	}
	return spreadsheetID, strings.TrimSpace(tab), nil
}
