// Package importer loads users, sheets, modules and test cases from YAML fixtures.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/mishasvintus/bugcake/internal/domain"
	"github.com/mishasvintus/bugcake/internal/service"
)

// Fixture is the root of an import file.
type Fixture struct {
	Users  []UserFixture  `yaml:"users"`
	Sheets []SheetFixture `yaml:"sheets"`
}

// UserFixture describes a user profile.
type UserFixture struct {
	Email string `yaml:"email"`
	Name  string `yaml:"name"`
}

// SheetFixture describes a sheet with its members and content.
type SheetFixture struct {
	Name        string             `yaml:"name"`
	Type        domain.SheetType   `yaml:"type"`
	AccessLevel domain.AccessLevel `yaml:"access_level"`
	Members     []MemberFixture    `yaml:"members"`
	Modules     []ModuleFixture    `yaml:"modules"`
	TestCases   []TestCaseFixture  `yaml:"test_cases"`
}

// MemberFixture shares a sheet with an imported user.
type MemberFixture struct {
	Email string      `yaml:"email"`
	Role  domain.Role `yaml:"role"`
}

// ModuleFixture groups test cases.
type ModuleFixture struct {
	Name      string            `yaml:"name"`
	TestCases []TestCaseFixture `yaml:"test_cases"`
}

// TestCaseFixture describes a test case. Actions are applied in order by the
// owner after creation, so fixtures reach their status through the workflow.
type TestCaseFixture struct {
	Title   string                  `yaml:"title"`
	Details domain.TestCaseDetails  `yaml:"details"`
	Actions []domain.WorkflowAction `yaml:"actions"`
}

// Result counts what an import created.
type Result struct {
	Users     int
	Sheets    int
	Modules   int
	TestCases int
	Members   int
}

// UserService is the subset of user operations the importer needs.
type UserService interface {
	Register(ctx context.Context, email, name string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// SheetService is the subset of sheet operations the importer needs.
type SheetService interface {
	Create(ctx context.Context, actorID, name string, sheetType domain.SheetType, level domain.AccessLevel) (*domain.SheetWithRole, error)
	CreateModule(ctx context.Context, actorID, sheetID, name string) (*domain.Module, error)
}

// TestCaseService is the subset of test case operations the importer needs.
type TestCaseService interface {
	Create(ctx context.Context, actorID, sheetID string, in domain.TestCaseInput) (*domain.TestCaseView, error)
	ApplyAction(ctx context.Context, actorID, testCaseID string, action domain.WorkflowAction, note string) (*domain.TestCaseView, error)
}

// MemberService is the subset of sharing operations the importer needs.
type MemberService interface {
	Add(ctx context.Context, actorID string, ref domain.ResourceRef, email string, role domain.Role) (*domain.Member, error)
}

// Importer writes fixtures through the regular services.
type Importer struct {
	users     UserService
	sheets    SheetService
	testCases TestCaseService
	members   MemberService
	log       *zap.Logger
}

// New creates an importer.
func New(users UserService, sheets SheetService, testCases TestCaseService, members MemberService, log *zap.Logger) *Importer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Importer{
		users:     users,
		sheets:    sheets,
		testCases: testCases,
		members:   members,
		log:       log,
	}
}

// Load decodes a fixture. Unknown fields are rejected.
func Load(r io.Reader) (*Fixture, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f Fixture
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return &f, nil
		}
		return nil, fmt.Errorf("failed to decode fixture: %w", err)
	}
	return &f, nil
}

// Run imports f. Sheets are owned by the user registered under ownerEmail,
// which must exist already or be listed in f.Users.
func (im *Importer) Run(ctx context.Context, f *Fixture, ownerEmail string) (*Result, error) {
	var res Result

	for _, u := range f.Users {
		created, err := im.ensureUser(ctx, u)
		if err != nil {
			return &res, err
		}
		if created {
			res.Users++
		}
	}

	owner, err := im.users.GetByEmail(ctx, ownerEmail)
	if err != nil {
		return &res, fmt.Errorf("owner %s: %w", ownerEmail, err)
	}

	for _, sf := range f.Sheets {
		if err := im.importSheet(ctx, owner.UserID, sf, &res); err != nil {
			return &res, fmt.Errorf("sheet %q: %w", sf.Name, err)
		}
	}

	im.log.Info("import finished",
		zap.Int("users", res.Users),
		zap.Int("sheets", res.Sheets),
		zap.Int("modules", res.Modules),
		zap.Int("test_cases", res.TestCases),
		zap.Int("members", res.Members),
	)
	return &res, nil
}

func (im *Importer) ensureUser(ctx context.Context, u UserFixture) (bool, error) {
	_, err := im.users.Register(ctx, u.Email, u.Name)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, service.ErrUserExists):
		im.log.Debug("user already exists", zap.String("email", u.Email))
		return false, nil
	default:
		return false, fmt.Errorf("user %s: %w", u.Email, err)
	}
}

func (im *Importer) importSheet(ctx context.Context, ownerID string, sf SheetFixture, res *Result) error {
	sh, err := im.sheets.Create(ctx, ownerID, sf.Name, sf.Type, sf.AccessLevel)
	if err != nil {
		return err
	}
	res.Sheets++

	ref := domain.ResourceRef{Type: domain.ResourceSheet, ID: sh.SheetID}
	for _, m := range sf.Members {
		if _, err := im.members.Add(ctx, ownerID, ref, m.Email, m.Role); err != nil {
			return fmt.Errorf("member %s: %w", m.Email, err)
		}
		res.Members++
	}

	for _, tf := range sf.TestCases {
		if err := im.importTestCase(ctx, ownerID, sh.SheetID, nil, tf); err != nil {
			return err
		}
		res.TestCases++
	}

	for _, mf := range sf.Modules {
		m, err := im.sheets.CreateModule(ctx, ownerID, sh.SheetID, mf.Name)
		if err != nil {
			return fmt.Errorf("module %q: %w", mf.Name, err)
		}
		res.Modules++

		for _, tf := range mf.TestCases {
			if err := im.importTestCase(ctx, ownerID, sh.SheetID, &m.ModuleID, tf); err != nil {
				return err
			}
			res.TestCases++
		}
	}
	return nil
}

func (im *Importer) importTestCase(ctx context.Context, ownerID, sheetID string, moduleID *string, tf TestCaseFixture) error {
	tc, err := im.testCases.Create(ctx, ownerID, sheetID, domain.TestCaseInput{
		ModuleID: moduleID,
		Title:    tf.Title,
		Details:  tf.Details,
	})
	if err != nil {
		return fmt.Errorf("test case %q: %w", tf.Title, err)
	}

	for _, action := range tf.Actions {
		if _, err := im.testCases.ApplyAction(ctx, ownerID, tc.TestCaseID, action, "imported"); err != nil {
			return fmt.Errorf("test case %q action %s: %w", tf.Title, action, err)
		}
	}
	return nil
}
