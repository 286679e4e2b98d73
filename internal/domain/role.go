package domain

import (
	"database/sql/driver"
	"errors"
	"fmt"
)

// ErrNoAccess is returned when a user has neither a membership nor link access.
var ErrNoAccess = errors.New("no access to resource")

// Role is a user's role on a sheet or checklist.
type Role string

// Role constants.
const (
	RoleOwner    Role = "owner"
	RoleQALead   Role = "qa_lead"
	RoleQATester Role = "qa_tester"
	RoleViewer   Role = "viewer"
	RoleGuest    Role = "guest"
)

var roleRank = map[Role]int{
	RoleGuest:    1,
	RoleViewer:   2,
	RoleQATester: 3,
	RoleQALead:   4,
	RoleOwner:    5,
}

// NewRole creates a new Role with validation.
func NewRole(s string) (Role, error) {
	role := Role(s)
	if !role.IsValid() {
		return "", fmt.Errorf("invalid role: %q", s)
	}
	return role, nil
}

// IsValid checks if the role is known.
func (r Role) IsValid() bool {
	_, ok := roleRank[r]
	return ok
}

// IsGrantable reports whether the role can be handed out through sharing or access requests.
// Owner is assigned only on creation and guest is never stored.
func (r Role) IsGrantable() bool {
	return r == RoleQALead || r == RoleQATester || r == RoleViewer
}

// AtLeast reports whether r ranks at or above minRole.
func (r Role) AtLeast(minRole Role) bool {
	return roleRank[r] >= roleRank[minRole] && roleRank[r] > 0
}

// Scan implements sql.Scanner interface.
func (r *Role) Scan(value any) error {
	str, err := scanString(value, "Role")
	if err != nil {
		return err
	}
	role, err := NewRole(str)
	if err != nil {
		return err
	}
	*r = role
	return nil
}

// Value implements driver.Valuer interface.
func (r Role) Value() (driver.Value, error) {
	if !r.IsValid() {
		return nil, fmt.Errorf("invalid Role value: %s", r)
	}
	return string(r), nil
}

// Permission is a capability checked against a role.
type Permission string

// Permissions.
const (
	PermView             Permission = "view"
	PermEditTestCases    Permission = "edit_test_cases"
	PermExecuteChecklist Permission = "execute_checklist"
	PermReview           Permission = "review"
	PermManageMembers    Permission = "manage_members"
	PermManageSettings   Permission = "manage_settings"
	PermCreateChecklist  Permission = "create_checklist"
	PermDelete           Permission = "delete"
)

var permissionMinRole = map[Permission]Role{
	PermView:             RoleGuest,
	PermEditTestCases:    RoleQATester,
	PermExecuteChecklist: RoleQATester,
	PermReview:           RoleQALead,
	PermManageMembers:    RoleQALead,
	PermManageSettings:   RoleQALead,
	PermCreateChecklist:  RoleQALead,
	PermDelete:           RoleOwner,
}

// Can reports whether r holds permission p.
func (r Role) Can(p Permission) bool {
	minRole, ok := permissionMinRole[p]
	if !ok {
		return false
	}
	return r.AtLeast(minRole)
}

// AccessLevel is the visibility scope of a sheet or checklist.
type AccessLevel string

// Access level constants.
const (
	AccessRestricted     AccessLevel = "restricted"
	AccessAnyoneWithLink AccessLevel = "anyoneWithLink"
	AccessPublic         AccessLevel = "public"
)

// NewAccessLevel creates a new AccessLevel with validation.
func NewAccessLevel(s string) (AccessLevel, error) {
	level := AccessLevel(s)
	if !level.IsValid() {
		return "", fmt.Errorf("invalid access level: %q", s)
	}
	return level, nil
}

// IsValid checks if the access level is known.
func (a AccessLevel) IsValid() bool {
	return a == AccessRestricted || a == AccessAnyoneWithLink || a == AccessPublic
}

// Scan implements sql.Scanner interface.
func (a *AccessLevel) Scan(value any) error {
	str, err := scanString(value, "AccessLevel")
	if err != nil {
		return err
	}
	level, err := NewAccessLevel(str)
	if err != nil {
		return err
	}
	*a = level
	return nil
}

// Value implements driver.Valuer interface.
func (a AccessLevel) Value() (driver.Value, error) {
	if !a.IsValid() {
		return nil, fmt.Errorf("invalid AccessLevel value: %s", a)
	}
	return string(a), nil
}

// ResourceType names the kind of resource a membership or access request points to.
type ResourceType string

// Resource types.
const (
	ResourceSheet     ResourceType = "sheet"
	ResourceChecklist ResourceType = "checklist"
)

// NewResourceType creates a new ResourceType with validation.
func NewResourceType(s string) (ResourceType, error) {
	rt := ResourceType(s)
	if !rt.IsValid() {
		return "", fmt.Errorf("invalid resource type: %q", s)
	}
	return rt, nil
}

// IsValid checks if the resource type is known.
func (t ResourceType) IsValid() bool {
	return t == ResourceSheet || t == ResourceChecklist
}

// Scan implements sql.Scanner interface.
func (t *ResourceType) Scan(value any) error {
	str, err := scanString(value, "ResourceType")
	if err != nil {
		return err
	}
	rt, err := NewResourceType(str)
	if err != nil {
		return err
	}
	*t = rt
	return nil
}

// Value implements driver.Valuer interface.
func (t ResourceType) Value() (driver.Value, error) {
	if !t.IsValid() {
		return nil, fmt.Errorf("invalid ResourceType value: %s", t)
	}
	return string(t), nil
}

// ResolveRole computes the effective role of a user on a resource.
// membership is nil when the user has no membership row.
func ResolveRole(membership *Role, level AccessLevel) (Role, error) {
	if membership != nil {
		return *membership, nil
	}
	if level == AccessPublic || level == AccessAnyoneWithLink {
		return RoleGuest, nil
	}
	return "", ErrNoAccess
}
