package domain

import "time"

// Member is a user's role on a sheet or checklist.
type Member struct {
	ResourceType ResourceType `json:"resource_type"`
	ResourceID   string       `json:"resource_id"`
	UserID       string       `json:"user_id"`
	Email        string       `json:"email"`
	Name         string       `json:"name"`
	Role         Role         `json:"role"`
	AddedAt      time.Time    `json:"added_at"`
}

// ResourceRef identifies a sheet or checklist.
type ResourceRef struct {
	Type ResourceType
	ID   string
}

// String renders the reference as type/id.
func (r ResourceRef) String() string {
	return string(r.Type) + "/" + r.ID
}
