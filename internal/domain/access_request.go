package domain

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// RequestStatus is the lifecycle state of an access request.
type RequestStatus string

// Request status constants. Approved and declined are terminal.
const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestDeclined RequestStatus = "declined"
)

// NewRequestStatus creates a new RequestStatus with validation.
func NewRequestStatus(s string) (RequestStatus, error) {
	status := RequestStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid request status: %q", s)
	}
	return status, nil
}

// IsValid checks if the status is known.
func (s RequestStatus) IsValid() bool {
	return s == RequestPending || s == RequestApproved || s == RequestDeclined
}

// Scan implements sql.Scanner interface.
func (s *RequestStatus) Scan(value any) error {
	str, err := scanString(value, "RequestStatus")
	if err != nil {
		return err
	}
	status, err := NewRequestStatus(str)
	if err != nil {
		return err
	}
	*s = status
	return nil
}

// Value implements driver.Valuer interface.
func (s RequestStatus) Value() (driver.Value, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("invalid RequestStatus value: %s", s)
	}
	return string(s), nil
}

// AccessRequest asks for a role on a sheet or checklist.
type AccessRequest struct {
	RequestID      string        `json:"request_id"`
	ResourceType   ResourceType  `json:"resource_type"`
	ResourceID     string        `json:"resource_id"`
	RequesterID    string        `json:"requester_id"`
	RequesterEmail string        `json:"requester_email,omitempty"`
	RequesterName  string        `json:"requester_name,omitempty"`
	RequestedRole  Role          `json:"requested_role"`
	Message        *string       `json:"message,omitempty"`
	Status         RequestStatus `json:"status"`
	GrantedRole    *Role         `json:"granted_role,omitempty"`
	ResolvedBy     *string       `json:"resolved_by,omitempty"`
	ResolvedAt     *time.Time    `json:"resolved_at,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
}

// Resource returns the reference to the requested resource.
func (r *AccessRequest) Resource() ResourceRef {
	return ResourceRef{Type: r.ResourceType, ID: r.ResourceID}
}
