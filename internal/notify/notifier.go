// Package notify delivers workflow and sharing events to chat channels.
package notify

import (
	"context"

	"github.com/mishasvintus/bugcake/internal/domain"
)

// EventKind identifies what happened.
type EventKind string

// Event kinds.
const (
	EventSubmittedForApproval EventKind = "submitted_for_approval"
	EventReviewed             EventKind = "reviewed"
	EventAccessRequested      EventKind = "access_requested"
	EventAccessApproved       EventKind = "access_approved"
	EventAccessDeclined       EventKind = "access_declined"
	EventChecklistAssigned    EventKind = "checklist_assigned"
)

// Event is a single notification.
type Event struct {
	Kind     EventKind
	Resource domain.ResourceRef
	ActorID  string
	Text     string
}

// Notifier defines the interface for sending notifications.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// Nop discards every event.
type Nop struct{}

// Notify implements Notifier.
func (Nop) Notify(context.Context, Event) error { return nil }
