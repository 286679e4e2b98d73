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
	"github.com/mishasvintus/bugcake/internal/repository/accessrequest"
	"github.com/mishasvintus/bugcake/internal/repository/member"
)

// AccessRequestService handles requests for access to sheets and checklists.
type AccessRequestService struct {
	db       *sql.DB
	notifier notify.Notifier
	metrics  *metrics.Metrics
	log      *zap.Logger
}

// NewAccessRequestService creates a new access request service.
func NewAccessRequestService(db *sql.DB, notifier notify.Notifier, m *metrics.Metrics, log *zap.Logger) *AccessRequestService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AccessRequestService{
		db:       db,
		notifier: notifier,
		metrics:  m,
		log:      log,
	}
}

// Request files a pending access request. Members cannot request access and
// only one pending request per requester and resource may exist.
func (s *AccessRequestService) Request(ctx context.Context, actorID string, ref domain.ResourceRef, role domain.Role, message string) (*domain.AccessRequest, error) {
	if !role.IsGrantable() {
		return nil, fmt.Errorf("%w: role %q cannot be requested", ErrValidation, role)
	}
	if _, err := loadAccessLevel(ctx, s.db, ref); err != nil {
		return nil, err
	}

	isMember, err := member.IsMember(ctx, s.db, ref, actorID)
	if err != nil {
		return nil, err
	}
	if isMember {
		return nil, ErrMemberExists
	}

	r := &domain.AccessRequest{
		RequestID:     uuid.NewString(),
		ResourceType:  ref.Type,
		ResourceID:    ref.ID,
		RequesterID:   actorID,
		RequestedRole: role,
	}
	if msg := strings.TrimSpace(message); msg != "" {
		r.Message = &msg
	}

	if err := accessrequest.Create(ctx, s.db, r); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrRequestPending
		}
		if repository.IsForeignKeyViolation(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	s.metrics.AccessRequestCreated()
	publish(ctx, s.notifier, s.log, notify.Event{
		Kind:     notify.EventAccessRequested,
		Resource: ref,
		ActorID:  actorID,
		Text:     fmt.Sprintf("access requested as %s", role),
	})

	return s.get(ctx, r.RequestID)
}

// ListPending returns pending requests for a resource. Requires qa_lead.
func (s *AccessRequestService) ListPending(ctx context.Context, actorID string, ref domain.ResourceRef) ([]domain.AccessRequest, error) {
	if _, err := authorize(ctx, s.db, ref, actorID, domain.PermManageMembers); err != nil {
		return nil, err
	}
	return accessrequest.ListPending(ctx, s.db, ref)
}

// Approve grants role (the requested role when nil) and resolves the request in one
// transaction. If the requester is already a member the request stays pending.
func (s *AccessRequestService) Approve(ctx context.Context, actorID, requestID string, role *domain.Role) (*domain.AccessRequest, error) {
	r, err := s.get(ctx, requestID)
	if err != nil {
		return nil, err
	}

	ref := r.Resource()
	if _, err := authorize(ctx, s.db, ref, actorID, domain.PermManageMembers); err != nil {
		return nil, err
	}

	granted := r.RequestedRole
	if role != nil {
		granted = *role
	}
	if !granted.IsGrantable() {
		return nil, fmt.Errorf("%w: role %q cannot be granted", ErrValidation, granted)
	}

	err = repository.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := accessrequest.Resolve(ctx, tx, requestID, domain.RequestApproved, &granted, actorID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrRequestResolved
			}
			return err
		}
		if err := member.Add(ctx, tx, ref, r.RequesterID, granted); err != nil {
			if repository.IsUniqueViolation(err) {
				return ErrMemberExists
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.resolved(ctx, r, domain.RequestApproved, actorID)
	return s.get(ctx, requestID)
}

// Decline resolves a pending request without granting access.
func (s *AccessRequestService) Decline(ctx context.Context, actorID, requestID string) (*domain.AccessRequest, error) {
	r, err := s.get(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if _, err := authorize(ctx, s.db, r.Resource(), actorID, domain.PermManageMembers); err != nil {
		return nil, err
	}

	if err := accessrequest.Resolve(ctx, s.db, requestID, domain.RequestDeclined, nil, actorID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRequestResolved
		}
		return nil, err
	}

	s.resolved(ctx, r, domain.RequestDeclined, actorID)
	return s.get(ctx, requestID)
}

func (s *AccessRequestService) get(ctx context.Context, requestID string) (*domain.AccessRequest, error) {
	r, err := accessrequest.Get(ctx, s.db, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	return r, nil
}

func (s *AccessRequestService) resolved(ctx context.Context, r *domain.AccessRequest, status domain.RequestStatus, actorID string) {
	s.metrics.AccessRequestResolved(string(status), string(r.ResourceType))

	kind := notify.EventAccessApproved
	if status == domain.RequestDeclined {
		kind = notify.EventAccessDeclined
	}
	publish(ctx, s.notifier, s.log, notify.Event{
		Kind:     kind,
		Resource: r.Resource(),
		ActorID:  actorID,
		Text:     fmt.Sprintf("access request from %s was %s", r.RequesterEmail, status),
	})
}
