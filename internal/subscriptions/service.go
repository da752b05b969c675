package subscriptions

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/staymate-io/staymate-backend/pkg/db"
	"github.com/staymate-io/staymate-backend/pkg/db/models"
	"github.com/staymate-io/staymate-backend/pkg/enums"
	pkgerrors "github.com/staymate-io/staymate-backend/pkg/errors"
	"github.com/staymate-io/staymate-backend/pkg/outbox"
	"github.com/staymate-io/staymate-backend/pkg/outbox/payloads"
	"github.com/staymate-io/staymate-backend/pkg/pagination"
)

// uxActiveSubscription is the partial unique index guarding one active
// subscription per (student, mess) pair.
const uxActiveSubscription = "ux_mess_subscriptions_student_mess_active"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service defines mess subscription operations.
type Service interface {
	Subscribe(ctx context.Context, input SubscribeInput) (*SubscriptionDTO, error)
	Cancel(ctx context.Context, input CancelInput) error
	ListStudentSubscriptions(ctx context.Context, studentID uuid.UUID, params pagination.Params) (*SubscriptionList, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
}

// SubscribeInput captures a student's request to join a mess.
type SubscribeInput struct {
	StudentID uuid.UUID
	MessID    uuid.UUID
}

// CancelInput identifies the subscription to end and who is ending it. The
// actor is either the subscribing student or the mess owner.
type CancelInput struct {
	SubscriptionID uuid.UUID
	ActorUserID    uuid.UUID
	ActorRole      enums.UserRole
}

// NewService builds a subscriptions service with the required dependencies.
func NewService(repo Repository, tx txRunner, ob outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("subscriptions repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if ob == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		repo:   repo,
		tx:     tx,
		outbox: ob,
	}, nil
}

// Subscribe activates a mess subscription immediately. There is no approval
// step; the partial unique index backs up the duplicate check under races.
func (s *service) Subscribe(ctx context.Context, input SubscribeInput) (*SubscriptionDTO, error) {
	if input.StudentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.MessID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "mess id required")
	}

	var dto *SubscriptionDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		mess, err := repo.FindMess(ctx, input.MessID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "mess service not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load mess service")
		}

		if _, err := repo.FindActiveSubscription(ctx, input.StudentID, input.MessID); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "active subscription already exists")
		} else if err != gorm.ErrRecordNotFound {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check active subscription")
		}

		sub, err := repo.CreateSubscription(ctx, &models.MessSubscription{
			StudentID: input.StudentID,
			MessID:    input.MessID,
			IsActive:  true,
		})
		if err != nil {
			if db.IsUniqueViolation(err, uxActiveSubscription) {
				return pkgerrors.New(pkgerrors.CodeConflict, "active subscription already exists")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create subscription")
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventSubscriptionStarted,
			AggregateType: enums.AggregateMessSubscription,
			AggregateID:   sub.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: input.StudentID, Role: string(enums.UserRoleStudent)},
			Data: payloads.SubscriptionStartedEvent{
				SubscriptionID: sub.ID,
				StudentID:      sub.StudentID,
				MessID:         mess.ID,
				OwnerID:        mess.OwnerID,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return err
		}

		dto = ToDTO(sub)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// Cancel deactivates a subscription on behalf of the subscribing student or
// the mess owner. Cancelling an already inactive subscription is a no-op.
func (s *service) Cancel(ctx context.Context, input CancelInput) error {
	if input.SubscriptionID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "subscription id required")
	}
	if input.ActorUserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		sub, err := repo.FindSubscription(ctx, input.SubscriptionID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "subscription not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load subscription")
		}
		if sub.StudentID != input.ActorUserID {
			mess, err := repo.FindMess(ctx, sub.MessID)
			if err != nil {
				if err == gorm.ErrRecordNotFound {
					return pkgerrors.New(pkgerrors.CodeNotFound, "mess service not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load mess service")
			}
			if mess.OwnerID != input.ActorUserID {
				return pkgerrors.New(pkgerrors.CodeForbidden, "subscription does not belong to actor")
			}
		}
		if !sub.IsActive {
			return nil
		}

		updated, err := repo.DeactivateSubscription(ctx, sub.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate subscription")
		}
		if updated == 0 {
			return nil
		}

		role := input.ActorRole
		if role == "" {
			role = enums.UserRoleStudent
		}

		now := time.Now().UTC()
		event := outbox.DomainEvent{
			EventType:     enums.EventSubscriptionCancelled,
			AggregateType: enums.AggregateMessSubscription,
			AggregateID:   sub.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: input.ActorUserID, Role: string(role)},
			Data: payloads.SubscriptionCancelledEvent{
				SubscriptionID: sub.ID,
				StudentID:      sub.StudentID,
				MessID:         sub.MessID,
				CancelledAt:    now,
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
}

func (s *service) ListStudentSubscriptions(ctx context.Context, studentID uuid.UUID, params pagination.Params) (*SubscriptionList, error) {
	if studentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "student id required")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	rows, next, err := s.repo.ListStudentSubscriptions(ctx, studentID, params.Limit, cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list subscriptions")
	}

	list := &SubscriptionList{Subscriptions: rows}
	if next != nil {
		list.NextCursor = pagination.EncodeCursor(*next)
	}
	return list, nil
}
