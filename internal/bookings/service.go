package bookings

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/staymate-io/staymate-backend/pkg/db/models"
	"github.com/staymate-io/staymate-backend/pkg/enums"
	pkgerrors "github.com/staymate-io/staymate-backend/pkg/errors"
	"github.com/staymate-io/staymate-backend/pkg/outbox"
	"github.com/staymate-io/staymate-backend/pkg/outbox/payloads"
	"github.com/staymate-io/staymate-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service defines booking-level operations beyond repository reads.
type Service interface {
	RequestBooking(ctx context.Context, input RequestBookingInput) (*BookingDTO, error)
	OwnerDecision(ctx context.Context, input OwnerDecisionInput) (*BookingDTO, error)
	CancelByStudent(ctx context.Context, input StudentCancelInput) error
	ListStudentBookings(ctx context.Context, studentID uuid.UUID, params pagination.Params) (*StudentBookingList, error)
	ListOwnerBookings(ctx context.Context, ownerID uuid.UUID, params pagination.Params) (*OwnerBookingList, error)
	ExpireStale(ctx context.Context, now time.Time) (int, error)
}

type service struct {
	repo       Repository
	tx         txRunner
	outbox     outboxPublisher
	beds       BedAllocator
	pendingTTL time.Duration
}

// BookingDecision represents the action an owner can take on a pending booking.
type BookingDecision string

const (
	BookingDecisionConfirm BookingDecision = "confirm"
	BookingDecisionCancel  BookingDecision = "cancel"
)

// ParseDecision accepts both the decision verbs and the resulting status names.
func ParseDecision(value string) (BookingDecision, error) {
	switch value {
	case string(BookingDecisionConfirm), string(enums.BookingStatusConfirmed):
		return BookingDecisionConfirm, nil
	case string(BookingDecisionCancel), string(enums.BookingStatusCancelled):
		return BookingDecisionCancel, nil
	default:
		return "", pkgerrors.New(pkgerrors.CodeValidation, "status must be confirmed or cancelled")
	}
}

// RequestBookingInput captures a student's booking request.
type RequestBookingInput struct {
	StudentID uuid.UUID
	HostelID  uuid.UUID
	RoomType  enums.RoomType
	StartDate time.Time
}

// OwnerDecisionInput carries the metadata required to confirm or reject a booking.
type OwnerDecisionInput struct {
	BookingID   uuid.UUID
	Decision    BookingDecision
	ActorUserID uuid.UUID
	ActorRole   enums.UserRole
}

// StudentCancelInput identifies the booking a student wants to withdraw.
type StudentCancelInput struct {
	BookingID   uuid.UUID
	ActorUserID uuid.UUID
}

// NewService builds a bookings service with the required dependencies.
func NewService(repo Repository, tx txRunner, ob outboxPublisher, beds BedAllocator, pendingTTL time.Duration) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("bookings repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if ob == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if beds == nil {
		return nil, fmt.Errorf("bed allocator required")
	}
	if pendingTTL <= 0 {
		return nil, fmt.Errorf("pending ttl must be positive")
	}
	return &service{
		repo:       repo,
		tx:         tx,
		outbox:     ob,
		beds:       beds,
		pendingTTL: pendingTTL,
	}, nil
}

// RequestBooking creates a pending booking against the cheapest matching room.
// No bed is taken here; inventory only moves when the owner confirms.
func (s *service) RequestBooking(ctx context.Context, input RequestBookingInput) (*BookingDTO, error) {
	if input.StudentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.HostelID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "hostel id required")
	}
	if !input.RoomType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid room type")
	}
	if input.StartDate.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "start date required")
	}

	var dto *BookingDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		hostel, err := repo.FindHostel(ctx, input.HostelID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "hostel not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load hostel")
		}

		room, err := repo.FindAvailableRoom(ctx, input.HostelID, input.RoomType)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNoAvailability, "room is fully booked")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find available room")
		}

		booking, err := repo.CreateBooking(ctx, &models.RoomBooking{
			StudentID: input.StudentID,
			RoomID:    room.ID,
			StartDate: input.StartDate,
			Status:    enums.BookingStatusPending,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create booking")
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventBookingRequested,
			AggregateType: enums.AggregateRoomBooking,
			AggregateID:   booking.ID,
			Version:       1,
			Actor:         buildActor(input.StudentID, enums.UserRoleStudent),
			Data: payloads.BookingRequestedEvent{
				BookingID: booking.ID,
				StudentID: booking.StudentID,
				RoomID:    room.ID,
				HostelID:  hostel.ID,
				OwnerID:   hostel.OwnerID,
				StartDate: booking.StartDate,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return err
		}

		dto = ToDTO(booking)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// OwnerDecision confirms or rejects a pending booking. Confirmation claims a
// bed inside the same transaction as the status flip, so a full room rolls the
// whole decision back and leaves the booking pending.
func (s *service) OwnerDecision(ctx context.Context, input OwnerDecisionInput) (*BookingDTO, error) {
	if input.BookingID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "booking id required")
	}
	if input.ActorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	targetStatus, err := mapDecisionToStatus(input.Decision)
	if err != nil {
		return nil, err
	}

	var dto *BookingDTO
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		booking, err := repo.FindBooking(ctx, input.BookingID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load booking")
		}

		room, err := repo.FindRoom(ctx, booking.RoomID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load room")
		}
		hostel, err := repo.FindHostel(ctx, room.HostelID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load hostel")
		}
		if hostel.OwnerID != input.ActorUserID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "booking does not belong to owner")
		}

		now := time.Now().UTC()
		switch targetStatus {
		case enums.BookingStatusConfirmed:
			if booking.Status != enums.BookingStatusPending {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "booking cannot be confirmed in current state")
			}
			if err := s.beds.Claim(ctx, tx, room.ID); err != nil {
				return err
			}
			if err := repo.UpdateBooking(ctx, booking.ID, map[string]any{
				"status":       enums.BookingStatusConfirmed,
				"confirmed_at": now,
			}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update booking status")
			}
			booking.Status = enums.BookingStatusConfirmed
			booking.ConfirmedAt = &now

			event := outbox.DomainEvent{
				EventType:     enums.EventBookingConfirmed,
				AggregateType: enums.AggregateRoomBooking,
				AggregateID:   booking.ID,
				Version:       1,
				Actor:         buildActor(input.ActorUserID, input.ActorRole),
				Data: payloads.BookingDecisionEvent{
					BookingID: booking.ID,
					StudentID: booking.StudentID,
					RoomID:    room.ID,
					HostelID:  hostel.ID,
					Status:    booking.Status,
				},
			}
			if err := s.outbox.Emit(ctx, tx, event); err != nil {
				return err
			}

		case enums.BookingStatusCancelled:
			if _, err := s.cancelBooking(ctx, tx, repo, booking, now, "owner_cancelled", buildActor(input.ActorUserID, input.ActorRole)); err != nil {
				return err
			}

		default:
			return pkgerrors.New(pkgerrors.CodeStateConflict, "unsupported booking transition")
		}

		dto = ToDTO(booking)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// CancelByStudent withdraws the student's own booking. Only pending and
// confirmed bookings may be cancelled.
func (s *service) CancelByStudent(ctx context.Context, input StudentCancelInput) error {
	if input.BookingID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "booking id required")
	}
	if input.ActorUserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		booking, err := repo.FindBooking(ctx, input.BookingID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load booking")
		}
		if booking.StudentID != input.ActorUserID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "booking does not belong to student")
		}

		_, err = s.cancelBooking(ctx, tx, repo, booking, time.Now().UTC(), "student_cancelled", buildActor(input.ActorUserID, enums.UserRoleStudent))
		return err
	})
}

// cancelBooking flips the booking to cancelled and, when it held a confirmed
// bed, returns that bed to the room. Callers decide which statuses may cancel.
func (s *service) cancelBooking(ctx context.Context, tx *gorm.DB, repo Repository, booking *models.RoomBooking, now time.Time, reason string, actor *outbox.ActorRef) (bool, error) {
	if booking.Status != enums.BookingStatusPending && booking.Status != enums.BookingStatusConfirmed {
		return false, pkgerrors.New(pkgerrors.CodeStateConflict, "booking cannot be cancelled in current state")
	}

	restored := false
	if booking.Status == enums.BookingStatusConfirmed {
		if err := s.beds.Release(ctx, tx, booking.RoomID); err != nil {
			return false, err
		}
		restored = true
	}

	if err := repo.UpdateBooking(ctx, booking.ID, map[string]any{
		"status":       enums.BookingStatusCancelled,
		"cancelled_at": now,
	}); err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update booking status")
	}
	booking.Status = enums.BookingStatusCancelled
	booking.CancelledAt = &now

	event := outbox.DomainEvent{
		EventType:     enums.EventBookingCancelled,
		AggregateType: enums.AggregateRoomBooking,
		AggregateID:   booking.ID,
		Version:       1,
		Actor:         actor,
		Data: payloads.BookingCancelledEvent{
			BookingID:   booking.ID,
			StudentID:   booking.StudentID,
			RoomID:      booking.RoomID,
			CancelledAt: now,
			Reason:      reason,
			BedRestored: restored,
		},
	}
	if err := s.outbox.Emit(ctx, tx, event); err != nil {
		return false, err
	}
	return restored, nil
}

func (s *service) ListStudentBookings(ctx context.Context, studentID uuid.UUID, params pagination.Params) (*StudentBookingList, error) {
	if studentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "student id required")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	rows, next, err := s.repo.ListStudentBookings(ctx, studentID, params.Limit, cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list student bookings")
	}

	list := &StudentBookingList{Bookings: rows}
	if next != nil {
		list.NextCursor = pagination.EncodeCursor(*next)
	}
	return list, nil
}

func (s *service) ListOwnerBookings(ctx context.Context, ownerID uuid.UUID, params pagination.Params) (*OwnerBookingList, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner id required")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	rows, next, err := s.repo.ListOwnerBookings(ctx, ownerID, params.Limit, cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list owner bookings")
	}

	list := &OwnerBookingList{Bookings: rows}
	if next != nil {
		list.NextCursor = pagination.EncodeCursor(*next)
	}
	return list, nil
}

// ExpireStale cancels pending bookings older than the configured TTL. Each
// booking expires in its own transaction so one failure never blocks the rest.
func (s *service) ExpireStale(ctx context.Context, now time.Time) (int, error) {
	cutoff := now.Add(-s.pendingTTL)
	stale, err := s.repo.FindPendingBookingsBefore(ctx, cutoff)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find stale bookings")
	}

	ttlHours := int(s.pendingTTL.Hours())
	expired := 0
	var errs []error
	for i := range stale {
		booking := stale[i]
		err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)

			current, err := repo.FindBooking(ctx, booking.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload booking")
			}
			if current.Status != enums.BookingStatusPending {
				return nil
			}

			if err := repo.UpdateBooking(ctx, current.ID, map[string]any{
				"status":       enums.BookingStatusCancelled,
				"cancelled_at": now,
			}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "expire booking")
			}

			event := outbox.DomainEvent{
				EventType:     enums.EventBookingExpired,
				AggregateType: enums.AggregateRoomBooking,
				AggregateID:   current.ID,
				Version:       1,
				Data: payloads.BookingExpiredEvent{
					BookingID: current.ID,
					StudentID: current.StudentID,
					RoomID:    current.RoomID,
					ExpiredAt: now,
					TTLHours:  &ttlHours,
				},
			}
			return s.outbox.Emit(ctx, tx, event)
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("expire booking %s: %w", booking.ID, err))
			continue
		}
		expired++
	}
	return expired, multierr.Combine(errs...)
}

func mapDecisionToStatus(decision BookingDecision) (enums.BookingStatus, error) {
	switch decision {
	case BookingDecisionConfirm:
		return enums.BookingStatusConfirmed, nil
	case BookingDecisionCancel:
		return enums.BookingStatusCancelled, nil
	default:
		return "", pkgerrors.New(pkgerrors.CodeValidation, "invalid booking decision")
	}
}

func buildActor(userID uuid.UUID, role enums.UserRole) *outbox.ActorRef {
	if userID == uuid.Nil {
		return nil
	}
	return &outbox.ActorRef{
		UserID: userID,
		Role:   string(role),
	}
}
