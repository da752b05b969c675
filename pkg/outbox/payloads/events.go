package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/staymate-io/staymate-backend/pkg/enums"
)

// BookingRequestedEvent signals a student asked for a bed in a room.
type BookingRequestedEvent struct {
	BookingID uuid.UUID `json:"booking_id"`
	StudentID uuid.UUID `json:"student_id"`
	RoomID    uuid.UUID `json:"room_id"`
	HostelID  uuid.UUID `json:"hostel_id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	StartDate time.Time `json:"start_date"`
}

// BookingDecisionEvent is emitted when an owner confirms or rejects a booking.
type BookingDecisionEvent struct {
	BookingID uuid.UUID           `json:"booking_id"`
	StudentID uuid.UUID           `json:"student_id"`
	RoomID    uuid.UUID           `json:"room_id"`
	HostelID  uuid.UUID           `json:"hostel_id"`
	Status    enums.BookingStatus `json:"status"`
}

// BookingCancelledEvent is emitted whenever a booking leaves the active flow.
type BookingCancelledEvent struct {
	BookingID   uuid.UUID `json:"booking_id"`
	StudentID   uuid.UUID `json:"student_id"`
	RoomID      uuid.UUID `json:"room_id"`
	CancelledAt time.Time `json:"cancelled_at"`
	Reason      string    `json:"reason,omitempty"`
	BedRestored bool      `json:"bed_restored"`
}

// BookingExpiredEvent describes the payload when stale pending bookings expire.
type BookingExpiredEvent struct {
	BookingID uuid.UUID `json:"bookingId"`
	StudentID uuid.UUID `json:"studentId"`
	RoomID    uuid.UUID `json:"roomId"`
	ExpiredAt time.Time `json:"expiredAt"`
	TTLHours  *int      `json:"ttl_hours,omitempty"`
}

// SubscriptionStartedEvent signals a new active mess subscription.
type SubscriptionStartedEvent struct {
	SubscriptionID uuid.UUID `json:"subscription_id"`
	StudentID      uuid.UUID `json:"student_id"`
	MessID         uuid.UUID `json:"mess_id"`
	OwnerID        uuid.UUID `json:"owner_id"`
}

// SubscriptionCancelledEvent signals a subscription was deactivated.
type SubscriptionCancelledEvent struct {
	SubscriptionID uuid.UUID `json:"subscription_id"`
	StudentID      uuid.UUID `json:"student_id"`
	MessID         uuid.UUID `json:"mess_id"`
	CancelledAt    time.Time `json:"cancelled_at"`
}

// NotificationRequestedEvent tells downstream systems to alert a user.
type NotificationRequestedEvent struct {
	UserID  uuid.UUID `json:"user_id"`
	Type    string    `json:"type"`
	Title   string    `json:"title"`
	Message string    `json:"message"`
	Link    string    `json:"link,omitempty"`
}
