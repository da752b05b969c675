package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/staymate-io/staymate-backend/pkg/enums"
)

// RoomBooking represents a student's request for a bed in a room.
// Rows are never deleted; cancellation flips the status and, when the booking
// was confirmed, returns the bed to the room.
type RoomBooking struct {
	ID          uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StudentID   uuid.UUID           `gorm:"column:student_id;type:uuid;not null;index"`
	RoomID      uuid.UUID           `gorm:"column:room_id;type:uuid;not null;index"`
	StartDate   time.Time           `gorm:"column:start_date;type:date;not null"`
	Status      enums.BookingStatus `gorm:"column:status;type:booking_status;not null;default:'pending'"`
	ConfirmedAt *time.Time          `gorm:"column:confirmed_at"`
	CancelledAt *time.Time          `gorm:"column:cancelled_at"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
