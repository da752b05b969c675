package bookings

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/staymate-io/staymate-backend/pkg/db/models"
	"github.com/staymate-io/staymate-backend/pkg/enums"
)

// BookingDTO exposes booking state in API responses.
type BookingDTO struct {
	ID          uuid.UUID           `json:"id"`
	StudentID   uuid.UUID           `json:"student_id"`
	RoomID      uuid.UUID           `json:"room_id"`
	StartDate   time.Time           `json:"start_date"`
	Status      enums.BookingStatus `json:"status"`
	ConfirmedAt *time.Time          `json:"confirmed_at,omitempty"`
	CancelledAt *time.Time          `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
}

// ToDTO maps the persistence model onto the public shape.
func ToDTO(b *models.RoomBooking) *BookingDTO {
	if b == nil {
		return nil
	}
	return &BookingDTO{
		ID:          b.ID,
		StudentID:   b.StudentID,
		RoomID:      b.RoomID,
		StartDate:   b.StartDate,
		Status:      b.Status,
		ConfirmedAt: b.ConfirmedAt,
		CancelledAt: b.CancelledAt,
		CreatedAt:   b.CreatedAt,
	}
}

// StudentBookingSummary is the student-facing list row joined with room and hostel data.
type StudentBookingSummary struct {
	ID            uuid.UUID           `json:"id"`
	Status        enums.BookingStatus `json:"status"`
	StartDate     time.Time           `json:"start_date"`
	CreatedAt     time.Time           `json:"created_at"`
	RoomType      enums.RoomType      `json:"room_type"`
	PricePerMonth decimal.Decimal     `json:"price_per_month"`
	HostelName    string              `json:"hostel_name"`
	City          string              `json:"city"`
}

// StudentBookingList wraps the paginated bookings plus the next page cursor.
type StudentBookingList struct {
	Bookings   []StudentBookingSummary `json:"bookings"`
	NextCursor string                  `json:"next_cursor,omitempty"`
}

// OwnerBookingSummary is the owner-facing list row joined with student data.
type OwnerBookingSummary struct {
	ID           uuid.UUID           `json:"id"`
	Status       enums.BookingStatus `json:"status"`
	StartDate    time.Time           `json:"start_date"`
	CreatedAt    time.Time           `json:"created_at"`
	RoomType     enums.RoomType      `json:"room_type"`
	HostelName   string              `json:"hostel_name"`
	StudentName  string              `json:"student_name"`
	StudentEmail string              `json:"student_email"`
}

// OwnerBookingList wraps paginated owner bookings plus the next cursor.
type OwnerBookingList struct {
	Bookings   []OwnerBookingSummary `json:"bookings"`
	NextCursor string                `json:"next_cursor,omitempty"`
}
