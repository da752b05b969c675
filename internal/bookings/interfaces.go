package bookings

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/staymate-io/staymate-backend/pkg/db/models"
	"github.com/staymate-io/staymate-backend/pkg/enums"
	"github.com/staymate-io/staymate-backend/pkg/pagination"
)

// Repository defines persistence operations for bookings and bed inventory.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateBooking(ctx context.Context, booking *models.RoomBooking) (*models.RoomBooking, error)
	FindBooking(ctx context.Context, id uuid.UUID) (*models.RoomBooking, error)
	FindAvailableRoom(ctx context.Context, hostelID uuid.UUID, roomType enums.RoomType) (*models.Room, error)
	FindRoom(ctx context.Context, id uuid.UUID) (*models.Room, error)
	FindHostel(ctx context.Context, id uuid.UUID) (*models.Hostel, error)
	UpdateBooking(ctx context.Context, id uuid.UUID, updates map[string]any) error
	ListStudentBookings(ctx context.Context, studentID uuid.UUID, limit int, cursor *pagination.Cursor) ([]StudentBookingSummary, *pagination.Cursor, error)
	ListOwnerBookings(ctx context.Context, ownerID uuid.UUID, limit int, cursor *pagination.Cursor) ([]OwnerBookingSummary, *pagination.Cursor, error)
	FindPendingBookingsBefore(ctx context.Context, cutoff time.Time) ([]models.RoomBooking, error)
}
