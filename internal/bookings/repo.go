package bookings

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/staymate-io/staymate-backend/pkg/db/models"
	"github.com/staymate-io/staymate-backend/pkg/enums"
	"github.com/staymate-io/staymate-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a bookings repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateBooking(ctx context.Context, booking *models.RoomBooking) (*models.RoomBooking, error) {
	if err := r.db.WithContext(ctx).Create(booking).Error; err != nil {
		return nil, err
	}
	return booking, nil
}

func (r *repository) FindBooking(ctx context.Context, id uuid.UUID) (*models.RoomBooking, error) {
	var booking models.RoomBooking
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// FindAvailableRoom returns the cheapest room of the requested type that still
// has a free bed. Availability is re-checked at confirmation time, so a stale
// read here only costs the student a rejected booking later.
func (r *repository) FindAvailableRoom(ctx context.Context, hostelID uuid.UUID, roomType enums.RoomType) (*models.Room, error) {
	var room models.Room
	err := r.db.WithContext(ctx).
		Where("hostel_id = ? AND room_type = ? AND available_beds > 0", hostelID, roomType).
		Order("price_per_month ASC, created_at ASC").
		First(&room).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *repository) FindRoom(ctx context.Context, id uuid.UUID) (*models.Room, error) {
	var room models.Room
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&room).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *repository) FindHostel(ctx context.Context, id uuid.UUID) (*models.Hostel, error) {
	var hostel models.Hostel
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&hostel).Error
	if err != nil {
		return nil, err
	}
	return &hostel, nil
}

func (r *repository) UpdateBooking(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.RoomBooking{}).
		Where("id = ?", id).
		Updates(updates).Error
}

type studentBookingRow struct {
	ID            uuid.UUID
	Status        enums.BookingStatus
	StartDate     time.Time
	CreatedAt     time.Time
	RoomType      enums.RoomType
	PricePerMonth decimal.Decimal
	HostelName    string
	City          string
}

func (r *repository) ListStudentBookings(ctx context.Context, studentID uuid.UUID, limit int, cursor *pagination.Cursor) ([]StudentBookingSummary, *pagination.Cursor, error) {
	buffered := pagination.LimitWithBuffer(limit)
	normalized := pagination.NormalizeLimit(limit)

	query := r.db.WithContext(ctx).
		Model(&models.RoomBooking{}).
		Select(`room_bookings.id, room_bookings.status, room_bookings.start_date, room_bookings.created_at,
			rooms.room_type, rooms.price_per_month, hostels.name AS hostel_name, hostels.city`).
		Joins("JOIN rooms ON rooms.id = room_bookings.room_id").
		Joins("JOIN hostels ON hostels.id = rooms.hostel_id").
		Where("room_bookings.student_id = ?", studentID)
	if cursor != nil {
		query = query.Where("(room_bookings.created_at, room_bookings.id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []studentBookingRow
	if err := query.Order("room_bookings.created_at DESC, room_bookings.id DESC").Limit(buffered).Scan(&rows).Error; err != nil {
		return nil, nil, err
	}

	var next *pagination.Cursor
	if len(rows) > normalized {
		overflow := rows[normalized]
		rows = rows[:normalized]
		next = &pagination.Cursor{CreatedAt: overflow.CreatedAt, ID: overflow.ID}
	}

	summaries := make([]StudentBookingSummary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, StudentBookingSummary{
			ID:            row.ID,
			Status:        row.Status,
			StartDate:     row.StartDate,
			CreatedAt:     row.CreatedAt,
			RoomType:      row.RoomType,
			PricePerMonth: row.PricePerMonth,
			HostelName:    row.HostelName,
			City:          row.City,
		})
	}
	return summaries, next, nil
}

type ownerBookingRow struct {
	ID           uuid.UUID
	Status       enums.BookingStatus
	StartDate    time.Time
	CreatedAt    time.Time
	RoomType     enums.RoomType
	HostelName   string
	StudentName  string
	StudentEmail string
}

func (r *repository) ListOwnerBookings(ctx context.Context, ownerID uuid.UUID, limit int, cursor *pagination.Cursor) ([]OwnerBookingSummary, *pagination.Cursor, error) {
	buffered := pagination.LimitWithBuffer(limit)
	normalized := pagination.NormalizeLimit(limit)

	query := r.db.WithContext(ctx).
		Model(&models.RoomBooking{}).
		Select(`room_bookings.id, room_bookings.status, room_bookings.start_date, room_bookings.created_at,
			rooms.room_type, hostels.name AS hostel_name, users.full_name AS student_name, users.email AS student_email`).
		Joins("JOIN rooms ON rooms.id = room_bookings.room_id").
		Joins("JOIN hostels ON hostels.id = rooms.hostel_id").
		Joins("JOIN users ON users.id = room_bookings.student_id").
		Where("hostels.owner_id = ?", ownerID)
	if cursor != nil {
		query = query.Where("(room_bookings.created_at, room_bookings.id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []ownerBookingRow
	if err := query.Order("room_bookings.created_at DESC, room_bookings.id DESC").Limit(buffered).Scan(&rows).Error; err != nil {
		return nil, nil, err
	}

	var next *pagination.Cursor
	if len(rows) > normalized {
		overflow := rows[normalized]
		rows = rows[:normalized]
		next = &pagination.Cursor{CreatedAt: overflow.CreatedAt, ID: overflow.ID}
	}

	summaries := make([]OwnerBookingSummary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, OwnerBookingSummary{
			ID:           row.ID,
			Status:       row.Status,
			StartDate:    row.StartDate,
			CreatedAt:    row.CreatedAt,
			RoomType:     row.RoomType,
			HostelName:   row.HostelName,
			StudentName:  row.StudentName,
			StudentEmail: row.StudentEmail,
		})
	}
	return summaries, next, nil
}

func (r *repository) FindPendingBookingsBefore(ctx context.Context, cutoff time.Time) ([]models.RoomBooking, error) {
	var bookings []models.RoomBooking
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", enums.BookingStatusPending, cutoff).
		Order("created_at ASC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}
