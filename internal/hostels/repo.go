package hostels

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/staymate-io/staymate-backend/pkg/db/models"
	"github.com/staymate-io/staymate-backend/pkg/enums"
	"github.com/staymate-io/staymate-backend/pkg/pagination"
)

// Repository exposes persistence helpers for hostels and their rooms.
type Repository interface {
	CreateHostel(ctx context.Context, hostel *models.Hostel) (*models.Hostel, error)
	FindHostel(ctx context.Context, id uuid.UUID) (*models.Hostel, error)
	FindHostelWithRooms(ctx context.Context, id uuid.UUID) (*models.Hostel, error)
	UpdateHostel(ctx context.Context, hostel *models.Hostel) error
	DeleteHostel(ctx context.Context, id uuid.UUID) error
	ListByCity(ctx context.Context, query cityListQuery) ([]models.Hostel, *pagination.Cursor, error)
	ListOwnerHostels(ctx context.Context, ownerID uuid.UUID) ([]models.Hostel, error)
	CreateRoom(ctx context.Context, room *models.Room) (*models.Room, error)
	FindRoom(ctx context.Context, id uuid.UUID) (*models.Room, error)
	UpdateRoom(ctx context.Context, id uuid.UUID, updates map[string]any) error
	DeleteRoom(ctx context.Context, id uuid.UUID) error
	ListRooms(ctx context.Context, hostelID uuid.UUID) ([]models.Room, error)
	AverageRatings(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]float64, error)
}

type cityListQuery struct {
	City       string
	RoomType   *enums.RoomType
	OnlyVacant bool
	Limit      int
	Cursor     *pagination.Cursor
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a hostels repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) CreateHostel(ctx context.Context, hostel *models.Hostel) (*models.Hostel, error) {
	if err := r.db.WithContext(ctx).Create(hostel).Error; err != nil {
		return nil, err
	}
	return hostel, nil
}

func (r *repositoryImpl) FindHostel(ctx context.Context, id uuid.UUID) (*models.Hostel, error) {
	var hostel models.Hostel
	if err := r.db.WithContext(ctx).First(&hostel, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &hostel, nil
}

func (r *repositoryImpl) FindHostelWithRooms(ctx context.Context, id uuid.UUID) (*models.Hostel, error) {
	var hostel models.Hostel
	err := r.db.WithContext(ctx).
		Preload("Rooms", func(db *gorm.DB) *gorm.DB {
			return db.Order("price_per_month ASC")
		}).
		First(&hostel, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &hostel, nil
}

func (r *repositoryImpl) UpdateHostel(ctx context.Context, hostel *models.Hostel) error {
	return r.db.WithContext(ctx).Save(hostel).Error
}

// DeleteHostel removes the hostel row; rooms and their bookings go with it
// through the schema's cascades.
func (r *repositoryImpl) DeleteHostel(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Hostel{}, "id = ?", id).Error
}

func (r *repositoryImpl) ListByCity(ctx context.Context, query cityListQuery) ([]models.Hostel, *pagination.Cursor, error) {
	buffered := pagination.LimitWithBuffer(query.Limit)
	normalized := pagination.NormalizeLimit(query.Limit)

	q := r.db.WithContext(ctx).
		Model(&models.Hostel{}).
		Where("hostels.city = ?", query.City)

	if query.RoomType != nil || query.OnlyVacant {
		sub := r.db.Model(&models.Room{}).
			Select("1").
			Where("rooms.hostel_id = hostels.id")
		if query.RoomType != nil {
			sub = sub.Where("rooms.room_type = ?", *query.RoomType)
		}
		if query.OnlyVacant {
			sub = sub.Where("rooms.available_beds > 0")
		}
		q = q.Where("EXISTS (?)", sub)
	}
	if query.Cursor != nil {
		q = q.Where("(hostels.created_at, hostels.id) < (?, ?)", query.Cursor.CreatedAt, query.Cursor.ID)
	}

	var hostels []models.Hostel
	if err := q.Order("hostels.created_at DESC, hostels.id DESC").Limit(buffered).Find(&hostels).Error; err != nil {
		return nil, nil, err
	}

	if len(hostels) > normalized {
		next := hostels[normalized]
		hostels = hostels[:normalized]
		return hostels, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return hostels, nil, nil
}

func (r *repositoryImpl) ListOwnerHostels(ctx context.Context, ownerID uuid.UUID) ([]models.Hostel, error) {
	var hostels []models.Hostel
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&hostels).Error
	if err != nil {
		return nil, err
	}
	return hostels, nil
}

func (r *repositoryImpl) CreateRoom(ctx context.Context, room *models.Room) (*models.Room, error) {
	if err := r.db.WithContext(ctx).Create(room).Error; err != nil {
		return nil, err
	}
	return room, nil
}

func (r *repositoryImpl) FindRoom(ctx context.Context, id uuid.UUID) (*models.Room, error) {
	var room models.Room
	if err := r.db.WithContext(ctx).First(&room, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *repositoryImpl) UpdateRoom(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Room{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repositoryImpl) DeleteRoom(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Room{}, "id = ?", id).Error
}

func (r *repositoryImpl) ListRooms(ctx context.Context, hostelID uuid.UUID) ([]models.Room, error) {
	var rooms []models.Room
	err := r.db.WithContext(ctx).
		Where("hostel_id = ?", hostelID).
		Order("price_per_month ASC").
		Find(&rooms).Error
	if err != nil {
		return nil, err
	}
	return rooms, nil
}

type ratingRow struct {
	PropertyID uuid.UUID
	AvgRating  float64
}

// AverageRatings returns the mean review rating per hostel for the given ids.
// Hostels without reviews are absent from the map.
func (r *repositoryImpl) AverageRatings(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]float64, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]float64{}, nil
	}

	var rows []ratingRow
	err := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Select("property_id, AVG(rating) AS avg_rating").
		Where("property_kind = ? AND property_id IN ?", enums.PropertyKindHostel, ids).
		Group("property_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	ratings := make(map[uuid.UUID]float64, len(rows))
	for _, row := range rows {
		ratings[row.PropertyID] = row.AvgRating
	}
	return ratings, nil
}
