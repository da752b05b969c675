package mess

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/staymate-io/staymate-backend/pkg/db/models"
	"github.com/staymate-io/staymate-backend/pkg/enums"
	"github.com/staymate-io/staymate-backend/pkg/pagination"
)

// Repository exposes persistence helpers for mess services.
type Repository interface {
	Create(ctx context.Context, mess *models.MessService) (*models.MessService, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.MessService, error)
	Update(ctx context.Context, mess *models.MessService) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByCity(ctx context.Context, city string, limit int, cursor *pagination.Cursor) ([]models.MessService, *pagination.Cursor, error)
	ListOwnerMesses(ctx context.Context, ownerID uuid.UUID) ([]models.MessService, error)
	ListActiveSubscribers(ctx context.Context, messID uuid.UUID, limit int, cursor *pagination.Cursor) ([]subscriberRow, *pagination.Cursor, error)
	AverageRatings(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]float64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a mess repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) Create(ctx context.Context, mess *models.MessService) (*models.MessService, error) {
	if err := r.db.WithContext(ctx).Create(mess).Error; err != nil {
		return nil, err
	}
	return mess, nil
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.MessService, error) {
	var mess models.MessService
	if err := r.db.WithContext(ctx).First(&mess, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &mess, nil
}

func (r *repositoryImpl) Update(ctx context.Context, mess *models.MessService) error {
	return r.db.WithContext(ctx).Save(mess).Error
}

// Delete removes the mess row; subscriptions go with it through the
// schema's cascades.
func (r *repositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.MessService{}, "id = ?", id).Error
}

func (r *repositoryImpl) ListByCity(ctx context.Context, city string, limit int, cursor *pagination.Cursor) ([]models.MessService, *pagination.Cursor, error) {
	buffered := pagination.LimitWithBuffer(limit)
	normalized := pagination.NormalizeLimit(limit)

	query := r.db.WithContext(ctx).
		Model(&models.MessService{}).
		Where("city = ?", city)
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var messes []models.MessService
	if err := query.Order("created_at DESC, id DESC").Limit(buffered).Find(&messes).Error; err != nil {
		return nil, nil, err
	}

	if len(messes) > normalized {
		next := messes[normalized]
		messes = messes[:normalized]
		return messes, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return messes, nil, nil
}

func (r *repositoryImpl) ListOwnerMesses(ctx context.Context, ownerID uuid.UUID) ([]models.MessService, error) {
	var messes []models.MessService
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&messes).Error
	if err != nil {
		return nil, err
	}
	return messes, nil
}

type subscriberRow struct {
	ID           uuid.UUID
	StudentID    uuid.UUID
	StudentName  string
	StudentEmail string
	CreatedAt    time.Time
}

func (r *repositoryImpl) ListActiveSubscribers(ctx context.Context, messID uuid.UUID, limit int, cursor *pagination.Cursor) ([]subscriberRow, *pagination.Cursor, error) {
	buffered := pagination.LimitWithBuffer(limit)
	normalized := pagination.NormalizeLimit(limit)

	query := r.db.WithContext(ctx).
		Model(&models.MessSubscription{}).
		Select(`mess_subscriptions.id, mess_subscriptions.student_id, mess_subscriptions.created_at,
			users.full_name AS student_name, users.email AS student_email`).
		Joins("JOIN users ON users.id = mess_subscriptions.student_id").
		Where("mess_subscriptions.mess_id = ? AND mess_subscriptions.is_active", messID)
	if cursor != nil {
		query = query.Where("(mess_subscriptions.created_at, mess_subscriptions.id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []subscriberRow
	if err := query.Order("mess_subscriptions.created_at DESC, mess_subscriptions.id DESC").Limit(buffered).Scan(&rows).Error; err != nil {
		return nil, nil, err
	}

	if len(rows) > normalized {
		next := rows[normalized]
		rows = rows[:normalized]
		return rows, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return rows, nil, nil
}

type ratingRow struct {
	PropertyID uuid.UUID
	AvgRating  float64
}

// AverageRatings returns the mean review rating per mess for the given ids.
// Messes without reviews are absent from the map.
func (r *repositoryImpl) AverageRatings(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]float64, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]float64{}, nil
	}

	var rows []ratingRow
	err := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Select("property_id, AVG(rating) AS avg_rating").
		Where("property_kind = ? AND property_id IN ?", enums.PropertyKindMess, ids).
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
