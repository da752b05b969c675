package reviews

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/staymate-io/staymate-backend/pkg/db/models"
	"github.com/staymate-io/staymate-backend/pkg/enums"
	"github.com/staymate-io/staymate-backend/pkg/pagination"
)

// Repository exposes persistence helpers for reviews.
type Repository interface {
	Create(ctx context.Context, review *models.Review) (*models.Review, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Review, error)
	FindByStudentAndProperty(ctx context.Context, studentID uuid.UUID, kind enums.PropertyKind, propertyID uuid.UUID) (*models.Review, error)
	Update(ctx context.Context, review *models.Review) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListForProperty(ctx context.Context, kind enums.PropertyKind, propertyID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.Review, *pagination.Cursor, error)
	AverageRating(ctx context.Context, kind enums.PropertyKind, propertyID uuid.UUID) (float64, int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a reviews repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) Create(ctx context.Context, review *models.Review) (*models.Review, error) {
	if err := r.db.WithContext(ctx).Create(review).Error; err != nil {
		return nil, err
	}
	return review, nil
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	var review models.Review
	if err := r.db.WithContext(ctx).First(&review, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *repositoryImpl) FindByStudentAndProperty(ctx context.Context, studentID uuid.UUID, kind enums.PropertyKind, propertyID uuid.UUID) (*models.Review, error) {
	var review models.Review
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND property_kind = ? AND property_id = ?", studentID, kind, propertyID).
		First(&review).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *repositoryImpl) Update(ctx context.Context, review *models.Review) error {
	return r.db.WithContext(ctx).Save(review).Error
}

func (r *repositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Review{}).Error
}

func (r *repositoryImpl) ListForProperty(ctx context.Context, kind enums.PropertyKind, propertyID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.Review, *pagination.Cursor, error) {
	buffered := pagination.LimitWithBuffer(limit)
	normalized := pagination.NormalizeLimit(limit)

	query := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Where("property_kind = ? AND property_id = ?", kind, propertyID)
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var reviews []models.Review
	if err := query.Order("created_at DESC, id DESC").Limit(buffered).Find(&reviews).Error; err != nil {
		return nil, nil, err
	}

	if len(reviews) > normalized {
		next := reviews[normalized]
		reviews = reviews[:normalized]
		return reviews, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return reviews, nil, nil
}

func (r *repositoryImpl) AverageRating(ctx context.Context, kind enums.PropertyKind, propertyID uuid.UUID) (float64, int64, error) {
	type aggRow struct {
		Avg   float64
		Count int64
	}
	var row aggRow
	err := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS count").
		Where("property_kind = ? AND property_id = ?", kind, propertyID).
		Scan(&row).Error
	if err != nil {
		return 0, 0, err
	}
	return row.Avg, row.Count, nil
}
