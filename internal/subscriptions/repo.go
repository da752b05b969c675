package subscriptions

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/staymate-io/staymate-backend/pkg/db/models"
	"github.com/staymate-io/staymate-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a subscriptions repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateSubscription(ctx context.Context, sub *models.MessSubscription) (*models.MessSubscription, error) {
	if err := r.db.WithContext(ctx).Create(sub).Error; err != nil {
		return nil, err
	}
	return sub, nil
}

func (r *repository) FindSubscription(ctx context.Context, id uuid.UUID) (*models.MessSubscription, error) {
	var sub models.MessSubscription
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *repository) FindActiveSubscription(ctx context.Context, studentID, messID uuid.UUID) (*models.MessSubscription, error) {
	var sub models.MessSubscription
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND mess_id = ? AND is_active", studentID, messID).
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *repository) FindMess(ctx context.Context, id uuid.UUID) (*models.MessService, error) {
	var mess models.MessService
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&mess).Error
	if err != nil {
		return nil, err
	}
	return &mess, nil
}

// DeactivateSubscription flips is_active off only when it is still on, so a
// repeated cancel reports zero rows instead of touching history columns twice.
func (r *repository) DeactivateSubscription(ctx context.Context, id uuid.UUID) (int64, error) {
	now := time.Now().UTC()
	result := r.db.WithContext(ctx).
		Model(&models.MessSubscription{}).
		Where("id = ? AND is_active", id).
		Updates(map[string]any{
			"is_active":    false,
			"cancelled_at": now,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

type subscriptionRow struct {
	ID           uuid.UUID
	MessID       uuid.UUID
	MessName     string
	City         string
	MonthlyPrice decimal.Decimal
	IsActive     bool
	CreatedAt    time.Time
}

func (r *repository) ListStudentSubscriptions(ctx context.Context, studentID uuid.UUID, limit int, cursor *pagination.Cursor) ([]SubscriptionSummary, *pagination.Cursor, error) {
	buffered := pagination.LimitWithBuffer(limit)
	normalized := pagination.NormalizeLimit(limit)

	query := r.db.WithContext(ctx).
		Model(&models.MessSubscription{}).
		Select(`mess_subscriptions.id, mess_subscriptions.mess_id, mess_subscriptions.is_active, mess_subscriptions.created_at,
			mess_services.name AS mess_name, mess_services.city, mess_services.monthly_price`).
		Joins("JOIN mess_services ON mess_services.id = mess_subscriptions.mess_id").
		Where("mess_subscriptions.student_id = ?", studentID)
	if cursor != nil {
		query = query.Where("(mess_subscriptions.created_at, mess_subscriptions.id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []subscriptionRow
	if err := query.Order("mess_subscriptions.created_at DESC, mess_subscriptions.id DESC").Limit(buffered).Scan(&rows).Error; err != nil {
		return nil, nil, err
	}

	var next *pagination.Cursor
	if len(rows) > normalized {
		overflow := rows[normalized]
		rows = rows[:normalized]
		next = &pagination.Cursor{CreatedAt: overflow.CreatedAt, ID: overflow.ID}
	}

	summaries := make([]SubscriptionSummary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, SubscriptionSummary{
			ID:           row.ID,
			MessID:       row.MessID,
			MessName:     row.MessName,
			City:         row.City,
			MonthlyPrice: row.MonthlyPrice,
			IsActive:     row.IsActive,
			CreatedAt:    row.CreatedAt,
		})
	}
	return summaries, next, nil
}
