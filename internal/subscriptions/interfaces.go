package subscriptions

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/staymate-io/staymate-backend/pkg/db/models"
	"github.com/staymate-io/staymate-backend/pkg/pagination"
)

// Repository defines persistence operations for mess subscriptions.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateSubscription(ctx context.Context, sub *models.MessSubscription) (*models.MessSubscription, error)
	FindSubscription(ctx context.Context, id uuid.UUID) (*models.MessSubscription, error)
	FindActiveSubscription(ctx context.Context, studentID, messID uuid.UUID) (*models.MessSubscription, error)
	FindMess(ctx context.Context, id uuid.UUID) (*models.MessService, error)
	DeactivateSubscription(ctx context.Context, id uuid.UUID) (int64, error)
	ListStudentSubscriptions(ctx context.Context, studentID uuid.UUID, limit int, cursor *pagination.Cursor) ([]SubscriptionSummary, *pagination.Cursor, error)
}
