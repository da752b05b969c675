package subscriptions

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/staymate-io/staymate-backend/pkg/db/models"
)

// SubscriptionDTO exposes subscription state in API responses.
type SubscriptionDTO struct {
	ID          uuid.UUID  `json:"id"`
	StudentID   uuid.UUID  `json:"student_id"`
	MessID      uuid.UUID  `json:"mess_id"`
	IsActive    bool       `json:"is_active"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ToDTO maps the persistence model onto the public shape.
func ToDTO(sub *models.MessSubscription) *SubscriptionDTO {
	if sub == nil {
		return nil
	}
	return &SubscriptionDTO{
		ID:          sub.ID,
		StudentID:   sub.StudentID,
		MessID:      sub.MessID,
		IsActive:    sub.IsActive,
		CancelledAt: sub.CancelledAt,
		CreatedAt:   sub.CreatedAt,
	}
}

// SubscriptionSummary is the student-facing list row joined with mess data.
type SubscriptionSummary struct {
	ID           uuid.UUID       `json:"id"`
	MessID       uuid.UUID       `json:"mess_id"`
	MessName     string          `json:"mess_name"`
	City         string          `json:"city"`
	MonthlyPrice decimal.Decimal `json:"monthly_price"`
	IsActive     bool            `json:"is_active"`
	CreatedAt    time.Time       `json:"created_at"`
}

// SubscriptionList wraps the paginated subscriptions plus the next cursor.
type SubscriptionList struct {
	Subscriptions []SubscriptionSummary `json:"subscriptions"`
	NextCursor    string                `json:"next_cursor,omitempty"`
}
