package mess

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/staymate-io/staymate-backend/pkg/db/models"
)

// MessDTO exposes mess service state in API responses.
type MessDTO struct {
	ID               uuid.UUID       `json:"id"`
	OwnerID          uuid.UUID       `json:"owner_id"`
	Name             string          `json:"name"`
	Address          string          `json:"address"`
	City             string          `json:"city"`
	Description      *string         `json:"description,omitempty"`
	MonthlyPrice     decimal.Decimal `json:"monthly_price"`
	DeliveryRadiusKM int             `json:"delivery_radius_km"`
	Images           []string        `json:"images"`
	AvgRating        *float64        `json:"avg_rating,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

// MessList wraps the paginated city listing plus the next cursor.
type MessList struct {
	Messes     []MessDTO `json:"messes"`
	NextCursor string    `json:"next_cursor,omitempty"`
}

// SubscriberDTO is one active subscriber row on the owner dashboard.
type SubscriberDTO struct {
	SubscriptionID uuid.UUID `json:"subscription_id"`
	StudentID      uuid.UUID `json:"student_id"`
	StudentName    string    `json:"student_name"`
	StudentEmail   string    `json:"student_email"`
	StartedAt      time.Time `json:"started_at"`
}

// SubscriberList wraps paginated subscribers plus the next cursor.
type SubscriberList struct {
	Subscribers []SubscriberDTO `json:"subscribers"`
	NextCursor  string          `json:"next_cursor,omitempty"`
}

// FromModel maps the persistence model onto the public shape.
func FromModel(mess *models.MessService) *MessDTO {
	if mess == nil {
		return nil
	}
	return &MessDTO{
		ID:               mess.ID,
		OwnerID:          mess.OwnerID,
		Name:             mess.Name,
		Address:          mess.Address,
		City:             mess.City,
		Description:      mess.Description,
		MonthlyPrice:     mess.MonthlyPrice,
		DeliveryRadiusKM: mess.DeliveryRadiusKM,
		Images:           mess.Images,
		CreatedAt:        mess.CreatedAt,
	}
}
