package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/staymate-io/staymate-backend/pkg/enums"
)

// Room tracks a bookable room type inside a hostel along with its bed inventory.
// available_beds is only ever mutated through conditional updates so the
// 0 <= available_beds <= total_beds invariant holds under concurrency.
type Room struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	HostelID        uuid.UUID       `gorm:"column:hostel_id;type:uuid;not null;index"`
	RoomType        enums.RoomType  `gorm:"column:room_type;type:room_type;not null"`
	PricePerMonth   decimal.Decimal `gorm:"column:price_per_month;type:numeric(10,2);not null"`
	TotalBeds       int             `gorm:"column:total_beds;not null"`
	AvailableBeds   int             `gorm:"column:available_beds;not null"`
	HasAttachedBath bool            `gorm:"column:has_attached_bath;not null;default:false"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
