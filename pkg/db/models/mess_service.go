package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// MessService is an owner-managed meal service students subscribe to.
type MessService struct {
	ID               uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerID          uuid.UUID       `gorm:"column:owner_id;type:uuid;not null;index"`
	Name             string          `gorm:"column:name;type:text;not null"`
	Address          string          `gorm:"column:address;type:text;not null"`
	City             string          `gorm:"column:city;type:text;not null;index"`
	Description      *string         `gorm:"column:description;type:text"`
	MonthlyPrice     decimal.Decimal `gorm:"column:monthly_price;type:numeric(10,2);not null"`
	DeliveryRadiusKM int             `gorm:"column:delivery_radius_km;not null;default:0"`
	Images           pq.StringArray  `gorm:"column:images;type:text[];not null;default:ARRAY[]::text[]"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
