package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Hostel is an owner-managed property that rooms belong to.
type Hostel struct {
	ID          uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerID     uuid.UUID      `gorm:"column:owner_id;type:uuid;not null;index"`
	Name        string         `gorm:"column:name;type:text;not null"`
	Address     string         `gorm:"column:address;type:text;not null"`
	City        string         `gorm:"column:city;type:text;not null;index"`
	Description *string        `gorm:"column:description;type:text"`
	Amenities   pq.StringArray `gorm:"column:amenities;type:text[];not null;default:ARRAY[]::text[]"`
	Images      pq.StringArray `gorm:"column:images;type:text[];not null;default:ARRAY[]::text[]"`
	Rooms       []Room         `gorm:"foreignKey:HostelID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
