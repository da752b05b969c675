package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/staymate-io/staymate-backend/pkg/enums"
)

// Review is a student rating for a hostel or mess service.
type Review struct {
	ID           uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StudentID    uuid.UUID          `gorm:"column:student_id;type:uuid;not null;index"`
	PropertyKind enums.PropertyKind `gorm:"column:property_kind;type:property_kind;not null"`
	PropertyID   uuid.UUID          `gorm:"column:property_id;type:uuid;not null;index"`
	Rating       int                `gorm:"column:rating;not null"`
	Comment      *string            `gorm:"column:comment;type:text"`
	CreatedAt    time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
