package models

import (
	"time"

	"github.com/google/uuid"
)

// MessSubscription links a student to a mess service. A partial unique index
// on (student_id, mess_id) WHERE is_active enforces at most one active
// subscription per pair; cancelled rows stay behind for history.
type MessSubscription struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StudentID   uuid.UUID  `gorm:"column:student_id;type:uuid;not null;index"`
	MessID      uuid.UUID  `gorm:"column:mess_id;type:uuid;not null;index"`
	IsActive    bool       `gorm:"column:is_active;not null;default:true"`
	CancelledAt *time.Time `gorm:"column:cancelled_at"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
