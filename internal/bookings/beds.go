package bookings

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/staymate-io/staymate-backend/pkg/errors"
)

// BedAllocator mutates room bed counts through conditional updates so the
// 0 <= available_beds <= total_beds invariant holds under concurrent decisions.
type BedAllocator interface {
	Claim(ctx context.Context, tx *gorm.DB, roomID uuid.UUID) error
	Release(ctx context.Context, tx *gorm.DB, roomID uuid.UUID) error
}

type bedAllocatorImpl struct{}

// NewBedAllocator exposes the default bed allocation implementation.
func NewBedAllocator() BedAllocator {
	return bedAllocatorImpl{}
}

// Claim takes one bed from the room. The guarded WHERE clause is the only
// overbooking protection; callers must treat a zero row count as a full room.
func (bedAllocatorImpl) Claim(ctx context.Context, tx *gorm.DB, roomID uuid.UUID) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for bed claim")
	}

	res := tx.WithContext(ctx).Exec(`
		UPDATE rooms
		SET available_beds = available_beds - 1,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND available_beds > 0
	`, roomID)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "claim bed")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNoAvailability, "room is fully booked")
	}
	return nil
}

// Release returns one bed to the room, capped at total_beds so a double
// release can never inflate availability.
func (bedAllocatorImpl) Release(ctx context.Context, tx *gorm.DB, roomID uuid.UUID) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for bed release")
	}

	res := tx.WithContext(ctx).Exec(`
		UPDATE rooms
		SET available_beds = available_beds + 1,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND available_beds < total_beds
	`, roomID)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "release bed")
	}
	return nil
}
