package media

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/staymate-io/staymate-backend/pkg/db/models"
	"github.com/staymate-io/staymate-backend/pkg/enums"
	pkgerrors "github.com/staymate-io/staymate-backend/pkg/errors"
)

// Repository answers ownership questions for upload targets.
type Repository interface {
	OwnsProperty(ctx context.Context, kind enums.PropertyKind, propertyID, ownerID uuid.UUID) (bool, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a media repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) OwnsProperty(ctx context.Context, kind enums.PropertyKind, propertyID, ownerID uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx)
	switch kind {
	case enums.PropertyKindHostel:
		query = query.Model(&models.Hostel{})
	case enums.PropertyKindMess:
		query = query.Model(&models.MessService{})
	default:
		return false, pkgerrors.New(pkgerrors.CodeValidation, "unknown property kind")
	}

	var count int64
	if err := query.Where("id = ? AND owner_id = ?", propertyID, ownerID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
