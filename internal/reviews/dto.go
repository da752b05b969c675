package reviews

import (
	"time"

	"github.com/google/uuid"

	"github.com/staymate-io/staymate-backend/pkg/db/models"
	"github.com/staymate-io/staymate-backend/pkg/enums"
)

// ReviewDTO exposes review state in API responses.
type ReviewDTO struct {
	ID           uuid.UUID          `json:"id"`
	StudentID    uuid.UUID          `json:"student_id"`
	PropertyKind enums.PropertyKind `json:"property_kind"`
	PropertyID   uuid.UUID          `json:"property_id"`
	Rating       int                `json:"rating"`
	Comment      *string            `json:"comment,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
}

// ReviewList wraps paginated reviews plus the property's aggregate rating.
type ReviewList struct {
	Reviews       []ReviewDTO `json:"reviews"`
	AverageRating float64     `json:"average_rating"`
	TotalReviews  int64       `json:"total_reviews"`
	NextCursor    string      `json:"next_cursor,omitempty"`
}

// FromModel maps the persistence model onto the public shape.
func FromModel(review *models.Review) *ReviewDTO {
	if review == nil {
		return nil
	}
	return &ReviewDTO{
		ID:           review.ID,
		StudentID:    review.StudentID,
		PropertyKind: review.PropertyKind,
		PropertyID:   review.PropertyID,
		Rating:       review.Rating,
		Comment:      review.Comment,
		CreatedAt:    review.CreatedAt,
	}
}
