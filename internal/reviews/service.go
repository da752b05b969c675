package reviews

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/staymate-io/staymate-backend/pkg/db/models"
	"github.com/staymate-io/staymate-backend/pkg/enums"
	pkgerrors "github.com/staymate-io/staymate-backend/pkg/errors"
	"github.com/staymate-io/staymate-backend/pkg/pagination"
)

// Service exposes review operations.
type Service interface {
	Submit(ctx context.Context, input SubmitReviewInput) (*ReviewDTO, error)
	Delete(ctx context.Context, actorID, reviewID uuid.UUID) error
	ListForProperty(ctx context.Context, kind enums.PropertyKind, propertyID uuid.UUID, params pagination.Params) (*ReviewList, error)
}

type service struct {
	repo Repository
}

// NewService builds a reviews service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reviews repository required")
	}
	return &service{repo: repo}, nil
}

// SubmitReviewInput captures a rating submission. Resubmitting for the same
// property overwrites the student's earlier review.
type SubmitReviewInput struct {
	StudentID    uuid.UUID
	PropertyKind enums.PropertyKind
	PropertyID   uuid.UUID
	Rating       int
	Comment      *string
}

func (s *service) Submit(ctx context.Context, input SubmitReviewInput) (*ReviewDTO, error) {
	if input.StudentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !input.PropertyKind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid property kind")
	}
	if input.PropertyID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "property id required")
	}
	if input.Rating < 1 || input.Rating > 5 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}
	if input.Comment != nil {
		trimmed := strings.TrimSpace(*input.Comment)
		if trimmed == "" {
			input.Comment = nil
		} else {
			input.Comment = &trimmed
		}
	}

	existing, err := s.repo.FindByStudentAndProperty(ctx, input.StudentID, input.PropertyKind, input.PropertyID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup review")
	}
	if existing != nil {
		existing.Rating = input.Rating
		existing.Comment = input.Comment
		if err := s.repo.Update(ctx, existing); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update review")
		}
		return FromModel(existing), nil
	}

	review, err := s.repo.Create(ctx, &models.Review{
		StudentID:    input.StudentID,
		PropertyKind: input.PropertyKind,
		PropertyID:   input.PropertyID,
		Rating:       input.Rating,
		Comment:      input.Comment,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create review")
	}
	return FromModel(review), nil
}

func (s *service) Delete(ctx context.Context, actorID, reviewID uuid.UUID) error {
	if actorID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	review, err := s.repo.FindByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "review not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load review")
	}
	if review.StudentID != actorID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "review does not belong to student")
	}
	if err := s.repo.Delete(ctx, reviewID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete review")
	}
	return nil
}

func (s *service) ListForProperty(ctx context.Context, kind enums.PropertyKind, propertyID uuid.UUID, params pagination.Params) (*ReviewList, error) {
	if !kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid property kind")
	}
	if propertyID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "property id required")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	reviews, next, err := s.repo.ListForProperty(ctx, kind, propertyID, params.Limit, cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reviews")
	}
	avg, count, err := s.repo.AverageRating(ctx, kind, propertyID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate rating")
	}

	list := &ReviewList{
		Reviews:       make([]ReviewDTO, 0, len(reviews)),
		AverageRating: avg,
		TotalReviews:  count,
	}
	for i := range reviews {
		list.Reviews = append(list.Reviews, *FromModel(&reviews[i]))
	}
	if next != nil {
		list.NextCursor = pagination.EncodeCursor(*next)
	}
	return list, nil
}
