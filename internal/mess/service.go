package mess

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/staymate-io/staymate-backend/pkg/db/models"
	pkgerrors "github.com/staymate-io/staymate-backend/pkg/errors"
	"github.com/staymate-io/staymate-backend/pkg/pagination"
)

// Service exposes mess service operations.
type Service interface {
	Create(ctx context.Context, ownerID uuid.UUID, input CreateMessInput) (*MessDTO, error)
	Update(ctx context.Context, actorID, messID uuid.UUID, input UpdateMessInput) (*MessDTO, error)
	Delete(ctx context.Context, actorID, messID uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*MessDTO, error)
	ListByCity(ctx context.Context, city string, params pagination.Params) (*MessList, error)
	ListOwnerMesses(ctx context.Context, ownerID uuid.UUID) ([]MessDTO, error)
	ListSubscribers(ctx context.Context, actorID, messID uuid.UUID, params pagination.Params) (*SubscriberList, error)
}

type service struct {
	repo Repository
}

// NewService builds a mess service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("mess repository required")
	}
	return &service{repo: repo}, nil
}

// CreateMessInput captures the fields required to register a mess.
type CreateMessInput struct {
	Name             string
	Address          string
	City             string
	Description      *string
	MonthlyPrice     decimal.Decimal
	DeliveryRadiusKM int
	Images           []string
}

// UpdateMessInput captures the allowed mess fields for mutation.
type UpdateMessInput struct {
	Name             *string
	Address          *string
	City             *string
	Description      *string
	MonthlyPrice     *decimal.Decimal
	DeliveryRadiusKM *int
	Images           *[]string
}

func (s *service) Create(ctx context.Context, ownerID uuid.UUID, input CreateMessInput) (*MessDTO, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	name := strings.TrimSpace(input.Name)
	city := strings.TrimSpace(input.City)
	address := strings.TrimSpace(input.Address)
	if name == "" || city == "" || address == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name, address and city are required")
	}
	if input.MonthlyPrice.Sign() <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "monthly price must be positive")
	}
	if input.DeliveryRadiusKM < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery radius cannot be negative")
	}

	mess, err := s.repo.Create(ctx, &models.MessService{
		OwnerID:          ownerID,
		Name:             name,
		Address:          address,
		City:             city,
		Description:      input.Description,
		MonthlyPrice:     input.MonthlyPrice,
		DeliveryRadiusKM: input.DeliveryRadiusKM,
		Images:           toStringArray(input.Images),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create mess")
	}
	return FromModel(mess), nil
}

func (s *service) Update(ctx context.Context, actorID, messID uuid.UUID, input UpdateMessInput) (*MessDTO, error) {
	mess, err := s.ownedMess(ctx, actorID, messID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		mess.Name = strings.TrimSpace(*input.Name)
	}
	if input.Address != nil {
		mess.Address = strings.TrimSpace(*input.Address)
	}
	if input.City != nil {
		mess.City = strings.TrimSpace(*input.City)
	}
	if input.Description != nil {
		mess.Description = input.Description
	}
	if input.MonthlyPrice != nil {
		if input.MonthlyPrice.Sign() <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "monthly price must be positive")
		}
		mess.MonthlyPrice = *input.MonthlyPrice
	}
	if input.DeliveryRadiusKM != nil {
		if *input.DeliveryRadiusKM < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery radius cannot be negative")
		}
		mess.DeliveryRadiusKM = *input.DeliveryRadiusKM
	}
	if input.Images != nil {
		mess.Images = toStringArray(*input.Images)
	}
	if mess.Name == "" || mess.City == "" || mess.Address == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name, address and city are required")
	}

	if err := s.repo.Update(ctx, mess); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update mess")
	}
	return FromModel(mess), nil
}

// Delete removes an owner's mess along with its subscriptions.
func (s *service) Delete(ctx context.Context, actorID, messID uuid.UUID) error {
	if _, err := s.ownedMess(ctx, actorID, messID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, messID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete mess")
	}
	return nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*MessDTO, error) {
	mess, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "mess service not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load mess")
	}

	dto := FromModel(mess)
	ratings, err := s.repo.AverageRatings(ctx, []uuid.UUID{mess.ID})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load mess ratings")
	}
	if avg, ok := ratings[mess.ID]; ok {
		dto.AvgRating = &avg
	}
	return dto, nil
}

func (s *service) ListByCity(ctx context.Context, city string, params pagination.Params) (*MessList, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "city is required")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	messes, next, err := s.repo.ListByCity(ctx, city, params.Limit, cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list messes")
	}

	ids := make([]uuid.UUID, 0, len(messes))
	for i := range messes {
		ids = append(ids, messes[i].ID)
	}
	ratings, err := s.repo.AverageRatings(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load mess ratings")
	}

	list := &MessList{Messes: make([]MessDTO, 0, len(messes))}
	for i := range messes {
		dto := FromModel(&messes[i])
		if avg, ok := ratings[messes[i].ID]; ok {
			dto.AvgRating = &avg
		}
		list.Messes = append(list.Messes, *dto)
	}
	if next != nil {
		list.NextCursor = pagination.EncodeCursor(*next)
	}
	return list, nil
}

func (s *service) ListOwnerMesses(ctx context.Context, ownerID uuid.UUID) ([]MessDTO, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	messes, err := s.repo.ListOwnerMesses(ctx, ownerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list owner messes")
	}
	dtos := make([]MessDTO, 0, len(messes))
	for i := range messes {
		dtos = append(dtos, *FromModel(&messes[i]))
	}
	return dtos, nil
}

func (s *service) ListSubscribers(ctx context.Context, actorID, messID uuid.UUID, params pagination.Params) (*SubscriberList, error) {
	if _, err := s.ownedMess(ctx, actorID, messID); err != nil {
		return nil, err
	}

	var cursor *pagination.Cursor
	if params.Cursor != "" {
		parsed, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		cursor = parsed
	}

	rows, next, err := s.repo.ListActiveSubscribers(ctx, messID, params.Limit, cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list subscribers")
	}

	subscribers := make([]SubscriberDTO, 0, len(rows))
	for _, row := range rows {
		subscribers = append(subscribers, SubscriberDTO{
			SubscriptionID: row.ID,
			StudentID:      row.StudentID,
			StudentName:    row.StudentName,
			StudentEmail:   row.StudentEmail,
			StartedAt:      row.CreatedAt,
		})
	}

	list := &SubscriberList{Subscribers: subscribers}
	if next != nil {
		list.NextCursor = pagination.EncodeCursor(*next)
	}
	return list, nil
}

func (s *service) ownedMess(ctx context.Context, actorID, messID uuid.UUID) (*models.MessService, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	mess, err := s.repo.FindByID(ctx, messID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "mess service not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load mess")
	}
	if mess.OwnerID != actorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "mess does not belong to owner")
	}
	return mess, nil
}

func toStringArray(values []string) pq.StringArray {
	res := make(pq.StringArray, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			res = append(res, trimmed)
		}
	}
	return res
}
