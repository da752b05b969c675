package hostels

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
	"github.com/staymate-io/staymate-backend/pkg/enums"
	pkgerrors "github.com/staymate-io/staymate-backend/pkg/errors"
	"github.com/staymate-io/staymate-backend/pkg/pagination"
)

// Service exposes hostel and room operations.
type Service interface {
	CreateHostel(ctx context.Context, ownerID uuid.UUID, input CreateHostelInput) (*HostelDTO, error)
	UpdateHostel(ctx context.Context, actorID, hostelID uuid.UUID, input UpdateHostelInput) (*HostelDTO, error)
	DeleteHostel(ctx context.Context, actorID, hostelID uuid.UUID) error
	GetHostel(ctx context.Context, id uuid.UUID) (*HostelDTO, error)
	ListByCity(ctx context.Context, input ListByCityInput) (*HostelList, error)
	ListOwnerHostels(ctx context.Context, ownerID uuid.UUID) ([]HostelDTO, error)
	AddRoom(ctx context.Context, actorID, hostelID uuid.UUID, input AddRoomInput) (*RoomDTO, error)
	UpdateRoom(ctx context.Context, actorID, roomID uuid.UUID, input UpdateRoomInput) (*RoomDTO, error)
	DeleteRoom(ctx context.Context, actorID, roomID uuid.UUID) error
	ListRooms(ctx context.Context, hostelID uuid.UUID) ([]RoomDTO, error)
}

type service struct {
	repo Repository
}

// NewService builds a hostels service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("hostels repository required")
	}
	return &service{repo: repo}, nil
}

// CreateHostelInput captures the fields required to register a hostel.
type CreateHostelInput struct {
	Name        string
	Address     string
	City        string
	Description *string
	Amenities   []string
	Images      []string
}

// UpdateHostelInput captures the allowed hostel fields for mutation.
type UpdateHostelInput struct {
	Name        *string
	Address     *string
	City        *string
	Description *string
	Amenities   *[]string
	Images      *[]string
}

// ListByCityInput captures the browse filters for the city listing.
type ListByCityInput struct {
	City       string
	RoomType   *enums.RoomType
	OnlyVacant bool
	Pagination pagination.Params
}

// AddRoomInput captures a new room type. Every bed starts available.
type AddRoomInput struct {
	RoomType        enums.RoomType
	PricePerMonth   decimal.Decimal
	TotalBeds       int
	HasAttachedBath bool
}

// UpdateRoomInput captures room mutations. AddBeds grows both counters
// together so the availability invariant survives the change.
type UpdateRoomInput struct {
	PricePerMonth   *decimal.Decimal
	HasAttachedBath *bool
	AddBeds         *int
}

func (s *service) CreateHostel(ctx context.Context, ownerID uuid.UUID, input CreateHostelInput) (*HostelDTO, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	name := strings.TrimSpace(input.Name)
	city := strings.TrimSpace(input.City)
	address := strings.TrimSpace(input.Address)
	if name == "" || city == "" || address == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name, address and city are required")
	}

	hostel, err := s.repo.CreateHostel(ctx, &models.Hostel{
		OwnerID:     ownerID,
		Name:        name,
		Address:     address,
		City:        city,
		Description: input.Description,
		Amenities:   toStringArray(input.Amenities),
		Images:      toStringArray(input.Images),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create hostel")
	}
	return FromModel(hostel), nil
}

func (s *service) UpdateHostel(ctx context.Context, actorID, hostelID uuid.UUID, input UpdateHostelInput) (*HostelDTO, error) {
	hostel, err := s.ownedHostel(ctx, actorID, hostelID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		hostel.Name = strings.TrimSpace(*input.Name)
	}
	if input.Address != nil {
		hostel.Address = strings.TrimSpace(*input.Address)
	}
	if input.City != nil {
		hostel.City = strings.TrimSpace(*input.City)
	}
	if input.Description != nil {
		hostel.Description = input.Description
	}
	if input.Amenities != nil {
		hostel.Amenities = toStringArray(*input.Amenities)
	}
	if input.Images != nil {
		hostel.Images = toStringArray(*input.Images)
	}
	if hostel.Name == "" || hostel.City == "" || hostel.Address == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name, address and city are required")
	}

	if err := s.repo.UpdateHostel(ctx, hostel); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update hostel")
	}
	return FromModel(hostel), nil
}

// DeleteHostel removes an owner's hostel along with its rooms and bookings.
func (s *service) DeleteHostel(ctx context.Context, actorID, hostelID uuid.UUID) error {
	if _, err := s.ownedHostel(ctx, actorID, hostelID); err != nil {
		return err
	}
	if err := s.repo.DeleteHostel(ctx, hostelID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete hostel")
	}
	return nil
}

func (s *service) GetHostel(ctx context.Context, id uuid.UUID) (*HostelDTO, error) {
	hostel, err := s.repo.FindHostelWithRooms(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "hostel not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load hostel")
	}

	dto := FromModel(hostel)
	ratings, err := s.repo.AverageRatings(ctx, []uuid.UUID{hostel.ID})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load hostel ratings")
	}
	if avg, ok := ratings[hostel.ID]; ok {
		dto.AvgRating = &avg
	}
	return dto, nil
}

func (s *service) ListByCity(ctx context.Context, input ListByCityInput) (*HostelList, error) {
	city := strings.TrimSpace(input.City)
	if city == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "city is required")
	}
	if input.RoomType != nil && !input.RoomType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid room type")
	}
	cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	hostels, next, err := s.repo.ListByCity(ctx, cityListQuery{
		City:       city,
		RoomType:   input.RoomType,
		OnlyVacant: input.OnlyVacant,
		Limit:      input.Pagination.Limit,
		Cursor:     cursor,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list hostels")
	}

	ids := make([]uuid.UUID, 0, len(hostels))
	for i := range hostels {
		ids = append(ids, hostels[i].ID)
	}
	ratings, err := s.repo.AverageRatings(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load hostel ratings")
	}

	list := &HostelList{Hostels: make([]HostelDTO, 0, len(hostels))}
	for i := range hostels {
		dto := FromModel(&hostels[i])
		if avg, ok := ratings[hostels[i].ID]; ok {
			dto.AvgRating = &avg
		}
		list.Hostels = append(list.Hostels, *dto)
	}
	if next != nil {
		list.NextCursor = pagination.EncodeCursor(*next)
	}
	return list, nil
}

func (s *service) ListOwnerHostels(ctx context.Context, ownerID uuid.UUID) ([]HostelDTO, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	hostels, err := s.repo.ListOwnerHostels(ctx, ownerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list owner hostels")
	}
	dtos := make([]HostelDTO, 0, len(hostels))
	for i := range hostels {
		dtos = append(dtos, *FromModel(&hostels[i]))
	}
	return dtos, nil
}

func (s *service) AddRoom(ctx context.Context, actorID, hostelID uuid.UUID, input AddRoomInput) (*RoomDTO, error) {
	if _, err := s.ownedHostel(ctx, actorID, hostelID); err != nil {
		return nil, err
	}
	if !input.RoomType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid room type")
	}
	if input.TotalBeds <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "total beds must be positive")
	}
	if input.PricePerMonth.Sign() <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price per month must be positive")
	}

	room, err := s.repo.CreateRoom(ctx, &models.Room{
		HostelID:        hostelID,
		RoomType:        input.RoomType,
		PricePerMonth:   input.PricePerMonth,
		TotalBeds:       input.TotalBeds,
		AvailableBeds:   input.TotalBeds,
		HasAttachedBath: input.HasAttachedBath,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create room")
	}
	dto := RoomToDTO(room)
	return &dto, nil
}

func (s *service) UpdateRoom(ctx context.Context, actorID, roomID uuid.UUID, input UpdateRoomInput) (*RoomDTO, error) {
	room, err := s.repo.FindRoom(ctx, roomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "room not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load room")
	}
	if _, err := s.ownedHostel(ctx, actorID, room.HostelID); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.PricePerMonth != nil {
		if input.PricePerMonth.Sign() <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price per month must be positive")
		}
		updates["price_per_month"] = *input.PricePerMonth
		room.PricePerMonth = *input.PricePerMonth
	}
	if input.HasAttachedBath != nil {
		updates["has_attached_bath"] = *input.HasAttachedBath
		room.HasAttachedBath = *input.HasAttachedBath
	}
	if input.AddBeds != nil {
		if *input.AddBeds <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "added beds must be positive")
		}
		updates["total_beds"] = gorm.Expr("total_beds + ?", *input.AddBeds)
		updates["available_beds"] = gorm.Expr("available_beds + ?", *input.AddBeds)
		room.TotalBeds += *input.AddBeds
		room.AvailableBeds += *input.AddBeds
	}
	if len(updates) == 0 {
		dto := RoomToDTO(room)
		return &dto, nil
	}

	if err := s.repo.UpdateRoom(ctx, roomID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update room")
	}
	dto := RoomToDTO(room)
	return &dto, nil
}

// DeleteRoom removes a room type after checking the hostel belongs to the actor.
func (s *service) DeleteRoom(ctx context.Context, actorID, roomID uuid.UUID) error {
	room, err := s.repo.FindRoom(ctx, roomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "room not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load room")
	}
	if _, err := s.ownedHostel(ctx, actorID, room.HostelID); err != nil {
		return err
	}
	if err := s.repo.DeleteRoom(ctx, roomID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete room")
	}
	return nil
}

func (s *service) ListRooms(ctx context.Context, hostelID uuid.UUID) ([]RoomDTO, error) {
	rooms, err := s.repo.ListRooms(ctx, hostelID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list rooms")
	}
	dtos := make([]RoomDTO, 0, len(rooms))
	for i := range rooms {
		dtos = append(dtos, RoomToDTO(&rooms[i]))
	}
	return dtos, nil
}

func (s *service) ownedHostel(ctx context.Context, actorID, hostelID uuid.UUID) (*models.Hostel, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	hostel, err := s.repo.FindHostel(ctx, hostelID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "hostel not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load hostel")
	}
	if hostel.OwnerID != actorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "hostel does not belong to owner")
	}
	return hostel, nil
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
