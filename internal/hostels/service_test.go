package hostels

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/staymate-io/staymate-backend/pkg/db/models"
	"github.com/staymate-io/staymate-backend/pkg/enums"
	pkgerrors "github.com/staymate-io/staymate-backend/pkg/errors"
	"github.com/staymate-io/staymate-backend/pkg/pagination"
)

type stubHostelsRepo struct {
	hostel         *models.Hostel
	room           *models.Room
	roomUpdates    map[string]any
	ratings        map[uuid.UUID]float64
	deletedHostels []uuid.UUID
	deletedRooms   []uuid.UUID
}

func (s *stubHostelsRepo) CreateHostel(ctx context.Context, hostel *models.Hostel) (*models.Hostel, error) {
	if hostel.ID == uuid.Nil {
		hostel.ID = uuid.New()
	}
	s.hostel = hostel
	return hostel, nil
}

func (s *stubHostelsRepo) FindHostel(ctx context.Context, id uuid.UUID) (*models.Hostel, error) {
	if s.hostel == nil || s.hostel.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.hostel, nil
}

func (s *stubHostelsRepo) FindHostelWithRooms(ctx context.Context, id uuid.UUID) (*models.Hostel, error) {
	return s.FindHostel(ctx, id)
}

func (s *stubHostelsRepo) UpdateHostel(ctx context.Context, hostel *models.Hostel) error {
	s.hostel = hostel
	return nil
}

func (s *stubHostelsRepo) DeleteHostel(ctx context.Context, id uuid.UUID) error {
	s.deletedHostels = append(s.deletedHostels, id)
	s.hostel = nil
	return nil
}

func (s *stubHostelsRepo) ListByCity(ctx context.Context, query cityListQuery) ([]models.Hostel, *pagination.Cursor, error) {
	if s.hostel != nil && s.hostel.City == query.City {
		return []models.Hostel{*s.hostel}, nil, nil
	}
	return []models.Hostel{}, nil, nil
}

func (s *stubHostelsRepo) ListOwnerHostels(ctx context.Context, ownerID uuid.UUID) ([]models.Hostel, error) {
	if s.hostel != nil && s.hostel.OwnerID == ownerID {
		return []models.Hostel{*s.hostel}, nil
	}
	return []models.Hostel{}, nil
}

func (s *stubHostelsRepo) CreateRoom(ctx context.Context, room *models.Room) (*models.Room, error) {
	if room.ID == uuid.Nil {
		room.ID = uuid.New()
	}
	s.room = room
	return room, nil
}

func (s *stubHostelsRepo) FindRoom(ctx context.Context, id uuid.UUID) (*models.Room, error) {
	if s.room == nil || s.room.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.room, nil
}

func (s *stubHostelsRepo) UpdateRoom(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	s.roomUpdates = updates
	return nil
}

func (s *stubHostelsRepo) DeleteRoom(ctx context.Context, id uuid.UUID) error {
	s.deletedRooms = append(s.deletedRooms, id)
	s.room = nil
	return nil
}

func (s *stubHostelsRepo) ListRooms(ctx context.Context, hostelID uuid.UUID) ([]models.Room, error) {
	if s.room != nil && s.room.HostelID == hostelID {
		return []models.Room{*s.room}, nil
	}
	return []models.Room{}, nil
}

func (s *stubHostelsRepo) AverageRatings(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]float64, error) {
	result := map[uuid.UUID]float64{}
	for _, id := range ids {
		if avg, ok := s.ratings[id]; ok {
			result[id] = avg
		}
	}
	return result, nil
}

func TestCreateHostelRequiresFields(t *testing.T) {
	svc, err := NewService(&stubHostelsRepo{})
	if err != nil {
		t.Fatalf("service constructor failed: %v", err)
	}

	_, err = svc.CreateHostel(context.Background(), uuid.New(), CreateHostelInput{Name: "Sunrise"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateHostelPersists(t *testing.T) {
	repo := &stubHostelsRepo{}
	svc, _ := NewService(repo)
	ownerID := uuid.New()

	dto, err := svc.CreateHostel(context.Background(), ownerID, CreateHostelInput{
		Name:      "Sunrise Hostel",
		Address:   "12 FC Road",
		City:      "Pune",
		Amenities: []string{"wifi", " laundry "},
	})
	if err != nil {
		t.Fatalf("create hostel failed: %v", err)
	}
	if dto.OwnerID != ownerID {
		t.Fatalf("expected owner id carried onto hostel")
	}
	if len(repo.hostel.Amenities) != 2 || repo.hostel.Amenities[1] != "laundry" {
		t.Fatalf("expected trimmed amenities, got %v", repo.hostel.Amenities)
	}
}

func TestAddRoomStartsFullyAvailable(t *testing.T) {
	ownerID := uuid.New()
	hostelID := uuid.New()
	repo := &stubHostelsRepo{hostel: &models.Hostel{ID: hostelID, OwnerID: ownerID, Name: "Sunrise", Address: "12 FC Road", City: "Pune"}}
	svc, _ := NewService(repo)

	dto, err := svc.AddRoom(context.Background(), ownerID, hostelID, AddRoomInput{
		RoomType:      enums.RoomTypeTriple,
		PricePerMonth: decimal.NewFromInt(5000),
		TotalBeds:     3,
	})
	if err != nil {
		t.Fatalf("add room failed: %v", err)
	}
	if dto.AvailableBeds != dto.TotalBeds {
		t.Fatalf("expected all beds available on creation, got %d of %d", dto.AvailableBeds, dto.TotalBeds)
	}
}

func TestAddRoomForbiddenForOtherOwner(t *testing.T) {
	hostelID := uuid.New()
	repo := &stubHostelsRepo{hostel: &models.Hostel{ID: hostelID, OwnerID: uuid.New()}}
	svc, _ := NewService(repo)

	_, err := svc.AddRoom(context.Background(), uuid.New(), hostelID, AddRoomInput{
		RoomType:      enums.RoomTypeSingle,
		PricePerMonth: decimal.NewFromInt(8000),
		TotalBeds:     1,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden error, got %v", err)
	}
}

func TestUpdateRoomAddBedsGrowsBothCounters(t *testing.T) {
	ownerID := uuid.New()
	hostelID := uuid.New()
	roomID := uuid.New()
	repo := &stubHostelsRepo{
		hostel: &models.Hostel{ID: hostelID, OwnerID: ownerID},
		room:   &models.Room{ID: roomID, HostelID: hostelID, TotalBeds: 2, AvailableBeds: 1},
	}
	svc, _ := NewService(repo)

	extra := 2
	dto, err := svc.UpdateRoom(context.Background(), ownerID, roomID, UpdateRoomInput{AddBeds: &extra})
	if err != nil {
		t.Fatalf("update room failed: %v", err)
	}
	if dto.TotalBeds != 4 || dto.AvailableBeds != 3 {
		t.Fatalf("expected counters grown together, got %d/%d", dto.AvailableBeds, dto.TotalBeds)
	}
	if _, ok := repo.roomUpdates["total_beds"]; !ok {
		t.Fatalf("expected total_beds update issued")
	}
}

func TestListByCityRequiresCity(t *testing.T) {
	svc, _ := NewService(&stubHostelsRepo{})

	_, err := svc.ListByCity(context.Background(), ListByCityInput{})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestListByCityAttachesAverageRating(t *testing.T) {
	hostelID := uuid.New()
	repo := &stubHostelsRepo{
		hostel:  &models.Hostel{ID: hostelID, OwnerID: uuid.New(), Name: "Sunrise", Address: "12 FC Road", City: "Pune"},
		ratings: map[uuid.UUID]float64{hostelID: 4.25},
	}
	svc, _ := NewService(repo)

	list, err := svc.ListByCity(context.Background(), ListByCityInput{City: "Pune"})
	if err != nil {
		t.Fatalf("list by city failed: %v", err)
	}
	if len(list.Hostels) != 1 {
		t.Fatalf("expected one hostel, got %d", len(list.Hostels))
	}
	if list.Hostels[0].AvgRating == nil || *list.Hostels[0].AvgRating != 4.25 {
		t.Fatalf("expected average rating 4.25, got %v", list.Hostels[0].AvgRating)
	}
}

func TestGetHostelWithoutReviewsOmitsRating(t *testing.T) {
	hostelID := uuid.New()
	repo := &stubHostelsRepo{hostel: &models.Hostel{ID: hostelID, OwnerID: uuid.New(), Name: "Sunrise", Address: "12 FC Road", City: "Pune"}}
	svc, _ := NewService(repo)

	dto, err := svc.GetHostel(context.Background(), hostelID)
	if err != nil {
		t.Fatalf("get hostel failed: %v", err)
	}
	if dto.AvgRating != nil {
		t.Fatalf("expected no rating without reviews, got %v", *dto.AvgRating)
	}
}

func TestDeleteHostelForbiddenForOtherOwner(t *testing.T) {
	hostelID := uuid.New()
	repo := &stubHostelsRepo{hostel: &models.Hostel{ID: hostelID, OwnerID: uuid.New()}}
	svc, _ := NewService(repo)

	err := svc.DeleteHostel(context.Background(), uuid.New(), hostelID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden error, got %v", err)
	}
	if len(repo.deletedHostels) != 0 {
		t.Fatalf("expected no delete issued")
	}
}

func TestDeleteHostelRemovesOwnedHostel(t *testing.T) {
	ownerID := uuid.New()
	hostelID := uuid.New()
	repo := &stubHostelsRepo{hostel: &models.Hostel{ID: hostelID, OwnerID: ownerID}}
	svc, _ := NewService(repo)

	if err := svc.DeleteHostel(context.Background(), ownerID, hostelID); err != nil {
		t.Fatalf("delete hostel failed: %v", err)
	}
	if len(repo.deletedHostels) != 1 || repo.deletedHostels[0] != hostelID {
		t.Fatalf("expected hostel delete issued, got %v", repo.deletedHostels)
	}
}

func TestDeleteRoomChecksHostelOwnership(t *testing.T) {
	hostelID := uuid.New()
	roomID := uuid.New()
	repo := &stubHostelsRepo{
		hostel: &models.Hostel{ID: hostelID, OwnerID: uuid.New()},
		room:   &models.Room{ID: roomID, HostelID: hostelID},
	}
	svc, _ := NewService(repo)

	err := svc.DeleteRoom(context.Background(), uuid.New(), roomID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden error, got %v", err)
	}

	if err := svc.DeleteRoom(context.Background(), repo.hostel.OwnerID, roomID); err != nil {
		t.Fatalf("delete room failed: %v", err)
	}
	if len(repo.deletedRooms) != 1 || repo.deletedRooms[0] != roomID {
		t.Fatalf("expected room delete issued, got %v", repo.deletedRooms)
	}
}
