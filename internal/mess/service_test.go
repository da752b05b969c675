package mess

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/staymate-io/staymate-backend/pkg/db/models"
	pkgerrors "github.com/staymate-io/staymate-backend/pkg/errors"
	"github.com/staymate-io/staymate-backend/pkg/pagination"
)

type stubMessRepo struct {
	mess        *models.MessService
	subscribers []subscriberRow
	ratings     map[uuid.UUID]float64
	deleted     []uuid.UUID
}

func (s *stubMessRepo) Create(ctx context.Context, mess *models.MessService) (*models.MessService, error) {
	if mess.ID == uuid.Nil {
		mess.ID = uuid.New()
	}
	s.mess = mess
	return mess, nil
}

func (s *stubMessRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.MessService, error) {
	if s.mess == nil || s.mess.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.mess, nil
}

func (s *stubMessRepo) Update(ctx context.Context, mess *models.MessService) error {
	s.mess = mess
	return nil
}

func (s *stubMessRepo) ListByCity(ctx context.Context, city string, limit int, cursor *pagination.Cursor) ([]models.MessService, *pagination.Cursor, error) {
	if s.mess != nil && s.mess.City == city {
		return []models.MessService{*s.mess}, nil, nil
	}
	return []models.MessService{}, nil, nil
}

func (s *stubMessRepo) ListOwnerMesses(ctx context.Context, ownerID uuid.UUID) ([]models.MessService, error) {
	if s.mess != nil && s.mess.OwnerID == ownerID {
		return []models.MessService{*s.mess}, nil
	}
	return []models.MessService{}, nil
}

func (s *stubMessRepo) Delete(ctx context.Context, id uuid.UUID) error {
	s.deleted = append(s.deleted, id)
	s.mess = nil
	return nil
}

func (s *stubMessRepo) ListActiveSubscribers(ctx context.Context, messID uuid.UUID, limit int, cursor *pagination.Cursor) ([]subscriberRow, *pagination.Cursor, error) {
	return s.subscribers, nil, nil
}

func (s *stubMessRepo) AverageRatings(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]float64, error) {
	result := map[uuid.UUID]float64{}
	for _, id := range ids {
		if avg, ok := s.ratings[id]; ok {
			result[id] = avg
		}
	}
	return result, nil
}

func TestCreateMessRejectsNonPositivePrice(t *testing.T) {
	svc, err := NewService(&stubMessRepo{})
	if err != nil {
		t.Fatalf("service constructor failed: %v", err)
	}

	_, err = svc.Create(context.Background(), uuid.New(), CreateMessInput{
		Name:         "Annapurna",
		Address:      "5 MG Road",
		City:         "Pune",
		MonthlyPrice: decimal.Zero,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateMessPersists(t *testing.T) {
	repo := &stubMessRepo{}
	svc, _ := NewService(repo)
	ownerID := uuid.New()

	dto, err := svc.Create(context.Background(), ownerID, CreateMessInput{
		Name:             "Annapurna Mess",
		Address:          "5 MG Road",
		City:             "Pune",
		MonthlyPrice:     decimal.NewFromInt(3200),
		DeliveryRadiusKM: 3,
	})
	if err != nil {
		t.Fatalf("create mess failed: %v", err)
	}
	if dto.OwnerID != ownerID {
		t.Fatalf("expected owner id carried onto mess")
	}
	if !dto.MonthlyPrice.Equal(decimal.NewFromInt(3200)) {
		t.Fatalf("unexpected monthly price %s", dto.MonthlyPrice)
	}
}

func TestUpdateMessForbiddenForOtherOwner(t *testing.T) {
	messID := uuid.New()
	repo := &stubMessRepo{mess: &models.MessService{ID: messID, OwnerID: uuid.New(), Name: "Annapurna", Address: "5 MG Road", City: "Pune"}}
	svc, _ := NewService(repo)

	name := "Hijacked"
	_, err := svc.Update(context.Background(), uuid.New(), messID, UpdateMessInput{Name: &name})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden error, got %v", err)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	svc, _ := NewService(&stubMessRepo{})

	_, err := svc.GetByID(context.Background(), uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestListByCityAttachesAverageRating(t *testing.T) {
	messID := uuid.New()
	repo := &stubMessRepo{
		mess:    &models.MessService{ID: messID, OwnerID: uuid.New(), Name: "Annapurna", Address: "5 MG Road", City: "Pune"},
		ratings: map[uuid.UUID]float64{messID: 3.8},
	}
	svc, _ := NewService(repo)

	list, err := svc.ListByCity(context.Background(), "Pune", pagination.Params{})
	if err != nil {
		t.Fatalf("list by city failed: %v", err)
	}
	if len(list.Messes) != 1 {
		t.Fatalf("expected one mess, got %d", len(list.Messes))
	}
	if list.Messes[0].AvgRating == nil || *list.Messes[0].AvgRating != 3.8 {
		t.Fatalf("expected average rating 3.8, got %v", list.Messes[0].AvgRating)
	}
}

func TestDeleteForbiddenForOtherOwner(t *testing.T) {
	messID := uuid.New()
	repo := &stubMessRepo{mess: &models.MessService{ID: messID, OwnerID: uuid.New(), Name: "Annapurna", Address: "5 MG Road", City: "Pune"}}
	svc, _ := NewService(repo)

	err := svc.Delete(context.Background(), uuid.New(), messID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden error, got %v", err)
	}
	if len(repo.deleted) != 0 {
		t.Fatalf("expected no delete issued")
	}
}

func TestDeleteRemovesOwnedMess(t *testing.T) {
	messID := uuid.New()
	ownerID := uuid.New()
	repo := &stubMessRepo{mess: &models.MessService{ID: messID, OwnerID: ownerID, Name: "Annapurna", Address: "5 MG Road", City: "Pune"}}
	svc, _ := NewService(repo)

	if err := svc.Delete(context.Background(), ownerID, messID); err != nil {
		t.Fatalf("delete mess failed: %v", err)
	}
	if len(repo.deleted) != 1 || repo.deleted[0] != messID {
		t.Fatalf("expected mess delete issued, got %v", repo.deleted)
	}
}

func TestListSubscribersForbiddenForOtherOwner(t *testing.T) {
	messID := uuid.New()
	repo := &stubMessRepo{mess: &models.MessService{ID: messID, OwnerID: uuid.New(), Name: "Annapurna", Address: "5 MG Road", City: "Pune"}}
	svc, _ := NewService(repo)

	_, err := svc.ListSubscribers(context.Background(), uuid.New(), messID, pagination.Params{})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden error, got %v", err)
	}
}

func TestListSubscribersReturnsRows(t *testing.T) {
	messID := uuid.New()
	ownerID := uuid.New()
	studentID := uuid.New()
	repo := &stubMessRepo{
		mess: &models.MessService{ID: messID, OwnerID: ownerID, Name: "Annapurna", Address: "5 MG Road", City: "Pune"},
		subscribers: []subscriberRow{
			{ID: uuid.New(), StudentID: studentID, StudentName: "Asha Rao", StudentEmail: "asha@example.com"},
		},
	}
	svc, _ := NewService(repo)

	list, err := svc.ListSubscribers(context.Background(), ownerID, messID, pagination.Params{})
	if err != nil {
		t.Fatalf("list subscribers failed: %v", err)
	}
	if len(list.Subscribers) != 1 {
		t.Fatalf("expected one subscriber, got %d", len(list.Subscribers))
	}
	if list.Subscribers[0].StudentID != studentID || list.Subscribers[0].StudentEmail != "asha@example.com" {
		t.Fatalf("unexpected subscriber row: %+v", list.Subscribers[0])
	}
}
