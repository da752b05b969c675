package subscriptions

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/staymate-io/staymate-backend/pkg/db/models"
	"github.com/staymate-io/staymate-backend/pkg/enums"
	pkgerrors "github.com/staymate-io/staymate-backend/pkg/errors"
	"github.com/staymate-io/staymate-backend/pkg/outbox"
	"github.com/staymate-io/staymate-backend/pkg/pagination"
)

type stubSubscriptionsRepo struct {
	mess        *models.MessService
	sub         *models.MessSubscription
	active      *models.MessSubscription
	deactivated int

	createSubscription func(ctx context.Context, sub *models.MessSubscription) (*models.MessSubscription, error)
}

func (s *stubSubscriptionsRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubSubscriptionsRepo) CreateSubscription(ctx context.Context, sub *models.MessSubscription) (*models.MessSubscription, error) {
	if s.createSubscription != nil {
		return s.createSubscription(ctx, sub)
	}
	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	s.sub = sub
	return sub, nil
}

func (s *stubSubscriptionsRepo) FindSubscription(ctx context.Context, id uuid.UUID) (*models.MessSubscription, error) {
	if s.sub == nil || s.sub.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.sub, nil
}

func (s *stubSubscriptionsRepo) FindActiveSubscription(ctx context.Context, studentID, messID uuid.UUID) (*models.MessSubscription, error) {
	if s.active == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.active, nil
}

func (s *stubSubscriptionsRepo) FindMess(ctx context.Context, id uuid.UUID) (*models.MessService, error) {
	if s.mess == nil || s.mess.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.mess, nil
}

func (s *stubSubscriptionsRepo) DeactivateSubscription(ctx context.Context, id uuid.UUID) (int64, error) {
	if s.sub == nil || s.sub.ID != id || !s.sub.IsActive {
		return 0, nil
	}
	s.sub.IsActive = false
	s.deactivated++
	return 1, nil
}

func (s *stubSubscriptionsRepo) ListStudentSubscriptions(ctx context.Context, studentID uuid.UUID, limit int, cursor *pagination.Cursor) ([]SubscriptionSummary, *pagination.Cursor, error) {
	return []SubscriptionSummary{}, nil, nil
}

type stubOutboxPublisher struct {
	events []outbox.DomainEvent
	err    error
}

func (s *stubOutboxPublisher) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, event)
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func TestSubscribeActivatesImmediately(t *testing.T) {
	messID := uuid.New()
	studentID := uuid.New()
	repo := &stubSubscriptionsRepo{
		mess: &models.MessService{ID: messID, OwnerID: uuid.New(), Name: "Annapurna Mess", City: "Pune"},
	}
	ob := &stubOutboxPublisher{}
	svc, err := NewService(repo, stubTxRunner{}, ob)
	if err != nil {
		t.Fatalf("service constructor failed: %v", err)
	}

	dto, err := svc.Subscribe(context.Background(), SubscribeInput{StudentID: studentID, MessID: messID})
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	if !dto.IsActive {
		t.Fatal("expected subscription active on creation")
	}
	if len(ob.events) != 1 || ob.events[0].EventType != enums.EventSubscriptionStarted {
		t.Fatalf("expected subscription_started event, got %+v", ob.events)
	}
}

func TestSubscribeDuplicateActiveRejected(t *testing.T) {
	messID := uuid.New()
	studentID := uuid.New()
	repo := &stubSubscriptionsRepo{
		mess:   &models.MessService{ID: messID, OwnerID: uuid.New()},
		active: &models.MessSubscription{ID: uuid.New(), StudentID: studentID, MessID: messID, IsActive: true},
	}
	svc, _ := NewService(repo, stubTxRunner{}, &stubOutboxPublisher{})

	_, err := svc.Subscribe(context.Background(), SubscribeInput{StudentID: studentID, MessID: messID})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestSubscribeUniqueViolationMapsToConflict(t *testing.T) {
	messID := uuid.New()
	repo := &stubSubscriptionsRepo{
		mess: &models.MessService{ID: messID, OwnerID: uuid.New()},
		createSubscription: func(ctx context.Context, sub *models.MessSubscription) (*models.MessSubscription, error) {
			return nil, errUniqueViolation{}
		},
	}
	svc, _ := NewService(repo, stubTxRunner{}, &stubOutboxPublisher{})

	_, err := svc.Subscribe(context.Background(), SubscribeInput{StudentID: uuid.New(), MessID: messID})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict on unique violation, got %v", err)
	}
}

type errUniqueViolation struct{}

func (errUniqueViolation) Error() string {
	return `duplicate key value violates unique constraint "ux_mess_subscriptions_student_mess_active"`
}

func TestSubscribeMessNotFound(t *testing.T) {
	svc, _ := NewService(&stubSubscriptionsRepo{}, stubTxRunner{}, &stubOutboxPublisher{})

	_, err := svc.Subscribe(context.Background(), SubscribeInput{StudentID: uuid.New(), MessID: uuid.New()})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestCancelDeactivatesAndEmits(t *testing.T) {
	subID := uuid.New()
	studentID := uuid.New()
	repo := &stubSubscriptionsRepo{
		sub: &models.MessSubscription{ID: subID, StudentID: studentID, MessID: uuid.New(), IsActive: true},
	}
	ob := &stubOutboxPublisher{}
	svc, _ := NewService(repo, stubTxRunner{}, ob)

	if err := svc.Cancel(context.Background(), CancelInput{SubscriptionID: subID, ActorUserID: studentID}); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if repo.deactivated != 1 {
		t.Fatalf("expected one deactivation, got %d", repo.deactivated)
	}
	if len(ob.events) != 1 || ob.events[0].EventType != enums.EventSubscriptionCancelled {
		t.Fatalf("expected subscription_cancelled event, got %+v", ob.events)
	}
}

func TestCancelInactiveIsNoOp(t *testing.T) {
	subID := uuid.New()
	studentID := uuid.New()
	cancelledAt := time.Now().UTC()
	repo := &stubSubscriptionsRepo{
		sub: &models.MessSubscription{ID: subID, StudentID: studentID, MessID: uuid.New(), IsActive: false, CancelledAt: &cancelledAt},
	}
	ob := &stubOutboxPublisher{}
	svc, _ := NewService(repo, stubTxRunner{}, ob)

	if err := svc.Cancel(context.Background(), CancelInput{SubscriptionID: subID, ActorUserID: studentID}); err != nil {
		t.Fatalf("repeat cancel failed: %v", err)
	}
	if repo.deactivated != 0 || len(ob.events) != 0 {
		t.Fatalf("expected no side effects on repeat cancel")
	}
}

func TestCancelByMessOwner(t *testing.T) {
	subID := uuid.New()
	messID := uuid.New()
	ownerID := uuid.New()
	repo := &stubSubscriptionsRepo{
		mess: &models.MessService{ID: messID, OwnerID: ownerID},
		sub:  &models.MessSubscription{ID: subID, StudentID: uuid.New(), MessID: messID, IsActive: true},
	}
	ob := &stubOutboxPublisher{}
	svc, _ := NewService(repo, stubTxRunner{}, ob)

	err := svc.Cancel(context.Background(), CancelInput{
		SubscriptionID: subID,
		ActorUserID:    ownerID,
		ActorRole:      enums.UserRoleMessOwner,
	})
	if err != nil {
		t.Fatalf("owner cancel failed: %v", err)
	}
	if repo.deactivated != 1 {
		t.Fatalf("expected one deactivation, got %d", repo.deactivated)
	}
	if len(ob.events) != 1 || ob.events[0].Actor == nil || ob.events[0].Actor.Role != string(enums.UserRoleMessOwner) {
		t.Fatalf("expected cancellation event attributed to mess owner, got %+v", ob.events)
	}
}

func TestCancelForbiddenForUnrelatedActor(t *testing.T) {
	subID := uuid.New()
	messID := uuid.New()
	repo := &stubSubscriptionsRepo{
		mess: &models.MessService{ID: messID, OwnerID: uuid.New()},
		sub:  &models.MessSubscription{ID: subID, StudentID: uuid.New(), MessID: messID, IsActive: true},
	}
	svc, _ := NewService(repo, stubTxRunner{}, &stubOutboxPublisher{})

	err := svc.Cancel(context.Background(), CancelInput{SubscriptionID: subID, ActorUserID: uuid.New()})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden error, got %v", err)
	}
}
