package routes

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/staymate-io/staymate-backend/internal/auth"
	"github.com/staymate-io/staymate-backend/internal/bookings"
	"github.com/staymate-io/staymate-backend/internal/hostels"
	"github.com/staymate-io/staymate-backend/internal/media"
	"github.com/staymate-io/staymate-backend/internal/mess"
	"github.com/staymate-io/staymate-backend/internal/notifications"
	"github.com/staymate-io/staymate-backend/internal/reviews"
	"github.com/staymate-io/staymate-backend/internal/subscriptions"
	pkgAuth "github.com/staymate-io/staymate-backend/pkg/auth"
	"github.com/staymate-io/staymate-backend/pkg/auth/session"
	"github.com/staymate-io/staymate-backend/pkg/config"
	"github.com/staymate-io/staymate-backend/pkg/enums"
	"github.com/staymate-io/staymate-backend/pkg/logger"
	"github.com/staymate-io/staymate-backend/pkg/pagination"
	"github.com/staymate-io/staymate-backend/pkg/redis"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubAuthService struct{}

func (stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	return nil, fmt.Errorf("not implemented")
}

type stubRegisterService struct{}

func (stubRegisterService) Register(ctx context.Context, req auth.RegisterRequest) (*auth.RegisterResponse, error) {
	return &auth.RegisterResponse{}, nil
}

type stubSessionManager struct{}

func (stubSessionManager) HasSession(ctx context.Context, accessID string) (bool, error) {
	return true, nil
}

func (stubSessionManager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	return "", "", nil
}

func (stubSessionManager) Revoke(ctx context.Context, accessID string) error {
	return nil
}

type stubHostelService struct{}

func (stubHostelService) CreateHostel(ctx context.Context, ownerID uuid.UUID, input hostels.CreateHostelInput) (*hostels.HostelDTO, error) {
	return &hostels.HostelDTO{}, nil
}

func (stubHostelService) UpdateHostel(ctx context.Context, actorID, hostelID uuid.UUID, input hostels.UpdateHostelInput) (*hostels.HostelDTO, error) {
	return &hostels.HostelDTO{}, nil
}

func (stubHostelService) DeleteHostel(ctx context.Context, actorID, hostelID uuid.UUID) error {
	return nil
}

func (stubHostelService) GetHostel(ctx context.Context, id uuid.UUID) (*hostels.HostelDTO, error) {
	return &hostels.HostelDTO{}, nil
}

func (stubHostelService) ListByCity(ctx context.Context, input hostels.ListByCityInput) (*hostels.HostelList, error) {
	return &hostels.HostelList{}, nil
}

func (stubHostelService) ListOwnerHostels(ctx context.Context, ownerID uuid.UUID) ([]hostels.HostelDTO, error) {
	return nil, nil
}

func (stubHostelService) AddRoom(ctx context.Context, actorID, hostelID uuid.UUID, input hostels.AddRoomInput) (*hostels.RoomDTO, error) {
	return &hostels.RoomDTO{}, nil
}

func (stubHostelService) UpdateRoom(ctx context.Context, actorID, roomID uuid.UUID, input hostels.UpdateRoomInput) (*hostels.RoomDTO, error) {
	return &hostels.RoomDTO{}, nil
}

func (stubHostelService) DeleteRoom(ctx context.Context, actorID, roomID uuid.UUID) error {
	return nil
}

func (stubHostelService) ListRooms(ctx context.Context, hostelID uuid.UUID) ([]hostels.RoomDTO, error) {
	return nil, nil
}

type stubMessService struct{}

func (stubMessService) Create(ctx context.Context, ownerID uuid.UUID, input mess.CreateMessInput) (*mess.MessDTO, error) {
	return &mess.MessDTO{}, nil
}

func (stubMessService) Update(ctx context.Context, actorID, messID uuid.UUID, input mess.UpdateMessInput) (*mess.MessDTO, error) {
	return &mess.MessDTO{}, nil
}

func (stubMessService) Delete(ctx context.Context, actorID, messID uuid.UUID) error {
	return nil
}

func (stubMessService) GetByID(ctx context.Context, id uuid.UUID) (*mess.MessDTO, error) {
	return &mess.MessDTO{}, nil
}

func (stubMessService) ListByCity(ctx context.Context, city string, params pagination.Params) (*mess.MessList, error) {
	return &mess.MessList{}, nil
}

func (stubMessService) ListOwnerMesses(ctx context.Context, ownerID uuid.UUID) ([]mess.MessDTO, error) {
	return nil, nil
}

func (stubMessService) ListSubscribers(ctx context.Context, actorID, messID uuid.UUID, params pagination.Params) (*mess.SubscriberList, error) {
	return &mess.SubscriberList{}, nil
}

type stubBookingService struct {
	requested *bookings.RequestBookingInput
}

func (s *stubBookingService) RequestBooking(ctx context.Context, input bookings.RequestBookingInput) (*bookings.BookingDTO, error) {
	s.requested = &input
	return &bookings.BookingDTO{ID: uuid.New(), Status: enums.BookingStatusPending}, nil
}

func (s *stubBookingService) OwnerDecision(ctx context.Context, input bookings.OwnerDecisionInput) (*bookings.BookingDTO, error) {
	return &bookings.BookingDTO{ID: input.BookingID, Status: enums.BookingStatusConfirmed}, nil
}

func (s *stubBookingService) CancelByStudent(ctx context.Context, input bookings.StudentCancelInput) error {
	return nil
}

func (s *stubBookingService) ListStudentBookings(ctx context.Context, studentID uuid.UUID, params pagination.Params) (*bookings.StudentBookingList, error) {
	return &bookings.StudentBookingList{}, nil
}

func (s *stubBookingService) ListOwnerBookings(ctx context.Context, ownerID uuid.UUID, params pagination.Params) (*bookings.OwnerBookingList, error) {
	return &bookings.OwnerBookingList{}, nil
}

func (s *stubBookingService) ExpireStale(ctx context.Context, now time.Time) (int, error) {
	return 0, nil
}

type stubSubscriptionService struct{}

func (stubSubscriptionService) Subscribe(ctx context.Context, input subscriptions.SubscribeInput) (*subscriptions.SubscriptionDTO, error) {
	return &subscriptions.SubscriptionDTO{}, nil
}

func (stubSubscriptionService) Cancel(ctx context.Context, input subscriptions.CancelInput) error {
	return nil
}

func (stubSubscriptionService) ListStudentSubscriptions(ctx context.Context, studentID uuid.UUID, params pagination.Params) (*subscriptions.SubscriptionList, error) {
	return &subscriptions.SubscriptionList{}, nil
}

type stubReviewService struct{}

func (stubReviewService) Submit(ctx context.Context, input reviews.SubmitReviewInput) (*reviews.ReviewDTO, error) {
	return &reviews.ReviewDTO{}, nil
}

func (stubReviewService) Delete(ctx context.Context, actorID, reviewID uuid.UUID) error {
	return nil
}

func (stubReviewService) ListForProperty(ctx context.Context, kind enums.PropertyKind, propertyID uuid.UUID, params pagination.Params) (*reviews.ReviewList, error) {
	return &reviews.ReviewList{}, nil
}

type stubNotificationsService struct{}

func (stubNotificationsService) List(ctx context.Context, params notifications.ListParams) (*notifications.ListResult, error) {
	return &notifications.ListResult{}, nil
}

func (stubNotificationsService) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	return nil
}

func (stubNotificationsService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return 0, nil
}

type stubMediaService struct{}

func (stubMediaService) PresignUpload(ctx context.Context, userID uuid.UUID, input media.PresignInput) (*media.PresignOutput, error) {
	return &media.PresignOutput{}, nil
}

func (stubMediaService) PresignDownload(ctx context.Context, userID uuid.UUID, objectKey string) (*media.DownloadOutput, error) {
	return &media.DownloadOutput{}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:                 "secret",
			Issuer:                 "issuer",
			ExpirationMinutes:      60,
			RefreshTokenTTLMinutes: 120,
		},
	}
}

func newTestRouter(cfg *config.Config) (http.Handler, *stubBookingService) {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	bookingSvc := &stubBookingService{}
	router := NewRouter(
		cfg,
		logg,
		stubPinger{},
		(*redis.Client)(nil),
		stubSessionManager{},
		Services{
			Auth:          stubAuthService{},
			Register:      stubRegisterService{},
			Hostels:       stubHostelService{},
			Mess:          stubMessService{},
			Bookings:      bookingSvc,
			Subscriptions: stubSubscriptionService{},
			Reviews:       stubReviewService{},
			Notifications: stubNotificationsService{},
			Media:         stubMediaService{},
		},
	)
	return router, bookingSvc
}

func buildToken(t *testing.T, cfg *config.Config, role enums.UserRole) string {
	t.Helper()
	payload := pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
		JTI:    session.NewAccessID(),
	}
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), payload)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestPublicPingIsOpen(t *testing.T) {
	router, _ := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/public/ping", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestPublicHostelSearchIsOpen(t *testing.T) {
	router, _ := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/public/hostels?city=Pune", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestPrivateGroupRejectsMissingJWT(t *testing.T) {
	router, _ := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestPrivatePingAcceptsValidToken(t *testing.T) {
	cfg := testConfig()
	router, _ := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleStudent))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestBookingCreateRequiresStudentRole(t *testing.T) {
	cfg := testConfig()
	router, bookingSvc := newTestRouter(cfg)
	body := `{"hostel_id":"` + uuid.NewString() + `","room_type":"double","start_date":"2026-07-01"}`

	asOwner := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body))
	asOwner.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleHostelOwner))
	asOwner.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, asOwner)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for owner got %d", resp.Code)
	}
	if bookingSvc.requested != nil {
		t.Fatal("expected booking service to be untouched")
	}

	asStudent := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body))
	asStudent.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleStudent))
	asStudent.Header.Set("Content-Type", "application/json")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, asStudent)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 for student got %d", resp.Code)
	}
	if bookingSvc.requested == nil {
		t.Fatal("expected booking request to reach the service")
	}
	if bookingSvc.requested.RoomType != enums.RoomTypeDouble {
		t.Fatalf("expected double room got %s", bookingSvc.requested.RoomType)
	}
}

func TestBookingDecisionRequiresOwnerRole(t *testing.T) {
	cfg := testConfig()
	router, _ := newTestRouter(cfg)
	target := "/api/v1/bookings/" + uuid.NewString() + "/status"
	body := `{"status":"confirmed"}`

	asStudent := httptest.NewRequest(http.MethodPut, target, strings.NewReader(body))
	asStudent.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleStudent))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, asStudent)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for student got %d", resp.Code)
	}

	asOwner := httptest.NewRequest(http.MethodPut, target, strings.NewReader(body))
	asOwner.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleHostelOwner))
	asOwner.Header.Set("Content-Type", "application/json")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, asOwner)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for owner got %d", resp.Code)
	}
}

func TestHostelCreateRequiresHostelOwnerRole(t *testing.T) {
	cfg := testConfig()
	router, _ := newTestRouter(cfg)
	body := `{"name":"Sunrise Hostel","address":"12 College Rd","city":"Pune"}`

	asStudent := httptest.NewRequest(http.MethodPost, "/api/v1/hostels", strings.NewReader(body))
	asStudent.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleStudent))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, asStudent)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for student got %d", resp.Code)
	}
}

func TestMediaUploadURLRequiresOwnerRole(t *testing.T) {
	cfg := testConfig()
	router, _ := newTestRouter(cfg)
	body := `{"property_kind":"hostel","property_id":"` + uuid.NewString() +
		`","file_name":"front.jpg","mime_type":"image/jpeg","size_bytes":1024}`

	asStudent := httptest.NewRequest(http.MethodPost, "/api/v1/media/upload-url", strings.NewReader(body))
	asStudent.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleStudent))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, asStudent)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for student got %d", resp.Code)
	}

	asOwner := httptest.NewRequest(http.MethodPost, "/api/v1/media/upload-url", strings.NewReader(body))
	asOwner.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleMessOwner))
	asOwner.Header.Set("Content-Type", "application/json")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, asOwner)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for mess owner got %d", resp.Code)
	}
}

func TestMessSubscriptionRoutesRequireStudent(t *testing.T) {
	cfg := testConfig()
	router, _ := newTestRouter(cfg)

	asMessOwner := httptest.NewRequest(http.MethodGet, "/api/v1/mess-subscriptions", nil)
	asMessOwner.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleMessOwner))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, asMessOwner)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for mess owner got %d", resp.Code)
	}

	asStudent := httptest.NewRequest(http.MethodGet, "/api/v1/mess-subscriptions", nil)
	asStudent.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleStudent))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, asStudent)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for student got %d", resp.Code)
	}
}

func TestSubscriptionCancelAllowsMessOwner(t *testing.T) {
	cfg := testConfig()
	router, _ := newTestRouter(cfg)
	target := "/api/v1/mess-subscriptions/" + uuid.New().String()

	asMessOwner := httptest.NewRequest(http.MethodDelete, target, nil)
	asMessOwner.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleMessOwner))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, asMessOwner)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for mess owner got %d", resp.Code)
	}

	asHostelOwner := httptest.NewRequest(http.MethodDelete, target, nil)
	asHostelOwner.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleHostelOwner))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, asHostelOwner)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for hostel owner got %d", resp.Code)
	}
}
