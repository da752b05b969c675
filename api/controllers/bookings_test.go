package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/staymate-io/staymate-backend/api/middleware"
	"github.com/staymate-io/staymate-backend/internal/bookings"
	"github.com/staymate-io/staymate-backend/pkg/enums"
	"github.com/staymate-io/staymate-backend/pkg/logger"
	"github.com/staymate-io/staymate-backend/pkg/pagination"
)

type stubBookingService struct {
	requestFn  func(ctx context.Context, input bookings.RequestBookingInput) (*bookings.BookingDTO, error)
	decisionFn func(ctx context.Context, input bookings.OwnerDecisionInput) (*bookings.BookingDTO, error)
	cancelFn   func(ctx context.Context, input bookings.StudentCancelInput) error
}

func (s *stubBookingService) RequestBooking(ctx context.Context, input bookings.RequestBookingInput) (*bookings.BookingDTO, error) {
	if s.requestFn != nil {
		return s.requestFn(ctx, input)
	}
	return &bookings.BookingDTO{ID: uuid.New(), Status: enums.BookingStatusPending}, nil
}

func (s *stubBookingService) OwnerDecision(ctx context.Context, input bookings.OwnerDecisionInput) (*bookings.BookingDTO, error) {
	if s.decisionFn != nil {
		return s.decisionFn(ctx, input)
	}
	return &bookings.BookingDTO{ID: input.BookingID, Status: enums.BookingStatusConfirmed}, nil
}

func (s *stubBookingService) CancelByStudent(ctx context.Context, input bookings.StudentCancelInput) error {
	if s.cancelFn != nil {
		return s.cancelFn(ctx, input)
	}
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

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func addRouteParam(r *http.Request, key, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, routeCtx))
}

func authenticatedRequest(method, target string, body []byte, userID uuid.UUID) *http.Request {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	return req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
}

func TestBookingCreateDispatchesParsedInput(t *testing.T) {
	studentID := uuid.New()
	hostelID := uuid.New()

	var captured bookings.RequestBookingInput
	svc := &stubBookingService{
		requestFn: func(_ context.Context, input bookings.RequestBookingInput) (*bookings.BookingDTO, error) {
			captured = input
			return &bookings.BookingDTO{ID: uuid.New(), StudentID: input.StudentID, Status: enums.BookingStatusPending}, nil
		},
	}

	body := []byte(`{"hostel_id":"` + hostelID.String() + `","room_type":"double","start_date":"2026-09-01"}`)
	req := authenticatedRequest(http.MethodPost, "/api/v1/bookings", body, studentID)
	resp := httptest.NewRecorder()

	BookingCreate(svc, testLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	if captured.StudentID != studentID {
		t.Errorf("expected student id %s, got %s", studentID, captured.StudentID)
	}
	if captured.HostelID != hostelID {
		t.Errorf("expected hostel id %s, got %s", hostelID, captured.HostelID)
	}
	if captured.RoomType != enums.RoomTypeDouble {
		t.Errorf("expected room type double, got %s", captured.RoomType)
	}
	if got := captured.StartDate.Format(time.DateOnly); got != "2026-09-01" {
		t.Errorf("expected start date 2026-09-01, got %s", got)
	}

	var envelope struct {
		Data bookings.BookingDTO `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data.Status != enums.BookingStatusPending {
		t.Errorf("expected pending status, got %s", envelope.Data.Status)
	}
}

func TestBookingCreateRejectsBadStartDate(t *testing.T) {
	svc := &stubBookingService{
		requestFn: func(_ context.Context, _ bookings.RequestBookingInput) (*bookings.BookingDTO, error) {
			t.Fatal("service should not be called")
			return nil, nil
		},
	}

	body := []byte(`{"hostel_id":"` + uuid.New().String() + `","room_type":"double","start_date":"next week"}`)
	req := authenticatedRequest(http.MethodPost, "/api/v1/bookings", body, uuid.New())
	resp := httptest.NewRecorder()

	BookingCreate(svc, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestBookingCreateRequiresIdentity(t *testing.T) {
	body := []byte(`{"hostel_id":"` + uuid.New().String() + `","room_type":"single","start_date":"2026-09-01"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", bytes.NewReader(body))
	resp := httptest.NewRecorder()

	BookingCreate(&stubBookingService{}, testLogger())(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestBookingDecisionParsesStatus(t *testing.T) {
	ownerID := uuid.New()
	bookingID := uuid.New()

	var captured bookings.OwnerDecisionInput
	svc := &stubBookingService{
		decisionFn: func(_ context.Context, input bookings.OwnerDecisionInput) (*bookings.BookingDTO, error) {
			captured = input
			return &bookings.BookingDTO{ID: input.BookingID, Status: enums.BookingStatusCancelled}, nil
		},
	}

	req := authenticatedRequest(http.MethodPut, "/api/v1/bookings/"+bookingID.String()+"/status", []byte(`{"status":"cancelled"}`), ownerID)
	req = req.WithContext(middleware.WithRole(req.Context(), string(enums.UserRoleHostelOwner)))
	req = addRouteParam(req, "bookingId", bookingID.String())
	resp := httptest.NewRecorder()

	BookingDecision(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if captured.BookingID != bookingID {
		t.Errorf("expected booking id %s, got %s", bookingID, captured.BookingID)
	}
	if captured.Decision != bookings.BookingDecisionCancel {
		t.Errorf("expected cancel decision, got %s", captured.Decision)
	}
	if captured.ActorUserID != ownerID {
		t.Errorf("expected actor %s, got %s", ownerID, captured.ActorUserID)
	}
	if captured.ActorRole != enums.UserRoleHostelOwner {
		t.Errorf("expected hostel owner role, got %s", captured.ActorRole)
	}
}

func TestBookingDecisionRejectsUnknownStatus(t *testing.T) {
	svc := &stubBookingService{
		decisionFn: func(_ context.Context, _ bookings.OwnerDecisionInput) (*bookings.BookingDTO, error) {
			t.Fatal("service should not be called")
			return nil, nil
		},
	}

	bookingID := uuid.New()
	req := authenticatedRequest(http.MethodPut, "/api/v1/bookings/"+bookingID.String()+"/status", []byte(`{"status":"maybe"}`), uuid.New())
	req = addRouteParam(req, "bookingId", bookingID.String())
	resp := httptest.NewRecorder()

	BookingDecision(svc, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestBookingCancelReturnsStatus(t *testing.T) {
	studentID := uuid.New()
	bookingID := uuid.New()

	var captured bookings.StudentCancelInput
	svc := &stubBookingService{
		cancelFn: func(_ context.Context, input bookings.StudentCancelInput) error {
			captured = input
			return nil
		},
	}

	req := authenticatedRequest(http.MethodDelete, "/api/v1/bookings/"+bookingID.String(), nil, studentID)
	req = addRouteParam(req, "bookingId", bookingID.String())
	resp := httptest.NewRecorder()

	BookingCancel(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if captured.BookingID != bookingID || captured.ActorUserID != studentID {
		t.Errorf("unexpected cancel input: %+v", captured)
	}

	var envelope struct {
		Data map[string]string `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data["status"] != "cancelled" {
		t.Errorf("expected cancelled status, got %q", envelope.Data["status"])
	}
}
