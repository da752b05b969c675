package controllers

import (
	"net/http"
	"time"

	"github.com/staymate-io/staymate-backend/api/middleware"
	"github.com/staymate-io/staymate-backend/api/responses"
	"github.com/staymate-io/staymate-backend/api/validators"
	"github.com/staymate-io/staymate-backend/internal/bookings"
	"github.com/staymate-io/staymate-backend/internal/subscriptions"
	"github.com/staymate-io/staymate-backend/pkg/enums"
	pkgerrors "github.com/staymate-io/staymate-backend/pkg/errors"
	"github.com/staymate-io/staymate-backend/pkg/logger"
)

type createBookingRequest struct {
	HostelID  string `json:"hostel_id" validate:"required,uuid"`
	RoomType  string `json:"room_type" validate:"required"`
	StartDate string `json:"start_date" validate:"required"`
}

type bookingDecisionRequest struct {
	Status string `json:"status" validate:"required"`
}

// BookingCreate places a pending booking for the authenticated student.
func BookingCreate(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "bookings service unavailable"))
			return
		}

		studentID, err := authenticatedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createBookingRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		hostelID, err := parseUUIDField(body.HostelID, "hostel_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		roomType, err := enums.ParseRoomType(body.RoomType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid room type"))
			return
		}

		startDate, err := time.Parse(time.DateOnly, body.StartDate)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "start_date must be YYYY-MM-DD"))
			return
		}

		result, err := svc.RequestBooking(r.Context(), bookings.RequestBookingInput{
			StudentID: studentID,
			HostelID:  hostelID,
			RoomType:  roomType,
			StartDate: startDate,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// BookingDecision lets the hostel owner confirm or reject a pending booking.
func BookingDecision(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "bookings service unavailable"))
			return
		}

		actorID, err := authenticatedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		bookingID, err := pathUUID(r, "bookingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body bookingDecisionRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		decision, err := bookings.ParseDecision(body.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.OwnerDecision(r.Context(), bookings.OwnerDecisionInput{
			BookingID:   bookingID,
			Decision:    decision,
			ActorUserID: actorID,
			ActorRole:   enums.UserRole(middleware.RoleFromContext(r.Context())),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// BookingCancel withdraws the authenticated student's own booking.
func BookingCancel(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "bookings service unavailable"))
			return
		}

		studentID, err := authenticatedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		bookingID, err := pathUUID(r, "bookingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.CancelByStudent(r.Context(), bookings.StudentCancelInput{
			BookingID:   bookingID,
			ActorUserID: studentID,
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "cancelled"})
	}
}

type studentDashboardResponse struct {
	Bookings            []bookings.StudentBookingSummary    `json:"bookings"`
	BookingsCursor      string                              `json:"bookings_cursor,omitempty"`
	MessSubscriptions   []subscriptions.SubscriptionSummary `json:"mess_subscriptions"`
	SubscriptionsCursor string                              `json:"subscriptions_cursor,omitempty"`
}

// StudentBookings lists the authenticated student's bookings together with
// their mess subscriptions, both joined with listing names.
func StudentBookings(svc bookings.Service, subsSvc subscriptions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || subsSvc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "bookings service unavailable"))
			return
		}

		studentID, err := authenticatedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := paginationFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		bookingList, err := svc.ListStudentBookings(r.Context(), studentID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		subscriptionList, err := subsSvc.ListStudentSubscriptions(r.Context(), studentID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, studentDashboardResponse{
			Bookings:            bookingList.Bookings,
			BookingsCursor:      bookingList.NextCursor,
			MessSubscriptions:   subscriptionList.Subscriptions,
			SubscriptionsCursor: subscriptionList.NextCursor,
		})
	}
}

// OwnerBookings lists bookings across every hostel the owner manages.
func OwnerBookings(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "bookings service unavailable"))
			return
		}

		ownerID, err := authenticatedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := paginationFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListOwnerBookings(r.Context(), ownerID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
