package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/staymate-io/staymate-backend/api/responses"
	"github.com/staymate-io/staymate-backend/api/validators"
	"github.com/staymate-io/staymate-backend/internal/hostels"
	"github.com/staymate-io/staymate-backend/pkg/enums"
	pkgerrors "github.com/staymate-io/staymate-backend/pkg/errors"
	"github.com/staymate-io/staymate-backend/pkg/logger"
)

type createHostelRequest struct {
	Name        string   `json:"name" validate:"required,min=2,max=120"`
	Address     string   `json:"address" validate:"required,max=255"`
	City        string   `json:"city" validate:"required,max=80"`
	Description *string  `json:"description,omitempty"`
	Amenities   []string `json:"amenities,omitempty"`
	Images      []string `json:"images,omitempty"`
}

type updateHostelRequest struct {
	Name        *string   `json:"name,omitempty"`
	Address     *string   `json:"address,omitempty"`
	City        *string   `json:"city,omitempty"`
	Description *string   `json:"description,omitempty"`
	Amenities   *[]string `json:"amenities,omitempty"`
	Images      *[]string `json:"images,omitempty"`
}

type createRoomRequest struct {
	RoomType        string `json:"room_type" validate:"required"`
	PricePerMonth   string `json:"price_per_month" validate:"required"`
	TotalBeds       int    `json:"total_beds" validate:"required,gt=0"`
	HasAttachedBath bool   `json:"has_attached_bath"`
}

type updateRoomRequest struct {
	PricePerMonth   *string `json:"price_per_month,omitempty"`
	HasAttachedBath *bool   `json:"has_attached_bath,omitempty"`
	AddBeds         *int    `json:"add_beds,omitempty"`
}

// HostelSearch lists hostels in a city with optional room filters.
func HostelSearch(svc hostels.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "hostels service unavailable"))
			return
		}

		params, err := paginationFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := hostels.ListByCityInput{
			City:       strings.TrimSpace(r.URL.Query().Get("city")),
			Pagination: params,
		}

		if raw := strings.TrimSpace(r.URL.Query().Get("room_type")); raw != "" {
			roomType, err := enums.ParseRoomType(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid room type"))
				return
			}
			input.RoomType = &roomType
		}

		if raw := strings.TrimSpace(r.URL.Query().Get("only_vacant")); raw != "" {
			value, err := strconv.ParseBool(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid only_vacant value"))
				return
			}
			input.OnlyVacant = value
		}

		result, err := svc.ListByCity(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// HostelDetail returns one hostel with its room inventory.
func HostelDetail(svc hostels.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "hostels service unavailable"))
			return
		}

		hostelID, err := pathUUID(r, "hostelId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.GetHostel(r.Context(), hostelID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// HostelCreate registers a hostel owned by the authenticated user.
func HostelCreate(svc hostels.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "hostels service unavailable"))
			return
		}

		ownerID, err := authenticatedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createHostelRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.CreateHostel(r.Context(), ownerID, hostels.CreateHostelInput{
			Name:        body.Name,
			Address:     body.Address,
			City:        body.City,
			Description: body.Description,
			Amenities:   body.Amenities,
			Images:      body.Images,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// HostelUpdate mutates a hostel the authenticated owner controls.
func HostelUpdate(svc hostels.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "hostels service unavailable"))
			return
		}

		ownerID, err := authenticatedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		hostelID, err := pathUUID(r, "hostelId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateHostelRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.UpdateHostel(r.Context(), ownerID, hostelID, hostels.UpdateHostelInput{
			Name:        body.Name,
			Address:     body.Address,
			City:        body.City,
			Description: body.Description,
			Amenities:   body.Amenities,
			Images:      body.Images,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// HostelDelete removes a hostel the authenticated owner controls.
func HostelDelete(svc hostels.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "hostels service unavailable"))
			return
		}

		ownerID, err := authenticatedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		hostelID, err := pathUUID(r, "hostelId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteHostel(r.Context(), ownerID, hostelID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// OwnerHostels lists every hostel the authenticated owner manages.
func OwnerHostels(svc hostels.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "hostels service unavailable"))
			return
		}

		ownerID, err := authenticatedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListOwnerHostels(r.Context(), ownerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"hostels": result})
	}
}

// RoomCreate adds a room type to a hostel.
func RoomCreate(svc hostels.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "hostels service unavailable"))
			return
		}

		ownerID, err := authenticatedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		hostelID, err := pathUUID(r, "hostelId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createRoomRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		roomType, err := enums.ParseRoomType(body.RoomType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid room type"))
			return
		}

		price, err := decimal.NewFromString(body.PricePerMonth)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price"))
			return
		}

		result, err := svc.AddRoom(r.Context(), ownerID, hostelID, hostels.AddRoomInput{
			RoomType:        roomType,
			PricePerMonth:   price,
			TotalBeds:       body.TotalBeds,
			HasAttachedBath: body.HasAttachedBath,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// RoomUpdate mutates a room's price, bath flag, or bed count.
func RoomUpdate(svc hostels.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "hostels service unavailable"))
			return
		}

		ownerID, err := authenticatedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		roomID, err := pathUUID(r, "roomId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateRoomRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := hostels.UpdateRoomInput{
			HasAttachedBath: body.HasAttachedBath,
			AddBeds:         body.AddBeds,
		}
		if body.PricePerMonth != nil {
			price, err := decimal.NewFromString(*body.PricePerMonth)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price"))
				return
			}
			input.PricePerMonth = &price
		}

		result, err := svc.UpdateRoom(r.Context(), ownerID, roomID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// RoomDelete removes a room type from a hostel the owner controls.
func RoomDelete(svc hostels.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "hostels service unavailable"))
			return
		}

		ownerID, err := authenticatedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		roomID, err := pathUUID(r, "roomId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteRoom(r.Context(), ownerID, roomID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// RoomList returns the room inventory of a hostel.
func RoomList(svc hostels.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "hostels service unavailable"))
			return
		}

		hostelID, err := pathUUID(r, "hostelId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListRooms(r.Context(), hostelID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"rooms": result})
	}
}
