package controllers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/staymate-io/staymate-backend/api/responses"
	"github.com/staymate-io/staymate-backend/api/validators"
	"github.com/staymate-io/staymate-backend/internal/mess"
	pkgerrors "github.com/staymate-io/staymate-backend/pkg/errors"
	"github.com/staymate-io/staymate-backend/pkg/logger"
)

type createMessRequest struct {
	Name             string   `json:"name" validate:"required,min=2,max=120"`
	Address          string   `json:"address" validate:"required,max=255"`
	City             string   `json:"city" validate:"required,max=80"`
	Description      *string  `json:"description,omitempty"`
	MonthlyPrice     string   `json:"monthly_price" validate:"required"`
	DeliveryRadiusKM int      `json:"delivery_radius_km"`
	Images           []string `json:"images,omitempty"`
}

type updateMessRequest struct {
	Name             *string   `json:"name,omitempty"`
	Address          *string   `json:"address,omitempty"`
	City             *string   `json:"city,omitempty"`
	Description      *string   `json:"description,omitempty"`
	MonthlyPrice     *string   `json:"monthly_price,omitempty"`
	DeliveryRadiusKM *int      `json:"delivery_radius_km,omitempty"`
	Images           *[]string `json:"images,omitempty"`
}

// MessSearch lists mess services in a city.
func MessSearch(svc mess.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "mess service unavailable"))
			return
		}

		params, err := paginationFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		city := strings.TrimSpace(r.URL.Query().Get("city"))
		result, err := svc.ListByCity(r.Context(), city, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// MessDetail returns one mess service.
func MessDetail(svc mess.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "mess service unavailable"))
			return
		}

		messID, err := pathUUID(r, "messId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.GetByID(r.Context(), messID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// MessCreate registers a mess service owned by the authenticated user.
func MessCreate(svc mess.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "mess service unavailable"))
			return
		}

		ownerID, err := authenticatedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createMessRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		price, err := decimal.NewFromString(body.MonthlyPrice)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price"))
			return
		}

		result, err := svc.Create(r.Context(), ownerID, mess.CreateMessInput{
			Name:             body.Name,
			Address:          body.Address,
			City:             body.City,
			Description:      body.Description,
			MonthlyPrice:     price,
			DeliveryRadiusKM: body.DeliveryRadiusKM,
			Images:           body.Images,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// MessUpdate mutates a mess the authenticated owner controls.
func MessUpdate(svc mess.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "mess service unavailable"))
			return
		}

		ownerID, err := authenticatedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		messID, err := pathUUID(r, "messId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateMessRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := mess.UpdateMessInput{
			Name:             body.Name,
			Address:          body.Address,
			City:             body.City,
			Description:      body.Description,
			DeliveryRadiusKM: body.DeliveryRadiusKM,
			Images:           body.Images,
		}
		if body.MonthlyPrice != nil {
			price, err := decimal.NewFromString(*body.MonthlyPrice)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price"))
				return
			}
			input.MonthlyPrice = &price
		}

		result, err := svc.Update(r.Context(), ownerID, messID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// MessDelete removes a mess the authenticated owner controls.
func MessDelete(svc mess.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "mess service unavailable"))
			return
		}

		ownerID, err := authenticatedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		messID, err := pathUUID(r, "messId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), ownerID, messID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// OwnerMesses lists every mess the authenticated owner manages.
func OwnerMesses(svc mess.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "mess service unavailable"))
			return
		}

		ownerID, err := authenticatedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListOwnerMesses(r.Context(), ownerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"mess_services": result})
	}
}

// MessSubscribers lists the active subscribers of a mess the owner manages.
func MessSubscribers(svc mess.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "mess service unavailable"))
			return
		}

		ownerID, err := authenticatedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		messID, err := pathUUID(r, "messId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := paginationFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListSubscribers(r.Context(), ownerID, messID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
