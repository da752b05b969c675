package controllers

import (
	"net/http"

	"github.com/staymate-io/staymate-backend/api/responses"
	"github.com/staymate-io/staymate-backend/api/validators"
	"github.com/staymate-io/staymate-backend/internal/media"
	"github.com/staymate-io/staymate-backend/pkg/enums"
	pkgerrors "github.com/staymate-io/staymate-backend/pkg/errors"
	"github.com/staymate-io/staymate-backend/pkg/logger"
)

type presignUploadRequest struct {
	PropertyKind string `json:"property_kind" validate:"required"`
	PropertyID   string `json:"property_id" validate:"required,uuid"`
	FileName     string `json:"file_name" validate:"required,max=255"`
	MimeType     string `json:"mime_type" validate:"required"`
	SizeBytes    int64  `json:"size_bytes" validate:"required,gt=0"`
}

// MediaPresignUpload returns a signed PUT URL for a listing image.
func MediaPresignUpload(svc media.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "media service unavailable"))
			return
		}

		userID, err := authenticatedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body presignUploadRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		kind, err := enums.ParsePropertyKind(body.PropertyKind)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid property kind"))
			return
		}

		propertyID, err := parseUUIDField(body.PropertyID, "property_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.PresignUpload(r.Context(), userID, media.PresignInput{
			Kind:       kind,
			PropertyID: propertyID,
			FileName:   body.FileName,
			MimeType:   body.MimeType,
			SizeBytes:  body.SizeBytes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// MediaPresignDownload returns a signed GET URL so an owner can preview an
// object they uploaded.
func MediaPresignDownload(svc media.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "media service unavailable"))
			return
		}

		userID, err := authenticatedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		objectKey := r.URL.Query().Get("object_key")
		if objectKey == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "object_key is required"))
			return
		}

		result, err := svc.PresignDownload(r.Context(), userID, objectKey)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
