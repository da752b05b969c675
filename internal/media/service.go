package media

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/staymate-io/staymate-backend/pkg/enums"
	pkgerrors "github.com/staymate-io/staymate-backend/pkg/errors"
)

var allowedImageMimes = []string{"image/png", "image/jpeg", "image/webp"}

type urlSigner interface {
	SignedURL(bucket, object, contentType string, expires time.Duration) (string, error)
	SignedReadURL(bucket, object string, expires time.Duration) (string, error)
}

// Service issues signed upload and download URLs for hostel and mess
// listing images.
type Service interface {
	PresignUpload(ctx context.Context, userID uuid.UUID, input PresignInput) (*PresignOutput, error)
	PresignDownload(ctx context.Context, userID uuid.UUID, objectKey string) (*DownloadOutput, error)
}

type service struct {
	repo           Repository
	signer         urlSigner
	bucket         string
	uploadTTL      time.Duration
	downloadTTL    time.Duration
	maxUploadBytes int64
}

// NewService wires the presign dependencies.
func NewService(repo Repository, signer urlSigner, bucket string, uploadTTL, downloadTTL time.Duration, maxUploadMB int) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("media repository required")
	}
	if signer == nil {
		return nil, fmt.Errorf("url signer required")
	}
	if bucket == "" {
		return nil, fmt.Errorf("bucket required")
	}
	if uploadTTL <= 0 {
		return nil, fmt.Errorf("upload ttl must be positive")
	}
	if downloadTTL <= 0 {
		return nil, fmt.Errorf("download ttl must be positive")
	}
	if maxUploadMB <= 0 {
		return nil, fmt.Errorf("max upload size must be positive")
	}
	return &service{
		repo:           repo,
		signer:         signer,
		bucket:         bucket,
		uploadTTL:      uploadTTL,
		downloadTTL:    downloadTTL,
		maxUploadBytes: int64(maxUploadMB) * 1024 * 1024,
	}, nil
}

// PresignInput models a request for a listing-image upload URL.
type PresignInput struct {
	Kind       enums.PropertyKind
	PropertyID uuid.UUID
	FileName   string
	MimeType   string
	SizeBytes  int64
}

// PresignOutput carries the signed PUT URL and the object key the client
// should store on the listing.
type PresignOutput struct {
	ObjectKey    string    `json:"object_key"`
	SignedPutURL string    `json:"signed_put_url"`
	ContentType  string    `json:"content_type"`
	ExpiresAt    time.Time `json:"expires_at"`
}

func (s *service) PresignUpload(ctx context.Context, userID uuid.UUID, input PresignInput) (*PresignOutput, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !input.Kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid property kind")
	}
	if input.PropertyID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "property_id is required")
	}

	fileName := strings.TrimSpace(input.FileName)
	if fileName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file_name is required")
	}
	if input.SizeBytes <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "size_bytes must be positive")
	}
	if input.SizeBytes > s.maxUploadBytes {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("size_bytes must be at most %d bytes", s.maxUploadBytes))
	}

	mimeType := strings.TrimSpace(input.MimeType)
	if !isAllowedImageMime(mimeType) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "mime_type must be an allowed image type")
	}

	owns, err := s.repo.OwnsProperty(ctx, input.Kind, input.PropertyID, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check property ownership")
	}
	if !owns {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "property does not belong to owner")
	}

	objectKey := buildObjectKey(input.Kind, input.PropertyID, fileName)
	expiresAt := time.Now().Add(s.uploadTTL)

	signedURL, err := s.signer.SignedURL(s.bucket, objectKey, mimeType, s.uploadTTL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sign upload url")
	}

	return &PresignOutput{
		ObjectKey:    objectKey,
		SignedPutURL: signedURL,
		ContentType:  mimeType,
		ExpiresAt:    expiresAt,
	}, nil
}

// DownloadOutput carries a short-lived signed GET URL for a stored object.
type DownloadOutput struct {
	ObjectKey    string    `json:"object_key"`
	SignedGetURL string    `json:"signed_get_url"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// PresignDownload lets an owner preview an object they uploaded. The
// property is recovered from the object key, so ownership is re-checked on
// every call.
func (s *service) PresignDownload(ctx context.Context, userID uuid.UUID, objectKey string) (*DownloadOutput, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	kind, propertyID, err := parseObjectKey(objectKey)
	if err != nil {
		return nil, err
	}

	owns, err := s.repo.OwnsProperty(ctx, kind, propertyID, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check property ownership")
	}
	if !owns {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "property does not belong to owner")
	}

	expiresAt := time.Now().Add(s.downloadTTL)
	signedURL, err := s.signer.SignedReadURL(s.bucket, objectKey, s.downloadTTL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sign download url")
	}

	return &DownloadOutput{
		ObjectKey:    objectKey,
		SignedGetURL: signedURL,
		ExpiresAt:    expiresAt,
	}, nil
}

// parseObjectKey recovers the property from a "<kind>/<propertyID>/<file>"
// key produced by buildObjectKey.
func parseObjectKey(objectKey string) (enums.PropertyKind, uuid.UUID, error) {
	parts := strings.Split(strings.TrimSpace(objectKey), "/")
	if len(parts) != 3 || parts[2] == "" {
		return "", uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "object_key is malformed")
	}
	kind, err := enums.ParsePropertyKind(parts[0])
	if err != nil {
		return "", uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "object_key is malformed")
	}
	propertyID, err := uuid.Parse(parts[1])
	if err != nil {
		return "", uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "object_key is malformed")
	}
	return kind, propertyID, nil
}

func isAllowedImageMime(mimeType string) bool {
	for _, allowed := range allowedImageMimes {
		if mimeType == allowed {
			return true
		}
	}
	return false
}

func buildObjectKey(kind enums.PropertyKind, propertyID uuid.UUID, fileName string) string {
	return path.Join(string(kind), propertyID.String(), uuid.New().String()+"_"+sanitizeFileName(fileName))
}

func sanitizeFileName(name string) string {
	name = path.Base(name)
	var b strings.Builder
	for _, r := range name {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	return b.String()
}
