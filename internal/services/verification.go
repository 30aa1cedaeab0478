package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/BigSlendr/BBE-Menu/internal/storage"
	"github.com/BigSlendr/BBE-Menu/internal/store"
	"github.com/BigSlendr/BBE-Menu/types"
)

// Upload limits for verification images.
const maxVerificationBytes = 6 << 20

// Upload validation errors, mapped to 400 by handlers.
var (
	ErrBadImageType = errors.New("only JPG, PNG, or WEBP images are allowed")
	ErrImageTooBig  = errors.New("each file must be 6MB or less")
)

var allowedImageTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// VerificationRepository defines persistence operations for ID review
// state.
type VerificationRepository interface {
	Upsert(ctx context.Context, verification types.Verification) error
	Get(ctx context.Context, userID string) (types.Verification, error)
	ListForReview(ctx context.Context, status string, limit int) ([]types.Verification, error)
	SetStatus(ctx context.Context, userID, status string) error
}

// ReviewRepository is the slice of user persistence the review flow
// needs.
type ReviewRepository interface {
	GetByID(ctx context.Context, id string) (types.User, error)
	SetAccountStatus(ctx context.Context, id, status string, adminID *string, reason *string) error
}

// VerificationService encapsulates the ID upload and admin review
// use-cases. Uploaded images live in private object storage and are
// only ever read back through the admin API.
type VerificationService struct {
	verifications VerificationRepository
	users         ReviewRepository
	objects       *storage.Storage
}

func NewVerificationService(verifications VerificationRepository, users ReviewRepository, objects *storage.Storage) *VerificationService {
	return &VerificationService{
		verifications: verifications,
		users:         users,
		objects:       objects,
	}
}

// UploadImage is one incoming file of an Upload call.
type UploadImage struct {
	ContentType string
	Size        int64
	Reader      io.Reader
}

// Upload stores both images and marks the user's verification pending.
// A re-upload replaces the previous keys and resets the review queue
// position.
func (s *VerificationService) Upload(ctx context.Context, userID string, idImage, selfieImage UploadImage, idExpiration string) error {
	for _, image := range []UploadImage{idImage, selfieImage} {
		if _, ok := allowedImageTypes[image.ContentType]; !ok {
			return ErrBadImageType
		}
		if image.Size > maxVerificationBytes {
			return ErrImageTooBig
		}
	}

	now := time.Now()
	ts := now.UnixMilli()
	idKey := fmt.Sprintf("verifications/%s/id-%d.%s", userID, ts, allowedImageTypes[idImage.ContentType])
	selfieKey := fmt.Sprintf("verifications/%s/selfie-%d.%s", userID, ts, allowedImageTypes[selfieImage.ContentType])

	if err := s.putImage(ctx, idKey, idImage); err != nil {
		return err
	}
	if err := s.putImage(ctx, selfieKey, selfieImage); err != nil {
		return err
	}

	var exp *string
	if datePattern.MatchString(idExpiration) {
		exp = &idExpiration
	}

	return s.verifications.Upsert(ctx, types.Verification{
		UserID:       userID,
		Status:       types.VerificationPending,
		IDKey:        &idKey,
		SelfieKey:    &selfieKey,
		IDExpiration: exp,
		UpdatedAt:    now,
	})
}

// Status returns a user's verification row addressed by user id.
// Users with no upload yet get an unverified placeholder.
func (s *VerificationService) Status(ctx context.Context, userID string) (types.Verification, error) {
	verification, err := s.verifications.Get(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return types.Verification{
			UserID: userID,
			Status: types.VerificationUnverified,
		}, nil
	}
	return verification, err
}

// ListForReview returns the admin review queue.
func (s *VerificationService) ListForReview(ctx context.Context, status string, limit int) ([]types.Verification, error) {
	return s.verifications.ListForReview(ctx, status, clampLimit(limit))
}

// Review applies a reviewer decision to both the verification row and
// the user's account status. "deny" and "reject" are synonyms; "pending"
// sends the case back to the queue.
func (s *VerificationService) Review(ctx context.Context, userID, action string, adminID *string, reason *string) error {
	var status, accountStatus string
	switch action {
	case "approve":
		status, accountStatus = types.VerificationApproved, "approved"
	case "deny", "reject":
		status, accountStatus = types.VerificationRejected, "denied"
	case "pending":
		status, accountStatus = types.VerificationPending, "pending"
	default:
		return fmt.Errorf("unknown action %q", action)
	}

	if err := s.verifications.SetStatus(ctx, userID, status); err != nil {
		return err
	}
	return s.users.SetAccountStatus(ctx, userID, accountStatus, adminID, reason)
}

// OpenFile streams a stored verification image for admin viewing along
// with its content type, derived from the stored key's extension. kind
// is "id" or "selfie".
func (s *VerificationService) OpenFile(ctx context.Context, userID, kind string) (io.ReadCloser, string, error) {
	verification, err := s.verifications.Get(ctx, userID)
	if err != nil {
		return nil, "", err
	}

	var key *string
	switch kind {
	case "id":
		key = verification.IDKey
	case "selfie":
		key = verification.SelfieKey
	default:
		return nil, "", fmt.Errorf("unknown file kind %q", kind)
	}
	if key == nil {
		return nil, "", store.ErrNotFound
	}
	reader, err := s.objects.Get(ctx, *key)
	if err != nil {
		return nil, "", err
	}
	return reader, imageContentType(*key), nil
}

func imageContentType(key string) string {
	ext := strings.TrimPrefix(path.Ext(key), ".")
	for contentType, allowed := range allowedImageTypes {
		if ext == allowed {
			return contentType
		}
	}
	return "application/octet-stream"
}

func (s *VerificationService) putImage(ctx context.Context, key string, image UploadImage) error {
	// Buffer to enforce the size cap even when the reader lies about Size.
	data, err := io.ReadAll(io.LimitReader(image.Reader, maxVerificationBytes+1))
	if err != nil {
		return err
	}
	if len(data) > maxVerificationBytes {
		return ErrImageTooBig
	}
	return s.objects.Put(ctx, key, bytes.NewReader(data), int64(len(data)), image.ContentType)
}
