package services

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/BigSlendr/BBE-Menu/internal/storage"
	"github.com/BigSlendr/BBE-Menu/internal/store"
	"github.com/BigSlendr/BBE-Menu/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVerificationRepo struct {
	rows     map[string]types.Verification
	statuses map[string]string
}

func newFakeVerificationRepo() *fakeVerificationRepo {
	return &fakeVerificationRepo{
		rows:     map[string]types.Verification{},
		statuses: map[string]string{},
	}
}

func (f *fakeVerificationRepo) Upsert(_ context.Context, verification types.Verification) error {
	f.rows[verification.UserID] = verification
	return nil
}

func (f *fakeVerificationRepo) Get(_ context.Context, userID string) (types.Verification, error) {
	row, ok := f.rows[userID]
	if !ok {
		return types.Verification{}, store.ErrNotFound
	}
	return row, nil
}

func (f *fakeVerificationRepo) ListForReview(_ context.Context, _ string, _ int) ([]types.Verification, error) {
	return nil, nil
}

func (f *fakeVerificationRepo) SetStatus(_ context.Context, userID, status string) error {
	f.statuses[userID] = status
	return nil
}

type fakeReviewRepo struct {
	accountStatus map[string]string
}

func (f *fakeReviewRepo) GetByID(_ context.Context, id string) (types.User, error) {
	return types.User{ID: id}, nil
}

func (f *fakeReviewRepo) SetAccountStatus(_ context.Context, id, status string, _ *string, _ *string) error {
	f.accountStatus[id] = status
	return nil
}

type fakeObjectBackend struct {
	objects map[string][]byte
}

func newFakeObjectBackend() *fakeObjectBackend {
	return &fakeObjectBackend{objects: map[string][]byte{}}
}

func (f *fakeObjectBackend) EnsureBucket(_ context.Context) error { return nil }

func (f *fakeObjectBackend) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.objects[key] = data
	return nil
}

func (f *fakeObjectBackend) Get(_ context.Context, key string) (io.ReadCloser, error) {
	data, ok := f.objects[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeObjectBackend) Delete(_ context.Context, key string) error {
	delete(f.objects, key)
	return nil
}

func (f *fakeObjectBackend) Bucket() string { return "test-bucket" }

func jpegUpload(size int) UploadImage {
	return UploadImage{
		ContentType: "image/jpeg",
		Size:        int64(size),
		Reader:      strings.NewReader(strings.Repeat("x", size)),
	}
}

func TestUploadStoresBothImagesAndMarksPending(t *testing.T) {
	repo := newFakeVerificationRepo()
	backend := newFakeObjectBackend()
	svc := NewVerificationService(repo, &fakeReviewRepo{accountStatus: map[string]string{}}, storage.NewStorage(backend))

	err := svc.Upload(context.Background(), "u1", jpegUpload(100), UploadImage{
		ContentType: "image/png",
		Size:        50,
		Reader:      strings.NewReader(strings.Repeat("y", 50)),
	}, "2030-06-01")
	require.NoError(t, err)

	row, ok := repo.rows["u1"]
	require.True(t, ok)
	assert.Equal(t, types.VerificationPending, row.Status)
	require.NotNil(t, row.IDKey)
	require.NotNil(t, row.SelfieKey)
	assert.Regexp(t, `^verifications/u1/id-\d+\.jpg$`, *row.IDKey)
	assert.Regexp(t, `^verifications/u1/selfie-\d+\.png$`, *row.SelfieKey)
	require.NotNil(t, row.IDExpiration)
	assert.Equal(t, "2030-06-01", *row.IDExpiration)

	assert.Len(t, backend.objects, 2)
	assert.Len(t, backend.objects[*row.IDKey], 100)
}

func TestUploadDropsMalformedExpiration(t *testing.T) {
	repo := newFakeVerificationRepo()
	svc := NewVerificationService(repo, &fakeReviewRepo{accountStatus: map[string]string{}}, storage.NewStorage(newFakeObjectBackend()))

	err := svc.Upload(context.Background(), "u1", jpegUpload(10), jpegUpload(10), "June 2030")
	require.NoError(t, err)
	assert.Nil(t, repo.rows["u1"].IDExpiration)
}

func TestUploadRejectsBadContentType(t *testing.T) {
	svc := NewVerificationService(newFakeVerificationRepo(), &fakeReviewRepo{accountStatus: map[string]string{}}, storage.NewStorage(newFakeObjectBackend()))

	gif := UploadImage{ContentType: "image/gif", Size: 10, Reader: strings.NewReader("xxxxxxxxxx")}
	err := svc.Upload(context.Background(), "u1", gif, jpegUpload(10), "")
	assert.ErrorIs(t, err, ErrBadImageType)
}

func TestUploadRejectsOversizedImage(t *testing.T) {
	repo := newFakeVerificationRepo()
	svc := NewVerificationService(repo, &fakeReviewRepo{accountStatus: map[string]string{}}, storage.NewStorage(newFakeObjectBackend()))

	big := UploadImage{
		ContentType: "image/jpeg",
		Size:        maxVerificationBytes + 1,
		Reader:      strings.NewReader(""),
	}
	err := svc.Upload(context.Background(), "u1", big, jpegUpload(10), "")
	assert.ErrorIs(t, err, ErrImageTooBig)
	assert.Empty(t, repo.rows)
}

func TestStatusReturnsUnverifiedPlaceholder(t *testing.T) {
	svc := NewVerificationService(newFakeVerificationRepo(), &fakeReviewRepo{accountStatus: map[string]string{}}, storage.NewStorage(newFakeObjectBackend()))

	verification, err := svc.Status(context.Background(), "u9")
	require.NoError(t, err)
	assert.Equal(t, "u9", verification.UserID)
	assert.Equal(t, types.VerificationUnverified, verification.Status)
}

func TestReviewApproveAndReject(t *testing.T) {
	repo := newFakeVerificationRepo()
	users := &fakeReviewRepo{accountStatus: map[string]string{}}
	svc := NewVerificationService(repo, users, storage.NewStorage(newFakeObjectBackend()))
	ctx := context.Background()

	require.NoError(t, svc.Review(ctx, "u1", "approve", nil, nil))
	assert.Equal(t, types.VerificationApproved, repo.statuses["u1"])
	assert.Equal(t, "approved", users.accountStatus["u1"])

	require.NoError(t, svc.Review(ctx, "u2", "reject", nil, nil))
	assert.Equal(t, types.VerificationRejected, repo.statuses["u2"])
	assert.Equal(t, "denied", users.accountStatus["u2"])

	require.NoError(t, svc.Review(ctx, "u3", "deny", nil, nil))
	assert.Equal(t, "denied", users.accountStatus["u3"])

	require.NoError(t, svc.Review(ctx, "u4", "pending", nil, nil))
	assert.Equal(t, types.VerificationPending, repo.statuses["u4"])

	assert.Error(t, svc.Review(ctx, "u5", "escalate", nil, nil))
}

func TestOpenFileResolvesStoredKey(t *testing.T) {
	repo := newFakeVerificationRepo()
	backend := newFakeObjectBackend()
	svc := NewVerificationService(repo, &fakeReviewRepo{accountStatus: map[string]string{}}, storage.NewStorage(backend))
	ctx := context.Background()

	require.NoError(t, svc.Upload(ctx, "u1", jpegUpload(20), jpegUpload(20), ""))

	rc, contentType, err := svc.OpenFile(ctx, "u1", "id")
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", contentType, "content type follows the stored key's extension")
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	rc.Close()
	assert.Len(t, data, 20)

	_, _, err = svc.OpenFile(ctx, "u1", "back")
	assert.Error(t, err)
}

func TestImageContentTypeFromKey(t *testing.T) {
	assert.Equal(t, "image/png", imageContentType("verifications/u1/selfie-1724800000000.png"))
	assert.Equal(t, "image/webp", imageContentType("verifications/u1/id-1724800000000.webp"))
	assert.Equal(t, "application/octet-stream", imageContentType("verifications/u1/id-1724800000000.bin"))
}
