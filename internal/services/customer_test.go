package services

import (
	"context"
	"testing"
	"time"

	"github.com/BigSlendr/BBE-Menu/internal/store"
	"github.com/BigSlendr/BBE-Menu/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAdminUserRepo struct {
	byID map[string]types.User

	eraseCalled    bool
	eraseID        string
	eraseAnonymize bool
}

func newFakeAdminUserRepo() *fakeAdminUserRepo {
	return &fakeAdminUserRepo{byID: map[string]types.User{}}
}

func (f *fakeAdminUserRepo) GetByID(_ context.Context, id string) (types.User, error) {
	user, ok := f.byID[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (f *fakeAdminUserRepo) Search(_ context.Context, _ store.CustomerFilter) ([]types.User, error) {
	return nil, nil
}

func (f *fakeAdminUserRepo) UpdateProfile(_ context.Context, id string, firstName, lastName, phone *string) error {
	user, ok := f.byID[id]
	if !ok {
		return store.ErrNotFound
	}
	if firstName != nil {
		user.FirstName = *firstName
	}
	if lastName != nil {
		user.LastName = *lastName
	}
	if phone != nil {
		user.Phone = *phone
	}
	f.byID[id] = user
	return nil
}

func (f *fakeAdminUserRepo) ListPendingReview(_ context.Context) ([]types.User, error) {
	var pending []types.User
	for _, user := range f.byID {
		if user.AccountStatus == "pending" {
			pending = append(pending, user)
		}
	}
	return pending, nil
}

func (f *fakeAdminUserRepo) SetAccountStatus(_ context.Context, id, status string, _ *string, _ *string) error {
	user, ok := f.byID[id]
	if !ok {
		return store.ErrNotFound
	}
	user.AccountStatus = status
	f.byID[id] = user
	return nil
}

func (f *fakeAdminUserRepo) SetTierOverride(_ context.Context, id, tier string, _, _ *string) error {
	user, ok := f.byID[id]
	if !ok {
		return store.ErrNotFound
	}
	user.TierOverride = &tier
	f.byID[id] = user
	return nil
}

func (f *fakeAdminUserRepo) ClearTierOverride(_ context.Context, id string) error {
	user, ok := f.byID[id]
	if !ok {
		return store.ErrNotFound
	}
	user.TierOverride = nil
	f.byID[id] = user
	return nil
}

func (f *fakeAdminUserRepo) Deactivate(_ context.Context, id string, _ *string) error {
	user, ok := f.byID[id]
	if !ok {
		return store.ErrNotFound
	}
	user.IsActive = false
	f.byID[id] = user
	return nil
}

func (f *fakeAdminUserRepo) Reactivate(_ context.Context, id string) error {
	user, ok := f.byID[id]
	if !ok {
		return store.ErrNotFound
	}
	user.IsActive = true
	f.byID[id] = user
	return nil
}

func (f *fakeAdminUserRepo) Erase(_ context.Context, id string, anonymize bool) error {
	if _, ok := f.byID[id]; !ok {
		return store.ErrNotFound
	}
	f.eraseCalled = true
	f.eraseID = id
	f.eraseAnonymize = anonymize
	delete(f.byID, id)
	return nil
}

func (f *fakeAdminUserRepo) CountAll(_ context.Context) (int64, error) {
	return int64(len(f.byID)), nil
}

func (f *fakeAdminUserRepo) CountActive(_ context.Context) (int64, error) {
	var active int64
	for _, user := range f.byID {
		if user.IsActive {
			active++
		}
	}
	return active, nil
}

func (f *fakeAdminUserRepo) CountPendingReview(_ context.Context) (int64, error) {
	var pending int64
	for _, user := range f.byID {
		if user.AccountStatus == "pending" {
			pending++
		}
	}
	return pending, nil
}

type fakeTagRepo struct {
	tags []types.CustomerTag
}

func (f *fakeTagRepo) List(_ context.Context, userID string) ([]types.CustomerTag, error) {
	var out []types.CustomerTag
	for _, tag := range f.tags {
		if tag.UserID == userID {
			out = append(out, tag)
		}
	}
	return out, nil
}

func (f *fakeTagRepo) Add(_ context.Context, tag types.CustomerTag) error {
	for _, existing := range f.tags {
		if existing.UserID == tag.UserID && existing.Tag == tag.Tag {
			return store.ErrConflict
		}
	}
	f.tags = append(f.tags, tag)
	return nil
}

func (f *fakeTagRepo) Remove(_ context.Context, userID, tag string) error {
	for i, existing := range f.tags {
		if existing.UserID == userID && existing.Tag == tag {
			f.tags = append(f.tags[:i], f.tags[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

type fakeSessionRepo struct {
	deletedFor []string
}

func (f *fakeSessionRepo) Create(_ context.Context, _ types.Session) error { return nil }

func (f *fakeSessionRepo) Get(_ context.Context, _ string) (types.Session, error) {
	return types.Session{}, store.ErrNotFound
}

func (f *fakeSessionRepo) Delete(_ context.Context, _ string) error { return nil }

func (f *fakeSessionRepo) DeleteForUser(_ context.Context, userID string) error {
	f.deletedFor = append(f.deletedFor, userID)
	return nil
}

func newCustomerFixture() (*CustomerService, *fakeAdminUserRepo, *fakeTagRepo, *fakeSessionRepo) {
	users := newFakeAdminUserRepo()
	tags := &fakeTagRepo{}
	sessions := &fakeSessionRepo{}
	svc := NewCustomerService(users, tags, nil, newFakeOrderRepo(), sessions)
	return svc, users, tags, sessions
}

func TestEraseRequiresExactEmailConfirmation(t *testing.T) {
	svc, users, _, _ := newCustomerFixture()
	users.byID["u1"] = types.User{ID: "u1", Email: "jo@bbe.test"}

	err := svc.Erase(context.Background(), "u1", "someone-else@bbe.test", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "confirmation does not match")
	assert.False(t, users.eraseCalled)

	// Case and surrounding whitespace are forgiven, the address is not.
	require.NoError(t, svc.Erase(context.Background(), "u1", "  JO@bbe.test ", false))
	assert.True(t, users.eraseCalled)
	assert.Equal(t, "u1", users.eraseID)
}

func TestErasePassesAnonymizeFlagThrough(t *testing.T) {
	svc, users, _, _ := newCustomerFixture()
	users.byID["u1"] = types.User{ID: "u1", Email: "jo@bbe.test"}

	require.NoError(t, svc.Erase(context.Background(), "u1", "jo@bbe.test", true))
	assert.True(t, users.eraseAnonymize, "order PII rewrite rides on the repository flag")
}

func TestDeactivateRevokesSessions(t *testing.T) {
	svc, users, _, sessions := newCustomerFixture()
	users.byID["u1"] = types.User{ID: "u1", Email: "jo@bbe.test", IsActive: true}

	require.NoError(t, svc.Deactivate(context.Background(), "u1", nil))
	assert.False(t, users.byID["u1"].IsActive)
	assert.Equal(t, []string{"u1"}, sessions.deletedFor)
}

func TestTagsListsOnlyTheCustomer(t *testing.T) {
	svc, _, tags, _ := newCustomerFixture()
	now := time.Now()
	tags.tags = []types.CustomerTag{
		{UserID: "u1", Tag: "vip", CreatedAt: now},
		{UserID: "u2", Tag: "wholesale", CreatedAt: now},
	}

	list, err := svc.Tags(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "vip", list[0].Tag)
}
