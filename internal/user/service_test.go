package user

import (
	"context"
	"errors"
	"testing"

	"rps_backend/internal/common"
	"rps_backend/internal/permission"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockRepository is a mock type for user.Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) FindByID(ctx context.Context, id string) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context) ([]User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]User), args.Error(1)
}

func (m *MockRepository) Upsert(ctx context.Context, nu *NewUser) (*User, error) {
	args := m.Called(ctx, nu)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, id string) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) SetPermissions(ctx context.Context, id string, perms permission.Set) (*User, error) {
	args := m.Called(ctx, id, perms)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func newTestService() (*ServiceImplementation, *MockRepository) {
	repo := new(MockRepository)
	return NewService(repo, zap.NewNop()), repo
}

func viewerWith(perms ...permission.Permission) *User {
	return &User{ID: "viewer", Permissions: permission.Unique(perms...)}
}

func TestService_GatedOperationsRejectAnonymous(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	_, err := svc.GetMany(ctx, nil)
	assert.True(t, errors.Is(err, common.ErrUnauthorized))

	_, err = svc.Get(ctx, nil, "u1")
	assert.True(t, errors.Is(err, common.ErrUnauthorized))

	_, err = svc.Delete(ctx, nil, "u1")
	assert.True(t, errors.Is(err, common.ErrUnauthorized))

	_, err = svc.SetPermissions(ctx, nil, "u1", []permission.Permission{permission.ViewUsers})
	assert.True(t, errors.Is(err, common.ErrUnauthorized))

	// The store is never reached.
	repo.AssertNotCalled(t, "List", mock.Anything)
	repo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "SetPermissions", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_GatedOperationsRejectMissingPermission(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	reader := viewerWith(permission.ViewUsers)
	_, err := svc.Delete(ctx, reader, "u1")
	assert.True(t, errors.Is(err, common.ErrForbidden))
	_, err = svc.SetPermissions(ctx, reader, "u1", nil)
	assert.True(t, errors.Is(err, common.ErrForbidden))

	manager := viewerWith(permission.ManageUsers)
	_, err = svc.GetMany(ctx, manager)
	assert.True(t, errors.Is(err, common.ErrForbidden))
	_, err = svc.Get(ctx, manager, "u1")
	assert.True(t, errors.Is(err, common.ErrForbidden))

	repo.AssertExpectations(t)
}

func TestService_GetMany(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	users := []User{{ID: "a"}, {ID: "b"}}
	repo.On("List", ctx).Return(users, nil).Once()

	got, err := svc.GetMany(ctx, viewerWith(permission.ViewUsers))
	require.NoError(t, err)
	assert.Equal(t, users, got)
	repo.AssertExpectations(t)
}

func TestService_GetPropagatesNotFound(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	repo.On("FindByID", ctx, "ghost").Return(nil, common.ErrNotFound.WithDetails("ghost")).Once()

	_, err := svc.Get(ctx, viewerWith(permission.ViewUsers), "ghost")
	assert.True(t, errors.Is(err, common.ErrNotFound))
	repo.AssertExpectations(t)
}

func TestService_DeleteWithManageUsers(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	target := &User{ID: "u1", Email: "a@b.com"}
	repo.On("Delete", ctx, "u1").Return(target, nil).Once()

	got, err := svc.Delete(ctx, viewerWith(permission.ManageUsers), "u1")
	require.NoError(t, err)
	assert.Equal(t, target, got)
	repo.AssertExpectations(t)
}

func TestService_SetPermissionsDeduplicatesBeforeStore(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	want := permission.Set{permission.ViewUsers, permission.ManagePosts}
	repo.On("SetPermissions", ctx, "u1", want).Return(&User{ID: "u1", Permissions: want}, nil).Once()

	got, err := svc.SetPermissions(ctx, viewerWith(permission.ManageUsers), "u1",
		[]permission.Permission{permission.ViewUsers, permission.ManagePosts, permission.ViewUsers})
	require.NoError(t, err)
	assert.Equal(t, want, got.Permissions)
	repo.AssertExpectations(t)
}

func TestService_SignIn(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	stored := &User{ID: "u1", Email: "a@b.com", Permissions: permission.Set{}}
	repo.On("Upsert", ctx, mock.MatchedBy(func(nu *NewUser) bool {
		return nu.ID == "u1" && nu.Email == "a@b.com" && nu.Locale == "en"
	})).Return(stored, nil).Once()

	got, err := svc.SignIn(ctx, fullClaims())
	require.NoError(t, err)
	assert.Equal(t, stored, got)
	repo.AssertExpectations(t)
}

func TestService_SignInWithMissingClaimsSkipsStore(t *testing.T) {
	svc, repo := newTestService()
	c := fullClaims()
	c.Picture = ""
	c.Name = ""

	_, err := svc.SignIn(context.Background(), c)

	var missing *MissingFieldsError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{"name", "picture"}, missing.Fields)
	repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestRequire(t *testing.T) {
	assert.True(t, errors.Is(Require(nil, permission.ViewUsers), common.ErrUnauthorized))
	assert.True(t, errors.Is(Require(viewerWith(), permission.ViewUsers), common.ErrForbidden))
	assert.NoError(t, Require(viewerWith(permission.ViewUsers), permission.ViewUsers))
}
