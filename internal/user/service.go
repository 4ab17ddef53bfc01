// File: internal/user/service.go
package user

import (
	"context"

	"rps_backend/internal/permission"

	"go.uber.org/zap"
)

// Service defines the user operations exposed to the API surface. Every gated
// operation takes the viewer explicitly; a nil viewer is an anonymous request.
type Service interface {
	// FindByID loads a user without any permission check. It exists for
	// session resolution only.
	FindByID(ctx context.Context, id string) (*User, error)
	GetMany(ctx context.Context, viewer *User) ([]User, error)
	Get(ctx context.Context, viewer *User, id string) (*User, error)
	Delete(ctx context.Context, viewer *User, id string) (*User, error)
	SetPermissions(ctx context.Context, viewer *User, id string, perms []permission.Permission) (*User, error)
	// SignIn converts verified claims into a user record, creating or refreshing it.
	SignIn(ctx context.Context, claims Claims) (*User, error)
}

// ServiceImplementation implements Service on top of a Repository.
type ServiceImplementation struct {
	repo   Repository
	logger *zap.Logger
}

var _ Service = (*ServiceImplementation)(nil)

// NewService creates a new user service.
func NewService(repo Repository, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{
		repo:   repo,
		logger: logger.Named("UserService"),
	}
}

func (s *ServiceImplementation) FindByID(ctx context.Context, id string) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

// GetMany returns all users. Requires ViewUsers.
func (s *ServiceImplementation) GetMany(ctx context.Context, viewer *User) ([]User, error) {
	if err := Require(viewer, permission.ViewUsers); err != nil {
		return nil, err
	}
	return s.repo.List(ctx)
}

// Get returns one user. Requires ViewUsers.
func (s *ServiceImplementation) Get(ctx context.Context, viewer *User, id string) (*User, error) {
	if err := Require(viewer, permission.ViewUsers); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

// Delete removes a user and returns the deleted row. Requires ManageUsers.
func (s *ServiceImplementation) Delete(ctx context.Context, viewer *User, id string) (*User, error) {
	if err := Require(viewer, permission.ManageUsers); err != nil {
		return nil, err
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	s.logger.Info("User deleted",
		zap.String("userID", deleted.ID),
		zap.String("deletedBy", viewer.ID),
	)
	return deleted, nil
}

// SetPermissions replaces a user's permission set. Requires ManageUsers.
func (s *ServiceImplementation) SetPermissions(ctx context.Context, viewer *User, id string, perms []permission.Permission) (*User, error) {
	if err := Require(viewer, permission.ManageUsers); err != nil {
		return nil, err
	}
	updated, err := s.repo.SetPermissions(ctx, id, permission.Unique(perms...))
	if err != nil {
		return nil, err
	}
	s.logger.Info("User permissions replaced",
		zap.String("userID", updated.ID),
		zap.Strings("permissions", permissionNames(updated.Permissions)),
		zap.String("changedBy", viewer.ID),
	)
	return updated, nil
}

func (s *ServiceImplementation) SignIn(ctx context.Context, claims Claims) (*User, error) {
	nu, err := FromClaims(claims)
	if err != nil {
		s.logger.Warn("Identity token rejected", zap.String("subject", claims.Subject), zap.Error(err))
		return nil, err
	}
	u, err := s.repo.Upsert(ctx, nu)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("User signed in", zap.String("userID", u.ID), zap.String("email", u.Email))
	return u, nil
}

func permissionNames(set permission.Set) []string {
	names := make([]string, len(set))
	for i, p := range set {
		names[i] = string(p)
	}
	return names
}
