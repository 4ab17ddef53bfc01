// File: internal/user/repository.go
package user

import (
	"context"
	"errors"
	"fmt"

	"rps_backend/internal/common"
	"rps_backend/internal/permission"
	"rps_backend/internal/platform/database"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository defines the interface for user data operations. None of its
// methods check permissions; that is the Service's job.
type Repository interface {
	FindByID(ctx context.Context, id string) (*User, error)
	List(ctx context.Context) ([]User, error)
	Upsert(ctx context.Context, nu *NewUser) (*User, error)
	Delete(ctx context.Context, id string) (*User, error)
	SetPermissions(ctx context.Context, id string, perms permission.Set) (*User, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM user repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// FindByID retrieves a user by their ID.
func (r *gormRepository) FindByID(ctx context.Context, id string) (*User, error) {
	var userModel User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&userModel).Error; err != nil {
		return nil, translate(err, id, "find user")
	}
	return &userModel, nil
}

// List returns every user ordered by ID.
func (r *gormRepository) List(ctx context.Context) ([]User, error) {
	users := make([]User, 0)
	if err := r.db.WithContext(ctx).Order("id").Find(&users).Error; err != nil {
		return nil, translate(err, "", "list users")
	}
	return users, nil
}

// Upsert inserts the user, or refreshes the profile columns of an existing row.
// The permissions column is only written on insert.
func (r *gormRepository) Upsert(ctx context.Context, nu *NewUser) (*User, error) {
	var stored User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := User{
			ID:          nu.ID,
			Permissions: permission.Set{},
			Email:       nu.Email,
			Name:        nu.Name,
			Picture:     nu.Picture,
			GivenName:   nu.GivenName,
			FamilyName:  nu.FamilyName,
			Locale:      nu.Locale,
		}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns(profileColumns),
		}).Create(&row).Error
		if err != nil {
			return err
		}
		// Re-read so the caller sees the stored permissions, not the insert defaults.
		return tx.Where("id = ?", nu.ID).First(&stored).Error
	})
	if err != nil {
		return nil, translate(err, nu.ID, "upsert user")
	}
	return &stored, nil
}

// Delete removes the user and returns the row as it was before deletion.
func (r *gormRepository) Delete(ctx context.Context, id string) (*User, error) {
	var deleted User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&deleted).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&User{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Removed by a concurrent request after the read.
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return nil, translate(err, id, "delete user")
	}
	return &deleted, nil
}

// SetPermissions replaces the user's whole permission set with the deduplicated perms.
func (r *gormRepository) SetPermissions(ctx context.Context, id string, perms permission.Set) (*User, error) {
	set := permission.Unique(perms...)
	var updated User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&updated).Error; err != nil {
			return err
		}
		res := tx.Model(&updated).Update("permissions", set)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return nil, translate(err, id, "set user permissions")
	}
	updated.Permissions = set
	return &updated, nil
}

// translate maps store errors onto the API taxonomy. Unknown errors are wrapped
// and surface as an opaque 500 at the boundary.
func translate(err error, id, op string) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return common.ErrNotFound.WithDetails(fmt.Sprintf("User %q not found.", id))
	case database.IsUnavailable(err):
		return fmt.Errorf("%s: %w", op, errors.Join(err, common.ErrServiceUnavailable))
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
