// File: internal/user/model.go
package user

import (
	"time"

	"rps_backend/internal/permission"
)

// User is one row per Google account. ID is the token subject and never changes.
type User struct {
	ID          string         `gorm:"primaryKey;type:varchar(255)" json:"id"`
	Permissions permission.Set `gorm:"type:text;not null" json:"permissions"`
	Email       string         `gorm:"type:varchar(255);not null" json:"email"`
	Name        string         `gorm:"type:varchar(255);not null" json:"name"`
	Picture     string         `gorm:"type:text;not null" json:"picture"`
	GivenName   string         `gorm:"type:varchar(255);not null" json:"given_name"`
	FamilyName  string         `gorm:"type:varchar(255);not null" json:"family_name"`
	Locale      string         `gorm:"type:varchar(35);not null" json:"locale"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// TableName specifies the table name for the User model.
func (User) TableName() string {
	return "users"
}

// HasPermission checks if the user holds p.
func (u *User) HasPermission(p permission.Permission) bool {
	return u.Permissions.Has(p)
}

// NewUser carries the profile fields written by an upsert. It has no
// permissions on purpose: signing in never changes what a user may do.
type NewUser struct {
	ID         string
	Email      string
	Name       string
	Picture    string
	GivenName  string
	FamilyName string
	Locale     string
}

// profileColumns are the columns an upsert refreshes on conflict.
var profileColumns = []string{"email", "name", "picture", "given_name", "family_name", "locale", "updated_at"}
