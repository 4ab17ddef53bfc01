package user

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"rps_backend/internal/common"

	"github.com/go-playground/validator/v10"
)

// Claims are the verified identity assertions produced by the identity verifier.
// An empty string means the token did not carry the claim.
type Claims struct {
	Subject    string `json:"sub" validate:"required"`
	Email      string `json:"email" validate:"required"`
	Name       string `json:"name" validate:"required"`
	Picture    string `json:"picture" validate:"required"`
	GivenName  string `json:"given_name" validate:"required"`
	FamilyName string `json:"family_name" validate:"required"`
	Locale     string `json:"locale" validate:"required"`
}

// MissingFieldsError lists every claim absent from an identity token.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("identity token is missing user fields: %s", strings.Join(e.Fields, ", "))
}

// Unwrap exposes the 400 API error so the boundary maps it without knowing this type.
func (e *MissingFieldsError) Unwrap() error {
	return common.ErrMissingUserFields.WithDetails(e.Fields)
}

var claimsValidator = newClaimsValidator()

func newClaimsValidator() *validator.Validate {
	v := validator.New()
	// Report claim names ("given_name") rather than Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// FromClaims converts verified claims into the profile written by an upsert.
// All missing fields are reported together in one *MissingFieldsError.
func FromClaims(c Claims) (*NewUser, error) {
	if err := claimsValidator.Struct(c); err != nil {
		var ve validator.ValidationErrors
		if !errors.As(err, &ve) {
			return nil, fmt.Errorf("validate identity claims: %w", err)
		}
		missing := make([]string, 0, len(ve))
		for _, fe := range ve {
			missing = append(missing, fe.Field())
		}
		return nil, &MissingFieldsError{Fields: missing}
	}

	return &NewUser{
		ID:         c.Subject,
		Email:      c.Email,
		Name:       c.Name,
		Picture:    c.Picture,
		GivenName:  c.GivenName,
		FamilyName: c.FamilyName,
		Locale:     c.Locale,
	}, nil
}
