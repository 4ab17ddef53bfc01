package user

import (
	"fmt"

	"rps_backend/internal/common"
	"rps_backend/internal/permission"
)

// Require admits viewer only if it holds p. A nil viewer means the request
// carried no valid session.
func Require(viewer *User, p permission.Permission) error {
	if viewer == nil {
		return common.ErrUnauthorized.WithDetails("Sign in to perform this operation.")
	}
	if !viewer.HasPermission(p) {
		return common.ErrForbidden.WithDetails(fmt.Sprintf("The %s permission is required.", p))
	}
	return nil
}
