// File: internal/common/context_keys.go
package common

const (
	// CurrentUserKey is the gin context key for the *user.User resolved from the session cookie.
	CurrentUserKey = "currentUser"
	// RequestIDKey is the gin context key for the request ID
	RequestIDKey = "requestID"
	// LoggerKey is the gin context key for the request-scoped *zap.Logger
	LoggerKey = "logger"
)
