// File: internal/auth/session.go
package auth

import (
	"net/http"

	"rps_backend/internal/config"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// CookieName is the name of the session cookie. It carries only the user ID.
	CookieName = "userid"

	sessionUserIDKey = "id"
)

// SessionManager issues, reads and revokes the signed and encrypted userid
// cookie. All session state lives in the cookie; nothing is stored server-side.
type SessionManager struct {
	store   sessions.Store
	options sessions.Options
	logger  *zap.Logger
}

// NewSessionManager builds the cookie store from the configured keys. The hash
// key authenticates the cookie and the block key encrypts it.
func NewSessionManager(cfg *config.Config, logger *zap.Logger) *SessionManager {
	options := sessions.Options{
		Path:     "/",
		Domain:   cfg.SessionCookieDomain,
		MaxAge:   int(cfg.SessionMaxAge.Seconds()),
		Secure:   cfg.SessionCookieSecure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	store := cookie.NewStore([]byte(cfg.SessionHashKey), []byte(cfg.SessionBlockKey))
	store.Options(options)

	m := &SessionManager{
		store:   store,
		options: options,
		logger:  logger.Named("SessionManager"),
	}
	// Options only sets the browser expiry. The codecs check the signed
	// timestamp against their own max age, which defaults to 30 days.
	if codecs, ok := store.(interface{ MaxAge(int) }); ok {
		codecs.MaxAge(options.MaxAge)
	} else {
		m.logger.Warn("Session store does not expose MaxAge; server-side expiry uses the codec default")
	}
	return m
}

// Middleware attaches the session to the gin context. It must run before any
// other SessionManager method is used on a request.
func (m *SessionManager) Middleware() gin.HandlerFunc {
	return sessions.Sessions(CookieName, m.store)
}

// Establish sets the cookie so later requests resolve to id.
func (m *SessionManager) Establish(c *gin.Context, id string) error {
	s := sessions.Default(c)
	s.Clear()
	s.Set(sessionUserIDKey, id)
	s.Options(m.options)
	return s.Save()
}

// Resolve returns the user ID carried by the cookie. A missing, expired or
// tampered cookie reads the same as no cookie.
func (m *SessionManager) Resolve(c *gin.Context) (string, bool) {
	id, ok := sessions.Default(c).Get(sessionUserIDKey).(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// Revoke clears the cookie on the client.
func (m *SessionManager) Revoke(c *gin.Context) error {
	s := sessions.Default(c)
	s.Clear()
	expired := m.options
	expired.MaxAge = -1
	s.Options(expired)
	return s.Save()
}
