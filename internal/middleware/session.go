package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/hericraft/campus-api/internal/session"
	"github.com/labstack/echo/v4"
)

const (
	// SessionKey is the echo context key holding the loaded session.
	SessionKey = "session"
	// AuthenticatedKey flags whether a token was found for this request.
	AuthenticatedKey = "is_authenticated"
)

// LoadSession loads the persisted device session into the echo context.
// A missing session is not an error here; protected routes decide.
func LoadSession(store *session.Store) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess, err := store.Load(c.Request().Context())
			switch {
			case err == nil:
				c.Set(SessionKey, sess)
				c.Set(AuthenticatedKey, true)
			case errors.Is(err, session.ErrNoSession):
				c.Set(AuthenticatedKey, false)
			default:
				slog.Error("failed to load session", "error", err)
				c.Set(AuthenticatedKey, false)
			}
			return next(c)
		}
	}
}

// RequireSession rejects requests without a stored token. The 401 is the
// server-side analogue of the app's redirect to the login screen.
func RequireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if authed, ok := c.Get(AuthenticatedKey).(bool); !ok || !authed {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "session required"})
		}
		return next(c)
	}
}

// CurrentSession returns the session loaded by LoadSession.
func CurrentSession(c echo.Context) (session.Session, bool) {
	sess, ok := c.Get(SessionKey).(session.Session)
	return sess, ok
}
