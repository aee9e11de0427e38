package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/hericraft/campus-api/internal/moodle"
	"github.com/hericraft/campus-api/internal/profile"
	"github.com/hericraft/campus-api/internal/session"
	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	resolver *profile.Resolver
	sessions *session.Store
}

func NewAuthHandler(resolver *profile.Resolver, sessions *session.Store) *AuthHandler {
	return &AuthHandler{resolver: resolver, sessions: sessions}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Username string `json:"username"`
	UserID   int64  `json:"userId"`
}

// HandleLogin authenticates, persists the session, then resolves the
// numeric user id as a second lookup. A failed id resolution after a
// successful login leaves the token stored: the torn state is recovered on
// the next aggregate call.
func (h *AuthHandler) HandleLogin(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "username and password are required"})
	}

	ctx := c.Request().Context()

	token, err := h.resolver.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		return writeLoginError(c, err)
	}

	if err := h.sessions.Save(ctx, session.Session{Token: token, Username: req.Username}); err != nil {
		slog.Error("failed to persist session", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to save session"})
	}

	resp := loginResponse{Username: req.Username}

	userID, err := h.resolver.ResolveUserID(ctx, token, req.Username)
	switch {
	case err == nil:
		if err := h.sessions.SetUserID(ctx, userID); err != nil {
			slog.Error("failed to persist resolved user id", "error", err)
		}
		resp.UserID = userID
	case sessionFatal(err):
		return rejectSession(c, h.sessions, err)
	default:
		// Token is saved; the id will be re-resolved on the next call.
		slog.Warn("user id resolution deferred", "username", req.Username, "error", err)
	}

	slog.Info("login succeeded", "username", req.Username, "user_id", resp.UserID)
	return c.JSON(http.StatusOK, resp)
}

// HandleLogout clears the stored session. Always succeeds.
func (h *AuthHandler) HandleLogout(c echo.Context) error {
	if err := h.sessions.Clear(c.Request().Context()); err != nil {
		slog.Error("failed to clear session", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to clear session"})
	}
	return c.NoContent(http.StatusNoContent)
}

// writeLoginError differs from writeError in one way: a remote fault on
// the token endpoint means bad credentials, not a bad gateway.
func writeLoginError(c echo.Context, err error) error {
	var remote *moodle.RemoteError
	if errors.As(err, &remote) {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": remote.Message})
	}
	return writeError(c, err)
}
