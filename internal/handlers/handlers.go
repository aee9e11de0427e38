// Package handlers exposes the aggregation layer over HTTP. Mandatory
// failures map onto the error taxonomy; best-effort degradation never
// reaches the wire.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/hericraft/campus-api/internal/middleware"
	"github.com/hericraft/campus-api/internal/moodle"
	"github.com/hericraft/campus-api/internal/profile"
	"github.com/hericraft/campus-api/internal/session"
	"github.com/labstack/echo/v4"
)

// invalidTokenCode is Moodle's marker for an expired or revoked token; any
// call reporting it invalidates the stored session.
const invalidTokenCode = "invalidtoken"

// writeError maps the client error taxonomy onto HTTP statuses.
// Transport failures are retryable, remote faults carry the server's text.
func writeError(c echo.Context, err error) error {
	var transport *moodle.TransportError
	if errors.As(err, &transport) {
		slog.Warn("lms unreachable", "error", err)
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "check your connection"})
	}

	var perr *profile.Error
	if errors.As(err, &perr) {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": perr.Reason})
	}

	var remote *moodle.RemoteError
	if errors.As(err, &remote) {
		return c.JSON(http.StatusBadGateway, map[string]string{"error": remote.Message})
	}

	slog.Error("request failed", "error", err)
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

// sessionFatal reports whether an error invalidates the stored session:
// either an internal profile invariant broke or the LMS rejected the token.
func sessionFatal(err error) bool {
	var perr *profile.Error
	if errors.As(err, &perr) {
		return true
	}
	var remote *moodle.RemoteError
	return errors.As(err, &remote) && remote.Code == invalidTokenCode
}

// rejectSession clears the store and forces the client back to login.
func rejectSession(c echo.Context, sessions *session.Store, err error) error {
	if clearErr := sessions.Clear(c.Request().Context()); clearErr != nil {
		slog.Error("failed to clear session", "error", clearErr)
	}
	slog.Info("session invalidated", "reason", err)
	return c.JSON(http.StatusUnauthorized, map[string]string{"error": "session expired, log in again"})
}

// resolveSession completes a torn session (token without user id) by
// re-resolving the id. It writes the response itself on failure.
func resolveSession(c echo.Context, resolver *profile.Resolver, sessions *session.Store) (session.Session, bool, error) {
	sess, ok := middleware.CurrentSession(c)
	if !ok || sess.Token == "" {
		return session.Session{}, false, c.JSON(http.StatusUnauthorized, map[string]string{"error": "session required"})
	}
	if sess.Complete() {
		return sess, true, nil
	}

	ctx := c.Request().Context()
	userID, err := resolver.ResolveUserID(ctx, sess.Token, sess.Username)
	if err != nil {
		if sessionFatal(err) {
			return session.Session{}, false, rejectSession(c, sessions, err)
		}
		return session.Session{}, false, writeError(c, err)
	}

	if err := sessions.SetUserID(ctx, userID); err != nil {
		slog.Error("failed to persist resolved user id", "error", err)
	}
	sess.UserID = userID
	return sess, true, nil
}
