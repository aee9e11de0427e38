package handlers

import (
	"net/http"

	"github.com/hericraft/campus-api/internal/profile"
	"github.com/hericraft/campus-api/internal/session"
	"github.com/labstack/echo/v4"
)

type ProfileHandler struct {
	resolver *profile.Resolver
	sessions *session.Store
}

func NewProfileHandler(resolver *profile.Resolver, sessions *session.Store) *ProfileHandler {
	return &ProfileHandler{resolver: resolver, sessions: sessions}
}

// HandleProfile returns the merged profile. Avatar and phone degrade to
// defaults inside the resolver; only the base record lookup can fail here.
func (h *ProfileHandler) HandleProfile(c echo.Context) error {
	sess, ok, err := resolveSession(c, h.resolver, h.sessions)
	if !ok {
		return err
	}

	p, err := h.resolver.FetchProfile(c.Request().Context(), sess.Token, sess.UserID)
	if err != nil {
		if sessionFatal(err) {
			return rejectSession(c, h.sessions, err)
		}
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, p)
}
