package handlers

import (
	"fmt"
	"net/http"

	"github.com/hericraft/campus-api/internal/cv"
	"github.com/hericraft/campus-api/internal/profile"
	"github.com/hericraft/campus-api/internal/session"
	"github.com/labstack/echo/v4"
)

type CVHandler struct {
	builder    *cv.Builder
	resolver   *profile.Resolver
	sessions   *session.Store
	lmsBaseURL string
}

func NewCVHandler(builder *cv.Builder, resolver *profile.Resolver, sessions *session.Store, lmsBaseURL string) *CVHandler {
	return &CVHandler{builder: builder, resolver: resolver, sessions: sessions, lmsBaseURL: lmsBaseURL}
}

// HandleCV returns the merged CV model. Courses, badges and phone default
// independently; only the identity lookup can fail.
func (h *CVHandler) HandleCV(c echo.Context) error {
	doc, err := h.buildDocument(c)
	if doc == nil {
		return err
	}
	return c.JSON(http.StatusOK, doc)
}

// HandleCVPDF renders the CV as a downloadable PDF.
func (h *CVHandler) HandleCVPDF(c echo.Context) error {
	doc, err := h.buildDocument(c)
	if doc == nil {
		return err
	}

	data, ref, err := cv.Render(doc, h.lmsBaseURL)
	if err != nil {
		return writeError(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="cv-%s.pdf"`, ref))
	return c.Blob(http.StatusOK, "application/pdf", data)
}

// buildDocument resolves the session and assembles the CV; on failure it
// writes the response and returns a nil document.
func (h *CVHandler) buildDocument(c echo.Context) (*cv.Document, error) {
	sess, ok, err := resolveSession(c, h.resolver, h.sessions)
	if !ok {
		return nil, err
	}

	doc, err := h.builder.Build(c.Request().Context(), sess.Token, sess.UserID)
	if err != nil {
		if sessionFatal(err) {
			return nil, rejectSession(c, h.sessions, err)
		}
		return nil, writeError(c, err)
	}

	return doc, nil
}
