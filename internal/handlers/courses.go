package handlers

import (
	"net/http"
	"strconv"

	"github.com/hericraft/campus-api/internal/courses"
	"github.com/hericraft/campus-api/internal/profile"
	"github.com/hericraft/campus-api/internal/session"
	"github.com/labstack/echo/v4"
)

type CourseHandler struct {
	aggregator *courses.Aggregator
	resolver   *profile.Resolver
	sessions   *session.Store
}

func NewCourseHandler(aggregator *courses.Aggregator, resolver *profile.Resolver, sessions *session.Store) *CourseHandler {
	return &CourseHandler{aggregator: aggregator, resolver: resolver, sessions: sessions}
}

// HandleCourses lists the user's enrolments. An empty list is a valid
// answer, including when the listing function is disabled server-side.
func (h *CourseHandler) HandleCourses(c echo.Context) error {
	sess, ok, err := resolveSession(c, h.resolver, h.sessions)
	if !ok {
		return err
	}

	list, err := h.aggregator.ListEnrolledCourses(c.Request().Context(), sess.Token, sess.UserID)
	if err != nil {
		if sessionFatal(err) {
			return rejectSession(c, h.sessions, err)
		}
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, list)
}

// HandleCourseActivities returns the pending activities of one course in
// server order.
func (h *CourseHandler) HandleCourseActivities(c echo.Context) error {
	sess, ok, err := resolveSession(c, h.resolver, h.sessions)
	if !ok {
		return err
	}

	courseID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || courseID <= 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid course id"})
	}

	activities, err := h.aggregator.ListPendingActivities(c.Request().Context(), sess.Token, courseID)
	if err != nil {
		if sessionFatal(err) {
			return rejectSession(c, h.sessions, err)
		}
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, activities)
}
