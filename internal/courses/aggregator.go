// Package courses lists a user's enrolments and flattens course content
// trees into the activities still pending completion.
package courses

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hericraft/campus-api/internal/moodle"
)

// siteCourseID is Moodle's front-page pseudo-course; it shows up in
// enrolment lists but is never a real course.
const siteCourseID = 1

// accessExceptionCode is returned when a web-service function is disabled
// server-side. The course screen renders "no courses" in that case instead
// of an error.
const accessExceptionCode = "accessexception"

type Activity struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	URL         string `json:"url"`
	SectionName string `json:"sectionName"`
}

type Aggregator struct {
	lms *moodle.Client
}

func NewAggregator(lms *moodle.Client) *Aggregator {
	return &Aggregator{lms: lms}
}

// Completed is the single completion predicate: a course counts as
// completed when the server flags it or its progress reaches 100.
func Completed(c moodle.Course) bool {
	return c.Completed || (c.Progress != nil && *c.Progress >= 100)
}

// ListEnrolledCourses fetches the user's enrolments in one call; there is
// deliberately no per-course fan-out. A disabled listing function degrades
// to an empty list; any other failure surfaces as retryable.
func (a *Aggregator) ListEnrolledCourses(ctx context.Context, token string, userID int64) ([]moodle.Course, error) {
	all, err := a.lms.UserCourses(ctx, token, userID)
	if err != nil {
		var remote *moodle.RemoteError
		if errors.As(err, &remote) && remote.Code == accessExceptionCode {
			slog.Warn("course listing disabled server-side", "user_id", userID)
			return []moodle.Course{}, nil
		}
		return nil, err
	}

	courses := make([]moodle.Course, 0, len(all))
	for _, c := range all {
		if c.ID == siteCourseID {
			continue
		}
		courses = append(courses, c)
	}
	return courses, nil
}

// ListPendingActivities flattens the section tree of a course, keeping
// server order and only modules with completion tracking enabled whose
// completion state is still 0.
func (a *Aggregator) ListPendingActivities(ctx context.Context, token string, courseID int64) ([]Activity, error) {
	sections, err := a.lms.CourseContents(ctx, token, courseID)
	if err != nil {
		return nil, err
	}

	activities := []Activity{}
	for _, section := range sections {
		for _, mod := range section.Modules {
			if mod.Completion == 0 || mod.CompletionData == nil {
				continue
			}
			if mod.CompletionData.State != 0 {
				continue
			}
			activities = append(activities, Activity{
				ID:          mod.ID,
				Name:        mod.Name,
				Type:        mod.ModName,
				URL:         mod.URL,
				SectionName: section.Name,
			})
		}
	}

	return activities, nil
}
