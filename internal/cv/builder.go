// Package cv assembles the academic CV display model from several
// independent LMS lookups and renders it as a PDF document.
package cv

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/hericraft/campus-api/internal/courses"
	"github.com/hericraft/campus-api/internal/moodle"
	"github.com/hericraft/campus-api/internal/profile"
	"golang.org/x/sync/errgroup"
)

// siteCourseID mirrors the course aggregator's front-page filter.
const siteCourseID = 1

// Document is the merged CV model. Every field defaults independently on
// its own sub-fetch failure; only the identity lookup is fatal.
type Document struct {
	User    moodle.User     `json:"profile"`
	Courses []moodle.Course `json:"courses"`
	Badges  []moodle.Badge  `json:"badges"`
	Phone   string          `json:"phone"`
}

type Builder struct {
	lms *moodle.Client
}

func NewBuilder(lms *moodle.Client) *Builder {
	return &Builder{lms: lms}
}

// Build fans out the profile, course and badge fetches concurrently; the
// phone lookup runs alongside without blocking them. Wall-clock latency is
// bounded by the slowest single call, not the sum.
func (b *Builder) Build(ctx context.Context, token string, userID int64) (*Document, error) {
	doc := &Document{
		Courses: []moodle.Course{},
		Badges:  []moodle.Badge{},
		Phone:   profile.DefaultPhone,
	}

	id := strconv.FormatInt(userID, 10)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		users, err := b.lms.UsersByField(gctx, token, "id", id)
		if err != nil {
			return err
		}
		if len(users) == 0 {
			return &profile.Error{Reason: "user record not found"}
		}
		doc.User = users[0]
		return nil
	})

	g.Go(func() error {
		all, err := b.lms.UserCourses(gctx, token, userID)
		if err != nil {
			slog.Debug("cv course fetch degraded to empty list", "user_id", userID, "error", err)
			return nil
		}
		kept := make([]moodle.Course, 0, len(all))
		for _, c := range all {
			if c.ID == siteCourseID {
				continue
			}
			kept = append(kept, c)
		}
		doc.Courses = kept
		return nil
	})

	g.Go(func() error {
		badges, err := b.lms.UserBadges(gctx, token, userID)
		if err != nil {
			slog.Debug("cv badge fetch degraded to empty list", "user_id", userID, "error", err)
			return nil
		}
		if badges != nil {
			doc.Badges = badges
		}
		return nil
	})

	g.Go(func() error {
		users, err := b.lms.UserSearch(gctx, token, "id", id)
		if err != nil || len(users) == 0 {
			slog.Debug("cv phone fetch degraded to default", "user_id", userID, "error", err)
			return nil
		}
		phone := users[0].Phone2
		if phone == "" {
			phone = users[0].Phone1
		}
		if phone = strings.TrimSpace(phone); phone != "" {
			doc.Phone = phone
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return doc, nil
}

// CompletedCourses and InProgressCourses split the enrolments for the two
// CV sections.
func (d *Document) CompletedCourses() []moodle.Course {
	return d.filterCourses(true)
}

func (d *Document) InProgressCourses() []moodle.Course {
	return d.filterCourses(false)
}

func (d *Document) filterCourses(completed bool) []moodle.Course {
	kept := []moodle.Course{}
	for _, c := range d.Courses {
		if courses.Completed(c) == completed {
			kept = append(kept, c)
		}
	}
	return kept
}
