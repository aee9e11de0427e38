// Package profile authenticates against the LMS and assembles the user
// profile from the base record plus best-effort enrichment lookups.
package profile

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/hericraft/campus-api/internal/moodle"
	"golang.org/x/sync/errgroup"
)

// DefaultPhone is shown when the phone lookup fails or comes back empty.
const DefaultPhone = "No disponible"

type Profile struct {
	ID              int64  `json:"id"`
	Username        string `json:"username"`
	FullName        string `json:"fullName"`
	Email           string `json:"email"`
	Description     string `json:"description"`
	ProfileImageURL string `json:"profileImageUrl"`
	Grade           string `json:"grade"`
	RawGrade        string `json:"rawGrade"`
	RawLevel        string `json:"rawLevel"`
	UserType        string `json:"userType"`
	Phone           string `json:"phone"`
}

type Resolver struct {
	lms *moodle.Client
}

func NewResolver(lms *moodle.Client) *Resolver {
	return &Resolver{lms: lms}
}

// Authenticate exchanges credentials for an access token. The numeric user
// id is not part of the token response; ResolveUserID is a second,
// separate lookup.
func (r *Resolver) Authenticate(ctx context.Context, username, password string) (string, error) {
	return r.lms.Login(ctx, username, password)
}

// ResolveUserID finds the numeric id behind a username. An empty result is
// a *Error: the caller must clear the session and force re-login.
func (r *Resolver) ResolveUserID(ctx context.Context, token, username string) (int64, error) {
	users, err := r.lms.UsersByField(ctx, token, "username", username)
	if err != nil {
		return 0, err
	}
	if len(users) == 0 {
		return 0, &Error{Reason: "user id not resolved"}
	}
	return users[0].ID, nil
}

// FetchProfile builds the profile for a user id. The base record is
// mandatory; the high-resolution avatar and the phone lookups run
// concurrently and degrade to defaults on any failure.
func (r *Resolver) FetchProfile(ctx context.Context, token string, userID int64) (*Profile, error) {
	users, err := r.lms.UsersByField(ctx, token, "id", strconv.FormatInt(userID, 10))
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, &Error{Reason: "user record not found"}
	}
	base := users[0]

	rawGrade := ExtractGrade(base.CustomFields)
	rawLevel := ExtractLevel(base.CustomFields)

	p := &Profile{
		ID:              base.ID,
		Username:        base.Username,
		FullName:        base.FullName,
		Email:           base.Email,
		Description:     base.Description,
		ProfileImageURL: base.ProfileImageURL,
		Grade:           GradeDisplay(rawGrade, rawLevel),
		RawGrade:        rawGrade,
		RawLevel:        rawLevel,
		UserType:        ExtractUserType(base.CustomFields),
		Phone:           DefaultPhone,
	}

	// Best-effort enrichment: each task swallows its own failure and leaves
	// the default in place. A partially-down LMS must not blank the profile.
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		url, err := r.highResAvatar(gctx, token, userID)
		if err != nil {
			slog.Debug("avatar lookup degraded to default", "user_id", userID, "error", err)
			return nil
		}
		if url != "" {
			p.ProfileImageURL = url
		}
		return nil
	})

	g.Go(func() error {
		phone, err := r.phoneNumber(gctx, token, userID)
		if err != nil {
			slog.Debug("phone lookup degraded to default", "user_id", userID, "error", err)
			return nil
		}
		p.Phone = phone
		return nil
	})

	// Tasks never return errors; Wait only joins them.
	_ = g.Wait()

	return p, nil
}

func (r *Resolver) highResAvatar(ctx context.Context, token string, userID int64) (string, error) {
	images, err := r.lms.ProfileImages(ctx, token, []int64{userID})
	if err != nil {
		return "", err
	}
	if len(images) == 0 {
		return "", nil
	}
	return LargestVariant(images[0].URLs), nil
}

func (r *Resolver) phoneNumber(ctx context.Context, token string, userID int64) (string, error) {
	users, err := r.lms.UserSearch(ctx, token, "id", strconv.FormatInt(userID, 10))
	if err != nil {
		return "", err
	}
	if len(users) == 0 {
		return DefaultPhone, nil
	}

	phone := users[0].Phone2
	if phone == "" {
		phone = users[0].Phone1
	}
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return DefaultPhone, nil
	}
	return phone, nil
}
