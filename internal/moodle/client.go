// Package moodle is a thin client for the Moodle web-service REST surface.
// Every call goes to one fixed endpoint carrying a wstoken, a wsfunction
// name and the JSON output-format flag; the client classifies failures but
// never touches session state.
package moodle

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	restPath  = "/webservice/rest/server.php"
	tokenPath = "/login/token.php"

	restFormat     = "json"
	defaultService = "moodle_mobile_app"
	defaultTimeout = 30 * time.Second
)

type Client struct {
	baseURL    string
	service    string
	httpClient *http.Client
}

func NewClient(baseURL, service string) *Client {
	if service == "" {
		service = defaultService
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		service: service,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// BaseURL returns the configured site root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Login exchanges credentials for an access token. The response does not
// carry the numeric user id; resolving it is a separate lookup.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	form := url.Values{
		"username": {username},
		"password": {password},
		"service":  {c.service},
	}

	body, err := c.postForm(ctx, c.baseURL+tokenPath, form)
	if err != nil {
		return "", err
	}

	var tok tokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return "", &TransportError{Err: fmt.Errorf("decode token response: %w", err)}
	}

	if tok.Error != "" {
		return "", &RemoteError{Message: tok.Error, Code: tok.ErrorCode}
	}
	if tok.Token == "" {
		return "", &RemoteError{Message: "no access token in response"}
	}

	return tok.Token, nil
}

// Call invokes a named web-service function and returns the raw JSON body.
// A body carrying Moodle's error marker becomes a *RemoteError; an empty
// result list is data, not an error.
func (c *Client) Call(ctx context.Context, token, wsfunction string, params url.Values) ([]byte, error) {
	form := url.Values{
		"wstoken":            {token},
		"wsfunction":         {wsfunction},
		"moodlewsrestformat": {restFormat},
	}
	for key, values := range params {
		form[key] = values
	}

	slog.Debug("calling moodle web service", "wsfunction", wsfunction)

	body, err := c.postForm(ctx, c.baseURL+restPath, form)
	if err != nil {
		return nil, err
	}

	if err := faultOf(body); err != nil {
		slog.Debug("moodle web service fault", "wsfunction", wsfunction, "error", err)
		return nil, err
	}

	return body, nil
}

func (c *Client) postForm(ctx context.Context, endpoint string, form url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &RemoteError{
			Message: fmt.Sprintf("server returned status %d", resp.StatusCode),
			Code:    "httpstatus",
		}
	}

	return body, nil
}

// faultOf reports the error marker of a JSON object body, if any. Array
// bodies never carry a marker.
func faultOf(body []byte) error {
	trimmed := strings.TrimLeftFunc(string(body), func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	if !strings.HasPrefix(trimmed, "{") {
		return nil
	}

	var fault wsFault
	if err := json.Unmarshal(body, &fault); err != nil {
		return nil
	}

	if fault.Exception != "" {
		msg := fault.Message
		if msg == "" {
			msg = fault.Exception
		}
		return &RemoteError{Message: msg, Code: fault.ErrorCode}
	}
	if fault.Error != "" {
		return &RemoteError{Message: fault.Error, Code: fault.ErrorCode}
	}

	return nil
}

// UsersByField looks up users by a single field value
// (core_user_get_users_by_field).
func (c *Client) UsersByField(ctx context.Context, token, field, value string) ([]User, error) {
	body, err := c.Call(ctx, token, "core_user_get_users_by_field", url.Values{
		"field":     {field},
		"values[0]": {value},
	})
	if err != nil {
		return nil, err
	}

	var users []User
	if err := json.Unmarshal(body, &users); err != nil {
		return nil, &TransportError{Err: fmt.Errorf("decode users: %w", err)}
	}
	return users, nil
}

// UserSearch looks up users by one criteria pair (core_user_get_users).
// This variant exposes the extended record, including phone numbers.
func (c *Client) UserSearch(ctx context.Context, token, key, value string) ([]User, error) {
	body, err := c.Call(ctx, token, "core_user_get_users", url.Values{
		"criteria[0][key]":   {key},
		"criteria[0][value]": {value},
	})
	if err != nil {
		return nil, err
	}

	var result usersResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &TransportError{Err: fmt.Errorf("decode user search: %w", err)}
	}
	return result.Users, nil
}

// ProfileImages fetches the avatar size variants for the given users
// (core_user_get_user_profile_image).
func (c *Client) ProfileImages(ctx context.Context, token string, userIDs []int64) ([]ProfileImage, error) {
	params := url.Values{}
	for i, id := range userIDs {
		params.Set(fmt.Sprintf("userids[%d]", i), strconv.FormatInt(id, 10))
	}

	body, err := c.Call(ctx, token, "core_user_get_user_profile_image", params)
	if err != nil {
		return nil, err
	}

	var result profileImagesResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &TransportError{Err: fmt.Errorf("decode profile images: %w", err)}
	}
	return result.ProfileImageURLs, nil
}

// UserCourses lists the courses a user is enrolled in
// (core_enrol_get_users_courses). One call, no per-course fan-out.
func (c *Client) UserCourses(ctx context.Context, token string, userID int64) ([]Course, error) {
	body, err := c.Call(ctx, token, "core_enrol_get_users_courses", url.Values{
		"userid": {strconv.FormatInt(userID, 10)},
	})
	if err != nil {
		return nil, err
	}

	var courses []Course
	if err := json.Unmarshal(body, &courses); err != nil {
		return nil, &TransportError{Err: fmt.Errorf("decode courses: %w", err)}
	}
	return courses, nil
}

// CourseContents fetches a course's section and module tree
// (core_course_get_contents).
func (c *Client) CourseContents(ctx context.Context, token string, courseID int64) ([]Section, error) {
	body, err := c.Call(ctx, token, "core_course_get_contents", url.Values{
		"courseid": {strconv.FormatInt(courseID, 10)},
	})
	if err != nil {
		return nil, err
	}

	var sections []Section
	if err := json.Unmarshal(body, &sections); err != nil {
		return nil, &TransportError{Err: fmt.Errorf("decode course contents: %w", err)}
	}
	return sections, nil
}

// UserBadges fetches a user's badges (core_badges_get_user_badges).
func (c *Client) UserBadges(ctx context.Context, token string, userID int64) ([]Badge, error) {
	body, err := c.Call(ctx, token, "core_badges_get_user_badges", url.Values{
		"userid": {strconv.FormatInt(userID, 10)},
	})
	if err != nil {
		return nil, err
	}

	var result badgesResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &TransportError{Err: fmt.Errorf("decode badges: %w", err)}
	}
	return result.Badges, nil
}
