package service

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doJSON(e http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, e http.Handler) {
	t.Helper()
	rec := doJSON(e, "POST", "/api/login", `{"username":"student1","password":"campus"}`)
	require.Equal(t, http.StatusOK, rec.Code, "login must succeed: %s", rec.Body.String())
}

func TestHealth(t *testing.T) {
	e, _ := setupTestEcho(t)

	rec := doJSON(e, "GET", "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAggregateRoutesRequireSession(t *testing.T) {
	e, _ := setupTestEcho(t)

	for _, path := range []string{"/api/profile", "/api/courses", "/api/courses/201/activities", "/api/cv", "/api/cv/pdf"} {
		rec := doJSON(e, "GET", path, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "route %s must require a session", path)
	}
}

func TestLogin_StoresSessionAndResolvesUserID(t *testing.T) {
	e, _ := setupTestEcho(t)

	rec := doJSON(e, "POST", "/api/login", `{"username":"student1","password":"campus"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Username string `json:"username"`
		UserID   int64  `json:"userId"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "student1", resp.Username)
	assert.Equal(t, int64(7), resp.UserID)
}

func TestLogin_BadCredentials(t *testing.T) {
	e, _ := setupTestEcho(t)

	rec := doJSON(e, "POST", "/api/login", `{"username":"student1","password":"wrong"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogin_MissingFields(t *testing.T) {
	e, _ := setupTestEcho(t)

	rec := doJSON(e, "POST", "/api/login", `{"username":"student1"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProfile_AfterLogin(t *testing.T) {
	e, _ := setupTestEcho(t)
	login(t, e)

	rec := doJSON(e, "GET", "/api/profile", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var p map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, "Omar Negrete", p["fullName"])
	assert.Equal(t, "https://lms/avatar/7/big", p["profileImageUrl"])
	assert.Equal(t, "3° Secundaria", p["grade"])
}

func TestProfile_PhoneOutageRendersDefaultNotError(t *testing.T) {
	e, lms := setupTestEcho(t)
	lms.handlers["core_user_get_users"] = func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"exception":"moodle_exception","errorcode":"nopermissions","message":"Permission denied"}`))
	}
	login(t, e)

	rec := doJSON(e, "GET", "/api/profile", "")
	require.Equal(t, http.StatusOK, rec.Code, "optional phone outage must not fail the profile")

	var p map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, "Omar Negrete", p["fullName"])
	assert.Equal(t, "omar@example.com", p["email"])
	assert.Equal(t, "No disponible", p["phone"])
}

func TestCourses_AfterLogin(t *testing.T) {
	e, _ := setupTestEcho(t)
	login(t, e)

	rec := doJSON(e, "GET", "/api/courses", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var list []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "MAT-3", list[0]["shortname"])
}

func TestCourses_DisabledListingRendersEmpty(t *testing.T) {
	e, lms := setupTestEcho(t)
	lms.handlers["core_enrol_get_users_courses"] = func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"exception":"webservice_access_exception","errorcode":"accessexception","message":"Access control exception"}`))
	}
	login(t, e)

	rec := doJSON(e, "GET", "/api/courses", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestCourseActivities(t *testing.T) {
	e, _ := setupTestEcho(t)
	login(t, e)

	rec := doJSON(e, "GET", "/api/courses/201/activities", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var list []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Tarea 1", list[0]["name"])
	assert.Equal(t, "Unidad 1", list[0]["sectionName"])
}

func TestCourseActivities_InvalidID(t *testing.T) {
	e, _ := setupTestEcho(t)
	login(t, e)

	rec := doJSON(e, "GET", "/api/courses/abc/activities", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCV_AfterLogin(t *testing.T) {
	e, _ := setupTestEcho(t)
	login(t, e)

	rec := doJSON(e, "GET", "/api/cv", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var doc struct {
		Profile struct {
			FullName string `json:"fullname"`
		} `json:"profile"`
		Courses []any  `json:"courses"`
		Badges  []any  `json:"badges"`
		Phone   string `json:"phone"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "Omar Negrete", doc.Profile.FullName)
	assert.Len(t, doc.Courses, 1)
	assert.Len(t, doc.Badges, 1)
	assert.Equal(t, "555 0100", doc.Phone)
}

func TestCVPDF_Download(t *testing.T) {
	e, _ := setupTestEcho(t)
	login(t, e)

	rec := doJSON(e, "GET", "/api/cv/pdf", "")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "cv-")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF"))
}

func TestLogout_ClearsSession(t *testing.T) {
	e, _ := setupTestEcho(t)
	login(t, e)

	rec := doJSON(e, "POST", "/api/logout", "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(e, "GET", "/api/profile", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestInvalidTokenClearsSession(t *testing.T) {
	e, lms := setupTestEcho(t)
	login(t, e)

	lms.handlers["core_user_get_users_by_field"] = func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"exception":"moodle_exception","errorcode":"invalidtoken","message":"Invalid token - token not found"}`))
	}

	rec := doJSON(e, "GET", "/api/profile", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// Session was cleared; the next request fails the middleware check.
	rec = doJSON(e, "GET", "/api/courses", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLmsOutageIsRetryable(t *testing.T) {
	e, lms := setupTestEcho(t)
	login(t, e)

	lms.handlers["core_enrol_get_users_courses"] = func(w http.ResponseWriter, r *http.Request) {
		// Simulate a dropped connection mid-response.
		hj, ok := w.(http.Hijacker)
		require.True(t, ok)
		conn, _, err := hj.Hijack()
		require.NoError(t, err)
		conn.Close()
	}

	rec := doJSON(e, "GET", "/api/courses", "")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "check your connection")
}
