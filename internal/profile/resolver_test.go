package profile

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hericraft/campus-api/internal/moodle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLMS dispatches on wsfunction so individual remote operations can be
// overridden per test.
type fakeLMS struct {
	handlers map[string]http.HandlerFunc
}

func newFakeLMS() *fakeLMS {
	f := &fakeLMS{handlers: map[string]http.HandlerFunc{}}

	f.handlers["core_user_get_users_by_field"] = func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":7,"username":"student1","fullname":"Omar Negrete","email":"omar@example.com",
			"profileimageurl":"https://lms/avatar/7/f2",
			"customfields":[
				{"shortname":"grado_escolar","name":"Grado Escolar","value":"3"},
				{"shortname":"nivel_escolar","name":"Nivel Escolar","value":"Secundaria"},
				{"shortname":"tipo_usuario","name":"Tipo de Usuario","value":"Alumno"}
			]}]`))
	}
	f.handlers["core_user_get_user_profile_image"] = func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"profileimageurls":[{"userid":7,"urls":{"size_50":"https://lms/avatar/7/small","size_200":"https://lms/avatar/7/big"}}]}`))
	}
	f.handlers["core_user_get_users"] = func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"users":[{"id":7,"phone1":"555 0100","phone2":"555 0200"}]}`))
	}

	return f
}

func (f *fakeLMS) start(t *testing.T) *moodle.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/login/token.php" {
			w.Write([]byte(`{"token":"tok-abc"}`))
			return
		}
		require.NoError(t, r.ParseForm())
		handler, ok := f.handlers[r.Form.Get("wsfunction")]
		require.True(t, ok, "unexpected wsfunction %q", r.Form.Get("wsfunction"))
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return moodle.NewClient(srv.URL, "")
}

func TestAuthenticateThenResolveUserID(t *testing.T) {
	resolver := NewResolver(newFakeLMS().start(t))

	token, err := resolver.Authenticate(context.Background(), "student1", "campus")
	require.NoError(t, err)
	assert.Equal(t, "tok-abc", token)

	userID, err := resolver.ResolveUserID(context.Background(), token, "student1")
	require.NoError(t, err)
	assert.Equal(t, int64(7), userID)
}

func TestResolveUserID_EmptyResultIsFatal(t *testing.T) {
	lms := newFakeLMS()
	lms.handlers["core_user_get_users_by_field"] = func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}
	resolver := NewResolver(lms.start(t))

	_, err := resolver.ResolveUserID(context.Background(), "tok", "ghost")

	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "user id not resolved", perr.Reason)
}

func TestFetchProfile_MergesEnrichment(t *testing.T) {
	resolver := NewResolver(newFakeLMS().start(t))

	p, err := resolver.FetchProfile(context.Background(), "tok", 7)
	require.NoError(t, err)

	assert.Equal(t, "Omar Negrete", p.FullName)
	assert.Equal(t, "omar@example.com", p.Email)
	assert.Equal(t, "https://lms/avatar/7/big", p.ProfileImageURL, "largest avatar variant wins")
	assert.Equal(t, "3° Secundaria", p.Grade)
	assert.Equal(t, "3", p.RawGrade)
	assert.Equal(t, "Secundaria", p.RawLevel)
	assert.Equal(t, "Alumno", p.UserType)
	assert.Equal(t, "555 0200", p.Phone, "phone2 preferred over phone1")
}

func TestFetchProfile_PhoneFailureDegradesToDefault(t *testing.T) {
	lms := newFakeLMS()
	lms.handlers["core_user_get_users"] = func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"exception":"moodle_exception","errorcode":"nopermissions","message":"Permission denied"}`))
	}
	resolver := NewResolver(lms.start(t))

	p, err := resolver.FetchProfile(context.Background(), "tok", 7)
	require.NoError(t, err, "optional sub-fetch failure must not abort the profile")

	assert.Equal(t, "Omar Negrete", p.FullName)
	assert.Equal(t, DefaultPhone, p.Phone)
	assert.Equal(t, "https://lms/avatar/7/big", p.ProfileImageURL)
}

func TestFetchProfile_AvatarFailureKeepsLowResURL(t *testing.T) {
	lms := newFakeLMS()
	lms.handlers["core_user_get_user_profile_image"] = func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"exception":"moodle_exception","errorcode":"nopermissions","message":"Permission denied"}`))
	}
	resolver := NewResolver(lms.start(t))

	p, err := resolver.FetchProfile(context.Background(), "tok", 7)
	require.NoError(t, err)

	assert.Equal(t, "https://lms/avatar/7/f2", p.ProfileImageURL, "base record URL survives")
	assert.Equal(t, "555 0200", p.Phone)
}

func TestFetchProfile_MissingBaseRecordIsFatal(t *testing.T) {
	lms := newFakeLMS()
	lms.handlers["core_user_get_users_by_field"] = func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}
	resolver := NewResolver(lms.start(t))

	_, err := resolver.FetchProfile(context.Background(), "tok", 7)

	var perr *Error
	require.ErrorAs(t, err, &perr)
}

func TestFetchProfile_NoCustomFieldsYieldsSentinels(t *testing.T) {
	lms := newFakeLMS()
	lms.handlers["core_user_get_users_by_field"] = func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":7,"fullname":"Omar Negrete","email":"omar@example.com"}]`))
	}
	resolver := NewResolver(lms.start(t))

	p, err := resolver.FetchProfile(context.Background(), "tok", 7)
	require.NoError(t, err)

	assert.Equal(t, DefaultGrade, p.RawGrade)
	assert.Equal(t, DefaultGrade, p.Grade)
	assert.Equal(t, DefaultUserType, p.UserType)
}
