package service

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hericraft/campus-api/storage"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

// fixtureLMS is a canned Moodle endpoint for route tests. Handlers are
// keyed by wsfunction and can be overridden per test before requests run.
type fixtureLMS struct {
	handlers map[string]http.HandlerFunc
	login    http.HandlerFunc
}

func newFixtureLMS() *fixtureLMS {
	f := &fixtureLMS{handlers: map[string]http.HandlerFunc{}}

	f.login = func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if r.Form.Get("username") == "student1" && r.Form.Get("password") == "campus" {
			w.Write([]byte(`{"token":"tok-fixture"}`))
			return
		}
		w.Write([]byte(`{"error":"Invalid login, please try again","errorcode":"invalidlogin"}`))
	}

	f.handlers["core_user_get_users_by_field"] = func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":7,"username":"student1","fullname":"Omar Negrete","email":"omar@example.com",
			"profileimageurl":"https://lms/avatar/7/f2",
			"customfields":[{"shortname":"grado_escolar","name":"Grado Escolar","value":"3"},
				{"shortname":"nivel_escolar","name":"Nivel Escolar","value":"Secundaria"}]}]`))
	}
	f.handlers["core_user_get_user_profile_image"] = func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"profileimageurls":[{"userid":7,"urls":{"size_50":"https://lms/avatar/7/small","size_200":"https://lms/avatar/7/big"}}]}`))
	}
	f.handlers["core_user_get_users"] = func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"users":[{"id":7,"phone1":"555 0100"}]}`))
	}
	f.handlers["core_enrol_get_users_courses"] = func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":201,"fullname":"Matemáticas III","shortname":"MAT-3","progress":40}]`))
	}
	f.handlers["core_course_get_contents"] = func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":10,"name":"Unidad 1","modules":[
			{"id":102,"name":"Tarea 1","modname":"assign","url":"u102","completion":1,"completiondata":{"state":0}}]}]`))
	}
	f.handlers["core_badges_get_user_badges"] = func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"badges":[{"name":"Primer Curso Completado"}]}`))
	}

	return f
}

func (f *fixtureLMS) start(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/login/token.php" {
			f.login(w, r)
			return
		}
		require.NoError(t, r.ParseForm())
		handler, ok := f.handlers[r.Form.Get("wsfunction")]
		require.True(t, ok, "unexpected wsfunction %q", r.Form.Get("wsfunction"))
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// setupTestEcho wires a full service against an in-memory database and the
// fixture LMS.
func setupTestEcho(t *testing.T) (*echo.Echo, *fixtureLMS) {
	t.Helper()

	store, cleanup, err := storage.NewTestStorage()
	require.NoError(t, err)
	t.Cleanup(cleanup)

	lms := newFixtureLMS()
	srv := lms.start(t)

	config := &Config{Environment: "test", Port: "0", DBPath: ":memory:"}
	config.Moodle.URL = srv.URL
	config.Moodle.Service = "moodle_mobile_app"

	svc := New(store, config)

	e := echo.New()
	e.HideBanner = true
	svc.RegisterRoutes(e)

	return e, lms
}
