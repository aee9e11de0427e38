// Command mock-lms runs a fake Moodle web-service endpoint for local
// development: fixture users, courses, badges and content trees behind the
// same wire formats the gateway consumes.
//
// Usage: go run ./scripts/mock-lms [-port 9090]
//
// Any fixture username with password "campus" logs in.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"sync"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
)

const fixturePassword = "campus"

type user struct {
	ID           int64         `json:"id"`
	Username     string        `json:"username"`
	FullName     string        `json:"fullname"`
	Email        string        `json:"email"`
	Description  string        `json:"description"`
	ProfileImage string        `json:"profileimageurl"`
	Phone1       string        `json:"phone1"`
	Phone2       string        `json:"phone2"`
	CustomFields []customField `json:"customfields"`
}

type customField struct {
	ShortName string `json:"shortname"`
	Name      string `json:"name"`
	Value     string `json:"value"`
}

type course struct {
	ID        int64   `json:"id"`
	FullName  string  `json:"fullname"`
	ShortName string  `json:"shortname"`
	Summary   string  `json:"summary"`
	StartDate int64   `json:"startdate"`
	Progress  float64 `json:"progress"`
	Completed bool    `json:"completed"`
}

type server struct {
	users   []user
	courses map[int64][]course

	mu     sync.Mutex
	tokens map[string]int64 // token -> user id
}

func main() {
	port := flag.Int("port", 9090, "listen port")
	flag.Parse()

	// Deterministic fixtures across restarts.
	gofakeit.Seed(42)

	s := newServer()

	mux := http.NewServeMux()
	mux.HandleFunc("/login/token.php", s.handleToken)
	mux.HandleFunc("/webservice/rest/server.php", s.handleWebService)

	addr := fmt.Sprintf(":%d", *port)
	slog.Info("mock lms listening", "addr", addr, "users", len(s.users), "password", fixturePassword)
	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Error("mock lms failed", "error", err)
		os.Exit(1)
	}
}

func newServer() *server {
	s := &server{
		courses: map[int64][]course{},
		tokens:  map[string]int64{},
	}

	grades := []string{"1", "2", "3", "4", "5", "6"}
	levels := []string{"Primaria", "Secundaria", "Preparatoria"}
	subjects := []string{"Matemáticas", "Historia", "Biología", "Física", "Literatura", "Informática"}

	for i := 0; i < 5; i++ {
		id := int64(i + 2)
		name := gofakeit.Name()
		u := user{
			ID:           id,
			Username:     fmt.Sprintf("student%d", i+1),
			FullName:     name,
			Email:        gofakeit.Email(),
			Description:  gofakeit.Sentence(12),
			ProfileImage: fmt.Sprintf("https://mock-lms.local/pluginfile.php/%d/user/icon/f1", id),
			Phone1:       gofakeit.Phone(),
			CustomFields: []customField{
				{ShortName: "grado_escolar", Name: "Grado Escolar", Value: grades[i%len(grades)]},
				{ShortName: "nivel_escolar", Name: "Nivel Escolar", Value: levels[i%len(levels)]},
				{ShortName: "tipo_usuario", Name: "Tipo de Usuario", Value: "Alumno"},
			},
		}
		s.users = append(s.users, u)

		var enrolled []course
		for j, subject := range subjects[:3+i%3] {
			progress := float64((j * 40) % 110)
			if progress > 100 {
				progress = 100
			}
			enrolled = append(enrolled, course{
				ID:        id*100 + int64(j),
				FullName:  fmt.Sprintf("%s %s", subject, []string{"I", "II", "III"}[j%3]),
				ShortName: fmt.Sprintf("%s-%d", subject[:3], j+1),
				Summary:   gofakeit.Sentence(15),
				StartDate: gofakeit.DateRange(gofakeit.Date().AddDate(-3, 0, 0), gofakeit.Date()).Unix(),
				Progress:  progress,
				Completed: progress >= 100,
			})
		}
		s.courses[id] = enrolled
	}

	return s
}

func (s *server) handleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	username := r.Form.Get("username")
	password := r.Form.Get("password")

	if u := s.userByUsername(username); u != nil && password == fixturePassword {
		token := uuid.NewString()
		s.mu.Lock()
		s.tokens[token] = u.ID
		s.mu.Unlock()
		writeJSON(w, map[string]string{"token": token})
		return
	}

	writeJSON(w, map[string]string{
		"error":     "Invalid login, please try again",
		"errorcode": "invalidlogin",
	})
}

func (s *server) handleWebService(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	token := r.Form.Get("wstoken")
	s.mu.Lock()
	userID, ok := s.tokens[token]
	s.mu.Unlock()
	if !ok {
		writeJSON(w, map[string]string{
			"exception": "moodle_exception",
			"errorcode": "invalidtoken",
			"message":   "Invalid token - token not found",
		})
		return
	}

	wsfunction := r.Form.Get("wsfunction")
	slog.Info("web service call", "wsfunction", wsfunction, "user_id", userID)

	switch wsfunction {
	case "core_user_get_users_by_field":
		s.handleUsersByField(w, r)
	case "core_user_get_users":
		s.handleUserSearch(w, r)
	case "core_user_get_user_profile_image":
		s.handleProfileImage(w, r)
	case "core_enrol_get_users_courses":
		s.handleUserCourses(w, r)
	case "core_course_get_contents":
		s.handleCourseContents(w, r)
	case "core_badges_get_user_badges":
		s.handleBadges(w, r)
	default:
		writeJSON(w, map[string]string{
			"exception": "webservice_access_exception",
			"errorcode": "accessexception",
			"message":   "Access control exception",
		})
	}
}

func (s *server) handleUsersByField(w http.ResponseWriter, r *http.Request) {
	field := r.Form.Get("field")
	value := r.Form.Get("values[0]")

	var found *user
	switch field {
	case "username":
		found = s.userByUsername(value)
	case "id":
		if id, err := strconv.ParseInt(value, 10, 64); err == nil {
			found = s.userByID(id)
		}
	}

	if found == nil {
		writeJSON(w, []user{})
		return
	}
	writeJSON(w, []user{*found})
}

func (s *server) handleUserSearch(w http.ResponseWriter, r *http.Request) {
	key := r.Form.Get("criteria[0][key]")
	value := r.Form.Get("criteria[0][value]")

	users := []user{}
	if key == "id" {
		if id, err := strconv.ParseInt(value, 10, 64); err == nil {
			if u := s.userByID(id); u != nil {
				users = append(users, *u)
			}
		}
	}

	writeJSON(w, map[string]any{"users": users, "warnings": []any{}})
}

func (s *server) handleProfileImage(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(r.Form.Get("userids[0]"), 10, 64)
	urls := map[string]string{
		"size_35":  fmt.Sprintf("https://mock-lms.local/avatar/%d/f3", id),
		"size_100": fmt.Sprintf("https://mock-lms.local/avatar/%d/f2", id),
		"size_200": fmt.Sprintf("https://mock-lms.local/avatar/%d/f1", id),
	}
	writeJSON(w, map[string]any{
		"profileimageurls": []map[string]any{{"userid": id, "urls": urls}},
		"warnings":         []any{},
	})
}

func (s *server) handleUserCourses(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(r.Form.Get("userid"), 10, 64)
	courses := s.courses[id]
	if courses == nil {
		courses = []course{}
	}
	writeJSON(w, courses)
}

func (s *server) handleCourseContents(w http.ResponseWriter, r *http.Request) {
	courseID, _ := strconv.ParseInt(r.Form.Get("courseid"), 10, 64)

	writeJSON(w, []map[string]any{
		{
			"id":   courseID * 10,
			"name": "General",
			"modules": []map[string]any{
				{
					"id": courseID*10 + 1, "name": "Bienvenida", "modname": "forum",
					"url": fmt.Sprintf("https://mock-lms.local/mod/forum/view.php?id=%d", courseID*10+1),
					"completion": 0,
				},
				{
					"id": courseID*10 + 2, "name": "Tarea 1", "modname": "assign",
					"url": fmt.Sprintf("https://mock-lms.local/mod/assign/view.php?id=%d", courseID*10+2),
					"completion": 1, "completiondata": map[string]any{"state": 0},
				},
				{
					"id": courseID*10 + 3, "name": "Cuestionario 1", "modname": "quiz",
					"url": fmt.Sprintf("https://mock-lms.local/mod/quiz/view.php?id=%d", courseID*10+3),
					"completion": 2, "completiondata": map[string]any{"state": 1},
				},
			},
		},
	})
}

func (s *server) handleBadges(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"badges": []map[string]string{
			{"name": "Participación Destacada"},
			{"name": "Primer Curso Completado"},
		},
	})
}

func (s *server) userByUsername(username string) *user {
	for i := range s.users {
		if s.users[i].Username == username {
			return &s.users[i]
		}
	}
	return nil
}

func (s *server) userByID(id int64) *user {
	for i := range s.users {
		if s.users[i].ID == id {
			return &s.users[i]
		}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
