package service

import (
	"net/http"

	"github.com/hericraft/campus-api/internal/courses"
	"github.com/hericraft/campus-api/internal/cv"
	"github.com/hericraft/campus-api/internal/handlers"
	"github.com/hericraft/campus-api/internal/middleware"
	"github.com/hericraft/campus-api/internal/moodle"
	"github.com/hericraft/campus-api/internal/profile"
	"github.com/hericraft/campus-api/internal/session"
	"github.com/hericraft/campus-api/storage"
	"github.com/labstack/echo/v4"
)

type Service struct {
	storage  *storage.Storage
	config   *Config
	sessions *session.Store
	lms      *moodle.Client

	authHandler    *handlers.AuthHandler
	profileHandler *handlers.ProfileHandler
	courseHandler  *handlers.CourseHandler
	cvHandler      *handlers.CVHandler
}

func New(storage *storage.Storage, config *Config) *Service {
	sessions := session.NewStore(storage.Queries)
	lms := moodle.NewClient(config.Moodle.URL, config.Moodle.Service)

	resolver := profile.NewResolver(lms)
	aggregator := courses.NewAggregator(lms)
	builder := cv.NewBuilder(lms)

	return &Service{
		storage:        storage,
		config:         config,
		sessions:       sessions,
		lms:            lms,
		authHandler:    handlers.NewAuthHandler(resolver, sessions),
		profileHandler: handlers.NewProfileHandler(resolver, sessions),
		courseHandler:  handlers.NewCourseHandler(aggregator, resolver, sessions),
		cvHandler:      handlers.NewCVHandler(builder, resolver, sessions, lms.BaseURL()),
	}
}

func (s *Service) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", s.handleHealth)

	api := e.Group("/api")
	api.Use(middleware.LoadSession(s.sessions))

	// Login and logout manage the session themselves.
	api.POST("/login", s.authHandler.HandleLogin)
	api.POST("/logout", s.authHandler.HandleLogout)

	// Aggregate views require a stored token.
	authed := api.Group("", middleware.RequireSession)
	authed.GET("/profile", s.profileHandler.HandleProfile)
	authed.GET("/courses", s.courseHandler.HandleCourses)
	authed.GET("/courses/:id/activities", s.courseHandler.HandleCourseActivities)
	authed.GET("/cv", s.cvHandler.HandleCV)
	authed.GET("/cv/pdf", s.cvHandler.HandleCVPDF)
}

func (s *Service) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":      "ok",
		"environment": s.config.Environment,
	})
}
