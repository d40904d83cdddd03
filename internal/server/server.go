package server

import (
	"context"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/varoOP/movielog/internal/domain"
	"github.com/varoOP/movielog/internal/ranking"
	"github.com/varoOP/movielog/internal/tmdb"
)

const (
	pageSize    = 10
	sessionName = "movielog"
)

// Server is the HTTP front of the application. All handler state is
// injected; there are no package-level globals.
type Server struct {
	log      zerolog.Logger
	config   *domain.Config
	echo     *echo.Echo
	repo     domain.MovieRepository
	ranking  ranking.Service
	tmdb     tmdb.Service
	notifier domain.NotificationService
	sessions sessions.Store
}

// NewServer creates the HTTP server and registers all routes.
func NewServer(log zerolog.Logger, config *domain.Config, repo domain.MovieRepository, rankingService ranking.Service, tmdbService tmdb.Service, notifier domain.NotificationService) (*Server, error) {
	s := &Server{
		log:      log.With().Str("module", "server").Logger(),
		config:   config,
		repo:     repo,
		ranking:  rankingService,
		tmdb:     tmdbService,
		notifier: notifier,
		sessions: sessions.NewCookieStore([]byte(config.SessionSecret)),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	renderer, err := newTemplateRenderer()
	if err != nil {
		return nil, err
	}
	e.Renderer = renderer

	e.Use(middleware.Recover())
	e.Use(s.requestLogger)

	e.GET("/", s.handleHome)
	e.GET("/update/:id", s.handleEditForm)
	e.POST("/update/:id", s.handleEditSubmit)
	e.GET("/delete/:id", s.handleDelete)
	e.GET("/add", s.handleAddForm)
	e.POST("/add", s.handleAddSearch)
	e.GET("/add_movie/:external_id", s.handleAddMovie)

	s.echo = e
	return s, nil
}

// Start blocks serving HTTP on the configured address.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.config.ListenAddr).Msg("Starting HTTP server")
	if err := s.echo.Start(s.config.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "http server failed")
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		err := next(c)
		if err != nil {
			c.Error(err)
		}
		s.log.Debug().
			Str("method", c.Request().Method).
			Str("path", c.Request().URL.Path).
			Int("status", c.Response().Status).
			Msg("Request handled")
		return nil
	}
}

// addFlash queues a one-shot notice for the next rendered page.
func (s *Server) addFlash(c echo.Context, message string) {
	session, err := s.sessions.Get(c.Request(), sessionName)
	if err != nil {
		// A stale or tampered cookie yields a fresh session, keep going.
		s.log.Warn().Err(err).Msg("Failed to decode session, starting a new one")
	}
	session.AddFlash(message)
	if err := session.Save(c.Request(), c.Response().Writer); err != nil {
		s.log.Warn().Err(err).Msg("Failed to save session")
	}
}

// flashes drains queued notices for the current request.
func (s *Server) flashes(c echo.Context) []string {
	session, err := s.sessions.Get(c.Request(), sessionName)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to decode session, starting a new one")
	}

	raw := session.Flashes()
	if len(raw) > 0 {
		if err := session.Save(c.Request(), c.Response().Writer); err != nil {
			s.log.Warn().Err(err).Msg("Failed to save session")
		}
	}

	messages := make([]string, 0, len(raw))
	for _, f := range raw {
		if msg, ok := f.(string); ok {
			messages = append(messages, msg)
		}
	}
	return messages
}
