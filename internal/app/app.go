package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/varoOP/movielog/internal/config"
	"github.com/varoOP/movielog/internal/database"
	"github.com/varoOP/movielog/internal/domain"
	"github.com/varoOP/movielog/internal/logger"
	"github.com/varoOP/movielog/internal/notification"
	"github.com/varoOP/movielog/internal/ranking"
	"github.com/varoOP/movielog/internal/repository"
	"github.com/varoOP/movielog/internal/server"
	"github.com/varoOP/movielog/internal/tmdb"
)

// App represents the main application with all dependencies initialized
type App struct {
	log                 zerolog.Logger
	config              *domain.Config
	db                  *database.DB
	movieRepo           domain.MovieRepository
	rankingService      ranking.Service
	tmdbService         tmdb.Service
	notificationService domain.NotificationService
}

// NewApp creates a new application instance with all dependencies initialized
func NewApp() (*App, error) {
	// Initialize logger
	log := logger.NewLogger()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize database
	db, err := database.NewDB(cfg.DataDir, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Initialize repositories and services
	movieRepo := database.NewMovieRepo(log, db)
	rankingService := ranking.NewService(log, movieRepo)
	tmdbService := tmdb.NewService(log, cfg)
	notificationService := notification.NewService(log, cfg.DiscordWebhookURL)

	return &App{
		log:                 log,
		config:              cfg,
		db:                  db,
		movieRepo:           movieRepo,
		rankingService:      rankingService,
		tmdbService:         tmdbService,
		notificationService: notificationService,
	}, nil
}

// Close releases the application's resources.
func (a *App) Close() error {
	return a.db.Close()
}

// Run serves HTTP until the process receives an interrupt.
func (a *App) Run() error {
	srv, err := server.NewServer(a.log, a.config, a.movieRepo, a.rankingService, a.tmdbService, a.notificationService)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.log.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}

	return <-errCh
}

// Export writes the full ranked movie list to a YAML file.
func (a *App) Export(path string) error {
	ctx := context.Background()

	movies, err := a.movieRepo.List(ctx, domain.ListParams{OrderBy: domain.OrderByRanking})
	if err != nil {
		return fmt.Errorf("failed to list movies: %w", err)
	}

	fileRepo := repository.NewFileRepository(a.log)
	if err := fileRepo.ExportYAML(ctx, path, movies); err != nil {
		return fmt.Errorf("failed to export movies: %w", err)
	}

	return nil
}
