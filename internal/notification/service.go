package notification

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/varoOP/movielog/internal/domain"
)

// Service is a composite notification service that can send notifications
// through multiple channels
type Service struct {
	discord *DiscordService
}

// NewService creates a new notification service
func NewService(log zerolog.Logger, webhookURL string) domain.NotificationService {
	var discord *DiscordService
	if webhookURL != "" {
		discord = NewDiscordService(log, webhookURL)
	}

	return &Service{
		discord: discord,
	}
}

// SendMovieAdded sends added notifications through all configured channels
func (s *Service) SendMovieAdded(ctx context.Context, movie *domain.Movie) error {
	if s.discord != nil {
		if err := s.discord.SendMovieAdded(ctx, movie); err != nil {
			return err
		}
	}
	return nil
}

// SendMovieDeleted sends deleted notifications through all configured channels
func (s *Service) SendMovieDeleted(ctx context.Context, movie *domain.Movie) error {
	if s.discord != nil {
		if err := s.discord.SendMovieDeleted(ctx, movie); err != nil {
			return err
		}
	}
	return nil
}
