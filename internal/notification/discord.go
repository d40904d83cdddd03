package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/varoOP/movielog/internal/domain"
)

// DiscordService implements NotificationService for Discord webhooks
type DiscordService struct {
	log        zerolog.Logger
	webhookURL string
	httpClient *http.Client
}

// NewDiscordService creates a new Discord notification service
func NewDiscordService(log zerolog.Logger, webhookURL string) *DiscordService {
	return &DiscordService{
		log:        log.With().Str("module", "notification").Str("type", "discord").Logger(),
		webhookURL: webhookURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SendMovieAdded sends a notification that a movie was added to the list
func (s *DiscordService) SendMovieAdded(ctx context.Context, movie *domain.Movie) error {
	if s.webhookURL == "" {
		return nil // No webhook configured, skip silently
	}

	year := "unknown"
	if movie.Year != nil {
		year = fmt.Sprintf("%d", *movie.Year)
	}

	embed := discordEmbed{
		Title:       "Movie Added",
		Description: fmt.Sprintf("**%s** was added to the list", movie.Title),
		Color:       0x00ff00, // Green
		Timestamp:   time.Now().Format(time.RFC3339),
		Fields: []discordField{
			{
				Name:   "Year",
				Value:  year,
				Inline: true,
			},
			{
				Name:   "Rating",
				Value:  fmt.Sprintf("%.1f", movie.Rating),
				Inline: true,
			},
		},
	}

	payload := discordWebhook{
		Embeds: []discordEmbed{embed},
	}

	return s.sendWebhook(ctx, payload)
}

// SendMovieDeleted sends a notification that a movie was removed from the list
func (s *DiscordService) SendMovieDeleted(ctx context.Context, movie *domain.Movie) error {
	if s.webhookURL == "" {
		return nil // No webhook configured, skip silently
	}

	embed := discordEmbed{
		Title:       "Movie Removed",
		Description: fmt.Sprintf("**%s** was removed from the list", movie.Title),
		Color:       0xff0000, // Red
		Timestamp:   time.Now().Format(time.RFC3339),
	}

	payload := discordWebhook{
		Embeds: []discordEmbed{embed},
	}

	return s.sendWebhook(ctx, payload)
}

// sendWebhook sends a webhook payload to Discord
func (s *DiscordService) sendWebhook(ctx context.Context, payload discordWebhook) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "failed to marshal webhook payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return errors.Wrap(err, "failed to create webhook request")
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "failed to send webhook request")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook request failed with status %d", resp.StatusCode)
	}

	s.log.Debug().Msg("Discord notification sent successfully")
	return nil
}

// discordWebhook represents a Discord webhook payload
type discordWebhook struct {
	Embeds []discordEmbed `json:"embeds"`
}

// discordEmbed represents a Discord embed
type discordEmbed struct {
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Color       int            `json:"color"`
	Timestamp   string         `json:"timestamp,omitempty"`
	Fields      []discordField `json:"fields,omitempty"`
}

// discordField represents a Discord embed field
type discordField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}
