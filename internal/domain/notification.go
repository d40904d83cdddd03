package domain

import "context"

// NotificationService defines the interface for notification services
type NotificationService interface {
	// SendMovieAdded sends a notification that a movie was added to the list
	SendMovieAdded(ctx context.Context, movie *Movie) error

	// SendMovieDeleted sends a notification that a movie was removed from the list
	SendMovieDeleted(ctx context.Context, movie *Movie) error
}
