package domain

import (
	"context"
)

// Movie represents one tracked title with the user's rating and review.
type Movie struct {
	ID          int64   `yaml:"id"`
	Title       string  `yaml:"title"`
	Year        *int    `yaml:"year,omitempty"`
	Description string  `yaml:"description,omitempty"`
	Rating      float64 `yaml:"rating"`
	Ranking     int     `yaml:"ranking"`
	Review      string  `yaml:"review"`
	ImgURL      string  `yaml:"img_url,omitempty"`
}

// CandidateMovie is a search result from the external movie database,
// not yet persisted locally.
type CandidateMovie struct {
	ExternalID  int
	Title       string
	ReleaseDate string
	Overview    string
	PosterPath  string
	VoteAverage float64
}

// DefaultReview is the placeholder review text a movie is created with.
const DefaultReview = "Your Review Here"

// OrderBy selects the iteration order for MovieRepository.List.
type OrderBy string

const (
	// OrderByRanking returns movies by ranking ascending (best first).
	OrderByRanking OrderBy = "ranking"
	// OrderByRating returns movies by rating descending, ties broken by
	// id ascending. This is the order the ranking deriver assigns from.
	OrderByRating OrderBy = "rating"
)

// ListParams controls ordering and pagination for MovieRepository.List.
// A zero Limit disables pagination.
type ListParams struct {
	OrderBy OrderBy
	Limit   int
	Offset  int
}

// MovieRepository defines the interface for movie storage.
type MovieRepository interface {
	List(ctx context.Context, params ListParams) ([]Movie, error)
	Count(ctx context.Context) (int, error)
	GetByID(ctx context.Context, id int64) (*Movie, error)
	FindByTitle(ctx context.Context, title string) (*Movie, error)
	Store(ctx context.Context, movie *Movie) error
	Update(ctx context.Context, movie *Movie) error
	Delete(ctx context.Context, id int64) error
	UpdateRankings(ctx context.Context, rankings map[int64]int) error
}
