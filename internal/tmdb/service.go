package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/varoOP/movielog/internal/domain"
)

const defaultBaseURL = "https://api.themoviedb.org/3"

// Service wraps outbound calls to the movie database API.
type Service interface {
	// SearchByTitle returns candidate movies matching the given title.
	// Zero matches is an empty slice, not an error.
	SearchByTitle(ctx context.Context, title string) ([]domain.CandidateMovie, error)

	// FetchDetails returns the full candidate for one external id, used
	// to materialize a movie after the user picks a search result.
	FetchDetails(ctx context.Context, externalID int) (*domain.CandidateMovie, error)
}

type service struct {
	log        zerolog.Logger
	token      string
	baseURL    string
	httpClient *http.Client
}

// NewService creates a new movie database API client
func NewService(log zerolog.Logger, config *domain.Config) Service {
	return &service{
		log:     log.With().Str("module", "tmdb").Logger(),
		token:   config.TmdbApiToken,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type searchResponse struct {
	Page    int `json:"page"`
	Results []struct {
		ID          int     `json:"id"`
		Overview    string  `json:"overview"`
		PosterPath  string  `json:"poster_path"`
		ReleaseDate string  `json:"release_date"`
		Title       string  `json:"title"`
		VoteAverage float64 `json:"vote_average"`
	} `json:"results"`
	TotalPages   int `json:"total_pages"`
	TotalResults int `json:"total_results"`
}

type detailsResponse struct {
	ID          int     `json:"id"`
	Overview    string  `json:"overview"`
	PosterPath  string  `json:"poster_path"`
	ReleaseDate string  `json:"release_date"`
	Title       string  `json:"title"`
	VoteAverage float64 `json:"vote_average"`
}

func (s *service) SearchByTitle(ctx context.Context, title string) ([]domain.CandidateMovie, error) {
	target, err := url.Parse(s.baseURL + "/search/movie")
	if err != nil {
		return nil, &Error{Kind: KindConnection, Err: err}
	}

	query := target.Query()
	query.Add("query", title)
	query.Add("language", "en-US")
	query.Add("page", "1")
	target.RawQuery = query.Encode()

	body, apiErr := s.get(ctx, target.String())
	if apiErr != nil {
		return nil, apiErr
	}

	search := &searchResponse{}
	if err := json.Unmarshal(body, search); err != nil {
		return nil, &Error{Kind: KindUnparseable, Err: err}
	}

	candidates := make([]domain.CandidateMovie, 0, len(search.Results))
	for _, result := range search.Results {
		candidates = append(candidates, domain.CandidateMovie{
			ExternalID:  result.ID,
			Title:       result.Title,
			ReleaseDate: result.ReleaseDate,
			Overview:    result.Overview,
			PosterPath:  result.PosterPath,
			VoteAverage: result.VoteAverage,
		})
	}

	s.log.Debug().
		Str("title", title).
		Int("total_results", search.TotalResults).
		Msg("Search complete")

	return candidates, nil
}

func (s *service) FetchDetails(ctx context.Context, externalID int) (*domain.CandidateMovie, error) {
	target := fmt.Sprintf("%s/movie/%d", s.baseURL, externalID)

	body, apiErr := s.get(ctx, target)
	if apiErr != nil {
		return nil, apiErr
	}

	details := &detailsResponse{}
	if err := json.Unmarshal(body, details); err != nil {
		return nil, &Error{Kind: KindUnparseable, Err: err}
	}

	s.log.Debug().
		Int("external_id", externalID).
		Str("title", details.Title).
		Msg("Fetched movie details")

	return &domain.CandidateMovie{
		ExternalID:  details.ID,
		Title:       details.Title,
		ReleaseDate: details.ReleaseDate,
		Overview:    details.Overview,
		PosterPath:  details.PosterPath,
		VoteAverage: details.VoteAverage,
	}, nil
}

// get performs one authenticated GET and translates every failure into
// an *Error; raw transport errors never reach the caller.
func (s *service) get(ctx context.Context, target string) ([]byte, *Error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &Error{Kind: KindConnection, Err: err}
	}

	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, &Error{Kind: KindTimeout, Err: err}
		}
		return nil, &Error{Kind: KindConnection, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &Error{Kind: statusKind(resp.StatusCode), Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindConnection, Err: err}
	}

	return body, nil
}

func isTimeout(err error) bool {
	if err == nil {
		return false
	}
	if netErr, ok := err.(interface{ Timeout() bool }); ok && netErr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
