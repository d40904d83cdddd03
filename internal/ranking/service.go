package ranking

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/varoOP/movielog/internal/domain"
)

// Service recomputes every movie's ranking from its rating. It must run
// after each mutation that touches a rating or the set of movies.
type Service interface {
	Rerank(ctx context.Context) error
}

type service struct {
	log  zerolog.Logger
	repo domain.MovieRepository
	mu   sync.Mutex
}

// NewService creates a new ranking service
func NewService(log zerolog.Logger, repo domain.MovieRepository) Service {
	return &service{
		log:  log.With().Str("module", "ranking").Logger(),
		repo: repo,
	}
}

// Rerank fetches all movies ordered by rating descending (ties broken by
// id ascending), assigns a dense 1..n ranking by position, and persists
// the changed rows as one batch. An empty table is a no-op.
func (s *service) Rerank(ctx context.Context) error {
	// Serialize the read-sort-write-back sequence so concurrent
	// mutations cannot interleave with it.
	s.mu.Lock()
	defer s.mu.Unlock()

	movies, err := s.repo.List(ctx, domain.ListParams{OrderBy: domain.OrderByRating})
	if err != nil {
		return errors.Wrap(err, "failed to list movies for reranking")
	}

	if len(movies) == 0 {
		return nil
	}

	changed := make(map[int64]int)
	for i := range movies {
		rank := i + 1
		if movies[i].Ranking != rank {
			changed[movies[i].ID] = rank
		}
	}

	if len(changed) == 0 {
		s.log.Debug().Int("total", len(movies)).Msg("Rankings already up to date")
		return nil
	}

	if err := s.repo.UpdateRankings(ctx, changed); err != nil {
		return errors.Wrap(err, "failed to persist rankings")
	}

	s.log.Debug().
		Int("total", len(movies)).
		Int("changed", len(changed)).
		Msg("Rankings recomputed")

	return nil
}
