package database

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/varoOP/movielog/internal/domain"
)

// MovieRepo implements domain.MovieRepository on sqlite
type MovieRepo struct {
	log zerolog.Logger
	db  *DB
}

// NewMovieRepo creates a new movie repository
func NewMovieRepo(log zerolog.Logger, db *DB) domain.MovieRepository {
	return &MovieRepo{
		log: log.With().Str("repo", "movie").Logger(),
		db:  db,
	}
}

var movieColumns = []string{"id", "title", "year", "description", "rating", "ranking", "review", "img_url"}

// List returns movies in the order requested by params. A zero Limit
// returns the full table.
func (r *MovieRepo) List(ctx context.Context, params domain.ListParams) ([]domain.Movie, error) {
	queryBuilder := r.db.squirrel.
		Select(movieColumns...).
		From("movie")

	switch params.OrderBy {
	case domain.OrderByRating:
		// Deriver order: best rating first, ties broken by id ascending
		// so repeated reranks assign identical rankings.
		queryBuilder = queryBuilder.OrderBy("rating DESC", "id ASC")
	default:
		queryBuilder = queryBuilder.OrderBy("ranking ASC", "id ASC")
	}

	if params.Limit > 0 {
		queryBuilder = queryBuilder.Limit(uint64(params.Limit)).Offset(uint64(params.Offset))
	}

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "error building query")
	}

	r.log.Trace().Str("query", query).Interface("args", args).Msg("List")

	rows, err := r.db.handler.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "error executing query")
	}
	defer rows.Close()

	movies := []domain.Movie{}
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		movies = append(movies, *m)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error iterating rows")
	}

	return movies, nil
}

// Count returns the number of tracked movies
func (r *MovieRepo) Count(ctx context.Context) (int, error) {
	queryBuilder := r.db.squirrel.
		Select("COUNT(*)").
		From("movie")

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "error building query")
	}

	r.log.Trace().Str("query", query).Msg("Count")

	var count int
	if err := r.db.handler.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "error executing query")
	}

	return count, nil
}

// GetByID returns the movie with the given id, or domain.ErrNotFound.
func (r *MovieRepo) GetByID(ctx context.Context, id int64) (*domain.Movie, error) {
	queryBuilder := r.db.squirrel.
		Select(movieColumns...).
		From("movie").
		Where(sq.Eq{"id": id})

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "error building query")
	}

	r.log.Trace().Str("query", query).Interface("args", args).Msg("GetByID")

	row := r.db.handler.QueryRowContext(ctx, query, args...)
	m, err := scanMovie(row)
	if err != nil {
		return nil, err
	}

	return m, nil
}

// FindByTitle returns the first movie matching title exactly, or
// domain.ErrNotFound. Used for duplicate detection in the add flow.
func (r *MovieRepo) FindByTitle(ctx context.Context, title string) (*domain.Movie, error) {
	queryBuilder := r.db.squirrel.
		Select(movieColumns...).
		From("movie").
		Where(sq.Eq{"title": title}).
		OrderBy("id ASC").
		Limit(1)

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "error building query")
	}

	r.log.Trace().Str("query", query).Interface("args", args).Msg("FindByTitle")

	row := r.db.handler.QueryRowContext(ctx, query, args...)
	m, err := scanMovie(row)
	if err != nil {
		return nil, err
	}

	return m, nil
}

// Store inserts a new movie and writes the assigned id back into movie.
func (r *MovieRepo) Store(ctx context.Context, movie *domain.Movie) error {
	queryBuilder := r.db.squirrel.
		Insert("movie").
		Columns("title", "year", "description", "rating", "ranking", "review", "img_url").
		Values(movie.Title, yearValue(movie.Year), movie.Description, movie.Rating, movie.Ranking, movie.Review, movie.ImgURL)

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return errors.Wrap(err, "error building query")
	}

	r.log.Trace().Str("query", query).Interface("args", args).Msg("Store")

	result, err := r.db.handler.ExecContext(ctx, query, args...)
	if err != nil {
		return errors.Wrap(err, "error executing query")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return errors.Wrap(err, "error getting inserted id")
	}
	movie.ID = id

	return nil
}

// Update persists in-place field changes for an existing movie.
func (r *MovieRepo) Update(ctx context.Context, movie *domain.Movie) error {
	queryBuilder := r.db.squirrel.
		Update("movie").
		Set("title", movie.Title).
		Set("year", yearValue(movie.Year)).
		Set("description", movie.Description).
		Set("rating", movie.Rating).
		Set("ranking", movie.Ranking).
		Set("review", movie.Review).
		Set("img_url", movie.ImgURL).
		Where(sq.Eq{"id": movie.ID})

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return errors.Wrap(err, "error building query")
	}

	r.log.Trace().Str("query", query).Interface("args", args).Msg("Update")

	result, err := r.db.handler.ExecContext(ctx, query, args...)
	if err != nil {
		return errors.Wrap(err, "error executing query")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "error getting affected rows")
	}
	if affected == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// Delete removes the movie with the given id, or returns
// domain.ErrNotFound when no such row exists.
func (r *MovieRepo) Delete(ctx context.Context, id int64) error {
	queryBuilder := r.db.squirrel.
		Delete("movie").
		Where(sq.Eq{"id": id})

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return errors.Wrap(err, "error building query")
	}

	r.log.Trace().Str("query", query).Interface("args", args).Msg("Delete")

	result, err := r.db.handler.ExecContext(ctx, query, args...)
	if err != nil {
		return errors.Wrap(err, "error executing query")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "error getting affected rows")
	}
	if affected == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// UpdateRankings writes a batch of ranking assignments inside a single
// transaction, so readers never observe a partially reranked table.
func (r *MovieRepo) UpdateRankings(ctx context.Context, rankings map[int64]int) error {
	if len(rankings) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for id, rank := range rankings {
		queryBuilder := r.db.squirrel.
			Update("movie").
			Set("ranking", rank).
			Where(sq.Eq{"id": id})

		query, args, err := queryBuilder.ToSql()
		if err != nil {
			return errors.Wrap(err, "error building query")
		}

		r.log.Trace().Str("query", query).Interface("args", args).Msg("UpdateRankings")

		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return errors.Wrapf(err, "error updating ranking for movie %d", id)
		}
	}

	return errors.Wrap(tx.Commit(), "error committing rankings")
}

// rowScanner covers both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanMovie(row rowScanner) (*domain.Movie, error) {
	var m domain.Movie
	var year sql.NullInt64
	var description, imgURL sql.NullString

	err := row.Scan(&m.ID, &m.Title, &year, &description, &m.Rating, &m.Ranking, &m.Review, &imgURL)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, errors.Wrap(err, "error scanning row")
	}

	if year.Valid {
		y := int(year.Int64)
		m.Year = &y
	}
	m.Description = description.String
	m.ImgURL = imgURL.String

	return &m, nil
}

func yearValue(year *int) any {
	if year == nil {
		return nil
	}
	return *year
}
