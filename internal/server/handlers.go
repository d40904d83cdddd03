package server

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/varoOP/movielog/internal/domain"
	"github.com/varoOP/movielog/internal/tmdb"
)

const posterBaseURL = "https://image.tmdb.org/t/p/w500"

type homeData struct {
	Movies     []domain.Movie
	Page       int
	TotalPages int
	Notices    []string
}

type editData struct {
	Movie  *domain.Movie
	Rating string
	Review string
	Errors map[string]string
}

type addData struct {
	Title   string
	Errors  map[string]string
	Error   string
	Message string
}

type selectData struct {
	Options []domain.CandidateMovie
}

type errorData struct {
	Status  int
	Message string
}

// handleHome renders the ranked list, best ranking first.
func (s *Server) handleHome(c echo.Context) error {
	page, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || page < 1 {
		page = 1
	}

	count, err := s.repo.Count(c.Request().Context())
	if err != nil {
		return s.renderFailure(c, errors.Wrap(err, "failed to count movies"))
	}

	totalPages := (count + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}
	if page > totalPages {
		page = totalPages
	}

	movies, err := s.repo.List(c.Request().Context(), domain.ListParams{
		OrderBy: domain.OrderByRanking,
		Limit:   pageSize,
		Offset:  (page - 1) * pageSize,
	})
	if err != nil {
		return s.renderFailure(c, errors.Wrap(err, "failed to list movies"))
	}

	return c.Render(http.StatusOK, "index.html", homeData{
		Movies:     movies,
		Page:       page,
		TotalPages: totalPages,
		Notices:    s.flashes(c),
	})
}

// handleEditForm renders the rating/review form for one movie.
func (s *Server) handleEditForm(c echo.Context) error {
	movie, err := s.movieFromPath(c)
	if err != nil {
		return s.renderNotFoundOrFailure(c, err)
	}

	return c.Render(http.StatusOK, "edit.html", editData{
		Movie:  movie,
		Rating: strconv.FormatFloat(movie.Rating, 'f', -1, 64),
		Review: movie.Review,
		Errors: map[string]string{},
	})
}

// handleEditSubmit validates and persists a new rating and review, then
// re-derives all rankings before responding.
func (s *Server) handleEditSubmit(c echo.Context) error {
	movie, err := s.movieFromPath(c)
	if err != nil {
		return s.renderNotFoundOrFailure(c, err)
	}

	ratingField := strings.TrimSpace(c.FormValue("rating"))
	reviewField := strings.TrimSpace(c.FormValue("review"))

	fieldErrors := map[string]string{}
	rating, err := strconv.ParseFloat(ratingField, 64)
	switch {
	case ratingField == "":
		fieldErrors["rating"] = "This field is required."
	case err != nil:
		fieldErrors["rating"] = "Rating must be a number."
	}
	if reviewField == "" {
		fieldErrors["review"] = "This field is required."
	}

	if len(fieldErrors) > 0 {
		return c.Render(http.StatusOK, "edit.html", editData{
			Movie:  movie,
			Rating: ratingField,
			Review: reviewField,
			Errors: fieldErrors,
		})
	}

	movie.Rating = rating
	movie.Review = reviewField

	if err := s.repo.Update(c.Request().Context(), movie); err != nil {
		return s.renderNotFoundOrFailure(c, errors.Wrap(err, "failed to update movie"))
	}

	if err := s.ranking.Rerank(c.Request().Context()); err != nil {
		return s.renderFailure(c, err)
	}

	return c.Redirect(http.StatusFound, "/")
}

// handleDelete removes a movie and re-derives the remaining rankings.
func (s *Server) handleDelete(c echo.Context) error {
	movie, err := s.movieFromPath(c)
	if err != nil {
		return s.renderNotFoundOrFailure(c, err)
	}

	if err := s.repo.Delete(c.Request().Context(), movie.ID); err != nil {
		return s.renderNotFoundOrFailure(c, errors.Wrap(err, "failed to delete movie"))
	}

	if err := s.ranking.Rerank(c.Request().Context()); err != nil {
		return s.renderFailure(c, err)
	}

	if err := s.notifier.SendMovieDeleted(c.Request().Context(), movie); err != nil {
		s.log.Warn().Err(err).Msg("Failed to send deleted notification")
	}

	return c.Redirect(http.StatusFound, "/")
}

// handleAddForm renders the title search form.
func (s *Server) handleAddForm(c echo.Context) error {
	return c.Render(http.StatusOK, "add.html", addData{Errors: map[string]string{}})
}

// handleAddSearch queries the movie database and renders the candidate
// picker. Gateway failures surface as an inline message, never a crash.
func (s *Server) handleAddSearch(c echo.Context) error {
	title := strings.TrimSpace(c.FormValue("title"))
	if title == "" {
		return c.Render(http.StatusOK, "add.html", addData{
			Errors: map[string]string{"title": "This field is required."},
		})
	}

	options, err := s.tmdb.SearchByTitle(c.Request().Context(), title)
	if err != nil {
		s.log.Error().Err(err).Str("title", title).Msg("Movie search failed")
		return c.Render(http.StatusOK, "add.html", addData{
			Title:  title,
			Errors: map[string]string{},
			Error:  tmdb.UserMessage(err),
		})
	}

	if len(options) == 0 {
		return c.Render(http.StatusOK, "add.html", addData{
			Title:   title,
			Errors:  map[string]string{},
			Message: fmt.Sprintf("No matches found for %q.", title),
		})
	}

	return c.Render(http.StatusOK, "select.html", selectData{Options: options})
}

// handleAddMovie materializes a chosen search result into a persisted
// movie and routes the user to its edit view.
func (s *Server) handleAddMovie(c echo.Context) error {
	externalID, err := strconv.Atoi(c.Param("external_id"))
	if err != nil {
		return s.renderError(c, http.StatusNotFound, "Movie not found")
	}

	candidate, err := s.tmdb.FetchDetails(c.Request().Context(), externalID)
	if err != nil {
		s.log.Error().Err(err).Int("external_id", externalID).Msg("Failed to fetch movie details")
		s.addFlash(c, tmdb.UserMessage(err))
		return c.Redirect(http.StatusFound, "/add")
	}

	// Duplicate check happens before any write, so an existing title
	// triggers neither an insert nor a rerank.
	existing, err := s.repo.FindByTitle(c.Request().Context(), candidate.Title)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return s.renderFailure(c, errors.Wrap(err, "failed to check for duplicate title"))
	}
	if existing != nil {
		s.addFlash(c, fmt.Sprintf("%s already exists in your list.", candidate.Title))
		return c.Redirect(http.StatusFound, "/")
	}

	movie := &domain.Movie{
		Title:       candidate.Title,
		Year:        yearFromReleaseDate(candidate.ReleaseDate),
		Description: candidate.Overview,
		Rating:      candidate.VoteAverage,
		Review:      domain.DefaultReview,
		ImgURL:      posterURL(candidate.PosterPath),
	}

	if err := s.repo.Store(c.Request().Context(), movie); err != nil {
		return s.renderFailure(c, errors.Wrap(err, "failed to store movie"))
	}

	if err := s.ranking.Rerank(c.Request().Context()); err != nil {
		return s.renderFailure(c, err)
	}

	if err := s.notifier.SendMovieAdded(c.Request().Context(), movie); err != nil {
		s.log.Warn().Err(err).Msg("Failed to send added notification")
	}

	return c.Redirect(http.StatusFound, fmt.Sprintf("/update/%d", movie.ID))
}

func (s *Server) movieFromPath(c echo.Context) (*domain.Movie, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return nil, domain.ErrNotFound
	}

	return s.repo.GetByID(c.Request().Context(), id)
}

func (s *Server) renderNotFoundOrFailure(c echo.Context, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return s.renderError(c, http.StatusNotFound, "Movie not found")
	}
	return s.renderFailure(c, err)
}

func (s *Server) renderFailure(c echo.Context, err error) error {
	s.log.Error().Err(err).Str("path", c.Request().URL.Path).Msg("Request failed")
	return s.renderError(c, http.StatusInternalServerError, "Something went wrong. Please try again.")
}

func (s *Server) renderError(c echo.Context, status int, message string) error {
	return c.Render(status, "error.html", errorData{Status: status, Message: message})
}

func yearFromReleaseDate(releaseDate string) *int {
	if len(releaseDate) < 4 {
		return nil
	}
	year, err := strconv.Atoi(releaseDate[:4])
	if err != nil {
		return nil
	}
	return &year
}

func posterURL(posterPath string) string {
	if posterPath == "" {
		return ""
	}
	return posterBaseURL + posterPath
}
