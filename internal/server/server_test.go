package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/varoOP/movielog/internal/database"
	"github.com/varoOP/movielog/internal/domain"
	"github.com/varoOP/movielog/internal/tmdb"
)

type fakeGateway struct {
	searchResults []domain.CandidateMovie
	searchErr     error
	details       *domain.CandidateMovie
	detailsErr    error
}

func (f *fakeGateway) SearchByTitle(ctx context.Context, title string) ([]domain.CandidateMovie, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.searchResults, nil
}

func (f *fakeGateway) FetchDetails(ctx context.Context, externalID int) (*domain.CandidateMovie, error) {
	if f.detailsErr != nil {
		return nil, f.detailsErr
	}
	return f.details, nil
}

type fakeRanker struct {
	calls int
}

func (f *fakeRanker) Rerank(ctx context.Context) error {
	f.calls++
	return nil
}

type fakeNotifier struct {
	added   int
	deleted int
}

func (f *fakeNotifier) SendMovieAdded(ctx context.Context, movie *domain.Movie) error {
	f.added++
	return nil
}

func (f *fakeNotifier) SendMovieDeleted(ctx context.Context, movie *domain.Movie) error {
	f.deleted++
	return nil
}

type testServer struct {
	srv      *Server
	repo     domain.MovieRepository
	gateway  *fakeGateway
	ranker   *fakeRanker
	notifier *fakeNotifier
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := database.NewDB(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})

	repo := database.NewMovieRepo(zerolog.Nop(), db)
	gateway := &fakeGateway{}
	ranker := &fakeRanker{}
	notifier := &fakeNotifier{}

	cfg := &domain.Config{
		TmdbApiToken:  "test-token",
		SessionSecret: "test-secret",
		ListenAddr:    ":0",
	}

	srv, err := NewServer(zerolog.Nop(), cfg, repo, ranker, gateway, notifier)
	require.NoError(t, err)

	return &testServer{srv: srv, repo: repo, gateway: gateway, ranker: ranker, notifier: notifier}
}

func (ts *testServer) get(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	ts.srv.echo.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(echoContentType, "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	ts.srv.echo.ServeHTTP(rec, req)
	return rec
}

const echoContentType = "Content-Type"

func (ts *testServer) addMovie(t *testing.T, title string, rating float64, ranking int) *domain.Movie {
	t.Helper()

	movie := &domain.Movie{Title: title, Rating: rating, Ranking: ranking, Review: domain.DefaultReview}
	require.NoError(t, ts.repo.Store(context.Background(), movie))
	return movie
}

func TestHome_EmptyList(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.get("/")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No movies yet")
}

func TestHome_ListsMoviesByRanking(t *testing.T) {
	ts := newTestServer(t)
	ts.addMovie(t, "Second Best", 8.0, 2)
	ts.addMovie(t, "The Best", 9.0, 1)

	rec := ts.get("/")

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "The Best")
	assert.Contains(t, body, "Second Best")
	assert.Less(t, strings.Index(body, "The Best"), strings.Index(body, "Second Best"))
}

func TestHome_Pagination(t *testing.T) {
	ts := newTestServer(t)
	for i := 1; i <= 12; i++ {
		ts.addMovie(t, string(rune('A'+i-1))+" Movie", float64(12-i), i)
	}

	first := ts.get("/")
	assert.Contains(t, first.Body.String(), "A Movie")
	assert.NotContains(t, first.Body.String(), "L Movie")

	second := ts.get("/?page=2")
	assert.Contains(t, second.Body.String(), "L Movie")
	assert.NotContains(t, second.Body.String(), "A Movie")

	// Out-of-range pages clamp instead of erroring
	clamped := ts.get("/?page=99")
	assert.Equal(t, http.StatusOK, clamped.Code)
}

func TestEditForm_RendersMovie(t *testing.T) {
	ts := newTestServer(t)
	movie := ts.addMovie(t, "Heat", 8.3, 1)

	rec := ts.get("/update/" + itoa(movie.ID))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Heat")
	assert.Contains(t, rec.Body.String(), "8.3")
}

func TestEditForm_NotFound(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.get("/update/42")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Movie not found")
}

func TestEditSubmit_UpdatesAndReranks(t *testing.T) {
	ts := newTestServer(t)
	movie := ts.addMovie(t, "Heat", 8.3, 1)

	rec := ts.postForm("/update/"+itoa(movie.ID), url.Values{
		"rating": {"9.1"},
		"review": {"A classic."},
	})

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	got, err := ts.repo.GetByID(context.Background(), movie.ID)
	require.NoError(t, err)
	assert.InDelta(t, 9.1, got.Rating, 0.0001)
	assert.Equal(t, "A classic.", got.Review)
	assert.Equal(t, 1, ts.ranker.calls)
}

func TestEditSubmit_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		rating  string
		review  string
		wantMsg string
	}{
		{"missing_rating", "", "fine", "This field is required."},
		{"malformed_rating", "very good", "fine", "Rating must be a number."},
		{"missing_review", "7.5", "", "This field is required."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			movie := ts.addMovie(t, "Heat", 8.3, 1)

			rec := ts.postForm("/update/"+itoa(movie.ID), url.Values{
				"rating": {tt.rating},
				"review": {tt.review},
			})

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantMsg)

			// Nothing was persisted and no rerank happened
			got, err := ts.repo.GetByID(context.Background(), movie.ID)
			require.NoError(t, err)
			assert.InDelta(t, 8.3, got.Rating, 0.0001)
			assert.Equal(t, 0, ts.ranker.calls)
		})
	}
}

func TestDelete_RemovesAndReranks(t *testing.T) {
	ts := newTestServer(t)
	movie := ts.addMovie(t, "Heat", 8.3, 1)

	rec := ts.get("/delete/" + itoa(movie.ID))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	_, err := ts.repo.GetByID(context.Background(), movie.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 1, ts.ranker.calls)
	assert.Equal(t, 1, ts.notifier.deleted)
}

func TestDelete_NotFound(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.get("/delete/42")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAddSearch_RequiresTitle(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.postForm("/add", url.Values{"title": {"  "}})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "This field is required.")
}

func TestAddSearch_NoMatches(t *testing.T) {
	ts := newTestServer(t)
	ts.gateway.searchResults = []domain.CandidateMovie{}

	rec := ts.postForm("/add", url.Values{"title": {"No Such Film"}})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No matches found")

	count, err := ts.repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestAddSearch_RendersOptions(t *testing.T) {
	ts := newTestServer(t)
	ts.gateway.searchResults = []domain.CandidateMovie{
		{ExternalID: 603, Title: "The Matrix", ReleaseDate: "1999-03-30"},
		{ExternalID: 604, Title: "The Matrix Reloaded", ReleaseDate: "2003-05-15"},
	}

	rec := ts.postForm("/add", url.Values{"title": {"matrix"}})

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "The Matrix")
	assert.Contains(t, body, "/add_movie/603")
	assert.Contains(t, body, "/add_movie/604")
}

func TestAddSearch_TimeoutSurfacesMessageAndLeavesStoreUnchanged(t *testing.T) {
	ts := newTestServer(t)
	ts.gateway.searchErr = &tmdb.Error{Kind: tmdb.KindTimeout}

	rec := ts.postForm("/add", url.Values{"title": {"matrix"}})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "took too long to respond")

	count, err := ts.repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Equal(t, 0, ts.ranker.calls)
}

func TestAddMovie_MaterializesAndRedirectsToEdit(t *testing.T) {
	ts := newTestServer(t)
	ts.gateway.details = &domain.CandidateMovie{
		ExternalID:  603,
		Title:       "The Matrix",
		ReleaseDate: "1999-03-30",
		Overview:    "A computer hacker learns the truth.",
		PosterPath:  "/matrix.jpg",
		VoteAverage: 8.2,
	}

	rec := ts.get("/add_movie/603")

	assert.Equal(t, http.StatusFound, rec.Code)

	got, err := ts.repo.FindByTitle(context.Background(), "The Matrix")
	require.NoError(t, err)
	assert.Equal(t, "/update/"+itoa(got.ID), rec.Header().Get("Location"))
	require.NotNil(t, got.Year)
	assert.Equal(t, 1999, *got.Year)
	assert.InDelta(t, 8.2, got.Rating, 0.0001)
	assert.Equal(t, domain.DefaultReview, got.Review)
	assert.Equal(t, "https://image.tmdb.org/t/p/w500/matrix.jpg", got.ImgURL)
	assert.Equal(t, 1, ts.ranker.calls)
	assert.Equal(t, 1, ts.notifier.added)
}

func TestAddMovie_DuplicateTitleShortCircuits(t *testing.T) {
	ts := newTestServer(t)
	ts.addMovie(t, "The Matrix", 8.2, 1)
	ts.gateway.details = &domain.CandidateMovie{ExternalID: 603, Title: "The Matrix"}

	rec := ts.get("/add_movie/603")

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	count, err := ts.repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, 0, ts.ranker.calls)
	assert.Equal(t, 0, ts.notifier.added)
}

func TestAddMovie_FetchFailureRedirectsBackToSearch(t *testing.T) {
	ts := newTestServer(t)
	ts.gateway.detailsErr = &tmdb.Error{Kind: tmdb.KindConnection}

	rec := ts.get("/add_movie/603")

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/add", rec.Header().Get("Location"))

	count, err := ts.repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestAddMovie_BadIDIsNotFound(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.get("/add_movie/notanumber")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFlashNoticeRoundTrip(t *testing.T) {
	ts := newTestServer(t)
	ts.addMovie(t, "The Matrix", 8.2, 1)
	ts.gateway.details = &domain.CandidateMovie{ExternalID: 603, Title: "The Matrix"}

	redirect := ts.get("/add_movie/603")
	require.Equal(t, http.StatusFound, redirect.Code)

	// Follow the redirect carrying the session cookie
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, cookie := range redirect.Result().Cookies() {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	ts.srv.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "The Matrix already exists in your list.")
}

func TestYearFromReleaseDate(t *testing.T) {
	tests := []struct {
		name string
		date string
		want *int
	}{
		{"full_date", "1999-03-30", intptr(1999)},
		{"year_only", "1999", intptr(1999)},
		{"empty", "", nil},
		{"garbage", "n/a", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := yearFromReleaseDate(tt.date)
			if tt.want == nil {
				assert.Nil(t, got)
			} else {
				require.NotNil(t, got)
				assert.Equal(t, *tt.want, *got)
			}
		})
	}
}

func intptr(v int) *int {
	return &v
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
