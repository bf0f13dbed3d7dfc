package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/user/filmshelf/internal/config"
	"github.com/user/filmshelf/internal/model"
)

// setupTestStore creates a store backed by an in-memory sqlite database
func setupTestStore(t *testing.T) *SQLStore {
	t.Helper()

	store, err := NewSQLStore(&config.DBConfig{
		Driver: "sqlite",
		Path:   ":memory:",
	})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store
}

func testMovie(title string) *model.Movie {
	return &model.Movie{
		Title:       title,
		Year:        2021,
		Description: "A test movie.",
		ImageURL:    "https://image.tmdb.org/t/p/w500/abc.jpg",
	}
}

func TestCreateAndGetMovie(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	movie := testMovie("Dune")
	require.NoError(t, store.CreateMovie(ctx, movie))
	require.NotZero(t, movie.ID)

	got, err := store.GetMovie(ctx, movie.ID)
	require.NoError(t, err)
	require.Equal(t, "Dune", got.Title)
	require.Equal(t, 2021, got.Year)
	require.Nil(t, got.Rating)
	require.Empty(t, got.Review)
}

func TestCreateMovie_DuplicateTitle(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateMovie(ctx, testMovie("Dune")))

	err := store.CreateMovie(ctx, testMovie("Dune"))
	require.ErrorIs(t, err, ErrDuplicateTitle)

	// Store content is unchanged
	count, err := store.CountMovies(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
}

func TestGetMovie_NotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.GetMovie(context.Background(), 999)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateRating(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	movie := testMovie("Dune")
	require.NoError(t, store.CreateMovie(ctx, movie))

	require.NoError(t, store.UpdateRating(ctx, movie.ID, 9.5, "Loved the sandworms."))

	got, err := store.GetMovie(ctx, movie.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Rating)
	require.Equal(t, 9.5, *got.Rating)
	require.Equal(t, "Loved the sandworms.", got.Review)

	// Imported metadata stays untouched
	require.Equal(t, "Dune", got.Title)
	require.Equal(t, 2021, got.Year)
	require.Equal(t, "A test movie.", got.Description)
	require.Equal(t, "https://image.tmdb.org/t/p/w500/abc.jpg", got.ImageURL)
}

func TestUpdateRating_NotFound(t *testing.T) {
	store := setupTestStore(t)

	err := store.UpdateRating(context.Background(), 999, 5, "review")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteMovie(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	first := testMovie("Dune")
	second := testMovie("Arrival")
	require.NoError(t, store.CreateMovie(ctx, first))
	require.NoError(t, store.CreateMovie(ctx, second))

	require.NoError(t, store.DeleteMovie(ctx, first.ID))

	movies, err := store.ListMovies(ctx)
	require.NoError(t, err)
	require.Len(t, movies, 1)
	require.Equal(t, "Arrival", movies[0].Title)

	require.ErrorIs(t, store.DeleteMovie(ctx, first.ID), ErrNotFound)
}

func TestListMovies_OrderedByID(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	for _, title := range []string{"Dune", "Arrival", "Blade Runner"} {
		require.NoError(t, store.CreateMovie(ctx, testMovie(title)))
	}

	movies, err := store.ListMovies(ctx)
	require.NoError(t, err)
	require.Len(t, movies, 3)
	for i := 1; i < len(movies); i++ {
		require.Less(t, movies[i-1].ID, movies[i].ID)
	}
}

func TestExistsByTitle(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateMovie(ctx, testMovie("Dune")))

	exists, err := store.ExistsByTitle(ctx, "Dune")
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = store.ExistsByTitle(ctx, "Arrival")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestPing(t *testing.T) {
	store := setupTestStore(t)
	require.NoError(t, store.Ping(context.Background()))
}

func TestNewSQLStore_UnknownDriver(t *testing.T) {
	_, err := NewSQLStore(&config.DBConfig{Driver: "oracle"})
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrNotFound))
}
