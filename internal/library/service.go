// Package library implements the collection use cases on top of the record
// store and the metadata client.
package library

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/user/filmshelf/internal/model"
	"github.com/user/filmshelf/internal/ranking"
	"github.com/user/filmshelf/internal/store"
	"github.com/user/filmshelf/internal/tmdb"
)

// MetadataClient defines the interface for the external movie metadata
// service
type MetadataClient interface {
	SearchMovies(ctx context.Context, query string) ([]tmdb.Candidate, error)
	MovieDetails(ctx context.Context, id int) (*tmdb.MovieDetails, error)
	PosterURL(posterPath string) string
}

// Service handles the movie collection use cases
type Service struct {
	store    store.Store
	metadata MetadataClient
}

// NewService creates a new collection service
func NewService(store store.Store, metadata MetadataClient) *Service {
	return &Service{
		store:    store,
		metadata: metadata,
	}
}

// ListRanked returns the whole collection with ranks derived from current
// ratings, ordered best-first
func (s *Service) ListRanked(ctx context.Context) ([]*model.Movie, error) {
	movies, err := s.store.ListMovies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list collection: %w", err)
	}
	return ranking.Assign(movies), nil
}

// GetMovie retrieves a single movie by id
func (s *Service) GetMovie(ctx context.Context, id uint) (*model.Movie, error) {
	return s.store.GetMovie(ctx, id)
}

// SearchCandidates queries the metadata service by title
func (s *Service) SearchCandidates(ctx context.Context, title string) ([]tmdb.Candidate, error) {
	candidates, err := s.metadata.SearchMovies(ctx, title)
	if err != nil {
		return nil, err
	}

	log.Info().Str("title", title).Int("count", len(candidates)).Msg("Metadata search completed")
	return candidates, nil
}

// ImportByExternalID fetches the details of a movie from the metadata
// service and creates an unrated collection record from them. Rating,
// ranking and review stay unset until the user edits the new record.
// Returns store.ErrDuplicateTitle when the title is already collected.
func (s *Service) ImportByExternalID(ctx context.Context, externalID int) (*model.Movie, error) {
	details, err := s.metadata.MovieDetails(ctx, externalID)
	if err != nil {
		return nil, err
	}

	movie := &model.Movie{
		Title:       details.Title,
		Year:        details.ReleaseYear(),
		Description: details.Overview,
		ImageURL:    s.metadata.PosterURL(details.PosterPath),
	}

	if err := s.store.CreateMovie(ctx, movie); err != nil {
		return nil, err
	}

	log.Info().
		Uint("id", movie.ID).
		Str("title", movie.Title).
		Int("externalID", externalID).
		Msg("Movie imported")
	return movie, nil
}

// RateMovie sets the rating and review of a movie, leaving the imported
// metadata untouched
func (s *Service) RateMovie(ctx context.Context, id uint, rating float64, review string) error {
	if err := s.store.UpdateRating(ctx, id, rating, review); err != nil {
		return err
	}

	log.Info().Uint("id", id).Float64("rating", rating).Msg("Movie rated")
	return nil
}

// RemoveMovie deletes a movie from the collection
func (s *Service) RemoveMovie(ctx context.Context, id uint) error {
	if err := s.store.DeleteMovie(ctx, id); err != nil {
		return err
	}

	log.Info().Uint("id", id).Msg("Movie removed")
	return nil
}

// CountMovies returns the collection size
func (s *Service) CountMovies(ctx context.Context) (int64, error) {
	return s.store.CountMovies(ctx)
}
