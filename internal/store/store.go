package store

import (
	"context"
	"errors"

	"github.com/user/filmshelf/internal/model"
)

// ErrNotFound is returned when a referenced movie does not exist.
var ErrNotFound = errors.New("movie not found")

// ErrDuplicateTitle is returned when creating a movie whose title is
// already in the collection.
var ErrDuplicateTitle = errors.New("movie title already exists")

// Store defines the interface for movie persistence operations
type Store interface {
	// Movie operations
	ListMovies(ctx context.Context) ([]*model.Movie, error)
	GetMovie(ctx context.Context, id uint) (*model.Movie, error)
	CreateMovie(ctx context.Context, movie *model.Movie) error
	UpdateRating(ctx context.Context, id uint, rating float64, review string) error
	DeleteMovie(ctx context.Context, id uint) error
	CountMovies(ctx context.Context) (int64, error)
	ExistsByTitle(ctx context.Context, title string) (bool, error)

	// Health check
	Ping(ctx context.Context) error
	Close() error
}
