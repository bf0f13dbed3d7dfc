package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/user/filmshelf/internal/config"
	"github.com/user/filmshelf/internal/model"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SQLStore implements Store interface on a GORM-backed SQL database
type SQLStore struct {
	db *gorm.DB
}

// NewSQLStore creates a store on the driver selected by the configuration.
// The sqlite driver is the default; mysql is available for deployments that
// already run one.
func NewSQLStore(cfg *config.DBConfig) (*SQLStore, error) {
	gormConfig := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.Path)
	case "mysql":
		dialector = mysql.Open(cfg.DSN())
	default:
		return nil, fmt.Errorf("unsupported db driver: %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pool
	if cfg.Driver == "mysql" {
		sqlDB.SetMaxOpenConns(cfg.MaxConns)
		sqlDB.SetMaxIdleConns(cfg.MaxConns / 2)
		sqlDB.SetConnMaxLifetime(time.Hour)
	} else {
		// The file-backed sqlite driver serializes writers; a single
		// connection avoids SQLITE_BUSY under concurrent requests.
		sqlDB.SetMaxOpenConns(1)
	}

	// Auto migrate tables
	if err := db.AutoMigrate(&model.Movie{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &SQLStore{db: db}, nil
}

// ListMovies retrieves every movie in the collection, oldest first
func (s *SQLStore) ListMovies(ctx context.Context) ([]*model.Movie, error) {
	var movies []*model.Movie
	result := s.db.WithContext(ctx).
		Order("id ASC").
		Find(&movies)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list movies: %w", result.Error)
	}
	return movies, nil
}

// GetMovie retrieves a movie by its id
func (s *SQLStore) GetMovie(ctx context.Context, id uint) (*model.Movie, error) {
	var movie model.Movie
	result := s.db.WithContext(ctx).First(&movie, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get movie: %w", result.Error)
	}
	return &movie, nil
}

// CreateMovie inserts a new movie.
// Returns ErrDuplicateTitle if the title is already in the collection.
func (s *SQLStore) CreateMovie(ctx context.Context, movie *model.Movie) error {
	result := s.db.WithContext(ctx).Create(movie)
	if result.Error != nil {
		if isDuplicate(result.Error) {
			return ErrDuplicateTitle
		}
		return fmt.Errorf("failed to create movie: %w", result.Error)
	}
	return nil
}

// UpdateRating sets the rating and review of a movie, leaving every other
// column untouched
func (s *SQLStore) UpdateRating(ctx context.Context, id uint, rating float64, review string) error {
	result := s.db.WithContext(ctx).
		Model(&model.Movie{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"rating": rating,
			"review": review,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update rating: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteMovie removes a movie by its id
func (s *SQLStore) DeleteMovie(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&model.Movie{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete movie: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountMovies returns the total count of movies
func (s *SQLStore) CountMovies(ctx context.Context) (int64, error) {
	var count int64
	result := s.db.WithContext(ctx).Model(&model.Movie{}).Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to count movies: %w", result.Error)
	}
	return count, nil
}

// ExistsByTitle checks if a movie with the given title exists
func (s *SQLStore) ExistsByTitle(ctx context.Context, title string) (bool, error) {
	var count int64
	result := s.db.WithContext(ctx).Model(&model.Movie{}).Where("title = ?", title).Count(&count)
	if result.Error != nil {
		return false, fmt.Errorf("failed to check movie existence: %w", result.Error)
	}
	return count > 0, nil
}

// Ping checks database connectivity
func (s *SQLStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying db: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the database connection
func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying db: %w", err)
	}
	return sqlDB.Close()
}

// DB returns the underlying gorm.DB instance (for testing purposes)
func (s *SQLStore) DB() *gorm.DB {
	return s.db
}

// isDuplicate reports whether err is a unique-constraint violation. GORM's
// error translation covers the mysql driver; the sqlite driver is matched on
// the constraint message.
func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "Duplicate entry")
}
