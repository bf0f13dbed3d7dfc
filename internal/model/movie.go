package model

import (
	"time"
)

// Movie represents a movie in the personal collection
type Movie struct {
	ID          uint     `gorm:"primaryKey"`
	Title       string   `gorm:"uniqueIndex;size:500;not null"`
	Year        int      `gorm:"not null"`
	Description string   `gorm:"size:2000"`
	Rating      *float64 // nil until the user rates the movie
	Review      string   `gorm:"size:2000"`
	ImageURL    string   `gorm:"size:500"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Ranking is the dense rank of this movie's rating across the
	// collection, derived at read time and never persisted.
	Ranking int `gorm:"-"`
}

// TableName returns the table name for Movie
func (Movie) TableName() string {
	return "movies"
}

// Rated reports whether the user has rated this movie yet
func (m *Movie) Rated() bool {
	return m.Rating != nil
}
