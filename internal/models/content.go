package models

import "time"

// Collection is a franchise grouping of movies. Its id space is separate from movie ids.
type Collection struct {
	ID         int64     `json:"id"`
	ExternalID string    `json:"external_id,omitempty"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"created_at"`
}

// Validate implements [Model].
func (c *Collection) Validate() error {
	if c.Name == "" {
		return validationError("collection name is required")
	}
	return nil
}

// Movie is a user-owned movie, optionally part of a [Collection].
type Movie struct {
	ID           int64      `json:"id"`
	UserID       string     `json:"user_id"`
	Title        string     `json:"title"`
	Year         int        `json:"year,omitempty"`
	ExternalID   string     `json:"external_id,omitempty"`
	CollectionID *int64     `json:"collection_id,omitempty"`
	Watched      bool       `json:"watched"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `json:"-"`
}

// Validate implements [Model].
func (m *Movie) Validate() error {
	if m.UserID == "" {
		return validationError("movie owner is required")
	}
	if m.Title == "" {
		return validationError("movie title is required")
	}
	return nil
}

// Series is a user-owned series. Its episodes are rows of their own.
type Series struct {
	ID         int64      `json:"id"`
	UserID     string     `json:"user_id"`
	Title      string     `json:"title"`
	Year       int        `json:"year,omitempty"`
	ExternalID string     `json:"external_id,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	DeletedAt  *time.Time `json:"-"`
}

// Validate implements [Model].
func (s *Series) Validate() error {
	if s.UserID == "" {
		return validationError("series owner is required")
	}
	if s.Title == "" {
		return validationError("series title is required")
	}
	return nil
}

// Episode belongs to exactly one [Series] and has the same owner.
type Episode struct {
	ID            int64      `json:"id"`
	UserID        string     `json:"user_id"`
	SeriesID      int64      `json:"series_id"`
	SeasonNumber  int        `json:"season_number"`
	EpisodeNumber int        `json:"episode_number"`
	Title         string     `json:"title,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	DeletedAt     *time.Time `json:"-"`
}

// Validate implements [Model].
func (e *Episode) Validate() error {
	if e.UserID == "" {
		return validationError("episode owner is required")
	}
	if e.SeriesID <= 0 {
		return validationError("episode series is required")
	}
	if e.SeasonNumber < 0 || e.EpisodeNumber < 0 {
		return validationError("season and episode numbers must not be negative")
	}
	return nil
}
