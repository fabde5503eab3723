package lists

import (
	"context"

	"github.com/desertthunder/marquee/internal/models"
)

// CreateCollection registers a collection. Collections are shared across users.
func (s *Service) CreateCollection(ctx context.Context, c *models.Collection) error {
	return s.store().Content.CreateCollection(ctx, c)
}

// CreateMovie creates a movie owned by userID.
func (s *Service) CreateMovie(ctx context.Context, userID string, m *models.Movie) error {
	m.UserID = userID
	return s.store().Content.CreateMovie(ctx, m)
}

// CreateSeries creates a series owned by userID.
func (s *Service) CreateSeries(ctx context.Context, userID string, series *models.Series) error {
	series.UserID = userID
	return s.store().Content.CreateSeries(ctx, series)
}

// CreateEpisode creates an episode of one of userID's series.
func (s *Service) CreateEpisode(ctx context.Context, userID string, seriesID int64, e *models.Episode) error {
	e.UserID = userID
	e.SeriesID = seriesID
	return s.store().Content.CreateEpisode(ctx, e)
}
