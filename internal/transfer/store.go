package transfer

import (
	"context"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/repositories"
)

// ListStore looks up stored lists.
type ListStore interface {
	Get(ctx context.Context, id int64) (*models.List, error)
}

// PermissionStore looks up list shares.
type PermissionStore interface {
	Level(ctx context.Context, listID int64, userID string) (models.PermissionLevel, bool, error)
}

// ItemStore reads and writes list membership rows.
type ItemStore interface {
	Live(ctx context.Context, listID int64) ([]*models.ListItem, error)
	Insert(ctx context.Context, item *models.ListItem) (bool, error)
	Tombstone(ctx context.Context, listID int64, refs []models.ConcreteRef) (int, error)
}

// ContentStore provides batched lookups over movies, series, episodes and collections.
type ContentStore interface {
	MoviesByIDs(ctx context.Context, ids []int64) (map[int64]*models.Movie, error)
	SeriesByIDs(ctx context.Context, ids []int64) (map[int64]*models.Series, error)
	CollectionsByIDs(ctx context.Context, ids []int64) (map[int64]*models.Collection, error)
	EpisodesForSeries(ctx context.Context, seriesIDs []int64) (map[int64][]*models.Episode, error)
	CollectionMembers(ctx context.Context, collectionIDs []int64, ownerID string) (map[int64][]*models.Movie, error)
	PersonalItems(ctx context.Context, userID string) ([]*models.ListItem, error)
}

var (
	_ ListStore       = (*repositories.ListRepository)(nil)
	_ PermissionStore = (*repositories.PermissionRepository)(nil)
	_ ItemStore       = (*repositories.ListItemRepository)(nil)
	_ ContentStore    = (*repositories.ContentRepository)(nil)
)
