package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
)

const (
	movieColumns   = "id, user_id, title, year, external_id, collection_id, watched, created_at, updated_at, deleted_at"
	seriesColumns  = "id, user_id, title, year, external_id, created_at, updated_at, deleted_at"
	episodeColumns = "id, user_id, series_id, season_number, episode_number, title, created_at, updated_at, deleted_at"
)

// ContentRepository reads and creates movies, series, episodes and collections.
//
// Lookups take id slices and issue one query per entity type no matter how many ids are passed.
type ContentRepository struct {
	q Querier
}

// NewContentRepository creates a new [ContentRepository] bound to q
func NewContentRepository(q Querier) *ContentRepository {
	return &ContentRepository{q: q}
}

// MoviesByIDs returns the live movies among ids, keyed by id. Missing or tombstoned ids are absent.
func (r *ContentRepository) MoviesByIDs(ctx context.Context, ids []int64) (map[int64]*models.Movie, error) {
	out := make(map[int64]*models.Movie)
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return out, nil
	}

	query := `SELECT ` + movieColumns + ` FROM movies WHERE id IN (` + placeholders(len(ids)) + `) AND ` + Alive("")
	rows, err := r.q.QueryContext(ctx, query, int64Args(ids)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query movies: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan movie: %w", err)
		}
		out[movie.ID] = movie
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return out, nil
}

// SeriesByIDs returns the live series among ids, keyed by id.
func (r *ContentRepository) SeriesByIDs(ctx context.Context, ids []int64) (map[int64]*models.Series, error) {
	out := make(map[int64]*models.Series)
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return out, nil
	}

	query := `SELECT ` + seriesColumns + ` FROM series WHERE id IN (` + placeholders(len(ids)) + `) AND ` + Alive("")
	rows, err := r.q.QueryContext(ctx, query, int64Args(ids)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query series: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		series, err := scanSeries(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan series: %w", err)
		}
		out[series.ID] = series
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return out, nil
}

// EpisodesByIDs returns the live episodes among ids, keyed by id.
func (r *ContentRepository) EpisodesByIDs(ctx context.Context, ids []int64) (map[int64]*models.Episode, error) {
	out := make(map[int64]*models.Episode)
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return out, nil
	}

	query := `SELECT ` + episodeColumns + ` FROM episodes WHERE id IN (` + placeholders(len(ids)) + `) AND ` + Alive("")
	rows, err := r.q.QueryContext(ctx, query, int64Args(ids)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query episodes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		episode, err := scanEpisode(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan episode: %w", err)
		}
		out[episode.ID] = episode
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return out, nil
}

// CollectionsByIDs returns the known collections among ids, keyed by id.
func (r *ContentRepository) CollectionsByIDs(ctx context.Context, ids []int64) (map[int64]*models.Collection, error) {
	out := make(map[int64]*models.Collection)
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return out, nil
	}

	query := `SELECT id, external_id, name, created_at FROM collections WHERE id IN (` + placeholders(len(ids)) + `)`
	rows, err := r.q.QueryContext(ctx, query, int64Args(ids)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query collections: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c models.Collection
		if err := rows.Scan(&c.ID, &c.ExternalID, &c.Name, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan collection: %w", err)
		}
		out[c.ID] = &c
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return out, nil
}

// EpisodesForSeries returns the live episodes of every series in seriesIDs, grouped by series and ordered by
// season then episode number.
func (r *ContentRepository) EpisodesForSeries(ctx context.Context, seriesIDs []int64) (map[int64][]*models.Episode, error) {
	out := make(map[int64][]*models.Episode)
	seriesIDs = uniqueIDs(seriesIDs)
	if len(seriesIDs) == 0 {
		return out, nil
	}

	query := `
		SELECT ` + episodeColumns + `
		FROM episodes
		WHERE series_id IN (` + placeholders(len(seriesIDs)) + `) AND ` + Alive("") + `
		ORDER BY series_id, season_number, episode_number, id
	`
	rows, err := r.q.QueryContext(ctx, query, int64Args(seriesIDs)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query episodes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		episode, err := scanEpisode(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan episode: %w", err)
		}
		out[episode.SeriesID] = append(out[episode.SeriesID], episode)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return out, nil
}

// CollectionMembers returns the live movies ownerID has in each collection, grouped by collection id.
func (r *ContentRepository) CollectionMembers(ctx context.Context, collectionIDs []int64, ownerID string) (map[int64][]*models.Movie, error) {
	out := make(map[int64][]*models.Movie)
	collectionIDs = uniqueIDs(collectionIDs)
	if len(collectionIDs) == 0 {
		return out, nil
	}

	query := `
		SELECT ` + movieColumns + `
		FROM movies
		WHERE collection_id IN (` + placeholders(len(collectionIDs)) + `) AND user_id = ? AND ` + Alive("") + `
		ORDER BY collection_id, year, id
	`
	args := append(int64Args(collectionIDs), ownerID)
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan movie: %w", err)
		}
		out[*movie.CollectionID] = append(out[*movie.CollectionID], movie)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return out, nil
}

// PersonalItems returns the synthetic membership of a user's personal list: every live movie, series and episode
// they own. Rows carry ListID 0; watched state comes from the movie row.
func (r *ContentRepository) PersonalItems(ctx context.Context, userID string) ([]*models.ListItem, error) {
	query := `
		SELECT 'movie', id, watched FROM movies WHERE user_id = ? AND ` + Alive("") + `
		UNION ALL
		SELECT 'series', id, 0 FROM series WHERE user_id = ? AND ` + Alive("") + `
		UNION ALL
		SELECT 'episode', id, 0 FROM episodes WHERE user_id = ? AND ` + Alive("") + `
		ORDER BY 1, 2
	`

	rows, err := r.q.QueryContext(ctx, query, userID, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query personal items: %w", err)
	}
	defer rows.Close()

	var items []*models.ListItem
	for rows.Next() {
		var (
			item     models.ListItem
			itemType string
		)
		if err := rows.Scan(&itemType, &item.ItemID, &item.Watched); err != nil {
			return nil, fmt.Errorf("failed to scan personal item: %w", err)
		}
		item.ItemType = models.ItemType(itemType)
		items = append(items, &item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return items, nil
}

// CreateCollection inserts a new collection.
func (r *ContentRepository) CreateCollection(ctx context.Context, c *models.Collection) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now().UTC()
	result, err := r.q.ExecContext(ctx,
		`INSERT INTO collections (external_id, name, created_at) VALUES (?, ?, ?)`, c.ExternalID, c.Name, now)
	if err != nil {
		return fmt.Errorf("failed to insert collection: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read collection id: %w", err)
	}

	c.ID = id
	c.CreatedAt = now
	return nil
}

// CreateMovie inserts a new movie. A collection id must name an existing collection.
func (r *ContentRepository) CreateMovie(ctx context.Context, m *models.Movie) error {
	if err := m.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	var collectionID sql.NullInt64
	if m.CollectionID != nil {
		known, err := r.CollectionsByIDs(ctx, []int64{*m.CollectionID})
		if err != nil {
			return err
		}
		if _, ok := known[*m.CollectionID]; !ok {
			return fmt.Errorf("%w: collection %d", shared.ErrNotFound, *m.CollectionID)
		}
		collectionID = sql.NullInt64{Int64: *m.CollectionID, Valid: true}
	}

	now := time.Now().UTC()
	query := `
		INSERT INTO movies (user_id, title, year, external_id, collection_id, watched, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.q.ExecContext(ctx, query, m.UserID, m.Title, m.Year, m.ExternalID, collectionID, m.Watched, now, now)
	if err != nil {
		return fmt.Errorf("failed to insert movie: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read movie id: %w", err)
	}

	m.ID = id
	m.CreatedAt = now
	m.UpdatedAt = now
	return nil
}

// CreateSeries inserts a new series.
func (r *ContentRepository) CreateSeries(ctx context.Context, s *models.Series) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now().UTC()
	query := `
		INSERT INTO series (user_id, title, year, external_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	result, err := r.q.ExecContext(ctx, query, s.UserID, s.Title, s.Year, s.ExternalID, now, now)
	if err != nil {
		return fmt.Errorf("failed to insert series: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read series id: %w", err)
	}

	s.ID = id
	s.CreatedAt = now
	s.UpdatedAt = now
	return nil
}

// CreateEpisode inserts a new episode under a live series with the same owner.
func (r *ContentRepository) CreateEpisode(ctx context.Context, e *models.Episode) error {
	if err := e.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	series, err := r.SeriesByIDs(ctx, []int64{e.SeriesID})
	if err != nil {
		return err
	}
	parent, ok := series[e.SeriesID]
	if !ok || parent.UserID != e.UserID {
		return fmt.Errorf("%w: series %d", shared.ErrNotFound, e.SeriesID)
	}

	now := time.Now().UTC()
	query := `
		INSERT INTO episodes (user_id, series_id, season_number, episode_number, title, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.q.ExecContext(ctx, query, e.UserID, e.SeriesID, e.SeasonNumber, e.EpisodeNumber, e.Title, now, now)
	if err != nil {
		return fmt.Errorf("failed to insert episode: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read episode id: %w", err)
	}

	e.ID = id
	e.CreatedAt = now
	e.UpdatedAt = now
	return nil
}

// Owner returns the owner of the live movie, series or episode named by ref.
func (r *ContentRepository) Owner(ctx context.Context, ref models.ConcreteRef) (string, error) {
	var table string
	switch ref.Type {
	case models.ItemMovie:
		table = "movies"
	case models.ItemSeries:
		table = "series"
	case models.ItemEpisode:
		table = "episodes"
	default:
		return "", fmt.Errorf("%w: %q is not a list item type", shared.ErrInvalidRequest, ref.Type)
	}

	var owner string
	err := r.q.QueryRowContext(ctx, `SELECT user_id FROM `+table+` WHERE id = ? AND `+Alive(""), ref.ID).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %s", shared.ErrNotFound, ref)
	}
	if err != nil {
		return "", fmt.Errorf("failed to query %s owner: %w", ref.Type, err)
	}
	return owner, nil
}

// GetMovie retrieves a live movie by id.
func (r *ContentRepository) GetMovie(ctx context.Context, id int64) (*models.Movie, error) {
	movie, err := scanMovie(r.q.QueryRowContext(ctx, `SELECT `+movieColumns+` FROM movies WHERE id = ? AND `+Alive(""), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: movie %d", shared.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query movie: %w", err)
	}
	return movie, nil
}

func scanMovie(row scanner) (*models.Movie, error) {
	var (
		m            models.Movie
		collectionID sql.NullInt64
		deletedAt    sql.NullTime
	)

	err := row.Scan(&m.ID, &m.UserID, &m.Title, &m.Year, &m.ExternalID, &collectionID, &m.Watched,
		&m.CreatedAt, &m.UpdatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}

	if collectionID.Valid {
		id := collectionID.Int64
		m.CollectionID = &id
	}
	if deletedAt.Valid {
		m.DeletedAt = &deletedAt.Time
	}
	return &m, nil
}

func scanSeries(row scanner) (*models.Series, error) {
	var (
		s         models.Series
		deletedAt sql.NullTime
	)

	err := row.Scan(&s.ID, &s.UserID, &s.Title, &s.Year, &s.ExternalID, &s.CreatedAt, &s.UpdatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}

	if deletedAt.Valid {
		s.DeletedAt = &deletedAt.Time
	}
	return &s, nil
}

func scanEpisode(row scanner) (*models.Episode, error) {
	var (
		e         models.Episode
		deletedAt sql.NullTime
	)

	err := row.Scan(&e.ID, &e.UserID, &e.SeriesID, &e.SeasonNumber, &e.EpisodeNumber, &e.Title,
		&e.CreatedAt, &e.UpdatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}

	if deletedAt.Valid {
		e.DeletedAt = &deletedAt.Time
	}
	return &e, nil
}
