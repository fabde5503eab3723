// package lists implements list, list item, share and content management on top of the repositories.
//
// Visibility and write checks reuse the transfer engine's registry and validator, so the same rules apply to a
// plain item add as to a copy into the list.
package lists

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/repositories"
	"github.com/desertthunder/marquee/internal/shared"
	"github.com/desertthunder/marquee/internal/transfer"
)

// ListPatch holds the optional fields of a list update.
type ListPatch struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// ItemPatch holds the optional fields of a list item update.
type ItemPatch struct {
	Watched *bool   `json:"watched,omitempty"`
	Notes   *string `json:"notes,omitempty"`
}

// Service manages lists for an acting user. Every mutation runs in its own transaction.
type Service struct {
	db     *sql.DB
	logger *log.Logger
}

// NewService creates a [Service]. A nil logger discards output.
func NewService(db *sql.DB, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Service{db: db, logger: logger.WithPrefix("lists")}
}

func (s *Service) store() *repositories.Store {
	return repositories.NewStore(s.db)
}

func (s *Service) tx(ctx context.Context, fn func(*repositories.Store) error) error {
	return repositories.WithTx(ctx, s.db, fn)
}

func registry(st *repositories.Store) *transfer.Registry {
	return transfer.NewRegistry(st.Lists, st.Permissions)
}

func validator(st *repositories.Store) *transfer.Validator {
	return transfer.NewValidator(st.Permissions)
}

// writable resolves a stored list userID may change the items of.
func writable(ctx context.Context, st *repositories.Store, userID string, id int64) (*models.List, error) {
	list, err := registry(st).Target(ctx, models.ListIDRef(id), userID)
	if err != nil {
		return nil, err
	}
	if err := validator(st).RequireWrite(ctx, list, userID); err != nil {
		return nil, err
	}
	return list, nil
}

// manageable resolves a stored list userID may rename or share.
func manageable(ctx context.Context, st *repositories.Store, userID string, id int64) (*models.List, error) {
	list, err := registry(st).Target(ctx, models.ListIDRef(id), userID)
	if err != nil {
		return nil, err
	}
	ok, err := validator(st).CanManage(ctx, list, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: cannot manage list %d", shared.ErrPermissionDenied, id)
	}
	return list, nil
}

// Visible returns the lists userID owns or has a live share on.
func (s *Service) Visible(ctx context.Context, userID string) ([]*models.List, error) {
	return s.store().Lists.Visible(ctx, userID)
}

// Get resolves ref for userID. The personal list always resolves.
func (s *Service) Get(ctx context.Context, userID string, ref models.ListRef) (*models.List, error) {
	return registry(s.store()).Get(ctx, ref, userID)
}

// Create creates a custom list owned by userID.
func (s *Service) Create(ctx context.Context, userID, name, description string) (*models.List, error) {
	list := &models.List{UserID: userID, Name: name, Description: description, Kind: models.ListKindCustom}
	if err := s.store().Lists.Create(ctx, list); err != nil {
		return nil, err
	}
	s.logger.Debug("list created", "id", list.ID, "user", userID)
	return list, nil
}

// Update renames or re-describes a list. Owners and admin sharees may do this.
func (s *Service) Update(ctx context.Context, userID string, id int64, patch ListPatch) (*models.List, error) {
	var list *models.List
	err := s.tx(ctx, func(st *repositories.Store) error {
		var err error
		if list, err = manageable(ctx, st, userID, id); err != nil {
			return err
		}
		if patch.Name != nil {
			list.Name = *patch.Name
		}
		if patch.Description != nil {
			list.Description = *patch.Description
		}
		return st.Lists.Update(ctx, list)
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

// Delete tombstones a list with its items and shares. Only the owner may delete a list.
func (s *Service) Delete(ctx context.Context, userID string, id int64) error {
	return s.tx(ctx, func(st *repositories.Store) error {
		list, err := registry(st).Target(ctx, models.ListIDRef(id), userID)
		if err != nil {
			return err
		}
		if !list.OwnedBy(userID) {
			return fmt.Errorf("%w: only the owner can delete list %d", shared.ErrPermissionDenied, id)
		}
		if err := st.Lists.Delete(ctx, id); err != nil {
			return err
		}
		s.logger.Debug("list deleted", "id", id, "user", userID)
		return nil
	})
}

// Items returns the live items of ref. The personal list yields userID's live content.
func (s *Service) Items(ctx context.Context, userID string, ref models.ListRef) ([]*models.ListItem, error) {
	st := s.store()
	list, err := registry(st).Get(ctx, ref, userID)
	if err != nil {
		return nil, err
	}
	if list.IsPersonal() {
		return st.Content.PersonalItems(ctx, list.UserID)
	}
	return st.Items.Live(ctx, list.ID)
}

// AddItem adds a movie, series or episode row to a list.
//
// The content must be live and owned by the list owner. A live row for the same item yields [shared.ErrConflict];
// transfers treat that case as a duplicate instead.
func (s *Service) AddItem(ctx context.Context, userID string, listID int64, item models.ListItem) (*models.ListItem, error) {
	item.ListID = listID
	if err := item.Validate(); err != nil {
		return nil, err
	}

	err := s.tx(ctx, func(st *repositories.Store) error {
		list, err := writable(ctx, st, userID, listID)
		if err != nil {
			return err
		}

		owner, err := st.Content.Owner(ctx, item.Key())
		if err != nil {
			return err
		}
		if owner != list.UserID {
			return fmt.Errorf("%w: %s", shared.ErrNotFound, item.Key())
		}

		inserted, err := st.Items.Insert(ctx, &item)
		if err != nil {
			return err
		}
		if !inserted {
			return fmt.Errorf("%w: %s is already in list %d", shared.ErrConflict, item.Key(), listID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateItem changes the watched state or notes of a live row.
func (s *Service) UpdateItem(ctx context.Context, userID string, listID int64, ref models.ConcreteRef, patch ItemPatch) (*models.ListItem, error) {
	var item *models.ListItem
	err := s.tx(ctx, func(st *repositories.Store) error {
		if _, err := writable(ctx, st, userID, listID); err != nil {
			return err
		}

		var err error
		if item, err = st.Items.Get(ctx, listID, ref); err != nil {
			return err
		}
		if patch.Watched != nil {
			item.Watched = *patch.Watched
		}
		if patch.Notes != nil {
			item.Notes = *patch.Notes
		}
		return st.Items.Update(ctx, item)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// RemoveItem tombstones the live row of ref.
func (s *Service) RemoveItem(ctx context.Context, userID string, listID int64, ref models.ConcreteRef) error {
	return s.tx(ctx, func(st *repositories.Store) error {
		if _, err := writable(ctx, st, userID, listID); err != nil {
			return err
		}
		return st.Items.Remove(ctx, listID, ref)
	})
}

// Shares returns the live shares of a list. Only the owner and admin sharees may list them.
func (s *Service) Shares(ctx context.Context, userID string, listID int64) ([]*models.ListPermission, error) {
	st := s.store()
	if _, err := manageable(ctx, st, userID, listID); err != nil {
		return nil, err
	}
	return st.Permissions.ForList(ctx, listID)
}

// Share grants grantee level on a list. Owners and admin sharees may share.
//
// The grantee's user row is created if they have not signed in yet.
func (s *Service) Share(ctx context.Context, userID string, listID int64, grantee string, level models.PermissionLevel) (*models.ListPermission, error) {
	perm := &models.ListPermission{ListID: listID, UserID: grantee, Level: level}
	if err := perm.Validate(); err != nil {
		return nil, err
	}

	err := s.tx(ctx, func(st *repositories.Store) error {
		list, err := manageable(ctx, st, userID, listID)
		if err != nil {
			return err
		}
		if list.OwnedBy(grantee) {
			return fmt.Errorf("%w: the owner of list %d cannot be given a share", shared.ErrInvalidRequest, listID)
		}
		if err := st.Users.Ensure(ctx, &models.User{ID: grantee}); err != nil {
			return err
		}
		return st.Permissions.Grant(ctx, perm)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("list shared", "id", listID, "grantee", grantee, "level", level)
	return perm, nil
}

// Unshare revokes grantee's share. Managers may revoke any share; a sharee may always drop their own.
func (s *Service) Unshare(ctx context.Context, userID string, listID int64, grantee string) error {
	return s.tx(ctx, func(st *repositories.Store) error {
		if grantee != userID {
			if _, err := manageable(ctx, st, userID, listID); err != nil {
				return err
			}
		} else if _, err := registry(st).Target(ctx, models.ListIDRef(listID), userID); err != nil {
			return err
		}
		return st.Permissions.Revoke(ctx, listID, grantee)
	})
}

// Export returns the live items of ref with their titles resolved.
//
// Content is looked up with one query per type. Episodes are titled "Series S01E02 Title".
func (s *Service) Export(ctx context.Context, userID string, ref models.ListRef) (*models.ListExport, error) {
	st := s.store()
	list, err := registry(st).Get(ctx, ref, userID)
	if err != nil {
		return nil, err
	}

	var items []*models.ListItem
	if list.IsPersonal() {
		items, err = st.Content.PersonalItems(ctx, list.UserID)
	} else {
		items, err = st.Items.Live(ctx, list.ID)
	}
	if err != nil {
		return nil, err
	}

	ids := make(map[models.ItemType][]int64)
	for _, item := range items {
		ids[item.ItemType] = append(ids[item.ItemType], item.ItemID)
	}

	movies, err := st.Content.MoviesByIDs(ctx, ids[models.ItemMovie])
	if err != nil {
		return nil, err
	}
	episodes, err := st.Content.EpisodesByIDs(ctx, ids[models.ItemEpisode])
	if err != nil {
		return nil, err
	}
	seriesIDs := ids[models.ItemSeries]
	for _, e := range episodes {
		seriesIDs = append(seriesIDs, e.SeriesID)
	}
	series, err := st.Content.SeriesByIDs(ctx, seriesIDs)
	if err != nil {
		return nil, err
	}

	export := &models.ListExport{List: list, Items: make([]*models.ExportItem, 0, len(items))}
	for _, item := range items {
		row := &models.ExportItem{
			ItemType: item.ItemType,
			ItemID:   item.ItemID,
			Watched:  item.Watched,
			Notes:    item.Notes,
			AddedAt:  item.AddedAt,
		}
		switch item.ItemType {
		case models.ItemMovie:
			if m, ok := movies[item.ItemID]; ok {
				row.Title, row.Year = m.Title, m.Year
			}
		case models.ItemSeries:
			if sr, ok := series[item.ItemID]; ok {
				row.Title, row.Year = sr.Title, sr.Year
			}
		case models.ItemEpisode:
			if e, ok := episodes[item.ItemID]; ok {
				row.Title = episodeTitle(series[e.SeriesID], e)
			}
		}
		export.Items = append(export.Items, row)
	}
	return export, nil
}

func episodeTitle(series *models.Series, e *models.Episode) string {
	title := fmt.Sprintf("S%02dE%02d", e.SeasonNumber, e.EpisodeNumber)
	if series != nil {
		title = series.Title + " " + title
	}
	if e.Title != "" {
		title += " " + e.Title
	}
	return title
}
