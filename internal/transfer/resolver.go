package transfer

import (
	"context"
	"fmt"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
)

// Expansion maps each logical reference of a request to the rows it stands for.
type Expansion map[models.ItemRef][]models.ConcreteRef

// rows returns the total number of rows across all references.
func (e Expansion) rows() int {
	n := 0
	for _, refs := range e {
		n += len(refs)
	}
	return n
}

// expander resolves every id of one item type in a single batch. owner is the user whose content the ids must
// belong to. Unknown ids yield [shared.ErrNotFound].
type expander func(ctx context.Context, owner string, ids []int64) (map[int64][]models.ConcreteRef, error)

// referenceTypes is the resolution order. It lists every variant [Resolver.expanderFor] handles.
var referenceTypes = []models.ItemType{models.ItemMovie, models.ItemSeries, models.ItemCollection}

// Resolver expands logical item references into list item rows.
//
//   - movie: the movie itself
//   - series: the series plus every live episode of it, listed or not
//   - collection: every live movie owner has in the collection; the collection itself has no row
type Resolver struct {
	content ContentStore
}

// NewResolver creates a [Resolver] over content.
func NewResolver(content ContentStore) *Resolver {
	return &Resolver{content: content}
}

// Expand validates and expands refs against owner's content.
//
// Queries are batched per item type, so the cost grows with the number of types named, not the number of items.
// A movie or series that is missing, tombstoned, or owned by someone else yields [shared.ErrNotFound], as does an
// unknown collection id. A known collection with none of owner's movies expands to an empty set.
func (r *Resolver) Expand(ctx context.Context, owner string, refs []models.ItemRef) (Expansion, error) {
	byType := make(map[models.ItemType][]int64)
	for _, ref := range refs {
		if err := ref.Validate(); err != nil {
			return nil, err
		}
		byType[ref.Type] = append(byType[ref.Type], ref.ID)
	}

	out := make(Expansion, len(refs))
	for _, itemType := range referenceTypes {
		ids, ok := byType[itemType]
		if !ok {
			continue
		}

		expand, err := r.expanderFor(itemType)
		if err != nil {
			return nil, err
		}

		rows, err := expand(ctx, owner, ids)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			out[models.ItemRef{Type: itemType, ID: id}] = rows[id]
		}
	}

	return out, nil
}

func (r *Resolver) expanderFor(t models.ItemType) (expander, error) {
	switch t {
	case models.ItemMovie:
		return r.expandMovies, nil
	case models.ItemSeries:
		return r.expandSeries, nil
	case models.ItemCollection:
		return r.expandCollections, nil
	}
	return nil, fmt.Errorf("%w: %q cannot be transferred", shared.ErrInvalidRequest, t)
}

func (r *Resolver) expandMovies(ctx context.Context, owner string, ids []int64) (map[int64][]models.ConcreteRef, error) {
	movies, err := r.content.MoviesByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make(map[int64][]models.ConcreteRef, len(ids))
	for _, id := range ids {
		m, ok := movies[id]
		if !ok || m.UserID != owner {
			return nil, fmt.Errorf("%w: movie %d", shared.ErrNotFound, id)
		}
		out[id] = []models.ConcreteRef{{Type: models.ItemMovie, ID: id}}
	}
	return out, nil
}

func (r *Resolver) expandSeries(ctx context.Context, owner string, ids []int64) (map[int64][]models.ConcreteRef, error) {
	series, err := r.content.SeriesByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if s, ok := series[id]; !ok || s.UserID != owner {
			return nil, fmt.Errorf("%w: series %d", shared.ErrNotFound, id)
		}
	}

	episodes, err := r.content.EpisodesForSeries(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make(map[int64][]models.ConcreteRef, len(ids))
	for _, id := range ids {
		refs := make([]models.ConcreteRef, 0, len(episodes[id])+1)
		refs = append(refs, models.ConcreteRef{Type: models.ItemSeries, ID: id})
		for _, e := range episodes[id] {
			if e.UserID != owner {
				continue
			}
			refs = append(refs, models.ConcreteRef{Type: models.ItemEpisode, ID: e.ID})
		}
		out[id] = refs
	}
	return out, nil
}

func (r *Resolver) expandCollections(ctx context.Context, owner string, ids []int64) (map[int64][]models.ConcreteRef, error) {
	known, err := r.content.CollectionsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			return nil, fmt.Errorf("%w: collection %d", shared.ErrNotFound, id)
		}
	}

	members, err := r.content.CollectionMembers(ctx, ids, owner)
	if err != nil {
		return nil, err
	}

	out := make(map[int64][]models.ConcreteRef, len(ids))
	for _, id := range ids {
		refs := make([]models.ConcreteRef, 0, len(members[id]))
		for _, m := range members[id] {
			refs = append(refs, models.ConcreteRef{Type: models.ItemMovie, ID: m.ID})
		}
		out[id] = refs
	}
	return out, nil
}
