package transfer

import (
	"context"
	"errors"
	"testing"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLists map[int64]*models.List

func (f fakeLists) Get(_ context.Context, id int64) (*models.List, error) {
	if l, ok := f[id]; ok {
		return l, nil
	}
	return nil, shared.ErrNotFound
}

type shareKey struct {
	list int64
	user string
}

type fakePerms struct {
	levels map[shareKey]models.PermissionLevel
	err    error
}

func (f *fakePerms) Level(_ context.Context, listID int64, userID string) (models.PermissionLevel, bool, error) {
	if f.err != nil {
		return "", false, f.err
	}
	level, ok := f.levels[shareKey{listID, userID}]
	return level, ok, nil
}

type fakeContent struct {
	movies      map[int64]*models.Movie
	series      map[int64]*models.Series
	collections map[int64]*models.Collection
	episodes    map[int64][]*models.Episode
	calls       map[string]int
}

func newFakeContent() *fakeContent {
	return &fakeContent{
		movies:      map[int64]*models.Movie{},
		series:      map[int64]*models.Series{},
		collections: map[int64]*models.Collection{},
		episodes:    map[int64][]*models.Episode{},
		calls:       map[string]int{},
	}
}

func (f *fakeContent) MoviesByIDs(_ context.Context, ids []int64) (map[int64]*models.Movie, error) {
	f.calls["movies"]++
	out := map[int64]*models.Movie{}
	for _, id := range ids {
		if m, ok := f.movies[id]; ok {
			out[id] = m
		}
	}
	return out, nil
}

func (f *fakeContent) SeriesByIDs(_ context.Context, ids []int64) (map[int64]*models.Series, error) {
	f.calls["series"]++
	out := map[int64]*models.Series{}
	for _, id := range ids {
		if s, ok := f.series[id]; ok {
			out[id] = s
		}
	}
	return out, nil
}

func (f *fakeContent) CollectionsByIDs(_ context.Context, ids []int64) (map[int64]*models.Collection, error) {
	f.calls["collections"]++
	out := map[int64]*models.Collection{}
	for _, id := range ids {
		if c, ok := f.collections[id]; ok {
			out[id] = c
		}
	}
	return out, nil
}

func (f *fakeContent) EpisodesForSeries(_ context.Context, ids []int64) (map[int64][]*models.Episode, error) {
	f.calls["episodes"]++
	out := map[int64][]*models.Episode{}
	for _, id := range ids {
		out[id] = f.episodes[id]
	}
	return out, nil
}

func (f *fakeContent) CollectionMembers(_ context.Context, ids []int64, owner string) (map[int64][]*models.Movie, error) {
	f.calls["members"]++
	out := map[int64][]*models.Movie{}
	for _, m := range f.movies {
		if m.CollectionID == nil || m.UserID != owner {
			continue
		}
		for _, id := range ids {
			if *m.CollectionID == id {
				out[id] = append(out[id], m)
			}
		}
	}
	return out, nil
}

func (f *fakeContent) PersonalItems(_ context.Context, userID string) ([]*models.ListItem, error) {
	var items []*models.ListItem
	for id, m := range f.movies {
		if m.UserID == userID {
			items = append(items, &models.ListItem{ItemType: models.ItemMovie, ItemID: id, Watched: m.Watched})
		}
	}
	return items, nil
}

func TestRegistry(t *testing.T) {
	ctx := context.Background()
	lists := fakeLists{
		1: {ID: 1, UserID: "ann", Name: "Mine", Kind: models.ListKindCustom},
		2: {ID: 2, UserID: "bob", Name: "Shared", Kind: models.ListKindCustom},
	}
	perms := &fakePerms{levels: map[shareKey]models.PermissionLevel{{2, "ann"}: models.PermissionView}}
	reg := NewRegistry(lists, perms)

	t.Run("Owner", func(t *testing.T) {
		l, err := reg.Get(ctx, models.ListIDRef(1), "ann")
		require.NoError(t, err)
		assert.Equal(t, "Mine", l.Name)
	})

	t.Run("Sharee", func(t *testing.T) {
		_, err := reg.Get(ctx, models.ListIDRef(2), "ann")
		assert.NoError(t, err)
	})

	t.Run("StrangerSeesNotFound", func(t *testing.T) {
		_, err := reg.Get(ctx, models.ListIDRef(1), "bob")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("Missing", func(t *testing.T) {
		_, err := reg.Get(ctx, models.ListIDRef(3), "ann")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("BadID", func(t *testing.T) {
		_, err := reg.Get(ctx, models.ListIDRef(-1), "ann")
		assert.ErrorIs(t, err, shared.ErrInvalidRequest)
	})

	t.Run("Personal", func(t *testing.T) {
		l, err := reg.Get(ctx, models.PersonalRef(), "ann")
		require.NoError(t, err)
		assert.True(t, l.IsPersonal())
		assert.Equal(t, "ann", l.UserID)

		_, err = reg.Target(ctx, models.PersonalRef(), "ann")
		assert.ErrorIs(t, err, shared.ErrInvalidRequest)
	})

	t.Run("PermissionLookupFails", func(t *testing.T) {
		boom := errors.New("boom")
		failing := NewRegistry(lists, &fakePerms{err: boom})
		_, err := failing.Get(ctx, models.ListIDRef(2), "ann")
		assert.ErrorIs(t, err, boom)
	})
}

func TestValidator(t *testing.T) {
	ctx := context.Background()
	list := &models.List{ID: 7, UserID: "ann", Kind: models.ListKindCustom}
	perms := &fakePerms{levels: map[shareKey]models.PermissionLevel{
		{7, "viewer"}: models.PermissionView,
		{7, "editor"}: models.PermissionEdit,
		{7, "admin"}:  models.PermissionAdmin,
	}}
	v := NewValidator(perms)

	for _, tt := range []struct {
		user   string
		write  bool
		manage bool
	}{
		{"ann", true, true},
		{"admin", true, true},
		{"editor", true, false},
		{"viewer", false, false},
		{"nobody", false, false},
	} {
		t.Run(tt.user, func(t *testing.T) {
			write, err := v.CanWrite(ctx, list, tt.user)
			require.NoError(t, err)
			assert.Equal(t, tt.write, write)

			manage, err := v.CanManage(ctx, list, tt.user)
			require.NoError(t, err)
			assert.Equal(t, tt.manage, manage)

			err = v.RequireWrite(ctx, list, tt.user)
			if tt.write {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, shared.ErrPermissionDenied)
			}
		})
	}

	t.Run("PersonalBelongsToOneUser", func(t *testing.T) {
		personal := models.NewPersonalList("ann")
		ok, err := v.CanWrite(ctx, personal, "ann")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = v.CanWrite(ctx, personal, "admin")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestResolver(t *testing.T) {
	ctx := context.Background()
	alien := int64(30)

	content := newFakeContent()
	content.movies[1] = &models.Movie{ID: 1, UserID: "ann", Title: "Heat"}
	content.movies[2] = &models.Movie{ID: 2, UserID: "bob", Title: "Ronin"}
	content.movies[3] = &models.Movie{ID: 3, UserID: "ann", Title: "Alien", CollectionID: &alien}
	content.movies[4] = &models.Movie{ID: 4, UserID: "bob", Title: "Aliens", CollectionID: &alien}
	content.series[10] = &models.Series{ID: 10, UserID: "ann", Title: "Dark"}
	content.episodes[10] = []*models.Episode{
		{ID: 11, UserID: "ann", SeriesID: 10, SeasonNumber: 1, EpisodeNumber: 1},
		{ID: 12, UserID: "ann", SeriesID: 10, SeasonNumber: 1, EpisodeNumber: 2},
	}
	content.collections[alien] = &models.Collection{ID: alien, Name: "Alien"}
	content.collections[31] = &models.Collection{ID: 31, Name: "Empty"}

	r := NewResolver(content)

	t.Run("ExpandsEveryType", func(t *testing.T) {
		refs := []models.ItemRef{
			{Type: models.ItemMovie, ID: 1},
			{Type: models.ItemSeries, ID: 10},
			{Type: models.ItemCollection, ID: alien},
			{Type: models.ItemCollection, ID: 31},
		}
		exp, err := r.Expand(ctx, "ann", refs)
		require.NoError(t, err)

		assert.Equal(t, []models.ConcreteRef{{Type: models.ItemMovie, ID: 1}}, exp[refs[0]])
		assert.Equal(t, []models.ConcreteRef{
			{Type: models.ItemSeries, ID: 10},
			{Type: models.ItemEpisode, ID: 11},
			{Type: models.ItemEpisode, ID: 12},
		}, exp[refs[1]])
		assert.Equal(t, []models.ConcreteRef{{Type: models.ItemMovie, ID: 3}}, exp[refs[2]])
		assert.Empty(t, exp[refs[3]])
		assert.Equal(t, 5, exp.rows())
	})

	t.Run("BatchesPerType", func(t *testing.T) {
		content.calls = map[string]int{}
		_, err := r.Expand(ctx, "ann", []models.ItemRef{
			{Type: models.ItemMovie, ID: 1},
			{Type: models.ItemMovie, ID: 3},
			{Type: models.ItemSeries, ID: 10},
		})
		require.NoError(t, err)
		assert.Equal(t, 1, content.calls["movies"])
		assert.Equal(t, 1, content.calls["series"])
		assert.Equal(t, 1, content.calls["episodes"])
		assert.Zero(t, content.calls["collections"])
	})

	t.Run("ForeignMovie", func(t *testing.T) {
		_, err := r.Expand(ctx, "ann", []models.ItemRef{{Type: models.ItemMovie, ID: 2}})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("UnknownIDs", func(t *testing.T) {
		for _, ref := range []models.ItemRef{
			{Type: models.ItemMovie, ID: 99},
			{Type: models.ItemSeries, ID: 99},
			{Type: models.ItemCollection, ID: 99},
		} {
			_, err := r.Expand(ctx, "ann", []models.ItemRef{ref})
			assert.ErrorIs(t, err, shared.ErrNotFound, ref.String())
		}
	})

	t.Run("RejectsEpisodes", func(t *testing.T) {
		_, err := r.Expand(ctx, "ann", []models.ItemRef{{Type: models.ItemEpisode, ID: 11}})
		assert.ErrorIs(t, err, shared.ErrInvalidRequest)
	})
}

func TestKeySet(t *testing.T) {
	movie := models.ConcreteRef{Type: models.ItemMovie, ID: 1}
	series := models.ConcreteRef{Type: models.ItemSeries, ID: 1}
	episode := models.ConcreteRef{Type: models.ItemEpisode, ID: 2}

	ks := NewKeySet(5, []*models.ListItem{{ListID: 5, ItemType: models.ItemMovie, ItemID: 1, Notes: "n"}})
	assert.Equal(t, int64(5), ks.listID)
	assert.True(t, ks.Has(movie))
	assert.False(t, ks.Has(series), "same id under another type is a different key")

	item, ok := ks.Get(movie)
	require.True(t, ok)
	assert.Equal(t, "n", item.Notes)

	fresh, dupes := ks.Filter([]models.ConcreteRef{movie, series, episode, series})
	assert.Equal(t, []models.ConcreteRef{series, episode}, fresh)
	assert.Equal(t, []models.ConcreteRef{movie, series}, dupes)

	ks.Add(&models.ListItem{ListID: 5, ItemType: models.ItemEpisode, ItemID: 2})
	ks.Remove(movie)
	assert.Equal(t, 1, ks.len())
	assert.True(t, ks.Has(episode))
}

func TestDetectorPersonal(t *testing.T) {
	content := newFakeContent()
	content.movies[1] = &models.Movie{ID: 1, UserID: "ann", Watched: true}
	content.movies[2] = &models.Movie{ID: 2, UserID: "bob"}

	ks, err := NewDetector(nil, content).Load(context.Background(), models.NewPersonalList("ann"))
	require.NoError(t, err)
	assert.Zero(t, ks.listID)
	assert.Equal(t, 1, ks.len())

	item, ok := ks.Get(models.ConcreteRef{Type: models.ItemMovie, ID: 1})
	require.True(t, ok)
	assert.True(t, item.Watched)
}
