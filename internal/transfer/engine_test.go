package transfer

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
	tu "github.com/desertthunder/marquee/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type world struct {
	*tu.Fixture
	engine *Engine
	owner  string
	friend string
	a      int64
	b      int64
}

func newWorld(t *testing.T) *world {
	t.Helper()
	f := tu.NewFixture(t, nil)
	w := &world{Fixture: f, engine: NewEngine(f.DB, nil)}
	w.owner = f.User("owner")
	w.friend = f.User("friend")
	w.a = f.List(w.owner, "A")
	w.b = f.List(w.owner, "B")
	return w
}

func copyReq(source, target int64, itemType models.ItemType, id int64) models.TransferRequest {
	return models.TransferRequest{
		SourceList: models.ListIDRef(source),
		TargetList: models.ListIDRef(target),
		Item:       models.ItemRef{Type: itemType, ID: id},
	}
}

func TestCopyMovie(t *testing.T) {
	ctx := context.Background()

	t.Run("Fresh", func(t *testing.T) {
		w := newWorld(t)
		m := w.Movie(w.owner, "Heat")
		w.AddItem(w.a, "movie", m)

		res, err := w.engine.Copy(ctx, w.owner, copyReq(w.a, w.b, models.ItemMovie, m))
		require.NoError(t, err)
		assert.Equal(t, 1, res.ItemsAffected)
		assert.False(t, res.Duplicate)
		assert.Equal(t, 1, w.LiveCount(w.a), "copy leaves the source alone")
		assert.Equal(t, 1, w.LiveCount(w.b))
	})

	t.Run("DuplicateIsDefinedOutcome", func(t *testing.T) {
		w := newWorld(t)
		m := w.Movie(w.owner, "Heat")
		w.AddItem(w.a, "movie", m)
		w.AddItem(w.b, "movie", m)

		res, err := w.engine.Copy(ctx, w.owner, copyReq(w.a, w.b, models.ItemMovie, m))
		require.NoError(t, err)
		assert.True(t, res.Duplicate)
		assert.Equal(t, 0, res.ItemsAffected)
		assert.Equal(t, 1, w.LiveCount(w.b))
	})

	t.Run("RepeatedCopyNeverDoublesRows", func(t *testing.T) {
		w := newWorld(t)
		m := w.Movie(w.owner, "Heat")

		first, err := w.engine.Copy(ctx, w.owner, copyReq(w.a, w.b, models.ItemMovie, m))
		require.NoError(t, err)
		second, err := w.engine.Copy(ctx, w.owner, copyReq(w.a, w.b, models.ItemMovie, m))
		require.NoError(t, err)

		assert.Equal(t, 1, first.ItemsAffected)
		assert.True(t, second.Duplicate)
		assert.Equal(t, 1, w.LiveCopies(w.b, "movie", m))
	})

	t.Run("PreserveMetadata", func(t *testing.T) {
		w := newWorld(t)
		kept := w.Movie(w.owner, "Heat")
		reset := w.Movie(w.owner, "Ronin")
		w.AddItemWithMeta(w.a, "movie", kept, true, "with dad")
		w.AddItemWithMeta(w.a, "movie", reset, true, "twice")

		req := copyReq(w.a, w.b, models.ItemMovie, kept)
		req.PreserveMetadata = true
		_, err := w.engine.Copy(ctx, w.owner, req)
		require.NoError(t, err)
		_, err = w.engine.Copy(ctx, w.owner, copyReq(w.a, w.b, models.ItemMovie, reset))
		require.NoError(t, err)

		watched, notes, ok := w.LiveMeta(w.b, "movie", kept)
		require.True(t, ok)
		assert.True(t, watched)
		assert.Equal(t, "with dad", notes)

		watched, notes, ok = w.LiveMeta(w.b, "movie", reset)
		require.True(t, ok)
		assert.False(t, watched)
		assert.Empty(t, notes)
	})

	t.Run("RevivesTombstonedTargetWithFreshRow", func(t *testing.T) {
		w := newWorld(t)
		m := w.Movie(w.owner, "Heat")
		w.Tombstone("list_items", w.AddItem(w.b, "movie", m))

		res, err := w.engine.Copy(ctx, w.owner, copyReq(w.a, w.b, models.ItemMovie, m))
		require.NoError(t, err)
		assert.Equal(t, 1, res.ItemsAffected)
		assert.Equal(t, 1, w.TombstoneCount(w.b))
		assert.Equal(t, 1, w.LiveCount(w.b))
	})
}

func TestCopySeries(t *testing.T) {
	ctx := context.Background()

	t.Run("SeriesPlusEpisodes", func(t *testing.T) {
		w := newWorld(t)
		s := w.Series(w.owner, "Dark")
		eps := w.Episodes(w.owner, s, 4)
		w.Tombstone("episodes", eps[3])
		w.AddItem(w.a, "series", s)

		res, err := w.engine.Copy(ctx, w.owner, copyReq(w.a, w.b, models.ItemSeries, s))
		require.NoError(t, err)
		assert.Equal(t, 4, res.ItemsAffected, "series row plus 3 live episodes")
		assert.Equal(t, 4, w.LiveCount(w.b))
		assert.Equal(t, 0, w.LiveCopies(w.b, "episode", eps[3]))
	})

	t.Run("PartialDuplicate", func(t *testing.T) {
		w := newWorld(t)
		s := w.Series(w.owner, "Dark")
		eps := w.Episodes(w.owner, s, 3)
		w.AddItem(w.b, "episode", eps[0])

		res, err := w.engine.Copy(ctx, w.owner, copyReq(w.a, w.b, models.ItemSeries, s))
		require.NoError(t, err)
		assert.Equal(t, 3, res.ItemsAffected)
		assert.Equal(t, 1, res.DuplicatesSkipped)
		assert.False(t, res.Duplicate)
	})

	t.Run("SeriesWithoutEpisodes", func(t *testing.T) {
		w := newWorld(t)
		s := w.Series(w.owner, "Pilot only")

		res, err := w.engine.Copy(ctx, w.owner, copyReq(w.a, w.b, models.ItemSeries, s))
		require.NoError(t, err)
		assert.Equal(t, 1, res.ItemsAffected)
	})
}

func TestCopyCollection(t *testing.T) {
	ctx := context.Background()

	t.Run("OwnedMembersOnly", func(t *testing.T) {
		w := newWorld(t)
		c := w.Collection("Alien")
		w.CollectionMovie(w.owner, "Alien", c)
		w.CollectionMovie(w.owner, "Aliens", c)
		gone := w.CollectionMovie(w.owner, "Alien 3", c)
		w.Tombstone("movies", gone)
		w.CollectionMovie(w.friend, "Prometheus", c)

		res, err := w.engine.Copy(ctx, w.owner, copyReq(w.a, w.b, models.ItemCollection, c))
		require.NoError(t, err)
		assert.Equal(t, 2, res.ItemsAffected)
		assert.Equal(t, 2, w.LiveCount(w.b))
	})

	t.Run("NoOwnedMembersIsEmptyNotError", func(t *testing.T) {
		w := newWorld(t)
		c := w.Collection("Alien")
		w.CollectionMovie(w.friend, "Alien", c)

		res, err := w.engine.Copy(ctx, w.owner, copyReq(w.a, w.b, models.ItemCollection, c))
		require.NoError(t, err)
		assert.Equal(t, 0, res.ItemsAffected)
		assert.False(t, res.Duplicate)
		assert.Equal(t, 0, w.LiveCount(w.b))
	})

	t.Run("UnknownCollection", func(t *testing.T) {
		w := newWorld(t)
		_, err := w.engine.Copy(ctx, w.owner, copyReq(w.a, w.b, models.ItemCollection, 9999))
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("CollectionIDIsNotMovieID", func(t *testing.T) {
		w := newWorld(t)
		m := w.Movie(w.owner, "Heat")

		_, err := w.engine.Copy(ctx, w.owner, copyReq(w.a, w.b, models.ItemCollection, m))
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestMove(t *testing.T) {
	ctx := context.Background()

	t.Run("TombstonesSource", func(t *testing.T) {
		w := newWorld(t)
		m := w.Movie(w.owner, "Heat")
		w.AddItemWithMeta(w.a, "movie", m, true, "seen")

		res, err := w.engine.Move(ctx, w.owner, copyReq(w.a, w.b, models.ItemMovie, m))
		require.NoError(t, err)
		assert.Equal(t, 1, res.ItemsAffected)
		assert.Equal(t, 1, res.Tombstoned)
		assert.Equal(t, 0, w.LiveCount(w.a))
		assert.Equal(t, 1, w.TombstoneCount(w.a))

		watched, notes, ok := w.LiveMeta(w.b, "movie", m)
		require.True(t, ok)
		assert.True(t, watched, "moves always keep metadata")
		assert.Equal(t, "seen", notes)
	})

	t.Run("DuplicateStillLeavesSource", func(t *testing.T) {
		w := newWorld(t)
		m := w.Movie(w.owner, "Heat")
		w.AddItem(w.a, "movie", m)
		w.AddItem(w.b, "movie", m)

		res, err := w.engine.Move(ctx, w.owner, copyReq(w.a, w.b, models.ItemMovie, m))
		require.NoError(t, err)
		assert.True(t, res.Duplicate)
		assert.Equal(t, 0, res.ItemsAffected)
		assert.Equal(t, 0, w.LiveCount(w.a))
		assert.Equal(t, 1, w.LiveCount(w.b))
	})

	t.Run("SeriesTombstonesWholeExpansion", func(t *testing.T) {
		w := newWorld(t)
		s := w.Series(w.owner, "Dark")
		eps := w.Episodes(w.owner, s, 2)
		w.AddItem(w.a, "series", s)
		w.AddItem(w.a, "episode", eps[0])
		w.AddItem(w.a, "episode", eps[1])
		w.AddItem(w.b, "episode", eps[1])

		res, err := w.engine.Move(ctx, w.owner, copyReq(w.a, w.b, models.ItemSeries, s))
		require.NoError(t, err)
		assert.Equal(t, 2, res.ItemsAffected)
		assert.Equal(t, 3, res.Tombstoned)
		assert.Equal(t, 0, w.LiveCount(w.a))
		assert.Equal(t, 3, w.LiveCount(w.b))
	})

	t.Run("RoundTrip", func(t *testing.T) {
		w := newWorld(t)
		s := w.Series(w.owner, "Dark")
		w.Episodes(w.owner, s, 2)
		m := w.Movie(w.owner, "Heat")
		w.AddItem(w.a, "movie", m)
		w.AddItem(w.a, "series", s)
		before := w.LiveCount(w.a)

		there, err := w.engine.Copy(ctx, w.owner, copyReq(w.a, w.b, models.ItemSeries, s))
		require.NoError(t, err)
		back, err := w.engine.Move(ctx, w.owner, copyReq(w.b, w.a, models.ItemSeries, s))
		require.NoError(t, err)

		assert.Equal(t, 3, there.ItemsAffected)
		assert.Equal(t, 3, back.Tombstoned)
		assert.Equal(t, before+back.ItemsAffected, w.LiveCount(w.a))
		assert.Equal(t, 0, w.LiveCount(w.b))
		assert.Equal(t, 3, w.TombstoneCount(w.b))
	})

	t.Run("RequiresWriteOnSource", func(t *testing.T) {
		w := newWorld(t)
		m := w.Movie(w.owner, "Heat")
		w.AddItem(w.a, "movie", m)
		w.Share(w.a, w.friend, "view")
		mine := w.List(w.friend, "Mine")

		_, err := w.engine.Move(ctx, w.friend, copyReq(w.a, mine, models.ItemMovie, m))
		assert.ErrorIs(t, err, shared.ErrPermissionDenied)

		res, err := w.engine.Copy(ctx, w.friend, copyReq(w.a, mine, models.ItemMovie, m))
		require.NoError(t, err, "a viewer may copy out of a shared list")
		assert.Equal(t, 1, res.ItemsAffected)
	})
}

func TestPermissions(t *testing.T) {
	ctx := context.Background()

	for _, tt := range []struct {
		level string
		err   error
	}{
		{"view", shared.ErrPermissionDenied},
		{"edit", nil},
		{"admin", nil},
	} {
		t.Run(tt.level, func(t *testing.T) {
			w := newWorld(t)
			w.Share(w.b, w.friend, tt.level)
			m := w.Movie(w.friend, "Heat")

			for _, op := range []models.Operation{models.OperationCopy, models.OperationMove} {
				src := w.List(w.friend, "src-"+string(op))
				w.AddItem(src, "movie", m)

				req := copyReq(src, w.b, models.ItemMovie, m)
				var err error
				if op == models.OperationCopy {
					_, err = w.engine.Copy(ctx, w.friend, req)
				} else {
					_, err = w.engine.Move(ctx, w.friend, req)
				}

				if tt.err != nil {
					assert.ErrorIs(t, err, tt.err, "%s", op)
					assert.Equal(t, 1, w.LiveCount(src))
				} else {
					assert.NoError(t, err, "%s", op)
				}
			}
		})
	}

	t.Run("InvisibleTargetIsNotFound", func(t *testing.T) {
		w := newWorld(t)
		m := w.Movie(w.friend, "Heat")
		src := w.List(w.friend, "Mine")

		_, err := w.engine.Copy(ctx, w.friend, copyReq(src, w.b, models.ItemMovie, m))
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("RevokedShareIsNotFound", func(t *testing.T) {
		w := newWorld(t)
		w.Share(w.b, w.friend, "edit")
		_, err := w.DB.Exec(`UPDATE list_permissions SET deleted_at = CURRENT_TIMESTAMP`)
		require.NoError(t, err)
		m := w.Movie(w.friend, "Heat")
		src := w.List(w.friend, "Mine")

		_, err = w.engine.Copy(ctx, w.friend, copyReq(src, w.b, models.ItemMovie, m))
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestRequestErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("MissingSource", func(t *testing.T) {
		w := newWorld(t)
		m := w.Movie(w.owner, "Heat")
		_, err := w.engine.Copy(ctx, w.owner, copyReq(404, w.b, models.ItemMovie, m))
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("DeletedTarget", func(t *testing.T) {
		w := newWorld(t)
		m := w.Movie(w.owner, "Heat")
		w.Tombstone("lists", w.b)
		_, err := w.engine.Copy(ctx, w.owner, copyReq(w.a, w.b, models.ItemMovie, m))
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("MissingMovie", func(t *testing.T) {
		w := newWorld(t)
		_, err := w.engine.Copy(ctx, w.owner, copyReq(w.a, w.b, models.ItemMovie, 404))
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("DeletedMovie", func(t *testing.T) {
		w := newWorld(t)
		m := w.Movie(w.owner, "Heat")
		w.Tombstone("movies", m)
		_, err := w.engine.Copy(ctx, w.owner, copyReq(w.a, w.b, models.ItemMovie, m))
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("WrongOwner", func(t *testing.T) {
		w := newWorld(t)
		m := w.Movie(w.friend, "Heat")
		_, err := w.engine.Copy(ctx, w.owner, copyReq(w.a, w.b, models.ItemMovie, m))
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("SameList", func(t *testing.T) {
		w := newWorld(t)
		m := w.Movie(w.owner, "Heat")
		_, err := w.engine.Copy(ctx, w.owner, copyReq(w.a, w.a, models.ItemMovie, m))
		assert.ErrorIs(t, err, shared.ErrInvalidRequest)
	})

	t.Run("OperationCasing", func(t *testing.T) {
		for _, op := range []models.Operation{"MOVE", "Move", " move", "COPY"} {
			w := newWorld(t)
			m := w.Movie(w.owner, "Heat")
			w.AddItem(w.a, "movie", m)

			_, err := w.engine.Bulk(ctx, w.owner, models.BulkRequest{
				Operation:  op,
				SourceList: models.ListIDRef(w.a),
				TargetList: models.ListIDRef(w.b),
				Items:      []models.ItemRef{{Type: models.ItemMovie, ID: m}},
			})
			assert.ErrorIs(t, err, shared.ErrInvalidRequest, "operation %q", op)
			assert.Equal(t, 1, w.LiveCount(w.a), "source untouched for %q", op)
			assert.Zero(t, w.LiveCount(w.b), "target untouched for %q", op)
		}
	})

	t.Run("EpisodeIsNotAReference", func(t *testing.T) {
		w := newWorld(t)
		s := w.Series(w.owner, "Dark")
		ep := w.Episodes(w.owner, s, 1)[0]
		_, err := w.engine.Copy(ctx, w.owner, copyReq(w.a, w.b, models.ItemEpisode, ep))
		assert.ErrorIs(t, err, shared.ErrInvalidRequest)
	})
}

func TestPersonalList(t *testing.T) {
	ctx := context.Background()

	t.Run("CopyFromPersonal", func(t *testing.T) {
		w := newWorld(t)
		m := w.Movie(w.owner, "Heat")

		req := models.TransferRequest{
			SourceList: models.PersonalRef(),
			TargetList: models.ListIDRef(w.b),
			Item:       models.ItemRef{Type: models.ItemMovie, ID: m},
		}
		res, err := w.engine.Copy(ctx, w.owner, req)
		require.NoError(t, err)
		assert.Equal(t, 1, res.ItemsAffected)
	})

	t.Run("PersonalIsNotATarget", func(t *testing.T) {
		w := newWorld(t)
		m := w.Movie(w.owner, "Heat")
		w.AddItem(w.a, "movie", m)

		req := models.TransferRequest{
			SourceList: models.ListIDRef(w.a),
			TargetList: models.PersonalRef(),
			Item:       models.ItemRef{Type: models.ItemMovie, ID: m},
		}
		_, err := w.engine.Copy(ctx, w.owner, req)
		assert.ErrorIs(t, err, shared.ErrInvalidRequest)
		assert.Equal(t, 1, w.TotalItems())
	})

	t.Run("CannotMoveOutOfPersonal", func(t *testing.T) {
		w := newWorld(t)
		m := w.Movie(w.owner, "Heat")

		req := models.TransferRequest{
			SourceList: models.PersonalRef(),
			TargetList: models.ListIDRef(w.b),
			Item:       models.ItemRef{Type: models.ItemMovie, ID: m},
		}
		_, err := w.engine.Move(ctx, w.owner, req)
		assert.ErrorIs(t, err, shared.ErrInvalidRequest)
		assert.Equal(t, 0, w.TotalItems())
	})
}

func TestBulk(t *testing.T) {
	ctx := context.Background()

	t.Run("AggregatesMixedItems", func(t *testing.T) {
		w := newWorld(t)
		m := w.Movie(w.owner, "Heat")
		dup := w.Movie(w.owner, "Ronin")
		s := w.Series(w.owner, "Dark")
		w.Episodes(w.owner, s, 2)
		c := w.Collection("Alien")
		w.CollectionMovie(w.owner, "Alien", c)
		w.AddItem(w.b, "movie", dup)

		res, err := w.engine.Bulk(ctx, w.owner, models.BulkRequest{
			Operation:  models.OperationCopy,
			SourceList: models.ListIDRef(w.a),
			TargetList: models.ListIDRef(w.b),
			Items: []models.ItemRef{
				{Type: models.ItemMovie, ID: m},
				{Type: models.ItemMovie, ID: dup},
				{Type: models.ItemSeries, ID: s},
				{Type: models.ItemCollection, ID: c},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, 1+3+1, res.ItemsAffected)
		assert.Equal(t, 1, res.DuplicatesSkipped)
		assert.Len(t, res.Results, 4)
		assert.True(t, res.Results[1].Duplicate)
		assert.Equal(t, 6, w.LiveCount(w.b))
	})

	t.Run("OneBadIDAbortsEverything", func(t *testing.T) {
		w := newWorld(t)
		m := w.Movie(w.owner, "Heat")
		s := w.Series(w.owner, "Dark")
		w.AddItem(w.a, "movie", m)
		w.AddItem(w.a, "series", s)
		before := w.TotalItems()

		_, err := w.engine.Bulk(ctx, w.owner, models.BulkRequest{
			Operation:  models.OperationMove,
			SourceList: models.ListIDRef(w.a),
			TargetList: models.ListIDRef(w.b),
			Items: []models.ItemRef{
				{Type: models.ItemMovie, ID: m},
				{Type: models.ItemSeries, ID: s},
				{Type: models.ItemMovie, ID: 987654},
			},
		})
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.Equal(t, before, w.TotalItems())
		assert.Equal(t, 2, w.LiveCount(w.a))
		assert.Equal(t, 0, w.TombstoneCount(w.a))
	})

	t.Run("CollectionThenMemberCountsDuplicate", func(t *testing.T) {
		w := newWorld(t)
		c := w.Collection("Alien")
		m := w.CollectionMovie(w.owner, "Alien", c)

		res, err := w.engine.Bulk(ctx, w.owner, models.BulkRequest{
			Operation:  models.OperationCopy,
			SourceList: models.ListIDRef(w.a),
			TargetList: models.ListIDRef(w.b),
			Items: []models.ItemRef{
				{Type: models.ItemCollection, ID: c},
				{Type: models.ItemMovie, ID: m},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, 1, res.ItemsAffected)
		assert.Equal(t, 1, res.DuplicatesSkipped)
		assert.Equal(t, 1, w.LiveCopies(w.b, "movie", m))
	})

	t.Run("RequestErrors", func(t *testing.T) {
		w := newWorld(t)
		m := w.Movie(w.owner, "Heat")

		cases := map[string]models.BulkRequest{
			"operation": {Operation: "sync", SourceList: models.ListIDRef(w.a), TargetList: models.ListIDRef(w.b),
				Items: []models.ItemRef{{Type: models.ItemMovie, ID: m}}},
			"empty": {Operation: models.OperationCopy, SourceList: models.ListIDRef(w.a), TargetList: models.ListIDRef(w.b)},
			"type": {Operation: models.OperationCopy, SourceList: models.ListIDRef(w.a), TargetList: models.ListIDRef(w.b),
				Items: []models.ItemRef{{Type: "album", ID: m}}},
		}
		for name, req := range cases {
			t.Run(name, func(t *testing.T) {
				_, err := w.engine.Bulk(ctx, w.owner, req)
				assert.ErrorIs(t, err, shared.ErrInvalidRequest)
			})
		}
	})
}

func TestRollbackOnFailure(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	s := w.Series(w.owner, "Dark")
	w.Episodes(w.owner, s, 3)
	w.AddItem(w.a, "series", s)

	_, err := w.DB.Exec(`
		CREATE TRIGGER fail_tombstone BEFORE UPDATE OF deleted_at ON list_items
		WHEN NEW.deleted_at IS NOT NULL
		BEGIN
			SELECT RAISE(ABORT, 'injected failure');
		END
	`)
	require.NoError(t, err)

	_, err = w.engine.Move(ctx, w.owner, copyReq(w.a, w.b, models.ItemSeries, s))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "injected failure")

	assert.Equal(t, 0, w.LiveCount(w.b), "target inserts must roll back with the failed tombstone")
	assert.Equal(t, 1, w.LiveCount(w.a))
}

func TestConcurrentCopiesConverge(t *testing.T) {
	ctx := context.Background()

	db, err := shared.NewDatabase(filepath.Join(t.TempDir(), "marquee.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, shared.RunMigrations(db))

	f := tu.NewFixture(t, db)
	owner := f.User("owner")
	a := f.List(owner, "A")
	b := f.List(owner, "B")
	m := f.Movie(owner, "Heat")

	engine := NewEngine(db, nil)

	const workers = 4
	results := make([]models.TransferResult, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = engine.Copy(ctx, owner, copyReq(a, b, models.ItemMovie, m))
		}(i)
	}
	wg.Wait()

	inserted := 0
	for i := range workers {
		require.NoError(t, errs[i])
		inserted += results[i].ItemsAffected
	}
	assert.Equal(t, 1, inserted)
	assert.Equal(t, 1, f.LiveCopies(b, "movie", m))
}
