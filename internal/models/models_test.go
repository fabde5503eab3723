package models

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/desertthunder/marquee/internal/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListRef(t *testing.T) {
	t.Run("ParsePersonal", func(t *testing.T) {
		ref, err := ParseListRef("Personal")
		require.NoError(t, err)
		assert.True(t, ref.Personal)
		assert.Equal(t, "personal", ref.String())
	})

	t.Run("ParseNumeric", func(t *testing.T) {
		ref, err := ParseListRef("42")
		require.NoError(t, err)
		assert.Equal(t, ListIDRef(42), ref)
	})

	t.Run("ParseRejectsGarbage", func(t *testing.T) {
		for _, in := range []string{"", "0", "-3", "abc", "1.5"} {
			_, err := ParseListRef(in)
			assert.ErrorIs(t, err, shared.ErrInvalidRequest, "input %q", in)
		}
	})

	t.Run("JSON", func(t *testing.T) {
		var body struct {
			Source ListRef `json:"source"`
			Target ListRef `json:"target"`
			Quoted ListRef `json:"quoted"`
		}
		err := json.Unmarshal([]byte(`{"source":"personal","target":7,"quoted":"9"}`), &body)
		require.NoError(t, err)
		assert.Equal(t, PersonalRef(), body.Source)
		assert.Equal(t, ListIDRef(7), body.Target)
		assert.Equal(t, ListIDRef(9), body.Quoted)

		out, err := json.Marshal(body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"source":"personal","target":7,"quoted":9}`, string(out))
	})

	t.Run("JSONRejectsInvalid", func(t *testing.T) {
		var ref ListRef
		assert.ErrorIs(t, json.Unmarshal([]byte(`0`), &ref), shared.ErrInvalidRequest)
		assert.ErrorIs(t, json.Unmarshal([]byte(`true`), &ref), shared.ErrInvalidRequest)
	})
}

func TestItemTypes(t *testing.T) {
	tests := []struct {
		in        string
		reference bool
		row       bool
	}{
		{"movie", true, true},
		{"series", true, true},
		{"collection", true, false},
		{"episode", false, true},
		{"album", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			_, err := ParseReferenceType(tt.in)
			assert.Equal(t, tt.reference, err == nil)
			_, err = ParseRowType(tt.in)
			assert.Equal(t, tt.row, err == nil)
		})
	}
}

func TestParseOperation(t *testing.T) {
	op, err := ParseOperation("move")
	require.NoError(t, err)
	assert.Equal(t, OperationMove, op)

	for _, s := range []string{"delete", "MOVE", "Move", " move", "Copy", ""} {
		_, err = ParseOperation(s)
		assert.True(t, errors.Is(err, shared.ErrInvalidRequest), "operation %q", s)
	}
}

func TestPermissionLevel(t *testing.T) {
	assert.False(t, PermissionView.CanWrite())
	assert.True(t, PermissionEdit.CanWrite())
	assert.True(t, PermissionAdmin.CanWrite())
	assert.False(t, PermissionEdit.CanManage())
	assert.True(t, PermissionAdmin.CanManage())

	_, err := ParsePermissionLevel("owner")
	assert.ErrorIs(t, err, shared.ErrInvalidRequest)
}

func TestBulkRequestValidate(t *testing.T) {
	valid := BulkRequest{
		Operation:  OperationCopy,
		SourceList: ListIDRef(1),
		TargetList: ListIDRef(2),
		Items:      []ItemRef{{Type: ItemMovie, ID: 10}},
	}

	t.Run("Valid", func(t *testing.T) {
		assert.NoError(t, valid.Validate())
	})

	t.Run("Invalid", func(t *testing.T) {
		cases := map[string]func(r *BulkRequest){
			"operation":   func(r *BulkRequest) { r.Operation = "rename" },
			"upper move":  func(r *BulkRequest) { r.Operation = "MOVE" },
			"empty items": func(r *BulkRequest) { r.Items = nil },
			"same list":   func(r *BulkRequest) { r.TargetList = r.SourceList },
			"no target":   func(r *BulkRequest) { r.TargetList = ListRef{} },
			"item type":   func(r *BulkRequest) { r.Items = []ItemRef{{Type: ItemEpisode, ID: 1}} },
			"item id":     func(r *BulkRequest) { r.Items = []ItemRef{{Type: ItemMovie}} },
		}
		for name, mutate := range cases {
			t.Run(name, func(t *testing.T) {
				req := valid
				req.Items = append([]ItemRef(nil), valid.Items...)
				mutate(&req)
				assert.ErrorIs(t, req.Validate(), shared.ErrInvalidRequest)
			})
		}
	})

	t.Run("TransferAsBulk", func(t *testing.T) {
		single := TransferRequest{
			SourceList: PersonalRef(),
			TargetList: ListIDRef(3),
			Item:       ItemRef{Type: ItemSeries, ID: 5},
			Operation:  OperationCopy,
		}
		require.NoError(t, single.Validate())
		bulk := single.Bulk()
		assert.Len(t, bulk.Items, 1)
		assert.NoError(t, bulk.Validate())
	})
}

func TestBulkResultAdd(t *testing.T) {
	var b BulkResult
	b.Add(TransferResult{ItemsAffected: 3, DuplicatesSkipped: 1})
	b.Add(TransferResult{ItemsAffected: 0, DuplicatesSkipped: 2, Duplicate: true, Tombstoned: 2})
	assert.Equal(t, 3, b.ItemsAffected)
	assert.Equal(t, 3, b.DuplicatesSkipped)
	assert.Equal(t, 2, b.Tombstoned)
	assert.Len(t, b.Results, 2)
}

func TestListValidate(t *testing.T) {
	l := &List{UserID: "u1", Name: "Weekend", Kind: ListKindCustom}
	assert.NoError(t, l.Validate())

	assert.ErrorIs(t, NewPersonalList("u1").Validate(), shared.ErrInvalidRequest)
	assert.True(t, NewPersonalList("u1").Ref().Personal)

	l.Name = "  "
	assert.ErrorIs(t, l.Validate(), shared.ErrInvalidRequest)
}
