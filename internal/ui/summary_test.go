package ui

import (
	"errors"
	"strings"
	"testing"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestTransferSummary(t *testing.T) {
	item := models.ItemRef{Type: models.ItemSeries, ID: 4}

	t.Run("Copy", func(t *testing.T) {
		out := TransferSummary(models.OperationCopy, models.TransferResult{Item: item, ItemsAffected: 3})
		assert.Contains(t, out, "copy series:4")
		assert.Contains(t, out, "added: 3  skipped: 0")
		assert.NotContains(t, out, "removed from source")
	})

	t.Run("MoveReportsTombstones", func(t *testing.T) {
		out := TransferSummary(models.OperationMove, models.TransferResult{Item: item, ItemsAffected: 1, DuplicatesSkipped: 2, Tombstoned: 3})
		assert.Contains(t, out, "removed from source: 3")
	})

	t.Run("Duplicate", func(t *testing.T) {
		out := TransferSummary(models.OperationCopy, models.TransferResult{
			Item: item, Duplicate: true, DuplicatesSkipped: 3, Message: "all items already present",
		})
		assert.Contains(t, out, "already in target list")
		assert.Contains(t, out, "all items already present")
	})
}

func TestBulkSummary(t *testing.T) {
	var r models.BulkResult
	r.Add(models.TransferResult{Item: models.ItemRef{Type: models.ItemMovie, ID: 1}, ItemsAffected: 1})
	r.Add(models.TransferResult{Item: models.ItemRef{Type: models.ItemMovie, ID: 2}, Duplicate: true, DuplicatesSkipped: 1})

	out := BulkSummary(models.OperationCopy, r)
	assert.Contains(t, out, "Bulk copy: 2 item(s)")
	assert.Contains(t, out, "added: 1  skipped: 1")
	assert.Contains(t, out, "movie:1  +1")
	assert.Contains(t, out, "movie:2  +0 (1 duplicate)")
}

func TestListTable(t *testing.T) {
	assert.Contains(t, ListTable(nil, "ann"), "no lists")

	out := ListTable([]*models.List{
		{ID: 1, UserID: "ann", Name: "Weekend", Kind: models.ListKindCustom},
		{ID: 12, UserID: "bob", Name: "Noir", Kind: models.ListKindCustom},
	}, "ann")

	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 3)
	assert.Contains(t, lines[0], "NAME")
	assert.Contains(t, lines[1], "Weekend")
	assert.NotContains(t, lines[1], "shared")
	assert.Contains(t, lines[2], "shared")
	assert.Equal(t, strings.Index(lines[1], "Weekend"), strings.Index(lines[2], "Noir"))
}

func TestErrorLine(t *testing.T) {
	assert.Contains(t, ErrorLine(errors.New("boom")), "boom")
}

func TestPalette(t *testing.T) {
	p := Styles()
	assert.Contains(t, p.Title("hello"), "hello")
	assert.Contains(t, p.As("x", "#FFFFFF"), "x")
	assert.Contains(t, p.On("y", "#000000"), "y")
}
