package models

import (
	"fmt"
	"strings"

	"github.com/desertthunder/marquee/internal/shared"
)

// ItemType tags both logical request references and stored list item rows.
//
// Requests may name [ItemMovie], [ItemSeries] or [ItemCollection]; list item rows hold [ItemMovie], [ItemSeries]
// or [ItemEpisode]. A collection never has a row of its own.
type ItemType string

const (
	ItemMovie      ItemType = "movie"
	ItemSeries     ItemType = "series"
	ItemCollection ItemType = "collection"
	ItemEpisode    ItemType = "episode"
)

// ParseReferenceType parses an item type accepted in transfer requests.
func ParseReferenceType(s string) (ItemType, error) {
	t := ItemType(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsReference() {
		return "", fmt.Errorf("%w: unknown item type %q", shared.ErrInvalidRequest, s)
	}
	return t, nil
}

// ParseRowType parses an item type that can be stored as a list item.
func ParseRowType(s string) (ItemType, error) {
	t := ItemType(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsRow() {
		return "", fmt.Errorf("%w: unknown list item type %q", shared.ErrInvalidRequest, s)
	}
	return t, nil
}

// IsReference reports whether t may appear in a transfer request.
func (t ItemType) IsReference() bool {
	switch t {
	case ItemMovie, ItemSeries, ItemCollection:
		return true
	}
	return false
}

// IsRow reports whether t may be stored in list_items.
func (t ItemType) IsRow() bool {
	switch t {
	case ItemMovie, ItemSeries, ItemEpisode:
		return true
	}
	return false
}

func (t ItemType) String() string { return string(t) }

// ItemRef is a logical item named by a request, before expansion.
type ItemRef struct {
	Type ItemType `json:"item_type"`
	ID   int64    `json:"item_id"`
}

// Validate implements [Model].
func (r ItemRef) Validate() error {
	if !r.Type.IsReference() {
		return fmt.Errorf("%w: unknown item type %q", shared.ErrInvalidRequest, r.Type)
	}
	if r.ID <= 0 {
		return fmt.Errorf("%w: item id must be positive", shared.ErrInvalidRequest)
	}
	return nil
}

func (r ItemRef) String() string {
	return fmt.Sprintf("%s:%d", r.Type, r.ID)
}

// ConcreteRef identifies one list item row by (item_type, item_id). It is the key for duplicate detection.
type ConcreteRef struct {
	Type ItemType `json:"item_type"`
	ID   int64    `json:"item_id"`
}

func (r ConcreteRef) String() string {
	return fmt.Sprintf("%s:%d", r.Type, r.ID)
}

// Operation is the transfer verb.
type Operation string

const (
	OperationCopy Operation = "copy"
	OperationMove Operation = "move"
)

// ParseOperation parses "copy" or "move" exactly. Anything else, including other casings, is a request error.
func ParseOperation(s string) (Operation, error) {
	switch op := Operation(s); op {
	case OperationCopy, OperationMove:
		return op, nil
	}
	return "", fmt.Errorf("%w: unknown operation %q (must be copy or move)", shared.ErrInvalidRequest, s)
}

func (o Operation) String() string { return string(o) }

func validationError(msg string) error {
	return fmt.Errorf("%w: %s", shared.ErrInvalidRequest, msg)
}
