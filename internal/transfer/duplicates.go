package transfer

import (
	"context"

	"github.com/desertthunder/marquee/internal/models"
)

// KeySet is an in-memory snapshot of a list's live items keyed by (item_type, item_id).
//
// It is loaded once per list per call and kept current as the executor inserts and tombstones rows, so later items
// in the same batch see earlier writes.
type KeySet struct {
	listID int64
	items  map[models.ConcreteRef]*models.ListItem
}

// NewKeySet builds a set from items.
func NewKeySet(listID int64, items []*models.ListItem) *KeySet {
	ks := &KeySet{listID: listID, items: make(map[models.ConcreteRef]*models.ListItem, len(items))}
	for _, item := range items {
		ks.items[item.Key()] = item
	}
	return ks
}

func (k *KeySet) len() int { return len(k.items) }

// Has reports whether ref is live in the list.
func (k *KeySet) Has(ref models.ConcreteRef) bool {
	_, ok := k.items[ref]
	return ok
}

// Get returns the live row for ref, if any.
func (k *KeySet) Get(ref models.ConcreteRef) (*models.ListItem, bool) {
	item, ok := k.items[ref]
	return item, ok
}

// Add records item as live.
func (k *KeySet) Add(item *models.ListItem) {
	k.items[item.Key()] = item
}

// Remove forgets ref.
func (k *KeySet) Remove(ref models.ConcreteRef) {
	delete(k.items, ref)
}

// Filter splits refs into those absent from the set and those already live. Order is preserved and a ref repeated
// within refs is only fresh once.
func (k *KeySet) Filter(refs []models.ConcreteRef) (fresh, dupes []models.ConcreteRef) {
	seen := make(map[models.ConcreteRef]struct{}, len(refs))
	for _, ref := range refs {
		if _, ok := seen[ref]; ok || k.Has(ref) {
			dupes = append(dupes, ref)
			continue
		}
		seen[ref] = struct{}{}
		fresh = append(fresh, ref)
	}
	return fresh, dupes
}

// Detector loads [KeySet] snapshots with one query per list.
type Detector struct {
	items   ItemStore
	content ContentStore
}

// NewDetector creates a [Detector].
func NewDetector(items ItemStore, content ContentStore) *Detector {
	return &Detector{items: items, content: content}
}

// Load snapshots the live items of list. The personal list is built from the owner's live content.
func (d *Detector) Load(ctx context.Context, list *models.List) (*KeySet, error) {
	if list.IsPersonal() {
		items, err := d.content.PersonalItems(ctx, list.UserID)
		if err != nil {
			return nil, err
		}
		return NewKeySet(0, items), nil
	}

	items, err := d.items.Live(ctx, list.ID)
	if err != nil {
		return nil, err
	}
	return NewKeySet(list.ID, items), nil
}
