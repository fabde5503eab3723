package transfer

import (
	"context"
	"fmt"

	"github.com/desertthunder/marquee/internal/models"
)

// Plan is one logical item ready to execute: lists resolved, permissions checked and rows expanded.
type Plan struct {
	Operation        models.Operation
	Source           *models.List
	Target           *models.List
	Item             models.ItemRef
	Refs             []models.ConcreteRef
	PreserveMetadata bool
}

// Executor writes the rows of one [Plan].
//
// It never opens or commits a transaction; the caller owns it and rolls back every write on error.
type Executor struct {
	items ItemStore
}

// NewExecutor creates an [Executor] over items.
func NewExecutor(items ItemStore) *Executor {
	return &Executor{items: items}
}

// Execute inserts the refs of plan missing from target and, for a move, tombstones every ref live in source.
//
// Target inserts always happen before source tombstones. Metadata (watched, notes) is carried from the source row
// for moves and for copies with PreserveMetadata; otherwise new rows get defaults. An insert that collides with a
// live row written concurrently is counted as a duplicate, not an error.
func (e *Executor) Execute(ctx context.Context, plan Plan, source, target *KeySet) (models.TransferResult, error) {
	result := models.TransferResult{Item: plan.Item}
	preserve := plan.PreserveMetadata || plan.Operation == models.OperationMove

	fresh, _ := target.Filter(plan.Refs)
	for _, ref := range fresh {
		item := &models.ListItem{ListID: plan.Target.ID, ItemType: ref.Type, ItemID: ref.ID}
		if preserve {
			if src, ok := source.Get(ref); ok {
				item.Watched = src.Watched
				item.Notes = src.Notes
			}
		}

		inserted, err := e.items.Insert(ctx, item)
		if err != nil {
			return result, fmt.Errorf("failed to add %s to list %d: %w", ref, plan.Target.ID, err)
		}
		target.Add(item)
		if inserted {
			result.ItemsAffected++
		}
	}

	result.DuplicatesSkipped = len(plan.Refs) - result.ItemsAffected
	result.Duplicate = len(plan.Refs) > 0 && result.ItemsAffected == 0

	if plan.Operation == models.OperationMove {
		var live []models.ConcreteRef
		for _, ref := range plan.Refs {
			if source.Has(ref) {
				live = append(live, ref)
			}
		}

		if len(live) > 0 {
			n, err := e.items.Tombstone(ctx, plan.Source.ID, live)
			if err != nil {
				return result, fmt.Errorf("failed to remove %s from list %d: %w", plan.Item, plan.Source.ID, err)
			}
			result.Tombstoned = n
			for _, ref := range live {
				source.Remove(ref)
			}
		}
	}

	result.Message = describe(plan, result)
	return result, nil
}

func describe(plan Plan, r models.TransferResult) string {
	verb := "Copied"
	if plan.Operation == models.OperationMove {
		verb = "Moved"
	}

	switch {
	case len(plan.Refs) == 0:
		return fmt.Sprintf("Nothing to %s: %s has no items", plan.Operation, plan.Item)
	case r.Duplicate && plan.Operation == models.OperationMove:
		return fmt.Sprintf("%s already in target list; removed from source list", plan.Item)
	case r.Duplicate:
		return fmt.Sprintf("%s already in target list", plan.Item)
	case r.DuplicatesSkipped > 0:
		return fmt.Sprintf("%s %s (%s, %d already present)", verb, plan.Item, plural(r.ItemsAffected, "item"), r.DuplicatesSkipped)
	}
	return fmt.Sprintf("%s %s (%s)", verb, plan.Item, plural(r.ItemsAffected, "item"))
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
