package transfer

import (
	"context"
	"fmt"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
)

// Registry resolves list references for a requesting user.
type Registry struct {
	lists ListStore
	perms PermissionStore
}

// NewRegistry creates a [Registry] over the given stores.
func NewRegistry(lists ListStore, perms PermissionStore) *Registry {
	return &Registry{lists: lists, perms: perms}
}

// Get returns the list named by ref if userID may see it.
//
// A stored list is visible to its owner and to users holding a live share. Lists that are missing, tombstoned or
// invisible all yield [shared.ErrNotFound] so existence is not leaked. The personal list always resolves.
func (r *Registry) Get(ctx context.Context, ref models.ListRef, userID string) (*models.List, error) {
	if ref.Personal {
		return models.NewPersonalList(userID), nil
	}
	if ref.ID <= 0 {
		return nil, fmt.Errorf("%w: invalid list id %d", shared.ErrInvalidRequest, ref.ID)
	}

	list, err := r.lists.Get(ctx, ref.ID)
	if err != nil {
		return nil, err
	}
	if list.OwnedBy(userID) {
		return list, nil
	}

	_, ok, err := r.perms.Level(ctx, list.ID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: list %d", shared.ErrNotFound, ref.ID)
	}
	return list, nil
}

// Target resolves a transfer destination. The personal list is not a valid destination.
func (r *Registry) Target(ctx context.Context, ref models.ListRef, userID string) (*models.List, error) {
	if ref.Personal {
		return nil, fmt.Errorf("%w: the personal list cannot be a transfer target", shared.ErrInvalidRequest)
	}
	return r.Get(ctx, ref, userID)
}
