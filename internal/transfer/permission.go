package transfer

import (
	"context"
	"fmt"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
)

// Validator answers write-permission questions.
type Validator struct {
	perms PermissionStore
}

// NewValidator creates a [Validator] over perms.
func NewValidator(perms PermissionStore) *Validator {
	return &Validator{perms: perms}
}

// CanWrite reports whether userID may mutate the items of list.
//
// Owners always can, and so can sharees holding edit or admin. A view share or no share at all cannot.
// The personal list is writable only by the user it belongs to.
func (v *Validator) CanWrite(ctx context.Context, list *models.List, userID string) (bool, error) {
	if list.OwnedBy(userID) {
		return true, nil
	}
	if list.IsPersonal() {
		return false, nil
	}

	level, ok, err := v.perms.Level(ctx, list.ID, userID)
	if err != nil {
		return false, err
	}
	return ok && level.CanWrite(), nil
}

// RequireWrite is [Validator.CanWrite] that turns a refusal into [shared.ErrPermissionDenied].
func (v *Validator) RequireWrite(ctx context.Context, list *models.List, userID string) error {
	ok, err := v.CanWrite(ctx, list, userID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: no write access to list %s", shared.ErrPermissionDenied, list.Ref())
	}
	return nil
}

// CanManage reports whether userID may change the shares of list: the owner or an admin sharee.
func (v *Validator) CanManage(ctx context.Context, list *models.List, userID string) (bool, error) {
	if list.OwnedBy(userID) {
		return true, nil
	}
	if list.IsPersonal() {
		return false, nil
	}

	level, ok, err := v.perms.Level(ctx, list.ID, userID)
	if err != nil {
		return false, err
	}
	return ok && level.CanManage(), nil
}
