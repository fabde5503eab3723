package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/marquee/internal/shared"
)

// PersonalListToken names the synthetic personal list in paths and request bodies.
const PersonalListToken = "personal"

// ListKind distinguishes the synthetic personal list from stored custom lists.
type ListKind string

const (
	ListKindPersonal ListKind = "personal"
	ListKindCustom   ListKind = "custom"
)

// ListRef names a list: either the caller's personal list or a stored list id.
type ListRef struct {
	ID       int64
	Personal bool
}

// PersonalRef returns the reference to the caller's personal list.
func PersonalRef() ListRef { return ListRef{Personal: true} }

// ListIDRef returns the reference to a stored list.
func ListIDRef(id int64) ListRef { return ListRef{ID: id} }

// ParseListRef parses "personal" or a positive integer id.
func ParseListRef(s string) (ListRef, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, PersonalListToken) {
		return PersonalRef(), nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return ListRef{}, fmt.Errorf("%w: invalid list id %q", shared.ErrInvalidRequest, s)
	}
	return ListIDRef(id), nil
}

// IsZero reports whether the reference names nothing.
func (r ListRef) IsZero() bool { return !r.Personal && r.ID == 0 }

func (r ListRef) String() string {
	if r.Personal {
		return PersonalListToken
	}
	return strconv.FormatInt(r.ID, 10)
}

// MarshalJSON encodes the personal list as "personal" and stored lists as numbers.
func (r ListRef) MarshalJSON() ([]byte, error) {
	if r.Personal {
		return json.Marshal(PersonalListToken)
	}
	return json.Marshal(r.ID)
}

// UnmarshalJSON accepts a number, a numeric string, or "personal".
func (r *ListRef) UnmarshalJSON(data []byte) error {
	var n int64
	if err := json.Unmarshal(data, &n); err == nil {
		if n <= 0 {
			return fmt.Errorf("%w: list id must be positive", shared.ErrInvalidRequest)
		}
		*r = ListIDRef(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: list id must be a number or %q", shared.ErrInvalidRequest, PersonalListToken)
	}

	parsed, err := ParseListRef(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// List is a named container of items owned by one user.
type List struct {
	ID          int64      `json:"id"`
	UserID      string     `json:"user_id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Kind        ListKind   `json:"kind"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"-"`
}

// NewPersonalList returns the synthetic personal list of userID. It has no id and is never persisted.
func NewPersonalList(userID string) *List {
	return &List{UserID: userID, Name: "Personal", Kind: ListKindPersonal}
}

// IsPersonal reports whether l is the synthetic personal list.
func (l *List) IsPersonal() bool { return l.Kind == ListKindPersonal }

// Ref returns the reference naming l.
func (l *List) Ref() ListRef {
	if l.IsPersonal() {
		return PersonalRef()
	}
	return ListIDRef(l.ID)
}

// OwnedBy reports whether userID owns l.
func (l *List) OwnedBy(userID string) bool { return l.UserID == userID }

// Validate implements [Model].
func (l *List) Validate() error {
	if l.UserID == "" {
		return validationError("list owner is required")
	}
	if strings.TrimSpace(l.Name) == "" {
		return validationError("list name is required")
	}
	if len(l.Name) > 200 {
		return validationError("list name is too long")
	}
	if l.Kind != ListKindCustom {
		return validationError("only custom lists are stored")
	}
	return nil
}

// ListItem is the membership of one movie, series or episode in a list.
type ListItem struct {
	ID        int64      `json:"id"`
	ListID    int64      `json:"list_id"`
	ItemType  ItemType   `json:"item_type"`
	ItemID    int64      `json:"item_id"`
	Watched   bool       `json:"watched"`
	Notes     string     `json:"notes"`
	AddedAt   time.Time  `json:"added_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"-"`
}

// Key returns the duplicate detection key of the item.
func (i *ListItem) Key() ConcreteRef {
	return ConcreteRef{Type: i.ItemType, ID: i.ItemID}
}

// Validate implements [Model].
func (i *ListItem) Validate() error {
	if i.ListID <= 0 {
		return validationError("list id is required")
	}
	if !i.ItemType.IsRow() {
		return validationError(fmt.Sprintf("item type %q cannot be stored in a list", i.ItemType))
	}
	if i.ItemID <= 0 {
		return validationError("item id must be positive")
	}
	return nil
}

// PermissionLevel is the access a share grants to a non-owner.
type PermissionLevel string

const (
	PermissionView  PermissionLevel = "view"
	PermissionEdit  PermissionLevel = "edit"
	PermissionAdmin PermissionLevel = "admin"
)

// ParsePermissionLevel parses view, edit or admin.
func ParsePermissionLevel(s string) (PermissionLevel, error) {
	switch l := PermissionLevel(strings.ToLower(strings.TrimSpace(s))); l {
	case PermissionView, PermissionEdit, PermissionAdmin:
		return l, nil
	}
	return "", fmt.Errorf("%w: unknown permission level %q", shared.ErrInvalidRequest, s)
}

// CanWrite reports whether the level permits mutating the list's items.
func (p PermissionLevel) CanWrite() bool {
	return p == PermissionEdit || p == PermissionAdmin
}

// CanManage reports whether the level permits managing shares.
func (p PermissionLevel) CanManage() bool {
	return p == PermissionAdmin
}

// ListPermission grants UserID a level on ListID.
type ListPermission struct {
	ID        int64           `json:"id"`
	ListID    int64           `json:"list_id"`
	UserID    string          `json:"user_id"`
	Level     PermissionLevel `json:"level"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	DeletedAt *time.Time      `json:"-"`
}

// Validate implements [Model].
func (p *ListPermission) Validate() error {
	if p.ListID <= 0 {
		return validationError("list id is required")
	}
	if p.UserID == "" {
		return validationError("user id is required")
	}
	if _, err := ParsePermissionLevel(string(p.Level)); err != nil {
		return err
	}
	return nil
}
