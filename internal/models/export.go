package models

import "time"

// ListExport is a list with its live items resolved to display titles.
type ListExport struct {
	List  *List         `json:"list"`
	Items []*ExportItem `json:"items"`
}

// ExportItem is one list row with the title of the content it points at.
type ExportItem struct {
	ItemType ItemType  `json:"item_type"`
	ItemID   int64     `json:"item_id"`
	Title    string    `json:"title"`
	Year     int       `json:"year,omitempty"`
	Watched  bool      `json:"watched"`
	Notes    string    `json:"notes,omitempty"`
	AddedAt  time.Time `json:"added_at"`
}

// WatchedCount returns how many items are marked watched.
func (e *ListExport) WatchedCount() int {
	n := 0
	for _, item := range e.Items {
		if item.Watched {
			n++
		}
	}
	return n
}
