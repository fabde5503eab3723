package models

import "fmt"

// TransferRequest names one logical item to copy or move between two lists.
type TransferRequest struct {
	SourceList       ListRef
	TargetList       ListRef
	Item             ItemRef
	Operation        Operation
	PreserveMetadata bool
}

// Validate implements [Model].
func (r TransferRequest) Validate() error {
	if _, err := ParseOperation(string(r.Operation)); err != nil {
		return err
	}
	if r.SourceList.IsZero() {
		return validationError("source list is required")
	}
	if r.TargetList.IsZero() {
		return validationError("target list is required")
	}
	if r.SourceList == r.TargetList {
		return validationError("source and target list must differ")
	}
	return r.Item.Validate()
}

// Bulk returns the one-item batch equivalent to r.
func (r TransferRequest) Bulk() BulkRequest {
	return BulkRequest{
		Operation:        r.Operation,
		SourceList:       r.SourceList,
		TargetList:       r.TargetList,
		Items:            []ItemRef{r.Item},
		PreserveMetadata: r.PreserveMetadata,
	}
}

// TransferResult is the outcome of one logical item.
//
// ItemsAffected counts only newly inserted target rows. Duplicate is set when the item expanded to at least one row
// and every row was already live in the target.
type TransferResult struct {
	Item              ItemRef `json:"item"`
	ItemsAffected     int     `json:"items_affected"`
	Duplicate         bool    `json:"duplicate"`
	DuplicatesSkipped int     `json:"duplicates_skipped"`
	Tombstoned        int     `json:"tombstoned"`
	Message           string  `json:"message"`
}

// BulkRequest is a batch of item references sharing one source, target and operation.
type BulkRequest struct {
	Operation        Operation `json:"operation"`
	SourceList       ListRef   `json:"source_list_id"`
	TargetList       ListRef   `json:"target_list_id"`
	Items            []ItemRef `json:"items"`
	PreserveMetadata bool      `json:"preserve_metadata"`
}

// Validate implements [Model]. It checks the request shape only; lists and items are resolved later.
func (r BulkRequest) Validate() error {
	if _, err := ParseOperation(string(r.Operation)); err != nil {
		return err
	}
	if r.SourceList.IsZero() {
		return validationError("source_list_id is required")
	}
	if r.TargetList.IsZero() {
		return validationError("target_list_id is required")
	}
	if r.SourceList == r.TargetList {
		return validationError("source and target list must differ")
	}
	if len(r.Items) == 0 {
		return validationError("items must not be empty")
	}
	for i, item := range r.Items {
		if err := item.Validate(); err != nil {
			return fmt.Errorf("items[%d]: %w", i, err)
		}
	}
	return nil
}

// BulkResult aggregates the per-item results of a batch.
type BulkResult struct {
	ItemsAffected     int              `json:"items_affected"`
	DuplicatesSkipped int              `json:"duplicates_skipped"`
	Tombstoned        int              `json:"tombstoned"`
	Results           []TransferResult `json:"results"`
	Message           string           `json:"message"`
}

// Add folds one item result into the batch totals.
func (b *BulkResult) Add(r TransferResult) {
	b.ItemsAffected += r.ItemsAffected
	b.DuplicatesSkipped += r.DuplicatesSkipped
	b.Tombstoned += r.Tombstoned
	b.Results = append(b.Results, r)
}
