// Package models defines domain entities for the marquee watchlist service.
//
// The package contains three groups of types:
//
// 1. Persistent entities, one per table, soft-deleted through DeletedAt
//   - [User] : identity subject resolved from a bearer token
//   - [List] : named container owned by one user; the synthetic personal list is never stored
//   - [ListItem] : membership row linking a list to a movie, series or episode
//   - [ListPermission] : share granting a non-owner a [PermissionLevel]
//   - [Movie], [Series], [Episode], [Collection] : read-only content referenced by list items
//
// 2. References used by the transfer engine
//   - [ListRef] : "personal" or a numeric list id
//   - [ItemRef] : a logical (item_type, item_id) reference from a request
//   - [ConcreteRef] : a row key (item_type, item_id) produced by expansion
//
// 3. Transfer requests and results
//   - [TransferRequest], [TransferResult] : single item copy or move
//   - [BulkRequest], [BulkResult] : multi item copy or move
//
// All persistent entities implement [Model].
package models
