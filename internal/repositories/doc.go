// Package repositories implements SQLite persistence for all domain entities.
//
// All repositories support soft deletes via deleted_at timestamps and exclude deleted records from queries by default;
// the filter comes from [Alive]. Rows are tombstoned, never removed.
//
// Key Implementations:
//   - [UserRepository] : identity subjects, upserted on first authenticated request
//   - [ListRepository] : custom list CRUD and visibility (owned plus shared)
//   - [ListItemRepository] : list membership with the live-triple uniqueness guard
//   - [PermissionRepository] : list shares
//   - [ContentRepository] : movies, series, episodes and collections with batched lookups
//
// [Store] bundles them behind one [Querier] and [WithTx] runs a unit of work inside a single transaction.
package repositories
