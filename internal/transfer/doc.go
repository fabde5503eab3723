// package transfer implements the list item transfer engine: copying or moving movies, series and collections
// between user-owned or shared lists, one item or a batch at a time.
//
// Components, leaf to root:
//   - [Registry] : resolves a [models.ListRef] to a visible list, including the synthetic personal list
//   - [Validator] : decides whether a user may write to a list
//   - [Resolver] : expands logical item references into the list item rows they stand for
//   - [Detector] : loads a list's live keys once so duplicate checks are in-memory lookups
//   - [Executor] : inserts surviving rows into the target and, for moves, tombstones the source rows
//   - [Orchestrator] : validates a whole batch before any write, then drives the executor per item
//
// [Engine] is the entry point. Every Copy, Move or Bulk call runs in one database transaction: either all rows of
// the call are written or none are.
package transfer
