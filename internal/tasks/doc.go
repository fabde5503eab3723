// Package tasks runs long list operations outside the request path and reports progress over a channel.
//
// [Exporter.BulkExport] writes every list a user can see to disk. A producer goroutine loads each list (paced by a
// [rate.Limiter] so a large account does not monopolise the database) and a bounded pool of workers renders the
// files. Failures are recorded per list and never abort the batch. A manifest summarising the run is written last.
//
// Progress updates are sent with select/default so a slow or absent reader never blocks the export.
package tasks
