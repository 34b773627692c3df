// Package facttable maintains column metadata for warehouse-backed fact
// tables.
//
// A fact table pairs a SQL query with the columns observed in its result
// set. Column discovery runs a small sample query through a QueryRunner (the
// warehouse driver contract) and merges what it sees into the stored column
// list: vanished columns are marked deleted instead of removed, previously
// deleted columns that reappear are revived, unknown datatypes are learned
// from fresh samples, and brand-new columns are appended. Keeping deleted
// columns around means metric definitions referencing them keep resolving.
//
// Refreshes run as a background task. NewRefreshHandler produces a
// jobs.Handler under the RefreshTaskName name with a typed payload of
// organization and fact table id. A failing sample query is recorded on the
// fact table as ColumnsError, surfacing the problem to the operator without
// burning scheduler retries on a broken SQL statement.
package facttable
