// Package store implements the SQLite-backed content store for
// historical year snapshots.
//
// The schema deduplicates shared content across years:
//   - Borders: content-addressed by a hash of the encoded contour.
//     Two relationship rows (any year, any country name) whose contours
//     encode to identical bytes point at one borders row.
//   - Notes: content-addressed the same way, but never forked - a year
//     has at most one note, so repointing the join row is always safe.
//   - Cities: NOT content-addressed. One physical row per name, shared
//     by every referencing year; updating a coordinate changes it for
//     all of them. This asymmetry is intentional and load-bearing for
//     callers - do not "fix" it here.
//
// # Critical patterns
//
// Fork-on-write: when a year's contour changes and the current borders
// row is shared with another relationship, the shared row is left
// untouched and only this relationship's border pointer moves. When the
// row is exclusively owned it is deleted and replaced instead.
//
// Derived reference counts: "is this row still referenced" is always a
// COUNT over the join table at decision time, never a stored counter,
// so the count cannot drift.
//
// Eager GC: countries, borders, cities and notes rows with no remaining
// join references are deleted synchronously inside the mutating call.
//
// Each Upsert/Remove runs inside a single transaction. Storage errors
// roll back the call and propagate; there are no retries.
package store
