// Package manager serializes all store access onto a single worker
// goroutine and presents a non-blocking, cache-aside API to the rest of
// the application.
//
// ARCHITECTURE:
//
// Single-writer loop: the worker goroutine holds the only live store
// handle. The SQLite connection is not safe for concurrent use, and
// funneling every operation through one goroutine removes the need for
// any lock inside the store itself.
//
// Two queues: a bounded multi-producer task queue feeds the worker, and
// a buffered result channel carries finished loads back. Tasks run in
// strict FIFO enqueue order across all producers, so one caller's
// update followed by its remove is applied in that order, and distinct
// callers' mutations interleave only in enqueue order.
//
// Cache-aside reads: Load consults the cache, schedules a fetch on a
// miss (deduplicated through the requesting set) and returns nil until
// the worker has answered. Per year the caller observes
// Unknown -> Requesting -> Cached; eviction moves a year back to
// Unknown, and mutations never touch the cache state by themselves.
//
// The cache and the requesting set are accessed without locks: they
// belong to the single goroutine calling Load. Multiple concurrent
// Load callers would need external synchronization - this mirrors the
// one-caller-per-manager assumption of the original desktop
// application rather than silently strengthening it.
package manager
