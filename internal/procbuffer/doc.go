// Package procbuffer holds the per-process event buffers built while the
// trace log is read.
//
// Manager provides command-query separation:
//
// Queries (read-only):
//   - Get(pid) - Look up a buffer
//   - Len() - Number of live buffers
//
// Commands (mutations):
//   - GetOrCreate(pid) - Route an event, creating the buffer on first sight
//   - Take(pid) - Remove a buffer and hand it over to the caller
//   - Drain() - Remove every buffer in pid order
//
// Buffers live in a red-black tree keyed by pid. Consecutive lines usually
// belong to the same process, so the last buffer used is kept in a one-slot
// cache in front of the tree.
//
// Not safe for concurrent use; the ingestor owns the Manager.
package procbuffer
