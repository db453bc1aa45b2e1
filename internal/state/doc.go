// Package state holds the bounded, ordered buffer of log entries shared by
// the ingestion gateway and every presentation surface.
//
// # Overview
//
// The Store is the single coordination point between writers (one or more
// line sources pushing through the gateway) and readers (the terminal viewer,
// the HTTP API and websocket streams). It owns three pieces of state that
// must always agree with each other:
//
//   - the ring of entries, at most Capacity long
//   - the source registry, the distinct SourceIDs present in the ring
//   - the version counter, bumped by every mutation
//
// # Architecture
//
//	Writers (gateway):             Readers (viewer, API):
//	┌────────────────┐            ┌──────────────────┐
//	│ store.Append() │            │ store.Snapshot() │
//	│ store.Clear()  │───────────→│ store.Since(seq) │
//	│      ↓         │  (mutex)   │ store.Members()  │
//	│ notify subs    │            │ <-Subscribe()    │
//	└────────────────┘            └──────────────────┘
//
// # Ring Semantics
//
// Append assigns the next sequence number and writes at the tail. When the
// ring is full the head entry is overwritten, so append cost is constant
// regardless of capacity. Eviction decrements the registry refcount of the
// evicted entry's source and removes the source when it reaches zero.
//
// Clear empties the ring, the registry and the per-level counts in one
// critical section. Sequence numbers are not reset, so a consumer that
// remembers the last sequence it saw can never confuse old and new entries.
//
// # Concurrency Model
//
// The Store uses a readers-writer lock:
//
//   - Append(), Clear(), Subscribe cancel: write lock
//   - Snapshot(), Since(), Members(), Stats(), Version(): read lock
//
// Readers always receive copies. A Snapshot gathers entries, registry and
// version under one read lock, so it can never show a registry that
// disagrees with its entries.
//
// # Notifications
//
// Subscribe returns a buffered channel of Events. Delivery happens inside the
// write lock with a non-blocking send: a slow subscriber loses events rather
// than stalling ingestion, and the loss is counted in Stats().Dropped.
// Consumers that need completeness re-sync with Since or Snapshot. Consumers
// that only need to know "something changed" can instead poll Version.
//
// # Usage Example
//
//	store := state.New(1000)
//	events, cancel := store.Subscribe(64)
//	defer cancel()
//
//	store.Append(logline.Entry{SourceID: "/var/log/app.log", RawLine: "ok"})
//	ev := <-events // ev.Kind == state.EventAppended
//
//	snap := store.Snapshot()
//	fmt.Println(len(snap.Entries), snap.Sources)
package state
