// Package metrics exposes logdeck's Prometheus instrumentation.
//
// # Series
//
//   - logdeck_lines_accepted_total{level}: lines stored by the gateway
//   - logdeck_lines_rejected_total{reason}: missing_source, empty_line, level_not_accepted
//   - logdeck_buffer_entries, logdeck_buffer_capacity, logdeck_buffer_sources
//   - logdeck_buffer_level_entries{level}: buffered entries per level
//   - logdeck_buffer_evicted_total, logdeck_notifications_dropped_total
//
// Buffer series are sampled from state.Store at scrape time, so they never
// drift from the store. Counters live on the registry passed to New; tests
// use NewTestCounters for a private registry.
package metrics
