// Package app provides the orchestration layer for logdeck.
//
// # Overview
//
// This package wires together configuration, logging, the entry store, the
// ingestion gateway and one presentation surface. It is the composition root
// where all dependencies are initialized and connected.
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │ Initialize everything
//	└──────┬───────┘
//	       │
//	       ├─────> config.Load()      Read config.toml, apply flag overrides
//	       ├─────> logging.Setup()    logrus to log_file (or stderr)
//	       ├─────> state.New()        Ring buffer sized by max_lines
//	       ├─────> ingest.New()       Gateway with counters and allowlist
//	       ├─────> StartPump()        Stream the line source in the background
//	       └─────> ui.Run()           Terminal viewer (blocks), or
//	               server.Run()       HTTP API (blocks)
//
//	Background Pump:
//	┌─────────────────────────────────────────┐
//	│ StartPump() goroutine                   │
//	│  ├─> logtail.Stream()  numbered lines   │
//	│  └─> gateway.Push()    classify/render  │
//	│      └─> store.Append()                 │
//	│          └─> surfaces read Snapshot()   │
//	└─────────────────────────────────────────┘
//
// # Error Handling
//
// Fatal errors (returned from Run):
//   - Invalid configuration or flag values
//   - Log file or source file that cannot be opened
//   - HTTP listener failure
//
// Recoverable errors (logged, the surface keeps running):
//   - Read errors on the line source (over-long lines are truncated, not fatal)
//
// Blank lines and lines outside the accepted levels are dropped by the
// gateway and never stop the pump.
package app
