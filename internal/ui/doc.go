// Package ui provides the terminal viewer for logdeck.
//
// # Architecture Overview
//
// The UI is a Bubble Tea program. It never mutates entries; it polls the
// state.Store version on a tick and fetches a fresh snapshot only when the
// version moved, then re-applies the active filter.State and redraws the
// viewport.
//
// # Layout
//
//   - Header: logo, visible/buffered counts, level filter, follow state
//   - Source bar: registry members with the digit that toggles each one
//   - Viewport: filtered lines, JSON lines pretty-printed and highlighted
//   - Status line: short help, or the search input while searching
//
// # Key Bindings
//
//   - L: Cycle level filter (all, error, warning, info, debug, success)
//   - 1-9: Toggle the n-th source in the filter
//   - 0: Show all sources
//   - /: Search lines (live, case-insensitive)
//   - esc: Clear the search
//   - c: Clear the buffer and the source filter
//   - f: Toggle follow mode
//   - j/k, g/G, pgup/pgdown, ctrl+u/ctrl+d: Scroll
//   - ?: Toggle help
//   - q or ctrl+c: Quit
//
// # Usage Example
//
//	err := ui.Run(ctx, ui.Options{
//		Store:    store,
//		Filter:   filter.NewState(filter.LevelAll),
//		InputTTY: true,
//	})
package ui
