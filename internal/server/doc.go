// Package server exposes the entry store over HTTP.
//
// # Routes
//
//	GET    /healthz                     buffer counts
//	GET    /api/entries?level=&source=&q=&since=
//	DELETE /api/entries                 clear buffer and source filter
//	GET    /api/view                    entries through the active filter
//	GET    /api/filter                  active filter
//	PUT    /api/filter/level            {"level":"error"}
//	PUT    /api/filter/query            {"query":"timeout"}
//	POST   /api/filter/sources/toggle   {"source":"/var/log/app.log"}
//	DELETE /api/filter/sources
//	GET    /api/sources                 registry with active flags
//	GET    /api/stats                   state.Stats
//	GET    /ws?level=&source=&q=        live stream
//	GET    /metrics                     when a gatherer is set
//
// # Streaming
//
// A websocket client first receives the matching backlog, then one
// {"type":"append"} message per new matching entry and {"type":"clear"}
// when the buffer is emptied. A client that falls behind and drops events is
// resynchronised: it gets a clear followed by the current matching buffer.
package server
