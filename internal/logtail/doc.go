// Package logtail turns a line-oriented reader into ingestion events.
//
// # Overview
//
// logdeck does not watch files itself. Something else produces the lines
// (tail -F, journalctl -f, a container runtime) and pipes them in. Stream
// reads that pipe and hands each line to a push function, normally
// ingest.Gateway.Push.
//
// Example usage:
//
//	g := ingest.New(store)
//	err := logtail.Stream(ctx, os.Stdin, "stdin", func(ev ingest.Event) error {
//		_, err := g.Push(ev)
//		return err
//	})
//
// # Line Handling
//
//   - Lines are numbered from 1 in the order they are read
//   - Each event is stamped with the time it was read
//   - Line endings are stripped; content is otherwise untouched
//   - Read buffer: 64KB; lines over 1MB are truncated with a warning
//
// # Error Handling
//
// Blank lines and lines outside the accepted levels come back from the
// gateway as ingest.ErrEmptyLine and ingest.ErrLevelNotAccepted. Those are
// skipped. Any other push error stops the stream and is returned wrapped
// with the line number.
//
// A line longer than the maximum keeps its first 1MB and the rest is
// discarded, so one runaway line never stops the stream. Read errors stop
// the stream and are returned wrapped. EOF is a clean stop and returns nil.
//
// # Cancellation
//
// The context is checked between lines. A read already blocked on an idle
// pipe is not interrupted; callers run Stream in its own goroutine and do not
// wait for it on shutdown.
package logtail
