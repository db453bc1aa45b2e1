package logtail

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/five82/logdeck/internal/ingest"
)

const (
	initialBuffer = 64 * 1024
	maxLineLength = 1024 * 1024
)

// PushFunc receives one event per scanned line.
type PushFunc func(ingest.Event) error

// Stream reads r line by line and pushes each line as an event from source,
// numbering lines from 1. Lines the gateway drops (blank lines, filtered
// levels) do not stop the stream, and lines longer than the maximum are
// truncated. Stream returns nil at EOF and ctx.Err() when ctx is cancelled
// between lines; a read that is already blocked is not interrupted.
func Stream(ctx context.Context, r io.Reader, source string, push PushFunc) error {
	return StreamWithClock(ctx, r, source, push, time.Now)
}

// StreamWithClock is Stream with an explicit timestamp source.
func StreamWithClock(ctx context.Context, r io.Reader, source string, push PushFunc, now func() time.Time) error {
	reader := bufio.NewReaderSize(r, initialBuffer)

	lineNumber := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, truncated, readErr := readLine(reader)
		if readErr == io.EOF && len(line) == 0 {
			return nil
		}
		if readErr != nil && readErr != io.EOF {
			return fmt.Errorf("read log: %w", readErr)
		}

		lineNumber++
		if truncated {
			log.WithFields(log.Fields{
				"source": source,
				"line":   lineNumber,
				"limit":  maxLineLength,
			}).Warn("line truncated")
		}
		err := push(ingest.Event{
			SourceID:   source,
			RawLine:    string(line),
			Timestamp:  now(),
			LineNumber: lineNumber,
		})
		if err != nil && !skippable(err) {
			return fmt.Errorf("push line %d: %w", lineNumber, err)
		}
		if readErr == io.EOF {
			return nil
		}
	}
}

// readLine returns the next line without its line ending, keeping at most
// maxLineLength bytes. The rest of an over-long line is discarded.
func readLine(br *bufio.Reader) ([]byte, bool, error) {
	var line []byte
	truncated := false
	for {
		chunk, err := br.ReadSlice('\n')
		if err == nil {
			chunk = chunk[:len(chunk)-1]
		}
		if room := maxLineLength - len(line); len(chunk) > room {
			chunk = chunk[:room]
			truncated = true
		}
		line = append(line, chunk...)
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		if !truncated {
			line = bytes.TrimSuffix(line, []byte("\r"))
		}
		return line, truncated, err
	}
}

func skippable(err error) bool {
	return errors.Is(err, ingest.ErrEmptyLine) || errors.Is(err, ingest.ErrLevelNotAccepted)
}
