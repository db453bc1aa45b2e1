package app

import (
	"context"
	"errors"
	"io"

	log "github.com/sirupsen/logrus"

	"github.com/five82/logdeck/internal/ingest"
	"github.com/five82/logdeck/internal/logline"
	"github.com/five82/logdeck/internal/logtail"
)

// Pusher is the gateway operation the pump drives.
type Pusher interface {
	Push(ingest.Event) (logline.Entry, error)
}

// StartPump launches a background goroutine that streams lines from r into
// the gateway. It returns immediately. The returned channel receives the
// stream result (nil at EOF) and is then closed.
func StartPump(ctx context.Context, r io.Reader, source string, gw Pusher) <-chan error {
	done := make(chan error, 1)
	go func() {
		defer close(done)
		err := logtail.Stream(ctx, r, source, func(ev ingest.Event) error {
			_, err := gw.Push(ev)
			return err
		})
		switch {
		case err == nil:
			log.WithField("source", source).Info("line source reached end")
		case errors.Is(err, context.Canceled):
		default:
			log.WithError(err).WithField("source", source).Warn("line source stopped")
		}
		done <- err
	}()
	return done
}
