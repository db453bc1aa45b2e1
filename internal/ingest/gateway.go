// Package ingest is the boundary between external line sources and the
// store. It validates push events, classifies and renders them, and appends
// the resulting entries.
package ingest

import (
	"errors"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/five82/logdeck/internal/classify"
	"github.com/five82/logdeck/internal/logline"
	"github.com/five82/logdeck/internal/metrics"
	"github.com/five82/logdeck/internal/render"
)

var (
	// ErrMissingSource rejects an event with no source identifier.
	ErrMissingSource = errors.New("ingest: missing source id")
	// ErrEmptyLine marks a blank line. Callers may ignore it.
	ErrEmptyLine = errors.New("ingest: empty line")
	// ErrLevelNotAccepted marks a line outside the accepted level set.
	ErrLevelNotAccepted = errors.New("ingest: level not accepted")
)

// Event is one line pushed by a source.
type Event struct {
	SourceID      string    `json:"sourceId"`
	RawLine       string    `json:"rawLine"`
	ExplicitLevel string    `json:"explicitLevel,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
	LineNumber    int       `json:"lineNumberInSource"`
}

// Validate reports why ev cannot be stored, if it cannot.
func (ev Event) Validate() error {
	if strings.TrimSpace(ev.SourceID) == "" {
		return ErrMissingSource
	}
	if strings.TrimSpace(ev.RawLine) == "" {
		return ErrEmptyLine
	}
	return nil
}

// Appender is the store operation the gateway drives.
type Appender interface {
	Append(logline.Entry) logline.Entry
}

// Gateway turns events into stored entries.
type Gateway struct {
	store    Appender
	counters *metrics.Counters
	accept   map[logline.Level]bool
	now      func() time.Time
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithCounters records accepted and rejected lines.
func WithCounters(c *metrics.Counters) Option {
	return func(g *Gateway) {
		if c != nil {
			g.counters = c
		}
	}
}

// WithAcceptLevels restricts stored entries to levels. An empty list
// accepts everything.
func WithAcceptLevels(levels []logline.Level) Option {
	return func(g *Gateway) {
		if len(levels) == 0 {
			g.accept = nil
			return
		}
		g.accept = make(map[logline.Level]bool, len(levels))
		for _, level := range levels {
			g.accept[level] = true
		}
	}
}

// WithClock overrides the time used for events without a timestamp.
func WithClock(now func() time.Time) Option {
	return func(g *Gateway) {
		if now != nil {
			g.now = now
		}
	}
}

// New returns a gateway appending to store, usually a *state.Store.
func New(store Appender, opts ...Option) *Gateway {
	g := &Gateway{
		store:    store,
		counters: metrics.NopCounters(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Push validates, classifies and renders ev and appends the result. On any
// error the store is left untouched.
func (g *Gateway) Push(ev Event) (logline.Entry, error) {
	if err := ev.Validate(); err != nil {
		g.reject(ev, err)
		return logline.Entry{}, err
	}

	doc := render.Render(ev.RawLine)
	hint := ev.ExplicitLevel
	if _, ok := logline.ParseLevel(hint); !ok {
		hint = doc.LevelHint()
	}
	level := classify.Classify(ev.RawLine, hint)

	if g.accept != nil && !g.accept[level] {
		g.reject(ev, ErrLevelNotAccepted)
		return logline.Entry{}, ErrLevelNotAccepted
	}

	ts := ev.Timestamp
	if ts.IsZero() {
		ts = g.now()
	}

	stored := g.store.Append(logline.Entry{
		SourceID:   ev.SourceID,
		SourceName: logline.SourceName(ev.SourceID),
		RawLine:    ev.RawLine,
		Level:      level,
		Timestamp:  ts,
		LineNumber: ev.LineNumber,
		Plain:      doc.Plain,
		Structured: doc.Tokens,
	})
	g.counters.LinesAccepted.Inc(string(level))

	log.WithFields(log.Fields{
		"source":   stored.SourceID,
		"level":    stored.Level,
		"sequence": stored.Sequence,
	}).Trace("line stored")
	return stored, nil
}

func (g *Gateway) reject(ev Event, err error) {
	reason := "missing_source"
	switch {
	case errors.Is(err, ErrEmptyLine):
		reason = "empty_line"
	case errors.Is(err, ErrLevelNotAccepted):
		reason = "level_not_accepted"
	}
	g.counters.LinesRejected.Inc(reason)

	entry := log.WithFields(log.Fields{
		"source": ev.SourceID,
		"reason": reason,
	})
	if errors.Is(err, ErrMissingSource) {
		entry.Warn("event rejected")
		return
	}
	entry.Debug("line dropped")
}
