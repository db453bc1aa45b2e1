package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"github.com/five82/logdeck/internal/config"
	"github.com/five82/logdeck/internal/filter"
	"github.com/five82/logdeck/internal/ingest"
	"github.com/five82/logdeck/internal/logging"
	"github.com/five82/logdeck/internal/metrics"
	"github.com/five82/logdeck/internal/server"
	"github.com/five82/logdeck/internal/state"
	"github.com/five82/logdeck/internal/ui"
)

// Mode selects the presentation surface.
type Mode int

const (
	// ModeView runs the terminal viewer.
	ModeView Mode = iota
	// ModeServe runs the HTTP API.
	ModeServe
)

// Options configure a logdeck run. Zero values keep the config file settings.
type Options struct {
	ConfigPath string
	Mode       Mode
	MaxLines   int
	Source     string
	Listen     string
	Level      string // initial level filter, "all" or a level name

	// Stdin is read when the source is stdin. Nil uses os.Stdin.
	Stdin io.Reader
}

// apply overrides cfg with the non-zero options.
func (o Options) apply(cfg config.Config) (config.Config, error) {
	if o.MaxLines < 0 {
		return cfg, fmt.Errorf("max lines must be positive, got %d", o.MaxLines)
	}
	if o.MaxLines > 0 {
		cfg.MaxLines = o.MaxLines
	}
	if o.Source != "" {
		cfg.Source = o.Source
	}
	if o.Listen != "" {
		cfg.Listen = o.Listen
	}
	return cfg, nil
}

// deck is the wired core shared by both surfaces.
type deck struct {
	store    *state.Store
	registry *prometheus.Registry
	gateway  *ingest.Gateway
}

func newDeck(cfg config.Config) *deck {
	store := state.New(cfg.MaxLines)
	registry := prometheus.NewRegistry()
	metrics.RegisterStore(registry, store)
	gateway := ingest.New(store,
		ingest.WithCounters(metrics.New(registry)),
		ingest.WithAcceptLevels(cfg.AcceptLevels),
	)
	return &deck{store: store, registry: registry, gateway: gateway}
}

// Run boots logdeck until the surface exits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg, err = opts.apply(cfg)
	if err != nil {
		return err
	}

	level := filter.LevelAll
	if opts.Level != "" {
		level, err = filter.ParseLevelFilter(opts.Level)
		if err != nil {
			return err
		}
	}

	closer, err := logging.Setup(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}
	defer closer.Close()
	if opts.Mode == ModeView && cfg.LogFile == "" {
		// The terminal belongs to the viewer.
		log.SetOutput(io.Discard)
	}

	stdin := opts.Stdin
	if stdin == nil {
		stdin = os.Stdin
	}
	src, err := openSource(cfg.Source, stdin)
	if err != nil {
		return err
	}
	defer src.Close()

	d := newDeck(cfg)
	pumpCtx, stopPump := context.WithCancel(ctx)
	defer stopPump()
	StartPump(pumpCtx, src, src.id, d.gateway)

	initial := filter.NewState(level)
	log.WithFields(log.Fields{
		"source":   src.id,
		"capacity": cfg.MaxLines,
	}).Info("logdeck started")

	switch opts.Mode {
	case ModeServe:
		srv := server.New(d.store, server.Options{Gatherer: d.registry, Filter: initial})
		return srv.Run(ctx, cfg.Listen)
	case ModeView:
		return ui.Run(ctx, ui.Options{
			Store:    d.store,
			Filter:   initial,
			InputTTY: src.stdin,
		})
	default:
		return errors.New("unknown mode")
	}
}

// source is an opened line source.
type source struct {
	io.Reader
	id     string
	stdin  bool
	closer io.Closer
}

func (s source) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// openSource opens the configured file, or wraps stdin. A file is read once
// from the start.
func openSource(name string, stdin io.Reader) (source, error) {
	if name == "" || name == config.SourceStdin {
		return source{Reader: stdin, id: config.SourceStdin, stdin: true}, nil
	}
	f, err := os.Open(name)
	if err != nil {
		return source{}, fmt.Errorf("open source: %w", err)
	}
	return source{Reader: f, id: name, closer: f}, nil
}
