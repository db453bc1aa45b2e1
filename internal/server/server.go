package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"github.com/five82/logdeck/internal/filter"
	"github.com/five82/logdeck/internal/logline"
	"github.com/five82/logdeck/internal/metrics"
	"github.com/five82/logdeck/internal/render"
	"github.com/five82/logdeck/internal/state"
)

const shutdownTimeout = 5 * time.Second

// Options configures a Server.
type Options struct {
	// Gatherer backs /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer
	// Filter is the initial active filter.
	Filter filter.State
}

// Server exposes the store over HTTP and websocket.
type Server struct {
	engine   *gin.Engine
	store    *state.Store
	gatherer prometheus.Gatherer

	mu     sync.Mutex
	filter filter.State

	closing   chan struct{}
	closeOnce sync.Once
}

// New creates the HTTP surface for store.
func New(store *state.Store, opts Options) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	engine.RedirectTrailingSlash = false
	engine.RedirectFixedPath = false

	s := &Server{
		engine:   engine,
		store:    store,
		gatherer: opts.Gatherer,
		filter:   opts.Filter.Clone(),
		closing:  make(chan struct{}),
	}

	s.setupRoutes()
	return s
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) setupRoutes() {
	s.engine.GET("/healthz", func(c *gin.Context) {
		stats := s.store.Stats()
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"buffered": stats.Buffered,
			"capacity": stats.Capacity,
			"sources":  stats.Sources,
		})
	})

	api := s.engine.Group("/api")
	api.GET("/entries", s.handleEntries)
	api.DELETE("/entries", s.handleClear)
	api.GET("/view", s.handleView)
	api.GET("/filter", s.handleGetFilter)
	api.PUT("/filter/level", s.handleSetLevel)
	api.PUT("/filter/query", s.handleSetQuery)
	api.POST("/filter/sources/toggle", s.handleToggleSource)
	api.DELETE("/filter/sources", s.handleClearSources)
	api.GET("/sources", s.handleSources)
	api.GET("/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.store.Stats())
	})

	s.engine.GET("/ws", s.handleWebSocket)

	if s.gatherer != nil {
		s.engine.GET("/metrics", gin.WrapH(metrics.Handler(s.gatherer)))
	}
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully and
// closes open websocket streams.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}
	srv.RegisterOnShutdown(s.Close)

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", addr).Info("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http: %w", err)
	}
	log.WithField("addr", addr).Info("http server stopped")
	return nil
}

// Close ends every websocket stream. It is safe to call more than once.
func (s *Server) Close() {
	s.closeOnce.Do(func() { close(s.closing) })
}

// entryView is the wire form of an entry.
type entryView struct {
	logline.Entry
	Markup string `json:"renderedMarkup"`
}

func viewOf(e logline.Entry) entryView {
	return entryView{Entry: e, Markup: render.Markup(e.Structured, e.Plain)}
}

func viewsOf(entries []logline.Entry) []entryView {
	out := make([]entryView, 0, len(entries))
	for _, e := range entries {
		out = append(out, viewOf(e))
	}
	return out
}

type filterView struct {
	Level   logline.Level `json:"level"`
	Sources []string      `json:"sources"`
	Query   string        `json:"query,omitempty"`
}

func viewOfFilter(st filter.State) filterView {
	level := st.Level
	if level == "" {
		level = filter.LevelAll
	}
	sources := st.Sources()
	if sources == nil {
		sources = []string{}
	}
	return filterView{Level: level, Sources: sources, Query: st.Query}
}

// filterFromQuery builds a filter from level, source (repeatable) and q.
func filterFromQuery(c *gin.Context) (filter.State, error) {
	level, err := filter.ParseLevelFilter(c.Query("level"))
	if err != nil {
		return filter.State{}, err
	}
	st := filter.NewState(level, c.QueryArray("source")...)
	st.Query = c.Query("q")
	return st, nil
}

func (s *Server) activeFilter() filter.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter.Clone()
}

func (s *Server) handleEntries(c *gin.Context) {
	st, err := filterFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var since uint64
	if raw := c.Query("since"); raw != "" {
		since, err = strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid since %q", raw)})
			return
		}
	}
	// The version is read before the entries, never after.
	version := s.store.Version()
	c.JSON(http.StatusOK, gin.H{
		"version": version,
		"entries": viewsOf(filter.Apply(s.store.Since(since), st)),
	})
}

func (s *Server) handleView(c *gin.Context) {
	st := s.activeFilter()
	snap := s.store.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"version": snap.Version,
		"filter":  viewOfFilter(st),
		"entries": viewsOf(filter.Apply(snap.Entries, st)),
	})
}

func (s *Server) handleClear(c *gin.Context) {
	s.mu.Lock()
	s.store.Clear()
	s.filter.ClearSources()
	s.mu.Unlock()

	log.Info("buffer cleared")
	c.Status(http.StatusNoContent)
}

func (s *Server) handleGetFilter(c *gin.Context) {
	c.JSON(http.StatusOK, viewOfFilter(s.activeFilter()))
}

func (s *Server) handleSetLevel(c *gin.Context) {
	var req struct {
		Level string `json:"level"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	level, err := filter.ParseLevelFilter(req.Level)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.mu.Lock()
	s.filter.Level = level
	view := viewOfFilter(s.filter)
	s.mu.Unlock()
	c.JSON(http.StatusOK, view)
}

func (s *Server) handleSetQuery(c *gin.Context) {
	var req struct {
		Query string `json:"query"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.mu.Lock()
	s.filter.Query = req.Query
	view := viewOfFilter(s.filter)
	s.mu.Unlock()
	c.JSON(http.StatusOK, view)
}

func (s *Server) handleToggleSource(c *gin.Context) {
	var req struct {
		Source string `json:"source" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.mu.Lock()
	active := s.filter.Toggle(req.Source)
	view := viewOfFilter(s.filter)
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"active": active, "filter": view})
}

func (s *Server) handleClearSources(c *gin.Context) {
	s.mu.Lock()
	s.filter.ClearSources()
	view := viewOfFilter(s.filter)
	s.mu.Unlock()
	c.JSON(http.StatusOK, view)
}

type sourceView struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

func (s *Server) handleSources(c *gin.Context) {
	st := s.activeFilter()
	members := s.store.Members()
	out := make([]sourceView, 0, len(members))
	for _, id := range members {
		out = append(out, sourceView{ID: id, Name: logline.SourceName(id), Active: st.HasSource(id)})
	}
	c.JSON(http.StatusOK, gin.H{"sources": out})
}
