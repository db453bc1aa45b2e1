package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/five82/logdeck/internal/filter"
	"github.com/five82/logdeck/internal/logline"
	"github.com/five82/logdeck/internal/state"
)

const (
	wsBuffer     = 256
	writeTimeout = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type streamMessage struct {
	Type  string     `json:"type"`
	Entry *entryView `json:"entry,omitempty"`
}

// stream tracks what one websocket client has already been sent.
type stream struct {
	conn   *websocket.Conn
	filter filter.State
	// last is the highest sequence considered; version is the store
	// version already reflected on the client.
	last    uint64
	version uint64
}

func (st *stream) write(msg streamMessage) error {
	if err := st.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return st.conn.WriteJSON(msg)
}

// send writes the entries after st.last that pass the filter.
func (st *stream) send(entries []logline.Entry) error {
	for _, e := range entries {
		if e.Sequence <= st.last {
			continue
		}
		st.last = e.Sequence
		if !st.filter.Matches(e) {
			continue
		}
		view := viewOf(e)
		if err := st.write(streamMessage{Type: "append", Entry: &view}); err != nil {
			return err
		}
	}
	return nil
}

// handleWebSocket upgrades to WebSocket and streams the buffer followed by
// live appends and clears, filtered by the level, source and q parameters.
func (s *Server) handleWebSocket(c *gin.Context) {
	st, err := filterFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	// Subscribe before the snapshot so nothing appended in between is lost.
	events, cancel := s.store.Subscribe(wsBuffer)
	defer cancel()

	snap := s.store.Snapshot()
	out := &stream{conn: conn, filter: st, version: snap.Version}
	if err := out.send(snap.Entries); err != nil {
		log.WithError(err).Debug("websocket write failed")
		return
	}

	// Read pump: detect client disconnect.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-gone:
			return
		case <-s.closing:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(writeTimeout))
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := s.forward(out, ev); err != nil {
				log.WithError(err).Debug("websocket write failed")
				return
			}
		}
	}
}

// forward relays one store event. Versions move by one per append or clear,
// so a version gap means this subscriber dropped events; the client is then
// resynchronised with a clear followed by the current buffer.
func (s *Server) forward(out *stream, ev state.Event) error {
	if ev.Version <= out.version {
		return nil
	}
	if ev.Version > out.version+1 {
		return s.resync(out)
	}
	out.version = ev.Version

	switch ev.Kind {
	case state.EventCleared:
		return out.write(streamMessage{Type: "clear"})
	case state.EventAppended:
		return out.send([]logline.Entry{ev.Entry})
	}
	return nil
}

func (s *Server) resync(out *stream) error {
	snap := s.store.Snapshot()
	out.version = snap.Version
	out.last = 0
	if err := out.write(streamMessage{Type: "clear"}); err != nil {
		return err
	}
	return out.send(snap.Entries)
}
