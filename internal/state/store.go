package state

import (
	"slices"
	"sort"
	"sync"

	"github.com/five82/logdeck/internal/logline"
)

// DefaultCapacity is used when New is given a non-positive capacity.
const DefaultCapacity = 1000

// EventKind identifies a store mutation.
type EventKind int

const (
	EventAppended EventKind = iota + 1
	EventCleared
)

func (k EventKind) String() string {
	switch k {
	case EventAppended:
		return "append"
	case EventCleared:
		return "clear"
	default:
		return "unknown"
	}
}

// Event is delivered to subscribers after every mutation. Entry is set only
// for EventAppended.
type Event struct {
	Kind    EventKind
	Entry   logline.Entry
	Version uint64
}

// Snapshot is an ordered, immutable copy of the buffer and its registry taken
// under a single lock.
type Snapshot struct {
	Entries  []logline.Entry
	Sources  []string
	Version  uint64
	Capacity int
}

// Stats summarizes store activity.
type Stats struct {
	Buffered int                   `json:"buffered"`
	Capacity int                   `json:"capacity"`
	Levels   map[logline.Level]int `json:"levels"`
	Sources  int                   `json:"sources"`
	Appended uint64                `json:"appended"`
	Evicted  uint64                `json:"evicted"`
	Dropped  uint64                `json:"droppedNotifications"`
}

// Store is a bounded ring of entries. Appends evict from the head once the
// ring is full. All mutations are serialized; reads copy.
type Store struct {
	mu sync.RWMutex

	ring []logline.Entry
	head int
	size int

	seq     uint64
	version uint64

	sources map[string]int
	levels  map[logline.Level]int

	appended uint64
	evicted  uint64
	dropped  uint64

	subs    map[int]*subscriber
	nextSub int
}

type subscriber struct {
	ch   chan Event
	once sync.Once
}

func (s *subscriber) close() {
	s.once.Do(func() { close(s.ch) })
}

// New returns an empty store holding at most capacity entries.
func New(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{
		ring:    make([]logline.Entry, capacity),
		sources: make(map[string]int),
		levels:  make(map[logline.Level]int),
		subs:    make(map[int]*subscriber),
	}
}

// Capacity returns the maximum number of buffered entries.
func (s *Store) Capacity() int {
	return len(s.ring)
}

// Append stores e at the tail, assigning the next sequence number, and
// returns the stored copy. It never blocks on subscribers.
func (s *Store) Append(e logline.Entry) logline.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	e.Sequence = s.seq
	e.Structured = slices.Clone(e.Structured)

	if s.size == len(s.ring) {
		old := s.ring[s.head]
		s.forget(old)
		s.ring[s.head] = e
		s.head = (s.head + 1) % len(s.ring)
		s.evicted++
	} else {
		s.ring[(s.head+s.size)%len(s.ring)] = e
		s.size++
	}
	s.sources[e.SourceID]++
	s.levels[e.Level]++
	s.appended++
	s.version++

	out := e
	out.Structured = slices.Clone(e.Structured)
	s.notify(Event{Kind: EventAppended, Entry: out, Version: s.version})
	return out
}

// Clear empties the buffer and the registry. Sequence numbers keep counting.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	clear(s.ring)
	s.head, s.size = 0, 0
	clear(s.sources)
	clear(s.levels)
	s.version++

	s.notify(Event{Kind: EventCleared, Version: s.version})
}

// Snapshot returns a copy of the buffer in sequence order. Entries are deep
// copies: changing one never reaches the store.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Snapshot{
		Entries:  s.entriesAfter(0),
		Sources:  s.members(),
		Version:  s.version,
		Capacity: len(s.ring),
	}
}

// Since returns buffered entries with a sequence greater than seq.
func (s *Store) Since(seq uint64) []logline.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entriesAfter(seq)
}

// Members returns the sorted set of source IDs currently in the buffer.
func (s *Store) Members() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.members()
}

// Len returns the number of buffered entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.size
}

// Version increments on every append and clear.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Stats returns counters describing the buffer and its history.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	levels := make(map[logline.Level]int, len(s.levels))
	for level, n := range s.levels {
		if n > 0 {
			levels[level] = n
		}
	}
	return Stats{
		Buffered: s.size,
		Capacity: len(s.ring),
		Levels:   levels,
		Sources:  len(s.sources),
		Appended: s.appended,
		Evicted:  s.evicted,
		Dropped:  s.dropped,
	}
}

// Subscribe registers for mutation events. Events that do not fit in the
// channel buffer are dropped and counted in Stats. The returned cancel func
// closes the channel and may be called more than once.
func (s *Store) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer < 1 {
		buffer = 1
	}
	sub := &subscriber{ch: make(chan Event, buffer)}

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = sub
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
		sub.close()
	}
	return sub.ch, cancel
}

// notify must be called with the write lock held, which keeps delivery in
// mutation order and prevents a send after cancel has closed the channel.
func (s *Store) notify(ev Event) {
	for _, sub := range s.subs {
		select {
		case sub.ch <- ev:
		default:
			s.dropped++
		}
	}
}

func (s *Store) forget(e logline.Entry) {
	if n := s.sources[e.SourceID]; n <= 1 {
		delete(s.sources, e.SourceID)
	} else {
		s.sources[e.SourceID] = n - 1
	}
	if n := s.levels[e.Level]; n <= 1 {
		delete(s.levels, e.Level)
	} else {
		s.levels[e.Level] = n - 1
	}
}

func (s *Store) entriesAfter(seq uint64) []logline.Entry {
	if s.size == 0 {
		return nil
	}
	out := make([]logline.Entry, 0, s.size)
	for i := 0; i < s.size; i++ {
		e := s.ring[(s.head+i)%len(s.ring)]
		if e.Sequence > seq {
			e.Structured = slices.Clone(e.Structured)
			out = append(out, e)
		}
	}
	return out
}

func (s *Store) members() []string {
	if len(s.sources) == 0 {
		return nil
	}
	ids := make([]string, 0, len(s.sources))
	for id := range s.sources {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
