package state

import (
	"fmt"
	"reflect"
	"sync"
	"testing"

	"github.com/five82/logdeck/internal/logline"
	"github.com/five82/logdeck/internal/render"
)

func entry(source, line string, level logline.Level) logline.Entry {
	return logline.Entry{SourceID: source, RawLine: line, Level: level, Plain: line}
}

func TestStore_RetainsNewestEntries(t *testing.T) {
	s := New(500)
	for i := 0; i < 510; i++ {
		s.Append(entry(fmt.Sprintf("/logs/%d.log", i%20), fmt.Sprintf("line %d", i), logline.LevelInfo))
	}

	snap := s.Snapshot()
	if len(snap.Entries) != 500 {
		t.Fatalf("len(Entries) = %d, want 500", len(snap.Entries))
	}
	if snap.Entries[0].RawLine != "line 10" {
		t.Fatalf("oldest entry = %q, want %q", snap.Entries[0].RawLine, "line 10")
	}
	if snap.Entries[499].RawLine != "line 509" {
		t.Fatalf("newest entry = %q, want %q", snap.Entries[499].RawLine, "line 509")
	}
	for i := 1; i < len(snap.Entries); i++ {
		if snap.Entries[i].Sequence <= snap.Entries[i-1].Sequence {
			t.Fatalf("sequence not increasing at %d: %d after %d", i, snap.Entries[i].Sequence, snap.Entries[i-1].Sequence)
		}
	}
	if st := s.Stats(); st.Evicted != 10 || st.Appended != 510 {
		t.Fatalf("Stats() evicted=%d appended=%d, want 10 and 510", st.Evicted, st.Appended)
	}
}

func TestStore_RegistryTracksSurvivors(t *testing.T) {
	s := New(3)
	s.Append(entry("/a.log", "1", logline.LevelInfo))
	s.Append(entry("/b.log", "2", logline.LevelInfo))
	s.Append(entry("/b.log", "3", logline.LevelInfo))
	if got := s.Members(); !reflect.DeepEqual(got, []string{"/a.log", "/b.log"}) {
		t.Fatalf("Members() = %v, want [/a.log /b.log]", got)
	}

	// Evicts the only /a.log entry.
	s.Append(entry("/c.log", "4", logline.LevelInfo))
	if got := s.Members(); !reflect.DeepEqual(got, []string{"/b.log", "/c.log"}) {
		t.Fatalf("Members() = %v, want [/b.log /c.log]", got)
	}

	// Evicts one of two /b.log entries; /b.log stays.
	s.Append(entry("/c.log", "5", logline.LevelInfo))
	if got := s.Members(); !reflect.DeepEqual(got, []string{"/b.log", "/c.log"}) {
		t.Fatalf("Members() = %v, want [/b.log /c.log]", got)
	}

	s.Append(entry("/c.log", "6", logline.LevelInfo))
	if got := s.Members(); !reflect.DeepEqual(got, []string{"/c.log"}) {
		t.Fatalf("Members() = %v, want [/c.log]", got)
	}
}

func TestStore_TwoSources(t *testing.T) {
	s := New(1000)
	s.Append(entry("/path/a.log", "one", logline.LevelInfo))
	s.Append(entry("/path/b.log", "two", logline.LevelError))
	s.Append(entry("/path/a.log", "three", logline.LevelInfo))

	snap := s.Snapshot()
	if len(snap.Entries) != 3 {
		t.Fatalf("len(Entries) = %d, want 3", len(snap.Entries))
	}
	if len(snap.Sources) != 2 {
		t.Fatalf("len(Sources) = %d, want 2", len(snap.Sources))
	}
	if snap.Capacity != 1000 {
		t.Fatalf("Capacity = %d, want 1000", snap.Capacity)
	}
}

func TestStore_Clear(t *testing.T) {
	s := New(10)
	s.Append(entry("/a.log", "x", logline.LevelError))
	last := s.Append(entry("/b.log", "y", logline.LevelInfo))
	before := s.Version()

	s.Clear()

	snap := s.Snapshot()
	if len(snap.Entries) != 0 || len(snap.Sources) != 0 {
		t.Fatalf("after Clear entries=%d sources=%d, want 0 and 0", len(snap.Entries), len(snap.Sources))
	}
	if snap.Version <= before {
		t.Fatalf("Version = %d, want > %d", snap.Version, before)
	}
	if st := s.Stats(); st.Buffered != 0 || len(st.Levels) != 0 {
		t.Fatalf("Stats() after Clear = %+v, want empty", st)
	}

	next := s.Append(entry("/a.log", "z", logline.LevelInfo))
	if next.Sequence <= last.Sequence {
		t.Fatalf("sequence after Clear = %d, want > %d", next.Sequence, last.Sequence)
	}
}

func TestStore_DefaultCapacity(t *testing.T) {
	for _, capacity := range []int{0, -5} {
		if got := New(capacity).Capacity(); got != DefaultCapacity {
			t.Fatalf("New(%d).Capacity() = %d, want %d", capacity, got, DefaultCapacity)
		}
	}
}

func TestStore_StructuredTokensAreCopied(t *testing.T) {
	s := New(5)
	e := entry("/a.log", `{"a":1}`, logline.LevelInfo)
	e.Structured = []render.Token{{Class: render.ClassKey, Text: `"a"`}}
	s.Append(e)
	e.Structured[0].Text = "caller"

	snap := s.Snapshot()
	if got := snap.Entries[0].Structured[0].Text; got != `"a"` {
		t.Fatalf("stored token = %q, want %q", got, `"a"`)
	}
	snap.Entries[0].Structured[0].Text = "snapshot"

	if got := s.Snapshot().Entries[0].Structured[0].Text; got != `"a"` {
		t.Fatalf("token after snapshot change = %q, want %q", got, `"a"`)
	}
	if got := s.Since(0)[0].Structured[0].Text; got != `"a"` {
		t.Fatalf("Since token = %q, want %q", got, `"a"`)
	}
}

func TestStore_SnapshotIsIndependent(t *testing.T) {
	s := New(5)
	s.Append(entry("/a.log", "original", logline.LevelInfo))

	snap := s.Snapshot()
	snap.Entries[0].RawLine = "mutated"
	snap.Sources[0] = "/mutated"

	again := s.Snapshot()
	if again.Entries[0].RawLine != "original" {
		t.Fatalf("RawLine = %q, want original", again.Entries[0].RawLine)
	}
	if again.Sources[0] != "/a.log" {
		t.Fatalf("Sources[0] = %q, want /a.log", again.Sources[0])
	}

	// Appends after a snapshot do not show up in it.
	s.Append(entry("/a.log", "later", logline.LevelInfo))
	if len(again.Entries) != 1 {
		t.Fatalf("len(snapshot) = %d, want 1", len(again.Entries))
	}
}

func TestStore_Since(t *testing.T) {
	s := New(4)
	var seqs []uint64
	for i := 0; i < 6; i++ {
		seqs = append(seqs, s.Append(entry("/a.log", fmt.Sprint(i), logline.LevelInfo)).Sequence)
	}

	got := s.Since(seqs[3])
	if len(got) != 2 || got[0].Sequence != seqs[4] || got[1].Sequence != seqs[5] {
		t.Fatalf("Since(%d) = %+v, want the last two entries", seqs[3], got)
	}
	if all := s.Since(0); len(all) != 4 {
		t.Fatalf("len(Since(0)) = %d, want 4", len(all))
	}
	if none := s.Since(seqs[5]); len(none) != 0 {
		t.Fatalf("len(Since(last)) = %d, want 0", len(none))
	}
}

func TestStore_SubscribeReceivesEvents(t *testing.T) {
	s := New(5)
	events, cancel := s.Subscribe(4)
	defer cancel()

	stored := s.Append(entry("/a.log", "hello", logline.LevelWarning))
	s.Clear()

	ev := <-events
	if ev.Kind != EventAppended || ev.Entry.Sequence != stored.Sequence {
		t.Fatalf("first event = %+v, want append of sequence %d", ev, stored.Sequence)
	}
	ev = <-events
	if ev.Kind != EventCleared {
		t.Fatalf("second event kind = %v, want clear", ev.Kind)
	}
	if ev.Version != s.Version() {
		t.Fatalf("event version = %d, want %d", ev.Version, s.Version())
	}
}

func TestStore_SlowSubscriberDropsEvents(t *testing.T) {
	s := New(10)
	_, cancel := s.Subscribe(1)
	defer cancel()

	for i := 0; i < 3; i++ {
		s.Append(entry("/a.log", "x", logline.LevelInfo))
	}
	if got := s.Stats().Dropped; got != 2 {
		t.Fatalf("Dropped = %d, want 2", got)
	}
}

func TestStore_CancelClosesChannel(t *testing.T) {
	s := New(5)
	events, cancel := s.Subscribe(1)
	cancel()
	cancel()

	if _, ok := <-events; ok {
		t.Fatal("channel still open after cancel")
	}
	// Appends after cancel must not panic on the closed channel.
	s.Append(entry("/a.log", "x", logline.LevelInfo))
}

func TestStore_StatsLevels(t *testing.T) {
	s := New(2)
	s.Append(entry("/a.log", "1", logline.LevelError))
	s.Append(entry("/a.log", "2", logline.LevelError))
	s.Append(entry("/a.log", "3", logline.LevelDebug))

	st := s.Stats()
	want := map[logline.Level]int{logline.LevelError: 1, logline.LevelDebug: 1}
	if !reflect.DeepEqual(st.Levels, want) {
		t.Fatalf("Levels = %v, want %v", st.Levels, want)
	}
	if st.Buffered != 2 || st.Capacity != 2 || st.Sources != 1 {
		t.Fatalf("Stats() = %+v, want buffered=2 capacity=2 sources=1", st)
	}
}

func TestStore_ConcurrentAppends(t *testing.T) {
	s := New(10000)
	const writers, perWriter = 8, 250

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				s.Append(entry(fmt.Sprintf("/w%d.log", w), "x", logline.LevelInfo))
				_ = s.Snapshot()
			}
		}(w)
	}
	wg.Wait()

	snap := s.Snapshot()
	if len(snap.Entries) != writers*perWriter {
		t.Fatalf("len(Entries) = %d, want %d", len(snap.Entries), writers*perWriter)
	}
	seen := make(map[uint64]bool, len(snap.Entries))
	for i, e := range snap.Entries {
		if seen[e.Sequence] {
			t.Fatalf("duplicate sequence %d", e.Sequence)
		}
		seen[e.Sequence] = true
		if i > 0 && e.Sequence <= snap.Entries[i-1].Sequence {
			t.Fatalf("sequence not increasing at %d", i)
		}
	}
	if len(snap.Sources) != writers {
		t.Fatalf("len(Sources) = %d, want %d", len(snap.Sources), writers)
	}
}

func TestStore_ConcurrentClearIsAtomic(t *testing.T) {
	s := New(100)
	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			s.Append(entry(fmt.Sprintf("/%d.log", i%3), "x", logline.LevelInfo))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			s.Clear()
		}
	}()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	for {
		snap := s.Snapshot()
		present := make(map[string]bool)
		for _, e := range snap.Entries {
			present[e.SourceID] = true
		}
		if len(present) != len(snap.Sources) {
			t.Fatalf("registry %v disagrees with entries %v", snap.Sources, present)
		}
		select {
		case <-done:
			return
		default:
		}
	}
}
