package trafficlog

import (
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	l := New(100)
	if l.Cap() != 100 {
		t.Errorf("expected capacity 100, got %d", l.Cap())
	}
	if l.Count() != 0 {
		t.Errorf("expected count 0, got %d", l.Count())
	}

	// Zero and negative capacities fall back to the default
	if l := New(0); l.Cap() != DefaultCapacity {
		t.Errorf("expected default capacity %d, got %d", DefaultCapacity, l.Cap())
	}
	if l := New(-5); l.Cap() != DefaultCapacity {
		t.Errorf("expected default capacity %d, got %d", DefaultCapacity, l.Cap())
	}
}

func TestLogAppendsInOrder(t *testing.T) {
	l := New(10)

	l.Log("message", "a", "", "one")
	l.Log("join_room", "b", "general", nil)
	l.Log("broadcast", "c", "", "three")

	entries := l.All()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Event != "message" || entries[2].Event != "broadcast" {
		t.Errorf("expected oldest-first ordering, got %s..%s", entries[0].Event, entries[2].Event)
	}
	if entries[1].FromSid != "b" || entries[1].ToRoom != "general" {
		t.Errorf("unexpected entry fields: %+v", entries[1])
	}
}

func TestLogReturnsCreatedEntry(t *testing.T) {
	l := New(10)

	entry := l.Log("message", "a", "", "hi")
	if entry == nil {
		t.Fatal("expected created entry")
	}
	if entry.Timestamp.IsZero() {
		t.Error("expected timestamp to be set")
	}

	stored := l.All()
	if stored[0].Timestamp != entry.Timestamp {
		t.Error("returned entry must share the stored timestamp")
	}
}

func TestEvictionAtCapacity(t *testing.T) {
	l := New(3)

	for i := 0; i < 5; i++ {
		l.Log("message", fmt.Sprintf("sid-%d", i), "", nil)
	}

	if l.Count() != 3 {
		t.Fatalf("expected count capped at 3, got %d", l.Count())
	}
	entries := l.All()
	for i, want := range []string{"sid-2", "sid-3", "sid-4"} {
		if entries[i].FromSid != want {
			t.Errorf("entry %d: expected %s, got %s", i, want, entries[i].FromSid)
		}
	}
}

func TestClearIsIdempotent(t *testing.T) {
	l := New(5)
	l.Log("message", "a", "", nil)
	l.Log("message", "b", "", nil)

	l.Clear()
	if l.Count() != 0 {
		t.Errorf("expected count 0 after clear, got %d", l.Count())
	}
	if len(l.All()) != 0 {
		t.Errorf("expected empty All() after clear, got %d entries", len(l.All()))
	}

	l.Clear()
	if l.Count() != 0 {
		t.Errorf("expected clear to be idempotent, got count %d", l.Count())
	}

	// The log keeps working after a clear
	l.Log("message", "c", "", nil)
	if l.Count() != 1 {
		t.Errorf("expected count 1 after post-clear append, got %d", l.Count())
	}
}

func TestAllReturnsCopy(t *testing.T) {
	l := New(5)
	l.Log("message", "a", "", nil)

	snapshot := l.All()
	l.Log("message", "b", "", nil)

	if len(snapshot) != 1 {
		t.Errorf("snapshot must not reflect later appends, got %d entries", len(snapshot))
	}
}
