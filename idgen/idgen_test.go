package idgen

import (
	"strings"
	"testing"
)

func TestUUIDv7(t *testing.T) {
	gen := UUIDv7()
	seen := make(map[string]bool)
	var prev string
	for i := 0; i < 100; i++ {
		id := gen()
		if len(id) != 36 {
			t.Fatalf("id = %q, want uuid shape", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
		// v7 IDs are time-prefixed, so they never sort before a predecessor.
		if prev != "" && id < prev {
			t.Errorf("ids not monotonic: %q < %q", id, prev)
		}
		prev = id
	}
}

func TestNanoID(t *testing.T) {
	gen := NanoID(12)
	id := gen()
	if len(id) != 12 {
		t.Fatalf("len = %d, want 12", len(id))
	}
	for _, r := range id {
		if !strings.ContainsRune("0123456789abcdefghijklmnopqrstuvwxyz", r) {
			t.Errorf("unexpected rune %q in %q", r, id)
		}
	}
	if gen() == gen() {
		t.Error("consecutive ids collided")
	}
}

func TestPrefixed(t *testing.T) {
	gen := Prefixed("doc_", func() string { return "x" })
	if got := gen(); got != "doc_x" {
		t.Errorf("got %q", got)
	}
}
