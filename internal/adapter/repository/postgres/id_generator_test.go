package postgres

import (
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
)

func TestULIDGenerator_MonotonicWithinMillisecond(t *testing.T) {
	frozen := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	g := NewULIDGenerator()
	g.now = func() time.Time { return frozen }

	prev := g.Generate()
	for i := 0; i < 100; i++ {
		next := g.Generate()
		if next <= prev {
			t.Fatalf("expected %s > %s", next, prev)
		}
		prev = next
	}

	id, err := ulid.Parse(prev)
	if err != nil {
		t.Fatalf("generated id is not a ULID: %v", err)
	}
	if got := ulid.Time(id.Time()); !got.Equal(frozen) {
		t.Fatalf("expected timestamp %v, got %v", frozen, got)
	}
}
