// README: Tests for shared value objects.
package types

import (
	"testing"
	"time"
)

func TestNewIDFormat(t *testing.T) {
	seen := map[ID]bool{}
	for i := 0; i < 100; i++ {
		id := NewID()
		if len(id) != 32 {
			t.Fatalf("id %q has length %d, want 32", id, len(id))
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}

func TestParseDay(t *testing.T) {
	d, err := ParseDay("2026-03-10")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if d != Day("2026-03-10") {
		t.Fatalf("day = %q", d)
	}
	for _, bad := range []string{"", "10/03/2026", "2026-3-10", "2026-03-10T00:00:00Z"} {
		if _, err := ParseDay(bad); err == nil {
			t.Errorf("ParseDay(%q) should fail", bad)
		}
	}
}

func TestDayOfRoundTrip(t *testing.T) {
	at := time.Date(2026, 3, 10, 23, 59, 0, 0, time.UTC)
	d := DayOf(at)
	if d != Day("2026-03-10") {
		t.Fatalf("day = %q", d)
	}
	if got := d.Time(); got.Year() != 2026 || got.Month() != 3 || got.Day() != 10 {
		t.Fatalf("round trip = %v", got)
	}
}
