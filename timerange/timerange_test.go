// Copyright (c) 2025 BVK Chaitanya

package timerange

import (
	"errors"
	"os"
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	// Wednesday
	now := time.Date(2026, 3, 11, 15, 30, 0, 0, time.UTC)

	testcases := []struct {
		name       string
		begin, end time.Time
	}{
		{"all", time.Time{}, time.Time{}},
		{"", time.Time{}, time.Time{}},
		{"today", time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC), time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC)},
		{"yesterday", time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)},
		{"this-week", time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC), time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"this-month", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)},
		{"6h", time.Date(2026, 3, 11, 9, 30, 0, 0, time.UTC), time.Time{}},
	}
	for _, tc := range testcases {
		r, err := Parse(tc.name, now)
		if err != nil {
			t.Fatalf("%q: %v", tc.name, err)
		}
		if !r.Begin.Equal(tc.begin) || !r.End.Equal(tc.end) {
			t.Errorf("%q: want [%v, %v), got %s", tc.name, tc.begin, tc.end, r)
		}
	}

	for _, bad := range []string{"forever", "-1h", "0s"} {
		if _, err := Parse(bad, now); !errors.Is(err, os.ErrInvalid) {
			t.Errorf("%q: want os.ErrInvalid, got %v", bad, err)
		}
	}
}

func TestFilter(t *testing.T) {
	base := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)
	var times []time.Time
	for i := 0; i < 5; i++ {
		times = append(times, base.Add(time.Duration(i)*time.Hour))
	}
	identity := func(v time.Time) time.Time { return v }

	r := &Range{Begin: base.Add(time.Hour), End: base.Add(3 * time.Hour)}
	got := Filter(r, times, identity)
	if len(got) != 2 || !got[0].Equal(times[1]) || !got[1].Equal(times[2]) {
		t.Fatalf("want hours 1 and 2, got %v", got)
	}
	if got := Filter(&Range{}, times, identity); len(got) != 5 {
		t.Fatalf("want all items for a zero range, got %d", len(got))
	}
	if got := Filter(nil, times, identity); len(got) != 5 {
		t.Fatalf("want all items for a nil range, got %d", len(got))
	}
}
