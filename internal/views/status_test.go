package views

import (
	"testing"
	"time"

	"boxinventory/api/internal/inventory"
)

var testToday = time.Date(2024, 6, 15, 14, 30, 0, 0, time.UTC)

func dated(daysAgo int) inventory.Box {
	return inventory.Box{ID: 1, Date: testToday.AddDate(0, 0, -daysAgo).Format("2006-01-02")}
}

func TestBoxStatus(t *testing.T) {
	cases := []struct {
		name string
		box  inventory.Box
		want Status
	}{
		{"no date", inventory.Box{ID: 1}, StatusDefault},
		{"today", dated(0), StatusUpdated},
		{"exactly at threshold", dated(30), StatusUpdated},
		{"one day past threshold", dated(31), StatusStale},
		{"far past threshold", dated(365), StatusStale},
		{"unparseable date", inventory.Box{ID: 1, Date: "kaputt"}, StatusDefault},
	}
	for _, tc := range cases {
		if got := BoxStatus(tc.box, testToday); got != tc.want {
			t.Errorf("%s: expected %s, got %s", tc.name, tc.want, got)
		}
	}
}

func TestBoxColor(t *testing.T) {
	noDate := inventory.Box{ID: 1, Varieties: []string{"Laura"}}
	if got := BoxColor(noDate, testToday); got != colorDefault {
		t.Errorf("status color should win for undated box, got %q", got)
	}

	stale := dated(90)
	stale.Varieties = []string{"Laura"}
	if got := BoxColor(stale, testToday); got != colorStale {
		t.Errorf("status color should win for stale box, got %q", got)
	}

	updated := dated(5)
	updated.Varieties = []string{"Laura", "Ditta"}
	if got := BoxColor(updated, testToday); got != varietyColors["Laura"] {
		t.Errorf("expected first variety color, got %q", got)
	}

	unknown := dated(5)
	unknown.Varieties = []string{"Linda"}
	if got := BoxColor(unknown, testToday); got != colorUpdated {
		t.Errorf("expected generic updated color, got %q", got)
	}
}
