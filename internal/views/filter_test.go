package views

import (
	"testing"

	"boxinventory/api/internal/inventory"
)

func filterSnapshot() inventory.Snapshot {
	return inventory.Snapshot{
		Boxes: []inventory.Box{
			{ID: 4, Varieties: []string{"Laura"}, Sorting: "<35", FillLevel: "50%"},
			{ID: 14, Varieties: []string{"Ditta"}, Sorting: "<35"},
			{ID: 40, Varieties: []string{"Laura", "Ditta"}, Sorting: "35-65", FillLevel: "100%"},
			{ID: 41},
		},
	}
}

func ids(boxes []inventory.Box) []int {
	out := make([]int, len(boxes))
	for i, b := range boxes {
		out[i] = b.ID
	}
	return out
}

func equalIDs(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestFilterNoCriteriaReturnsAll(t *testing.T) {
	got := ids(Filter(filterSnapshot(), Criteria{}))
	if !equalIDs(got, []int{4, 14, 40, 41}) {
		t.Errorf("expected all boxes in id order, got %v", got)
	}
}

func TestFilterSearchMatchesIDSubstring(t *testing.T) {
	got := ids(Filter(filterSnapshot(), Criteria{Search: "4"}))
	if !equalIDs(got, []int{4, 14, 40, 41}) {
		t.Errorf("substring search wrong: %v", got)
	}
	got = ids(Filter(filterSnapshot(), Criteria{Search: "40"}))
	if !equalIDs(got, []int{40}) {
		t.Errorf("substring search wrong: %v", got)
	}
}

func TestFilterConjunction(t *testing.T) {
	got := ids(Filter(filterSnapshot(), Criteria{Variety: "Laura", Sorting: "<35"}))
	if !equalIDs(got, []int{4}) {
		t.Errorf("conjunction wrong: %v", got)
	}
	got = ids(Filter(filterSnapshot(), Criteria{Variety: "Ditta"}))
	if !equalIDs(got, []int{14, 40}) {
		t.Errorf("variety filter wrong: %v", got)
	}
	got = ids(Filter(filterSnapshot(), Criteria{FillLevel: "100%"}))
	if !equalIDs(got, []int{40}) {
		t.Errorf("fill level filter wrong: %v", got)
	}
}
