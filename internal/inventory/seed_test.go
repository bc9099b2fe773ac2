package inventory

import "testing"

func TestDefaultSnapshot(t *testing.T) {
	s := DefaultSnapshot()

	if len(s.Boxes) != TotalBoxes {
		t.Fatalf("expected %d boxes, got %d", TotalBoxes, len(s.Boxes))
	}
	for i, b := range s.Boxes {
		if b.ID != i+1 {
			t.Fatalf("box %d has id %d", i, b.ID)
		}
		if !b.IsEmpty() {
			t.Errorf("seed box %d is not empty: %+v", b.ID, b)
		}
	}
	if len(s.Varieties) != 9 {
		t.Errorf("expected 9 starter varieties, got %v", s.Varieties)
	}
	if len(s.CustomTraits) != 0 || s.CustomTraits == nil {
		t.Errorf("expected empty non-nil trait list, got %v", s.CustomTraits)
	}
	for i := 1; i < len(s.Sortings); i++ {
		if CompareValues(s.Sortings[i-1], s.Sortings[i]) > 0 {
			t.Errorf("sortings not in display order: %v", s.Sortings)
		}
	}
}
