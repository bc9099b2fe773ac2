package inventory

import (
	"reflect"
	"testing"
)

func testSnapshot() Snapshot {
	return Snapshot{
		Boxes: []Box{
			{ID: 1, Varieties: []string{"Laura"}, Sorting: "<35", Date: "2024-05-01", FillLevel: "50%"},
			{ID: 2, Varieties: []string{"Laura", "Ditta"}, Sorting: "35-65", FillLevel: "100%",
				CustomTraits: map[string]string{"Lager": "Halle 1"}},
			{ID: 3},
		},
		Varieties:  []string{"Ditta", "Laura"},
		Sortings:   []string{"35-65", "<35"},
		FillLevels: []string{"100%", "50%"},
		CustomTraits: []TraitDefinition{
			{Name: "Lager", Options: []string{"Halle 1", "Halle 2"}},
		},
	}
}

func TestAddVarietySortsAndRejectsDuplicates(t *testing.T) {
	s := testSnapshot()
	out := AddVariety(s, "Antonia")
	want := []string{"Antonia", "Ditta", "Laura"}
	if !reflect.DeepEqual(out.Varieties, want) {
		t.Fatalf("expected %v, got %v", want, out.Varieties)
	}

	// Case-insensitive duplicate is a no-op.
	out = AddVariety(out, "laura")
	if !reflect.DeepEqual(out.Varieties, want) {
		t.Errorf("duplicate add changed list: %v", out.Varieties)
	}
	out = AddVariety(out, "   ")
	if !reflect.DeepEqual(out.Varieties, want) {
		t.Errorf("blank add changed list: %v", out.Varieties)
	}
}

func TestRenameVarietyCascades(t *testing.T) {
	s := testSnapshot()
	out := RenameVariety(s, "Laura", "Belana")

	if !reflect.DeepEqual(out.Varieties, []string{"Belana", "Ditta"}) {
		t.Errorf("vocabulary not renamed: %v", out.Varieties)
	}
	if !reflect.DeepEqual(out.Boxes[0].Varieties, []string{"Belana"}) {
		t.Errorf("box 1 not renamed: %v", out.Boxes[0].Varieties)
	}
	if !reflect.DeepEqual(out.Boxes[1].Varieties, []string{"Belana", "Ditta"}) {
		t.Errorf("box 2 not renamed and re-sorted: %v", out.Boxes[1].Varieties)
	}
	for _, b := range out.Boxes {
		if contains(b.Varieties, "Laura") {
			t.Errorf("box %d still references old name", b.ID)
		}
	}
	// Input snapshot untouched.
	if !reflect.DeepEqual(s.Boxes[0].Varieties, []string{"Laura"}) {
		t.Errorf("input snapshot mutated: %v", s.Boxes[0].Varieties)
	}
}

func TestRenameEqualsDeleteThenAddWithSubstitution(t *testing.T) {
	s := testSnapshot()
	renamed := RenameVariety(s, "Laura", "Belana")

	composed := AddVariety(DeleteVariety(s, "Laura"), "Belana")
	for i := range composed.Boxes {
		if contains(s.Boxes[i].Varieties, "Laura") {
			composed.Boxes[i].Varieties = append(composed.Boxes[i].Varieties, "Belana")
			sortValues(composed.Boxes[i].Varieties)
		}
	}
	if !reflect.DeepEqual(renamed, composed) {
		t.Errorf("rename != delete+add+substitute:\n%+v\n%+v", renamed, composed)
	}
}

func TestRenameVarietyCascadeIsCaseSensitive(t *testing.T) {
	// Uniqueness checks fold case, cascade matching does not. A box holding a
	// differently-cased entry is deliberately left alone.
	s := testSnapshot()
	s.Boxes[2].Varieties = []string{"laura"}
	out := RenameVariety(s, "Laura", "Belana")
	if !reflect.DeepEqual(out.Boxes[2].Varieties, []string{"laura"}) {
		t.Errorf("cascade matched case-insensitively: %v", out.Boxes[2].Varieties)
	}
}

func TestDeleteVarietyLeavesOtherEntries(t *testing.T) {
	s := testSnapshot()
	out := DeleteVariety(s, "Laura")

	if contains(out.Varieties, "Laura") {
		t.Errorf("vocabulary still lists deleted value: %v", out.Varieties)
	}
	if out.Boxes[0].Varieties != nil {
		t.Errorf("box 1 should be varietyless, got %v", out.Boxes[0].Varieties)
	}
	if !reflect.DeepEqual(out.Boxes[1].Varieties, []string{"Ditta"}) {
		t.Errorf("box 2 lost unrelated entry: %v", out.Boxes[1].Varieties)
	}
	if out.Boxes[0].Sorting != "<35" {
		t.Errorf("unrelated field changed: %q", out.Boxes[0].Sorting)
	}
}

func TestDeleteUnknownValueIsNoOp(t *testing.T) {
	s := testSnapshot()
	if out := DeleteVariety(s, "Nope"); !reflect.DeepEqual(out, s) {
		t.Errorf("delete of unknown variety changed snapshot")
	}
	if out := RenameSorting(s, "Nope", "Other"); !reflect.DeepEqual(out, s) {
		t.Errorf("rename of unknown sorting changed snapshot")
	}
	if out := DeleteTraitOption(s, "Lager", "Nope"); !reflect.DeepEqual(out, s) {
		t.Errorf("delete of unknown option changed snapshot")
	}
}

func TestRenameSortingReassignsBoxes(t *testing.T) {
	s := testSnapshot()
	out := RenameSorting(s, "<35", "Drillinge")
	if !contains(out.Sortings, "Drillinge") || contains(out.Sortings, "<35") {
		t.Errorf("vocabulary wrong after rename: %v", out.Sortings)
	}
	if out.Boxes[0].Sorting != "Drillinge" {
		t.Errorf("box 1 sorting not reassigned: %q", out.Boxes[0].Sorting)
	}
	if out.Boxes[1].Sorting != "35-65" {
		t.Errorf("box 2 sorting changed: %q", out.Boxes[1].Sorting)
	}
}

func TestDeleteSortingUnsetsField(t *testing.T) {
	out := DeleteSorting(testSnapshot(), "<35")
	if out.Boxes[0].Sorting != "" {
		t.Errorf("box 1 sorting not unset: %q", out.Boxes[0].Sorting)
	}
}

func TestDeleteFillLevelUnsetsField(t *testing.T) {
	out := DeleteFillLevel(testSnapshot(), "50%")
	if out.Boxes[0].FillLevel != "" {
		t.Errorf("box 1 fill level not unset: %q", out.Boxes[0].FillLevel)
	}
	if out.Boxes[1].FillLevel != "100%" {
		t.Errorf("box 2 fill level changed: %q", out.Boxes[1].FillLevel)
	}
}

func TestTraitLifecycle(t *testing.T) {
	s := testSnapshot()

	s = AddTrait(s, "Qualität")
	if s.traitIndex("Qualität") < 0 {
		t.Fatalf("trait not added: %+v", s.CustomTraits)
	}
	// Definitions sorted by name: Lager < Qualität.
	if s.CustomTraits[0].Name != "Lager" || s.CustomTraits[1].Name != "Qualität" {
		t.Errorf("definitions not sorted: %+v", s.CustomTraits)
	}
	if out := AddTrait(s, "lager"); !reflect.DeepEqual(out, s) {
		t.Errorf("case-insensitive duplicate trait added")
	}

	s = AddTraitOption(s, "Qualität", "B-Ware")
	s = AddTraitOption(s, "Qualität", "A-Ware")
	if !reflect.DeepEqual(s.CustomTraits[1].Options, []string{"A-Ware", "B-Ware"}) {
		t.Fatalf("options not sorted: %v", s.CustomTraits[1].Options)
	}

	s = SaveBox(s, 3, BoxPatch{CustomTraits: map[string]string{"Qualität": "A-Ware"}})

	renamed := RenameTrait(s, "Qualität", "Güte")
	if renamed.traitIndex("Qualität") >= 0 || renamed.traitIndex("Güte") < 0 {
		t.Errorf("trait definition not renamed: %+v", renamed.CustomTraits)
	}
	if got := renamed.Boxes[2].CustomTraits["Güte"]; got != "A-Ware" {
		t.Errorf("box value not moved to new key: %+v", renamed.Boxes[2].CustomTraits)
	}
	if _, ok := renamed.Boxes[2].CustomTraits["Qualität"]; ok {
		t.Errorf("box still holds old key: %+v", renamed.Boxes[2].CustomTraits)
	}

	deleted := DeleteTrait(s, "Qualität")
	if deleted.traitIndex("Qualität") >= 0 {
		t.Errorf("trait definition not deleted")
	}
	if deleted.Boxes[2].CustomTraits != nil {
		t.Errorf("box trait key not removed: %+v", deleted.Boxes[2].CustomTraits)
	}
}

func TestRenameTraitOptionCascades(t *testing.T) {
	s := testSnapshot()
	out := RenameTraitOption(s, "Lager", "Halle 1", "Halle West")
	if !contains(out.CustomTraits[0].Options, "Halle West") {
		t.Errorf("option list not renamed: %v", out.CustomTraits[0].Options)
	}
	if got := out.Boxes[1].CustomTraits["Lager"]; got != "Halle West" {
		t.Errorf("box value not renamed: %q", got)
	}
}

func TestDeleteTraitOptionUnsetsBoxValue(t *testing.T) {
	s := testSnapshot()
	out := DeleteTraitOption(s, "Lager", "Halle 1")
	if contains(out.CustomTraits[0].Options, "Halle 1") {
		t.Errorf("option still listed: %v", out.CustomTraits[0].Options)
	}
	if out.Boxes[1].CustomTraits != nil {
		t.Errorf("box value not unset: %+v", out.Boxes[1].CustomTraits)
	}
}

func TestSaveBoxMergesFields(t *testing.T) {
	s := testSnapshot()
	sorting := ">65"
	out := SaveBox(s, 1, BoxPatch{
		Sorting:      &sorting,
		CustomTraits: map[string]string{"Lager": "Halle 2"},
	})

	b := out.Boxes[0]
	if b.Sorting != ">65" {
		t.Errorf("sorting not applied: %q", b.Sorting)
	}
	if !reflect.DeepEqual(b.Varieties, []string{"Laura"}) {
		t.Errorf("untouched field changed: %v", b.Varieties)
	}
	if b.Date != "2024-05-01" || b.FillLevel != "50%" {
		t.Errorf("untouched fields changed: %+v", b)
	}
	if b.CustomTraits["Lager"] != "Halle 2" {
		t.Errorf("trait not merged: %+v", b.CustomTraits)
	}
}

func TestSaveBoxEmptyValuesAreNoOps(t *testing.T) {
	s := testSnapshot()
	empty := ""
	out := SaveBox(s, 1, BoxPatch{Sorting: &empty, CustomTraits: map[string]string{"Lager": ""}})
	if !reflect.DeepEqual(out, s) {
		t.Errorf("empty patch values were applied")
	}
}

func TestClearBoxResetsToIdentity(t *testing.T) {
	out := ClearBox(testSnapshot(), 2)
	if !reflect.DeepEqual(out.Boxes[1], Box{ID: 2}) {
		t.Errorf("box not reset: %+v", out.Boxes[1])
	}
	if out.Boxes[0].IsEmpty() {
		t.Errorf("other box affected: %+v", out.Boxes[0])
	}
}

func TestBulkApplyPreservesExistingTraits(t *testing.T) {
	s := testSnapshot()
	out := BulkApply(s, []int{2, 3}, BoxPatch{CustomTraits: map[string]string{"Qualität": "A-Ware"}})

	if got := out.Boxes[1].CustomTraits; got["Lager"] != "Halle 1" || got["Qualität"] != "A-Ware" {
		t.Errorf("existing trait lost on box 2: %+v", got)
	}
	if got := out.Boxes[2].CustomTraits; got["Qualität"] != "A-Ware" {
		t.Errorf("trait not applied on box 3: %+v", got)
	}
	if out.Boxes[0].CustomTraits != nil {
		t.Errorf("box outside selection changed: %+v", out.Boxes[0])
	}
}

func TestBulkClear(t *testing.T) {
	out := BulkClear(testSnapshot(), []int{1, 2})
	for _, i := range []int{0, 1} {
		if !reflect.DeepEqual(out.Boxes[i], Box{ID: i + 1}) {
			t.Errorf("box %d not cleared: %+v", i+1, out.Boxes[i])
		}
	}
}

func TestCloneIsDeep(t *testing.T) {
	s := testSnapshot()
	c := s.Clone()
	c.Boxes[1].CustomTraits["Lager"] = "changed"
	c.Boxes[0].Varieties[0] = "changed"
	c.CustomTraits[0].Options[0] = "changed"
	if s.Boxes[1].CustomTraits["Lager"] != "Halle 1" ||
		s.Boxes[0].Varieties[0] != "Laura" ||
		s.CustomTraits[0].Options[0] != "Halle 1" {
		t.Errorf("clone shares memory with its source")
	}
}
