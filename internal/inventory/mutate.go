package inventory

import "strings"

// Vocabulary mutations cascade into every box that references the edited
// value, so a rename or delete can never leave a dangling reference.
// Duplicate-name validation happens in the service layer before these
// functions are called; they still guard defensively and treat unknown
// names as no-ops.
//
// Matching during a cascade is exact-string even though uniqueness checks
// are case-insensitive. That asymmetry is inherited behavior and covered by
// tests; do not unify it here.

// AddVariety inserts a variety and re-sorts the list.
func AddVariety(s Snapshot, name string) Snapshot {
	return addValue(s, name, func(s *Snapshot) *[]string { return &s.Varieties })
}

// RenameVariety replaces oldName with newName in the vocabulary and in every
// box referencing it, re-sorting that box's variety list.
func RenameVariety(s Snapshot, oldName, newName string) Snapshot {
	if !contains(s.Varieties, oldName) || strings.TrimSpace(newName) == "" {
		return s
	}
	out := s.Clone()
	replaceValue(out.Varieties, oldName, newName)
	sortValues(out.Varieties)
	for i, b := range out.Boxes {
		if contains(b.Varieties, oldName) {
			replaceValue(out.Boxes[i].Varieties, oldName, newName)
			sortValues(out.Boxes[i].Varieties)
		}
	}
	return out
}

// DeleteVariety removes the variety from the vocabulary and from every box's
// variety list. Boxes keep their other varieties.
func DeleteVariety(s Snapshot, name string) Snapshot {
	if !contains(s.Varieties, name) {
		return s
	}
	out := s.Clone()
	out.Varieties = removeValue(out.Varieties, name)
	for i, b := range out.Boxes {
		if contains(b.Varieties, name) {
			out.Boxes[i].Varieties = removeValue(b.Varieties, name)
			if len(out.Boxes[i].Varieties) == 0 {
				out.Boxes[i].Varieties = nil
			}
		}
	}
	return out
}

// AddSorting inserts a sorting grade and re-sorts the list.
func AddSorting(s Snapshot, name string) Snapshot {
	return addValue(s, name, func(s *Snapshot) *[]string { return &s.Sortings })
}

// RenameSorting replaces the grade in the vocabulary and reassigns it on
// every box currently sorted under oldName.
func RenameSorting(s Snapshot, oldName, newName string) Snapshot {
	if !contains(s.Sortings, oldName) || strings.TrimSpace(newName) == "" {
		return s
	}
	out := s.Clone()
	replaceValue(out.Sortings, oldName, newName)
	sortValues(out.Sortings)
	for i, b := range out.Boxes {
		if b.Sorting == oldName {
			out.Boxes[i].Sorting = newName
		}
	}
	return out
}

// DeleteSorting removes the grade and unsets it on matching boxes.
func DeleteSorting(s Snapshot, name string) Snapshot {
	if !contains(s.Sortings, name) {
		return s
	}
	out := s.Clone()
	out.Sortings = removeValue(out.Sortings, name)
	for i, b := range out.Boxes {
		if b.Sorting == name {
			out.Boxes[i].Sorting = ""
		}
	}
	return out
}

// AddFillLevel inserts a fill level and re-sorts the list.
func AddFillLevel(s Snapshot, name string) Snapshot {
	return addValue(s, name, func(s *Snapshot) *[]string { return &s.FillLevels })
}

// RenameFillLevel replaces the level in the vocabulary and on every box.
func RenameFillLevel(s Snapshot, oldName, newName string) Snapshot {
	if !contains(s.FillLevels, oldName) || strings.TrimSpace(newName) == "" {
		return s
	}
	out := s.Clone()
	replaceValue(out.FillLevels, oldName, newName)
	sortValues(out.FillLevels)
	for i, b := range out.Boxes {
		if b.FillLevel == oldName {
			out.Boxes[i].FillLevel = newName
		}
	}
	return out
}

// DeleteFillLevel removes the level and unsets it on matching boxes.
func DeleteFillLevel(s Snapshot, name string) Snapshot {
	if !contains(s.FillLevels, name) {
		return s
	}
	out := s.Clone()
	out.FillLevels = removeValue(out.FillLevels, name)
	for i, b := range out.Boxes {
		if b.FillLevel == name {
			out.Boxes[i].FillLevel = ""
		}
	}
	return out
}

// AddTrait appends a trait definition with an empty option list.
func AddTrait(s Snapshot, name string) Snapshot {
	name = strings.TrimSpace(name)
	if name == "" || s.traitIndexFold(name) >= 0 {
		return s
	}
	out := s.Clone()
	out.CustomTraits = append(out.CustomTraits, TraitDefinition{Name: name, Options: []string{}})
	sortTraits(out.CustomTraits)
	return out
}

// RenameTrait renames the definition and moves each box's value from the old
// key to the new one. Trait names are unique, so there is nothing to collide
// with at the new key.
func RenameTrait(s Snapshot, oldName, newName string) Snapshot {
	idx := s.traitIndex(oldName)
	if idx < 0 || strings.TrimSpace(newName) == "" {
		return s
	}
	out := s.Clone()
	out.CustomTraits[idx].Name = newName
	sortTraits(out.CustomTraits)
	for i, b := range out.Boxes {
		if v, ok := b.CustomTraits[oldName]; ok {
			delete(out.Boxes[i].CustomTraits, oldName)
			out.Boxes[i].CustomTraits[newName] = v
		}
	}
	return out
}

// DeleteTrait removes the definition and the corresponding key from every
// box's trait map.
func DeleteTrait(s Snapshot, name string) Snapshot {
	idx := s.traitIndex(name)
	if idx < 0 {
		return s
	}
	out := s.Clone()
	out.CustomTraits = append(out.CustomTraits[:idx], out.CustomTraits[idx+1:]...)
	for i, b := range out.Boxes {
		if _, ok := b.CustomTraits[name]; ok {
			delete(out.Boxes[i].CustomTraits, name)
			if len(out.Boxes[i].CustomTraits) == 0 {
				out.Boxes[i].CustomTraits = nil
			}
		}
	}
	return out
}

// AddTraitOption inserts an option into one trait's option list.
func AddTraitOption(s Snapshot, traitName, option string) Snapshot {
	idx := s.traitIndex(traitName)
	option = strings.TrimSpace(option)
	if idx < 0 || option == "" || containsFold(s.CustomTraits[idx].Options, option) {
		return s
	}
	out := s.Clone()
	out.CustomTraits[idx].Options = append(out.CustomTraits[idx].Options, option)
	sortValues(out.CustomTraits[idx].Options)
	return out
}

// RenameTraitOption replaces the option in the trait's list and on every box
// holding it as the selected value for that trait.
func RenameTraitOption(s Snapshot, traitName, oldOption, newOption string) Snapshot {
	idx := s.traitIndex(traitName)
	if idx < 0 || !contains(s.CustomTraits[idx].Options, oldOption) || strings.TrimSpace(newOption) == "" {
		return s
	}
	out := s.Clone()
	replaceValue(out.CustomTraits[idx].Options, oldOption, newOption)
	sortValues(out.CustomTraits[idx].Options)
	for i, b := range out.Boxes {
		if b.CustomTraits[traitName] == oldOption {
			out.Boxes[i].CustomTraits[traitName] = newOption
		}
	}
	return out
}

// DeleteTraitOption removes the option from the trait's list and unsets the
// trait on boxes that had it selected.
func DeleteTraitOption(s Snapshot, traitName, option string) Snapshot {
	idx := s.traitIndex(traitName)
	if idx < 0 || !contains(s.CustomTraits[idx].Options, option) {
		return s
	}
	out := s.Clone()
	out.CustomTraits[idx].Options = removeValue(out.CustomTraits[idx].Options, option)
	for i, b := range out.Boxes {
		if b.CustomTraits[traitName] == option {
			delete(out.Boxes[i].CustomTraits, traitName)
			if len(out.Boxes[i].CustomTraits) == 0 {
				out.Boxes[i].CustomTraits = nil
			}
		}
	}
	return out
}

// SaveBox merges the patch into the box with the given id. Fields overwrite;
// custom traits merge key by key.
func SaveBox(s Snapshot, id int, patch BoxPatch) Snapshot {
	out := s.Clone()
	for i, b := range out.Boxes {
		if b.ID == id {
			out.Boxes[i] = applyPatch(b, patch)
		}
	}
	return out
}

// ClearBox resets the box to identity only.
func ClearBox(s Snapshot, id int) Snapshot {
	out := s.Clone()
	for i, b := range out.Boxes {
		if b.ID == id {
			out.Boxes[i] = Box{ID: id}
		}
	}
	return out
}

// BulkApply merges the patch into every box whose id is in ids. Custom-trait
// keys already present on a box survive unless the patch overrides them.
func BulkApply(s Snapshot, ids []int, patch BoxPatch) Snapshot {
	targets := idSet(ids)
	out := s.Clone()
	for i, b := range out.Boxes {
		if targets[b.ID] {
			out.Boxes[i] = applyPatch(b, patch)
		}
	}
	return out
}

// BulkClear resets every box in ids to identity only.
func BulkClear(s Snapshot, ids []int) Snapshot {
	targets := idSet(ids)
	out := s.Clone()
	for i, b := range out.Boxes {
		if targets[b.ID] {
			out.Boxes[i] = Box{ID: b.ID}
		}
	}
	return out
}

// applyPatch follows the bulk-edit contract: only fields carrying a value are
// applied, an empty value means "leave alone".
func applyPatch(b Box, patch BoxPatch) Box {
	if len(patch.Varieties) > 0 {
		b.Varieties = append([]string(nil), patch.Varieties...)
	}
	if patch.Sorting != nil && *patch.Sorting != "" {
		b.Sorting = *patch.Sorting
	}
	if patch.Date != nil && *patch.Date != "" {
		b.Date = *patch.Date
	}
	if patch.FillLevel != nil && *patch.FillLevel != "" {
		b.FillLevel = *patch.FillLevel
	}
	for k, v := range patch.CustomTraits {
		if v == "" {
			continue
		}
		if b.CustomTraits == nil {
			b.CustomTraits = map[string]string{}
		}
		b.CustomTraits[k] = v
	}
	return b
}

func addValue(s Snapshot, name string, field func(*Snapshot) *[]string) Snapshot {
	name = strings.TrimSpace(name)
	if name == "" || containsFold(*field(&s), name) {
		return s
	}
	out := s.Clone()
	list := field(&out)
	*list = append(*list, name)
	sortValues(*list)
	return out
}

func replaceValue(values []string, oldName, newName string) {
	for i, v := range values {
		if v == oldName {
			values[i] = newName
		}
	}
}

func removeValue(values []string, name string) []string {
	out := values[:0]
	for _, v := range values {
		if v != name {
			out = append(out, v)
		}
	}
	return out
}

func idSet(ids []int) map[int]bool {
	set := make(map[int]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func (s Snapshot) traitIndex(name string) int {
	for i, t := range s.CustomTraits {
		if t.Name == name {
			return i
		}
	}
	return -1
}

func (s Snapshot) traitIndexFold(name string) int {
	for i, t := range s.CustomTraits {
		if strings.EqualFold(t.Name, name) {
			return i
		}
	}
	return -1
}
