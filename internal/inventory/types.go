// Package inventory holds the application snapshot and the pure mutation
// functions that operate on it. Every mutation takes a snapshot and returns a
// new one; callers never see shared mutable state.
package inventory

// Box is one storage container in the fixed pool. Only the ID is mandatory;
// everything else is annotation.
type Box struct {
	ID           int               `json:"id"`
	Varieties    []string          `json:"varieties,omitempty"`
	Sorting      string            `json:"sorting,omitempty"`
	Date         string            `json:"date,omitempty"` // YYYY-MM-DD
	FillLevel    string            `json:"fillLevel,omitempty"`
	CustomTraits map[string]string `json:"customTraits,omitempty"`
}

// IsEmpty reports whether the box carries no inventory information. A box
// with only a fill level or custom traits still counts as empty.
func (b Box) IsEmpty() bool {
	return len(b.Varieties) == 0 && b.Sorting == "" && b.Date == ""
}

// TraitDefinition is a user-defined attribute with a controlled option list.
type TraitDefinition struct {
	Name    string   `json:"name"`
	Options []string `json:"options"`
}

// Snapshot is the complete application state: the box pool plus all
// controlled vocabularies. It is persisted and synchronized as one unit.
type Snapshot struct {
	Boxes        []Box             `json:"boxes"`
	Varieties    []string          `json:"varieties"`
	Sortings     []string          `json:"sortings"`
	FillLevels   []string          `json:"fillLevels"`
	CustomTraits []TraitDefinition `json:"customTraits"`
}

// Clone returns a deep copy. Mutation functions clone first so the input
// snapshot is never touched.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Boxes:        make([]Box, len(s.Boxes)),
		Varieties:    append([]string(nil), s.Varieties...),
		Sortings:     append([]string(nil), s.Sortings...),
		FillLevels:   append([]string(nil), s.FillLevels...),
		CustomTraits: make([]TraitDefinition, len(s.CustomTraits)),
	}
	for i, b := range s.Boxes {
		out.Boxes[i] = b.clone()
	}
	for i, t := range s.CustomTraits {
		out.CustomTraits[i] = TraitDefinition{
			Name:    t.Name,
			Options: append([]string(nil), t.Options...),
		}
	}
	return out
}

func (b Box) clone() Box {
	out := b
	out.Varieties = append([]string(nil), b.Varieties...)
	if b.CustomTraits != nil {
		out.CustomTraits = make(map[string]string, len(b.CustomTraits))
		for k, v := range b.CustomTraits {
			out.CustomTraits[k] = v
		}
	}
	return out
}

// BoxPatch carries the fields of a save or bulk-edit submission. Nil pointers
// and empty values mean "leave the field alone"; only set, non-empty values
// are applied.
type BoxPatch struct {
	Varieties    []string          `json:"varieties,omitempty"`
	Sorting      *string           `json:"sorting,omitempty"`
	Date         *string           `json:"date,omitempty"`
	FillLevel    *string           `json:"fillLevel,omitempty"`
	CustomTraits map[string]string `json:"customTraits,omitempty"`
}
