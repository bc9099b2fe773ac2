package inventory

// TotalBoxes is the size of the fixed box pool. Boxes are never created or
// destroyed after the seed; ids run from 1 to TotalBoxes.
const TotalBoxes = 150

// DefaultSnapshot builds the canonical empty state: identity-only boxes and
// the starter vocabularies. It is written to the remote store exactly once,
// when no document exists yet.
func DefaultSnapshot() Snapshot {
	boxes := make([]Box, TotalBoxes)
	for i := range boxes {
		boxes[i] = Box{ID: i + 1}
	}
	s := Snapshot{
		Boxes:        boxes,
		Varieties:    []string{"Allians", "Antonia", "Ditta", "Gunda", "Hermes", "Laura", "Otolia", "Princess", "Quarta"},
		Sortings:     []string{"<35", "35-65", ">65", "Feldfallend", "Futterkartoffeln", "Pflanzgut"},
		FillLevels:   []string{"100%", "75%", "50%", "25%"},
		CustomTraits: []TraitDefinition{},
	}
	sortValues(s.Sortings)
	return s
}
