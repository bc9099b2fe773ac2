package views

import (
	"sort"

	"boxinventory/api/internal/inventory"
)

// Labels used when a categorized box is missing a vocabulary value.
const (
	LabelNoVariety   = "Nicht kategorisiert"
	LabelNoSorting   = "Ohne Sortierung"
	LabelNoFillLevel = "Ohne Füllstand"
)

// Summary partitions the pool into empty and categorized boxes and
// aggregates the categorized ones into a weighted variety → sorting →
// fill-level tree.
type Summary struct {
	EmptyBoxes int              `json:"emptyBoxes"`
	Varieties  []VarietySummary `json:"varieties"`
}

type VarietySummary struct {
	Name          string           `json:"name"`
	WeightedTotal float64          `json:"weightedTotal"`
	Sortings      []SortingSummary `json:"sortings"`
}

type SortingSummary struct {
	Name          string           `json:"name"`
	WeightedTotal float64          `json:"weightedTotal"`
	FillLevels    []FillLevelCount `json:"fillLevels"`
}

type FillLevelCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// FillLevelWeight converts a fill level into box units. Unknown or missing
// levels count as a full box.
func FillLevelWeight(fillLevel string) float64 {
	switch fillLevel {
	case "100%":
		return 1.0
	case "75%":
		return 0.75
	case "50%":
		return 0.5
	case "25%":
		return 0.25
	}
	return 1.0
}

// Summarize builds the summary tree. A box listing several varieties
// contributes its full weight to each of them; the totals are box
// equivalents per variety, not a partition of the pool.
func Summarize(s inventory.Snapshot) Summary {
	type sortingAgg struct {
		weightedTotal float64
		fillLevels    map[string]int
	}
	type varietyAgg struct {
		weightedTotal float64
		sortings      map[string]*sortingAgg
	}

	byVariety := map[string]*varietyAgg{}
	empty := 0

	for _, b := range s.Boxes {
		if b.IsEmpty() {
			empty++
			continue
		}

		varieties := b.Varieties
		if len(varieties) == 0 {
			varieties = []string{LabelNoVariety}
		}
		sorting := b.Sorting
		if sorting == "" {
			sorting = LabelNoSorting
		}
		fillLevel := b.FillLevel
		if fillLevel == "" {
			fillLevel = LabelNoFillLevel
		}
		weight := FillLevelWeight(b.FillLevel)

		for _, variety := range varieties {
			va := byVariety[variety]
			if va == nil {
				va = &varietyAgg{sortings: map[string]*sortingAgg{}}
				byVariety[variety] = va
			}
			va.weightedTotal += weight

			sa := va.sortings[sorting]
			if sa == nil {
				sa = &sortingAgg{fillLevels: map[string]int{}}
				va.sortings[sorting] = sa
			}
			sa.weightedTotal += weight
			sa.fillLevels[fillLevel]++
		}
	}

	out := Summary{EmptyBoxes: empty, Varieties: make([]VarietySummary, 0, len(byVariety))}
	for name, va := range byVariety {
		vs := VarietySummary{Name: name, WeightedTotal: va.weightedTotal}
		for sortingName, sa := range va.sortings {
			ss := SortingSummary{Name: sortingName, WeightedTotal: sa.weightedTotal}
			for fillName, count := range sa.fillLevels {
				ss.FillLevels = append(ss.FillLevels, FillLevelCount{Name: fillName, Count: count})
			}
			sortByName(ss.FillLevels, func(f FillLevelCount) string { return f.Name })
			vs.Sortings = append(vs.Sortings, ss)
		}
		sortByName(vs.Sortings, func(s SortingSummary) string { return s.Name })
		out.Varieties = append(out.Varieties, vs)
	}
	sortByName(out.Varieties, func(v VarietySummary) string { return v.Name })
	return out
}

func sortByName[T any](items []T, name func(T) string) {
	sort.SliceStable(items, func(i, j int) bool {
		return inventory.CompareValues(name(items[i]), name(items[j])) < 0
	})
}
