// Package views computes read-only projections of a snapshot: the filtered
// box list, per-box status and display color, and the weighted summary tree.
// Everything here is a pure function of its inputs.
package views

import (
	"strconv"
	"strings"

	"boxinventory/api/internal/inventory"
)

// Criteria are the dashboard filters. Empty fields are inactive; active
// fields are combined with AND.
type Criteria struct {
	Search    string `json:"search"`
	Variety   string `json:"variety"`
	Sorting   string `json:"sorting"`
	FillLevel string `json:"fillLevel"`
}

// Filter returns the boxes matching all active criteria, in id order.
func Filter(s inventory.Snapshot, c Criteria) []inventory.Box {
	out := make([]inventory.Box, 0, len(s.Boxes))
	for _, b := range s.Boxes {
		if c.Search != "" && !strings.Contains(strconv.Itoa(b.ID), c.Search) {
			continue
		}
		if c.Variety != "" && !hasVariety(b, c.Variety) {
			continue
		}
		if c.Sorting != "" && b.Sorting != c.Sorting {
			continue
		}
		if c.FillLevel != "" && b.FillLevel != c.FillLevel {
			continue
		}
		out = append(out, b)
	}
	return out
}

func hasVariety(b inventory.Box, name string) bool {
	for _, v := range b.Varieties {
		if v == name {
			return true
		}
	}
	return false
}
