package views

import (
	"time"

	"boxinventory/api/internal/inventory"
)

// Status classifies a box by the age of its stored date.
type Status string

const (
	StatusDefault Status = "default" // no date recorded
	StatusUpdated Status = "updated" // dated within the threshold
	StatusStale   Status = "stale"   // older than the threshold
)

// StaleDaysThreshold is the calendar-day age after which a box counts as
// stale.
const StaleDaysThreshold = 30

// BoxStatus classifies the box relative to today. Day counts are computed on
// calendar dates with the time of day zeroed, rounding partial days up.
func BoxStatus(b inventory.Box, today time.Time) Status {
	if b.Date == "" {
		return StatusDefault
	}
	stored, err := time.ParseInLocation("2006-01-02", b.Date, today.Location())
	if err != nil {
		return StatusDefault
	}
	midnight := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	days := int((midnight.Sub(stored).Hours() + 23) / 24)
	if days > StaleDaysThreshold {
		return StatusStale
	}
	return StatusUpdated
}

// Display colors for the starter varieties, grouped by hue the way the
// packing crew reads the dashboard.
var varietyColors = map[string]string{
	"Princess": "#fdd835",
	"Allians":  "#fbc02d",
	"Ditta":    "#f9a825",
	"Gunda":    "#f57f17",
	"Antonia":  "#9ccc65",
	"Otolia":   "#7cb342",
	"Laura":    "#ef5350",
	"Quarta":   "#d32f2f",
	"Hermes":   "#42a5f5",
}

// Theme tokens the client resolves; status colors win over variety colors.
const (
	colorDefault = "var(--box-default)"
	colorStale   = "var(--box-stale)"
	colorUpdated = "var(--box-updated)"
)

// BoxColor picks the display color for a box: status colors first, then the
// first variety's assigned color, then the generic updated color.
func BoxColor(b inventory.Box, today time.Time) string {
	switch BoxStatus(b, today) {
	case StatusDefault:
		return colorDefault
	case StatusStale:
		return colorStale
	}
	if len(b.Varieties) > 0 {
		if c, ok := varietyColors[b.Varieties[0]]; ok {
			return c
		}
	}
	return colorUpdated
}
