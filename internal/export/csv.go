// Package export renders the snapshot as a CSV inventory list and
// optionally archives it to S3-compatible object storage.
package export

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"boxinventory/api/internal/inventory"
)

// utf8BOM makes Excel detect the encoding when the file is opened directly.
const utf8BOM = "\uFEFF"

var baseHeader = []string{"Kistennummer", "Datum", "Sorte(n)", "Sortierung", "Füllstand"}

// WriteCSV writes one row per box in id order. Custom-trait columns follow
// the fixed columns in trait-name order. Cells containing a comma, quote, or
// newline are quoted with internal quotes doubled.
func WriteCSV(w io.Writer, s inventory.Snapshot) error {
	traitNames := make([]string, 0, len(s.CustomTraits))
	for _, t := range s.CustomTraits {
		traitNames = append(traitNames, t.Name)
	}
	sort.Slice(traitNames, func(i, j int) bool {
		return inventory.CompareValues(traitNames[i], traitNames[j]) < 0
	})

	lines := make([]string, 0, len(s.Boxes)+1)
	lines = append(lines, strings.Join(append(append([]string{}, baseHeader...), traitNames...), ","))

	for _, b := range s.Boxes {
		cells := []string{
			strconv.Itoa(b.ID),
			escapeCell(b.Date),
			escapeCell(strings.Join(b.Varieties, "; ")),
			escapeCell(b.Sorting),
			escapeCell(b.FillLevel),
		}
		for _, name := range traitNames {
			cells = append(cells, escapeCell(b.CustomTraits[name]))
		}
		lines = append(lines, strings.Join(cells, ","))
	}

	if _, err := io.WriteString(w, utf8BOM+strings.Join(lines, "\n")); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

func escapeCell(cell string) string {
	if strings.ContainsAny(cell, ",\"\n") {
		return `"` + strings.ReplaceAll(cell, `"`, `""`) + `"`
	}
	return cell
}

// Filename returns the dated download name for an export.
func Filename(today time.Time) string {
	return "Kartoffelkisten_Bestand_" + today.Format("2006-01-02") + ".csv"
}
