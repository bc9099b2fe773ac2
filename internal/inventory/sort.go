package inventory

import (
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Vocabulary ordering is locale-aware (the UI shows German labels like
// "Füllstand" and "Überfällig"). The collator is not safe for concurrent
// use, hence the mutex.
var (
	collatorMu sync.Mutex
	collator   = collate.New(language.German)
)

func sortValues(values []string) {
	collatorMu.Lock()
	defer collatorMu.Unlock()
	collator.SortStrings(values)
}

func sortTraits(traits []TraitDefinition) {
	collatorMu.Lock()
	defer collatorMu.Unlock()
	sort.SliceStable(traits, func(i, j int) bool {
		return collator.CompareString(traits[i].Name, traits[j].Name) < 0
	})
}

// CompareValues reports the collation order of a and b. Exposed for derived
// views that present vocabulary values in display order.
func CompareValues(a, b string) int {
	collatorMu.Lock()
	defer collatorMu.Unlock()
	return collator.CompareString(a, b)
}

// containsFold reports case-insensitive membership. Uniqueness checks at
// add/rename time are case-insensitive; cascade matching is exact.
func containsFold(values []string, name string) bool {
	for _, v := range values {
		if strings.EqualFold(v, name) {
			return true
		}
	}
	return false
}

func contains(values []string, name string) bool {
	for _, v := range values {
		if v == name {
			return true
		}
	}
	return false
}
