package normalize

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Display sorting uses Russian collation so Cyrillic names order the way the
// front desk expects. It runs at the presentation boundary, never inside the
// merge, so merge order stays observable in tests.

// SortEmployeesByName sorts in place, stable, by display name.
func SortEmployeesByName(list []*Employee) {
	c := collate.New(language.Russian)
	sort.SliceStable(list, func(i, j int) bool {
		return c.CompareString(list[i].FullName, list[j].FullName) < 0
	})
}

// SortPatientsByName sorts in place, stable, by FIO.
func SortPatientsByName(list []*Patient) {
	c := collate.New(language.Russian)
	sort.SliceStable(list, func(i, j int) bool {
		return c.CompareString(list[i].FIO, list[j].FIO) < 0
	})
}
