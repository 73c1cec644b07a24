// Package aggregate counts attendees over a snapshot.
//
// Every function is pure and total: the snapshot is read, never mutated, and
// identical inputs always produce identical results.
package aggregate

import (
	"slices"

	"github.com/okian/triagem/internal/domain/model"
	"github.com/okian/triagem/internal/domain/taxonomy"
)

// Snapshot is a point-in-time view of the attendee collection.
type Snapshot []model.Attendee

// CountByInstrument counts attendees whose instrument equals name exactly.
func CountByInstrument(s Snapshot, name string) int {
	n := 0
	for i := range s {
		if s[i].Instrument == name {
			n++
		}
	}
	return n
}

// CountByFamily sums CountByInstrument over the family's instrument list.
// Instruments outside the taxonomy contribute to no family.
func CountByFamily(s Snapshot, family taxonomy.Family) int {
	n := 0
	for _, name := range family.Instruments() {
		n += CountByInstrument(s, name)
	}
	return n
}

// CountByMinistry counts attendees holding ministry.
func CountByMinistry(s Snapshot, ministry model.Ministry) int {
	n := 0
	for i := range s {
		if s[i].Ministry == ministry {
			n++
		}
	}
	return n
}

// CountByLevel counts attendees at level, regardless of role.
func CountByLevel(s Snapshot, level model.Level) int {
	n := 0
	for i := range s {
		if s[i].Level == level {
			n++
		}
	}
	return n
}

// CountByRole counts attendees with role.
func CountByRole(s Snapshot, role model.Role) int {
	n := 0
	for i := range s {
		if s[i].Role == role {
			n++
		}
	}
	return n
}

// UniqueCityCount returns the number of distinct city values. Comparison is
// exact: "Piracicaba" and "piracicaba" are two cities.
func UniqueCityCount(s Snapshot) int {
	seen := make(map[string]struct{}, len(s))
	for i := range s {
		seen[s[i].City] = struct{}{}
	}
	return len(seen)
}

// Cities returns the distinct city values in ascending order.
func Cities(s Snapshot) []string {
	seen := make(map[string]struct{}, len(s))
	out := make([]string, 0, len(s))
	for i := range s {
		if _, ok := seen[s[i].City]; ok {
			continue
		}
		seen[s[i].City] = struct{}{}
		out = append(out, s[i].City)
	}
	slices.Sort(out)
	return out
}

// TotalMinistryServants adds attendees holding a ministry other than the
// unset and organist values to attendees at a supervisor level. An attendee
// matching both predicates is counted twice.
func TotalMinistryServants(s Snapshot) int {
	byMinistry, bySupervision := 0, 0
	for i := range s {
		if servesMinistry(s[i].Ministry) {
			byMinistry++
		}
		if s[i].Level.Supervisor() {
			bySupervision++
		}
	}
	return byMinistry + bySupervision
}

// Uncategorized counts attendees whose instrument is outside the taxonomy.
func Uncategorized(s Snapshot) int {
	n := 0
	for i := range s {
		if !taxonomy.Known(s[i].Instrument) {
			n++
		}
	}
	return n
}

func servesMinistry(m model.Ministry) bool {
	return m != model.MinistryNone && m != model.MinistryOrganist
}
