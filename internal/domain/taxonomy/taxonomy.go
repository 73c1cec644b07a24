// Package taxonomy defines the closed instrument taxonomy used for report sections.
//
// Every instrument name belongs to exactly one family. Names outside the
// taxonomy are a lookup miss, never an error: they are reported as
// uncategorized.
package taxonomy

import "fmt"

// Family is one of the four fixed instrument groupings.
type Family string

// Families, in canonical report order.
const (
	Strings   Family = "strings"
	Woodwinds Family = "woodwinds"
	Brass     Family = "brass"
	Other     Family = "other"
)

// Families returns the four families in canonical order.
func Families() []Family {
	return []Family{Strings, Woodwinds, Brass, Other}
}

// tags are the color-coding classes of the printed report.
var tags = map[Family]string{
	Strings:   "cordas",
	Woodwinds: "madeiras",
	Brass:     "metais",
	Other:     "outros",
}

var members = map[Family][]string{
	Strings: {"Violino", "Viola", "Violoncelo"},
	Woodwinds: {
		"Flauta", "Oboé", "Corne inglês", "Fagote",
		"Clarinete", "Clarinete Alto", "Clarinete Baixo",
		"Sax Sopranino", "Sax Soprano", "Sax Alto", "Sax Tenor", "Sax Barítono", "Sax Baixo",
	},
	Brass: {
		"Cornet", "Trompete", "Flugelhorn", "Trompa", "Melofone",
		"Trombonito", "Trombone", "Eufônio", "Barítono", "Tuba",
	},
	Other: {"Acordeon"},
}

// familyOf maps each instrument name to its family; built once at init.
var familyOf = buildIndex()

func buildIndex() map[string]Family {
	idx := make(map[string]Family)
	for _, f := range Families() {
		for _, name := range members[f] {
			if prev, dup := idx[name]; dup {
				panic(fmt.Sprintf("taxonomy: %q listed in both %s and %s", name, prev, f))
			}
			idx[name] = f
		}
	}
	return idx
}

// Tag returns the color-coding tag of f.
func (f Family) Tag() string {
	return tags[f]
}

// Instruments returns the instrument names of f in taxonomy order.
func (f Family) Instruments() []string {
	src := members[f]
	out := make([]string, len(src))
	copy(out, src)
	return out
}

// FamilyOf returns the family of an instrument name. The lookup is exact and
// case-sensitive; ok is false for names outside the taxonomy.
func FamilyOf(instrument string) (Family, bool) {
	f, ok := familyOf[instrument]
	return f, ok
}

// Known reports whether instrument belongs to the taxonomy.
func Known(instrument string) bool {
	_, ok := familyOf[instrument]
	return ok
}

// Instruments returns every instrument name, families in canonical order.
func Instruments() []string {
	out := make([]string, 0, len(familyOf))
	for _, f := range Families() {
		out = append(out, members[f]...)
	}
	return out
}
