package aggregate

import (
	"github.com/okian/triagem/internal/domain/model"
	"github.com/okian/triagem/internal/domain/taxonomy"
)

// Summary holds every dashboard count computed in a single pass.
type Summary struct {
	Total         int                     `json:"total"`
	Musicians     int                     `json:"musicians"`
	Organists     int                     `json:"organists"`
	Cities        int                     `json:"cities"`
	Servants      int                     `json:"servants"`
	Uncategorized int                     `json:"uncategorized"`
	Families      map[taxonomy.Family]int `json:"families"`
	Instruments   map[string]int          `json:"instruments"`
	Ministries    map[model.Ministry]int  `json:"ministries"`
	Levels        map[model.Level]int     `json:"levels"`
}

// Summarize computes the dashboard counts. Its results agree with the
// individual counting functions of this package.
func Summarize(s Snapshot) Summary {
	sum := Summary{
		Total:       len(s),
		Families:    make(map[taxonomy.Family]int, len(taxonomy.Families())),
		Instruments: make(map[string]int),
		Ministries:  make(map[model.Ministry]int, len(model.Ministries)),
		Levels:      make(map[model.Level]int, len(model.Levels)),
	}
	for _, f := range taxonomy.Families() {
		sum.Families[f] = 0
	}
	cities := make(map[string]struct{}, len(s))

	for i := range s {
		a := &s[i]
		switch a.Role {
		case model.RoleMusician:
			sum.Musicians++
		case model.RoleOrganist:
			sum.Organists++
		}
		cities[a.City] = struct{}{}
		sum.Instruments[a.Instrument]++
		sum.Ministries[a.Ministry]++
		sum.Levels[a.Level]++

		if f, ok := taxonomy.FamilyOf(a.Instrument); ok {
			sum.Families[f]++
		} else {
			sum.Uncategorized++
		}
		if servesMinistry(a.Ministry) {
			sum.Servants++
		}
		if a.Level.Supervisor() {
			sum.Servants++
		}
	}
	sum.Cities = len(cities)
	return sum
}
