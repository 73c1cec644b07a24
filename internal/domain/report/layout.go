// Package report turns a snapshot and the event metadata into the structured
// layout of the printable attendance report.
//
// Build is pure: it holds no state, never fails, and equal inputs yield
// deeply equal layouts. Rendering the layout is left to the caller.
package report

import (
	"strings"
	"time"

	"github.com/okian/triagem/internal/domain/aggregate"
	"github.com/okian/triagem/internal/domain/model"
	"github.com/okian/triagem/internal/domain/taxonomy"
	"github.com/okian/triagem/internal/i18n"
)

// HymnPlaceholderRows is the number of blank hymn rows printed for handwriting
// when no hymn was recorded.
const HymnPlaceholderRows = 5

// Row is a labelled count.
type Row struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// FamilySection groups the nonzero instrument rows of one family.
type FamilySection struct {
	Family     taxonomy.Family `json:"family"`
	Label      string          `json:"label"`
	ShortLabel string          `json:"short_label"`
	Tag        string          `json:"tag"`
	RowSpan    int             `json:"row_span"`
	Rows       []Row           `json:"rows"`
	Total      int             `json:"total"`
}

// Header is the top block of the page.
type Header struct {
	Organization     string `json:"organization"`
	Title            string `json:"title"`
	Venue            string `json:"venue"`
	EventDate        string `json:"event_date"`
	PresidingElder   string `json:"presiding_elder"`
	RegionalOfficers string `json:"regional_officers"`
	ScriptureReading string `json:"scripture_reading"`
}

// MinistryTable lists servants in fixed order followed by their total.
type MinistryTable struct {
	Rows  []Row `json:"rows"`
	Total Row   `json:"total"`
}

// Attendance is the attendance summary table.
type Attendance struct {
	Cities     int   `json:"cities"`
	Organists  int   `json:"organists"`
	Musicians  int   `json:"musicians"`
	GrandTotal int   `json:"grand_total"`
	Rows       []Row `json:"rows"`
}

// DistributionRow is one family total of the distribution table.
type DistributionRow struct {
	Family taxonomy.Family `json:"family"`
	Label  string          `json:"label"`
	Tag    string          `json:"tag"`
	Count  int             `json:"count"`
}

// Footer is the bottom block of the page.
type Footer struct {
	Secretary string `json:"secretary"`
	Generated string `json:"generated"`
}

// Layout is the print-ready representation of the report.
type Layout struct {
	Header       Header            `json:"header"`
	Sections     []FamilySection   `json:"sections"`
	NoRecords    bool              `json:"no_records"`
	Placeholder  string            `json:"placeholder,omitempty"`
	Ministry     MinistryTable     `json:"ministry"`
	Hymns        []string          `json:"hymns"`
	Attendance   Attendance        `json:"attendance"`
	Distribution []DistributionRow `json:"distribution"`
	Footer       Footer            `json:"footer"`
}

// Build assembles the report layout.
func Build(s aggregate.Snapshot, meta model.EventMetadata) Layout {
	sum := aggregate.Summarize(s)

	l := Layout{
		Header:       buildHeader(meta),
		Sections:     []FamilySection{},
		Ministry:     buildMinistry(s),
		Hymns:        HymnRows(meta.HymnsRehearsed),
		Attendance:   buildAttendance(sum),
		Distribution: make([]DistributionRow, 0, len(taxonomy.Families())),
		Footer:       buildFooter(meta.Venue),
	}

	if sum.Total == 0 {
		l.NoRecords = true
		l.Placeholder = i18n.Label("report.no_records")
	} else {
		for _, f := range taxonomy.Families() {
			if sec, ok := buildSection(sum, f); ok {
				l.Sections = append(l.Sections, sec)
			}
		}
	}

	for _, f := range taxonomy.Families() {
		l.Distribution = append(l.Distribution, DistributionRow{
			Family: f,
			Label:  i18n.FamilyLabel(f),
			Tag:    f.Tag(),
			Count:  sum.Families[f],
		})
	}
	return l
}

func buildSection(sum aggregate.Summary, f taxonomy.Family) (FamilySection, bool) {
	var rows []Row
	total := 0
	for _, name := range f.Instruments() {
		if n := sum.Instruments[name]; n > 0 {
			rows = append(rows, Row{Label: name, Count: n})
			total += n
		}
	}
	if len(rows) == 0 {
		return FamilySection{}, false
	}
	return FamilySection{
		Family:     f,
		Label:      i18n.FamilyLabel(f),
		ShortLabel: i18n.FamilyShortLabel(f),
		Tag:        f.Tag(),
		RowSpan:    len(rows),
		Rows:       rows,
		Total:      total,
	}, true
}

func buildHeader(meta model.EventMetadata) Header {
	venue := strings.TrimSpace(meta.Venue)
	if venue == "" {
		venue = i18n.Label("report.venue.missing")
	}
	return Header{
		Organization:     i18n.Label("report.organization"),
		Title:            i18n.Label("report.title"),
		Venue:            venue,
		EventDate:        meta.EventDate,
		PresidingElder:   meta.PresidingElder,
		RegionalOfficers: meta.RegionalOfficers,
		ScriptureReading: meta.ScriptureReading,
	}
}

func buildMinistry(s aggregate.Snapshot) MinistryTable {
	return MinistryTable{
		Rows: []Row{
			{Label: i18n.Label("report.ministry.elders"), Count: aggregate.CountByMinistry(s, model.MinistryElder)},
			{Label: i18n.Label("report.ministry.deacons"), Count: aggregate.CountByMinistry(s, model.MinistryDeacon)},
			{Label: i18n.Label("report.ministry.ministerial"), Count: aggregate.CountByMinistry(s, model.MinistryMinisterialCooperator)},
			{Label: i18n.Label("report.ministry.youth"), Count: aggregate.CountByMinistry(s, model.MinistryYouthCooperator)},
			{Label: i18n.Label("report.ministry.local"), Count: aggregate.CountByLevel(s, model.LevelLocalSupervisor)},
			{Label: i18n.Label("report.ministry.regional"), Count: aggregate.CountByLevel(s, model.LevelRegionalSupervisor)},
			{Label: i18n.Label("report.ministry.examiners"), Count: aggregate.CountByMinistry(s, model.MinistryExaminer)},
		},
		Total: Row{Label: i18n.Label("report.total"), Count: aggregate.TotalMinistryServants(s)},
	}
}

func buildAttendance(sum aggregate.Summary) Attendance {
	a := Attendance{
		Cities:     sum.Cities,
		Organists:  sum.Organists,
		Musicians:  sum.Musicians,
		GrandTotal: sum.Organists + sum.Musicians,
	}
	a.Rows = []Row{
		{Label: i18n.Label("report.attendance.cities"), Count: a.Cities},
		{Label: i18n.Label("report.attendance.organists"), Count: a.Organists},
		{Label: i18n.Label("report.attendance.musicians"), Count: a.Musicians},
		{Label: i18n.Label("report.attendance.grand_total"), Count: a.GrandTotal},
	}
	return a
}

func buildFooter(venue string) Footer {
	parts := strings.Split(venue, "-")
	region := strings.TrimSpace(parts[len(parts)-1])
	return Footer{
		Secretary: strings.TrimSpace(i18n.Label("report.footer.secretary") + " " + region),
		Generated: i18n.Label("report.footer.generated"),
	}
}

// HymnRows splits a comma-delimited hymn list into trimmed, nonempty entries.
// When nothing remains it returns HymnPlaceholderRows blank entries.
func HymnRows(raw string) []string {
	var rows []string
	for _, h := range strings.Split(raw, ",") {
		if h = strings.TrimSpace(h); h != "" {
			rows = append(rows, h)
		}
	}
	if len(rows) == 0 {
		return make([]string, HymnPlaceholderRows)
	}
	return rows
}

// FileName returns the suggested name of the printed document, e.g.
// "Relatorio_Triagem_piracicaba___sp_19-10-2026".
func FileName(meta model.EventMetadata, at time.Time) string {
	slug := slugify(meta.Venue)
	if slug == "" {
		slug = i18n.Label("report.file_fallback")
	}
	return i18n.Label("report.file_prefix") + "_" + slug + "_" + i18n.ShortDate(at)
}

// BackupFileName returns the download name of an event backup without the
// extension, e.g. "relatorio-ensaio-2026-10-19". The date is taken in UTC.
func BackupFileName(at time.Time) string {
	return i18n.Label("export.file_prefix") + "-" + at.UTC().Format(time.DateOnly)
}

func slugify(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
