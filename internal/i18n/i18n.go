// Package i18n holds the display labels of the fixed pt-BR locale.
//
// Domain values carry stable identifiers; every human-readable string shown
// on the kiosk or the printed report is looked up here by key.
package i18n

import (
	"fmt"
	"sort"
	"time"

	"github.com/okian/triagem/internal/domain/model"
	"github.com/okian/triagem/internal/domain/taxonomy"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Locale is the only locale the service renders.
var Locale = language.BrazilianPortuguese

// catalog maps message keys to pt-BR text.
var catalog = map[string]string{
	"role.musician": "Músico (Irmão)",
	"role.organist": "Organista (Irmã)",

	"ministry.none":                   "Selecione",
	"ministry.elder":                  "Ancião",
	"ministry.deacon":                 "Diácono",
	"ministry.ministerial_cooperator": "Coop. do Ofício Ministerial",
	"ministry.youth_cooperator":       "Coop. de Jovens e Menores",
	"ministry.examiner":               "Examinadora",
	"ministry.instructor":             "Instrutora",
	"ministry.organist":               "Organista",

	"level.regional_supervisor": "Encarregado Regional",
	"level.local_supervisor":    "Encarregado Local",
	"level.instructor":          "Instrutor",
	"level.musician":            "Músico",

	"family.strings":         "Cordas",
	"family.woodwinds":       "Madeiras",
	"family.brass":           "Metais",
	"family.other":           "Outros",
	"family.other.short":     "Out.",
	"family.strings.short":   "Cordas",
	"family.woodwinds.short": "Madeiras",
	"family.brass.short":     "Metais",

	"report.title":                  "Ensaio Regional",
	"report.organization":           "Congregação Cristã no Brasil",
	"report.venue.missing":          "Local não informado",
	"report.presiding_elder":        "Ancião",
	"report.regional_officers":      "Encarregado Regional",
	"report.scripture_reading":      "Palavra",
	"report.instruments":            "Instrumentos",
	"report.quantity":               "Qtd.",
	"report.no_records":             "Nenhum registro",
	"report.ministry":               "Ministério",
	"report.ministry.elders":        "Anciães",
	"report.ministry.deacons":       "Diáconos",
	"report.ministry.ministerial":   "Coop. do Ofício Ministerial",
	"report.ministry.youth":         "Coop. de Jovens e Menores",
	"report.ministry.local":         "Encarregados Locais",
	"report.ministry.regional":      "Encarregados Regionais",
	"report.ministry.examiners":     "Examinadoras",
	"report.total":                  "Total",
	"report.hymns":                  "Hinos Ensaiados",
	"report.attendance":             "Comparecimento",
	"report.attendance.cities":      "Localidades",
	"report.attendance.organists":   "Organistas",
	"report.attendance.musicians":   "Músicos",
	"report.attendance.grand_total": "Total Geral",
	"report.distribution":           "Distribuição",
	"report.footer.secretary":       "Secretaria Musical - Regional",
	"report.footer.generated":       "Gerado via Sistema de Triagem Musical",
	"report.file_prefix":            "Relatorio_Triagem",
	"report.file_fallback":          "Ensaio",
	"export.file_prefix":            "relatorio-ensaio",

	"reflection.fallback.empty": "Desejamos a todos um excelente ensaio e louvor!",
	"reflection.fallback.error": "Que a música deste evento traga paz e harmonia a todos os corações.",

	"ui.title":      "Triagem Musical",
	"ui.subtitle":   "CCB - Regional",
	"ui.registered": "Inscrito com sucesso!",
}

var weekdays = [...]string{"domingo", "segunda-feira", "terça-feira", "quarta-feira", "quinta-feira", "sexta-feira", "sábado"}

var months = [...]string{"janeiro", "fevereiro", "março", "abril", "maio", "junho", "julho", "agosto", "setembro", "outubro", "novembro", "dezembro"}

var printer = register()

func register() *message.Printer {
	keys := make([]string, 0, len(catalog))
	for k := range catalog {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := message.SetString(Locale, k, catalog[k]); err != nil {
			panic(fmt.Sprintf("i18n: register %q: %v", k, err))
		}
	}
	return message.NewPrinter(Locale)
}

// Label returns the pt-BR text of key, or the key itself when it is unknown.
func Label(key string) string {
	return printer.Sprintf(key)
}

// RoleLabel returns the display text of a role.
func RoleLabel(r model.Role) string { return Label("role." + string(r)) }

// MinistryLabel returns the display text of a ministry.
func MinistryLabel(m model.Ministry) string { return Label("ministry." + string(m)) }

// LevelLabel returns the display text of a level.
func LevelLabel(l model.Level) string { return Label("level." + string(l)) }

// FamilyLabel returns the display text of an instrument family.
func FamilyLabel(f taxonomy.Family) string { return Label("family." + string(f)) }

// FamilyShortLabel returns the abbreviated family text used in narrow report cells.
func FamilyShortLabel(f taxonomy.Family) string { return Label("family." + string(f) + ".short") }

// LongDate formats t like "segunda-feira, 19 de outubro de 2026 às 14:30".
func LongDate(t time.Time) string {
	return fmt.Sprintf("%s, %d de %s de %d às %02d:%02d",
		weekdays[t.Weekday()], t.Day(), months[t.Month()-1], t.Year(), t.Hour(), t.Minute())
}

// ShortDate formats t as dd-mm-yyyy.
func ShortDate(t time.Time) string {
	return t.Format("02-01-2006")
}
