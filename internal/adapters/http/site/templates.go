package site

import (
	"embed"
	"html/template"

	"github.com/okian/triagem/internal/domain/model"
	"github.com/okian/triagem/internal/i18n"
)

//go:embed templates/*.html
var templatesFS embed.FS

var funcs = template.FuncMap{
	"label":     i18n.Label,
	"roleLabel": func(r model.Role) string { return i18n.RoleLabel(r) },
}

var pages = template.Must(template.New("layout.html").Funcs(funcs).ParseFS(templatesFS, "templates/*.html"))
