package web

import (
	"embed"
	"html/template"
	"io/fs"
	"sync"
)

//go:embed *.html
var pages embed.FS

//go:embed app.css
var static embed.FS

var (
	tmpl *template.Template
	once sync.Once
)

// Templates returns the parsed HTML templates for the UI, embedded at build time.
// layout.html includes one page template (overview.html, campaigns.html,
// influencers.html, content.html, financials.html) chosen by PageTemplate.
func Templates() *template.Template {
	once.Do(func() {
		tmpl = template.Must(template.New("").Funcs(Funcs()).ParseFS(pages, "*.html"))
	})
	return tmpl
}

// StaticFS exposes embedded static assets such as CSS. Templates are not
// part of it.
func StaticFS() fs.FS {
	return static
}
