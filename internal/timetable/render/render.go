package render

import (
	"embed"
	"encoding/json"
	"fmt"
	htmltemplate "html/template"
	"io"
	"os"
	"path/filepath"
	"strings"
	texttemplate "text/template"
	"time"

	perr "github.com/transit-daytable/internal/common/errors"
)

const (
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
	FormatLaTeX    = "latex"
	FormatJSON     = "json"
)

//go:embed templates/*.tmpl
var defaults embed.FS

var defaultTemplates = map[string]string{
	FormatHTML:     "templates/timetable.html.tmpl",
	FormatMarkdown: "templates/timetable.md.tmpl",
	FormatLaTeX:    "templates/timetable.tex.tmpl",
}

// executor is satisfied by both html/template and text/template
type executor interface {
	Execute(w io.Writer, data any) error
}

type Renderer struct {
	format     string
	tmpl       executor
	jsonIndent int
}

// New prepares a renderer for format. templateFile, when set, replaces the embedded
// default template; it is ignored for json.
func New(format, templateFile string, jsonIndent int) (*Renderer, error) {
	const op = "render.New"

	r := &Renderer{format: format, jsonIndent: jsonIndent}
	if format == FormatJSON {
		return r, nil
	}

	name, ok := defaultTemplates[format]
	if !ok {
		return nil, perr.Newf(perr.KindConfig, op, "unknown output format %q", format)
	}

	var (
		src []byte
		err error
	)
	if templateFile != "" {
		name = templateFile
		src, err = os.ReadFile(templateFile)
	} else {
		src, err = defaults.ReadFile(name)
	}
	if err != nil {
		return nil, perr.Wrap(err, perr.KindConfig, op, "reading template")
	}

	base := filepath.Base(name)
	if format == FormatHTML {
		r.tmpl, err = htmltemplate.New(base).Funcs(htmltemplate.FuncMap(funcs())).Parse(string(src))
	} else {
		r.tmpl, err = texttemplate.New(base).Funcs(texttemplate.FuncMap(funcs())).Parse(string(src))
	}
	if err != nil {
		return nil, perr.Wrap(err, perr.KindConfig, op, "parsing template "+name)
	}
	return r, nil
}

// Render writes doc to w
func (r *Renderer) Render(w io.Writer, doc Document) error {
	const op = "render.Render"

	if r.format == FormatJSON {
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		if r.jsonIndent > 0 {
			enc.SetIndent("", strings.Repeat(" ", r.jsonIndent))
		}
		if err := enc.Encode(doc); err != nil {
			return perr.Wrap(err, perr.KindUnknown, op, "encoding json")
		}
		return nil
	}

	if err := r.tmpl.Execute(w, doc); err != nil {
		return perr.Wrap(err, perr.KindUnknown, op, "executing template")
	}
	return nil
}

func funcs() map[string]any {
	return map[string]any{
		"hhmm":     hhmm,
		"duration": duration,
		"join":     strings.Join,
		"latex":    escapeLaTeX,
		"nextDay":  nextDay,
	}
}

func hhmm(t time.Time) string {
	return t.Format("15:04")
}

// duration formats d as h:mm
func duration(d time.Duration) string {
	d = d.Round(time.Minute)
	return fmt.Sprintf("%d:%02d", int(d.Hours()), int(d.Minutes())%60)
}

// nextDay reports whether t falls on a later calendar day than ref, both in t's zone
func nextDay(ref, t time.Time) bool {
	ref = ref.In(t.Location())
	y1, m1, d1 := ref.Date()
	y2, m2, d2 := t.Date()
	return y2 > y1 || (y2 == y1 && (m2 > m1 || (m2 == m1 && d2 > d1)))
}

var latexReplacer = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`&`, `\&`,
	`%`, `\%`,
	`$`, `\$`,
	`#`, `\#`,
	`_`, `\_`,
	`{`, `\{`,
	`}`, `\}`,
	`~`, `\textasciitilde{}`,
	`^`, `\textasciicircum{}`,
)

func escapeLaTeX(s string) string {
	return latexReplacer.Replace(s)
}
