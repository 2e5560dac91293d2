// Package report renders diagnose results as coloured text or JSON
package report

import (
	"embed"
	"fmt"
	"io"
	"path/filepath"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/ethpandaops/previewdiag/pkg/diagnose"
	"github.com/ethpandaops/previewdiag/pkg/preview"
	"github.com/logrusorgru/aurora"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// TemplateEngine renders reports with Sprig functions plus colour helpers
type TemplateEngine struct {
	tmpl *template.Template
}

// NewTemplateEngine parses the report templates. When color is false the
// colour helpers return their argument unchanged.
func NewTemplateEngine(color bool) (*TemplateEngine, error) {
	funcMap := sprig.TxtFuncMap()
	for name, fn := range colorFuncs(aurora.NewAurora(color)) {
		funcMap[name] = fn
	}

	tmpl, err := template.New("previewdiag").Funcs(funcMap).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}

	return &TemplateEngine{tmpl: tmpl}, nil
}

// Report writes the full diagnose report
func (t *TemplateEngine) Report(w io.Writer, report *diagnose.Report) error {
	return t.execute(w, "report", report)
}

// Resolution writes the outcome of resolving a single model
func (t *TemplateEngine) Resolution(w io.Writer, result *preview.Result) error {
	return t.execute(w, "resolution", result)
}

// Trace writes a per-candidate trace
func (t *TemplateEngine) Trace(w io.Writer, trace *diagnose.TraceReport) error {
	return t.execute(w, "trace", trace)
}

func (t *TemplateEngine) execute(w io.Writer, name string, data any) error {
	if err := t.tmpl.ExecuteTemplate(w, name, data); err != nil {
		return fmt.Errorf("failed to execute template %s: %w", name, err)
	}

	return nil
}

func colorFuncs(au aurora.Aurora) template.FuncMap {
	return template.FuncMap{
		"good":  func(v any) string { return au.Green(v).String() },
		"warn":  func(v any) string { return au.Yellow(v).String() },
		"bad":   func(v any) string { return au.Red(v).String() },
		"faint": func(v any) string { return au.Faint(v).String() },
		"bold":  func(v any) string { return au.Bold(v).String() },
		"verdict": func(v preview.Verdict) string {
			switch v {
			case preview.VerdictFound:
				return au.Green(v).String()
			case preview.VerdictDisagreement:
				return au.Red(v).String()
			default:
				return au.Yellow(v).String()
			}
		},
		"yesno": func(b bool) string {
			if b {
				return "yes"
			}
			return "no"
		},
		"basename": filepath.Base,
	}
}
