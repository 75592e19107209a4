// package templates provides the pluggable template capability used for
// title rendering: compile a source string once, render it repeatedly
// against a set of named bindings.
package templates

import (
	"fmt"
	"math"
	"strings"
	"text/template"

	"github.com/Valiice/SpotifyHonorific/internal/shared"
)

// Template is a compiled template ready for repeated rendering.
type Template interface {
	Render(bindings map[string]any) (string, error)
}

// Engine compiles template source text into a [Template].
type Engine interface {
	Compile(source string) (Template, error)
}

// GoEngine implements [Engine] on top of text/template. Rendered templates
// see the bindings as top-level names, e.g. {{.Activity.Name}} or
// {{.Context.SecsElapsed}}.
type GoEngine struct{}

func NewEngine() *GoEngine {
	return &GoEngine{}
}

func (GoEngine) Compile(source string) (Template, error) {
	t, err := template.New("tmpl").Funcs(builtins).Option("missingkey=error").Parse(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrTemplateParse, err)
	}
	return &goTemplate{t: t}, nil
}

type goTemplate struct {
	t *template.Template
}

func (g *goTemplate) Render(bindings map[string]any) (string, error) {
	var buf strings.Builder
	if err := g.t.Execute(&buf, bindings); err != nil {
		return "", fmt.Errorf("failed to render template: %w", err)
	}
	return buf.String(), nil
}

// builtins are the helper functions available to template expressions.
//
//   - truncate: rune-safe prefix of a string
//   - phase: whole seconds into a repeating cycle, for time-varying titles
//   - mod: floating point remainder
var builtins = template.FuncMap{
	"truncate": truncate,
	"phase":    phase,
	"mod":      fmod,
}

func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func phase(x any, period int) (int, error) {
	if period <= 0 {
		return 0, fmt.Errorf("phase: period must be positive, got %d", period)
	}
	f, err := toFloat(x)
	if err != nil {
		return 0, err
	}
	return int(math.Mod(f, float64(period))), nil
}

func fmod(x any, m float64) (float64, error) {
	f, err := toFloat(x)
	if err != nil {
		return 0, err
	}
	return math.Mod(f, m), nil
}

func toFloat(x any) (float64, error) {
	switch v := x.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("cannot use %T as a number", x)
	}
}
