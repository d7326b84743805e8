package template

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aymerick/raymond"
)

// The render pipeline uses Handlebars semantics, matching the syntax the
// per-client template files are written in: {{path.to.field}} scalars,
// {{#if field}} blocks, {{#each items}} iteration. Unknown paths render as
// empty string; unterminated blocks fail at parse time.
//
// Helpers are pure functions of a single value and are registered once per
// process (raymond panics on re-registration).
func init() {
	raymond.RegisterHelper("currency", func(value interface{}) string {
		f, ok := toFloat(value)
		if !ok {
			return ""
		}
		return formatBRL(f)
	})

	raymond.RegisterHelper("date", func(value interface{}) string {
		t, ok := toTime(value)
		if !ok {
			return ""
		}
		return formatDate(t)
	})
}

// Renderer compiles template bodies into executable templates.
type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

// CompiledTemplate is an immutable parsed template. Rendering never mutates
// it, so one compiled instance is shared across concurrent renders.
type CompiledTemplate struct {
	tpl *raymond.Template
}

// Compile parses a template body. Structural errors (e.g. an unterminated
// block) surface here with the offending construct in the message.
func (r *Renderer) Compile(body string) (*CompiledTemplate, error) {
	tpl, err := raymond.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("template parse failed: %w", err)
	}
	return &CompiledTemplate{tpl: tpl}, nil
}

// Render substitutes the context into the template. The context is read,
// never written.
func (t *CompiledTemplate) Render(ctx *RenderContext) (string, error) {
	out, err := t.tpl.Exec(ctx.Map())
	if err != nil {
		return "", fmt.Errorf("template render failed: %w", err)
	}
	return out, nil
}

// formatBRL renders a value as Brazilian Real: R$ 1.234,56.
func formatBRL(value float64) string {
	neg := value < 0
	if neg {
		value = -value
	}

	raw := strconv.FormatFloat(value, 'f', 2, 64)
	parts := strings.SplitN(raw, ".", 2)
	intPart, decPart := parts[0], parts[1]

	var grouped strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteRune(digit)
	}

	out := "R$ " + grouped.String() + "," + decPart
	if neg {
		out = "-" + out
	}
	return out
}

// formatDate renders a locale-appropriate short date (dd/mm/yyyy).
func formatDate(t time.Time) string {
	return t.Format("02/01/2006")
}

func toFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", "."), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func toTime(value interface{}) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, true
	case *time.Time:
		if v == nil {
			return time.Time{}, false
		}
		return *v, true
	case string:
		for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, v); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}
