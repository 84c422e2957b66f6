// Package template renders the {{VAR}} placeholders used by scaffolded
// project files.
package template

import (
	"sort"
	"strings"

	"github.com/forestbook1/sep-solver-sub001/internal/domain"
)

// RenderString replaces {{VAR}} placeholders with vars values. A placeholder
// may carry a fallback, {{VAR|fallback}}, used when VAR is not in vars.
// Missing variables without a fallback and malformed placeholders are errors.
func RenderString(input string, vars map[string]string) (string, error) {
	if input == "" {
		return "", nil
	}

	var out strings.Builder
	rest := input
	for {
		start := strings.Index(rest, "{{")
		if start == -1 {
			out.WriteString(rest)
			return out.String(), nil
		}

		out.WriteString(rest[:start])
		rest = rest[start+2:]

		end := strings.Index(rest, "}}")
		if end == -1 {
			return "", domain.NewError("template.render", domain.KindInvalidConfig, "",
				"unclosed template expression")
		}

		key, fallback, hasFallback := strings.Cut(rest[:end], "|")
		key = strings.TrimSpace(key)
		if key == "" {
			return "", domain.NewError("template.render", domain.KindInvalidConfig, "",
				"empty template expression")
		}

		value, ok := vars[key]
		if !ok && hasFallback {
			value, ok = strings.TrimSpace(fallback), true
		}
		if !ok {
			return "", domain.NewError("template.render", domain.KindNotFound, key,
				"missing variable %q (have: %s)", key, strings.Join(names(vars), ", "))
		}

		out.WriteString(value)
		rest = rest[end+2:]
	}
}

func names(vars map[string]string) []string {
	out := make([]string, 0, len(vars))
	for k := range vars {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
