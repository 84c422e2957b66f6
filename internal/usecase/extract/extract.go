// Package extract projects named fields out of solution documents, for
// tabular listings such as `sepsolve runs show --field`.
package extract

import (
	"fmt"
	"sort"
	"strings"

	"github.com/forestbook1/sep-solver-sub001/internal/domain"
	"github.com/forestbook1/sep-solver-sub001/internal/usecase/assert"
)

// ParseRules reads "name=$.expr" pairs. A bare expression (anything
// starting with "$") is named after itself.
func ParseRules(pairs []string) (domain.FieldRules, error) {
	rules := domain.FieldRules{}
	for _, p := range pairs {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		name, expr, ok := strings.Cut(p, "=")
		if !ok || strings.HasPrefix(p, "$") {
			name, expr = p, p
		}
		name, expr = strings.TrimSpace(name), strings.TrimSpace(expr)
		if name == "" || expr == "" {
			return nil, fmt.Errorf("invalid field %q (want name=$.path)", p)
		}
		rules[name] = expr
	}
	return rules, nil
}

// Apply evaluates every rule against doc. A failing rule is reported in the
// results and the other rules still run.
func Apply(doc map[string]any, rules domain.FieldRules) (map[string]string, []domain.FieldResult) {
	if len(rules) == 0 {
		return map[string]string{}, []domain.FieldResult{}
	}

	keys := make([]string, 0, len(rules))
	for k := range rules {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := map[string]string{}
	results := make([]domain.FieldResult, 0, len(keys))

	for _, name := range keys {
		expr := strings.TrimSpace(rules[name])

		val, err := assert.Query(expr, doc)
		if err != nil {
			results = append(results, domain.FieldResult{
				Name:    name,
				Message: fmt.Sprintf("field %q (%s): %v", name, expr, err),
			})
			continue
		}
		if assert.IsEmpty(val) {
			results = append(results, domain.FieldResult{
				Name:    name,
				Message: fmt.Sprintf("field %q (%s): no value found", name, expr),
			})
			continue
		}

		s, err := assert.ToString(val)
		if err != nil {
			results = append(results, domain.FieldResult{
				Name:    name,
				Message: fmt.Sprintf("field %q (%s): cannot convert value to string: %v", name, expr, err),
			})
			continue
		}

		fields[name] = s
		results = append(results, domain.FieldResult{
			Name:    name,
			Success: true,
			Message: fmt.Sprintf("extracted %q", name),
		})
	}

	return fields, results
}
