// Package schema validates design object documents against a list of
// JSONPath rules.
package schema

import (
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/forestbook1/sep-solver-sub001/internal/domain"
	"github.com/forestbook1/sep-solver-sub001/internal/ports"
	"github.com/forestbook1/sep-solver-sub001/internal/usecase/assert"
)

type compiledRule struct {
	domain.SchemaRule
	pattern *regexp.Regexp
	multi   bool
}

type Validator struct {
	rules []compiledRule
	log   *slog.Logger
}

var _ ports.SchemaValidator = (*Validator)(nil)

type Option func(*Validator)

func WithLogger(l *slog.Logger) Option {
	return func(v *Validator) {
		if l != nil {
			v.log = l
		}
	}
}

// DefaultRules describe the shape every design object document has.
func DefaultRules() []domain.SchemaRule {
	return []domain.SchemaRule{
		{Path: "$.id", Required: true, Type: "string"},
		{Path: "$.structure.components", Required: true, Type: "array"},
		{Path: "$.structure.components[*].id", Type: "string"},
		{Path: "$.structure.components[*].type", Type: "string"},
		{Path: "$.structure.relationships[*].source_id", Type: "string"},
		{Path: "$.structure.relationships[*].target_id", Type: "string"},
		{Path: "$.variables", Required: true, Type: "object"},
	}
}

// New compiles rules. A malformed rule is an invalid_config error naming
// its index.
func New(rules []domain.SchemaRule, opts ...Option) (*Validator, error) {
	v := &Validator{log: slog.New(slog.NewJSONHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(v)
	}

	for i, r := range rules {
		path := fmt.Sprintf("schema[%d]", i)
		if strings.TrimSpace(r.Path) == "" || !strings.HasPrefix(strings.TrimSpace(r.Path), "$") {
			return nil, domain.NewError("schema.compile", domain.KindInvalidConfig, path, "path must be a JSONPath starting with $")
		}
		if r.Type != "" && !domain.IsSchemaType(r.Type) {
			return nil, domain.NewError("schema.compile", domain.KindInvalidConfig, path,
				"unknown type %q (want one of %s)", r.Type, strings.Join(domain.SchemaTypes, ", "))
		}
		if r.Min != nil && r.Max != nil && *r.Min > *r.Max {
			return nil, domain.NewError("schema.compile", domain.KindInvalidConfig, path, "min is greater than max")
		}
		if r.MinItems != nil && r.MaxItems != nil && *r.MinItems > *r.MaxItems {
			return nil, domain.NewError("schema.compile", domain.KindInvalidConfig, path, "min_items is greater than max_items")
		}

		cr := compiledRule{SchemaRule: r, multi: isMulti(r.Path)}
		if r.Pattern != "" {
			re, err := regexp.Compile(r.Pattern)
			if err != nil {
				return nil, domain.NewError("schema.compile", domain.KindInvalidConfig, path, "invalid pattern: %v", err)
			}
			cr.pattern = re
		}
		v.rules = append(v.rules, cr)
	}
	return v, nil
}

// Rules returns the rule count.
func (v *Validator) Rules() int { return len(v.rules) }

// Validate checks doc against every rule and collects all errors.
func (v *Validator) Validate(doc map[string]any) domain.ValidationResult {
	var errs []domain.SchemaError
	for _, r := range v.rules {
		errs = append(errs, v.check(r, doc)...)
	}
	if len(errs) > 0 {
		v.log.Debug("schema.invalid", "errors", len(errs))
	}
	return domain.ValidationResult{IsValid: len(errs) == 0, Errors: errs}
}

func (v *Validator) check(r compiledRule, doc map[string]any) []domain.SchemaError {
	val, err := assert.Query(r.Path, doc)
	if err != nil || val == nil {
		if r.Required {
			return []domain.SchemaError{{Path: r.Path, Message: fmt.Sprintf("Missing required property: '%s'", r.Path)}}
		}
		return nil
	}

	if !r.multi {
		return checkValue(r, r.Path, val)
	}

	items, _ := val.([]any)
	if len(items) == 0 && r.Required {
		return []domain.SchemaError{{Path: r.Path, Message: fmt.Sprintf("Missing required property: '%s'", r.Path)}}
	}
	var out []domain.SchemaError
	for i, item := range items {
		out = append(out, checkValue(r, fmt.Sprintf("%s[%d]", r.Path, i), item)...)
	}
	return out
}

func checkValue(r compiledRule, path string, val any) []domain.SchemaError {
	var out []domain.SchemaError
	bad := func(format string, args ...any) {
		out = append(out, domain.SchemaError{Path: path, Message: fmt.Sprintf(format, args...), Value: val})
	}

	if r.Type != "" && !hasType(val, r.Type) {
		bad("Expected type '%s', got '%s'", r.Type, jsonType(val))
		return out
	}

	if arr, ok := val.([]any); ok {
		if r.MinItems != nil && len(arr) < *r.MinItems {
			bad("Array too short (minimum items: %d, actual: %d)", *r.MinItems, len(arr))
		}
		if r.MaxItems != nil && len(arr) > *r.MaxItems {
			bad("Array too long (maximum items: %d, actual: %d)", *r.MaxItems, len(arr))
		}
	}

	if f, ok := domain.ToFloat(val); ok {
		if r.Min != nil && f < *r.Min {
			bad("Value must be >= %v", *r.Min)
		}
		if r.Max != nil && f > *r.Max {
			bad("Value must be <= %v", *r.Max)
		}
	}

	if len(r.Enum) > 0 {
		found := false
		for _, e := range r.Enum {
			if domain.SameValue(e, val) {
				found = true
				break
			}
		}
		if !found {
			bad("Value must be one of: %v", r.Enum)
		}
	}

	if r.pattern != nil {
		if s, ok := val.(string); !ok || !r.pattern.MatchString(s) {
			bad("String does not match required pattern: %s", r.Pattern)
		}
	}
	return out
}

// isMulti reports whether a path can select several values, in which case
// each selected value is checked on its own.
func isMulti(path string) bool {
	return strings.Contains(path, "*") || strings.Contains(path, "..") || strings.Contains(path, "?(")
}

func jsonType(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float32, float64:
		if f, _ := domain.ToFloat(t); f == float64(int64(f)) {
			return "integer"
		}
		return "number"
	}
	if _, ok := domain.ToFloat(v); ok {
		return "integer"
	}
	return fmt.Sprintf("%T", v)
}

func hasType(v any, want string) bool {
	got := jsonType(v)
	if want == "number" {
		return got == "number" || got == "integer"
	}
	return got == want
}
