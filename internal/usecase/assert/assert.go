// Package assert runs JSONPath checks against design object documents.
package assert

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PaesslerAG/jsonpath"

	"github.com/forestbook1/sep-solver-sub001/internal/domain"
)

// Query evaluates expr against doc. doc must be a generic JSON tree.
func Query(expr string, doc any) (any, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("empty jsonpath expression")
	}
	return jsonpath.Get(expr, doc)
}

// Evaluate applies every configured check of c to the value expr selects.
// An expression that does not resolve fails every check with the lookup
// error.
func Evaluate(expr string, c domain.PathCheck, doc any) []domain.CheckResult {
	val, getErr := Query(expr, doc)

	var out []domain.CheckResult
	if c.Exists {
		out = append(out, checkExists(expr, val, getErr))
	}
	if c.Count != nil {
		out = append(out, checkCount(expr, val, getErr, *c.Count))
	}
	if c.Eq != nil {
		out = append(out, checkEq(expr, val, getErr, *c.Eq))
	}
	if c.Contains != nil {
		out = append(out, checkContains(expr, val, getErr, *c.Contains))
	}
	if c.Matches != nil {
		out = append(out, checkMatches(expr, val, getErr, *c.Matches))
	}
	if c.Gt != nil {
		out = append(out, checkGt(expr, val, getErr, *c.Gt))
	}
	if c.Lt != nil {
		out = append(out, checkLt(expr, val, getErr, *c.Lt))
	}
	return out
}

// Failed returns the results that did not pass.
func Failed(results []domain.CheckResult) []domain.CheckResult {
	var out []domain.CheckResult
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}

func pass(name, format string, args ...any) domain.CheckResult {
	return domain.CheckResult{Name: name, Passed: true, Message: fmt.Sprintf(format, args...)}
}

func fail(name, format string, args ...any) domain.CheckResult {
	return domain.CheckResult{Name: name, Passed: false, Message: fmt.Sprintf(format, args...)}
}

func checkExists(expr string, val any, getErr error) domain.CheckResult {
	if getErr != nil {
		return fail("jsonpath.exists", "jsonpath %q: %v", expr, getErr)
	}
	if IsEmpty(val) {
		return fail("jsonpath.exists", "jsonpath %q: expected value to exist, got empty", expr)
	}
	return pass("jsonpath.exists", "jsonpath %q exists", expr)
}

func checkCount(expr string, val any, getErr error, want int) domain.CheckResult {
	n := 0
	switch v := val.(type) {
	case nil:
	case []any:
		n = len(v)
	default:
		n = 1
	}
	if getErr != nil {
		n = 0
	}
	if n == want {
		return pass("jsonpath.count", "jsonpath %q selects %d values", expr, n)
	}
	return fail("jsonpath.count", "jsonpath %q: expected %d values, got %d", expr, want, n)
}

func checkEq(expr string, val any, getErr error, expected string) domain.CheckResult {
	if getErr != nil {
		return fail("jsonpath.eq", "jsonpath %q: %v", expr, getErr)
	}
	s, err := ToString(val)
	if err != nil {
		return fail("jsonpath.eq", "jsonpath %q: %v", expr, err)
	}
	if s == expected {
		return pass("jsonpath.eq", "jsonpath %q eq %q", expr, expected)
	}
	return fail("jsonpath.eq", "jsonpath %q: expected %q, got %q", expr, expected, s)
}

func checkContains(expr string, val any, getErr error, sub string) domain.CheckResult {
	if getErr != nil {
		return fail("jsonpath.contains", "jsonpath %q: %v", expr, getErr)
	}
	s, err := ToString(val)
	if err != nil {
		return fail("jsonpath.contains", "jsonpath %q: %v", expr, err)
	}
	if strings.Contains(s, sub) {
		return pass("jsonpath.contains", "jsonpath %q contains %q", expr, sub)
	}
	return fail("jsonpath.contains", "jsonpath %q: %q does not contain %q", expr, s, sub)
}

func checkMatches(expr string, val any, getErr error, pattern string) domain.CheckResult {
	if getErr != nil {
		return fail("jsonpath.matches", "jsonpath %q: %v", expr, getErr)
	}
	s, err := ToString(val)
	if err != nil {
		return fail("jsonpath.matches", "jsonpath %q: %v", expr, err)
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return fail("jsonpath.matches", "jsonpath %q: invalid regex %q: %v", expr, pattern, err)
	}
	if re.MatchString(s) {
		return pass("jsonpath.matches", "jsonpath %q matches %q", expr, pattern)
	}
	return fail("jsonpath.matches", "jsonpath %q: %q does not match %q", expr, s, pattern)
}

func checkGt(expr string, val any, getErr error, threshold float64) domain.CheckResult {
	if getErr != nil {
		return fail("jsonpath.gt", "jsonpath %q: %v", expr, getErr)
	}
	f, err := ToFloat(val)
	if err != nil {
		return fail("jsonpath.gt", "jsonpath %q: %v", expr, err)
	}
	if f > threshold {
		return pass("jsonpath.gt", "jsonpath %q: %v > %v", expr, f, threshold)
	}
	return fail("jsonpath.gt", "jsonpath %q: expected > %v, got %v", expr, threshold, f)
}

func checkLt(expr string, val any, getErr error, threshold float64) domain.CheckResult {
	if getErr != nil {
		return fail("jsonpath.lt", "jsonpath %q: %v", expr, getErr)
	}
	f, err := ToFloat(val)
	if err != nil {
		return fail("jsonpath.lt", "jsonpath %q: %v", expr, err)
	}
	if f < threshold {
		return pass("jsonpath.lt", "jsonpath %q: %v < %v", expr, f, threshold)
	}
	return fail("jsonpath.lt", "jsonpath %q: expected < %v, got %v", expr, threshold, f)
}

// ToString renders a selected value for comparison. A single-element
// selection is unwrapped; larger selections and objects become JSON.
func ToString(val any) (string, error) {
	if arr, ok := val.([]any); ok && len(arr) == 1 {
		val = arr[0]
	}
	switch v := val.(type) {
	case string:
		return v, nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(v), nil
	case nil:
		return "", fmt.Errorf("value is null")
	case []any, map[string]any:
		b, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(b), nil
	default:
		return fmt.Sprint(v), nil
	}
}

// ToFloat converts a selected number (or numeric string) to float64.
func ToFloat(val any) (float64, error) {
	if arr, ok := val.([]any); ok && len(arr) == 1 {
		val = arr[0]
	}
	if f, ok := domain.ToFloat(val); ok {
		return f, nil
	}
	if s, ok := val.(string); ok {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("value %q is not numeric", s)
		}
		return f, nil
	}
	return 0, fmt.Errorf("value of type %T is not numeric", val)
}

// IsEmpty treats nil, "", empty arrays and empty objects as absent.
func IsEmpty(v any) bool {
	if v == nil {
		return true
	}
	switch t := v.(type) {
	case string:
		return t == ""
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	default:
		return false
	}
}
