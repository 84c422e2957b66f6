package domain

import (
	"fmt"
	"math"
	"strings"
)

// ValueType is the kind of values a Domain admits.
type ValueType string

const (
	TypeInt    ValueType = "int"
	TypeFloat  ValueType = "float"
	TypeString ValueType = "string"
	TypeBool   ValueType = "bool"
	TypeEnum   ValueType = "enum"
	TypeRange  ValueType = "range"
)

// ParseValueType accepts the canonical type names, case-insensitively.
func ParseValueType(s string) (ValueType, error) {
	t := ValueType(strings.ToLower(strings.TrimSpace(s)))
	switch t {
	case TypeInt, TypeFloat, TypeString, TypeBool, TypeEnum, TypeRange:
		return t, nil
	default:
		return "", fmt.Errorf("unsupported variable type %q", s)
	}
}

// Constraint keys understood by Domain.
const (
	ConstraintMin     = "min"
	ConstraintMax     = "max"
	ConstraintValues  = "values"
	ConstraintDefault = "default"
)

// Domain is the declared space of legal values for one variable.
// A Domain is treated as immutable once built; use NewDomain so the
// constraints map is not shared with the caller.
type Domain struct {
	Name        string
	Type        ValueType
	Constraints map[string]any
}

func NewDomain(name string, typ ValueType, constraints map[string]any) Domain {
	return Domain{
		Name:        name,
		Type:        typ,
		Constraints: cloneMap(constraints),
	}
}

// Min returns the lower bound when one is declared and numeric.
func (d Domain) Min() (float64, bool) {
	return d.bound(ConstraintMin)
}

// Max returns the upper bound when one is declared and numeric.
func (d Domain) Max() (float64, bool) {
	return d.bound(ConstraintMax)
}

func (d Domain) bound(key string) (float64, bool) {
	raw, ok := d.Constraints[key]
	if !ok || raw == nil {
		return 0, false
	}
	return ToFloat(raw)
}

// IntegralBounds reports whether every declared bound is a whole number. A
// range domain with integral bounds is sampled as integers, otherwise it is
// continuous.
func (d Domain) IntegralBounds() bool {
	for _, key := range []string{ConstraintMin, ConstraintMax} {
		raw, ok := d.Constraints[key]
		if !ok || raw == nil {
			continue
		}
		f, num := ToFloat(raw)
		if !num || f != math.Trunc(f) {
			return false
		}
	}
	return true
}

// Values returns the allowed values of an enum domain.
func (d Domain) Values() []any {
	switch vs := d.Constraints[ConstraintValues].(type) {
	case []any:
		return vs
	case []string:
		out := make([]any, len(vs))
		for i, s := range vs {
			out[i] = s
		}
		return out
	default:
		return nil
	}
}

// IsValid checks the value's type against the domain kind and then its
// range or enum membership. Bounds are inclusive.
func (d Domain) IsValid(v any) bool {
	switch d.Type {
	case TypeInt:
		if !isInteger(v) {
			return false
		}
	case TypeFloat:
		if !isNumber(v) {
			return false
		}
	case TypeRange:
		if !isNumber(v) {
			return false
		}
	case TypeString:
		_, ok := v.(string)
		return ok
	case TypeBool:
		_, ok := v.(bool)
		return ok
	case TypeEnum:
		for _, allowed := range d.Values() {
			if SameValue(allowed, v) {
				return true
			}
		}
		return false
	default:
		return true
	}

	f, _ := ToFloat(v)
	if lo, ok := d.Min(); ok && f < lo {
		return false
	}
	if hi, ok := d.Max(); ok && f > hi {
		return false
	}
	return true
}

// SampleValue returns a deterministic representative value of the domain.
func (d Domain) SampleValue() any {
	switch d.Type {
	case TypeInt:
		if lo, ok := d.Min(); ok {
			return int(math.Ceil(lo))
		}
		return 0
	case TypeFloat:
		if lo, ok := d.Min(); ok {
			return lo
		}
		return 0.0
	case TypeRange:
		if raw, ok := d.Constraints[ConstraintMin]; ok && isNumber(raw) {
			return raw
		}
		return 0
	case TypeString:
		if s, ok := d.Constraints[ConstraintDefault].(string); ok {
			return s
		}
		return ""
	case TypeBool:
		return false
	case TypeEnum:
		vs := d.Values()
		if len(vs) == 0 {
			return nil
		}
		return vs[0]
	default:
		return nil
	}
}

// Check reports a malformed domain: unknown type, inverted bounds or an
// enum without values.
func (d Domain) Check() error {
	if _, err := ParseValueType(string(d.Type)); err != nil {
		return err
	}
	for _, key := range []string{ConstraintMin, ConstraintMax} {
		if raw, ok := d.Constraints[key]; ok && raw != nil {
			if _, num := ToFloat(raw); !num {
				return fmt.Errorf("constraint %s must be numeric, got %T", key, raw)
			}
		}
	}
	lo, hasLo := d.Min()
	hi, hasHi := d.Max()
	if hasLo && hasHi && lo > hi {
		return fmt.Errorf("min %v is greater than max %v", lo, hi)
	}
	if d.Type == TypeEnum && len(d.Values()) == 0 {
		return fmt.Errorf("enum domain requires at least one value")
	}
	if d.Type == TypeInt && hasLo && hasHi && math.Ceil(lo) > math.Floor(hi) {
		return fmt.Errorf("int domain [%v, %v] contains no integer", lo, hi)
	}
	return nil
}

func (d Domain) clone() Domain {
	return NewDomain(d.Name, d.Type, d.Constraints)
}

func (d Domain) String() string {
	return fmt.Sprintf("%s(%s)", d.Name, d.Type)
}
