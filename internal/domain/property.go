package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// VariableDeclaration marks a property whose value is chosen by the assigner.
type VariableDeclaration struct {
	Type        ValueType      `json:"type"`
	Constraints map[string]any `json:"constraints,omitempty"`
	DependsOn   []string       `json:"depends_on,omitempty"`
}

func (d VariableDeclaration) clone() VariableDeclaration {
	out := VariableDeclaration{
		Type:        d.Type,
		Constraints: cloneMap(d.Constraints),
	}
	if d.DependsOn != nil {
		out.DependsOn = append([]string(nil), d.DependsOn...)
	}
	return out
}

// PropertyValue is either a literal value or a variable declaration.
// The zero value is a nil literal.
type PropertyValue struct {
	literal any
	decl    *VariableDeclaration
}

func Literal(v any) PropertyValue {
	return PropertyValue{literal: v}
}

func Variable(decl VariableDeclaration) PropertyValue {
	d := decl.clone()
	if d.Type == "" {
		d.Type = TypeString
	}
	return PropertyValue{decl: &d}
}

func (p PropertyValue) IsVariable() bool { return p.decl != nil }

// Value returns the literal; it is nil for variable declarations.
func (p PropertyValue) Value() any { return p.literal }

// Declaration returns the variable declaration, if any.
func (p PropertyValue) Declaration() (VariableDeclaration, bool) {
	if p.decl == nil {
		return VariableDeclaration{}, false
	}
	return p.decl.clone(), true
}

func (p PropertyValue) clone() PropertyValue {
	if p.decl != nil {
		d := p.decl.clone()
		return PropertyValue{decl: &d}
	}
	return PropertyValue{literal: cloneValue(p.literal)}
}

func (p PropertyValue) String() string {
	if p.decl != nil {
		return fmt.Sprintf("variable(%s)", p.decl.Type)
	}
	return fmt.Sprint(p.literal)
}

type variableEnvelope struct {
	Variable *VariableDeclaration `json:"variable"`
}

// MarshalJSON writes literals as-is and declarations as {"variable": {...}}.
func (p PropertyValue) MarshalJSON() ([]byte, error) {
	if p.decl != nil {
		return json.Marshal(variableEnvelope{Variable: p.decl})
	}
	return json.Marshal(p.literal)
}

func (p *PropertyValue) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	raw = DecodeNumbers(raw)

	pv, err := PropertyFromRaw(raw)
	if err != nil {
		return err
	}
	*p = pv
	return nil
}

// PropertyFromRaw converts a decoded JSON/YAML value into a PropertyValue.
// A single-key object {"variable": {...}} becomes a declaration.
func PropertyFromRaw(raw any) (PropertyValue, error) {
	obj, ok := raw.(map[string]any)
	if !ok || len(obj) != 1 {
		return Literal(raw), nil
	}
	inner, ok := obj["variable"]
	if !ok {
		return Literal(raw), nil
	}
	spec, ok := inner.(map[string]any)
	if !ok {
		return PropertyValue{}, fmt.Errorf("variable declaration must be an object, got %T", inner)
	}

	decl := VariableDeclaration{Type: TypeString}
	if t, ok := spec["type"].(string); ok && t != "" {
		decl.Type = ValueType(t)
	}
	if c, ok := spec["constraints"].(map[string]any); ok {
		decl.Constraints = c
	}
	switch deps := spec["depends_on"].(type) {
	case string:
		decl.DependsOn = []string{deps}
	case []any:
		for _, d := range deps {
			s, ok := d.(string)
			if !ok {
				return PropertyValue{}, fmt.Errorf("depends_on entries must be strings, got %T", d)
			}
			decl.DependsOn = append(decl.DependsOn, s)
		}
	case []string:
		decl.DependsOn = deps
	case nil:
	default:
		return PropertyValue{}, fmt.Errorf("depends_on must be a string or list, got %T", deps)
	}
	return Variable(decl), nil
}

// Properties maps a property name to its value.
type Properties map[string]PropertyValue

func (p Properties) clone() Properties {
	out := make(Properties, len(p))
	for k, v := range p {
		out[k] = v.clone()
	}
	return out
}
