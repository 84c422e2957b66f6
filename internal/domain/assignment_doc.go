package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// DomainDocument is the serialized form of a Domain.
type DomainDocument struct {
	Name        string         `json:"name" yaml:"name"`
	Type        ValueType      `json:"type" yaml:"type"`
	Constraints map[string]any `json:"constraints" yaml:"constraints"`
}

// OrderedDomains serializes as a JSON object keyed by domain name while
// keeping insertion order on both encode and decode.
type OrderedDomains []DomainDocument

// AssignmentDocument is the persisted key-value form of a VariableAssignment.
type AssignmentDocument struct {
	Assignments  map[string]any      `json:"assignments"`
	Domains      OrderedDomains      `json:"domains"`
	Dependencies map[string][]string `json:"dependencies"`
}

func (a *VariableAssignment) ToDocument() AssignmentDocument {
	doc := AssignmentDocument{
		Assignments:  a.Assignments(),
		Domains:      make(OrderedDomains, 0, len(a.domainOrder)),
		Dependencies: a.DependencyMap(),
	}
	for _, d := range a.Domains() {
		doc.Domains = append(doc.Domains, DomainDocument{
			Name:        d.Name,
			Type:        d.Type,
			Constraints: cloneMap(d.Constraints),
		})
	}
	return doc
}

// AssignmentFromDocument rebuilds an assignment. Stored bindings are taken as
// they are; run ValidateAll to check them against their domains.
func AssignmentFromDocument(doc AssignmentDocument) *VariableAssignment {
	out := NewVariableAssignment()
	for _, dd := range doc.Domains {
		out.AddDomain(NewDomain(dd.Name, dd.Type, dd.Constraints))
	}
	for name, deps := range doc.Dependencies {
		out.AddDependency(name, deps)
	}
	for k, v := range doc.Assignments {
		out.assignments[k] = cloneValue(v)
	}
	return out
}

func (a *VariableAssignment) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.ToDocument())
}

func (a *VariableAssignment) UnmarshalJSON(b []byte) error {
	var doc AssignmentDocument
	if err := json.Unmarshal(b, &doc); err != nil {
		return err
	}
	*a = *AssignmentFromDocument(doc)
	return nil
}

func (d *AssignmentDocument) UnmarshalJSON(b []byte) error {
	type plain AssignmentDocument
	var p plain

	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&p); err != nil {
		return err
	}
	if p.Assignments != nil {
		p.Assignments = DecodeNumbers(p.Assignments).(map[string]any)
	}
	*d = AssignmentDocument(p)
	return nil
}

func (o OrderedDomains) MarshalJSON() ([]byte, error) {
	if o == nil {
		return []byte("{}"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, d := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(d.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(d)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (o *OrderedDomains) UnmarshalJSON(b []byte) error {
	if string(bytes.TrimSpace(b)) == "null" {
		*o = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("domains: expected object, got %v", tok)
	}

	out := OrderedDomains{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := keyTok.(string)

		var dd DomainDocument
		if err := dec.Decode(&dd); err != nil {
			return fmt.Errorf("domains.%s: %w", key, err)
		}
		if dd.Name == "" {
			dd.Name = key
		}
		if dd.Constraints != nil {
			dd.Constraints = DecodeNumbers(dd.Constraints).(map[string]any)
		} else {
			dd.Constraints = map[string]any{}
		}
		out = append(out, dd)
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	*o = out
	return nil
}

// DecodeNumbers replaces json.Number values with int when the literal has no
// fraction or exponent, float64 otherwise. Maps and slices are walked.
func DecodeNumbers(v any) any {
	switch t := v.(type) {
	case json.Number:
		s := t.String()
		if !strings.ContainsAny(s, ".eE") {
			if n, err := strconv.ParseInt(s, 10, 64); err == nil {
				return int(n)
			}
		}
		f, err := t.Float64()
		if err != nil {
			return s
		}
		return f
	case map[string]any:
		for k, val := range t {
			t[k] = DecodeNumbers(val)
		}
		return t
	case []any:
		for i := range t {
			t[i] = DecodeNumbers(t[i])
		}
		return t
	default:
		return v
	}
}

// ToGenericDocument turns any JSON-serializable value into the generic
// map/slice tree a JSON decoder would produce.
func ToGenericDocument(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return DecodeNumbers(out).(map[string]any), nil
}
