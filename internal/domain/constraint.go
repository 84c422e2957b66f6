package domain

import (
	"fmt"
	"strings"
)

// ConstraintCategory groups constraints by what they inspect.
type ConstraintCategory string

const (
	CategoryStructural ConstraintCategory = "structural"
	CategoryVariable   ConstraintCategory = "variable"
	CategoryGlobal     ConstraintCategory = "global"
)

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// ParseSeverity defaults an empty string to error.
func ParseSeverity(s string) (Severity, error) {
	switch v := Severity(strings.ToLower(strings.TrimSpace(s))); v {
	case "":
		return SeverityError, nil
	case SeverityError, SeverityWarning, SeverityInfo:
		return v, nil
	}
	return "", fmt.Errorf("unsupported severity %q", s)
}

// Constraint is one rule a design object must satisfy.
type Constraint interface {
	ID() string
	Kind() string
	Category() ConstraintCategory
	Severity() Severity
	Description() string
	// Check reports whether obj satisfies the rule and, when it does not,
	// a human-readable reason.
	Check(obj DesignObject) (bool, string)
}

// ComponentScoped is implemented by constraints that only concern some
// component ids.
type ComponentScoped interface {
	AppliesToComponent(id string) bool
}

// SizeBounded is implemented by constraints that bound the total number of
// components. Generators use it to size structures.
type SizeBounded interface {
	ComponentBounds() (lo, hi *int)
}

// ConstraintSet keeps constraints in insertion order, grouped by category.
type ConstraintSet struct {
	items []Constraint
}

func NewConstraintSet(cs ...Constraint) (*ConstraintSet, error) {
	s := &ConstraintSet{}
	for _, c := range cs {
		if err := s.Add(c); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Add rejects a nil constraint and duplicate ids.
func (s *ConstraintSet) Add(c Constraint) error {
	if c == nil {
		return newOpError("constraints.add", KindInvalidConfig, "", "constraint is nil")
	}
	if _, exists := s.Get(c.ID()); exists {
		return newOpError("constraints.add", KindInvalidConfig, c.ID(),
			fmt.Sprintf("duplicate constraint id %q", c.ID()))
	}
	s.items = append(s.items, c)
	return nil
}

func (s *ConstraintSet) Remove(id string) bool {
	for i, c := range s.items {
		if c.ID() == id {
			s.items = append(s.items[:i:i], s.items[i+1:]...)
			return true
		}
	}
	return false
}

func (s *ConstraintSet) Get(id string) (Constraint, bool) {
	if s == nil {
		return nil, false
	}
	for _, c := range s.items {
		if c.ID() == id {
			return c, true
		}
	}
	return nil, false
}

// All returns structural, then variable, then global constraints, each group
// in insertion order.
func (s *ConstraintSet) All() []Constraint {
	if s == nil {
		return nil
	}
	out := make([]Constraint, 0, len(s.items))
	for _, cat := range []ConstraintCategory{CategoryStructural, CategoryVariable, CategoryGlobal} {
		out = append(out, s.ByCategory(cat)...)
	}
	return out
}

func (s *ConstraintSet) ByCategory(cat ConstraintCategory) []Constraint {
	if s == nil {
		return nil
	}
	var out []Constraint
	for _, c := range s.items {
		if c.Category() == cat {
			out = append(out, c)
		}
	}
	return out
}

func (s *ConstraintSet) ByKind(kind string) []Constraint {
	if s == nil {
		return nil
	}
	var out []Constraint
	for _, c := range s.items {
		if c.Kind() == kind {
			out = append(out, c)
		}
	}
	return out
}

// ForComponent returns constraints scoped to the component plus every
// constraint that is not component-scoped.
func (s *ConstraintSet) ForComponent(id string) []Constraint {
	var out []Constraint
	for _, c := range s.All() {
		if scoped, ok := c.(ComponentScoped); ok && !scoped.AppliesToComponent(id) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func (s *ConstraintSet) Count() map[ConstraintCategory]int {
	out := map[ConstraintCategory]int{
		CategoryStructural: 0,
		CategoryVariable:   0,
		CategoryGlobal:     0,
	}
	if s == nil {
		return out
	}
	for _, c := range s.items {
		out[c.Category()]++
	}
	return out
}

func (s *ConstraintSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

func (s *ConstraintSet) IsEmpty() bool { return s.Len() == 0 }

// ConstraintViolation describes one failed constraint.
type ConstraintViolation struct {
	ConstraintID   string         `json:"constraint_id"`
	ConstraintType string         `json:"constraint_type"`
	Message        string         `json:"message"`
	Severity       Severity       `json:"severity"`
	Context        map[string]any `json:"context,omitempty"`
}

func (v ConstraintViolation) String() string {
	return fmt.Sprintf("[%s] %s: %s", v.Severity, v.ConstraintID, v.Message)
}

// EvaluationResult is the outcome of checking a design object against a
// constraint set.
type EvaluationResult struct {
	IsValid    bool                  `json:"is_valid"`
	Violations []ConstraintViolation `json:"violations"`
	Checked    int                   `json:"checked"`
}

// SatisfactionRatio is the share of checked constraints without a violation.
func (r EvaluationResult) SatisfactionRatio() float64 {
	if r.Checked == 0 {
		return 1
	}
	ratio := 1 - float64(len(r.Violations))/float64(r.Checked)
	if ratio < 0 {
		return 0
	}
	return ratio
}

// SchemaError describes one document-shape failure.
type SchemaError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
	Value   any    `json:"value,omitempty"`
}

func (e SchemaError) String() string {
	return fmt.Sprintf("Schema error at '%s': %s", e.Path, e.Message)
}

type ValidationResult struct {
	IsValid bool          `json:"is_valid"`
	Errors  []SchemaError `json:"errors"`
}
