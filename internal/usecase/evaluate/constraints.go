package evaluate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/forestbook1/sep-solver-sub001/internal/domain"
	"github.com/forestbook1/sep-solver-sub001/internal/usecase/assert"
)

// Built-in constraint kinds.
const (
	KindComponentCount      = "component_count"
	KindVariableRange       = "variable_range"
	KindComponentProperty   = "component_property"
	KindRelationshipPattern = "relationship_pattern"
	KindVariableDependency  = "variable_dependency"
	KindResource            = "resource"
	KindConnectivity        = "connectivity"
	KindPath                = "path"
)

type base struct {
	id          string
	kind        string
	category    domain.ConstraintCategory
	severity    domain.Severity
	description string
}

func (b base) ID() string                          { return b.id }
func (b base) Kind() string                        { return b.kind }
func (b base) Category() domain.ConstraintCategory { return b.category }
func (b base) Severity() domain.Severity           { return b.severity }
func (b base) Description() string                 { return b.description }

func newBase(id, kind string, cat domain.ConstraintCategory, sev domain.Severity, desc string) base {
	if sev == "" {
		sev = domain.SeverityError
	}
	return base{id: id, kind: kind, category: cat, severity: sev, description: desc}
}

// ComponentCount bounds the number of components, optionally of one type.
// The default generator reads these bounds to size its structures.
type ComponentCount struct {
	base
	Min  *int
	Max  *int
	Type string
}

// ComponentBounds reports bounds only for the untyped form.
func (c ComponentCount) ComponentBounds() (lo, hi *int) {
	if c.Type != "" {
		return nil, nil
	}
	return c.Min, c.Max
}

func (c ComponentCount) Check(obj domain.DesignObject) (bool, string) {
	n := 0
	for _, comp := range obj.Structure.Components {
		if c.Type == "" || comp.Type == c.Type {
			n++
		}
	}
	what := "components"
	if c.Type != "" {
		what = c.Type + " components"
	}
	if c.Min != nil && n < *c.Min {
		return false, fmt.Sprintf("Structure has %d %s, minimum is %d", n, what, *c.Min)
	}
	if c.Max != nil && n > *c.Max {
		return false, fmt.Sprintf("Structure has %d %s, maximum is %d", n, what, *c.Max)
	}
	return true, ""
}

// VariableRange bounds a numeric variable. An unassigned variable satisfies
// it.
type VariableRange struct {
	base
	Variable string
	Min      *float64
	Max      *float64
}

func (c VariableRange) Check(obj domain.DesignObject) (bool, string) {
	v, ok := obj.Value(c.Variable)
	if !ok {
		return true, ""
	}
	f, num := domain.ToFloat(v)
	if !num {
		return false, fmt.Sprintf("Variable %s is %v, expected a number", c.Variable, v)
	}
	if c.Min != nil && f < *c.Min {
		return false, fmt.Sprintf("Variable %s is %v, minimum %v", c.Variable, v, *c.Min)
	}
	if c.Max != nil && f > *c.Max {
		return false, fmt.Sprintf("Variable %s is %v, maximum %v", c.Variable, v, *c.Max)
	}
	return true, ""
}

// ComponentProperty checks a property on every component of a type. A
// variable property is checked through its binding.
type ComponentProperty struct {
	base
	ComponentType string
	ComponentID   string
	Property      string
	Expected      any
	Min           *float64
	Max           *float64
}

// AppliesToComponent limits the constraint to ComponentID when set.
func (c ComponentProperty) AppliesToComponent(id string) bool {
	return c.ComponentID == "" || c.ComponentID == id
}

func (c ComponentProperty) Check(obj domain.DesignObject) (bool, string) {
	for _, comp := range obj.Structure.Components {
		if c.ComponentType != "" && comp.Type != c.ComponentType {
			continue
		}
		if !c.AppliesToComponent(comp.ID) {
			continue
		}
		v, ok := PropertyValue(obj, comp.ID, comp.Properties, c.Property)
		if !ok {
			return false, fmt.Sprintf("Component %s of type %s missing property %s", comp.ID, comp.Type, c.Property)
		}
		if c.Expected != nil && !domain.SameValue(v, c.Expected) {
			return false, fmt.Sprintf("Component %s property %s is %v, expected %v", comp.ID, c.Property, v, c.Expected)
		}
		if c.Min == nil && c.Max == nil {
			continue
		}
		f, num := domain.ToFloat(v)
		if !num {
			return false, fmt.Sprintf("Component %s property %s is %v, expected a number", comp.ID, c.Property, v)
		}
		if c.Min != nil && f < *c.Min {
			return false, fmt.Sprintf("Component %s property %s is %v, minimum %v", comp.ID, c.Property, v, *c.Min)
		}
		if c.Max != nil && f > *c.Max {
			return false, fmt.Sprintf("Component %s property %s is %v, maximum %v", comp.ID, c.Property, v, *c.Max)
		}
	}
	return true, ""
}

// RelationshipPattern requires (or forbids) a relationship of a type from
// a source component type to a target component type.
type RelationshipPattern struct {
	base
	SourceType       string
	TargetType       string
	RelationshipType string
	Required         bool
}

func (c RelationshipPattern) Check(obj domain.DesignObject) (bool, string) {
	types := make(map[string]string, len(obj.Structure.Components))
	for _, comp := range obj.Structure.Components {
		types[comp.ID] = comp.Type
	}

	found := false
	for _, r := range obj.Structure.Relationships {
		if c.RelationshipType != "" && r.Type != c.RelationshipType {
			continue
		}
		if types[r.SourceID] == c.SourceType && types[r.TargetID] == c.TargetType {
			found = true
			break
		}
	}

	pattern := fmt.Sprintf("%s -> %s via %s", c.SourceType, c.TargetType, c.RelationshipType)
	if c.Required && !found {
		return false, "Required relationship pattern not found: " + pattern
	}
	if !c.Required && found {
		return false, "Forbidden relationship pattern found: " + pattern
	}
	return true, ""
}

// Condition is one rule of a VariableDependency. Unset fields are skipped.
type Condition struct {
	Equals    any
	NotEquals any
	Min       *float64
	Max       *float64
}

// VariableDependency: once Dependent is assigned, every rule variable must
// be assigned and meet its condition.
type VariableDependency struct {
	base
	Dependent string
	Rules     map[string]Condition
}

func (c VariableDependency) Check(obj domain.DesignObject) (bool, string) {
	if _, ok := obj.Value(c.Dependent); !ok {
		return true, ""
	}

	names := make([]string, 0, len(c.Rules))
	for n := range c.Rules {
		names = append(names, n)
	}
	sort.Strings(names)

	for _, name := range names {
		cond := c.Rules[name]
		v, ok := obj.Value(name)
		if !ok {
			return false, fmt.Sprintf("Dependency variable %s is not assigned", name)
		}
		if cond.Equals != nil && !domain.SameValue(v, cond.Equals) {
			return false, fmt.Sprintf("Variable %s is %v, expected %v", name, v, cond.Equals)
		}
		if cond.NotEquals != nil && domain.SameValue(v, cond.NotEquals) {
			return false, fmt.Sprintf("Variable %s is %v, must not equal %v", name, v, cond.NotEquals)
		}
		if cond.Min != nil || cond.Max != nil {
			f, num := domain.ToFloat(v)
			if !num {
				return false, fmt.Sprintf("Variable %s is %v, expected a number", name, v)
			}
			if cond.Min != nil && f < *cond.Min {
				return false, fmt.Sprintf("Variable %s is %v, minimum %v", name, v, *cond.Min)
			}
			if cond.Max != nil && f > *cond.Max {
				return false, fmt.Sprintf("Variable %s is %v, maximum %v", name, v, *cond.Max)
			}
		}
	}
	return true, ""
}

// Resource caps the total of a numeric property across components, plus
// every free variable named "<resource>_...".
type Resource struct {
	base
	Name     string
	MaxUsage float64
}

func (c Resource) Usage(obj domain.DesignObject) float64 {
	total := 0.0
	owned := map[string]bool{}
	for _, comp := range obj.Structure.Components {
		owned[comp.ID+"."+c.Name] = true
		if v, ok := PropertyValue(obj, comp.ID, comp.Properties, c.Name); ok {
			if f, num := domain.ToFloat(v); num {
				total += f
			}
		}
	}
	if obj.Variables != nil {
		for _, name := range obj.Variables.AssignedNames() {
			if owned[name] || !strings.HasPrefix(name, c.Name+"_") {
				continue
			}
			v, _ := obj.Variables.Get(name)
			if f, num := domain.ToFloat(v); num {
				total += f
			}
		}
	}
	return total
}

func (c Resource) Check(obj domain.DesignObject) (bool, string) {
	if usage := c.Usage(obj); usage > c.MaxUsage {
		return false, fmt.Sprintf("Resource %s usage %v exceeds limit %v", c.Name, usage, c.MaxUsage)
	}
	return true, ""
}

type ConnectivityMode string

const (
	Connected      ConnectivityMode = "connected"
	FullyConnected ConnectivityMode = "fully_connected"
	Acyclic        ConnectivityMode = "acyclic"
)

// Connectivity checks the shape of the component graph. Structures with at
// most one component always pass.
type Connectivity struct {
	base
	Mode ConnectivityMode
}

func (c Connectivity) Check(obj domain.DesignObject) (bool, string) {
	s := obj.Structure
	if len(s.Components) <= 1 {
		return true, ""
	}
	switch c.Mode {
	case Connected:
		if !isConnected(s) {
			return false, "Structure is not connected - some components are isolated"
		}
	case FullyConnected:
		if !isFullyConnected(s) {
			return false, "Structure is not fully connected - missing required connections"
		}
	case Acyclic:
		if !isAcyclic(s) {
			return false, "Structure contains cycles - must be acyclic"
		}
	}
	return true, ""
}

func isConnected(s domain.Structure) bool {
	adj := make(map[string][]string, len(s.Components))
	for _, c := range s.Components {
		adj[c.ID] = nil
	}
	for _, r := range s.Relationships {
		_, okS := adj[r.SourceID]
		_, okT := adj[r.TargetID]
		if okS && okT {
			adj[r.SourceID] = append(adj[r.SourceID], r.TargetID)
			adj[r.TargetID] = append(adj[r.TargetID], r.SourceID)
		}
	}

	seen := map[string]bool{}
	stack := []string{s.Components[0].ID}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[cur] {
			continue
		}
		seen[cur] = true
		stack = append(stack, adj[cur]...)
	}
	return len(seen) == len(adj)
}

func isFullyConnected(s domain.Structure) bool {
	pairs := map[[2]string]bool{}
	for _, r := range s.Relationships {
		if r.SourceID == r.TargetID {
			continue
		}
		a, b := r.SourceID, r.TargetID
		if b < a {
			a, b = b, a
		}
		pairs[[2]string{a, b}] = true
	}
	n := len(s.Components)
	return len(pairs) >= n*(n-1)/2
}

func isAcyclic(s domain.Structure) bool {
	adj := make(map[string][]string, len(s.Components))
	for _, c := range s.Components {
		adj[c.ID] = nil
	}
	for _, r := range s.Relationships {
		if _, ok := adj[r.SourceID]; !ok {
			continue
		}
		if _, ok := adj[r.TargetID]; !ok {
			continue
		}
		adj[r.SourceID] = append(adj[r.SourceID], r.TargetID)
	}

	const (
		white = iota
		grey
		black
	)
	color := make(map[string]int, len(adj))
	var visit func(string) bool
	visit = func(n string) bool {
		switch color[n] {
		case grey:
			return false
		case black:
			return true
		}
		color[n] = grey
		for _, next := range adj[n] {
			if !visit(next) {
				return false
			}
		}
		color[n] = black
		return true
	}
	for _, c := range s.Components {
		if color[c.ID] == white && !visit(c.ID) {
			return false
		}
	}
	return true
}

// Path runs JSONPath checks against the object's document.
type Path struct {
	base
	Expr  string
	Rules domain.PathCheck
}

func (c Path) Check(obj domain.DesignObject) (bool, string) {
	doc, err := obj.Document()
	if err != nil {
		return false, fmt.Sprintf("cannot render design object: %v", err)
	}
	failed := assert.Failed(assert.Evaluate(c.Expr, c.Rules, doc))
	if len(failed) == 0 {
		return true, ""
	}
	msgs := make([]string, len(failed))
	for i, f := range failed {
		msgs[i] = f.Message
	}
	return false, strings.Join(msgs, "; ")
}

// Func adapts a plain function into a constraint, for programmatic rules.
type Func struct {
	base
	Fn func(domain.DesignObject) (bool, string)
}

func NewFunc(id string, cat domain.ConstraintCategory, desc string, fn func(domain.DesignObject) (bool, string)) Func {
	return Func{base: newBase(id, "custom", cat, domain.SeverityError, desc), Fn: fn}
}

func (c Func) Check(obj domain.DesignObject) (bool, string) { return c.Fn(obj) }

// PropertyValue returns an owner's property: the literal, or the binding of
// "<owner>.<property>" when the property is a variable.
func PropertyValue(obj domain.DesignObject, ownerID string, props domain.Properties, name string) (any, bool) {
	p, ok := props[name]
	if !ok {
		return nil, false
	}
	if !p.IsVariable() {
		return p.Value(), true
	}
	return obj.Value(ownerID + "." + name)
}
