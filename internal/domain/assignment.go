package domain

import (
	"fmt"
	"reflect"
	"sort"
)

// VariableAssignment holds the current bindings of a structure's variables
// together with their domains and dependency edges.
//
// Domains keep their insertion order; ordering-sensitive algorithms
// (topological sort, shuffling) start from it.
type VariableAssignment struct {
	assignments  map[string]any
	domains      map[string]Domain
	domainOrder  []string
	dependencies map[string][]string
}

func NewVariableAssignment() *VariableAssignment {
	return &VariableAssignment{
		assignments:  map[string]any{},
		domains:      map[string]Domain{},
		dependencies: map[string][]string{},
	}
}

// AddDomain registers (or replaces) the domain for d.Name.
func (a *VariableAssignment) AddDomain(d Domain) {
	if _, exists := a.domains[d.Name]; !exists {
		a.domainOrder = append(a.domainOrder, d.Name)
	}
	a.domains[d.Name] = d.clone()
}

func (a *VariableAssignment) Domain(name string) (Domain, bool) {
	d, ok := a.domains[name]
	return d, ok
}

// Domains returns the domains in insertion order.
func (a *VariableAssignment) Domains() []Domain {
	out := make([]Domain, 0, len(a.domainOrder))
	for _, n := range a.domainOrder {
		out = append(out, a.domains[n])
	}
	return out
}

// DomainNames returns the domain names in insertion order.
func (a *VariableAssignment) DomainNames() []string {
	out := make([]string, len(a.domainOrder))
	copy(out, a.domainOrder)
	return out
}

// AddDependency replaces the dependency list of name. Duplicates are dropped,
// first occurrence wins.
func (a *VariableAssignment) AddDependency(name string, deps []string) {
	seen := make(map[string]bool, len(deps))
	list := make([]string, 0, len(deps))
	for _, d := range deps {
		if seen[d] {
			continue
		}
		seen[d] = true
		list = append(list, d)
	}
	a.dependencies[name] = list
}

// Dependencies returns a copy of the dependency list of name.
func (a *VariableAssignment) Dependencies(name string) []string {
	deps := a.dependencies[name]
	out := make([]string, len(deps))
	copy(out, deps)
	return out
}

// DependencyMap returns a deep copy of every dependency list.
func (a *VariableAssignment) DependencyMap() map[string][]string {
	out := make(map[string][]string, len(a.dependencies))
	for k := range a.dependencies {
		out[k] = a.Dependencies(k)
	}
	return out
}

// DependentNames lists every variable that declares dependencies: domain
// variables first in insertion order, then the rest sorted by name.
func (a *VariableAssignment) DependentNames() []string {
	out := make([]string, 0, len(a.dependencies))
	for _, n := range a.domainOrder {
		if _, ok := a.dependencies[n]; ok {
			out = append(out, n)
		}
	}
	var extra []string
	for n := range a.dependencies {
		if _, ok := a.domains[n]; !ok {
			extra = append(extra, n)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}

// Set binds name to v. When a domain exists for name the value must satisfy
// it; unconstrained variables accept any value.
func (a *VariableAssignment) Set(name string, v any) error {
	if d, ok := a.domains[name]; ok && !d.IsValid(v) {
		return newOpError("assignment.set", KindInvalidValue, name,
			fmt.Sprintf("value %v is not valid for domain %s", v, d.Type))
	}
	a.assignments[name] = v
	return nil
}

func (a *VariableAssignment) Get(name string) (any, bool) {
	v, ok := a.assignments[name]
	return v, ok
}

func (a *VariableAssignment) Has(name string) bool {
	_, ok := a.assignments[name]
	return ok
}

func (a *VariableAssignment) Unset(name string) {
	delete(a.assignments, name)
}

// ClearAssignments drops every binding but keeps domains and dependencies.
func (a *VariableAssignment) ClearAssignments() {
	a.assignments = map[string]any{}
}

// Assignments returns a copy of the bindings.
func (a *VariableAssignment) Assignments() map[string]any {
	return cloneMap(a.assignments)
}

// AssignedNames returns the bound names sorted.
func (a *VariableAssignment) AssignedNames() []string {
	out := make([]string, 0, len(a.assignments))
	for k := range a.assignments {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (a *VariableAssignment) Len() int { return len(a.assignments) }

// UnassignedVariables lists domain variables without a binding, in domain
// order.
func (a *VariableAssignment) UnassignedVariables() []string {
	var out []string
	for _, n := range a.domainOrder {
		if _, ok := a.assignments[n]; !ok {
			out = append(out, n)
		}
	}
	return out
}

// IsConsistent reports whether every dependency of every assigned variable
// is itself assigned.
func (a *VariableAssignment) IsConsistent() bool {
	for name, deps := range a.dependencies {
		if _, assigned := a.assignments[name]; !assigned {
			continue
		}
		for _, dep := range deps {
			if _, ok := a.assignments[dep]; !ok {
				return false
			}
		}
	}
	return true
}

// IsComplete reports whether every domain variable is assigned.
func (a *VariableAssignment) IsComplete() bool {
	for _, n := range a.domainOrder {
		if _, ok := a.assignments[n]; !ok {
			return false
		}
	}
	return true
}

// ValidateAll returns one message per assigned value that its domain rejects.
func (a *VariableAssignment) ValidateAll() []string {
	var out []string
	for _, name := range a.AssignedNames() {
		d, ok := a.domains[name]
		if !ok {
			continue
		}
		v := a.assignments[name]
		if !d.IsValid(v) {
			out = append(out, fmt.Sprintf("Variable '%s' has invalid value %v for domain %s", name, v, d.Type))
		}
	}
	return out
}

// Copy returns a fully independent deep copy.
func (a *VariableAssignment) Copy() *VariableAssignment {
	out := &VariableAssignment{
		assignments:  cloneMap(a.assignments),
		domains:      make(map[string]Domain, len(a.domains)),
		domainOrder:  make([]string, len(a.domainOrder)),
		dependencies: a.DependencyMap(),
	}
	copy(out.domainOrder, a.domainOrder)
	for k, d := range a.domains {
		out.domains[k] = d.clone()
	}
	return out
}

// Equal compares bindings, domains and dependency edges. Domain order is not
// significant.
func (a *VariableAssignment) Equal(b *VariableAssignment) bool {
	if a == nil || b == nil {
		return a == b
	}
	if len(a.assignments) != len(b.assignments) ||
		len(a.domains) != len(b.domains) ||
		len(a.dependencies) != len(b.dependencies) {
		return false
	}
	for k, v := range a.assignments {
		w, ok := b.assignments[k]
		if !ok || !SameValue(v, w) {
			return false
		}
	}
	for k, d := range a.domains {
		e, ok := b.domains[k]
		if !ok || d.Name != e.Name || d.Type != e.Type || !constraintsEqual(d.Constraints, e.Constraints) {
			return false
		}
	}
	for k, deps := range a.dependencies {
		other, ok := b.dependencies[k]
		if !ok || !reflect.DeepEqual(normalizeDeps(deps), normalizeDeps(other)) {
			return false
		}
	}
	return true
}

func normalizeDeps(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	return in
}

func constraintsEqual(a, b map[string]any) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		w, ok := b[k]
		if !ok || !constraintValueEqual(v, w) {
			return false
		}
	}
	return true
}

func constraintValueEqual(a, b any) bool {
	la, okA := asList(a)
	lb, okB := asList(b)
	if okA || okB {
		if !okA || !okB || len(la) != len(lb) {
			return false
		}
		for i := range la {
			if !SameValue(la[i], lb[i]) {
				return false
			}
		}
		return true
	}
	return SameValue(a, b)
}

func asList(v any) ([]any, bool) {
	switch t := v.(type) {
	case []any:
		return t, true
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out, true
	}
	return nil, false
}
