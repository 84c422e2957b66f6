package evaluate

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/forestbook1/sep-solver-sub001/internal/domain"
)

// Factory builds a constraint from its declarative form.
type Factory func(spec domain.ConstraintSpec) (domain.Constraint, error)

// Registry maps constraint kinds to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns a registry holding every built-in kind.
func NewRegistry() *Registry {
	r := &Registry{factories: map[string]Factory{}}
	r.Register(KindComponentCount, buildComponentCount)
	r.Register(KindVariableRange, buildVariableRange)
	r.Register(KindComponentProperty, buildComponentProperty)
	r.Register(KindRelationshipPattern, buildRelationshipPattern)
	r.Register(KindVariableDependency, buildVariableDependency)
	r.Register(KindResource, buildResource)
	r.Register(KindConnectivity, buildConnectivity)
	r.Register(KindPath, buildPath)
	return r
}

// Register adds or replaces the factory for kind.
func (r *Registry) Register(kind string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[kind] = f
}

func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.factories))
	for k := range r.factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Build turns one spec into a constraint.
func (r *Registry) Build(spec domain.ConstraintSpec) (domain.Constraint, error) {
	if strings.TrimSpace(spec.ID) == "" {
		return nil, domain.NewError("constraints.build", domain.KindInvalidConfig, "", "constraint id is required")
	}
	r.mu.RLock()
	f, ok := r.factories[spec.Kind]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.NewError("constraints.build", domain.KindInvalidConfig, spec.ID,
			"unknown constraint kind %q (known: %s)", spec.Kind, strings.Join(r.Kinds(), ", "))
	}
	return f(spec)
}

// BuildSet builds every spec into one set; ids must be unique.
func (r *Registry) BuildSet(specs []domain.ConstraintSpec) (*domain.ConstraintSet, error) {
	set := &domain.ConstraintSet{}
	for _, spec := range specs {
		c, err := r.Build(spec)
		if err != nil {
			return nil, err
		}
		if err := set.Add(c); err != nil {
			return nil, err
		}
	}
	return set, nil
}

func done(c domain.Constraint, err error) (domain.Constraint, error) {
	if err != nil {
		return nil, err
	}
	return c, nil
}

func specBase(spec domain.ConstraintSpec, cat domain.ConstraintCategory, fallback string) base {
	desc := spec.Description
	if desc == "" {
		desc = fallback
	}
	return newBase(spec.ID, spec.Kind, cat, spec.Severity, desc)
}

func buildComponentCount(spec domain.ConstraintSpec) (domain.Constraint, error) {
	p := params{spec: spec}
	c := ComponentCount{
		Min:  p.optInt("min"),
		Max:  p.optInt("max"),
		Type: p.optString("component_type"),
	}
	if p.err == nil && c.Min == nil && c.Max == nil {
		p.fail("min", "min or max is required")
	}
	if p.err == nil && c.Min != nil && c.Max != nil && *c.Min > *c.Max {
		p.fail("min", "min is greater than max")
	}
	c.base = specBase(spec, domain.CategoryStructural, "Component count bounds")
	return done(c, p.err)
}

func buildVariableRange(spec domain.ConstraintSpec) (domain.Constraint, error) {
	p := params{spec: spec}
	c := VariableRange{
		Variable: p.str("variable"),
		Min:      p.optFloat("min"),
		Max:      p.optFloat("max"),
	}
	if p.err == nil && c.Min == nil && c.Max == nil {
		p.fail("min", "min or max is required")
	}
	c.base = specBase(spec, domain.CategoryVariable, fmt.Sprintf("Range of %s", c.Variable))
	return done(c, p.err)
}

func buildComponentProperty(spec domain.ConstraintSpec) (domain.Constraint, error) {
	p := params{spec: spec}
	c := ComponentProperty{
		ComponentType: p.optString("component_type"),
		ComponentID:   p.optString("component_id"),
		Property:      p.str("property"),
		Expected:      spec.Params["equals"],
		Min:           p.optFloat("min"),
		Max:           p.optFloat("max"),
	}
	c.base = specBase(spec, domain.CategoryStructural,
		fmt.Sprintf("Component %s property %s constraint", c.ComponentType, c.Property))
	return done(c, p.err)
}

func buildRelationshipPattern(spec domain.ConstraintSpec) (domain.Constraint, error) {
	p := params{spec: spec}
	c := RelationshipPattern{
		SourceType:       p.str("source_type"),
		TargetType:       p.str("target_type"),
		RelationshipType: p.optString("relationship_type"),
		Required:         p.optBool("required", true),
	}
	c.base = specBase(spec, domain.CategoryStructural,
		fmt.Sprintf("Relationship pattern %s -> %s via %s", c.SourceType, c.TargetType, c.RelationshipType))
	return done(c, p.err)
}

func buildVariableDependency(spec domain.ConstraintSpec) (domain.Constraint, error) {
	p := params{spec: spec}
	c := VariableDependency{Dependent: p.str("variable"), Rules: map[string]Condition{}}

	raw, ok := spec.Params["rules"].(map[string]any)
	if p.err == nil && (!ok || len(raw) == 0) {
		p.fail("rules", "rules must be a non-empty mapping")
	}
	for name, r := range raw {
		obj, isObj := r.(map[string]any)
		if !isObj {
			c.Rules[name] = Condition{Equals: r}
			continue
		}
		sub := params{spec: domain.ConstraintSpec{ID: spec.ID, Params: obj}, prefix: "rules." + name + "."}
		c.Rules[name] = Condition{
			Equals:    obj["equals"],
			NotEquals: obj["not_equals"],
			Min:       sub.optFloat("min"),
			Max:       sub.optFloat("max"),
		}
		if sub.err != nil && p.err == nil {
			p.err = sub.err
		}
	}
	c.base = specBase(spec, domain.CategoryVariable, fmt.Sprintf("Variable dependency constraint for %s", c.Dependent))
	return done(c, p.err)
}

func buildResource(spec domain.ConstraintSpec) (domain.Constraint, error) {
	p := params{spec: spec}
	c := Resource{Name: p.str("resource")}
	if m := p.optFloat("max_usage"); m != nil {
		c.MaxUsage = *m
	} else if p.err == nil {
		p.fail("max_usage", "max_usage is required")
	}
	c.base = specBase(spec, domain.CategoryGlobal, fmt.Sprintf("Resource constraint for %s", c.Name))
	return done(c, p.err)
}

func buildConnectivity(spec domain.ConstraintSpec) (domain.Constraint, error) {
	p := params{spec: spec}
	mode := ConnectivityMode(p.optString("mode"))
	if mode == "" {
		mode = Connected
	}
	switch mode {
	case Connected, FullyConnected, Acyclic:
	default:
		if p.err == nil {
			p.fail("mode", fmt.Sprintf("unknown mode %q (want connected, fully_connected or acyclic)", mode))
		}
	}
	c := Connectivity{Mode: mode}
	c.base = specBase(spec, domain.CategoryStructural, fmt.Sprintf("Connectivity constraint: %s", mode))
	return done(c, p.err)
}

func buildPath(spec domain.ConstraintSpec) (domain.Constraint, error) {
	p := params{spec: spec}
	c := Path{Expr: p.str("path")}
	c.Rules = domain.PathCheck{
		Exists:   p.optBool("exists", false),
		Eq:       p.optStringPtr("eq"),
		Contains: p.optStringPtr("contains"),
		Matches:  p.optStringPtr("matches"),
		Gt:       p.optFloat("gt"),
		Lt:       p.optFloat("lt"),
		Count:    p.optInt("count"),
	}
	if p.err == nil && c.Rules.IsEmpty() {
		p.fail("path", "at least one check (exists, eq, contains, matches, gt, lt, count) is required")
	}
	c.base = specBase(spec, domain.CategoryGlobal, fmt.Sprintf("Document check at %s", c.Expr))
	return done(c, p.err)
}

// params reads typed values out of a spec and keeps the first error.
type params struct {
	spec   domain.ConstraintSpec
	prefix string
	err    error
}

func (p *params) fail(key, msg string) {
	if p.err != nil {
		return
	}
	p.err = domain.NewError("constraints.build", domain.KindInvalidConfig,
		fmt.Sprintf("constraints[%s].%s%s", p.spec.ID, p.prefix, key), "%s", msg)
}

func (p *params) str(key string) string {
	s := p.optString(key)
	if s == "" {
		p.fail(key, key+" is required")
	}
	return s
}

func (p *params) optString(key string) string {
	raw, ok := p.spec.Params[key]
	if !ok || raw == nil {
		return ""
	}
	s, ok := raw.(string)
	if !ok {
		p.fail(key, fmt.Sprintf("expected string, got %T", raw))
		return ""
	}
	return strings.TrimSpace(s)
}

// optStringPtr accepts scalars of any type; eq: 3 compares against "3".
func (p *params) optStringPtr(key string) *string {
	raw, ok := p.spec.Params[key]
	if !ok || raw == nil {
		return nil
	}
	s, isStr := raw.(string)
	if !isStr {
		s = fmt.Sprint(raw)
	}
	return &s
}

func (p *params) optFloat(key string) *float64 {
	raw, ok := p.spec.Params[key]
	if !ok || raw == nil {
		return nil
	}
	f, num := domain.ToFloat(raw)
	if !num {
		p.fail(key, fmt.Sprintf("expected number, got %T", raw))
		return nil
	}
	return &f
}

func (p *params) optInt(key string) *int {
	f := p.optFloat(key)
	if f == nil {
		return nil
	}
	if *f != float64(int(*f)) {
		p.fail(key, fmt.Sprintf("expected integer, got %v", *f))
		return nil
	}
	n := int(*f)
	return &n
}

func (p *params) optBool(key string, def bool) bool {
	raw, ok := p.spec.Params[key]
	if !ok || raw == nil {
		return def
	}
	b, ok := raw.(bool)
	if !ok {
		p.fail(key, fmt.Sprintf("expected bool, got %T", raw))
		return def
	}
	return b
}
