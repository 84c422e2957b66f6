// Package assign binds values to the variables a structure declares.
//
// Variables are properties tagged as declarations on components and
// relationships. Each becomes a Domain named "<owner_id>.<property>".
// Dependencies between variables decide assignment order for the
// systematic strategy and drive conflict repair after modifications.
package assign

import (
	"io"
	"log/slog"
	"math/rand/v2"
	"strings"

	"github.com/forestbook1/sep-solver-sub001/internal/domain"
	"github.com/forestbook1/sep-solver-sub001/internal/ports"
)

type Assigner struct {
	rng *rand.Rand
	log *slog.Logger
}

type Option func(*Assigner)

// WithSeed makes random assignment reproducible.
func WithSeed(seed int64) Option {
	return func(a *Assigner) {
		a.rng = rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(a *Assigner) {
		if l != nil {
			a.log = l
		}
	}
}

func New(opts ...Option) *Assigner {
	a := &Assigner{
		rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		log: slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

var _ ports.VariableAssigner = (*Assigner)(nil)

// Assign extracts the structure's variables and fills every domain using
// strategy.
func (a *Assigner) Assign(s domain.Structure, strategy domain.AssignmentStrategy) (*domain.VariableAssignment, error) {
	va := a.ExtractVariables(s)
	for _, d := range va.Domains() {
		if err := d.Check(); err != nil {
			return nil, &domain.OpError{
				Op:   "assign.domain",
				Kind: domain.KindInvalidValue,
				Path: d.Name,
				Err:  err,
			}
		}
	}

	var err error
	switch strategy {
	case domain.AssignRandom:
		err = a.assignRandom(va)
	case domain.AssignSystematic:
		err = a.assignSystematic(va)
	case domain.AssignHeuristic:
		err = a.assignHeuristic(va)
	default:
		return nil, domain.NewError("assign", domain.KindUnknownStrategy, "",
			"Unknown assignment strategy: %s", strategy)
	}
	if err != nil {
		return nil, err
	}

	a.log.Debug("assign.done", "strategy", strategy, "variables", va.Len())
	return va, nil
}

// ExtractVariables builds an assignment holding one domain per declared
// variable and its dependency edges, with nothing bound yet.
//
// Components are scanned before relationships so that relationship
// dependencies can be checked against the component domains.
func (a *Assigner) ExtractVariables(s domain.Structure) *domain.VariableAssignment {
	va := domain.NewVariableAssignment()

	for _, c := range s.Components {
		for _, prop := range c.Properties.Names() {
			decl, ok := c.Properties[prop].Declaration()
			if !ok {
				continue
			}
			name := c.ID + "." + prop
			va.AddDomain(domain.NewDomain(name, decl.Type, decl.Constraints))
			if len(decl.DependsOn) == 0 {
				continue
			}
			deps := make([]string, 0, len(decl.DependsOn))
			for _, dep := range decl.DependsOn {
				if qualified(dep) {
					deps = append(deps, dep)
					continue
				}
				deps = append(deps, c.ID+"."+dep)
			}
			va.AddDependency(name, deps)
		}
	}

	for _, r := range s.Relationships {
		for _, prop := range r.Properties.Names() {
			decl, ok := r.Properties[prop].Declaration()
			if !ok {
				continue
			}
			name := r.ID + "." + prop
			va.AddDomain(domain.NewDomain(name, decl.Type, decl.Constraints))
			if len(decl.DependsOn) == 0 {
				continue
			}
			deps := make([]string, 0, len(decl.DependsOn))
			for _, dep := range decl.DependsOn {
				if qualified(dep) {
					deps = append(deps, dep)
					continue
				}
				deps = append(deps, a.resolveEndpointDependency(va, r, name, dep)...)
			}
			va.AddDependency(name, deps)
		}
	}

	return va
}

// resolveEndpointDependency maps an unqualified dependency of a
// relationship variable onto its endpoints. When exactly one endpoint
// declares the property only that edge is kept; otherwise both are kept and
// the double resolution is logged.
func (a *Assigner) resolveEndpointDependency(va *domain.VariableAssignment, r domain.Relationship, name, dep string) []string {
	src := r.SourceID + "." + dep
	dst := r.TargetID + "." + dep
	if src == dst {
		return []string{src}
	}

	_, srcDeclared := va.Domain(src)
	_, dstDeclared := va.Domain(dst)
	switch {
	case srcDeclared && !dstDeclared:
		return []string{src}
	case dstDeclared && !srcDeclared:
		return []string{dst}
	}

	a.log.Warn("assign.dependency.ambiguous",
		"variable", name,
		"dependency", dep,
		"source", src,
		"target", dst,
		"both_declared", srcDeclared && dstDeclared,
	)
	return []string{src, dst}
}

// AssignmentSpace describes the structure's variables without binding them.
func (a *Assigner) AssignmentSpace(s domain.Structure) domain.AssignmentSpace {
	return domain.NewAssignmentSpace(a.ExtractVariables(s))
}

func qualified(dep string) bool {
	return strings.Contains(dep, ".")
}
