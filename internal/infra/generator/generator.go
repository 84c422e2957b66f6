// Package generator builds random candidate structures for a problem.
//
// Component and relationship types come from the problem's generator spec,
// falling back to a generic catalogue. Every structure gets literal
// properties plus the variable declarations its templates attach to
// matching owners.
package generator

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand/v2"
	"sync"

	"github.com/forestbook1/sep-solver-sub001/internal/domain"
	"github.com/forestbook1/sep-solver-sub001/internal/ports"
)

var (
	DefaultComponentTypes    = []string{"processor", "memory", "storage", "network", "sensor", "actuator"}
	DefaultRelationshipTypes = []string{"connects_to", "depends_on", "controls", "monitors"}
)

const (
	defaultMinComponents = 1
	defaultMaxComponents = 5
	maxRelationships     = 10
)

var priorities = []string{"low", "medium", "high"}

type Generator struct {
	spec domain.GeneratorSpec
	log  *slog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

type Option func(*Generator)

// WithSeed makes generation reproducible.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.rng = rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x6a09e667f3bcc909))
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.log = l
		}
	}
}

func New(spec domain.GeneratorSpec, opts ...Option) *Generator {
	if len(spec.ComponentTypes) == 0 {
		spec.ComponentTypes = DefaultComponentTypes
	}
	if len(spec.RelationshipTypes) == 0 {
		spec.RelationshipTypes = DefaultRelationshipTypes
	}
	g := &Generator{
		spec: spec,
		log:  slog.New(slog.NewJSONHandler(io.Discard, nil)),
		rng:  rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

var _ ports.StructureGenerator = (*Generator)(nil)

// Generate builds one structure. Once the configured structure limit is reached,
// or when no component count satisfies the size bounds, it reports
// generation_exhausted.
func (g *Generator) Generate(ctx context.Context, req domain.GenerationRequest) (domain.Structure, error) {
	if err := ctx.Err(); err != nil {
		return domain.Structure{}, err
	}
	if g.spec.MaxStructures > 0 && req.Iteration > g.spec.MaxStructures {
		return domain.Structure{}, domain.NewError("generator.generate", domain.KindGenerationExhausted, "",
			"structure limit of %d reached", g.spec.MaxStructures)
	}

	lo, hi := g.Bounds(req)
	if lo > hi {
		return domain.Structure{}, domain.NewError("generator.generate", domain.KindGenerationExhausted, "",
			"no component count satisfies the bounds [%d, %d]", lo, hi)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	n := g.size(req, lo, hi)
	types, err := g.componentTypes(req, n)
	if err != nil {
		return domain.Structure{}, err
	}

	b := builder{maxVars: req.MaxVariables}
	s := domain.Structure{
		Components:    make([]domain.Component, 0, n),
		Relationships: []domain.Relationship{},
	}
	for i, typ := range types {
		c := domain.Component{
			ID:         fmt.Sprintf("comp_%d", i),
			Type:       typ,
			Properties: g.componentLiterals(),
		}
		b.attach(c.Properties, g.spec.Variables, domain.OwnerComponent, typ)
		s.Components = append(s.Components, c)
	}

	for i, pair := range g.pairs(req.Method, n) {
		typ := g.spec.RelationshipTypes[g.rng.IntN(len(g.spec.RelationshipTypes))]
		r := domain.Relationship{
			ID:         fmt.Sprintf("rel_%d", i),
			SourceID:   s.Components[pair[0]].ID,
			TargetID:   s.Components[pair[1]].ID,
			Type:       typ,
			Properties: g.relationshipLiterals(),
		}
		b.attach(r.Properties, g.spec.Variables, domain.OwnerRelationship, typ)
		s.Relationships = append(s.Relationships, r)
	}

	g.log.Debug("generator.structure",
		"iteration", req.Iteration,
		"strategy", req.Strategy,
		"components", len(s.Components),
		"relationships", len(s.Relationships),
		"variables", b.count,
	)
	return s, nil
}

// Bounds returns the component count range for req: the configured bounds,
// narrowed by any size-bounding constraint and capped by the request's
// maximum structure size.
func (g *Generator) Bounds(req domain.GenerationRequest) (lo, hi int) {
	lo, hi = defaultMinComponents, defaultMaxComponents
	if g.spec.MinComponents > 0 {
		lo = g.spec.MinComponents
	}
	if g.spec.MaxComponents > 0 {
		hi = g.spec.MaxComponents
	}

	if req.Constraints != nil {
		for _, c := range req.Constraints.All() {
			sb, ok := c.(domain.SizeBounded)
			if !ok {
				continue
			}
			cmin, cmax := sb.ComponentBounds()
			if cmin != nil {
				lo = max(lo, *cmin)
			}
			if cmax != nil {
				hi = min(hi, *cmax)
			}
		}
	}

	if req.MaxSize > 0 {
		hi = min(hi, req.MaxSize)
	}
	return max(lo, 1), hi
}

// size picks the component count. Breadth-first sweeps sizes upward,
// depth-first downward, best-first stays near the best size seen so far.
func (g *Generator) size(req domain.GenerationRequest, lo, hi int) int {
	span := hi - lo + 1
	step := max(req.Iteration-1, 0)

	switch req.Strategy {
	case domain.ExploreBreadthFirst:
		return lo + step%span
	case domain.ExploreDepthFirst:
		return hi - step%span
	case domain.ExploreBestFirst:
		if req.BestSize > 0 {
			n := req.BestSize + g.rng.IntN(3) - 1
			return min(max(n, lo), hi)
		}
	}
	return lo + g.rng.IntN(span)
}

func (g *Generator) componentTypes(req domain.GenerationRequest, n int) ([]string, error) {
	catalogue := g.spec.ComponentTypes
	out := make([]string, n)

	switch req.Method {
	case domain.AssignRandom, "":
		for i := range out {
			out[i] = catalogue[g.rng.IntN(len(catalogue))]
		}
	case domain.AssignSystematic:
		for i := range out {
			out[i] = catalogue[(req.Iteration+i)%len(catalogue)]
		}
	case domain.AssignHeuristic:
		// Cover distinct types first, then fill at random.
		perm := g.rng.Perm(len(catalogue))
		for i := range out {
			if i < len(perm) {
				out[i] = catalogue[perm[i]]
				continue
			}
			out[i] = catalogue[g.rng.IntN(len(catalogue))]
		}
	default:
		return nil, domain.NewError("generator.generate", domain.KindUnknownStrategy, "",
			"Unknown structure generation strategy: %s", req.Method)
	}
	return out, nil
}

// pairs returns distinct ordered endpoint pairs. Systematic and heuristic
// generation start from a chain so every structure is connected.
func (g *Generator) pairs(method domain.AssignmentStrategy, n int) [][2]int {
	if n < 2 {
		return nil
	}
	limit := min(2*n, maxRelationships, n*(n-1))
	want := 1 + g.rng.IntN(limit)

	seen := map[[2]int]bool{}
	out := make([][2]int, 0, want)
	add := func(p [2]int) {
		if p[0] != p[1] && !seen[p] && len(out) < want {
			seen[p] = true
			out = append(out, p)
		}
	}

	if method == domain.AssignSystematic || method == domain.AssignHeuristic {
		want = max(want, n-1)
		for i := 0; i+1 < n; i++ {
			add([2]int{i, i + 1})
		}
	}
	for attempts := 0; len(out) < want && attempts < want*10; attempts++ {
		add([2]int{g.rng.IntN(n), g.rng.IntN(n)})
	}
	return out
}

func (g *Generator) componentLiterals() domain.Properties {
	return domain.Properties{
		"capacity": domain.Literal(1 + g.rng.IntN(100)),
		"priority": domain.Literal(priorities[g.rng.IntN(len(priorities))]),
		"active":   domain.Literal(g.rng.IntN(2) == 1),
	}
}

func (g *Generator) relationshipLiterals() domain.Properties {
	strength := 0.1 + g.rng.Float64()*0.9
	return domain.Properties{
		"strength":      domain.Literal(math.Round(strength*100) / 100),
		"bidirectional": domain.Literal(g.rng.IntN(2) == 1),
	}
}

// builder attaches variable templates while keeping the per-structure
// variable budget.
type builder struct {
	maxVars int
	count   int
}

func (b *builder) attach(props domain.Properties, templates []domain.VariableTemplate, owner domain.OwnerKind, typ string) {
	for _, t := range templates {
		if !t.Matches(owner, typ) {
			continue
		}
		if b.maxVars > 0 && b.count >= b.maxVars {
			return
		}
		props[t.Property] = domain.Variable(t.Declaration)
		b.count++
	}
}
