package generator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forestbook1/sep-solver-sub001/internal/domain"
)

func ip(n int) *int { return &n }

type sizeConstraint struct{ lo, hi *int }

func (sizeConstraint) ID() string                          { return "size" }
func (sizeConstraint) Kind() string                        { return "component_count" }
func (sizeConstraint) Category() domain.ConstraintCategory { return domain.CategoryStructural }
func (sizeConstraint) Severity() domain.Severity           { return domain.SeverityError }
func (sizeConstraint) Description() string                 { return "size" }
func (sizeConstraint) Check(domain.DesignObject) (bool, string) {
	return true, ""
}
func (c sizeConstraint) ComponentBounds() (lo, hi *int) { return c.lo, c.hi }

func req(iter int) domain.GenerationRequest {
	return domain.GenerationRequest{
		Strategy:  domain.ExploreRandom,
		Method:    domain.AssignRandom,
		Iteration: iter,
		MaxSize:   100,
	}
}

func TestGenerateProducesValidStructures(t *testing.T) {
	g := New(domain.GeneratorSpec{}, WithSeed(3))

	for i := 1; i <= 50; i++ {
		s, err := g.Generate(context.Background(), req(i))
		require.NoError(t, err)
		require.True(t, s.IsValid(), s.ValidationErrors())
		assert.GreaterOrEqual(t, len(s.Components), 1)
		assert.LessOrEqual(t, len(s.Components), 5)

		for _, c := range s.Components {
			assert.Contains(t, DefaultComponentTypes, c.Type)
			capacity := c.Properties["capacity"].Value().(int)
			assert.True(t, capacity >= 1 && capacity <= 100)
		}
		for _, r := range s.Relationships {
			assert.NotEqual(t, r.SourceID, r.TargetID)
			assert.Contains(t, DefaultRelationshipTypes, r.Type)
			strength := r.Properties["strength"].Value().(float64)
			assert.True(t, strength >= 0.1 && strength <= 1.0)
		}
		if len(s.Components) > 1 {
			assert.NotEmpty(t, s.Relationships)
			assert.LessOrEqual(t, len(s.Relationships), min(2*len(s.Components), 10))
		}
	}
}

func TestGenerateIsDeterministicUnderSeed(t *testing.T) {
	a := New(domain.GeneratorSpec{}, WithSeed(42))
	b := New(domain.GeneratorSpec{}, WithSeed(42))
	for i := 1; i <= 5; i++ {
		sa, err := a.Generate(context.Background(), req(i))
		require.NoError(t, err)
		sb, err := b.Generate(context.Background(), req(i))
		require.NoError(t, err)
		assert.Equal(t, sa, sb)
	}
}

func TestBounds(t *testing.T) {
	set, err := domain.NewConstraintSet(sizeConstraint{lo: ip(2), hi: ip(8)})
	require.NoError(t, err)

	g := New(domain.GeneratorSpec{MaxComponents: 6})
	r := req(1)
	r.Constraints = set

	lo, hi := g.Bounds(r)
	assert.Equal(t, 2, lo)
	assert.Equal(t, 6, hi)

	r.MaxSize = 4
	_, hi = g.Bounds(r)
	assert.Equal(t, 4, hi)
}

func TestGenerateSizeSweeps(t *testing.T) {
	g := New(domain.GeneratorSpec{MinComponents: 2, MaxComponents: 4}, WithSeed(1))

	sizes := func(strategy domain.ExplorationStrategy) []int {
		var out []int
		for i := 1; i <= 4; i++ {
			r := req(i)
			r.Strategy = strategy
			s, err := g.Generate(context.Background(), r)
			require.NoError(t, err)
			out = append(out, len(s.Components))
		}
		return out
	}

	assert.Equal(t, []int{2, 3, 4, 2}, sizes(domain.ExploreBreadthFirst))
	assert.Equal(t, []int{4, 3, 2, 4}, sizes(domain.ExploreDepthFirst))

	r := req(1)
	r.Strategy = domain.ExploreBestFirst
	r.BestSize = 3
	for i := 0; i < 20; i++ {
		s, err := g.Generate(context.Background(), r)
		require.NoError(t, err)
		assert.InDelta(t, 3, len(s.Components), 1)
	}
}

func TestGenerateSystematicChainsComponents(t *testing.T) {
	g := New(domain.GeneratorSpec{MinComponents: 4, MaxComponents: 4, ComponentTypes: []string{"a", "b"}}, WithSeed(9))
	r := req(1)
	r.Method = domain.AssignSystematic

	s, err := g.Generate(context.Background(), r)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a", "b", "a"}, []string{s.Components[0].Type, s.Components[1].Type, s.Components[2].Type, s.Components[3].Type})
	require.GreaterOrEqual(t, len(s.Relationships), 3)
	for i := 0; i < 3; i++ {
		assert.Equal(t, s.Components[i].ID, s.Relationships[i].SourceID)
		assert.Equal(t, s.Components[i+1].ID, s.Relationships[i].TargetID)
	}
}

func TestGenerateHeuristicCoversTypes(t *testing.T) {
	types := []string{"x", "y", "z"}
	g := New(domain.GeneratorSpec{MinComponents: 3, MaxComponents: 3, ComponentTypes: types}, WithSeed(5))
	r := req(1)
	r.Method = domain.AssignHeuristic

	s, err := g.Generate(context.Background(), r)
	require.NoError(t, err)
	assert.ElementsMatch(t, types, s.ComponentTypes())
}

func TestGenerateAttachesVariables(t *testing.T) {
	spec := domain.GeneratorSpec{
		MinComponents:  3,
		MaxComponents:  3,
		ComponentTypes: []string{"processor"},
		Variables: []domain.VariableTemplate{
			{Owner: domain.OwnerComponent, OwnerType: "processor", Property: "speed",
				Declaration: domain.VariableDeclaration{Type: domain.TypeInt, Constraints: map[string]any{"min": 0, "max": 100}}},
			{Owner: domain.OwnerComponent, Property: "mode",
				Declaration: domain.VariableDeclaration{Type: domain.TypeEnum, Constraints: map[string]any{"values": []any{"eco"}}}},
			{Owner: domain.OwnerRelationship, Property: "latency",
				Declaration: domain.VariableDeclaration{Type: domain.TypeFloat}},
		},
	}
	g := New(spec, WithSeed(2))

	s, err := g.Generate(context.Background(), req(1))
	require.NoError(t, err)
	for _, c := range s.Components {
		decl, ok := c.Properties["speed"].Declaration()
		require.True(t, ok)
		assert.Equal(t, domain.TypeInt, decl.Type)
		assert.True(t, c.Properties["mode"].IsVariable())
	}
	for _, r := range s.Relationships {
		assert.True(t, r.Properties["latency"].IsVariable())
	}

	capped := req(1)
	capped.MaxVariables = 4
	s, err = g.Generate(context.Background(), capped)
	require.NoError(t, err)
	count := 0
	for _, c := range s.Components {
		for _, p := range c.Properties {
			if p.IsVariable() {
				count++
			}
		}
	}
	assert.Equal(t, 4, count)
}

func TestGenerateExhaustion(t *testing.T) {
	g := New(domain.GeneratorSpec{MaxStructures: 2})
	for i := 1; i <= 2; i++ {
		_, err := g.Generate(context.Background(), req(i))
		require.NoError(t, err)
	}
	_, err := g.Generate(context.Background(), req(3))
	assert.True(t, errors.Is(err, domain.ErrGenerationExhausted))

	empty := New(domain.GeneratorSpec{MinComponents: 6})
	r := req(1)
	r.MaxSize = 3
	_, err = empty.Generate(context.Background(), r)
	assert.True(t, domain.IsKind(err, domain.KindGenerationExhausted))
}

func TestGenerateErrors(t *testing.T) {
	g := New(domain.GeneratorSpec{})

	r := req(1)
	r.Method = "genetic"
	_, err := g.Generate(context.Background(), r)
	assert.True(t, domain.IsKind(err, domain.KindUnknownStrategy))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = g.Generate(ctx, req(1))
	assert.ErrorIs(t, err, context.Canceled)
}
