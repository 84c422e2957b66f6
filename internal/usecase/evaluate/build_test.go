package evaluate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forestbook1/sep-solver-sub001/internal/domain"
)

func TestBuildSetFromSpecs(t *testing.T) {
	specs := []domain.ConstraintSpec{
		{ID: "size", Kind: KindComponentCount, Params: map[string]any{"min": 2, "max": 6}},
		{ID: "cap", Kind: KindVariableRange, Params: map[string]any{"variable": "cpu.capacity", "max": 80}},
		{ID: "wired", Kind: KindRelationshipPattern, Params: map[string]any{
			"source_type": "processor", "target_type": "memory", "relationship_type": "connects_to",
		}},
		{ID: "turbo", Kind: KindVariableDependency, Severity: domain.SeverityWarning, Params: map[string]any{
			"variable": "cpu.mode",
			"rules":    map[string]any{"cpu.capacity": map[string]any{"min": 50}, "cpu.mode": "boost"},
		}},
		{ID: "power", Kind: KindResource, Params: map[string]any{"resource": "power", "max_usage": 30.0}},
		{ID: "shape", Kind: KindConnectivity, Params: map[string]any{"mode": "acyclic"}},
		{ID: "ids", Kind: KindPath, Params: map[string]any{"path": "$.id", "matches": "^candidate_"}},
		{ID: "ram", Kind: KindComponentProperty, Params: map[string]any{"component_type": "memory", "property": "capacity", "min": 8}},
	}

	set, err := NewRegistry().BuildSet(specs)
	require.NoError(t, err)
	assert.Equal(t, 8, set.Len())
	assert.Equal(t, map[domain.ConstraintCategory]int{
		domain.CategoryStructural: 4,
		domain.CategoryVariable:   2,
		domain.CategoryGlobal:     2,
	}, set.Count())

	c, ok := set.Get("turbo")
	require.True(t, ok)
	assert.Equal(t, domain.SeverityWarning, c.Severity())
	assert.Equal(t, "Variable dependency constraint for cpu.mode", c.Description())

	size, _ := set.Get("size")
	bounded, ok := size.(domain.SizeBounded)
	require.True(t, ok)
	lo, hi := bounded.ComponentBounds()
	assert.Equal(t, 2, *lo)
	assert.Equal(t, 6, *hi)

	res := New(set).Evaluate(system(t))
	assert.True(t, res.IsValid, "%v", res.Violations)
}

func TestBuildRejectsBadSpecs(t *testing.T) {
	tests := []struct {
		name string
		spec domain.ConstraintSpec
		kind domain.ErrorKind
		path string
	}{
		{"missing id", domain.ConstraintSpec{Kind: KindComponentCount}, domain.KindInvalidConfig, ""},
		{"unknown kind", domain.ConstraintSpec{ID: "x", Kind: "magic"}, domain.KindInvalidConfig, "x"},
		{"no bounds", domain.ConstraintSpec{ID: "c", Kind: KindComponentCount}, domain.KindInvalidConfig, "constraints[c].min"},
		{"inverted", domain.ConstraintSpec{ID: "c", Kind: KindComponentCount, Params: map[string]any{"min": 5, "max": 1}}, domain.KindInvalidConfig, "constraints[c].min"},
		{"fractional count", domain.ConstraintSpec{ID: "c", Kind: KindComponentCount, Params: map[string]any{"min": 1.5}}, domain.KindInvalidConfig, "constraints[c].min"},
		{"missing variable", domain.ConstraintSpec{ID: "v", Kind: KindVariableRange, Params: map[string]any{"max": 1}}, domain.KindInvalidConfig, "constraints[v].variable"},
		{"string bound", domain.ConstraintSpec{ID: "v", Kind: KindVariableRange, Params: map[string]any{"variable": "a", "max": "ten"}}, domain.KindInvalidConfig, "constraints[v].max"},
		{"no rules", domain.ConstraintSpec{ID: "d", Kind: KindVariableDependency, Params: map[string]any{"variable": "a"}}, domain.KindInvalidConfig, "constraints[d].rules"},
		{"bad rule bound", domain.ConstraintSpec{ID: "d", Kind: KindVariableDependency, Params: map[string]any{
			"variable": "a", "rules": map[string]any{"b": map[string]any{"min": "low"}},
		}}, domain.KindInvalidConfig, "constraints[d].rules.b.min"},
		{"no max usage", domain.ConstraintSpec{ID: "r", Kind: KindResource, Params: map[string]any{"resource": "power"}}, domain.KindInvalidConfig, "constraints[r].max_usage"},
		{"bad mode", domain.ConstraintSpec{ID: "g", Kind: KindConnectivity, Params: map[string]any{"mode": "ring"}}, domain.KindInvalidConfig, "constraints[g].mode"},
		{"no checks", domain.ConstraintSpec{ID: "p", Kind: KindPath, Params: map[string]any{"path": "$.id"}}, domain.KindInvalidConfig, "constraints[p].path"},
		{"required flag type", domain.ConstraintSpec{ID: "w", Kind: KindRelationshipPattern, Params: map[string]any{
			"source_type": "a", "target_type": "b", "required": "yes",
		}}, domain.KindInvalidConfig, "constraints[w].required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewRegistry().Build(tt.spec)
			require.Error(t, err)
			assert.Nil(t, c)
			assert.True(t, domain.IsKind(err, tt.kind), "%v", err)
			var oe *domain.OpError
			require.ErrorAs(t, err, &oe)
			assert.Equal(t, tt.path, oe.Path)
		})
	}
}

func TestBuildSetRejectsDuplicateIDs(t *testing.T) {
	spec := domain.ConstraintSpec{ID: "same", Kind: KindConnectivity}
	_, err := NewRegistry().BuildSet([]domain.ConstraintSpec{spec, spec})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate constraint id "same"`)
}

func TestRegistryAcceptsCustomKinds(t *testing.T) {
	r := NewRegistry()
	r.Register("even", func(spec domain.ConstraintSpec) (domain.Constraint, error) {
		return NewFunc(spec.ID, domain.CategoryStructural, "even", func(o domain.DesignObject) (bool, string) {
			return len(o.Structure.Components)%2 == 0, "odd"
		}), nil
	})
	assert.Contains(t, r.Kinds(), "even")

	c, err := r.Build(domain.ConstraintSpec{ID: "e", Kind: "even"})
	require.NoError(t, err)
	ok, _ := c.Check(system(t))
	assert.False(t, ok)
}
