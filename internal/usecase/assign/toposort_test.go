package assign

import (
	"testing"

	"github.com/forestbook1/sep-solver-sub001/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withDomains(names ...string) *domain.VariableAssignment {
	va := domain.NewVariableAssignment()
	for _, n := range names {
		va.AddDomain(domain.NewDomain(n, domain.TypeInt, map[string]any{"min": 0, "max": 3}))
	}
	return va
}

func TestTopologicalSortOrdersDependenciesFirst(t *testing.T) {
	va := withDomains("c", "b", "a", "d")
	va.AddDependency("c", []string{"b"})
	va.AddDependency("b", []string{"a"})
	va.AddDependency("d", []string{"a", "ghost"})

	ord := TopologicalSort(va)
	assert.False(t, ord.HadCycle)
	assert.Equal(t, []string{"a", "b", "d", "c"}, ord.Order)
}

func TestTopologicalSortWithoutDependencies(t *testing.T) {
	ord := TopologicalSort(withDomains("x", "y"))
	assert.False(t, ord.HadCycle)
	assert.Equal(t, []string{"x", "y"}, ord.Order)
}

func TestTopologicalSortCycleFallsBack(t *testing.T) {
	va := withDomains("A", "B", "C")
	va.AddDependency("A", []string{"B"})
	va.AddDependency("B", []string{"A"})

	ord := TopologicalSort(va)
	assert.True(t, ord.HadCycle)
	assert.ElementsMatch(t, []string{"A", "B", "C"}, ord.Order)
}

func TestAssignSurvivesCycles(t *testing.T) {
	s := domain.Structure{Components: []domain.Component{{ID: "c", Properties: domain.Properties{
		"A": intVar(0, 5, "B"),
		"B": intVar(0, 5, "A"),
	}}}}

	for _, strategy := range strategies {
		va, err := New(WithSeed(3)).Assign(s, strategy)
		require.NoError(t, err, strategy)
		assert.True(t, va.IsComplete(), strategy)
		assert.ElementsMatch(t, []string{"c.A", "c.B"}, TopologicalSort(va).Order)
	}
}
