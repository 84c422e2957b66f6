package evaluate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forestbook1/sep-solver-sub001/internal/domain"
)

type panicky struct{ base }

func (panicky) Check(domain.DesignObject) (bool, string) { panic("boom") }

func TestEvaluatorReportsViolations(t *testing.T) {
	set, err := domain.NewConstraintSet(
		ComponentCount{base: newBase("size", KindComponentCount, domain.CategoryStructural, "", "size"), Max: ip(2)},
		VariableRange{base: newBase("cap", KindVariableRange, domain.CategoryVariable, "", "cap"), Variable: "cpu.capacity", Max: fp(100)},
	)
	require.NoError(t, err)

	res := New(set).Evaluate(system(t))
	assert.False(t, res.IsValid)
	assert.Equal(t, 2, res.Checked)
	require.Len(t, res.Violations, 1)

	v := res.Violations[0]
	assert.Equal(t, "size", v.ConstraintID)
	assert.Equal(t, KindComponentCount, v.ConstraintType)
	assert.Equal(t, domain.SeverityError, v.Severity)
	assert.Equal(t, "Structure has 3 components, maximum is 2", v.Message)
	assert.Equal(t, "candidate_1", v.Context["design_object_id"])
	assert.Equal(t, 3, v.Context["component_count"])
	assert.InDelta(t, 0.5, res.SatisfactionRatio(), 1e-9)
}

func TestWarningsDoNotInvalidate(t *testing.T) {
	set, err := domain.NewConstraintSet(
		ComponentCount{base: newBase("soft", KindComponentCount, domain.CategoryStructural, domain.SeverityWarning, "soft"), Max: ip(1)},
	)
	require.NoError(t, err)

	res := New(set).Evaluate(system(t))
	assert.True(t, res.IsValid)
	require.Len(t, res.Violations, 1)
	assert.Equal(t, domain.SeverityWarning, res.Violations[0].Severity)
}

func TestPanickingConstraintCountsAsViolated(t *testing.T) {
	set, err := domain.NewConstraintSet(panicky{newBase("bad", "custom", domain.CategoryGlobal, "", "bad")})
	require.NoError(t, err)

	var res domain.EvaluationResult
	require.NotPanics(t, func() { res = New(set).Evaluate(system(t)) })
	assert.False(t, res.IsValid)
	require.Len(t, res.Violations, 1)
	assert.Equal(t, "Constraint bad could not be evaluated: boom", res.Violations[0].Message)
}

func TestCustomChecksOverrideKinds(t *testing.T) {
	set, err := domain.NewConstraintSet(
		Resource{base: newBase("power", KindResource, domain.CategoryGlobal, "", "power"), Name: "power", MaxUsage: 28},
	)
	require.NoError(t, err)
	ev := New(set)
	assert.False(t, ev.Evaluate(system(t)).IsValid)

	// allow ten percent headroom
	ev.RegisterCheck(KindResource, func(c domain.Constraint, obj domain.DesignObject) (bool, string) {
		r := c.(Resource)
		return r.Usage(obj) <= r.MaxUsage*1.1, "over budget"
	})
	assert.Equal(t, []string{KindResource}, ev.CustomChecks())
	assert.True(t, ev.Evaluate(system(t)).IsValid)

	assert.True(t, ev.UnregisterCheck(KindResource))
	assert.False(t, ev.UnregisterCheck(KindResource))
	assert.False(t, ev.Evaluate(system(t)).IsValid)
}

func TestEvaluateCategoryAndSummary(t *testing.T) {
	set, err := domain.NewConstraintSet(
		ComponentCount{base: newBase("size", KindComponentCount, domain.CategoryStructural, "", "size"), Max: ip(2)},
		Connectivity{base: newBase("dag", KindConnectivity, domain.CategoryStructural, domain.SeverityInfo, "dag"), Mode: FullyConnected},
		VariableRange{base: newBase("cap", KindVariableRange, domain.CategoryVariable, "", "cap"), Variable: "cpu.capacity", Max: fp(10)},
	)
	require.NoError(t, err)
	ev := New(set)

	res := ev.EvaluateCategory(system(t), domain.CategoryVariable)
	assert.Equal(t, 1, res.Checked)
	require.Len(t, res.Violations, 1)
	assert.Equal(t, "cap", res.Violations[0].ConstraintID)

	s := ev.Summarize(system(t))
	assert.False(t, s.IsValid)
	assert.Equal(t, 3, s.TotalViolations)
	assert.Equal(t, 1, s.ViolationsByKind[KindConnectivity])
	assert.Equal(t, 2, s.ViolationsBySeverity[domain.SeverityError])
	assert.Equal(t, 1, s.ViolationsBySeverity[domain.SeverityInfo])
}

func TestNilSetAcceptsEverything(t *testing.T) {
	ev := New(nil)
	res := ev.Evaluate(system(t))
	assert.True(t, res.IsValid)
	assert.Zero(t, res.Checked)
	assert.True(t, ev.Constraints().IsEmpty())
}
