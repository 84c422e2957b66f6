package explore

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forestbook1/sep-solver-sub001/internal/domain"
)

func sized(n int) domain.Structure {
	s := domain.Structure{}
	for i := 0; i < n; i++ {
		s.Components = append(s.Components, domain.Component{ID: string(rune('a' + i)), Type: "sensor"})
	}
	return s
}

func TestScore(t *testing.T) {
	tests := []struct {
		name  string
		obj   domain.DesignObject
		valid bool
		res   *domain.EvaluationResult
		want  float64
	}{
		{
			name: "optimal and valid",
			obj: domain.DesignObject{Structure: domain.Structure{
				Components:    sized(3).Components,
				Relationships: []domain.Relationship{{ID: "r1"}, {ID: "r2"}},
			}},
			valid: true,
			want:  7,
		},
		{
			name: "empty and unevaluated",
			obj:  domain.DesignObject{},
			want: 1.5,
		},
		{
			name:  "partial satisfaction",
			obj:   domain.DesignObject{Structure: sized(3)},
			res:   &domain.EvaluationResult{Checked: 4, Violations: make([]domain.ConstraintViolation, 1)},
			want:  1 + 0.8 + 1.5,
		},
		{
			name: "never negative",
			obj:  domain.DesignObject{Structure: sized(40)},
			want: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Score(tt.obj, tt.valid, tt.res), 1e-9)
		})
	}
}

func TestBestSolutionsAndStatistics(t *testing.T) {
	gen := &fakeGenerator{build: func(n int) domain.Structure { return sized([]int{1, 3, 6}[n-1]) }}
	e := newEngine(testConfig(3, 3), gen, &fakeEvaluator{})

	_, err := e.Solve(context.Background())
	require.NoError(t, err)

	best := e.BestSolutions(2)
	require.Len(t, best, 2)
	assert.Equal(t, "candidate_2", best[0].ID)
	assert.Equal(t, "candidate_1", best[1].ID)

	st := e.SolutionStatistics()
	assert.Equal(t, 3, st.TotalSolutions)
	assert.InDelta(t, 10.0/3, st.AverageComponents, 1e-9)
	assert.Equal(t, IntRange{Min: 1, Max: 6}, st.ComponentRange)
	assert.Equal(t, IntRange{}, st.VariableRange)

	score, ok := e.ScoreOf("candidate_2")
	assert.True(t, ok)
	assert.InDelta(t, 1+0.8+5, score, 1e-9)
}

func TestFilterAndClearSolutions(t *testing.T) {
	gen := &fakeGenerator{build: func(n int) domain.Structure { return sized(n) }}
	e := newEngine(testConfig(4, 4), gen, &fakeEvaluator{})
	_, err := e.Solve(context.Background())
	require.NoError(t, err)

	big := e.FilterSolutions(func(o domain.DesignObject) bool { return len(o.Structure.Components) >= 3 })
	assert.Len(t, big, 2)

	e.ClearSolutions()
	assert.Empty(t, e.Solutions())
	assert.Zero(t, e.State().SolutionsFound)
	assert.Equal(t, 4, e.State().IterationCount)
}

func TestDebugRecommendations(t *testing.T) {
	e := newEngine(testConfig(60, 1), &fakeGenerator{}, &fakeEvaluator{valid: func(domain.DesignObject) bool { return false }})
	assert.Equal(t, []string{"Exploration appears to be running normally"}, e.DebugRecommendations())

	_, err := e.Solve(context.Background())
	require.NoError(t, err)

	recs := e.DebugRecommendations()
	assert.Contains(t, recs, "Very low solution rate - consider relaxing constraints or adjusting generation strategy")
	assert.Contains(t, recs, "Constraint 'c1' is violated in >80% of candidates - review constraint definition")
	assert.Contains(t, recs, "No solutions found after many iterations - consider changing exploration strategy")
}

func TestExport(t *testing.T) {
	e := newEngine(testConfig(2, 2), &fakeGenerator{}, &fakeEvaluator{})
	_, err := e.Solve(context.Background())
	require.NoError(t, err)

	out, err := e.Export(ExportJSON)
	require.NoError(t, err)
	var doc struct {
		SessionID string                  `json:"session_id"`
		Solutions []domain.SolutionRecord `json:"solutions"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "session-1", doc.SessionID)
	require.Len(t, doc.Solutions, 2)
	assert.Equal(t, "candidate_1", doc.Solutions[0].ID)

	text, err := e.Export(ExportSummary)
	require.NoError(t, err)
	assert.Contains(t, text, "Solutions: 2")
	assert.Contains(t, text, "(max_solutions)")

	_, err = e.Export("xml")
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindInvalidValue))
}
