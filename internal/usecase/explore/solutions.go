package explore

import (
	"fmt"
	"sort"
	"time"

	"github.com/forestbook1/sep-solver-sub001/internal/domain"
)

// Solutions returns copies of every solution found in the current session,
// in discovery order.
func (e *Engine) Solutions() []domain.DesignObject {
	out := make([]domain.DesignObject, len(e.solutions))
	for i, s := range e.solutions {
		out[i] = s.Clone()
	}
	return out
}

// FilterSolutions returns copies of the solutions keep accepts.
func (e *Engine) FilterSolutions(keep func(domain.DesignObject) bool) []domain.DesignObject {
	var out []domain.DesignObject
	for _, s := range e.solutions {
		if keep(s) {
			out = append(out, s.Clone())
		}
	}
	return out
}

// ClearSolutions drops the stored solutions. Iteration counters are kept.
func (e *Engine) ClearSolutions() {
	e.solutions = nil
	e.state.SolutionsFound = 0
	e.state.BestCandidateIDs = nil
	e.log.Info("engine.solutions.cleared")
}

// ScoreOf returns the score recorded for a candidate id in this session.
func (e *Engine) ScoreOf(id string) (float64, bool) {
	s, ok := e.scores[id]
	return s, ok
}

// BestSolutions returns up to n solutions ordered by score, best first.
// Equal scores keep discovery order.
func (e *Engine) BestSolutions(n int) []domain.DesignObject {
	out := e.Solutions()
	sort.SliceStable(out, func(i, j int) bool {
		return e.scores[out[i].ID] > e.scores[out[j].ID]
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// IntRange is an inclusive [Min, Max] pair.
type IntRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

type SolutionStatistics struct {
	TotalSolutions       int      `json:"total_solutions"`
	AverageComponents    float64  `json:"average_components"`
	AverageRelationships float64  `json:"average_relationships"`
	AverageVariables     float64  `json:"average_variables"`
	ComponentRange       IntRange `json:"component_range"`
	RelationshipRange    IntRange `json:"relationship_range"`
	VariableRange        IntRange `json:"variable_range"`
}

func (e *Engine) SolutionStatistics() SolutionStatistics {
	return statistics(e.solutions)
}

func statistics(sols []domain.DesignObject) SolutionStatistics {
	st := SolutionStatistics{TotalSolutions: len(sols)}
	if len(sols) == 0 {
		return st
	}

	var comps, rels, vars []int
	for _, s := range sols {
		comps = append(comps, len(s.Structure.Components))
		rels = append(rels, len(s.Structure.Relationships))
		n := 0
		if s.Variables != nil {
			n = s.Variables.Len()
		}
		vars = append(vars, n)
	}
	st.AverageComponents, st.ComponentRange = describe(comps)
	st.AverageRelationships, st.RelationshipRange = describe(rels)
	st.AverageVariables, st.VariableRange = describe(vars)
	return st
}

func describe(xs []int) (float64, IntRange) {
	r := IntRange{Min: xs[0], Max: xs[0]}
	total := 0
	for _, x := range xs {
		total += x
		r.Min = min(r.Min, x)
		r.Max = max(r.Max, x)
	}
	return float64(total) / float64(len(xs)), r
}

// DebugRecommendations inspects the current state and suggests what to
// look at. It always returns at least one line.
func (e *Engine) DebugRecommendations() []string {
	st := e.state
	var out []string

	if st.CandidatesEvaluated > 10 {
		rate := float64(st.SolutionsFound) / float64(st.CandidatesEvaluated)
		if rate < 0.01 {
			out = append(out, "Very low solution rate - consider relaxing constraints or adjusting generation strategy")
		}
	}

	if top := st.MostViolated(1); len(top) > 0 && float64(top[0].Count) > 0.8*float64(st.CandidatesEvaluated) {
		out = append(out, fmt.Sprintf("Constraint '%s' is violated in >80%% of candidates - review constraint definition", top[0].ConstraintID))
	}

	var slowest string
	var slowestAvg time.Duration
	for name, ts := range st.TimingSummaries() {
		if ts.Average > slowestAvg || (ts.Average == slowestAvg && name < slowest) {
			slowest, slowestAvg = name, ts.Average
		}
	}
	if slowestAvg > time.Second {
		out = append(out, fmt.Sprintf("Component '%s' is slow (avg: %.2fs) - consider optimization", slowest, slowestAvg.Seconds()))
	}

	if st.IterationCount > 50 && st.SolutionsFound == 0 {
		out = append(out, "No solutions found after many iterations - consider changing exploration strategy")
	}

	recent := st.Decisions
	if len(recent) > 20 {
		recent = recent[len(recent)-20:]
	}
	failures := 0
	for _, d := range recent {
		if d.Outcome == "failure" {
			failures++
		}
	}
	if len(recent) > 10 && float64(failures)/float64(len(recent)) > 0.9 {
		out = append(out, "High failure rate in recent decisions - investigate constraint or generation issues")
	}

	if len(out) == 0 {
		out = append(out, "Exploration appears to be running normally")
	}
	return out
}

// Summary is the progress summary of the current session.
func (e *Engine) Summary() domain.ProgressSummary {
	return e.state.Summary(e.now())
}
