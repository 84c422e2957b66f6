package explore

import (
	"math"

	"github.com/forestbook1/sep-solver-sub001/internal/domain"
)

const (
	optimalComponents    = 3
	optimalRelationships = 2
	validBonus           = 5.0
)

// Score ranks a candidate; higher is better and the result is never
// negative. Moderate structures and richer assignments score higher, and
// validity dominates. Invalid candidates earn partial credit from res, which
// is nil when constraints were not evaluated.
func Score(obj domain.DesignObject, valid bool, res *domain.EvaluationResult) float64 {
	n := len(obj.Structure.Components)
	r := len(obj.Structure.Relationships)

	score := 1 - math.Abs(float64(n-optimalComponents))/10
	score += 1 - math.Abs(float64(r-optimalRelationships))/10

	if obj.Variables != nil && obj.Variables.Len() > 0 {
		score += math.Min(float64(obj.Variables.Len())/10, 1)
	}

	switch {
	case valid:
		score += validBonus
	case res != nil:
		score += 2 * res.SatisfactionRatio()
	}
	return math.Max(score, 0)
}
