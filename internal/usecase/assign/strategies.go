package assign

import (
	"math"
	"sort"

	"github.com/forestbook1/sep-solver-sub001/internal/domain"
)

const (
	defaultIntSpan   = 100
	defaultFloatSpan = 1.0
	letters          = "abcdefghijklmnopqrstuvwxyz"
)

func (a *Assigner) assignRandom(va *domain.VariableAssignment) error {
	names := va.DomainNames()
	a.rng.Shuffle(len(names), func(i, j int) { names[i], names[j] = names[j], names[i] })

	for _, n := range names {
		d, _ := va.Domain(n)
		if err := va.Set(n, a.randomValue(d)); err != nil {
			return err
		}
	}
	return nil
}

func (a *Assigner) assignSystematic(va *domain.VariableAssignment) error {
	ord := TopologicalSort(va)
	if ord.HadCycle {
		a.log.Warn("assign.toposort.cycle", "variables", len(ord.Order))
	}
	for _, n := range ord.Order {
		d, _ := va.Domain(n)
		if err := va.Set(n, chooseValue(n, d, nil)); err != nil {
			return err
		}
	}
	return nil
}

// assignHeuristic binds the most constrained variables first, each to a
// central value of its domain.
func (a *Assigner) assignHeuristic(va *domain.VariableAssignment) error {
	domains := va.Domains()
	sort.SliceStable(domains, func(i, j int) bool {
		return constraintScore(domains[i]) > constraintScore(domains[j])
	})
	for _, d := range domains {
		if err := va.Set(d.Name, centralValue(d)); err != nil {
			return err
		}
	}
	return nil
}

// chooseValue picks the value for one variable during ordered assignment.
// A still-valid previous binding is kept; otherwise the domain sample is
// used, whether or not the dependencies are bound yet.
func chooseValue(name string, d domain.Domain, previous map[string]any) any {
	if v, ok := previous[name]; ok && d.IsValid(v) {
		return v
	}
	return d.SampleValue()
}

// constraintScore ranks how constrained a domain is; higher goes first.
func constraintScore(d domain.Domain) int {
	score := 1
	switch d.Type {
	case domain.TypeEnum, domain.TypeBool:
		score = 10
	case domain.TypeInt, domain.TypeRange:
		score = 5
	}

	_, hasMin := d.Constraints[domain.ConstraintMin]
	_, hasMax := d.Constraints[domain.ConstraintMax]
	if hasMin || hasMax {
		score += 3
	}
	if d.Type == domain.TypeEnum {
		score += max(0, 10-len(d.Values()))
	}
	return score
}

func (a *Assigner) randomValue(d domain.Domain) any {
	switch d.Type {
	case domain.TypeInt:
		lo, hi := intBounds(d)
		return a.randInt(lo, hi)
	case domain.TypeFloat:
		lo, hi := floatBounds(d)
		return lo + a.rng.Float64()*(hi-lo)
	case domain.TypeRange:
		if d.IntegralBounds() {
			lo, hi := intBounds(d)
			return a.randInt(lo, hi)
		}
		lo, hi := floatBounds(d)
		return lo + a.rng.Float64()*(hi-lo)
	case domain.TypeBool:
		return a.rng.IntN(2) == 1
	case domain.TypeEnum:
		vs := d.Values()
		if len(vs) == 0 {
			return d.SampleValue()
		}
		return vs[a.rng.IntN(len(vs))]
	case domain.TypeString:
		n := 1 + a.rng.IntN(10)
		b := make([]byte, n)
		for i := range b {
			b[i] = letters[a.rng.IntN(len(letters))]
		}
		return string(b)
	default:
		return d.SampleValue()
	}
}

func centralValue(d domain.Domain) any {
	switch d.Type {
	case domain.TypeInt:
		lo, hi := intBounds(d)
		return int(math.Floor(float64(lo+hi) / 2))
	case domain.TypeFloat:
		lo, hi := floatBounds(d)
		return (lo + hi) / 2
	case domain.TypeRange:
		if d.IntegralBounds() {
			lo, hi := intBounds(d)
			return int(math.Floor(float64(lo+hi) / 2))
		}
		lo, hi := floatBounds(d)
		return (lo + hi) / 2
	case domain.TypeBool:
		return false
	default:
		return d.SampleValue()
	}
}

func (a *Assigner) randInt(lo, hi int) int {
	span := int64(hi) - int64(lo) + 1
	if span <= 0 {
		return lo
	}
	return lo + int(a.rng.Int64N(span))
}

// intBounds returns the inclusive integer bounds used for sampling. A
// missing bound is placed defaultIntSpan away from the other one.
func intBounds(d domain.Domain) (int, int) {
	lo, hasLo := d.Min()
	hi, hasHi := d.Max()
	switch {
	case hasLo && hasHi:
	case hasLo:
		hi = lo + defaultIntSpan
	case hasHi:
		lo = hi - defaultIntSpan
	default:
		lo, hi = 0, defaultIntSpan
	}
	return int(math.Ceil(lo)), int(math.Floor(hi))
}

func floatBounds(d domain.Domain) (float64, float64) {
	lo, hasLo := d.Min()
	hi, hasHi := d.Max()
	switch {
	case hasLo && hasHi:
	case hasLo:
		hi = lo + defaultFloatSpan
	case hasHi:
		lo = hi - defaultFloatSpan
	default:
		lo, hi = 0, defaultFloatSpan
	}
	return lo, hi
}
