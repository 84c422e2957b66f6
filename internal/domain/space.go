package domain

import "math"

// AssignmentSpace is a read-only view of the domains and dependencies of a
// structure before any value is chosen.
type AssignmentSpace struct {
	domains      []Domain
	dependencies map[string][]string
}

func NewAssignmentSpace(a *VariableAssignment) AssignmentSpace {
	return AssignmentSpace{
		domains:      a.Domains(),
		dependencies: a.DependencyMap(),
	}
}

func (s AssignmentSpace) Domains() []Domain {
	out := make([]Domain, len(s.domains))
	copy(out, s.domains)
	return out
}

func (s AssignmentSpace) Dependencies() map[string][]string {
	out := make(map[string][]string, len(s.dependencies))
	for k, v := range s.dependencies {
		cp := make([]string, len(v))
		copy(cp, v)
		out[k] = cp
	}
	return out
}

func (s AssignmentSpace) VariableCount() int { return len(s.domains) }

// DomainSize returns the number of distinct values of a finite domain.
// Unbounded, continuous and string domains report false. A range with a
// fractional bound is continuous.
func DomainSize(d Domain) (int64, bool) {
	switch d.Type {
	case TypeEnum:
		return int64(len(d.Values())), true
	case TypeBool:
		return 2, true
	case TypeRange:
		if !d.IntegralBounds() {
			return 0, false
		}
		fallthrough
	case TypeInt:
		lo, okLo := d.Min()
		hi, okHi := d.Max()
		if !okLo || !okHi {
			return 0, false
		}
		n := math.Floor(hi) - math.Ceil(lo) + 1
		if n < 0 {
			return 0, true
		}
		return int64(n), true
	default:
		return 0, false
	}
}

// EstimateTotalCombinations multiplies every domain size. It reports false
// when any domain is infinite or of unknown size, or the product overflows.
func (s AssignmentSpace) EstimateTotalCombinations() (int64, bool) {
	total := int64(1)
	for _, d := range s.domains {
		n, ok := DomainSize(d)
		if !ok {
			return 0, false
		}
		if n != 0 && total > math.MaxInt64/n {
			return 0, false
		}
		total *= n
	}
	return total, true
}
