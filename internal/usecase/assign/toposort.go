package assign

import "github.com/forestbook1/sep-solver-sub001/internal/domain"

// Ordering is the result of sorting variables by their dependencies.
type Ordering struct {
	Order []string
	// HadCycle is set when the dependency graph is cyclic; Order then falls
	// back to domain insertion order.
	HadCycle bool
}

// TopologicalSort orders domain variables so each comes after the variables
// it depends on (Kahn's algorithm, FIFO queue). Edges to names without a
// domain are ignored.
func TopologicalSort(va *domain.VariableAssignment) Ordering {
	names := va.DomainNames()

	inDegree := make(map[string]int, len(names))
	dependents := make(map[string][]string, len(names))
	for _, n := range names {
		inDegree[n] = 0
	}
	for _, n := range names {
		for _, dep := range va.Dependencies(n) {
			if _, ok := inDegree[dep]; !ok {
				continue
			}
			dependents[dep] = append(dependents[dep], n)
			inDegree[n]++
		}
	}

	queue := make([]string, 0, len(names))
	for _, n := range names {
		if inDegree[n] == 0 {
			queue = append(queue, n)
		}
	}

	order := make([]string, 0, len(names))
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		order = append(order, n)

		for _, next := range dependents[n] {
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	if len(order) != len(names) {
		return Ordering{Order: names, HadCycle: true}
	}
	return Ordering{Order: order}
}
