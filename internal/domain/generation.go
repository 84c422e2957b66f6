package domain

// GenerationRequest carries everything a structure generator may use to
// shape the next candidate.
type GenerationRequest struct {
	Strategy     ExplorationStrategy
	Method       AssignmentStrategy
	Constraints  *ConstraintSet
	Iteration    int
	MaxSize      int
	// MaxVariables caps the variable declarations attached to a structure.
	MaxVariables int
	// BestSize is the component count of the best scored candidate seen so
	// far, or zero when none has been scored.
	BestSize     int
}
