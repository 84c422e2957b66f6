package domain

// Metadata keys set on every generated candidate.
const (
	MetaGenerationStrategy = "generation_strategy"
	MetaAssignmentStrategy = "assignment_strategy"
	MetaIteration          = "iteration"
	MetaTimestamp          = "timestamp"
	MetaScore              = "score"
)

// DesignObject is one candidate under exploration: a structure, its variable
// bindings and free-form metadata.
type DesignObject struct {
	ID        string              `json:"id"`
	Structure Structure           `json:"structure"`
	Variables *VariableAssignment `json:"variables"`
	Metadata  map[string]any      `json:"metadata"`
}

// Clone returns a deep copy.
func (d DesignObject) Clone() DesignObject {
	out := DesignObject{
		ID:        d.ID,
		Structure: d.Structure.Clone(),
		Metadata:  cloneMap(d.Metadata),
	}
	if d.Variables != nil {
		out.Variables = d.Variables.Copy()
	} else {
		out.Variables = NewVariableAssignment()
	}
	return out
}

// Document renders the object as a generic JSON tree (maps, slices, numbers,
// strings, bools), the shape schema validators and path queries work on.
func (d DesignObject) Document() (map[string]any, error) {
	if d.Variables == nil {
		d.Variables = NewVariableAssignment()
	}
	return ToGenericDocument(d)
}

// Value returns the binding of a variable, if any.
func (d DesignObject) Value(name string) (any, bool) {
	if d.Variables == nil {
		return nil, false
	}
	return d.Variables.Get(name)
}
