package domain

// PathCheck is a set of checks applied to the value a JSONPath expression
// selects from a design object document. Unset fields are skipped.
type PathCheck struct {
	Exists   bool
	Eq       *string
	Contains *string
	Matches  *string
	Gt       *float64
	Lt       *float64
	// Count checks the number of selected values.
	Count *int
}

// IsEmpty reports whether no check is configured.
func (c PathCheck) IsEmpty() bool {
	return !c.Exists && c.Eq == nil && c.Contains == nil && c.Matches == nil &&
		c.Gt == nil && c.Lt == nil && c.Count == nil
}

// CheckResult is the outcome of one PathCheck field.
type CheckResult struct {
	Name    string `json:"name"`
	Passed  bool   `json:"passed"`
	Message string `json:"message"`
}

// FieldRules maps an output field name to a JSONPath expression.
type FieldRules map[string]string

// FieldResult reports one field extraction.
type FieldResult struct {
	Name    string `json:"name"`
	Success bool   `json:"success"`
	Message string `json:"message"`
}
