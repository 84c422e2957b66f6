package ports

import "github.com/forestbook1/sep-solver-sub001/internal/domain"

// ConstraintEvaluator checks an assembled design object against the
// constraints it was built with.
type ConstraintEvaluator interface {
	Evaluate(obj domain.DesignObject) domain.EvaluationResult
	Constraints() *domain.ConstraintSet
}

// SchemaValidator checks the document form of a design object.
type SchemaValidator interface {
	Validate(doc map[string]any) domain.ValidationResult
}
