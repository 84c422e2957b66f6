// Package evaluate checks design objects against constraint sets. It holds
// the built-in constraint kinds, the registry that builds them from problem
// files and the evaluator the exploration engine calls.
package evaluate

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/forestbook1/sep-solver-sub001/internal/domain"
	"github.com/forestbook1/sep-solver-sub001/internal/ports"
)

// CheckFunc replaces the built-in check of every constraint of one kind.
type CheckFunc func(c domain.Constraint, obj domain.DesignObject) (bool, string)

type Evaluator struct {
	set *domain.ConstraintSet
	log *slog.Logger

	mu     sync.RWMutex
	custom map[string]CheckFunc
}

var _ ports.ConstraintEvaluator = (*Evaluator)(nil)

type Option func(*Evaluator)

func WithLogger(l *slog.Logger) Option {
	return func(e *Evaluator) {
		if l != nil {
			e.log = l
		}
	}
}

// New evaluates against set; a nil set accepts everything.
func New(set *domain.ConstraintSet, opts ...Option) *Evaluator {
	if set == nil {
		set = &domain.ConstraintSet{}
	}
	e := &Evaluator{
		set:    set,
		log:    slog.New(slog.NewJSONHandler(io.Discard, nil)),
		custom: map[string]CheckFunc{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Evaluator) Constraints() *domain.ConstraintSet { return e.set }

// RegisterCheck overrides how constraints of kind are checked.
func (e *Evaluator) RegisterCheck(kind string, fn CheckFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.custom[kind] = fn
}

// UnregisterCheck reports whether a custom check was removed.
func (e *Evaluator) UnregisterCheck(kind string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.custom[kind]
	delete(e.custom, kind)
	return ok
}

func (e *Evaluator) CustomChecks() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]string, 0, len(e.custom))
	for k := range e.custom {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Evaluate checks every constraint in category order. The object is valid
// when no error-severity constraint is violated; warnings and infos are
// still reported.
func (e *Evaluator) Evaluate(obj domain.DesignObject) domain.EvaluationResult {
	return e.evaluate(obj, e.set.All())
}

// EvaluateCategory checks only the constraints of one category.
func (e *Evaluator) EvaluateCategory(obj domain.DesignObject, cat domain.ConstraintCategory) domain.EvaluationResult {
	return e.evaluate(obj, e.set.ByCategory(cat))
}

func (e *Evaluator) evaluate(obj domain.DesignObject, cs []domain.Constraint) domain.EvaluationResult {
	res := domain.EvaluationResult{IsValid: true, Checked: len(cs)}
	for _, c := range cs {
		ok, msg := e.check(c, obj)
		if ok {
			continue
		}
		if msg == "" {
			msg = fmt.Sprintf("Constraint %s is violated", c.ID())
		}
		res.Violations = append(res.Violations, domain.ConstraintViolation{
			ConstraintID:   c.ID(),
			ConstraintType: c.Kind(),
			Message:        msg,
			Severity:       c.Severity(),
			Context:        violationContext(c, obj),
		})
		if c.Severity() == domain.SeverityError {
			res.IsValid = false
		}
	}
	return res
}

// check runs one constraint; a panic counts as a violation.
func (e *Evaluator) check(c domain.Constraint, obj domain.DesignObject) (ok bool, msg string) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Warn("evaluate.constraint.panic", "constraint", c.ID(), "panic", fmt.Sprint(r))
			ok, msg = false, fmt.Sprintf("Constraint %s could not be evaluated: %v", c.ID(), r)
		}
	}()

	e.mu.RLock()
	fn, custom := e.custom[c.Kind()]
	e.mu.RUnlock()
	if custom {
		return fn(c, obj)
	}
	return c.Check(obj)
}

func violationContext(c domain.Constraint, obj domain.DesignObject) map[string]any {
	vars := 0
	if obj.Variables != nil {
		vars = obj.Variables.Len()
	}
	return map[string]any{
		"constraint_description": c.Description(),
		"design_object_id":       obj.ID,
		"component_count":        len(obj.Structure.Components),
		"relationship_count":     len(obj.Structure.Relationships),
		"variable_count":         vars,
	}
}

// Summary counts violations by kind and by severity.
type Summary struct {
	IsValid              bool                    `json:"is_valid"`
	TotalViolations      int                     `json:"total_violations"`
	ViolationsByKind     map[string]int          `json:"violations_by_type"`
	ViolationsBySeverity map[domain.Severity]int `json:"violations_by_severity"`
}

func (e *Evaluator) Summarize(obj domain.DesignObject) Summary {
	res := e.Evaluate(obj)
	s := Summary{
		IsValid:              res.IsValid,
		TotalViolations:      len(res.Violations),
		ViolationsByKind:     map[string]int{},
		ViolationsBySeverity: map[domain.Severity]int{},
	}
	for _, v := range res.Violations {
		s.ViolationsByKind[v.ConstraintType]++
		s.ViolationsBySeverity[v.Severity]++
	}
	return s
}
