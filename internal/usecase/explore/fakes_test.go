package explore

import (
	"context"
	"sync"
	"time"

	"github.com/forestbook1/sep-solver-sub001/internal/domain"
)

type fakeGenerator struct {
	limit    int
	panicAt  int
	calls    int
	requests []domain.GenerationRequest
	build    func(n int) domain.Structure
}

func (g *fakeGenerator) Generate(_ context.Context, req domain.GenerationRequest) (domain.Structure, error) {
	g.calls++
	g.requests = append(g.requests, req)
	if g.panicAt > 0 && g.calls == g.panicAt {
		panic("generator blew up")
	}
	if g.limit > 0 && g.calls > g.limit {
		return domain.Structure{}, domain.NewError("generator.generate", domain.KindGenerationExhausted, "",
			"generated %d structures", g.limit)
	}
	if g.build != nil {
		return g.build(g.calls), nil
	}
	return twoNodes(), nil
}

func twoNodes() domain.Structure {
	return domain.Structure{
		Components: []domain.Component{
			{ID: "a", Type: "processor", Properties: domain.Properties{
				"load": domain.Variable(domain.VariableDeclaration{Type: domain.TypeInt, Constraints: map[string]any{"min": 0, "max": 10}}),
			}},
			{ID: "b", Type: "memory", Properties: domain.Properties{"capacity": domain.Literal(8)}},
		},
		Relationships: []domain.Relationship{{ID: "ab", SourceID: "a", TargetID: "b", Type: "connects_to"}},
	}
}

type fakeEvaluator struct {
	valid func(domain.DesignObject) bool
	panc  bool
	calls int
}

func (e *fakeEvaluator) Evaluate(obj domain.DesignObject) domain.EvaluationResult {
	e.calls++
	if e.panc {
		panic("evaluator blew up")
	}
	if e.valid == nil || e.valid(obj) {
		return domain.EvaluationResult{IsValid: true, Checked: 1}
	}
	return domain.EvaluationResult{
		Checked: 2,
		Violations: []domain.ConstraintViolation{{
			ConstraintID:   "c1",
			ConstraintType: "component_count",
			Message:        "too small",
			Severity:       domain.SeverityError,
		}},
	}
}

func (e *fakeEvaluator) Constraints() *domain.ConstraintSet { return nil }

type fakeSchema struct {
	errs []domain.SchemaError
}

func (s fakeSchema) Validate(map[string]any) domain.ValidationResult {
	return domain.ValidationResult{IsValid: len(s.errs) == 0, Errors: s.errs}
}

type fakeRecorder struct {
	mu         sync.Mutex
	steps      int
	valid      int
	violations []string
	failures   []string
	stops      []string
}

func (r *fakeRecorder) ObserveStep(_ string, valid bool, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps++
	if valid {
		r.valid++
	}
}

func (r *fakeRecorder) ObserveViolation(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.violations = append(r.violations, id)
}

func (r *fakeRecorder) ObserveFailure(stage string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, stage)
}

func (r *fakeRecorder) ObserveStop(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stops = append(r.stops, reason)
}

// tickingClock advances by step on every reading.
type tickingClock struct {
	t    time.Time
	step time.Duration
}

func (c *tickingClock) Now() time.Time {
	c.t = c.t.Add(c.step)
	return c.t
}
