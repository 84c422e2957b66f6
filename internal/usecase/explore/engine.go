// Package explore drives design-space exploration: each step generates a
// structure, binds its variables, validates the assembled candidate and
// records the outcome.
//
// An Engine moves through idle, running and one of completed, exhausted or
// failed. Solve and ExploreStep must be called from one goroutine at a time;
// configuration can be read and updated from anywhere.
package explore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/forestbook1/sep-solver-sub001/internal/domain"
	"github.com/forestbook1/sep-solver-sub001/internal/ports"
)

// ConfigCallback is told about every configuration key that changed.
// Its error (or panic) is logged and otherwise ignored.
type ConfigCallback func(key string, oldValue, newValue any) error

type Engine struct {
	generator ports.StructureGenerator
	assigner  ports.VariableAssigner
	evaluator ports.ConstraintEvaluator
	schema    ports.SchemaValidator
	recorder  ports.ExplorationRecorder

	log   *slog.Logger
	now   func() time.Time
	newID func() string

	cfg       atomic.Pointer[domain.SolverConfig]
	cfgMu     sync.Mutex
	callbacks []ConfigCallback

	state     *domain.ExplorationState
	solutions []domain.DesignObject
	scores    map[string]float64
	bestScore float64
	bestSize  int
}

type Option func(*Engine)

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

func WithRecorder(r ports.ExplorationRecorder) Option {
	return func(e *Engine) {
		if r != nil {
			e.recorder = r
		}
	}
}

// WithClock is useful for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithSessionIDs replaces the uuid session id source.
func WithSessionIDs(next func() string) Option {
	return func(e *Engine) { e.newID = next }
}

// New wires an engine. The configuration is validated when exploration
// starts, not here.
func New(
	cfg domain.SolverConfig,
	gen ports.StructureGenerator,
	asg ports.VariableAssigner,
	ev ports.ConstraintEvaluator,
	sv ports.SchemaValidator,
	opts ...Option,
) *Engine {
	e := &Engine{
		generator: gen,
		assigner:  asg,
		evaluator: ev,
		schema:    sv,
		recorder:  noopRecorder{},
		log:       slog.New(slog.NewJSONHandler(io.Discard, nil)),
		now:       time.Now,
		newID:     uuid.NewString,
		scores:    map[string]float64{},
	}
	for _, opt := range opts {
		opt(e)
	}
	e.cfg.Store(&cfg)
	e.state = domain.NewExplorationState(cfg.ExplorationStrategy)
	return e
}

// Solve starts a new session and steps until a stop condition holds. It
// returns the solutions found. A cancelled ctx stops the loop between steps;
// the partial solutions are returned together with the context error.
func (e *Engine) Solve(ctx context.Context) ([]domain.DesignObject, error) {
	cfg := e.Config()
	if err := e.start(cfg); err != nil {
		return nil, err
	}
	e.log.Info("engine.solve.start",
		"session", e.state.SessionID,
		"strategy", cfg.ExplorationStrategy,
		"max_iterations", cfg.MaxIterations,
		"max_solutions", cfg.MaxSolutions,
	)

	for {
		cfg = e.Config()
		if reason := e.limitReached(cfg); reason != domain.StopNone {
			e.finish(domain.StatusCompleted, reason)
			break
		}
		if err := ctx.Err(); err != nil {
			e.finish(domain.StatusCompleted, domain.StopCancelled)
			return e.Solutions(), fmt.Errorf("exploration cancelled after %d iterations: %w", e.state.IterationCount, err)
		}

		_, _, err := e.step(ctx, cfg)
		if IsExhausted(err) {
			e.finish(domain.StatusExhausted, domain.StopExhausted)
			break
		}
	}

	e.log.Info("engine.solve.done",
		"session", e.state.SessionID,
		"status", e.state.Status,
		"stop_reason", e.state.StopReason,
		"iterations", e.state.IterationCount,
		"solutions", len(e.solutions),
	)
	return e.Solutions(), nil
}

// ExploreStep runs a single step and reports the candidate and whether it
// passed schema and constraint validation. An idle engine starts a session
// first; a finished one must be Reset.
func (e *Engine) ExploreStep(ctx context.Context) (domain.DesignObject, bool, error) {
	cfg := e.Config()
	switch {
	case e.state.Status == domain.StatusIdle:
		if err := e.start(cfg); err != nil {
			return domain.DesignObject{}, false, err
		}
	case e.state.Status.Terminal():
		return domain.DesignObject{}, false, domain.NewError("engine.step", domain.KindExecution, "",
			"engine is %s; reset before stepping again", e.state.Status)
	}

	obj, valid, err := e.step(ctx, cfg)
	if IsExhausted(err) {
		e.finish(domain.StatusExhausted, domain.StopExhausted)
	}
	return obj, valid, err
}

// Reset returns the engine to idle and drops every solution.
func (e *Engine) Reset() {
	cfg := e.Config()
	e.state = domain.NewExplorationState(cfg.ExplorationStrategy)
	e.solutions = nil
	e.scores = map[string]float64{}
	e.bestScore = 0
	e.bestSize = 0
	e.log.Info("engine.reset")
}

func (e *Engine) Status() domain.EngineStatus { return e.state.Status }

// State returns a copy of the exploration state.
func (e *Engine) State() domain.ExplorationState { return e.state.Clone() }

func (e *Engine) start(cfg domain.SolverConfig) error {
	e.state.Start(e.newID(), cfg.ExplorationStrategy, e.now())
	e.solutions = nil
	e.scores = map[string]float64{}
	e.bestScore = 0
	e.bestSize = 0

	if err := e.checkReady(cfg); err != nil {
		e.state.RecordDecision(e.now(), "configuration", "failure", err.Error(), nil)
		e.finish(domain.StatusFailed, domain.StopFailed)
		e.log.Error("engine.start.failed", "err", err)
		return err
	}
	return nil
}

func (e *Engine) checkReady(cfg domain.SolverConfig) error {
	var missing []string
	if e.generator == nil {
		missing = append(missing, "structure_generator")
	}
	if e.assigner == nil {
		missing = append(missing, "variable_assigner")
	}
	if e.evaluator == nil {
		missing = append(missing, "constraint_evaluator")
	}
	if e.schema == nil {
		missing = append(missing, "schema_validator")
	}
	if len(missing) > 0 {
		return domain.NewError("engine.start", domain.KindInvalidConfig, "",
			"Missing required components: %s", strings.Join(missing, ", "))
	}
	return cfg.Validate()
}

func (e *Engine) finish(status domain.EngineStatus, reason domain.StopReason) {
	e.state.Finish(status, reason, e.now())
	e.recorder.ObserveStop(string(reason))
}

func (e *Engine) limitReached(cfg domain.SolverConfig) domain.StopReason {
	switch {
	case e.state.SolutionsFound >= cfg.MaxSolutions:
		return domain.StopMaxSolutions
	case e.state.IterationCount >= cfg.MaxIterations:
		return domain.StopMaxIterations
	}
	if limit, ok := cfg.Timeout(); ok {
		if e.state.Duration(e.now()).Seconds() >= limit {
			return domain.StopTimeout
		}
	}
	return domain.StopNone
}

// step runs one generate, assign and validate cycle with the configuration
// snapshot cfg. Failures are recorded on the state; the returned error is
// informational except for generation exhaustion.
func (e *Engine) step(ctx context.Context, cfg domain.SolverConfig) (domain.DesignObject, bool, error) {
	stepStart := e.now()
	e.state.RecordIteration()
	iter := e.state.IterationCount

	var constraints *domain.ConstraintSet
	if e.evaluator != nil {
		constraints = e.evaluator.Constraints()
	}

	req := domain.GenerationRequest{
		Strategy:     cfg.ExplorationStrategy,
		Method:       cfg.StructureGenerationStrategy,
		Constraints:  constraints,
		Iteration:    iter,
		MaxSize:      cfg.MaxStructureSize,
		MaxVariables: cfg.MaxVariablesPerStructure,
		BestSize:     e.bestSize,
	}

	var structure domain.Structure
	err := e.timed("structure_generator", func() error {
		var gerr error
		structure, gerr = e.generator.Generate(ctx, req)
		return gerr
	})
	if err != nil {
		if IsExhausted(err) {
			e.state.RecordDecision(e.now(), "structure_generation", "exhausted", err.Error(), nil)
			e.log.Info("engine.generator.exhausted", "iteration", iter)
			return domain.DesignObject{}, false, err
		}
		return domain.DesignObject{}, false, e.stepFailed("structure_generation", err)
	}
	e.state.RecordDecision(e.now(), "structure_generation", "success",
		fmt.Sprintf("Generated structure with %d components", len(structure.Components)),
		map[string]any{
			"components":    len(structure.Components),
			"relationships": len(structure.Relationships),
			"strategy":      string(cfg.ExplorationStrategy),
		})

	var vars *domain.VariableAssignment
	err = e.timed("variable_assigner", func() error {
		var aerr error
		vars, aerr = e.assigner.Assign(structure, cfg.VariableAssignmentStrategy)
		return aerr
	})
	if err != nil {
		return domain.DesignObject{}, false, e.stepFailed("variable_assignment", err)
	}
	e.state.RecordDecision(e.now(), "variable_assignment", "success",
		fmt.Sprintf("Assigned %d variables using %s strategy", vars.Len(), cfg.VariableAssignmentStrategy), nil)

	obj := domain.DesignObject{
		ID:        fmt.Sprintf("candidate_%d", iter),
		Structure: structure,
		Variables: vars,
		Metadata: map[string]any{
			domain.MetaGenerationStrategy: string(cfg.ExplorationStrategy),
			domain.MetaAssignmentStrategy: string(cfg.VariableAssignmentStrategy),
			domain.MetaIteration:          iter,
			domain.MetaTimestamp:          e.now().UTC().Format(time.RFC3339Nano),
		},
	}

	valid, result, err := e.validate(obj, cfg)
	if err != nil {
		return obj, false, e.stepFailed("validation", err)
	}

	score := Score(obj, valid, result)
	obj.Metadata[domain.MetaScore] = score
	e.scores[obj.ID] = score
	if score > e.bestScore || e.bestSize == 0 {
		e.bestScore = score
		e.bestSize = len(structure.Components)
	}

	took := e.now().Sub(stepStart)
	e.state.RecordCandidate(obj, valid, took, e.now())
	e.recorder.ObserveStep(string(cfg.ExplorationStrategy), valid, took)

	if valid {
		e.solutions = append(e.solutions, obj.Clone())
		e.log.Debug("engine.solution", "candidate", obj.ID, "score", score)
	}
	return obj, valid, nil
}

// validate runs schema validation and then constraint evaluation, each only
// when enabled. Violations are recorded on the state. result is nil when
// constraints were not evaluated.
func (e *Engine) validate(obj domain.DesignObject, cfg domain.SolverConfig) (bool, *domain.EvaluationResult, error) {
	if cfg.EnableSchemaValidation {
		doc, err := obj.Document()
		if err != nil {
			return false, nil, err
		}
		var res domain.ValidationResult
		err = e.timed("schema_validator", func() error {
			res = e.schema.Validate(doc)
			return nil
		})
		if err != nil {
			return false, nil, err
		}
		if !res.IsValid {
			for _, se := range res.Errors {
				e.violation("schema_validation", fmt.Sprintf("Schema error at %s: %s", se.Path, se.Message))
			}
			e.state.RecordDecision(e.now(), "schema_validation", "failure",
				fmt.Sprintf("%d schema errors", len(res.Errors)), nil)
			return false, nil, nil
		}
	}

	if !cfg.EnableConstraintValidation {
		return true, nil, nil
	}

	var res domain.EvaluationResult
	err := e.timed("constraint_evaluator", func() error {
		res = e.evaluator.Evaluate(obj)
		return nil
	})
	if err != nil {
		return false, nil, err
	}
	for _, v := range res.Violations {
		e.violation(v.ConstraintID, v.Message)
	}

	outcome := "success"
	reason := "valid"
	if !res.IsValid {
		outcome = "failure"
		reason = fmt.Sprintf("%d violations", len(res.Violations))
	}
	e.state.RecordDecision(e.now(), "constraint_evaluation", outcome, reason, map[string]any{
		"candidate":  obj.ID,
		"violations": len(res.Violations),
	})
	return res.IsValid, &res, nil
}

func (e *Engine) violation(id, msg string) {
	e.state.RecordViolation(id, msg)
	e.recorder.ObserveViolation(id)
}

func (e *Engine) stepFailed(stage string, err error) error {
	e.state.RecordFailure(e.now(), stage, err)
	e.recorder.ObserveFailure(stage)
	e.log.Warn("engine.step.failed", "iteration", e.state.IterationCount, "stage", stage, "err", err)
	return err
}

// timed runs fn, records its duration under component and turns a panic
// into an execution error.
func (e *Engine) timed(component string, fn func() error) (err error) {
	start := e.now()
	defer func() {
		if r := recover(); r != nil {
			err = domain.NewError("engine."+component, domain.KindExecution, "", "panic: %v", r)
		}
		e.state.RecordTiming(component, e.now().Sub(start))
	}()
	return fn()
}

// IsExhausted reports whether err signals that the generator has no more
// structures.
func IsExhausted(err error) bool {
	return errors.Is(err, domain.ErrGenerationExhausted)
}

type noopRecorder struct{}

func (noopRecorder) ObserveStep(string, bool, time.Duration) {}
func (noopRecorder) ObserveViolation(string)                 {}
func (noopRecorder) ObserveFailure(string)                   {}
func (noopRecorder) ObserveStop(string)                      {}
