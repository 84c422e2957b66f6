package explore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forestbook1/sep-solver-sub001/internal/domain"
	"github.com/forestbook1/sep-solver-sub001/internal/usecase/assign"
)

func testConfig(maxIter, maxSol int) domain.SolverConfig {
	cfg := domain.DefaultSolverConfig()
	cfg.MaxIterations = maxIter
	cfg.MaxSolutions = maxSol
	return cfg
}

func newEngine(cfg domain.SolverConfig, gen *fakeGenerator, ev *fakeEvaluator, opts ...Option) *Engine {
	ids := 0
	opts = append([]Option{WithSessionIDs(func() string {
		ids++
		return "session-" + string(rune('0'+ids))
	})}, opts...)
	return New(cfg, gen, assign.New(assign.WithSeed(1)), ev, fakeSchema{}, opts...)
}

func TestSolveStopsAtMaxSolutions(t *testing.T) {
	rec := &fakeRecorder{}
	e := newEngine(testConfig(5, 2), &fakeGenerator{}, &fakeEvaluator{}, WithRecorder(rec))

	sols, err := e.Solve(context.Background())
	require.NoError(t, err)

	st := e.State()
	assert.LessOrEqual(t, st.IterationCount, 5)
	assert.Len(t, sols, 2)
	assert.Equal(t, domain.StatusCompleted, st.Status)
	assert.Equal(t, domain.StopMaxSolutions, st.StopReason)
	assert.Equal(t, 2, st.SolutionsFound)
	assert.Equal(t, []string{"max_solutions"}, rec.stops)
	assert.Equal(t, 2, rec.valid)
}

func TestSolveStopsAtMaxIterations(t *testing.T) {
	ev := &fakeEvaluator{valid: func(domain.DesignObject) bool { return false }}
	e := newEngine(testConfig(5, 2), &fakeGenerator{}, ev)

	sols, err := e.Solve(context.Background())
	require.NoError(t, err)

	st := e.State()
	assert.Empty(t, sols)
	assert.Equal(t, 5, st.IterationCount)
	assert.Equal(t, 5, st.CandidatesEvaluated)
	assert.Equal(t, domain.StopMaxIterations, st.StopReason)
	assert.Equal(t, 5, st.ConstraintViolationCounts["c1"])
	assert.Contains(t, st.RecentViolations, "c1: too small")
}

func TestSolveCandidatesCarryMetadata(t *testing.T) {
	e := newEngine(testConfig(3, 3), &fakeGenerator{}, &fakeEvaluator{})

	sols, err := e.Solve(context.Background())
	require.NoError(t, err)
	require.Len(t, sols, 3)

	first := sols[0]
	assert.Equal(t, "candidate_1", first.ID)
	assert.Equal(t, "breadth_first", first.Metadata[domain.MetaGenerationStrategy])
	assert.Equal(t, "random", first.Metadata[domain.MetaAssignmentStrategy])
	assert.Equal(t, 1, first.Metadata[domain.MetaIteration])
	assert.Contains(t, first.Metadata, domain.MetaTimestamp)
	assert.True(t, first.Variables.IsComplete())
	assert.Equal(t, "session-1", e.State().SessionID)
}

func TestSolutionsAreIsolatedCopies(t *testing.T) {
	e := newEngine(testConfig(3, 1), &fakeGenerator{}, &fakeEvaluator{})
	sols, err := e.Solve(context.Background())
	require.NoError(t, err)
	require.Len(t, sols, 1)

	sols[0].Structure.Components[0].ID = "mutated"
	sols[0].Variables.Unset("a.load")

	again := e.Solutions()
	assert.Equal(t, "a", again[0].Structure.Components[0].ID)
	_, ok := again[0].Value("a.load")
	assert.True(t, ok)
}

func TestSolveExhaustsGenerator(t *testing.T) {
	e := newEngine(testConfig(10, 10), &fakeGenerator{limit: 3}, &fakeEvaluator{})

	sols, err := e.Solve(context.Background())
	require.NoError(t, err)
	assert.Len(t, sols, 3)
	assert.Equal(t, domain.StatusExhausted, e.Status())
	assert.Equal(t, domain.StopExhausted, e.State().StopReason)
}

func TestSolveFailsWithoutComponents(t *testing.T) {
	e := New(testConfig(5, 2), &fakeGenerator{}, assign.New(), &fakeEvaluator{}, nil)

	_, err := e.Solve(context.Background())
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindInvalidConfig))
	assert.Contains(t, err.Error(), "Missing required components: schema_validator")
	assert.Equal(t, domain.StatusFailed, e.Status())
	assert.Equal(t, domain.StopFailed, e.State().StopReason)
}

func TestSolveFailsOnInvalidConfig(t *testing.T) {
	e := newEngine(testConfig(0, 2), &fakeGenerator{}, &fakeEvaluator{})

	_, err := e.Solve(context.Background())
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindInvalidConfig))
	assert.Contains(t, err.Error(), "max_iterations")
	assert.Equal(t, domain.StatusFailed, e.Status())
}

func TestSolveStopsOnTimeout(t *testing.T) {
	cfg := testConfig(1000, 1000)
	timeout := 2.5
	cfg.TimeoutSeconds = &timeout
	clock := &tickingClock{t: time.Unix(0, 0), step: 100 * time.Millisecond}
	ev := &fakeEvaluator{valid: func(domain.DesignObject) bool { return false }}
	e := newEngine(cfg, &fakeGenerator{}, ev, WithClock(clock.Now))

	_, err := e.Solve(context.Background())
	require.NoError(t, err)

	st := e.State()
	assert.Equal(t, domain.StopTimeout, st.StopReason)
	assert.Greater(t, st.IterationCount, 0)
	assert.Less(t, st.IterationCount, 1000)
}

func TestSolveHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	e := newEngine(testConfig(5, 2), &fakeGenerator{}, &fakeEvaluator{})

	sols, err := e.Solve(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, sols)
	assert.Equal(t, domain.StopCancelled, e.State().StopReason)
	assert.Equal(t, 0, e.State().IterationCount)
}

func TestSchemaFailuresAreRecorded(t *testing.T) {
	ev := &fakeEvaluator{}
	e := New(testConfig(2, 2), &fakeGenerator{}, assign.New(), ev,
		fakeSchema{errs: []domain.SchemaError{{Path: "$.structure", Message: "bad shape"}}})

	sols, err := e.Solve(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sols)

	st := e.State()
	assert.Equal(t, 2, st.ConstraintViolationCounts["schema_validation"])
	assert.Contains(t, st.RecentViolations, "schema_validation: Schema error at $.structure: bad shape")
	assert.Zero(t, ev.calls, "constraints are not evaluated after a schema failure")
}

func TestValidationDisabledAcceptsEverything(t *testing.T) {
	cfg := testConfig(3, 3)
	cfg.EnableConstraintValidation = false
	cfg.EnableSchemaValidation = false
	ev := &fakeEvaluator{valid: func(domain.DesignObject) bool { return false }}
	e := New(cfg, &fakeGenerator{}, assign.New(), ev,
		fakeSchema{errs: []domain.SchemaError{{Path: "$", Message: "never"}}})

	sols, err := e.Solve(context.Background())
	require.NoError(t, err)
	assert.Len(t, sols, 3)
	assert.Zero(t, ev.calls)
}

func TestStepFailuresAreRecoveredAndCounted(t *testing.T) {
	rec := &fakeRecorder{}
	gen := &fakeGenerator{panicAt: 2}
	e := newEngine(testConfig(4, 4), gen, &fakeEvaluator{}, WithRecorder(rec))

	sols, err := e.Solve(context.Background())
	require.NoError(t, err)

	st := e.State()
	assert.Len(t, sols, 3)
	assert.Equal(t, 4, st.IterationCount)
	assert.Equal(t, 1, st.FailedSteps)
	assert.Equal(t, 4, st.CandidatesEvaluated)
	assert.Equal(t, []string{"structure_generation"}, rec.failures)
}

func TestEvaluatorPanicInvalidatesCandidate(t *testing.T) {
	e := newEngine(testConfig(2, 2), &fakeGenerator{}, &fakeEvaluator{panc: true})

	obj, valid, err := e.ExploreStep(context.Background())
	require.Error(t, err)
	assert.False(t, valid)
	assert.Equal(t, "candidate_1", obj.ID)
	assert.True(t, domain.IsKind(err, domain.KindExecution))
	assert.Equal(t, 1, e.State().FailedSteps)
}

func TestAssignmentFailureIsAStepFailure(t *testing.T) {
	gen := &fakeGenerator{build: func(int) domain.Structure {
		return domain.Structure{Components: []domain.Component{{ID: "x", Type: "sensor", Properties: domain.Properties{
			"bad": domain.Variable(domain.VariableDeclaration{Type: domain.TypeInt, Constraints: map[string]any{"min": 5, "max": 1}}),
		}}}}
	}}
	e := newEngine(testConfig(3, 3), gen, &fakeEvaluator{})

	_, valid, err := e.ExploreStep(context.Background())
	require.Error(t, err)
	assert.False(t, valid)
	assert.True(t, domain.IsKind(err, domain.KindInvalidValue))
	assert.Equal(t, 1, e.State().FailedSteps)
}

func TestExploreStepLifecycle(t *testing.T) {
	e := newEngine(testConfig(1, 1), &fakeGenerator{}, &fakeEvaluator{})
	assert.Equal(t, domain.StatusIdle, e.Status())

	_, valid, err := e.ExploreStep(context.Background())
	require.NoError(t, err)
	assert.True(t, valid)
	assert.Equal(t, domain.StatusRunning, e.Status())

	_, err = e.Solve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, e.Status())

	_, _, err = e.ExploreStep(context.Background())
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindExecution))

	e.Reset()
	assert.Equal(t, domain.StatusIdle, e.Status())
	assert.Empty(t, e.Solutions())
	assert.Zero(t, e.State().IterationCount)

	_, _, err = e.ExploreStep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, e.State().IterationCount)
}

func TestGenerationRequestCarriesLimitsAndBestSize(t *testing.T) {
	gen := &fakeGenerator{}
	cfg := testConfig(3, 3)
	cfg.MaxStructureSize = 7
	cfg.MaxVariablesPerStructure = 4
	e := newEngine(cfg, gen, &fakeEvaluator{})

	_, err := e.Solve(context.Background())
	require.NoError(t, err)
	require.Len(t, gen.requests, 3)

	first := gen.requests[0]
	assert.Equal(t, 7, first.MaxSize)
	assert.Equal(t, 4, first.MaxVariables)
	assert.Equal(t, 1, first.Iteration)
	assert.Zero(t, first.BestSize)
	assert.Equal(t, 2, gen.requests[1].BestSize)
}
