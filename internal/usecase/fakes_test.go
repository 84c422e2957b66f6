package usecase

import (
	"errors"
	"sync"
	"time"

	"github.com/forestbook1/sep-solver-sub001/internal/domain"
	"github.com/forestbook1/sep-solver-sub001/internal/ports"
)

type fakeProblemLoader struct {
	p   domain.Problem
	err error
}

func (f fakeProblemLoader) LoadProblem(path string) (domain.Problem, error) {
	if f.err != nil {
		return domain.Problem{}, f.err
	}
	p := f.p
	p.Path = path
	return p, nil
}
func (f fakeProblemLoader) ListProblems(_ string) ([]domain.ProblemRef, error) {
	return nil, nil
}

type fakeProfileLoader struct {
	cfgs map[string]domain.SolverConfig
}

func (f fakeProfileLoader) LoadProfile(name string) (domain.SolverConfig, error) {
	cfg, ok := f.cfgs[name]
	if !ok {
		return domain.SolverConfig{}, domain.NewError("fake.profile", domain.KindNotFound, name, "no profile %q", name)
	}
	return cfg, nil
}
func (f fakeProfileLoader) ListProfiles(_ string) ([]domain.ProfileRef, error) {
	return nil, nil
}

type fakeStore struct {
	saved bool
	last  domain.RunArtifact
	err   error
}

func (s *fakeStore) SaveRun(run domain.RunArtifact) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.saved = true
	s.last = run
	return "run-123", nil
}
func (s *fakeStore) ListRuns() ([]domain.RunRef, error) { return nil, nil }
func (s *fakeStore) LoadRun(_ string) (domain.RunArtifact, error) {
	return domain.RunArtifact{}, errors.New("not implemented")
}

type countingRecorder struct {
	mu    sync.Mutex
	steps int
	stops []string
}

func (r *countingRecorder) ObserveStep(string, bool, time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps++
}
func (r *countingRecorder) ObserveViolation(string) {}
func (r *countingRecorder) ObserveFailure(string)   {}
func (r *countingRecorder) ObserveStop(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stops = append(r.stops, reason)
}

var (
	_ ports.ProblemLoader       = fakeProblemLoader{}
	_ ports.ProfileLoader       = fakeProfileLoader{}
	_ ports.RunStore            = (*fakeStore)(nil)
	_ ports.ExplorationRecorder = (*countingRecorder)(nil)
)

func ip(n int) *int { return &n }

// smallProblem generates two or three processors and memories with one
// bounded variable each.
func smallProblem() domain.Problem {
	return domain.Problem{
		Name: "Edge box",
		Generator: domain.GeneratorSpec{
			ComponentTypes:    []string{"processor", "memory"},
			RelationshipTypes: []string{"connects_to"},
			MinComponents:     2,
			MaxComponents:     3,
			Variables: []domain.VariableTemplate{{
				Owner:       domain.OwnerComponent,
				OwnerType:   "processor",
				Property:    "frequency",
				Declaration: domain.VariableDeclaration{Type: domain.TypeInt, Constraints: map[string]any{"min": 1, "max": 4}},
			}},
		},
		Constraints: []domain.ConstraintSpec{
			{ID: "size", Kind: "component_count", Severity: domain.SeverityError, Params: map[string]any{"min": 2, "max": 3}},
		},
	}
}

func seeded(seed int64) domain.SolverConfig {
	cfg := domain.DefaultSolverConfig()
	cfg.RandomSeed = &seed
	cfg.MaxIterations = 50
	cfg.MaxSolutions = 3
	return cfg
}
