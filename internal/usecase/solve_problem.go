package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/forestbook1/sep-solver-sub001/internal/domain"
	"github.com/forestbook1/sep-solver-sub001/internal/ports"
	"github.com/forestbook1/sep-solver-sub001/internal/usecase/evaluate"
	"github.com/forestbook1/sep-solver-sub001/internal/usecase/explore"
)

type SolveProblem struct {
	problems ports.ProblemLoader
	profiles ports.ProfileLoader
	store    ports.RunStore

	registry *evaluate.Registry
	recorder ports.ExplorationRecorder
	log      *slog.Logger
	now      func() time.Time
	onEngine func(*explore.Engine)
}

type SolveOption func(*SolveProblem)

func WithRegistry(r *evaluate.Registry) SolveOption {
	return func(uc *SolveProblem) {
		if r != nil {
			uc.registry = r
		}
	}
}

func WithRecorder(r ports.ExplorationRecorder) SolveOption {
	return func(uc *SolveProblem) { uc.recorder = r }
}

func WithLogger(l *slog.Logger) SolveOption {
	return func(uc *SolveProblem) {
		if l != nil {
			uc.log = l
		}
	}
}

func WithClock(now func() time.Time) SolveOption {
	return func(uc *SolveProblem) { uc.now = now }
}

// WithEngineHook is called with the engine before exploration starts, e.g.
// to attach a configuration watcher.
func WithEngineHook(fn func(*explore.Engine)) SolveOption {
	return func(uc *SolveProblem) { uc.onEngine = fn }
}

// NewSolveProblem wires the use case. store may be nil, in which case runs
// are not persisted.
func NewSolveProblem(pl ports.ProblemLoader, prl ports.ProfileLoader, store ports.RunStore, opts ...SolveOption) *SolveProblem {
	uc := &SolveProblem{
		problems: pl,
		profiles: prl,
		store:    store,
		registry: evaluate.NewRegistry(),
		log:      slog.New(slog.NewJSONHandler(io.Discard, nil)),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

type SolveRequest struct {
	ProblemPath string
	// Profile is a profile name, a preset or a path; empty means defaults.
	Profile string
	// Overrides are applied on top of the profile.
	Overrides map[string]any
}

// Execute loads the problem and profile, explores and persists the run. The
// run is saved even when exploration was cancelled, so partial solutions
// survive; the exploration error is still returned.
func (uc *SolveProblem) Execute(ctx context.Context, req SolveRequest) (domain.RunArtifact, string, error) {
	p, err := uc.problems.LoadProblem(req.ProblemPath)
	if err != nil {
		return domain.RunArtifact{}, "", err
	}

	cfg, err := uc.config(req)
	if err != nil {
		return domain.RunArtifact{}, "", err
	}

	eng, err := NewEngine(p, cfg, uc.registry, uc.recorder, uc.log, uc.now)
	if err != nil {
		return domain.RunArtifact{}, "", err
	}
	if uc.onEngine != nil {
		uc.onEngine(eng)
	}

	run := domain.RunArtifact{
		ProblemName: p.Name,
		ProblemPath: req.ProblemPath,
		ProfileName: req.Profile,
		StartedAt:   uc.now(),
	}

	sols, solveErr := eng.Solve(ctx)

	run.FinishedAt = uc.now()
	run.Config = eng.Config()
	run.Summary = eng.Summary()
	run.Solutions = make([]domain.SolutionRecord, 0, len(sols))
	for _, s := range sols {
		score, _ := eng.ScoreOf(s.ID)
		run.Solutions = append(run.Solutions, domain.NewSolutionRecord(s, score))
	}
	if solveErr != nil {
		run.Error = solveErr.Error()
	}

	uc.log.Info("solve.done",
		"problem", p.Name,
		"profile", req.Profile,
		"status", run.Summary.Status,
		"stop_reason", run.Summary.StopReason,
		"solutions", len(run.Solutions),
	)

	if uc.store == nil {
		return run, "", solveErr
	}

	id, saveErr := uc.store.SaveRun(run)
	if saveErr != nil {
		return run, "", errors.Join(solveErr, fmt.Errorf("save run: %w", saveErr))
	}
	run.ID = id
	return run, id, solveErr
}

func (uc *SolveProblem) config(req SolveRequest) (domain.SolverConfig, error) {
	cfg := domain.DefaultSolverConfig()
	if req.Profile != "" {
		loaded, err := uc.profiles.LoadProfile(req.Profile)
		if err != nil {
			return domain.SolverConfig{}, err
		}
		cfg = loaded
	}
	if len(req.Overrides) > 0 {
		return cfg.WithChanges(req.Overrides)
	}
	return cfg, cfg.Validate()
}
