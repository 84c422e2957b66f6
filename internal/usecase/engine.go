package usecase

import (
	"log/slog"
	"time"

	"github.com/forestbook1/sep-solver-sub001/internal/domain"
	"github.com/forestbook1/sep-solver-sub001/internal/infra/generator"
	"github.com/forestbook1/sep-solver-sub001/internal/ports"
	"github.com/forestbook1/sep-solver-sub001/internal/usecase/assign"
	"github.com/forestbook1/sep-solver-sub001/internal/usecase/evaluate"
	"github.com/forestbook1/sep-solver-sub001/internal/usecase/explore"
	"github.com/forestbook1/sep-solver-sub001/internal/usecase/schema"
)

// EngineParts are the collaborators built for one problem.
type EngineParts struct {
	Constraints *domain.ConstraintSet
	Generator   *generator.Generator
	Assigner    *assign.Assigner
	Evaluator   *evaluate.Evaluator
	Schema      *schema.Validator
}

// BuildParts compiles the problem's constraints and schema rules and seeds
// the generator and assigner from cfg.random_seed when one is set. Problem
// schema rules are checked in addition to the default document rules.
func BuildParts(p domain.Problem, cfg domain.SolverConfig, reg *evaluate.Registry, log *slog.Logger) (EngineParts, error) {
	if reg == nil {
		reg = evaluate.NewRegistry()
	}

	set, err := reg.BuildSet(p.Constraints)
	if err != nil {
		return EngineParts{}, withPath(err, p.Path)
	}

	rules := append(schema.DefaultRules(), p.Schema...)
	sv, err := schema.New(rules, schema.WithLogger(log))
	if err != nil {
		return EngineParts{}, withPath(err, p.Path)
	}

	genOpts := []generator.Option{generator.WithLogger(log)}
	asgOpts := []assign.Option{assign.WithLogger(log)}
	if cfg.RandomSeed != nil {
		genOpts = append(genOpts, generator.WithSeed(*cfg.RandomSeed))
		asgOpts = append(asgOpts, assign.WithSeed(*cfg.RandomSeed))
	}

	return EngineParts{
		Constraints: set,
		Generator:   generator.New(p.Generator, genOpts...),
		Assigner:    assign.New(asgOpts...),
		Evaluator:   evaluate.New(set, evaluate.WithLogger(log)),
		Schema:      sv,
	}, nil
}

// NewEngine builds an exploration engine for the problem.
func NewEngine(p domain.Problem, cfg domain.SolverConfig, reg *evaluate.Registry, rec ports.ExplorationRecorder, log *slog.Logger, now func() time.Time) (*explore.Engine, error) {
	parts, err := BuildParts(p, cfg, reg, log)
	if err != nil {
		return nil, err
	}

	opts := []explore.Option{explore.WithLogger(log), explore.WithRecorder(rec)}
	if now != nil {
		opts = append(opts, explore.WithClock(now))
	}
	return explore.New(cfg, parts.Generator, parts.Assigner, parts.Evaluator, parts.Schema, opts...), nil
}

// withPath attaches the problem file to errors that do not name one.
func withPath(err error, path string) error {
	if oe, ok := err.(*domain.OpError); ok && oe.Path == "" {
		oe.Path = path
	}
	return err
}
