package usecase

import (
	"context"

	"github.com/forestbook1/sep-solver-sub001/internal/domain"
	"github.com/forestbook1/sep-solver-sub001/internal/ports"
	"github.com/forestbook1/sep-solver-sub001/internal/usecase/evaluate"
)

type ValidateProblem struct {
	problems ports.ProblemLoader
	profiles ports.ProfileLoader
	registry *evaluate.Registry
}

type ValidateOption func(*ValidateProblem)

// WithConstraintKinds validates against a registry holding extra kinds.
func WithConstraintKinds(r *evaluate.Registry) ValidateOption {
	return func(uc *ValidateProblem) {
		if r != nil {
			uc.registry = r
		}
	}
}

func NewValidateProblem(pl ports.ProblemLoader, prl ports.ProfileLoader, opts ...ValidateOption) *ValidateProblem {
	uc := &ValidateProblem{
		problems: pl,
		profiles: prl,
		registry: evaluate.NewRegistry(),
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// ValidationReport summarizes a problem that passed validation.
type ValidationReport struct {
	Problem     string
	Constraints map[domain.ConstraintCategory]int
	SchemaRules int
	// MinComponents and MaxComponents are the effective size bounds after
	// constraints and max_structure_size are applied.
	MinComponents int
	MaxComponents int
	// SampleVariables and SampleCombinations describe one generated
	// structure; SampleCombinations is -1 when some domain is unbounded.
	SampleVariables    int
	SampleCombinations int64
	Config             domain.SolverConfig
}

// Execute checks a problem and profile without exploring: constraints and
// schema rules must compile, the size bounds must leave at least one
// component count and one sample structure must generate and bind.
func (uc *ValidateProblem) Execute(ctx context.Context, problemPath string, profile string) (ValidationReport, error) {
	p, err := uc.problems.LoadProblem(problemPath)
	if err != nil {
		return ValidationReport{}, err
	}

	cfg := domain.DefaultSolverConfig()
	if profile != "" {
		if cfg, err = uc.profiles.LoadProfile(profile); err != nil {
			return ValidationReport{}, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return ValidationReport{}, err
	}

	parts, err := BuildParts(p, cfg, uc.registry, nil)
	if err != nil {
		return ValidationReport{}, err
	}

	req := domain.GenerationRequest{
		Strategy:     cfg.ExplorationStrategy,
		Method:       cfg.StructureGenerationStrategy,
		Constraints:  parts.Constraints,
		Iteration:    1,
		MaxSize:      cfg.MaxStructureSize,
		MaxVariables: cfg.MaxVariablesPerStructure,
	}
	lo, hi := parts.Generator.Bounds(req)
	if lo > hi {
		return ValidationReport{}, domain.NewError("validate.bounds", domain.KindInvalidConfig, p.Path,
			"no component count satisfies the bounds [%d, %d]", lo, hi)
	}

	sample, err := parts.Generator.Generate(ctx, req)
	if err != nil {
		return ValidationReport{}, err
	}
	if _, err := parts.Assigner.Assign(sample, cfg.VariableAssignmentStrategy); err != nil {
		return ValidationReport{}, withPath(err, p.Path)
	}
	space := parts.Assigner.AssignmentSpace(sample)
	combos, ok := space.EstimateTotalCombinations()
	if !ok {
		combos = -1
	}

	return ValidationReport{
		Problem:            p.Name,
		Constraints:        parts.Constraints.Count(),
		SchemaRules:        parts.Schema.Rules(),
		MinComponents:      lo,
		MaxComponents:      hi,
		SampleVariables:    space.VariableCount(),
		SampleCombinations: combos,
		Config:             cfg,
	}, nil
}
