package domain

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ExplorationStrategy is the generation-order hint forwarded to collaborators.
type ExplorationStrategy string

const (
	ExploreBreadthFirst ExplorationStrategy = "breadth_first"
	ExploreDepthFirst   ExplorationStrategy = "depth_first"
	ExploreBestFirst    ExplorationStrategy = "best_first"
	ExploreRandom       ExplorationStrategy = "random"
)

func ParseExplorationStrategy(s string) (ExplorationStrategy, error) {
	v := ExplorationStrategy(strings.TrimSpace(s))
	switch v {
	case ExploreBreadthFirst, ExploreDepthFirst, ExploreBestFirst, ExploreRandom:
		return v, nil
	}
	return "", newOpError("config.exploration_strategy", KindUnknownStrategy, "",
		fmt.Sprintf("unknown exploration strategy %q", s))
}

// AssignmentStrategy selects how values (or structures) are chosen.
type AssignmentStrategy string

const (
	AssignRandom     AssignmentStrategy = "random"
	AssignSystematic AssignmentStrategy = "systematic"
	AssignHeuristic  AssignmentStrategy = "heuristic"
)

func ParseAssignmentStrategy(s string) (AssignmentStrategy, error) {
	v := AssignmentStrategy(strings.TrimSpace(s))
	switch v {
	case AssignRandom, AssignSystematic, AssignHeuristic:
		return v, nil
	}
	return "", newOpError("config.assignment_strategy", KindUnknownStrategy, "",
		fmt.Sprintf("unknown assignment strategy %q", s))
}

// SolverConfig drives one engine. It is a plain value: copies are independent
// (the pointer fields are never mutated in place).
type SolverConfig struct {
	ExplorationStrategy ExplorationStrategy `json:"exploration_strategy" validate:"required,oneof=breadth_first depth_first best_first random"`
	MaxIterations       int                 `json:"max_iterations" validate:"gt=0"`
	MaxSolutions        int                 `json:"max_solutions" validate:"gt=0"`
	TimeoutSeconds      *float64            `json:"timeout_seconds,omitempty" validate:"omitempty,gt=0"`

	StructureGenerationStrategy AssignmentStrategy `json:"structure_generation_strategy" validate:"required,oneof=random systematic heuristic"`
	VariableAssignmentStrategy  AssignmentStrategy `json:"variable_assignment_strategy" validate:"required,oneof=random systematic heuristic"`
	MaxStructureSize            int                `json:"max_structure_size" validate:"gt=0"`
	MaxVariablesPerStructure    int                `json:"max_variables_per_structure" validate:"gt=0"`

	EnableSchemaValidation     bool `json:"enable_schema_validation"`
	EnableConstraintValidation bool `json:"enable_constraint_validation"`

	// ParallelEvaluation is accepted but evaluation stays sequential.
	ParallelEvaluation bool   `json:"parallel_evaluation"`
	CacheSize          int    `json:"cache_size" validate:"gt=0"`
	RandomSeed         *int64 `json:"random_seed,omitempty"`
	LogLevel           string `json:"log_level" validate:"required,oneof=DEBUG INFO WARNING ERROR CRITICAL"`

	AllowRuntimeModification bool `json:"allow_runtime_modification"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func DefaultSolverConfig() SolverConfig {
	return SolverConfig{
		ExplorationStrategy:         ExploreBreadthFirst,
		MaxIterations:               1000,
		MaxSolutions:                10,
		StructureGenerationStrategy: AssignRandom,
		VariableAssignmentStrategy:  AssignRandom,
		MaxStructureSize:            100,
		MaxVariablesPerStructure:    50,
		EnableSchemaValidation:      true,
		EnableConstraintValidation:  true,
		CacheSize:                   1000,
		LogLevel:                    "INFO",
		AllowRuntimeModification:    true,
	}
}

// Validate checks every field; the error names each offending field.
func (c SolverConfig) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &OpError{Op: "config.validate", Kind: KindInvalidConfig, Err: err}
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q (value=%v)", configKey(fe.StructField()), fe.Tag(), fe.Value()))
	}
	return newOpError("config.validate", KindInvalidConfig, "", strings.Join(msgs, "; "))
}

// Timeout returns the time budget in seconds, if one is set.
func (c SolverConfig) Timeout() (float64, bool) {
	if c.TimeoutSeconds == nil {
		return 0, false
	}
	return *c.TimeoutSeconds, true
}

// Presets lists the built-in preset names.
func Presets() []string {
	return []string{"balanced", "debug", "fast", "thorough"}
}

// WithPreset returns c with a built-in preset applied and validated.
func (c SolverConfig) WithPreset(name string) (SolverConfig, error) {
	var changes map[string]any
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "fast":
		changes = map[string]any{"exploration_strategy": "random", "max_iterations": 100, "max_solutions": 5}
	case "thorough":
		changes = map[string]any{"exploration_strategy": "breadth_first", "max_iterations": 5000, "max_solutions": 50}
	case "balanced":
		changes = map[string]any{"exploration_strategy": "best_first", "max_iterations": 1000, "max_solutions": 10}
	case "debug":
		changes = map[string]any{"exploration_strategy": "depth_first", "max_iterations": 50, "max_solutions": 3, "log_level": "DEBUG"}
	default:
		return c, newOpError("config.preset", KindInvalidConfig, "",
			fmt.Sprintf("unknown preset %q (available: %s)", name, strings.Join(Presets(), ", ")))
	}
	return c.WithChanges(changes)
}

// WithChanges applies named changes to a copy of c and validates the copy.
// c itself is never modified; on error the returned config is c unchanged.
func (c SolverConfig) WithChanges(changes map[string]any) (SolverConfig, error) {
	next := c
	keys := make([]string, 0, len(changes))
	for k := range changes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if err := next.set(k, changes[k]); err != nil {
			return c, &OpError{Op: "config.change", Kind: KindInvalidConfig, Path: k, Err: fmt.Errorf("%v: %w", err, ErrInvalidConfig)}
		}
	}
	if err := next.Validate(); err != nil {
		return c, err
	}
	return next, nil
}

// ConfigKeys lists every key accepted by WithChanges.
func ConfigKeys() []string {
	return []string{
		"exploration_strategy", "max_iterations", "max_solutions", "timeout_seconds",
		"structure_generation_strategy", "variable_assignment_strategy",
		"max_structure_size", "max_variables_per_structure",
		"enable_schema_validation", "enable_constraint_validation",
		"parallel_evaluation", "cache_size", "random_seed", "log_level",
		"allow_runtime_modification",
	}
}

// Get returns the current value of a config key.
func (c SolverConfig) Get(key string) (any, bool) {
	switch key {
	case "exploration_strategy":
		return string(c.ExplorationStrategy), true
	case "max_iterations":
		return c.MaxIterations, true
	case "max_solutions":
		return c.MaxSolutions, true
	case "timeout_seconds":
		if c.TimeoutSeconds == nil {
			return nil, true
		}
		return *c.TimeoutSeconds, true
	case "structure_generation_strategy":
		return string(c.StructureGenerationStrategy), true
	case "variable_assignment_strategy":
		return string(c.VariableAssignmentStrategy), true
	case "max_structure_size":
		return c.MaxStructureSize, true
	case "max_variables_per_structure":
		return c.MaxVariablesPerStructure, true
	case "enable_schema_validation":
		return c.EnableSchemaValidation, true
	case "enable_constraint_validation":
		return c.EnableConstraintValidation, true
	case "parallel_evaluation":
		return c.ParallelEvaluation, true
	case "cache_size":
		return c.CacheSize, true
	case "random_seed":
		if c.RandomSeed == nil {
			return nil, true
		}
		return *c.RandomSeed, true
	case "log_level":
		return c.LogLevel, true
	case "allow_runtime_modification":
		return c.AllowRuntimeModification, true
	}
	return nil, false
}

// Diff lists the keys whose values differ between c and other, as
// key -> [old, new].
func (c SolverConfig) Diff(other SolverConfig) map[string][2]any {
	out := map[string][2]any{}
	for _, k := range ConfigKeys() {
		a, _ := c.Get(k)
		b, _ := other.Get(k)
		if !SameValue(a, b) {
			out[k] = [2]any{a, b}
		}
	}
	return out
}

func (c *SolverConfig) set(key string, v any) error {
	var err error
	switch key {
	case "exploration_strategy":
		var s string
		if s, err = asString(v); err == nil {
			c.ExplorationStrategy = ExplorationStrategy(s)
		}
	case "max_iterations":
		c.MaxIterations, err = asInt(v)
	case "max_solutions":
		c.MaxSolutions, err = asInt(v)
	case "timeout_seconds":
		if v == nil {
			c.TimeoutSeconds = nil
			return nil
		}
		var f float64
		if f, err = asFloat(v); err == nil {
			c.TimeoutSeconds = &f
		}
	case "structure_generation_strategy":
		var s string
		if s, err = asString(v); err == nil {
			c.StructureGenerationStrategy = AssignmentStrategy(s)
		}
	case "variable_assignment_strategy":
		var s string
		if s, err = asString(v); err == nil {
			c.VariableAssignmentStrategy = AssignmentStrategy(s)
		}
	case "max_structure_size":
		c.MaxStructureSize, err = asInt(v)
	case "max_variables_per_structure":
		c.MaxVariablesPerStructure, err = asInt(v)
	case "enable_schema_validation":
		c.EnableSchemaValidation, err = asBool(v)
	case "enable_constraint_validation":
		c.EnableConstraintValidation, err = asBool(v)
	case "parallel_evaluation":
		c.ParallelEvaluation, err = asBool(v)
	case "cache_size":
		c.CacheSize, err = asInt(v)
	case "random_seed":
		if v == nil {
			c.RandomSeed = nil
			return nil
		}
		var seed int64
		if seed, err = asInt64(v); err == nil {
			c.RandomSeed = &seed
		}
	case "log_level":
		var s string
		if s, err = asString(v); err == nil {
			c.LogLevel = strings.ToUpper(s)
		}
	case "allow_runtime_modification":
		c.AllowRuntimeModification, err = asBool(v)
	default:
		return fmt.Errorf("unknown configuration parameter %q", key)
	}
	return err
}

func configKey(field string) string {
	var b strings.Builder
	for i, r := range field {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func asString(v any) (string, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case ExplorationStrategy:
		return string(s), nil
	case AssignmentStrategy:
		return string(s), nil
	}
	return "", fmt.Errorf("expected string, got %T", v)
}

func asInt(v any) (int, error) {
	n, err := asInt64(v)
	if err != nil {
		return 0, err
	}
	if int64(int(n)) != n {
		return 0, fmt.Errorf("integer %d overflows int", n)
	}
	return int(n), nil
}

// asInt64 converts integer kinds without a float64 round trip. Integral
// floats are accepted only while they stay exact.
func asInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int8:
		return int64(n), nil
	case int16:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case uint:
		if uint64(n) > math.MaxInt64 {
			return 0, fmt.Errorf("integer %d overflows int64", n)
		}
		return int64(n), nil
	case uint8:
		return int64(n), nil
	case uint16:
		return int64(n), nil
	case uint32:
		return int64(n), nil
	case uint64:
		if n > math.MaxInt64 {
			return 0, fmt.Errorf("integer %d overflows int64", n)
		}
		return int64(n), nil
	case float64:
		if integralFloat(n) && math.Abs(n) <= 1<<53 {
			return int64(n), nil
		}
	}
	return 0, fmt.Errorf("expected integer, got %T", v)
}

func asFloat(v any) (float64, error) {
	if f, ok := ToFloat(v); ok {
		return f, nil
	}
	return 0, fmt.Errorf("expected number, got %T", v)
}

func asBool(v any) (bool, error) {
	if b, ok := v.(bool); ok {
		return b, nil
	}
	return false, fmt.Errorf("expected bool, got %T", v)
}
