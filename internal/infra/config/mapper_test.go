package config

import (
	"strings"
	"testing"

	"github.com/forestbook1/sep-solver-sub001/internal/domain"
)

func TestMapProblemConstraintFields(t *testing.T) {
	yp := YAMLProblem{
		Name:        "sample",
		Constraints: []YAMLConstraint{{ID: "size"}},
	}

	_, err := MapProblem("problem.yaml", yp)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "constraints[0].kind") {
		t.Fatalf("expected kind error, got %v", err)
	}

	yp.Constraints = []YAMLConstraint{
		{ID: "size", Kind: "component_count"},
		{ID: "size", Kind: "resource"},
	}
	_, err = MapProblem("problem.yaml", yp)
	if err == nil || !strings.Contains(err.Error(), "constraints[1].id") {
		t.Fatalf("expected duplicate id error, got %v", err)
	}

	yp.Constraints = []YAMLConstraint{{ID: "size", Kind: "component_count", Severity: "fatal"}}
	_, err = MapProblem("problem.yaml", yp)
	if err == nil || !strings.Contains(err.Error(), "constraints[0].severity") {
		t.Fatalf("expected severity error, got %v", err)
	}
	if !domain.IsKind(err, domain.KindInvalidConfig) {
		t.Fatalf("expected invalid_config kind, got %v", err)
	}
}

func TestMapProblemVariablesAndSchema(t *testing.T) {
	yp := YAMLProblem{
		Name: "sample",
		Generator: YAMLGenerator{
			ComponentTypes: []string{" processor ", "", "memory"},
			MinComponents:  2,
			MaxComponents:  4,
			Variables: []YAMLVariable{
				{OwnerType: "processor", Property: "frequency", Type: "int", Constraints: map[string]any{"min": 1, "max": 8}},
				{Owner: "relationship", Property: "bandwidth", Type: "float", Constraints: map[string]any{"min": 0.5, "max": 2.0}, DependsOn: []string{" frequency "}},
			},
		},
		Constraints: []YAMLConstraint{
			{ID: "size", Kind: "component_count", Params: map[string]any{"min": 2}},
		},
		Schema: []YAMLSchemaRule{{Path: " $.structure.components ", Type: "array"}},
	}

	p, err := MapProblem("problem.yaml", yp)
	if err != nil {
		t.Fatalf("MapProblem: %v", err)
	}

	if got := p.Generator.ComponentTypes; len(got) != 2 || got[0] != "processor" || got[1] != "memory" {
		t.Fatalf("component types not trimmed: %v", got)
	}
	if len(p.Generator.Variables) != 2 {
		t.Fatalf("expected 2 variable templates, got %d", len(p.Generator.Variables))
	}
	if p.Generator.Variables[0].Owner != domain.OwnerComponent {
		t.Fatalf("owner should default to component, got %q", p.Generator.Variables[0].Owner)
	}
	rel := p.Generator.Variables[1]
	if rel.Owner != domain.OwnerRelationship || rel.Declaration.Type != domain.TypeFloat {
		t.Fatalf("unexpected relationship template: %+v", rel)
	}
	if len(rel.Declaration.DependsOn) != 1 || rel.Declaration.DependsOn[0] != "frequency" {
		t.Fatalf("depends_on not trimmed: %v", rel.Declaration.DependsOn)
	}
	if p.Constraints[0].Severity != domain.SeverityError {
		t.Fatalf("severity should default to error, got %q", p.Constraints[0].Severity)
	}
	if p.Constraints[0].Params["min"] != 2 {
		t.Fatalf("params not carried: %v", p.Constraints[0].Params)
	}
	if p.Schema[0].Path != "$.structure.components" {
		t.Fatalf("schema path not trimmed: %q", p.Schema[0].Path)
	}
}

func TestMapProblemRejectsBadVariables(t *testing.T) {
	cases := []struct {
		name  string
		v     YAMLVariable
		field string
	}{
		{"owner", YAMLVariable{Owner: "system", Property: "x"}, "variables[0].owner"},
		{"empty property", YAMLVariable{Property: " "}, "variables[0].property"},
		{"dotted property", YAMLVariable{Property: "a.b"}, "variables[0].property"},
		{"type", YAMLVariable{Property: "x", Type: "complex"}, "variables[0].type"},
		{"domain", YAMLVariable{Property: "x", Type: "int", Constraints: map[string]any{"min": 9, "max": 1}}, "variables[0].constraints"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			yp := YAMLProblem{Name: "sample", Generator: YAMLGenerator{Variables: []YAMLVariable{c.v}}}
			_, err := MapProblem("problem.yaml", yp)
			if err == nil || !strings.Contains(err.Error(), c.field) {
				t.Fatalf("expected %s error, got %v", c.field, err)
			}
		})
	}
}

func TestMapProfilePresetThenOverrides(t *testing.T) {
	cfg, err := MapProfile("quick.yaml", YAMLProfile{
		Preset: "fast",
		Solver: map[string]any{"max_iterations": 42},
	})
	if err != nil {
		t.Fatalf("MapProfile: %v", err)
	}
	if cfg.ExplorationStrategy != domain.ExploreRandom {
		t.Fatalf("preset strategy lost: %q", cfg.ExplorationStrategy)
	}
	if cfg.MaxIterations != 42 || cfg.MaxSolutions != 5 {
		t.Fatalf("unexpected limits: iterations=%d solutions=%d", cfg.MaxIterations, cfg.MaxSolutions)
	}

	_, err = MapProfile("bad.yaml", YAMLProfile{Preset: "turbo"})
	if err == nil || !strings.Contains(err.Error(), "field preset") {
		t.Fatalf("expected preset error, got %v", err)
	}

	_, err = MapProfile("bad.yaml", YAMLProfile{Solver: map[string]any{"max_iterations": 0}})
	if err == nil || !strings.Contains(err.Error(), "field solver") {
		t.Fatalf("expected solver error, got %v", err)
	}
}
