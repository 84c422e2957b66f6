package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/forestbook1/sep-solver-sub001/internal/domain"
)

func MapProblem(path string, yp YAMLProblem) (domain.Problem, error) {
	if strings.TrimSpace(yp.Name) == "" {
		return domain.Problem{}, invalidField(path, "name", "problem name is required")
	}

	gen, err := mapGenerator(path, yp.Generator)
	if err != nil {
		return domain.Problem{}, err
	}

	p := domain.Problem{
		Name:        yp.Name,
		Description: strings.TrimSpace(yp.Description),
		Path:        path,
		Generator:   gen,
		Constraints: make([]domain.ConstraintSpec, 0, len(yp.Constraints)),
		Schema:      make([]domain.SchemaRule, 0, len(yp.Schema)),
	}

	seen := map[string]bool{}
	for i, c := range yp.Constraints {
		fieldPrefix := fmt.Sprintf("constraints[%d]", i)

		id := strings.TrimSpace(c.ID)
		if id == "" {
			return domain.Problem{}, invalidField(path, fieldPrefix+".id", "constraint id is required")
		}
		if seen[id] {
			return domain.Problem{}, invalidField(path, fieldPrefix+".id", fmt.Sprintf("duplicate constraint id %q", id))
		}
		seen[id] = true

		if strings.TrimSpace(c.Kind) == "" {
			return domain.Problem{}, invalidField(path, fieldPrefix+".kind", "constraint kind is required")
		}
		sev, err := domain.ParseSeverity(c.Severity)
		if err != nil {
			return domain.Problem{}, invalidField(path, fieldPrefix+".severity", err.Error())
		}

		params := c.Params
		if params == nil {
			params = map[string]any{}
		}
		p.Constraints = append(p.Constraints, domain.ConstraintSpec{
			ID:          id,
			Kind:        strings.TrimSpace(c.Kind),
			Description: c.Description,
			Severity:    sev,
			Params:      params,
		})
	}

	for i, r := range yp.Schema {
		fieldPrefix := fmt.Sprintf("schema[%d]", i)

		if !strings.HasPrefix(strings.TrimSpace(r.Path), "$") {
			return domain.Problem{}, invalidField(path, fieldPrefix+".path", "path must be a JSONPath starting with $")
		}
		if r.Type != "" && !domain.IsSchemaType(r.Type) {
			return domain.Problem{}, invalidField(path, fieldPrefix+".type", fmt.Sprintf("unsupported type %q", r.Type))
		}

		p.Schema = append(p.Schema, domain.SchemaRule{
			Path:     strings.TrimSpace(r.Path),
			Required: r.Required,
			Type:     r.Type,
			MinItems: r.MinItems,
			MaxItems: r.MaxItems,
			Min:      r.Min,
			Max:      r.Max,
			Enum:     r.Enum,
			Pattern:  r.Pattern,
		})
	}

	return p, nil
}

func mapGenerator(path string, yg YAMLGenerator) (domain.GeneratorSpec, error) {
	if yg.MinComponents < 0 {
		return domain.GeneratorSpec{}, invalidField(path, "generator.min_components", "must not be negative")
	}
	if yg.MaxComponents < 0 {
		return domain.GeneratorSpec{}, invalidField(path, "generator.max_components", "must not be negative")
	}
	if yg.MaxComponents > 0 && yg.MinComponents > yg.MaxComponents {
		return domain.GeneratorSpec{}, invalidField(path, "generator.min_components", "must not exceed max_components")
	}
	if yg.MaxStructures < 0 {
		return domain.GeneratorSpec{}, invalidField(path, "generator.max_structures", "must not be negative")
	}

	spec := domain.GeneratorSpec{
		ComponentTypes:    trimAll(yg.ComponentTypes),
		RelationshipTypes: trimAll(yg.RelationshipTypes),
		MinComponents:     yg.MinComponents,
		MaxComponents:     yg.MaxComponents,
		MaxStructures:     yg.MaxStructures,
		Variables:         make([]domain.VariableTemplate, 0, len(yg.Variables)),
	}

	for i, v := range yg.Variables {
		fieldPrefix := fmt.Sprintf("generator.variables[%d]", i)

		owner := domain.OwnerKind(strings.ToLower(strings.TrimSpace(v.Owner)))
		switch owner {
		case "":
			owner = domain.OwnerComponent
		case domain.OwnerComponent, domain.OwnerRelationship:
		default:
			return domain.GeneratorSpec{}, invalidField(path, fieldPrefix+".owner", fmt.Sprintf("unsupported owner %q", v.Owner))
		}

		prop := strings.TrimSpace(v.Property)
		if prop == "" {
			return domain.GeneratorSpec{}, invalidField(path, fieldPrefix+".property", "property is required")
		}
		if strings.Contains(prop, ".") {
			return domain.GeneratorSpec{}, invalidField(path, fieldPrefix+".property", "property must not contain '.'")
		}

		typ := domain.TypeString
		if strings.TrimSpace(v.Type) != "" {
			t, err := domain.ParseValueType(v.Type)
			if err != nil {
				return domain.GeneratorSpec{}, invalidField(path, fieldPrefix+".type", err.Error())
			}
			typ = t
		}

		if err := domain.NewDomain(prop, typ, v.Constraints).Check(); err != nil {
			return domain.GeneratorSpec{}, invalidField(path, fieldPrefix+".constraints", err.Error())
		}

		spec.Variables = append(spec.Variables, domain.VariableTemplate{
			Owner:     owner,
			OwnerType: strings.TrimSpace(v.OwnerType),
			Property:  prop,
			Declaration: domain.VariableDeclaration{
				Type:        typ,
				Constraints: v.Constraints,
				DependsOn:   trimAll(v.DependsOn),
			},
		})
	}

	return spec, nil
}

// MapProfile resolves a profile into a validated solver configuration. The
// preset is applied to the defaults first, then the solver overrides.
func MapProfile(path string, yp YAMLProfile) (domain.SolverConfig, error) {
	cfg := domain.DefaultSolverConfig()

	if p := strings.TrimSpace(yp.Preset); p != "" {
		next, err := cfg.WithPreset(p)
		if err != nil {
			return domain.SolverConfig{}, invalidField(path, "preset", err.Error())
		}
		cfg = next
	}

	if len(yp.Solver) > 0 {
		next, err := cfg.WithChanges(yp.Solver)
		if err != nil {
			return domain.SolverConfig{}, invalidField(path, "solver", err.Error())
		}
		cfg = next
	}

	return cfg, nil
}

// ProfileName is the file name without its extension.
func ProfileName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

func trimAll(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func invalidField(path, field, msg string) error {
	return &domain.OpError{
		Op:   "config.map",
		Kind: domain.KindInvalidConfig,
		Path: path,
		Err:  fmt.Errorf("field %s: %s: %w", field, msg, domain.ErrInvalidConfig),
	}
}
