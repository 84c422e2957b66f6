package config

// YAMLProblem is the on-disk form of a problem file.
type YAMLProblem struct {
	Name        string           `yaml:"name"`
	Description string           `yaml:"description"`
	Generator   YAMLGenerator    `yaml:"generator"`
	Constraints []YAMLConstraint `yaml:"constraints"`
	Schema      []YAMLSchemaRule `yaml:"schema"`
}

type YAMLGenerator struct {
	ComponentTypes    []string `yaml:"component_types"`
	RelationshipTypes []string `yaml:"relationship_types"`
	MinComponents     int      `yaml:"min_components"`
	MaxComponents     int      `yaml:"max_components"`
	MaxStructures     int      `yaml:"max_structures"`

	Variables []YAMLVariable `yaml:"variables"`
}

type YAMLVariable struct {
	Owner       string         `yaml:"owner"`
	OwnerType   string         `yaml:"owner_type"`
	Property    string         `yaml:"property"`
	Type        string         `yaml:"type"`
	Constraints map[string]any `yaml:"constraints"`
	DependsOn   []string       `yaml:"depends_on"`
}

// YAMLConstraint keeps every key besides the common ones as kind-specific
// parameters.
type YAMLConstraint struct {
	ID          string `yaml:"id"`
	Kind        string `yaml:"kind"`
	Description string `yaml:"description"`
	Severity    string `yaml:"severity"`

	Params map[string]any `yaml:",inline"`
}

type YAMLSchemaRule struct {
	Path     string   `yaml:"path"`
	Required bool     `yaml:"required"`
	Type     string   `yaml:"type"`
	MinItems *int     `yaml:"min_items"`
	MaxItems *int     `yaml:"max_items"`
	Min      *float64 `yaml:"min"`
	Max      *float64 `yaml:"max"`
	Enum     []any    `yaml:"enum"`
	Pattern  string   `yaml:"pattern"`
}

// YAMLProfile is a named solver configuration: an optional preset and
// per-key overrides applied on top of it.
type YAMLProfile struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Preset      string         `yaml:"preset"`
	Solver      map[string]any `yaml:"solver"`
}
