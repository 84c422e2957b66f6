package domain

import (
	"fmt"
	"strings"
)

// Problem is a named exploration task: what to generate, which constraints a
// candidate must satisfy and which document rules it must follow.
type Problem struct {
	Name        string
	Description string
	Path        string

	Generator   GeneratorSpec
	Constraints []ConstraintSpec
	Schema      []SchemaRule
}

// ProblemRef is a lightweight listing entry.
type ProblemRef struct {
	Name string
	Path string
}

// GeneratorSpec shapes the structures produced by the default generator.
type GeneratorSpec struct {
	ComponentTypes    []string
	RelationshipTypes []string
	MinComponents     int
	MaxComponents     int
	// MaxStructures caps how many structures the generator hands out;
	// zero means unlimited.
	MaxStructures int
	Variables     []VariableTemplate
}

type OwnerKind string

const (
	OwnerComponent    OwnerKind = "component"
	OwnerRelationship OwnerKind = "relationship"
)

// VariableTemplate attaches a variable property to every generated owner of a
// given type (empty OwnerType matches every type).
type VariableTemplate struct {
	Owner       OwnerKind
	OwnerType   string
	Property    string
	Declaration VariableDeclaration
}

func (t VariableTemplate) Matches(owner OwnerKind, typ string) bool {
	return t.Owner == owner && (t.OwnerType == "" || t.OwnerType == typ)
}

// ConstraintSpec is the declarative form of a constraint as written in a
// problem file. Params are kind-specific.
type ConstraintSpec struct {
	ID          string
	Kind        string
	Description string
	Severity    Severity
	Params      map[string]any
}

func (c ConstraintSpec) String() string {
	return fmt.Sprintf("%s(%s)", c.Kind, c.ID)
}

// SchemaRule is one document rule. Path is a JSONPath expression evaluated
// against the design object document.
type SchemaRule struct {
	Path     string
	Required bool
	Type     string
	MinItems *int
	MaxItems *int
	Min      *float64
	Max      *float64
	Enum     []any
	Pattern  string
}

// SchemaTypes lists the accepted values of SchemaRule.Type.
var SchemaTypes = []string{"object", "array", "string", "number", "integer", "boolean", "null"}

func IsSchemaType(s string) bool {
	for _, t := range SchemaTypes {
		if t == s {
			return true
		}
	}
	return false
}

// Slug returns a filename-safe version of the problem name.
func (p Problem) Slug() string {
	return Slugify(p.Name)
}

// Slugify lowercases s and collapses anything outside [a-z0-9] into single
// dashes.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	b.Grow(len(s))

	lastDash := false
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastDash = false
			continue
		}
		if !lastDash {
			b.WriteByte('-')
			lastDash = true
		}
	}
	return strings.Trim(b.String(), "-")
}
