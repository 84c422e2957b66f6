package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forestbook1/sep-solver-sub001/internal/domain"
)

func f64(f float64) *float64 { return &f }
func ip(n int) *int         { return &n }

func candidateDoc(t *testing.T) map[string]any {
	t.Helper()
	obj := domain.DesignObject{
		ID: "candidate_1",
		Structure: domain.Structure{
			Components: []domain.Component{
				{ID: "c1", Type: "processor", Properties: domain.Properties{"capacity": domain.Literal(40), "priority": domain.Literal("high")}},
				{ID: "c2", Type: "memory", Properties: domain.Properties{"capacity": domain.Literal(120), "priority": domain.Literal("urgent")}},
			},
			Relationships: []domain.Relationship{{ID: "r1", SourceID: "c1", TargetID: "c2", Type: "connects_to"}},
		},
		Variables: domain.NewVariableAssignment(),
	}
	doc, err := obj.Document()
	require.NoError(t, err)
	return doc
}

func TestDefaultRulesAcceptGeneratedDocuments(t *testing.T) {
	v, err := New(DefaultRules())
	require.NoError(t, err)

	res := v.Validate(candidateDoc(t))
	assert.True(t, res.IsValid, "%+v", res.Errors)
	assert.Empty(t, res.Errors)
}

func TestRequiredAndType(t *testing.T) {
	v, err := New([]domain.SchemaRule{
		{Path: "$.metadata.owner", Required: true},
		{Path: "$.id", Type: "integer"},
	})
	require.NoError(t, err)

	res := v.Validate(candidateDoc(t))
	assert.False(t, res.IsValid)
	require.Len(t, res.Errors, 2)
	assert.Equal(t, "Missing required property: '$.metadata.owner'", res.Errors[0].Message)
	assert.Equal(t, "Expected type 'integer', got 'string'", res.Errors[1].Message)
	assert.Equal(t, "candidate_1", res.Errors[1].Value)
}

func TestWildcardRulesCheckEachValue(t *testing.T) {
	v, err := New([]domain.SchemaRule{
		{Path: "$.structure.components[*].properties.capacity", Type: "number", Max: f64(100)},
		{Path: "$.structure.components[*].properties.priority", Enum: []any{"low", "medium", "high"}},
	})
	require.NoError(t, err)

	res := v.Validate(candidateDoc(t))
	require.Len(t, res.Errors, 2)
	assert.Equal(t, "$.structure.components[*].properties.capacity[1]", res.Errors[0].Path)
	assert.Equal(t, "Value must be <= 100", res.Errors[0].Message)
	assert.Equal(t, "Value must be one of: [low medium high]", res.Errors[1].Message)
}

func TestArrayBoundsAndPattern(t *testing.T) {
	v, err := New([]domain.SchemaRule{
		{Path: "$.structure.components", MinItems: ip(3)},
		{Path: "$.structure.relationships", MaxItems: ip(0)},
		{Path: "$.id", Pattern: `^solution_`},
	})
	require.NoError(t, err)

	res := v.Validate(candidateDoc(t))
	require.Len(t, res.Errors, 3)
	assert.Equal(t, "Array too short (minimum items: 3, actual: 2)", res.Errors[0].Message)
	assert.Equal(t, "Array too long (maximum items: 0, actual: 1)", res.Errors[1].Message)
	assert.Equal(t, "String does not match required pattern: ^solution_", res.Errors[2].Message)
}

func TestNumberAcceptsIntegers(t *testing.T) {
	assert.True(t, hasType(3, "number"))
	assert.True(t, hasType(3.5, "number"))
	assert.True(t, hasType(3.0, "integer"))
	assert.False(t, hasType(3.5, "integer"))
	assert.Equal(t, "null", jsonType(nil))
}

func TestNewRejectsMalformedRules(t *testing.T) {
	tests := []struct {
		name string
		rule domain.SchemaRule
	}{
		{"empty path", domain.SchemaRule{}},
		{"not jsonpath", domain.SchemaRule{Path: "id"}},
		{"bad type", domain.SchemaRule{Path: "$.id", Type: "text"}},
		{"inverted bounds", domain.SchemaRule{Path: "$.x", Min: f64(5), Max: f64(1)}},
		{"inverted items", domain.SchemaRule{Path: "$.x", MinItems: ip(5), MaxItems: ip(1)}},
		{"bad pattern", domain.SchemaRule{Path: "$.id", Pattern: "("}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New([]domain.SchemaRule{tt.rule})
			require.Error(t, err)
			assert.True(t, domain.IsKind(err, domain.KindInvalidConfig))
		})
	}
}
