package extract

import (
	"testing"

	"github.com/forestbook1/sep-solver-sub001/internal/domain"
)

func solutionDoc(t *testing.T) map[string]any {
	t.Helper()
	va := domain.NewVariableAssignment()
	va.AddDomain(domain.NewDomain("cpu.cores", domain.TypeInt, map[string]any{"min": 1, "max": 8}))
	if err := va.Set("cpu.cores", 4); err != nil {
		t.Fatalf("set: %v", err)
	}
	obj := domain.DesignObject{
		ID: "candidate_7",
		Structure: domain.Structure{Components: []domain.Component{
			{ID: "cpu", Type: "processor"},
			{ID: "disk", Type: "storage"},
		}},
		Variables: va,
		Metadata:  map[string]any{"score": 6.5},
	}
	doc, err := obj.Document()
	if err != nil {
		t.Fatalf("document: %v", err)
	}
	return doc
}

func TestApply_EmptyRules(t *testing.T) {
	fields, results := Apply(solutionDoc(t), domain.FieldRules{})
	if len(fields) != 0 {
		t.Fatalf("expected empty fields, got %v", fields)
	}
	if len(results) != 0 {
		t.Fatalf("expected empty results, got %v", results)
	}
}

func TestApply_Success(t *testing.T) {
	rules := domain.FieldRules{
		"cores": "$.variables.assignments['cpu.cores']",
		"score": "$.metadata.score",
		"types": "$.structure.components[*].type",
	}

	fields, res := Apply(solutionDoc(t), rules)

	if fields["cores"] != "4" {
		t.Fatalf("expected cores=4, got=%q", fields["cores"])
	}
	if fields["score"] != "6.5" {
		t.Fatalf("expected score=6.5, got=%q", fields["score"])
	}
	if fields["types"] != `["processor","storage"]` {
		t.Fatalf("unexpected types %q", fields["types"])
	}
	if len(res) != 3 {
		t.Fatalf("expected 3 results, got=%d", len(res))
	}
	for _, r := range res {
		if !r.Success {
			t.Fatalf("expected all success, got fail: %+v", r)
		}
	}
}

func TestApply_PartialFailure(t *testing.T) {
	rules := domain.FieldRules{
		"id":      "$.id",
		"missing": "$.metadata.nope",
	}

	fields, res := Apply(solutionDoc(t), rules)

	if fields["id"] != "candidate_7" {
		t.Fatalf("expected id, got %q", fields["id"])
	}
	if _, ok := fields["missing"]; ok {
		t.Fatalf("missing field should not be set")
	}
	// results are sorted by name
	if res[0].Name != "id" || !res[0].Success {
		t.Fatalf("unexpected first result %+v", res[0])
	}
	if res[1].Name != "missing" || res[1].Success {
		t.Fatalf("unexpected second result %+v", res[1])
	}
}

func TestParseRules(t *testing.T) {
	rules, err := ParseRules([]string{"score=$.metadata.score", " $.id ", ""})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rules["score"] != "$.metadata.score" {
		t.Fatalf("unexpected rules %v", rules)
	}
	if rules["$.id"] != "$.id" {
		t.Fatalf("bare expression should name itself: %v", rules)
	}

	if _, err := ParseRules([]string{"=$.id"}); err == nil {
		t.Fatalf("expected error for empty name")
	}
}
