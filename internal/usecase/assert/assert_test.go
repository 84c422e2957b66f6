package assert

import (
	"testing"

	"github.com/forestbook1/sep-solver-sub001/internal/domain"
)

func strp(s string) *string   { return &s }
func f64p(f float64) *float64 { return &f }
func intp(n int) *int         { return &n }

func sampleDoc(t *testing.T) map[string]any {
	t.Helper()
	obj := domain.DesignObject{
		ID: "candidate_3",
		Structure: domain.Structure{
			Components: []domain.Component{
				{ID: "cpu", Type: "processor", Properties: domain.Properties{"capacity": domain.Literal(40)}},
				{ID: "ram", Type: "memory", Properties: domain.Properties{"capacity": domain.Literal(16)}},
			},
		},
		Variables: domain.NewVariableAssignment(),
	}
	doc, err := obj.Document()
	if err != nil {
		t.Fatalf("document: %v", err)
	}
	return doc
}

// --- Evaluate ---

func TestEvaluate_NoChecks(t *testing.T) {
	out := Evaluate("$.id", domain.PathCheck{}, sampleDoc(t))
	if len(out) != 0 {
		t.Fatalf("expected 0 results, got %d", len(out))
	}
}

func TestEvaluate_Exists(t *testing.T) {
	out := Evaluate("$.structure.components[0].id", domain.PathCheck{Exists: true}, sampleDoc(t))
	if len(out) != 1 || !out[0].Passed {
		t.Fatalf("expected pass, got %+v", out)
	}
	if out[0].Name != "jsonpath.exists" {
		t.Fatalf("unexpected name %q", out[0].Name)
	}
}

func TestEvaluate_ExistsMissing(t *testing.T) {
	out := Evaluate("$.structure.missing", domain.PathCheck{Exists: true}, sampleDoc(t))
	if len(out) != 1 || out[0].Passed {
		t.Fatalf("expected fail, got %+v", out)
	}
}

func TestEvaluate_Eq(t *testing.T) {
	out := Evaluate("$.id", domain.PathCheck{Eq: strp("candidate_3")}, sampleDoc(t))
	if !out[0].Passed {
		t.Fatalf("expected pass: %s", out[0].Message)
	}

	out = Evaluate("$.id", domain.PathCheck{Eq: strp("candidate_4")}, sampleDoc(t))
	if out[0].Passed {
		t.Fatalf("expected fail")
	}
	if out[0].Message != `jsonpath "$.id": expected "candidate_4", got "candidate_3"` {
		t.Fatalf("unexpected message: %q", out[0].Message)
	}
}

func TestEvaluate_ContainsAndMatches(t *testing.T) {
	c := domain.PathCheck{Contains: strp("date_"), Matches: strp(`^candidate_\d+$`)}
	out := Evaluate("$.id", c, sampleDoc(t))
	if len(out) != 2 {
		t.Fatalf("expected 2 results, got %d", len(out))
	}
	for _, r := range out {
		if !r.Passed {
			t.Fatalf("%s failed: %s", r.Name, r.Message)
		}
	}
}

func TestEvaluate_InvalidRegex(t *testing.T) {
	out := Evaluate("$.id", domain.PathCheck{Matches: strp("[")}, sampleDoc(t))
	if out[0].Passed {
		t.Fatalf("expected invalid regex to fail")
	}
}

func TestEvaluate_GtLt(t *testing.T) {
	doc := sampleDoc(t)
	out := Evaluate("$.structure.components[0].properties.capacity", domain.PathCheck{Gt: f64p(30), Lt: f64p(50)}, doc)
	for _, r := range out {
		if !r.Passed {
			t.Fatalf("%s failed: %s", r.Name, r.Message)
		}
	}

	out = Evaluate("$.structure.components[1].properties.capacity", domain.PathCheck{Gt: f64p(30)}, doc)
	if out[0].Passed {
		t.Fatalf("expected 16 > 30 to fail")
	}
}

func TestEvaluate_GtNonNumeric(t *testing.T) {
	out := Evaluate("$.id", domain.PathCheck{Gt: f64p(1)}, sampleDoc(t))
	if out[0].Passed {
		t.Fatalf("expected non-numeric value to fail")
	}
}

func TestEvaluate_Count(t *testing.T) {
	doc := sampleDoc(t)
	out := Evaluate("$.structure.components[*].id", domain.PathCheck{Count: intp(2)}, doc)
	if !out[0].Passed {
		t.Fatalf("expected 2 components: %s", out[0].Message)
	}

	out = Evaluate(`$.structure.components[?(@.type == "sensor")]`, domain.PathCheck{Count: intp(0)}, doc)
	if !out[0].Passed {
		t.Fatalf("expected no sensors: %s", out[0].Message)
	}
}

func TestEvaluate_EmptyExpression(t *testing.T) {
	out := Evaluate("  ", domain.PathCheck{Exists: true}, sampleDoc(t))
	if out[0].Passed {
		t.Fatalf("expected empty expression to fail")
	}
}

// --- helpers ---

func TestToString(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{"x", "x"},
		{1.5, "1.5"},
		{true, "true"},
		{7, "7"},
		{[]any{"only"}, "only"},
		{[]any{1, 2}, "[1,2]"},
	}
	for _, c := range cases {
		got, err := ToString(c.in)
		if err != nil {
			t.Fatalf("ToString(%v): %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("ToString(%v) = %q, want %q", c.in, got, c.want)
		}
	}
	if _, err := ToString(nil); err == nil {
		t.Fatalf("expected error for nil")
	}
}

func TestIsEmpty(t *testing.T) {
	for _, v := range []any{nil, "", []any{}, map[string]any{}} {
		if !IsEmpty(v) {
			t.Fatalf("expected %v to be empty", v)
		}
	}
	if IsEmpty(0) {
		t.Fatalf("zero is a value")
	}
}

func TestFailed(t *testing.T) {
	got := Failed([]domain.CheckResult{{Name: "a", Passed: true}, {Name: "b"}})
	if len(got) != 1 || got[0].Name != "b" {
		t.Fatalf("unexpected %+v", got)
	}
}
