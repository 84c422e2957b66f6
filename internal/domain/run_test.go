package domain

import (
	"testing"
	"time"
)

func TestSolutionRecord_DesignObjectRoundTrip(t *testing.T) {
	va := NewVariableAssignment()
	va.AddDomain(NewDomain("cpu.frequency", TypeInt, map[string]any{"min": 1, "max": 4}))
	va.AddDependency("cpu.mode", []string{"cpu.frequency"})
	if err := va.Set("cpu.frequency", 3); err != nil {
		t.Fatalf("set: %v", err)
	}

	obj := DesignObject{
		ID: "candidate_1",
		Structure: Structure{Components: []Component{
			{ID: "cpu", Type: "processor", Properties: Properties{"power": Literal(20)}},
		}},
		Variables: va,
		Metadata:  map[string]any{"iteration": 1},
	}

	rec := NewSolutionRecord(obj, 0.5)
	obj.Structure.Components[0].ID = "mutated"
	obj.Metadata["iteration"] = 99

	back := rec.DesignObject()
	if back.Structure.Components[0].ID != "cpu" {
		t.Fatalf("record must not share structure with the source, got %q", back.Structure.Components[0].ID)
	}
	if back.Metadata["iteration"] != 1 {
		t.Fatalf("record must not share metadata, got %v", back.Metadata["iteration"])
	}
	if v, ok := back.Value("cpu.frequency"); !ok || !SameValue(v, 3) {
		t.Fatalf("expected cpu.frequency=3, got %v (ok=%v)", v, ok)
	}
	if deps := back.Variables.Dependencies("cpu.mode"); len(deps) != 1 || deps[0] != "cpu.frequency" {
		t.Fatalf("expected dependency to survive, got %v", deps)
	}
}

func TestRunArtifact_Ref(t *testing.T) {
	started := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	run := RunArtifact{
		ID:          "20260501T100000Z_demo",
		ProblemName: "demo",
		ProfileName: "quick",
		StartedAt:   started,
		Solutions:   []SolutionRecord{{ID: "a"}, {ID: "b"}},
	}

	ref := run.Ref()
	if ref.ID != run.ID || ref.Problem != "demo" || ref.Profile != "quick" {
		t.Fatalf("unexpected ref: %+v", ref)
	}
	if ref.Solutions != 2 || !ref.StartedAt.Equal(started) {
		t.Fatalf("unexpected ref counts: %+v", ref)
	}
}
