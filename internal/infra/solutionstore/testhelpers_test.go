package solutionstore

import (
	"testing"
	"time"

	"github.com/forestbook1/sep-solver-sub001/internal/domain"
)

func sampleRun(t *testing.T, started time.Time) domain.RunArtifact {
	t.Helper()

	va := domain.NewVariableAssignment()
	va.AddDomain(domain.NewDomain("cpu.speed", domain.TypeInt, map[string]any{"min": 0, "max": 100}))
	if err := va.Set("cpu.speed", 40); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := va.Set("cpu.api_token", "abc"); err != nil {
		t.Fatalf("set: %v", err)
	}

	obj := domain.DesignObject{
		ID: "candidate_3",
		Structure: domain.Structure{
			Components: []domain.Component{{
				ID:   "cpu",
				Type: "processor",
				Properties: domain.Properties{
					"speed": domain.Variable(domain.VariableDeclaration{Type: domain.TypeInt, Constraints: map[string]any{"min": 0, "max": 100}}),
					"power": domain.Literal(12),
				},
			}},
		},
		Variables: va,
		Metadata:  map[string]any{"iteration": 3, "owner_secret": "hunter2"},
	}

	return domain.RunArtifact{
		ProblemName: "Edge Controller",
		ProblemPath: "problems/edge.yaml",
		ProfileName: "fast",
		Config:      domain.DefaultSolverConfig(),
		Summary: domain.ProgressSummary{
			SessionID:      "0f8fad5b-d9cb-469f-a165-70867728950e",
			Status:         domain.StatusCompleted,
			SolutionsFound: 1,
		},
		StartedAt:  started,
		FinishedAt: started.Add(2 * time.Second),
		Solutions:  []domain.SolutionRecord{domain.NewSolutionRecord(obj, 7.5)},
	}
}
