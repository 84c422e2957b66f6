package domain

import "time"

// RunArtifact is a persisted exploration run.
type RunArtifact struct {
	ID string `json:"id"`

	ProblemName string `json:"problem"`
	ProblemPath string `json:"problem_path,omitempty"`
	ProfileName string `json:"profile,omitempty"`

	Config  SolverConfig    `json:"config"`
	Summary ProgressSummary `json:"summary"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Solutions []SolutionRecord `json:"solutions"`
	// Error is set when the run ended in a failed state.
	Error string `json:"error,omitempty"`
}

// SolutionRecord is the stored form of one solution.
type SolutionRecord struct {
	ID        string             `json:"id"`
	Score     float64            `json:"score"`
	Structure Structure          `json:"structure"`
	Variables AssignmentDocument `json:"variables"`
	Metadata  map[string]any     `json:"metadata,omitempty"`
}

// RunRef is a listing entry for a stored run.
type RunRef struct {
	ID        string    `json:"id"`
	Problem   string    `json:"problem"`
	Profile   string    `json:"profile,omitempty"`
	Solutions int       `json:"solutions"`
	StartedAt time.Time `json:"started_at"`
}

func NewSolutionRecord(obj DesignObject, score float64) SolutionRecord {
	rec := SolutionRecord{
		ID:        obj.ID,
		Score:     score,
		Structure: obj.Structure.Clone(),
		Metadata:  cloneMap(obj.Metadata),
	}
	if obj.Variables != nil {
		rec.Variables = obj.Variables.ToDocument()
	}
	return rec
}

// DesignObject rebuilds the in-memory candidate from the record.
func (r SolutionRecord) DesignObject() DesignObject {
	return DesignObject{
		ID:        r.ID,
		Structure: r.Structure.Clone(),
		Variables: AssignmentFromDocument(r.Variables),
		Metadata:  cloneMap(r.Metadata),
	}
}

func (a RunArtifact) Ref() RunRef {
	return RunRef{
		ID:        a.ID,
		Problem:   a.ProblemName,
		Profile:   a.ProfileName,
		Solutions: len(a.Solutions),
		StartedAt: a.StartedAt,
	}
}
