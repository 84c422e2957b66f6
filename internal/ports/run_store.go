package ports

import "github.com/forestbook1/sep-solver-sub001/internal/domain"

// RunStore persists exploration runs.
type RunStore interface {
	SaveRun(run domain.RunArtifact) (id string, err error)
	ListRuns() ([]domain.RunRef, error)
	LoadRun(id string) (domain.RunArtifact, error)
}
