package ports

import "github.com/forestbook1/sep-solver-sub001/internal/domain"

// ProblemLoader loads problems from a source (e.g., filesystem).
type ProblemLoader interface {
	LoadProblem(path string) (domain.Problem, error)
	ListProblems(root string) ([]domain.ProblemRef, error)
}

// ProfileLoader resolves a profile name or path into a solver configuration.
type ProfileLoader interface {
	LoadProfile(nameOrPath string) (domain.SolverConfig, error)
	ListProfiles(root string) ([]domain.ProfileRef, error)
}
