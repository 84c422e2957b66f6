package tui

import "github.com/forestbook1/sep-solver-sub001/internal/domain"

type projectRefreshedMsg struct {
	cwd   string
	found bool
	root  string
	err   error
}

type initProjectDoneMsg struct {
	root string
	err  error
}

type problemsLoadedMsg struct {
	root string
	refs []domain.ProblemRef
	err  error
}

type runsLoadedMsg struct {
	root string
	refs []domain.RunRef
	err  error
}

type runLoadedMsg struct {
	run domain.RunArtifact
	err error
}

type solveDoneMsg struct {
	run domain.RunArtifact
	id  string
	err error
}
