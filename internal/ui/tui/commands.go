package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/forestbook1/sep-solver-sub001/internal/domain"
	"github.com/forestbook1/sep-solver-sub001/internal/infra/projectfinder"
	"github.com/forestbook1/sep-solver-sub001/internal/infra/solutionstore"
	"github.com/forestbook1/sep-solver-sub001/internal/infra/yamlproblem"
	"github.com/forestbook1/sep-solver-sub001/internal/infra/yamlprofile"
	"github.com/forestbook1/sep-solver-sub001/internal/usecase"
)

// solveTimeout bounds a solve started from the TUI.
const solveTimeout = 5 * time.Minute

func cmdRefreshProject(deps Deps) tea.Cmd {
	return func() tea.Msg {
		wd, err := os.Getwd()
		if err != nil {
			return projectRefreshedMsg{cwd: "", found: false, err: fmt.Errorf("getwd: %w", err)}
		}
		if deps.ProjectLocator == nil {
			return projectRefreshedMsg{cwd: wd, found: false, err: errors.New("ProjectLocator is nil")}
		}

		root, findErr := deps.ProjectLocator.FindRoot(wd)
		if findErr != nil {
			return projectRefreshedMsg{cwd: wd, found: false, err: findErr}
		}

		return projectRefreshedMsg{cwd: wd, found: true, root: root}
	}
}

func cmdInitProject(deps Deps, root string) tea.Cmd {
	return func() tea.Msg {
		if deps.ProjectInitializer == nil {
			return initProjectDoneMsg{root: root, err: errors.New("ProjectInitializer is nil")}
		}

		err := deps.ProjectInitializer.Init(domain.ProjectSpec{Root: root}, false)
		return initProjectDoneMsg{root: root, err: err}
	}
}

func cmdLoadProblems(root string) tea.Cmd {
	return func() tea.Msg {
		cfg, err := projectfinder.LoadConfig(root)
		if err != nil {
			return problemsLoadedMsg{root: root, err: err}
		}

		loader := yamlproblem.NewLoader(yamlproblem.WithProblemsDir(cfg.Paths.ProblemsDir))
		refs, err := loader.ListProblems(root)
		return problemsLoadedMsg{root: root, refs: refs, err: err}
	}
}

func cmdLoadRuns(root string, log *slog.Logger) tea.Cmd {
	return func() tea.Msg {
		store, err := openStore(root, log)
		if err != nil {
			return runsLoadedMsg{root: root, err: err}
		}
		defer func() { _ = store.Close() }()

		refs, err := store.ListRuns()
		return runsLoadedMsg{root: root, refs: refs, err: err}
	}
}

func cmdLoadRun(root, id string, log *slog.Logger) tea.Cmd {
	return func() tea.Msg {
		store, err := openStore(root, log)
		if err != nil {
			return runLoadedMsg{err: err}
		}
		defer func() { _ = store.Close() }()

		run, err := store.LoadRun(id)
		return runLoadedMsg{run: run, err: err}
	}
}

func openStore(root string, log *slog.Logger) (solutionstore.Store, error) {
	cfg, err := projectfinder.LoadConfig(root)
	if err != nil {
		return nil, err
	}
	return solutionstore.Open(root, cfg, log)
}

func listenSolve(ch <-chan solveDoneMsg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return solveDoneMsg{err: errors.New("solver channel closed")}
		}
		return msg
	}
}

// startSolveAsync solves problemPath with the project's default profile and
// saves the run.
func startSolveAsync(projectRoot, problemPath string, log *slog.Logger, debug bool) (chan solveDoneMsg, tea.Cmd) {
	ch := make(chan solveDoneMsg, 1)

	if log == nil {
		log = slog.Default()
	}

	go func() {
		defer close(ch)

		cfg, err := projectfinder.LoadConfig(projectRoot)
		if err != nil {
			log.Error("solve.load_config.failed", "err", err)
			ch <- solveDoneMsg{err: err}
			return
		}

		log.Info("solve.start",
			"project", projectRoot,
			"problem_path", problemPath,
			"profile", cfg.Defaults.Profile,
			"debug", debug,
		)

		store, err := solutionstore.Open(projectRoot, cfg, log)
		if err != nil {
			log.Error("solve.open_store.failed", "err", err)
			ch <- solveDoneMsg{err: err}
			return
		}
		defer func() { _ = store.Close() }()

		problems := yamlproblem.NewLoader(yamlproblem.WithProblemsDir(cfg.Paths.ProblemsDir))
		profiles := yamlprofile.NewLoader(projectRoot, yamlprofile.WithProfilesDir(cfg.Paths.ProfilesDir))
		uc := usecase.NewSolveProblem(problems, profiles, store, usecase.WithLogger(log))

		ctx, cancel := context.WithTimeout(context.Background(), solveTimeout)
		defer cancel()

		run, id, execErr := uc.Execute(ctx, usecase.SolveRequest{
			ProblemPath: problemPath,
			Profile:     cfg.Defaults.Profile,
		})

		if execErr != nil {
			log.Error("solve.failed", "err", execErr, "saved_id", id)
		} else {
			log.Info("solve.ok", "saved_id", id, "solutions", len(run.Solutions))
		}

		if debug {
			for _, s := range run.Solutions {
				log.Debug("solve.solution",
					"id", s.ID,
					"score", s.Score,
					"components", len(s.Structure.Components),
					"relationships", len(s.Structure.Relationships),
				)
			}
		}

		ch <- solveDoneMsg{run: run, id: id, err: execErr}
	}()

	return ch, listenSolve(ch)
}
