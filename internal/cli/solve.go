package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/forestbook1/sep-solver-sub001/internal/domain"
	"github.com/forestbook1/sep-solver-sub001/internal/infra/configwatch"
	"github.com/forestbook1/sep-solver-sub001/internal/infra/logger"
	"github.com/forestbook1/sep-solver-sub001/internal/infra/metrics"
	"github.com/forestbook1/sep-solver-sub001/internal/ports"
	"github.com/forestbook1/sep-solver-sub001/internal/usecase"
	"github.com/forestbook1/sep-solver-sub001/internal/usecase/explore"
)

func solveCmd(g *globalFlags) *cobra.Command {
	var problem string
	var profile string
	var seed int
	var sets []string
	var watch bool
	var metricsFile string
	var exportFile string
	var noSave bool
	var format string

	c := &cobra.Command{
		Use:   "solve [problem]",
		Short: "Explore a problem's design space and store the solutions found",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				problem = args[0]
			}

			p, err := loadProject(g.project)
			if err != nil {
				return err
			}

			problemPath, err := resolveProblemPath(p, problem)
			if err != nil {
				return err
			}
			profileArg := resolveProfileArg(p, profile)

			overrides, err := parseOverrides(sets)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("seed") {
				overrides["random_seed"] = seed
			}

			log := logger.L()
			opts := []usecase.SolveOption{usecase.WithLogger(log)}

			var rec *metrics.Recorder
			if metricsFile != "" {
				rec = metrics.New()
				opts = append(opts, usecase.WithRecorder(rec))
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			var eng *explore.Engine
			var watcher *configwatch.Watcher
			defer func() {
				if watcher != nil {
					_ = watcher.Close()
				}
			}()

			watchPath := ""
			if watch {
				watchPath = p.profiles.Path(profileArg)
				if !fileExists(watchPath) {
					return fmt.Errorf("--watch needs a profile file, %q does not exist", watchPath)
				}
			}

			opts = append(opts, usecase.WithEngineHook(func(e *explore.Engine) {
				eng = e
				if watchPath == "" {
					return
				}
				load := func(path string) (domain.SolverConfig, error) {
					cfg, err := p.profiles.LoadProfile(path)
					if err != nil {
						return cfg, err
					}
					return cfg.WithChanges(overrides)
				}
				w, err := configwatch.New(watchPath, load, e, configwatch.WithLogger(log))
				if err != nil {
					log.Warn("solve.watch.failed", "path", watchPath, "err", err)
					return
				}
				watcher = w
				go w.Run(ctx)
			}))

			var store ports.RunStore
			if !noSave {
				s, err := p.openStore(log)
				if err != nil {
					return err
				}
				defer func() { _ = s.Close() }()
				store = s
			}

			uc := usecase.NewSolveProblem(p.problems, p.profiles, store, opts...)
			run, runID, err := uc.Execute(ctx, usecase.SolveRequest{
				ProblemPath: problemPath,
				Profile:     profileArg,
				Overrides:   overrides,
			})

			if eng != nil && exportFile != "" {
				if xerr := exportSolutions(eng, exportFile); xerr != nil {
					err = errors.Join(err, xerr)
				}
			}
			if rec != nil {
				if werr := rec.WriteTextfile(metricsFile); werr != nil {
					err = errors.Join(err, fmt.Errorf("write metrics: %w", werr))
				}
			}

			if run.StartedAt.IsZero() {
				return err
			}
			if perr := printRun(os.Stdout, run, runID, format); perr != nil {
				return errors.Join(err, perr)
			}
			if err != nil {
				return err
			}
			if len(run.Solutions) == 0 {
				if eng != nil {
					printRecommendations(os.Stderr, eng.DebugRecommendations())
				}
				return fmt.Errorf("no solutions found (%s)", run.Summary.StopReason)
			}
			return nil
		},
	}

	c.Flags().StringVarP(&problem, "problem", "p", "", "Problem name or path (or pass it as the first argument)")
	c.Flags().StringVarP(&profile, "profile", "r", "", "Profile name, preset or path (optional; defaults to the project's default profile)")
	c.Flags().IntVar(&seed, "seed", 0, "Random seed for reproducible runs")
	c.Flags().StringArrayVar(&sets, "set", nil, "Override a solver setting, key=value (repeatable)")
	c.Flags().BoolVar(&watch, "watch", false, "Reload the profile file while solving when it changes")
	c.Flags().StringVar(&metricsFile, "metrics-file", "", "Write exploration metrics in Prometheus text format to this file")
	c.Flags().StringVar(&exportFile, "export", "", "Write the solutions with statistics as JSON to this file")
	c.Flags().BoolVar(&noSave, "no-save", false, "Do not save the run")
	c.Flags().StringVar(&format, "format", "pretty", "Output format: pretty|json")

	return c
}

func exportSolutions(eng *explore.Engine, path string) error {
	out, err := eng.Export(explore.ExportJSON)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(out+"\n"), 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}

func printRecommendations(w io.Writer, recs []string) {
	fmt.Fprintln(w, "Suggestions:")
	for _, r := range recs {
		fmt.Fprintf(w, "  - %s\n", r)
	}
}

// parseOverrides reads key=value pairs. Values are YAML scalars, so numbers,
// booleans and null keep their type.
func parseOverrides(pairs []string) (map[string]any, error) {
	out := map[string]any{}
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid --set %q (want key=value)", p)
		}

		var val any
		if err := yaml.Unmarshal([]byte(v), &val); err != nil {
			return nil, fmt.Errorf("invalid value for %s: %w", k, err)
		}
		out[k] = val
	}
	return out, nil
}

func printRun(w io.Writer, run domain.RunArtifact, runID string, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		payload := map[string]any{
			"run_id": runID,
			"run":    run,
		}
		return enc.Encode(payload)
	case "pretty", "":
		printPrettyRun(w, run, runID)
		return nil
	default:
		return fmt.Errorf("unsupported format %q (expected pretty|json)", format)
	}
}

func printPrettyRun(w io.Writer, run domain.RunArtifact, runID string) {
	s := run.Summary

	fmt.Fprintf(w, "Problem:    %s\n", run.ProblemName)
	if run.ProfileName != "" {
		fmt.Fprintf(w, "Profile:    %s\n", run.ProfileName)
	}
	fmt.Fprintf(w, "Strategy:   %s\n", s.Strategy)
	fmt.Fprintf(w, "Started:    %s\n", run.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "Duration:   %.2fs\n", s.DurationSeconds)
	fmt.Fprintf(w, "Status:     %s (%s)\n", s.Status, s.StopReason)
	if runID != "" {
		fmt.Fprintf(w, "Run ID:     %s\n", runID)
	}
	fmt.Fprintf(w, "Progress:   %d iterations, %d evaluated, %d failed steps\n",
		s.IterationCount, s.CandidatesEvaluated, s.FailedSteps)
	if run.Error != "" {
		fmt.Fprintf(w, "Error:      %s\n", run.Error)
	}
	fmt.Fprintln(w)

	if len(s.MostViolated) > 0 {
		fmt.Fprintf(w, "Most violated:\n")
		for _, v := range s.MostViolated {
			fmt.Fprintf(w, "  - %s (%d)\n", v.ConstraintID, v.Count)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Solutions: %d\n", len(run.Solutions))
	for _, sol := range run.Solutions {
		printSolution(w, sol)
	}
}

func printSolution(w io.Writer, sol domain.SolutionRecord) {
	fmt.Fprintf(w, "- %s score=%.3f components=%d relationships=%d\n",
		sol.ID, sol.Score, len(sol.Structure.Components), len(sol.Structure.Relationships))

	names := make([]string, 0, len(sol.Variables.Assignments))
	for k := range sol.Variables.Assignments {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		fmt.Fprintf(w, "    %s = %v\n", k, sol.Variables.Assignments[k])
	}
}
