// Package cli holds the sepsolve cobra commands.
package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/forestbook1/sep-solver-sub001/internal/infra/fsproject"
	"github.com/forestbook1/sep-solver-sub001/internal/infra/logger"
	"github.com/forestbook1/sep-solver-sub001/internal/infra/projectfinder"
	"github.com/forestbook1/sep-solver-sub001/internal/ui/tui"
)

func Execute() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

type globalFlags struct {
	project string
	debug   bool
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	var cleanup func() error

	cmd := &cobra.Command{
		Use:          "sepsolve",
		Short:        "sepsolve explores design spaces: generate structures, bind variables, check constraints",
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			cleanup, _ = logger.Setup(logger.Config{
				Root:  logRoot(g.project),
				Debug: g.debug,
			})
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			if cleanup != nil {
				return cleanup()
			}
			return nil
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			return runTUI(g)
		},
	}

	cmd.PersistentFlags().StringVarP(&g.project, "project", "P", "", "Project root (optional; autodetected if omitted)")
	cmd.PersistentFlags().BoolVar(&g.debug, "debug", false, "enable verbose logging to .sepsolve/logs/sepsolve.log")

	cmd.AddCommand(
		initCmd(),
		solveCmd(g),
		validateCmd(g),
		problemsCmd(g),
		profilesCmd(g),
		presetsCmd(),
		runsCmd(g),
		browseCmd(g),
		versionCmd(),
	)
	return cmd
}

// logRoot is the project root when one is found, else the working
// directory.
func logRoot(projectFlag string) string {
	if root, err := resolveProjectRoot(projectFlag); err == nil {
		return root
	}
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}
	wd, _ = filepath.Abs(wd)
	return wd
}

func browseCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Open the interactive browser (same as running sepsolve without a command)",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runTUI(g)
		},
	}
}

func runTUI(g *globalFlags) error {
	return tui.Run(tui.Deps{
		ProjectLocator:     projectfinder.NewFinder(),
		ProjectInitializer: fsproject.NewInitializer(),
		Logger:             logger.L(),
		Debug:              g.debug,
	})
}
