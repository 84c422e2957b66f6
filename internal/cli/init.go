package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/forestbook1/sep-solver-sub001/internal/infra/fsproject"
	"github.com/forestbook1/sep-solver-sub001/internal/infra/projectfinder"
	"github.com/forestbook1/sep-solver-sub001/internal/usecase"
)

func initCmd() *cobra.Command {
	var force bool
	var name string

	c := &cobra.Command{
		Use:   "init [dir]",
		Short: "Scaffold a sepsolve project (config, demo problem, profiles)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			root, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("invalid directory: %w", err)
			}
			if err := os.MkdirAll(root, 0o755); err != nil {
				return fmt.Errorf("create %s: %w", root, err)
			}

			// Re-initializing keeps the layout of an existing sepsolve.yaml.
			var opts []fsproject.Option
			if cfg, err := projectfinder.LoadConfig(root); err == nil {
				opts = append(opts, fsproject.WithPaths(cfg.Paths))
			}

			uc := usecase.NewInitProject(fsproject.NewInitializer(opts...))
			if err := uc.Execute(root, name, force); err != nil {
				return err
			}

			fmt.Printf("Initialized sepsolve project in %s\n", root)
			fmt.Println("Next: sepsolve validate demo && sepsolve solve demo")
			return nil
		},
	}

	c.Flags().BoolVar(&force, "force", false, "Overwrite existing scaffold files")
	c.Flags().StringVar(&name, "name", "", "Project name used in templates (defaults to the directory name)")
	return c
}
