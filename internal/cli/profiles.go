package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/forestbook1/sep-solver-sub001/internal/domain"
)

func profilesCmd(g *globalFlags) *cobra.Command {
	c := &cobra.Command{
		Use:   "profiles",
		Short: "Manage solver profiles in a project",
	}

	c.AddCommand(profilesListCmd(g), profilesShowCmd(g))
	return c
}

func profilesListCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List profiles",
		RunE: func(_ *cobra.Command, _ []string) error {
			p, err := loadProject(g.project)
			if err != nil {
				return err
			}

			refs, err := p.profiles.ListProfiles(p.root)
			if err != nil {
				return err
			}

			if len(refs) == 0 {
				fmt.Println("(no profiles found)")
				return nil
			}

			fmt.Printf("Project: %s\n\n", p.root)
			for _, r := range refs {
				rel, _ := filepath.Rel(p.root, r.Path)
				mark := ""
				if r.Name == p.cfg.Defaults.Profile {
					mark = " [default]"
				}
				fmt.Printf("- %s%s  (%s)\n", r.Name, mark, rel)
			}
			return nil
		},
	}
}

func profilesShowCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show <profile>",
		Short: "Show the effective settings of a profile, including its local overlay",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			p, err := loadProject(g.project)
			if err != nil {
				return err
			}

			cfg, err := p.profiles.LoadProfile(resolveProfileArg(p, args[0]))
			if err != nil {
				return err
			}
			printConfig(os.Stdout, cfg, domain.DefaultSolverConfig())
			return nil
		},
	}
}

func presetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List built-in presets and the settings they change",
		RunE: func(_ *cobra.Command, _ []string) error {
			base := domain.DefaultSolverConfig()
			for _, name := range domain.Presets() {
				cfg, err := base.WithPreset(name)
				if err != nil {
					return err
				}
				fmt.Printf("%s:\n", name)
				diff := base.Diff(cfg)
				for _, k := range domain.ConfigKeys() {
					if d, ok := diff[k]; ok {
						fmt.Printf("  %s: %v\n", k, d[1])
					}
				}
			}
			return nil
		},
	}
}

// printConfig lists every setting, marking the ones that differ from base.
func printConfig(w io.Writer, cfg, base domain.SolverConfig) {
	diff := base.Diff(cfg)
	for _, k := range domain.ConfigKeys() {
		v, _ := cfg.Get(k)
		if v == nil {
			v = "-"
		}
		mark := " "
		if _, changed := diff[k]; changed {
			mark = "*"
		}
		fmt.Fprintf(w, "%s %-30s %v\n", mark, k, v)
	}
}
