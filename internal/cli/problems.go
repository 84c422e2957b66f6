package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

func problemsCmd(g *globalFlags) *cobra.Command {
	c := &cobra.Command{
		Use:   "problems",
		Short: "Manage problems in a project",
	}

	c.AddCommand(problemsListCmd(g))
	return c
}

func problemsListCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List problems",
		RunE: func(_ *cobra.Command, _ []string) error {
			p, err := loadProject(g.project)
			if err != nil {
				return err
			}

			refs, err := p.problems.ListProblems(p.root)
			if err != nil {
				return err
			}

			if len(refs) == 0 {
				fmt.Println("(no problems found)")
				return nil
			}

			fmt.Printf("Project: %s\n\n", p.root)
			for _, r := range refs {
				rel, _ := filepath.Rel(p.root, r.Path)
				fmt.Printf("- %s  (%s)\n", r.Name, rel)
			}
			return nil
		},
	}
}
