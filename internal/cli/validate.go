package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/forestbook1/sep-solver-sub001/internal/domain"
	"github.com/forestbook1/sep-solver-sub001/internal/infra/logger"
	"github.com/forestbook1/sep-solver-sub001/internal/usecase"
)

func validateCmd(g *globalFlags) *cobra.Command {
	var problem string
	var profile string

	c := &cobra.Command{
		Use:   "validate [problem]",
		Short: "Check a problem and profile without exploring",
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

			uc := usecase.NewValidateProblem(p.problems, p.profiles)
			report, err := uc.Execute(cmd.Context(), problemPath, resolveProfileArg(p, profile))
			if err != nil {
				logger.L().Warn("validate.failed", "problem", problemPath, "err", err)
				return err
			}

			printReport(os.Stdout, report)
			return nil
		},
	}

	c.Flags().StringVarP(&problem, "problem", "p", "", "Problem name or path (or pass it as the first argument)")
	c.Flags().StringVarP(&profile, "profile", "r", "", "Profile name, preset or path (optional; defaults to the project's default profile)")
	return c
}

func printReport(w io.Writer, r usecase.ValidationReport) {
	fmt.Fprintf(w, "OK: %s\n", r.Problem)
	fmt.Fprintf(w, "  constraints: %d structural, %d variable, %d global\n",
		r.Constraints[domain.CategoryStructural],
		r.Constraints[domain.CategoryVariable],
		r.Constraints[domain.CategoryGlobal],
	)
	fmt.Fprintf(w, "  schema rules: %d\n", r.SchemaRules)
	fmt.Fprintf(w, "  components: %d..%d\n", r.MinComponents, r.MaxComponents)

	combos := "unbounded"
	if r.SampleCombinations >= 0 {
		combos = fmt.Sprintf("%d", r.SampleCombinations)
	}
	fmt.Fprintf(w, "  sample: %d variables, %s combinations\n", r.SampleVariables, combos)
	fmt.Fprintf(w, "  solver: %s, %d iterations, %d solutions\n",
		r.Config.ExplorationStrategy, r.Config.MaxIterations, r.Config.MaxSolutions)
}
