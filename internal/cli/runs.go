package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/forestbook1/sep-solver-sub001/internal/domain"
	"github.com/forestbook1/sep-solver-sub001/internal/infra/logger"
	"github.com/forestbook1/sep-solver-sub001/internal/usecase/extract"
)

func runsCmd(g *globalFlags) *cobra.Command {
	c := &cobra.Command{
		Use:   "runs",
		Short: "Inspect saved exploration runs",
	}

	c.AddCommand(runsListCmd(g), runsShowCmd(g), runsRmCmd(g))
	return c
}

func runsListCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved runs, newest first",
		RunE: func(_ *cobra.Command, _ []string) error {
			p, err := loadProject(g.project)
			if err != nil {
				return err
			}
			store, err := p.openStore(logger.L())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			refs, err := store.ListRuns()
			if err != nil {
				return err
			}
			if len(refs) == 0 {
				fmt.Println("(no runs found)")
				return nil
			}

			for _, r := range refs {
				fmt.Printf("- %s  %s  %d solution(s)  %s\n",
					r.ID, r.Problem, r.Solutions, r.StartedAt.Format(time.RFC3339))
			}
			return nil
		},
	}
}

func runsShowCmd(g *globalFlags) *cobra.Command {
	var fields []string
	var format string

	c := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show a saved run",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			rules, err := extract.ParseRules(fields)
			if err != nil {
				return err
			}

			p, err := loadProject(g.project)
			if err != nil {
				return err
			}
			store, err := p.openStore(logger.L())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			run, err := store.LoadRun(args[0])
			if err != nil {
				return err
			}

			if len(rules) > 0 {
				return printFields(os.Stdout, run, rules, format)
			}
			return printRun(os.Stdout, run, args[0], format)
		},
	}

	c.Flags().StringArrayVar(&fields, "field", nil, "Project a field out of each solution, name=$.path (repeatable)")
	c.Flags().StringVar(&format, "format", "pretty", "Output format: pretty|json")
	return c
}

func runsRmCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <run-id>",
		Short: "Delete a saved run",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			p, err := loadProject(g.project)
			if err != nil {
				return err
			}
			store, err := p.openStore(logger.L())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.DeleteRun(args[0]); err != nil {
				return err
			}
			fmt.Printf("Deleted run %s\n", args[0])
			return nil
		},
	}
}

type fieldRow struct {
	Solution string            `json:"solution"`
	Fields   map[string]string `json:"fields"`
	Errors   []string          `json:"errors,omitempty"`
}

// printFields evaluates the field rules against every solution document.
func printFields(w io.Writer, run domain.RunArtifact, rules domain.FieldRules, format string) error {
	rows := make([]fieldRow, 0, len(run.Solutions))
	for _, sol := range run.Solutions {
		row := fieldRow{Solution: sol.ID, Fields: map[string]string{}}

		doc, err := sol.DesignObject().Document()
		if err != nil {
			row.Errors = append(row.Errors, err.Error())
			rows = append(rows, row)
			continue
		}

		fields, results := extract.Apply(doc, rules)
		row.Fields = fields
		for _, r := range results {
			if !r.Success {
				row.Errors = append(row.Errors, r.Message)
			}
		}
		rows = append(rows, row)
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	case "pretty", "":
	default:
		return fmt.Errorf("unsupported format %q (expected pretty|json)", format)
	}

	names := make([]string, 0, len(rules))
	for k := range rules {
		names = append(names, k)
	}
	sort.Strings(names)

	for _, row := range rows {
		fmt.Fprintf(w, "- %s\n", row.Solution)
		for _, n := range names {
			if v, ok := row.Fields[n]; ok {
				fmt.Fprintf(w, "    %s = %s\n", n, v)
			}
		}
		for _, e := range row.Errors {
			fmt.Fprintf(w, "    ✗ %s\n", e)
		}
	}
	return nil
}
