package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/forestbook1/sep-solver-sub001/internal/domain"
)

func clampString(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))

	n := 0
	for _, r := range s {
		if n >= maxLen {
			break
		}
		b.WriteRune(r)
		n++
	}
	return b.String() + "…"
}

// renderRun is the detail view of a stored run.
func renderRun(run domain.RunArtifact) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Run:      %s\n", run.ID)
	fmt.Fprintf(&b, "Problem:  %s\n", run.ProblemName)
	if run.ProfileName != "" {
		fmt.Fprintf(&b, "Profile:  %s\n", run.ProfileName)
	}
	fmt.Fprintf(&b, "Started:  %s\n", run.StartedAt.Format(time.RFC3339))
	if !run.FinishedAt.IsZero() && !run.StartedAt.IsZero() {
		fmt.Fprintf(&b, "Duration: %s\n", run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond))
	}

	s := run.Summary
	fmt.Fprintf(&b, "Status:   %s", s.Status)
	if s.StopReason != domain.StopNone {
		fmt.Fprintf(&b, " (%s)", s.StopReason)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Progress: %d iterations, %d valid / %d evaluated\n", s.IterationCount, s.SolutionsFound, s.CandidatesEvaluated)
	if len(s.MostViolated) > 0 {
		parts := make([]string, 0, len(s.MostViolated))
		for _, v := range s.MostViolated {
			parts = append(parts, fmt.Sprintf("%s x%d", v.ConstraintID, v.Count))
		}
		fmt.Fprintf(&b, "Violated: %s\n", strings.Join(parts, ", "))
	}
	if run.Error != "" {
		fmt.Fprintf(&b, "Error:    %s\n", run.Error)
	}
	b.WriteString("\n")

	if len(run.Solutions) == 0 {
		b.WriteString("(no solutions)\n")
		return b.String()
	}

	fmt.Fprintf(&b, "Solutions (%d):\n", len(run.Solutions))
	for i, sol := range run.Solutions {
		fmt.Fprintf(&b, "\n%d. %s  score=%.2f\n", i+1, sol.ID, sol.Score)
		b.WriteString(renderSolution(sol))
	}
	return b.String()
}

func renderSolution(sol domain.SolutionRecord) string {
	var b strings.Builder

	b.WriteString("   components:\n")
	for _, c := range sol.Structure.Components {
		fmt.Fprintf(&b, "     - %s (%s)\n", c.ID, c.Type)
	}

	if len(sol.Structure.Relationships) > 0 {
		b.WriteString("   relationships:\n")
		for _, r := range sol.Structure.Relationships {
			fmt.Fprintf(&b, "     - %s -> %s [%s]\n", r.SourceID, r.TargetID, r.Type)
		}
	}

	if len(sol.Variables.Assignments) > 0 {
		names := make([]string, 0, len(sol.Variables.Assignments))
		for k := range sol.Variables.Assignments {
			names = append(names, k)
		}
		sort.Strings(names)

		b.WriteString("   variables:\n")
		for _, n := range names {
			fmt.Fprintf(&b, "     - %s = %s\n", n, clampString(fmt.Sprint(sol.Variables.Assignments[n]), 60))
		}
	}
	return b.String()
}
