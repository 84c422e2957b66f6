package explore

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/forestbook1/sep-solver-sub001/internal/domain"
)

type ExportFormat string

const (
	ExportJSON    ExportFormat = "json"
	ExportSummary ExportFormat = "summary"
)

type exportDoc struct {
	SessionID  string                  `json:"session_id"`
	Progress   domain.ProgressSummary  `json:"progress"`
	Statistics SolutionStatistics      `json:"statistics"`
	Solutions  []domain.SolutionRecord `json:"solutions"`
}

// Export renders the current solutions. JSON output carries full solution
// records; the summary is a few lines of plain text.
func (e *Engine) Export(format ExportFormat) (string, error) {
	switch format {
	case ExportJSON:
		doc := exportDoc{
			SessionID:  e.state.SessionID,
			Progress:   e.Summary(),
			Statistics: e.SolutionStatistics(),
			Solutions:  make([]domain.SolutionRecord, 0, len(e.solutions)),
		}
		for _, s := range e.solutions {
			doc.Solutions = append(doc.Solutions, domain.NewSolutionRecord(s, e.scores[s.ID]))
		}
		b, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return "", fmt.Errorf("encode solutions: %w", err)
		}
		return string(b), nil
	case ExportSummary:
		return e.summaryText(), nil
	}
	return "", domain.NewError("engine.export", domain.KindInvalidValue, "",
		"unsupported export format %q (use json or summary)", format)
}

func (e *Engine) summaryText() string {
	p := e.Summary()
	st := e.SolutionStatistics()

	var b strings.Builder
	fmt.Fprintf(&b, "Session %s: %s", p.SessionID, p.Status)
	if p.StopReason != domain.StopNone {
		fmt.Fprintf(&b, " (%s)", p.StopReason)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Iterations: %d  Candidates: %d  Failed steps: %d\n", p.IterationCount, p.CandidatesEvaluated, p.FailedSteps)
	fmt.Fprintf(&b, "Solutions: %d\n", st.TotalSolutions)
	if st.TotalSolutions > 0 {
		fmt.Fprintf(&b, "Components: avg %.1f, range %d-%d\n", st.AverageComponents, st.ComponentRange.Min, st.ComponentRange.Max)
		fmt.Fprintf(&b, "Relationships: avg %.1f, range %d-%d\n", st.AverageRelationships, st.RelationshipRange.Min, st.RelationshipRange.Max)
		fmt.Fprintf(&b, "Variables: avg %.1f, range %d-%d\n", st.AverageVariables, st.VariableRange.Min, st.VariableRange.Max)
		for i, s := range e.BestSolutions(3) {
			fmt.Fprintf(&b, "  #%d %s score=%.2f\n", i+1, s.ID, e.scores[s.ID])
		}
	}
	for _, v := range p.MostViolated {
		fmt.Fprintf(&b, "Violated: %s x%d\n", v.ConstraintID, v.Count)
	}
	return b.String()
}
