package domain

import (
	"fmt"
	"sort"
	"time"
)

// EngineStatus is the lifecycle state of an exploration engine.
type EngineStatus string

const (
	StatusIdle      EngineStatus = "idle"
	StatusRunning   EngineStatus = "running"
	StatusCompleted EngineStatus = "completed"
	StatusExhausted EngineStatus = "exhausted"
	StatusFailed    EngineStatus = "failed"
)

// Terminal reports whether no further steps will run without a reset.
func (s EngineStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusExhausted || s == StatusFailed
}

// StopReason records why Solve returned.
type StopReason string

const (
	StopNone          StopReason = ""
	StopMaxIterations StopReason = "max_iterations"
	StopMaxSolutions  StopReason = "max_solutions"
	StopTimeout       StopReason = "timeout"
	StopExhausted     StopReason = "exhausted"
	StopCancelled     StopReason = "cancelled"
	StopFailed        StopReason = "failed"
)

const (
	maxBestCandidates    = 10
	maxRecentViolations  = 50
	maxCandidateSnapshot = 100
	maxDecisions         = 200
	maxTimings           = 100
	maxEvaluationTimes   = 1000
	maxDebugLines        = 100
)

type DecisionTrace struct {
	At        time.Time      `json:"timestamp"`
	Step      int            `json:"step"`
	Type      string         `json:"decision_type"`
	Data      map[string]any `json:"decision_data,omitempty"`
	Outcome   string         `json:"outcome"`
	Reasoning string         `json:"reasoning"`
}

// CandidateSnapshot is a compact record of one evaluated candidate.
type CandidateSnapshot struct {
	CandidateID    string        `json:"candidate_id"`
	Step           int           `json:"step"`
	At             time.Time     `json:"timestamp"`
	Components     int           `json:"components_count"`
	Relationships  int           `json:"relationships_count"`
	ComponentTypes []string      `json:"component_types"`
	Assignments    int           `json:"assignments_count"`
	Domains        int           `json:"domains_count"`
	Valid          bool          `json:"is_valid"`
	EvaluationTime time.Duration `json:"evaluation_time"`
}

// ExplorationState is owned by a single engine and mutated only by its loop.
type ExplorationState struct {
	SessionID  string              `json:"session_id"`
	Status     EngineStatus        `json:"status"`
	StopReason StopReason          `json:"stop_reason,omitempty"`
	Strategy   ExplorationStrategy `json:"strategy"`

	IterationCount      int `json:"iteration_count"`
	SolutionsFound      int `json:"solutions_found"`
	CandidatesEvaluated int `json:"candidates_evaluated"`
	FailedSteps         int `json:"failed_steps"`

	StartTime        time.Time `json:"start_time"`
	LastSolutionTime time.Time `json:"last_solution_time"`
	EndTime          time.Time `json:"end_time"`

	CurrentCandidateID string   `json:"current_candidate_id,omitempty"`
	BestCandidateIDs   []string `json:"best_candidates"`
	RecentViolations   []string `json:"recent_violations"`

	ConstraintViolationCounts map[string]int             `json:"constraint_violation_counts"`
	EvaluationTimes           []time.Duration            `json:"evaluation_times"`
	Decisions                 []DecisionTrace            `json:"decision_trace"`
	Snapshots                 []CandidateSnapshot        `json:"candidate_snapshots"`
	ComponentPerformance      map[string][]time.Duration `json:"component_performance"`
	ExplorationPath           []string                   `json:"exploration_path"`
	DebugLog                  []string                   `json:"debug_log"`
}

// NewExplorationState returns an idle, zeroed state.
func NewExplorationState(strategy ExplorationStrategy) *ExplorationState {
	return &ExplorationState{
		Status:                    StatusIdle,
		Strategy:                  strategy,
		ConstraintViolationCounts: map[string]int{},
		ComponentPerformance:      map[string][]time.Duration{},
	}
}

// Start zeroes every counter and marks the session as running.
func (s *ExplorationState) Start(sessionID string, strategy ExplorationStrategy, now time.Time) {
	*s = *NewExplorationState(strategy)
	s.SessionID = sessionID
	s.Status = StatusRunning
	s.StartTime = now
	s.Debugf(now, "Started exploration with strategy: %s", strategy)
}

// Finish moves the state into a terminal status.
func (s *ExplorationState) Finish(status EngineStatus, reason StopReason, now time.Time) {
	s.Status = status
	s.StopReason = reason
	s.EndTime = now
	s.Debugf(now, "Exploration %s (%s)", status, reason)
}

func (s *ExplorationState) RecordIteration() {
	s.IterationCount++
	s.ExplorationPath = appendBounded(s.ExplorationPath, fmt.Sprintf("step_%d", s.IterationCount), maxEvaluationTimes)
}

// RecordCandidate counts an evaluated candidate and, when valid, a solution.
func (s *ExplorationState) RecordCandidate(obj DesignObject, valid bool, took time.Duration, now time.Time) {
	s.CandidatesEvaluated++
	s.CurrentCandidateID = obj.ID
	if took > 0 {
		s.EvaluationTimes = appendBounded(s.EvaluationTimes, took, maxEvaluationTimes)
	}

	snap := CandidateSnapshot{
		CandidateID:    obj.ID,
		Step:           s.IterationCount,
		At:             now,
		Components:     len(obj.Structure.Components),
		Relationships:  len(obj.Structure.Relationships),
		ComponentTypes: obj.Structure.ComponentTypes(),
		Valid:          valid,
		EvaluationTime: took,
	}
	if obj.Variables != nil {
		snap.Assignments = obj.Variables.Len()
		snap.Domains = len(obj.Variables.DomainNames())
	}
	s.Snapshots = appendBounded(s.Snapshots, snap, maxCandidateSnapshot)

	if valid {
		s.SolutionsFound++
		s.LastSolutionTime = now
		s.BestCandidateIDs = appendBounded(s.BestCandidateIDs, obj.ID, maxBestCandidates)
		s.Debugf(now, "Found valid solution: %s", obj.ID)
		return
	}
	s.Debugf(now, "Invalid candidate: %s", obj.ID)
}

func (s *ExplorationState) RecordViolation(constraintID, message string) {
	s.RecentViolations = appendBounded(s.RecentViolations, constraintID+": "+message, maxRecentViolations)
	if s.ConstraintViolationCounts == nil {
		s.ConstraintViolationCounts = map[string]int{}
	}
	s.ConstraintViolationCounts[constraintID]++
}

func (s *ExplorationState) RecordDecision(now time.Time, kind, outcome, reasoning string, data map[string]any) {
	s.Decisions = appendBounded(s.Decisions, DecisionTrace{
		At:        now,
		Step:      s.IterationCount,
		Type:      kind,
		Data:      data,
		Outcome:   outcome,
		Reasoning: reasoning,
	}, maxDecisions)
}

// RecordTiming stores how long one collaborator call took.
func (s *ExplorationState) RecordTiming(component string, took time.Duration) {
	if s.ComponentPerformance == nil {
		s.ComponentPerformance = map[string][]time.Duration{}
	}
	s.ComponentPerformance[component] = appendBounded(s.ComponentPerformance[component], took, maxTimings)
}

// RecordFailure counts a step that produced no candidate as evaluated and
// not valid.
func (s *ExplorationState) RecordFailure(now time.Time, stage string, err error) {
	s.FailedSteps++
	s.CandidatesEvaluated++
	s.RecordDecision(now, stage, "failure", err.Error(), nil)
	s.Debugf(now, "Step %d failed during %s: %v", s.IterationCount, stage, err)
}

func (s *ExplorationState) Debugf(now time.Time, format string, args ...any) {
	line := fmt.Sprintf("[%s] %s", now.Format("15:04:05.000"), fmt.Sprintf(format, args...))
	s.DebugLog = appendBounded(s.DebugLog, line, maxDebugLines)
}

// Duration is the wall time since Start, or up to EndTime once finished.
func (s *ExplorationState) Duration(now time.Time) time.Duration {
	if s.StartTime.IsZero() {
		return 0
	}
	if !s.EndTime.IsZero() {
		return s.EndTime.Sub(s.StartTime)
	}
	return now.Sub(s.StartTime)
}

func (s *ExplorationState) AverageEvaluationTime() time.Duration {
	if len(s.EvaluationTimes) == 0 {
		return 0
	}
	var total time.Duration
	for _, d := range s.EvaluationTimes {
		total += d
	}
	return total / time.Duration(len(s.EvaluationTimes))
}

func (s *ExplorationState) SolutionsPerSecond(now time.Time) float64 {
	d := s.Duration(now).Seconds()
	if d <= 0 {
		return 0
	}
	return float64(s.SolutionsFound) / d
}

// ViolationCount pairs a constraint id with how often it failed.
type ViolationCount struct {
	ConstraintID string `json:"constraint_id"`
	Count        int    `json:"count"`
}

// MostViolated returns the top n constraints by violation count; ties are
// broken by id.
func (s *ExplorationState) MostViolated(n int) []ViolationCount {
	out := make([]ViolationCount, 0, len(s.ConstraintViolationCounts))
	for id, c := range s.ConstraintViolationCounts {
		out = append(out, ViolationCount{ConstraintID: id, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].ConstraintID < out[j].ConstraintID
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

type TimingSummary struct {
	Count   int           `json:"count"`
	Total   time.Duration `json:"total_time"`
	Average time.Duration `json:"average_time"`
	Min     time.Duration `json:"min_time"`
	Max     time.Duration `json:"max_time"`
}

func (s *ExplorationState) TimingSummaries() map[string]TimingSummary {
	out := make(map[string]TimingSummary, len(s.ComponentPerformance))
	for name, times := range s.ComponentPerformance {
		var ts TimingSummary
		for i, d := range times {
			ts.Count++
			ts.Total += d
			if i == 0 || d < ts.Min {
				ts.Min = d
			}
			if d > ts.Max {
				ts.Max = d
			}
		}
		if ts.Count > 0 {
			ts.Average = ts.Total / time.Duration(ts.Count)
		}
		out[name] = ts
	}
	return out
}

// ProgressSummary is the compact view shown by the CLI and stored with runs.
type ProgressSummary struct {
	SessionID           string              `json:"session_id"`
	Status              EngineStatus        `json:"status"`
	StopReason          StopReason          `json:"stop_reason,omitempty"`
	Strategy            ExplorationStrategy `json:"strategy"`
	IterationCount      int                 `json:"iteration_count"`
	SolutionsFound      int                 `json:"solutions_found"`
	CandidatesEvaluated int                 `json:"candidates_evaluated"`
	FailedSteps         int                 `json:"failed_steps"`
	DurationSeconds     float64             `json:"duration_seconds"`
	SolutionsPerSecond  float64             `json:"solutions_per_second"`
	AvgEvaluationMS     float64             `json:"avg_evaluation_ms"`
	MostViolated        []ViolationCount    `json:"most_violated"`
}

func (s *ExplorationState) Summary(now time.Time) ProgressSummary {
	return ProgressSummary{
		SessionID:           s.SessionID,
		Status:              s.Status,
		StopReason:          s.StopReason,
		Strategy:            s.Strategy,
		IterationCount:      s.IterationCount,
		SolutionsFound:      s.SolutionsFound,
		CandidatesEvaluated: s.CandidatesEvaluated,
		FailedSteps:         s.FailedSteps,
		DurationSeconds:     s.Duration(now).Seconds(),
		SolutionsPerSecond:  s.SolutionsPerSecond(now),
		AvgEvaluationMS:     float64(s.AverageEvaluationTime().Microseconds()) / 1000,
		MostViolated:        s.MostViolated(5),
	}
}

// Clone returns a copy that shares no slices or maps with s.
func (s *ExplorationState) Clone() ExplorationState {
	out := *s
	out.BestCandidateIDs = append([]string(nil), s.BestCandidateIDs...)
	out.RecentViolations = append([]string(nil), s.RecentViolations...)
	out.EvaluationTimes = append([]time.Duration(nil), s.EvaluationTimes...)
	out.Decisions = make([]DecisionTrace, len(s.Decisions))
	for i, d := range s.Decisions {
		d.Data = cloneMap(d.Data)
		out.Decisions[i] = d
	}
	out.Snapshots = make([]CandidateSnapshot, len(s.Snapshots))
	for i, snap := range s.Snapshots {
		snap.ComponentTypes = append([]string(nil), snap.ComponentTypes...)
		out.Snapshots[i] = snap
	}
	out.ExplorationPath = append([]string(nil), s.ExplorationPath...)
	out.DebugLog = append([]string(nil), s.DebugLog...)
	out.ConstraintViolationCounts = make(map[string]int, len(s.ConstraintViolationCounts))
	for k, v := range s.ConstraintViolationCounts {
		out.ConstraintViolationCounts[k] = v
	}
	out.ComponentPerformance = make(map[string][]time.Duration, len(s.ComponentPerformance))
	for k, v := range s.ComponentPerformance {
		out.ComponentPerformance[k] = append([]time.Duration(nil), v...)
	}
	return out
}

func appendBounded[T any](s []T, v T, max int) []T {
	s = append(s, v)
	if len(s) > max {
		s = append(s[:0:0], s[len(s)-max:]...)
	}
	return s
}
