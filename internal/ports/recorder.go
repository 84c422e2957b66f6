package ports

import "time"

// ExplorationRecorder receives per-step measurements from the engine.
type ExplorationRecorder interface {
	ObserveStep(strategy string, valid bool, took time.Duration)
	ObserveViolation(constraintID string)
	ObserveFailure(stage string)
	ObserveStop(reason string)
}
