// Package model provides domain types shared across packages.
package model

import "time"

// RunInfo identifies a single mission run.
// Stamped on every telemetry event and audit row.
type RunInfo struct {
	ID        string
	Mission   string
	Provider  string
	Model     string
	StartedAt time.Time
}

// TurnRecord captures the outcome of one turn for audit purposes.
// Produced by the agent, consumed by telemetry and storage; the engine
// itself never reads these back.
type TurnRecord struct {
	Turn       int    `json:"turn"`
	Phase      string `json:"phase"`
	Tool       string `json:"tool"`
	Args       string `json:"args"`
	Result     string `json:"result"`
	Success    bool   `json:"success"`
	Rationale  string `json:"rationale"`
	Screenshot string `json:"screenshot"`
}

// OutcomeKind distinguishes the two ways a run can end normally.
type OutcomeKind int

const (
	// OutcomeCompleted means a mission-completion report was accepted.
	OutcomeCompleted OutcomeKind = iota
	// OutcomeExhausted means the step budget ran out without acceptance.
	OutcomeExhausted
)

// String returns the outcome kind as text.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeCompleted:
		return "completed"
	case OutcomeExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}
