// Package agent implements the turn-by-turn control loop that drives a
// desktop toward a mission.
package agent

import (
	"time"

	"github.com/richinex/golem/model"
)

// Outcome is the terminal result of a run.
type Outcome struct {
	Kind     model.OutcomeKind
	Turns    int    // turns consumed, including the terminating one
	Evidence string // accepted completion evidence, empty when exhausted
	Elapsed  time.Duration
}

// Completed reports whether the run ended with an accepted
// mission-completion report rather than an exhausted turn budget.
func (o Outcome) Completed() bool {
	return o.Kind == model.OutcomeCompleted
}
