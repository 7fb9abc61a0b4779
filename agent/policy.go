// Review and recovery policy.
//
// Pure decision functions: they read state and return answers, nothing
// else. The loop owns all side effects (mode switches, flag clearing,
// recovery dispatch).

package agent

import "strings"

// ReviewDue reports whether the loop must return to planning this turn:
// the review interval divides the turn, the needs-review flag is set, or
// the memory store wants compaction.
func ReviewDue(turn, interval int, needsReview, needsCompaction bool) bool {
	if interval > 0 && turn%interval == 0 {
		return true
	}
	return needsReview || needsCompaction
}

// reviewReason names the trigger for telemetry, checked in the same
// order ReviewDue evaluates them.
func reviewReason(turn, interval int, needsReview, needsCompaction bool) string {
	switch {
	case interval > 0 && turn%interval == 0:
		return "review interval"
	case needsReview:
		return "status review requested"
	case needsCompaction:
		return "memory compaction needed"
	default:
		return ""
	}
}

// StatusClass is the best-effort classification of a free-text goal
// status. The model's vocabulary is unbounded, so anything outside the
// small fixed set falls through to StatusUnrecognized.
type StatusClass int

const (
	// StatusUnrecognized is the explicit fallback for anything not in
	// the fixed vocabulary, including the empty string.
	StatusUnrecognized StatusClass = iota
	// StatusDone is a terminal per-goal state.
	StatusDone
	// StatusBlocked means the goal cannot currently progress.
	StatusBlocked
)

// TriggersReview reports whether a status of this class sets the
// needs-review flag: terminal and blocked goals both send the loop back
// to planning.
func (c StatusClass) TriggersReview() bool {
	return c == StatusDone || c == StatusBlocked
}

// ClassifyStatus matches a reported goal status against the fixed
// vocabulary, case-insensitively and ignoring surrounding whitespace.
func ClassifyStatus(status string) StatusClass {
	switch strings.ToUpper(strings.TrimSpace(status)) {
	case "DONE", "COMPLETED", "COMPLETE":
		return StatusDone
	case "BLOCKED":
		return StatusBlocked
	default:
		return StatusUnrecognized
	}
}

// RecoveryEligible decides whether the remedial input sequence may run:
// the hook is enabled, the consecutive-failure streak has reached the
// trigger, and the store's cooldown allows another attempt. Eligibility
// only; dispatch belongs to the loop.
func RecoveryEligible(enabled bool, streak, trigger int, cooldownAllows bool) bool {
	return enabled && streak >= trigger && cooldownAllows
}
