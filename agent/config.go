// Agent configuration types.
//
// Information Hiding:
// - Default values hidden behind DefaultConfig/normalized
// - Knob semantics documented once here, not at call sites

package agent

import "time"

// Config holds the tuning knobs of one run.
type Config struct {
	// MaxSteps is the turn budget; the run terminates once the counter
	// would exceed it.
	MaxSteps int

	// ReviewInterval forces a return to planning every N turns.
	ReviewInterval int

	// CompactionThreshold is the active-history length at which the
	// memory store asks for compaction.
	CompactionThreshold int

	// RecoveryEnabled turns on the remedial input sequence hook.
	RecoveryEnabled bool

	// RecoveryAfterFailures is the consecutive dispatch-failure streak
	// that triggers recovery when the hook is enabled.
	RecoveryAfterFailures int

	// RecoveryCooldown is the minimum number of turns between recovery
	// attempts.
	RecoveryCooldown int

	// MinEvidenceRunes is the minimum length of a mission-completion
	// evidence text; shorter reports are ignored.
	MinEvidenceRunes int

	// SettleDelay is the pause after each physical action, giving the
	// desktop UI time to stabilize.
	SettleDelay time.Duration

	// TurnDelay is the pause between turns, protecting the model server
	// from back-to-back requests. Neither delay is a synchronization
	// primitive.
	TurnDelay time.Duration
}

// Defaults for every knob.
const (
	DefaultMaxSteps              = 50
	DefaultReviewInterval        = 7
	DefaultCompactionThreshold   = 12
	DefaultRecoveryAfterFailures = 3
	DefaultRecoveryCooldown      = 3
	DefaultMinEvidenceRunes      = 100
	DefaultSettleDelay           = 500 * time.Millisecond
	DefaultTurnDelay             = 2 * time.Second
)

// DefaultConfig returns the standard run configuration. Recovery is off
// until its trigger conditions have been tuned.
func DefaultConfig() Config {
	return Config{
		MaxSteps:              DefaultMaxSteps,
		ReviewInterval:        DefaultReviewInterval,
		CompactionThreshold:   DefaultCompactionThreshold,
		RecoveryEnabled:       false,
		RecoveryAfterFailures: DefaultRecoveryAfterFailures,
		RecoveryCooldown:      DefaultRecoveryCooldown,
		MinEvidenceRunes:      DefaultMinEvidenceRunes,
		SettleDelay:           DefaultSettleDelay,
		TurnDelay:             DefaultTurnDelay,
	}
}

// normalized fills unset numeric knobs with their defaults. Delays are
// left alone so tests can run with zero waits.
func (c Config) normalized() Config {
	if c.MaxSteps <= 0 {
		c.MaxSteps = DefaultMaxSteps
	}
	if c.ReviewInterval <= 0 {
		c.ReviewInterval = DefaultReviewInterval
	}
	if c.CompactionThreshold <= 0 {
		c.CompactionThreshold = DefaultCompactionThreshold
	}
	if c.RecoveryAfterFailures <= 0 {
		c.RecoveryAfterFailures = DefaultRecoveryAfterFailures
	}
	if c.RecoveryCooldown <= 0 {
		c.RecoveryCooldown = DefaultRecoveryCooldown
	}
	if c.MinEvidenceRunes <= 0 {
		c.MinEvidenceRunes = DefaultMinEvidenceRunes
	}
	return c
}
