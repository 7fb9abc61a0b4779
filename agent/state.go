// Run state: the single owned context object passed explicitly through
// every loop iteration. There is no ambient or static state anywhere in
// the engine; everything mutable about a run lives here or in the
// memory store it holds.

package agent

import (
	"time"

	"github.com/google/uuid"

	"github.com/richinex/golem/memory"
	"github.com/richinex/golem/model"
)

// Mode is the phase governing which tool vocabulary and request shape
// apply this turn. There is no third state and no dual mode.
type Mode int

const (
	// ModePlanning is the strategic phase: plan updates, instructions,
	// memory compaction.
	ModePlanning Mode = iota
	// ModeExecution is the tactical phase: one physical action per turn.
	ModeExecution
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModePlanning:
		return "planning"
	case ModeExecution:
		return "execution"
	default:
		return "unknown"
	}
}

// State is the mutable state of one run. Owned by the loop; not
// synchronized. Any background work must route mutations through the
// loop.
type State struct {
	RunID   string
	Mission string
	Mode    Mode

	// Turn increments exactly once at the start of every loop
	// iteration; it never decreases and never skips.
	Turn int

	// Plan is the planner's latest plan text, stored verbatim.
	Plan string

	// Instructions is the active execution handoff, stored verbatim.
	Instructions string

	// NeedsReview forces a return to planning; set by terminal or
	// blocked goal-status reports, cleared exactly once when the mode
	// actually switches.
	NeedsReview bool

	// FailureStreak counts consecutive failed dispatches; reset on any
	// successful one. Feeds the recovery trigger.
	FailureStreak int

	// Physical dimensions of the display, refreshed from every capture.
	// Grid positions project onto these.
	ScreenWidth  int
	ScreenHeight int

	Store     *memory.Store
	StartedAt time.Time
}

// NewState creates the state for a fresh run. Mode starts at planning.
func NewState(mission string, cfg Config) *State {
	return &State{
		RunID:     uuid.NewString(),
		Mission:   mission,
		Mode:      ModePlanning,
		Store:     memory.NewStore(cfg.CompactionThreshold, cfg.RecoveryCooldown),
		StartedAt: time.Now(),
	}
}

// RunInfo renders the state's identity for telemetry and audit rows.
func (s *State) RunInfo(provider, modelName string) model.RunInfo {
	return model.RunInfo{
		ID:        s.RunID,
		Mission:   s.Mission,
		Provider:  provider,
		Model:     modelName,
		StartedAt: s.StartedAt,
	}
}
