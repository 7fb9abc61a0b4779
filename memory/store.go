// Package memory provides the run's append-only action history with
// compaction.
//
// Information Hiding:
// - Record slice and snapshot trail hidden behind queries
// - Archiving is a visibility filter; nothing is ever deleted
// - Recovery cooldown bookkeeping hidden behind two methods
//
// The store is owned by the single run loop and is not safe for
// concurrent use; any background work must route mutations through
// that loop.

package memory

import (
	"fmt"
	"strings"
)

// Defaults for store tuning knobs.
const (
	DefaultCompactionThreshold = 12
	DefaultRecoveryCooldown    = 3
)

// Bounds of the rendered context digest. These keep the per-turn request
// size stable regardless of mission length.
const (
	digestSummaryLimit   = 180
	digestPatternsLimit  = 120
	digestRecentWindow   = 8
	digestResultLimit    = 60
	digestRationaleLimit = 140
)

// ActionRecord is one successfully dispatched executor action.
// Records are owned exclusively by the store; Archived flips false to
// true exactly once, via a compaction naming that turn, and is never
// reversed.
type ActionRecord struct {
	Turn       int
	Tool       string
	Args       string
	Result     string
	Screenshot string
	Rationale  string
	Archived   bool
}

// Snapshot is an immutable compaction record: what the archived turns
// accomplished, any detected pattern, and how many turns the request
// named.
type Snapshot struct {
	Summary   string
	Patterns  string
	Compacted int
}

// Store holds the ordered action history and the compacted summary trail.
type Store struct {
	records   []*ActionRecord
	snapshots []Snapshot

	threshold int
	cooldown  int

	recoveryTried    bool
	lastRecoveryTurn int
}

// NewStore creates a store with the given compaction threshold and
// recovery cooldown. Non-positive values fall back to the defaults.
func NewStore(threshold, cooldown int) *Store {
	if threshold <= 0 {
		threshold = DefaultCompactionThreshold
	}
	if cooldown <= 0 {
		cooldown = DefaultRecoveryCooldown
	}
	return &Store{
		records:   []*ActionRecord{},
		snapshots: []Snapshot{},
		threshold: threshold,
		cooldown:  cooldown,
	}
}

// Record appends an action record. O(1), never fails.
func (s *Store) Record(r ActionRecord) {
	r.Archived = false
	s.records = append(s.records, &r)
}

// ActiveHistory returns all records not yet archived, in insertion order.
// The view is recomputed on every call, never cached.
func (s *Store) ActiveHistory() []*ActionRecord {
	active := make([]*ActionRecord, 0, len(s.records))
	for _, r := range s.records {
		if !r.Archived {
			active = append(active, r)
		}
	}
	return active
}

// LastActive returns the most recent active record, or nil. The loop
// feeds it back into the next request so the model can validate its
// previous action.
func (s *Store) LastActive() *ActionRecord {
	for i := len(s.records) - 1; i >= 0; i-- {
		if !s.records[i].Archived {
			return s.records[i]
		}
	}
	return nil
}

// Len returns the total number of records, archived included.
func (s *Store) Len() int {
	return len(s.records)
}

// Snapshots returns the compaction trail, oldest first.
func (s *Store) Snapshots() []Snapshot {
	return append([]Snapshot(nil), s.snapshots...)
}

// NeedsCompaction is true once the active history has reached the
// configured threshold.
func (s *Store) NeedsCompaction() bool {
	return len(s.ActiveHistory()) >= s.threshold
}

// Compact archives every record whose turn number is named and appends
// exactly one snapshot. Turn numbers with no matching record are
// silently ignored, so repeating a compaction is a no-op per missing id.
// The snapshot's count is the number of turns named, as requested.
func (s *Store) Compact(summary, patterns string, turnNumbers []int) Snapshot {
	named := make(map[int]bool, len(turnNumbers))
	for _, t := range turnNumbers {
		named[t] = true
	}

	for _, r := range s.records {
		if named[r.Turn] {
			r.Archived = true
		}
	}

	snap := Snapshot{
		Summary:   summary,
		Patterns:  patterns,
		Compacted: len(turnNumbers),
	}
	s.snapshots = append(s.snapshots, snap)
	return snap
}

// RenderContext produces the bounded textual digest for the next model
// request: every snapshot, then the last few active records.
func (s *Store) RenderContext() string {
	var b strings.Builder

	for _, snap := range s.snapshots {
		fmt.Fprintf(&b, "[archived x%d] %s", snap.Compacted, clip(snap.Summary, digestSummaryLimit))
		if snap.Patterns != "" {
			fmt.Fprintf(&b, " (patterns: %s)", clip(snap.Patterns, digestPatternsLimit))
		}
		b.WriteString("\n")
	}

	active := s.ActiveHistory()
	if len(active) > digestRecentWindow {
		active = active[len(active)-digestRecentWindow:]
	}
	for _, r := range active {
		fmt.Fprintf(&b, "turn %d: %s -> %s", r.Turn, r.Tool, clip(r.Result, digestResultLimit))
		if r.Rationale != "" {
			fmt.Fprintf(&b, " (%s)", clip(r.Rationale, digestRationaleLimit))
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

// MarkRecoveryAttempted records that recovery ran on the given turn.
func (s *Store) MarkRecoveryAttempted(turn int) {
	s.recoveryTried = true
	s.lastRecoveryTurn = turn
}

// RecoveryAllowed reports whether more than the cooldown number of turns
// have elapsed since the last recorded attempt. A store with no attempt
// yet always allows recovery.
func (s *Store) RecoveryAllowed(currentTurn int) bool {
	if !s.recoveryTried {
		return true
	}
	return currentTurn-s.lastRecoveryTurn > s.cooldown
}

// clip truncates a string to at most limit runes, marking the cut.
func clip(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}
