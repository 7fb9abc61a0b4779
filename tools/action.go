// Typed actions the engine can dispatch, split by phase.
//
// Information Hiding:
// - Wire payload shapes hidden behind Parse
// - Grid-to-pixel projection owned by Position
// - Phase vocabularies declared in schema.go, never mutated

package tools

// Phase selects which action vocabulary is in force for a turn.
type Phase int

const (
	// PhasePlanning offers the strategic set: instructions and compaction.
	PhasePlanning Phase = iota
	// PhaseExecution offers the tactical set: pointer, keyboard, reports.
	PhaseExecution
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhasePlanning:
		return "planning"
	case PhaseExecution:
		return "execution"
	default:
		return "unknown"
	}
}

// GridMax is the upper bound of the normalized coordinate grid, per axis.
// Model-emitted positions are grid units independent of physical screen size.
const GridMax = 1000

// Position is a point on the normalized 0-1000 grid.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Normalize clamps both axes into [0, GridMax].
func (p Position) Normalize() Position {
	return Position{X: clampGrid(p.X), Y: clampGrid(p.Y)}
}

// Project maps the position onto a width x height pixel surface.
// Grid 500 lands on the exact midpoint pixel; GridMax lands on dim-1.
// The result is never out of bounds.
func (p Position) Project(width, height int) (int, int) {
	n := p.Normalize()
	x := n.X * width / GridMax
	y := n.Y * height / GridMax
	if x >= width {
		x = width - 1
	}
	if y >= height {
		y = height - 1
	}
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	return x, y
}

func clampGrid(v int) int {
	if v < 0 {
		return 0
	}
	if v > GridMax {
		return GridMax
	}
	return v
}

// Action is a parsed, typed tool call.
type Action interface {
	// Tool returns the wire name of the action.
	Tool() string
}

// PlanningAction marks actions available only in the planning phase.
type PlanningAction interface {
	Action
	planningAction()
}

// ExecutionAction marks actions available only in the execution phase.
type ExecutionAction interface {
	Action
	executionAction()
}

// UpdateInstructions carries new execution instructions from the planner.
type UpdateInstructions struct {
	Instructions string `json:"instructions"`
}

func (UpdateInstructions) Tool() string    { return ToolUpdateInstructions }
func (UpdateInstructions) planningAction() {}

// CompactMemory asks the memory store to archive the named turns behind
// one summary snapshot.
type CompactMemory struct {
	Summary  string `json:"summary"`
	Patterns string `json:"patterns"`
	Turns    []int  `json:"turn_numbers"`
}

func (CompactMemory) Tool() string    { return ToolCompactMemory }
func (CompactMemory) planningAction() {}

// ClickKind selects the click variant.
type ClickKind int

const (
	ClickSingle ClickKind = iota
	ClickDouble
	ClickRight
)

// Click is a pointer press at a normalized position.
// Label names the on-screen element being targeted; dispatch rejects
// clicks with an empty label.
type Click struct {
	Kind  ClickKind `json:"-"`
	Label string    `json:"label"`
	Pos   Position  `json:"position"`
}

// Tool returns the wire name matching the click variant.
func (c Click) Tool() string {
	switch c.Kind {
	case ClickDouble:
		return ToolDoubleClick
	case ClickRight:
		return ToolRightClick
	default:
		return ToolSingleClick
	}
}

func (Click) executionAction() {}

// Drag is a press-move-release between two normalized positions.
type Drag struct {
	Label string   `json:"label"`
	From  Position `json:"start"`
	To    Position `json:"end"`
}

func (Drag) Tool() string     { return ToolDrag }
func (Drag) executionAction() {}

// TypeText enters literal text at the current focus.
type TypeText struct {
	Text string `json:"text"`
}

func (TypeText) Tool() string     { return ToolTypeText }
func (TypeText) executionAction() {}

// PressKey presses a key or a +-delimited modifier combination.
// The combo is validated against the key table at dispatch, not parse.
type PressKey struct {
	Combo string `json:"key"`
}

func (PressKey) Tool() string     { return ToolPressKey }
func (PressKey) executionAction() {}

// Scroll turns the wheel by a number of ticks.
type Scroll struct {
	Up     bool `json:"up"`
	Amount int  `json:"amount"`
}

// Tool returns scroll_up or scroll_down depending on direction.
func (s Scroll) Tool() string {
	if s.Up {
		return ToolScrollUp
	}
	return ToolScrollDown
}

func (Scroll) executionAction() {}

// GoalStatus reports progress on a single goal. Terminal statuses flip
// the needs-review flag so the next turn returns to planning.
type GoalStatus struct {
	Goal   string `json:"goal"`
	Status string `json:"status"`
}

func (GoalStatus) Tool() string     { return ToolGoalStatus }
func (GoalStatus) executionAction() {}

// MissionComplete claims the mission is done. Accepted only when the
// evidence text meets the configured minimum length.
type MissionComplete struct {
	Evidence string `json:"evidence"`
}

func (MissionComplete) Tool() string     { return ToolMissionComplete }
func (MissionComplete) executionAction() {}

// Compile-time checks that every variant lands in exactly one union.
var (
	_ PlanningAction = UpdateInstructions{}
	_ PlanningAction = CompactMemory{}

	_ ExecutionAction = Click{}
	_ ExecutionAction = Drag{}
	_ ExecutionAction = TypeText{}
	_ ExecutionAction = PressKey{}
	_ ExecutionAction = Scroll{}
	_ ExecutionAction = GoalStatus{}
	_ ExecutionAction = MissionComplete{}
)
