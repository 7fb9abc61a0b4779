// Per-phase action declarations.
//
// Information Hiding:
// - Vocabulary contents fixed here; callers only query shape
// - JSON-schema rendering for model requests hidden behind Schema()

package tools

import (
	"fmt"
	"strings"
)

// Wire names of every declared action.
const (
	ToolUpdateInstructions = "update_instructions"
	ToolCompactMemory      = "compact_memory"

	ToolSingleClick     = "single_click"
	ToolDoubleClick     = "double_click"
	ToolRightClick      = "right_click"
	ToolDrag            = "drag"
	ToolTypeText        = "type_text"
	ToolPressKey        = "press_keyboard_key"
	ToolScrollUp        = "scroll_up"
	ToolScrollDown      = "scroll_down"
	ToolGoalStatus      = "report_goal_status"
	ToolMissionComplete = "report_mission_complete"
)

// Parameter wire types.
const (
	TypeString   = "string"
	TypePosition = "position" // two-number array on the 0-1000 grid
	TypeInteger  = "integer"
	TypeTurnList = "integer-array"
)

// Param describes one declared field of an action.
type Param struct {
	Name        string
	ParamType   string
	Description string
	Required    bool
}

// Spec describes one action: name, model-facing description, fields.
type Spec struct {
	Name        string
	Description string
	Parameters  []Param
}

// Schema renders the spec's parameters as a JSON-schema object map,
// the shape the model collaborators expect.
func (s Spec) Schema() map[string]interface{} {
	properties := make(map[string]interface{}, len(s.Parameters))
	required := []string{}
	for _, p := range s.Parameters {
		properties[p.Name] = paramSchema(p)
		if p.Required {
			required = append(required, p.Name)
		}
	}
	return map[string]interface{}{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

func paramSchema(p Param) map[string]interface{} {
	switch p.ParamType {
	case TypePosition:
		return map[string]interface{}{
			"type":        "array",
			"items":       map[string]interface{}{"type": "number"},
			"minItems":    2,
			"maxItems":    2,
			"description": p.Description,
		}
	case TypeTurnList:
		return map[string]interface{}{
			"type":        "array",
			"items":       map[string]interface{}{"type": "integer"},
			"description": p.Description,
		}
	case TypeInteger:
		return map[string]interface{}{
			"type":        "integer",
			"description": p.Description,
		}
	default:
		return map[string]interface{}{
			"type":        "string",
			"description": p.Description,
		}
	}
}

// The two vocabularies are disjoint read-only configuration. The planner
// is never offered executor actions and vice versa.
var planningSpecs = []Spec{
	{
		Name:        ToolUpdateInstructions,
		Description: "Issue new step-by-step instructions for the execution phase. Supplying instructions moves the agent from planning to execution.",
		Parameters: []Param{
			{Name: "instructions", ParamType: TypeString, Description: "Concrete, ordered instructions for the next stretch of execution", Required: true},
		},
	},
	{
		Name:        ToolCompactMemory,
		Description: "Archive the listed turns behind a single summary so the working history stays small. Use when the action history has grown long.",
		Parameters: []Param{
			{Name: "summary", ParamType: TypeString, Description: "What the archived turns accomplished", Required: true},
			{Name: "patterns", ParamType: TypeString, Description: "Recurring behavior worth remembering, e.g. a dialog that keeps reappearing", Required: false},
			{Name: "turn_numbers", ParamType: TypeTurnList, Description: "Turn numbers to archive", Required: true},
		},
	},
}

var executionSpecs = []Spec{
	{
		Name:        ToolSingleClick,
		Description: "Single left click on an element at a grid position.",
		Parameters:  clickParams(),
	},
	{
		Name:        ToolDoubleClick,
		Description: "Double left click on an element at a grid position.",
		Parameters:  clickParams(),
	},
	{
		Name:        ToolRightClick,
		Description: "Right click on an element at a grid position.",
		Parameters:  clickParams(),
	},
	{
		Name:        ToolDrag,
		Description: "Press at the start position, move to the end position, release.",
		Parameters: []Param{
			{Name: "label", ParamType: TypeString, Description: "What is being dragged", Required: true},
			{Name: "start", ParamType: TypePosition, Description: "Grid position where the drag begins", Required: true},
			{Name: "end", ParamType: TypePosition, Description: "Grid position where the drag ends", Required: true},
		},
	},
	{
		Name:        ToolTypeText,
		Description: "Type literal text at the current keyboard focus.",
		Parameters: []Param{
			{Name: "text", ParamType: TypeString, Description: "Exact text to type", Required: true},
		},
	},
	{
		Name:        ToolPressKey,
		Description: "Press a key or a +-joined modifier combination, e.g. enter or ctrl+shift+t.",
		Parameters: []Param{
			{Name: "key", ParamType: TypeString, Description: "Key name or combo; tokens must be known key names", Required: true},
		},
	},
	{
		Name:        ToolScrollUp,
		Description: "Scroll up under the pointer.",
		Parameters:  scrollParams(),
	},
	{
		Name:        ToolScrollDown,
		Description: "Scroll down under the pointer.",
		Parameters:  scrollParams(),
	},
	{
		Name:        ToolGoalStatus,
		Description: "Report the status of one goal, e.g. DONE, BLOCKED or IN_PROGRESS. Terminal statuses trigger a planning review.",
		Parameters: []Param{
			{Name: "goal", ParamType: TypeString, Description: "The goal being reported on", Required: true},
			{Name: "status", ParamType: TypeString, Description: "Current status of that goal", Required: true},
		},
	},
	{
		Name:        ToolMissionComplete,
		Description: "Declare the whole mission finished. Requires detailed evidence of at least 100 characters describing what was verified on screen.",
		Parameters: []Param{
			{Name: "evidence", ParamType: TypeString, Description: "Detailed proof that the mission goal is visibly achieved", Required: true},
		},
	},
}

func clickParams() []Param {
	return []Param{
		{Name: "label", ParamType: TypeString, Description: "The on-screen element being clicked", Required: true},
		{Name: "position", ParamType: TypePosition, Description: "Grid position of the element, 0-1000 per axis", Required: true},
	}
}

func scrollParams() []Param {
	return []Param{
		{Name: "amount", ParamType: TypeInteger, Description: "Wheel ticks, default 3", Required: false},
	}
}

// specIndex maps phase then name to the declared spec.
var specIndex = buildIndex()

func buildIndex() map[Phase]map[string]Spec {
	index := map[Phase]map[string]Spec{
		PhasePlanning:  make(map[string]Spec, len(planningSpecs)),
		PhaseExecution: make(map[string]Spec, len(executionSpecs)),
	}
	for _, s := range planningSpecs {
		index[PhasePlanning][s.Name] = s
	}
	for _, s := range executionSpecs {
		index[PhaseExecution][s.Name] = s
	}
	return index
}

// Specs returns the declared action set for a phase, in declaration order.
func Specs(phase Phase) []Spec {
	switch phase {
	case PhasePlanning:
		return append([]Spec(nil), planningSpecs...)
	case PhaseExecution:
		return append([]Spec(nil), executionSpecs...)
	default:
		return nil
	}
}

// Declared reports whether name is in the phase's vocabulary.
func Declared(phase Phase, name string) bool {
	_, ok := specIndex[phase][name]
	return ok
}

// Describe returns a formatted description of a phase's actions for
// prompts and the CLI.
func Describe(phase Phase) string {
	var descriptions []string
	for _, spec := range Specs(phase) {
		var params []string
		for _, p := range spec.Parameters {
			required := "optional"
			if p.Required {
				required = "required"
			}
			params = append(params, fmt.Sprintf("  - %s (%s): %s [%s]",
				p.Name, p.ParamType, p.Description, required))
		}

		paramStr := strings.Join(params, "\n")
		descriptions = append(descriptions, fmt.Sprintf(
			"Tool: %s\nDescription: %s\nParameters:\n%s",
			spec.Name, spec.Description, paramStr))
	}

	return strings.Join(descriptions, "\n\n")
}
