// Tool call parsing and schema checking.
//
// Information Hiding:
// - Payload normalization (object vs encoded string) hidden
// - Field-level leniency rules hidden behind the typed result
//
// Decoding policy: absence of a required field is a parse failure; a field
// that is present but malformed decodes to its zero value. Coordinate pairs
// shorter than two elements are padded with zeros, and elements may be
// numbers or numeric strings. Unknown fields are ignored.

package tools

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/richinex/golem/internal/jsonutil"
)

// ErrUnknownTool reports a tool name outside the active phase's vocabulary.
// It is the only parse failure the orchestrator treats as fatal.
var ErrUnknownTool = errors.New("unknown tool")

// ErrMissingField reports a required field absent from the payload.
// Callers downgrade it to "no action this turn".
var ErrMissingField = errors.New("missing required field")

// Parse converts a raw model-emitted call into a typed action for the
// given phase. The payload may be a JSON object or a string containing
// encoded JSON; both decode the same way.
func Parse(phase Phase, name string, payload json.RawMessage) (Action, error) {
	if !Declared(phase, name) {
		return nil, fmt.Errorf("%w: %q is not in the %s action set", ErrUnknownTool, name, phase)
	}

	fields, err := decodeFields(payload)
	if err != nil {
		return nil, fmt.Errorf("tool %s: %w", name, err)
	}

	switch name {
	case ToolUpdateInstructions:
		instructions, err := fields.requireText(name, "instructions")
		if err != nil {
			return nil, err
		}
		return UpdateInstructions{Instructions: instructions}, nil

	case ToolCompactMemory:
		summary, err := fields.requireText(name, "summary")
		if err != nil {
			return nil, err
		}
		turns, err := fields.requireTurns(name, "turn_numbers")
		if err != nil {
			return nil, err
		}
		return CompactMemory{
			Summary:  summary,
			Patterns: fields.text("patterns"),
			Turns:    turns,
		}, nil

	case ToolSingleClick, ToolDoubleClick, ToolRightClick:
		label, err := fields.requireText(name, "label")
		if err != nil {
			return nil, err
		}
		pos, err := fields.requirePosition(name, "position")
		if err != nil {
			return nil, err
		}
		return Click{Kind: clickKindFor(name), Label: label, Pos: pos}, nil

	case ToolDrag:
		label, err := fields.requireText(name, "label")
		if err != nil {
			return nil, err
		}
		from, err := fields.requirePosition(name, "start")
		if err != nil {
			return nil, err
		}
		to, err := fields.requirePosition(name, "end")
		if err != nil {
			return nil, err
		}
		return Drag{Label: label, From: from, To: to}, nil

	case ToolTypeText:
		text, err := fields.requireText(name, "text")
		if err != nil {
			return nil, err
		}
		return TypeText{Text: text}, nil

	case ToolPressKey:
		combo, err := fields.requireText(name, "key")
		if err != nil {
			return nil, err
		}
		return PressKey{Combo: combo}, nil

	case ToolScrollUp, ToolScrollDown:
		amount := fields.integer("amount")
		if amount <= 0 {
			amount = DefaultScrollTicks
		}
		return Scroll{Up: name == ToolScrollUp, Amount: amount}, nil

	case ToolGoalStatus:
		goal, err := fields.requireText(name, "goal")
		if err != nil {
			return nil, err
		}
		status, err := fields.requireText(name, "status")
		if err != nil {
			return nil, err
		}
		return GoalStatus{Goal: goal, Status: status}, nil

	case ToolMissionComplete:
		evidence, err := fields.requireText(name, "evidence")
		if err != nil {
			return nil, err
		}
		return MissionComplete{Evidence: evidence}, nil
	}

	// Declared() above keeps this unreachable for a consistent index.
	return nil, fmt.Errorf("%w: %q", ErrUnknownTool, name)
}

// DefaultScrollTicks is used when a scroll call omits the amount.
const DefaultScrollTicks = 3

func clickKindFor(name string) ClickKind {
	switch name {
	case ToolDoubleClick:
		return ClickDouble
	case ToolRightClick:
		return ClickRight
	default:
		return ClickSingle
	}
}

// fieldSet holds the raw payload fields of one call.
type fieldSet map[string]json.RawMessage

// decodeFields normalizes the payload to an object and splits it into
// raw fields. An empty or absent payload decodes to an empty field set.
func decodeFields(payload json.RawMessage) (fieldSet, error) {
	object, err := jsonutil.UnwrapObject(payload)
	if err != nil {
		return nil, fmt.Errorf("malformed payload: %w", err)
	}

	fields := make(fieldSet)
	if err := json.Unmarshal(object, &fields); err != nil {
		return nil, fmt.Errorf("malformed payload: %w", err)
	}
	return fields, nil
}

// text reads an optional string field; malformed or absent becomes "".
func (f fieldSet) text(name string) string {
	raw, ok := f[name]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// requireText reads a required string field; absence is ErrMissingField.
func (f fieldSet) requireText(tool, name string) (string, error) {
	raw, ok := f[name]
	if !ok {
		return "", fmt.Errorf("tool %s: %w: %s", tool, ErrMissingField, name)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", nil
	}
	return s, nil
}

// integer reads an optional numeric field; malformed or absent becomes 0.
func (f fieldSet) integer(name string) int {
	raw, ok := f[name]
	if !ok {
		return 0
	}
	return numeric(raw)
}

// requirePosition reads a required two-number pair.
func (f fieldSet) requirePosition(tool, name string) (Position, error) {
	raw, ok := f[name]
	if !ok {
		return Position{}, fmt.Errorf("tool %s: %w: %s", tool, ErrMissingField, name)
	}
	return parsePair(raw), nil
}

// requireTurns reads a required integer array.
func (f fieldSet) requireTurns(tool, name string) ([]int, error) {
	raw, ok := f[name]
	if !ok {
		return nil, fmt.Errorf("tool %s: %w: %s", tool, ErrMissingField, name)
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, nil
	}
	turns := make([]int, 0, len(elems))
	for _, e := range elems {
		turns = append(turns, numeric(e))
	}
	return turns, nil
}

// parsePair decodes a two-element numeric pair. Short arrays are padded
// with zeros; a non-array decodes to the origin.
func parsePair(raw json.RawMessage) Position {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return Position{}
	}

	var pos Position
	if len(elems) > 0 {
		pos.X = numeric(elems[0])
	}
	if len(elems) > 1 {
		pos.Y = numeric(elems[1])
	}
	return pos
}

// numeric decodes a JSON number or a numeric string; anything else is 0.
func numeric(raw json.RawMessage) int {
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return int(math.Round(f))
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return int(math.Round(f))
		}
	}
	return 0
}
