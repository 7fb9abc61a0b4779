// Execution-phase request construction, dispatch-time validation, and
// physical dispatch through the input collaborator.

package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/richinex/golem/input"
	"github.com/richinex/golem/llm"
	"github.com/richinex/golem/memory"
	"github.com/richinex/golem/model"
	"github.com/richinex/golem/screen"
	"github.com/richinex/golem/tools"
)

const executionSystemPrompt = `You are the tactical executor of an autonomous desktop agent.
A screenshot of the current desktop is attached to every request.

Respond in two parts:
1. In your reply text, state whether your PREVIOUS action had its intended
   effect, judging only from the screenshot. If it did not, say what you see
   instead.
2. Call exactly ONE tool: the single next action toward the current
   instructions.

Positions are on a 0-1000 grid per axis, independent of the real screen
size: (0,0) is the top-left corner, (1000,1000) the bottom-right, (500,500)
the center. Aim at the middle of the element you target.

Report goal status with report_goal_status when a goal finishes or is stuck.
Call report_mission_complete only when the screenshot proves the whole
mission is done, with detailed evidence of at least 100 characters.`

// buildExecutionMessages reconstructs the execution context around the
// fresh screenshot: instructions, prior action for self-validation, and
// the bounded memory digest.
func buildExecutionMessages(s *State, frame *screen.Frame) []llm.ChatMessage {
	var b strings.Builder

	fmt.Fprintf(&b, "MISSION: %s\n\n", s.Mission)
	fmt.Fprintf(&b, "CURRENT INSTRUCTIONS:\n%s\n\n", s.Instructions)

	if last := s.Store.LastActive(); last != nil {
		fmt.Fprintf(&b, "PREVIOUS ACTION (validate it against the screenshot): turn %d, %s -> %s\n\n",
			last.Turn, last.Tool, last.Result)
	} else {
		b.WriteString("PREVIOUS ACTION: none - this is the first action.\n\n")
	}

	if digest := s.Store.RenderContext(); digest != "" {
		fmt.Fprintf(&b, "ACTION MEMORY:\n%s\n\n", digest)
	}

	fmt.Fprintf(&b, "TURN: %d\n", s.Turn)

	return []llm.ChatMessage{
		llm.SystemMessage(executionSystemPrompt),
		llm.UserImageMessage(b.String(), screen.MediaType, frame.JPEG),
	}
}

// executeTurn runs one execution iteration. It returns accepted=true
// with the evidence text when a mission-completion report passed the
// evidence bar; a non-nil error is fatal to the run.
func (a *Agent) executeTurn(ctx context.Context, s *State) (accepted bool, evidence string, err error) {
	frame, err := a.capturer.Capture(ctx)
	if err != nil {
		return false, "", fmt.Errorf("screen capture failed on turn %d: %w", s.Turn, err)
	}
	s.ScreenWidth = frame.Width
	s.ScreenHeight = frame.Height

	frameRef := fmt.Sprintf("turn-%03d.jpg", s.Turn)
	a.recorder.FrameCaptured(ctx, s.RunID, s.Turn, frameRef, frame.Width, frame.Height, frame.JPEG)

	// A due review preempts the executor for this turn.
	if ReviewDue(s.Turn, a.config.ReviewInterval, s.NeedsReview, s.Store.NeedsCompaction()) {
		reason := reviewReason(s.Turn, a.config.ReviewInterval, s.NeedsReview, s.Store.NeedsCompaction())
		s.Mode = ModePlanning
		s.NeedsReview = false
		a.recorder.PhaseSwitch(s.RunID, s.Turn, ModeExecution.String(), ModePlanning.String(), reason)
		return false, "", nil
	}

	if RecoveryEligible(a.config.RecoveryEnabled, s.FailureStreak,
		a.config.RecoveryAfterFailures, s.Store.RecoveryAllowed(s.Turn)) {
		a.recover(ctx, s)
	}

	messages := buildExecutionMessages(s, frame)
	defs := tools.Definitions(tools.PhaseExecution)
	a.recorder.ModelRequest(s.RunID, s.Turn, s.Mode.String(), len(messages), len(defs), len(frame.JPEG))

	resp, err := a.provider.ChatWithTools(ctx, messages, defs)
	if err != nil {
		return false, "", fmt.Errorf("execution request failed on turn %d: %w", s.Turn, err)
	}
	a.recordResponse(s, resp)

	if len(resp.ToolCalls) == 0 {
		a.recorder.NoAction(s.RunID, s.Turn, s.Mode.String())
		return false, "", nil
	}
	// One action per turn: the first call is taken, extras dropped.
	if dropped := len(resp.ToolCalls) - 1; dropped > 0 {
		a.recorder.ExtraCallsDropped(s.RunID, s.Turn, dropped)
	}
	call := resp.ToolCalls[0]

	action, err := tools.Parse(tools.PhaseExecution, call.Name, call.Arguments)
	if err != nil {
		if errors.Is(err, tools.ErrUnknownTool) {
			return false, "", err
		}
		a.recorder.ParseFailure(s.RunID, s.Turn, s.Mode.String(), call.Name, err)
		return false, "", nil
	}

	if report, ok := action.(tools.MissionComplete); ok {
		runes := utf8.RuneCountInString(report.Evidence)
		if runes < a.config.MinEvidenceRunes {
			a.recorder.EvidenceRejected(s.RunID, s.Turn, runes, a.config.MinEvidenceRunes)
			return false, "", nil
		}
		return true, report.Evidence, nil
	}

	result, ok := a.dispatch(ctx, s, action)
	if ok {
		s.FailureStreak = 0
	} else {
		s.FailureStreak++
	}

	if status, isStatus := action.(tools.GoalStatus); isStatus {
		if ClassifyStatus(status.Status).TriggersReview() {
			s.NeedsReview = true
		}
	}

	s.Store.Record(memory.ActionRecord{
		Turn:       s.Turn,
		Tool:       action.Tool(),
		Args:       renderArgs(action),
		Result:     result,
		Screenshot: frameRef,
		Rationale:  resp.Content,
	})
	a.recorder.ActionRecorded(ctx, s.RunID, model.TurnRecord{
		Turn:       s.Turn,
		Phase:      s.Mode.String(),
		Tool:       action.Tool(),
		Args:       renderArgs(action),
		Result:     result,
		Success:    ok,
		Rationale:  resp.Content,
		Screenshot: frameRef,
	})
	return false, "", nil
}

// dispatch validates the action in context and performs it through the
// input driver. It returns a result description and whether the action
// actually ran. Validation failures consume the turn but never abort
// the run.
func (a *Agent) dispatch(ctx context.Context, s *State, action tools.Action) (string, bool) {
	switch act := action.(type) {
	case tools.Click:
		if strings.TrimSpace(act.Label) == "" {
			return "rejected: click requires a non-empty element label", false
		}
		x, y := act.Pos.Project(s.ScreenWidth, s.ScreenHeight)
		button, count := input.ButtonLeft, 1
		switch act.Kind {
		case tools.ClickDouble:
			count = 2
		case tools.ClickRight:
			button = input.ButtonRight
		}
		if err := a.driver.Click(ctx, x, y, button, count); err != nil {
			return fmt.Sprintf("failed: %v", err), false
		}
		a.settle(ctx)
		return fmt.Sprintf("clicked %q at pixel (%d, %d)", act.Label, x, y), true

	case tools.Drag:
		if strings.TrimSpace(act.Label) == "" {
			return "rejected: drag requires a non-empty element label", false
		}
		x1, y1 := act.From.Project(s.ScreenWidth, s.ScreenHeight)
		x2, y2 := act.To.Project(s.ScreenWidth, s.ScreenHeight)
		if err := a.driver.Drag(ctx, x1, y1, x2, y2); err != nil {
			return fmt.Sprintf("failed: %v", err), false
		}
		a.settle(ctx)
		return fmt.Sprintf("dragged %q from (%d, %d) to (%d, %d)", act.Label, x1, y1, x2, y2), true

	case tools.TypeText:
		if act.Text == "" {
			return "rejected: type_text requires non-empty text", false
		}
		if err := a.driver.TypeText(ctx, act.Text); err != nil {
			return fmt.Sprintf("failed: %v", err), false
		}
		a.settle(ctx)
		return fmt.Sprintf("typed %d characters", utf8.RuneCountInString(act.Text)), true

	case tools.PressKey:
		// Every +-token must resolve before anything is pressed.
		normalized, err := input.NormalizeCombo(act.Combo)
		if err != nil {
			return fmt.Sprintf("rejected: %v", err), false
		}
		if err := a.driver.PressCombo(ctx, normalized); err != nil {
			return fmt.Sprintf("failed: %v", err), false
		}
		a.settle(ctx)
		return fmt.Sprintf("pressed %s", normalized), true

	case tools.Scroll:
		if err := a.driver.Scroll(ctx, act.Up, act.Amount); err != nil {
			return fmt.Sprintf("failed: %v", err), false
		}
		a.settle(ctx)
		direction := "down"
		if act.Up {
			direction = "up"
		}
		return fmt.Sprintf("scrolled %s %d ticks", direction, act.Amount), true

	case tools.GoalStatus:
		// Pure report; nothing physical happens.
		return fmt.Sprintf("goal %q reported as %s", act.Goal, act.Status), true

	default:
		return fmt.Sprintf("rejected: no dispatcher for tool %s", action.Tool()), false
	}
}

// recover runs the remedial input sequence: cancel any modal state,
// recenter the pointer, release held modifiers, mark the attempt.
// Failures of the individual steps are not fatal; the sequence is
// best-effort by nature.
func (a *Agent) recover(ctx context.Context, s *State) {
	a.recorder.RecoveryTriggered(s.RunID, s.Turn, s.FailureStreak)

	if err := a.driver.PressCombo(ctx, "Escape"); err == nil {
		a.settle(ctx)
	}
	if s.ScreenWidth > 0 && s.ScreenHeight > 0 {
		_ = a.driver.MoveTo(ctx, s.ScreenWidth/2, s.ScreenHeight/2)
	}
	_ = a.driver.ReleaseModifiers(ctx)

	s.Store.MarkRecoveryAttempted(s.Turn)
}

// renderArgs produces the compact argument rendering stored on records.
func renderArgs(action tools.Action) string {
	b, err := json.Marshal(action)
	if err != nil {
		return "{}"
	}
	return string(b)
}
