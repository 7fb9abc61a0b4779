// Planning-phase request construction and response handling.

package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/richinex/golem/llm"
	"github.com/richinex/golem/tools"
)

const planningSystemPrompt = `You are the strategic planner of an autonomous desktop agent.
You never touch the screen yourself; you study the mission, the current plan
and the action memory, then direct the tactical executor.

Each turn you may:
- Revise the plan. Write the full updated plan as your reply text; it
  replaces the previous plan verbatim.
- Call update_instructions with concrete, ordered steps for the executor.
  Supplying instructions hands control to the execution phase.
- Call compact_memory when the action history has grown long: summarize a
  group of finished turns and list their turn numbers so they are archived
  behind the summary.

Ground every instruction in what the memory digest shows actually happened.
If the digest shows repeated failures, change the approach instead of
repeating it.`

// buildPlanningMessages reconstructs the full planning context: the
// model retains nothing between calls.
func buildPlanningMessages(s *State) []llm.ChatMessage {
	var b strings.Builder

	fmt.Fprintf(&b, "MISSION: %s\n\n", s.Mission)

	if strings.TrimSpace(s.Plan) != "" {
		fmt.Fprintf(&b, "CURRENT PLAN:\n%s\n\n", s.Plan)
	} else {
		b.WriteString("CURRENT PLAN: none yet - write one.\n\n")
	}

	fmt.Fprintf(&b, "MODE: %s\nTURN: %d\n\n", s.Mode, s.Turn)

	digest := s.Store.RenderContext()
	if digest == "" {
		b.WriteString("ACTION MEMORY: empty - nothing executed yet.\n")
	} else {
		fmt.Fprintf(&b, "ACTION MEMORY:\n%s\n", digest)
	}

	if s.Store.NeedsCompaction() {
		b.WriteString("\nThe action memory is long; compact the turns that are settled.\n")
	}

	return []llm.ChatMessage{
		llm.SystemMessage(planningSystemPrompt),
		llm.UserMessage(b.String()),
	}
}

// planTurn runs one planning iteration: request, plan update, compaction,
// instruction handoff. A fatal error aborts the run.
func (a *Agent) planTurn(ctx context.Context, s *State) error {
	messages := buildPlanningMessages(s)
	defs := tools.Definitions(tools.PhasePlanning)
	a.recorder.ModelRequest(s.RunID, s.Turn, s.Mode.String(), len(messages), len(defs), 0)

	resp, err := a.provider.ChatWithTools(ctx, messages, defs)
	if err != nil {
		return fmt.Errorf("planning request failed on turn %d: %w", s.Turn, err)
	}
	a.recordResponse(s, resp)

	// Plan text is always accepted verbatim when present.
	if strings.TrimSpace(resp.Content) != "" {
		s.Plan = resp.Content
	}

	instructed := false
	for _, call := range resp.ToolCalls {
		action, err := tools.Parse(tools.PhasePlanning, call.Name, call.Arguments)
		if err != nil {
			if errors.Is(err, tools.ErrUnknownTool) {
				return err
			}
			a.recorder.ParseFailure(s.RunID, s.Turn, s.Mode.String(), call.Name, err)
			continue
		}

		switch act := action.(type) {
		case tools.CompactMemory:
			snap := s.Store.Compact(act.Summary, act.Patterns, act.Turns)
			a.recorder.CompactionApplied(ctx, s.RunID, s.Turn,
				snap.Summary, snap.Patterns, snap.Compacted, len(s.Store.ActiveHistory()))

		case tools.UpdateInstructions:
			if strings.TrimSpace(act.Instructions) != "" {
				s.Instructions = act.Instructions
				instructed = true
			}
		}
	}

	if instructed {
		s.Mode = ModeExecution
		a.recorder.PhaseSwitch(s.RunID, s.Turn, ModePlanning.String(), ModeExecution.String(), "instructions issued")
	}
	return nil
}
