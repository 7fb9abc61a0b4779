// The turn loop.
//
// This is THE control surface of the engine: the mode state machine,
// the turn counter, and the termination rules all live here.
//
// Information Hiding:
// - Loop internals hidden; callers see Run and an Outcome
// - Phase request shapes hidden in planner.go / executor.go
// - Dispatch validation hidden in executor.go

package agent

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/richinex/golem/input"
	"github.com/richinex/golem/llm"
	"github.com/richinex/golem/model"
	"github.com/richinex/golem/screen"
	"github.com/richinex/golem/telemetry"
)

// Agent drives one desktop mission to completion or exhaustion. The
// model is the sole decision oracle; the agent enforces termination,
// ordering and memory discipline around it.
type Agent struct {
	config   Config
	provider llm.Provider
	capturer screen.Capturer
	driver   input.Driver
	recorder *telemetry.Recorder
}

// New creates an agent. All four collaborators are required; the
// recorder may be telemetry.NewNopRecorder() to discard events.
func New(config Config, provider llm.Provider, capturer screen.Capturer, driver input.Driver, recorder *telemetry.Recorder) *Agent {
	return &Agent{
		config:   config.normalized(),
		provider: provider,
		capturer: capturer,
		driver:   driver,
		recorder: recorder,
	}
}

// Run executes one mission. It blocks until the mission-completion
// report is accepted, the turn budget is exhausted, or a fatal error
// (model failure, capture failure, unknown tool, cancellation) aborts
// the run. Exactly one of Outcome or error is meaningful.
func (a *Agent) Run(ctx context.Context, mission string) (Outcome, error) {
	state := NewState(mission, a.config)
	info := state.RunInfo(a.provider.Name(), a.provider.Model())
	a.recorder.RunStarted(ctx, info)

	for state.Turn < a.config.MaxSteps {
		if err := ctx.Err(); err != nil {
			return Outcome{}, err
		}

		// The counter moves exactly once per iteration, before anything
		// else can happen.
		state.Turn++
		a.recorder.TurnStarted(state.RunID, state.Turn, state.Mode.String(),
			len(state.Store.ActiveHistory()), len(state.Store.Snapshots()), state.FailureStreak)

		switch state.Mode {
		case ModePlanning:
			if err := a.planTurn(ctx, state); err != nil {
				return Outcome{}, err
			}

		case ModeExecution:
			accepted, evidence, err := a.executeTurn(ctx, state)
			if err != nil {
				return Outcome{}, err
			}
			if accepted {
				outcome := Outcome{
					Kind:     model.OutcomeCompleted,
					Turns:    state.Turn,
					Evidence: evidence,
					Elapsed:  time.Since(state.StartedAt),
				}
				a.recorder.RunFinished(ctx, info, outcome.Kind, outcome.Turns)
				return outcome, nil
			}
		}

		if err := a.pause(ctx, a.config.TurnDelay); err != nil {
			return Outcome{}, err
		}
	}

	outcome := Outcome{
		Kind:    model.OutcomeExhausted,
		Turns:   state.Turn,
		Elapsed: time.Since(state.StartedAt),
	}
	a.recorder.RunFinished(ctx, info, outcome.Kind, outcome.Turns)
	return outcome, nil
}

// recordResponse traces a model response with its usage numbers.
func (a *Agent) recordResponse(s *State, resp llm.LLMResponse) {
	var prompt, completion int
	if resp.Usage != nil {
		prompt = int(resp.Usage.PromptTokens)
		completion = int(resp.Usage.CompletionTokens)
	}
	a.recorder.ModelResponse(s.RunID, s.Turn,
		utf8.RuneCountInString(resp.Content), len(resp.ToolCalls), prompt, completion)
}

// settle applies the post-action pause that lets the UI stabilize.
func (a *Agent) settle(ctx context.Context) {
	_ = a.pause(ctx, a.config.SettleDelay)
}

// pause blocks for d, returning early only on cancellation.
func (a *Agent) pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
