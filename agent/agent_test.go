package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/richinex/golem/input"
	"github.com/richinex/golem/llm"
	"github.com/richinex/golem/screen"
	"github.com/richinex/golem/telemetry"
	"github.com/richinex/golem/tools"
)

// scriptedProvider replays a fixed sequence of responses and captures
// every request. Once the script runs out it returns empty responses.
type scriptedProvider struct {
	responses []llm.LLMResponse
	err       error
	requests  []capturedRequest
}

type capturedRequest struct {
	messages []llm.ChatMessage
	tools    []llm.ToolDefinition
}

func (p *scriptedProvider) Name() string  { return "scripted" }
func (p *scriptedProvider) Model() string { return "test-model" }

func (p *scriptedProvider) ChatWithTools(ctx context.Context, messages []llm.ChatMessage, defs []llm.ToolDefinition) (llm.LLMResponse, error) {
	p.requests = append(p.requests, capturedRequest{messages: messages, tools: defs})
	if p.err != nil {
		return llm.LLMResponse{}, p.err
	}
	if len(p.responses) == 0 {
		return llm.LLMResponse{}, nil
	}
	resp := p.responses[0]
	p.responses = p.responses[1:]
	return resp, nil
}

// userContent returns the request's user-role message text.
func (r capturedRequest) userContent() string {
	for _, m := range r.messages {
		if m.Role == "user" {
			return m.Content
		}
	}
	return ""
}

// isPlanning distinguishes request phases by vocabulary size.
func (r capturedRequest) isPlanning() bool { return len(r.tools) == 2 }

type fakeCapturer struct {
	width, height int
	err           error
	captures      int
}

func (c *fakeCapturer) Capture(ctx context.Context) (*screen.Frame, error) {
	c.captures++
	if c.err != nil {
		return nil, c.err
	}
	return &screen.Frame{
		JPEG:   []byte("jpeg-bytes"),
		Width:  c.width,
		Height: c.height,
	}, nil
}

// fakeDriver records every physical op as a formatted string.
type fakeDriver struct {
	ops []string
	err error
}

func (d *fakeDriver) op(s string) error {
	d.ops = append(d.ops, s)
	return d.err
}

func (d *fakeDriver) MoveTo(ctx context.Context, x, y int) error {
	return d.op(fmt.Sprintf("move(%d,%d)", x, y))
}
func (d *fakeDriver) Click(ctx context.Context, x, y int, button input.Button, count int) error {
	return d.op(fmt.Sprintf("click(%d,%d,b%d,x%d)", x, y, button, count))
}
func (d *fakeDriver) Drag(ctx context.Context, x1, y1, x2, y2 int) error {
	return d.op(fmt.Sprintf("drag(%d,%d->%d,%d)", x1, y1, x2, y2))
}
func (d *fakeDriver) TypeText(ctx context.Context, text string) error {
	return d.op(fmt.Sprintf("type(%s)", text))
}
func (d *fakeDriver) PressCombo(ctx context.Context, combo string) error {
	return d.op(fmt.Sprintf("press(%s)", combo))
}
func (d *fakeDriver) Scroll(ctx context.Context, up bool, amount int) error {
	return d.op(fmt.Sprintf("scroll(%v,%d)", up, amount))
}
func (d *fakeDriver) ReleaseModifiers(ctx context.Context) error {
	return d.op("release-modifiers")
}

var _ input.Driver = (*fakeDriver)(nil)

func call(name string, args string) llm.ToolCall {
	return llm.ToolCall{ID: "t", Name: name, Arguments: json.RawMessage(args)}
}

func instructionsResponse(instructions string) llm.LLMResponse {
	return llm.LLMResponse{
		Content:   "plan: " + instructions,
		ToolCalls: []llm.ToolCall{call(tools.ToolUpdateInstructions, fmt.Sprintf(`{"instructions": %q}`, instructions))},
	}
}

func clickResponse(label string) llm.LLMResponse {
	return llm.LLMResponse{
		Content:   "looks right, clicking",
		ToolCalls: []llm.ToolCall{call(tools.ToolSingleClick, fmt.Sprintf(`{"label": %q, "position": [500, 500]}`, label))},
	}
}

func completeResponse(evidence string) llm.LLMResponse {
	return llm.LLMResponse{
		ToolCalls: []llm.ToolCall{call(tools.ToolMissionComplete, fmt.Sprintf(`{"evidence": %q}`, evidence))},
	}
}

// newTestAgent wires an agent with zero delays and the given budget.
func newTestAgent(maxSteps int, provider *scriptedProvider, capturer *fakeCapturer, driver *fakeDriver) *Agent {
	cfg := Config{
		MaxSteps:       maxSteps,
		ReviewInterval: 7,
	}
	return New(cfg, provider, capturer, driver, telemetry.NewNopRecorder())
}

// TestPlanningInstructionSwitch verifies a planning response with
// non-empty instructions switches to execution with the text stored
// verbatim, and an accepted completion ends the run.
func TestPlanningInstructionSwitch(t *testing.T) {
	evidence := strings.Repeat("v", 120)
	provider := &scriptedProvider{responses: []llm.LLMResponse{
		instructionsResponse("open the terminal and run the backup script"),
		completeResponse(evidence),
	}}
	capturer := &fakeCapturer{width: 1920, height: 1080}
	driver := &fakeDriver{}

	outcome, err := newTestAgent(10, provider, capturer, driver).Run(context.Background(), "back up the home directory")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !outcome.Completed() {
		t.Errorf("outcome = %v, want completed", outcome.Kind)
	}
	if outcome.Turns != 2 {
		t.Errorf("Turns = %d, want 2", outcome.Turns)
	}
	if outcome.Evidence != evidence {
		t.Error("accepted evidence not carried on the outcome")
	}

	if len(provider.requests) != 2 {
		t.Fatalf("%d model calls, want 2", len(provider.requests))
	}
	if !provider.requests[0].isPlanning() {
		t.Error("first request should carry the planning vocabulary")
	}
	if provider.requests[1].isPlanning() {
		t.Error("second request should carry the execution vocabulary")
	}
	if !strings.Contains(provider.requests[1].userContent(), "open the terminal and run the backup script") {
		t.Error("execution request missing the stored instructions verbatim")
	}
}

// TestEvidenceLengthBoundary verifies 99 runes of evidence is rejected
// (loop continues) and exactly 100 is accepted.
func TestEvidenceLengthBoundary(t *testing.T) {
	provider := &scriptedProvider{responses: []llm.LLMResponse{
		instructionsResponse("finish up"),
		completeResponse(strings.Repeat("e", 99)),
		completeResponse(strings.Repeat("e", 100)),
	}}
	capturer := &fakeCapturer{width: 1280, height: 800}
	driver := &fakeDriver{}

	outcome, err := newTestAgent(10, provider, capturer, driver).Run(context.Background(), "mission")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !outcome.Completed() {
		t.Fatalf("outcome = %v, want completed", outcome.Kind)
	}
	if outcome.Turns != 3 {
		t.Errorf("Turns = %d, want 3 (99-rune report must not terminate)", outcome.Turns)
	}
}

// TestDispatchProjectsGrid verifies a click at grid (500,500) lands on
// the physical midpoint pixel of the captured screen.
func TestDispatchProjectsGrid(t *testing.T) {
	provider := &scriptedProvider{responses: []llm.LLMResponse{
		instructionsResponse("click the center icon"),
		clickResponse("center icon"),
		completeResponse(strings.Repeat("v", 100)),
	}}
	capturer := &fakeCapturer{width: 1920, height: 1080}
	driver := &fakeDriver{}

	if _, err := newTestAgent(10, provider, capturer, driver).Run(context.Background(), "mission"); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(driver.ops) != 1 {
		t.Fatalf("driver ops = %v, want exactly one click", driver.ops)
	}
	if driver.ops[0] != "click(960,540,b1,x1)" {
		t.Errorf("op = %q, want click at the midpoint pixel", driver.ops[0])
	}
}

// TestForcedReviewAtInterval verifies turn 7 (interval 7) switches to
// planning before any execution request is made that turn.
func TestForcedReviewAtInterval(t *testing.T) {
	responses := []llm.LLMResponse{instructionsResponse("keep clicking")}
	for i := 0; i < 5; i++ {
		responses = append(responses, clickResponse(fmt.Sprintf("button %d", i)))
	}
	provider := &scriptedProvider{responses: responses}
	capturer := &fakeCapturer{width: 1000, height: 1000}
	driver := &fakeDriver{}

	outcome, err := newTestAgent(8, provider, capturer, driver).Run(context.Background(), "mission")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if outcome.Kind.String() != "exhausted" {
		t.Errorf("outcome = %v, want exhausted", outcome.Kind)
	}

	// turn 1 planning, turns 2-6 execution, turn 7 review (no model
	// call), turn 8 planning again.
	if len(provider.requests) != 7 {
		t.Fatalf("%d model calls, want 7", len(provider.requests))
	}
	execCalls := 0
	for _, r := range provider.requests {
		if !r.isPlanning() {
			execCalls++
		}
	}
	if execCalls != 5 {
		t.Errorf("%d execution requests, want 5 (turn 7 must be preempted)", execCalls)
	}
	if !provider.requests[6].isPlanning() {
		t.Error("the call after the forced review should be a planning request")
	}
}

// TestStatusReportTriggersReview verifies a terminal goal status sends
// the next turn back to planning without an execution request.
func TestStatusReportTriggersReview(t *testing.T) {
	provider := &scriptedProvider{responses: []llm.LLMResponse{
		instructionsResponse("open the editor"),
		{
			Content:   "the editor is open",
			ToolCalls: []llm.ToolCall{call(tools.ToolGoalStatus, `{"goal": "open editor", "status": "DONE"}`)},
		},
	}}
	capturer := &fakeCapturer{width: 800, height: 600}
	driver := &fakeDriver{}

	if _, err := newTestAgent(4, provider, capturer, driver).Run(context.Background(), "mission"); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// turn 1 plan, turn 2 status report, turn 3 review switch (no model
	// call), turn 4 planning.
	if len(provider.requests) != 3 {
		t.Fatalf("%d model calls, want 3", len(provider.requests))
	}
	if !provider.requests[2].isPlanning() {
		t.Error("request after a DONE status should be planning")
	}
	if len(driver.ops) != 0 {
		t.Errorf("driver ops = %v, want none for a pure status report", driver.ops)
	}
}

// TestUnknownKeyComboRejectedAtDispatch verifies ctrl+shift+zz parses
// but never reaches the driver, and the failure is visible to the model
// on the next turn.
func TestUnknownKeyComboRejectedAtDispatch(t *testing.T) {
	provider := &scriptedProvider{responses: []llm.LLMResponse{
		instructionsResponse("press the shortcut"),
		{ToolCalls: []llm.ToolCall{call(tools.ToolPressKey, `{"key": "ctrl+shift+zz"}`)}},
	}}
	capturer := &fakeCapturer{width: 1280, height: 800}
	driver := &fakeDriver{}

	if _, err := newTestAgent(3, provider, capturer, driver).Run(context.Background(), "mission"); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(driver.ops) != 0 {
		t.Errorf("driver ops = %v, want none for an unknown key token", driver.ops)
	}
	// Turn 3's execution request should surface the rejection as the
	// previous action's result.
	last := provider.requests[len(provider.requests)-1]
	if last.isPlanning() || !strings.Contains(last.userContent(), "rejected") {
		t.Errorf("rejection not surfaced for self-validation:\n%s", last.userContent())
	}
}

// TestEmptyLabelRejectedAtDispatch verifies a click whose label decoded
// to empty consumes the turn without touching the driver.
func TestEmptyLabelRejectedAtDispatch(t *testing.T) {
	provider := &scriptedProvider{responses: []llm.LLMResponse{
		instructionsResponse("click it"),
		{ToolCalls: []llm.ToolCall{call(tools.ToolSingleClick, `{"label": "", "position": [10, 10]}`)}},
	}}
	capturer := &fakeCapturer{width: 1280, height: 800}
	driver := &fakeDriver{}

	if _, err := newTestAgent(2, provider, capturer, driver).Run(context.Background(), "mission"); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(driver.ops) != 0 {
		t.Errorf("driver ops = %v, want none for an empty label", driver.ops)
	}
}

// TestRecoveryFiresOnceWithinCooldown verifies the remedial sequence
// runs when the consecutive-failure streak reaches the trigger, in the
// order Escape press, pointer recenter, modifier release, and that the
// cooldown suppresses a second attempt on the turns that follow.
func TestRecoveryFiresOnceWithinCooldown(t *testing.T) {
	responses := []llm.LLMResponse{instructionsResponse("keep clicking save")}
	for i := 0; i < 6; i++ {
		responses = append(responses, clickResponse("save"))
	}
	provider := &scriptedProvider{responses: responses}
	capturer := &fakeCapturer{width: 1920, height: 1080}
	driver := &fakeDriver{err: errors.New("pointer grab refused")}

	cfg := Config{
		MaxSteps:        7,
		ReviewInterval:  9,
		RecoveryEnabled: true,
	}
	outcome, err := New(cfg, provider, capturer, driver, telemetry.NewNopRecorder()).Run(context.Background(), "save the document")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if outcome.Completed() {
		t.Fatal("run with a failing driver should exhaust the budget")
	}

	// Turn 1 plans; clicks fail on turns 2-4 building the streak to 3;
	// recovery runs at the top of turn 5 and the cooldown blocks it for
	// the rest of the budget.
	click := "click(960,540,b1,x1)"
	want := []string{
		click, click, click,
		"press(Escape)", "move(960,540)", "release-modifiers",
		click, click, click,
	}
	if len(driver.ops) != len(want) {
		t.Fatalf("driver ops = %v, want %v", driver.ops, want)
	}
	for i := range want {
		if driver.ops[i] != want[i] {
			t.Errorf("op[%d] = %q, want %q", i, driver.ops[i], want[i])
		}
	}
}

// TestNoToolCallRecordsNothing verifies a call-less execution response
// leaves the action memory untouched.
func TestNoToolCallRecordsNothing(t *testing.T) {
	provider := &scriptedProvider{responses: []llm.LLMResponse{
		instructionsResponse("do something"),
		{Content: "just thinking out loud"},
	}}
	capturer := &fakeCapturer{width: 1280, height: 800}
	driver := &fakeDriver{}

	if _, err := newTestAgent(3, provider, capturer, driver).Run(context.Background(), "mission"); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	last := provider.requests[len(provider.requests)-1]
	if !strings.Contains(last.userContent(), "PREVIOUS ACTION: none") {
		t.Errorf("a no-action turn must not append a record:\n%s", last.userContent())
	}
}

// TestCompactionAppliedFromPlanning verifies a compact_memory call takes
// effect immediately: the snapshot shows up in the next planning digest.
func TestCompactionAppliedFromPlanning(t *testing.T) {
	provider := &scriptedProvider{responses: []llm.LLMResponse{
		{
			Content:   "nothing executed yet",
			ToolCalls: []llm.ToolCall{call(tools.ToolCompactMemory, `{"summary": "warmup done", "turn_numbers": []}`)},
		},
	}}
	capturer := &fakeCapturer{width: 1280, height: 800}
	driver := &fakeDriver{}

	if _, err := newTestAgent(2, provider, capturer, driver).Run(context.Background(), "mission"); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(provider.requests) != 2 {
		t.Fatalf("%d model calls, want 2", len(provider.requests))
	}
	if !strings.Contains(provider.requests[1].userContent(), "warmup done") {
		t.Errorf("snapshot summary missing from the next planning digest:\n%s",
			provider.requests[1].userContent())
	}
}

// TestExhaustionOutcome verifies the budget bound: N iterations, turn
// counter N, exhausted outcome.
func TestExhaustionOutcome(t *testing.T) {
	provider := &scriptedProvider{} // empty planning responses forever
	capturer := &fakeCapturer{width: 1280, height: 800}
	driver := &fakeDriver{}

	outcome, err := newTestAgent(3, provider, capturer, driver).Run(context.Background(), "mission")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if outcome.Completed() {
		t.Error("outcome completed, want exhausted")
	}
	if outcome.Turns != 3 {
		t.Errorf("Turns = %d, want 3", outcome.Turns)
	}
	if len(provider.requests) != 3 {
		t.Errorf("%d model calls, want exactly one per turn", len(provider.requests))
	}
}

// TestModelFailureIsFatal verifies a failed model request aborts the run.
func TestModelFailureIsFatal(t *testing.T) {
	provider := &scriptedProvider{err: errors.New("connection refused")}
	capturer := &fakeCapturer{width: 1280, height: 800}
	driver := &fakeDriver{}

	_, err := newTestAgent(5, provider, capturer, driver).Run(context.Background(), "mission")
	if err == nil {
		t.Fatal("Run succeeded despite model failure")
	}
}

// TestCaptureFailureIsFatal verifies a failed screen capture aborts the
// run once the loop reaches execution.
func TestCaptureFailureIsFatal(t *testing.T) {
	provider := &scriptedProvider{responses: []llm.LLMResponse{
		instructionsResponse("go"),
	}}
	capturer := &fakeCapturer{err: errors.New("no display")}
	driver := &fakeDriver{}

	_, err := newTestAgent(5, provider, capturer, driver).Run(context.Background(), "mission")
	if err == nil {
		t.Fatal("Run succeeded despite capture failure")
	}
}

// TestUnknownToolIsFatal verifies an undeclared tool name propagates to
// the top as the one fatal parse failure.
func TestUnknownToolIsFatal(t *testing.T) {
	provider := &scriptedProvider{responses: []llm.LLMResponse{
		{ToolCalls: []llm.ToolCall{call("nonexistent_tool", `{}`)}},
	}}
	capturer := &fakeCapturer{width: 1280, height: 800}
	driver := &fakeDriver{}

	_, err := newTestAgent(5, provider, capturer, driver).Run(context.Background(), "mission")
	if !errors.Is(err, tools.ErrUnknownTool) {
		t.Fatalf("err = %v, want ErrUnknownTool", err)
	}
}

// TestMalformedCallIsNoAction verifies a recoverable parse failure
// (missing required field) consumes the turn without aborting.
func TestMalformedCallIsNoAction(t *testing.T) {
	provider := &scriptedProvider{responses: []llm.LLMResponse{
		instructionsResponse("type the name"),
		{ToolCalls: []llm.ToolCall{call(tools.ToolTypeText, `{}`)}},
	}}
	capturer := &fakeCapturer{width: 1280, height: 800}
	driver := &fakeDriver{}

	outcome, err := newTestAgent(3, provider, capturer, driver).Run(context.Background(), "mission")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if outcome.Completed() {
		t.Error("outcome completed, want exhausted")
	}
	if len(driver.ops) != 0 {
		t.Errorf("driver ops = %v, want none", driver.ops)
	}
}

// TestCancellationAborts verifies a cancelled context stops the loop
// with its error.
func TestCancellationAborts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	provider := &scriptedProvider{}
	capturer := &fakeCapturer{width: 1280, height: 800}
	driver := &fakeDriver{}

	_, err := newTestAgent(5, provider, capturer, driver).Run(ctx, "mission")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
