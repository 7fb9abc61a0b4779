package telemetry

import (
	"context"

	"go.uber.org/zap"

	"github.com/richinex/golem/model"
	"github.com/richinex/golem/storage"
)

// Recorder receives the one-way event stream of a run. Every event
// becomes a log line; durable events are additionally mirrored into the
// audit store when one is attached. The agent only ever writes here and
// never reads anything back.
type Recorder struct {
	log   *zap.Logger
	audit *storage.Audit
}

// NewRecorder builds a Recorder. audit may be nil to disable mirroring.
func NewRecorder(log *zap.Logger, audit *storage.Audit) *Recorder {
	return &Recorder{log: log, audit: audit}
}

// NewNopRecorder builds a Recorder that discards everything (useful for testing).
func NewNopRecorder() *Recorder {
	return &Recorder{log: zap.NewNop()}
}

// auditWarn reports a failed audit write without failing the turn.
func (r *Recorder) auditWarn(op string, err error) {
	if err != nil {
		r.log.Warn("audit write failed", zap.String("op", op), zap.Error(err))
	}
}

// RunStarted announces a new run and registers it in the audit store.
func (r *Recorder) RunStarted(ctx context.Context, run model.RunInfo) {
	r.log.Info("run started",
		zap.String("run_id", run.ID),
		zap.String("provider", run.Provider),
		zap.String("model", run.Model),
		zap.String("mission", run.Mission),
	)
	if r.audit != nil {
		r.auditWarn("begin run", r.audit.BeginRun(ctx, run))
	}
}

// RunFinished closes out a run with its outcome and consumed turns.
func (r *Recorder) RunFinished(ctx context.Context, run model.RunInfo, outcome model.OutcomeKind, turns int) {
	r.log.Info("run finished",
		zap.String("run_id", run.ID),
		zap.String("outcome", outcome.String()),
		zap.Int("turns", turns),
	)
	if r.audit != nil {
		r.auditWarn("finish run", r.audit.FinishRun(ctx, run.ID, outcome.String(), turns))
	}
}

// TurnStarted traces the loop state at the top of each iteration.
func (r *Recorder) TurnStarted(runID string, turn int, mode string, active, snapshots, streak int) {
	r.log.Debug("turn started",
		zap.String("run_id", runID),
		zap.Int("turn", turn),
		zap.String("mode", mode),
		zap.Int("active_records", active),
		zap.Int("snapshots", snapshots),
		zap.Int("failure_streak", streak),
	)
}

// PhaseSwitch records a transition between planning and execution.
func (r *Recorder) PhaseSwitch(runID string, turn int, from, to, reason string) {
	r.log.Info("phase switch",
		zap.String("run_id", runID),
		zap.Int("turn", turn),
		zap.String("from", from),
		zap.String("to", to),
		zap.String("reason", reason),
	)
}

// ModelRequest traces an outgoing model call. Image payloads appear
// only as a length marker.
func (r *Recorder) ModelRequest(runID string, turn int, phase string, messages, toolCount, imageBytes int) {
	r.log.Debug("model request",
		zap.String("run_id", runID),
		zap.Int("turn", turn),
		zap.String("phase", phase),
		zap.Int("messages", messages),
		zap.Int("tools", toolCount),
		RedactedBytes("images", imageBytes),
	)
}

// ModelResponse traces what came back from the model.
func (r *Recorder) ModelResponse(runID string, turn int, contentRunes, toolCalls, promptTokens, completionTokens int) {
	r.log.Debug("model response",
		zap.String("run_id", runID),
		zap.Int("turn", turn),
		zap.Int("content_runes", contentRunes),
		zap.Int("tool_calls", toolCalls),
		zap.Int("prompt_tokens", promptTokens),
		zap.Int("completion_tokens", completionTokens),
	)
}

// ParseFailure records a tool call that could not be turned into an action.
func (r *Recorder) ParseFailure(runID string, turn int, phase, tool string, err error) {
	r.log.Warn("tool call rejected",
		zap.String("run_id", runID),
		zap.Int("turn", turn),
		zap.String("phase", phase),
		zap.String("tool", tool),
		zap.Error(err),
	)
}

// NoAction records a turn on which the model produced no usable tool call.
func (r *Recorder) NoAction(runID string, turn int, phase string) {
	r.log.Info("no action this turn",
		zap.String("run_id", runID),
		zap.Int("turn", turn),
		zap.String("phase", phase),
	)
}

// ExtraCallsDropped records surplus tool calls beyond the one action a
// turn is allowed.
func (r *Recorder) ExtraCallsDropped(runID string, turn, dropped int) {
	r.log.Warn("extra tool calls dropped",
		zap.String("run_id", runID),
		zap.Int("turn", turn),
		zap.Int("dropped", dropped),
	)
}

// ActionRecorded mirrors one appended action record. Failed actions log
// at warn so a scan of the log surfaces them.
func (r *Recorder) ActionRecorded(ctx context.Context, runID string, rec model.TurnRecord) {
	fields := []zap.Field{
		zap.String("run_id", runID),
		zap.Int("turn", rec.Turn),
		zap.String("phase", rec.Phase),
		zap.String("tool", rec.Tool),
		zap.String("result", rec.Result),
	}
	if rec.Screenshot != "" {
		fields = append(fields, zap.String("screenshot", rec.Screenshot))
	}
	if rec.Success {
		r.log.Info("action executed", fields...)
	} else {
		r.log.Warn("action failed", fields...)
	}
	if r.audit != nil {
		r.auditWarn("record action", r.audit.RecordAction(ctx, runID, rec))
	}
}

// EvidenceRejected records a completion claim that fell short of the
// minimum evidence length.
func (r *Recorder) EvidenceRejected(runID string, turn, runes, min int) {
	r.log.Warn("completion evidence too short",
		zap.String("run_id", runID),
		zap.Int("turn", turn),
		zap.Int("evidence_runes", runes),
		zap.Int("minimum", min),
	)
}

// CompactionApplied records a memory compaction and persists the snapshot.
func (r *Recorder) CompactionApplied(ctx context.Context, runID string, turn int, summary, patterns string, compacted, active int) {
	r.log.Info("memory compacted",
		zap.String("run_id", runID),
		zap.Int("turn", turn),
		zap.Int("archived", compacted),
		zap.Int("active_after", active),
	)
	if r.audit != nil {
		r.auditWarn("record snapshot", r.audit.RecordSnapshot(ctx, runID, turn, summary, patterns, compacted))
	}
}

// RecoveryTriggered records that the remedial input sequence ran.
func (r *Recorder) RecoveryTriggered(runID string, turn, streak int) {
	r.log.Warn("recovery sequence triggered",
		zap.String("run_id", runID),
		zap.Int("turn", turn),
		zap.Int("failure_streak", streak),
	)
}

// FrameCaptured records a screenshot capture and persists the JPEG.
// The log line carries only the byte length, never the payload.
func (r *Recorder) FrameCaptured(ctx context.Context, runID string, turn int, ref string, width, height int, jpeg []byte) {
	r.log.Debug("frame captured",
		zap.String("run_id", runID),
		zap.Int("turn", turn),
		zap.String("ref", ref),
		zap.Int("width", width),
		zap.Int("height", height),
		RedactedBytes("jpeg", len(jpeg)),
	)
	if r.audit != nil {
		r.auditWarn("save frame", r.audit.SaveFrame(ctx, runID, turn, ref, width, height, jpeg))
	}
}
