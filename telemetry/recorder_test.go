package telemetry

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/richinex/golem/model"
	"github.com/richinex/golem/storage"
)

func observedRecorder(audit *storage.Audit) (*Recorder, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return NewRecorder(zap.New(core), audit), logs
}

// TestRedactedBytes verifies binary payloads log only as length markers.
func TestRedactedBytes(t *testing.T) {
	field := RedactedBytes("jpeg", 48213)
	if field.String != "[REDACTED:48213]" {
		t.Errorf("field = %q, want [REDACTED:48213]", field.String)
	}
}

// TestFrameCapturedRedactsPayload verifies the raw JPEG never appears in
// the log entry, only its length.
func TestFrameCapturedRedactsPayload(t *testing.T) {
	recorder, logs := observedRecorder(nil)
	payload := []byte("fake-jpeg-bytes-that-must-not-leak")

	recorder.FrameCaptured(context.Background(), "run-1", 3, "turn-003.jpg", 1920, 1080, payload)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("%d log entries, want 1", len(entries))
	}
	for _, f := range entries[0].Context {
		if strings.Contains(f.String, "fake-jpeg-bytes") {
			t.Error("raw payload leaked into the log entry")
		}
		if f.Key == "jpeg" && f.String != "[REDACTED:34]" {
			t.Errorf("jpeg field = %q, want length marker", f.String)
		}
	}
}

// TestActionRecordedLevels verifies failed actions log at warn and
// successes at info.
func TestActionRecordedLevels(t *testing.T) {
	recorder, logs := observedRecorder(nil)
	ctx := context.Background()

	recorder.ActionRecorded(ctx, "run-1", model.TurnRecord{Turn: 1, Tool: "single_click", Result: "ok", Success: true})
	recorder.ActionRecorded(ctx, "run-1", model.TurnRecord{Turn: 2, Tool: "press_keyboard_key", Result: "rejected", Success: false})

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("%d log entries, want 2", len(entries))
	}
	if entries[0].Level != zapcore.InfoLevel {
		t.Errorf("successful action logged at %v, want info", entries[0].Level)
	}
	if entries[1].Level != zapcore.WarnLevel {
		t.Errorf("failed action logged at %v, want warn", entries[1].Level)
	}
}

// TestRecorderMirrorsToAudit verifies durable events land in the audit
// store when one is attached.
func TestRecorderMirrorsToAudit(t *testing.T) {
	audit, err := storage.NewAuditInMemory()
	if err != nil {
		t.Fatalf("failed to create audit store: %v", err)
	}
	defer audit.Close()

	recorder, _ := observedRecorder(audit)
	ctx := context.Background()
	run := model.RunInfo{ID: "run-9", Mission: "m", Provider: "p", Model: "m"}

	recorder.RunStarted(ctx, run)
	recorder.ActionRecorded(ctx, run.ID, model.TurnRecord{Turn: 1, Phase: "execution", Tool: "drag", Result: "ok", Success: true})
	recorder.RunFinished(ctx, run, model.OutcomeCompleted, 1)

	runs, err := audit.ListRuns(ctx)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 1 || runs[0].Outcome != "completed" {
		t.Fatalf("mirrored runs = %+v, want one completed run", runs)
	}
	actions, err := audit.Actions(ctx, run.ID)
	if err != nil {
		t.Fatalf("Actions failed: %v", err)
	}
	if len(actions) != 1 || actions[0].Tool != "drag" {
		t.Errorf("mirrored actions = %+v", actions)
	}
}

// TestNopRecorderIsSilent verifies the testing recorder never panics or
// writes anywhere.
func TestNopRecorderIsSilent(t *testing.T) {
	recorder := NewNopRecorder()
	ctx := context.Background()
	recorder.RunStarted(ctx, model.RunInfo{})
	recorder.NoAction("run", 1, "execution")
	recorder.RunFinished(ctx, model.RunInfo{}, model.OutcomeExhausted, 1)
}
