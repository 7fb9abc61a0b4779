// Package input injects synthetic pointer and keyboard events.
//
// Information Hiding:
// - The xdotool command vocabulary is hidden behind Driver
// - Per-action timeouts and path interpolation hidden
//
// The driver works in device pixels; grid-to-pixel projection happens
// in the engine before calls arrive here. It reports success or a
// descriptive failure; it cannot see application-level mistakes such as
// a click landing on the wrong control.

package input

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Button is an X11 pointer button number.
type Button int

const (
	ButtonLeft      Button = 1
	ButtonMiddle    Button = 2
	ButtonRight     Button = 3
	buttonWheelUp   Button = 4
	buttonWheelDown Button = 5
)

// Driver executes one physical action per call.
type Driver interface {
	// MoveTo places the pointer at device pixel coordinates.
	MoveTo(ctx context.Context, x, y int) error

	// Click moves to (x, y) and presses the button count times.
	Click(ctx context.Context, x, y int, button Button, count int) error

	// Drag presses at the start point, moves along an interpolated path,
	// and releases at the end point.
	Drag(ctx context.Context, x1, y1, x2, y2 int) error

	// TypeText enters literal text at the current focus.
	TypeText(ctx context.Context, text string) error

	// PressCombo presses a +-delimited key combination. Unrecognized
	// tokens fail with a descriptive error before anything is pressed.
	PressCombo(ctx context.Context, combo string) error

	// Scroll turns the wheel by amount ticks.
	Scroll(ctx context.Context, up bool, amount int) error

	// ReleaseModifiers lifts any held modifier keys.
	ReleaseModifiers(ctx context.Context) error
}

// Xdo drives an X11 desktop through the xdotool binary.
type Xdo struct {
	binary    string
	timeout   time.Duration
	typeDelay int // ms between typed characters
	dragSteps int
}

// Tuning defaults for the xdotool driver.
const (
	DefaultActionTimeout = 10 * time.Second
	defaultTypeDelayMS   = 12
	defaultDragSteps     = 8
)

// NewXdo creates a driver using the xdotool binary on PATH.
func NewXdo(timeout time.Duration) *Xdo {
	if timeout <= 0 {
		timeout = DefaultActionTimeout
	}
	return &Xdo{
		binary:    "xdotool",
		timeout:   timeout,
		typeDelay: defaultTypeDelayMS,
		dragSteps: defaultDragSteps,
	}
}

// MoveTo places the pointer at device pixel coordinates.
func (d *Xdo) MoveTo(ctx context.Context, x, y int) error {
	return d.run(ctx, "mousemove", "--sync", itoa(x), itoa(y))
}

// Click moves to (x, y) and presses the button count times.
func (d *Xdo) Click(ctx context.Context, x, y int, button Button, count int) error {
	if count < 1 {
		count = 1
	}
	if err := d.MoveTo(ctx, x, y); err != nil {
		return err
	}
	if count == 1 {
		return d.run(ctx, "click", itoa(int(button)))
	}
	return d.run(ctx, "click", "--repeat", itoa(count), "--delay", "50", itoa(int(button)))
}

// Drag presses at the start, walks an interpolated path, releases at
// the end. The intermediate moves keep drag-sensitive UIs (sliders,
// selections) tracking the pointer.
func (d *Xdo) Drag(ctx context.Context, x1, y1, x2, y2 int) error {
	if err := d.MoveTo(ctx, x1, y1); err != nil {
		return err
	}
	if err := d.run(ctx, "mousedown", itoa(int(ButtonLeft))); err != nil {
		return err
	}

	steps := d.dragSteps
	if steps < 1 {
		steps = 1
	}
	for i := 1; i <= steps; i++ {
		x := x1 + (x2-x1)*i/steps
		y := y1 + (y2-y1)*i/steps
		if err := d.MoveTo(ctx, x, y); err != nil {
			// Never leave the button held down.
			_ = d.run(ctx, "mouseup", itoa(int(ButtonLeft)))
			return err
		}
		time.Sleep(15 * time.Millisecond)
	}

	return d.run(ctx, "mouseup", itoa(int(ButtonLeft)))
}

// TypeText enters literal text at the current focus.
func (d *Xdo) TypeText(ctx context.Context, text string) error {
	return d.run(ctx, "type", "--delay", itoa(d.typeDelay), "--", text)
}

// PressCombo presses a key combination after resolving every token.
func (d *Xdo) PressCombo(ctx context.Context, combo string) error {
	normalized, err := NormalizeCombo(combo)
	if err != nil {
		return err
	}
	return d.run(ctx, "key", "--", normalized)
}

// Scroll turns the wheel by amount ticks under the pointer.
func (d *Xdo) Scroll(ctx context.Context, up bool, amount int) error {
	if amount < 1 {
		amount = 1
	}
	button := buttonWheelDown
	if up {
		button = buttonWheelUp
	}
	return d.run(ctx, "click", "--repeat", itoa(amount), itoa(int(button)))
}

// ReleaseModifiers lifts ctrl, shift, alt and super. Used by the
// recovery sequence to escape stuck modifier state.
func (d *Xdo) ReleaseModifiers(ctx context.Context) error {
	return d.run(ctx, "keyup", "ctrl", "shift", "alt", "super")
}

// run executes one xdotool invocation with a timeout.
func (d *Xdo) run(ctx context.Context, args ...string) error {
	runCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, d.binary, args...)
	output, err := cmd.CombinedOutput()

	if runCtx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("%s %s timed out after %s", d.binary, args[0], d.timeout)
	}
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return fmt.Errorf("%s %s failed with exit code %d: %s",
				d.binary, args[0], exitErr.ExitCode(), strings.TrimSpace(string(output)))
		}
		return fmt.Errorf("failed to execute %s: %w", d.binary, err)
	}
	return nil
}

func itoa(v int) string {
	return strconv.Itoa(v)
}

// Verify Xdo implements Driver
var _ Driver = (*Xdo)(nil)
