package tools

import "testing"

// TestPositionNormalizeClamps verifies out-of-range grid values clamp
// into [0, 1000] on each axis independently.
func TestPositionNormalizeClamps(t *testing.T) {
	got := Position{X: -50, Y: 1200}.Normalize()
	want := Position{X: 0, Y: 1000}
	if got != want {
		t.Errorf("Normalize(-50, 1200) = %v, want %v", got, want)
	}

	// In-range values pass through untouched.
	got = Position{X: 1, Y: 999}.Normalize()
	if got != (Position{X: 1, Y: 999}) {
		t.Errorf("Normalize(1, 999) = %v, want unchanged", got)
	}
}

// TestPositionProjectMidpoint verifies (500,500) lands on the exact
// midpoint pixel for any screen size.
func TestPositionProjectMidpoint(t *testing.T) {
	sizes := []struct{ w, h int }{
		{1920, 1080},
		{1366, 768},
		{800, 600},
		{3840, 2160},
	}
	for _, size := range sizes {
		x, y := Position{X: 500, Y: 500}.Project(size.w, size.h)
		if x != size.w/2 || y != size.h/2 {
			t.Errorf("Project(500,500) on %dx%d = (%d,%d), want (%d,%d)",
				size.w, size.h, x, y, size.w/2, size.h/2)
		}
	}
}

// TestPositionProjectNeverOutOfBounds verifies the grid maximum maps to
// the last pixel, not one past it.
func TestPositionProjectNeverOutOfBounds(t *testing.T) {
	sizes := []struct{ w, h int }{
		{1920, 1080},
		{1366, 768},
		{1, 1},
	}
	for _, size := range sizes {
		x, y := Position{X: 1000, Y: 1000}.Project(size.w, size.h)
		if x != size.w-1 || y != size.h-1 {
			t.Errorf("Project(1000,1000) on %dx%d = (%d,%d), want (%d,%d)",
				size.w, size.h, x, y, size.w-1, size.h-1)
		}
	}

	// Clamping happens before projection, so negative grid values also
	// stay on screen.
	x, y := Position{X: -50, Y: 1200}.Project(1920, 1080)
	if x != 0 || y != 1079 {
		t.Errorf("Project(-50,1200) on 1920x1080 = (%d,%d), want (0,1079)", x, y)
	}
}

// TestClickToolNames verifies the click variants report their own wire
// names.
func TestClickToolNames(t *testing.T) {
	cases := []struct {
		kind ClickKind
		want string
	}{
		{ClickSingle, ToolSingleClick},
		{ClickDouble, ToolDoubleClick},
		{ClickRight, ToolRightClick},
	}
	for _, tc := range cases {
		if got := (Click{Kind: tc.kind}).Tool(); got != tc.want {
			t.Errorf("Click{%v}.Tool() = %q, want %q", tc.kind, got, tc.want)
		}
	}
}

// TestScrollToolName verifies direction selects the wire name.
func TestScrollToolName(t *testing.T) {
	if got := (Scroll{Up: true}).Tool(); got != ToolScrollUp {
		t.Errorf("Scroll{Up}.Tool() = %q, want %q", got, ToolScrollUp)
	}
	if got := (Scroll{}).Tool(); got != ToolScrollDown {
		t.Errorf("Scroll{}.Tool() = %q, want %q", got, ToolScrollDown)
	}
}
