package input

import "testing"

// TestNormalizeCombo verifies friendly tokens resolve to keysyms.
func TestNormalizeCombo(t *testing.T) {
	cases := []struct {
		combo string
		want  string
	}{
		{"enter", "Return"},
		{"Escape", "Escape"},
		{"ctrl+shift+t", "ctrl+shift+t"},
		{"CTRL+S", "ctrl+s"},
		{"alt+tab", "alt+Tab"},
		{"super+l", "super+l"},
		{"cmd+space", "super+space"},
		{"ctrl+plus", "ctrl+plus"},
		{"f5", "F5"},
		{"page_down", "Next"},
		{"7", "7"},
	}
	for _, tc := range cases {
		got, err := NormalizeCombo(tc.combo)
		if err != nil {
			t.Errorf("NormalizeCombo(%q) failed: %v", tc.combo, err)
			continue
		}
		if got != tc.want {
			t.Errorf("NormalizeCombo(%q) = %q, want %q", tc.combo, got, tc.want)
		}
	}
}

// TestNormalizeComboRejectsUnknownTokens verifies one bad token fails
// the whole combo before anything is pressed.
func TestNormalizeComboRejectsUnknownTokens(t *testing.T) {
	bad := []string{
		"ctrl+shift+zz",
		"zz",
		"ctrl+",
		"",
		"ctrl++s",
		"é",
	}
	for _, combo := range bad {
		if _, err := NormalizeCombo(combo); err == nil {
			t.Errorf("NormalizeCombo(%q) succeeded, want error", combo)
		}
	}
}

// TestKnownKey verifies single letters and digits are always known.
func TestKnownKey(t *testing.T) {
	for _, token := range []string{"a", "z", "0", "9", "enter", "shift"} {
		if !KnownKey(token) {
			t.Errorf("KnownKey(%q) = false, want true", token)
		}
	}
	for _, token := range []string{"zz", "", "!", "%"} {
		if KnownKey(token) {
			t.Errorf("KnownKey(%q) = true, want false", token)
		}
	}
}
