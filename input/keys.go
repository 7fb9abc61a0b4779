// Key-name table and combo normalization.
//
// Model-emitted key tokens are friendly names; the table maps them to
// X keysyms. Every +-delimited token of a combo must resolve here or
// the whole combo is rejected with a descriptive error.

package input

import (
	"fmt"
	"strings"
)

// keyTable maps lowercase friendly tokens to X keysym names.
var keyTable = map[string]string{
	// modifiers
	"ctrl":    "ctrl",
	"control": "ctrl",
	"shift":   "shift",
	"alt":     "alt",
	"super":   "super",
	"win":     "super",
	"cmd":     "super",
	"meta":    "super",

	// named keys
	"enter":       "Return",
	"return":      "Return",
	"esc":         "Escape",
	"escape":      "Escape",
	"tab":         "Tab",
	"space":       "space",
	"backspace":   "BackSpace",
	"delete":      "Delete",
	"del":         "Delete",
	"insert":      "Insert",
	"home":        "Home",
	"end":         "End",
	"pageup":      "Prior",
	"page_up":     "Prior",
	"pagedown":    "Next",
	"page_down":   "Next",
	"up":          "Up",
	"down":        "Down",
	"left":        "Left",
	"right":       "Right",
	"printscreen": "Print",
	"capslock":    "Caps_Lock",
	"numlock":     "Num_Lock",

	// punctuation that needs a keysym name
	"minus":      "minus",
	"plus":       "plus",
	"equal":      "equal",
	"comma":      "comma",
	"period":     "period",
	"dot":        "period",
	"slash":      "slash",
	"backslash":  "backslash",
	"semicolon":  "semicolon",
	"apostrophe": "apostrophe",
	"quote":      "apostrophe",
	"grave":      "grave",
	"backtick":   "grave",

	// function keys
	"f1": "F1", "f2": "F2", "f3": "F3", "f4": "F4",
	"f5": "F5", "f6": "F6", "f7": "F7", "f8": "F8",
	"f9": "F9", "f10": "F10", "f11": "F11", "f12": "F12",
}

// KnownKey reports whether a single token resolves in the key table.
// Single letters and digits are always known.
func KnownKey(token string) bool {
	_, err := resolveKey(token)
	return err == nil
}

// resolveKey maps one friendly token to its keysym.
func resolveKey(token string) (string, error) {
	t := strings.ToLower(strings.TrimSpace(token))
	if t == "" {
		return "", fmt.Errorf("empty key token")
	}
	if sym, ok := keyTable[t]; ok {
		return sym, nil
	}
	if len(t) == 1 {
		c := t[0]
		if c >= 'a' && c <= 'z' || c >= '0' && c <= '9' {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown key token %q", token)
}

// NormalizeCombo validates a +-delimited key combination and returns the
// keysym form xdotool expects, e.g. "ctrl+shift+t". Any unresolved token
// fails the whole combo.
func NormalizeCombo(combo string) (string, error) {
	tokens := strings.Split(combo, "+")
	if len(tokens) == 0 || strings.TrimSpace(combo) == "" {
		return "", fmt.Errorf("empty key combination")
	}

	resolved := make([]string, 0, len(tokens))
	for _, token := range tokens {
		sym, err := resolveKey(token)
		if err != nil {
			return "", fmt.Errorf("key combination %q: %w", combo, err)
		}
		resolved = append(resolved, sym)
	}
	return strings.Join(resolved, "+"), nil
}
