package jsonutil

import (
	"encoding/json"
	"testing"
)

// TestUnwrapObjectPlain verifies plain objects pass through untouched.
func TestUnwrapObjectPlain(t *testing.T) {
	got, err := UnwrapObject(json.RawMessage(`{"label": "ok"}`))
	if err != nil {
		t.Fatalf("UnwrapObject failed: %v", err)
	}
	if string(got) != `{"label": "ok"}` {
		t.Errorf("got %s, want passthrough", got)
	}
}

// TestUnwrapObjectEmpty verifies empty and null payloads decode to an
// empty object.
func TestUnwrapObjectEmpty(t *testing.T) {
	for _, raw := range []string{"", "  ", "null"} {
		got, err := UnwrapObject(json.RawMessage(raw))
		if err != nil {
			t.Fatalf("UnwrapObject(%q) failed: %v", raw, err)
		}
		if string(got) != "{}" {
			t.Errorf("UnwrapObject(%q) = %s, want {}", raw, got)
		}
	}
}

// TestUnwrapObjectEncodedString verifies a quoted string containing JSON
// is unwrapped.
func TestUnwrapObjectEncodedString(t *testing.T) {
	raw := json.RawMessage(`"{\"key\": \"ctrl+s\"}"`)
	got, err := UnwrapObject(raw)
	if err != nil {
		t.Fatalf("UnwrapObject failed: %v", err)
	}
	var fields map[string]string
	if err := json.Unmarshal(got, &fields); err != nil {
		t.Fatalf("unwrapped payload is not an object: %v", err)
	}
	if fields["key"] != "ctrl+s" {
		t.Errorf("key = %q, want ctrl+s", fields["key"])
	}
}

// TestUnwrapObjectFencedString verifies markdown fences inside an
// encoded string are stripped.
func TestUnwrapObjectFencedString(t *testing.T) {
	raw, err := json.Marshal("```json\n{\"text\": \"hi\"}\n```")
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := UnwrapObject(raw)
	if err != nil {
		t.Fatalf("UnwrapObject failed: %v", err)
	}
	var fields map[string]string
	if err := json.Unmarshal(got, &fields); err != nil {
		t.Fatalf("unwrapped payload is not an object: %v", err)
	}
	if fields["text"] != "hi" {
		t.Errorf("text = %q, want hi", fields["text"])
	}
}

// TestUnwrapObjectChatterAroundObject verifies brace matching recovers
// an object surrounded by prose inside an encoded string.
func TestUnwrapObjectChatterAroundObject(t *testing.T) {
	raw, err := json.Marshal(`Here is the call: {"amount": 3} hope that helps`)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := UnwrapObject(raw)
	if err != nil {
		t.Fatalf("UnwrapObject failed: %v", err)
	}
	if string(got) != `{"amount": 3}` {
		t.Errorf("got %s, want the embedded object", got)
	}
}

// TestUnwrapObjectRejectsOtherShapes verifies arrays and bare numbers
// are malformed payloads.
func TestUnwrapObjectRejectsOtherShapes(t *testing.T) {
	for _, raw := range []string{`[1, 2]`, `42`, `true`} {
		if _, err := UnwrapObject(json.RawMessage(raw)); err == nil {
			t.Errorf("UnwrapObject(%s) succeeded, want error", raw)
		}
	}

	// An encoded string with no object inside is also malformed.
	if _, err := UnwrapObject(json.RawMessage(`"no json here"`)); err == nil {
		t.Error("UnwrapObject(non-JSON string) succeeded, want error")
	}
}
