// Package jsonutil provides JSON unwrapping utilities for model tool payloads.
//
// Models sometimes emit a tool-call argument payload as a quoted string
// containing JSON, or wrapped in markdown code fences, instead of a plain
// object. This package normalizes those shapes back to a raw object.
package jsonutil

import (
	"encoding/json"
	"fmt"
	"strings"
)

// UnwrapObject normalizes a raw tool-call payload to a JSON object.
// It handles the shapes that show up in practice:
// 1. A plain JSON object - returned as-is
// 2. A JSON string whose content is itself JSON (possibly fenced)
// 3. An empty or whitespace payload - returned as an empty object
//
// Anything else is an error; callers treat that as a malformed payload.
func UnwrapObject(raw json.RawMessage) (json.RawMessage, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return json.RawMessage(`{}`), nil
	}

	if strings.HasPrefix(trimmed, "{") {
		return json.RawMessage(trimmed), nil
	}

	// A quoted string: unquote, strip fences, and expect an object inside.
	if strings.HasPrefix(trimmed, `"`) {
		var inner string
		if err := json.Unmarshal([]byte(trimmed), &inner); err != nil {
			return nil, fmt.Errorf("failed to unquote payload string: %w", err)
		}
		inner = stripMarkdownCodeBlocks(inner)
		if strings.TrimSpace(inner) == "" {
			return json.RawMessage(`{}`), nil
		}
		extracted, err := extractObject(inner)
		if err != nil {
			return nil, err
		}
		return json.RawMessage(extracted), nil
	}

	return nil, fmt.Errorf("payload is neither an object nor an encoded string: %q", preview(trimmed))
}

// extractObject finds and returns the JSON object portion of a string.
// Tries the full string first, then falls back to first '{' / last '}'
// brace matching.
func extractObject(s string) (string, error) {
	var test interface{}
	if err := json.Unmarshal([]byte(s), &test); err == nil {
		if strings.HasPrefix(strings.TrimSpace(s), "{") {
			return strings.TrimSpace(s), nil
		}
	}

	start := strings.Index(s, "{")
	if start != -1 {
		end := strings.LastIndex(s, "}")
		if end != -1 && end > start {
			candidate := s[start : end+1]
			if err := json.Unmarshal([]byte(candidate), &test); err == nil {
				return candidate, nil
			}
		}
	}

	return "", fmt.Errorf("failed to extract valid JSON object from payload: %q", preview(s))
}

// stripMarkdownCodeBlocks removes markdown code block markers.
// Handles patterns like ```json\n...\n``` or ```\n...\n```
func stripMarkdownCodeBlocks(s string) string {
	trimmed := strings.TrimSpace(s)

	if strings.HasPrefix(trimmed, "```json") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimSpace(trimmed)
	} else if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimSpace(trimmed)
	}

	if strings.HasSuffix(trimmed, "```") {
		trimmed = strings.TrimSuffix(trimmed, "```")
		trimmed = strings.TrimSpace(trimmed)
	}

	return trimmed
}

// preview shortens a string for inclusion in error messages.
func preview(s string) string {
	if len(s) > 100 {
		return s[:100] + "..."
	}
	return s
}
