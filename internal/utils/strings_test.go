package utils

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestEscapeJSONString(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain text unchanged",
			input: "hello world",
			want:  "hello world",
		},
		{
			name:  "embedded quotes escaped",
			input: `He said "hi"`,
			want:  `He said \"hi\"`,
		},
		{
			name:  "no surrounding quotes added",
			input: "bare",
			want:  "bare",
		},
		{
			name:  "newlines and tabs encoded",
			input: "line1\nline2\tend",
			want:  `line1\nline2\tend`,
		},
		{
			name:  "backslashes escaped",
			input: `path\to\file`,
			want:  `path\\to\\file`,
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EscapeJSONString(tt.input)
			if got != tt.want {
				t.Errorf("EscapeJSONString(%q) = %q, want %q", tt.input, got, tt.want)
			}

			// The escaped form must survive embedding in a JSON string literal.
			var roundTripped string
			if err := json.Unmarshal([]byte(`"`+got+`"`), &roundTripped); err != nil {
				t.Fatalf("escaped form is not embeddable: %v", err)
			}
			if roundTripped != tt.input {
				t.Errorf("embedding round trip = %q, want %q", roundTripped, tt.input)
			}
		})
	}
}

func TestTruncateString(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{
			name:   "short string unchanged",
			input:  "short",
			maxLen: 10,
			want:   "short",
		},
		{
			name:   "long string truncated with suffix",
			input:  strings.Repeat("a", 20),
			maxLen: 5,
			want:   "aaaaa... (truncated, total: 20 chars)",
		},
		{
			name:   "zero maxLen falls back to default",
			input:  "short",
			maxLen: 0,
			want:   "short",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateString(tt.input, tt.maxLen); got != tt.want {
				t.Errorf("TruncateString() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestJSONToString(t *testing.T) {
	object := map[string]any{"a": 1}

	compact := JSONToString(object)
	if compact != `{"a":1}` {
		t.Errorf("JSONToString() = %q, want %q", compact, `{"a":1}`)
	}

	indented := JSONToString(object, true)
	if !strings.Contains(indented, "\n") {
		t.Errorf("JSONToString(indent) = %q, want indented output", indented)
	}

	// Unmarshalable values must produce a JSON error string, not a panic.
	errOut := JSONToString(make(chan int))
	if !strings.Contains(errOut, "error") {
		t.Errorf("JSONToString(chan) = %q, want error payload", errOut)
	}
}
