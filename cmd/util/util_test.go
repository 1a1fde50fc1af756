package util

import (
	"strings"
	"testing"
)

func TestWrapString(t *testing.T) {
	text := "Path of the Unix domain control socket (must be shorter than 104 bytes)"
	wrapped := WrapString(text)

	for _, line := range strings.Split(wrapped, "\n") {
		if len(line) > Wrap {
			t.Errorf("Line %q is longer than %d characters", line, Wrap)
		}
	}
	if strings.Join(strings.Fields(wrapped), " ") != text {
		t.Errorf("Wrapping changed the words: %q", wrapped)
	}
}

func TestWrapStringEmpty(t *testing.T) {
	if got := WrapString("   "); got != "" {
		t.Errorf("Expected an empty string, got %q", got)
	}
}
