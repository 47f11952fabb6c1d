package cli

import (
	"errors"
	"strings"
	"testing"
)

func TestCommandError(t *testing.T) {
	cause := errors.New("definition file not found")
	err := NewCommandError("lint", cause)

	if !strings.Contains(err.Error(), "lint") {
		t.Errorf("command missing from message: %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("expected CommandError to unwrap to its cause")
	}
}
