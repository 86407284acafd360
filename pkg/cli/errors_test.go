package cli

import (
	"errors"
	"strings"
	"testing"
)

func TestConfigError(t *testing.T) {
	err := NewConfigError("limit", "must be positive")
	if !strings.Contains(err.Error(), "limit") || !strings.Contains(err.Error(), "must be positive") {
		t.Errorf("unexpected message: %q", err.Error())
	}

	bare := NewConfigError("", "file unreadable")
	if strings.Contains(bare.Error(), "in :") {
		t.Errorf("fieldless message malformed: %q", bare.Error())
	}
}

func TestCommandErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := NewCommandError("watch", cause)

	if !errors.Is(err, cause) {
		t.Error("CommandError does not unwrap to its cause")
	}
	if !strings.Contains(err.Error(), "watch") {
		t.Errorf("message missing command name: %q", err.Error())
	}
}
