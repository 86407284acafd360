package main

import (
	"testing"
)

func TestVersionDefaults(t *testing.T) {
	if Version == "" {
		t.Error("Version must not be empty")
	}
	if GitCommit == "" || BuildDate == "" {
		t.Error("build metadata defaults must not be empty")
	}
}

func TestCommandsRegistered(t *testing.T) {
	want := map[string]bool{
		"watch":    false,
		"prices":   false,
		"validate": false,
		"version":  false,
	}
	for _, cmd := range rootCmd.Commands() {
		if _, ok := want[cmd.Name()]; ok {
			want[cmd.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("command %q not registered", name)
		}
	}
}
