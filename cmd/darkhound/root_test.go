package main

import (
	"bytes"
	"strings"
	"testing"
)

// TestNewRootCmd tests command registration.
func TestNewRootCmd(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()
	if cmd.Use != "darkhound" {
		t.Errorf("got use %q, expected %q", cmd.Use, "darkhound")
	}

	want := map[string]bool{"monitor": false, "dashboard": false, "init": false, "version": false}
	for _, sub := range cmd.Commands() {
		if _, ok := want[sub.Name()]; ok {
			want[sub.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}

	if cmd.PersistentFlags().Lookup("verbose") == nil {
		t.Error("persistent verbose flag not registered")
	}
}

// TestRootCmdHelp tests that help executes cleanly.
func TestRootCmdHelp(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{"--help"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("help failed: %v", err)
	}
	if !strings.Contains(buf.String(), "monitor") {
		t.Error("help output missing monitor subcommand")
	}
}
