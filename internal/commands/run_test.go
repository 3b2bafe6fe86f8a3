package commands

import (
	"strings"
	"testing"
)

func TestRunCommandHelpMentionsFlags(t *testing.T) {
	cmd := &RunCommand{BaseCommand{Name: "run", Description: "Run hooks"}}
	help := cmd.Help()

	if help == "" {
		t.Fatal("help output should not be empty")
	}

	for _, want := range []string{"--all-files", "--files", "--hook-stage", "--verbose", "--show-diff-on-failure"} {
		if !strings.Contains(help, want) {
			t.Errorf("help output should contain %q, got:\n%s", want, help)
		}
	}
}

func TestRunCommandSynopsis(t *testing.T) {
	cmd := &RunCommand{}
	if got := cmd.Synopsis(); got != "Run hooks" {
		t.Errorf("Synopsis() = %q, want %q", got, "Run hooks")
	}
}

func TestNotImplementedCommandReportsName(t *testing.T) {
	factory := NotImplementedCommandFactory("gc")
	cmd, err := factory()
	if err != nil {
		t.Fatalf("factory() error = %v", err)
	}

	if !strings.Contains(cmd.Help(), "gc") {
		t.Errorf("Help() should mention the command name, got %q", cmd.Help())
	}
	if code := cmd.Run(nil); code != 1 {
		t.Errorf("Run() = %d, want 1", code)
	}
}
