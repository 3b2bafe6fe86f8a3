package commands

import (
	"fmt"

	"github.com/mitchellh/cli"
)

// notImplementedCommand reports that a subcommand is registered in the
// CLI's command table but intentionally not built in this module (spec
// §1 Non-goals; see DESIGN.md "Teacher code deleted").
type notImplementedCommand struct{ name string }

func (c *notImplementedCommand) Help() string {
	return fmt.Sprintf("`%s` is not implemented in this build.", c.name)
}

func (c *notImplementedCommand) Synopsis() string {
	return "not implemented in this build"
}

func (c *notImplementedCommand) Run([]string) int {
	fmt.Printf("prek %s: not implemented in this build\n", c.name)
	return 1
}

// NotImplementedCommandFactory builds the stub registered for every
// out-of-scope subcommand name.
func NotImplementedCommandFactory(name string) cli.CommandFactory {
	return func() (cli.Command, error) {
		return &notImplementedCommand{name: name}, nil
	}
}
