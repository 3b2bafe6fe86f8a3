// Package main is prek's command-line entry point.
package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/mitchellh/cli"

	"github.com/prek-dev/prek/internal/commands"
)

var version = "dev"

// outOfScope lists the upstream pre-commit subcommands spec.md's
// Non-goals exclude from this build (see DESIGN.md "Teacher code
// deleted"): registered so `prek <name>` gives an honest, specific
// message instead of "unknown command".
var outOfScope = []string{
	"try-repo", "autoupdate", "sample-config", "validate-config",
	"validate-manifest", "init-templatedir", "install", "uninstall",
	"doctor", "gc", "clean", "migrate-config",
}

func main() {
	c := cli.NewCLI("prek", version)
	c.Args = os.Args[1:]
	c.HelpFunc = customHelpFunc

	c.Commands = map[string]cli.CommandFactory{
		"run": commands.RunCommandFactory,
	}
	for _, name := range outOfScope {
		c.Commands[name] = commands.NotImplementedCommandFactory(name)
	}

	exitStatus, err := c.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(exitStatus)
}

func customHelpFunc(cmdFactories map[string]cli.CommandFactory) string {
	var names []string
	for name := range cmdFactories {
		names = append(names, name)
	}
	sort.Strings(names)

	usage := "usage: prek [-h] [--version]\n              {" + strings.Join(names, ",") + "}\n              ...\n"
	return usage + `
A multi-project hook runner.

positional arguments:
  {` + strings.Join(names, ",") + `}
    run                 Run hooks

optional arguments:
  -h, --help            show this help message and exit
  --version             show program's version number and exit
`
}
