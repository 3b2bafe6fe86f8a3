// Package commands wires the CLI surface (spec §6) onto internal/app's
// orchestration, grounded on the teacher's internal/commands package: one
// cli.Command implementation per subcommand, flags parsed with
// github.com/jessevdk/go-flags, shared option fields factored into
// CommonOptions the way the teacher's BaseCommand does.
package commands

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/jessevdk/go-flags"
)

// BaseCommand carries the name/description used by generated help text.
type BaseCommand struct {
	Name        string
	Description string
}

// CommonOptions are the flags every subcommand accepts (spec §6).
type CommonOptions struct {
	Config  string `long:"config"  short:"C" description:"Path to a specific config file (accepted, but run always uses workspace discovery)"`
	Verbose bool   `long:"verbose" short:"v" description:"Enable verbose logging"`
	Help    bool   `long:"help"    short:"h" description:"Show this help message"`
}

// ParseArgsWithHelp parses args into opts, returning the unconsumed
// positional arguments. A requested --help prints usage and returns nil,
// nil so the caller can exit 0 without treating it as an error.
func (bc *BaseCommand) ParseArgsWithHelp(opts any, args []string) ([]string, error) {
	parser := flags.NewParser(opts, flags.Default)
	parser.Name = "prek " + bc.Name
	if bc.Description != "" {
		parser.LongDescription = bc.Description
	}

	remaining, err := parser.ParseArgs(args)
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return nil, nil
		}
		return nil, fmt.Errorf("error parsing arguments: %w", err)
	}
	return remaining, nil
}

// helpText renders a subcommand's usage via go-flags' own formatter,
// prefixed with the positional-argument usage line.
func helpText(bc *BaseCommand, opts any, usageSuffix string) string {
	parser := flags.NewParser(opts, flags.Default)
	parser.Name = "prek " + bc.Name
	if bc.Description != "" {
		parser.LongDescription = bc.Description
	}
	parser.Usage = usageSuffix

	var buf bytes.Buffer
	parser.WriteHelp(&buf)
	return buf.String()
}
