package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/mitchellh/cli"

	"github.com/prek-dev/prek/internal/app"
	"github.com/prek-dev/prek/internal/errs"
	"github.com/prek-dev/prek/internal/reporter"
)

// RunCommand implements `prek run` (spec §6).
type RunCommand struct{ BaseCommand }

// RunOptions is the run subcommand's flag set.
type RunOptions struct {
	CommonOptions

	Skip     []string `long:"skip"                description:"Hook id or path selector to skip; repeatable"`
	AllFiles bool      `long:"all-files"           description:"Run on all files in the repository"       short:"a"`
	Files    []string  `long:"files"               description:"Specific filenames to run hooks on"`
	Directory []string `long:"directory"           description:"Run only on files under this directory; repeatable" short:"d"`

	FromRef    string `long:"from-ref"    description:"Run against files changed between from-ref and to-ref"`
	ToRef      string `long:"to-ref"      description:"Run against files changed between from-ref and to-ref"`
	LastCommit bool   `long:"last-commit" description:"Run against files changed in the last commit"`

	HookStage string `long:"hook-stage" description:"Hook stage to run" default:"pre-commit"`

	CommitMsgFilename string `long:"commit-msg-filename" description:"Filename to check when running during commit-msg"`
	RemoteName        string `long:"remote-name"         description:"Remote name used by git push"`
	RemoteURL         string `long:"remote-url"          description:"Remote url used by git push"`

	Jobs              int    `long:"jobs"                 description:"Number of hooks to run in parallel (0 = NumCPU)" short:"j"`
	FailFast          bool   `long:"fail-fast"             description:"Stop running further hook groups after the first failure"`
	ShowDiffOnFailure bool   `long:"show-diff-on-failure" description:"Print the working-tree diff when a hook fails or modifies files"`
	DryRun            bool   `long:"dry-run"              description:"List the hooks that would run without executing them"`
	Refresh           bool   `long:"refresh"              description:"Bypass the workspace-discovery cache"`
	Color             string `long:"color"                description:"Whether to use color in output" choice:"auto" choice:"always" choice:"never" default:"auto"`
}

func RunCommandFactory() (cli.Command, error) {
	return &RunCommand{BaseCommand{Name: "run", Description: "Run hooks"}}, nil
}

func (c *RunCommand) Synopsis() string { return "Run hooks" }

func (c *RunCommand) Help() string {
	var opts RunOptions
	return helpText(&c.BaseCommand, &opts, "[selector ...]")
}

func (c *RunCommand) Run(args []string) int {
	var opts RunOptions
	remaining, err := c.ParseArgsWithHelp(&opts, args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return errs.ExitUsageError
	}
	if remaining == nil && opts.Help {
		return errs.ExitSuccess
	}

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return errs.ExitUsageError
	}

	ctx, err := app.New(cwd, opts.Verbose, opts.Refresh)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return errs.ExitCode(err)
	}

	runOpts := app.RunOptions{
		Selectors:         remaining,
		Skip:              opts.Skip,
		PrekSkip:          os.Getenv("PREK_SKIP"),
		SkipEnv:           os.Getenv("SKIP"),
		AllFiles:          opts.AllFiles,
		Files:             opts.Files,
		Directories:       opts.Directory,
		FromRef:           opts.FromRef,
		ToRef:             opts.ToRef,
		LastCommit:        opts.LastCommit,
		HookStage:         opts.HookStage,
		CommitMsgFile:     opts.CommitMsgFilename,
		PrePushRemoteName: opts.RemoteName,
		PrePushRemoteURL:  opts.RemoteURL,
		Jobs:              opts.Jobs,
		FailFast:          opts.FailFast,
		ShowDiffOnFailure: opts.ShowDiffOnFailure,
		DryRun:            opts.DryRun,
	}

	result, err := app.Run(context.Background(), ctx, runOpts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return errs.ExitCode(err)
	}

	for _, w := range result.Warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
	}

	rep := reporter.New(os.Stdout, opts.Color, isatty.IsTerminal(os.Stdout.Fd()), opts.Verbose, opts.ShowDiffOnFailure)
	failed := rep.Report(result.Results)

	if result.Diff != "" {
		fmt.Println(result.Diff)
	}

	if failed {
		return errs.ExitHooksFailed
	}
	return errs.ExitSuccess
}
