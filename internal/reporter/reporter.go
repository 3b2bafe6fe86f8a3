// Package reporter renders scheduler results to the terminal (spec
// §4.10), grounded on the teacher's pkg/hook/formatting.Formatter but
// recolored with lipgloss and restructured around workspace-grouped,
// bracket-prefixed modified-file blocks the teacher (single-project)
// never needed.
package reporter

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/prek-dev/prek/internal/scheduler"
)

const statusColumn = 72

var (
	passedStyle  = lipgloss.NewStyle().Background(lipgloss.Color("2")).Foreground(lipgloss.Color("0"))
	failedStyle  = lipgloss.NewStyle().Background(lipgloss.Color("1")).Foreground(lipgloss.Color("15"))
	skippedStyle = lipgloss.NewStyle().Background(lipgloss.Color("6")).Foreground(lipgloss.Color("0"))
	detailStyle  = lipgloss.NewStyle().Faint(true)
)

// Reporter renders a completed run's results.
type Reporter struct {
	out               io.Writer
	color             bool
	verbose           bool
	showDiffOnFailure bool
}

// New builds a Reporter. colorMode is one of "auto", "always", "never"
// (spec §6); isTTY reports whether stdout is a terminal, used to resolve
// "auto".
func New(out io.Writer, colorMode string, isTTY, verbose, showDiffOnFailure bool) *Reporter {
	color := colorMode == "always" || (colorMode != "never" && isTTY)
	return &Reporter{out: out, color: color, verbose: verbose, showDiffOnFailure: showDiffOnFailure}
}

// Report prints every result, grouped by project (spec §4.10's "Running
// hooks for <project>:" blocks) and, within each project, by priority
// group — with hooks that modified files rendered under a single
// bracketed "Files were modified by following hooks" block. It returns
// whether the run should be considered failed overall (any hook failed
// or any file was modified).
func (r *Reporter) Report(results []scheduler.Result) bool {
	failed := false

	for _, project := range groupByProject(results) {
		if project.name != "" {
			fmt.Fprintf(r.out, "Running hooks for %s:\n", project.name)
		}

		for _, group := range groupByPriority(project.results) {
			var normal, modified []scheduler.Result
			for _, res := range group {
				if res.FilesModified {
					modified = append(modified, res)
				} else {
					normal = append(normal, res)
				}
			}

			for _, res := range normal {
				if !res.Passed {
					failed = true
				}
				r.printOne(res)
			}

			if len(modified) > 0 {
				failed = true
				r.printModifiedGroup(modified)
			}
		}
	}

	return failed
}

type projectResults struct {
	name    string
	results []scheduler.Result
}

func groupByProject(results []scheduler.Result) []projectResults {
	var groups []projectResults
	index := map[string]int{}
	for _, res := range results {
		i, ok := index[res.ProjectName]
		if !ok {
			i = len(groups)
			index[res.ProjectName] = i
			groups = append(groups, projectResults{name: res.ProjectName})
		}
		groups[i].results = append(groups[i].results, res)
	}
	return groups
}

func groupByPriority(results []scheduler.Result) [][]scheduler.Result {
	var groups [][]scheduler.Result
	for _, res := range results {
		if len(groups) == 0 || groups[len(groups)-1][0].Priority != res.Priority {
			groups = append(groups, nil)
		}
		last := len(groups) - 1
		groups[last] = append(groups[last], res)
	}
	return groups
}

func (r *Reporter) printOne(res scheduler.Result) {
	name := res.Name
	if name == "" {
		name = res.HookID
	}

	switch {
	case res.Skipped:
		r.printSkipped(name)
	case res.Passed:
		r.printStatusLine(name, "Passed", passedStyle)
		if r.verbose {
			r.printDetails(res)
		}
	default:
		r.printStatusLine(name, "Failed", failedStyle)
		r.printDetails(res)
	}
}

func (r *Reporter) printStatusLine(name, status string, style lipgloss.Style) {
	dots := dotsFor(name, status)
	if r.color {
		fmt.Fprintf(r.out, "%s%s%s\n", name, dots, style.Render(status))
	} else {
		fmt.Fprintf(r.out, "%s%s%s\n", name, dots, status)
	}
}

func (r *Reporter) printSkipped(name string) {
	suffix := "(no files to check)Skipped"
	dots := dotsFor(name, suffix)
	if r.color {
		fmt.Fprintf(r.out, "%s%s(no files to check)%s\n", name, dots, skippedStyle.Render("Skipped"))
	} else {
		fmt.Fprintf(r.out, "%s%s%s\n", name, dots, suffix)
	}
}

func (r *Reporter) printDetails(res scheduler.Result) {
	r.detailLine("hook id: %s", res.HookID)
	if !res.Passed {
		r.detailLine("exit code: %d", res.ExitCode)
	}
	if r.verbose {
		r.detailLine("duration: %s", formatDuration(res.Duration))
	}
	if res.FilesModified {
		r.detailLine("files were modified by this hook")
	}
	if res.Err != nil {
		r.detailLine("error: %s", res.Err)
	}

	if strings.TrimSpace(res.Output) != "" {
		fmt.Fprintf(r.out, "\n%s\n\n", strings.TrimRight(res.Output, "\n\r\t "))
	}
}

func (r *Reporter) detailLine(format string, args ...any) {
	line := "- " + fmt.Sprintf(format, args...)
	if r.color {
		fmt.Fprintln(r.out, detailStyle.Render(line))
	} else {
		fmt.Fprintln(r.out, line)
	}
}

// printModifiedGroup renders the bracketed tree block (spec §4.10) for
// every hook in a priority group that mutated files.
func (r *Reporter) printModifiedGroup(modified []scheduler.Result) {
	fmt.Fprintln(r.out, "Files were modified by following hooks:")
	for i, res := range modified {
		prefix := "│"
		switch {
		case len(modified) == 1:
			prefix = "└"
		case i == 0:
			prefix = "┌"
		case i == len(modified)-1:
			prefix = "└"
		}
		name := res.Name
		if name == "" {
			name = res.HookID
		}
		fmt.Fprintf(r.out, "%s %s\n", prefix, name)
	}
}

func dotsFor(name, suffix string) string {
	n := statusColumn - len(name) - len(suffix)
	if n < 1 {
		n = 1
	}
	return strings.Repeat(".", n)
}

// formatDuration matches pre-commit's rounding: sub-5ms collapses to
// "0s", sub-1s shows centiseconds, sub-minute shows 1 decimal, else m/s.
func formatDuration(d time.Duration) string {
	seconds := d.Seconds()
	switch {
	case seconds < 0.005:
		return "0s"
	case seconds < 1.0:
		return fmt.Sprintf("%.2fs", seconds)
	case seconds < 60.0:
		return fmt.Sprintf("%.1fs", seconds)
	default:
		minutes := int(seconds) / 60
		remaining := int(seconds) % 60
		return fmt.Sprintf("%dm%ds", minutes, remaining)
	}
}

// ShowDiffOnFailure reports whether --show-diff-on-failure (spec §4.8) was
// set; the reporter itself never talks to git, so any diff text comes
// from the caller.
func (r *Reporter) ShowDiffOnFailure() bool { return r.showDiffOnFailure }
