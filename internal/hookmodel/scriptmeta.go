package hookmodel

import (
	"bufio"
	"os"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// InlineMetadata is the parsed form of a PEP 723-style `# /// script`
// block embedded in an interpreter-aware hook's entry script (spec §4.5
// step 7). Absent or unparseable blocks are not errors. Build does not
// call ReadInlineMetadata, so no block reaches a ResolvedHook.
type InlineMetadata struct {
	Dependencies    []string `toml:"dependencies"`
	RequiresPython  string   `toml:"requires-python"`
}

// ReadInlineMetadata best-effort reads a `# /// script ... # ///` block
// from the top of scriptPath. A missing file, missing block, or
// malformed TOML all return (nil, nil) — never an error, per spec §4.5.
func ReadInlineMetadata(scriptPath string) (*InlineMetadata, error) {
	f, err := os.Open(scriptPath) // #nosec G304 -- path comes from a resolved hook entry, not raw user input
	if err != nil {
		return nil, nil //nolint:nilerr // best-effort: missing script is not an error here
	}
	defer func() { _ = f.Close() }()

	const (
		marker = "# /// script"
		fence  = "# ///"
	)

	scanner := bufio.NewScanner(f)
	var (
		inBlock bool
		body    strings.Builder
	)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case !inBlock && strings.TrimSpace(line) == marker:
			inBlock = true
		case inBlock && strings.TrimSpace(line) == fence:
			var meta InlineMetadata
			if err := toml.Unmarshal([]byte(body.String()), &meta); err != nil {
				return nil, nil //nolint:nilerr // malformed block: best-effort, not fatal
			}
			return &meta, nil
		case inBlock:
			body.WriteString(strings.TrimPrefix(line, "# "))
			body.WriteString("\n")
		}
	}
	return nil, nil
}
