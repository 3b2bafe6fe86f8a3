// Package fileselect computes the run-wide file set and filters it down
// to each hook's file set (spec §4.7).
package fileselect

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// extensionTags maps a lowercased extension to the type tags pre-commit
// hooks filter on, grounded on the teacher's initializeTypeMatchers
// (pkg/hook/matching/types.go), condensed from per-type matcher funcs
// into a table since prek's tag set is a plain string set rather than a
// matcher-function registry.
var extensionTags = map[string][]string{
	".py": {"python"}, ".pyi": {"python"}, ".pyx": {"python"},
	".js": {"javascript"}, ".jsx": {"javascript", "react"}, ".mjs": {"javascript"},
	".ts": {"typescript"}, ".tsx": {"typescript", "react"},
	".go":     {"go"},
	".java":   {"java"},
	".c":      {"c"}, ".h": {"c"},
	".cpp": {"c++"}, ".cxx": {"c++"}, ".cc": {"c++"}, ".hpp": {"c++"}, ".hxx": {"c++"}, ".hh": {"c++"},
	".rs":    {"rust"},
	".rb":    {"ruby"}, ".rbw": {"ruby"},
	".php":   {"php"}, ".phtml": {"php"},
	".swift": {"swift"},
	".kt":    {"kotlin"}, ".kts": {"kotlin"},
	".scala": {"scala"}, ".sc": {"scala"},
	".cs":    {"c#"},
	".pl":    {"perl"}, ".pm": {"perl"},
	".lua":   {"lua"},
	".r":     {"r"}, ".R": {"r"},
	".hs":    {"haskell"}, ".lhs": {"haskell"},
	".clj":   {"clojure"}, ".cljs": {"clojure"}, ".cljc": {"clojure"},
	".erl":   {"erlang"}, ".hrl": {"erlang"},
	".ex":    {"elixir"}, ".exs": {"elixir"},
	".dart":  {"dart"},
	".jl":    {"julia"},
	".html":  {"html"}, ".htm": {"html"}, ".xhtml": {"html"},
	".css":   {"css"}, ".scss": {"css"}, ".sass": {"css"}, ".less": {"css"},
	".xml":   {"xml"}, ".xsd": {"xml"}, ".xsl": {"xml"},
	".yaml":  {"yaml"}, ".yml": {"yaml"},
	".json":  {"json"}, ".jsonc": {"json"},
	".md":    {"markdown", "text"}, ".markdown": {"markdown", "text"}, ".mdown": {"markdown", "text"}, ".mkd": {"markdown", "text"},
	".sql":   {"sql"},
	".sh":    {"shell"}, ".bash": {"shell"}, ".zsh": {"shell"}, ".fish": {"shell"},
	".ps1":   {"powershell"}, ".psm1": {"powershell"}, ".psd1": {"powershell"},
	".vue":   {"vue"},
	".svelte": {"svelte"},
	".toml":  {"toml"},
	".txt":   {"text"}, ".rst": {"text"}, ".log": {"text"}, ".cfg": {"text"}, ".conf": {"text"},
	".ini":   {"text"}, ".properties": {"text"},
}

// basenameTags matches a bare filename regardless of extension, as the
// teacher's hasExtOrFileName does for Dockerfile/Makefile.
var basenameTags = map[string][]string{
	"Dockerfile": {"dockerfile"}, "dockerfile": {"dockerfile"},
	"Makefile": {"makefile"}, "makefile": {"makefile"}, "GNUmakefile": {"makefile"},
}

// textProgrammingTags is the set of language tags that also imply "text"
// (spec: mime class {text, binary}), mirroring the teacher's isTextFile.
var textProgrammingTags = map[string]bool{
	"python": true, "javascript": true, "typescript": true, "go": true, "java": true,
	"c": true, "c++": true, "rust": true, "ruby": true, "php": true, "swift": true,
	"kotlin": true, "scala": true, "c#": true, "html": true, "css": true, "xml": true,
	"yaml": true, "json": true, "markdown": true, "sql": true, "shell": true, "toml": true,
}

// Tags is a file's lazily-computed tag set (spec §3 "File entry").
type Tags map[string]bool

func (t Tags) Has(tag string) bool { return t[tag] }

func (t Tags) HasAll(tags []string) bool {
	for _, tag := range tags {
		if !t[tag] {
			return false
		}
	}
	return true
}

func (t Tags) HasAny(tags []string) bool {
	for _, tag := range tags {
		if t[tag] {
			return true
		}
	}
	return false
}

// Compute builds the tag set for absPath, reading its mode and, for
// regular files, its first line (for a shebang) and leading bytes (for the
// text/binary decision) off disk. A path that no longer exists on disk
// (deleted between selection and filtering) still gets "file" and its
// extension/basename tags; executable/symlink/directory/shebang and
// text/binary tags all require a successful stat.
func Compute(absPath string) Tags {
	tags := Tags{"file": true}

	ext := strings.ToLower(filepath.Ext(absPath))
	base := filepath.Base(absPath)

	for _, tag := range extensionTags[ext] {
		tags[tag] = true
	}
	for _, tag := range basenameTags[base] {
		tags[tag] = true
	}

	info, err := os.Lstat(absPath)
	if err != nil {
		return tags
	}

	if info.Mode()&os.ModeSymlink != 0 {
		tags["symlink"] = true
		return tags
	}
	if info.IsDir() {
		tags["directory"] = true
		delete(tags, "file")
		return tags
	}
	if info.Mode()&0o111 != 0 {
		tags["executable"] = true
	}

	if interp, ok := shebangInterpreter(absPath); ok {
		tags[interp] = true
	}

	if hasAnyTag(tags, textProgrammingTags) || tags["markdown"] {
		tags["text"] = true
	} else if looksBinary(absPath) {
		tags["binary"] = true
	} else {
		tags["text"] = true
	}

	return tags
}

func hasAnyTag(tags Tags, set map[string]bool) bool {
	for tag := range tags {
		if set[tag] {
			return true
		}
	}
	return false
}

// shebangInterpreter parses the first line of a script for a `#!`
// interpreter directive, returning its basename (e.g. "python3", "bash")
// as an additional tag (spec §3 "interpreter class from shebang"). It is
// used only for file tagging; hook command resolution does not read
// shebangs.
func shebangInterpreter(path string) (string, bool) {
	f, err := os.Open(path) // #nosec G304 -- path comes from git's tracked file list
	if err != nil {
		return "", false
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 4096), 4096)
	if !scanner.Scan() {
		return "", false
	}
	line := scanner.Text()
	if !strings.HasPrefix(line, "#!") {
		return "", false
	}
	fields := strings.Fields(strings.TrimPrefix(line, "#!"))
	if len(fields) == 0 {
		return "", false
	}
	interp := filepath.Base(fields[0])
	// `#!/usr/bin/env python3` style: the real interpreter is the arg.
	if interp == "env" && len(fields) > 1 {
		interp = filepath.Base(fields[1])
	}
	return interp, interp != ""
}

// looksBinary does a cheap heuristic scan for a NUL byte in the first
// chunk of the file, the same signal git itself uses to decide whether
// a file is text.
func looksBinary(path string) bool {
	f, err := os.Open(path) // #nosec G304 -- path comes from git's tracked file list
	if err != nil {
		return false
	}
	defer func() { _ = f.Close() }()

	buf := make([]byte, 8000)
	n, _ := f.Read(buf)
	for _, b := range buf[:n] {
		if b == 0 {
			return true
		}
	}
	return false
}
