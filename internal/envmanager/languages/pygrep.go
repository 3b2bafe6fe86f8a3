package languages

import "context"

// Pygrep hooks need no environment or toolchain; grounded on the
// teacher's PygrepLanguage (pkg/repository/languages/pygrep.go).
// ResolveCommand passes entry and args through unchanged, so the entry is
// run as a command found on PATH, like a system hook; this package does
// no regex matching itself.
type Pygrep struct{ base }

func NewPygrep() *Pygrep { return &Pygrep{base{name: "pygrep"}} }

func (p *Pygrep) NeedsEnvironment() bool { return false }

func (p *Pygrep) Install(_ context.Context, req InstallRequest) error {
	return mkdirEnv(req.EnvPath)
}

func (p *Pygrep) ResolveCommand(_, entry string, args []string) ([]string, []string, error) {
	return resolveOnPath(entry, args)
}
