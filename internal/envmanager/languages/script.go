package languages

import "context"

// Script runs a checked-in script via the shell, grounded on the
// teacher's ScriptLanguage (pkg/repository/languages/script.go).
type Script struct{ base }

func NewScript() *Script { return &Script{base{name: "script"}} }

func (s *Script) NeedsEnvironment() bool { return false }

func (s *Script) Install(_ context.Context, req InstallRequest) error {
	return mkdirEnv(req.EnvPath)
}

func (s *Script) ResolveCommand(_, entry string, args []string) ([]string, []string, error) {
	return resolveOnPath(entry, args)
}
