package languages

import "context"

// System runs hooks directly off PATH with no environment at all,
// grounded on the teacher's SystemLanguage (pkg/repository/languages/system.go).
type System struct{ base }

func NewSystem() *System { return &System{base{name: "system"}} }

func (s *System) NeedsEnvironment() bool { return false }

func (s *System) Install(_ context.Context, req InstallRequest) error {
	return mkdirEnv(req.EnvPath)
}

func (s *System) ResolveCommand(_, entry string, args []string) ([]string, []string, error) {
	return resolveOnPath(entry, args)
}
