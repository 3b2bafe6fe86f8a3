package languages

import (
	"context"
	"errors"
)

// Fail is the always-fail hook language used for bespoke "forbidden
// pattern" checks, grounded on the teacher's FailLanguage
// (pkg/repository/languages/fail.go).
type Fail struct{ base }

func NewFail() *Fail { return &Fail{base{name: "fail"}} }

func (f *Fail) NeedsEnvironment() bool { return false }

func (f *Fail) Install(_ context.Context, req InstallRequest) error {
	return mkdirEnv(req.EnvPath)
}

// ResolveCommand ignores entry/args: a fail hook's "command" is to print
// its configured message (the hook's entry) and exit non-zero for every
// matched file, handled by the scheduler rather than exec'd.
func (f *Fail) ResolveCommand(_, entry string, _ []string) ([]string, []string, error) {
	if entry == "" {
		return nil, nil, errors.New("fail hook missing entry message")
	}
	return []string{"__prek_fail__", entry}, nil, nil
}
