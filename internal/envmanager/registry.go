package envmanager

import "github.com/prek-dev/prek/internal/envmanager/languages"

// Registry resolves a language name to its Plugin, mirroring the
// teacher's LanguageRegistry (pkg/repository/languages/registry.go) but
// built against this package's narrower Plugin interface.
type Registry struct {
	plugins map[string]languages.Plugin
}

// NewRegistry builds the registry over the closed language set from
// spec §3/§4.6.
func NewRegistry() *Registry {
	r := &Registry{plugins: make(map[string]languages.Plugin)}

	register := func(p languages.Plugin) { r.plugins[p.Name()] = p }

	register(languages.NewSystem())
	register(languages.NewScript())
	register(languages.NewFail())
	register(languages.NewPygrep())
	register(languages.NewDockerImage())
	register(languages.NewDocker())
	register(languages.NewPython())
	register(languages.NewNode())
	register(languages.NewGolang())

	for _, name := range []string{
		"ruby", "rust", "lua", "perl", "dart", "r",
		"julia", "haskell", "dotnet", "conda", "coursier", "swift",
	} {
		register(languages.NewGeneric(name))
	}

	return r
}

// Get returns the plugin for language, and whether it is known.
func (r *Registry) Get(language string) (languages.Plugin, bool) {
	p, ok := r.plugins[language]
	return p, ok
}
