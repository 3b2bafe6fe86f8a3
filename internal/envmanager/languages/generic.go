package languages

import (
	"context"
	"fmt"
	"os/exec"
)

// executables maps the closed-set languages this plugin covers to the
// runtime executable prek probes for, grounded on each language's own
// file in the teacher's pkg/repository/languages/ (ruby.go, rust.go,
// lua.go, perl.go, dart.go, r.go, julia.go, haskell.go, dotnet.go,
// conda.go, coursier.go, swift.go) which all follow the same
// "find system toolchain, create a directory, warn on unsupported
// features" shape as GenericLanguage.
var executables = map[string]string{
	"ruby":     "ruby",
	"rust":     "cargo",
	"lua":      "lua",
	"perl":     "perl",
	"dart":     "dart",
	"r":        "Rscript",
	"julia":    "julia",
	"haskell":  "ghc",
	"dotnet":   "dotnet",
	"conda":    "conda",
	"coursier": "cs",
	"swift":    "swift",
}

// depCapable is the subset of languages from spec §3's
// additional_dependencies closed set this generic plugin covers.
var depCapable = map[string]bool{
	"ruby": true, "rust": true, "lua": true, "perl": true, "dart": true,
	"r": true, "julia": true, "haskell": true, "dotnet": true, "conda": true,
	"coursier": true,
}

// versionCapable is the subset with an installable, versioned toolchain.
var versionCapable = map[string]bool{
	"ruby": true, "rust": true, "dotnet": true, "conda": true,
}

// Generic covers the remaining closed-set languages with the system
// toolchain only: resolve the executable, create an empty environment
// directory, run entry directly off PATH. A dedicated toolchain
// installer/package manager per language (gem, cargo install, luarocks,
// cpan, dart pub, renv, julia Pkg, cabal, dotnet tool, conda install,
// coursier fetch) is future work the generic path intentionally defers.
type Generic struct{ base }

func NewGeneric(name string) *Generic {
	return &Generic{base{name: name, executable: executables[name]}}
}

func (g *Generic) NeedsEnvironment() bool     { return true }
func (g *Generic) SupportsDependencies() bool { return depCapable[g.name] }
func (g *Generic) SupportsVersion() bool      { return versionCapable[g.name] }

func (g *Generic) Install(_ context.Context, req InstallRequest) error {
	if err := mkdirEnv(req.EnvPath); err != nil {
		return err
	}
	if _, err := exec.LookPath(g.executable); err != nil {
		return fmt.Errorf("%s runtime not found in PATH, cannot set up %s hook environment: %w", g.executable, g.name, err)
	}
	if len(req.AdditionalDeps) > 0 {
		return fmt.Errorf("%s: additional_dependencies not yet supported by this build (requested: %v)", g.name, req.AdditionalDeps)
	}
	return nil
}

func (g *Generic) ResolveCommand(_, entry string, args []string) ([]string, []string, error) {
	return resolveOnPath(entry, args)
}
