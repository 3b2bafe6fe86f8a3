package selector

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseBareHookID(t *testing.T) {
	s, err := Parse("lint")
	require.NoError(t, err)
	require.False(t, s.HasPath)
	require.Equal(t, "lint", s.HookID)
}

func TestParsePathTrailingSlash(t *testing.T) {
	s, err := Parse("services/api/")
	require.NoError(t, err)
	require.True(t, s.HasPath)
	require.True(t, s.Recursive)
	require.Equal(t, "services/api", s.Path)
	require.Empty(t, s.HookID)
}

func TestParsePathHook(t *testing.T) {
	s, err := Parse("services/api:lint")
	require.NoError(t, err)
	require.True(t, s.HasPath)
	require.False(t, s.Recursive)
	require.Equal(t, "services/api", s.Path)
	require.Equal(t, "lint", s.HookID)
}

func TestParseDotIsRootOnlyNonRecursive(t *testing.T) {
	s, err := Parse(".")
	require.NoError(t, err)
	require.True(t, s.HasPath)
	require.False(t, s.Recursive)
	require.Equal(t, ".", s.Path)
}

func TestParseDotSlashRecurses(t *testing.T) {
	s, err := Parse("./")
	require.NoError(t, err)
	require.True(t, s.HasPath)
	require.True(t, s.Recursive)
}

func TestParseDotHook(t *testing.T) {
	s, err := Parse(".:lint")
	require.NoError(t, err)
	require.True(t, s.HasPath)
	require.Equal(t, ".", s.Path)
	require.Equal(t, "lint", s.HookID)
}

func TestParseEmptyHookIDAfterColonErrors(t *testing.T) {
	_, err := Parse("services/api:")
	require.Error(t, err)
}

func TestResolveNormalizesAgainstWorkspaceRoot(t *testing.T) {
	sels, err := Resolve("/ws", "/ws/services/api", []string{"../billing/"})
	require.NoError(t, err)
	require.Equal(t, "services/billing", sels[0].Path)
}

func TestResolveEscapingWorkspaceRootErrors(t *testing.T) {
	_, err := Resolve("/ws/services/api", "/ws/services/api", []string{"../../foo/"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "outside the workspace root")
}

func TestMatchBareHookIDAcrossProjects(t *testing.T) {
	sel, err := Parse("lint")
	require.NoError(t, err)
	require.True(t, sel.Matches(Target{ProjectRelPath: "services/api", HookID: "lint"}))
	require.True(t, sel.Matches(Target{ProjectRelPath: "", HookID: "lint"}))
	require.False(t, sel.Matches(Target{ProjectRelPath: "", HookID: "fmt"}))
}

func TestMatchRecursivePathIncludesDescendants(t *testing.T) {
	sel, err := Parse("services/")
	require.NoError(t, err)
	require.True(t, sel.Matches(Target{ProjectRelPath: "services", HookID: "lint"}))
	require.True(t, sel.Matches(Target{ProjectRelPath: "services/api", HookID: "lint"}))
	require.False(t, sel.Matches(Target{ProjectRelPath: "other", HookID: "lint"}))
}

func TestMatchDotSlashMatchesEveryProject(t *testing.T) {
	sel, err := Parse("./")
	require.NoError(t, err)
	require.True(t, sel.Matches(Target{ProjectRelPath: "", HookID: "lint"}))
	require.True(t, sel.Matches(Target{ProjectRelPath: "services/api", HookID: "lint"}))
}

func TestMatchDotOnlyMatchesRootProject(t *testing.T) {
	sel, err := Parse(".")
	require.NoError(t, err)
	require.True(t, sel.Matches(Target{ProjectRelPath: "", HookID: "lint"}))
	require.False(t, sel.Matches(Target{ProjectRelPath: "services/api", HookID: "lint"}))
}

func TestPlanSkipOverridesInclude(t *testing.T) {
	include, err := Parse("lint")
	require.NoError(t, err)
	skip, err := Parse("lint")
	require.NoError(t, err)
	plan := Plan{Include: []Selector{include}, Skip: []Selector{skip}}
	require.False(t, plan.Selects(Target{HookID: "lint"}))
}

func TestPlanEmptyIncludeSelectsEverythingNotSkipped(t *testing.T) {
	plan := Plan{}
	require.True(t, plan.Selects(Target{HookID: "anything"}))
}

func TestPlanAllIncludesMissedDetectsTotalMiss(t *testing.T) {
	sel, err := Parse("nope")
	require.NoError(t, err)
	plan := Plan{Include: []Selector{sel}}
	targets := []Target{{HookID: "lint"}}
	require.True(t, plan.AllIncludesMissed(targets))
}

func TestPlanAllIncludesMissedFalseWhenOneHits(t *testing.T) {
	lint, _ := Parse("lint")
	nope, _ := Parse("nope")
	plan := Plan{Include: []Selector{lint, nope}}
	targets := []Target{{HookID: "lint"}}
	require.False(t, plan.AllIncludesMissed(targets))
}

func TestResolveSkipsPrecedence(t *testing.T) {
	require.Equal(t, []string{"a"}, ResolveSkips([]string{"a"}, "b,c", "d"))
	require.Equal(t, []string{"b", "c"}, ResolveSkips(nil, "b,c", "d"))
	require.Equal(t, []string{"d"}, ResolveSkips(nil, "", "d"))
	require.Nil(t, ResolveSkips(nil, "", ""))
}
