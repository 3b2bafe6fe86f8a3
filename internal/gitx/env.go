package gitx

import "strings"

// hostGitVars are the git-internal variables that leak host repository
// state into child processes if not scrubbed.
var hostGitVars = []string{
	"GIT_DIR",
	"GIT_WORK_TREE",
	"GIT_INDEX_FILE",
	"GIT_OBJECT_DIRECTORY",
}

// ScrubForHooks strips the host git vars before a hook subprocess is
// spawned, so hooks see their own cwd instead of the invoking git
// operation's worktree. Non-git-internal vars (GIT_SSH_COMMAND,
// GIT_CONFIG_*, GIT_AUTHOR_*) are passed through unchanged.
func ScrubForHooks(env []string) []string {
	return scrub(env, hostGitVars)
}

// ScrubForClone strips the same host git vars before any git call that
// operates on a cloned hook-source repository in the Store — the clone
// must never inherit the invoking repository's GIT_DIR/work-tree.
// GIT_SSH_COMMAND and GIT_CONFIG_* are deliberately preserved so private
// hook repos behind SSH or custom CA bundles keep working.
func ScrubForClone(env []string) []string {
	return scrub(env, hostGitVars)
}

func scrub(env []string, blocked []string) []string {
	out := make([]string, 0, len(env))
	for _, kv := range env {
		k, _, _ := strings.Cut(kv, "=")
		blockedVar := false
		for _, b := range blocked {
			if k == b {
				blockedVar = true
				break
			}
		}
		if !blockedVar {
			out = append(out, kv)
		}
	}
	return out
}

// PropagatedHostVars returns the subset of vars from env that should be
// forwarded to git queries about the user's repo state when the host
// (running the real git hook) set them — GIT_DIR/GIT_WORK_TREE/
// GIT_INDEX_FILE, and only when present, per spec §4.1.
func PropagatedHostVars(env []string) []string {
	keep := map[string]struct{}{"GIT_DIR": {}, "GIT_WORK_TREE": {}, "GIT_INDEX_FILE": {}}
	var out []string
	for _, kv := range env {
		k, _, _ := strings.Cut(kv, "=")
		if _, ok := keep[k]; ok {
			out = append(out, kv)
		}
	}
	return out
}
