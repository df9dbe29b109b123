package git

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// setupGitRepo initializes a git repository in a temporary directory
func setupGitRepo(t *testing.T, dir string) {
	t.Helper()
	runGit(t, dir, "init")
	runGit(t, dir, "config", "user.name", "Test User")
	runGit(t, dir, "config", "user.email", "test@example.com")
}

func runGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, out)
}

// createFile writes content to a path relative to dir, creating parents.
func createFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	filePath := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0o755))
	require.NoError(t, os.WriteFile(filePath, []byte(content), 0o644))
	return filePath
}

func gitAdd(t *testing.T, repoDir, file string) {
	t.Helper()
	runGit(t, repoDir, "add", file)
}

func gitCommit(t *testing.T, repoDir, message string) {
	t.Helper()
	runGit(t, repoDir, "commit", "-m", message)
}

func gitTag(t *testing.T, repoDir, tag string) {
	t.Helper()
	runGit(t, repoDir, "tag", tag)
}
