// Package git reads source trees at arbitrary commits so API snapshots can
// be built without checking the commits out.
package git

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// IsRepository reports whether path is inside a git work tree.
func IsRepository(ctx context.Context, path string) bool {
	_, _, err := runGitCommand(ctx, path, "rev-parse", "--git-dir")
	return err == nil
}

// RepositoryRoot returns the absolute path to the repository root.
func RepositoryRoot(ctx context.Context, repoPath string) (string, error) {
	if _, err := os.Stat(repoPath); err != nil {
		return "", fmt.Errorf("repository path does not exist: %s", repoPath)
	}
	out, stderr, err := runGitCommand(ctx, repoPath, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("%s is not a git repository: %w", repoPath, gitCommandError(err, stderr))
	}
	return strings.TrimSpace(string(out)), nil
}

// ValidateCommit checks that ref resolves to a commit in the repository.
func ValidateCommit(ctx context.Context, repoPath, ref string) error {
	if err := validateGitRef(ref); err != nil {
		return err
	}
	_, stderr, err := runGitCommand(ctx, repoPath, "rev-parse", "--verify", "--quiet", ref+"^{commit}")
	if err != nil {
		if stderr != "" {
			return fmt.Errorf("invalid commit reference '%s': %s", ref, stderr)
		}
		return fmt.Errorf("invalid commit reference '%s'", ref)
	}
	return nil
}

// ShortCommitHash returns the abbreviated hash ref resolves to.
func ShortCommitHash(ctx context.Context, repoPath, ref string) (string, error) {
	if err := validateGitRef(ref); err != nil {
		return "", err
	}
	out, stderr, err := runGitCommand(ctx, repoPath, "rev-parse", "--short", ref)
	if err != nil {
		return "", gitCommandError(err, stderr)
	}
	return strings.TrimSpace(string(out)), nil
}

func validateGitRef(ref string) error {
	if ref == "" {
		return fmt.Errorf("git reference cannot be empty")
	}
	if strings.HasPrefix(ref, "-") {
		return fmt.Errorf("git reference cannot start with '-': %q", ref)
	}
	if strings.ContainsAny(ref, "\x00\n\r\t ") {
		return fmt.Errorf("git reference contains whitespace or NUL: %q", ref)
	}
	return nil
}

func validateGitRelPath(path string) error {
	if path == "" {
		return fmt.Errorf("git path cannot be empty")
	}
	if filepath.IsAbs(path) || strings.HasPrefix(path, "/") {
		return fmt.Errorf("git path must be relative: %q", path)
	}
	if strings.Contains(path, "\x00") {
		return fmt.Errorf("git path contains NUL: %q", path)
	}
	cleaned := filepath.ToSlash(filepath.Clean(path))
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return fmt.Errorf("git path escapes repository: %q", path)
	}
	return nil
}
