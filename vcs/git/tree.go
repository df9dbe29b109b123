package git

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"github.com/LegacyCodeHQ/apicheck/vcs"
)

// ListFilesAtRef returns every file in the tree of ref as slash-separated
// paths relative to the repository root, sorted.
func ListFilesAtRef(ctx context.Context, repoPath, ref string) ([]string, error) {
	root, err := RepositoryRoot(ctx, repoPath)
	if err != nil {
		return nil, err
	}
	if err := ValidateCommit(ctx, root, ref); err != nil {
		return nil, err
	}

	out, stderr, err := runGitCommand(ctx, root, "ls-tree", "-r", "-z", "--full-tree", "--name-only", ref)
	if err != nil {
		return nil, gitCommandError(err, stderr)
	}

	var files []string
	for _, entry := range bytes.Split(out, []byte{0}) {
		if len(entry) > 0 {
			files = append(files, string(entry))
		}
	}
	sort.Strings(files)
	return files, nil
}

// FileContentAtRef returns the content of path as of ref. path is relative to
// the repository root.
func FileContentAtRef(ctx context.Context, repoPath, ref, path string) ([]byte, error) {
	if err := validateGitRef(ref); err != nil {
		return nil, err
	}
	if err := validateGitRelPath(path); err != nil {
		return nil, err
	}
	root, err := RepositoryRoot(ctx, repoPath)
	if err != nil {
		return nil, err
	}

	out, stderr, err := runGitCommand(ctx, root, "show", fmt.Sprintf("%s:%s", ref, path))
	if err != nil {
		return nil, fmt.Errorf("%s at %s: %w", path, ref, gitCommandError(err, stderr))
	}
	return out, nil
}

// ContentReaderAtRef returns a reader serving file content as of ref.
func ContentReaderAtRef(ctx context.Context, repoPath, ref string) vcs.ContentReader {
	return func(path string) ([]byte, error) {
		return FileContentAtRef(ctx, repoPath, ref, path)
	}
}
