package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/LegacyCodeHQ/apicheck/typegraph"
	"github.com/LegacyCodeHQ/apicheck/typegraph/java"
	"github.com/LegacyCodeHQ/apicheck/typegraph/snapshot"
	"github.com/LegacyCodeHQ/apicheck/vcs/git"
)

// Source names one side of a comparison: a snapshot file, a source
// directory, or a git ref.
type Source struct {
	Path string
	Repo string
	Ref  string
}

// String returns a label for logs and graph names.
func (s Source) String() string {
	if s.Ref != "" {
		return s.Ref
	}
	return s.Path
}

// LoadGraph reads the type graph a source describes.
func LoadGraph(ctx context.Context, src Source, opts java.LoadOptions, logger *slog.Logger) (*typegraph.Graph, error) {
	switch {
	case src.Ref != "":
		repo := src.Repo
		if repo == "" {
			repo = "."
		}
		files, err := git.ListFilesAtRef(ctx, repo, src.Ref)
		if err != nil {
			return nil, fmt.Errorf("failed to list files at %s: %w", src.Ref, err)
		}
		name := src.Ref
		if hash, err := git.ShortCommitHash(ctx, repo, src.Ref); err == nil && hash != src.Ref {
			name = src.Ref + "@" + hash
		}
		logger.Debug("loading sources from git", "repo", repo, "ref", src.Ref, "graph", name, "files", len(files))
		return java.LoadFiles(ctx, name, files, git.ContentReaderAtRef(ctx, repo, src.Ref), opts)
	case src.Path == "":
		return nil, fmt.Errorf("no source given")
	case snapshot.IsSnapshotFile(src.Path):
		logger.Debug("loading snapshot", "path", src.Path)
		return snapshot.ReadFile(src.Path)
	default:
		logger.Debug("loading sources", "root", src.Path)
		return java.Load(ctx, src.Path, opts)
	}
}
