package java

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"github.com/LegacyCodeHQ/apicheck/typegraph"
	"github.com/LegacyCodeHQ/apicheck/vcs"
	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"
)

// DefaultInclude matches every Java source file.
const DefaultInclude = "**/*.java"

// SkippedDirs are directory names never descended into.
var SkippedDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"build":        true,
	"target":       true,
	".gradle":      true,
	".idea":        true,
	".vscode":      true,
}

// LoadOptions selects and parses source files.
type LoadOptions struct {
	// Include and Exclude are doublestar patterns over slash-separated paths
	// relative to the source root. An empty Include means DefaultInclude.
	Include []string
	Exclude []string
	// Concurrency bounds the number of files parsed at once. Zero means
	// runtime.NumCPU().
	Concurrency int
	Logger      *slog.Logger
}

// Matches reports whether a relative path is selected by the options.
func (o LoadOptions) Matches(relPath string) bool {
	relPath = filepath.ToSlash(relPath)
	include := o.Include
	if len(include) == 0 {
		include = []string{DefaultInclude}
	}
	if !matchAny(include, relPath) {
		return false
	}
	return !matchAny(o.Exclude, relPath)
}

func matchAny(patterns []string, path string) bool {
	for _, pattern := range patterns {
		if matched, _ := doublestar.Match(pattern, path); matched {
			return true
		}
	}
	return false
}

func (o LoadOptions) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// Load parses every selected file under root into a graph named after root.
func Load(ctx context.Context, root string, opts LoadOptions) (*typegraph.Graph, error) {
	files, err := ListFiles(root, opts)
	if err != nil {
		return nil, err
	}
	return LoadFiles(ctx, root, files, vcs.DirReader(root), opts)
}

// ListFiles returns the selected files under root as sorted, slash-separated
// relative paths.
func ListFiles(root string, opts LoadOptions) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to read source root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source root %s is not a directory", root)
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && SkippedDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if opts.Matches(rel) {
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}
	sort.Strings(files)
	return files, nil
}

// LoadFiles parses the selected files, read through reader, into a graph
// with the given name. Files not matched by opts are skipped.
func LoadFiles(ctx context.Context, name string, files []string, reader vcs.ContentReader, opts LoadOptions) (*typegraph.Graph, error) {
	logger := opts.logger()
	start := time.Now()

	var selected []string
	for _, f := range files {
		if opts.Matches(f) {
			selected = append(selected, f)
		}
	}
	sort.Strings(selected)

	limit := opts.Concurrency
	if limit <= 0 {
		limit = runtime.NumCPU()
	}

	units := make([]*CompilationUnit, len(selected))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, path := range selected {
		g.Go(func() error {
			src, err := reader(path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}
			unit, err := ParseFileCtx(gctx, path, src)
			if err != nil {
				return err
			}
			units[i] = unit
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	graph, err := Build(name, units)
	if err != nil {
		return nil, err
	}
	logger.Debug("loaded sources", "name", name, "files", len(selected),
		"classes", len(graph.Classes()), "elapsed", time.Since(start))
	return graph, nil
}
