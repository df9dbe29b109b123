package watch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/LegacyCodeHQ/apicheck/cmd/check"
	"github.com/LegacyCodeHQ/apicheck/internal/cli"
	"github.com/LegacyCodeHQ/apicheck/report"
	"github.com/LegacyCodeHQ/apicheck/typegraph"
	"github.com/LegacyCodeHQ/apicheck/typegraph/java"
	"github.com/LegacyCodeHQ/apicheck/vcs/git"
	"github.com/fsnotify/fsnotify"
)

const debounceInterval = 300 * time.Millisecond
const gitStatePollInterval = 500 * time.Millisecond

// session compares a changing source tree against a fixed old API.
type session struct {
	settings *cli.Settings
	oldGraph *typegraph.Graph
	newRoot  string
	req      check.Request
	out      io.Writer
	broker   *broker

	mu   sync.Mutex
	runs int64
}

// recheck reloads the new tree, writes the report and publishes it.
func (s *session) recheck(ctx context.Context) (*report.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs++

	r, err := s.compare(ctx)
	if err != nil {
		s.publish(reportSnapshot{ID: s.runs, Timestamp: time.Now(), Error: err.Error()})
		return nil, err
	}

	format := s.settings.Config.Format
	if format == "" || format == string(report.OutputFormatText) {
		fmt.Fprintf(s.out, "[%s] %d incompatible change(s)\n", time.Now().Format("15:04:05"), len(r.Lines()))
	}
	if err := check.Write(s.out, r, format, false); err != nil {
		return nil, err
	}

	summary := report.Summarize(r)
	byStatus := make(map[string]int, len(summary.ByStatus))
	for status, n := range summary.ByStatus {
		byStatus[string(status)] = n
	}
	s.publish(reportSnapshot{
		ID:        s.runs,
		Timestamp: time.Now(),
		Findings:  summary.Total,
		ByStatus:  byStatus,
		Lines:     r.Lines(),
	})
	return r, nil
}

func (s *session) compare(ctx context.Context) (*report.Report, error) {
	newGraph, err := java.Load(ctx, s.newRoot, check.LoadOptions(s.settings))
	if err != nil {
		return nil, fmt.Errorf("failed to load new API %s: %w", s.newRoot, err)
	}
	return check.Compare(s.settings, s.oldGraph, newGraph, s.req)
}

func (s *session) publish(snap reportSnapshot) {
	if s.broker == nil {
		return
	}
	data, err := json.Marshal(snap)
	if err != nil {
		s.settings.Logger.Warn("failed to encode report", "error", err)
		return
	}
	s.broker.publish(string(data))
}

func (s *session) recheckAndLog(ctx context.Context) {
	if _, err := s.recheck(ctx); err != nil && ctx.Err() == nil {
		s.settings.Logger.Error("recheck failed", "error", err)
	}
}

func watchAndRecheck(ctx context.Context, s *session) error {
	logger := s.settings.Logger
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	if err := addWatchDirs(watcher, s.newRoot); err != nil {
		return fmt.Errorf("failed to watch directories: %w", err)
	}

	loadOpts := check.LoadOptions(s.settings)
	var debounceTimer *time.Timer

	// A nil channel never fires, so trees outside git skip the polling.
	var gitStateC <-chan time.Time
	var lastGitStateSig string
	if git.IsRepository(ctx, s.newRoot) {
		lastGitStateSig, err = git.RepositoryStateSignature(ctx, s.newRoot)
		if err != nil {
			logger.Warn("git state read error", "error", err)
		}
		gitStateTicker := time.NewTicker(gitStatePollInterval)
		defer gitStateTicker.Stop()
		gitStateC = gitStateTicker.C
	}

	for {
		select {
		case <-ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if event.Has(fsnotify.Create) {
				addIfDirectory(watcher, event.Name)
			}
			if !isRelevantChange(event, s.newRoot, loadOpts) {
				continue
			}

			logger.Debug("source changed", "path", event.Name, "op", event.Op.String())
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounceInterval, func() {
				s.recheckAndLog(ctx)
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", "error", err)

		case <-gitStateC:
			stateSig, err := git.RepositoryStateSignature(ctx, s.newRoot)
			if err != nil {
				logger.Warn("git state read error", "error", err)
				continue
			}
			if stateSig == lastGitStateSig {
				continue
			}

			lastGitStateSig = stateSig
			s.recheckAndLog(ctx)
		}
	}
}

// isRelevantChange reports whether event touches a source file the loader
// would select under root.
func isRelevantChange(event fsnotify.Event, root string, opts java.LoadOptions) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	rel, err := filepath.Rel(root, event.Name)
	if err != nil {
		return false
	}
	return opts.Matches(filepath.ToSlash(rel))
}

func addWatchDirs(watcher *fsnotify.Watcher, root string) error {
	return addWatchDirsWithAdder(root, watcher.Add)
}

// addWatchDirsWithAdder registers root and its directories, skipping
// tool directories and paths that vanish during the walk.
func addWatchDirsWithAdder(root string, add func(string) error) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && java.SkippedDirs[d.Name()] {
			return filepath.SkipDir
		}
		if err := add(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return nil
	})
}

func addIfDirectory(watcher *fsnotify.Watcher, path string) {
	info, err := os.Stat(path)
	if err != nil {
		return
	}
	if info.IsDir() {
		_ = addWatchDirs(watcher, path)
	}
}
