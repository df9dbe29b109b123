package watch

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/LegacyCodeHQ/apicheck/cmd/check"
	"github.com/LegacyCodeHQ/apicheck/internal/cli"
	"github.com/spf13/cobra"
)

type watchOptions struct {
	oldPath     string
	repoPath    string
	oldRef      string
	newPath     string
	port        int
	whitelist   string
	format      string
	className   string
	packageName string
}

// Cmd represents the watch command.
var Cmd = NewCommand()

// NewCommand returns a new watch command instance.
func NewCommand() *cobra.Command {
	opts := &watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-check a source tree against an old API whenever it changes",
		Long: `Load the old API once, then watch the new source directory and print a fresh
report every time a Java source file changes or the git state of the tree moves.

With --port the latest report is also served as JSON at / and streamed as
server-sent events at /events.

Example usage:
  api-checker watch --old api-1.0.yaml.zst --new src/main/java
  api-checker watch --repo . --old-ref v1.0 --new src/main/java --port 4900`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.oldPath, "old", "", "Old API: source directory or snapshot file")
	cmd.Flags().StringVarP(&opts.repoPath, "repo", "r", "", "Git repository for --old-ref (default: current directory)")
	cmd.Flags().StringVar(&opts.oldRef, "old-ref", "", "Git ref of the old API")
	cmd.Flags().StringVar(&opts.newPath, "new", "", "Source directory to watch")
	cmd.Flags().IntVarP(&opts.port, "port", "P", 0, "Serve the latest report on this port (0 disables)")
	cmd.Flags().StringVar(&opts.whitelist, "whitelist", "", "File of accepted findings")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "Output format (text, json)")
	cmd.Flags().StringVar(&opts.className, "class", "", "Compare only this class (qualified name)")
	cmd.Flags().StringVar(&opts.packageName, "package", "", "Compare only this package")

	cmd.MarkFlagsMutuallyExclusive("old", "old-ref")
	cmd.MarkFlagsOneRequired("old", "old-ref")
	cmd.MarkFlagsMutuallyExclusive("class", "package")
	_ = cmd.MarkFlagRequired("new")

	return cmd
}

func runWatch(cmd *cobra.Command, opts *watchOptions) error {
	settings, err := cli.FromCommand(cmd)
	if err != nil {
		return err
	}
	cfg := *settings.Config
	if cmd.Flags().Changed("whitelist") {
		cfg.Whitelist = opts.whitelist
	}
	if cmd.Flags().Changed("format") {
		cfg.Format = opts.format
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	settings = &cli.Settings{Config: &cfg, Logger: settings.Logger}

	newRoot, err := filepath.Abs(opts.newPath)
	if err != nil {
		return fmt.Errorf("failed to resolve new path: %w", err)
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	oldSource := cli.Source{Path: opts.oldPath, Repo: opts.repoPath, Ref: opts.oldRef}
	oldGraph, err := cli.LoadGraph(ctx, oldSource, check.LoadOptions(settings), settings.Logger)
	if err != nil {
		return fmt.Errorf("failed to load old API %s: %w", oldSource, err)
	}

	s := &session{
		settings: settings,
		oldGraph: oldGraph,
		newRoot:  newRoot,
		req:      check.Request{Old: oldSource, New: cli.Source{Path: newRoot}, ClassName: opts.className, PackageName: opts.packageName},
		out:      cmd.OutOrStdout(),
	}

	if opts.port > 0 {
		s.broker = newBroker()
		srv := newServer(s.broker, opts.port)
		ln, err := net.Listen("tcp", fmt.Sprintf(":%d", opts.port))
		if err != nil {
			return fmt.Errorf("failed to listen on port %d: %w", opts.port, err)
		}
		go srv.Serve(ln)
		defer srv.Close()
		fmt.Fprintf(cmd.ErrOrStderr(), "Serving at http://localhost:%d\n", opts.port)
	}

	s.recheckAndLog(ctx)

	fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s\n", newRoot)
	fmt.Fprintf(cmd.ErrOrStderr(), "Press Ctrl+C to stop\n")

	return watchAndRecheck(ctx, s)
}
