package dump

import (
	"fmt"

	"github.com/LegacyCodeHQ/apicheck/internal/cli"
	"github.com/LegacyCodeHQ/apicheck/typegraph/java"
	"github.com/LegacyCodeHQ/apicheck/typegraph/snapshot"
	"github.com/spf13/cobra"
)

type dumpOptions struct {
	srcPath    string
	repoPath   string
	ref        string
	outputPath string
	includes   []string
	excludes   []string
}

// Cmd represents the dump command.
var Cmd = NewCommand()

// NewCommand returns a new dump command instance.
func NewCommand() *cobra.Command {
	opts := &dumpOptions{}

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Write the type graph of a source tree to a snapshot file",
		Long: `Parse a Java source tree, or the tree of a git ref, and save its type graph so
it can be compared later without the sources. Output files ending in .zst are
zstd compressed. Without -o the snapshot is written to stdout.

Example usage:
  api-checker dump --src src/main/java -o api-1.0.yaml.zst
  api-checker dump --repo . --ref v1.0 -o api-1.0.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.srcPath, "src", "s", "", "Source directory")
	cmd.Flags().StringVarP(&opts.repoPath, "repo", "r", "", "Git repository for --ref (default: current directory)")
	cmd.Flags().StringVar(&opts.ref, "ref", "", "Git ref to read sources from")
	cmd.Flags().StringVarP(&opts.outputPath, "output", "o", "", "Snapshot file (default: stdout)")
	cmd.Flags().StringSliceVar(&opts.includes, "include", nil, "Source globs to parse (default: **/*.java)")
	cmd.Flags().StringSliceVar(&opts.excludes, "exclude", nil, "Source globs to skip")

	cmd.MarkFlagsMutuallyExclusive("src", "ref")
	cmd.MarkFlagsOneRequired("src", "ref")

	return cmd
}

func runDump(cmd *cobra.Command, opts *dumpOptions) error {
	settings, err := cli.FromCommand(cmd)
	if err != nil {
		return err
	}

	loadOpts := java.LoadOptions{
		Include: settings.Config.Include,
		Exclude: settings.Config.Exclude,
		Logger:  settings.Logger,
	}
	if cmd.Flags().Changed("include") {
		loadOpts.Include = opts.includes
	}
	if cmd.Flags().Changed("exclude") {
		loadOpts.Exclude = opts.excludes
	}

	src := cli.Source{Path: opts.srcPath, Repo: opts.repoPath, Ref: opts.ref}
	g, err := cli.LoadGraph(cmd.Context(), src, loadOpts, settings.Logger)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", src, err)
	}

	if opts.outputPath == "" {
		return snapshot.Write(cmd.OutOrStdout(), g)
	}
	if err := snapshot.WriteFile(opts.outputPath, g); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	settings.Logger.Info("snapshot written", "path", opts.outputPath, "classes", len(g.Classes()))
	return nil
}
