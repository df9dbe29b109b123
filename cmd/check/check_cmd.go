package check

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/LegacyCodeHQ/apicheck/apicheck"
	"github.com/LegacyCodeHQ/apicheck/config"
	"github.com/LegacyCodeHQ/apicheck/internal/cli"
	"github.com/LegacyCodeHQ/apicheck/report"
	"github.com/LegacyCodeHQ/apicheck/typegraph"
	"github.com/LegacyCodeHQ/apicheck/typegraph/java"
	"github.com/spf13/cobra"
)

// ErrIncompatible is returned when the filtered report is not empty.
var ErrIncompatible = errors.New("incompatible API changes found")

type checkOptions struct {
	oldPath             string
	newPath             string
	repoPath            string
	oldRef              string
	newRef              string
	excludePackages     []string
	whitelist           string
	format              string
	noOverloadWarnings  bool
	skipNonInstantiable bool
	noDedup             bool
	className           string
	packageName         string
	summary             bool
	includes            []string
	excludes            []string
}

// Cmd represents the check command.
var Cmd = NewCommand()

// NewCommand returns a new check command instance.
func NewCommand() *cobra.Command {
	opts := &checkOptions{}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report API changes that break clients of the old API",
		Long: `Compare the public API of two versions of a Java code base and report every
change that can break code compiled against the old version.

Each side is a source directory, a snapshot file written by 'dump', or a git
ref of the repository given with --repo.

Example usage:
  api-checker check --old v1/src --new v2/src
  api-checker check --old api-1.0.yaml.zst --new src/main/java
  api-checker check --repo . --old-ref v1.0 --new-ref HEAD --whitelist accepted.txt
  api-checker check --old v1 --new v2 --class com.example.Client --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.oldPath, "old", "", "Old API: source directory or snapshot file")
	cmd.Flags().StringVar(&opts.newPath, "new", "", "New API: source directory or snapshot file")
	cmd.Flags().StringVarP(&opts.repoPath, "repo", "r", "", "Git repository for --old-ref/--new-ref (default: current directory)")
	cmd.Flags().StringVar(&opts.oldRef, "old-ref", "", "Git ref of the old API")
	cmd.Flags().StringVar(&opts.newRef, "new-ref", "", "Git ref of the new API")
	cmd.Flags().StringArrayVar(&opts.excludePackages, "exclude-package", nil, "Package to leave out of the comparison (repeatable)")
	cmd.Flags().StringVar(&opts.whitelist, "whitelist", "", "File of accepted findings")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "Output format (text, json)")
	cmd.Flags().BoolVar(&opts.noOverloadWarnings, "no-overload-warnings", false, "Do not warn about ambiguous overloads")
	cmd.Flags().BoolVar(&opts.skipNonInstantiable, "skip-non-instantiable", false, "Ignore instance members of classes clients cannot instantiate")
	cmd.Flags().BoolVar(&opts.noDedup, "no-dedup", false, "Keep duplicate findings")
	cmd.Flags().StringVar(&opts.className, "class", "", "Compare only this class (qualified name)")
	cmd.Flags().StringVar(&opts.packageName, "package", "", "Compare only this package")
	cmd.Flags().BoolVar(&opts.summary, "summary", false, "Print finding counts after the report")
	cmd.Flags().StringSliceVar(&opts.includes, "include", nil, "Source globs to parse (default: **/*.java)")
	cmd.Flags().StringSliceVar(&opts.excludes, "exclude", nil, "Source globs to skip")

	cmd.MarkFlagsMutuallyExclusive("class", "package")

	return cmd
}

// Request describes one comparison.
type Request struct {
	Old         cli.Source
	New         cli.Source
	ClassName   string
	PackageName string
}

// Run loads both sides and returns the filtered report.
func Run(cmd *cobra.Command, settings *cli.Settings, req Request) (*report.Report, error) {
	ctx := cmd.Context()
	loadOpts := LoadOptions(settings)
	oldGraph, err := cli.LoadGraph(ctx, req.Old, loadOpts, settings.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load old API %s: %w", req.Old, err)
	}
	newGraph, err := cli.LoadGraph(ctx, req.New, loadOpts, settings.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load new API %s: %w", req.New, err)
	}
	return Compare(settings, oldGraph, newGraph, req)
}

// LoadOptions returns the source selection configured in settings.
func LoadOptions(settings *cli.Settings) java.LoadOptions {
	return java.LoadOptions{
		Include: settings.Config.Include,
		Exclude: settings.Config.Exclude,
		Logger:  settings.Logger,
	}
}

// Compare diffs two loaded graphs and removes whitelisted findings.
func Compare(settings *cli.Settings, oldGraph, newGraph *typegraph.Graph, req Request) (*report.Report, error) {
	cfg := settings.Config
	logger := settings.Logger
	start := time.Now()

	var whitelist *report.Whitelist
	if cfg.Whitelist != "" {
		var err error
		whitelist, err = report.LoadWhitelist(cfg.Whitelist)
		if err != nil {
			return nil, err
		}
	}

	checker := apicheck.NewChecker(cfg.Options(), logger)
	var changes []apicheck.Change
	var err error
	switch {
	case req.ClassName != "":
		changes, err = checker.DiffClass(oldGraph, newGraph, req.ClassName)
	case req.PackageName != "":
		changes, err = checker.DiffPackage(oldGraph, newGraph, req.PackageName)
	default:
		changes, err = checker.Diff(oldGraph, newGraph)
	}
	if err != nil {
		return nil, err
	}

	r := report.New(changes, cfg.ReportOptions()).Filter(whitelist)
	logger.Info("comparison finished", "old", oldGraph.Name(), "new", newGraph.Name(),
		"findings", len(r.Lines()), "whitelisted", whitelist.Len(), "elapsed", time.Since(start))
	return r, nil
}

// Write renders r in the configured format, optionally followed by the
// summary.
func Write(w io.Writer, r *report.Report, format string, summary bool) error {
	formatter, err := report.NewFormatter(format)
	if err != nil {
		return err
	}
	out, err := formatter.Format(r)
	if err != nil {
		return fmt.Errorf("failed to format report: %w", err)
	}
	if _, err := io.WriteString(w, out); err != nil {
		return err
	}
	if summary {
		_, err = io.WriteString(w, report.Summarize(r).String())
	}
	return err
}

func runCheck(cmd *cobra.Command, opts *checkOptions) error {
	settings, err := cli.FromCommand(cmd)
	if err != nil {
		return err
	}
	cfg := *settings.Config
	applyFlagOverrides(cmd, opts, &cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	req, err := opts.request()
	if err != nil {
		return err
	}

	r, err := Run(cmd, &cli.Settings{Config: &cfg, Logger: settings.Logger}, req)
	if err != nil {
		return err
	}
	if err := Write(cmd.OutOrStdout(), r, cfg.Format, opts.summary); err != nil {
		return err
	}
	if !r.IsEmpty() {
		cmd.SilenceUsage = true
		return ErrIncompatible
	}
	return nil
}

func (o *checkOptions) request() (Request, error) {
	req := Request{ClassName: o.className, PackageName: o.packageName}

	side := func(name, path, ref string) (cli.Source, error) {
		switch {
		case path != "" && ref != "":
			return cli.Source{}, fmt.Errorf("--%s and --%s-ref cannot be used together", name, name)
		case ref != "":
			return cli.Source{Repo: o.repoPath, Ref: ref}, nil
		case path != "":
			return cli.Source{Path: path}, nil
		default:
			return cli.Source{}, fmt.Errorf("either --%s or --%s-ref is required", name, name)
		}
	}

	var err error
	if req.Old, err = side("old", o.oldPath, o.oldRef); err != nil {
		return Request{}, err
	}
	if req.New, err = side("new", o.newPath, o.newRef); err != nil {
		return Request{}, err
	}
	return req, nil
}

// applyFlagOverrides copies explicitly set flags over the configuration.
func applyFlagOverrides(cmd *cobra.Command, opts *checkOptions, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("exclude-package") {
		cfg.ExcludePackages = append(append([]string(nil), cfg.ExcludePackages...), opts.excludePackages...)
	}
	if flags.Changed("whitelist") {
		cfg.Whitelist = opts.whitelist
	}
	if flags.Changed("format") {
		cfg.Format = opts.format
	}
	if flags.Changed("no-overload-warnings") {
		cfg.OverloadWarnings = !opts.noOverloadWarnings
	}
	if flags.Changed("skip-non-instantiable") {
		cfg.SkipNonInstantiableInstanceMembers = opts.skipNonInstantiable
	}
	if flags.Changed("no-dedup") {
		cfg.Deduplicate = !opts.noDedup
	}
	if flags.Changed("include") {
		cfg.Include = opts.includes
	}
	if flags.Changed("exclude") {
		cfg.Exclude = opts.excludes
	}
}
