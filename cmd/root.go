package cmd

import (
	"os"

	"github.com/LegacyCodeHQ/apicheck/cmd/check"
	"github.com/LegacyCodeHQ/apicheck/cmd/dump"
	"github.com/LegacyCodeHQ/apicheck/cmd/watch"
	"github.com/LegacyCodeHQ/apicheck/internal/cli"
	"github.com/spf13/cobra"
)

// version is set via build-time ldflags
var version = "dev"

// buildDate is set via build-time ldflags
var buildDate = "unknown"

// commit is set via build-time ldflags
var commit = "unknown"

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCommand(check.Cmd, dump.Cmd, watch.Cmd)

func newRootCommand(subcommands ...*cobra.Command) *cobra.Command {
	flags := &cli.RootFlags{}

	cmd := &cobra.Command{
		Use:   "api-checker",
		Short: "Find changes in a Java API that break existing clients",
		Long: `api-checker compares two versions of a Java API and reports every change that
can break code compiled against the old version: removed packages, classes and
members, narrowed access, changed modifiers, and more.

Settings are read from .api-checker.yaml in the current directory and from
APICHECK_* environment variables; command-line flags take precedence.

Use 'api-checker --help' to see all available commands, or
'api-checker <command> --help' for detailed information about a specific command.`,
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			settings, err := flags.Resolve(cmd, ".")
			if err != nil {
				return err
			}
			cmd.SetContext(cli.WithSettings(cmd.Context(), settings))
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&flags.ConfigPath, "config", "", "Configuration file (default: ./.api-checker.yaml)")
	cmd.PersistentFlags().StringVar(&flags.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().CountVarP(&flags.Verbosity, "verbose", "v", "Increase log verbosity (repeatable)")
	cmd.PersistentFlags().BoolVarP(&flags.Quiet, "quiet", "q", false, "Suppress all log output")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	cmd.AddCommand(subcommands...)

	// Initialize annotations for version template
	cmd.Annotations = map[string]string{
		"buildDate": buildDate,
		"commit":    commit,
	}

	// Customize version template to show additional build info
	cmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s" .Version}}
Build date: {{printf "%s" (index .Annotations "buildDate")}}
Commit: {{printf "%s" (index .Annotations "commit")}}
`)

	return cmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
