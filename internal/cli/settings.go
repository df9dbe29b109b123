// Package cli holds the state shared by the api-checker subcommands.
package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/LegacyCodeHQ/apicheck/config"
	"github.com/LegacyCodeHQ/apicheck/internal/logging"
	"github.com/spf13/cobra"
)

// Settings is the configuration and logger resolved from the root flags.
type Settings struct {
	Config *config.Config
	Logger *slog.Logger
}

type settingsKey struct{}

// WithSettings attaches s to ctx.
func WithSettings(ctx context.Context, s *Settings) context.Context {
	return context.WithValue(ctx, settingsKey{}, s)
}

// RootFlags are the persistent flags of the root command.
type RootFlags struct {
	ConfigPath string
	LogLevel   string
	Verbosity  int
	Quiet      bool
}

// Resolve loads the configuration from workDir and builds the logger.
func (f RootFlags) Resolve(cmd *cobra.Command, workDir string) (*Settings, error) {
	cfg, err := config.Load(workDir, f.ConfigPath)
	if err != nil {
		return nil, err
	}
	name := cfg.LogLevel
	if f.LogLevel != "" {
		if _, ok := logging.LevelFromString(f.LogLevel); !ok {
			return nil, fmt.Errorf("unknown log level %q (valid options: debug, info, warn, error)", f.LogLevel)
		}
		name = f.LogLevel
	}
	level := logging.Resolve(name, f.Verbosity, f.Quiet)
	return &Settings{
		Config: cfg,
		Logger: logging.NewLogger(cmd.ErrOrStderr(), level),
	}, nil
}

// FromCommand returns the settings attached by the root command, or the
// defaults for the current directory when the command runs on its own.
func FromCommand(cmd *cobra.Command) (*Settings, error) {
	if ctx := cmd.Context(); ctx != nil {
		if s, ok := ctx.Value(settingsKey{}).(*Settings); ok {
			return s, nil
		}
	}
	return RootFlags{}.Resolve(cmd, ".")
}
