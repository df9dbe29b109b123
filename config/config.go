// Package config loads api-checker settings from .api-checker.yaml and
// APICHECK_ environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/LegacyCodeHQ/apicheck/apicheck"
	"github.com/LegacyCodeHQ/apicheck/report"
	"github.com/spf13/viper"
)

// FileName is the config file looked up in the working directory.
const FileName = ".api-checker.yaml"

// Config holds every setting the commands read.
type Config struct {
	ExcludePackages                    []string `mapstructure:"exclude_packages"`
	Whitelist                          string   `mapstructure:"whitelist"`
	OverloadWarnings                   bool     `mapstructure:"overload_warnings"`
	SkipNonInstantiableInstanceMembers bool     `mapstructure:"skip_non_instantiable_instance_members"`
	Deduplicate                        bool     `mapstructure:"deduplicate"`
	Include                            []string `mapstructure:"include"`
	Exclude                            []string `mapstructure:"exclude"`
	Format                             string   `mapstructure:"format"`
	LogLevel                           string   `mapstructure:"log_level"`
}

// Error describes an invalid setting.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		OverloadWarnings: true,
		Deduplicate:      true,
		Include:          []string{"**/*.java"},
		Format:           string(report.OutputFormatText),
		LogLevel:         "warn",
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("exclude_packages", []string{})
	v.SetDefault("whitelist", "")
	v.SetDefault("overload_warnings", d.OverloadWarnings)
	v.SetDefault("skip_non_instantiable_instance_members", d.SkipNonInstantiableInstanceMembers)
	v.SetDefault("deduplicate", d.Deduplicate)
	v.SetDefault("include", d.Include)
	v.SetDefault("exclude", []string{})
	v.SetDefault("format", d.Format)
	v.SetDefault("log_level", d.LogLevel)
}

// Load reads the configuration. When explicitPath is empty the file is
// looked up in dir and may be absent; an explicit path must exist.
func Load(dir, explicitPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("APICHECK")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if explicitPath != "" {
		v.SetConfigFile(explicitPath)
	} else {
		v.SetConfigName(strings.TrimSuffix(FileName, ".yaml"))
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicitPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	switch report.OutputFormat(c.Format) {
	case report.OutputFormatText, report.OutputFormatJSON:
	default:
		return &Error{Field: "format", Message: fmt.Sprintf("unsupported format %q", c.Format)}
	}
	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return &Error{Field: "log_level", Message: fmt.Sprintf("unknown level %q", c.LogLevel)}
	}
	for _, pkg := range c.ExcludePackages {
		if strings.TrimSpace(pkg) == "" {
			return &Error{Field: "exclude_packages", Message: "empty package name"}
		}
	}
	return nil
}

// Options converts the settings into engine options.
func (c *Config) Options() apicheck.Options {
	opts := apicheck.DefaultOptions()
	opts.ExcludedPackages = append([]string(nil), c.ExcludePackages...)
	opts.OverloadWarnings = c.OverloadWarnings
	opts.SkipNonInstantiableInstanceMembers = c.SkipNonInstantiableInstanceMembers
	return opts
}

// ReportOptions converts the settings into report options.
func (c *Config) ReportOptions() report.Options {
	return report.Options{Deduplicate: c.Deduplicate}
}
