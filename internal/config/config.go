// Package config handles loading zzcheck configuration from files.
//
// Configuration can be specified in a JSON file named zzcheck.json or .zzcheckrc.
// The config file is searched for in the current directory and parent directories.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Config represents the configuration file structure.
// All fields are optional and will use default values if not specified.
type Config struct {
	// Strict promotes warning-severity diagnostics to errors for the
	// purpose of the process exit code.
	Strict *bool `json:"strict,omitempty"`

	// OutputFormat selects how diagnostics are rendered: "text" or "json".
	OutputFormat *string `json:"outputFormat,omitempty"`

	// SourceSnippets controls whether a formatted diagnostic includes the
	// offending source line beneath its location.
	SourceSnippets *bool `json:"sourceSnippets,omitempty"`

	// IgnoreMessages lists diagnostic message stems to suppress entirely,
	// matched by prefix against a diagnostic's Message.
	IgnoreMessages []string `json:"ignoreMessages,omitempty"`
}

// ConfigFileNames are the names searched for config files, in order of preference.
var ConfigFileNames = []string{
	"zzcheck.json",
	".zzcheckrc",
	".zzcheckrc.json",
}

// Load searches for a config file starting from the given directory
// and walking up to parent directories. Returns nil if no config file is found.
func Load(startDir string) (*Config, string, error) {
	dir := startDir
	for {
		for _, name := range ConfigFileNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				cfg, err := LoadFile(path)
				return cfg, path, err
			}
		}

		// Move to parent directory
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root, no config found
			return nil, "", nil
		}
		dir = parent
	}
}

// LoadFile loads configuration from a specific file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Options is the resolved, fully-defaulted form of Config the rest of the
// analyzer consumes.
type Options struct {
	Strict         bool
	OutputFormat   string
	SourceSnippets bool
	IgnoreMessages []string
}

// DefaultOptions is what the analyzer uses when no config file is found.
func DefaultOptions() Options {
	return Options{
		Strict:         false,
		OutputFormat:   "text",
		SourceSnippets: true,
	}
}

// ToOptions converts a Config to Options, using defaults for unset fields.
func (c *Config) ToOptions() Options {
	opts := DefaultOptions()

	if c == nil {
		return opts
	}

	if c.Strict != nil {
		opts.Strict = *c.Strict
	}
	if c.OutputFormat != nil {
		opts.OutputFormat = *c.OutputFormat
	}
	if c.SourceSnippets != nil {
		opts.SourceSnippets = *c.SourceSnippets
	}
	if len(c.IgnoreMessages) > 0 {
		opts.IgnoreMessages = c.IgnoreMessages
	}

	return opts
}

// MergeOptions combines config file options with CLI options.
// CLI options take precedence over config file options.
type MergeOptions struct {
	// CLI flags (nil means not specified on CLI)
	Strict         *bool
	OutputFormat   *string
	SourceSnippets *bool
	IgnoreMessages []string
}

// Merge merges CLI options with config file options.
// CLI options override config file options when specified.
func (c *Config) Merge(cli MergeOptions) Options {
	opts := c.ToOptions()

	if cli.Strict != nil {
		opts.Strict = *cli.Strict
	}
	if cli.OutputFormat != nil {
		opts.OutputFormat = *cli.OutputFormat
	}
	if cli.SourceSnippets != nil {
		opts.SourceSnippets = *cli.SourceSnippets
	}
	if len(cli.IgnoreMessages) > 0 {
		// Append CLI ignore patterns to config ignore patterns.
		opts.IgnoreMessages = append(opts.IgnoreMessages, cli.IgnoreMessages...)
	}

	return opts
}
