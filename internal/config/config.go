// Package config loads the settings shared by the oasweave command line and
// MCP server from a config file, OASWEAVE_* environment variables, a .env
// file and command line overrides, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/erraggy/oasweave/bundler"
	"github.com/erraggy/oasweave/contract"
	"github.com/erraggy/oasweave/oaserrors"
	"github.com/erraggy/oasweave/parser"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. OASWEAVE_CONTRACT_STRICT.
const EnvPrefix = "OASWEAVE"

// Output formats.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// configFileNames are searched in order when no file is given.
var configFileNames = []string{
	"oasweave.yaml",
	"oasweave.yml",
	"oasweave.json",
	".oasweave.yaml",
}

// Config is the explicit configuration of one run.
type Config struct {
	// Include and Exclude are doublestar globs selecting specification files
	Include []string `mapstructure:"include" yaml:"include" json:"include"`
	Exclude []string `mapstructure:"exclude" yaml:"exclude" json:"exclude"`
	// Root names the root file and skips detection
	Root string `mapstructure:"root" yaml:"root" json:"root"`
	// Format is the output format of bundles and reports
	Format string `mapstructure:"format" yaml:"format" json:"format"`
	// Verbose enables debug logging
	Verbose bool `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	Limits   LimitsConfig   `mapstructure:"limits" yaml:"limits" json:"limits"`
	Bundle   BundleConfig   `mapstructure:"bundle" yaml:"bundle" json:"bundle"`
	Contract ContractConfig `mapstructure:"contract" yaml:"contract" json:"contract"`
	Watch    WatchConfig    `mapstructure:"watch" yaml:"watch" json:"watch"`
}

// LimitsConfig bounds the work done for one file set.
type LimitsConfig struct {
	MaxFiles    int   `mapstructure:"maxFiles" yaml:"maxFiles" json:"maxFiles"`
	MaxFileSize int64 `mapstructure:"maxFileSize" yaml:"maxFileSize" json:"maxFileSize"`
	MaxNodes    int   `mapstructure:"maxNodes" yaml:"maxNodes" json:"maxNodes"`
}

// BundleConfig controls bundling.
type BundleConfig struct {
	// Verify loads 3.0 output with an independent OpenAPI loader
	Verify bool `mapstructure:"verify" yaml:"verify" json:"verify"`
}

// ContractConfig mirrors contract.Config.
type ContractConfig struct {
	Strict                    bool `mapstructure:"strict" yaml:"strict" json:"strict"`
	ShowMissingInSchemaErrors bool `mapstructure:"showMissingInSchemaErrors" yaml:"showMissingInSchemaErrors" json:"showMissingInSchemaErrors"`
	IgnoreUnresolvedVariables bool `mapstructure:"ignoreUnresolvedVariables" yaml:"ignoreUnresolvedVariables" json:"ignoreUnresolvedVariables"`
	SuggestAvailableFixes     bool `mapstructure:"suggestAvailableFixes" yaml:"suggestAvailableFixes" json:"suggestAvailableFixes"`
	DetailedBlobValidation    bool `mapstructure:"detailedBlobValidation" yaml:"detailedBlobValidation" json:"detailedBlobValidation"`
	PatternCacheSize          int  `mapstructure:"patternCacheSize" yaml:"patternCacheSize" json:"patternCacheSize"`
}

// WatchConfig controls the watch command.
type WatchConfig struct {
	// Debounce is the quiet period after a change before re-bundling
	Debounce time.Duration `mapstructure:"debounce" yaml:"debounce" json:"debounce"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Include: []string{"**/*.yaml", "**/*.yml", "**/*.json"},
		Exclude: []string{".git/**", "node_modules/**", "**/testdata/**"},
		Format:  FormatYAML,
		Limits: LimitsConfig{
			MaxFiles:    parser.DefaultMaxFiles,
			MaxFileSize: parser.DefaultMaxFileSize,
			MaxNodes:    bundler.DefaultMaxNodes,
		},
		Contract: ContractConfig{PatternCacheSize: contract.DefaultPatternCacheSize},
		Watch:    WatchConfig{Debounce: 300 * time.Millisecond},
	}
}

// setDefaults mirrors Default so that every key is known to viper, which
// AutomaticEnv needs to bind environment variables during Unmarshal.
func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("include", d.Include)
	v.SetDefault("exclude", d.Exclude)
	v.SetDefault("root", d.Root)
	v.SetDefault("format", d.Format)
	v.SetDefault("verbose", d.Verbose)
	v.SetDefault("limits.maxFiles", d.Limits.MaxFiles)
	v.SetDefault("limits.maxFileSize", d.Limits.MaxFileSize)
	v.SetDefault("limits.maxNodes", d.Limits.MaxNodes)
	v.SetDefault("bundle.verify", d.Bundle.Verify)
	v.SetDefault("contract.strict", d.Contract.Strict)
	v.SetDefault("contract.showMissingInSchemaErrors", d.Contract.ShowMissingInSchemaErrors)
	v.SetDefault("contract.ignoreUnresolvedVariables", d.Contract.IgnoreUnresolvedVariables)
	v.SetDefault("contract.suggestAvailableFixes", d.Contract.SuggestAvailableFixes)
	v.SetDefault("contract.detailedBlobValidation", d.Contract.DetailedBlobValidation)
	v.SetDefault("contract.patternCacheSize", d.Contract.PatternCacheSize)
	v.SetDefault("watch.debounce", d.Watch.Debounce)
}

// Source says where Load reads from.
type Source struct {
	// File is an explicit config file. When empty, Dir is searched for
	// oasweave.yaml and its variants; a missing file is not an error.
	File string
	// Dir is the directory searched for config and .env files
	Dir string
	// EnvFile is loaded into the process environment before reading
	// variables. Defaults to Dir/.env; a missing file is ignored.
	EnvFile string
	// Overrides are applied last, keyed like the config file
	// ("contract.strict")
	Overrides map[string]any
}

// Load reads the configuration described by src and validates it.
func Load(src Source) (*Config, error) {
	envFile := src.EnvFile
	if envFile == "" {
		envFile = filepath.Join(src.Dir, ".env")
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: loading %s: %w", envFile, err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	file := src.File
	if file == "" {
		file = findConfigFile(src.Dir)
	}
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", file, err)
		}
	}
	for key, val := range src.Overrides {
		v.Set(key, val)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decoding: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func findConfigFile(dir string) string {
	for _, name := range configFileNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch {
	case !slices.Contains([]string{FormatYAML, FormatJSON}, c.Format):
		return &oaserrors.ConfigError{Option: "format", Value: c.Format, Message: "must be yaml or json"}
	case len(c.Include) == 0:
		return &oaserrors.ConfigError{Option: "include", Message: "at least one pattern is required"}
	case c.Limits.MaxFiles <= 0:
		return &oaserrors.ConfigError{Option: "limits.maxFiles", Value: c.Limits.MaxFiles, Message: "must be positive"}
	case c.Limits.MaxFileSize <= 0:
		return &oaserrors.ConfigError{Option: "limits.maxFileSize", Value: c.Limits.MaxFileSize, Message: "must be positive"}
	case c.Limits.MaxNodes <= 0:
		return &oaserrors.ConfigError{Option: "limits.maxNodes", Value: c.Limits.MaxNodes, Message: "must be positive"}
	case c.Contract.PatternCacheSize <= 0:
		return &oaserrors.ConfigError{Option: "contract.patternCacheSize", Value: c.Contract.PatternCacheSize, Message: "must be positive"}
	case c.Watch.Debounce < 0:
		return &oaserrors.ConfigError{Option: "watch.debounce", Value: c.Watch.Debounce, Message: "must not be negative"}
	}
	return nil
}

// ParserOptions returns the file set options for this configuration.
func (c *Config) ParserOptions(l parser.Logger) []parser.Option {
	opts := []parser.Option{
		parser.WithLogger(l),
		parser.WithMaxFiles(c.Limits.MaxFiles),
		parser.WithMaxFileSize(c.Limits.MaxFileSize),
	}
	if c.Root != "" {
		opts = append(opts, parser.WithRootHints(c.Root))
	}
	return opts
}

// BundlerOptions returns the bundler options for this configuration.
func (c *Config) BundlerOptions(l parser.Logger) []bundler.Option {
	return []bundler.Option{
		bundler.WithLogger(l),
		bundler.WithVerify(c.Bundle.Verify),
		bundler.WithMaxNodes(c.Limits.MaxNodes),
	}
}

// ContractOptions returns the validator options for this configuration.
// The document source is added by the caller.
func (c *Config) ContractOptions(l parser.Logger) []contract.Option {
	return []contract.Option{contract.WithConfig(contract.Config{
		StrictRequestMatching:     c.Contract.Strict,
		ShowMissingInSchemaErrors: c.Contract.ShowMissingInSchemaErrors,
		IgnoreUnresolvedVariables: c.Contract.IgnoreUnresolvedVariables,
		SuggestAvailableFixes:     c.Contract.SuggestAvailableFixes,
		DetailedBlobValidation:    c.Contract.DetailedBlobValidation,
		Logger:                    l,
		PatternCacheSize:          c.Contract.PatternCacheSize,
	})}
}
