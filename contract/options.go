package contract

import (
	"github.com/erraggy/oasweave/bundler"
	"github.com/erraggy/oasweave/oaserrors"
	"github.com/erraggy/oasweave/parser"
)

// DefaultPatternCacheSize bounds the compiled pattern cache of one validator.
const DefaultPatternCacheSize = 256

// ExampleFunc derives a value for a schema. It backs suggested fixes and
// returns false when it cannot produce a value.
type ExampleFunc func(schema map[string]any) (any, bool)

// Config enumerates every recognized validation option. It is built once
// per validator and passed through every comparison.
type Config struct {
	// StrictRequestMatching rejects a candidate operation when one of its
	// variable segments would absorb a value that is a fixed literal at the
	// same position in another template of the same method.
	StrictRequestMatching bool
	// ShowMissingInSchemaErrors reports payload properties, query parameters
	// and bodies the schema does not declare. Properties rejected by
	// additionalProperties: false are always reported.
	ShowMissingInSchemaErrors bool
	// IgnoreUnresolvedVariables skips values that are still "{{variable}}"
	// placeholders instead of reporting them.
	IgnoreUnresolvedVariables bool
	// SuggestAvailableFixes attaches a suggested value to mismatches.
	SuggestAvailableFixes bool
	// DetailedBlobValidation compares bodies recursively. When false, bodies
	// are checked for presence, root type and top-level required properties.
	DetailedBlobValidation bool

	// Logger receives match diagnostics. Defaults to a no-op logger.
	Logger parser.Logger
	// ExampleFunc produces suggested values. Defaults to DefaultExample.
	ExampleFunc ExampleFunc
	// PatternCacheSize bounds the compiled "pattern" cache.
	PatternCacheSize int
}

// Option is a functional option for configuring a Validator.
type Option func(*config) error

type config struct {
	Config

	// document source, exactly one is set
	doc     map[string]any
	bundle  *bundler.Result
	fileSet *parser.FileSet
}

func applyOptions(opts ...Option) (*config, error) {
	cfg := &config{Config: Config{PatternCacheSize: DefaultPatternCacheSize}}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	cfg.Logger = parser.LoggerOrNop(cfg.Logger)
	if cfg.ExampleFunc == nil {
		cfg.ExampleFunc = DefaultExample
	}
	return cfg, nil
}

// WithDocument validates against an already bundled document.
func WithDocument(doc map[string]any) Option {
	return func(c *config) error {
		if doc == nil {
			return &oaserrors.ConfigError{Option: "document", Message: "document cannot be nil"}
		}
		c.doc = doc
		return nil
	}
}

// WithBundleResult validates against the output of bundler.Bundle.
func WithBundleResult(res *bundler.Result) Option {
	return func(c *config) error {
		if res == nil {
			return &oaserrors.ConfigError{Option: "bundle", Message: "bundle result cannot be nil"}
		}
		c.bundle = res
		return nil
	}
}

// WithFileSet bundles fs and validates against the result.
func WithFileSet(fs *parser.FileSet) Option {
	return func(c *config) error {
		if fs == nil {
			return &oaserrors.ConfigError{Option: "file-set", Message: "file set cannot be nil"}
		}
		c.fileSet = fs
		return nil
	}
}

// WithConfig replaces all behavior settings at once. Zero-valued Logger,
// ExampleFunc and PatternCacheSize fall back to their defaults.
func WithConfig(cfg Config) Option {
	return func(c *config) error {
		if cfg.PatternCacheSize == 0 {
			cfg.PatternCacheSize = DefaultPatternCacheSize
		}
		if cfg.PatternCacheSize < 0 {
			return &oaserrors.ConfigError{Option: "pattern-cache-size", Value: cfg.PatternCacheSize, Message: "must be positive"}
		}
		c.Config = cfg
		return nil
	}
}

// WithStrictRequestMatching sets Config.StrictRequestMatching.
func WithStrictRequestMatching(strict bool) Option {
	return func(c *config) error {
		c.StrictRequestMatching = strict
		return nil
	}
}

// WithShowMissingInSchemaErrors sets Config.ShowMissingInSchemaErrors.
func WithShowMissingInSchemaErrors(show bool) Option {
	return func(c *config) error {
		c.ShowMissingInSchemaErrors = show
		return nil
	}
}

// WithIgnoreUnresolvedVariables sets Config.IgnoreUnresolvedVariables.
func WithIgnoreUnresolvedVariables(ignore bool) Option {
	return func(c *config) error {
		c.IgnoreUnresolvedVariables = ignore
		return nil
	}
}

// WithSuggestAvailableFixes sets Config.SuggestAvailableFixes.
func WithSuggestAvailableFixes(suggest bool) Option {
	return func(c *config) error {
		c.SuggestAvailableFixes = suggest
		return nil
	}
}

// WithDetailedBlobValidation sets Config.DetailedBlobValidation.
func WithDetailedBlobValidation(detailed bool) Option {
	return func(c *config) error {
		c.DetailedBlobValidation = detailed
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(l parser.Logger) Option {
	return func(c *config) error {
		c.Logger = l
		return nil
	}
}

// WithExampleFunc sets the generator used for suggested fixes.
func WithExampleFunc(fn ExampleFunc) Option {
	return func(c *config) error {
		c.ExampleFunc = fn
		return nil
	}
}

// WithPatternCacheSize bounds the number of compiled patterns kept.
func WithPatternCacheSize(n int) Option {
	return func(c *config) error {
		if n <= 0 {
			return &oaserrors.ConfigError{Option: "pattern-cache-size", Value: n, Message: "must be positive"}
		}
		c.PatternCacheSize = n
		return nil
	}
}
