package parser

import (
	"fmt"

	"github.com/erraggy/oasweave/oaserrors"
)

// Default resource limits for a file set.
const (
	DefaultMaxFileSize int64 = 10 << 20
	DefaultMaxFiles          = 1000
)

// Option is a function that configures how a file set is built.
type Option func(*setConfig) error

// setConfig holds configuration for building a file set
type setConfig struct {
	rootHints   []string
	logger      Logger
	maxFileSize int64
	maxFiles    int
}

func applyOptions(opts ...Option) (*setConfig, error) {
	cfg := &setConfig{
		logger:      NopLogger{},
		maxFileSize: DefaultMaxFileSize,
		maxFiles:    DefaultMaxFiles,
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// WithRootHints declares which file is the entry point of the set.
// More than one hint makes root detection fail with a multiple-roots reason.
func WithRootHints(names ...string) Option {
	return func(cfg *setConfig) error {
		for _, n := range names {
			if n == "" {
				return &oaserrors.ConfigError{Option: "root-hint", Message: "root hint cannot be empty"}
			}
			cfg.rootHints = append(cfg.rootHints, CleanName(n))
		}
		return nil
	}
}

// WithLogger sets the logger used while decoding files.
func WithLogger(l Logger) Option {
	return func(cfg *setConfig) error {
		cfg.logger = LoggerOrNop(l)
		return nil
	}
}

// WithMaxFileSize caps the size of a single file in bytes.
// A non-positive value restores the default.
func WithMaxFileSize(n int64) Option {
	return func(cfg *setConfig) error {
		if n <= 0 {
			n = DefaultMaxFileSize
		}
		cfg.maxFileSize = n
		return nil
	}
}

// WithMaxFiles caps the number of files in a set.
// A non-positive value restores the default.
func WithMaxFiles(n int) Option {
	return func(cfg *setConfig) error {
		if n <= 0 {
			n = DefaultMaxFiles
		}
		if n > 100_000 {
			return fmt.Errorf("parser: max files %d is unreasonably large", n)
		}
		cfg.maxFiles = n
		return nil
	}
}
