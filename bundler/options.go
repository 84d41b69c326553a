package bundler

import (
	"github.com/erraggy/oasweave/oaserrors"
	"github.com/erraggy/oasweave/parser"
)

// DefaultMaxNodes bounds the number of nodes a single bundle may visit.
const DefaultMaxNodes = 5_000_000

// Option is a functional option for configuring a bundle operation.
type Option func(*config) error

type config struct {
	logger     parser.Logger
	verify     bool
	maxNodes   int
	classifier Classifier
}

func applyOptions(opts ...Option) (*config, error) {
	cfg := &config{
		logger:   parser.NopLogger{},
		maxNodes: DefaultMaxNodes,
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// WithLogger sets the logger for relocation and cycle diagnostics.
func WithLogger(l parser.Logger) Option {
	return func(c *config) error {
		c.logger = parser.LoggerOrNop(l)
		return nil
	}
}

// WithVerify loads bundled OAS 3.0 output with kin-openapi and reports
// validation problems as warnings.
func WithVerify(verify bool) Option {
	return func(c *config) error {
		c.verify = verify
		return nil
	}
}

// WithMaxNodes bounds the number of nodes visited during one bundle.
// Exceeding it fails the bundle with a resource limit reason.
func WithMaxNodes(n int) Option {
	return func(c *config) error {
		if n <= 0 {
			return &oaserrors.ConfigError{Option: "max-nodes", Value: n, Message: "must be positive"}
		}
		c.maxNodes = n
		return nil
	}
}

// WithClassifier overrides the classifier selected from the root document's
// version.
func WithClassifier(cl Classifier) Option {
	return func(c *config) error {
		if cl == nil {
			return &oaserrors.ConfigError{Option: "classifier", Message: "classifier cannot be nil"}
		}
		c.classifier = cl
		return nil
	}
}
