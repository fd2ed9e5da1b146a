package decoder

import "log/slog"

// Network address prefixes
const (
	PrefixMainnet = "bitcoincash"
	PrefixTestnet = "bchtest"
	PrefixRegtest = "bchreg"
)

// ParserConfig represents the parser configuration
type ParserConfig struct {
	// Evaluator runs parsing programs. Parse fails without one.
	Evaluator Evaluator

	// Logger receives diagnostics for soft failures, slog.Default() if nil
	Logger *slog.Logger
}

// DefaultConfig returns the default configuration
func DefaultConfig() *ParserConfig {
	return &ParserConfig{
		Evaluator: nil, // Supplied by the host application
		Logger:    slog.Default(),
	}
}

// NewConfigWithEvaluator creates a configuration with the specified evaluator
func NewConfigWithEvaluator(evaluator Evaluator) *ParserConfig {
	return &ParserConfig{
		Evaluator: evaluator,
		Logger:    slog.Default(),
	}
}

// NewConfigWithLogger creates a complete configuration with evaluator and logger
func NewConfigWithLogger(evaluator Evaluator, logger *slog.Logger) *ParserConfig {
	if logger == nil {
		logger = slog.Default()
	}
	return &ParserConfig{
		Evaluator: evaluator,
		Logger:    logger,
	}
}

// Log returns the configured logger or the default one
func (c *ParserConfig) Log() *slog.Logger {
	if c == nil || c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

// IsKnownPrefix reports whether prefix is one of the CashAddress network prefixes
func IsKnownPrefix(prefix string) bool {
	switch prefix {
	case PrefixMainnet, PrefixTestnet, PrefixRegtest:
		return true
	}
	return false
}
