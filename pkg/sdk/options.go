package barcodex

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	workDir     string
	concurrency int
	maxCodes    int
	noFallback  bool

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithWorkDir sets the directory that holds transient batch and preview files.
// Defaults to <os.TempDir()>/barcodex.
func WithWorkDir(dir string) Option {
	return optionFunc(func(c *clientConfig) {
		c.workDir = dir
	})
}

// WithConcurrency limits how many codes of one batch render at once.
// Defaults to twice the number of CPUs.
func WithConcurrency(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.concurrency = n
	})
}

// WithMaxCodes sets the maximum number of codes per Generate call.
// Default: 1000.
func WithMaxCodes(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxCodes = n
	})
}

// WithoutFallback disables the generic Code 128 PNG fallback, so a failed
// primary PNG render is reported as an error.
func WithoutFallback() Option {
	return optionFunc(func(c *clientConfig) {
		c.noFallback = true
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
