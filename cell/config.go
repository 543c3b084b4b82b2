package cell

import (
	"fmt"

	"go.starlark.net/starlark"

	"github.com/reactivekit/starcell/capture"
)

// Logger is an optional interface for observability during execution.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: logging is best-effort; Logf must not panic.
type Logger interface {
	// Logf logs a formatted message.
	Logf(format string, args ...any)
}

// Config holds the configuration for an Executor.
type Config struct {
	// Globals is the shared namespace cells read from and bind into.
	// The executor mutates it in place and never replaces it.
	// Required.
	Globals starlark.StringDict

	// Renderer renders captured failures into stderr text.
	// Defaults to Plain.
	Renderer TracebackRenderer

	// OnDisplay receives every value a cell designates for display,
	// including values of trailing bare expressions that bind nothing.
	// Optional.
	OnDisplay capture.Handler

	// Logger is an optional logger for observability.
	Logger Logger
}

// validate checks that required fields are set.
func (c *Config) validate() error {
	if c.Globals == nil {
		return fmt.Errorf("%w: Globals is required", ErrConfiguration)
	}
	return nil
}

// applyDefaults sets default values for optional fields.
func (c *Config) applyDefaults() {
	if c.Renderer == nil {
		c.Renderer = Plain{}
	}
}
