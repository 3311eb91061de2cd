// Package native implements the increment entry point exported by
// libffibridge. It has no cgo dependency so it can be tested and embedded
// directly; bindings/jni adapts it to the C and JNI calling conventions.
package native

import (
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
)

// DefaultGreeting is the first diagnostic line written on every call.
const DefaultGreeting = "Hello, world! from go"

// EntryPoint is the stateless increment routine together with the stream its
// diagnostics go to. The zero value is not usable; call New.
type EntryPoint struct {
	out      io.Writer
	policy   OverflowPolicy
	greeting string
	quiet    bool
	logger   *slog.Logger
}

// Option configures an EntryPoint.
type Option func(*EntryPoint)

// WithOutput sets the diagnostic stream. Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(e *EntryPoint) { e.out = w }
}

// WithPolicy sets the overflow policy applied at math.MaxInt32. Defaults to
// Wrap.
func WithPolicy(p OverflowPolicy) Option {
	return func(e *EntryPoint) { e.policy = p }
}

// WithGreeting replaces the first diagnostic line. Defaults to
// DefaultGreeting.
func WithGreeting(s string) Option {
	return func(e *EntryPoint) { e.greeting = s }
}

// WithQuiet suppresses the diagnostic lines.
func WithQuiet(quiet bool) Option {
	return func(e *EntryPoint) { e.quiet = quiet }
}

// WithLogger sets the logger overflow events are reported to. Defaults to
// slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *EntryPoint) { e.logger = l }
}

// New returns an EntryPoint with the wraparound policy unless overridden.
func New(opts ...Option) *EntryPoint {
	e := &EntryPoint{
		out:      os.Stdout,
		policy:   Wrap,
		greeting: DefaultGreeting,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.out == nil {
		e.out = io.Discard
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// Policy reports the overflow policy in effect.
func (e *EntryPoint) Policy() OverflowPolicy {
	return e.policy
}

// Logger returns the logger the entry point reports to.
func (e *EntryPoint) Logger() *slog.Logger {
	return e.logger
}

// Call writes the greeting and the input to the diagnostic stream, then
// returns x+1. Write errors are ignored.
func (e *EntryPoint) Call(x int32) (int32, error) {
	if !e.quiet {
		e.writeDiagnostics(x)
	}

	result, err := Increment(x, e.policy)
	if err != nil {
		e.logger.Warn("increment failed", "arg", x, "policy", e.policy, "error", err)
		return result, err
	}
	if x == math.MaxInt32 {
		e.logger.Debug("increment overflowed", "arg", x, "result", result, "policy", e.policy)
	}
	return result, nil
}

func (e *EntryPoint) writeDiagnostics(x int32) {
	// One buffer per line so each line reaches the stream in a single write.
	line := make([]byte, 0, len(e.greeting)+1)
	line = append(line, e.greeting...)
	line = append(line, '\n')
	_, _ = e.out.Write(line)

	line = line[:0]
	line = append(line, "arg1: "...)
	line = strconv.AppendInt(line, int64(x), 10)
	line = append(line, '\n')
	_, _ = e.out.Write(line)
}
