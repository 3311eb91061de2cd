// Package ffibridge is the Go side of libffibridge, a native library that a
// JVM binds to through JNI. The entry point prints two diagnostic lines and
// returns its argument plus one; embedding it directly in Go gives the same
// behavior without crossing a foreign-function boundary.
package ffibridge

import (
	"github.com/tinyrange/ffibridge/internal/native"
)

// -----------------------------------------------------------------------------
// Type Aliases - These re-export types from internal/native
// -----------------------------------------------------------------------------

// EntryPoint is the increment routine exported by libffibridge.
type EntryPoint = native.EntryPoint

// Option configures an EntryPoint.
type Option = native.Option

// OverflowPolicy selects the result of incrementing math.MaxInt32.
type OverflowPolicy = native.OverflowPolicy

// Error represents an entry point failure with structured information.
type Error = native.Error

// Overflow policies. Wrap is the default.
const (
	Wrap     = native.Wrap
	Saturate = native.Saturate
	Fault    = native.Fault
)

// Common sentinel errors.
var (
	ErrOverflow      = native.ErrOverflow
	ErrInvalidPolicy = native.ErrInvalidPolicy
)

// DefaultGreeting is the first diagnostic line of every call.
const DefaultGreeting = native.DefaultGreeting

// -----------------------------------------------------------------------------
// Constructors and options
// -----------------------------------------------------------------------------

// New returns an EntryPoint writing diagnostics to os.Stdout with the
// wraparound overflow policy.
func New(opts ...Option) *EntryPoint { return native.New(opts...) }

// WithOutput sets the diagnostic stream. Defaults to os.Stdout.
var WithOutput = native.WithOutput

// WithPolicy sets the overflow policy applied at math.MaxInt32. Defaults to
// Wrap.
var WithPolicy = native.WithPolicy

// WithGreeting replaces the first diagnostic line. Defaults to
// DefaultGreeting.
var WithGreeting = native.WithGreeting

// WithQuiet suppresses the diagnostic lines.
var WithQuiet = native.WithQuiet

// WithLogger sets the logger overflow events are reported to. Defaults to
// slog.Default().
var WithLogger = native.WithLogger

// ParseOverflowPolicy parses "wrap", "saturate" or "fault".
func ParseOverflowPolicy(s string) (OverflowPolicy, error) {
	return native.ParseOverflowPolicy(s)
}

// Increment returns x+1 under the given policy without any diagnostics.
func Increment(x int32, p OverflowPolicy) (int32, error) {
	return native.Increment(x, p)
}
