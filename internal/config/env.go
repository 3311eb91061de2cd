// Package config resolves libffibridge settings from the environment and the
// harness configuration file.
package config

import (
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/tinyrange/ffibridge/internal/native"
)

const (
	EnvOverflow = "FFIBRIDGE_OVERFLOW"
	EnvDebug    = "FFIBRIDGE_DEBUG"
	EnvQuiet    = "FFIBRIDGE_QUIET"
)

// Env holds the settings the shared library reads from its host process.
type Env struct {
	Overflow native.OverflowPolicy
	Debug    bool
	Quiet    bool
}

var (
	envOnce sync.Once
	envVal  Env
)

// FromEnv returns the process-wide settings. The environment is read on the
// first call only:
//   - FFIBRIDGE_OVERFLOW=wrap|saturate|fault selects the overflow policy
//     (default wrap; unknown values fall back to wrap with a warning)
//   - FFIBRIDGE_DEBUG=1 enables debug logging on stderr
//   - FFIBRIDGE_QUIET=1 suppresses the diagnostic lines on stdout
func FromEnv() Env {
	envOnce.Do(func() {
		envVal = parseEnv(os.Getenv)
	})
	return envVal
}

// ResetEnv clears the cached settings. This is only for testing.
func ResetEnv() {
	envOnce = sync.Once{}
	envVal = Env{}
}

func parseEnv(getenv func(string) string) Env {
	var env Env

	if v := getenv(EnvOverflow); v != "" {
		p, err := native.ParseOverflowPolicy(v)
		if err != nil {
			slog.Warn("ignoring overflow policy", "env", EnvOverflow, "error", err)
		}
		env.Overflow = p
	}
	env.Debug = parseBool(getenv(EnvDebug))
	env.Quiet = parseBool(getenv(EnvQuiet))

	return env
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
