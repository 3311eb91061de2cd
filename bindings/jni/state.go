package main

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/mod/semver"

	"github.com/tinyrange/ffibridge/internal/config"
	"github.com/tinyrange/ffibridge/internal/native"
)

const defaultAPIVersion = "0.1.0"

// apiVersionStr is stamped at link time with
// -ldflags "-X main.apiVersionStr=<version>".
var apiVersionStr = defaultAPIVersion

type apiVersionInfo struct {
	String       string
	Major, Minor int
}

var (
	apiVersionOnce sync.Once
	apiVersionVal  apiVersionInfo
)

// apiVersion returns the parsed link-time version. Stamps that are not
// semantic versions (untagged builds, "dev") fall back to the default.
func apiVersion() apiVersionInfo {
	apiVersionOnce.Do(func() {
		info, ok := parseAPIVersion(apiVersionStr)
		if !ok {
			info, _ = parseAPIVersion(defaultAPIVersion)
		}
		apiVersionVal = info
	})
	return apiVersionVal
}

func parseAPIVersion(s string) (apiVersionInfo, bool) {
	v := s
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return apiVersionInfo{}, false
	}

	major, minor, ok := strings.Cut(strings.TrimPrefix(semver.MajorMinor(v), "v"), ".")
	if !ok {
		return apiVersionInfo{}, false
	}
	mjr, err := strconv.Atoi(major)
	if err != nil {
		return apiVersionInfo{}, false
	}
	mnr, err := strconv.Atoi(minor)
	if err != nil {
		return apiVersionInfo{}, false
	}

	return apiVersionInfo{
		String: strings.TrimPrefix(semver.Canonical(v), "v"),
		Major:  mjr,
		Minor:  mnr,
	}, true
}

// jniBinding ties an exported symbol to the Java method that links to it.
type jniBinding struct {
	Class  string
	Method string
	Symbol string
}

// jniBindings lists every //export JNI entry point in this package.
var jniBindings = []jniBinding{
	{
		Class:  "dev.tinyrange.ffibridge.NativeBridge",
		Method: "increment",
		Symbol: "Java_dev_tinyrange_ffibridge_NativeBridge_increment",
	},
	{
		Class:  "JavaClass",
		Method: "rust_implementation",
		Symbol: "Java_JavaClass_rust_1implementation",
	},
}

// errorCode mirrors ffi_error_code in the C preamble.
type errorCode int32

const (
	codeOK              errorCode = 0
	codeInvalidArgument errorCode = 2
	codeOverflow        errorCode = 10
	codeUnknown         errorCode = 99
)

var errInvalidArgument = errors.New("invalid argument")

func codeFor(err error) errorCode {
	switch {
	case err == nil:
		return codeOK
	case errors.Is(err, native.ErrOverflow):
		return codeOverflow
	case errors.Is(err, errInvalidArgument), errors.Is(err, native.ErrInvalidPolicy):
		return codeInvalidArgument
	default:
		return codeUnknown
	}
}

// errorOp extracts the failing operation name, if the error carries one.
func errorOp(err error) string {
	var nerr *native.Error
	if errors.As(err, &nerr) {
		return nerr.Op
	}
	return ""
}

var (
	entryOnce sync.Once
	entry     *native.EntryPoint
)

// entryPoint returns the process-wide entry point, configured from the host
// environment on first use.
func entryPoint() *native.EntryPoint {
	entryOnce.Do(func() {
		entry = newEntryPoint(config.FromEnv(), os.Stdout, os.Stderr)
	})
	return entry
}

func newEntryPoint(env config.Env, stdout, stderr io.Writer) *native.EntryPoint {
	level := slog.LevelWarn
	if env.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})).
		With("lib", "ffibridge")

	logger.Debug("entry point configured",
		"version", apiVersion().String,
		"overflow", env.Overflow,
		"quiet", env.Quiet,
	)

	return native.New(
		native.WithOutput(stdout),
		native.WithPolicy(env.Overflow),
		native.WithQuiet(env.Quiet),
		native.WithLogger(logger),
	)
}

// increment is the shared body of every exported entry point. On error the
// returned value is 0.
func increment(x int32) (int32, error) {
	result, err := entryPoint().Call(x)
	if err != nil {
		return 0, err
	}
	return result, nil
}

func apiCompatible(major, minor int) bool {
	// Compatible if major matches and requested minor <= ours.
	v := apiVersion()
	return major == v.Major && minor <= v.Minor
}

func main() {}
