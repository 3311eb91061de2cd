// Package hostload opens a built libffibridge and calls its exports the way
// a managed runtime would, without needing a JVM.
package hostload

import (
	"errors"
	"fmt"
	"strings"
	"unsafe"

	"golang.org/x/mod/semver"

	"github.com/tinyrange/ffibridge/internal/native"
)

var (
	ErrUnsupported = errors.New("dynamic loading not supported on this platform")
	ErrClosed      = errors.New("library closed")
)

// Error codes returned by ffibridge_increment_checked.
const (
	codeOK              = 0
	codeInvalidArgument = 2
	codeOverflow        = 10
)

// cError matches the C ffi_error struct.
type cError struct {
	Code    int32
	Message uintptr
	Op      uintptr
}

// CallError is returned when the library reports a non-zero error code.
type CallError struct {
	Code    int32
	Op      string
	Message string
}

func (e *CallError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("ffibridge error %d (%s): %s", e.Code, e.Op, e.Message)
	}
	return fmt.Sprintf("ffibridge error %d: %s", e.Code, e.Message)
}

// Unwrap maps library error codes back onto the Go sentinels.
func (e *CallError) Unwrap() error {
	switch e.Code {
	case codeOverflow:
		return native.ErrOverflow
	default:
		return nil
	}
}

// JNIFunc is a bound JNI entry point called with NULL JNIEnv and jclass.
type JNIFunc func(arg int32) (int32, error)

// JNIEnvFunc is a bound JNI entry point taking (JNIEnv*, jclass, jint).
type JNIEnvFunc func(env, clazz uintptr, arg int32) (int32, error)

// Compatible reports whether version satisfies required: same major version
// and not older. Both accept an optional leading "v".
func Compatible(version, required string) bool {
	v, r := canonical(version), canonical(required)
	if !semver.IsValid(v) || !semver.IsValid(r) {
		return false
	}
	// Untagged builds stamp "git describe" output such as v0.1.0-3-gabc1234,
	// which semver orders before v0.1.0.
	v = strings.TrimSuffix(semver.Canonical(v), semver.Prerelease(v))
	return semver.Major(v) == semver.Major(r) && semver.Compare(v, r) >= 0
}

func canonical(v string) string {
	v = strings.TrimSpace(v)
	if v != "" && !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}

// goString copies a NUL-terminated C string.
func goString(ptr uintptr) string {
	if ptr == 0 {
		return ""
	}
	var b []byte
	for i := uintptr(0); ; i++ {
		c := *(*byte)(unsafe.Pointer(ptr + i))
		if c == 0 {
			break
		}
		b = append(b, c)
	}
	return string(b)
}
