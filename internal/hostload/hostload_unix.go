//go:build linux || darwin

package hostload

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/ebitengine/purego"

	"github.com/tinyrange/ffibridge/internal/native"
)

// Library is an open libffibridge.
type Library struct {
	path   string
	handle uintptr

	mu     sync.Mutex
	closed bool

	increment        func(int32) int32
	incrementChecked func(int32, *int32, *cError) int32
	apiVersion       func() uintptr
	apiCompatible    func(int32, int32) bool
	overflowPolicy   func() int32
	freeString       func(uintptr)
	errorFree        func(*cError)
}

// Open loads the shared library at path and binds its C exports.
func Open(path string) (lib *Library, err error) {
	handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, fmt.Errorf("dlopen %s: %w", path, err)
	}

	// RegisterLibFunc panics on a missing symbol.
	defer func() {
		if r := recover(); r != nil {
			purego.Dlclose(handle)
			lib = nil
			err = fmt.Errorf("bind %s: %v", path, r)
		}
	}()

	l := &Library{path: path, handle: handle}
	purego.RegisterLibFunc(&l.increment, handle, "ffibridge_increment")
	purego.RegisterLibFunc(&l.incrementChecked, handle, "ffibridge_increment_checked")
	purego.RegisterLibFunc(&l.apiVersion, handle, "ffibridge_api_version")
	purego.RegisterLibFunc(&l.apiCompatible, handle, "ffibridge_api_version_compatible")
	purego.RegisterLibFunc(&l.overflowPolicy, handle, "ffibridge_overflow_policy")
	purego.RegisterLibFunc(&l.freeString, handle, "ffibridge_free_string")
	purego.RegisterLibFunc(&l.errorFree, handle, "ffibridge_error_free")

	slog.Debug("library loaded", "path", path)
	return l, nil
}

// Path returns the path the library was opened from.
func (l *Library) Path() string {
	return l.path
}

// Close unloads the library. Calls made through it, or through functions
// bound from it, return ErrClosed afterwards.
func (l *Library) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true
	if err := purego.Dlclose(l.handle); err != nil {
		return fmt.Errorf("dlclose %s: %w", l.path, err)
	}
	return nil
}

func (l *Library) checkOpen() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrClosed
	}
	return nil
}

// JNI binds a JNI entry point by symbol name. The returned function passes
// NULL for the JNIEnv and jclass handles, so the library cannot raise Java
// exceptions through it.
func (l *Library) JNI(symbol string) (JNIFunc, error) {
	fn, err := l.JNIWithEnv(symbol)
	if err != nil {
		return nil, err
	}
	return func(arg int32) (int32, error) {
		return fn(0, 0, arg)
	}, nil
}

// JNIWithEnv binds a JNI entry point whose JNIEnv and jclass handles are
// supplied by the caller.
func (l *Library) JNIWithEnv(symbol string) (JNIEnvFunc, error) {
	if err := l.checkOpen(); err != nil {
		return nil, err
	}

	sym, err := purego.Dlsym(l.handle, symbol)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", symbol, err)
	}

	var fn func(env, clazz uintptr, arg int32) int32
	purego.RegisterFunc(&fn, sym)

	return func(env, clazz uintptr, arg int32) (int32, error) {
		if err := l.checkOpen(); err != nil {
			return 0, err
		}
		return fn(env, clazz, arg), nil
	}, nil
}

// Increment calls ffibridge_increment.
func (l *Library) Increment(x int32) (int32, error) {
	if err := l.checkOpen(); err != nil {
		return 0, err
	}
	return l.increment(x), nil
}

// IncrementChecked calls ffibridge_increment_checked and converts a reported
// fault into a *CallError.
func (l *Library) IncrementChecked(x int32) (int32, error) {
	if err := l.checkOpen(); err != nil {
		return 0, err
	}

	var out int32
	var cerr cError

	code := l.incrementChecked(x, &out, &cerr)
	if code == codeOK {
		return out, nil
	}
	return 0, l.takeError(code, &cerr)
}

// takeError copies a reported ffi_error into a *CallError and releases it.
func (l *Library) takeError(code int32, cerr *cError) error {
	err := &CallError{
		Code:    code,
		Op:      goString(cerr.Op),
		Message: goString(cerr.Message),
	}
	l.errorFree(cerr)
	return err
}

// OverflowPolicy returns the policy the library resolved from its
// environment.
func (l *Library) OverflowPolicy() (native.OverflowPolicy, error) {
	if err := l.checkOpen(); err != nil {
		return 0, err
	}
	return native.OverflowPolicy(l.overflowPolicy()), nil
}

// Version returns the library's API version string.
func (l *Library) Version() (string, error) {
	if err := l.checkOpen(); err != nil {
		return "", err
	}

	ptr := l.apiVersion()
	if ptr == 0 {
		return "", fmt.Errorf("ffibridge_api_version returned NULL")
	}
	defer l.freeString(ptr)
	return goString(ptr), nil
}

// APICompatible asks the library whether it serves the given API level.
func (l *Library) APICompatible(major, minor int32) (bool, error) {
	if err := l.checkOpen(); err != nil {
		return false, err
	}
	return l.apiCompatible(major, minor), nil
}
