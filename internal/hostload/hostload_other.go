//go:build !linux && !darwin

package hostload

import "github.com/tinyrange/ffibridge/internal/native"

// Library is an open libffibridge. Not available on this platform.
type Library struct{}

func Open(path string) (*Library, error) {
	return nil, ErrUnsupported
}

func (l *Library) Path() string                                   { return "" }
func (l *Library) Close() error                                   { return nil }
func (l *Library) JNI(symbol string) (JNIFunc, error)             { return nil, ErrUnsupported }
func (l *Library) JNIWithEnv(symbol string) (JNIEnvFunc, error)   { return nil, ErrUnsupported }
func (l *Library) Increment(x int32) (int32, error)               { return 0, ErrUnsupported }
func (l *Library) IncrementChecked(x int32) (int32, error)        { return 0, ErrUnsupported }
func (l *Library) OverflowPolicy() (native.OverflowPolicy, error) { return 0, ErrUnsupported }
func (l *Library) Version() (string, error)                       { return "", ErrUnsupported }
func (l *Library) APICompatible(major, minor int32) (bool, error) { return false, ErrUnsupported }
