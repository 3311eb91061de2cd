//go:build !cgo
// +build !cgo

package main

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/tinyrange/ffibridge/internal/config"
	"github.com/tinyrange/ffibridge/internal/jnimangle"
	"github.com/tinyrange/ffibridge/internal/native"
)

// TestJNIBindingNames checks each binding's symbol against the JNI short name.
func TestJNIBindingNames(t *testing.T) {
	for _, b := range jniBindings {
		if got := jnimangle.ShortName(b.Class, b.Method); got != b.Symbol {
			t.Errorf("%s.%s: symbol %q, JNI expects %q", b.Class, b.Method, b.Symbol, got)
		}
	}
}

// TestExportedSymbols verifies that every binding is actually exported by
// libffibridge.go and that no JNI export is missing from jniBindings.
func TestExportedSymbols(t *testing.T) {
	f, err := os.Open("libffibridge.go")
	if err != nil {
		t.Fatalf("open libffibridge.go: %v", err)
	}
	defer f.Close()

	exported := make(map[string]bool)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if name, ok := strings.CutPrefix(line, "//export "); ok {
			exported[strings.TrimSpace(name)] = true
		}
	}
	if err := scanner.Err(); err != nil {
		t.Fatal(err)
	}

	known := make(map[string]bool)
	for _, b := range jniBindings {
		known[b.Symbol] = true
		if !exported[b.Symbol] {
			t.Errorf("binding %s is not exported", b.Symbol)
		}
	}
	for name := range exported {
		if strings.HasPrefix(name, "Java_") && !known[name] {
			t.Errorf("export %s has no entry in jniBindings", name)
		}
	}

	for _, name := range []string{
		"ffibridge_increment",
		"ffibridge_increment_checked",
		"ffibridge_api_version",
		"ffibridge_api_version_compatible",
		"ffibridge_free_string",
		"ffibridge_error_free",
		"ffibridge_overflow_policy",
	} {
		if !exported[name] {
			t.Errorf("missing C export %s", name)
		}
	}
}

func TestCodeFor(t *testing.T) {
	tests := []struct {
		err  error
		want errorCode
	}{
		{nil, codeOK},
		{&native.Error{Op: "increment", Value: math.MaxInt32, Err: native.ErrOverflow}, codeOverflow},
		{fmt.Errorf("wrapped: %w", native.ErrOverflow), codeOverflow},
		{errInvalidArgument, codeInvalidArgument},
		{native.ErrInvalidPolicy, codeInvalidArgument},
		{errors.New("something else"), codeUnknown},
	}

	for _, tt := range tests {
		if got := codeFor(tt.err); got != tt.want {
			t.Errorf("codeFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestErrorOp(t *testing.T) {
	_, err := native.Increment(math.MaxInt32, native.Fault)
	if op := errorOp(err); op != "increment" {
		t.Errorf("errorOp() = %q, want increment", op)
	}
	if op := errorOp(errors.New("plain")); op != "" {
		t.Errorf("errorOp() = %q, want empty", op)
	}
}

func TestNewEntryPoint(t *testing.T) {
	var stdout, stderr bytes.Buffer
	e := newEntryPoint(config.Env{Overflow: native.Saturate, Debug: true}, &stdout, &stderr)

	if e.Policy() != native.Saturate {
		t.Fatalf("Policy() = %v, want saturate", e.Policy())
	}

	got, err := e.Call(math.MaxInt32)
	if err != nil || got != math.MaxInt32 {
		t.Fatalf("Call(MaxInt32) = %d, %v", got, err)
	}
	if !strings.Contains(stdout.String(), "arg1: 2147483647") {
		t.Errorf("stdout missing value line: %q", stdout.String())
	}
	if strings.Contains(stdout.String(), "level=") {
		t.Errorf("log records leaked to stdout: %q", stdout.String())
	}
	if !strings.Contains(stderr.String(), "entry point configured") {
		t.Errorf("expected debug log on stderr, got %q", stderr.String())
	}
}

func TestNewEntryPointLogger(t *testing.T) {
	var stdout, stderr bytes.Buffer
	e := newEntryPoint(config.Env{Overflow: native.Fault}, &stdout, &stderr)

	e.Logger().Warn("could not raise java exception", "class", "java/lang/ArithmeticException")
	e.Logger().Debug("hidden below warn")

	out := stderr.String()
	if !strings.Contains(out, "lib=ffibridge") || !strings.Contains(out, "could not raise java exception") {
		t.Errorf("warning not routed through the library logger: %q", out)
	}
	if strings.Contains(out, "hidden below warn") {
		t.Errorf("debug record logged without FFIBRIDGE_DEBUG: %q", out)
	}
	if stdout.Len() != 0 {
		t.Errorf("log records leaked to stdout: %q", stdout.String())
	}
}

func TestNewEntryPointQuiet(t *testing.T) {
	var stdout, stderr bytes.Buffer
	e := newEntryPoint(config.Env{Quiet: true}, &stdout, &stderr)

	if got, _ := e.Call(5); got != 6 {
		t.Errorf("Call(5) = %d, want 6", got)
	}
	if stdout.Len() != 0 {
		t.Errorf("expected no stdout, got %q", stdout.String())
	}
	if stderr.Len() != 0 {
		t.Errorf("expected no stderr without debug, got %q", stderr.String())
	}
}

func TestIncrementDefaultPolicy(t *testing.T) {
	t.Setenv(config.EnvOverflow, "")
	t.Setenv(config.EnvQuiet, "1")
	config.ResetEnv()
	entryOnce = sync.Once{}
	defer func() {
		config.ResetEnv()
		entryOnce = sync.Once{}
	}()

	tests := []struct {
		in, want int32
	}{
		{0, 1},
		{-1, 0},
		{5, 6},
		{-100, -99},
		{math.MinInt32, math.MinInt32 + 1},
		{math.MaxInt32, math.MinInt32},
	}
	for _, tt := range tests {
		got, err := increment(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("increment(%d) = %d, %v; want %d", tt.in, got, err, tt.want)
		}
	}
}

func TestIncrementFaultReturnsZero(t *testing.T) {
	t.Setenv(config.EnvOverflow, "fault")
	t.Setenv(config.EnvQuiet, "1")
	config.ResetEnv()
	entryOnce = sync.Once{}
	defer func() {
		config.ResetEnv()
		entryOnce = sync.Once{}
	}()

	got, err := increment(math.MaxInt32)
	if !errors.Is(err, native.ErrOverflow) {
		t.Fatalf("expected ErrOverflow, got %v", err)
	}
	if got != 0 {
		t.Errorf("increment(MaxInt32) = %d on fault, want 0", got)
	}
}

func TestParseAPIVersion(t *testing.T) {
	tests := []struct {
		in           string
		ok           bool
		want         string
		major, minor int
	}{
		{"0.1.0", true, "0.1.0", 0, 1},
		{"v1.4.2", true, "1.4.2", 1, 4},
		{"v0.3", true, "0.3.0", 0, 3},
		{"v0.2.0-5-gdeadbee", true, "0.2.0-5-gdeadbee", 0, 2},
		{"dev", false, "", 0, 0},
		{"deadbee", false, "", 0, 0},
		{"", false, "", 0, 0},
	}
	for _, tt := range tests {
		got, ok := parseAPIVersion(tt.in)
		if ok != tt.ok {
			t.Errorf("parseAPIVersion(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			continue
		}
		if ok && (got.String != tt.want || got.Major != tt.major || got.Minor != tt.minor) {
			t.Errorf("parseAPIVersion(%q) = %+v, want %s (%d.%d)", tt.in, got, tt.want, tt.major, tt.minor)
		}
	}
}

// stampAPIVersion simulates -ldflags "-X main.apiVersionStr=v".
func stampAPIVersion(t *testing.T, v string) {
	t.Helper()

	old := apiVersionStr
	apiVersionStr = v
	apiVersionOnce = sync.Once{}
	t.Cleanup(func() {
		apiVersionStr = old
		apiVersionOnce = sync.Once{}
	})
}

func TestAPIVersionStamped(t *testing.T) {
	stampAPIVersion(t, "v0.4.1")

	v := apiVersion()
	if v.String != "0.4.1" || v.Major != 0 || v.Minor != 4 {
		t.Fatalf("apiVersion() = %+v, want 0.4.1", v)
	}
	if !apiCompatible(0, 4) || apiCompatible(0, 5) {
		t.Error("apiCompatible does not follow the stamped version")
	}
}

func TestAPIVersionUnstampedFallback(t *testing.T) {
	for _, stamp := range []string{"dev", "abc1234"} {
		stampAPIVersion(t, stamp)

		v := apiVersion()
		if v.String != defaultAPIVersion || v.Major != 0 || v.Minor != 1 {
			t.Errorf("stamp %q: apiVersion() = %+v, want %s", stamp, v, defaultAPIVersion)
		}
	}
}

func TestAPICompatible(t *testing.T) {
	stampAPIVersion(t, defaultAPIVersion)

	tests := []struct {
		major, minor int
		want         bool
	}{
		{0, 0, true},
		{0, 1, true},
		{0, 2, false},
		{1, 0, false},
	}
	for _, tt := range tests {
		if got := apiCompatible(tt.major, tt.minor); got != tt.want {
			t.Errorf("apiCompatible(%d, %d) = %v, want %v", tt.major, tt.minor, got, tt.want)
		}
	}
}
