package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"github.com/tinyrange/ffibridge/internal/config"
	"github.com/tinyrange/ffibridge/internal/hostload"
	"github.com/tinyrange/ffibridge/internal/native"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "ffibridge: %v\n", err)
		os.Exit(1)
	}
}

func defaultLibrary() string {
	ext := ".so"
	if runtime.GOOS == "darwin" {
		ext = ".dylib"
	}
	return filepath.Join("build", "libffibridge"+ext)
}

func run() error {
	configPath := flag.String("config", "", "Harness file (YAML), e.g. "+config.HarnessFilename)
	lib := flag.String("lib", "", "Path to libffibridge (default: "+defaultLibrary()+")")
	class := flag.String("class", "", "Java class owning the native method")
	method := flag.String("method", "", "Native method name")
	symbol := flag.String("symbol", "", "Symbol to call, overriding -class/-method")
	repeat := flag.Int("repeat", 0, "Invoke each argument this many times and check the results agree")
	checked := flag.Bool("checked", false, "Call ffibridge_increment_checked instead of the JNI symbol")
	overflow := flag.String("overflow", "", "Expected overflow policy of the library (wrap, saturate, fault)")
	minAPI := flag.String("min-api", "", "Oldest library API version accepted")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] [arg...]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Load libffibridge and call its entry point the way a JVM would.\n\n")
		fmt.Fprintf(os.Stderr, "Examples:\n")
		fmt.Fprintf(os.Stderr, "  %s 42\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -class JavaClass -method rust_implementation 5 -100\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  FFIBRIDGE_OVERFLOW=fault %s -checked -overflow fault 2147483647\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	h := config.DefaultHarness()
	if *configPath != "" {
		var err error
		h, err = config.LoadHarness(*configPath)
		if err != nil {
			return err
		}
	}

	// Flags override the harness file.
	if *lib != "" {
		h.Library = *lib
	}
	if h.Library == "" {
		h.Library = defaultLibrary()
	}
	if *class != "" {
		h.Class = *class
	}
	if *method != "" {
		h.Method = *method
	}
	if *symbol != "" {
		h.Symbol = *symbol
	}
	if *repeat > 0 {
		h.Repeat = *repeat
	}
	if *checked {
		h.Checked = true
	}
	if *overflow != "" {
		h.Overflow = *overflow
	}
	if *minAPI != "" {
		h.MinAPIVersion = *minAPI
	}
	if flag.NArg() > 0 {
		args, err := parseArgs(flag.Args())
		if err != nil {
			return err
		}
		h.Args = args
	}

	return execute(h)
}

func parseArgs(args []string) ([]int32, error) {
	out := make([]int32, 0, len(args))
	for _, a := range args {
		v, err := strconv.ParseInt(a, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("argument %q is not a 32-bit integer: %w", a, err)
		}
		out = append(out, int32(v))
	}
	return out, nil
}

func execute(h config.Harness) error {
	lib, err := hostload.Open(h.Library)
	if err != nil {
		return fmt.Errorf("open library: %w", err)
	}
	defer lib.Close()

	version, err := lib.Version()
	if err != nil {
		return fmt.Errorf("query version: %w", err)
	}
	if !hostload.Compatible(version, h.MinAPIVersion) {
		return fmt.Errorf("library API %s is not compatible with %s", version, h.MinAPIVersion)
	}

	policy, err := lib.OverflowPolicy()
	if err != nil {
		return fmt.Errorf("query overflow policy: %w", err)
	}
	slog.Info("Library loaded", "path", h.Library, "version", version, "overflow", policy)

	if h.Overflow != "" {
		want, err := native.ParseOverflowPolicy(h.Overflow)
		if err != nil {
			return err
		}
		if want != policy {
			return fmt.Errorf("library uses overflow policy %s, expected %s (set %s)", policy, want, config.EnvOverflow)
		}
	}

	call, err := selectCall(lib, h, policy)
	if err != nil {
		return err
	}

	var bar *progressbar.ProgressBar
	if h.Repeat > 1 && term.IsTerminal(int(os.Stderr.Fd())) {
		bar = progressbar.Default(int64(len(h.Args)*h.Repeat), "calling")
		defer bar.Close()
	}

	for _, arg := range h.Args {
		result, err := callRepeated(call, arg, h.Repeat, bar)
		if err != nil {
			return fmt.Errorf("call(%d): %w", arg, err)
		}
		fmt.Printf("Result: %d\n", result)
	}
	return nil
}

type callFunc func(int32) (int32, error)

func selectCall(lib *hostload.Library, h config.Harness, policy native.OverflowPolicy) (callFunc, error) {
	if h.Checked {
		slog.Debug("Using checked C entry point")
		return lib.IncrementChecked, nil
	}

	sym := h.ResolvedSymbol()
	fn, err := lib.JNI(sym)
	if err != nil {
		return nil, err
	}
	slog.Debug("Using JNI entry point", "symbol", sym)
	return jniCall(fn, policy), nil
}

// jniCall adapts a JNI entry point. Called without a JNIEnv the library
// cannot throw, so an overflow under the fault policy is reported here.
func jniCall(fn hostload.JNIFunc, policy native.OverflowPolicy) callFunc {
	return func(x int32) (int32, error) {
		result, err := fn(x)
		if err != nil {
			return 0, err
		}
		if policy == native.Fault && x == math.MaxInt32 {
			return 0, &native.Error{Op: "increment", Value: x, Err: native.ErrOverflow}
		}
		return result, nil
	}
}

var errInconsistent = errors.New("repeated calls returned different results")

// callRepeated invokes call n times and fails if any result differs from the
// first.
func callRepeated(call callFunc, arg int32, n int, bar *progressbar.ProgressBar) (int32, error) {
	if n < 1 {
		n = 1
	}

	first, err := call(arg)
	if err != nil {
		return 0, err
	}
	if bar != nil {
		bar.Add(1)
	}

	for i := 1; i < n; i++ {
		got, err := call(arg)
		if err != nil {
			return 0, err
		}
		if got != first {
			return 0, fmt.Errorf("%w: %d then %d", errInconsistent, first, got)
		}
		if bar != nil {
			bar.Add(1)
		}
	}
	return first, nil
}
