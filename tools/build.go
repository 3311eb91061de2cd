///usr/bin/true; exec /usr/bin/env go run "$0" "$@"

package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
)

const PACKAGE_NAME = "github.com/tinyrange/ffibridge"

// ============================================================================
// Build System Core
// ============================================================================

type crossBuild struct {
	GOOS   string
	GOARCH string
}

func (cb crossBuild) IsNative() bool {
	return cb.GOOS == runtime.GOOS && cb.GOARCH == runtime.GOARCH
}

func (cb crossBuild) SharedLibExt() string {
	switch cb.GOOS {
	case "darwin":
		return ".dylib"
	case "windows":
		return ".dll"
	default:
		return ".so"
	}
}

func (cb crossBuild) OutputName(name string) string {
	suffix := ""
	if cb.GOOS == "windows" && filepath.Ext(name) != ".dll" {
		suffix = ".exe"
	}

	if cb.IsNative() {
		return fmt.Sprintf("%s%s", name, suffix)
	}
	ext := filepath.Ext(name)
	return fmt.Sprintf("%s_%s_%s%s%s", strings.TrimSuffix(name, ext), cb.GOOS, cb.GOARCH, ext, suffix)
}

var hostBuild = crossBuild{
	GOOS:   runtime.GOOS,
	GOARCH: runtime.GOARCH,
}

type buildOptions struct {
	Package     string
	OutputName  string
	OutputDir   string
	CgoEnabled  bool
	Build       crossBuild
	RaceEnabled bool
	BuildShared bool
	Version     string
}

type buildOutput struct {
	Path string
}

type executor struct {
	build  crossBuild
	race   bool
	dryRun bool
	args   []string
}

func (e *executor) command(env []string, args ...string) error {
	fmt.Fprintf(os.Stderr, "+ %s\n", strings.Join(args, " "))
	if e.dryRun {
		return nil
	}

	cmd := exec.Command(args[0], args[1:]...)
	cmd.Env = append(os.Environ(), env...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin
	return cmd.Run()
}

func (e *executor) goBuild(opts buildOptions) (buildOutput, error) {
	outputDir := "build"
	if opts.OutputDir != "" {
		outputDir = opts.OutputDir
	}
	output := filepath.Join(outputDir, opts.Build.OutputName(opts.OutputName))

	if !e.dryRun {
		if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
			return buildOutput{}, fmt.Errorf("failed to create build directory: %w", err)
		}
	}

	env := []string{
		"GOOS=" + opts.Build.GOOS,
		"GOARCH=" + opts.Build.GOARCH,
	}
	if opts.CgoEnabled || opts.RaceEnabled || opts.BuildShared {
		env = append(env, "CGO_ENABLED=1")
	} else {
		env = append(env, "CGO_ENABLED=0")
	}

	args := []string{"go", "build", "-o", output}
	if opts.BuildShared {
		args = []string{"go", "build", "-buildmode=c-shared", "-o", output}
	}
	if opts.RaceEnabled {
		args = append(args, "-race")
	}

	var ldflags []string
	if opts.Version != "" {
		ldflags = append(ldflags, fmt.Sprintf("-X main.apiVersionStr=%s", opts.Version))
	}
	if len(ldflags) > 0 {
		args = append(args, "-ldflags="+strings.Join(ldflags, " "))
	}
	args = append(args, PACKAGE_NAME+"/"+opts.Package)

	if err := e.command(env, args...); err != nil {
		return buildOutput{}, fmt.Errorf("go build failed: %w", err)
	}
	return buildOutput{Path: output}, nil
}

// ============================================================================
// Targets
// ============================================================================

type target struct {
	Description string
	Run         func(e *executor) error
}

var targets = map[string]target{
	"lib": {
		Description: "Build the c-shared library (build/libffibridge)",
		Run: func(e *executor) error {
			_, err := e.buildLibrary()
			return err
		},
	},
	"harness": {
		Description: "Build the ffibridge harness",
		Run: func(e *executor) error {
			_, err := e.buildHarness()
			return err
		},
	},
	"test": {
		Description: "Run unit tests, then the loader tests against a fresh library",
		Run:         (*executor).test,
	},
	"run": {
		Description: "Build everything and run the harness (args after --)",
		Run:         (*executor).run,
	},
	"java": {
		Description: "Build the library and run the Java sample host",
		Run:         (*executor).java,
	},
}

func (e *executor) buildLibrary() (buildOutput, error) {
	return e.goBuild(buildOptions{
		Package:     "bindings/jni",
		OutputName:  "libffibridge" + e.build.SharedLibExt(),
		Build:       e.build,
		RaceEnabled: e.race,
		BuildShared: true,
		Version:     getVersionFromGit(),
	})
}

func (e *executor) buildHarness() (buildOutput, error) {
	return e.goBuild(buildOptions{
		Package:     "cmd/ffibridge",
		OutputName:  "ffibridge",
		Build:       e.build,
		RaceEnabled: e.race,
	})
}

func (e *executor) test() error {
	if err := e.command([]string{"CGO_ENABLED=0"}, "go", "test", "./..."); err != nil {
		return fmt.Errorf("unit tests failed: %w", err)
	}
	if !e.build.IsNative() {
		return nil
	}

	lib, err := e.buildLibrary()
	if err != nil {
		return err
	}
	abs, err := filepath.Abs(lib.Path)
	if err != nil {
		return err
	}
	// The library reads its policy from the environment it is loaded into,
	// so each policy needs its own test process.
	for _, policy := range []string{"wrap", "saturate", "fault"} {
		env := []string{"FFIBRIDGE_LIB=" + abs, "FFIBRIDGE_OVERFLOW=" + policy, "FFIBRIDGE_QUIET=1"}
		if err := e.command(env, "go", "test", "-count=1", "./internal/hostload/"); err != nil {
			return fmt.Errorf("loader tests (%s) failed: %w", policy, err)
		}
	}
	return nil
}

func (e *executor) run() error {
	if !e.build.IsNative() {
		return fmt.Errorf("run requires a native build")
	}
	lib, err := e.buildLibrary()
	if err != nil {
		return err
	}
	harness, err := e.buildHarness()
	if err != nil {
		return err
	}
	args := append([]string{harness.Path, "-lib", lib.Path}, e.args...)
	return e.command(nil, args...)
}

func (e *executor) java() error {
	lib, err := e.buildLibrary()
	if err != nil {
		return err
	}
	classes := filepath.Join("build", "classes")
	src := filepath.Join("bindings", "jni", "java", "dev", "tinyrange", "ffibridge", "NativeBridge.java")
	if err := e.command(nil, "javac", "-d", classes, src); err != nil {
		return fmt.Errorf("javac failed: %w", err)
	}
	args := []string{
		"java",
		"-Djava.library.path=" + filepath.Dir(lib.Path),
		"-cp", classes,
		"dev.tinyrange.ffibridge.NativeBridge",
	}
	return e.command(nil, append(args, e.args...)...)
}

// getVersionFromGit returns the version stamped into the library. Untagged
// checkouts yield a bare commit hash, which the library ignores in favour of
// its built-in version.
func getVersionFromGit() string {
	if ref := os.Getenv("GITHUB_REF_NAME"); ref != "" && strings.HasPrefix(ref, "v") {
		return ref
	}

	cmd := exec.Command("git", "describe", "--tags", "--always")
	out, err := cmd.Output()
	if err == nil {
		version := strings.TrimSpace(string(out))
		if version != "" {
			return version
		}
	}

	return "dev"
}

// ============================================================================
// CLI Interface
// ============================================================================

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: %s [options] [target] [-- args...]

Options:
  -os <goos>       Target OS (default: host)
  -arch <goarch>   Target architecture (default: host)
  -race            Build with the race detector
  --dry-run        Show what would be done without executing
  --list           List all available targets
  -h, --help       Show this help message

Arguments after -- are passed to the harness or the Java host.

Examples:
  %s                  Build the library
  %s test             Run all tests
  %s run -- 5 -100    Build and call the entry point with 5 and -100
`, os.Args[0], os.Args[0], os.Args[0], os.Args[0])
}

func main() {
	e := &executor{build: hostBuild}
	targetName := "lib"
	var listTargets bool

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		arg := args[i]

		if arg == "--" {
			e.args = args[i+1:]
			break
		}

		switch arg {
		case "-os", "-arch":
			if i+1 >= len(args) {
				fmt.Fprintf(os.Stderr, "%s requires an argument\n", arg)
				os.Exit(1)
			}
			i++
			if arg == "-os" {
				e.build.GOOS = args[i]
			} else {
				e.build.GOARCH = args[i]
			}
		case "-race":
			e.race = true
		case "--dry-run":
			e.dryRun = true
		case "--list":
			listTargets = true
		case "-h", "--help":
			usage()
			return
		default:
			if strings.HasPrefix(arg, "-") {
				fmt.Fprintf(os.Stderr, "unknown option: %s\n", arg)
				usage()
				os.Exit(1)
			}
			targetName = arg
		}
	}

	if listTargets {
		names := make([]string, 0, len(targets))
		for name := range targets {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("  %-10s %s\n", name, targets[name].Description)
		}
		return
	}

	t, ok := targets[targetName]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown target: %s\n", targetName)
		os.Exit(1)
	}
	if err := t.Run(e); err != nil {
		fmt.Fprintf(os.Stderr, "build failed: %v\n", err)
		os.Exit(1)
	}
}
