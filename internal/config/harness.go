package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tinyrange/ffibridge/internal/jnimangle"
)

const (
	HarnessFilename = "ffibridge.yaml"

	DefaultClass  = "dev.tinyrange.ffibridge.NativeBridge"
	DefaultMethod = "increment"
)

// Harness describes a run of cmd/ffibridge against a built library.
type Harness struct {
	Version int `yaml:"version"`

	// Library is the path to libffibridge.{so,dylib}.
	Library string `yaml:"library"`

	// Symbol overrides the JNI name derived from Class and Method.
	Symbol string `yaml:"symbol,omitempty"`
	Class  string `yaml:"class,omitempty"`
	Method string `yaml:"method,omitempty"`

	Args     []int32 `yaml:"args,omitempty"`
	Repeat   int     `yaml:"repeat,omitempty"`
	Checked  bool    `yaml:"checked,omitempty"`
	Overflow string  `yaml:"overflow,omitempty"`

	// MinAPIVersion is the oldest library API the harness accepts.
	MinAPIVersion string `yaml:"minAPIVersion,omitempty"`
}

func (h *Harness) normalize() {
	if h.Version == 0 {
		h.Version = 1
	}
	if h.Class == "" {
		h.Class = DefaultClass
	}
	if h.Method == "" {
		h.Method = DefaultMethod
	}
	if len(h.Args) == 0 {
		h.Args = []int32{42}
	}
	if h.Repeat <= 0 {
		h.Repeat = 1
	}
	if h.MinAPIVersion == "" {
		h.MinAPIVersion = "v0.1.0"
	}
}

// ResolvedSymbol returns Symbol, or the JNI short name for Class.Method.
func (h Harness) ResolvedSymbol() string {
	if h.Symbol != "" {
		return h.Symbol
	}
	return jnimangle.ShortName(h.Class, h.Method)
}

// DefaultHarness returns a Harness with every default applied.
func DefaultHarness() Harness {
	var h Harness
	h.normalize()
	return h
}

// LoadHarness reads a harness file. Missing fields take their defaults.
func LoadHarness(path string) (Harness, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Harness{}, fmt.Errorf("read %s: %w", path, err)
	}

	var h Harness
	if err := yaml.Unmarshal(data, &h); err != nil {
		return Harness{}, fmt.Errorf("parse %s: %w", path, err)
	}
	h.normalize()
	return h, nil
}

// WriteHarness writes h to path as YAML.
func WriteHarness(path string, h Harness) error {
	h.normalize()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(h); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}
