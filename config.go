package quill

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Option configures a Runtime at construction time.
type Option func(*Runtime)

// WithMemoryLimit caps the approximate number of heap bytes the runtime
// may hold in live cells. Allocations past the limit fail with the
// out-of-memory condition. Zero means unlimited.
func WithMemoryLimit(bytes int) Option {
	return func(rt *Runtime) {
		rt.memLimit = bytes
	}
}

// WithAtomTableSize pre-sizes the atom table for embedders that intern a
// known property vocabulary up front. Purely a capacity hint; the table
// still grows on demand.
func WithAtomTableSize(n int) Option {
	return func(rt *Runtime) {
		rt.atomHint = n
	}
}

// WithLogger routes the runtime's diagnostics (leak warnings, rejected
// allocations, optional allocation tracing) to the given logger. The
// default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(rt *Runtime) {
		if logger != nil {
			rt.logger = logger
		}
	}
}

// WithTrace enables per-allocation debug logging through the runtime's
// logger. Noisy; intended for leak hunts.
func WithTrace(enabled bool) Option {
	return func(rt *Runtime) {
		rt.trace = enabled
	}
}

// Config is the file-loadable form of the runtime options, for embedders
// that configure runtimes from deployment files rather than code.
type Config struct {
	// MemoryLimit caps live heap bytes; 0 means unlimited.
	MemoryLimit int `yaml:"memory_limit"`

	// AtomTableSize pre-sizes the atom table.
	AtomTableSize int `yaml:"atom_table_size"`

	// Trace enables per-allocation debug logging.
	Trace bool `yaml:"trace"`
}

// Options expands the config into runtime options.
func (c Config) Options() []Option {
	return []Option{
		WithMemoryLimit(c.MemoryLimit),
		WithAtomTableSize(c.AtomTableSize),
		WithTrace(c.Trace),
	}
}

// LoadConfig reads a YAML runtime configuration. Unknown fields are
// rejected so typos fail loudly.
func LoadConfig(r io.Reader) (Config, error) {
	var c Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return Config{}, fmt.Errorf("parse runtime config: %w", err)
	}
	if c.MemoryLimit < 0 {
		return Config{}, fmt.Errorf("parse runtime config: memory_limit must not be negative")
	}
	return c, nil
}

// LoadConfigFile reads a YAML runtime configuration from a file path.
func LoadConfigFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open runtime config: %w", err)
	}
	defer f.Close()
	return LoadConfig(f)
}
