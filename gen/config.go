package gen

import (
	"os"
	"path"

	"gopkg.in/yaml.v3"
)

// Config drives a generation run. It is usually loaded from a YAML file,
// but can be assembled in code through options.
type Config struct {
	// Package is the import path of the generated package.
	Package string `yaml:"package"`
	// Target is the directory the generated files are written to.
	Target string `yaml:"target"`
	// Header is an optional comment placed at the top of every
	// generated file, before the generated-code marker.
	Header string `yaml:"header,omitempty"`
	// Only restricts the generated function set for every schema that
	// does not declare its own. Mutually exclusive with Except.
	Only []string `yaml:"only,omitempty"`
	// Except removes functions from the generated set for every schema
	// that does not declare its own. Mutually exclusive with Only.
	Except []string `yaml:"except,omitempty"`
	// Schemas are the entity definitions to generate for.
	Schemas []Schema `yaml:"schemas,omitempty"`
}

// Option allows configuring the generator in a functional style.
type Option func(*Config) error

// WithPackage sets the import path of the generated package.
func WithPackage(pkg string) Option {
	return func(c *Config) error {
		c.Package = pkg
		return nil
	}
}

// WithTarget sets the output directory.
func WithTarget(dir string) Option {
	return func(c *Config) error {
		c.Target = dir
		return nil
	}
}

// WithHeader sets the per-file header comment.
func WithHeader(header string) Option {
	return func(c *Config) error {
		c.Header = header
		return nil
	}
}

// WithOnly sets the default function allow-list.
func WithOnly(fns ...string) Option {
	return func(c *Config) error {
		c.Only = fns
		return nil
	}
}

// WithExcept sets the default function deny-list.
func WithExcept(fns ...string) Option {
	return func(c *Config) error {
		c.Except = fns
		return nil
	}
}

// NewConfig builds a Config from options and validates it.
func NewConfig(opts ...Option) (*Config, error) {
	c := &Config{}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadConfig reads and validates a YAML configuration file.
func LoadConfig(name string) (*Config, error) {
	buf, err := os.ReadFile(name)
	if err != nil {
		return nil, NewConfigError("path", name, err.Error())
	}
	c := &Config{}
	if err := yaml.Unmarshal(buf, c); err != nil {
		return nil, NewConfigError("path", name, err.Error())
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) validate() error {
	if c.Package == "" {
		return NewConfigError("package", nil, "import path is required")
	}
	if c.Target == "" {
		return NewConfigError("target", nil, "output directory is required")
	}
	if len(c.Only) > 0 && len(c.Except) > 0 {
		return NewConfigError("only", c.Only, "only and except are mutually exclusive")
	}
	if err := validateFunctions(c.Only); err != nil {
		return err
	}
	return validateFunctions(c.Except)
}

// pkgName reports the package identifier of the generated package.
func (c *Config) pkgName() string {
	return path.Base(c.Package)
}

func validateFunctions(fns []string) error {
	for _, fn := range fns {
		if !knownFunction(fn) {
			return NewConfigError("functions", fn, "unknown function name")
		}
	}
	return nil
}
