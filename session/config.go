package session

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/reactivekit/starcell/capture"
	"github.com/reactivekit/starcell/cell"
)

// ErrConfiguration indicates an invalid session configuration.
var ErrConfiguration = errors.New("session: configuration error")

// maxKeyLen is the BLAKE2b key size limit.
const maxKeyLen = 64

// Config holds the configuration for a Session. The yaml-tagged fields
// may be loaded from a configuration file; the rest are wired
// programmatically by the host.
type Config struct {
	// Key seeds the code-unit identity digests. Sessions with different
	// keys produce unrelated identities for the same snippets. At most
	// 64 bytes. Optional.
	Key string `yaml:"key"`

	// Predeclared lists names treated as predeclared in addition to the
	// Starlark universe. Such names are never classified as cell
	// inputs; the host is expected to bind them before cells use them.
	Predeclared []string `yaml:"predeclared"`

	// Renderer renders captured failures. Defaults to cell.Plain.
	Renderer cell.TracebackRenderer `yaml:"-"`

	// OnDisplay receives every displayed value, including values of
	// trailing bare expressions. Optional.
	OnDisplay capture.Handler `yaml:"-"`

	// Logger is an optional logger for observability.
	Logger cell.Logger `yaml:"-"`
}

// validate checks field constraints.
func (c *Config) validate() error {
	if len(c.Key) > maxKeyLen {
		return fmt.Errorf("%w: Key exceeds %d bytes", ErrConfiguration, maxKeyLen)
	}
	return nil
}

// LoadConfig reads a YAML session configuration from path.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
