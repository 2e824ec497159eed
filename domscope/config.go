// CLAUDE:SUMMARY Scope configuration: functional options, process-wide default cell, YAML file loader.
package domscope

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"golang.org/x/net/html"
	"gopkg.in/yaml.v3"
)

const (
	DefaultRefAttr        = "ref"
	DefaultScopeAttr      = "scope-ref"
	DefaultAutoNamePrefix = "$"

	dataPrefix = "data-"
)

// BoundaryFunc reports the scope name an element declares. ok is false when
// the element does not start a scope; an empty name with ok true marks an
// anonymous scope.
type BoundaryFunc func(n *html.Node, cfg *Config) (name string, ok bool)

// Config is the resolved configuration of a walk, a collection or a scope
// tree. A resolved Config is never modified; child scopes share it.
type Config struct {
	RefAttr        string
	ScopeAttr      string
	IsBoundary     BoundaryFunc
	IncludeRoot    bool
	AutoNamePrefix string
	Host           Host
	Logger         *slog.Logger
}

func (c *Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// Option overrides one field of the default configuration.
type Option func(*Config)

// WithRefAttr sets the attribute holding reference names.
func WithRefAttr(name string) Option {
	return func(c *Config) { c.RefAttr = name }
}

// WithScopeAttr sets the attribute marking scope boundaries.
func WithScopeAttr(name string) Option {
	return func(c *Config) { c.ScopeAttr = name }
}

// WithBoundaryFunc replaces the attribute lookup with a custom predicate.
// A nil f restores the attribute lookup.
func WithBoundaryFunc(f BoundaryFunc) Option {
	return func(c *Config) { c.IsBoundary = f }
}

// WithIncludeRoot makes walks visit the root element and collections expose it as refs["root"].
func WithIncludeRoot(include bool) Option {
	return func(c *Config) { c.IncludeRoot = include }
}

// WithAutoNamePrefix sets the prefix of generated names for anonymous scopes.
func WithAutoNamePrefix(prefix string) Option {
	return func(c *Config) { c.AutoNamePrefix = prefix }
}

// WithHost sets the host providing tree navigation, selectors and parsing.
func WithHost(h Host) Option {
	return func(c *Config) { c.Host = h }
}

// WithLogger sets the logger receiving integrity warnings.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

func builtinConfig() Config {
	return Config{
		RefAttr:        DefaultRefAttr,
		ScopeAttr:      DefaultScopeAttr,
		AutoNamePrefix: DefaultAutoNamePrefix,
		Host:           DefaultHost,
	}
}

var (
	defaultMu  sync.RWMutex
	defaultCfg = builtinConfig()
)

// Default returns a copy of the process-wide default configuration.
func Default() Config {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultCfg
}

// SetDefault applies opts to the process-wide default configuration.
// Configurations resolved earlier are not affected.
func SetDefault(opts ...Option) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	for _, o := range opts {
		o(&defaultCfg)
	}
}

// ResetDefault restores the built-in defaults.
func ResetDefault() {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultCfg = builtinConfig()
}

// UseDataAttributes switches the default attribute names to their "data-"
// variants ("data-ref", "data-scope-ref") for markup where custom attributes
// are not allowed. UseDataAttributes(false) strips the prefix again.
func UseDataAttributes(enabled bool) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultCfg.RefAttr = dataAttr(defaultCfg.RefAttr, enabled)
	defaultCfg.ScopeAttr = dataAttr(defaultCfg.ScopeAttr, enabled)
}

func dataAttr(name string, enabled bool) string {
	if enabled {
		if strings.HasPrefix(name, dataPrefix) {
			return name
		}
		return dataPrefix + name
	}
	return strings.TrimPrefix(name, dataPrefix)
}

// Resolve merges opts onto the process-wide default. It fails with ErrNoHost
// when the result has no host.
func Resolve(opts ...Option) (*Config, error) {
	cfg := Default()
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.Host == nil {
		return nil, ErrNoHost
	}
	return &cfg, nil
}

// FileConfig is the YAML form of the default configuration.
// Absent fields leave the corresponding default untouched.
type FileConfig struct {
	RefAttr        string `yaml:"ref_attr"`
	ScopeAttr      string `yaml:"scope_attr"`
	IncludeRoot    *bool  `yaml:"include_root"`
	AutoNamePrefix string `yaml:"auto_name_prefix"`
	DataAttributes bool   `yaml:"data_attributes"`
}

// Options converts the file into resolver options.
func (f *FileConfig) Options() []Option {
	var opts []Option
	if f.RefAttr != "" {
		opts = append(opts, WithRefAttr(f.RefAttr))
	}
	if f.ScopeAttr != "" {
		opts = append(opts, WithScopeAttr(f.ScopeAttr))
	}
	if f.IncludeRoot != nil {
		opts = append(opts, WithIncludeRoot(*f.IncludeRoot))
	}
	if f.AutoNamePrefix != "" {
		opts = append(opts, WithAutoNamePrefix(f.AutoNamePrefix))
	}
	if f.DataAttributes {
		opts = append(opts, func(c *Config) {
			c.RefAttr = dataAttr(c.RefAttr, true)
			c.ScopeAttr = dataAttr(c.ScopeAttr, true)
		})
	}
	return opts
}

// LoadConfigFile reads a YAML config file.
func LoadConfigFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &FileConfig{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}
