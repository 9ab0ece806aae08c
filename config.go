package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is a TOML session configuration. Relative paths are resolved
// against the directory of the config file.
type Config struct {
	Memory   MemoryConfig   `toml:"memory"`
	Literals LiteralsConfig `toml:"literals"`
	Image    ImageConfig    `toml:"image"`

	Trace   bool     `toml:"trace"`
	Timeout string   `toml:"timeout"`
	Prelude []string `toml:"prelude"`

	Dir string `toml:"-"`
}

// MemoryConfig sizes the arena; zero values keep the defaults.
type MemoryConfig struct {
	Capacity    uint `toml:"capacity"`
	DataStack   uint `toml:"data-stack"`
	ReturnStack uint `toml:"return-stack"`
}

// LiteralsConfig enables literal syntaxes beyond decimal integers.
type LiteralsConfig struct {
	Runes bool `toml:"runes"`
}

// ImageConfig names images to start from and to save at the end of a
// session.
type ImageConfig struct {
	Load string `toml:"load"`
	Save string `toml:"save"`
}

// LoadConfig parses the TOML file at path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	cfg.Dir, err = filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", path, err)
	}
	if _, err := cfg.TimeLimit(); err != nil {
		return nil, fmt.Errorf("invalid timeout in %s: %w", path, err)
	}
	return &cfg, nil
}

// TimeLimit parses Timeout, returning zero if unset.
func (cfg *Config) TimeLimit() (time.Duration, error) {
	if cfg.Timeout == "" {
		return 0, nil
	}
	return time.ParseDuration(cfg.Timeout)
}

// Path resolves name relative to the config directory.
func (cfg *Config) Path(name string) string {
	if name == "" || filepath.IsAbs(name) || cfg.Dir == "" {
		return name
	}
	return filepath.Join(cfg.Dir, name)
}

// SetImagePaths overrides the image load and save paths; empty names are
// ignored. Unlike paths in the file, these are relative to the working
// directory.
func (cfg *Config) SetImagePaths(load, save string) error {
	for _, p := range []struct {
		dst  *string
		name string
	}{
		{&cfg.Image.Load, load},
		{&cfg.Image.Save, save},
	} {
		if p.name == "" {
			continue
		}
		abs, err := filepath.Abs(p.name)
		if err != nil {
			return err
		}
		*p.dst = abs
	}
	return nil
}

// Options returns VM options for the memory layout, literal syntax, image and
// prelude files. Prelude files are queued as input ahead of anything added
// later with WithInput.
func (cfg *Config) Options() ([]VMOption, error) {
	opts := []VMOption{
		WithCapacity(cfg.Memory.Capacity),
		WithStackSizes(cfg.Memory.DataStack, cfg.Memory.ReturnStack),
	}
	if cfg.Literals.Runes {
		opts = append(opts, WithLiteralParsers(DecimalLiteral, RuneLiteral))
	}

	if cfg.Image.Load != "" {
		data, err := os.ReadFile(cfg.Path(cfg.Image.Load))
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithImage(bytes.NewReader(data)))
	}

	var files []io.Reader
	for _, name := range cfg.Prelude {
		f, err := os.Open(cfg.Path(name))
		if err != nil {
			for _, r := range files {
				r.(io.Closer).Close()
			}
			return nil, err
		}
		files = append(files, f)
	}
	if len(files) > 0 {
		opts = append(opts, WithInput(files...))
	}
	return opts, nil
}
