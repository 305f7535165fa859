package config

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format is a configuration file format.
type Format string

// Supported formats.
const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FormatOf returns the format implied by a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", ErrUnknownFormat
	}
}

// Load reads the configuration file at path on top of the defaults. An
// empty path returns the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	return LoadFS(os.DirFS(filepath.Dir(path)), filepath.Base(path))
}

// LoadFS reads the configuration file name from fsys.
func LoadFS(fsys fs.FS, name string) (Config, error) {
	format, err := FormatOf(name)
	if err != nil {
		return Config{}, err
	}
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return Config{}, err
	}
	return Decode(bytes.NewReader(data), format, name)
}

// Decode reads a configuration in format from r on top of the defaults.
// Unknown keys are rejected. source names r in errors.
func Decode(r io.Reader, format Format, source string) (Config, error) {
	cfg := Default()
	var err error
	switch format {
	case FormatTOML:
		dec := toml.NewDecoder(r)
		dec.DisallowUnknownFields()
		err = dec.Decode(&cfg)
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		err = dec.Decode(&cfg)
		if errors.Is(err, io.EOF) {
			err = nil
		}
	default:
		return Config{}, ErrUnknownFormat
	}
	if err != nil {
		return Config{}, &ParseError{Path: source, Format: string(format), Err: err}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Encode writes cfg in format.
func Encode(w io.Writer, cfg Config, format Format) error {
	switch format {
	case FormatTOML:
		return toml.NewEncoder(w).Encode(cfg)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return err
		}
		return enc.Close()
	default:
		return ErrUnknownFormat
	}
}
