package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultEnvPrefix prefixes the environment variables read by ApplyEnv.
const DefaultEnvPrefix = "MARKUP_"

// LoadDotEnv loads variables from .env files into the process
// environment. Variables that are already set win. Missing files are
// skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return &ParseError{Path: p, Format: "env", Err: err}
		}
	}
	return nil
}

// ApplyEnv overrides cfg with environment variables named prefix plus
// HISTORY_GROUP_DELAY, HISTORY_MAX_ENTRIES, SEARCH_CASE_SENSITIVE,
// SERIALIZE_PRETTY, TABLE_BORDER or LOG_LEVEL.
func ApplyEnv(cfg *Config, prefix string) error {
	return applyEnv(cfg, prefix, os.LookupEnv)
}

// ApplyEnvMap is ApplyEnv over a map, as returned by godotenv.Read.
func ApplyEnvMap(cfg *Config, prefix string, env map[string]string) error {
	return applyEnv(cfg, prefix, func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
}

func applyEnv(cfg *Config, prefix string, lookup func(string) (string, bool)) error {
	if prefix == "" {
		prefix = DefaultEnvPrefix
	}
	get := func(name string) (string, bool) {
		v, ok := lookup(prefix + name)
		return strings.TrimSpace(v), ok
	}
	fail := func(name string, err error) error {
		return &ParseError{Path: prefix + name, Format: "env", Err: err}
	}

	if v, ok := get("HISTORY_GROUP_DELAY"); ok {
		if err := cfg.History.GroupDelay.UnmarshalText([]byte(v)); err != nil {
			return fail("HISTORY_GROUP_DELAY", err)
		}
	}
	if v, ok := get("HISTORY_MAX_ENTRIES"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fail("HISTORY_MAX_ENTRIES", err)
		}
		cfg.History.MaxEntries = n
	}
	if v, ok := get("SEARCH_CASE_SENSITIVE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fail("SEARCH_CASE_SENSITIVE", err)
		}
		cfg.Search.CaseSensitive = b
	}
	if v, ok := get("SERIALIZE_PRETTY"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fail("SERIALIZE_PRETTY", err)
		}
		cfg.Serialize.Pretty = b
	}
	if v, ok := get("TABLE_BORDER"); ok {
		cfg.Behavior.DefaultTableBorder = v
	}
	if v, ok := get("LOG_LEVEL"); ok {
		cfg.Logging.Level = v
	}
	return cfg.Validate()
}
