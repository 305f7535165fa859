package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.History.GroupDelay.Std() != 500*time.Millisecond || cfg.History.MaxEntries != 1000 {
		t.Errorf("History = %+v", cfg.History)
	}
	if !cfg.Behavior.InsertLinkSelectsText || !cfg.Behavior.StripHostElements || cfg.Behavior.DefaultTableBorder != "cell" {
		t.Errorf("Behavior = %+v", cfg.Behavior)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestLoadFS(t *testing.T) {
	fsys := fstest.MapFS{
		"editor.toml": {Data: []byte(`
[history]
group_delay = "250ms"

[search]
case_sensitive = true

[behavior]
default_table_border = "outer"
`)},
		"editor.yaml": {Data: []byte(`
history:
  max_entries: 20
serialize:
  pretty: true
logging:
  level: debug
`)},
		"empty.yml":   {Data: nil},
		"bad.toml":    {Data: []byte("[history\n")},
		"unknown.yml": {Data: []byte("colour: red\n")},
		"border.toml": {Data: []byte("[behavior]\ndefault_table_border = \"dotted\"\n")},
		"editor.json": {Data: []byte("{}")},
	}

	t.Run("toml", func(t *testing.T) {
		cfg, err := LoadFS(fsys, "editor.toml")
		if err != nil {
			t.Fatalf("LoadFS() error: %v", err)
		}
		if cfg.History.GroupDelay.Std() != 250*time.Millisecond {
			t.Errorf("GroupDelay = %s", cfg.History.GroupDelay)
		}
		if cfg.History.MaxEntries != 1000 {
			t.Errorf("unset MaxEntries = %d, want default", cfg.History.MaxEntries)
		}
		if !cfg.Search.CaseSensitive || cfg.Behavior.DefaultTableBorder != "outer" {
			t.Errorf("cfg = %+v", cfg)
		}
	})

	t.Run("yaml", func(t *testing.T) {
		cfg, err := LoadFS(fsys, "editor.yaml")
		if err != nil {
			t.Fatalf("LoadFS() error: %v", err)
		}
		if cfg.History.MaxEntries != 20 || !cfg.Serialize.Pretty || cfg.Logging.Level != "debug" {
			t.Errorf("cfg = %+v", cfg)
		}
		if cfg.Serialize.Indent != "  " {
			t.Errorf("unset Indent = %q, want default", cfg.Serialize.Indent)
		}
	})

	t.Run("empty yaml", func(t *testing.T) {
		cfg, err := LoadFS(fsys, "empty.yml")
		if err != nil {
			t.Fatalf("LoadFS() error: %v", err)
		}
		if cfg != Default() {
			t.Errorf("cfg = %+v, want defaults", cfg)
		}
	})

	errorTests := []struct {
		name string
		file string
		want error
	}{
		{"syntax", "bad.toml", nil},
		{"unknown key", "unknown.yml", nil},
		{"invalid border", "border.toml", ErrValidationFailed},
		{"unknown format", "editor.json", ErrUnknownFormat},
	}
	for _, tt := range errorTests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFS(fsys, tt.file)
			if err == nil {
				t.Fatal("LoadFS() succeeded")
			}
			if tt.want != nil {
				if !errors.Is(err, tt.want) {
					t.Errorf("error = %v, want %v", err, tt.want)
				}
				return
			}
			var pe *ParseError
			if !errors.As(err, &pe) || pe.Path != tt.file {
				t.Errorf("error = %v, want ParseError for %s", err, tt.file)
			}
		})
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.History.GroupDelay = Duration(time.Second)
	cfg.Search.CaseSensitive = true
	for _, format := range []Format{FormatTOML, FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			if err := Encode(&buf, cfg, format); err != nil {
				t.Fatalf("Encode() error: %v", err)
			}
			got, err := Decode(&buf, format, "buf")
			if err != nil {
				t.Fatalf("Decode() error: %v\n%s", err, buf.String())
			}
			if got != cfg {
				t.Errorf("round trip = %+v, want %+v", got, cfg)
			}
		})
	}
}

func TestApplyEnvMap(t *testing.T) {
	cfg := Default()
	err := ApplyEnvMap(&cfg, "", map[string]string{
		"MARKUP_HISTORY_GROUP_DELAY":   "2s",
		"MARKUP_HISTORY_MAX_ENTRIES":   "5",
		"MARKUP_SEARCH_CASE_SENSITIVE": "true",
		"MARKUP_TABLE_BORDER":          "none",
		"MARKUP_LOG_LEVEL":             " warn ",
		"OTHER_LOG_LEVEL":              "debug",
	})
	if err != nil {
		t.Fatalf("ApplyEnvMap() error: %v", err)
	}
	if cfg.History.GroupDelay.Std() != 2*time.Second || cfg.History.MaxEntries != 5 {
		t.Errorf("History = %+v", cfg.History)
	}
	if !cfg.Search.CaseSensitive || cfg.Behavior.DefaultTableBorder != "none" || cfg.Logging.Level != "warn" {
		t.Errorf("cfg = %+v", cfg)
	}

	bad := Default()
	err = ApplyEnvMap(&bad, "", map[string]string{"MARKUP_HISTORY_MAX_ENTRIES": "many"})
	var pe *ParseError
	if !errors.As(err, &pe) || pe.Path != "MARKUP_HISTORY_MAX_ENTRIES" {
		t.Errorf("error = %v", err)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	if err := os.WriteFile(path, []byte("MARKUP_TEST_DOTENV_LEVEL=error\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MARKUP_TEST_DOTENV_LEVEL", "")
	os.Unsetenv("MARKUP_TEST_DOTENV_LEVEL")

	if err := LoadDotEnv(path, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("LoadDotEnv() error: %v", err)
	}
	if got := os.Getenv("MARKUP_TEST_DOTENV_LEVEL"); got != "error" {
		t.Errorf("MARKUP_TEST_DOTENV_LEVEL = %q", got)
	}

	cfg := Default()
	if err := ApplyEnv(&cfg, "MARKUP_TEST_DOTENV_"); err != nil {
		t.Fatalf("ApplyEnv() error: %v", err)
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("Logging.Level = %q", cfg.Logging.Level)
	}
}

func TestWatcher(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "editor.toml")
	if err := os.WriteFile(path, []byte("[search]\ncase_sensitive = false\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	reloaded := make(chan Config, 4)
	w, err := NewWatcher(path, func(c Config) { reloaded <- c }, WithDebounce(10*time.Millisecond))
	if err != nil {
		t.Fatalf("NewWatcher() error: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(path, []byte("[search]\ncase_sensitive = true\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case cfg := <-reloaded:
		if !cfg.Search.CaseSensitive {
			t.Errorf("reloaded cfg = %+v", cfg)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after write")
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if err := w.Close(); !errors.Is(err, ErrWatcherClosed) {
		t.Errorf("second Close() = %v", err)
	}
	if _, err := NewWatcher(filepath.Join(dir, "x.ini"), func(Config) {}); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("NewWatcher(ini) = %v", err)
	}
}
