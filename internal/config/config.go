package config

import (
	"fmt"
	"time"
)

// Border styles accepted for Behavior.DefaultTableBorder.
var borderStyles = map[string]bool{"outer": true, "header": true, "cell": true, "none": true}

// Config is the complete configuration of an editor session.
type Config struct {
	History   HistoryConfig   `toml:"history" yaml:"history"`
	Search    SearchConfig    `toml:"search" yaml:"search"`
	Behavior  BehaviorConfig  `toml:"behavior" yaml:"behavior"`
	Serialize SerializeConfig `toml:"serialize" yaml:"serialize"`
	Logging   LoggingConfig   `toml:"logging" yaml:"logging"`
}

// HistoryConfig controls undo grouping.
type HistoryConfig struct {
	// GroupDelay is how long typing pauses before a new undo unit starts.
	GroupDelay Duration `toml:"group_delay" yaml:"group_delay"`
	// MaxEntries bounds the undo stack.
	MaxEntries int `toml:"max_entries" yaml:"max_entries"`
}

// SearchConfig holds search defaults.
type SearchConfig struct {
	CaseSensitive bool `toml:"case_sensitive" yaml:"case_sensitive"`
}

// BehaviorConfig tunes command behavior.
type BehaviorConfig struct {
	// SelectImage selects an inserted image instead of placing the cursor
	// after it.
	SelectImage bool `toml:"select_image" yaml:"select_image"`
	// InsertLinkSelectsText selects the link text inserted at a cursor.
	InsertLinkSelectsText bool `toml:"insert_link_selects_text" yaml:"insert_link_selects_text"`
	// StripHostElements drops div and button elements from loaded and
	// pasted HTML.
	StripHostElements bool `toml:"strip_host_elements" yaml:"strip_host_elements"`
	// DefaultTableBorder is the border style of new tables.
	DefaultTableBorder string `toml:"default_table_border" yaml:"default_table_border"`
}

// SerializeConfig controls HTML output of GetHTML callers that do not
// choose explicitly.
type SerializeConfig struct {
	Pretty bool   `toml:"pretty" yaml:"pretty"`
	Indent string `toml:"indent" yaml:"indent"`
}

// LoggingConfig selects the log level.
type LoggingConfig struct {
	Level string `toml:"level" yaml:"level"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		History: HistoryConfig{
			GroupDelay: Duration(500 * time.Millisecond),
			MaxEntries: 1000,
		},
		Behavior: BehaviorConfig{
			InsertLinkSelectsText: true,
			StripHostElements:     true,
			DefaultTableBorder:    "cell",
		},
		Serialize: SerializeConfig{Indent: "  "},
		Logging:   LoggingConfig{Level: "info"},
	}
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.History.GroupDelay < 0 {
		return &ValidationError{Field: "history.group_delay", Message: "must not be negative"}
	}
	if c.History.MaxEntries < 0 {
		return &ValidationError{Field: "history.max_entries", Message: "must not be negative"}
	}
	if c.Behavior.DefaultTableBorder != "" && !borderStyles[c.Behavior.DefaultTableBorder] {
		return &ValidationError{
			Field:   "behavior.default_table_border",
			Message: fmt.Sprintf("unknown border style %q", c.Behavior.DefaultTableBorder),
		}
	}
	return nil
}

// Duration is a time.Duration written as a string such as "250ms".
type Duration time.Duration

// Std returns the duration as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// String formats the duration.
func (d Duration) String() string { return time.Duration(d).String() }

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}
