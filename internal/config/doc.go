// Package config holds the typed configuration of editor sessions and
// loads it from TOML, YAML, the environment and .env files.
//
// Precedence, lowest first:
//
//  1. Default values
//  2. The configuration file (.toml, .yaml or .yml)
//  3. Variables from .env files that are not already set
//  4. Environment variables with the MARKUP_ prefix
//
// A Watcher reloads the file when it changes so long-running sessions can
// pick up new settings without restarting.
package config
