// Package main is the entry point for markupd, which serves editor
// sessions to a host over websockets.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dshills/markupeditor/internal/config"
	"github.com/dshills/markupeditor/internal/logging"
	"github.com/dshills/markupeditor/internal/server"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

type options struct {
	ConfigPath string
	EnvPath    string
	Addr       string
	LogLevel   string
	AnyOrigin  bool
}

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	if err := config.LoadDotEnv(opts.EnvPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if opts.Addr == "" {
		opts.Addr = os.Getenv("MARKUPD_ADDR")
	}
	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	log := logging.New(logging.Config{
		Level:  logging.ParseLevel(cfg.Logging.Level),
		Output: os.Stderr,
		Prefix: "markupd",
	})
	logging.SetDefault(log)

	var mu sync.RWMutex
	current := func() config.Config {
		mu.RLock()
		defer mu.RUnlock()
		return cfg
	}

	if opts.ConfigPath != "" {
		w, err := config.NewWatcher(opts.ConfigPath, func(next config.Config) {
			if err := config.ApplyEnv(&next, config.DefaultEnvPrefix); err != nil {
				log.Warn("config reload: %v", err)
				return
			}
			if err := next.Validate(); err != nil {
				log.Warn("config reload: %v", err)
				return
			}
			mu.Lock()
			cfg = next
			mu.Unlock()
			log.SetLevel(logging.ParseLevel(next.Logging.Level))
			log.Info("configuration reloaded; applies to new sessions")
		}, config.WithReloadErrorHandler(func(err error) {
			log.Warn("config reload: %v", err)
		}))
		if err != nil {
			log.Error("watch %s: %v", opts.ConfigPath, err)
			return 1
		}
		defer w.Close()
	}

	srvOpts := []server.Option{server.WithLogger(log), server.WithConfig(current)}
	if opts.AnyOrigin {
		srvOpts = append(srvOpts, server.WithOriginCheck(func(*http.Request) bool { return true }))
	}
	srv := server.New(srvOpts...)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := srv.ListenAndServe(ctx, opts.Addr); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("serve: %v", err)
		return 1
	}
	log.Info("shut down")
	return 0
}

func loadConfig(opts options) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return cfg, err
	}
	if err := config.ApplyEnv(&cfg, config.DefaultEnvPrefix); err != nil {
		return cfg, err
	}
	if opts.LogLevel != "" {
		cfg.Logging.Level = opts.LogLevel
	}
	return cfg, cfg.Validate()
}

func parseFlags() options {
	var opts options
	var showVersion bool

	flag.StringVar(&opts.ConfigPath, "config", "", "Path to a TOML or YAML configuration file")
	flag.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.EnvPath, "env", ".env", "Path to a .env file")
	flag.StringVar(&opts.Addr, "addr", "", "Listen address (default $MARKUPD_ADDR or "+server.DefaultAddr+")")
	flag.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.BoolVar(&opts.AnyOrigin, "any-origin", false, "Accept websocket connections from any origin")
	flag.BoolVar(&showVersion, "version", false, "Show version information")

	flag.Usage = func() {
		out := flag.CommandLine.Output()
		fmt.Fprintf(out, "markupd - serve editor sessions over websockets\n\n")
		fmt.Fprintf(out, "Usage: markupd [options]\n\n")
		fmt.Fprintf(out, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("markupd %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	switch opts.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		fmt.Fprintf(os.Stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", opts.LogLevel)
		os.Exit(1)
	}
	return opts
}
