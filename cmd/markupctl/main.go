// Package main is the entry point for markupctl, which loads HTML into an
// editor session, runs a Lua script against it and prints the result.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dshills/markupeditor/internal/config"
	"github.com/dshills/markupeditor/internal/logging"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// options are the command line settings.
type options struct {
	ConfigPath string
	EnvPath    string
	InPath     string
	OutPath    string
	ScriptPath string
	Eval       string
	DivID      string
	LogLevel   string
	Pretty     bool
	Clean      bool
	Watch      bool
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
	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	log := logging.New(logging.Config{
		Level:  logging.ParseLevel(cfg.Logging.Level),
		Output: os.Stderr,
		Prefix: "markupctl",
	})
	logging.SetDefault(log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	r := &runner{opts: opts, cfg: cfg, log: log, stdout: os.Stdout, stderr: os.Stderr, stdin: os.Stdin}
	if err := r.once(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if !opts.Watch {
			return 1
		}
	}
	if !opts.Watch {
		return 0
	}
	if err := r.watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
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
	if opts.Pretty {
		cfg.Serialize.Pretty = true
	}
	return cfg, cfg.Validate()
}

func parseFlags() options {
	var opts options
	var showVersion bool

	flag.StringVar(&opts.ConfigPath, "config", "", "Path to a TOML or YAML configuration file")
	flag.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.EnvPath, "env", ".env", "Path to a .env file")
	flag.StringVar(&opts.InPath, "in", "", "Input HTML file, - for stdin")
	flag.StringVar(&opts.InPath, "i", "", "Input HTML file (shorthand)")
	flag.StringVar(&opts.OutPath, "out", "", "Output file (default stdout)")
	flag.StringVar(&opts.OutPath, "o", "", "Output file (shorthand)")
	flag.StringVar(&opts.ScriptPath, "script", "", "Lua script to run against the document")
	flag.StringVar(&opts.ScriptPath, "s", "", "Lua script (shorthand)")
	flag.StringVar(&opts.Eval, "e", "", "Lua source to run after the script")
	flag.StringVar(&opts.DivID, "div", "", "Print only the div with this id")
	flag.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.BoolVar(&opts.Pretty, "pretty", false, "Indent the output HTML")
	flag.BoolVar(&opts.Clean, "clean", true, "Drop editing-only markup from the output")
	flag.BoolVar(&opts.Watch, "watch", false, "Rerun when the input, script or config changes")
	flag.BoolVar(&opts.Watch, "w", false, "Rerun on change (shorthand)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")

	flag.Usage = func() {
		out := flag.CommandLine.Output()
		fmt.Fprintf(out, "markupctl - run editor commands over HTML documents\n\n")
		fmt.Fprintf(out, "Usage: markupctl [options]\n\n")
		fmt.Fprintf(out, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(out, "\nExamples:\n")
		fmt.Fprintf(out, "  markupctl -i doc.html -pretty                 Normalize and indent a document\n")
		fmt.Fprintf(out, "  markupctl -i doc.html -s fix.lua -o out.html  Apply a script\n")
		fmt.Fprintf(out, "  markupctl -i doc.html -e 'editor.select_all() editor.style(\"P\")'\n")
		fmt.Fprintf(out, "  markupctl -i doc.html -s fix.lua -w           Rerun on every save\n")
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("markupctl %s\n", version)
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
	if opts.InPath == "" && flag.NArg() > 0 {
		opts.InPath = flag.Arg(0)
	}
	return opts
}

// readInput reads the input document. An empty path gives an empty
// document.
func readInput(path string, stdin io.Reader) (string, error) {
	switch path {
	case "":
		return "", nil
	case "-":
		b, err := io.ReadAll(stdin)
		return string(b), err
	}
	b, err := os.ReadFile(path)
	return string(b), err
}
