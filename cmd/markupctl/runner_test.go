package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dshills/markupeditor/internal/config"
	"github.com/dshills/markupeditor/internal/logging"
)

func newRunner(opts options, stdin string) (*runner, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	return &runner{
		opts:   opts,
		cfg:    config.Default(),
		log:    logging.Null(),
		stdout: &stdout,
		stderr: &stderr,
		stdin:  strings.NewReader(stdin),
	}, &stdout, &stderr
}

func TestRunnerOnce(t *testing.T) {
	tests := []struct {
		name       string
		opts       options
		stdin      string
		wantOut    string
		wantStderr string
	}{
		{
			name:    "normalizes stdin",
			opts:    options{InPath: "-", Clean: true},
			stdin:   "<p>Hello</p>",
			wantOut: "<p>Hello</p>\n",
		},
		{
			name:       "runs eval",
			opts:       options{InPath: "-", Clean: true, Eval: `editor.select(1) editor.style("H2") print("done")`},
			stdin:      "<p>Hello</p>",
			wantOut:    "<h2>Hello</h2>\n",
			wantStderr: "done\n",
		},
		{
			name:    "empty input",
			opts:    options{Clean: true},
			wantOut: "<p></p>\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, stdout, stderr := newRunner(tt.opts, tt.stdin)
			if err := r.once(context.Background()); err != nil {
				t.Fatalf("once() error: %v", err)
			}
			if got := stdout.String(); got != tt.wantOut {
				t.Errorf("stdout = %q, want %q", got, tt.wantOut)
			}
			if got := stderr.String(); got != tt.wantStderr {
				t.Errorf("stderr = %q, want %q", got, tt.wantStderr)
			}
		})
	}
}

func TestRunnerFiles(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.html")
	script := filepath.Join(dir, "fix.lua")
	out := filepath.Join(dir, "out.html")
	if err := os.WriteFile(in, []byte("<p>one</p>"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(script, []byte(`editor.select(1) editor.list("UL")`), 0o644); err != nil {
		t.Fatal(err)
	}

	r, stdout, _ := newRunner(options{InPath: in, ScriptPath: script, OutPath: out, Clean: true}, "")
	if err := r.once(context.Background()); err != nil {
		t.Fatalf("once() error: %v", err)
	}
	if stdout.Len() != 0 {
		t.Errorf("stdout = %q, want nothing", stdout)
	}
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if got := string(b); got != "<ul><li><p>one</p></li></ul>\n" {
		t.Errorf("output = %q", got)
	}
}

func TestRunnerErrors(t *testing.T) {
	tests := []struct {
		name string
		opts options
	}{
		{"missing input", options{InPath: filepath.Join(t.TempDir(), "nope.html")}},
		{"script error", options{Eval: "error('boom')"}},
		{"missing div", options{DivID: "nope"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _, _ := newRunner(tt.opts, "")
			if err := r.once(context.Background()); err == nil {
				t.Error("once() succeeded, want error")
			}
		})
	}
}

func TestReadInput(t *testing.T) {
	got, err := readInput("-", strings.NewReader("<p>x</p>"))
	if err != nil || got != "<p>x</p>" {
		t.Errorf("readInput(-) = %q, %v", got, err)
	}
	if got, err := readInput("", nil); err != nil || got != "" {
		t.Errorf("readInput(\"\") = %q, %v", got, err)
	}
}

func TestRunnerCountsRejectedCommands(t *testing.T) {
	var logs bytes.Buffer
	r, stdout, _ := newRunner(options{InPath: "-", Clean: true, Eval: `editor.select(1) editor.style("H9") editor.style("H3")`}, "<p>Hi</p>")
	r.log = logging.New(logging.Config{Level: logging.LevelDebug, Output: &logs})
	if err := r.once(context.Background()); err != nil {
		t.Fatalf("once() error: %v", err)
	}
	if got := stdout.String(); got != "<h3>Hi</h3>\n" {
		t.Errorf("stdout = %q", got)
	}
	out := logs.String()
	if !strings.Contains(out, "rejected Style: ") || !strings.Contains(out, "rejected=1") {
		t.Errorf("log = %q, want one rejected Style command", out)
	}
}
