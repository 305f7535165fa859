package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dshills/markupeditor/internal/config"
	"github.com/dshills/markupeditor/internal/editor"
	"github.com/dshills/markupeditor/internal/event"
	"github.com/dshills/markupeditor/internal/event/events"
	"github.com/dshills/markupeditor/internal/logging"
	"github.com/dshills/markupeditor/internal/script"
)

// runner performs one load, script, print cycle per call.
type runner struct {
	opts   options
	cfg    config.Config
	log    *logging.Logger
	stdout io.Writer
	stderr io.Writer
	stdin  io.Reader
}

func (r *runner) once(ctx context.Context) error {
	src, err := readInput(r.opts.InPath, r.stdin)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	ed := editor.New(editor.WithConfig(r.cfg), editor.WithLogger(r.log))
	failures := 0
	if _, err := ed.SubscribeHandler(events.TopicError, event.AsHandler(
		func(_ context.Context, ev event.Event[events.Error]) error {
			failures++
			r.log.Debug("rejected %s: %s", ev.Payload.Code, ev.Payload.Message)
			return nil
		})); err != nil {
		return err
	}
	if err := ed.SetHTML(src); err != nil {
		return err
	}

	if r.opts.ScriptPath != "" || r.opts.Eval != "" {
		rt := script.New(ed, script.WithOutput(r.stderr), script.WithLogger(r.log))
		defer rt.Close()
		if r.opts.ScriptPath != "" {
			if err := rt.DoFile(ctx, r.opts.ScriptPath); err != nil {
				return err
			}
		}
		if r.opts.Eval != "" {
			if err := rt.DoString(ctx, r.opts.Eval); err != nil {
				return err
			}
		}
	}

	html, err := ed.GetHTML(r.cfg.Serialize.Pretty, r.opts.Clean, r.opts.DivID)
	if err != nil {
		return err
	}
	if err := r.write(html + "\n"); err != nil {
		return err
	}
	r.log.WithFields(map[string]any{
		"size":     ed.Doc().Content.Size(),
		"rejected": failures,
	}).Info("wrote %s", r.outName())
	return nil
}

func (r *runner) write(s string) error {
	if r.opts.OutPath == "" {
		_, err := io.WriteString(r.stdout, s)
		return err
	}
	return os.WriteFile(r.opts.OutPath, []byte(s), 0o644)
}

func (r *runner) outName() string {
	if r.opts.OutPath == "" {
		return "stdout"
	}
	return r.opts.OutPath
}
