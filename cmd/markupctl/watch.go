package main

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/markupeditor/internal/config"
)

const rerunDelay = 100 * time.Millisecond

// watch reruns the cycle when the input or script changes, and reloads
// the configuration when the config file changes. It returns when ctx is
// done.
func (r *runner) watch(ctx context.Context) error {
	var mu sync.Mutex
	rerun := func() {
		mu.Lock()
		defer mu.Unlock()
		if err := r.once(ctx); err != nil {
			r.log.Error("%v", err)
		}
	}

	if r.opts.ConfigPath != "" {
		cw, err := config.NewWatcher(r.opts.ConfigPath, func(cfg config.Config) {
			if err := config.ApplyEnv(&cfg, config.DefaultEnvPrefix); err != nil {
				r.log.Warn("config reload: %v", err)
				return
			}
			mu.Lock()
			r.cfg = cfg
			mu.Unlock()
			r.log.Info("reloaded %s", r.opts.ConfigPath)
			rerun()
		}, config.WithReloadErrorHandler(func(err error) {
			r.log.Warn("config reload: %v", err)
		}))
		if err != nil {
			return err
		}
		defer cw.Close()
	}

	var paths []string
	for _, p := range []string{r.opts.InPath, r.opts.ScriptPath} {
		if p != "" && p != "-" {
			abs, err := filepath.Abs(p)
			if err != nil {
				return err
			}
			paths = append(paths, abs)
		}
	}
	if len(paths) == 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()
	watched := make(map[string]bool)
	for _, p := range paths {
		if err := fsw.Add(filepath.Dir(p)); err != nil {
			return err
		}
		watched[p] = true
	}
	r.log.Info("watching %d files", len(paths))

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !watched[filepath.Clean(ev.Name)] || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			// Editors often write a file in several steps.
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(rerunDelay, rerun)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			r.log.Warn("watch: %v", err)
		}
	}
}
