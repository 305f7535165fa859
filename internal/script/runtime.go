package script

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/markupeditor/internal/editor"
	"github.com/dshills/markupeditor/internal/event"
	"github.com/dshills/markupeditor/internal/logging"
)

// DefaultTimeout bounds one script execution.
const DefaultTimeout = 5 * time.Second

// Runtime is a Lua state bound to one editor session.
//
// gopher-lua states are not goroutine-safe. Runs are serialized by the
// runtime's mutex, and event handlers execute on the running goroutine
// because the editor publishes synchronously.
type Runtime struct {
	L  *lua.LState
	ed *editor.Editor

	mu      sync.Mutex
	out     io.Writer
	log     *logging.Logger
	timeout time.Duration

	subs    map[string]event.Subscription
	running bool
	closed  bool
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithOutput sets where print writes. The default is stdout.
func WithOutput(w io.Writer) Option {
	return func(r *Runtime) {
		r.out = w
	}
}

// WithTimeout bounds each run. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(r *Runtime) {
		r.timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(r *Runtime) {
		if l != nil {
			r.log = l
		}
	}
}

// New creates a runtime for ed.
func New(ed *editor.Editor, opts ...Option) *Runtime {
	r := &Runtime{
		ed:      ed,
		out:     os.Stdout,
		log:     logging.Default(),
		timeout: DefaultTimeout,
		subs:    make(map[string]event.Subscription),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.WithComponent("script")

	r.L = lua.NewState(lua.Options{SkipOpenLibs: true})
	openLibraries(r.L)
	r.installPrint()
	r.register()
	return r
}

// Editor returns the bound session.
func (r *Runtime) Editor() *editor.Editor { return r.ed }

// DoString runs Lua source.
func (r *Runtime) DoString(ctx context.Context, code string) error {
	return r.run(ctx, "chunk", func() error { return r.L.DoString(code) })
}

// DoFile runs a Lua file.
func (r *Runtime) DoFile(ctx context.Context, path string) error {
	return r.run(ctx, path, func() error { return r.L.DoFile(path) })
}

func (r *Runtime) run(ctx context.Context, name string, fn func() error) (err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	r.L.SetContext(ctx)
	r.running = true
	defer func() {
		r.running = false
		r.L.RemoveContext()
		if p := recover(); p != nil {
			err = fmt.Errorf("lua panic in %s: %v", name, p)
		}
	}()

	start := time.Now()
	err = fn()
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		err = fmt.Errorf("%w: %s: %v", ErrTimeout, name, err)
	}
	r.log.WithFields(map[string]any{"script": name, "took": time.Since(start)}).Debug("ran script")
	return err
}

// Close cancels the script's subscriptions and releases the Lua state.
func (r *Runtime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	for id, sub := range r.subs {
		sub.Cancel()
		delete(r.subs, id)
	}
	r.L.Close()
	r.closed = true
	return nil
}
