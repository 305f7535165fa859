package editor

import (
	"github.com/dshills/markupeditor/internal/config"
	"github.com/dshills/markupeditor/internal/event"
	"github.com/dshills/markupeditor/internal/logging"
	"github.com/dshills/markupeditor/internal/model"
)

// Option configures an Editor during creation.
type Option func(*Editor)

// WithID sets the session ID used as the source of published events.
func WithID(id string) Option {
	return func(e *Editor) {
		if id != "" {
			e.id = id
		}
	}
}

// WithBus publishes events on bus instead of a private one. Sessions that
// share a bus are told apart by event source.
func WithBus(bus event.Bus) Option {
	return func(e *Editor) {
		if bus != nil {
			e.bus = bus
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(e *Editor) {
		if l != nil {
			e.log = l
		}
	}
}

// WithConfig sets the configuration.
func WithConfig(cfg config.Config) Option {
	return func(e *Editor) {
		e.cfg = cfg
	}
}

// WithDoc sets the initial document.
func WithDoc(doc *model.Node) Option {
	return func(e *Editor) {
		e.initDoc = doc
	}
}
