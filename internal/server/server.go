package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/dshills/markupeditor/internal/config"
	"github.com/dshills/markupeditor/internal/editor"
	"github.com/dshills/markupeditor/internal/logging"
)

// DefaultAddr is the listen address used when none is given.
const DefaultAddr = "127.0.0.1:8765"

// Server bridges editor sessions to a host over HTTP and websockets.
// Each websocket connection owns one session for its lifetime.
type Server struct {
	router   *mux.Router
	sessions *editor.Registry
	upgrader websocket.Upgrader
	log      *logging.Logger

	cfgFn  func() config.Config
	origin func(*http.Request) bool
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithConfig sets the function that supplies the configuration of new
// sessions. It is called once per connection, so reloaded configuration
// applies to sessions opened afterwards.
func WithConfig(fn func() config.Config) Option {
	return func(s *Server) {
		if fn != nil {
			s.cfgFn = fn
		}
	}
}

// WithOriginCheck sets the websocket origin check. The default accepts
// same-host origins only.
func WithOriginCheck(fn func(*http.Request) bool) Option {
	return func(s *Server) {
		s.origin = fn
	}
}

// New creates a server with its routes installed.
func New(opts ...Option) *Server {
	s := &Server{
		router:   mux.NewRouter(),
		sessions: editor.NewRegistry(),
		log:      logging.Default(),
		cfgFn:    config.Default,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithComponent("server")
	s.upgrader = websocket.Upgrader{CheckOrigin: s.origin}

	s.router.HandleFunc("/ws", s.handleWebSocket)
	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/sessions", s.listSessions).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}/html", s.getHTML).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}/html", s.putHTML).Methods(http.MethodPut)
	api.HandleFunc("/sessions/{id}/selection", s.getSelection).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}/focus", s.focus).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/history", s.getHistory).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}/stats", s.getStats).Methods(http.MethodGet)
	return s
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Sessions returns the registry of open sessions.
func (s *Server) Sessions() *editor.Registry { return s.sessions }

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.log.Info("listening on %s", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*editor.Editor, bool) {
	id := mux.Vars(r)["id"]
	e, ok := s.sessions.Get(id)
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
	}
	return e, ok
}

func (s *Server) listSessions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"sessions": s.sessions.IDs()})
}

// getHTML serves the session's document. Query parameters pretty, clean
// and div select the output form.
func (s *Server) getHTML(w http.ResponseWriter, r *http.Request) {
	e, ok := s.session(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	pretty, _ := strconv.ParseBool(q.Get("pretty"))
	clean := true
	if v := q.Get("clean"); v != "" {
		clean, _ = strconv.ParseBool(v)
	}
	html, err := e.GetHTML(pretty, clean, q.Get("div"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(html))
}

func (s *Server) putHTML(w http.ResponseWriter, r *http.Request) {
	e, ok := s.session(w, r)
	if !ok {
		return
	}
	var body struct {
		HTML string `json:"html"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err := e.SetHTML(body.HTML); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getSelection(w http.ResponseWriter, r *http.Request) {
	e, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, selectionOf(e))
}

func (s *Server) getHistory(w http.ResponseWriter, r *http.Request) {
	e, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, historyOf(e))
}

// getStats reports the event counters of the session's bus.
func (s *Server) getStats(w http.ResponseWriter, r *http.Request) {
	e, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, statsOf(e))
}

func (s *Server) focus(w http.ResponseWriter, r *http.Request) {
	e, ok := s.session(w, r)
	if !ok {
		return
	}
	s.sessions.Focus(e)
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError reports an editor error. Rejections are the caller's fault;
// anything else is a server failure.
func writeError(w http.ResponseWriter, err error) {
	info := errorOf(err)
	status := http.StatusUnprocessableEntity
	if info.Code == string(editor.CodeInternal) {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, map[string]any{"error": info})
}
