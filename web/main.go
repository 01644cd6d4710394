// Package web serves a session over HTTP: a status page, a server-sent
// event stream of snapshots, and a JSON command endpoint.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"io"
	"net/http"
	"time"

	"github.com/Masterminds/sprig/v3"
	"github.com/lin71008/RollerCoasters/config"
	"github.com/lin71008/RollerCoasters/notify"
	"github.com/lin71008/RollerCoasters/session"
	"github.com/lin71008/RollerCoasters/store"
	"github.com/r3labs/sse/v2"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

//go:embed index.html
var templates embed.FS

const (
	snapshotStream = "snapshot"
	maxCommandSize = 1 << 16
)

type Server struct {
	conf     config.Config
	snaps    *notify.Multiplexer[session.Snapshot]
	requests chan<- session.Request
	sse      *sse.Server
	sm       *http.ServeMux
	t        *template.Template
}

func NewServer(conf config.Config, snaps *notify.Multiplexer[session.Snapshot], requests chan<- session.Request) *Server {
	s := &Server{
		conf:     conf,
		snaps:    snaps,
		requests: requests,
		sse:      sse.New(),
		sm:       http.NewServeMux(),
	}
	s.sse.AutoReplay = false
	s.sse.CreateStream(snapshotStream)
	s.t = template.Must(template.New("index").Funcs(sprig.FuncMap()).Funcs(template.FuncMap{
		"isSelected": func(snap session.Snapshot, i int) bool {
			return snap.Selected == i
		},
	}).ParseFS(templates, "*.html"))
	s.sm.HandleFunc("/", s.handleIndex)
	s.sm.HandleFunc("/events", s.sse.ServeHTTP)
	s.sm.HandleFunc("/command", s.handleCommand)
	return s
}

// Handler returns the server's routes wrapped in CORS handling.
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: s.conf.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
	})
	return c.Handler(s.sm)
}

// Forward publishes every snapshot to the event stream until ctx is done.
func (s *Server) Forward(ctx context.Context) {
	ch := make(chan session.Snapshot, 1)
	s.snaps.Subscribe("web", ch)
	defer s.snaps.Unsubscribe(ch)
	for {
		select {
		case <-ctx.Done():
			return
		case snap := <-ch:
			data, err := json.Marshal(snap)
			if err != nil {
				zap.S().Errorf("web: marshal snapshot: %s", err)
				continue
			}
			s.sse.TryPublish(snapshotStream, &sse.Event{
				Data: data,
			})
		}
	}
}

// ListenAndServe serves on conf.Listen until ctx is done, and returns once
// open connections have been shut down.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.conf.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	// open event streams never go idle, so they are closed as shutdown starts
	srv.RegisterOnShutdown(s.sse.Close)
	go s.Forward(ctx)
	shutdown := make(chan struct{})
	go func() {
		defer close(shutdown)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			zap.S().Warnf("web: shutdown: %s", err)
		}
	}()
	zap.S().Infof("web: listening on %s", s.conf.Listen)
	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		<-shutdown
		return nil
	}
	return err
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	snap, ok := s.snaps.Current()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if !ok {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	err := s.t.ExecuteTemplate(w, "index", map[string]interface{}{
		"ok":   ok,
		"snap": snap,
		"now":  time.Now(),
	})
	if err != nil {
		zap.S().Errorf("web: render index: %s", err)
	}
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxCommandSize))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	cmd, err := session.ParseCommand(data)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	err = session.Send(r.Context(), s.requests, cmd)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, store.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	default:
		http.Error(w, err.Error(), http.StatusConflict)
	}
}
