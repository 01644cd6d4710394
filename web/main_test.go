package web

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lin71008/RollerCoasters/config"
	"github.com/lin71008/RollerCoasters/notify"
	"github.com/lin71008/RollerCoasters/session"
	"github.com/lin71008/RollerCoasters/store"
)

type fixture struct {
	sess   *session.Session
	snaps  *notify.Multiplexer[session.Snapshot]
	server *Server
	ts     *httptest.Server
}

func setup(t *testing.T) *fixture {
	conf := config.Default()
	conf.TickRate = 100
	st, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("store.Open: %s", err)
	}
	t.Cleanup(func() { st.Close() })
	snaps := notify.NewMultiplexer[session.Snapshot]("test")
	sess := session.New(conf, st, snaps)
	requests := make(chan session.Request)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go sess.Run(ctx, requests)
	s := NewServer(conf, snaps, requests)
	go s.Forward(ctx)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return &fixture{sess: sess, snaps: snaps, server: s, ts: ts}
}

func (f *fixture) post(t *testing.T, body string) (int, string) {
	resp, err := http.Post(f.ts.URL+"/command", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST: %s", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %s", err)
	}
	return resp.StatusCode, string(data)
}

// waitFor polls the latest snapshot until cond holds.
func (f *fixture) waitFor(t *testing.T, cond func(session.Snapshot) bool) session.Snapshot {
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if snap, ok := f.snaps.Current(); ok && cond(snap) {
			return snap
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met before deadline")
	return session.Snapshot{}
}

func TestCommand(t *testing.T) {
	f := setup(t)
	type testCase struct {
		body string
		code int
	}
	cases := []testCase{
		{`{"type": "add-point"}`, http.StatusNoContent},
		{`{"type": "select", "index": 2}`, http.StatusNoContent},
		{`{"type": "move-point", "axis": "y", "delta": 3}`, http.StatusNoContent},
		{`{"type": "select", "index": 99}`, http.StatusConflict},
		{`{"type": "load-track", "id": "5b0c6ad4-9d1e-4c55-9e2d-0c8f1f0b7a11"}`, http.StatusNotFound},
		{`{"type": "teleport"}`, http.StatusBadRequest},
		{`{`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		code, body := f.post(t, tc.body)
		if code != tc.code {
			t.Fatalf("%s: got %d (%s), want %d", tc.body, code, body, tc.code)
		}
	}
	snap := f.waitFor(t, func(s session.Snapshot) bool { return len(s.Track.Points) == 5 && s.Selected == 2 })
	if got := snap.Track.Points[2].Pos.Y; got != 8 {
		t.Fatalf("moved point Y = %g", got)
	}

	resp, err := http.Get(f.ts.URL + "/command")
	if err != nil {
		t.Fatalf("GET: %s", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("GET /command: %d", resp.StatusCode)
	}
}

func TestIndex(t *testing.T) {
	f := setup(t)
	f.waitFor(t, func(session.Snapshot) bool { return true })
	resp, err := http.Get(f.ts.URL + "/")
	if err != nil {
		t.Fatalf("GET: %s", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %s", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d: %s", resp.StatusCode, data)
	}
	body := string(data)
	for _, want := range []string{"cardinal", "4 control points", f.sess.ID.String()} {
		if !strings.Contains(body, want) {
			t.Fatalf("index does not contain %q:\n%s", want, body)
		}
	}

	resp, err = http.Get(f.ts.URL + "/nothing-here")
	if err != nil {
		t.Fatalf("GET: %s", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown path: %d", resp.StatusCode)
	}
}

func TestIndexBeforeFirstSnapshot(t *testing.T) {
	snaps := notify.NewMultiplexer[session.Snapshot]("test")
	s := NewServer(config.Default(), snaps, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "no session running yet") {
		t.Fatalf("body: %s", rec.Body.String())
	}
}

func TestCORS(t *testing.T) {
	snaps := notify.NewMultiplexer[session.Snapshot]("test")
	s := NewServer(config.Default(), snaps, nil)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://example.com")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("Access-Control-Allow-Origin = %q", got)
	}
}

func TestEvents(t *testing.T) {
	f := setup(t)
	if code, body := f.post(t, `{"type": "set-running", "on": true}`); code != http.StatusNoContent {
		t.Fatalf("set-running: %d %s", code, body)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.ts.URL+"/events?stream=snapshot", nil)
	if err != nil {
		t.Fatalf("NewRequest: %s", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /events: %s", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Fatalf("Content-Type %q", ct)
	}
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		var snap session.Snapshot
		if err := json.Unmarshal([]byte(strings.TrimSpace(strings.TrimPrefix(line, "data:"))), &snap); err != nil {
			t.Fatalf("unmarshal event: %s", err)
		}
		if snap.ID != f.sess.ID {
			t.Fatalf("event for session %s", snap.ID)
		}
		return
	}
	t.Fatalf("no snapshot event received: %v", scanner.Err())
}

func TestShutdownWithOpenStream(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %s", err)
	}
	addr := l.Addr().String()
	l.Close()

	conf := config.Default()
	conf.Listen = addr
	snaps := notify.NewMultiplexer[session.Snapshot]("test")
	s := NewServer(conf, snaps, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx) }()

	var resp *http.Response
	deadline := time.Now().Add(5 * time.Second)
	for {
		resp, err = http.Get("http://" + addr + "/events?stream=" + snapshotStream)
		if err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("GET /events: %s", err)
		}
		time.Sleep(10 * time.Millisecond)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}

	start := time.Now()
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("ListenAndServe: %s", err)
		}
	case <-time.After(4 * time.Second):
		t.Fatalf("shutdown waited on the open event stream")
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Fatalf("shutdown took %s", elapsed)
	}
}
