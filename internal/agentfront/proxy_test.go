package agentfront

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestAskForwardsVerbatim(t *testing.T) {
	type seen struct {
		method string
		path   string
		query  string
		body   []byte
		header http.Header
	}
	var got seen
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got = seen{method: r.Method, path: r.URL.Path, query: r.URL.RawQuery, body: body, header: r.Header.Clone()}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Answer-Id", "abc")
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte(`{"response":"42","site":"example"}`))
	}))
	defer upstream.Close()

	cfg := testConfig(t)
	cfg.Upstream.URL = upstream.URL
	cfg.Upstream.AskRoute = "/v1/ask"
	cfg, err := finishConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	svc := newTestService(t, cfg)

	payload := []byte(`{"question":"what is the answer?"}`)
	req := httptest.NewRequest(http.MethodPost, "/ask?lang=en", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Client-Token", "tok")
	req.Header.Set("Connection", "keep-alive")
	rr := httptest.NewRecorder()
	svc.handle(rr, req)

	if got.method != http.MethodPost {
		t.Errorf("upstream method = %q", got.method)
	}
	if got.path != "/v1/ask" {
		t.Errorf("upstream path = %q, want /v1/ask", got.path)
	}
	if got.query != "lang=en" {
		t.Errorf("upstream query = %q", got.query)
	}
	if !bytes.Equal(got.body, payload) {
		t.Errorf("upstream body = %q, want byte-for-byte copy", got.body)
	}
	if got.header.Get("X-Client-Token") != "tok" {
		t.Error("client header not forwarded")
	}
	if got.header.Get("Connection") != "" {
		t.Error("hop-by-hop Connection header forwarded upstream")
	}

	if rr.Code != http.StatusTeapot {
		t.Errorf("status = %d, want upstream's %d relayed unchanged", rr.Code, http.StatusTeapot)
	}
	if body := rr.Body.String(); body != `{"response":"42","site":"example"}` {
		t.Errorf("body = %q, want upstream body verbatim", body)
	}
	if rr.Header().Get("X-Answer-Id") != "abc" {
		t.Error("upstream header not relayed")
	}
}

func TestAskUpstreamDown(t *testing.T) {
	upstream := httptest.NewServer(http.NotFoundHandler())
	upstream.Close()

	cfg := testConfig(t)
	cfg.Upstream.URL = upstream.URL
	svc := newTestService(t, cfg)

	rr := httptest.NewRecorder()
	svc.handle(rr, httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader("{}")))

	if rr.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "upstream unavailable") {
		t.Errorf("body = %q, want generic diagnostic", rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}
}

func TestAskUpstreamTimeout(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer upstream.Close()

	cfg := testConfig(t)
	cfg.Upstream.URL = upstream.URL
	cfg.Upstream.Timeout = "50ms"
	cfg, err := finishConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	svc := newTestService(t, cfg)

	start := time.Now()
	rr := httptest.NewRecorder()
	svc.handle(rr, httptest.NewRequest(http.MethodGet, "/ask", nil))

	if rr.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502 on timeout", rr.Code)
	}
	if elapsed := time.Since(start); elapsed > 400*time.Millisecond {
		t.Errorf("timeout not enforced, took %v", elapsed)
	}
}

func TestPassthroughToOrigin(t *testing.T) {
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/about" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("about page"))
	}))
	defer origin.Close()

	cfg := testConfig(t)
	cfg.Server.Origin = origin.URL
	cfg, err := finishConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	svc := newTestService(t, cfg)

	rr := httptest.NewRecorder()
	svc.handle(rr, httptest.NewRequest(http.MethodGet, "/about", nil))
	if rr.Code != http.StatusOK || rr.Body.String() != "about page" {
		t.Errorf("passthrough: status=%d body=%q", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	svc.handle(rr, httptest.NewRequest(http.MethodGet, "/missing", nil))
	if rr.Code != http.StatusNotFound {
		t.Errorf("origin 404 not relayed: %d", rr.Code)
	}
}

func TestIsHopByHop(t *testing.T) {
	for _, h := range []string{"connection", "Keep-Alive", "TRANSFER-ENCODING", "host"} {
		if !isHopByHop(h) {
			t.Errorf("%q not classified hop-by-hop", h)
		}
	}
	for _, h := range []string{"Content-Type", "Authorization", "X-Forwarded-For"} {
		if isHopByHop(h) {
			t.Errorf("%q wrongly classified hop-by-hop", h)
		}
	}
}
