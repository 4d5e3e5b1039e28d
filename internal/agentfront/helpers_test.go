package agentfront

import (
	"net/http"
	"path/filepath"
	"sync"
	"testing"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	var cfg Config
	cfg.Server.Origin = "http://origin.invalid"
	cfg.Server.Webroot = t.TempDir()
	cfg.Upstream.URL = "http://upstream.invalid"
	cfg, err := finishConfig(cfg)
	if err != nil {
		t.Fatalf("finishConfig: %v", err)
	}
	return cfg
}

func newTestService(t *testing.T, cfg Config) *Service {
	t.Helper()
	st, err := openStateStore(filepath.Join(t.TempDir(), "db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	svc, err := newServiceWithStore(cfg, st)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	t.Cleanup(svc.Close)
	return svc
}

// switchableHandler lets tests start an httptest server before the service
// that will back it exists.
type switchableHandler struct {
	mu sync.Mutex
	h  http.Handler
}

func (s *switchableHandler) Set(h http.Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.h = h
}

func (s *switchableHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	h := s.h
	s.mu.Unlock()
	if h == nil {
		http.Error(w, "not ready", http.StatusServiceUnavailable)
		return
	}
	h.ServeHTTP(w, r)
}
