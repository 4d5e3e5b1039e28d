package agentfront

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHandleServesInstalledDynamicEndpoint(t *testing.T) {
	cfg := testConfig(t)
	svc := newTestService(t, cfg)
	spec, _ := specForKind(KindAIPlugin)

	if res := svc.install(context.Background(), spec, StrategyDynamic); res.Err != nil {
		t.Fatal(res.Err)
	}

	rr := httptest.NewRecorder()
	svc.handle(rr, httptest.NewRequest(http.MethodGet, spec.Path, nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}
	if want := string(spec.Generate(cfg)); rr.Body.String() != want {
		t.Error("served body differs from generated content")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	cfg := testConfig(t)
	svc := newTestService(t, cfg)
	spec, _ := specForKind(KindLLMs)
	if res := svc.install(context.Background(), spec, StrategyDynamic); res.Err != nil {
		t.Fatal(res.Err)
	}

	svc.handle(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, spec.Path, nil))

	rr := httptest.NewRecorder()
	svc.handle(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, `agentfront_endpoint_requests_total{endpoint="llms"} 1`) {
		t.Errorf("endpoint counter missing from exposition:\n%s", body)
	}
}

func TestUninstallEndpoints(t *testing.T) {
	cfg := testConfig(t)
	cfg.Endpoints = []EndpointConfig{
		{Kind: KindLLMs, Strategy: "static"},
		{Kind: KindAIPlugin, Strategy: "dynamic"},
	}
	svc := newTestService(t, cfg)

	svc.installAll(context.Background())
	if len(svc.store.Endpoints()) != 2 {
		t.Fatalf("installed = %d, want 2", len(svc.store.Endpoints()))
	}

	svc.UninstallEndpoints()

	if n := len(svc.store.Endpoints()); n != 0 {
		t.Errorf("records after uninstall = %d", n)
	}
	if n := svc.routes.Len(); n != 0 {
		t.Errorf("routes after uninstall = %d", n)
	}
}
