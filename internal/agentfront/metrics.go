package agentfront

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "agentfront"

type serviceMetrics struct {
	handler http.Handler

	endpointRequests    *prometheus.CounterVec
	proxyUpstreamErrors prometheus.Counter
	beaconFailures      prometheus.Counter
	installedEndpoints  prometheus.Gauge
}

func newServiceMetrics() *serviceMetrics {
	m := &serviceMetrics{
		endpointRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: metricsNamespace, Name: "endpoint_requests_total", Help: "Requests served per agent endpoint"},
			[]string{"endpoint"}),
		proxyUpstreamErrors: prometheus.NewCounter(
			prometheus.CounterOpts{Namespace: metricsNamespace, Name: "proxy_upstream_errors_total", Help: "Failed forwards to the answering backend"}),
		beaconFailures: prometheus.NewCounter(
			prometheus.CounterOpts{Namespace: metricsNamespace, Name: "beacon_failures_total", Help: "Telemetry beacon sends that did not reach the collector"}),
		installedEndpoints: prometheus.NewGauge(
			prometheus.GaugeOpts{Namespace: metricsNamespace, Name: "installed_endpoints", Help: "Agent endpoints currently installed"}),
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(m.endpointRequests, m.proxyUpstreamErrors, m.beaconFailures, m.installedEndpoints)
	m.handler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	return m
}
