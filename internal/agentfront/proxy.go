package agentfront

import (
	"context"
	"io"
	"net/http"
	"strings"
)

// Headers that tie to one hop and must not cross the proxy in either
// direction (RFC 9110 section 7.6.1, plus Host which Go derives from the URL).
var hopByHopHeaders = []string{
	"Host",
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Proxy-Connection",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

func isHopByHop(name string) bool {
	for _, h := range hopByHopHeaders {
		if strings.EqualFold(name, h) {
			return true
		}
	}
	return false
}

// handleAsk forwards the inbound request to the answering backend and relays
// the response verbatim. Upstream trouble of any kind turns into a generic
// 502 body, never a stack trace.
func (s *Service) handleAsk(w http.ResponseWriter, r *http.Request) {
	upstreamURL := s.cfg.Upstream.URL + s.cfg.Upstream.AskRoute
	if r.URL.RawQuery != "" {
		upstreamURL += "?" + r.URL.RawQuery
	}

	var body io.Reader
	if r.Body != nil {
		body = http.MaxBytesReader(w, r.Body, s.cfg.Upstream.maxBodyBytes)
	}
	req, err := http.NewRequestWithContext(r.Context(), r.Method, upstreamURL, body)
	if err != nil {
		s.upstreamError(w, err)
		return
	}
	copyHeaders(req.Header, r.Header)

	// Single attempt, bounded by the upstream client timeout.
	resp, err := s.upstreamClient.Do(req)
	if err != nil {
		s.upstreamError(w, err)
		return
	}
	defer resp.Body.Close()

	for k, vs := range resp.Header {
		if isHopByHop(k) || strings.EqualFold(k, "Content-Length") {
			continue
		}
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	w.WriteHeader(resp.StatusCode)
	n, _ := io.Copy(w, resp.Body)
	s.stats.Observe(int(n))
}

func (s *Service) upstreamError(w http.ResponseWriter, err error) {
	s.metrics.proxyUpstreamErrors.Inc()
	s.upstreamLog.Printf("ask upstream: %v", err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadGateway)
	_, _ = w.Write([]byte(`{"error":"upstream unavailable"}` + "\n"))
}

// passthrough hands any request we do not own to the site origin, so the
// sidecar can sit in front of the whole site.
func (s *Service) passthrough(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Upstream.timeoutDur)
	defer cancel()

	originURL := s.cfg.Server.Origin + r.URL.RequestURI()
	req, err := http.NewRequestWithContext(ctx, r.Method, originURL, r.Body)
	if err != nil {
		http.Error(w, "bad gateway", http.StatusBadGateway)
		return
	}
	copyHeaders(req.Header, r.Header)
	req.Header.Set("Accept-Encoding", "identity")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		http.Error(w, "bad gateway", http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()

	for k, vs := range resp.Header {
		if isHopByHop(k) || strings.EqualFold(k, "Content-Length") {
			continue
		}
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	w.WriteHeader(resp.StatusCode)
	n, _ := io.Copy(w, resp.Body)
	s.stats.Observe(int(n))
}

func copyHeaders(dst, src http.Header) {
	for k, vs := range src {
		if isHopByHop(k) {
			continue
		}
		for _, v := range vs {
			dst.Add(k, v)
		}
	}
}
