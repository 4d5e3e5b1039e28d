package agentfront

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"time"
)

// emitBeacon records one endpoint access with the telemetry collector. The
// send happens on a detached goroutine: the caller gets control back before
// any network traffic, and a dead collector costs nothing but a rate-limited
// log line.
func (s *Service) emitBeacon(eventType string, r *http.Request) {
	if !s.cfg.Beacon.Enabled {
		return
	}

	ev := beaconEvent{
		Event:     eventType,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Source:    s.cfg.Server.Origin,
		IP:        clientIP(r),
		UserAgent: r.UserAgent(),
		URL:       s.cfg.Server.PublicURL + r.URL.RequestURI(),
		Referrer:  r.Referer(),
		ClientID:  s.clientID,
	}

	select {
	case s.bgSem <- struct{}{}:
	default:
		// Too many in-flight beacons; drop rather than queue.
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() { <-s.bgSem }()

		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Beacon.timeoutDur)
		defer cancel()
		s.sendBeacon(ctx, ev)
	}()
}

func (s *Service) sendBeacon(ctx context.Context, ev beaconEvent) {
	b, err := json.Marshal(ev)
	if err != nil {
		return
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.Beacon.URL, bytes.NewReader(b))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.beaconClient.Do(req)
	if err != nil {
		s.metrics.beaconFailures.Inc()
		s.beaconLog.Printf("beacon: %v", err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.metrics.beaconFailures.Inc()
		s.beaconLog.Printf("beacon: collector status %d", resp.StatusCode)
	}
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		// First hop is the original client.
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			fwd = fwd[:i]
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
