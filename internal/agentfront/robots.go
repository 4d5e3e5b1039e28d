package agentfront

import (
	"context"
	"io"
	"net/http"
	"strings"
)

// handleRobots serves the origin's robots.txt with the agent directives block
// appended. The origin's own output is never modified, only extended; when the
// origin has no robots.txt (or errors), just the block is served.
func (s *Service) handleRobots(w http.ResponseWriter, r *http.Request) {
	base := s.fetchOriginRobots(r.Context())

	var b strings.Builder
	if base != "" {
		b.WriteString(strings.TrimRight(base, "\n"))
		b.WriteString("\n\n")
	}
	// Don't double-append when the origin's output already went through us.
	if !strings.Contains(base, textMarker) {
		b.WriteString(robotsBlock())
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, b.String())
}

func (s *Service) fetchOriginRobots(ctx context.Context) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.Server.Origin+"/robots.txt", nil)
	if err != nil {
		return ""
	}
	req.Header.Set("Accept-Encoding", "identity")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return ""
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return ""
	}
	return string(body)
}
