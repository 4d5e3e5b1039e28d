package agentfront

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// probe empirically determines whether the hosting environment serves a
// physically written file at path directly, whether a virtual route through
// this process works, or neither. It is side-effect free on return: the
// temporary route and file are always removed, even when both trials fail.
//
// Two concurrent probes of the same path can race on the route table (last
// registration wins); the random temp suffix keeps their files apart.
func (s *Service) probe(ctx context.Context, path string, sample []byte) ProbeResult {
	res := ProbeResult{
		Path:     path,
		TempPath: tempProbePath(path),
		RanAt:    time.Now().Unix(),
	}

	fileWritten := false
	defer func() {
		// Cleanup is mandatory and best-effort. Failures are logged, never
		// propagated.
		s.routes.Unregister(res.TempPath)
		if fileWritten {
			if err := os.Remove(s.webrootFile(res.TempPath)); err != nil {
				s.cleanupLog.Printf("probe cleanup: remove %s: %v", res.TempPath, err)
			}
		}
		if err := s.store.AppendProbeLog(res); err != nil {
			s.cleanupLog.Printf("probe log: %v", err)
		}
	}()

	// Dynamic trial: transient route, fetched over the public URL so the
	// whole fronting stack is exercised, not just this process.
	s.routes.Register(res.TempPath, sample, "text/plain", true)
	if err := s.fetchAndCompare(ctx, res.TempPath, sample); err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("dynamic: %v", err))
	} else {
		res.DynamicWorks = true
	}
	s.routes.Unregister(res.TempPath)

	// Static trial: write the sample under the webroot and see whether the
	// front server returns it. An existing file at the temp path means
	// something else owns it; never overwrite.
	target := s.webrootFile(res.TempPath)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("static: mkdir: %v", err))
	} else if err := writeFileExcl(target, sample); err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("static: write: %v", err))
	} else {
		fileWritten = true
		if err := s.fetchAndCompare(ctx, res.TempPath, sample); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("static: %v", err))
		} else {
			res.StaticWorks = true
		}
	}

	switch {
	case res.DynamicWorks && res.StaticWorks:
		// Dynamic keeps behavior centralized and overridable after config
		// changes without rewriting files.
		res.Recommended = StrategyDynamic
		log.Printf("probe %s: both strategies work, preferring dynamic", path)
	case res.DynamicWorks:
		res.Recommended = StrategyDynamic
	case res.StaticWorks:
		res.Recommended = StrategyStatic
	default:
		res.Recommended = StrategyNone
	}
	return res
}

func (s *Service) fetchAndCompare(ctx context.Context, path string, want []byte) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.Server.PublicURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept-Encoding", "identity")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if !bytes.Equal(body, want) {
		return fmt.Errorf("body mismatch (%d bytes, want %d)", len(body), len(want))
	}
	return nil
}

// tempProbePath inserts a time-based random suffix before the extension so
// the trial path never collides with real traffic.
func tempProbePath(path string) string {
	suffix := fmt.Sprintf("-probe-%d-%04d", time.Now().UnixNano(), rand.Intn(10000))
	ext := filepath.Ext(path)
	if ext == "" {
		return path + suffix
	}
	return strings.TrimSuffix(path, ext) + suffix + ext
}

// webrootFile maps a URL path to the file the front server would serve it from.
func (s *Service) webrootFile(urlPath string) string {
	return filepath.Join(s.cfg.Server.Webroot, filepath.FromSlash(strings.TrimPrefix(urlPath, "/")))
}

func writeFileExcl(path string, b []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	_, werr := f.Write(b)
	cerr := f.Close()
	if werr != nil {
		return werr
	}
	return cerr
}
