package agentfront

import (
	"bytes"
	"context"
	"fmt"
	"hash/crc32"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// install puts one endpoint into service under exactly one strategy. With an
// override the probe is skipped; otherwise the prober's recommendation is
// followed. A second call with unchanged content and strategy does nothing,
// leaving file modification times alone.
func (s *Service) install(ctx context.Context, spec EndpointSpec, override Strategy) InstallResult {
	content := spec.Generate(s.cfg)
	hash := crc32.ChecksumIEEE(content)

	rec, exists := s.store.GetEndpoint(spec.Path)

	strategy := override
	if strategy == StrategyNone {
		if exists && rec.Hash32 == hash && rec.Strategy != StrategyNone {
			// Unchanged content: trust the recorded strategy, skip the probe.
			strategy = rec.Strategy
		} else {
			probed := s.probe(ctx, spec.Path, content)
			if probed.Recommended == StrategyNone {
				return InstallResult{
					Strategy: StrategyNone,
					Err:      fmt.Errorf("install %s: no working strategy: %s", spec.Path, strings.Join(probed.Errors, "; ")),
				}
			}
			strategy = probed.Recommended
		}
	}

	// One strategy per path: tear down the other strategy's artifact before
	// putting the new one in place.
	if exists && rec.Strategy != strategy {
		if err := s.removeArtifact(rec); err != nil {
			return InstallResult{Strategy: strategy, Err: fmt.Errorf("install %s: remove old %s artifact: %w", spec.Path, rec.Strategy, err)}
		}
	}

	changed := false
	switch strategy {
	case StrategyStatic:
		target := s.webrootFile(spec.Path)
		existing, err := os.ReadFile(target)
		switch {
		case err == nil && !isGeneratedContent(existing):
			return InstallResult{Strategy: strategy, Err: fmt.Errorf("install %s: %s exists and is not generated content, refusing to overwrite", spec.Path, target)}
		case err == nil && bytes.Equal(existing, content):
			// Already current on disk; no rewrite.
		default:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return InstallResult{Strategy: strategy, Err: fmt.Errorf("install %s: %w", spec.Path, err)}
			}
			if err := os.WriteFile(target, content, 0o644); err != nil {
				return InstallResult{Strategy: strategy, Err: fmt.Errorf("install %s: %w", spec.Path, err)}
			}
			changed = true
		}
	case StrategyDynamic:
		s.routes.Register(spec.Path, content, spec.ContentType, false)
		changed = !exists || rec.Hash32 != hash || rec.Strategy != StrategyDynamic
	default:
		return InstallResult{Strategy: strategy, Err: fmt.Errorf("install %s: unusable strategy %q", spec.Path, strategy)}
	}

	if !exists || rec.Strategy != strategy || rec.Hash32 != hash {
		newRec := InstalledEndpoint{
			Path:        spec.Path,
			Kind:        spec.Kind,
			Strategy:    strategy,
			Hash32:      hash,
			InstalledAt: time.Now().Unix(),
		}
		if err := s.store.PutEndpoint(newRec); err != nil {
			return InstallResult{Strategy: strategy, Err: fmt.Errorf("install %s: record: %w", spec.Path, err)}
		}
	}
	return InstallResult{Strategy: strategy, Changed: changed}
}

// uninstall reverses whichever strategy is recorded for path and drops the
// record. Unknown paths are a no-op.
func (s *Service) uninstall(path string) error {
	rec, ok := s.store.GetEndpoint(path)
	if !ok {
		return nil
	}
	if err := s.removeArtifact(rec); err != nil {
		return fmt.Errorf("uninstall %s: %w", path, err)
	}
	if err := s.store.DeleteEndpoint(path); err != nil {
		return fmt.Errorf("uninstall %s: record: %w", path, err)
	}
	return nil
}

func (s *Service) removeArtifact(rec InstalledEndpoint) error {
	switch rec.Strategy {
	case StrategyStatic:
		target := s.webrootFile(rec.Path)
		existing, err := os.ReadFile(target)
		if os.IsNotExist(err) {
			return nil
		}
		if err != nil {
			return err
		}
		if !isGeneratedContent(existing) {
			// Someone replaced our file; leave it alone.
			log.Printf("remove %s: %s is not generated content, leaving in place", rec.Path, target)
			return nil
		}
		return os.Remove(target)
	case StrategyDynamic:
		s.routes.Unregister(rec.Path)
		return nil
	}
	return nil
}

// installAll installs every configured endpoint. A failure aborts only that
// endpoint; the others still go in.
func (s *Service) installAll(ctx context.Context) {
	installed := 0
	for _, ec := range s.cfg.Endpoints {
		spec, err := specForKind(ec.Kind)
		if err != nil {
			log.Printf("install: %v", err)
			continue
		}
		res := s.install(ctx, spec, ec.Override())
		if res.Err != nil {
			log.Printf("install: %v", res.Err)
			continue
		}
		installed++
		log.Printf("installed %s strategy=%s changed=%v", spec.Path, res.Strategy, res.Changed)
	}
	s.metrics.installedEndpoints.Set(float64(installed))
}
