package agentfront

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"
)

type Service struct {
	cfg Config

	httpClient     *http.Client
	upstreamClient *http.Client
	beaconClient   *http.Client

	store  *stateStore
	routes *routeTable

	stats   *statsCollector
	metrics *serviceMetrics

	clientID string
	pathKind map[string]EndpointKind

	bgSem chan struct{}

	stopCh chan struct{}
	wg     sync.WaitGroup

	beaconLog   *rateLimitedLogger
	upstreamLog *rateLimitedLogger
	cleanupLog  *rateLimitedLogger
}

func NewService(cfg Config) (*Service, error) {
	store, err := openStateStore("./data/leveldb")
	if err != nil {
		return nil, err
	}
	return newServiceWithStore(cfg, store)
}

func newServiceWithStore(cfg Config, store *stateStore) (*Service, error) {
	s := &Service{
		cfg:          cfg,
		httpClient:     &http.Client{Timeout: 30 * time.Second},
		upstreamClient: &http.Client{Timeout: cfg.Upstream.timeoutDur},
		beaconClient:   &http.Client{Timeout: cfg.Beacon.timeoutDur},
		store:        store,
		routes:       newRouteTable(),
		stats:        newStatsCollector(),
		metrics:      newServiceMetrics(),
		pathKind:     map[string]EndpointKind{},
		bgSem:        make(chan struct{}, 32),
		stopCh:       make(chan struct{}),
		beaconLog:    newRateLimitedLogger(1 * time.Minute),
		upstreamLog:  newRateLimitedLogger(1 * time.Minute),
		cleanupLog:   newRateLimitedLogger(1 * time.Minute),
	}

	for _, kind := range []EndpointKind{KindAIPlugin, KindLLMs, KindMCPServers} {
		spec, err := specForKind(kind)
		if err != nil {
			return nil, err
		}
		s.pathKind[spec.Path] = kind
	}

	if cfg.Beacon.Enabled {
		s.clientID = store.ClientID()
	}

	if cfg.Logging.logStatsEveryDur > 0 {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.statsLoop(cfg.Logging.logStatsEveryDur)
		}()
	}

	return s, nil
}

func (s *Service) Close() {
	close(s.stopCh)
	s.wg.Wait()
	s.store.close()
}

func (s *Service) Handler() http.Handler {
	return http.HandlerFunc(s.handle)
}

// InstallEndpoints puts every configured endpoint into service. Safe to call
// on every startup: unchanged endpoints are left alone.
func (s *Service) InstallEndpoints(ctx context.Context) {
	s.installAll(ctx)
}

// UninstallEndpoints removes every recorded endpoint, whichever strategy it
// uses, and forgets the records.
func (s *Service) UninstallEndpoints() {
	for _, rec := range s.store.Endpoints() {
		if err := s.uninstall(rec.Path); err != nil {
			log.Printf("%v", err)
			continue
		}
		log.Printf("uninstalled %s strategy=%s", rec.Path, rec.Strategy)
	}
	s.metrics.installedEndpoints.Set(0)
}

func (s *Service) handle(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/ask":
		s.metrics.endpointRequests.WithLabelValues("ask").Inc()
		s.emitBeacon("ask", r)
		s.handleAsk(w, r)
		return
	case "/robots.txt":
		s.metrics.endpointRequests.WithLabelValues("robots").Inc()
		s.handleRobots(w, r)
		return
	case "/metrics":
		s.metrics.handler.ServeHTTP(w, r)
		return
	}

	if ent, ok := s.routes.Lookup(r.URL.Path); ok {
		if !ent.transient {
			kind := string(s.pathKind[r.URL.Path])
			s.metrics.endpointRequests.WithLabelValues(kind).Inc()
			s.emitBeacon(kind, r)
		}
		w.Header().Set("Content-Type", ent.contentType)
		_, _ = w.Write(ent.content)
		s.stats.Observe(len(ent.content))
		return
	}

	s.passthrough(w, r)
}

func (s *Service) statsLoop(every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-s.stopCh:
			return
		case <-t.C:
			ss := s.stats.Snapshot()
			line := ""
			if rss, ok := processRSSBytes(); ok {
				line = ", RSS: " + formatBytes(rss)
			}
			log.Printf(
				"Served: %d responses, Resp Min/avg/max %s/%s/%s, Routes: %d%s",
				ss.TotalResponses,
				formatBytes(ss.MinRespBytes),
				formatBytes(ss.AvgRespBytes),
				formatBytes(ss.MaxRespBytes),
				s.routes.Len(),
				line,
			)
		}
	}
}

func init() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
}
