package agentfront

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port      int    `yaml:"port"`
		Origin    string `yaml:"origin"`
		PublicURL string `yaml:"publicURL"`
		Webroot   string `yaml:"webroot"`
	} `yaml:"server"`

	Upstream struct {
		URL      string `yaml:"url"`
		AskRoute string `yaml:"askRoute"`
		Timeout  string `yaml:"timeout"`
		MaxBody  string `yaml:"maxBody"`

		// compiled
		timeoutDur   time.Duration
		maxBodyBytes int64
	} `yaml:"upstream"`

	Business struct {
		Name         string `yaml:"name"`
		Description  string `yaml:"description"`
		ContactEmail string `yaml:"contactEmail"`
		LogoURL      string `yaml:"logoURL"`
		LegalInfoURL string `yaml:"legalInfoURL"`
	} `yaml:"business"`

	Endpoints []EndpointConfig `yaml:"endpoints"`

	Beacon struct {
		URL     string `yaml:"url"`
		Enabled bool   `yaml:"enabled"`
		Timeout string `yaml:"timeout"`

		// compiled
		timeoutDur time.Duration
	} `yaml:"beacon"`

	Logging struct {
		LogStatsEvery string `yaml:"logStatsEvery"`

		// compiled
		logStatsEveryDur time.Duration
	} `yaml:"logging"`
}

type EndpointConfig struct {
	Kind     EndpointKind `yaml:"kind"`
	Strategy string       `yaml:"strategy"` // auto | dynamic | static
}

// Override returns the operator-forced strategy, or StrategyNone when the
// endpoint should be probed.
func (e EndpointConfig) Override() Strategy {
	switch e.Strategy {
	case string(StrategyDynamic):
		return StrategyDynamic
	case string(StrategyStatic):
		return StrategyStatic
	}
	return StrategyNone
}

func LoadConfig(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, err
	}
	return finishConfig(cfg)
}

func finishConfig(cfg Config) (Config, error) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Origin == "" {
		return Config{}, fmt.Errorf("server.origin is required")
	}
	cfg.Server.Origin = strings.TrimRight(cfg.Server.Origin, "/")
	if cfg.Server.PublicURL == "" {
		cfg.Server.PublicURL = cfg.Server.Origin
	}
	cfg.Server.PublicURL = strings.TrimRight(cfg.Server.PublicURL, "/")

	if cfg.Upstream.URL == "" {
		return Config{}, fmt.Errorf("upstream.url is required")
	}
	cfg.Upstream.URL = strings.TrimRight(cfg.Upstream.URL, "/")
	if cfg.Upstream.AskRoute == "" {
		cfg.Upstream.AskRoute = "/ask"
	}
	if !strings.HasPrefix(cfg.Upstream.AskRoute, "/") {
		cfg.Upstream.AskRoute = "/" + cfg.Upstream.AskRoute
	}
	if cfg.Upstream.Timeout == "" {
		cfg.Upstream.Timeout = "30s"
	}
	d, err := time.ParseDuration(cfg.Upstream.Timeout)
	if err != nil {
		return Config{}, fmt.Errorf("upstream.timeout: %w", err)
	}
	cfg.Upstream.timeoutDur = d
	if cfg.Upstream.MaxBody == "" {
		cfg.Upstream.MaxBody = "10mb"
	}
	n, err := parseBytes(cfg.Upstream.MaxBody)
	if err != nil {
		return Config{}, fmt.Errorf("upstream.maxBody: %w", err)
	}
	cfg.Upstream.maxBodyBytes = n

	seen := map[EndpointKind]bool{}
	for i := range cfg.Endpoints {
		e := &cfg.Endpoints[i]
		switch e.Kind {
		case KindAIPlugin, KindLLMs, KindMCPServers:
		default:
			return Config{}, fmt.Errorf("endpoints[%d].kind: unknown kind %q", i, e.Kind)
		}
		if seen[e.Kind] {
			return Config{}, fmt.Errorf("endpoints[%d].kind: duplicate kind %q", i, e.Kind)
		}
		seen[e.Kind] = true
		switch e.Strategy {
		case "", "auto":
			e.Strategy = "auto"
		case string(StrategyDynamic), string(StrategyStatic):
		default:
			return Config{}, fmt.Errorf("endpoints[%d].strategy: unknown strategy %q", i, e.Strategy)
		}
		if e.Strategy != string(StrategyDynamic) && cfg.Server.Webroot == "" {
			return Config{}, fmt.Errorf("endpoints[%d]: server.webroot is required unless strategy is dynamic", i)
		}
	}

	if cfg.Beacon.Enabled && cfg.Beacon.URL == "" {
		return Config{}, fmt.Errorf("beacon.url is required when beacon.enabled")
	}
	if cfg.Beacon.Timeout == "" {
		cfg.Beacon.Timeout = "2s"
	}
	d, err = time.ParseDuration(cfg.Beacon.Timeout)
	if err != nil {
		return Config{}, fmt.Errorf("beacon.timeout: %w", err)
	}
	cfg.Beacon.timeoutDur = d

	if cfg.Logging.LogStatsEvery != "" {
		d, err := time.ParseDuration(cfg.Logging.LogStatsEvery)
		if err != nil {
			return Config{}, fmt.Errorf("logging.logStatsEvery: %w", err)
		}
		cfg.Logging.logStatsEveryDur = d
	}

	return cfg, nil
}
