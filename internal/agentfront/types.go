package agentfront

// Strategy is how an agent endpoint gets served to the public.
type Strategy string

const (
	// StrategyDynamic serves the path from this process's route table.
	StrategyDynamic Strategy = "dynamic"
	// StrategyStatic writes a real file under the webroot and relies on the
	// front web server to return it without hitting this process.
	StrategyStatic Strategy = "static"
	// StrategyNone means neither strategy was usable.
	StrategyNone Strategy = "none"
)

// EndpointKind is the closed set of installable agent endpoints.
type EndpointKind string

const (
	KindAIPlugin   EndpointKind = "ai_plugin"
	KindLLMs       EndpointKind = "llms"
	KindMCPServers EndpointKind = "mcp_servers"
)

// EndpointSpec describes one installable endpoint. Specs are resolved from the
// kind set at startup and never change afterwards.
type EndpointSpec struct {
	Kind        EndpointKind
	Path        string
	ContentType string
	Generate    func(Config) []byte
}

// ProbeResult is the outcome of one serving-strategy probe. Created fresh per
// run; only the bounded probe log keeps it around.
type ProbeResult struct {
	Path         string
	TempPath     string
	DynamicWorks bool
	StaticWorks  bool
	Recommended  Strategy
	Errors       []string
	RanAt        int64 // unix seconds
}

// InstalledEndpoint is the persisted per-path record of whichever strategy is
// currently active. At most one record exists per path.
type InstalledEndpoint struct {
	Path        string
	Kind        EndpointKind
	Strategy    Strategy
	Hash32      uint32
	InstalledAt int64 // unix seconds
}

// InstallResult reports what install did for one endpoint.
type InstallResult struct {
	Strategy Strategy
	Changed  bool
	Err      error
}

// beaconEvent is the flat record POSTed to the beacon collector.
type beaconEvent struct {
	Event     string `json:"event"`
	Timestamp string `json:"timestamp"`
	Source    string `json:"source"`
	IP        string `json:"ip"`
	UserAgent string `json:"userAgent"`
	URL       string `json:"url"`
	Referrer  string `json:"referrer,omitempty"`
	ClientID  string `json:"clientId,omitempty"`
}
