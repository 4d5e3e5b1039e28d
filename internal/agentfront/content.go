package agentfront

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

const (
	generatorName    = "agentfront"
	generatorVersion = "1.0"

	// jsonMarker / textMarker tag generated payloads so the installer can tell
	// its own files apart from anything else living at the same path.
	jsonMarker = `"_generated_by": "` + generatorName + `"`
	textMarker = "generated-by: " + generatorName
)

// specForKind resolves one kind of the closed endpoint set to its spec.
func specForKind(kind EndpointKind) (EndpointSpec, error) {
	switch kind {
	case KindAIPlugin:
		return EndpointSpec{
			Kind:        KindAIPlugin,
			Path:        "/.well-known/ai-plugin.json",
			ContentType: "application/json",
			Generate:    generateAIPlugin,
		}, nil
	case KindLLMs:
		return EndpointSpec{
			Kind:        KindLLMs,
			Path:        "/llms.txt",
			ContentType: "text/plain; charset=utf-8",
			Generate:    generateLLMsTxt,
		}, nil
	case KindMCPServers:
		return EndpointSpec{
			Kind:        KindMCPServers,
			Path:        "/.well-known/mcp/servers.json",
			ContentType: "application/json",
			Generate:    generateMCPServers,
		}, nil
	}
	return EndpointSpec{}, fmt.Errorf("unknown endpoint kind %q", kind)
}

type aiPluginManifest struct {
	SchemaVersion       string       `json:"schema_version"`
	NameForHuman        string       `json:"name_for_human"`
	NameForModel        string       `json:"name_for_model"`
	DescriptionForHuman string       `json:"description_for_human"`
	DescriptionForModel string       `json:"description_for_model"`
	Auth                pluginAuth   `json:"auth"`
	API                 pluginAPIRef `json:"api"`
	LogoURL             string       `json:"logo_url"`
	ContactEmail        string       `json:"contact_email"`
	LegalInfoURL        string       `json:"legal_info_url"`
	GeneratedBy         string       `json:"_generated_by"`
	GeneratorVersion    string       `json:"_generator_version"`
}

type pluginAuth struct {
	Type string `json:"type"`
}

type pluginAPIRef struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

func generateAIPlugin(cfg Config) []byte {
	name := cfg.Business.Name
	if name == "" {
		name = cfg.Server.PublicURL
	}
	m := aiPluginManifest{
		SchemaVersion:       "v1",
		NameForHuman:        name,
		NameForModel:        modelName(name),
		DescriptionForHuman: cfg.Business.Description,
		DescriptionForModel: fmt.Sprintf("Ask questions about %s via the /ask endpoint. %s", name, cfg.Business.Description),
		Auth:                pluginAuth{Type: "none"},
		API:                 pluginAPIRef{Type: "openapi", URL: cfg.Server.PublicURL + "/openapi.json"},
		LogoURL:             cfg.Business.LogoURL,
		ContactEmail:        cfg.Business.ContactEmail,
		LegalInfoURL:        cfg.Business.LegalInfoURL,
		GeneratedBy:         generatorName,
		GeneratorVersion:    generatorVersion,
	}
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		// Marshal of a plain struct cannot fail; keep the generator total anyway.
		return []byte("{}")
	}
	return append(b, '\n')
}

func generateLLMsTxt(cfg Config) []byte {
	name := cfg.Business.Name
	if name == "" {
		name = cfg.Server.PublicURL
	}
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", name)
	if cfg.Business.Description != "" {
		fmt.Fprintf(&b, "> %s\n\n", cfg.Business.Description)
	}
	b.WriteString("## Ask\n\n")
	fmt.Fprintf(&b, "- [Ask %s a question](%s/ask): POST a JSON question, get a JSON answer\n", name, cfg.Server.PublicURL)
	b.WriteString("\n## Discovery\n\n")
	fmt.Fprintf(&b, "- [AI plugin manifest](%s/.well-known/ai-plugin.json)\n", cfg.Server.PublicURL)
	fmt.Fprintf(&b, "- [MCP servers](%s/.well-known/mcp/servers.json)\n", cfg.Server.PublicURL)
	if cfg.Business.ContactEmail != "" {
		fmt.Fprintf(&b, "\nContact: %s\n", cfg.Business.ContactEmail)
	}
	fmt.Fprintf(&b, "\n<!-- %s -->\n", textMarker)
	return []byte(b.String())
}

type mcpServersManifest struct {
	Servers          []mcpServerEntry `json:"servers"`
	GeneratedBy      string           `json:"_generated_by"`
	GeneratorVersion string           `json:"_generator_version"`
}

type mcpServerEntry struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Endpoint    string `json:"endpoint"`
	Transport   string `json:"transport"`
}

func generateMCPServers(cfg Config) []byte {
	name := cfg.Business.Name
	if name == "" {
		name = cfg.Server.PublicURL
	}
	m := mcpServersManifest{
		Servers: []mcpServerEntry{
			{
				Name:        modelName(name),
				Description: cfg.Business.Description,
				Endpoint:    cfg.Server.PublicURL + "/ask",
				Transport:   "http",
			},
		},
		GeneratedBy:      generatorName,
		GeneratorVersion: generatorVersion,
	}
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return []byte("{}")
	}
	return append(b, '\n')
}

// robotsBlock is appended to whatever robots.txt the origin already serves.
func robotsBlock() string {
	return "# " + textMarker + "\n" +
		"User-agent: *\n" +
		"Allow: /ask\n" +
		"Allow: /.well-known/ai-plugin.json\n"
}

// isGeneratedContent reports whether bytes at an install path carry our
// generation marker and are therefore safe to overwrite or delete.
func isGeneratedContent(b []byte) bool {
	return bytes.Contains(b, []byte(jsonMarker)) || bytes.Contains(b, []byte(textMarker))
}

// modelName lowercases and underscores a display name into an identifier
// agents can use as a tool name.
func modelName(name string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore && b.Len() > 0 {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	out := strings.Trim(b.String(), "_")
	if out == "" {
		return "site_assistant"
	}
	return out
}
