package agentfront

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func businessConfig(t *testing.T) Config {
	cfg := testConfig(t)
	cfg.Business.Name = "Acme Anvils"
	cfg.Business.Description = "Anvils and related hardware."
	cfg.Business.ContactEmail = "info@acme.test"
	cfg.Business.LogoURL = "https://example.com/logo.png"
	cfg.Business.LegalInfoURL = "https://example.com/legal"
	return cfg
}

func TestGenerateAIPlugin(t *testing.T) {
	cfg := businessConfig(t)
	b := generateAIPlugin(cfg)

	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	for _, key := range []string{
		"schema_version", "name_for_human", "name_for_model",
		"description_for_human", "description_for_model",
		"auth", "api", "logo_url", "contact_email", "legal_info_url",
		"_generated_by", "_generator_version",
	} {
		if _, ok := m[key]; !ok {
			t.Errorf("missing key %q", key)
		}
	}
	if got := m["name_for_model"]; got != "acme_anvils" {
		t.Errorf("name_for_model = %v, want acme_anvils", got)
	}
	auth, _ := m["auth"].(map[string]any)
	if diff := cmp.Diff(map[string]any{"type": "none"}, auth); diff != "" {
		t.Errorf("auth mismatch (-want +got):\n%s", diff)
	}
	if !isGeneratedContent(b) {
		t.Error("generated manifest not recognized by marker check")
	}
}

func TestGenerateLLMsTxt(t *testing.T) {
	cfg := businessConfig(t)
	s := string(generateLLMsTxt(cfg))

	if !strings.HasPrefix(s, "# Acme Anvils\n") {
		t.Errorf("missing title header:\n%s", s)
	}
	if !strings.Contains(s, "> Anvils and related hardware.") {
		t.Error("missing description blockquote")
	}
	if !strings.Contains(s, cfg.Server.PublicURL+"/ask") {
		t.Error("missing ask link")
	}
	if !isGeneratedContent([]byte(s)) {
		t.Error("generated llms.txt not recognized by marker check")
	}
}

func TestGenerateMCPServers(t *testing.T) {
	cfg := businessConfig(t)
	b := generateMCPServers(cfg)

	var m mcpServersManifest
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(m.Servers) != 1 {
		t.Fatalf("servers = %d, want 1", len(m.Servers))
	}
	want := mcpServerEntry{
		Name:        "acme_anvils",
		Description: "Anvils and related hardware.",
		Endpoint:    cfg.Server.PublicURL + "/ask",
		Transport:   "http",
	}
	if diff := cmp.Diff(want, m.Servers[0]); diff != "" {
		t.Errorf("server entry mismatch (-want +got):\n%s", diff)
	}
	if !isGeneratedContent(b) {
		t.Error("generated manifest not recognized by marker check")
	}
}

func TestRobotsBlock(t *testing.T) {
	block := robotsBlock()
	for _, line := range []string{"User-agent: *", "Allow: /ask", "Allow: /.well-known/ai-plugin.json"} {
		if !strings.Contains(block, line+"\n") {
			t.Errorf("block missing line %q", line)
		}
	}
	if !isGeneratedContent([]byte(block)) {
		t.Error("robots block not recognized by marker check")
	}
}

func TestIsGeneratedContentRejectsForeign(t *testing.T) {
	for _, b := range [][]byte{
		[]byte("User-agent: *\nDisallow: /\n"),
		[]byte(`{"name": "someone else's manifest"}`),
		nil,
	} {
		if isGeneratedContent(b) {
			t.Errorf("foreign content %q classified as generated", b)
		}
	}
}

func TestModelName(t *testing.T) {
	cases := map[string]string{
		"Acme Anvils":       "acme_anvils",
		"  Weird -- Name! ": "weird_name",
		"":                  "site_assistant",
		"日本語":               "site_assistant",
	}
	for in, want := range cases {
		if got := modelName(in); got != want {
			t.Errorf("modelName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSpecForKindClosedSet(t *testing.T) {
	paths := map[EndpointKind]string{
		KindAIPlugin:   "/.well-known/ai-plugin.json",
		KindLLMs:       "/llms.txt",
		KindMCPServers: "/.well-known/mcp/servers.json",
	}
	for kind, wantPath := range paths {
		spec, err := specForKind(kind)
		if err != nil {
			t.Fatalf("specForKind(%s): %v", kind, err)
		}
		if spec.Path != wantPath {
			t.Errorf("specForKind(%s).Path = %q, want %q", kind, spec.Path, wantPath)
		}
		if spec.Generate == nil {
			t.Errorf("specForKind(%s): nil generator", kind)
		}
	}
	if _, err := specForKind("robots"); err == nil {
		t.Error("specForKind(robots): expected error, robots is not installable")
	}
}
