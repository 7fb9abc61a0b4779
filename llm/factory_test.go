package llm

import "testing"

// TestParseProviderType verifies canonical names and aliases.
func TestParseProviderType(t *testing.T) {
	cases := []struct {
		in   string
		want ProviderType
	}{
		{"anthropic", ProviderAnthropic},
		{"Claude", ProviderAnthropic},
		{"openai", ProviderOpenAI},
		{"GPT", ProviderOpenAI},
		{"gemini", ProviderGemini},
		{"google", ProviderGemini},
		{"local", ProviderLocal},
		{"ollama", ProviderLocal},
	}
	for _, tc := range cases {
		got, err := ParseProviderType(tc.in)
		if err != nil {
			t.Errorf("ParseProviderType(%q) failed: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseProviderType(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}

	if _, err := ParseProviderType("mystery"); err == nil {
		t.Error("ParseProviderType(mystery) succeeded, want error")
	}
}

// TestDefaultModels verifies every provider has a vision-capable default.
func TestDefaultModels(t *testing.T) {
	for _, p := range []ProviderType{ProviderAnthropic, ProviderOpenAI, ProviderGemini, ProviderLocal} {
		if p.DefaultModel() == "" {
			t.Errorf("%v has no default model", p)
		}
		if p.EnvVar() == "" {
			t.Errorf("%v has no API key env var", p)
		}
	}
}

// TestFromEnvRequiresKey verifies hosted providers fail without an API
// key while the local provider tolerates its absence.
func TestFromEnvRequiresKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	if _, err := ProviderAnthropic.FromEnv(); err == nil {
		t.Error("anthropic FromEnv succeeded without an API key")
	}

	t.Setenv("LOCAL_API_KEY", "")
	provider, err := ProviderLocal.BaseURL("http://localhost:11434/v1").FromEnv()
	if err != nil {
		t.Fatalf("local FromEnv failed: %v", err)
	}
	if provider.Name() == "" {
		t.Error("local provider has no name")
	}
}

// TestBuilderModelOverride verifies an explicit model wins over the
// provider default.
func TestBuilderModelOverride(t *testing.T) {
	provider, err := NewProviderBuilder(ProviderAnthropic).
		Model("claude-test-model").
		APIKey("sk-test")
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if provider.Model() != "claude-test-model" {
		t.Errorf("Model = %q, want the override", provider.Model())
	}

	provider, err = NewProviderBuilder(ProviderOpenAI).APIKey("sk-test")
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if provider.Model() != ModelOpenAIGPT52 {
		t.Errorf("Model = %q, want the provider default %q", provider.Model(), ModelOpenAIGPT52)
	}
}
