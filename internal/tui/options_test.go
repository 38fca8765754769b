package tui

import (
	"strings"
	"testing"

	"github.com/leonardotrapani/memoscribe/internal/config"
	"github.com/leonardotrapani/memoscribe/internal/provider"
)

func clearKeys(t *testing.T) {
	t.Helper()
	for _, name := range provider.ListProviders() {
		t.Setenv(provider.EnvVarForProvider(name), "")
	}
}

func TestMaskAPIKey(t *testing.T) {
	tests := map[string]string{
		"short":                   "***",
		"AIzaSyA1234567890abcdef": "AIzaSyA...cdef",
	}
	for key, want := range tests {
		if got := maskAPIKey(key); got != want {
			t.Errorf("maskAPIKey(%q) = %q, want %q", key, got, want)
		}
	}
}

func TestGetConfiguredProviders(t *testing.T) {
	clearKeys(t)
	t.Setenv("GROQ_API_KEY", "gsk_env")

	cfg := config.DefaultConfig()
	cfg.Providers["openai"] = config.ProviderConfig{APIKey: "sk-test"}

	got := getConfiguredProviders(cfg)
	if strings.Join(got, ",") != "groq,openai" {
		t.Errorf("getConfiguredProviders() = %v", got)
	}
	if !strings.Contains(formatProviderOption(cfg, "groq"), "GROQ_API_KEY") {
		t.Errorf("env key not shown: %q", formatProviderOption(cfg, "groq"))
	}
	if !strings.Contains(formatProviderOption(cfg, "gemini"), "not configured") {
		t.Errorf("missing key not shown: %q", formatProviderOption(cfg, "gemini"))
	}
}

func TestHasUserChanges(t *testing.T) {
	cfg := config.DefaultConfig()
	if hasUserChanges(cfg) {
		t.Error("default config reported as changed")
	}
	cfg.Providers["gemini"] = config.ProviderConfig{APIKey: "AIza-x"}
	if !hasUserChanges(cfg) {
		t.Error("config with a key reported as unchanged")
	}
}

func TestProviderOptions(t *testing.T) {
	clearKeys(t)
	cfg := config.DefaultConfig()
	cfg.Providers["gemini"] = config.ProviderConfig{APIKey: "AIza-x"}

	opts := providerOptions(cfg, provider.Transcription)
	if len(opts) != len(provider.ListProvidersWith(provider.Transcription)) {
		t.Fatalf("got %d options", len(opts))
	}
	for _, o := range opts {
		configured := !strings.Contains(o.Key, "not configured")
		if configured != (o.Value == "gemini") {
			t.Errorf("option %q for %s", o.Key, o.Value)
		}
	}
}

func TestModelOptions(t *testing.T) {
	opts := modelOptions("groq", provider.Transcription, "whisper-large-v3-turbo")
	if len(opts) == 0 {
		t.Fatal("no groq transcription models")
	}
	current := 0
	for _, o := range opts {
		m, err := provider.GetModel("groq", o.Value)
		if err != nil || !m.Can(provider.Transcription) {
			t.Errorf("option %s is not a transcription model", o.Value)
		}
		if strings.HasSuffix(o.Key, "(current)") {
			current++
		}
	}
	if current != 1 {
		t.Errorf("%d options marked current", current)
	}
	if modelOptions("nobody", provider.Expansion, "") != nil {
		t.Error("unknown provider returned options")
	}
}

func TestPickModel(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		c        provider.Capability
		current  string
		want     string
	}{
		{"keeps a valid model", "gemini", provider.Expansion, "gemini-2.5-pro", "gemini-2.5-pro"},
		{"model of another provider", "openai", provider.Transcription, "gemini-2.5-pro", "gpt-4o-transcribe"},
		{"model without the capability", "openai", provider.Transcription, "gpt-4o-mini", "gpt-4o-transcribe"},
		{"unknown provider", "nobody", provider.Translation, "x", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pickModel(tt.provider, tt.c, tt.current); got != tt.want {
				t.Errorf("pickModel() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLanguageOptions(t *testing.T) {
	opts := languageOptions("it")
	marked := ""
	for _, o := range opts {
		if strings.HasSuffix(o.Key, "(current)") {
			marked = o.Value
		}
	}
	if marked != "it" {
		t.Errorf("current language = %q", marked)
	}
}

func TestSectionLabels(t *testing.T) {
	cfg := config.DefaultConfig()
	if got := formatTranslationLabel(cfg); got != "Translation (disabled)" {
		t.Errorf("formatTranslationLabel() = %q", got)
	}
	cfg.Translation.Enabled = true
	cfg.Translation.TargetLanguage = "de"
	if got := formatTranslationLabel(cfg); !strings.Contains(got, "German") || !strings.Contains(got, "strict") {
		t.Errorf("formatTranslationLabel() = %q", got)
	}
	if got := formatTranscriptionLabel(cfg); !strings.Contains(got, "Italian") {
		t.Errorf("formatTranscriptionLabel() = %q", got)
	}
	cfg.Expansion.Auto = true
	if got := formatExpansionLabel(cfg); !strings.Contains(got, "after every session") {
		t.Errorf("formatExpansionLabel() = %q", got)
	}
	cfg.Notifications.Enabled = false
	if got := formatNotificationsLabel(cfg); got != "Notifications (disabled)" {
		t.Errorf("formatNotificationsLabel() = %q", got)
	}
}

func TestSummaryLines(t *testing.T) {
	clearKeys(t)
	cfg := config.DefaultConfig()
	cfg.Translation.Enabled = true
	cfg.Output.Dir = "/srv/lessons"

	joined := strings.Join(summaryLines(cfg), "\n")
	for _, want := range []string{"none", "gemini (gemini-2.5-flash)", "to English", "/srv/lessons"} {
		if !strings.Contains(joined, want) {
			t.Errorf("summary missing %q:\n%s", want, joined)
		}
	}
}

func TestValidators(t *testing.T) {
	for _, s := range []string{"16000", "1"} {
		if err := validateNumber(s); err != nil {
			t.Errorf("validateNumber(%q) = %v", s, err)
		}
	}
	for _, s := range []string{"", "abc", "0", "-5"} {
		if validateNumber(s) == nil {
			t.Errorf("validateNumber(%q) accepted", s)
		}
	}
	if err := validateDuration("3h"); err != nil {
		t.Errorf("validateDuration(3h) = %v", err)
	}
	for _, s := range []string{"", "3 hours", "0s"} {
		if validateDuration(s) == nil {
			t.Errorf("validateDuration(%q) accepted", s)
		}
	}
	if validateAPIKey(provider.GetProvider("openai"), "OpenAI", "nope") == nil {
		t.Error("invalid openai key accepted")
	}
	if err := validateAPIKey(provider.GetProvider("openai"), "OpenAI", "sk-valid"); err != nil {
		t.Errorf("valid key rejected: %v", err)
	}
}

func TestNotificationMode(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Notifications.Type = "log"
	if got := notificationMode(cfg); got != "log" {
		t.Errorf("notificationMode() = %q, want log", got)
	}

	applyNotificationMode(cfg, "off")
	if cfg.Notifications.Enabled || notificationMode(cfg) != "off" {
		t.Errorf("off not applied: %+v", cfg.Notifications)
	}
	if cfg.Notifications.Type != "log" {
		t.Error("turning notifications off should keep the last type")
	}

	applyNotificationMode(cfg, "desktop")
	if !cfg.Notifications.Enabled || cfg.Notifications.Type != "desktop" {
		t.Errorf("desktop not applied: %+v", cfg.Notifications)
	}
}
