package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/leonardotrapani/memoscribe/internal/config"
	"github.com/leonardotrapani/memoscribe/internal/language"
	"github.com/leonardotrapani/memoscribe/internal/provider"
)

func getProviderDisplayName(providerName string) string {
	if p := provider.GetProvider(providerName); p != nil {
		return p.DisplayName()
	}
	return providerName
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "***"
	}
	return key[:7] + "..." + key[len(key)-4:]
}

// getConfiguredProviders returns the providers with a key, from the config
// file or the environment
func getConfiguredProviders(cfg *config.Config) []string {
	var providers []string
	for _, name := range provider.ListProviders() {
		if cfg.APIKey(name) != "" {
			providers = append(providers, name)
		}
	}
	sort.Strings(providers)
	return providers
}

func isProviderConfigured(cfg *config.Config, providerName string) bool {
	return cfg.APIKey(providerName) != ""
}

// providerOptions lists the providers able to serve c, marking the ones
// still missing a key
func providerOptions(cfg *config.Config, c provider.Capability) []huh.Option[string] {
	var options []huh.Option[string]
	for _, name := range provider.ListProvidersWith(c) {
		label := getProviderDisplayName(name)
		if !isProviderConfigured(cfg, name) {
			label += " (not configured)"
		}
		options = append(options, huh.NewOption(label, name))
	}
	return options
}

func buildModelDesc(m provider.Model) string {
	parts := []string{}
	if m.Description != "" {
		parts = append(parts, m.Description)
	} else if m.Name != "" {
		parts = append(parts, m.Name)
	}
	if m.Streaming {
		parts = append(parts, "streaming")
	} else {
		parts = append(parts, "batch-only")
	}
	if m.Structured {
		parts = append(parts, "structured output")
	}
	return strings.Join(parts, " - ")
}

// modelOptions lists the models of providerName that serve c
func modelOptions(providerName string, c provider.Capability, current string) []huh.Option[string] {
	p := provider.GetProvider(providerName)
	if p == nil {
		return nil
	}
	var options []huh.Option[string]
	for _, m := range provider.ModelsWith(p, c) {
		label := fmt.Sprintf("%s (%s)", m.ID, buildModelDesc(m))
		if m.ID == current {
			label += " (current)"
		}
		options = append(options, huh.NewOption(label, m.ID))
	}
	return options
}

// pickModel keeps current when providerName still offers it for c, and
// falls back to the provider default otherwise
func pickModel(providerName string, c provider.Capability, current string) string {
	if m, err := provider.GetModel(providerName, current); err == nil && m.Can(c) {
		return current
	}
	if p := provider.GetProvider(providerName); p != nil {
		return p.DefaultModel(c)
	}
	return ""
}

func languageOptions(current string) []huh.Option[string] {
	var options []huh.Option[string]
	for _, l := range language.List() {
		label := fmt.Sprintf("%s (%s)", l.Name, l.NativeName)
		if l.Code == current {
			label += " (current)"
		}
		options = append(options, huh.NewOption(label, l.Code))
	}
	return options
}

func languageLabel(code string) string {
	if l, ok := language.FromCode(code); ok {
		return l.Name
	}
	return code
}

func formatTranscriptionLabel(cfg *config.Config) string {
	return fmt.Sprintf("Transcription (%s/%s, %s)",
		cfg.Transcription.Provider, cfg.Transcription.Model, languageLabel(cfg.Transcription.Language))
}

func formatTranslationLabel(cfg *config.Config) string {
	if !cfg.Translation.Enabled {
		return "Translation (disabled)"
	}
	return fmt.Sprintf("Translation (to %s, %s ordering)",
		languageLabel(cfg.Translation.TargetLanguage), cfg.Translation.Ordering)
}

func formatExpansionLabel(cfg *config.Config) string {
	auto := "on request"
	if cfg.Expansion.Auto {
		auto = "after every session"
	}
	return fmt.Sprintf("Lesson PDF (%s/%s, %s)", cfg.Expansion.Provider, cfg.Expansion.Model, auto)
}

func formatNotificationsLabel(cfg *config.Config) string {
	if !cfg.Notifications.Enabled {
		return "Notifications (disabled)"
	}
	return fmt.Sprintf("Notifications (%s)", cfg.Notifications.Type)
}

// summaryLines renders the configuration as label/value lines
func summaryLines(cfg *config.Config) []string {
	line := func(label, value string) string {
		return fmt.Sprintf("  %s %s", StyleLabel.Render(label), value)
	}

	providers := getConfiguredProviders(cfg)
	if len(providers) == 0 {
		providers = []string{"none"}
	}
	lines := []string{
		line("Providers:", strings.Join(providers, ", ")),
		line("Transcription:", fmt.Sprintf("%s (%s), %s", cfg.Transcription.Provider, cfg.Transcription.Model,
			languageLabel(cfg.Transcription.Language))),
	}
	if cfg.Translation.Enabled {
		lines = append(lines, line("Translation:", fmt.Sprintf("%s (%s) to %s, %s ordering",
			cfg.Translation.Provider, cfg.Translation.Model, languageLabel(cfg.Translation.TargetLanguage),
			cfg.Translation.Ordering)))
	} else {
		lines = append(lines, line("Translation:", "disabled"))
	}
	lines = append(lines, line("Lesson PDF:", fmt.Sprintf("%s (%s)", cfg.Expansion.Provider, cfg.Expansion.Model)))

	dir := cfg.Output.Dir
	if dir == "" {
		dir = "default"
	}
	lines = append(lines, line("Output:", dir))

	if cfg.Notifications.Enabled {
		lines = append(lines, line("Notifications:", cfg.Notifications.Type))
	} else {
		lines = append(lines, line("Notifications:", "disabled"))
	}
	lines = append(lines, line("Messages in:", languageLabel(cfg.General.UILanguage)))
	return lines
}
