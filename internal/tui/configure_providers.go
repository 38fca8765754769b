package tui

import (
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/leonardotrapani/memoscribe/internal/config"
	"github.com/leonardotrapani/memoscribe/internal/provider"
)

// editProviders handles the providers section edit with submenu
func editProviders(cfg *config.Config, onboarding bool) error {
	exitLabel := "Done"
	if onboarding {
		exitLabel = "Next"
	}

	// default to the exit entry once a key was entered
	defaultToExit := false

	for {
		var options []huh.Option[string]
		for _, name := range provider.ListProviders() {
			options = append(options, huh.NewOption(formatProviderOption(cfg, name), name))
		}
		options = append(options, huh.NewOption(exitLabel, "back"))

		selected := ""
		if defaultToExit {
			selected = "back"
		}

		form := huh.NewForm(
			huh.NewGroup(
				huh.NewSelect[string]().
					Title("Provider Settings").
					Description("Select a provider to configure its API key").
					Options(options...).
					Value(&selected),
			),
		).WithTheme(getTheme())

		if err := form.Run(); err != nil {
			return err
		}
		if selected == "back" {
			return nil
		}

		apiKey, err := configureSingleProvider(cfg, selected)
		if err != nil {
			continue
		}
		if apiKey != "" {
			setAPIKey(cfg, selected, apiKey)
			defaultToExit = true
		}
	}
}

func setAPIKey(cfg *config.Config, providerName, apiKey string) {
	if cfg.Providers == nil {
		cfg.Providers = make(map[string]config.ProviderConfig)
	}
	cfg.Providers[providerName] = config.ProviderConfig{APIKey: apiKey}
}

// formatProviderOption formats a provider menu option with status
func formatProviderOption(cfg *config.Config, name string) string {
	status := "(not configured)"
	if pc, ok := cfg.Providers[name]; ok && pc.APIKey != "" {
		status = "(configured)"
	} else if isProviderConfigured(cfg, name) {
		status = "(from " + provider.EnvVarForProvider(name) + ")"
	}
	return fmt.Sprintf("%s %s", getProviderDisplayName(name), status)
}

// configureSingleProvider asks whether to replace an existing key, then
// prompts for the new one. An empty result means the current key is kept.
func configureSingleProvider(cfg *config.Config, providerName string) (string, error) {
	if existingKey := cfg.APIKey(providerName); existingKey != "" {
		var update bool
		confirmForm := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("%s API Key", getProviderDisplayName(providerName))).
					Description(fmt.Sprintf("Current: %s", maskAPIKey(existingKey))).
					Affirmative("Update key").
					Negative("Keep current").
					Value(&update),
			),
		).WithTheme(getTheme())

		if err := confirmForm.Run(); err != nil {
			return "", err
		}
		if !update {
			return "", nil
		}
	}
	return inputAPIKey(providerName)
}

func inputAPIKey(providerName string) (string, error) {
	p := provider.GetProvider(providerName)
	displayName := getProviderDisplayName(providerName)

	desc := fmt.Sprintf("Enter your %s API key", displayName)
	if p != nil && p.APIKeyURL() != "" {
		desc += fmt.Sprintf(" (get one at %s)", p.APIKeyURL())
	}

	var apiKey string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(fmt.Sprintf("%s API Key", displayName)).
				Description(desc).
				EchoMode(huh.EchoModePassword).
				Value(&apiKey).
				Validate(func(s string) error { return validateAPIKey(p, displayName, s) }),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return "", err
	}
	return apiKey, nil
}

func validateAPIKey(p provider.Provider, displayName, key string) error {
	if key == "" {
		return fmt.Errorf("API key is required")
	}
	if p != nil && !p.ValidateAPIKey(key) {
		return fmt.Errorf("invalid API key format for %s", displayName)
	}
	return nil
}

// ensureProviderConfigured prompts for an API key when the chosen provider
// has none yet
func ensureProviderConfigured(cfg *config.Config, providerName string) {
	if isProviderConfigured(cfg, providerName) {
		return
	}
	apiKey, err := configureSingleProvider(cfg, providerName)
	if err != nil || apiKey == "" {
		return
	}
	setAPIKey(cfg, providerName, apiKey)
}
