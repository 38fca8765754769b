package tui

import (
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/leonardotrapani/memoscribe/internal/config"
	"github.com/leonardotrapani/memoscribe/internal/provider"
)

// selectProviderModel asks for a provider able to serve c and one of its
// models, prompting for a key when the provider has none
func selectProviderModel(cfg *config.Config, c provider.Capability, title, currentProvider, currentModel string) (string, string, error) {
	options := providerOptions(cfg, c)
	if len(options) == 0 {
		return "", "", fmt.Errorf("no %s providers available", c)
	}

	selectedProvider := currentProvider
	if selectedProvider == "" {
		selectedProvider = options[0].Value
	}
	providerForm := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(title + " Provider").
				Description(fmt.Sprintf("Currently: %s/%s", currentProvider, currentModel)).
				Options(options...).
				Value(&selectedProvider),
		),
	).WithTheme(getTheme())
	if err := providerForm.Run(); err != nil {
		return "", "", err
	}

	ensureProviderConfigured(cfg, selectedProvider)

	selectedModel := pickModel(selectedProvider, c, currentModel)
	modelForm := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(title + " Model").
				Options(modelOptions(selectedProvider, c, currentModel)...).
				Value(&selectedModel),
		),
	).WithTheme(getTheme())
	if err := modelForm.Run(); err != nil {
		return "", "", err
	}
	return selectedProvider, selectedModel, nil
}

func editTranscription(cfg *config.Config) error {
	p, m, err := selectProviderModel(cfg, provider.Transcription, "Transcription",
		cfg.Transcription.Provider, cfg.Transcription.Model)
	if err != nil {
		return err
	}

	lang := cfg.Transcription.Language
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Lecture Language").
				Description("Language spoken in the recordings").
				Options(languageOptions(lang)...).
				Value(&lang).
				Height(10),
		),
	).WithTheme(getTheme())
	if err := form.Run(); err != nil {
		return err
	}

	cfg.Transcription.Provider = p
	cfg.Transcription.Model = m
	cfg.Transcription.Language = lang
	return nil
}

func editTranslation(cfg *config.Config) error {
	enabled := cfg.Translation.Enabled
	enableForm := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Translate while transcribing?").
				Description("Each finished sentence is translated as soon as it is transcribed").
				Value(&enabled),
		),
	).WithTheme(getTheme())
	if err := enableForm.Run(); err != nil {
		return err
	}
	cfg.Translation.Enabled = enabled
	if !enabled {
		return nil
	}

	p, m, err := selectProviderModel(cfg, provider.Translation, "Translation",
		cfg.Translation.Provider, cfg.Translation.Model)
	if err != nil {
		return err
	}

	target := cfg.Translation.TargetLanguage
	ordering := cfg.Translation.Ordering
	if ordering == "" {
		ordering = "strict"
	}
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Target Language").
				Options(languageOptions(target)...).
				Value(&target).
				Height(10),
			huh.NewSelect[string]().
				Title("Sentence Ordering").
				Description("How translated sentences are joined while several are in flight").
				Options(
					huh.NewOption("Strict - keep the lecture order (recommended)", "strict"),
					huh.NewOption("Arrival - show text as soon as it arrives", "arrival"),
				).
				Value(&ordering),
		),
	).WithTheme(getTheme())
	if err := form.Run(); err != nil {
		return err
	}

	cfg.Translation.Provider = p
	cfg.Translation.Model = m
	cfg.Translation.TargetLanguage = target
	cfg.Translation.Ordering = ordering
	return nil
}

func editExpansion(cfg *config.Config) error {
	p, m, err := selectProviderModel(cfg, provider.Expansion, "Lesson PDF",
		cfg.Expansion.Provider, cfg.Expansion.Model)
	if err != nil {
		return err
	}

	auto := cfg.Expansion.Auto
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Build the lesson PDF after every recording?").
				Description("Otherwise use `memoscribe expand` on a saved transcript").
				Value(&auto),
		),
	).WithTheme(getTheme())
	if err := form.Run(); err != nil {
		return err
	}

	cfg.Expansion.Provider = p
	cfg.Expansion.Model = m
	cfg.Expansion.Auto = auto
	return nil
}
