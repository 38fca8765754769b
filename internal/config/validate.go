package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/leonardotrapani/memoscribe/internal/apierr"
	"github.com/leonardotrapani/memoscribe/internal/language"
	"github.com/leonardotrapani/memoscribe/internal/pipeline"
	"github.com/leonardotrapani/memoscribe/internal/provider"
)

func (c *Config) Validate() error {
	if !slices.Contains(apierr.Languages(), c.General.UILanguage) {
		return fmt.Errorf("invalid general.ui_language: %q (must be one of %s)", c.General.UILanguage, strings.Join(apierr.Languages(), ", "))
	}

	if c.Recording.SampleRate <= 0 {
		return fmt.Errorf("invalid recording.sample_rate: %d", c.Recording.SampleRate)
	}
	if c.Recording.Channels <= 0 {
		return fmt.Errorf("invalid recording.channels: %d", c.Recording.Channels)
	}
	if c.Recording.BufferSize <= 0 {
		return fmt.Errorf("invalid recording.buffer_size: %d", c.Recording.BufferSize)
	}
	if c.Recording.ChannelBufferSize <= 0 {
		return fmt.Errorf("invalid recording.channel_buffer_size: %d", c.Recording.ChannelBufferSize)
	}
	if c.Recording.Format == "" {
		return fmt.Errorf("invalid recording.format: empty")
	}
	if c.Recording.Timeout <= 0 {
		return fmt.Errorf("invalid recording.timeout: %v", c.Recording.Timeout)
	}

	if err := c.validateStage("transcription", c.Transcription.Provider, c.Transcription.Model, provider.Transcription); err != nil {
		return err
	}
	if c.Transcription.Language != "" && !language.IsValidCode(c.Transcription.Language) {
		return fmt.Errorf("invalid transcription.language: %s (use ISO-639-1 codes like 'it', 'en', 'es')", c.Transcription.Language)
	}

	if c.Translation.Enabled {
		if err := c.validateStage("translation", c.Translation.Provider, c.Translation.Model, provider.Translation); err != nil {
			return err
		}
		if !language.IsValidCode(c.Translation.TargetLanguage) {
			return fmt.Errorf("invalid translation.target_language: %q", c.Translation.TargetLanguage)
		}
	}
	if _, err := pipeline.ParseOrdering(c.Translation.Ordering); err != nil {
		return fmt.Errorf("invalid translation.ordering: %w", err)
	}

	if err := c.validateStage("expansion", c.Expansion.Provider, c.Expansion.Model, provider.Expansion); err != nil {
		return err
	}

	validTypes := map[string]bool{"desktop": true, "log": true, "none": true}
	if !validTypes[c.Notifications.Type] {
		return fmt.Errorf("invalid notifications.type: %s (must be desktop, log, or none)", c.Notifications.Type)
	}

	if c.Web.Listen == "" {
		return fmt.Errorf("invalid web.listen: empty")
	}

	return nil
}

func (c *Config) validateStage(section, providerName, model string, capability provider.Capability) error {
	if providerName == "" {
		return fmt.Errorf("invalid %s.provider: empty", section)
	}
	p := provider.GetProvider(providerName)
	if p == nil {
		return fmt.Errorf("unsupported %s.provider: %s (must be one of %s)", section, providerName, strings.Join(provider.ListProvidersWith(capability), ", "))
	}
	if model == "" {
		return fmt.Errorf("invalid %s.model: empty", section)
	}
	m, err := provider.GetModel(providerName, model)
	if err != nil {
		return fmt.Errorf("invalid %s.model: %w", section, err)
	}
	if !m.Can(capability) {
		return fmt.Errorf("invalid %s.model: %s does not support %s", section, model, capability)
	}
	if p.RequiresAPIKey() && c.APIKey(providerName) == "" {
		return fmt.Errorf("%s API key required: not found in config (providers.%s.api_key) or environment variable (%s)",
			p.DisplayName(), providerName, provider.EnvVarForProvider(providerName))
	}
	return nil
}
